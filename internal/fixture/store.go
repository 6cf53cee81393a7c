package fixture

import (
	"sort"

	"github.com/demexconsole/console/internal/errs"
	"github.com/demexconsole/console/internal/gdtf"
)

// DefaultGrandMaster is the grand master's default raw value (255 -> 1.0),
// which is full output.
const DefaultGrandMaster uint8 = 255

// Store owns every patched fixture and the global grand master. Overlap is
// checked at patch time: no two fixtures may claim the same
// (universe, address) byte.
type Store struct {
	fixtures    []*Fixture
	byID        map[uint32]*Fixture
	nextID      uint32
	grandMaster uint8
}

// NewStore builds an empty fixture store.
func NewStore() *Store {
	return &Store{
		byID:        make(map[uint32]*Fixture),
		nextID:      1,
		grandMaster: DefaultGrandMaster,
	}
}

// Patch adds a new fixture instance, failing if its address footprint
// overlaps an already-patched fixture on the same universe.
func (s *Store) Patch(name string, ft *gdtf.Type, modeName string, universe, startAddress uint16) (*Fixture, error) {
	mode, ok := ft.Mode(modeName)
	if !ok {
		return nil, errs.Patch("fixture type %q has no mode %q", ft.Name, modeName)
	}

	footprint := uint16(mode.FootprintSize())
	if footprint == 0 {
		footprint = 1
	}

	if err := s.checkOverlap(universe, startAddress, footprint); err != nil {
		return nil, err
	}

	id := s.nextID
	s.nextID++

	f := newFixture(id, name, ft, mode, universe, startAddress)
	s.fixtures = append(s.fixtures, f)
	s.byID[id] = f

	return f, nil
}

func (s *Store) checkOverlap(universe, startAddress, footprint uint16) error {
	end := startAddress + footprint - 1
	for _, f := range s.fixtures {
		if f.universe != universe {
			continue
		}
		fEnd := f.startAddress + f.AddressFootprint() - 1
		if startAddress <= fEnd && f.startAddress <= end {
			return errs.Patch("address range [%d,%d] on universe %d overlaps fixture %d [%d,%d]",
				startAddress, end, universe, f.id, f.startAddress, fEnd)
		}
	}
	return nil
}

// Fixture looks up a fixture by id.
func (s *Store) Fixture(id uint32) (*Fixture, bool) {
	f, ok := s.byID[id]
	return f, ok
}

// HasFixture reports whether id is patched.
func (s *Store) HasFixture(id uint32) bool {
	_, ok := s.byID[id]
	return ok
}

// Fixtures returns every patched fixture, ordered by universe then address.
func (s *Store) Fixtures() []*Fixture {
	out := make([]*Fixture, len(s.fixtures))
	copy(out, s.fixtures)
	sort.Slice(out, func(i, j int) bool {
		if out[i].universe != out[j].universe {
			return out[i].universe < out[j].universe
		}
		return out[i].startAddress < out[j].startAddress
	})
	return out
}

// SelectedFixtures returns the store's fixtures whose id is in the selection.
func (s *Store) SelectedFixtures(sel *Selection) []*Fixture {
	var out []*Fixture
	for _, f := range s.fixtures {
		if sel.HasFixture(f.id) {
			out = append(out, f)
		}
	}
	return out
}

// HomeAll resets every fixture's programmer values, optionally clearing
// value sources too.
func (s *Store) HomeAll(clearSources bool) {
	for _, f := range s.fixtures {
		f.Home(clearSources)
	}
}

// GrandMaster returns the grand master as a raw byte (0-255).
func (s *Store) GrandMaster() uint8 { return s.grandMaster }

// SetGrandMaster sets the grand master raw byte.
func (s *Store) SetGrandMaster(v uint8) { s.grandMaster = v }

// GrandMasterF32 returns the grand master in the [0,1] float domain used by
// value-tree evaluation.
func (s *Store) GrandMasterF32() float32 {
	return float32(s.grandMaster) / 255.0
}
