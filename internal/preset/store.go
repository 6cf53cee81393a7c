package preset

import (
	"time"

	"github.com/demexconsole/console/internal/errs"
	"github.com/demexconsole/console/internal/fixture"
	"github.com/demexconsole/console/internal/gdtf"
	"github.com/demexconsole/console/internal/valuetree"
)

// Store owns groups, macros, command slices, and presets, and implements
// valuetree.Resolver so a Preset leaf anywhere in the value tree can be
// expanded back into a concrete value.
type Store struct {
	groups        map[uint32]*Group
	macros        map[uint32]*Macro
	commandSlices map[uint32]*CommandSlice
	presets       map[valuetree.PresetID]*Preset
}

// NewStore builds an empty preset store.
func NewStore() *Store {
	return &Store{
		groups:        make(map[uint32]*Group),
		macros:        make(map[uint32]*Macro),
		commandSlices: make(map[uint32]*CommandSlice),
		presets:       make(map[valuetree.PresetID]*Preset),
	}
}

// --- Groups ---

func (s *Store) RecordGroup(id uint32, name string, selection *fixture.Selection) error {
	if _, ok := s.groups[id]; ok {
		return errs.Update("group %d already exists", id)
	}
	s.groups[id] = NewGroup(id, name, selection)
	return nil
}

func (s *Store) Group(id uint32) (*Group, error) {
	g, ok := s.groups[id]
	if !ok {
		return nil, errs.Lookup("group %d not found", id)
	}
	return g, nil
}

func (s *Store) RenameGroup(id uint32, name string) error {
	g, err := s.Group(id)
	if err != nil {
		return err
	}
	g.SetName(name)
	return nil
}

func (s *Store) DeleteGroup(id uint32) error {
	if _, ok := s.groups[id]; !ok {
		return errs.Lookup("group %d not found", id)
	}
	delete(s.groups, id)
	return nil
}

func (s *Store) Groups() map[uint32]*Group { return s.groups }

func (s *Store) NextGroupID() uint32 {
	return nextID(func(yield func(uint32)) {
		for id := range s.groups {
			yield(id)
		}
	})
}

// --- Macros ---

func (s *Store) CreateMacro(id uint32, name, command string) error {
	if _, ok := s.macros[id]; ok {
		return errs.Update("macro %d already exists", id)
	}
	s.macros[id] = NewMacro(id, name, command)
	return nil
}

func (s *Store) Macro(id uint32) (*Macro, error) {
	m, ok := s.macros[id]
	if !ok {
		return nil, errs.Lookup("macro %d not found", id)
	}
	return m, nil
}

func (s *Store) RenameMacro(id uint32, name string) error {
	m, err := s.Macro(id)
	if err != nil {
		return err
	}
	m.SetName(name)
	return nil
}

func (s *Store) DeleteMacro(id uint32) error {
	if _, ok := s.macros[id]; !ok {
		return errs.Lookup("macro %d not found", id)
	}
	delete(s.macros, id)
	return nil
}

func (s *Store) Macros() map[uint32]*Macro { return s.macros }

func (s *Store) NextMacroID() uint32 {
	return nextID(func(yield func(uint32)) {
		for id := range s.macros {
			yield(id)
		}
	})
}

// --- Command slices ---

func (s *Store) RecordCommandSlice(slice *CommandSlice) error {
	if _, ok := s.commandSlices[slice.ID()]; ok {
		return errs.Update("command slice %d already exists", slice.ID())
	}
	s.commandSlices[slice.ID()] = slice
	return nil
}

func (s *Store) CommandSlice(id uint32) (*CommandSlice, error) {
	c, ok := s.commandSlices[id]
	if !ok {
		return nil, errs.Lookup("command slice %d not found", id)
	}
	return c, nil
}

func (s *Store) CommandSlices() map[uint32]*CommandSlice { return s.commandSlices }

func (s *Store) NextCommandSliceID() uint32 {
	return nextID(func(yield func(uint32)) {
		for id := range s.commandSlices {
			yield(id)
		}
	})
}

// --- Presets ---

// RecordPreset materialises a Default preset from the current programmer
// values of fixtures in selection, restricted to channels whose active
// function's GDTF attribute belongs to id.FeatureGroup.
func (s *Store) RecordPreset(fixtures *fixture.Store, selection *fixture.Selection, id valuetree.PresetID, name string, grandMaster float32) error {
	if _, ok := s.presets[id]; ok {
		return errs.Update("preset %s already exists", id)
	}

	data := NewDefaultData()
	for _, f := range fixtures.SelectedFixtures(selection) {
		fixtureValues := make(map[string]valuetree.Value)

		for _, ch := range f.Mode().Channels {
			value, ok := f.GetProgrammerValue(ch.ChannelName)
			if !ok || value.IsHome() {
				continue
			}

			idx, _ := value.GetAsDiscrete(f.Env(s, grandMaster, &ch), ch.ChannelName)
			fns := ch.LogicalChannel.ChannelFunctions
			if idx < 0 || idx >= len(fns) {
				continue
			}
			group, ok := gdtf.AttributeFeatureGroup(fns[idx].Attribute)
			if !ok || group != id.FeatureGroup {
				continue
			}

			fixtureValues[ch.ChannelName] = value
		}

		if len(fixtureValues) > 0 {
			data.Values[f.ID()] = fixtureValues
		}
	}

	s.presets[id] = NewPreset(id, name, data)
	return nil
}

// AddPreset inserts an already-built preset, failing if its id is taken.
// Used to restore presets from a persisted snapshot, where the data was
// captured previously rather than recorded from a live selection.
func (s *Store) AddPreset(p *Preset) error {
	if _, ok := s.presets[p.id]; ok {
		return errs.Update("preset %s already exists", p.id)
	}
	s.presets[p.id] = p
	return nil
}

func (s *Store) Preset(id valuetree.PresetID) (*Preset, error) {
	p, ok := s.presets[id]
	if !ok {
		return nil, errs.Lookup("preset %s not found", id)
	}
	return p, nil
}

func (s *Store) Presets() map[valuetree.PresetID]*Preset { return s.presets }

func (s *Store) RenamePreset(id valuetree.PresetID, name string) error {
	p, err := s.Preset(id)
	if err != nil {
		return err
	}
	p.SetName(name)
	return nil
}

func (s *Store) DeletePreset(id valuetree.PresetID) error {
	if _, ok := s.presets[id]; !ok {
		return errs.Lookup("preset %s not found", id)
	}
	delete(s.presets, id)
	return nil
}

// DeletePresetRange deletes every preset with id.ID in [from.ID, to.ID],
// requiring from and to to share a feature group.
func (s *Store) DeletePresetRange(from, to valuetree.PresetID) (int, error) {
	if from.FeatureGroup != to.FeatureGroup {
		return 0, errs.Update("feature group mismatch: %s vs %s", from.FeatureGroup, to.FeatureGroup)
	}
	count := 0
	for i := from.ID; i <= to.ID; i++ {
		id := valuetree.PresetID{FeatureGroup: from.FeatureGroup, ID: i}
		if err := s.DeletePreset(id); err != nil {
			return count, err
		}
		count++
	}
	return count, nil
}

func (s *Store) NextPresetID(featureGroup gdtf.FeatureGroup) uint32 {
	max := uint32(0)
	for id := range s.presets {
		if id.FeatureGroup == featureGroup && id.ID > max {
			max = id.ID
		}
	}
	return max + 1
}

// ApplyPreset applies preset to every fixture in selection.
func (s *Store) ApplyPreset(id valuetree.PresetID, fixtures *fixture.Store, selection *fixture.Selection) error {
	p, err := s.Preset(id)
	if err != nil {
		return err
	}
	for _, fixtureID := range selection.Fixtures() {
		f, ok := fixtures.Fixture(fixtureID)
		if !ok {
			return errs.Lookup("fixture %d not found", fixtureID)
		}
		if err := p.Apply(f, selection); err != nil {
			return err
		}
	}
	return nil
}

// StopAll stops every running FeatureEffect preset.
func (s *Store) StopAll() {
	for _, p := range s.presets {
		p.Stop()
	}
}

// ResolvePreset implements valuetree.Resolver.
func (s *Store) ResolvePreset(id valuetree.PresetID, env *valuetree.Env, channelName string, state *valuetree.PresetState) (valuetree.Value, bool) {
	p, ok := s.presets[id]
	if !ok {
		return valuetree.Value{}, false
	}

	switch data := p.Data().(type) {
	case *DefaultData:
		fixtureValues, ok := data.Values[env.FixtureID]
		if !ok {
			return valuetree.Value{}, false
		}
		v, ok := fixtureValues[channelName]
		return v, ok
	case *FeatureEffectData:
		fixtureOffset := 0
		started := time.Now()
		if state != nil {
			started = state.Started
			if state.Selection != nil {
				if off, ok := state.Selection.Offset(env.FixtureID); ok {
					fixtureOffset = off
				}
			}
		}
		return data.Runtime.ChannelValue(channelName, env, fixtureOffset, started)
	default:
		return valuetree.Value{}, false
	}
}

func nextID(iter func(yield func(uint32))) uint32 {
	max := uint32(0)
	found := false
	iter(func(id uint32) {
		found = true
		if id > max {
			max = id
		}
	})
	if !found {
		return 1
	}
	return max + 1
}
