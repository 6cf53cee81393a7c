package sequence

import (
	"sort"

	"github.com/demexconsole/console/internal/errs"
	"github.com/demexconsole/console/internal/fixture"
	"github.com/demexconsole/console/internal/preset"
)

// StopBehavior governs what happens when a sequence's runtime reaches the
// end of its cue list.
type StopBehavior int

const (
	// ManualStop holds on the last cue until the operator stops the runtime.
	ManualStop StopBehavior = iota
	// Restart wraps back around to the first cue.
	Restart
	// AutoStop releases the runtime's sources once the last cue's out-time
	// has elapsed, as if the operator had stopped it.
	AutoStop
)

// Sequence is an ordered list of cues plus the stop behavior its runtime
// applies when it runs off the end.
type Sequence struct {
	id           uint32
	name         string
	cues         []*Cue
	stopBehavior StopBehavior
}

// NewSequence builds an empty sequence.
func NewSequence(id uint32, name string) *Sequence {
	if name == "" {
		name = "Sequence " + uintToString(id)
	}
	return &Sequence{id: id, name: name, stopBehavior: ManualStop}
}

func (s *Sequence) ID() uint32                       { return s.id }
func (s *Sequence) Name() string                     { return s.name }
func (s *Sequence) SetName(name string)              { s.name = name }
func (s *Sequence) StopBehavior() StopBehavior       { return s.stopBehavior }
func (s *Sequence) SetStopBehavior(b StopBehavior)   { s.stopBehavior = b }
func (s *Sequence) Cues() []*Cue                     { return s.cues }

// AddCue inserts cue in sorted Idx order, rejecting a duplicate index.
func (s *Sequence) AddCue(cue *Cue) error {
	if _, idx := s.find(cue.Idx); idx >= 0 {
		return errs.Update("sequence %d already has cue %d.%d", s.id, cue.Idx.Major, cue.Idx.Minor)
	}
	s.cues = append(s.cues, cue)
	sort.Slice(s.cues, func(i, j int) bool { return s.cues[i].Idx.Less(s.cues[j].Idx) })
	return nil
}

// RemoveCue deletes the cue at idx.
func (s *Sequence) RemoveCue(idx Idx) error {
	cue, pos := s.find(idx)
	if cue == nil {
		return errs.Lookup("sequence %d has no cue %d.%d", s.id, idx.Major, idx.Minor)
	}
	s.cues = append(s.cues[:pos], s.cues[pos+1:]...)
	return nil
}

// Cue returns the cue at idx.
func (s *Sequence) Cue(idx Idx) (*Cue, error) {
	cue, _ := s.find(idx)
	if cue == nil {
		return nil, errs.Lookup("sequence %d has no cue %d.%d", s.id, idx.Major, idx.Minor)
	}
	return cue, nil
}

// CueAtPosition returns the cue at a zero-based position in cue order.
func (s *Sequence) CueAtPosition(pos int) (*Cue, bool) {
	if pos < 0 || pos >= len(s.cues) {
		return nil, false
	}
	return s.cues[pos], true
}

// PositionOf returns the zero-based position of the cue at idx.
func (s *Sequence) PositionOf(idx Idx) (int, bool) {
	_, pos := s.find(idx)
	if pos < 0 {
		return 0, false
	}
	return pos, true
}

func (s *Sequence) find(idx Idx) (*Cue, int) {
	for i, c := range s.cues {
		if c.Idx == idx {
			return c, i
		}
	}
	return nil, -1
}

// AffectedFixtures returns the union of every cue's resolved selection,
// used by an executor/fader to know which fixtures to bind its value
// source to.
func (s *Sequence) AffectedFixtures(presets *preset.Store) []uint32 {
	sel := fixture.NewSelection(nil)
	for _, c := range s.cues {
		sel.ExtendFrom(c.resolvedSelection(presets))
	}
	return sel.Fixtures()
}
