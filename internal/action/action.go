// Package action gives the console's command surface one typed struct per
// verb, each able to Apply itself to a show.Show, addressed by a common
// Action interface. The lexer/parser that produces these actions from
// typed commands lives outside this package.
package action

import (
	"github.com/demexconsole/console/internal/arbiter"
	"github.com/demexconsole/console/internal/effect"
	"github.com/demexconsole/console/internal/errs"
	"github.com/demexconsole/console/internal/executor"
	"github.com/demexconsole/console/internal/fixture"
	"github.com/demexconsole/console/internal/preset"
	"github.com/demexconsole/console/internal/sequence"
	"github.com/demexconsole/console/internal/show"
	"github.com/demexconsole/console/internal/valuetree"
)

// Action is anything the command surface can enqueue for the render thread
// to apply to a Show. Implementations must only be called from the render
// thread's own goroutine (the same constraint show.Show.Tick carries).
type Action interface {
	Apply(s *show.Show) error
}

// Home homes the given selection, or every fixture if All is set.
type Home struct {
	Selection    *fixture.Selection
	All          bool
	ClearSources bool
}

func (a Home) Apply(s *show.Show) error {
	if a.All {
		s.Fixtures.HomeAll(a.ClearSources)
		return nil
	}
	for _, id := range a.Selection.Fixtures() {
		if f, ok := s.Fixtures.Fixture(id); ok {
			f.Home(a.ClearSources)
		}
	}
	return nil
}

// RecordPreset materialises a Default preset from the selection's current
// programmer values, restricted to the preset id's feature group.
type RecordPreset struct {
	ID        valuetree.PresetID
	Name      string
	Selection *fixture.Selection
}

func (a RecordPreset) Apply(s *show.Show) error {
	return s.Presets.RecordPreset(s.Fixtures, a.Selection, a.ID, a.Name, s.Fixtures.GrandMasterF32())
}

// RecordGroup records a named fixture group.
type RecordGroup struct {
	ID        uint32
	Name      string
	Selection *fixture.Selection
}

func (a RecordGroup) Apply(s *show.Show) error {
	return s.Presets.RecordGroup(a.ID, a.Name, a.Selection)
}

// ChannelSelector chooses which of a fixture's channels record_sequence_cue
// captures.
type ChannelSelector int

const (
	// ChannelSelectorAll captures every channel, including ones at Home.
	ChannelSelectorAll ChannelSelector = iota
	// ChannelSelectorActive captures only channels not at Home.
	ChannelSelectorActive
	// ChannelSelectorFeatures captures only channels whose GDTF attribute
	// is named in Features.
	ChannelSelectorFeatures
)

// RecordSequenceCue builds a cue from the selection's current programmer
// values and adds it to an existing sequence at Idx (cues stay
// ordered by Idx).
type RecordSequenceCue struct {
	SequenceID  uint32
	Idx         sequence.Idx
	Selection   *fixture.Selection
	Selector    ChannelSelector
	Features    []string
	InFade      float32
	InDelay     float32
	SnapPercent float32
	Timing      sequence.Timing
	Trigger     sequence.Trigger
}

func (a RecordSequenceCue) Apply(s *show.Show) error {
	seq, err := s.Sequences.Sequence(a.SequenceID)
	if err != nil {
		return err
	}

	data := &sequence.DefaultData{Values: make(map[uint32][]sequence.ChannelValue)}
	for _, f := range s.Fixtures.SelectedFixtures(a.Selection) {
		var values []sequence.ChannelValue
		for _, ch := range f.Mode().Channels {
			v, ok := f.GetProgrammerValue(ch.ChannelName)
			if !ok {
				continue
			}
			switch a.Selector {
			case ChannelSelectorActive:
				if v.IsHome() {
					continue
				}
			case ChannelSelectorFeatures:
				if !containsString(a.Features, ch.LogicalChannel.Attribute) {
					continue
				}
			}
			values = append(values, sequence.ChannelValue{ChannelName: ch.ChannelName, Value: v})
		}
		if len(values) > 0 {
			data.Values[f.ID()] = values
		}
	}

	cue := sequence.NewCue(a.Idx, data, a.Selection, a.InFade, a.InDelay, a.SnapPercent, a.Timing, a.Trigger)
	return seq.AddCue(cue)
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// RecordSequenceExecutor creates a new executor driving an existing
// sequence's cues.
type RecordSequenceExecutor struct {
	ID         uint32
	Name       string
	SequenceID uint32
	Priority   arbiter.Priority
}

func (a RecordSequenceExecutor) Apply(s *show.Show) error {
	return s.Executors.AddExecutor(
		executor.NewSequenceExecutor(a.ID, a.Name, a.SequenceID, a.Priority, s.Sequences, s.Presets))
}

// RecordEffectExecutor creates a new executor driving a parametric feature
// effect across a selection.
type RecordEffectExecutor struct {
	ID        uint32
	Name      string
	Effect    *effect.FeatureEffectRuntime
	Selection *fixture.Selection
	Priority  arbiter.Priority
}

func (a RecordEffectExecutor) Apply(s *show.Show) error {
	return s.Executors.AddExecutor(
		executor.NewEffectExecutor(a.ID, a.Name, a.Effect, a.Selection, a.Priority))
}

// UpdateMode selects how Update merges new programmer values into an
// existing preset: Merge adds to what's recorded without touching
// channels/fixtures absent from the new selection, Override replaces the
// preset's data wholesale.
type UpdateMode int

const (
	UpdateMerge UpdateMode = iota
	UpdateOverride
)

// UpdatePreset re-records a preset in place from the selection's current
// programmer values. See preset.FeatureEffectData's doc comment, which
// already establishes that an effect preset can never be updated in place.
type UpdatePreset struct {
	ID        valuetree.PresetID
	Selection *fixture.Selection
	Mode      UpdateMode
}

func (a UpdatePreset) Apply(s *show.Show) error {
	existing, err := s.Presets.Preset(a.ID)
	if err != nil {
		return err
	}
	name := existing.Name()

	if a.Mode == UpdateOverride {
		if err := s.Presets.DeletePreset(a.ID); err != nil {
			return err
		}
		if err := s.Presets.RecordPreset(s.Fixtures, a.Selection, a.ID, name, s.Fixtures.GrandMasterF32()); err != nil {
			return err
		}
		return nil
	}

	existingData, ok := existing.Data().(*preset.DefaultData)
	if !ok {
		return errs.Update("preset %s is a feature effect and cannot be updated in place", a.ID)
	}

	if err := s.Presets.DeletePreset(a.ID); err != nil {
		return err
	}
	if err := s.Presets.RecordPreset(s.Fixtures, a.Selection, a.ID, name, s.Fixtures.GrandMasterF32()); err != nil {
		return err
	}
	merged, err := s.Presets.Preset(a.ID)
	if err != nil {
		return err
	}
	mergedData := merged.Data().(*preset.DefaultData)
	for fixtureID, values := range existingData.Values {
		if _, ok := mergedData.Values[fixtureID]; !ok {
			mergedData.Values[fixtureID] = values
		}
	}
	return nil
}

// DeleteRange deletes the inclusive preset id range [From, To]. Confirmed
// must be set — the literal confirmation token is required before a
// delete is honoured.
type DeleteRange struct {
	From, To  valuetree.PresetID
	Confirmed bool
}

func (a DeleteRange) Apply(s *show.Show) error {
	if !a.Confirmed {
		return errs.Update("delete requires confirmation (\"really\")")
	}
	_, err := s.Presets.DeletePresetRange(a.From, a.To)
	return err
}

// AssignExecutorToFader binds an existing sequence to a newly-created
// fader.
type AssignExecutorToFader struct {
	FaderID    uint32
	SequenceID uint32
	Function   executor.FaderFunction
}

func (a AssignExecutorToFader) Apply(s *show.Show) error {
	return s.Executors.AddFader(
		executor.NewFader(a.FaderID, a.SequenceID, a.Function, s.Sequences, s.Presets))
}

// UnassignFader removes a fader's binding entirely.
type UnassignFader struct {
	FaderID uint32
}

func (a UnassignFader) Apply(s *show.Show) error {
	return s.Executors.RemoveFader(a.FaderID)
}

// RenameKind selects which object kind Rename targets.
type RenameKind int

const (
	RenamePreset RenameKind = iota
	RenameGroup
	RenameSequence
	RenameExecutor
)

// Rename renames an object.
type Rename struct {
	Kind     RenameKind
	PresetID valuetree.PresetID
	ID       uint32
	Name     string
}

func (a Rename) Apply(s *show.Show) error {
	switch a.Kind {
	case RenamePreset:
		return s.Presets.RenamePreset(a.PresetID, a.Name)
	case RenameGroup:
		return s.Presets.RenameGroup(a.ID, a.Name)
	case RenameSequence:
		seq, err := s.Sequences.Sequence(a.ID)
		if err != nil {
			return err
		}
		seq.SetName(a.Name)
		return nil
	case RenameExecutor:
		for _, e := range s.Executors.Executors() {
			if e.ID() == a.ID {
				e.SetName(a.Name)
				return nil
			}
		}
		return errs.Lookup("no executor with id %d", a.ID)
	}
	return errs.Update("unknown rename target kind %d", a.Kind)
}

// SetChannelValue writes value directly to channel on every fixture in the
// selection's programmer.
type SetChannelValue struct {
	Selection *fixture.Selection
	Channel   string
	Value     valuetree.Value
}

func (a SetChannelValue) Apply(s *show.Show) error {
	for _, id := range a.Selection.Fixtures() {
		f, ok := s.Fixtures.Fixture(id)
		if !ok {
			continue
		}
		if err := f.SetProgrammerValue(a.Channel, a.Value); err != nil {
			return err
		}
	}
	s.Executors.RecordProgrammerStomp()
	return nil
}

// ApplyPreset applies a recorded preset's values to the selection's
// programmer.
type ApplyPreset struct {
	Selection *fixture.Selection
	ID        valuetree.PresetID
}

func (a ApplyPreset) Apply(s *show.Show) error {
	if err := s.Presets.ApplyPreset(a.ID, s.Fixtures, a.Selection); err != nil {
		return err
	}
	s.Executors.RecordProgrammerStomp()
	return nil
}

// RecallSequenceCue writes a specific cue's recorded values directly to
// the programmer, bypassing any fade — a "go to cue" jump.
type RecallSequenceCue struct {
	SequenceID uint32
	CueIdx     sequence.Idx
}

func (a RecallSequenceCue) Apply(s *show.Show) error {
	seq, err := s.Sequences.Sequence(a.SequenceID)
	if err != nil {
		return err
	}
	cue, err := seq.Cue(a.CueIdx)
	if err != nil {
		return err
	}
	return cue.Recall(s.Fixtures)
}

// Clear stops every executor and fader and homes every fixture, clearing
// their value sources.
type Clear struct{}

func (a Clear) Apply(s *show.Show) error {
	s.Executors.StopAll()
	s.Presets.StopAll()
	s.Fixtures.HomeAll(true)
	return nil
}

// InternalExecutorGo performs the "Go" action on an executor's fader, used
// by input-device bindings rather than the text command parser.
type InternalExecutorGo struct {
	ExecutorID uint32
}

func (a InternalExecutorGo) Apply(s *show.Show) error {
	e, err := executorByID(s, a.ExecutorID)
	if err != nil {
		return err
	}
	if !e.IsStarted() {
		return s.Executors.StartExecutor(a.ExecutorID, 0)
	}
	return e.NextCue(s.Fixtures, 0)
}

// InternalExecutorStop stops an executor, used by input-device bindings.
type InternalExecutorStop struct {
	ExecutorID uint32
}

func (a InternalExecutorStop) Apply(s *show.Show) error {
	return s.Executors.StopExecutor(a.ExecutorID)
}

func executorByID(s *show.Show, id uint32) (*executor.Executor, error) {
	for _, e := range s.Executors.Executors() {
		if e.ID() == id {
			return e, nil
		}
	}
	return nil, errs.Lookup("no executor with id %d", id)
}

// InternalSetFixtureSelection replaces the programmer's working selection,
// used by input-device bindings (e.g. a fixture-selection button bank).
type InternalSetFixtureSelection struct {
	Selection *fixture.Selection
}

func (a InternalSetFixtureSelection) Apply(s *show.Show) error {
	s.SetCurrentSelection(a.Selection)
	return nil
}
