// Package persist serialises a show's load-time-only state (patch, preset
// store, sequences, executor configs, timing store) into a ShowDocument row
// and restores it, rather than re-deriving it from a log.
package persist

import (
	"sort"

	"github.com/demexconsole/console/internal/arbiter"
	"github.com/demexconsole/console/internal/errs"
	"github.com/demexconsole/console/internal/executor"
	"github.com/demexconsole/console/internal/fixture"
	"github.com/demexconsole/console/internal/gdtf"
	"github.com/demexconsole/console/internal/preset"
	"github.com/demexconsole/console/internal/sequence"
	"github.com/demexconsole/console/internal/show"
	"github.com/demexconsole/console/internal/valuetree"
)

// PatchEntry records one fixture's patch: which type/mode it was patched
// with (by name, resolved against a caller-supplied type table on Apply,
// since GDTF XML parsing is out of scope) and its DMX address.
type PatchEntry struct {
	ID           uint32
	Name         string
	TypeName     string
	ModeName     string
	Universe     uint16
	StartAddress uint16
}

// GroupEntry records a named fixture group.
type GroupEntry struct {
	ID         uint32
	Name       string
	FixtureIDs []uint32
}

// PresetEntry records a Default-data preset. Feature-effect presets aren't
// persisted — their running EffectRuntime has no serialisable form, the
// same limitation FeatureEffectData's doc comment already states for
// in-place updates.
type PresetEntry struct {
	FeatureGroup string
	ID           uint32
	Name         string
	Values       map[uint32]map[string]valuetree.Value
}

// CueEntry records one cue of a Default-data sequence. Builder-data cues
// (group/preset recipes) aren't persisted here; recording always produces
// Default data (see internal/action.RecordSequenceCue), so this covers
// every cue this console can itself create.
type CueEntry struct {
	Major, Minor    uint32
	Name            string
	FixtureIDs      []uint32
	Values          map[uint32][]sequence.ChannelValue
	InFade          float32
	InDelay         float32
	OutFade         float32
	OutDelay        float32
	SnapPercent     float32
	TimingOffset    float32
	TimingDirection int
	TriggerKind     int
	TriggerSeconds  float32
}

// SequenceEntry records a sequence and its cues.
type SequenceEntry struct {
	ID   uint32
	Name string
	Cues []CueEntry
}

// ExecutorEntry records a sequence-backed executor. Effect executors aren't
// persisted, for the same reason feature-effect presets aren't.
type ExecutorEntry struct {
	ID         uint32
	Name       string
	SequenceID uint32
	Priority   int
}

// SpeedMasterEntry records one timing store speed master's BPM.
type SpeedMasterEntry struct {
	ID  uint32
	BPM float32
}

// Snapshot is the full serialisable state of a Show.
type Snapshot struct {
	Patch        []PatchEntry
	Groups       []GroupEntry
	Presets      []PresetEntry
	Sequences    []SequenceEntry
	Executors    []ExecutorEntry
	SpeedMasters []SpeedMasterEntry
}

// FromShow captures s's current state into a Snapshot.
func FromShow(s *show.Show) Snapshot {
	s.RLock()
	defer s.RUnlock()

	snap := Snapshot{}

	for _, f := range s.Fixtures.Fixtures() {
		snap.Patch = append(snap.Patch, PatchEntry{
			ID:           f.ID(),
			Name:         f.Name(),
			TypeName:     f.Type().Name,
			ModeName:     f.Mode().Name,
			Universe:     f.Universe(),
			StartAddress: f.StartAddress(),
		})
	}

	for _, g := range s.Presets.Groups() {
		snap.Groups = append(snap.Groups, GroupEntry{
			ID:         g.ID(),
			Name:       g.Name(),
			FixtureIDs: g.Selection().Fixtures(),
		})
	}

	for id, p := range s.Presets.Presets() {
		data, ok := p.Data().(*preset.DefaultData)
		if !ok {
			continue
		}
		snap.Presets = append(snap.Presets, PresetEntry{
			FeatureGroup: string(id.FeatureGroup),
			ID:           id.ID,
			Name:         p.Name(),
			Values:       valuesByName(data.Values),
		})
	}

	for _, seq := range s.Sequences.Sequences() {
		entry := SequenceEntry{ID: seq.ID(), Name: seq.Name()}
		for _, cue := range seq.Cues() {
			data, ok := cue.Data.(*sequence.DefaultData)
			if !ok {
				continue
			}
			var fixtureIDs []uint32
			if cue.Selection != nil {
				fixtureIDs = cue.Selection.Fixtures()
			}
			entry.Cues = append(entry.Cues, CueEntry{
				Major:           cue.Idx.Major,
				Minor:           cue.Idx.Minor,
				Name:            cue.Name,
				FixtureIDs:      fixtureIDs,
				Values:          data.Values,
				InFade:          cue.InFade,
				InDelay:         cue.InDelay,
				OutFade:         cue.OutFade,
				OutDelay:        cue.OutDelay,
				SnapPercent:     cue.SnapPercent,
				TimingOffset:    cue.Timing.Offset,
				TimingDirection: int(cue.Timing.Direction),
				TriggerKind:     int(cue.Trigger.Kind),
				TriggerSeconds:  cue.Trigger.Seconds,
			})
		}
		snap.Sequences = append(snap.Sequences, entry)
	}

	for _, e := range s.Executors.Executors() {
		seqID, ok := e.SequenceID()
		if !ok {
			continue
		}
		snap.Executors = append(snap.Executors, ExecutorEntry{
			ID:         e.ID(),
			Name:       e.Name(),
			SequenceID: seqID,
			Priority:   int(e.Priority()),
		})
	}

	for id, sm := range s.Timing.SpeedMasters() {
		snap.SpeedMasters = append(snap.SpeedMasters, SpeedMasterEntry{ID: id, BPM: sm.BPM()})
	}

	return snap
}

func valuesByName(v map[uint32]map[string]valuetree.Value) map[uint32]map[string]valuetree.Value {
	out := make(map[uint32]map[string]valuetree.Value, len(v))
	for id, m := range v {
		cp := make(map[string]valuetree.Value, len(m))
		for k, vv := range m {
			cp[k] = vv
		}
		out[id] = cp
	}
	return out
}

// TypeLookup resolves a fixture type by name, supplied by the caller
// (typically a patch file loaded separately) since GDTF XML parsing is out
// of scope for this console.
type TypeLookup func(name string) (*gdtf.Type, bool)

// Apply restores a Snapshot onto a fresh Show, re-patching fixtures via
// lookupType, then rebuilding groups, presets, sequences, executors, and
// speed masters in dependency order. Patch entries are re-patched in
// ascending id order, not address order, so the fresh store's sequential
// id assignment reproduces the original ids — fixture ids are never
// reused or reassigned once patched, so this always matches.
func (snap Snapshot) Apply(s *show.Show, lookupType TypeLookup) error {
	patches := make([]PatchEntry, len(snap.Patch))
	copy(patches, snap.Patch)
	sort.Slice(patches, func(i, j int) bool { return patches[i].ID < patches[j].ID })

	for _, pe := range patches {
		ft, ok := lookupType(pe.TypeName)
		if !ok {
			return errs.Lookup("no fixture type named %q", pe.TypeName)
		}
		if _, err := s.Fixtures.Patch(pe.Name, ft, pe.ModeName, pe.Universe, pe.StartAddress); err != nil {
			return err
		}
	}

	for _, ge := range snap.Groups {
		sel := fixture.NewSelection(ge.FixtureIDs)
		if err := s.Presets.RecordGroup(ge.ID, ge.Name, sel); err != nil {
			return err
		}
	}

	for _, pe := range snap.Presets {
		id := valuetree.PresetID{FeatureGroup: gdtf.FeatureGroup(pe.FeatureGroup), ID: pe.ID}
		data := &preset.DefaultData{Values: valuesByName(pe.Values)}
		p := preset.NewPreset(id, pe.Name, data)
		if err := s.Presets.AddPreset(p); err != nil {
			return err
		}
	}

	for _, se := range snap.Sequences {
		seq := sequence.NewSequence(se.ID, se.Name)
		for _, ce := range se.Cues {
			idx := sequence.Idx{Major: ce.Major, Minor: ce.Minor}
			data := &sequence.DefaultData{Values: ce.Values}
			sel := fixture.NewSelection(ce.FixtureIDs)
			timingInfo := sequence.Timing{Offset: ce.TimingOffset, Direction: sequence.TimingDirection(ce.TimingDirection)}
			trigger := sequence.Trigger{Kind: sequence.TriggerKind(ce.TriggerKind), Seconds: ce.TriggerSeconds}
			cue := sequence.NewCue(idx, data, sel, ce.InFade, ce.InDelay, ce.SnapPercent, timingInfo, trigger)
			cue.OutFade = ce.OutFade
			cue.OutDelay = ce.OutDelay
			if err := seq.AddCue(cue); err != nil {
				return err
			}
		}
		if err := s.Sequences.AddSequence(seq); err != nil {
			return err
		}
	}

	for _, ee := range snap.Executors {
		ex := executor.NewSequenceExecutor(ee.ID, ee.Name, ee.SequenceID, arbiter.Priority(ee.Priority), s.Sequences, s.Presets)
		if err := s.Executors.AddExecutor(ex); err != nil {
			return err
		}
	}

	for _, sme := range snap.SpeedMasters {
		sm, err := s.Timing.SpeedMaster(sme.ID)
		if err != nil {
			continue
		}
		sm.SetBPM(sme.BPM)
	}

	return nil
}
