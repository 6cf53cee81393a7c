// Package preset owns groups, presets (default and effect-driven), macros,
// command slices, and the lookup surface sequences and effects use to
// resolve a Preset leaf in the value tree.
package preset

import (
	"fmt"
	"time"

	"github.com/demexconsole/console/internal/errs"
	"github.com/demexconsole/console/internal/fixture"
	"github.com/demexconsole/console/internal/gdtf"
	"github.com/demexconsole/console/internal/valuetree"
)

// Target describes how much of a selection a preset's recorded data covers.
type Target int

const (
	TargetNone Target = iota
	TargetSomeSelected
	TargetAllSelected
)

// EffectRuntime is the subset of a feature-effect runtime a preset needs:
// its channel-value evaluation, the GDTF attributes it drives (used to pick
// which channels Apply touches), and a way to stop it. Implemented by
// internal/effect.FeatureEffectRuntime; defined here to avoid preset
// depending on effect.
type EffectRuntime interface {
	ChannelValue(channelName string, env *valuetree.Env, fixtureOffset int, started time.Time) (valuetree.Value, bool)
	Attributes() []string
	Stop()
}

// Data is a preset's payload: either a fixed map of recorded channel values
// (Default) or a running parametric/keyframe effect (FeatureEffect).
type Data interface {
	isData()
}

// DefaultData holds recorded discrete channel values per fixture.
type DefaultData struct {
	Values map[uint32]map[string]valuetree.Value
}

func (DefaultData) isData() {}

// NewDefaultData builds an empty DefaultData.
func NewDefaultData() *DefaultData {
	return &DefaultData{Values: make(map[uint32]map[string]valuetree.Value)}
}

// FeatureEffectData wraps a running effect runtime. Per design decision, an
// effect preset is recallable (fixtures can reference it) but its runtime
// cannot be independently re-recorded in place — Update on this variant
// always fails.
type FeatureEffectData struct {
	Runtime EffectRuntime
}

func (FeatureEffectData) isData() {}

// Preset is one recorded or running look, addressed by a feature-scoped id.
type Preset struct {
	id           valuetree.PresetID
	name         string
	displayColor string
	fadeUp       time.Duration
	data         Data
}

// NewPreset builds a preset, defaulting its name to "<group> Preset <id>".
func NewPreset(id valuetree.PresetID, name string, data Data) *Preset {
	if name == "" {
		name = string(id.FeatureGroup) + " Preset " + uintToString(id.ID)
	}
	return &Preset{id: id, name: name, data: data}
}

func (p *Preset) ID() valuetree.PresetID { return p.id }
func (p *Preset) Name() string           { return p.name }
func (p *Preset) SetName(name string)    { p.name = name }
func (p *Preset) Data() Data             { return p.data }
func (p *Preset) FadeUp() time.Duration  { return p.fadeUp }
func (p *Preset) SetFadeUp(d time.Duration) { p.fadeUp = d }

// Stop halts a running FeatureEffect preset; a no-op for Default presets.
func (p *Preset) Stop() {
	if fe, ok := p.data.(*FeatureEffectData); ok {
		fe.Runtime.Stop()
	}
}

// Target reports how much of selectedFixtures this preset's recorded data
// covers (Default only; FeatureEffect always targets the whole selection
// since it evaluates live against whichever fixtures apply it).
func (p *Preset) Target(selectedFixtures []uint32) Target {
	def, ok := p.data.(*DefaultData)
	if !ok {
		return TargetAllSelected
	}

	matched := 0
	for _, id := range selectedFixtures {
		if _, ok := def.Values[id]; ok {
			matched++
		}
	}
	switch {
	case matched == 0:
		return TargetNone
	case matched == len(selectedFixtures):
		return TargetAllSelected
	default:
		return TargetSomeSelected
	}
}

// Apply points fixture's programmer value, for every channel this preset
// covers, at a Preset leaf referencing this preset and the selection it was
// applied through (so fixture-offset-dependent effects know their phase).
func (p *Preset) Apply(f *fixture.Fixture, newSelection *fixture.Selection) error {
	state := valuetree.PresetState{Started: presetClock(), Selection: newSelection}
	leaf := valuetree.Preset(p.id, &state)

	switch data := p.data.(type) {
	case *DefaultData:
		fixtureData, ok := data.Values[f.ID()]
		if !ok {
			return nil
		}
		for channelName := range fixtureData {
			if err := f.SetProgrammerValue(channelName, leaf); err != nil {
				return errs.Wrap(errs.KindRuntime, err, fmt.Sprintf("applying preset %s to fixture %d", p.id, f.ID()))
			}
		}
	case *FeatureEffectData:
		for _, attribute := range data.Runtime.Attributes() {
			for _, ch := range f.Mode().Channels {
				if channelAttribute(&ch) != attribute {
					continue
				}
				if err := f.SetProgrammerValue(ch.ChannelName, leaf); err != nil {
					return errs.Wrap(errs.KindRuntime, err, fmt.Sprintf("applying preset %s to fixture %d", p.id, f.ID()))
				}
			}
		}
	}
	return nil
}

func channelAttribute(ch *gdtf.Channel) string {
	fn, ok := ch.InitialFunction()
	if !ok {
		return ""
	}
	return fn.Attribute
}

// presetClock is overridable in tests; production code leaves it at its
// zero-arg default of time.Now.
var presetClock = time.Now
