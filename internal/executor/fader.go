package executor

import (
	"github.com/demexconsole/console/internal/arbiter"
	"github.com/demexconsole/console/internal/fixture"
	"github.com/demexconsole/console/internal/preset"
	"github.com/demexconsole/console/internal/sequence"
	"github.com/demexconsole/console/internal/valuetree"
)

// FaderFunction selects which quantity a Fader's 0..1 value scales.
type FaderFunction int

const (
	// FaderIntensity scales only channels on the Dimmer feature.
	FaderIntensity FaderFunction = iota
	// FaderSpeed scales the sequence runtime's own playback speed.
	FaderSpeed
	// FaderAll scales every channel the fader's sequence drives.
	FaderAll
)

// Fader is a manual 0..1 control bound to a sequence: moving it above 0
// starts the sequence (if not already active); returning it to 0 stops it.
type Fader struct {
	id             uint32
	priority       arbiter.Priority
	stompProtected bool
	value          float32
	runtime        *sequence.Runtime
	function       FaderFunction

	sequences *sequence.Store
	presets   *preset.Store
}

// NewFader builds a fader bound to sequenceID, initially at 0 and inactive.
func NewFader(id uint32, sequenceID uint32, function FaderFunction, sequences *sequence.Store, presets *preset.Store) *Fader {
	return &Fader{
		id:        id,
		priority:  arbiter.PriorityLtp,
		runtime:   sequence.NewRuntime(sequenceID),
		function:  function,
		sequences: sequences,
		presets:   presets,
	}
}

func (f *Fader) ID() uint32                    { return f.id }
func (f *Fader) Priority() arbiter.Priority     { return f.priority }
func (f *Fader) SetPriority(p arbiter.Priority) { f.priority = p }
func (f *Fader) StompProtected() bool           { return f.stompProtected }
func (f *Fader) SetStompProtected(v bool)       { f.stompProtected = v }
func (f *Fader) Value() float32                 { return f.value }
func (f *Fader) Function() FaderFunction        { return f.function }
func (f *Fader) SetFunction(fn FaderFunction)   { f.function = fn }
func (f *Fader) IsActive() bool                 { return f.runtime.IsStarted() }

func (f *Fader) fixtures() []uint32 {
	seq, err := f.sequences.Sequence(f.runtime.SequenceID())
	if err != nil {
		return nil
	}
	return seq.AffectedFixtures(f.presets)
}

// Go behaves like pressing "Go" on the fader's sequence: starts it if
// inactive, otherwise advances to the next cue.
func (f *Fader) Go(fixtures *fixture.Store, timeOffset float32) {
	if !f.IsActive() {
		f.Start(fixtures, timeOffset)
		return
	}
	seq, err := f.sequences.Sequence(f.runtime.SequenceID())
	if err != nil {
		return
	}
	if f.runtime.NextCue(seq, timeOffset) {
		f.Stop(fixtures)
	}
}

// SetValue moves the fader to value, starting its sequence on the first
// nonzero move and stopping it when returned to 0.
func (f *Fader) SetValue(value float32, fixtures *fixture.Store, timeOffset float32) {
	if value == 0 {
		f.Stop(fixtures)
		return
	}
	if !f.IsActive() {
		f.Start(fixtures, timeOffset)
	}
	f.value = value
}

// Start activates the fader's sequence runtime and binds it as a value
// source on every fixture it drives.
func (f *Fader) Start(fixtures *fixture.Store, timeOffset float32) {
	f.value = 1.0
	f.runtime.Start(timeOffset)

	src := arbiter.ExecutorSource(f.id)
	for _, id := range f.fixtures() {
		if fx, ok := fixtures.Fixture(id); ok {
			fx.PushValueSource(src)
		}
	}
}

// Stop deactivates the fader's sequence runtime and unbinds it.
func (f *Fader) Stop(fixtures *fixture.Store) {
	ids := f.fixtures()
	f.value = 0.0
	f.runtime.Stop()

	src := arbiter.ExecutorSource(f.id)
	for _, id := range ids {
		if fx, ok := fixtures.Fixture(id); ok {
			fx.RemoveValueSource(src)
		}
	}
}

// Update advances the fader's sequence runtime, scaling playback speed
// when the fader's function is FaderSpeed.
func (f *Fader) Update(fixtures *fixture.Store) {
	seq, err := f.sequences.Sequence(f.runtime.SequenceID())
	if err != nil {
		return
	}
	speedMultiplier := float32(1.0)
	if f.function == FaderSpeed {
		speedMultiplier = f.value
	}
	if f.runtime.Update(seq, speedMultiplier, f.presets) {
		f.Stop(fixtures)
	}
}

// ChannelValue resolves channelName for the fixture named in env, applying
// the fader's own value as an intensity or all-channel scaler depending on
// function. Satisfies arbiter.Executor.
func (f *Fader) ChannelValue(env *valuetree.Env, channelName string) (arbiter.FadeValue, bool) {
	if !f.IsActive() {
		return arbiter.FadeValue{}, false
	}

	seq, err := f.sequences.Sequence(f.runtime.SequenceID())
	if err != nil {
		return arbiter.FadeValue{}, false
	}
	if !containsFixture(seq.AffectedFixtures(f.presets), env.FixtureID) {
		return arbiter.FadeValue{}, false
	}

	speedMultiplier := float32(1.0)
	if f.function == FaderSpeed {
		speedMultiplier = f.value
	}

	v, alpha, ok := f.runtime.ChannelValue(seq, env.FixtureID, env.Channel, speedMultiplier, 1.0, f.presets)
	if !ok {
		return arbiter.FadeValue{}, false
	}

	if f.function == FaderAll {
		alpha *= f.value
	} else if f.function == FaderIntensity {
		if attributeName(env) == "Dimmer" {
			alpha *= f.value
		}
	}

	return arbiter.FadeValue{Value: v, Alpha: alpha, Priority: f.priority}, true
}

func attributeName(env *valuetree.Env) string {
	if env.Channel == nil {
		return ""
	}
	return env.Channel.LogicalChannel.Attribute
}
