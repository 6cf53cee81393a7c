package executor

import (
	"testing"
	"time"

	"github.com/demexconsole/console/internal/arbiter"
	"github.com/demexconsole/console/internal/effect"
	"github.com/demexconsole/console/internal/fixture"
	"github.com/demexconsole/console/internal/gdtf"
	"github.com/demexconsole/console/internal/preset"
	"github.com/demexconsole/console/internal/sequence"
	"github.com/demexconsole/console/internal/valuetree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dimmerType() *gdtf.Type {
	ch := gdtf.Channel{
		ChannelName: "Dimmer",
		Offsets:     []int{0},
		LogicalChannel: gdtf.LogicalChannel{
			Attribute: "Dimmer",
			ChannelFunctions: []gdtf.ChannelFunction{
				{Attribute: "Dimmer", DMXFrom: gdtf.NewValue(0, 1), Default: gdtf.NewValue(0, 1)},
			},
		},
	}
	mode := gdtf.Mode{Name: "Standard", Channels: []gdtf.Channel{ch}}
	return &gdtf.Type{Name: "Generic Dimmer", Modes: []gdtf.Mode{mode}}
}

func setupSequenceExecutor(t *testing.T) (*Executor, *fixture.Store, *sequence.Store, *preset.Store, *gdtf.Channel) {
	t.Helper()
	fixtures := fixture.NewStore()
	f, err := fixtures.Patch("Dimmer 1", dimmerType(), "Standard", 0, 1)
	require.NoError(t, err)

	seqs := sequence.NewStore()
	seq := sequence.NewSequence(1, "Chase")
	data := sequence.NewDefaultData()
	data.Values[f.ID()] = []sequence.ChannelValue{{ChannelName: "Dimmer", Value: valuetree.Discrete(0, 1.0)}}
	cue := sequence.NewCue(sequence.Idx{Major: 1}, data, fixture.NewSelection([]uint32{f.ID()}), 0, 0, 1.0, sequence.Timing{}, sequence.ManualTrigger)
	require.NoError(t, seq.AddCue(cue))
	require.NoError(t, seqs.AddSequence(seq))

	presets := preset.NewStore()

	exec := NewSequenceExecutor(1, "", 1, arbiter.PriorityLtp, seqs, presets)

	ch, _ := f.Channel("Dimmer")
	return exec, fixtures, seqs, presets, ch
}

func TestSequenceExecutorStartBindsValueSource(t *testing.T) {
	exec, fixtures, _, _, _ := setupSequenceExecutor(t)
	f, _ := fixtures.Fixture(1)

	exec.Start(fixtures, 0)

	assert.True(t, exec.IsStarted())
	assert.Contains(t, f.ValueSources(), arbiter.ExecutorSource(1))
}

func TestSequenceExecutorStopUnbindsValueSource(t *testing.T) {
	exec, fixtures, _, _, _ := setupSequenceExecutor(t)
	f, _ := fixtures.Fixture(1)

	exec.Start(fixtures, 0)
	exec.Stop(fixtures)

	assert.False(t, exec.IsStarted())
	assert.NotContains(t, f.ValueSources(), arbiter.ExecutorSource(1))
}

func TestSequenceExecutorChannelValueResolvesAfterStart(t *testing.T) {
	exec, fixtures, _, _, ch := setupSequenceExecutor(t)
	exec.Start(fixtures, 0)

	env := &valuetree.Env{FixtureID: 1, Channel: ch}
	fv, ok := exec.ChannelValue(env, "Dimmer")
	require.True(t, ok)
	assert.Equal(t, arbiter.PriorityLtp, fv.Priority)
}

func TestSequenceExecutorChannelValueFailsForUnaffectedFixture(t *testing.T) {
	exec, fixtures, _, _, ch := setupSequenceExecutor(t)
	exec.Start(fixtures, 0)

	env := &valuetree.Env{FixtureID: 999, Channel: ch}
	_, ok := exec.ChannelValue(env, "Dimmer")
	assert.False(t, ok)
}

func TestSequenceExecutorFadeUpRampsAlpha(t *testing.T) {
	exec, fixtures, _, _, ch := setupSequenceExecutor(t)
	exec.SetFadeUp(10.0)
	exec.Start(fixtures, 0)

	env := &valuetree.Env{FixtureID: 1, Channel: ch}
	fv, ok := exec.ChannelValue(env, "Dimmer")
	require.True(t, ok)
	assert.Less(t, fv.Alpha, float32(1.0))
}

func TestSequenceExecutorRefersToSequence(t *testing.T) {
	exec, _, _, _, _ := setupSequenceExecutor(t)
	assert.True(t, exec.RefersToSequence(1))
	assert.False(t, exec.RefersToSequence(2))
}

func TestFeatureExecutorNotStartedHasNoFadeDelay(t *testing.T) {
	_ = time.Now
	sel := fixture.NewSelection([]uint32{1})
	runtime := effect.NewFeatureEffectRuntime(effect.NewSingleSine("Dimmer", 0.5, 1.0, 0.0, 0.5), effect.FixedSpeed(120), effect.Phase{}, nil)
	exec := NewEffectExecutor(2, "", runtime, sel, arbiter.PriorityHtp)
	assert.False(t, exec.IsStarted())
}

func TestFeatureExecutorStartAndChannelValue(t *testing.T) {
	fixtures := fixture.NewStore()
	f, err := fixtures.Patch("Dimmer 1", dimmerType(), "Standard", 0, 1)
	require.NoError(t, err)
	ch, _ := f.Channel("Dimmer")

	sel := fixture.NewSelection([]uint32{f.ID()})
	runtime := effect.NewFeatureEffectRuntime(effect.NewSingleSine("Dimmer", 0.0, 1.0, 0.0, 0.75), effect.FixedSpeed(120), effect.Phase{}, nil)
	exec := NewEffectExecutor(2, "", runtime, sel, arbiter.PriorityHtp)

	exec.Start(fixtures, 0)
	assert.True(t, exec.IsStarted())
	assert.Contains(t, f.ValueSources(), arbiter.ExecutorSource(2))

	env := &valuetree.Env{FixtureID: f.ID(), Channel: ch}
	fv, ok := exec.ChannelValue(env, "Dimmer")
	require.True(t, ok)
	assert.Equal(t, arbiter.PriorityHtp, fv.Priority)
	assert.InDelta(t, 0.75, fv.Value.DiscreteValue, 0.01)

	exec.Stop(fixtures)
	assert.False(t, exec.IsStarted())
	assert.NotContains(t, f.ValueSources(), arbiter.ExecutorSource(2))
}
