package effect

import (
	"testing"
	"time"

	"github.com/demexconsole/console/internal/gdtf"
	"github.com/demexconsole/console/internal/valuetree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dimmerChannel() *gdtf.Channel {
	return &gdtf.Channel{
		ChannelName: "Dimmer",
		Offsets:     []int{0},
		LogicalChannel: gdtf.LogicalChannel{
			Attribute: "Dimmer",
			ChannelFunctions: []gdtf.ChannelFunction{
				{Attribute: "Dimmer", DMXFrom: gdtf.NewValue(0, 1), Default: gdtf.NewValue(0, 1)},
			},
		},
	}
}

func TestFeatureEffectRuntimeNotStartedReturnsNoValue(t *testing.T) {
	r := NewFeatureEffectRuntime(NewSingleSine("Dimmer", 0.5, 1.0, 0.0, 0.5), FixedSpeed(120), Phase{}, nil)
	ch := dimmerChannel()
	env := &valuetree.Env{Channel: ch}

	_, ok := r.ChannelValue("Dimmer", env, 0, time.Now())
	assert.False(t, ok)
}

func TestFeatureEffectRuntimeResolvesDiscreteValue(t *testing.T) {
	r := NewFeatureEffectRuntime(NewSingleSine("Dimmer", 0.0, 1.0, 0.0, 0.75), FixedSpeed(120), Phase{}, nil)
	r.Start(0)

	ch := dimmerChannel()
	env := &valuetree.Env{Channel: ch}

	v, ok := r.ChannelValue("Dimmer", env, 0, time.Now())
	require.True(t, ok)
	assert.Equal(t, valuetree.KindDiscrete, v.Kind)
	assert.InDelta(t, 0.75, v.DiscreteValue, 0.01)
}

func TestFeatureEffectRuntimeAttributesDelegatesToEffect(t *testing.T) {
	r := NewFeatureEffectRuntime(NewPairFigureEight("Pan", "Tilt", 1.0, 0.5, 0.5), FixedSpeed(120), Phase{}, nil)
	assert.Equal(t, []string{"Pan", "Tilt"}, r.Attributes())
}

func TestFeatureEffectRuntimeStopClearsClock(t *testing.T) {
	r := NewFeatureEffectRuntime(NewSingleSine("Dimmer", 0.5, 1.0, 0.0, 0.5), FixedSpeed(120), Phase{}, nil)
	r.Start(0)
	assert.True(t, r.IsStarted())
	r.Stop()
	assert.False(t, r.IsStarted())
}

func TestPhaseResolvesDegreesPerOffset(t *testing.T) {
	p := Phase{DegreesPerOffset: 90}
	assert.Equal(t, float32(0), p.Resolve(0))
	assert.Equal(t, float32(270), p.Resolve(3))
}
