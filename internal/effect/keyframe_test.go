package effect

import (
	"testing"

	"github.com/demexconsole/console/internal/sequence"
	"github.com/demexconsole/console/internal/valuetree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyframeAbsoluteStartingPoint(t *testing.T) {
	kf := NewKeyframe(0.0, nil, sequence.FadingLinear)
	assert.Equal(t, float32(0.0), kf.AbsoluteStartingPoint(10, 0))
	assert.InDelta(t, 0.1, kf.AbsoluteStartingPoint(10, 1), 0.0001)
	assert.InDelta(t, 0.9, kf.AbsoluteStartingPoint(10, 9), 0.0001)

	mid := NewKeyframe(0.5, nil, sequence.FadingLinear)
	assert.InDelta(t, 0.05, mid.AbsoluteStartingPoint(10, 0), 0.0001)
	assert.InDelta(t, 0.15, mid.AbsoluteStartingPoint(10, 1), 0.0001)
}

func TestLayerValueSnapsWhenCurveIsZero(t *testing.T) {
	values := map[uint32]map[string]valuetree.Value{
		1: {"Dimmer": valuetree.Discrete(0, 0.0)},
	}
	kf := NewKeyframe(0.0, values, sequence.FadingLinear)
	layer := NewLayer([]Keyframe{kf})

	v, ok := layer.Value(1, "Dimmer", 0.0)
	require.True(t, ok)
	assert.Equal(t, valuetree.KindDiscrete, v.Kind)
}

func TestLayerValueMixesBetweenKeyframes(t *testing.T) {
	values0 := map[uint32]map[string]valuetree.Value{1: {"Dimmer": valuetree.Discrete(0, 0.0)}}
	values1 := map[uint32]map[string]valuetree.Value{1: {"Dimmer": valuetree.Discrete(0, 1.0)}}
	kf0 := NewKeyframe(0.0, values0, sequence.FadingLinear)
	kf1 := NewKeyframe(0.0, values1, sequence.FadingLinear)
	layer := NewLayer([]Keyframe{kf0, kf1})

	v, ok := layer.Value(1, "Dimmer", 0.25)
	require.True(t, ok)
	assert.Equal(t, valuetree.KindMix, v.Kind)
}

func TestEffectAffectedFixturesAndChannels(t *testing.T) {
	data := map[uint32]map[string]valuetree.Value{
		1: {"Dimmer": valuetree.Discrete(0, 1.0)},
		2: {"Dimmer": valuetree.Discrete(0, 0.5)},
	}
	e := FromRecordedData(data)

	fixtures := e.AffectedFixtures()
	assert.ElementsMatch(t, []uint32{1, 2}, fixtures)
	assert.Equal(t, []string{"Dimmer"}, e.AffectedChannelsForFixture(1))
}

func TestEffectValueResolvesFromSingleKeyframe(t *testing.T) {
	data := map[uint32]map[string]valuetree.Value{
		1: {"Dimmer": valuetree.Discrete(0, 1.0)},
	}
	e := FromRecordedData(data)

	v, ok := e.Value(1, "Dimmer", 0, 0, 1.0)
	require.True(t, ok)
	assert.Equal(t, valuetree.KindDiscrete, v.Kind)
}

func TestKeyframeRuntimeNotStartedReturnsNoValue(t *testing.T) {
	data := map[uint32]map[string]valuetree.Value{1: {"Dimmer": valuetree.Discrete(0, 1.0)}}
	r := NewRuntime(FromRecordedData(data), FixedSpeed(120), Phase{})

	_, ok := r.ChannelValue(1, "Dimmer", 0, nil)
	assert.False(t, ok)
}
