package valuetree

import (
	"testing"

	"github.com/demexconsole/console/internal/gdtf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dimmerChannel() *gdtf.Channel {
	return &gdtf.Channel{
		ChannelName: "Dimmer",
		Offsets:     []int{1},
		LogicalChannel: gdtf.LogicalChannel{
			Attribute: "Dimmer",
			ChannelFunctions: []gdtf.ChannelFunction{
				{Name: "Dimmer", Attribute: "Dimmer", DMXFrom: gdtf.NewValue(0, 1), Default: gdtf.NewValue(0, 1)},
			},
		},
	}
}

func basicEnv(ch *gdtf.Channel) *Env {
	mode := &gdtf.Mode{Name: "Mode 1", Channels: []gdtf.Channel{*ch}}
	return &Env{
		FixtureID:   1,
		Mode:        mode,
		Channel:     ch,
		Values:      map[string]Value{"Dimmer": Home()},
		GrandMaster: 1.0,
	}
}

func TestFlattenFoldsMixZeroAndOne(t *testing.T) {
	a := Discrete(0, 0.25)
	b := Discrete(0, 0.75)

	assert.True(t, MixOf(a, b, 0).Flatten().Equal(a))
	assert.True(t, MixOf(a, b, 1).Flatten().Equal(b))

	mid := MixOf(a, b, 0.5)
	assert.Equal(t, KindMix, mid.Flatten().Kind)
}

func TestMixSameEqualsA(t *testing.T) {
	a := Discrete(2, 0.5)
	for _, mix := range []float32{0, 0.25, 0.5, 0.75, 1} {
		m := MixOf(a, a, mix).Flatten()
		if m.Kind == KindMix {
			// unflattened mid-mix still evaluates equal to a via GetAsDiscrete
			env := basicEnv(dimmerChannel())
			idx, val := m.GetAsDiscrete(env, "Dimmer")
			aIdx, aVal := a.GetAsDiscrete(env, "Dimmer")
			assert.Equal(t, aIdx, idx)
			assert.InDelta(t, aVal, val, 1e-6)
		} else {
			assert.True(t, m.Equal(a))
		}
	}
}

func TestToDMXHomeUsesDefault(t *testing.T) {
	ch := dimmerChannel()
	ch.LogicalChannel.ChannelFunctions[0].Default = gdtf.NewValue(42, 1)
	env := basicEnv(ch)

	val, ok := Home().ToDMX(env, "Dimmer")
	require.True(t, ok)
	assert.Equal(t, uint64(42), val.Raw)
}

func TestToDMXDiscreteMapsIntoFunctionRange(t *testing.T) {
	ch := &gdtf.Channel{
		ChannelName: "Gobo",
		Offsets:     []int{1},
		LogicalChannel: gdtf.LogicalChannel{
			Attribute: "Gobo1",
			ChannelFunctions: []gdtf.ChannelFunction{
				{Name: "Open", DMXFrom: gdtf.NewValue(0, 1), Default: gdtf.NewValue(0, 1)},
				{Name: "Gobo A", DMXFrom: gdtf.NewValue(64, 1), Default: gdtf.NewValue(64, 1)},
			},
		},
	}
	env := basicEnv(ch)
	env.Values["Gobo"] = Home()

	// second function spans [64,255]; value=1.0 should land at 255
	val, ok := Discrete(1, 1.0).ToDMX(env, "Gobo")
	require.True(t, ok)
	assert.Equal(t, uint64(255), val.Raw)

	// value=0.0 should land at the function's dmx_from (64)
	val, ok = Discrete(1, 0.0).ToDMX(env, "Gobo")
	require.True(t, ok)
	assert.Equal(t, uint64(64), val.Raw)
}

func TestToDMXGrandMasterAppliesAfterRelation(t *testing.T) {
	ch := dimmerChannel()
	ch.LogicalChannel.Master = gdtf.MasterGrand
	ch.LogicalChannel.ChannelFunctions[0].Default = gdtf.NewValue(255, 1)
	env := basicEnv(ch)
	env.GrandMaster = 0.5

	val, ok := Home().ToDMX(env, "Dimmer")
	require.True(t, ok)
	assert.InDelta(t, 0.5, val.ToF32(), 0.01)
}

func TestToDMXSnapLogicalChannelPicksSide(t *testing.T) {
	ch := dimmerChannel()
	ch.LogicalChannel.Snap = true
	env := basicEnv(ch)

	a := Discrete(0, 0.0)
	b := Discrete(0, 1.0)

	val, ok := MixOf(a, b, 0.49).ToDMX(env, "Dimmer")
	require.True(t, ok)
	assert.Equal(t, uint64(0), val.Raw)

	val, ok = MixOf(a, b, 0.51).ToDMX(env, "Dimmer")
	require.True(t, ok)
	assert.Equal(t, uint64(255), val.Raw)
}

func TestEqualIgnoresPresetState(t *testing.T) {
	id := PresetID{FeatureGroup: gdtf.FeatureGroupIntensity, ID: 1}
	a := Preset(id, nil)
	b := Preset(id, &PresetState{})
	assert.True(t, a.Equal(b))
}

func TestPresetIDString(t *testing.T) {
	id := PresetID{FeatureGroup: gdtf.FeatureGroupColor, ID: 7}
	assert.Equal(t, "Color.7", id.String())
}
