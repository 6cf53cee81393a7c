package preset

import (
	"testing"

	"github.com/demexconsole/console/internal/fixture"
	"github.com/demexconsole/console/internal/gdtf"
	"github.com/demexconsole/console/internal/valuetree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dimmerType() *gdtf.Type {
	ch := gdtf.Channel{
		ChannelName: "Dimmer",
		Offsets:     []int{0},
		LogicalChannel: gdtf.LogicalChannel{
			ChannelFunctions: []gdtf.ChannelFunction{
				{Attribute: "Dimmer", DMXFrom: gdtf.NewValue(0, 1), Default: gdtf.NewValue(0, 1)},
			},
		},
	}
	mode := gdtf.Mode{Name: "Standard", Channels: []gdtf.Channel{ch}}
	return &gdtf.Type{Name: "Generic Dimmer", Modes: []gdtf.Mode{mode}}
}

func TestRecordPresetCapturesNonHomeIntensityValues(t *testing.T) {
	fixtures := fixture.NewStore()
	f, err := fixtures.Patch("Dimmer 1", dimmerType(), "Standard", 0, 1)
	require.NoError(t, err)

	require.NoError(t, f.SetProgrammerValue("Dimmer", valuetree.Discrete(0, 0.75)))

	sel := fixture.NewSelection([]uint32{f.ID()})
	store := NewStore()
	id := valuetree.PresetID{FeatureGroup: gdtf.FeatureGroupIntensity, ID: 1}

	require.NoError(t, store.RecordPreset(fixtures, sel, id, "", 1.0))

	p, err := store.Preset(id)
	require.NoError(t, err)
	data := p.Data().(*DefaultData)
	require.Contains(t, data.Values, f.ID())
	assert.Contains(t, data.Values[f.ID()], "Dimmer")
}

func TestRecordPresetSkipsHomeValues(t *testing.T) {
	fixtures := fixture.NewStore()
	f, err := fixtures.Patch("Dimmer 1", dimmerType(), "Standard", 0, 1)
	require.NoError(t, err)

	sel := fixture.NewSelection([]uint32{f.ID()})
	store := NewStore()
	id := valuetree.PresetID{FeatureGroup: gdtf.FeatureGroupIntensity, ID: 1}

	require.NoError(t, store.RecordPreset(fixtures, sel, id, "", 1.0))

	p, err := store.Preset(id)
	require.NoError(t, err)
	data := p.Data().(*DefaultData)
	assert.Empty(t, data.Values)
}

func TestRecordPresetAlreadyExistsErrors(t *testing.T) {
	fixtures := fixture.NewStore()
	sel := fixture.NewSelection(nil)
	store := NewStore()
	id := valuetree.PresetID{FeatureGroup: gdtf.FeatureGroupIntensity, ID: 1}

	require.NoError(t, store.RecordPreset(fixtures, sel, id, "", 1.0))
	err := store.RecordPreset(fixtures, sel, id, "", 1.0)
	require.Error(t, err)
}

func TestApplyPresetSetsProgrammerValueToPresetLeaf(t *testing.T) {
	fixtures := fixture.NewStore()
	f, err := fixtures.Patch("Dimmer 1", dimmerType(), "Standard", 0, 1)
	require.NoError(t, err)
	require.NoError(t, f.SetProgrammerValue("Dimmer", valuetree.Discrete(0, 0.75)))

	sel := fixture.NewSelection([]uint32{f.ID()})
	store := NewStore()
	id := valuetree.PresetID{FeatureGroup: gdtf.FeatureGroupIntensity, ID: 1}
	require.NoError(t, store.RecordPreset(fixtures, sel, id, "", 1.0))

	f.Home(false)
	require.NoError(t, store.ApplyPreset(id, fixtures, sel))

	v, ok := f.GetProgrammerValue("Dimmer")
	require.True(t, ok)
	assert.Equal(t, valuetree.KindPreset, v.Kind)
}

func TestResolvePresetReturnsRecordedValue(t *testing.T) {
	fixtures := fixture.NewStore()
	f, err := fixtures.Patch("Dimmer 1", dimmerType(), "Standard", 0, 1)
	require.NoError(t, err)
	require.NoError(t, f.SetProgrammerValue("Dimmer", valuetree.Discrete(0, 0.75)))

	sel := fixture.NewSelection([]uint32{f.ID()})
	store := NewStore()
	id := valuetree.PresetID{FeatureGroup: gdtf.FeatureGroupIntensity, ID: 1}
	require.NoError(t, store.RecordPreset(fixtures, sel, id, "", 1.0))

	mode, _ := dimmerType().Mode("Standard")
	env := &valuetree.Env{FixtureID: f.ID(), Mode: mode, Channel: &mode.Channels[0], GrandMaster: 1.0}

	v, ok := store.ResolvePreset(id, env, "Dimmer", nil)
	require.True(t, ok)
	assert.Equal(t, valuetree.KindDiscrete, v.Kind)
}

func TestDeletePresetRangeRequiresSameFeatureGroup(t *testing.T) {
	store := NewStore()
	from := valuetree.PresetID{FeatureGroup: gdtf.FeatureGroupIntensity, ID: 1}
	to := valuetree.PresetID{FeatureGroup: gdtf.FeatureGroupColor, ID: 2}
	_, err := store.DeletePresetRange(from, to)
	require.Error(t, err)
}

func TestNextPresetIDScopedByFeatureGroup(t *testing.T) {
	fixtures := fixture.NewStore()
	sel := fixture.NewSelection(nil)
	store := NewStore()

	id1 := valuetree.PresetID{FeatureGroup: gdtf.FeatureGroupIntensity, ID: 1}
	require.NoError(t, store.RecordPreset(fixtures, sel, id1, "", 1.0))

	assert.Equal(t, uint32(2), store.NextPresetID(gdtf.FeatureGroupIntensity))
	assert.Equal(t, uint32(1), store.NextPresetID(gdtf.FeatureGroupColor))
}

func TestGroupRecordAndLookup(t *testing.T) {
	store := NewStore()
	sel := fixture.NewSelection([]uint32{1, 2})
	require.NoError(t, store.RecordGroup(1, "", sel))

	g, err := store.Group(1)
	require.NoError(t, err)
	assert.Equal(t, "Group 1", g.Name())
}

func TestMacroLifecycle(t *testing.T) {
	store := NewStore()
	require.NoError(t, store.CreateMacro(1, "", "home all"))

	m, err := store.Macro(1)
	require.NoError(t, err)
	assert.Equal(t, "home all", m.Command())

	require.NoError(t, store.RenameMacro(1, "Blackout"))
	m, _ = store.Macro(1)
	assert.Equal(t, "Blackout", m.Name())

	require.NoError(t, store.DeleteMacro(1))
	_, err = store.Macro(1)
	require.Error(t, err)
}
