package sequence

import (
	"testing"

	"github.com/demexconsole/console/internal/gdtf"
	"github.com/demexconsole/console/internal/valuetree"
)

func dimmerFixtureType() *gdtf.Type {
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

func presetIDFor(t *testing.T) valuetree.PresetID {
	t.Helper()
	return valuetree.PresetID{FeatureGroup: gdtf.FeatureGroupIntensity, ID: 1}
}
