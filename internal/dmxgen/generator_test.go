package dmxgen

import (
	"testing"

	"github.com/demexconsole/console/internal/arbiter"
	"github.com/demexconsole/console/internal/fixture"
	"github.com/demexconsole/console/internal/gdtf"
	"github.com/demexconsole/console/internal/preset"
	"github.com/demexconsole/console/internal/valuetree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dimmerType() *gdtf.Type {
	ch := gdtf.Channel{
		ChannelName: "Dimmer",
		Offsets:     []int{1},
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

type fakeQueryProvider struct{}

func (fakeQueryProvider) QueryFor(fixtureID uint32) arbiter.Query {
	return fakeQuery{}
}

type fakeQuery struct{}

func (fakeQuery) ProgrammerValue(channelName string) (valuetree.Value, bool) {
	return valuetree.Discrete(0, 1.0), true
}
func (fakeQuery) Executor(id uint32) (arbiter.Executor, bool) { return nil, false }
func (fakeQuery) LastStompSource() *arbiter.StompSource       { return nil }

func TestGenerateWritesResolvedDMXValue(t *testing.T) {
	fixtures := fixture.NewStore()
	_, err := fixtures.Patch("Dimmer 1", dimmerType(), "Standard", 3, 10)
	require.NoError(t, err)

	presets := preset.NewStore()
	g := NewGenerator()

	dirty := g.Generate(fixtures, fakeQueryProvider{}, presets, false)
	require.Contains(t, dirty, uint16(3))

	frame, ok := g.Frame(3)
	require.True(t, ok)
	assert.Equal(t, byte(255), frame[9])
}

func TestGenerateSecondUnchangedFrameIsNotDirty(t *testing.T) {
	fixtures := fixture.NewStore()
	_, err := fixtures.Patch("Dimmer 1", dimmerType(), "Standard", 1, 1)
	require.NoError(t, err)

	presets := preset.NewStore()
	g := NewGenerator()

	g.Generate(fixtures, fakeQueryProvider{}, presets, false)
	dirty := g.Generate(fixtures, fakeQueryProvider{}, presets, false)
	assert.Empty(t, dirty)
}

func TestGenerateForceAlwaysReportsDirty(t *testing.T) {
	fixtures := fixture.NewStore()
	_, err := fixtures.Patch("Dimmer 1", dimmerType(), "Standard", 1, 1)
	require.NoError(t, err)

	presets := preset.NewStore()
	g := NewGenerator()

	g.Generate(fixtures, fakeQueryProvider{}, presets, false)
	dirty := g.Generate(fixtures, fakeQueryProvider{}, presets, true)
	assert.Contains(t, dirty, uint16(1))
}

func TestGenerateSkipsVirtualChannels(t *testing.T) {
	ch := gdtf.Channel{ChannelName: "Virtual", Offsets: nil}
	mode := gdtf.Mode{Name: "Standard", Channels: []gdtf.Channel{ch}}
	ft := &gdtf.Type{Name: "Virtual Fixture", Modes: []gdtf.Mode{mode}}

	fixtures := fixture.NewStore()
	_, err := fixtures.Patch("V1", ft, "Standard", 1, 1)
	require.NoError(t, err)

	presets := preset.NewStore()
	g := NewGenerator()

	assert.NotPanics(t, func() {
		g.Generate(fixtures, fakeQueryProvider{}, presets, false)
	})
}
