package show

import (
	"context"
	"testing"
	"time"

	"github.com/demexconsole/console/internal/fixture"
	"github.com/demexconsole/console/internal/gdtf"
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

func TestTickGeneratesFrameForPatchedFixture(t *testing.T) {
	fixtures := fixture.NewStore()
	f, err := fixtures.Patch("Dimmer 1", dimmerType(), "Standard", 1, 1)
	require.NoError(t, err)
	require.NoError(t, f.SetProgrammerValue("Dimmer", valuetree.Discrete(0, 1.0)))

	s := New(fixtures, nil)
	dirty := s.Tick(false)
	assert.Contains(t, dirty, uint16(1))

	frame, ok := s.Frame(1)
	require.True(t, ok)
	assert.Equal(t, byte(255), frame[0])
}

func TestTickSecondCallWithoutChangesIsNotDirty(t *testing.T) {
	fixtures := fixture.NewStore()
	_, err := fixtures.Patch("Dimmer 1", dimmerType(), "Standard", 1, 1)
	require.NoError(t, err)

	s := New(fixtures, nil)
	s.Tick(false)
	dirty := s.Tick(false)
	assert.Empty(t, dirty)
}

func TestSetTickCallbackFiresAfterEachTick(t *testing.T) {
	fixtures := fixture.NewStore()
	_, err := fixtures.Patch("Dimmer 1", dimmerType(), "Standard", 1, 1)
	require.NoError(t, err)

	s := New(fixtures, nil)

	calls := 0
	s.SetTickCallback(func(dirty []uint16, elapsed time.Duration) {
		calls++
	})
	s.Tick(false)
	assert.Equal(t, 1, calls)
}

func TestRunStopsOnContextCancel(t *testing.T) {
	fixtures := fixture.NewStore()
	s := New(fixtures, nil)
	s.SetTickRate(time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()

	time.Sleep(5 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not stop after context cancellation")
	}
}

func TestRunStopsOnExplicitStop(t *testing.T) {
	fixtures := fixture.NewStore()
	s := New(fixtures, nil)
	s.SetTickRate(time.Millisecond)

	done := make(chan struct{})
	go func() {
		s.Run(context.Background())
		close(done)
	}()

	time.Sleep(5 * time.Millisecond)
	s.Stop()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not stop after Stop()")
	}
}
