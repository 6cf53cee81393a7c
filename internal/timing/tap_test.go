package timing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTapChainFirstTapIsNoop(t *testing.T) {
	c := NewTapChain(10)
	base := time.Now()
	bpm := c.Tap(base, 120.0)
	assert.InDelta(t, float32(120.0), bpm, 1e-6)
}

func TestTapChainEvictsOldestWhenFull(t *testing.T) {
	c := NewTapChain(2)
	base := time.Now()

	c.Tap(base, 120.0)
	c.Tap(base.Add(500*time.Millisecond), 120.0)
	c.Tap(base.Add(1*time.Second), 120.0)

	last, ok := c.LastTap()
	assert.True(t, ok)
	assert.Equal(t, base.Add(1*time.Second), last)
}

func TestTapChainLastTapEmpty(t *testing.T) {
	c := NewTapChain(10)
	_, ok := c.LastTap()
	assert.False(t, ok)
}
