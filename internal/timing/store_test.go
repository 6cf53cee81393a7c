package timing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewStorePreSeedsSpeedMasters(t *testing.T) {
	s := NewStore()
	assert.Len(t, s.SpeedMasters(), defaultSpeedMasterCount)

	sm, err := s.SpeedMaster(0)
	require.NoError(t, err)
	assert.InDelta(t, DefaultBPM, sm.BPM(), 1e-6)
}

func TestSpeedMasterUnknownIDErrors(t *testing.T) {
	s := NewStore()
	_, err := s.SpeedMaster(999)
	require.Error(t, err)
}

func TestStoreTapDelegatesToSpeedMaster(t *testing.T) {
	s := NewStore()
	require.NoError(t, s.Tap(0, time.Now()))

	sm, _ := s.SpeedMaster(0)
	_, ok := sm.Interval()
	assert.True(t, ok)
}

func TestStoreTapUnknownIDErrors(t *testing.T) {
	s := NewStore()
	err := s.Tap(999, time.Now())
	require.Error(t, err)
}
