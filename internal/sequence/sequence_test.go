package sequence

import (
	"testing"

	"github.com/demexconsole/console/internal/fixture"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDefaultCue(major, minor uint32) *Cue {
	return NewCue(Idx{Major: major, Minor: minor}, NewDefaultData(), fixture.NewSelection(nil), 3.0, 0, 1.0, Timing{}, ManualTrigger)
}

func TestSequenceAddCueOrdersByIdx(t *testing.T) {
	seq := NewSequence(1, "")
	require.NoError(t, seq.AddCue(newDefaultCue(2, 0)))
	require.NoError(t, seq.AddCue(newDefaultCue(1, 0)))
	require.NoError(t, seq.AddCue(newDefaultCue(1, 5)))

	cues := seq.Cues()
	require.Len(t, cues, 3)
	assert.Equal(t, Idx{Major: 1, Minor: 0}, cues[0].Idx)
	assert.Equal(t, Idx{Major: 1, Minor: 5}, cues[1].Idx)
	assert.Equal(t, Idx{Major: 2, Minor: 0}, cues[2].Idx)
}

func TestSequenceAddCueRejectsDuplicateIdx(t *testing.T) {
	seq := NewSequence(1, "")
	require.NoError(t, seq.AddCue(newDefaultCue(1, 0)))
	err := seq.AddCue(newDefaultCue(1, 0))
	require.Error(t, err)
}

func TestSequenceRemoveCue(t *testing.T) {
	seq := NewSequence(1, "")
	require.NoError(t, seq.AddCue(newDefaultCue(1, 0)))
	require.NoError(t, seq.RemoveCue(Idx{Major: 1, Minor: 0}))

	_, err := seq.Cue(Idx{Major: 1, Minor: 0})
	require.Error(t, err)
}

func TestSequencePositionOf(t *testing.T) {
	seq := NewSequence(1, "")
	require.NoError(t, seq.AddCue(newDefaultCue(1, 0)))
	require.NoError(t, seq.AddCue(newDefaultCue(2, 0)))

	pos, ok := seq.PositionOf(Idx{Major: 2, Minor: 0})
	require.True(t, ok)
	assert.Equal(t, 1, pos)
}

func TestSequenceDefaultName(t *testing.T) {
	seq := NewSequence(7, "")
	assert.Equal(t, "Sequence 7", seq.Name())
}

func TestSequenceDefaultStopBehaviorIsManual(t *testing.T) {
	seq := NewSequence(1, "")
	assert.Equal(t, ManualStop, seq.StopBehavior())
}
