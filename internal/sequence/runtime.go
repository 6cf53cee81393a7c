package sequence

import (
	"time"

	"github.com/demexconsole/console/internal/gdtf"
	"github.com/demexconsole/console/internal/preset"
	"github.com/demexconsole/console/internal/valuetree"
)

// stateKind discriminates a Runtime's state: Stopped, FirstCue(started)
// or Cue(prevStarted, started, idx).
type stateKind int

const (
	stateStopped stateKind = iota
	stateFirstCue
	stateCue
)

// runtimeState is a flat struct standing in for a payload-carrying sum
// type, which Go has no direct equivalent of.
type runtimeState struct {
	kind        stateKind
	prevStarted time.Time
	started     time.Time
	cueIdx      int
}

// whenStarted returns (prevStarted, started, cueIdx, isFirstCue, ok).
func (s runtimeState) whenStarted() (prevStarted time.Time, started time.Time, cueIdx int, isFirstCue bool, ok bool) {
	switch s.kind {
	case stateFirstCue:
		return time.Time{}, s.started, 0, true, true
	case stateCue:
		return s.prevStarted, s.started, s.cueIdx, false, true
	default:
		return time.Time{}, time.Time{}, 0, false, false
	}
}

// Runtime drives a Sequence's fade/crossfade state machine: which cue is
// active, how long it has been running, and what each fixture channel
// should currently read.
type Runtime struct {
	sequenceID uint32
	state      runtimeState
}

// NewRuntime builds a stopped runtime bound to sequenceID.
func NewRuntime(sequenceID uint32) *Runtime {
	return &Runtime{sequenceID: sequenceID}
}

func (r *Runtime) SequenceID() uint32 { return r.sequenceID }

// IsStarted reports whether the runtime is on a cue (as opposed to stopped).
func (r *Runtime) IsStarted() bool { return r.state.kind != stateStopped }

// CurrentCue returns the active cue's position, if started.
func (r *Runtime) CurrentCue() (int, bool) {
	switch r.state.kind {
	case stateFirstCue:
		return 0, true
	case stateCue:
		return r.state.cueIdx, true
	default:
		return 0, false
	}
}

// Start begins the runtime at its first cue, with cue-update time pushed
// back by timeOffset seconds (used to resume a paused runtime in place).
func (r *Runtime) Start(timeOffset float32) {
	r.state = runtimeState{
		kind:    stateFirstCue,
		started: now().Add(-durationFromSecs(timeOffset)),
	}
}

// Stop halts the runtime.
func (r *Runtime) Stop() { r.state = runtimeState{kind: stateStopped} }

// ShouldAutoRestart reports whether the sequence's first cue is a Follow
// cue, meaning the runtime should wrap around rather than genuinely stop.
func (r *Runtime) ShouldAutoRestart(seq *Sequence) bool {
	cues := seq.Cues()
	if len(cues) == 0 {
		return false
	}
	return cues[0].Trigger == FollowTrigger
}

// NextCue advances to the next cue (wrapping or restarting per
// seq.StopBehavior), returning true if the runtime stopped as a result.
func (r *Runtime) NextCue(seq *Sequence, timeOffset float32) bool {
	_, started, cueIdx, _, ok := r.state.whenStarted()
	if !ok {
		return false
	}

	cues := seq.Cues()
	if cueIdx == len(cues)-1 && !r.ShouldAutoRestart(seq) {
		if seq.StopBehavior() == Restart {
			r.state = runtimeState{kind: stateCue, prevStarted: started, started: now(), cueIdx: 0}
			return false
		}
		r.Stop()
		return true
	}

	nextIdx := (cueIdx + 1) % len(cues)
	r.state = runtimeState{
		kind:        stateCue,
		prevStarted: started,
		started:     now().Add(-durationFromSecs(timeOffset)),
		cueIdx:      nextIdx,
	}
	return false
}

// PreviousCueIdx returns the cue the active cue crossfades from, or false
// if there is none (the very first cue of a non-restarting sequence).
func (r *Runtime) PreviousCueIdx(seq *Sequence) (int, bool) {
	_, _, cueIdx, isFirstCue, ok := r.state.whenStarted()
	if !ok {
		return 0, false
	}

	if cueIdx != 0 {
		return cueIdx - 1, true
	}

	if !isFirstCue && (r.ShouldAutoRestart(seq) || seq.StopBehavior() == Restart) {
		return len(seq.Cues()) - 1, true
	}
	return 0, false
}

// NextCueIdx returns the cue the runtime will auto-advance to, if any.
func (r *Runtime) NextCueIdx(seq *Sequence) (int, bool) {
	_, _, cueIdx, _, ok := r.state.whenStarted()
	if !ok {
		return 0, false
	}

	cues := seq.Cues()
	if cueIdx == len(cues)-1 {
		if r.ShouldAutoRestart(seq) {
			return 0, true
		}
		return 0, false
	}
	return cueIdx + 1, true
}

// Update advances or auto-stops the runtime according to elapsed time and
// the active cue's in/out timing, returning true if it stopped itself.
func (r *Runtime) Update(seq *Sequence, speedMultiplier float32, presets *preset.Store) bool {
	_, started, cueIdx, _, ok := r.state.whenStarted()
	if !ok {
		return false
	}
	cues := seq.Cues()
	if len(cues) == 0 {
		return false
	}

	delta := float32(now().Sub(started).Seconds()) * speedMultiplier

	prevCueIdx, hasPrev := r.PreviousCueIdx(seq)
	currentCue := cues[cueIdx]
	nextCueIdx, hasNext := r.NextCueIdx(seq)

	var prevOutTime float32
	if hasPrev {
		prevOutTime = cues[prevCueIdx].OutTime(presets)
	}
	cueTime := prevOutTime + currentCue.InTime(presets)

	if delta > cueTime {
		if hasNext {
			if cues[nextCueIdx].Trigger == FollowTrigger {
				r.NextCue(seq, 0.0)
			}
		} else if seq.StopBehavior() == AutoStop && delta > cueTime+currentCue.OutTime(presets) {
			r.Stop()
			return true
		}
	}
	return false
}

// ChannelValue resolves channelName on fixtureID to its current fade-in or
// crossfade value. The returned alpha is either the first cue's fade-in
// progress or, on later cues, a flat dimmer-intensity scaler — the
// crossfade progress itself is baked into a Mix leaf between the previous
// and current cue's values.
func (r *Runtime) ChannelValue(
	seq *Sequence,
	fixtureID uint32,
	channel *gdtf.Channel,
	speedMultiplier, intensityMultiplier float32,
	presets *preset.Store,
) (valuetree.Value, float32, bool) {
	prevStarted, started, cueIdx, isFirstCue, ok := r.state.whenStarted()
	if !ok {
		return valuetree.Value{}, 0, false
	}

	cues := seq.Cues()
	if len(cues) == 0 {
		return valuetree.Value{}, 0, false
	}

	feature, _ := gdtf.AttributeFeature(channel.LogicalChannel.Attribute)
	isDimmer := feature == gdtf.FeatureDimmer

	cue := cues[cueIdx]
	prevCueIdx, hasPrev := r.PreviousCueIdx(seq)

	delta := float32(now().Sub(started).Seconds()) * speedMultiplier
	delta -= cue.OffsetForFixture(fixtureID, presets)
	if delta < 0 {
		delta = 0
	}

	shouldSnap := cue.ShouldSnapChannelValue(fixtureID, channel.ChannelName)

	if isFirstCue {
		var fade float32
		if delta < cue.InDelay {
			fade = 0
		} else {
			fade = min32((delta-cue.InDelay)/cue.InFade, 1.0)
		}

		if isDimmer {
			fade *= intensityMultiplier
		}

		if shouldSnap {
			if fade >= cue.SnapPercent {
				fade = 1.0
			} else {
				fade = 0.0
			}
		}

		startedCopy := started
		v, ok := cue.ChannelValue(fixtureID, channel.ChannelName, presets, &startedCopy)
		if !ok {
			return valuetree.Value{}, 0, false
		}
		return v, fade, true
	}

	if !hasPrev {
		return valuetree.Value{}, 0, false
	}

	prevCue := cues[prevCueIdx]

	var mix float32
	if delta < prevCue.OutDelay+cue.InDelay {
		mix = 0
	} else {
		mix = min32((delta-(cue.InDelay+prevCue.OutDelay))/(cue.InFade+prevCue.OutFade), 1.0)
	}

	if shouldSnap {
		if mix >= cue.SnapPercent {
			mix = 1.0
		} else {
			mix = 0.0
		}
	}

	fade := float32(1.0)
	if isDimmer {
		fade = intensityMultiplier
	}

	startedCopy := started
	currentValue, currentOK := cue.ChannelValue(fixtureID, channel.ChannelName, presets, &startedCopy)
	if !currentOK {
		v, ok := prevCue.ChannelValue(fixtureID, channel.ChannelName, presets, &startedCopy)
		if !ok {
			return valuetree.Value{}, 0, false
		}
		return v, (1.0 - mix) * fade, true
	}

	var prevValue valuetree.Value
	if !prevStarted.IsZero() {
		prevCopy := prevStarted
		if v, ok := prevCue.ChannelValue(fixtureID, channel.ChannelName, presets, &prevCopy); ok {
			prevValue = v
		} else {
			prevValue = valuetree.Home()
		}
	} else {
		if v, ok := prevCue.ChannelValue(fixtureID, channel.ChannelName, presets, &startedCopy); ok {
			prevValue = v
		} else {
			prevValue = valuetree.Home()
		}
	}

	return valuetree.MixOf(prevValue, currentValue, mix), fade, true
}

func min32(a, b float32) float32 {
	if a < b {
		return a
	}
	return b
}

func durationFromSecs(secs float32) time.Duration {
	return time.Duration(secs * float32(time.Second))
}

// now is overridable in tests.
var now = time.Now
