// Package timing owns tap-tempo speed masters: named BPM values that
// sequences and effects can reference for their phase clock.
package timing

import "time"

const (
	maxBeatLength    = 60.0 / 30.0
	chainResetBeats  = 2
	minTapsForNewBPM = 2
)

// TapChain averages a rolling window of tap instants into a BPM estimate,
// resetting itself whenever a gap between taps is implausibly long.
type TapChain struct {
	taps    []time.Time
	maxTaps int
}

// NewTapChain builds a chain that remembers at most maxTaps taps.
func NewTapChain(maxTaps int) *TapChain {
	if maxTaps < 1 {
		maxTaps = 10
	}
	return &TapChain{maxTaps: maxTaps}
}

// LastTap returns the most recent tap instant, if any.
func (c *TapChain) LastTap() (time.Time, bool) {
	if len(c.taps) == 0 {
		return time.Time{}, false
	}
	return c.taps[len(c.taps)-1], true
}

func (c *TapChain) beatInterval(lastBPM float32) float64 {
	return 60.0 / float64(lastBPM)
}

func (c *TapChain) chainActive(instant time.Time, lastBPM float32) bool {
	if len(c.taps) == 0 {
		return true
	}
	last := c.taps[len(c.taps)-1]
	withinMaxBeat := last.Add(time.Duration(maxBeatLength * float64(time.Second))).After(instant)
	withinResetWindow := last.Add(time.Duration(c.beatInterval(lastBPM) * chainResetBeats * float64(time.Second))).After(instant)
	return withinMaxBeat && withinResetWindow
}

func (c *TapChain) averageBPM() float32 {
	if len(c.taps) < 2 {
		return 0
	}
	var sum float32
	for i := 1; i < len(c.taps); i++ {
		d := c.taps[i].Sub(c.taps[i-1])
		sum += float32(60.0 / d.Seconds())
	}
	return sum / float32(len(c.taps)-1)
}

// Tap records a tap at instant and returns the new (or unchanged) BPM,
// starting a fresh chain if the previous tap is too old to belong to the
// same tempo.
func (c *TapChain) Tap(instant time.Time, lastBPM float32) float32 {
	if !c.chainActive(instant, lastBPM) {
		c.taps = c.taps[:0]
	}

	if len(c.taps) == 0 {
		c.taps = append(c.taps, instant)
		return lastBPM
	}

	if len(c.taps) == c.maxTaps {
		c.taps = c.taps[1:]
	}
	c.taps = append(c.taps, instant)

	if len(c.taps) >= minTapsForNewBPM {
		lastBPM = c.averageBPM()
	}
	return lastBPM
}
