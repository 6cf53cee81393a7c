package timing

import "time"

// DefaultBPM is the BPM a new speed master starts at.
const DefaultBPM float32 = 120.0

// SpeedMaster is a named tempo: a BPM value that can be nudged by tapping
// and queried for beat phase by effects and sequence cue timing.
type SpeedMaster struct {
	bpm      float32
	tapChain *TapChain
}

// NewSpeedMaster builds a speed master at the given BPM.
func NewSpeedMaster(bpm float32) *SpeedMaster {
	return &SpeedMaster{bpm: bpm, tapChain: NewTapChain(10)}
}

// DefaultSpeedMaster builds a speed master at DefaultBPM.
func DefaultSpeedMaster() *SpeedMaster {
	return NewSpeedMaster(DefaultBPM)
}

// BPM returns the current tempo.
func (s *SpeedMaster) BPM() float32 { return s.bpm }

// SetBPM overrides the tempo directly, independent of tapping.
func (s *SpeedMaster) SetBPM(bpm float32) { s.bpm = bpm }

// SecsPerBeat returns the duration of one beat at the current tempo.
func (s *SpeedMaster) SecsPerBeat() float32 { return 60.0 / s.bpm }

// Interval returns the instant of the last tap, if any.
func (s *SpeedMaster) Interval() (time.Time, bool) {
	return s.tapChain.LastTap()
}

// Tap registers a tap at instant, adjusting the BPM from the rolling
// average of recent tap intervals.
func (s *SpeedMaster) Tap(instant time.Time) {
	s.bpm = s.tapChain.Tap(instant, s.bpm)
}

// OnBeat reports whether now falls in the first half of the current beat,
// measured from the last tap (false with no taps).
func (s *SpeedMaster) OnBeat(now time.Time) bool {
	last, ok := s.Interval()
	if !ok {
		return false
	}
	secsPerBeat := float64(s.SecsPerBeat())
	elapsed := now.Sub(last).Seconds()
	phase := elapsed - secsPerBeat*float64(int(elapsed/secsPerBeat))
	return phase < secsPerBeat/2.0
}

// Phase returns the fractional position [0,1) within the current beat,
// measured from the last tap (0 with no taps).
func (s *SpeedMaster) Phase(now time.Time) float32 {
	last, ok := s.Interval()
	if !ok {
		return 0
	}
	secsPerBeat := float64(s.SecsPerBeat())
	if secsPerBeat <= 0 {
		return 0
	}
	elapsed := now.Sub(last).Seconds()
	mod := elapsed - secsPerBeat*float64(int(elapsed/secsPerBeat))
	return float32(mod / secsPerBeat)
}
