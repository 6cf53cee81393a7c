package effect

import (
	"math"
	"time"

	"github.com/demexconsole/console/internal/sequence"
	"github.com/demexconsole/console/internal/timing"
	"github.com/demexconsole/console/internal/valuetree"
)

// Keyframe is one recorded value set within a layer, starting at a
// fraction of the layer's total duration and blending into the next
// keyframe per curve.
type Keyframe struct {
	StartingPoint float32
	Values        map[uint32]map[string]valuetree.Value
	Curve         sequence.FadingFunction
}

// NewKeyframe builds a keyframe at startingPoint (a fraction of 1/numKeyframes,
// matching absoluteStartingPoint's convention).
func NewKeyframe(startingPoint float32, values map[uint32]map[string]valuetree.Value, curve sequence.FadingFunction) Keyframe {
	return Keyframe{StartingPoint: startingPoint, Values: values, Curve: curve}
}

// AbsoluteStartingPoint maps this keyframe's local starting point into the
// layer's overall 0..1 timeline, given its position among numKeyframes
// evenly-spaced slots.
func (k Keyframe) AbsoluteStartingPoint(numKeyframes, idx int) float32 {
	defaultDuration := 1.0 / float32(numKeyframes)
	return (k.StartingPoint / float32(numKeyframes)) + float32(idx)*defaultDuration
}

// Value returns the recorded value for fixtureID/channel, ignoring curve.
func (k Keyframe) Value(fixtureID uint32, channel string) (valuetree.Value, bool) {
	channels, ok := k.Values[fixtureID]
	if !ok {
		return valuetree.Value{}, false
	}
	v, ok := channels[channel]
	return v, ok
}

// ValueAt returns the recorded value plus this keyframe's curve weight at
// local time t (0..1), used to decide how much to blend toward the next
// keyframe.
func (k Keyframe) ValueAt(fixtureID uint32, channel string, t float32) (valuetree.Value, float32, bool) {
	v, ok := k.Value(fixtureID, channel)
	if !ok {
		return valuetree.Value{}, 0, false
	}
	return v, k.Curve.Apply(t), true
}

func (k Keyframe) affectedFixtures() []uint32 {
	out := make([]uint32, 0, len(k.Values))
	for id := range k.Values {
		out = append(out, id)
	}
	return out
}

func (k Keyframe) affectedChannelsForFixture(fixtureID uint32) []string {
	channels, ok := k.Values[fixtureID]
	if !ok {
		return nil
	}
	out := make([]string, 0, len(channels))
	for name := range channels {
		out = append(out, name)
	}
	return out
}

// Layer is an ordered list of keyframes sharing one timeline.
type Layer struct {
	Keyframes []Keyframe
}

// NewLayer builds a layer from keyframes.
func NewLayer(keyframes []Keyframe) Layer { return Layer{Keyframes: keyframes} }

// Value resolves channel's value at local time t (0..1) by locating the
// keyframe pair t falls between and blending per the found keyframe's
// curve.
func (l Layer) Value(fixtureID uint32, channel string, t float32) (valuetree.Value, bool) {
	n := len(l.Keyframes)
	if n == 0 {
		return valuetree.Value{}, false
	}

	idx := n - 1
	for i := 0; i < n-1; i++ {
		if l.Keyframes[i+1].AbsoluteStartingPoint(n, i+1) > t {
			idx = i
			break
		}
	}

	keyframe := l.Keyframes[idx]
	start := keyframe.AbsoluteStartingPoint(n, idx)

	var end float32 = 1.0
	if idx+1 < n {
		end = l.Keyframes[idx+1].AbsoluteStartingPoint(n, idx+1)
	}

	span := end - start
	var localT float32
	if span != 0 {
		localT = (t - start) / span
	}

	value, fade, ok := keyframe.ValueAt(fixtureID, channel, localT)
	if !ok {
		return valuetree.Value{}, false
	}

	if fade == 0 {
		return value, true
	}

	nextIdx := idx + 1
	if idx >= n-1 {
		nextIdx = 0
	}
	nextValue, ok := l.Keyframes[nextIdx].Value(fixtureID, channel)
	if !ok {
		return valuetree.Value{}, false
	}

	return valuetree.MixOf(value, nextValue, fade), true
}

func (l Layer) affectedFixtures() map[uint32]struct{} {
	out := make(map[uint32]struct{})
	for _, kf := range l.Keyframes {
		for _, id := range kf.affectedFixtures() {
			out[id] = struct{}{}
		}
	}
	return out
}

func (l Layer) affectedChannelsForFixture(fixtureID uint32) []string {
	var out []string
	for _, kf := range l.Keyframes {
		out = append(out, kf.affectedChannelsForFixture(fixtureID)...)
	}
	return out
}

// Effect is a set of layers sharing a timeline, each independently resolved
// per fixture/channel and the first non-empty result winning.
type Effect struct {
	Layers []Layer
}

// FromRecordedData builds a single-layer, single-keyframe effect directly
// from a recorded fixture/channel value map — used to seed a keyframe
// effect from the programmer's current state.
func FromRecordedData(data map[uint32]map[string]valuetree.Value) *Effect {
	kf := NewKeyframe(0.0, data, sequence.FadingLinear)
	return &Effect{Layers: []Layer{NewLayer([]Keyframe{kf})}}
}

// AffectedFixtures returns every fixture any layer references.
func (e *Effect) AffectedFixtures() []uint32 {
	seen := make(map[uint32]struct{})
	for _, l := range e.Layers {
		for id := range l.affectedFixtures() {
			seen[id] = struct{}{}
		}
	}
	out := make([]uint32, 0, len(seen))
	for id := range seen {
		out = append(out, id)
	}
	return out
}

// AffectedChannelsForFixture returns every channel name any layer drives
// for fixtureID.
func (e *Effect) AffectedChannelsForFixture(fixtureID uint32) []string {
	var out []string
	for _, l := range e.Layers {
		out = append(out, l.affectedChannelsForFixture(fixtureID)...)
	}
	return out
}

// Value resolves fixtureID/channel at startedElapsed seconds into the
// effect's run. The timeline position is startedElapsed scaled by
// speedMultiplier, minus phaseOffsetDeg in radians, wrapped to one 2*pi
// cycle and mapped onto 0..1.
func (e *Effect) Value(fixtureID uint32, channel string, startedElapsed float64, phaseOffsetDeg, speedMultiplier float32) (valuetree.Value, bool) {
	timeAdjusted := float32(startedElapsed)*speedMultiplier - degreesToRadians(phaseOffsetDeg)
	twoPi := float32(2.0 * math.Pi)
	t := modF32(timeAdjusted, twoPi) / twoPi

	for _, l := range e.Layers {
		if v, ok := l.Value(fixtureID, channel, t); ok {
			return v, true
		}
	}
	return valuetree.Value{}, false
}

func modF32(a, m float32) float32 {
	return a - m*float32(math.Floor(float64(a/m)))
}

// Runtime drives an Effect's clock independent of any preset, for direct
// binding into an executor. Uses the same clock derivation as
// FeatureEffectRuntime, but without the per-attribute channel-function scan
// (keyframe effects are already channel-specific).
type Runtime struct {
	effect  *Effect
	speed   Speed
	phase   Phase
	started *time.Time
}

// NewRuntime builds a stopped keyframe effect runtime.
func NewRuntime(effect *Effect, speed Speed, phase Phase) *Runtime {
	return &Runtime{effect: effect, speed: speed, phase: phase}
}

func (r *Runtime) Effect() *Effect  { return r.effect }
func (r *Runtime) IsStarted() bool  { return r.started != nil }

// Start begins the runtime's clock, offset backward by timeOffset seconds.
func (r *Runtime) Start(timeOffset float32) {
	t := time.Now().Add(-time.Duration(timeOffset * float32(time.Second)))
	r.started = &t
}

// Stop halts the runtime's clock.
func (r *Runtime) Stop() { r.started = nil }

// ChannelValue resolves fixtureID/channelName against the runtime's clock.
func (r *Runtime) ChannelValue(fixtureID uint32, channelName string, fixtureOffset int, timingStore *timing.Store) (valuetree.Value, bool) {
	if !r.IsStarted() {
		return valuetree.Value{}, false
	}

	phaseOffset := r.phase.Resolve(fixtureOffset)
	startedElapsed := time.Since(*r.started).Seconds()

	bpm, adjustment := r.speed.EffectiveBPM(timingStore, *r.started)
	startedElapsed += adjustment

	bps := float64(bpm) / 60.0
	speedMultiplier := float32(2.0*math.Pi) * float32(bps)

	return r.effect.Value(fixtureID, channelName, startedElapsed, phaseOffset, speedMultiplier)
}
