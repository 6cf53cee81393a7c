package effect

import (
	"math"
	"time"

	"github.com/demexconsole/console/internal/timing"
	"github.com/demexconsole/console/internal/valuetree"
)

// Phase staggers an effect's clock across a selection's fixture-offset
// index, in degrees per offset step.
type Phase struct {
	DegreesPerOffset float32
}

// Resolve returns the phase offset (degrees) for a fixture at offsetIdx.
func (p Phase) Resolve(offsetIdx int) float32 {
	return p.DegreesPerOffset * float32(offsetIdx)
}

// FeatureEffectRuntime drives a Parametric effect's attribute values from a
// BPM/phase clock, satisfying internal/preset.EffectRuntime so a
// FeatureEffect preset can wrap one.
type FeatureEffectRuntime struct {
	effect  *Parametric
	speed   Speed
	phase   Phase
	started *time.Time
	timing  *timing.Store
}

// NewFeatureEffectRuntime builds a stopped runtime driving effect at speed,
// staggered across fixtures by phase, resolving SpeedMaster-backed speeds
// against timingStore.
func NewFeatureEffectRuntime(effect *Parametric, speed Speed, phase Phase, timingStore *timing.Store) *FeatureEffectRuntime {
	return &FeatureEffectRuntime{effect: effect, speed: speed, phase: phase, timing: timingStore}
}

func (r *FeatureEffectRuntime) Effect() *Parametric { return r.effect }

// IsStarted reports whether the runtime has an active clock.
func (r *FeatureEffectRuntime) IsStarted() bool { return r.started != nil }

// Start begins the runtime's clock, offset backward by timeOffset seconds.
func (r *FeatureEffectRuntime) Start(timeOffset float32) {
	t := time.Now().Add(-time.Duration(timeOffset * float32(time.Second)))
	r.started = &t
}

// Stop halts the runtime's clock.
func (r *FeatureEffectRuntime) Stop() { r.started = nil }

// Attributes returns the GDTF attributes this effect drives.
func (r *FeatureEffectRuntime) Attributes() []string { return r.effect.Attributes() }

// ChannelValue resolves channelName's current value, deriving the channel's
// active function attribute from env.Channel and looking up the matching
// channel function index so the result addresses the value tree correctly.
func (r *FeatureEffectRuntime) ChannelValue(channelName string, env *valuetree.Env, fixtureOffset int, started time.Time) (valuetree.Value, bool) {
	if !r.IsStarted() {
		return valuetree.Value{}, false
	}

	phaseOffset := r.phase.Resolve(fixtureOffset)
	startedElapsed := time.Since(started).Seconds()

	bpm, adjustment := r.speed.EffectiveBPM(r.timing, started)
	startedElapsed += adjustment

	bps := float64(bpm) / 60.0
	speedMultiplier := float32(2.0*math.Pi) * float32(bps)

	t := startedElapsed - float64(degreesToRadians(phaseOffset))

	if env.Channel == nil {
		return valuetree.Value{}, false
	}

	for idx, fn := range env.Channel.LogicalChannel.ChannelFunctions {
		value, ok := r.effect.AttributeValue(fn.Attribute, t, speedMultiplier)
		if !ok {
			continue
		}
		return valuetree.Discrete(idx, value), true
	}
	return valuetree.Value{}, false
}

func degreesToRadians(deg float32) float32 {
	return deg * float32(math.Pi) / 180.0
}
