package effect

import (
	"time"

	"github.com/demexconsole/console/internal/timing"
)

// SyncMode governs whether an effect's BPM-locked clock realigns to a speed
// master's last tap.
type SyncMode int

const (
	// SyncNone ignores the speed master's tap phase entirely.
	SyncNone SyncMode = iota
	// SyncBeat realigns every beat, scaled by Speed.Scale.
	SyncBeat
	// SyncFull realigns on every tap without the scale adjustment.
	SyncFull
)

func (m SyncMode) isSynced() bool { return m != SyncNone }

// Scale multiplies a speed master's BPM before driving an effect, letting
// an effect run at e.g. half or double the master's tempo.
type Scale float32

// ScaleValue returns the multiplier, defaulting to 1.0 when unset.
func (s Scale) ScaleValue() float32 {
	if s == 0 {
		return 1.0
	}
	return float32(s)
}

// Speed is an effect's tempo source: a fixed BPM, or a named speed master
// scaled and optionally phase-synced to its taps.
type Speed struct {
	FixedBPM     float32
	SpeedMasterID uint32
	UseSpeedMaster bool
	Scale        Scale
	Sync         SyncMode
}

// FixedSpeed builds a Speed locked to a constant BPM.
func FixedSpeed(bpm float32) Speed { return Speed{FixedBPM: bpm} }

// MasterSpeed builds a Speed that tracks speedMasterID.
func MasterSpeed(id uint32, scale Scale, sync SyncMode) Speed {
	return Speed{UseSpeedMaster: true, SpeedMasterID: id, Scale: scale, Sync: sync}
}

// EffectiveBPM resolves s to a concrete tempo at instant now, and returns
// the elapsed-time correction (seconds) a synced speed master's tap phase
// applies to startedElapsed.
func (s Speed) EffectiveBPM(timingStore *timing.Store, effectStarted time.Time) (bpm float32, elapsedAdjustment float64) {
	if !s.UseSpeedMaster {
		return s.FixedBPM, 0
	}

	master, err := timingStore.SpeedMaster(s.SpeedMasterID)
	if err != nil {
		return 0, 0
	}

	bpm = master.BPM() * s.Scale.ScaleValue()

	if !s.Sync.isSynced() {
		return bpm, 0
	}

	last, ok := master.Interval()
	if !ok {
		return bpm, 0
	}

	modValue := float64(master.SecsPerBeat())
	if s.Sync == SyncBeat {
		modValue *= 1.0 / float64(s.Scale.ScaleValue())
	}

	delta := last.Sub(effectStarted).Seconds()
	if modValue > 0 {
		delta = modFloat(delta, modValue)
	}
	return bpm, delta
}

func modFloat(a, m float64) float64 {
	return a - m*float64(int(a/m))
}
