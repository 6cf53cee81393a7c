package valuetree

import (
	"time"

	"github.com/demexconsole/console/internal/gdtf"
)

// Selection is the minimal view of a fixture selection a value tree needs
// to resolve a preset's "selection offset" when it is evaluated inside an
// effect. internal/fixture.Selection implements this.
type Selection interface {
	Offset(fixtureID uint32) (int, bool)
}

// PresetState carries the ephemeral context a Preset leaf needs to resolve
// against an effect (its start time and the selection it was applied to).
// It is transit-only: never serialised, and excluded from Value equality.
type PresetState struct {
	Started   time.Time
	Selection Selection
}

// Env is the evaluation environment passed down through a value tree:
// everything ToDMX/GetAsDiscrete needs about the fixture and mode being
// resolved, plus the resolver that expands Preset leaves.
type Env struct {
	FixtureID   uint32
	Mode        *gdtf.Mode
	Channel     *gdtf.Channel
	Values      map[string]Value
	GrandMaster float32
	Resolver    Resolver
}

// withChannel returns a copy of env pointed at a different channel, used
// when following a relation to its master channel.
func (e *Env) withChannel(ch *gdtf.Channel) *Env {
	cp := *e
	cp.Channel = ch
	return &cp
}

// Resolver expands a Preset leaf into the Value it stands for. Implemented
// by internal/preset.Store; kept as an interface here so valuetree has no
// dependency on the preset or fixture packages.
type Resolver interface {
	ResolvePreset(id PresetID, env *Env, channelName string, state *PresetState) (Value, bool)
}
