// Package valuetree implements the channel-value expression tree: the
// pure, I/O-free algebra of Home / Discrete / DiscreteSet / Preset / Mix
// values that every other store evaluates against a fixture's GDTF
// channel description to produce a DMX byte.
package valuetree

import (
	"fmt"
	"math"

	"github.com/demexconsole/console/internal/gdtf"
)

// Kind discriminates the closed variant set of a Value.
type Kind int

const (
	KindHome Kind = iota
	KindDiscrete
	KindDiscreteSet
	KindPreset
	KindMix
)

// Value is the channel-value expression tree. Trees are acyclic by
// construction: Preset leaves are resolved lazily against a Resolver at
// evaluation time rather than inlining the referenced tree, so recording
// data can never introduce a cycle.
type Value struct {
	Kind Kind

	// Discrete
	ChannelFunctionIdx int
	DiscreteValue      float32

	// DiscreteSet
	ChannelSet string

	// Preset
	PresetID    PresetID
	PresetState *PresetState

	// Mix
	A, B *Value
	Mix  float32
}

// Home is the zero value: the fixture's GDTF-default function.
func Home() Value { return Value{Kind: KindHome} }

// Discrete builds a Discrete leaf: the channel function at idx, parameterised
// by v in [0,1].
func Discrete(idx int, v float32) Value {
	return Value{Kind: KindDiscrete, ChannelFunctionIdx: idx, DiscreteValue: v}
}

// DiscreteSetValue builds a DiscreteSet leaf: the named channel set of the
// channel function at idx.
func DiscreteSetValue(idx int, name string) Value {
	return Value{Kind: KindDiscreteSet, ChannelFunctionIdx: idx, ChannelSet: name}
}

// Preset builds a Preset leaf referencing id, carrying optional transit-only
// state for effect phase resolution.
func Preset(id PresetID, state *PresetState) Value {
	return Value{Kind: KindPreset, PresetID: id, PresetState: state}
}

// MixOf builds a Mix node blending a and b by mix in [0,1].
func MixOf(a, b Value, mix float32) Value {
	return Value{Kind: KindMix, A: &a, B: &b, Mix: mix}
}

// IsHome reports whether v is the Home leaf.
func (v Value) IsHome() bool { return v.Kind == KindHome }

// WithPresetState recursively rewrites any Preset leaf's carried state,
// leaving every other shape untouched.
func (v Value) WithPresetState(state *PresetState) Value {
	switch v.Kind {
	case KindPreset:
		v.PresetState = state
		return v
	case KindMix:
		a := v.A.WithPresetState(state)
		b := v.B.WithPresetState(state)
		v.A, v.B = &a, &b
		return v
	default:
		return v
	}
}

// Flatten rewrites Mix{mix=0} to a.Flatten() and Mix{mix=1} to b.Flatten();
// every other shape passes through unchanged.
func (v Value) Flatten() Value {
	if v.Kind != KindMix {
		return v
	}
	if v.Mix == 0 {
		return v.A.Flatten()
	}
	if v.Mix == 1 {
		return v.B.Flatten()
	}
	return v
}

// Equal implements the tree's value equality, which deliberately ignores
// PresetState (two preset references with different transit state are
// still "the same reference").
func (v Value) Equal(other Value) bool {
	if v.Kind != other.Kind {
		return false
	}
	switch v.Kind {
	case KindHome:
		return true
	case KindPreset:
		return v.PresetID == other.PresetID
	case KindDiscrete:
		return v.ChannelFunctionIdx == other.ChannelFunctionIdx && v.DiscreteValue == other.DiscreteValue
	case KindDiscreteSet:
		return v.ChannelFunctionIdx == other.ChannelFunctionIdx && v.ChannelSet == other.ChannelSet
	default:
		return false
	}
}

// ToDiscrete resolves a Preset leaf against env's resolver and returns the
// resolved tree; every other shape is simply flattened.
func (v Value) ToDiscrete(env *Env, channelName string) Value {
	if v.Kind != KindPreset {
		return v.Flatten()
	}
	resolved, ok := env.Resolver.ResolvePreset(v.PresetID, env, channelName, v.PresetState)
	if !ok {
		return Home()
	}
	return resolved
}

// GetAsDiscrete returns a float-domain (channel_function_idx, value) view
// of v, used for preset-building and UI readouts. Its Mix rule: if both
// sides resolve to the same function index, interpolate; otherwise snap to
// the dominant side (mix<0.5 -> a).
func (v Value) GetAsDiscrete(env *Env, channelName string) (int, float32) {
	switch v.Kind {
	case KindHome:
		ch := env.Channel
		fn, ok := ch.InitialFunction()
		if !ok {
			return 0, 0
		}
		idx := 0
		for i := range ch.LogicalChannel.ChannelFunctions {
			if &ch.LogicalChannel.ChannelFunctions[i] == fn {
				idx = i
				break
			}
		}
		return idx, fn.Default.ToF32()

	case KindDiscrete:
		return v.ChannelFunctionIdx, v.DiscreteValue

	case KindDiscreteSet:
		ch := env.Channel
		if v.ChannelFunctionIdx < 0 || v.ChannelFunctionIdx >= len(ch.LogicalChannel.ChannelFunctions) {
			return 0, 0
		}
		cf := &ch.LogicalChannel.ChannelFunctions[v.ChannelFunctionIdx]
		cs, ok := cf.ChannelSet(v.ChannelSet)
		if !ok {
			return v.ChannelFunctionIdx, 0
		}
		return v.ChannelFunctionIdx, cs.DMXFrom.ToF32()

	case KindMix:
		aIdx, aVal := v.A.GetAsDiscrete(env, channelName)
		bIdx, bVal := v.B.GetAsDiscrete(env, channelName)
		if aIdx == bIdx {
			return aIdx, aVal*(1-v.Mix) + bVal*v.Mix
		}
		if v.Mix < 0.5 {
			return aIdx, aVal
		}
		return bIdx, bVal

	case KindPreset:
		resolved, ok := env.Resolver.ResolvePreset(v.PresetID, env, channelName, v.PresetState)
		if !ok {
			resolved = Home()
		}
		return resolved.GetAsDiscrete(env, channelName)
	}

	return 0, 0
}

// ToDMX recursively resolves v to a raw DMX word for env.Channel, applying
// relation-master multiplication and grand-master scaling (grand master
// applied last, after any relation).
func (v Value) ToDMX(env *Env, channelName string) (gdtf.Value, bool) {
	logical := env.Channel.LogicalChannel

	value, ok := v.rawDMX(env, channelName)
	if !ok {
		return gdtf.Value{}, false
	}

	if logical.Master == gdtf.MasterGrand {
		value = gdtf.MultiplyF32(value, env.GrandMaster)
	}

	return value, true
}

func findMultiplyRelation(env *Env, channelName string, functionIdx int) (gdtf.Value, bool) {
	rel, ok := env.Mode.FindMultiplyRelation(channelName, functionIdx)
	if !ok {
		return gdtf.Value{}, false
	}

	masterCh, ok := env.Mode.Channel(rel.MasterChannel)
	if !ok {
		return gdtf.Value{}, false
	}

	masterValue, ok := env.Values[rel.MasterChannel]
	if !ok {
		return gdtf.Value{}, false
	}

	masterEnv := env.withChannel(masterCh)
	return masterValue.rawDMX(masterEnv, rel.MasterChannel)
}

func (v Value) rawDMX(env *Env, channelName string) (gdtf.Value, bool) {
	logical := env.Channel.LogicalChannel

	switch v.Kind {
	case KindHome:
		fn, ok := env.Channel.InitialFunction()
		if !ok {
			return gdtf.Value{}, false
		}
		idx := functionIndex(logical, fn)
		if relVal, ok := findMultiplyRelation(env, channelName, idx); ok {
			return gdtf.Multiply(fn.Default, relVal), true
		}
		return fn.Default, true

	case KindDiscreteSet:
		if v.ChannelFunctionIdx < 0 || v.ChannelFunctionIdx >= len(logical.ChannelFunctions) {
			return gdtf.Value{}, false
		}
		cf := &logical.ChannelFunctions[v.ChannelFunctionIdx]
		cs, ok := cf.ChannelSet(v.ChannelSet)
		if !ok {
			return gdtf.Value{}, false
		}
		value := cs.DMXFrom
		if relVal, ok := findMultiplyRelation(env, channelName, v.ChannelFunctionIdx); ok {
			value = gdtf.Multiply(value, relVal)
		}
		return value, true

	case KindDiscrete:
		if v.ChannelFunctionIdx < 0 || v.ChannelFunctionIdx >= len(logical.ChannelFunctions) {
			return gdtf.Value{}, false
		}
		cf := &logical.ChannelFunctions[v.ChannelFunctionIdx]

		nBytes := cf.DMXFrom.Bytes
		dmxFrom := cf.DMXFrom.Raw
		var dmxTo uint64
		if v.ChannelFunctionIdx >= len(logical.ChannelFunctions)-1 {
			dmxTo = gdtf.MaxValue(nBytes).Raw
		} else {
			dmxTo = logical.ChannelFunctions[v.ChannelFunctionIdx+1].DMXFrom.Raw - 1
		}

		dmxVal := dmxFrom + uint64(float32(dmxTo-dmxFrom)*v.DiscreteValue)
		value := gdtf.NewValue(dmxVal, nBytes)

		if relVal, ok := findMultiplyRelation(env, channelName, v.ChannelFunctionIdx); ok {
			value = gdtf.Multiply(value, relVal)
		}
		return value, true

	case KindPreset:
		resolved, ok := env.Resolver.ResolvePreset(v.PresetID, env, channelName, v.PresetState)
		if !ok {
			return gdtf.Value{}, false
		}
		return resolved.rawDMX(env, channelName)

	case KindMix:
		if logical.Snap {
			if v.Mix < 0.5 {
				return v.A.rawDMX(env, channelName)
			}
			return v.B.rawDMX(env, channelName)
		}
		a, ok := v.A.rawDMX(env, channelName)
		if !ok {
			return gdtf.Value{}, false
		}
		b, ok := v.B.rawDMX(env, channelName)
		if !ok {
			return gdtf.Value{}, false
		}
		return gdtf.Mix(a, b, v.Mix), true
	}

	return gdtf.Value{}, false
}

func functionIndex(logical gdtf.LogicalChannel, fn *gdtf.ChannelFunction) int {
	for i := range logical.ChannelFunctions {
		if &logical.ChannelFunctions[i] == fn {
			return i
		}
	}
	return 0
}

// String renders a human-readable description of v (without preset-name
// lookup, which the caller can layer on via env).
func (v Value) String() string {
	switch v.Kind {
	case KindHome:
		return "Home"
	case KindPreset:
		return fmt.Sprintf("Preset %s", v.PresetID)
	case KindDiscreteSet:
		return fmt.Sprintf("%q (%d)", v.ChannelSet, v.ChannelFunctionIdx)
	case KindDiscrete:
		return fmt.Sprintf("%.2f (%d)", v.DiscreteValue, v.ChannelFunctionIdx)
	case KindMix:
		if v.Mix == 0 {
			return v.A.String()
		}
		if v.Mix == 1 {
			return v.B.String()
		}
		return fmt.Sprintf("%s * %.2f + %s * %.2f", v.A.String(), 1-v.Mix, v.B.String(), v.Mix)
	}
	return "?"
}

// clampUnit clamps f into [0,1].
func clampUnit(f float32) float32 {
	return float32(math.Max(0, math.Min(1, float64(f))))
}
