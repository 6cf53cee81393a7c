// Package sequence owns cue sequences and their runtime fade/crossfade
// state machine.
package sequence

import (
	"time"

	"github.com/demexconsole/console/internal/errs"
	"github.com/demexconsole/console/internal/fixture"
	"github.com/demexconsole/console/internal/preset"
	"github.com/demexconsole/console/internal/valuetree"
)

// FadingFunction shapes a cue's fade progress curve.
type FadingFunction int

const (
	FadingLinear FadingFunction = iota
	FadingEaseInQuad
	FadingEaseOutQuad
	FadingEaseInOutQuad
)

// Apply maps a linear progress x in [0,1] through the fading curve.
func (f FadingFunction) Apply(x float32) float32 {
	switch f {
	case FadingEaseInQuad:
		return x * x
	case FadingEaseOutQuad:
		return 1.0 - (1.0-x)*(1.0-x)
	case FadingEaseInOutQuad:
		if x < 0.5 {
			return 2.0 * x * x
		}
		t := -2.0*x + 2.0
		return 1.0 - t*t/2.0
	default:
		return x
	}
}

// TriggerKind is how a cue advances from the one before it.
type TriggerKind int

const (
	TriggerManual TriggerKind = iota
	TriggerFollow
	TriggerTime
)

// Trigger is a cue's advance condition: Manual (operator-driven), Follow
// (fires as soon as the previous cue finishes fading), or Time (carries a
// delay in Seconds; Runtime.Update does not advance on it).
type Trigger struct {
	Kind    TriggerKind
	Seconds float32
}

var ManualTrigger = Trigger{Kind: TriggerManual}
var FollowTrigger = Trigger{Kind: TriggerFollow}

func TimeTrigger(seconds float32) Trigger {
	return Trigger{Kind: TriggerTime, Seconds: seconds}
}

// TimingDirection is the end a cue's fixture-offset delay counts from.
type TimingDirection int

const (
	LowToHigh TimingDirection = iota
	HighToLow
)

// Timing staggers a cue's fade across its fixtures by selection offset.
type Timing struct {
	Offset    float32
	Direction TimingDirection
}

// TotalOffset returns the delay the last fixture offset incurs.
func (t Timing) TotalOffset(numOffsets int) float32 {
	offset := t.Offset * float32(numOffsets-1)
	if offset < 0 {
		return 0
	}
	return offset
}

// OffsetForFixture returns the delay (seconds) a fixture at offsetIdx
// incurs before its fade begins.
func (t Timing) OffsetForFixture(offsetIdx, numFixtures int) float32 {
	switch t.Direction {
	case HighToLow:
		return t.Offset * (float32(numFixtures-1) - float32(offsetIdx))
	default:
		return t.Offset * float32(offsetIdx)
	}
}

// ChannelValue is one recorded channel value within a cue's Default data.
type ChannelValue struct {
	Value       valuetree.Value
	ChannelName string
	Snap        bool
}

// BuilderEntry references a group+preset pair the cue's Builder data
// evaluates in order, stopping at the first entry whose group contains the
// fixture being resolved.
type BuilderEntry struct {
	GroupID  uint32
	PresetID valuetree.PresetID
}

// Data is a cue's payload: a fixed map of recorded values (Default) or an
// ordered list of group/preset pairs evaluated per fixture (Builder).
type Data interface {
	isCueData()
}

// DefaultData holds recorded channel values per fixture.
type DefaultData struct {
	Values map[uint32][]ChannelValue
}

func (*DefaultData) isCueData() {}

// NewDefaultData builds an empty DefaultData.
func NewDefaultData() *DefaultData {
	return &DefaultData{Values: make(map[uint32][]ChannelValue)}
}

// BuilderData holds an ordered list of group/preset recipe entries.
type BuilderData struct {
	Entries []BuilderEntry
}

func (*BuilderData) isCueData() {}

// Idx is a cue's (major, minor) address within its sequence.
type Idx struct {
	Major uint32
	Minor uint32
}

// Less orders cue indices lexicographically.
func (i Idx) Less(other Idx) bool {
	if i.Major != other.Major {
		return i.Major < other.Major
	}
	return i.Minor < other.Minor
}

// Cue is one step of a sequence: its recorded or recipe-built values, the
// selection it targets, and its fade/delay/trigger timing.
type Cue struct {
	Idx         Idx
	Name        string
	Data        Data
	Selection   *fixture.Selection
	InFade      float32
	InDelay     float32
	OutFade     float32
	OutDelay    float32
	SnapPercent float32
	Block       bool
	Timing      Timing
	Trigger     Trigger
	Fading      FadingFunction
	MoveInBlack bool
}

// NewCue builds a Default-data cue over selection.
func NewCue(idx Idx, data *DefaultData, selection *fixture.Selection, inFade, inDelay, snapPercent float32, timing Timing, trigger Trigger) *Cue {
	return &Cue{
		Idx:         idx,
		Name:        cueDefaultName(idx),
		Data:        data,
		Selection:   selection,
		InFade:      inFade,
		InDelay:     inDelay,
		SnapPercent: snapPercent,
		Timing:      timing,
		Trigger:     trigger,
	}
}

func cueDefaultName(idx Idx) string {
	return "Cue " + uintToString(idx.Major) + "." + uintToString(idx.Minor)
}

// resolvedSelection returns the cue's effective selection: its own for
// Default data, or the union of its builder entries' group selections.
func (c *Cue) resolvedSelection(presets *preset.Store) *fixture.Selection {
	if _, ok := c.Data.(*DefaultData); ok {
		return c.Selection
	}

	sel := fixture.NewSelection(nil)
	data, ok := c.Data.(*BuilderData)
	if !ok {
		return sel
	}
	for _, entry := range data.Entries {
		group, err := presets.Group(entry.GroupID)
		if err != nil {
			continue
		}
		sel.ExtendFrom(group.Selection())
	}
	return sel
}

// TotalOffset returns this cue's full fixture-stagger delay.
func (c *Cue) TotalOffset(presets *preset.Store) float32 {
	sel := c.resolvedSelection(presets)
	return c.Timing.TotalOffset(sel.NumOffsets())
}

// OffsetForFixture returns the fade delay (seconds) fixtureID incurs.
func (c *Cue) OffsetForFixture(fixtureID uint32, presets *preset.Store) float32 {
	sel := c.resolvedSelection(presets)
	idx, ok := sel.OffsetIdx(fixtureID)
	if !ok {
		idx = 0
	}
	return c.Timing.OffsetForFixture(idx, sel.NumOffsets())
}

// InTime is the total time (delay + fade + stagger) before this cue is
// fully faded in.
func (c *Cue) InTime(presets *preset.Store) float32 {
	return c.InDelay + c.InFade + c.TotalOffset(presets)
}

// OutTime is the total time before this cue is fully faded out.
func (c *Cue) OutTime(presets *preset.Store) float32 {
	return c.OutDelay + c.OutFade + c.TotalOffset(presets)
}

// ShouldSnapChannelValue reports whether channelName on fixtureID is marked
// to snap rather than fade (Default data only; Builder data never snaps).
func (c *Cue) ShouldSnapChannelValue(fixtureID uint32, channelName string) bool {
	data, ok := c.Data.(*DefaultData)
	if !ok {
		return false
	}
	for _, v := range data.Values[fixtureID] {
		if v.ChannelName == channelName {
			return v.Snap
		}
	}
	return false
}

// ChannelValue resolves the value this cue asserts for fixtureID/channelName,
// wrapping it with state that points at started for Preset-leaf evaluation.
func (c *Cue) ChannelValue(fixtureID uint32, channelName string, presets *preset.Store, started *time.Time) (valuetree.Value, bool) {
	switch data := c.Data.(type) {
	case *DefaultData:
		for _, v := range data.Values[fixtureID] {
			if v.ChannelName != channelName {
				continue
			}
			if started == nil {
				return v.Value, true
			}
			return v.Value.WithPresetState(&valuetree.PresetState{Started: *started, Selection: c.Selection}), true
		}
		return valuetree.Value{}, false
	case *BuilderData:
		for _, entry := range data.Entries {
			group, err := presets.Group(entry.GroupID)
			if err != nil || !group.Selection().HasFixture(fixtureID) {
				continue
			}
			env := &valuetree.Env{FixtureID: fixtureID, Resolver: presets}
			state := &valuetree.PresetState{Selection: group.Selection()}
			if started != nil {
				state.Started = *started
			}
			return presets.ResolvePreset(entry.PresetID, env, channelName, state)
		}
		return valuetree.Value{}, false
	default:
		return valuetree.Value{}, false
	}
}

// Update merges newData into a Default cue's recorded values, extending its
// selection with newSelection. Builder cues can never be updated in place.
func (c *Cue) Update(sequenceID uint32, newData map[uint32][]ChannelValue, newSelection *fixture.Selection, override bool) (int, error) {
	data, ok := c.Data.(*DefaultData)
	if !ok {
		return 0, errs.Update("sequence %d cue %d.%d is builder-mode and cannot be updated in place", sequenceID, c.Idx.Major, c.Idx.Minor)
	}

	c.Selection.ExtendFrom(newSelection)

	updated := 0
	for fixtureID, values := range newData {
		if _, exists := data.Values[fixtureID]; exists && !override {
			continue
		}
		data.Values[fixtureID] = values
		updated++
	}
	return updated, nil
}

// Recall writes this cue's Default values directly to each fixture's
// programmer, bypassing fade state entirely (used for "go to cue" jumps).
func (c *Cue) Recall(fixtures *fixture.Store) error {
	data, ok := c.Data.(*DefaultData)
	if !ok {
		return nil
	}
	for fixtureID, values := range data.Values {
		f, ok := fixtures.Fixture(fixtureID)
		if !ok {
			continue
		}
		for _, v := range values {
			if err := f.SetProgrammerValue(v.ChannelName, v.Value); err != nil {
				return err
			}
		}
	}
	return nil
}

func uintToString(v uint32) string {
	if v == 0 {
		return "0"
	}
	digits := [10]byte{}
	i := len(digits)
	for v > 0 {
		i--
		digits[i] = byte('0' + v%10)
		v /= 10
	}
	return string(digits[i:])
}
