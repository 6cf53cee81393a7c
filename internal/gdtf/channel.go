package gdtf

// LogicalChannelMaster identifies whether a logical channel's value is
// modulated by a relation master (none) or the global grand master.
type LogicalChannelMaster int

const (
	MasterNone LogicalChannelMaster = iota
	MasterGrand
)

// ChannelSet is a named discrete range within a channel function, e.g.
// a gobo wheel slot or a colour-wheel position.
type ChannelSet struct {
	Name    string
	DMXFrom Value
}

// ChannelFunction is one addressable function of a logical channel — the
// GDTF attribute it drives, its DMX sub-range, and its named channel sets.
type ChannelFunction struct {
	Name        string
	Attribute   string
	DMXFrom     Value
	Default     Value
	ChannelSets []ChannelSet
}

// ChannelSet looks up a named channel set by name.
func (cf *ChannelFunction) ChannelSet(name string) (*ChannelSet, bool) {
	for i := range cf.ChannelSets {
		if cf.ChannelSets[i].Name == name {
			return &cf.ChannelSets[i], true
		}
	}
	return nil, false
}

// LogicalChannel groups the channel functions that share one DMX channel
// slot at a time (only one is active per mode, but the value tree
// addresses them all by index).
type LogicalChannel struct {
	Attribute        string
	Snap             bool
	Master           LogicalChannelMaster
	ChannelFunctions []ChannelFunction
}

// Channel is one DMX channel of a fixture's active mode: its byte offsets
// within the fixture's footprint and its logical channel. Only channel3 is
// modelled — every channel has exactly one logical channel, matching the
// spec's decision to follow the single active channel abstraction.
type Channel struct {
	ChannelName string
	// Offsets lists the 1-based byte offsets (within the fixture's DMX
	// footprint) this channel occupies, ordered least-significant byte
	// first. Nil for a virtual (non-DMX) channel.
	Offsets        []int
	LogicalChannel LogicalChannel
}

// Name returns the channel's GDTF name.
func (c *Channel) Name() string {
	return c.ChannelName
}

// InitialFunction returns the channel's default channel function — the one
// active when the fixture is homed.
func (c *Channel) InitialFunction() (*ChannelFunction, bool) {
	if len(c.LogicalChannel.ChannelFunctions) == 0 {
		return nil, false
	}
	return &c.LogicalChannel.ChannelFunctions[0], true
}

// RelationType is the kind of master/follower coupling between two channel
// functions. Only Multiply relations are modelled (grand-master/relation
// scaling between a master and follower channel function).
type RelationType int

const (
	RelationMultiply RelationType = iota
)

// Relation couples a follower channel function's output to a master
// channel's current value (e.g. a dimmer channel acting as the master for
// an RGB colour mixing system).
type Relation struct {
	Type                  RelationType
	MasterChannel         string
	MasterFunctionIdx     int
	FollowerChannel       string
	FollowerFunctionIdx   int
}

// Mode is one DMX personality of a fixture type: its ordered channels and
// any master/follower relations between them.
type Mode struct {
	Name      string
	Channels  []Channel
	Relations []Relation
}

// Channel looks up a mode channel by name.
func (m *Mode) Channel(name string) (*Channel, bool) {
	for i := range m.Channels {
		if m.Channels[i].ChannelName == name {
			return &m.Channels[i], true
		}
	}
	return nil, false
}

// FindMultiplyRelation returns the relation (if any) whose follower is the
// given channel+function-index pair.
func (m *Mode) FindMultiplyRelation(channelName string, functionIdx int) (*Relation, bool) {
	for i := range m.Relations {
		r := &m.Relations[i]
		if r.FollowerChannel == channelName && r.FollowerFunctionIdx == functionIdx {
			return r, true
		}
	}
	return nil, false
}

// FootprintSize returns the number of DMX bytes this mode occupies,
// computed from the maximum channel offset.
func (m *Mode) FootprintSize() int {
	max := 0
	for _, ch := range m.Channels {
		for _, off := range ch.Offsets {
			if off > max {
				max = off
			}
		}
	}
	return max
}

// Type is a fixture type: its name and the DMX modes ("personalities") it
// offers.
type Type struct {
	Name  string
	Modes []Mode
}

// Mode looks up a mode by name.
func (t *Type) Mode(name string) (*Mode, bool) {
	for i := range t.Modes {
		if t.Modes[i].Name == name {
			return &t.Modes[i], true
		}
	}
	return nil, false
}
