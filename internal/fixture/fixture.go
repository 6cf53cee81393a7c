// Package fixture owns patched fixtures, their GDTF-mode binding, the
// per-channel programmer values, and the value-source stack each fixture
// channel is arbitrated from.
package fixture

import (
	"github.com/demexconsole/console/internal/arbiter"
	"github.com/demexconsole/console/internal/errs"
	"github.com/demexconsole/console/internal/gdtf"
	"github.com/demexconsole/console/internal/valuetree"
)

// Fixture is one patched instance of a GDTF fixture type/mode.
type Fixture struct {
	id           uint32
	name         string
	fixtureType  *gdtf.Type
	mode         *gdtf.Mode
	universe     uint16
	startAddress uint16

	values       map[string]valuetree.Value
	valueSources []arbiter.Source
}

// newFixture constructs a Fixture with every channel homed.
func newFixture(id uint32, name string, ft *gdtf.Type, mode *gdtf.Mode, universe, startAddress uint16) *Fixture {
	values := make(map[string]valuetree.Value, len(mode.Channels))
	for _, ch := range mode.Channels {
		values[ch.ChannelName] = valuetree.Home()
	}
	return &Fixture{
		id:           id,
		name:         name,
		fixtureType:  ft,
		mode:         mode,
		universe:     universe,
		startAddress: startAddress,
		values:       values,
		valueSources: []arbiter.Source{arbiter.Programmer()},
	}
}

func (f *Fixture) ID() uint32         { return f.id }
func (f *Fixture) Name() string       { return f.name }
func (f *Fixture) Universe() uint16   { return f.universe }
func (f *Fixture) StartAddress() uint16 { return f.startAddress }
func (f *Fixture) Mode() *gdtf.Mode   { return f.mode }
func (f *Fixture) Type() *gdtf.Type   { return f.fixtureType }

// AddressFootprint returns the number of DMX bytes this fixture occupies.
func (f *Fixture) AddressFootprint() uint16 {
	n := uint16(f.mode.FootprintSize())
	if n == 0 {
		return 1
	}
	return n
}

// ProgrammerValues returns the fixture's current per-channel programmer
// values (used for relation-master lookups during DMX resolution).
func (f *Fixture) ProgrammerValues() map[string]valuetree.Value {
	return f.values
}

// GetProgrammerValue returns the programmer's recorded value for channel.
func (f *Fixture) GetProgrammerValue(channel string) (valuetree.Value, bool) {
	v, ok := f.values[channel]
	return v, ok
}

// SetProgrammerValue sets the programmer's value for channel.
func (f *Fixture) SetProgrammerValue(channel string, v valuetree.Value) error {
	if _, ok := f.values[channel]; !ok {
		return errs.Lookup("fixture %d has no channel %q", f.id, channel)
	}
	f.values[channel] = v
	return nil
}

// Home resets every channel's programmer value to Home, optionally clearing
// the executor value-source stack too.
func (f *Fixture) Home(clearSources bool) {
	for ch := range f.values {
		f.values[ch] = valuetree.Home()
	}
	if clearSources {
		f.valueSources = []arbiter.Source{arbiter.Programmer()}
	}
}

// ValueSources returns the fixture's current value-source stack, in the
// order they should be arbitrated (Programmer is always first).
func (f *Fixture) ValueSources() []arbiter.Source {
	return f.valueSources
}

// PushValueSource adds src to the stack if not already present.
func (f *Fixture) PushValueSource(src arbiter.Source) {
	for _, s := range f.valueSources {
		if s == src {
			return
		}
	}
	f.valueSources = append(f.valueSources, src)
}

// RemoveValueSource removes src from the stack.
func (f *Fixture) RemoveValueSource(src arbiter.Source) {
	kept := f.valueSources[:0]
	for _, s := range f.valueSources {
		if s != src {
			kept = append(kept, s)
		}
	}
	f.valueSources = kept
}

// Channel looks up the fixture's GDTF channel by name.
func (f *Fixture) Channel(name string) (*gdtf.Channel, bool) {
	return f.mode.Channel(name)
}

// Env builds a valuetree.Env for evaluating channel against this fixture's
// current programmer values, ready for ToDMX/GetAsDiscrete.
func (f *Fixture) Env(resolver valuetree.Resolver, grandMaster float32, channel *gdtf.Channel) *valuetree.Env {
	return &valuetree.Env{
		FixtureID:   f.id,
		Mode:        f.mode,
		Channel:     channel,
		Values:      f.values,
		GrandMaster: grandMaster,
		Resolver:    resolver,
	}
}
