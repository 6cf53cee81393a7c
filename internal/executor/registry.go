package executor

import (
	"sort"

	"github.com/demexconsole/console/internal/arbiter"
	"github.com/demexconsole/console/internal/errs"
	"github.com/demexconsole/console/internal/fixture"
	"github.com/demexconsole/console/internal/valuetree"
)

// Registry owns every executor and fader, and tracks which source most
// recently claimed a stomp — the two pieces arbiter.Query needs to
// arbitrate a fixture channel.
type Registry struct {
	executors map[uint32]*Executor
	faders    map[uint32]*Fader
	lastStomp *arbiter.StompSource
	fixtures  *fixture.Store
}

// NewRegistry builds an empty registry bound to fixtures, which it needs
// to push/pop value sources when executors and faders start and stop.
func NewRegistry(fixtures *fixture.Store) *Registry {
	return &Registry{
		executors: make(map[uint32]*Executor),
		faders:    make(map[uint32]*Fader),
		fixtures:  fixtures,
	}
}

// AddExecutor records e, failing if its id is already taken.
func (r *Registry) AddExecutor(e *Executor) error {
	if _, ok := r.executors[e.id]; ok {
		return errs.Update("executor %d already exists", e.id)
	}
	r.executors[e.id] = e
	return nil
}

// RemoveExecutor stops and removes the executor at id.
func (r *Registry) RemoveExecutor(id uint32) error {
	e, ok := r.executors[id]
	if !ok {
		return errs.Lookup("no executor with id %d", id)
	}
	e.Stop(r.fixtures)
	delete(r.executors, id)
	return nil
}

// Executors returns every recorded executor, ordered by id.
func (r *Registry) Executors() []*Executor {
	out := make([]*Executor, 0, len(r.executors))
	for _, e := range r.executors {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].id < out[j].id })
	return out
}

// AddFader records f, failing if its id is already taken.
func (r *Registry) AddFader(f *Fader) error {
	if _, ok := r.faders[f.id]; ok {
		return errs.Update("fader %d already exists", f.id)
	}
	r.faders[f.id] = f
	return nil
}

// RemoveFader stops and removes the fader at id.
func (r *Registry) RemoveFader(id uint32) error {
	f, ok := r.faders[id]
	if !ok {
		return errs.Lookup("no fader with id %d", id)
	}
	f.Stop(r.fixtures)
	delete(r.faders, id)
	return nil
}

// Fader looks up a fader by id.
func (r *Registry) Fader(id uint32) (*Fader, error) {
	f, ok := r.faders[id]
	if !ok {
		return nil, errs.Lookup("no fader with id %d", id)
	}
	return f, nil
}

// Faders returns every recorded fader, ordered by id.
func (r *Registry) Faders() []*Fader {
	out := make([]*Fader, 0, len(r.faders))
	for _, f := range r.faders {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].id < out[j].id })
	return out
}

// StartExecutor starts the executor at id, recording it as the last stomp
// source if it isn't stomp-protected.
func (r *Registry) StartExecutor(id uint32, timeOffset float32) error {
	e, ok := r.executors[id]
	if !ok {
		return errs.Lookup("no executor with id %d", id)
	}
	e.Start(r.fixtures, timeOffset)
	if !e.StompProtected() {
		r.lastStomp = &arbiter.StompSource{IsExecutor: true, ExecutorID: id}
	}
	return nil
}

// StopExecutor stops the executor at id.
func (r *Registry) StopExecutor(id uint32) error {
	e, ok := r.executors[id]
	if !ok {
		return errs.Lookup("no executor with id %d", id)
	}
	e.Stop(r.fixtures)
	return nil
}

// RecordProgrammerStomp clears the last stomp source, called whenever a
// manual programmer edit is made: afterwards no executor counts as
// stomped, since a programmer edit never stomps executors.
func (r *Registry) RecordProgrammerStomp() {
	r.lastStomp = nil
}

// UpdateAll advances every sequence-backed executor and fader by one tick.
func (r *Registry) UpdateAll() {
	for _, e := range r.executors {
		e.Update(r.fixtures)
	}
	for _, f := range r.faders {
		f.Update(r.fixtures)
	}
}

// StopAll stops every executor and fader, releasing all of their value
// sources.
func (r *Registry) StopAll() {
	for _, e := range r.executors {
		e.Stop(r.fixtures)
	}
	for _, f := range r.faders {
		f.Stop(r.fixtures)
	}
}

// Executor satisfies arbiter.Query by wrapping the executor or fader at id
// as an arbiter.Executor, since both present the same narrow interface.
func (r *Registry) Executor(id uint32) (arbiter.Executor, bool) {
	if e, ok := r.executors[id]; ok {
		return e, true
	}
	if f, ok := r.faders[id]; ok {
		return f, true
	}
	return nil, false
}

// LastStompSource satisfies arbiter.Query.
func (r *Registry) LastStompSource() *arbiter.StompSource {
	return r.lastStomp
}

// QueryFor returns an arbiter.Query scoped to fixtureID, for resolving
// that one fixture's channels against the registry's executors/faders and
// its own recorded programmer values.
func (r *Registry) QueryFor(fixtureID uint32) arbiter.Query {
	return fixtureQuery{registry: r, fixtureID: fixtureID}
}

// fixtureQuery adapts Registry to arbiter.Query for a single fixture, since
// Query.ProgrammerValue is scoped to "the fixture currently being
// resolved" rather than taking a fixture id itself.
type fixtureQuery struct {
	registry  *Registry
	fixtureID uint32
}

func (q fixtureQuery) ProgrammerValue(channelName string) (valuetree.Value, bool) {
	f, ok := q.registry.fixtures.Fixture(q.fixtureID)
	if !ok {
		return valuetree.Value{}, false
	}
	return f.GetProgrammerValue(channelName)
}

func (q fixtureQuery) Executor(id uint32) (arbiter.Executor, bool) {
	return q.registry.Executor(id)
}

func (q fixtureQuery) LastStompSource() *arbiter.StompSource {
	return q.registry.LastStompSource()
}
