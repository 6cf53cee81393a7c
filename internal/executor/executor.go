// Package executor binds a Sequence or feature-effect runtime to a fixture
// selection, presenting both as arbiter.Executor value sources with a
// shared fade-up ramp and stomp-protection flag.
package executor

import (
	"time"

	"github.com/demexconsole/console/internal/arbiter"
	"github.com/demexconsole/console/internal/effect"
	"github.com/demexconsole/console/internal/fixture"
	"github.com/demexconsole/console/internal/preset"
	"github.com/demexconsole/console/internal/sequence"
	"github.com/demexconsole/console/internal/valuetree"
)

type configKind int

const (
	configSequence configKind = iota
	configFeatureEffect
)

// config is a flat struct standing in for a Sequence | FeatureEffect sum
// type, the same pattern used for sequence.runtimeState.
type config struct {
	kind      configKind
	seq       *sequence.Runtime
	effect    *effect.FeatureEffectRuntime
	selection *fixture.Selection
}

// Executor is one bindable value source: a sequence on cues, or a
// parametric effect across a fixture selection.
type Executor struct {
	id             uint32
	name           string
	priority       arbiter.Priority
	stompProtected bool
	fadeUp         float32
	cfg            config
	startedAt      *time.Time

	sequences *sequence.Store
	presets   *preset.Store
}

// NewSequenceExecutor builds an executor driving sequenceID's cues.
// sequences/presets are the stores the executor consults each tick to
// resolve the sequence's affected fixtures and cue data.
func NewSequenceExecutor(id uint32, name string, sequenceID uint32, priority arbiter.Priority, sequences *sequence.Store, presets *preset.Store) *Executor {
	if name == "" {
		name = "Sequence Executor"
	}
	return &Executor{
		id:        id,
		name:      name,
		priority:  priority,
		cfg:       config{kind: configSequence, seq: sequence.NewRuntime(sequenceID)},
		sequences: sequences,
		presets:   presets,
	}
}

// NewEffectExecutor builds an executor driving a parametric effect across
// selection.
func NewEffectExecutor(id uint32, name string, eff *effect.FeatureEffectRuntime, selection *fixture.Selection, priority arbiter.Priority) *Executor {
	if name == "" {
		name = "Effect Executor"
	}
	return &Executor{
		id:       id,
		name:     name,
		priority: priority,
		cfg:      config{kind: configFeatureEffect, effect: eff, selection: selection},
	}
}

func (e *Executor) ID() uint32                 { return e.id }
func (e *Executor) Name() string                { return e.name }
func (e *Executor) SetName(name string)         { e.name = name }
func (e *Executor) Priority() arbiter.Priority  { return e.priority }
func (e *Executor) StompProtected() bool        { return e.stompProtected }
func (e *Executor) SetStompProtected(v bool)    { e.stompProtected = v }
func (e *Executor) FadeUp() float32             { return e.fadeUp }
func (e *Executor) SetFadeUp(seconds float32)   { e.fadeUp = seconds }

// RefersToSequence reports whether this executor plays sequenceID.
func (e *Executor) RefersToSequence(sequenceID uint32) bool {
	return e.cfg.kind == configSequence && e.cfg.seq.SequenceID() == sequenceID
}

// SequenceID returns the sequence this executor plays, for persistence —
// ok is false for an effect executor, whose runtime isn't serialisable.
func (e *Executor) SequenceID() (id uint32, ok bool) {
	if e.cfg.kind != configSequence {
		return 0, false
	}
	return e.cfg.seq.SequenceID(), true
}

// CurrentCue returns the active cue position for a sequence executor, for
// status reporting — ok is false when stopped or for an effect executor.
func (e *Executor) CurrentCue() (idx int, ok bool) {
	if e.cfg.kind != configSequence {
		return 0, false
	}
	return e.cfg.seq.CurrentCue()
}

// IsStarted reports whether the underlying runtime is on a cue/running.
func (e *Executor) IsStarted() bool {
	switch e.cfg.kind {
	case configSequence:
		return e.cfg.seq.IsStarted()
	case configFeatureEffect:
		return e.cfg.effect.IsStarted()
	}
	return false
}

// Fixtures returns the fixtures this executor currently drives.
func (e *Executor) Fixtures() []uint32 {
	switch e.cfg.kind {
	case configSequence:
		seq, err := e.sequences.Sequence(e.cfg.seq.SequenceID())
		if err != nil {
			return nil
		}
		return seq.AffectedFixtures(e.presets)
	case configFeatureEffect:
		return e.cfg.selection.Fixtures()
	}
	return nil
}

// fadeAlpha returns the executor's own fade-up ramp (distinct from any
// cue crossfade internal to a sequence runtime).
func (e *Executor) fadeAlpha() float32 {
	if e.startedAt == nil || e.fadeUp <= 0 {
		return 1.0
	}
	elapsed := float32(time.Since(*e.startedAt).Seconds())
	if elapsed >= e.fadeUp {
		return 1.0
	}
	if elapsed <= 0 {
		return 0.0
	}
	return elapsed / e.fadeUp
}

// Start begins the underlying runtime and pushes this executor as a value
// source onto every fixture it affects.
func (e *Executor) Start(fixtures *fixture.Store, timeOffset float32) {
	switch e.cfg.kind {
	case configSequence:
		e.cfg.seq.Start(timeOffset)
	case configFeatureEffect:
		e.cfg.effect.Start(timeOffset)
	}

	t := time.Now().Add(-time.Duration(timeOffset * float32(time.Second)))
	e.startedAt = &t

	src := arbiter.ExecutorSource(e.id)
	for _, id := range e.Fixtures() {
		if f, ok := fixtures.Fixture(id); ok {
			f.PushValueSource(src)
		}
	}
}

// Stop halts the underlying runtime and removes this executor's value
// source from every fixture it affected.
func (e *Executor) Stop(fixtures *fixture.Store) {
	ids := e.Fixtures()

	switch e.cfg.kind {
	case configSequence:
		e.cfg.seq.Stop()
	case configFeatureEffect:
		e.cfg.effect.Stop()
	}
	e.startedAt = nil

	src := arbiter.ExecutorSource(e.id)
	for _, id := range ids {
		if f, ok := fixtures.Fixture(id); ok {
			f.RemoveValueSource(src)
		}
	}
}

// NextCue advances a sequence executor's runtime, stopping it if the
// advance ran off the end of the sequence. No-op for effect executors.
func (e *Executor) NextCue(fixtures *fixture.Store, timeOffset float32) error {
	if e.cfg.kind != configSequence {
		return nil
	}
	seq, err := e.sequences.Sequence(e.cfg.seq.SequenceID())
	if err != nil {
		return err
	}
	if e.cfg.seq.NextCue(seq, timeOffset) {
		e.Stop(fixtures)
	}
	return nil
}

// Update advances the executor by one tick, auto-stopping it if its
// sequence runtime reached the end of an AutoStop sequence.
func (e *Executor) Update(fixtures *fixture.Store) {
	if e.cfg.kind != configSequence {
		return
	}
	seq, err := e.sequences.Sequence(e.cfg.seq.SequenceID())
	if err != nil {
		return
	}
	if e.cfg.seq.Update(seq, 1.0, e.presets) {
		e.Stop(fixtures)
	}
}

// ChannelValue resolves channelName for the fixture named in env, scaled
// by the executor's own fade-up ramp. Satisfies arbiter.Executor.
func (e *Executor) ChannelValue(env *valuetree.Env, channelName string) (arbiter.FadeValue, bool) {
	fade := e.fadeAlpha()

	switch e.cfg.kind {
	case configSequence:
		seq, err := e.sequences.Sequence(e.cfg.seq.SequenceID())
		if err != nil {
			return arbiter.FadeValue{}, false
		}
		if !containsFixture(seq.AffectedFixtures(e.presets), env.FixtureID) {
			return arbiter.FadeValue{}, false
		}
		v, alpha, ok := e.cfg.seq.ChannelValue(seq, env.FixtureID, env.Channel, 1.0, 1.0, e.presets)
		if !ok {
			return arbiter.FadeValue{}, false
		}
		return arbiter.FadeValue{Value: v, Alpha: alpha * fade, Priority: e.priority}, true

	case configFeatureEffect:
		if !e.cfg.selection.HasFixture(env.FixtureID) {
			return arbiter.FadeValue{}, false
		}
		offsetIdx, ok := e.cfg.selection.OffsetIdx(env.FixtureID)
		if !ok {
			offsetIdx = 0
		}
		if e.startedAt == nil {
			return arbiter.FadeValue{}, false
		}
		v, ok := e.cfg.effect.ChannelValue(channelName, env, offsetIdx, *e.startedAt)
		if !ok {
			return arbiter.FadeValue{}, false
		}
		return arbiter.FadeValue{Value: v, Alpha: fade, Priority: e.priority}, true
	}

	return arbiter.FadeValue{}, false
}

func containsFixture(ids []uint32, id uint32) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
