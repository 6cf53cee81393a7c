// Package show ties the Fixture/Preset/Sequence/Timing/Executor stores and
// the DMX generator/output dispatcher into one process-wide root value and
// drives the render loop's tick, coordinating every store behind one
// sync.RWMutex with an update ticker and an optional status callback.
package show

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/demexconsole/console/internal/dispatch"
	"github.com/demexconsole/console/internal/dmxgen"
	"github.com/demexconsole/console/internal/executor"
	"github.com/demexconsole/console/internal/fixture"
	"github.com/demexconsole/console/internal/metrics"
	"github.com/demexconsole/console/internal/preset"
	"github.com/demexconsole/console/internal/sequence"
	"github.com/demexconsole/console/internal/timing"
)

// DefaultTickRate is the console's default DMX refresh rate (60Hz).
const DefaultTickRate = time.Second / 60

// Show is the single root value every tick reads from and writes to. Tests
// construct isolated shows rather than relying on process-wide state.
type Show struct {
	mu sync.RWMutex

	Fixtures  *fixture.Store
	Presets   *preset.Store
	Sequences *sequence.Store
	Timing    *timing.Store
	Executors *executor.Registry

	gen        *dmxgen.Generator
	dispatcher *dispatch.Dispatcher
	tickRate   time.Duration

	onTick func(dirty []uint16, d time.Duration)

	currentSelection *fixture.Selection

	stop    chan struct{}
	stopped chan struct{}
}

// CurrentSelection returns the programmer's working fixture selection, as
// last set by SetCurrentSelection. Input-device bindings read and write
// this rather than threading a selection through every action by hand.
func (s *Show) CurrentSelection() *fixture.Selection {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.currentSelection
}

// SetCurrentSelection replaces the programmer's working fixture selection.
func (s *Show) SetCurrentSelection(sel *fixture.Selection) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.currentSelection = sel
}

// New builds a Show wiring fixtures to a fresh preset/sequence/timing/
// executor set, with its own DMX generator, bound to dispatcher for
// output. A nil dispatcher is valid for tests that only want to inspect
// generated frames.
func New(fixtures *fixture.Store, dispatcher *dispatch.Dispatcher) *Show {
	presets := preset.NewStore()
	return &Show{
		Fixtures:         fixtures,
		Presets:          presets,
		Sequences:        sequence.NewStore(),
		Timing:           timing.NewStore(),
		Executors:        executor.NewRegistry(fixtures),
		gen:              dmxgen.NewGenerator(),
		dispatcher:       dispatcher,
		tickRate:         DefaultTickRate,
		currentSelection: fixture.NewSelection(nil),
	}
}

// SetTickRate overrides the render loop's tick interval; tests typically
// call Tick directly instead and never need this.
func (s *Show) SetTickRate(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tickRate = d
}

// SetTickCallback installs a hook invoked after every tick with the
// universes sent and how long the tick took (resolution and dispatch), for status-API consumers
// that want tick-rate/dirty-universe telemetry without polling.
func (s *Show) SetTickCallback(fn func(dirty []uint16, elapsed time.Duration)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onTick = fn
}

// RLock/RUnlock let UI code read a consistent snapshot of the stores
// without racing the render thread's writes.
func (s *Show) RLock()   { s.mu.RLock() }
func (s *Show) RUnlock() { s.mu.RUnlock() }

// Tick advances every executor/fader by one frame, regenerates DMX, and
// dispatches whatever universes came out dirty. The write lock is held
// only for resolution, never across the (non-blocking) dispatch send —
// no blocking I/O happens inside the critical section.
func (s *Show) Tick(force bool) []uint16 {
	start := time.Now()

	s.mu.Lock()
	s.Executors.UpdateAll()
	dirty := s.gen.Generate(s.Fixtures, s.Executors, s.Presets, force)
	s.mu.Unlock()

	if s.dispatcher != nil {
		s.dispatcher.Dispatch(s.gen, dirty)
	}

	elapsed := time.Since(start)
	metrics.TickSeconds.Observe(elapsed.Seconds())
	metrics.DirtyUniverses.Set(float64(len(dirty)))
	if s.onTick != nil {
		s.onTick(dirty, elapsed)
	}
	return dirty
}

// Frame returns the last-resolved bytes for universe, for inspection/tests.
func (s *Show) Frame(universe uint16) ([dmxgen.UniverseSize]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.gen.Frame(universe)
}

// Run starts the render loop, ticking at the configured rate until ctx is
// cancelled or Stop is called. The first tick forces every universe dirty
// so output workers receive an initial full frame.
func (s *Show) Run(ctx context.Context) {
	s.mu.Lock()
	s.stop = make(chan struct{})
	s.stopped = make(chan struct{})
	rate := s.tickRate
	s.mu.Unlock()

	defer close(s.stopped)

	ticker := time.NewTicker(rate)
	defer ticker.Stop()

	s.Tick(true)

	for {
		select {
		case <-ctx.Done():
			log.Printf("🎬 show render loop stopping: %v", ctx.Err())
			return
		case <-s.stop:
			return
		case <-ticker.C:
			s.Tick(false)
		}
	}
}

// Stop signals Run to exit and blocks until it has, used by callers that
// started Run in a goroutine rather than cancelling a context.
func (s *Show) Stop() {
	s.mu.RLock()
	stop := s.stop
	stopped := s.stopped
	s.mu.RUnlock()

	if stop == nil {
		return
	}
	close(stop)
	<-stopped
}
