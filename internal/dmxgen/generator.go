// Package dmxgen resolves every patched fixture's channels to raw DMX
// bytes and diffs the result against each universe's previous frame, so
// only universes that actually changed are handed to the output
// dispatcher.
package dmxgen

import (
	"sort"

	"github.com/demexconsole/console/internal/arbiter"
	"github.com/demexconsole/console/internal/fixture"
	"github.com/demexconsole/console/internal/gdtf"
	"github.com/demexconsole/console/internal/valuetree"
	"github.com/prometheus/client_golang/prometheus"
)

// UniverseSize is the number of addressable DMX channels in one universe.
const UniverseSize = 512

// QueryProvider supplies the arbiter.Query a fixture's channels resolve
// against, scoped per fixture. Implemented by internal/executor.Registry.
type QueryProvider interface {
	QueryFor(fixtureID uint32) arbiter.Query
}

var (
	frameResolveSeconds = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "console",
		Subsystem: "dmxgen",
		Name:      "frame_resolve_seconds",
		Help:      "Time spent resolving and diffing one output frame.",
	})
	dirtyUniversesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "console",
		Subsystem: "dmxgen",
		Name:      "dirty_universes_total",
		Help:      "Universes whose frame changed and were handed to the dispatcher.",
	})
	channelResolveErrorsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "console",
		Subsystem: "dmxgen",
		Name:      "channel_resolve_errors_total",
		Help:      "Channel resolutions that failed arbitration or DMX conversion.",
	})
)

func init() {
	prometheus.MustRegister(frameResolveSeconds, dirtyUniversesTotal, channelResolveErrorsTotal)
}

// Generator owns the last-sent frame for every universe it has ever seen,
// used to detect which universes changed between ticks.
type Generator struct {
	universes map[uint16]*[UniverseSize]byte
}

// NewGenerator builds a generator with no universes seeded yet; they are
// added lazily as fixtures patched on them are first resolved.
func NewGenerator() *Generator {
	return &Generator{universes: make(map[uint16]*[UniverseSize]byte)}
}

// Frame returns the current raw bytes for universe, or false if nothing
// has ever been patched there.
func (g *Generator) Frame(universe uint16) ([UniverseSize]byte, bool) {
	buf, ok := g.universes[universe]
	if !ok {
		return [UniverseSize]byte{}, false
	}
	return *buf, true
}

func (g *Generator) bufferFor(universe uint16) *[UniverseSize]byte {
	buf, ok := g.universes[universe]
	if !ok {
		buf = &[UniverseSize]byte{}
		g.universes[universe] = buf
	}
	return buf
}

// Generate resolves every patched fixture's channels against queries and
// resolver, writes the result into each fixture's universe buffer, and
// returns the universes whose bytes actually changed (or every universe,
// if force is set).
func (g *Generator) Generate(fixtures *fixture.Store, queries QueryProvider, resolver valuetree.Resolver, force bool) []uint16 {
	timer := prometheus.NewTimer(frameResolveSeconds)
	defer timer.ObserveDuration()

	dirty := make(map[uint16]struct{})
	grandMaster := fixtures.GrandMasterF32()

	for _, f := range fixtures.Fixtures() {
		buf := g.bufferFor(f.Universe())
		before := *buf

		g.resolveFixture(f, queries, resolver, grandMaster, buf)

		if force || *buf != before {
			dirty[f.Universe()] = struct{}{}
		}
	}

	out := make([]uint16, 0, len(dirty))
	for u := range dirty {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	dirtyUniversesTotal.Add(float64(len(out)))
	return out
}

func (g *Generator) resolveFixture(f *fixture.Fixture, queries QueryProvider, resolver valuetree.Resolver, grandMaster float32, buf *[UniverseSize]byte) {
	query := queries.QueryFor(f.ID())
	footprintStart := int(f.StartAddress()) - 1

	for i := range f.Mode().Channels {
		ch := &f.Mode().Channels[i]
		if len(ch.Offsets) == 0 {
			continue // virtual channel, not placed on the wire
		}

		env := f.Env(resolver, grandMaster, ch)

		value, err := arbiter.Resolve(f.ValueSources(), query, env, ch.ChannelName)
		if err != nil {
			channelResolveErrorsTotal.Inc()
			continue
		}

		dmxValue, ok := value.ToDMX(env, ch.ChannelName)
		if !ok {
			channelResolveErrorsTotal.Inc()
			continue
		}

		writeValue(buf, footprintStart, ch.Offsets, dmxValue)
	}
}

// writeValue packs a DMX word into buf at footprintStart, one byte per
// offset, least-significant byte first (offsets[0]), matching
// Channel.Offsets' documented ordering.
func writeValue(buf *[UniverseSize]byte, footprintStart int, offsets []int, v gdtf.Value) {
	for i, off := range offsets {
		pos := footprintStart + off - 1
		if pos < 0 || pos >= UniverseSize {
			continue
		}
		shift := uint(8 * i)
		buf[pos] = byte((v.Raw >> shift) & 0xFF)
	}
}
