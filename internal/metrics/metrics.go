// Package metrics exposes the dispatcher/output-side prometheus collectors
// this console doesn't already register at the package where the value is
// produced (internal/dmxgen registers its own frame-resolve metrics
// directly).
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// TickSeconds is the time one render tick spends resolving and dispatching.
	TickSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name: "console_tick_seconds",
		Help: "Time spent resolving and dispatching one render tick.",
	})

	// DirtyUniverses is the number of universes sent on the last tick.
	DirtyUniverses = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "console_dirty_universes",
		Help: "Universes that changed and were dispatched on the last tick.",
	})

	// PacketsSentTotal counts packets written per output transport.
	PacketsSentTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "console_output_packets_total",
			Help: "Total packets written by an output worker, by transport.",
		},
		[]string{"transport"},
	)

	// SendErrorsTotal counts write failures per output transport.
	SendErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "console_output_send_errors_total",
			Help: "Total write failures from an output worker, by transport.",
		},
		[]string{"transport"},
	)

	// WorkerQueueDepth reports a worker's pending-frame channel occupancy
	// (0 or 1 — dispatch.Worker is a latest-frame-wins single-slot queue).
	WorkerQueueDepth = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "console_output_queue_depth",
			Help: "Pending frames queued for an output worker.",
		},
		[]string{"transport"},
	)
)

// Handler returns the promhttp handler to mount at /metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}
