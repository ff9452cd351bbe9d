package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Planning cycle outcomes recorded in CyclesTotal.
const (
	OutcomeRouted     = "routed"
	OutcomeNoRoute    = "no_route"
	OutcomeFailed     = "failed"
	OutcomeSuperseded = "superseded"
	OutcomeSkipped    = "skipped"
)

// Metrics holds the dispatch planner collectors on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	CyclesTotal          *prometheus.CounterVec
	OptimizeDuration     prometheus.Histogram
	WaypointCeilingTotal prometheus.Counter
	PendingRequests      prometheus.Gauge
	PlanStops            prometheus.Histogram
}

func New() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	m := &Metrics{
		registry: registry,
		CyclesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "dispatch",
			Name:      "planning_cycles_total",
			Help:      "Planning cycles by outcome.",
		}, []string{"outcome"}),
		OptimizeDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "dispatch",
			Name:      "optimize_duration_seconds",
			Help:      "Latency of trip optimization requests.",
			Buckets:   prometheus.DefBuckets,
		}),
		WaypointCeilingTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "dispatch",
			Name:      "waypoint_ceiling_total",
			Help:      "Responses that hit the optimizer stop-count ceiling.",
		}),
		PendingRequests: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "dispatch",
			Name:      "pending_requests",
			Help:      "Drop-off requests in the pending set at the last planning cycle.",
		}),
		PlanStops: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "dispatch",
			Name:      "plan_stops",
			Help:      "Stops submitted per plan, final stop included.",
			Buckets:   prometheus.LinearBuckets(2, 2, 10),
		}),
	}

	registry.MustRegister(
		m.CyclesTotal,
		m.OptimizeDuration,
		m.WaypointCeilingTotal,
		m.PendingRequests,
		m.PlanStops,
	)

	return m
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
