package metric

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "gamesvc"

// Outcome label values.
const (
	OutcomeOK       = "ok"
	OutcomeError    = "error"
	OutcomeTimeout  = "timeout"
	OutcomeCanceled = "canceled"
)

// Metrics holds every collector exported by gamesvc.
//
// All methods are safe on a nil *Metrics, which records nothing.
type Metrics struct {
	registry *prometheus.Registry

	OperationsTotal     *prometheus.CounterVec
	OperationDuration   *prometheus.HistogramVec
	PendingOperations   *prometheus.GaugeVec
	ReplacedTotal       *prometheus.CounterVec
	ConflictResolutions *prometheus.CounterVec
	DispatchQueueDepth  prometheus.Gauge
	DispatchPanics      prometheus.Counter
	EventsFlushed       prometheus.Counter
}

// New creates the collectors on a fresh registry that also carries the Go
// runtime and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return NewWithRegistry(reg)
}

// NewWithRegistry creates the collectors on reg.
func NewWithRegistry(reg *prometheus.Registry) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		registry: reg,

		OperationsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "operations_total",
			Help:      "Completed service operations by outcome",
		}, []string{"subsystem", "op", "outcome"}),

		OperationDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "operation_duration_seconds",
			Help:      "Service operation latency from call to settlement",
			Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60},
		}, []string{"subsystem", "op"}),

		PendingOperations: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "pending_operations",
			Help:      "Completions waiting for a bridge callback",
		}, []string{"subsystem", "op"}),

		ReplacedTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "replaced_completions_total",
			Help:      "Pending completions canceled because a newer call replaced them",
		}, []string{"subsystem", "op"}),

		ConflictResolutions: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cloudsave",
			Name:      "conflict_resolutions_total",
			Help:      "Saved game conflicts resolved, by chosen side and decision source",
		}, []string{"strategy", "source"}),

		DispatchQueueDepth: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "dispatch",
			Name:      "queue_depth",
			Help:      "Callbacks waiting for the next drain",
		}),

		DispatchPanics: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "dispatch",
			Name:      "panics_total",
			Help:      "Callbacks that panicked while draining",
		}),

		EventsFlushed: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "events",
			Name:      "increments_flushed_total",
			Help:      "Buffered event increments sent to the bridge",
		}),
	}
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler returns the /metrics HTTP handler.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ObserveOperation records one settled operation.
func (m *Metrics) ObserveOperation(subsystem, op, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.OperationsTotal.WithLabelValues(subsystem, op, outcome).Inc()
	m.OperationDuration.WithLabelValues(subsystem, op).Observe(d.Seconds())
}

// ObserveConflict records a conflict resolution.
func (m *Metrics) ObserveConflict(strategy, source string) {
	if m == nil {
		return
	}
	m.ConflictResolutions.WithLabelValues(strategy, source).Inc()
}

// SetQueueDepth records the dispatcher backlog.
func (m *Metrics) SetQueueDepth(n int) {
	if m == nil {
		return
	}
	m.DispatchQueueDepth.Set(float64(n))
}

// IncDispatchPanics counts a recovered callback panic.
func (m *Metrics) IncDispatchPanics() {
	if m == nil {
		return
	}
	m.DispatchPanics.Inc()
}

// AddEventsFlushed counts flushed event increments.
func (m *Metrics) AddEventsFlushed(n int) {
	if m == nil {
		return
	}
	m.EventsFlushed.Add(float64(n))
}

// Subsystem returns a recorder bound to one subsystem label.
func (m *Metrics) Subsystem(name string) *SubsystemRecorder {
	return &SubsystemRecorder{m: m, subsystem: name}
}

// SubsystemRecorder records pending-completion lifecycle for one subsystem.
type SubsystemRecorder struct {
	m         *Metrics
	subsystem string
}

// CompletionReplaced counts a stale completion canceled by a newer call.
func (r *SubsystemRecorder) CompletionReplaced(op string) {
	if r == nil || r.m == nil {
		return
	}
	r.m.ReplacedTotal.WithLabelValues(r.subsystem, op).Inc()
}

// PendingChanged adjusts the pending gauge.
func (r *SubsystemRecorder) PendingChanged(op string, delta int) {
	if r == nil || r.m == nil {
		return
	}
	r.m.PendingOperations.WithLabelValues(r.subsystem, op).Add(float64(delta))
}

// Operation records a settled operation for this subsystem.
func (r *SubsystemRecorder) Operation(op, outcome string, d time.Duration) {
	if r == nil {
		return
	}
	r.m.ObserveOperation(r.subsystem, op, outcome, d)
}
