package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PollMetrics records metadata for sync poll cycles.
type PollMetrics struct {
	duration *prometheus.HistogramVec
	success  *prometheus.CounterVec
	failure  *prometheus.CounterVec
}

// NewPollMetrics registers the sync poll metrics on the provided registerer.
func NewPollMetrics(reg prometheus.Registerer) *PollMetrics {
	if reg == nil {
		return &PollMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "sync_poll_duration_seconds",
		Help:    "Duration of sync polls in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"collection"})
	success := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sync_poll_success",
		Help: "Successful sync poll executions.",
	}, []string{"collection"})
	failure := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sync_poll_failure",
		Help: "Failed sync poll executions.",
	}, []string{"collection"})
	reg.MustRegister(duration, success, failure)
	return &PollMetrics{
		duration: duration,
		success:  success,
		failure:  failure,
	}
}

// ObserveDuration records the duration for the named collection.
func (p *PollMetrics) ObserveDuration(collection string, duration time.Duration) {
	if p == nil || p.duration == nil {
		return
	}
	p.duration.WithLabelValues(normalizeLabel(collection)).Observe(duration.Seconds())
}

// IncSuccess increments the success counter for the named collection.
func (p *PollMetrics) IncSuccess(collection string) {
	if p == nil || p.success == nil {
		return
	}
	p.success.WithLabelValues(normalizeLabel(collection)).Inc()
}

// IncFailure increments the failure counter for the named collection.
func (p *PollMetrics) IncFailure(collection string) {
	if p == nil || p.failure == nil {
		return
	}
	p.failure.WithLabelValues(normalizeLabel(collection)).Inc()
}

func normalizeLabel(collection string) string {
	if collection == "" {
		return "unknown"
	}
	return collection
}
