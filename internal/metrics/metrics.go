package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	CollaboratorCalls = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "care4_collaborator_calls_total",
		Help: "Calls made to backing services, by operation and result.",
	}, []string{"op", "result"})

	CollaboratorDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "care4_collaborator_duration_seconds",
		Help:    "Latency of calls made to backing services.",
		Buckets: prometheus.DefBuckets,
	}, []string{"op"})

	FormSubmissions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "care4_form_submissions_total",
		Help: "Form submissions by family, type and result.",
	}, []string{"family", "type", "result"})
)

// ObserveCall records one backing-service call that started at start.
func ObserveCall(op string, start time.Time, err error) {
	CollaboratorCalls.WithLabelValues(op, Result(err)).Inc()
	CollaboratorDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
}

// Result is the result label for err.
func Result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
