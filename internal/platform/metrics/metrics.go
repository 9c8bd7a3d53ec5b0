// Package metrics provides Prometheus metrics for the classification service:
// task lifecycle counters, classifier latency, cache effectiveness and HTTP
// traffic. Metrics register with the default registry through promauto.
package metrics

import (
	"net/http"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "newslens"

// ─── Tasks ──────────────────────────────────────────────────────────────────

// TasksSubmitted counts tasks accepted into the queue.
var TasksSubmitted = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: namespace,
	Name:      "tasks_submitted_total",
	Help:      "Total tasks accepted for processing.",
})

// TasksRejected counts submissions refused by backpressure.
var TasksRejected = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: namespace,
	Name:      "tasks_rejected_total",
	Help:      "Total task submissions rejected.",
}, []string{"reason"})

// TasksCompleted counts tasks that finished with a result.
var TasksCompleted = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: namespace,
	Name:      "tasks_completed_total",
	Help:      "Total completed tasks.",
})

// TasksFailed counts failed tasks by reason.
var TasksFailed = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: namespace,
	Name:      "tasks_failed_total",
	Help:      "Total failed tasks.",
}, []string{"reason"})

// queueDepth reports the live queue length. Nil until ObserveQueueDepth.
var queueDepth atomic.Pointer[func() int]

// TasksQueued reports accepted tasks not yet picked up by a worker. It reads
// the queue directly so it never drifts from the submit and pickup order.
var TasksQueued = promauto.NewGaugeFunc(prometheus.GaugeOpts{
	Namespace: namespace,
	Name:      "tasks_queued",
	Help:      "Number of tasks waiting for a worker.",
}, func() float64 {
	if fn := queueDepth.Load(); fn != nil {
		return float64((*fn)())
	}
	return 0
})

// ObserveQueueDepth makes TasksQueued report fn. A nil fn reports zero.
func ObserveQueueDepth(fn func() int) {
	if fn == nil {
		queueDepth.Store(nil)
		return
	}
	queueDepth.Store(&fn)
}

// TasksActive tracks currently executing tasks.
var TasksActive = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: namespace,
	Name:      "tasks_active",
	Help:      "Number of currently executing tasks.",
})

// TaskQueueWait tracks time from submission to worker pickup.
var TaskQueueWait = promauto.NewHistogram(prometheus.HistogramOpts{
	Namespace: namespace,
	Name:      "task_queue_wait_seconds",
	Help:      "Time from task submission to execution start.",
	Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 15, 60},
})

// TaskDuration tracks processing time of finished tasks.
var TaskDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Namespace: namespace,
	Name:      "task_duration_seconds",
	Help:      "Task processing duration in seconds.",
	Buckets:   []float64{0.5, 1, 5, 15, 30, 60, 120, 300},
}, []string{"status"})

// ─── Classifier ─────────────────────────────────────────────────────────────

// ClassificationLatency tracks classifier call duration.
var ClassificationLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Namespace: namespace,
	Name:      "classification_latency_seconds",
	Help:      "Zero-shot classification call duration in seconds.",
	Buckets:   prometheus.DefBuckets,
}, []string{"provider"})

// ClassificationErrors counts failed classifier calls.
var ClassificationErrors = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: namespace,
	Name:      "classification_errors_total",
	Help:      "Total failed classification calls.",
}, []string{"provider"})

// CacheLookups counts prediction cache lookups by outcome.
var CacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: namespace,
	Name:      "cache_lookups_total",
	Help:      "Prediction cache lookups by result (hit, miss, error).",
}, []string{"backend", "result"})

// ─── HTTP ───────────────────────────────────────────────────────────────────

// HTTPRequests counts served requests by route and status code.
var HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: namespace,
	Name:      "http_requests_total",
	Help:      "Total HTTP requests.",
}, []string{"method", "route", "status"})

// HTTPDuration tracks request handling time by route.
var HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Namespace: namespace,
	Name:      "http_request_duration_seconds",
	Help:      "HTTP request duration in seconds.",
	Buckets:   prometheus.DefBuckets,
}, []string{"method", "route"})

// Handler returns the Prometheus exposition handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
