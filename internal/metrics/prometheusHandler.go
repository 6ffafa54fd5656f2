package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var HttpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "http_requests_total",
	Help: "Total number of requests labelled by route and status",
}, []string{"path", "status"})

var countJobsInQueue = promauto.NewGauge(prometheus.GaugeOpts{
	Name: "count_jobs_in_queue",
	Help: "Number of indexing jobs waiting for a worker",
})

var dispatcherSignalCount = promauto.NewCounter(prometheus.CounterOpts{
	Name: "dispatcher_signal_count",
	Help: "How often the dispatcher has been signalled to start a worker",
})

var activeWorkerCount = promauto.NewGauge(prometheus.GaugeOpts{
	Name: "active_worker_count",
	Help: "Number of active workers",
})

var indexingOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "lesson_indexing_outcomes_total",
	Help: "Finished indexing runs labelled by final state",
}, []string{"state"})

var answersTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "lesson_answers_total",
	Help: "Questions answered labelled by result",
}, []string{"result"})

type HttpStatusRecorder struct {
	http.ResponseWriter
	Status int
}

func (r *HttpStatusRecorder) WriteHeader(code int) {
	r.Status = code
	r.ResponseWriter.WriteHeader(code)
}

// Unwrap lets http.ResponseController reach the connection underneath.
func (r *HttpStatusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

func IncrementJobsInQueue() {
	countJobsInQueue.Inc()
}

func DecrementJobsInQueue() {
	countJobsInQueue.Dec()
}

func StartDispatcherSignalCount() {
	dispatcherSignalCount.Inc()
}

func IncrementActiveWorkerCount() {
	activeWorkerCount.Inc()
}

func DecrementActiveWorkerCount() {
	activeWorkerCount.Dec()
}

func RecordIndexingOutcome(state string) {
	indexingOutcomes.WithLabelValues(state).Inc()
}

func RecordAnswer(result string) {
	answersTotal.WithLabelValues(result).Inc()
}

var jobDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "index_job_duration_seconds",
	Help:    "Total time spent indexing one lesson.",
	Buckets: []float64{.1, .5, 1, 2, 5, 10, 30, 60, 120},
}, []string{"state"})

var dependencyLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "dependency_latency_seconds",
	Help:    "Latency of pipeline stages and external calls.",
	Buckets: []float64{.005, .01, .05, .1, .25, .5, 1, 2, 5, 10, 30},
}, []string{"service"})

func CaptureExecutionMetrics(label string, timeElapsed time.Duration) {
	dependencyLatency.WithLabelValues(label).Observe(timeElapsed.Seconds())
}

func CaptureJobMetrics(label string, timeElapsed time.Duration) {
	jobDuration.WithLabelValues(label).Observe(timeElapsed.Seconds())
}
