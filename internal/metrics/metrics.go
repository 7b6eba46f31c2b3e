// Package metrics exposes the Prometheus collectors that report upload,
// distribution, status update and HTTP activity.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "tasksplit"

// Upload outcomes used as the "result" label.
const (
	ResultSuccess  = "success"
	ResultRejected = "rejected"
	ResultError    = "error"
)

// Metrics groups the application's collectors. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	uploads          *prometheus.CounterVec
	uploadRows       prometheus.Histogram
	tasksDistributed prometheus.Counter
	statusUpdates    *prometheus.CounterVec
	httpDuration     *prometheus.HistogramVec
}

// MustNewMetrics creates the collectors and registers them with reg.
// Tests should pass a fresh prometheus.NewRegistry(). Registration errors panic.
func MustNewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	m := &Metrics{
		uploads: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "lists",
				Name:      "uploads_total",
				Help:      "Contact list uploads by result and file format.",
			},
			[]string{"result", "format"},
		),
		uploadRows: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "lists",
				Name:      "upload_rows",
				Help:      "Number of contact rows in accepted uploads.",
				Buckets:   prometheus.ExponentialBuckets(1, 4, 10),
			},
		),
		tasksDistributed: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "lists",
				Name:      "tasks_distributed_total",
				Help:      "Tasks created and assigned to agents.",
			},
		),
		statusUpdates: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "tasks",
				Name:      "status_updates_total",
				Help:      "Task status changes by target status.",
			},
			[]string{"status"},
		),
		httpDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "HTTP request latency by route pattern and status code.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route", "code"},
		),
	}

	reg.MustRegister(m.uploads, m.uploadRows, m.tasksDistributed, m.statusUpdates, m.httpDuration)
	return m
}

// ObserveUpload records one upload attempt. rows and tasks are only counted
// for successful uploads.
func (m *Metrics) ObserveUpload(result, format string, rows int) {
	if m == nil {
		return
	}
	m.uploads.WithLabelValues(result, format).Inc()
	if result == ResultSuccess {
		m.uploadRows.Observe(float64(rows))
		m.tasksDistributed.Add(float64(rows))
	}
}

// IncStatusUpdate counts a persisted status change.
func (m *Metrics) IncStatusUpdate(status string) {
	if m == nil {
		return
	}
	m.statusUpdates.WithLabelValues(status).Inc()
}

// ObserveHTTPRequest records the latency of one request. route should be the
// router pattern, not the raw path.
func (m *Metrics) ObserveHTTPRequest(method, route string, code int, d time.Duration) {
	if m == nil {
		return
	}
	m.httpDuration.WithLabelValues(method, route, strconv.Itoa(code)).Observe(d.Seconds())
}
