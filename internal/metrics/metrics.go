// Package metrics exposes Prometheus instrumentation for sessions, AI calls
// and uploads.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder is what the session, AI and upload code report to.
type Recorder interface {
	RecordSessionEvent(eventType string)
	RecordProfileFetchFailure()
	SetActiveSessions(n int)
	RecordAIRequest(operation, outcome string, duration time.Duration)
	RecordUpload(kind, outcome string)
}

type Collector struct {
	sessionEvents    *prometheus.CounterVec
	profileFetchFail prometheus.Counter
	activeSessions   prometheus.Gauge
	aiRequests       *prometheus.CounterVec
	aiLatency        *prometheus.HistogramVec
	uploads          *prometheus.CounterVec
}

func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		sessionEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "skillsprint_session_events_total",
			Help: "Identity events processed by session stores",
		}, []string{"type"}),
		profileFetchFail: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "skillsprint_profile_fetch_fail_total",
			Help: "Profile fetches that failed while processing an identity event",
		}),
		activeSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "skillsprint_active_sessions",
			Help: "Session stores currently held in memory",
		}),
		aiRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "skillsprint_ai_requests_total",
			Help: "AI backend calls by operation and outcome",
		}, []string{"operation", "outcome"}),
		aiLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "skillsprint_ai_request_seconds",
			Help:    "AI backend call latency in seconds",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		}, []string{"operation"}),
		uploads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "skillsprint_uploads_total",
			Help: "File uploads by kind and outcome",
		}, []string{"kind", "outcome"}),
	}

	reg.MustRegister(
		c.sessionEvents,
		c.profileFetchFail,
		c.activeSessions,
		c.aiRequests,
		c.aiLatency,
		c.uploads,
	)

	return c
}

func (c *Collector) RecordSessionEvent(eventType string) {
	c.sessionEvents.WithLabelValues(eventType).Inc()
}

func (c *Collector) RecordProfileFetchFailure() {
	c.profileFetchFail.Inc()
}

func (c *Collector) SetActiveSessions(n int) {
	c.activeSessions.Set(float64(n))
}

func (c *Collector) RecordAIRequest(operation, outcome string, duration time.Duration) {
	c.aiRequests.WithLabelValues(operation, outcome).Inc()
	c.aiLatency.WithLabelValues(operation).Observe(duration.Seconds())
}

func (c *Collector) RecordUpload(kind, outcome string) {
	c.uploads.WithLabelValues(kind, outcome).Inc()
}

// Nop discards everything. Used by tests and when metrics are disabled.
type Nop struct{}

func (Nop) RecordSessionEvent(string)                     {}
func (Nop) RecordProfileFetchFailure()                    {}
func (Nop) SetActiveSessions(int)                         {}
func (Nop) RecordAIRequest(string, string, time.Duration) {}
func (Nop) RecordUpload(string, string)                   {}

// Handler serves the Prometheus scrape endpoint.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
