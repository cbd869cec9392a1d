// Package metrics exposes Prometheus collectors for mutations, live events
// and the HTTP edge, plus a cheap in-process snapshot for health output
package metrics

import (
	"net/http"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome labels for mutation metrics
const (
	OutcomeOK         = "ok"
	OutcomeNotFound   = "not_found"
	OutcomeValidation = "validation"
	OutcomeConflict   = "conflict"
	OutcomeError      = "error"
)

// Metrics owns a private registry so that tests and multiple app instances
// never collide on registration. All methods are safe on a nil receiver.
type Metrics struct {
	registry *prometheus.Registry

	mutations         *prometheus.CounterVec
	mutationSeconds   *prometheus.HistogramVec
	eventsPublished   prometheus.Counter
	eventsDropped     prometheus.Counter
	subscribers       prometheus.Gauge
	rateLimitRequests *prometheus.CounterVec
	rateLimitBlocked  *prometheus.CounterVec
	httpRequests      *prometheus.CounterVec

	MutationsTotal   atomic.Int64
	ConflictsTotal   atomic.Int64
	EventsSent       atomic.Int64
	ConnectedClients atomic.Int32
	StartTime        time.Time
}

// New creates a Metrics instance with Go and process collectors registered
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		mutations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "quadro_mutations_total",
			Help: "Mutations executed, by operation and outcome",
		}, []string{"op", "outcome"}),
		mutationSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "quadro_mutation_duration_seconds",
			Help:    "Mutation latency including lock wait and commit",
			Buckets: prometheus.DefBuckets,
		}, []string{"op"}),
		eventsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "quadro_events_published_total",
			Help: "Board change events delivered to subscribers",
		}),
		eventsDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "quadro_events_dropped_total",
			Help: "Board change events dropped because a queue was full",
		}),
		subscribers: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "quadro_event_subscribers",
			Help: "Live event subscribers currently connected",
		}),
		rateLimitRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "rate_limiter_requests_total",
			Help: "Total requests seen by the rate limiter",
		}, []string{"endpoint"}),
		rateLimitBlocked: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "rate_limiter_blocked_total",
			Help: "Total requests blocked by the rate limiter",
		}, []string{"endpoint"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "quadro_http_requests_total",
			Help: "HTTP requests by method, route and status",
		}, []string{"method", "route", "status"}),
		StartTime: time.Now(),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.mutations,
		m.mutationSeconds,
		m.eventsPublished,
		m.eventsDropped,
		m.subscribers,
		m.rateLimitRequests,
		m.rateLimitBlocked,
		m.httpRequests,
	)

	return m
}

// Handler serves the registry in the Prometheus text format
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// ObserveMutation records one mutation
func (m *Metrics) ObserveMutation(op, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.mutations.WithLabelValues(op, outcome).Inc()
	m.mutationSeconds.WithLabelValues(op).Observe(d.Seconds())
	m.MutationsTotal.Add(1)
	if outcome == OutcomeConflict {
		m.ConflictsTotal.Add(1)
	}
}

// IncEventsPublished counts an event delivered to one subscriber
func (m *Metrics) IncEventsPublished() {
	if m == nil {
		return
	}
	m.eventsPublished.Inc()
	m.EventsSent.Add(1)
}

// IncEventsDropped counts an event that could not be queued
func (m *Metrics) IncEventsDropped() {
	if m == nil {
		return
	}
	m.eventsDropped.Inc()
}

// SetSubscribers sets the current subscriber count
func (m *Metrics) SetSubscribers(n int) {
	if m == nil {
		return
	}
	m.subscribers.Set(float64(n))
	m.ConnectedClients.Store(int32(n))
}

// ObserveRateLimit records a rate limiter decision
func (m *Metrics) ObserveRateLimit(endpoint string, blocked bool) {
	if m == nil {
		return
	}
	if blocked {
		m.rateLimitBlocked.WithLabelValues(endpoint).Inc()
		return
	}
	m.rateLimitRequests.WithLabelValues(endpoint).Inc()
}

// ObserveRequest records a completed HTTP request
func (m *Metrics) ObserveRequest(method, route string, status int) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
}

// Snapshot represents a point-in-time snapshot of metrics
type Snapshot struct {
	MutationsTotal   int64     `json:"mutations_total"`
	ConflictsTotal   int64     `json:"conflicts_total"`
	EventsSent       int64     `json:"events_sent"`
	ConnectedClients int32     `json:"connected_clients"`
	StartTime        time.Time `json:"start_time"`
	Uptime           string    `json:"uptime"`
}

// GetSnapshot returns a snapshot of current metrics
func (m *Metrics) GetSnapshot() Snapshot {
	if m == nil {
		return Snapshot{}
	}
	return Snapshot{
		MutationsTotal:   m.MutationsTotal.Load(),
		ConflictsTotal:   m.ConflictsTotal.Load(),
		EventsSent:       m.EventsSent.Load(),
		ConnectedClients: m.ConnectedClients.Load(),
		StartTime:        m.StartTime,
		Uptime:           time.Since(m.StartTime).Round(time.Second).String(),
	}
}
