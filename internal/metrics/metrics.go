// Package metrics holds the Prometheus collectors exported on /metrics.
// A nil *Metrics is valid and records nothing.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "cms"

// Validation outcomes recorded by ObserveValidation.
const (
	ValidationOK       = "ok"
	ValidationRejected = "rejected"
	ValidationRevoked  = "revoked"
	ValidationError    = "error"
)

type Metrics struct {
	registry *prometheus.Registry

	tokensIssued  prometheus.Counter
	tokensRevoked *prometheus.CounterVec
	validations   *prometheus.CounterVec
	sweepRemoved  prometheus.Counter
	sweepFailures prometheus.Counter
	sweepLast     prometheus.Gauge

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		tokensIssued: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "session",
			Name:      "tokens_issued_total",
			Help:      "Session tokens issued and stored.",
		}),
		tokensRevoked: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "session",
			Name:      "revocations_total",
			Help:      "Revocation requests by scope (single or holder).",
		}, []string{"scope"}),
		validations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "session",
			Name:      "validations_total",
			Help:      "Token validations by outcome.",
		}, []string{"result"}),
		sweepRemoved: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sweeper",
			Name:      "tokens_removed_total",
			Help:      "Expired token records removed by the sweeper.",
		}),
		sweepFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sweeper",
			Name:      "failures_total",
			Help:      "Sweep runs that failed or panicked.",
		}),
		sweepLast: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "sweeper",
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix time of the last successful sweep.",
		}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency by method and route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.tokensIssued,
		m.tokensRevoked,
		m.validations,
		m.sweepRemoved,
		m.sweepFailures,
		m.sweepLast,
		m.httpRequests,
		m.httpDuration,
	)

	return m
}

// Registry exposes the underlying registry, mostly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) TokenIssued() {
	if m == nil {
		return
	}
	m.tokensIssued.Inc()
}

func (m *Metrics) TokenRevoked(scope string) {
	if m == nil {
		return
	}
	m.tokensRevoked.WithLabelValues(scope).Inc()
}

func (m *Metrics) ObserveValidation(result string) {
	if m == nil {
		return
	}
	m.validations.WithLabelValues(result).Inc()
}

func (m *Metrics) SweepSucceeded(removed int64, at time.Time) {
	if m == nil {
		return
	}
	m.sweepRemoved.Add(float64(removed))
	m.sweepLast.Set(float64(at.Unix()))
}

func (m *Metrics) SweepFailed() {
	if m == nil {
		return
	}
	m.sweepFailures.Inc()
}

func (m *Metrics) ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}
