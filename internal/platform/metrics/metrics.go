package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome labels shared by the counters below.
const (
	OutcomeSuccess            = "success"
	OutcomeMissingFields      = "missing_fields"
	OutcomeInvalidInput       = "invalid_input"
	OutcomeConflict           = "conflict"
	OutcomeInvalidCredentials = "invalid_credentials"
	OutcomeError              = "error"
	OutcomeUnauthenticated    = "unauthenticated"
	OutcomeForbidden          = "forbidden"
)

// Metrics holds all Prometheus metrics for the application. All methods are
// safe on a nil receiver so components can run without metrics.
type Metrics struct {
	Registrations *prometheus.CounterVec
	Logins        *prometheus.CounterVec
	AccessGate    *prometheus.CounterVec
	HashDuration  *prometheus.HistogramVec
	AuditDropped  prometheus.Counter
	HTTPDuration  *prometheus.HistogramVec
}

// New creates the metrics and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Registrations: f.NewCounterVec(prometheus.CounterOpts{
			Name: "authgate_registrations_total",
			Help: "Account registration attempts by outcome",
		}, []string{"outcome"}),
		Logins: f.NewCounterVec(prometheus.CounterOpts{
			Name: "authgate_logins_total",
			Help: "Login attempts by outcome",
		}, []string{"outcome"}),
		AccessGate: f.NewCounterVec(prometheus.CounterOpts{
			Name: "authgate_access_gate_total",
			Help: "Bearer token checks on protected routes by outcome",
		}, []string{"outcome"}),
		HashDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "authgate_password_hash_duration_seconds",
			Help:    "Time spent in bcrypt hash and compare operations",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}, []string{"op"}),
		AuditDropped: f.NewCounter(prometheus.CounterOpts{
			Name: "authgate_audit_dropped_total",
			Help: "Audit events dropped because the buffer was full",
		}),
		HTTPDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "authgate_http_request_duration_seconds",
			Help:    "HTTP request latency by route and status",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}
}

func (m *Metrics) IncRegistration(outcome string) {
	if m == nil {
		return
	}
	m.Registrations.WithLabelValues(outcome).Inc()
}

func (m *Metrics) IncLogin(outcome string) {
	if m == nil {
		return
	}
	m.Logins.WithLabelValues(outcome).Inc()
}

func (m *Metrics) IncAccessGate(outcome string) {
	if m == nil {
		return
	}
	m.AccessGate.WithLabelValues(outcome).Inc()
}

// ObserveHashDuration records one bcrypt operation.
func (m *Metrics) ObserveHashDuration(op string, d time.Duration) {
	if m == nil {
		return
	}
	m.HashDuration.WithLabelValues(op).Observe(d.Seconds())
}

func (m *Metrics) IncAuditDropped() {
	if m == nil {
		return
	}
	m.AuditDropped.Inc()
}

func (m *Metrics) ObserveHTTPRequest(method, route string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.HTTPDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(d.Seconds())
}
