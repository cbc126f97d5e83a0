package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "keydesk"

// PrometheusRecorder exports metrics through its own registry.
type PrometheusRecorder struct {
	registry *prometheus.Registry

	httpRequests     *prometheus.CounterVec
	httpDuration     *prometheus.HistogramVec
	adminsRegistered prometheus.Counter
	adminLogins      *prometheus.CounterVec
	usersRegistered  *prometheus.CounterVec
	rateLimited      prometheus.Counter
}

// NewPrometheus creates a recorder and registers its collectors, plus the
// Go runtime and process collectors, on a fresh registry.
func NewPrometheus() *PrometheusRecorder {
	registry := prometheus.NewRegistry()

	p := &PrometheusRecorder{
		registry: registry,
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests served, by method, route and status code",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		adminsRegistered: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "admin",
			Name:      "registrations_total",
			Help:      "Admins registered",
		}),
		adminLogins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "admin",
			Name:      "logins_total",
			Help:      "Admin login attempts by outcome",
		}, []string{"outcome"}),
		usersRegistered: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "user",
			Name:      "registrations_total",
			Help:      "User registrations by outcome",
		}, []string{"outcome"}),
		rateLimited: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "user",
			Name:      "rate_limited_total",
			Help:      "Registration requests rejected by the rate limiter",
		}),
	}

	registry.MustRegister(
		p.httpRequests,
		p.httpDuration,
		p.adminsRegistered,
		p.adminLogins,
		p.usersRegistered,
		p.rateLimited,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return p
}

// Registry returns the underlying registry.
func (p *PrometheusRecorder) Registry() *prometheus.Registry {
	return p.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (p *PrometheusRecorder) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{})
}

// ObserveHTTPRequest records one served request.
func (p *PrometheusRecorder) ObserveHTTPRequest(method, route string, status int, duration time.Duration) {
	p.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	p.httpDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// IncAdminRegistered increments the admin registration counter.
func (p *PrometheusRecorder) IncAdminRegistered() {
	p.adminsRegistered.Inc()
}

// IncAdminLogin increments the login counter for outcome.
func (p *PrometheusRecorder) IncAdminLogin(outcome string) {
	p.adminLogins.WithLabelValues(outcome).Inc()
}

// IncUserRegistered increments the registration counter for outcome.
func (p *PrometheusRecorder) IncUserRegistered(outcome string) {
	p.usersRegistered.WithLabelValues(outcome).Inc()
}

// IncRateLimited increments the rate-limited counter.
func (p *PrometheusRecorder) IncRateLimited() {
	p.rateLimited.Inc()
}
