package service

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService encapsulates Prometheus instrumentation for the HTTP
// surface and the live notification channel.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	liveSessions    prometheus.Gauge
	presenceEvents  prometheus.Counter
}

// NewMetricsService registers core Prometheus collectors.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	liveSessions := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "live_sessions",
		Help: "Currently connected teacher dashboard sessions",
	})

	presenceEvents := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "presence_events_total",
		Help: "Presence change events fanned out to teacher sessions",
	})

	registry.MustRegister(requestDuration, requestTotal, liveSessions, presenceEvents)

	return &MetricsService{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		liveSessions:    liveSessions,
		presenceEvents:  presenceEvents,
	}
}

// Handler exposes the Prometheus scrape endpoint.
func (s *MetricsService) Handler() http.Handler {
	return s.handler
}

// ObserveHTTPRequest records one handled request.
func (s *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	labels := []string{method, path, strconv.Itoa(status)}
	s.requestDuration.WithLabelValues(labels...).Observe(duration.Seconds())
	s.requestTotal.WithLabelValues(labels...).Inc()
}

// SessionOpened tracks a new live connection.
func (s *MetricsService) SessionOpened() {
	s.liveSessions.Inc()
}

// SessionClosed tracks a dropped live connection.
func (s *MetricsService) SessionClosed() {
	s.liveSessions.Dec()
}

// PresenceEventPushed counts one fan-out delivery.
func (s *MetricsService) PresenceEventPushed() {
	s.presenceEvents.Inc()
}
