package service

import (
	"net/http"
	"runtime"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService encapsulates Prometheus instrumentation for the HTTP
// surface and the domain operations.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	enrollments     prometheus.Counter
	expulsions      prometheus.Counter
	distributions   *prometheus.CounterVec
	planned         prometheus.Counter
	rejected        *prometheus.CounterVec
}

// NewMetricsService registers the collectors on a private registry.
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

	enrollments := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "enrollments_total",
		Help: "Total successful enrollments",
	})

	expulsions := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "expulsions_total",
		Help: "Total successful expulsions",
	})

	distributions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "distributions_total",
		Help: "Total distribution runs by outcome",
	}, []string{"outcome"})

	planned := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "distribution_homeworks_planned_total",
		Help: "Homeworks placed into reviewer slots",
	})

	rejected := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "distribution_homeworks_rejected_total",
		Help: "Homeworks rejected during planning by reason",
	}, []string{"reason"})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, enrollments, expulsions,
		distributions, planned, rejected, goroutines)

	return &MetricsService{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		enrollments:     enrollments,
		expulsions:      expulsions,
		distributions:   distributions,
		planned:         planned,
		rejected:        rejected,
	}
}

// Handler exposes the Prometheus scrape endpoint.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// ObserveHTTPRequest records one handled request.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	code := strconv.Itoa(status)
	m.requestDuration.WithLabelValues(method, path, code).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, code).Inc()
}

// IncEnrollment counts one committed enrollment.
func (m *MetricsService) IncEnrollment() {
	if m == nil {
		return
	}
	m.enrollments.Inc()
}

// IncExpulsion counts one committed expulsion.
func (m *MetricsService) IncExpulsion() {
	if m == nil {
		return
	}
	m.expulsions.Inc()
}

// ObserveDistribution records the outcome of one distribution run.
func (m *MetricsService) ObserveDistribution(plannedCount int, rejectedReasons map[string]int, err error) {
	if m == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	m.distributions.WithLabelValues(outcome).Inc()
	if err != nil {
		return
	}
	m.planned.Add(float64(plannedCount))
	for reason, count := range rejectedReasons {
		m.rejected.WithLabelValues(reason).Add(float64(count))
	}
}
