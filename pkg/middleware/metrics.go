package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/vango-dev/formtabs/internal/errors"
)

// MetricsConfig configures the Prometheus metrics middleware.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "formtabs").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for request duration.
	// Default: prometheus.DefBuckets
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// MetricsOption configures the Prometheus metrics middleware.
type MetricsOption func(*MetricsConfig)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Namespace = namespace
	}
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Subsystem = subsystem
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) MetricsOption {
	return func(c *MetricsConfig) {
		c.ConstLabels = labels
	}
}

// WithBuckets sets the histogram buckets.
func WithBuckets(buckets []float64) MetricsOption {
	return func(c *MetricsConfig) {
		c.Buckets = buckets
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) MetricsOption {
	return func(c *MetricsConfig) {
		c.Registry = registry
	}
}

// defaultMetricsConfig returns the default metrics configuration.
func defaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Namespace: "formtabs",
		Buckets:   prometheus.DefBuckets,
		Registry:  prometheus.DefaultRegisterer,
	}
}

// Metrics holds the Prometheus collectors of the HTTP surface and the
// form catalog.
type Metrics struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	requestErrors   *prometheus.CounterVec
	reloadsTotal    *prometheus.CounterVec
	fieldsRemoved   *prometheus.CounterVec
	watchers        prometheus.Gauge
	wsErrors        *prometheus.CounterVec
}

// NewMetrics registers the collectors with the configured registry.
// Registering twice with the same registry panics, as promauto does.
//
// Metrics collected:
//   - formtabs_http_requests_total: Counter of requests by route and status
//   - formtabs_http_request_duration_seconds: Histogram of request duration
//   - formtabs_errors_total: Counter of failed requests by route and error category
//   - formtabs_reloads_total: Counter of form reloads by form and result
//   - formtabs_fields_removed_total: Counter of removed fields by form
//   - formtabs_watchers: Gauge of open watch streams
//   - formtabs_websocket_errors_total: Counter of watch stream errors
//
// Example:
//
//	m := middleware.NewMetrics(middleware.WithNamespace("forms"))
//	r := chi.NewRouter()
//	r.Use(m.Handler)
//	r.Handle("/metrics", promhttp.Handler())
func NewMetrics(opts ...MetricsOption) *Metrics {
	config := defaultMetricsConfig()
	for _, opt := range opts {
		opt(&config)
	}
	factory := promauto.With(config.Registry)

	return &Metrics{
		requestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "http_requests_total",
			Help:        "Total number of HTTP requests handled",
			ConstLabels: config.ConstLabels,
		}, []string{"route", "method", "status"}),

		requestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "http_request_duration_seconds",
			Help:        "HTTP request duration in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}, []string{"route"}),

		requestErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "errors_total",
			Help:        "Total number of failed requests by error category",
			ConstLabels: config.ConstLabels,
		}, []string{"route", "error_type"}),

		reloadsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "reloads_total",
			Help:        "Total number of form reloads",
			ConstLabels: config.ConstLabels,
		}, []string{"form", "result"}),

		fieldsRemoved: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "fields_removed_total",
			Help:        "Total number of fields removed from forms",
			ConstLabels: config.ConstLabels,
		}, []string{"form"}),

		watchers: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "watchers",
			Help:        "Number of open watch streams",
			ConstLabels: config.ConstLabels,
		}),

		wsErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "websocket_errors_total",
			Help:        "Total WebSocket errors by type",
			ConstLabels: config.ConstLabels,
		}, []string{"type"}),
	}
}

// Handler records the count and duration of every request. Requests are
// labelled by their chi route pattern, so path parameters do not blow up
// cardinality.
func (m *Metrics) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, r)

		route := routePattern(r)
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		m.requestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
		m.requestsTotal.WithLabelValues(route, r.Method, strconv.Itoa(status)).Inc()
	})
}

// routePattern returns the matched chi pattern, or "unmatched".
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if p := rctx.RoutePattern(); p != "" {
			return p
		}
	}
	return "unmatched"
}

// RecordError counts a failed request under the category of err.
func (m *Metrics) RecordError(r *http.Request, err error) {
	m.requestErrors.WithLabelValues(routePattern(r), categorizeError(err)).Inc()
}

// RecordReload counts a form reload.
func (m *Metrics) RecordReload(form string, err error) {
	result := "success"
	if err != nil {
		result = "error"
	}
	m.reloadsTotal.WithLabelValues(form, result).Inc()
}

// RecordFieldRemoved counts a field removal.
func (m *Metrics) RecordFieldRemoved(form string) {
	m.fieldsRemoved.WithLabelValues(form).Inc()
}

// RecordWatchStart records a watch stream being opened.
func (m *Metrics) RecordWatchStart() {
	m.watchers.Inc()
}

// RecordWatchEnd records a watch stream being closed.
func (m *Metrics) RecordWatchEnd() {
	m.watchers.Dec()
}

// RecordWebSocketError records a WebSocket error.
func (m *Metrics) RecordWebSocketError(errorType string) {
	m.wsErrors.WithLabelValues(errorType).Inc()
}

// categorizeError returns a low-cardinality label for err.
func categorizeError(err error) string {
	fe, ok := errors.As(err)
	if !ok {
		return "internal"
	}
	switch fe.Category {
	case errors.CategoryLookup:
		return "not_found"
	case errors.CategoryDefinition:
		return "definition"
	case errors.CategorySource:
		return "source"
	case errors.CategoryConfig:
		return "config"
	case errors.CategoryServer:
		return "server"
	}
	return "internal"
}
