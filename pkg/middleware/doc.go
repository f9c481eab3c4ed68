// Package middleware provides observability middleware for the formtabs
// HTTP surface.
//
// Both middlewares are plain func(http.Handler) http.Handler values and
// plug into chi with Use.
//
// # OpenTelemetry Middleware
//
// OpenTelemetry traces every request with a server span named after the
// matched route pattern.
//
//	r := chi.NewRouter()
//	r.Use(middleware.OpenTelemetry(
//	    middleware.WithTracerName("forms"),
//	    middleware.WithRequestFilter(func(r *http.Request) bool {
//	        return r.URL.Path != "/metrics"
//	    }),
//	))
//
// # Prometheus Metrics
//
// Metrics counts requests by route pattern and status, and exposes
// recorders for catalog events (reloads, removed fields, watch streams):
//
//	m := middleware.NewMetrics(middleware.WithRegistry(reg))
//	r.Use(m.Handler)
//	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
package middleware
