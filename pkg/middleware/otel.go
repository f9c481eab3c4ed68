package middleware

import (
	"context"
	"fmt"
	"net/http"

	chimw "github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Default tracer name for formtabs.
const defaultTracerName = "github.com/vango-dev/formtabs"

// OTelConfig configures the OpenTelemetry middleware.
type OTelConfig struct {
	// TracerName is the name of the tracer.
	TracerName string

	// TracerProvider supplies the tracer.
	// Default: the global provider from otel.GetTracerProvider().
	TracerProvider trace.TracerProvider

	// Filter determines which requests to trace.
	// Return true to trace the request, false to skip.
	// If nil, all requests are traced.
	Filter func(r *http.Request) bool

	// AttributeExtractor extracts custom attributes from the request.
	AttributeExtractor func(r *http.Request) []attribute.KeyValue

	// tracer is the resolved tracer instance.
	tracer trace.Tracer
}

// OTelOption configures the OpenTelemetry middleware.
type OTelOption func(*OTelConfig)

// WithTracerName sets the tracer name.
func WithTracerName(name string) OTelOption {
	return func(c *OTelConfig) {
		c.TracerName = name
	}
}

// WithTracerProvider sets the tracer provider.
func WithTracerProvider(tp trace.TracerProvider) OTelOption {
	return func(c *OTelConfig) {
		c.TracerProvider = tp
	}
}

// WithRequestFilter sets a filter function for requests.
func WithRequestFilter(filter func(r *http.Request) bool) OTelOption {
	return func(c *OTelConfig) {
		c.Filter = filter
	}
}

// WithAttributeExtractor sets a custom attribute extractor.
func WithAttributeExtractor(extractor func(r *http.Request) []attribute.KeyValue) OTelOption {
	return func(c *OTelConfig) {
		c.AttributeExtractor = extractor
	}
}

// defaultOTelConfig returns the default OpenTelemetry configuration.
func defaultOTelConfig() OTelConfig {
	return OTelConfig{
		TracerName: defaultTracerName,
	}
}

// OpenTelemetry creates middleware that traces every request.
//
// The middleware:
//   - Creates a server span per request named after the route pattern
//   - Stores the span context in the request context for handlers
//   - Records the response status and marks 5xx responses as errors
//
// Example:
//
//	r := chi.NewRouter()
//	r.Use(middleware.OpenTelemetry(middleware.WithTracerName("forms")))
//
// Configure the global tracer provider in main() before starting the
// server, or pass one with WithTracerProvider.
func OpenTelemetry(opts ...OTelOption) func(http.Handler) http.Handler {
	config := defaultOTelConfig()
	for _, opt := range opts {
		opt(&config)
	}

	tp := config.TracerProvider
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	config.tracer = tp.Tracer(config.TracerName)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if config.Filter != nil && !config.Filter(r) {
				next.ServeHTTP(w, r)
				return
			}

			attrs := []attribute.KeyValue{
				attribute.String("http.method", r.Method),
				attribute.String("http.target", r.URL.Path),
			}
			if config.AttributeExtractor != nil {
				attrs = append(attrs, config.AttributeExtractor(r)...)
			}

			spanCtx, span := config.tracer.Start(
				r.Context(),
				fmt.Sprintf("formtabs %s %s", r.Method, r.URL.Path),
				trace.WithSpanKind(trace.SpanKindServer),
				trace.WithAttributes(attrs...),
			)
			defer span.End()

			spanCtx = context.WithValue(spanCtx, spanContextKey{}, true)
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			r = r.WithContext(spanCtx)

			next.ServeHTTP(ww, r)

			// The route pattern is only known once chi has matched.
			route := routePattern(r)
			span.SetName(fmt.Sprintf("formtabs %s %s", r.Method, route))
			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			span.SetAttributes(
				attribute.String("http.route", route),
				attribute.Int("http.status_code", status),
			)
			if status >= http.StatusInternalServerError {
				span.SetStatus(codes.Error, http.StatusText(status))
			} else {
				span.SetStatus(codes.Ok, "")
			}
		})
	}
}

// spanContextKey marks a context that passed through the middleware.
type spanContextKey struct{}

// SpanFromContext retrieves the request span from the context.
// Returns nil if the request was not traced.
//
// Example:
//
//	func handler(w http.ResponseWriter, r *http.Request) {
//	    if span := middleware.SpanFromContext(r.Context()); span != nil {
//	        span.SetAttributes(attribute.String("formtabs.form", name))
//	    }
//	}
func SpanFromContext(ctx context.Context) trace.Span {
	if traced, _ := ctx.Value(spanContextKey{}).(bool); traced {
		return trace.SpanFromContext(ctx)
	}
	return nil
}

// RecordError attaches err to the request span, if any.
func RecordError(ctx context.Context, err error) {
	if span := SpanFromContext(ctx); span != nil && err != nil {
		span.RecordError(err)
	}
}
