package middleware

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/vango-dev/formtabs/internal/errors"
)

// =============================================================================
// Test Helpers
// =============================================================================

func newTestRouter(mw func(http.Handler) http.Handler, h http.HandlerFunc) http.Handler {
	r := chi.NewRouter()
	r.Use(mw)
	r.Get("/forms/{form}", h)
	return r
}

func serve(t *testing.T, h http.Handler, method, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, target, nil))
	return rec
}

// =============================================================================
// Prometheus
// =============================================================================

func TestMetricsHandlerRecordsRoutePattern(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(WithRegistry(reg))

	h := newTestRouter(m.Handler, func(w http.ResponseWriter, r *http.Request) {
		if chi.URLParam(r, "form") == "missing" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		fmt.Fprint(w, "ok")
	})

	serve(t, h, http.MethodGet, "/forms/post")
	serve(t, h, http.MethodGet, "/forms/page")
	serve(t, h, http.MethodGet, "/forms/missing")
	serve(t, h, http.MethodGet, "/nowhere")

	if got := testutil.ToFloat64(m.requestsTotal.WithLabelValues("/forms/{form}", "GET", "200")); got != 2 {
		t.Errorf("requests_total(200) = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.requestsTotal.WithLabelValues("/forms/{form}", "GET", "404")); got != 1 {
		t.Errorf("requests_total(404) = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.requestsTotal.WithLabelValues("unmatched", "GET", "404")); got != 1 {
		t.Errorf("requests_total(unmatched) = %v, want 1", got)
	}
	if n := testutil.CollectAndCount(m.requestDuration); n != 2 {
		t.Errorf("request_duration series = %d, want 2", n)
	}
}

func TestMetricsHandlerDefaultsStatusToOK(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(WithRegistry(reg), WithNamespace("forms"), WithSubsystem("api"))

	h := newTestRouter(m.Handler, func(w http.ResponseWriter, r *http.Request) {})
	serve(t, h, http.MethodGet, "/forms/post")

	if got := testutil.ToFloat64(m.requestsTotal.WithLabelValues("/forms/{form}", "GET", "200")); got != 1 {
		t.Errorf("requests_total(200) = %v, want 1", got)
	}
	families, err := reg.Gather()
	if err != nil {
		t.Fatal(err)
	}
	found := false
	for _, f := range families {
		if f.GetName() == "forms_api_http_requests_total" {
			found = true
		}
	}
	if !found {
		t.Error("expected forms_api_http_requests_total to be registered")
	}
}

func TestMetricsRecordFunctions(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(WithRegistry(reg), WithConstLabels(prometheus.Labels{"env": "test"}))

	m.RecordReload("post", nil)
	m.RecordReload("post", errors.New("E040"))
	m.RecordFieldRemoved("post")
	m.RecordFieldRemoved("post")
	m.RecordWatchStart()
	m.RecordWatchStart()
	m.RecordWatchEnd()
	m.RecordWebSocketError("write")

	if got := testutil.ToFloat64(m.reloadsTotal.WithLabelValues("post", "success")); got != 1 {
		t.Errorf("reloads_total(success) = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.reloadsTotal.WithLabelValues("post", "error")); got != 1 {
		t.Errorf("reloads_total(error) = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.fieldsRemoved.WithLabelValues("post")); got != 2 {
		t.Errorf("fields_removed_total = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.watchers); got != 1 {
		t.Errorf("watchers = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.wsErrors.WithLabelValues("write")); got != 1 {
		t.Errorf("websocket_errors_total(write) = %v, want 1", got)
	}
}

func TestMetricsRecordError(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(WithRegistry(reg))

	h := newTestRouter(m.Handler, func(w http.ResponseWriter, r *http.Request) {
		m.RecordError(r, errors.New("E020"))
		m.RecordError(r, fmt.Errorf("plain"))
	})
	serve(t, h, http.MethodGet, "/forms/x")

	if got := testutil.ToFloat64(m.requestErrors.WithLabelValues("/forms/{form}", "not_found")); got != 1 {
		t.Errorf("errors_total(not_found) = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.requestErrors.WithLabelValues("/forms/{form}", "internal")); got != 1 {
		t.Errorf("errors_total(internal) = %v, want 1", got)
	}
}

func TestCategorizeError(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{errors.New("E001"), "definition"},
		{errors.New("E022"), "not_found"},
		{errors.New("E040"), "source"},
		{errors.New("E101"), "config"},
		{errors.New("E121"), "server"},
		{fmt.Errorf("wrapped: %w", errors.New("E021")), "not_found"},
		{fmt.Errorf("boom"), "internal"},
	}
	for _, tt := range tests {
		if got := categorizeError(tt.err); got != tt.want {
			t.Errorf("categorizeError(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}

// =============================================================================
// OpenTelemetry
// =============================================================================

func TestOpenTelemetryStoresSpan(t *testing.T) {
	extracted := false
	mw := OpenTelemetry(
		WithTracerProvider(noop.NewTracerProvider()),
		WithAttributeExtractor(func(r *http.Request) []attribute.KeyValue {
			extracted = true
			return []attribute.KeyValue{attribute.String("test.attr", "ok")}
		}),
	)

	var sawSpan bool
	h := newTestRouter(mw, func(w http.ResponseWriter, r *http.Request) {
		sawSpan = SpanFromContext(r.Context()) != nil
		RecordError(r.Context(), fmt.Errorf("ignored by noop"))
		w.WriteHeader(http.StatusInternalServerError)
	})

	rec := serve(t, h, http.MethodGet, "/forms/post")
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d", rec.Code)
	}
	if !sawSpan {
		t.Error("expected SpanFromContext to return a span during the request")
	}
	if !extracted {
		t.Error("expected attribute extractor to be called")
	}
}

func TestOpenTelemetryFilterSkipsTracing(t *testing.T) {
	mw := OpenTelemetry(
		WithTracerName("forms-test"),
		WithRequestFilter(func(r *http.Request) bool { return r.URL.Path != "/forms/skip" }),
	)

	nextCalled := false
	h := newTestRouter(mw, func(w http.ResponseWriter, r *http.Request) {
		nextCalled = true
		if SpanFromContext(r.Context()) != nil {
			t.Error("expected no span when filter skips tracing")
		}
	})
	serve(t, h, http.MethodGet, "/forms/skip")

	if !nextCalled {
		t.Fatal("expected next to be called")
	}
}

func TestSpanFromContextNoSpan(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if SpanFromContext(req.Context()) != nil {
		t.Fatal("expected nil span when the request was not traced")
	}
	RecordError(req.Context(), fmt.Errorf("no span, no panic"))
}
