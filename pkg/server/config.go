package server

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/trace"
)

// Config holds configuration for the HTTP server.
type Config struct {
	// Address is the address to listen on (e.g., ":8080" or "localhost:3000").
	// Default: "localhost:8080".
	Address string

	// Server lifecycle

	// ShutdownTimeout is the maximum time to wait for graceful shutdown.
	// Default: 30 seconds.
	ShutdownTimeout time.Duration

	// ReadHeaderTimeout bounds the time to read request headers.
	// Default: 5 seconds.
	ReadHeaderTimeout time.Duration

	// IdleTimeout is the keep-alive timeout.
	// Default: 120 seconds.
	IdleTimeout time.Duration

	// Watch streams

	// WriteTimeout is the maximum time to wait when sending a message.
	// Default: 10 seconds.
	WriteTimeout time.Duration

	// HeartbeatInterval is the time between heartbeat pings.
	// Default: 30 seconds.
	HeartbeatInterval time.Duration

	// CheckOrigin is called to validate the origin of a watch request.
	// Default: same-origin only (gorilla's default).
	CheckOrigin func(r *http.Request) bool

	// Observability

	// Metrics enables request metrics and mounts /metrics.
	Metrics bool

	// MetricsNamespace prefixes every metric. Default: "formtabs".
	MetricsNamespace string

	// Registry collects the metrics. Default: a new registry.
	Registry *prometheus.Registry

	// Tracing enables the OpenTelemetry middleware.
	Tracing bool

	// TracerName names the tracer.
	TracerName string

	// TracerProvider supplies the tracer. Default: the global provider.
	TracerProvider trace.TracerProvider
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Address:           "localhost:8080",
		ShutdownTimeout:   30 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
		WriteTimeout:      10 * time.Second,
		HeartbeatInterval: 30 * time.Second,
		Metrics:           true,
		MetricsNamespace:  "formtabs",
	}
}

// withDefaults fills unset fields from DefaultConfig.
func (c *Config) withDefaults() *Config {
	defaults := DefaultConfig()
	if c == nil {
		return defaults
	}
	out := *c
	if out.Address == "" {
		out.Address = defaults.Address
	}
	if out.ShutdownTimeout == 0 {
		out.ShutdownTimeout = defaults.ShutdownTimeout
	}
	if out.ReadHeaderTimeout == 0 {
		out.ReadHeaderTimeout = defaults.ReadHeaderTimeout
	}
	if out.IdleTimeout == 0 {
		out.IdleTimeout = defaults.IdleTimeout
	}
	if out.WriteTimeout == 0 {
		out.WriteTimeout = defaults.WriteTimeout
	}
	if out.HeartbeatInterval == 0 {
		out.HeartbeatInterval = defaults.HeartbeatInterval
	}
	if out.MetricsNamespace == "" {
		out.MetricsNamespace = defaults.MetricsNamespace
	}
	if out.Registry == nil {
		out.Registry = prometheus.NewRegistry()
	}
	return &out
}
