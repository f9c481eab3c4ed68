package config

import (
	stderrors "errors"
	"io"
	"io/fs"
	"log/slog"
	"net"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/viper"

	"github.com/vango-dev/formtabs/internal/errors"
)

const (
	// ConfigName is the base name of the configuration file. Any
	// extension viper understands is accepted; formtabs.json is the
	// conventional one.
	ConfigName = "formtabs"

	// ConfigFileName is the conventional configuration file.
	ConfigFileName = ConfigName + ".json"

	// EnvPrefix prefixes environment overrides, e.g. FORMTABS_SERVER_PORT.
	EnvPrefix = "FORMTABS"

	// DefaultPort is the default HTTP port.
	DefaultPort = 8080

	// DefaultHost is the default HTTP host.
	DefaultHost = "localhost"

	// DefaultFormsDir is the default directory of form definitions.
	DefaultFormsDir = "forms"

	// DefaultMetricsNamespace prefixes every exported metric.
	DefaultMetricsNamespace = "formtabs"

	// DefaultTracerName names the OpenTelemetry tracer.
	DefaultTracerName = "github.com/vango-dev/formtabs"
)

// Config represents the complete formtabs configuration.
type Config struct {
	// Source says where form definitions are read from.
	Source SourceConfig `mapstructure:"source" json:"source"`

	// Server contains HTTP server settings.
	Server ServerConfig `mapstructure:"server" json:"server"`

	// Metrics contains Prometheus settings.
	Metrics MetricsConfig `mapstructure:"metrics" json:"metrics"`

	// Tracing contains OpenTelemetry settings.
	Tracing TracingConfig `mapstructure:"tracing" json:"tracing"`

	// Log contains logging settings.
	Log LogConfig `mapstructure:"log" json:"log"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// SourceConfig selects the definition source. When S3.Bucket is set the
// bucket is used and Dir is ignored.
type SourceConfig struct {
	// Dir is the directory of definition files, relative to the config
	// file.
	Dir string `mapstructure:"dir" json:"dir"`

	S3 S3Config `mapstructure:"s3" json:"s3"`
}

// S3Config locates definitions in an S3 bucket.
type S3Config struct {
	Bucket string `mapstructure:"bucket" json:"bucket,omitempty"`
	Prefix string `mapstructure:"prefix" json:"prefix,omitempty"`
	Region string `mapstructure:"region" json:"region,omitempty"`

	// Endpoint overrides the service endpoint, for S3-compatible stores.
	Endpoint string `mapstructure:"endpoint" json:"endpoint,omitempty"`

	// UsePathStyle addresses the bucket in the path instead of the host.
	UsePathStyle bool `mapstructure:"usePathStyle" json:"usePathStyle,omitempty"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host string `mapstructure:"host" json:"host"`
	Port int    `mapstructure:"port" json:"port"`
}

// MetricsConfig contains Prometheus settings.
type MetricsConfig struct {
	// Enabled mounts /metrics and records request metrics.
	Enabled bool `mapstructure:"enabled" json:"enabled"`

	Namespace string `mapstructure:"namespace" json:"namespace"`
}

// TracingConfig contains OpenTelemetry settings.
type TracingConfig struct {
	Enabled    bool   `mapstructure:"enabled" json:"enabled"`
	TracerName string `mapstructure:"tracerName" json:"tracerName"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	// Level is one of debug, info, warn or error.
	Level string `mapstructure:"level" json:"level"`

	// Format is text or json.
	Format string `mapstructure:"format" json:"format"`
}

// defaults lists every key with its default value. Environment overrides
// only apply to keys listed here.
var defaults = map[string]any{
	"source.dir":             DefaultFormsDir,
	"source.s3.bucket":       "",
	"source.s3.prefix":       "",
	"source.s3.region":       "",
	"source.s3.endpoint":     "",
	"source.s3.usePathStyle": false,
	"server.host":            DefaultHost,
	"server.port":            DefaultPort,
	"metrics.enabled":        true,
	"metrics.namespace":      DefaultMetricsNamespace,
	"tracing.enabled":        false,
	"tracing.tracerName":     DefaultTracerName,
	"log.level":              "info",
	"log.format":             "text",
}

// New creates a new Config with default values.
func New() *Config {
	return &Config{
		Source:  SourceConfig{Dir: DefaultFormsDir},
		Server:  ServerConfig{Host: DefaultHost, Port: DefaultPort},
		Metrics: MetricsConfig{Enabled: true, Namespace: DefaultMetricsNamespace},
		Tracing: TracingConfig{TracerName: DefaultTracerName},
		Log:     LogConfig{Level: "info", Format: "text"},
	}
}

// newViper returns a viper instance with defaults and env overrides set up.
func newViper() *viper.Viper {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads configuration from dir. A missing configuration file is not
// an error: defaults and environment overrides still apply.
func Load(dir string) (*Config, error) {
	v := newViper()
	v.SetConfigName(ConfigName)
	v.AddConfigPath(dir)

	path := ""
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !stderrors.As(err, &notFound) {
			return nil, errors.New("E101").Wrap(err).
				WithSuggestion("Check that " + ConfigFileName + " is valid")
		}
	} else {
		path = v.ConfigFileUsed()
	}
	return decode(v, path, dir)
}

// LoadFile reads configuration from the specified file path. Unlike
// Load, the file must exist.
func LoadFile(path string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		if isNotExist(err) {
			return nil, errors.New("E100").
				WithDetail("No configuration file at " + path + ".").
				WithSuggestion("Create " + ConfigFileName + " or drop the --config flag")
		}
		return nil, errors.New("E101").Wrap(err)
	}
	return decode(v, path, filepath.Dir(path))
}

func isNotExist(err error) bool {
	var notFound viper.ConfigFileNotFoundError
	return stderrors.As(err, &notFound) || stderrors.Is(err, fs.ErrNotExist)
}

func decode(v *viper.Viper, path, dir string) (*Config, error) {
	cfg := New()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.New("E101").Wrap(err)
	}
	cfg.configPath = path
	if path == "" {
		cfg.configPath = filepath.Join(dir, ConfigFileName)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return errors.New("E101").
			WithDetail("server.port must be between 0 and 65535, got " + strconv.Itoa(c.Server.Port) + ".")
	}
	if _, err := c.LogLevel(); err != nil {
		return err
	}
	switch c.Log.Format {
	case "", "text", "json":
	default:
		return errors.New("E101").
			WithDetail("log.format must be text or json, got " + c.Log.Format + ".")
	}
	if c.Source.S3.Bucket == "" && c.Source.Dir == "" {
		return errors.New("E041").
			WithSuggestion("Set source.dir or source.s3.bucket")
	}
	return nil
}

// Path returns the path of the configuration file. When no file was
// found it is where the file would be.
func (c *Config) Path() string {
	return c.configPath
}

// Dir returns the directory containing the config file.
func (c *Config) Dir() string {
	if c.configPath == "" {
		return ""
	}
	return filepath.Dir(c.configPath)
}

// UsesS3 reports whether definitions come from S3.
func (c *Config) UsesS3() bool {
	return c.Source.S3.Bucket != ""
}

// FormsPath returns the absolute path to the definitions directory.
func (c *Config) FormsPath() string {
	if filepath.IsAbs(c.Source.Dir) {
		return c.Source.Dir
	}
	return filepath.Join(c.Dir(), c.Source.Dir)
}

// Address returns the host:port the server listens on.
func (c *Config) Address() string {
	return net.JoinHostPort(c.Server.Host, strconv.Itoa(c.Server.Port))
}

// LogLevel parses Log.Level.
func (c *Config) LogLevel() (slog.Level, error) {
	var level slog.Level
	if c.Log.Level == "" {
		return slog.LevelInfo, nil
	}
	if err := level.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return 0, errors.New("E102").
			WithDetail("Unknown log level " + c.Log.Level + ".").
			WithSuggestion("Use debug, info, warn or error")
	}
	return level, nil
}

// Logger returns a logger writing to w in the configured format and level.
func (c *Config) Logger(w io.Writer) (*slog.Logger, error) {
	level, err := c.LogLevel()
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: level}
	if c.Log.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	}
	return slog.New(slog.NewTextHandler(w, opts)), nil
}
