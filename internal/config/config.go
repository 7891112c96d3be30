package config

import (
	"strings"
	"time"
)

// Defaults applied before the config file, environment and flags are read.
const (
	DefaultTEIEndpoint        = "http://localhost:4000"
	DefaultPort               = 8000
	DefaultMaxClientBatchSize = 1000
	DefaultUpstreamTimeout    = 30 * time.Second
	DefaultMaxRequestBytes    = 16 << 20
	DefaultMaxResponseBytes   = 8 << 20
	DefaultMetricsAddr        = ":9090"
	DefaultLogLevel           = "info"
	DefaultLogFormat          = "json"
)

// Config is the process-wide configuration. It is built once at startup and
// passed by value or read-only pointer to every component; nothing mutates it
// after Load returns.
type Config struct {
	// TEIEndpoint is the upstream base URL; requests go to TEIEndpoint + "/rerank".
	TEIEndpoint string `yaml:"tei_endpoint"`
	Port        int    `yaml:"port"`

	MaxClientBatchSize int           `yaml:"max_client_batch_size"`
	UpstreamTimeout    time.Duration `yaml:"upstream_timeout"`
	MaxRequestBytes    int64         `yaml:"max_request_bytes"`
	MaxResponseBytes   int64         `yaml:"max_response_bytes"`

	// TEI request options, forwarded only when true.
	Truncate  bool `yaml:"truncate"`
	RawScores bool `yaml:"raw_scores"`

	// MetricsAddr is the listen address of the Prometheus listener.
	// An empty value disables it.
	MetricsAddr string `yaml:"metrics_addr"`

	Log  LogConfig  `yaml:"log"`
	CORS CORSConfig `yaml:"cors"`

	// Overflow captures unknown top-level YAML fields so they can be reported.
	Overflow map[string]any `yaml:",inline"`

	// Warnings collects non-fatal problems found while loading. They are
	// logged by the caller once the logger exists.
	Warnings []string `yaml:"-"`
}

// LogConfig controls the zap logger.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // "json" or "console"
}

// CORSConfig controls the cross-origin headers added to every response.
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
	AllowedHeaders []string `yaml:"allowed_headers"`
	AllowedMethods []string `yaml:"allowed_methods"`
}

// Default returns a Config populated with the documented defaults.
func Default() *Config {
	return &Config{
		TEIEndpoint:        DefaultTEIEndpoint,
		Port:               DefaultPort,
		MaxClientBatchSize: DefaultMaxClientBatchSize,
		UpstreamTimeout:    DefaultUpstreamTimeout,
		MaxRequestBytes:    DefaultMaxRequestBytes,
		MaxResponseBytes:   DefaultMaxResponseBytes,
		MetricsAddr:        DefaultMetricsAddr,
		Log: LogConfig{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
		CORS: CORSConfig{
			AllowedOrigins: []string{"*"},
			AllowedHeaders: []string{"Content-Type", "Authorization", "X-Request-Id"},
			AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		},
	}
}

// RerankURL returns the full upstream rerank URL.
func (c *Config) RerankURL() string {
	return strings.TrimRight(c.TEIEndpoint, "/") + "/rerank"
}
