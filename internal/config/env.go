package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Environment variables read at startup.
const (
	EnvTEIEndpoint        = "TEI_ENDPOINT"
	EnvPort               = "TEI_PROXY_PORT"
	EnvMaxClientBatchSize = "MAX_CLIENT_BATCH_SIZE"
	EnvUpstreamTimeout    = "UPSTREAM_TIMEOUT"
	EnvLogLevel           = "LOG_LEVEL"
	EnvLogFormat          = "LOG_FORMAT"
	EnvMetricsAddr        = "METRICS_ADDR"
)

// LookupFunc matches os.LookupEnv; tests substitute a map-backed version.
type LookupFunc func(key string) (string, bool)

// ResolveEnvVar resolves a value that may reference an environment variable.
// Supports the "os.environ/VAR_NAME" syntax so config files can defer values
// to the environment. Returns the original string if no env var pattern found.
func ResolveEnvVar(value string) string {
	if envKey, ok := strings.CutPrefix(value, "os.environ/"); ok {
		if v, found := os.LookupEnv(envKey); found {
			return v
		}
		return ""
	}
	return value
}

// applyEnvOverrides overlays environment variables on cfg. Unparsable
// numbers keep the previous value and record a warning.
func applyEnvOverrides(cfg *Config, lookup LookupFunc) {
	if v, ok := lookup(EnvTEIEndpoint); ok && v != "" {
		cfg.TEIEndpoint = v
	}
	if v, ok := lookup(EnvPort); ok && v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Port = n
		} else {
			cfg.warnf("%s=%q is not a valid port, keeping %d", EnvPort, v, cfg.Port)
		}
	}
	if v, ok := lookup(EnvMaxClientBatchSize); ok && v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.MaxClientBatchSize = n
		} else {
			cfg.warnf("%s=%q is not an integer, keeping %d", EnvMaxClientBatchSize, v, cfg.MaxClientBatchSize)
		}
	}
	if v, ok := lookup(EnvUpstreamTimeout); ok && v != "" {
		if d, err := parseDuration(v); err == nil {
			cfg.UpstreamTimeout = d
		} else {
			cfg.warnf("%s=%q is not a duration, keeping %s", EnvUpstreamTimeout, v, cfg.UpstreamTimeout)
		}
	}
	if v, ok := lookup(EnvLogLevel); ok && v != "" {
		cfg.Log.Level = strings.ToLower(v)
	}
	if v, ok := lookup(EnvLogFormat); ok && v != "" {
		cfg.Log.Format = strings.ToLower(v)
	}
	// Set-but-empty disables the metrics listener.
	if v, ok := lookup(EnvMetricsAddr); ok {
		cfg.MetricsAddr = v
	}
}

// parseDuration accepts Go durations ("45s", "1m") and bare seconds ("45").
func parseDuration(s string) (time.Duration, error) {
	if secs, err := strconv.Atoi(s); err == nil {
		return time.Duration(secs) * time.Second, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("parse duration %q: %w", s, err)
	}
	return d, nil
}

func (c *Config) warnf(format string, args ...any) {
	c.Warnings = append(c.Warnings, fmt.Sprintf(format, args...))
}
