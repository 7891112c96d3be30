package config

import (
	"fmt"
	"net/url"
	"sort"

	"github.com/hashicorp/go-multierror"
)

// Validate checks every field and reports all problems at once.
func Validate(cfg *Config) error {
	var result *multierror.Error

	if u, err := url.Parse(cfg.TEIEndpoint); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		result = multierror.Append(result, fmt.Errorf("tei_endpoint %q must be an absolute http(s) URL", cfg.TEIEndpoint))
	}
	if cfg.Port < 1 || cfg.Port > 65535 {
		result = multierror.Append(result, fmt.Errorf("port %d out of range 1-65535", cfg.Port))
	}
	if cfg.MaxClientBatchSize < 1 {
		result = multierror.Append(result, fmt.Errorf("max_client_batch_size must be at least 1, got %d", cfg.MaxClientBatchSize))
	}
	if cfg.UpstreamTimeout <= 0 {
		result = multierror.Append(result, fmt.Errorf("upstream_timeout must be positive, got %s", cfg.UpstreamTimeout))
	}
	if cfg.MaxRequestBytes <= 0 {
		result = multierror.Append(result, fmt.Errorf("max_request_bytes must be positive, got %d", cfg.MaxRequestBytes))
	}
	if cfg.MaxResponseBytes <= 0 {
		result = multierror.Append(result, fmt.Errorf("max_response_bytes must be positive, got %d", cfg.MaxResponseBytes))
	}
	switch cfg.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		result = multierror.Append(result, fmt.Errorf("log.level %q must be one of debug, info, warn, error", cfg.Log.Level))
	}
	switch cfg.Log.Format {
	case "json", "console":
	default:
		result = multierror.Append(result, fmt.Errorf("log.format %q must be json or console", cfg.Log.Format))
	}

	return result.ErrorOrNil()
}

func warnOverflow(cfg *Config) {
	if len(cfg.Overflow) == 0 {
		return
	}
	keys := make([]string, 0, len(cfg.Overflow))
	for k := range cfg.Overflow {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		cfg.warnf("unrecognized config field %q will be ignored", k)
	}
}
