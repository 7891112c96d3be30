package config

import (
	"github.com/spf13/pflag"
)

// Flag names registered by RegisterFlags.
const (
	FlagConfig       = "config"
	FlagTEIEndpoint  = "tei-endpoint"
	FlagPort         = "port"
	FlagMaxBatchSize = "max-batch-size"
	FlagTimeout      = "upstream-timeout"
	FlagLogLevel     = "log-level"
	FlagMetricsAddr  = "metrics-addr"
)

// RegisterFlags adds the command-line overrides to fs. Flag defaults are
// informational only; ApplyFlags copies a value only when it was set.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.StringP(FlagConfig, "c", "rerank_proxy.yaml", "path to YAML config file")
	fs.String(FlagTEIEndpoint, DefaultTEIEndpoint, "upstream TEI base URL (env "+EnvTEIEndpoint+")")
	fs.IntP(FlagPort, "p", DefaultPort, "listen port (env "+EnvPort+")")
	fs.Int(FlagMaxBatchSize, DefaultMaxClientBatchSize, "maximum documents per request (env "+EnvMaxClientBatchSize+")")
	fs.Duration(FlagTimeout, DefaultUpstreamTimeout, "upstream call timeout (env "+EnvUpstreamTimeout+")")
	fs.String(FlagLogLevel, DefaultLogLevel, "log level: debug, info, warn, error (env "+EnvLogLevel+")")
	fs.String(FlagMetricsAddr, DefaultMetricsAddr, "Prometheus listen address, empty disables (env "+EnvMetricsAddr+")")
}

// ApplyFlags overlays explicitly set flags on cfg.
func ApplyFlags(cfg *Config, fs *pflag.FlagSet) error {
	if fs.Changed(FlagTEIEndpoint) {
		v, err := fs.GetString(FlagTEIEndpoint)
		if err != nil {
			return err
		}
		cfg.TEIEndpoint = v
	}
	if fs.Changed(FlagPort) {
		v, err := fs.GetInt(FlagPort)
		if err != nil {
			return err
		}
		cfg.Port = v
	}
	if fs.Changed(FlagMaxBatchSize) {
		v, err := fs.GetInt(FlagMaxBatchSize)
		if err != nil {
			return err
		}
		cfg.MaxClientBatchSize = v
	}
	if fs.Changed(FlagTimeout) {
		v, err := fs.GetDuration(FlagTimeout)
		if err != nil {
			return err
		}
		cfg.UpstreamTimeout = v
	}
	if fs.Changed(FlagLogLevel) {
		v, err := fs.GetString(FlagLogLevel)
		if err != nil {
			return err
		}
		cfg.Log.Level = v
	}
	if fs.Changed(FlagMetricsAddr) {
		v, err := fs.GetString(FlagMetricsAddr)
		if err != nil {
			return err
		}
		cfg.MetricsAddr = v
	}
	return nil
}
