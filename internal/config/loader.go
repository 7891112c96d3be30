package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"
)

// Load builds the configuration from defaults, the optional YAML file at
// path and the process environment. An empty path skips the file; a missing
// file is an error only when required is true.
func Load(path string, required bool) (*Config, error) {
	return LoadWithEnv(path, required, os.LookupEnv)
}

// LoadWithEnv is Load with an explicit environment lookup.
func LoadWithEnv(path string, required bool, lookup LookupFunc) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
		case errors.Is(err, fs.ErrNotExist) && !required:
			cfg.warnf("config file %s not found, using defaults and environment", path)
		default:
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	resolveEnvVars(cfg)
	applyEnvOverrides(cfg, lookup)
	warnOverflow(cfg)

	return cfg, nil
}

func resolveEnvVars(cfg *Config) {
	cfg.TEIEndpoint = ResolveEnvVar(cfg.TEIEndpoint)
	cfg.MetricsAddr = ResolveEnvVar(cfg.MetricsAddr)
}
