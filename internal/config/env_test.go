package config

import (
	"os"
	"testing"
	"time"
)

func mapLookup(env map[string]string) LookupFunc {
	return func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}
}

func TestResolveEnvVar(t *testing.T) {
	os.Setenv("TEST_RERANK_ENDPOINT", "http://tei:8080")
	defer os.Unsetenv("TEST_RERANK_ENDPOINT")

	got := ResolveEnvVar("os.environ/TEST_RERANK_ENDPOINT")
	if got != "http://tei:8080" {
		t.Fatalf("got %q, want http://tei:8080", got)
	}

	got = ResolveEnvVar("plain_value")
	if got != "plain_value" {
		t.Fatalf("got %q, want plain_value", got)
	}

	got = ResolveEnvVar("os.environ/NONEXISTENT_VAR_XYZ")
	if got != "" {
		t.Fatalf("got %q, want empty", got)
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	cfg := Default()
	applyEnvOverrides(cfg, mapLookup(map[string]string{
		EnvTEIEndpoint:        "http://tei:80",
		EnvPort:               "9000",
		EnvMaxClientBatchSize: "64",
		EnvUpstreamTimeout:    "5",
		EnvLogLevel:           "DEBUG",
		EnvLogFormat:          "console",
	}))

	if cfg.TEIEndpoint != "http://tei:80" {
		t.Fatalf("endpoint: got %q", cfg.TEIEndpoint)
	}
	if cfg.Port != 9000 {
		t.Fatalf("port: got %d", cfg.Port)
	}
	if cfg.MaxClientBatchSize != 64 {
		t.Fatalf("batch: got %d", cfg.MaxClientBatchSize)
	}
	if cfg.UpstreamTimeout != 5*time.Second {
		t.Fatalf("timeout: got %s", cfg.UpstreamTimeout)
	}
	if cfg.Log.Level != "debug" || cfg.Log.Format != "console" {
		t.Fatalf("log: got %+v", cfg.Log)
	}
	if cfg.MetricsAddr != DefaultMetricsAddr {
		t.Fatalf("metrics addr should be untouched, got %q", cfg.MetricsAddr)
	}
	if len(cfg.Warnings) != 0 {
		t.Fatalf("unexpected warnings %v", cfg.Warnings)
	}
}

func TestApplyEnvOverrides_InvalidNumbersKeepPrevious(t *testing.T) {
	cfg := Default()
	applyEnvOverrides(cfg, mapLookup(map[string]string{
		EnvPort:               "eighty",
		EnvMaxClientBatchSize: "lots",
		EnvUpstreamTimeout:    "soon",
	}))

	if cfg.Port != DefaultPort {
		t.Fatalf("port: got %d, want default", cfg.Port)
	}
	if cfg.MaxClientBatchSize != DefaultMaxClientBatchSize {
		t.Fatalf("batch: got %d, want default", cfg.MaxClientBatchSize)
	}
	if cfg.UpstreamTimeout != DefaultUpstreamTimeout {
		t.Fatalf("timeout: got %s, want default", cfg.UpstreamTimeout)
	}
	if len(cfg.Warnings) != 3 {
		t.Fatalf("want 3 warnings, got %v", cfg.Warnings)
	}
}

func TestApplyEnvOverrides_EmptyMetricsAddrDisables(t *testing.T) {
	cfg := Default()
	applyEnvOverrides(cfg, mapLookup(map[string]string{EnvMetricsAddr: ""}))
	if cfg.MetricsAddr != "" {
		t.Fatalf("got %q, want disabled", cfg.MetricsAddr)
	}
}

func TestParseDuration(t *testing.T) {
	d, err := parseDuration("1m30s")
	if err != nil || d != 90*time.Second {
		t.Fatalf("got %s, %v", d, err)
	}
	d, err = parseDuration("12")
	if err != nil || d != 12*time.Second {
		t.Fatalf("got %s, %v", d, err)
	}
	if _, err := parseDuration("later"); err == nil {
		t.Fatal("expected error")
	}
}
