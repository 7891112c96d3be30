package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "rerank_proxy.yaml")
	if err := os.WriteFile(cfgPath, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return cfgPath
}

func TestLoadDefaultsWithoutFile(t *testing.T) {
	cfg, err := LoadWithEnv("", false, mapLookup(nil))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.TEIEndpoint != "http://localhost:4000" {
		t.Fatalf("tei_endpoint: got %q", cfg.TEIEndpoint)
	}
	if cfg.Port != 8000 {
		t.Fatalf("port: got %d, want 8000 (default)", cfg.Port)
	}
	if cfg.MaxClientBatchSize != 1000 {
		t.Fatalf("max_client_batch_size: got %d, want 1000", cfg.MaxClientBatchSize)
	}
	if cfg.UpstreamTimeout != 30*time.Second {
		t.Fatalf("upstream_timeout: got %s", cfg.UpstreamTimeout)
	}
	if err := Validate(cfg); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
}

func TestLoadMinimalConfig(t *testing.T) {
	cfgPath := writeConfig(t, `
tei_endpoint: http://tei.internal:8080/
port: 8100
max_client_batch_size: 32
upstream_timeout: 2s
truncate: true
log:
  level: debug
`)

	cfg, err := LoadWithEnv(cfgPath, true, mapLookup(nil))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.RerankURL() != "http://tei.internal:8080/rerank" {
		t.Fatalf("rerank url: got %q", cfg.RerankURL())
	}
	if cfg.Port != 8100 || cfg.MaxClientBatchSize != 32 {
		t.Fatalf("got port=%d batch=%d", cfg.Port, cfg.MaxClientBatchSize)
	}
	if cfg.UpstreamTimeout != 2*time.Second {
		t.Fatalf("timeout: got %s", cfg.UpstreamTimeout)
	}
	if !cfg.Truncate || cfg.RawScores {
		t.Fatalf("tei options: truncate=%v raw_scores=%v", cfg.Truncate, cfg.RawScores)
	}
	if cfg.Log.Level != "debug" || cfg.Log.Format != "json" {
		t.Fatalf("log: got %+v", cfg.Log)
	}
	if len(cfg.CORS.AllowedOrigins) != 1 || cfg.CORS.AllowedOrigins[0] != "*" {
		t.Fatalf("cors default lost: %+v", cfg.CORS)
	}
}

func TestLoadEnvOverridesFile(t *testing.T) {
	cfgPath := writeConfig(t, `
tei_endpoint: http://from-file:80
port: 8100
`)
	cfg, err := LoadWithEnv(cfgPath, true, mapLookup(map[string]string{
		EnvTEIEndpoint: "http://from-env:80",
	}))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.TEIEndpoint != "http://from-env:80" {
		t.Fatalf("got %q, want env value", cfg.TEIEndpoint)
	}
	if cfg.Port != 8100 {
		t.Fatalf("got %d, want file value", cfg.Port)
	}
}

func TestLoadWithEnvVarReference(t *testing.T) {
	os.Setenv("TEST_TEI_URL", "http://referenced:9000")
	defer os.Unsetenv("TEST_TEI_URL")

	cfgPath := writeConfig(t, `tei_endpoint: os.environ/TEST_TEI_URL`)
	cfg, err := LoadWithEnv(cfgPath, true, mapLookup(nil))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.TEIEndpoint != "http://referenced:9000" {
		t.Fatalf("got %q", cfg.TEIEndpoint)
	}
}

func TestLoadMissingFile(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope.yaml")

	cfg, err := LoadWithEnv(missing, false, mapLookup(nil))
	if err != nil {
		t.Fatalf("optional missing file should not fail: %v", err)
	}
	if len(cfg.Warnings) != 1 {
		t.Fatalf("want one warning, got %v", cfg.Warnings)
	}

	if _, err := LoadWithEnv(missing, true, mapLookup(nil)); err == nil {
		t.Fatal("required missing file should fail")
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	cfgPath := writeConfig(t, "port: [not a number")
	if _, err := LoadWithEnv(cfgPath, true, mapLookup(nil)); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestLoadUnknownFieldsWarn(t *testing.T) {
	cfgPath := writeConfig(t, `
port: 8000
cache: true
model_list: []
`)
	cfg, err := LoadWithEnv(cfgPath, true, mapLookup(nil))
	if err != nil {
		t.Fatal(err)
	}
	if len(cfg.Warnings) != 2 {
		t.Fatalf("want 2 warnings, got %v", cfg.Warnings)
	}
}
