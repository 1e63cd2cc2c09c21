package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/kbukum/ghkit/client"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_FromYAML(t *testing.T) {
	dir := t.TempDir()
	file := writeFile(t, dir, "config.yml", `
cache:
  max_age: 2m
  max_entries: 50
retry:
  enabled: true
  retries: 5
  base_delay: 500ms
  do_not_retry: [400, 404]
circuit_breaker:
  name: github-api
  enabled: true
  failure_threshold: 4
  recovery_timeout: 10s
`)

	var cfg client.Config
	if err := Load(&cfg, WithConfigFile(file)); err != nil {
		t.Fatal(err)
	}

	if cfg.Cache.MaxAge != 2*time.Minute || cfg.Cache.MaxEntries != 50 {
		t.Errorf("cache = %+v", cfg.Cache)
	}
	if cfg.Retry.Retries != 5 || cfg.Retry.BaseDelay != 500*time.Millisecond {
		t.Errorf("retry = %+v", cfg.Retry)
	}
	if len(cfg.Retry.DoNotRetry) != 2 || cfg.Retry.DoNotRetry[0] != 400 {
		t.Errorf("do_not_retry = %v", cfg.Retry.DoNotRetry)
	}
	if cfg.CircuitBreaker.FailureThreshold != 4 || cfg.CircuitBreaker.RecoveryTimeout != 10*time.Second {
		t.Errorf("circuit_breaker = %+v", cfg.CircuitBreaker)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	file := writeFile(t, dir, "config.yml", `
retry:
  retries: 2
`)
	t.Setenv("GHKIT_RETRY_RETRIES", "7")

	var cfg client.Config
	if err := Load(&cfg, WithConfigFile(file)); err != nil {
		t.Fatal(err)
	}

	if cfg.Retry.Retries != 7 {
		t.Errorf("retries = %d, want env override 7", cfg.Retry.Retries)
	}
}

func TestLoad_MultiWordEnvKey(t *testing.T) {
	t.Setenv("GHKIT_RETRY_BASE_DELAY", "250ms")

	var cfg client.Config
	if err := Load(&cfg); err != nil {
		t.Fatal(err)
	}

	if cfg.Retry.BaseDelay != 250*time.Millisecond {
		t.Errorf("base_delay = %v, want 250ms", cfg.Retry.BaseDelay)
	}
}

func TestLoad_EnvFile(t *testing.T) {
	dir := t.TempDir()
	envFile := writeFile(t, dir, ".env", "GHKIT_CACHE_MAX_ENTRIES=25\n")
	t.Cleanup(func() { os.Unsetenv("GHKIT_CACHE_MAX_ENTRIES") })

	var cfg client.Config
	if err := Load(&cfg, WithEnvFile(envFile)); err != nil {
		t.Fatal(err)
	}

	if cfg.Cache.MaxEntries != 25 {
		t.Errorf("max_entries = %d, want 25", cfg.Cache.MaxEntries)
	}
}

func TestLoad_MissingExplicitFileFails(t *testing.T) {
	var cfg client.Config
	if err := Load(&cfg, WithConfigFile("/does/not/exist.yml")); err == nil {
		t.Error("expected error for missing explicit config file")
	}
}

func TestValidate(t *testing.T) {
	cfg := client.DefaultConfig()
	if err := Validate(&cfg); err != nil {
		t.Errorf("default config should validate, got %v", err)
	}

	cfg.Retry.Retries = 99
	err := Validate(&cfg)
	if err == nil {
		t.Fatal("expected validation error for retries out of range")
	}
}
