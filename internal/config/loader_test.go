package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := NewLoader().Load([]string{"--targets", "domains.yaml"})
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.TargetsFile != "domains.yaml" {
		t.Errorf("targets = %q", cfg.TargetsFile)
	}
	if cfg.Workers != DefaultWorkers {
		t.Errorf("workers = %d, want %d", cfg.Workers, DefaultWorkers)
	}
	if cfg.TotalRequests != DefaultTotalRequests {
		t.Errorf("total = %d, want %d", cfg.TotalRequests, DefaultTotalRequests)
	}
	if cfg.Timeout != DefaultTimeout {
		t.Errorf("timeout = %v, want %v", cfg.Timeout, DefaultTimeout)
	}
	if cfg.BaseURL != DefaultBaseURL {
		t.Errorf("base url = %q", cfg.BaseURL)
	}
	if cfg.Token != DefaultToken {
		t.Errorf("token = %q", cfg.Token)
	}
	if !cfg.Audit {
		t.Error("audit should default to true")
	}
}

func TestLoadFlagOverrides(t *testing.T) {
	cfg, err := NewLoader().Load([]string{
		"--targets", "domains.yaml",
		"--workers", "4",
		"--total", "50",
		"--timeout", "5s",
		"--deadline", "30s",
		"--base-url", "https://other.example.com",
		"--log-level", "debug",
		"--audit=false",
	})
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Workers != 4 || cfg.TotalRequests != 50 {
		t.Errorf("workers/total = %d/%d", cfg.Workers, cfg.TotalRequests)
	}
	if cfg.Timeout != 5*time.Second {
		t.Errorf("timeout = %v", cfg.Timeout)
	}
	if cfg.Deadline != 30*time.Second {
		t.Errorf("deadline = %v", cfg.Deadline)
	}
	if cfg.BaseURL != "https://other.example.com" {
		t.Errorf("base url = %q", cfg.BaseURL)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("log level = %q", cfg.LogLevel)
	}
	if cfg.Audit {
		t.Error("audit should be disabled")
	}
}

func TestLoadConfigFile(t *testing.T) {
	path := writeConfigFile(t, `
targets: from_file.yaml
workers: 3
total: 25
timeout: 10
logLevel: WARNING
tracing:
  endpoint: localhost:4317
  protocol: grpc
`)

	cfg, err := NewLoader().Load([]string{"--config", path})
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.TargetsFile != "from_file.yaml" {
		t.Errorf("targets = %q", cfg.TargetsFile)
	}
	if cfg.Workers != 3 || cfg.TotalRequests != 25 {
		t.Errorf("workers/total = %d/%d", cfg.Workers, cfg.TotalRequests)
	}
	// Bare numbers in config files are seconds.
	if cfg.Timeout != 10*time.Second {
		t.Errorf("timeout = %v, want 10s", cfg.Timeout)
	}
	if cfg.LogLevel != "warning" {
		t.Errorf("log level = %q", cfg.LogLevel)
	}
	if cfg.Tracing.Endpoint != "localhost:4317" || cfg.Tracing.Protocol != "grpc" {
		t.Errorf("tracing = %+v", cfg.Tracing)
	}
}

// The legacy "threads" key is still honored as an alias for workers.
func TestLoadThreadsAlias(t *testing.T) {
	path := writeConfigFile(t, "targets: d.yaml\nthreads: 7\n")

	cfg, err := NewLoader().Load([]string{"--config", path})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Workers != 7 {
		t.Fatalf("workers = %d, want 7", cfg.Workers)
	}
}

func TestLoadFlagsBeatConfigFile(t *testing.T) {
	path := writeConfigFile(t, "targets: d.yaml\nworkers: 3\n")

	cfg, err := NewLoader().Load([]string{"--config", path, "--workers", "9"})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Workers != 9 {
		t.Fatalf("workers = %d, want flag value 9", cfg.Workers)
	}
}

func TestLoadTokenEnvFallback(t *testing.T) {
	t.Setenv("REPSTRESS_AUTH_TOKEN", "env-token")

	cfg, err := NewLoader().Load([]string{"--targets", "d.yaml"})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Token != "env-token" {
		t.Fatalf("token = %q, want env fallback", cfg.Token)
	}
}

func TestLoadTokenFlagBeatsEnv(t *testing.T) {
	t.Setenv("REPSTRESS_AUTH_TOKEN", "env-token")

	cfg, err := NewLoader().Load([]string{"--targets", "d.yaml", "--token", "flag-token"})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Token != "flag-token" {
		t.Fatalf("token = %q", cfg.Token)
	}
}

func TestLoadThresholds(t *testing.T) {
	cfg, err := NewLoader().Load([]string{
		"--targets", "d.yaml",
		"--threshold", "latency:p90 < 0.5",
		"--threshold", "errors:rate < 5",
	})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(cfg.Thresholds) != 2 || cfg.Thresholds[0] != "latency:p90 < 0.5" {
		t.Fatalf("thresholds = %v", cfg.Thresholds)
	}
}

func TestLoadThresholdsFromConfigFile(t *testing.T) {
	path := writeConfigFile(t, `
targets: d.yaml
thresholds:
  - "errors:count == 0"
`)
	cfg, err := NewLoader().Load([]string{"--config", path})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(cfg.Thresholds) != 1 || cfg.Thresholds[0] != "errors:count == 0" {
		t.Fatalf("thresholds = %v", cfg.Thresholds)
	}
}

func TestLoadNoArgsShowsHelp(t *testing.T) {
	_, err := NewLoader().Load(nil)
	if !errors.Is(err, ErrHelpRequested) {
		t.Fatalf("err = %v, want ErrHelpRequested", err)
	}
}

func TestLoadHelpFlag(t *testing.T) {
	_, err := NewLoader().Load([]string{"--help"})
	if !errors.Is(err, ErrHelpRequested) {
		t.Fatalf("err = %v, want ErrHelpRequested", err)
	}
}

func TestLoadMissingConfigFile(t *testing.T) {
	_, err := NewLoader().Load([]string{"--config", filepath.Join(t.TempDir(), "nope.yaml")})
	if err == nil {
		t.Fatal("expected error for missing config file")
	}
}
