package config

import (
	"os"
	"strings"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Server.Port != 8084 {
		t.Errorf("port = %d, want 8084", cfg.Server.Port)
	}
	if cfg.Source.URL != DefaultSourceURL || cfg.Source.Kind != "http" {
		t.Errorf("unexpected source: %+v", cfg.Source)
	}
	if cfg.Refresh.RetryDelay != 5*time.Second || cfg.Refresh.EmptyDelay != 3*time.Second {
		t.Errorf("unexpected retry delays: %+v", cfg.Refresh)
	}
	if cfg.Refresh.Schedule != "@every 5m" {
		t.Errorf("schedule = %q", cfg.Refresh.Schedule)
	}

	th := cfg.Insights.Thresholds()
	if th.LowStockCritical != 10 || th.LowStockReorder != 20 || th.ExcessStock != 100 || th.RatingCutoff != 4.5 {
		t.Errorf("unexpected thresholds: %+v", th)
	}
	if th.FallbackOnEmpty {
		t.Error("fallback should be off by default")
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("SERVER_PORT", "9000")
	t.Setenv("SOURCE_KIND", "static")
	t.Setenv("REFRESH_RETRY_DELAY", "250ms")
	t.Setenv("REFRESH_BACKOFF_FACTOR", "1.5")
	t.Setenv("INSIGHTS_FALLBACK_ON_EMPTY", "true")
	t.Setenv("SECURITY_ALLOWED_ORIGINS", "http://a,http://b")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Address() != "localhost:9000" {
		t.Errorf("address = %q", cfg.Address())
	}
	if cfg.Source.Kind != "static" {
		t.Errorf("kind = %q", cfg.Source.Kind)
	}
	if cfg.Refresh.RetryDelay != 250*time.Millisecond || cfg.Refresh.BackoffFactor != 1.5 {
		t.Errorf("unexpected refresh: %+v", cfg.Refresh)
	}
	if !cfg.Insights.FallbackOnEmpty {
		t.Error("expected fallback to be enabled")
	}
	if len(cfg.Security.AllowedOrigins) != 2 {
		t.Errorf("origins = %v", cfg.Security.AllowedOrigins)
	}
}

func TestLoad_DotEnvFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	writeFile(t, ".env", "LOG_LEVEL=debug\nREFRESH_MAX_ATTEMPTS=3\n")
	t.Cleanup(func() { os.Unsetenv("LOG_LEVEL") })
	t.Setenv("REFRESH_MAX_ATTEMPTS", "7")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Logger.Level != "debug" {
		t.Errorf("level = %q, want debug from .env", cfg.Logger.Level)
	}
	if cfg.Refresh.MaxAttempts != 7 {
		t.Errorf("max attempts = %d, environment should win over .env", cfg.Refresh.MaxAttempts)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		value   string
		message string
	}{
		{"port", "SERVER_PORT", "70000", "server port"},
		{"source kind", "SOURCE_KIND", "ftp", "invalid source kind"},
		{"backoff", "REFRESH_BACKOFF_FACTOR", "0.5", "backoff factor"},
		{"rating", "INSIGHTS_RATING_CUTOFF", "7", "rating cutoff"},
		{"log level", "LOG_LEVEL", "loud", "invalid log level"},
		{"log format", "LOG_FORMAT", "xml", "invalid log format"},
		{"max attempts", "REFRESH_MAX_ATTEMPTS", "-1", "max attempts"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Chdir(t.TempDir())
			t.Setenv(tt.key, tt.value)

			_, err := Load()
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.message) {
				t.Errorf("error %q does not mention %q", err, tt.message)
			}
		})
	}
}

func writeFile(t *testing.T, name, content string) {
	t.Helper()
	if err := os.WriteFile(name, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
}
