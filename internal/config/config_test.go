//go:build !integration

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadConfig(t *testing.T) {
	t.Run("defaults fill a minimal file", func(t *testing.T) {
		path := writeConfig(t, "session:\n  secret: \"0123456789abcdef\"\n")
		cfg, err := LoadConfig(path, false)
		if err != nil {
			t.Fatalf("LoadConfig failed: %v", err)
		}
		if cfg.HTTP.Port != 8080 || cfg.Backend.BaseURL != DefaultBackendURL {
			t.Errorf("unexpected defaults %+v %+v", cfg.HTTP, cfg.Backend)
		}
		if cfg.Backend.Timeout != 15*time.Second || cfg.Upload.MaxBytes != 10<<20 {
			t.Errorf("unexpected timeouts/limits %+v %+v", cfg.Backend, cfg.Upload)
		}
		if cfg.Redis.TTL != cfg.Session.TTL {
			t.Errorf("redis ttl should follow session ttl, got %v", cfg.Redis.TTL)
		}
		if cfg.Runtime.FakeBackend {
			t.Error("fake backend must be off outside dev mode")
		}
	})

	t.Run("environment overrides the file", func(t *testing.T) {
		t.Setenv("SESSION_SECRET", "from-env-secret-0123")
		t.Setenv("BACKEND_BASE_URL", "http://localhost:9000/")
		path := writeConfig(t, "session:\n  secret: \"0123456789abcdef\"\n")
		cfg, err := LoadConfig(path, false)
		if err != nil {
			t.Fatalf("LoadConfig failed: %v", err)
		}
		if cfg.Session.Secret != "from-env-secret-0123" {
			t.Errorf("secret not overridden: %q", cfg.Session.Secret)
		}
		if cfg.Backend.BaseURL != "http://localhost:9000" {
			t.Errorf("base url not trimmed: %q", cfg.Backend.BaseURL)
		}
	})

	t.Run("dev mode runs without a file", func(t *testing.T) {
		cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"), true)
		if err != nil {
			t.Fatalf("LoadConfig failed: %v", err)
		}
		if !cfg.Runtime.Dev || !cfg.Runtime.FakeBackend || cfg.Session.Secret == "" {
			t.Errorf("unexpected dev runtime %+v", cfg.Runtime)
		}
	})

	t.Run("missing secret fails validation", func(t *testing.T) {
		t.Setenv("SESSION_SECRET", "")
		path := writeConfig(t, "http:\n  port: 9090\n")
		_, err := LoadConfig(path, false)
		if err == nil || !strings.Contains(err.Error(), "Secret") {
			t.Fatalf("expected secret validation error, got %v", err)
		}
	})

	t.Run("bad log format fails validation", func(t *testing.T) {
		path := writeConfig(t, "session:\n  secret: \"0123456789abcdef\"\nlog:\n  format: xml\n")
		if _, err := LoadConfig(path, false); err == nil {
			t.Fatal("expected validation error")
		}
	})

	t.Run("malformed yaml", func(t *testing.T) {
		path := writeConfig(t, "http: [")
		if _, err := LoadConfig(path, false); err == nil {
			t.Fatal("expected parse error")
		}
	})
}
