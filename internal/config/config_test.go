package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.HTTPAddr != ":8080" {
		t.Fatalf("HTTPAddr = %q, want :8080", cfg.Server.HTTPAddr)
	}
	if cfg.Store.Backend != "memory" || cfg.Rules.Backend != "native" {
		t.Fatalf("backends = %q/%q", cfg.Store.Backend, cfg.Rules.Backend)
	}
	if cfg.Live.Interval != 500*time.Millisecond || cfg.Live.MaxTicks() != 1200 {
		t.Fatalf("live = %+v ticks=%d", cfg.Live, cfg.Live.MaxTicks())
	}
	if cfg.Live.MaxErrors != 5 || cfg.Live.BackoffBase != time.Second || cfg.Live.BackoffMax != 8*time.Second {
		t.Fatalf("live error policy = %+v", cfg.Live)
	}
	if len(cfg.Server.CORSOrigins) != 0 {
		t.Fatalf("CORSOrigins should default to none, got %v", cfg.Server.CORSOrigins)
	}
}

func TestLoadRefusesWildcardOrigin(t *testing.T) {
	t.Setenv("CORS_ORIGINS", "https://a.example,*")

	_, err := Load()
	if err == nil || !strings.Contains(err.Error(), "CORS_ORIGINS") {
		t.Fatalf("expected CORS_ORIGINS error, got %v", err)
	}
}

func TestLoadParseTypes(t *testing.T) {
	t.Setenv("STORE_BACKEND", "Redis")
	t.Setenv("REDIS_URL", "redis://localhost:6379/1")
	t.Setenv("LIVE_INTERVAL", "250ms")
	t.Setenv("LIVE_MAX_DURATION", "1m")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("DATABASE_URL", "postgres://localhost/chess")
	t.Setenv("ARCHIVE_ENABLED", "true")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Store.Backend != "redis" {
		t.Fatalf("Store.Backend = %q, want redis", cfg.Store.Backend)
	}
	if cfg.Live.MaxTicks() != 240 {
		t.Fatalf("MaxTicks = %d, want 240", cfg.Live.MaxTicks())
	}
	if len(cfg.Server.CORSOrigins) != 2 || cfg.Server.CORSOrigins[1] != "https://b.example" {
		t.Fatalf("CORSOrigins = %v", cfg.Server.CORSOrigins)
	}
	if cfg.Archive.DatabaseURL != "postgres://localhost/chess" {
		t.Fatalf("archive should fall back to DATABASE_URL, got %q", cfg.Archive.DatabaseURL)
	}
}

func TestLoadValidationNamesVariable(t *testing.T) {
	t.Setenv("STORE_BACKEND", "postgres")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("RULES_BACKEND", "bridge")

	_, err := Load()
	if err == nil {
		t.Fatal("Load() expected error, got nil")
	}
	msg := err.Error()
	if !strings.Contains(msg, "DATABASE_URL") || !strings.Contains(msg, "RULES_BRIDGE_COMMAND") {
		t.Fatalf("error should name variables, got %q", msg)
	}
}

func TestLoadRejectsBadDuration(t *testing.T) {
	t.Setenv("LIVE_INTERVAL", "soon")
	if _, err := Load(); err == nil {
		t.Fatal("Load() expected parse error")
	}
}
