package config

import (
	"testing"
	"time"
)

func TestLoadDevDefaults(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	t.Setenv("API_KEY", "secret")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("REDIS_URL", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !cfg.IsDev() {
		t.Fatalf("expected dev environment")
	}
	if cfg.Port != "8080" || cfg.LogLevel != "info" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.LockWait != 5*time.Second {
		t.Fatalf("lock wait default = %v", cfg.LockWait)
	}
	if cfg.Address() != ":8080" {
		t.Fatalf("address = %q", cfg.Address())
	}
}

func TestLoadRequiresAPIKey(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	t.Setenv("API_KEY", "")
	t.Setenv("API_KEY_HASH", "")

	if _, err := Load(); err == nil {
		t.Fatal("expected error without API key")
	}
}

func TestLoadRequiresDatabaseOutsideDev(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("API_KEY", "secret")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("REDIS_URL", "")

	if _, err := Load(); err == nil {
		t.Fatal("expected error without DATABASE_URL in production")
	}
}

func TestDurationOverrides(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	t.Setenv("API_KEY", "secret")
	t.Setenv("LOCK_WAIT_TIMEOUT", "250ms")
	t.Setenv("SHUTDOWN_TIMEOUT_SECONDS", "3")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.LockWait != 250*time.Millisecond {
		t.Fatalf("lock wait = %v", cfg.LockWait)
	}
	if cfg.ShutdownPeriod != 3*time.Second {
		t.Fatalf("shutdown = %v", cfg.ShutdownPeriod)
	}
}
