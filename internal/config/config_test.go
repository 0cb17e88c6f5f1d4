package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PALESTRA_BADGE_SECRET", "turnstile-secret")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Addr != ":8080" {
		t.Errorf("Addr = %q, want %q", cfg.Addr, ":8080")
	}
	if cfg.ScanSchedule != "@every 15m" {
		t.Errorf("ScanSchedule = %q, want %q", cfg.ScanSchedule, "@every 15m")
	}
	if cfg.NotificationGracePeriod != time.Hour {
		t.Errorf("NotificationGracePeriod = %v, want %v", cfg.NotificationGracePeriod, time.Hour)
	}
	if cfg.IsProduction() {
		t.Error("development config must not report production")
	}
}

func TestLoadRequiresBadgeSecret(t *testing.T) {
	t.Setenv("PALESTRA_BADGE_SECRET", "")

	if _, err := Load(); err == nil {
		t.Fatal("expected an error when the badge secret is missing")
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PALESTRA_BADGE_SECRET", "turnstile-secret")
	t.Setenv("PALESTRA_ENVIRONMENT", "production")
	t.Setenv("PALESTRA_ADDR", ":9090")
	t.Setenv("PALESTRA_NOTIFICATION_HIGH_COUNT", "5")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Addr != ":9090" {
		t.Errorf("Addr = %q, want %q", cfg.Addr, ":9090")
	}
	if cfg.NotificationHighCount != 5 {
		t.Errorf("NotificationHighCount = %d, want 5", cfg.NotificationHighCount)
	}
	if !cfg.IsProduction() {
		t.Error("production config must report production")
	}
}
