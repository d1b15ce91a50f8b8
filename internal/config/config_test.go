package config

import (
	"testing"
	"time"
)

func TestLoadReadsEnvironment(t *testing.T) {
	t.Setenv("ADMIN_API_BASE_URL", "http://admin.internal:9000")
	t.Setenv("ADMIN_API_TIMEOUT_SECONDS", "5")
	t.Setenv("SESSION_TTL_MINUTES", "15")
	t.Setenv("SLIP_COPY_SINK", "disk")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://console.example.com, http://localhost:5173")
	t.Setenv("SLIP_EMAIL_TO", "accounts@example.com")

	cfg := Load()

	if cfg.AdminAPI.BaseURL != "http://admin.internal:9000" {
		t.Fatalf("unexpected base url %q", cfg.AdminAPI.BaseURL)
	}
	if cfg.AdminAPI.Timeout != 5*time.Second {
		t.Fatalf("unexpected timeout %v", cfg.AdminAPI.Timeout)
	}
	if cfg.Session.TTL != 15*time.Minute {
		t.Fatalf("unexpected session ttl %v", cfg.Session.TTL)
	}
	if cfg.Slip.CopySink != "disk" {
		t.Fatalf("unexpected copy sink %q", cfg.Slip.CopySink)
	}
	if len(cfg.CORS.AllowedOrigins) != 2 || cfg.CORS.AllowedOrigins[0] != "https://console.example.com" {
		t.Fatalf("unexpected origins %v", cfg.CORS.AllowedOrigins)
	}
	if len(cfg.Slip.EmailTo) != 1 {
		t.Fatalf("unexpected email recipients %v", cfg.Slip.EmailTo)
	}
}

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.App.Name == "" || cfg.App.Port == "" {
		t.Fatalf("expected app defaults, got %+v", cfg.App)
	}
	if cfg.RateLimit.Requests <= 0 || cfg.RateLimit.Duration <= 0 {
		t.Fatalf("expected rate limit defaults, got %+v", cfg.RateLimit)
	}
}

func TestLocationFallsBackToUTC(t *testing.T) {
	app := AppConfig{Timezone: "Not/AZone"}
	if app.Location() != time.UTC {
		t.Fatalf("expected UTC fallback")
	}
}

func TestSplitList(t *testing.T) {
	got := splitList(" a, ,b ,")
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Fatalf("splitList = %v", got)
	}
	if splitList("") != nil {
		t.Fatalf("expected nil for empty input")
	}
}
