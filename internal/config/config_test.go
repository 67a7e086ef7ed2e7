package config

import "testing"

func TestLoadDoesNotInjectWeakAuthDefaults(t *testing.T) {
	t.Setenv("AUTH_SECRET", "")
	t.Setenv("SUPERVISOR_PIN", "")

	cfg := Load()
	if cfg.AuthSecret != "" {
		t.Fatalf("expected empty AUTH_SECRET when unset, got %q", cfg.AuthSecret)
	}
	if cfg.SupervisorPIN != "" {
		t.Fatalf("expected empty SUPERVISOR_PIN when unset, got %q", cfg.SupervisorPIN)
	}
}

func TestLoadFallsBackOnBadNumbers(t *testing.T) {
	t.Setenv("RECAP_TTL_SECONDS", "not-a-number")
	t.Setenv("DEDUP_WINDOW_MS", "-5")

	cfg := Load()
	if cfg.RecapTTLSeconds != 30 {
		t.Fatalf("expected recap TTL fallback 30, got %d", cfg.RecapTTLSeconds)
	}
	if cfg.DedupWindowMillis != 2000 {
		t.Fatalf("expected dedup window fallback 2000, got %d", cfg.DedupWindowMillis)
	}
}
