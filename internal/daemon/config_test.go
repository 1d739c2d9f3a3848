package daemon

import (
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Server.Host != "127.0.0.1" {
		t.Errorf("Server.Host = %q, want %q", cfg.Server.Host, "127.0.0.1")
	}
	if cfg.Server.Port != 8420 {
		t.Errorf("Server.Port = %d, want %d", cfg.Server.Port, 8420)
	}
	if cfg.Gamification.MaxLives != 5 {
		t.Errorf("Gamification.MaxLives = %d, want 5", cfg.Gamification.MaxLives)
	}
	if cfg.Gamification.LifeRechargeMinutes != 10 {
		t.Errorf("Gamification.LifeRechargeMinutes = %d, want 10", cfg.Gamification.LifeRechargeMinutes)
	}
	if cfg.Gamification.DailyResetCron != "0 0 * * *" {
		t.Errorf("Gamification.DailyResetCron = %q, want %q", cfg.Gamification.DailyResetCron, "0 0 * * *")
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("CODIGO_HOST", "0.0.0.0")
	t.Setenv("CODIGO_PORT", "9000")
	t.Setenv("CODIGO_DB_DIR", "/tmp/codigo-test")

	cfg := DefaultConfig()
	applyEnvOverrides(&cfg)

	if cfg.Server.Host != "0.0.0.0" {
		t.Errorf("Server.Host = %q, want %q", cfg.Server.Host, "0.0.0.0")
	}
	if cfg.Server.Port != 9000 {
		t.Errorf("Server.Port = %d, want 9000", cfg.Server.Port)
	}
	if cfg.Database.Dir != "/tmp/codigo-test" {
		t.Errorf("Database.Dir = %q, want %q", cfg.Database.Dir, "/tmp/codigo-test")
	}
}

func TestEnvOverridesIgnoreBadPort(t *testing.T) {
	t.Setenv("CODIGO_PORT", "not-a-port")

	cfg := DefaultConfig()
	applyEnvOverrides(&cfg)

	if cfg.Server.Port != 8420 {
		t.Errorf("Server.Port = %d, want default 8420", cfg.Server.Port)
	}
}
