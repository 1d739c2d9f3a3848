// Package daemon manages the Codigo server lifecycle and configuration.
package daemon

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Config holds all server configuration.
type Config struct {
	Server       ServerConfig       `toml:"server"`
	Database     DatabaseConfig     `toml:"database"`
	Gamification GamificationConfig `toml:"gamification"`
	Telemetry    TelemetryConfig    `toml:"telemetry"`
	Logging      LoggingConfig      `toml:"logging"`
}

// ServerConfig controls the HTTP API server.
type ServerConfig struct {
	Host        string   `toml:"host"`
	Port        int      `toml:"port"`
	CORSOrigins []string `toml:"cors_origins"`
}

// DatabaseConfig controls profile storage.
type DatabaseConfig struct {
	Dir string `toml:"dir"`
}

// GamificationConfig tunes the engagement engines.
type GamificationConfig struct {
	MaxLives            int    `toml:"max_lives"`
	LifeRechargeMinutes int    `toml:"life_recharge_minutes"`
	DailyResetCron      string `toml:"daily_reset_cron"`
}

// TelemetryConfig controls metrics exposure.
type TelemetryConfig struct {
	Prometheus bool `toml:"prometheus"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	Level string `toml:"level"`
	File  string `toml:"file"`
}

// DefaultConfig returns a sensible default configuration.
func DefaultConfig() Config {
	homeDir := codigoHome()
	return Config{
		Server: ServerConfig{
			Host:        "127.0.0.1",
			Port:        8420,
			CORSOrigins: []string{"*"},
		},
		Database: DatabaseConfig{
			Dir: homeDir,
		},
		Gamification: GamificationConfig{
			MaxLives:            5,
			LifeRechargeMinutes: 10,
			DailyResetCron:      "0 0 * * *",
		},
		Telemetry: TelemetryConfig{
			Prometheus: true,
		},
		Logging: LoggingConfig{
			Level: "info",
			File:  filepath.Join(homeDir, "codigo.log"),
		},
	}
}

// LoadConfig reads config from ~/.codigo/config.toml, falling back to
// defaults. A .env file in the working directory and CODIGO_* environment
// variables override the file for containerized deployments.
func LoadConfig() (Config, error) {
	_ = godotenv.Load()

	cfg := DefaultConfig()
	path := filepath.Join(codigoHome(), "config.toml")

	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config: %w", err)
		}
	}

	applyEnvOverrides(&cfg)
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("CODIGO_HOST"); v != "" {
		cfg.Server.Host = v
	}
	if v := os.Getenv("CODIGO_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = p
		}
	}
	if v := os.Getenv("CODIGO_DB_DIR"); v != "" {
		cfg.Database.Dir = v
	}
	if v := os.Getenv("CODIGO_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
}

// SaveConfig writes the config to ~/.codigo/config.toml.
func SaveConfig(cfg Config) error {
	path := filepath.Join(codigoHome(), "config.toml")
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	encoder := toml.NewEncoder(f)
	return encoder.Encode(cfg)
}

// codigoHome returns the Codigo data directory.
func codigoHome() string {
	if env := os.Getenv("CODIGO_HOME"); env != "" {
		return env
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".codigo")
}

// CodigoHome is exported for use by other packages.
func CodigoHome() string {
	return codigoHome()
}
