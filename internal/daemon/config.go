// Package daemon manages the dosewatch daemon lifecycle and configuration.
package daemon

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config holds all daemon configuration.
type Config struct {
	API       APIConfig       `toml:"api"`
	Storage   StorageConfig   `toml:"storage"`
	Estimator EstimatorConfig `toml:"estimator"`
	Telemetry TelemetryConfig `toml:"telemetry"`
	Logging   LoggingConfig   `toml:"logging"`
}

// APIConfig controls the HTTP API server.
type APIConfig struct {
	Host        string   `toml:"host"`
	Port        int      `toml:"port"`
	CORSOrigins []string `toml:"cors_origins"`
}

// StorageConfig controls where state lives on disk.
type StorageConfig struct {
	Dir string `toml:"dir"`
}

// EstimatorConfig controls estimator behavior.
type EstimatorConfig struct {
	// RecentDoseLimit caps how many doses the CLI status view loads.
	RecentDoseLimit int `toml:"recent_dose_limit"`
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
	homeDir := dosewatchHome()
	return Config{
		API: APIConfig{
			Host:        "127.0.0.1",
			Port:        7411,
			CORSOrigins: []string{"*"},
		},
		Storage: StorageConfig{
			Dir: homeDir,
		},
		Estimator: EstimatorConfig{
			RecentDoseLimit: 20,
		},
		Telemetry: TelemetryConfig{
			Prometheus: false,
		},
		Logging: LoggingConfig{
			Level: "info",
			File:  filepath.Join(homeDir, "dosewatch.log"),
		},
	}
}

// LoadConfig reads config from ~/.dosewatch/config.toml, falling back to
// defaults.
func LoadConfig() (Config, error) {
	cfg := DefaultConfig()
	path := filepath.Join(dosewatchHome(), "config.toml")

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil // No config file yet — use defaults
	}

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	if cfg.Estimator.RecentDoseLimit <= 0 {
		cfg.Estimator.RecentDoseLimit = 20
	}
	return cfg, nil
}

// SaveConfig writes the config to ~/.dosewatch/config.toml.
func SaveConfig(cfg Config) error {
	path := filepath.Join(dosewatchHome(), "config.toml")
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

// dosewatchHome returns the dosewatch data directory.
func dosewatchHome() string {
	if env := os.Getenv("DOSEWATCH_HOME"); env != "" {
		return env
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".dosewatch")
}

// Home is exported for use by other packages.
func Home() string {
	return dosewatchHome()
}
