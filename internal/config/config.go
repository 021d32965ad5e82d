// Package config is the process-wide configuration singleton: a YAML file
// overridden by environment variables, loaded once.
package config

import (
	"os"
	"strconv"
	"sync"

	"gopkg.in/yaml.v3"
)

// SafetyDefaults seeds a Scenario's SafetyPolicy when a caller doesn't
// specify one explicitly.
type SafetyDefaults struct {
	MaxLoopIterations          int  `yaml:"max_loop_iterations"`
	RequireRobotForActions     bool `yaml:"require_robot_for_actions"`
	BlockWhenSimulationRunning bool `yaml:"block_when_simulation_running"`
}

// Config is the application-wide configuration.
type Config struct {
	HTTPAddr          string         `yaml:"http_addr"`
	LogLevel          string         `yaml:"log_level"`
	DefaultRobotType  string         `yaml:"default_robot_type"`
	DefaultRobotBrand string         `yaml:"default_robot_brand"`
	Safety            SafetyDefaults `yaml:"safety"`
	DatabaseDSN       string         `yaml:"database_dsn"`
	JWTSigningKey     string         `yaml:"jwt_signing_key"`
}

func defaultConfig() *Config {
	return &Config{
		HTTPAddr:          ":8080",
		LogLevel:          "info",
		DefaultRobotType:  "go2",
		DefaultRobotBrand: "unitree",
		Safety: SafetyDefaults{
			MaxLoopIterations:          100,
			RequireRobotForActions:     true,
			BlockWhenSimulationRunning: true,
		},
	}
}

var (
	once     sync.Once
	instance *Config
)

// Load returns the process-wide Config, reading it on first call and
// caching it thereafter. CONFIG_PATH points at a YAML file to merge over
// the defaults; TESTING switches to a profile with a shorter loop cap and
// no robot requirement, so tests never need a real adapter.
func Load() *Config {
	once.Do(func() {
		instance = load()
	})
	return instance
}

func load() *Config {
	cfg := defaultConfig()

	if path := os.Getenv("CONFIG_PATH"); path != "" {
		if data, err := os.ReadFile(path); err == nil {
			_ = yaml.Unmarshal(data, cfg)
		}
	}

	if os.Getenv("TESTING") != "" {
		cfg.Safety.MaxLoopIterations = 10
		cfg.Safety.RequireRobotForActions = false
	}

	applyEnvOverrides(cfg)
	return cfg
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("HTTP_ADDR"); v != "" {
		cfg.HTTPAddr = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("DATABASE_DSN"); v != "" {
		cfg.DatabaseDSN = v
	}
	if v := os.Getenv("JWT_SIGNING_KEY"); v != "" {
		cfg.JWTSigningKey = v
	}
	if v := os.Getenv("MAX_LOOP_ITERATIONS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Safety.MaxLoopIterations = n
		}
	}
}

// Reset clears the cached singleton. Test-only: lets a test reload Config
// under a different CONFIG_PATH/TESTING combination.
func Reset() {
	once = sync.Once{}
	instance = nil
}
