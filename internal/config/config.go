// Package config loads runtime settings for the server from the environment,
// optionally seeded from a .env file.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the server settings.
type Config struct {
	Port         int
	TickInterval time.Duration
	ScenarioPath string // empty = built-in demonstration layout
	LogLevel     string
}

// Load reads the given env files (.env when none are named) if present, then
// the environment. Variables already set in the environment win over the
// files. Missing keys fall back to defaults.
func Load(envFiles ...string) (Config, error) {
	// A missing .env is normal outside local development.
	_ = godotenv.Load(envFiles...)

	cfg := Config{
		ScenarioPath: getEnv("ABS_SCENARIO", ""),
		LogLevel:     getEnv("LOG_LEVEL", "info"),
	}

	port, err := strconv.Atoi(getEnv("ABS_PORT", "8080"))
	if err != nil {
		return Config{}, fmt.Errorf("config: ABS_PORT: %w", err)
	}
	cfg.Port = port

	interval, err := time.ParseDuration(getEnv("ABS_TICK_INTERVAL", "35ms"))
	if err != nil {
		return Config{}, fmt.Errorf("config: ABS_TICK_INTERVAL: %w", err)
	}
	if interval <= 0 {
		return Config{}, fmt.Errorf("config: ABS_TICK_INTERVAL must be positive, got %s", interval)
	}
	cfg.TickInterval = interval

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
