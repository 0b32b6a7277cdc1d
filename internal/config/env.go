package config

import (
	"os"
	"strings"

	"github.com/joho/godotenv"

	"github.com/verte-zerg/keymaster/internal/model"
)

// Environment overrides.
const (
	EnvDBPath     = "KEYMASTER_DB"
	EnvConfigPath = "KEYMASTER_CONFIG"
	EnvLogLevel   = "KEYMASTER_LOG_LEVEL"
)

// LoadDotEnv loads .env from the working directory when present.
func LoadDotEnv() {
	// Missing .env is the common case.
	_ = godotenv.Load()
}

// ApplyEnv copies environment overrides into cfg.
func ApplyEnv(cfg *model.Config) {
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		cfg.LogLevel = strings.ToLower(v)
	}
}
