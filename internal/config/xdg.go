// Package config provides XDG path helpers.
package config

import (
	"os"
	"path/filepath"
)

const appDir = "keymaster"

// XDGConfigHome returns the XDG config home or a default fallback.
func XDGConfigHome() string {
	if v := os.Getenv("XDG_CONFIG_HOME"); v != "" {
		return v
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return "."
	}
	return filepath.Join(home, ".config")
}

// XDGDataHome returns the XDG data home or a default fallback.
func XDGDataHome() string {
	if v := os.Getenv("XDG_DATA_HOME"); v != "" {
		return v
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return "."
	}
	return filepath.Join(home, ".local", "share")
}

// DefaultDBPath returns the path of the SQLite database. KEYMASTER_DB overrides it.
func DefaultDBPath() string {
	if v := os.Getenv(EnvDBPath); v != "" {
		return v
	}
	return filepath.Join(XDGDataHome(), appDir, "keymaster.db")
}

// DefaultLogPath returns the log file used while the play screen owns the terminal.
func DefaultLogPath() string {
	return filepath.Join(XDGDataHome(), appDir, "keymaster.log")
}

// DefaultConfigPath returns the TOML config path. KEYMASTER_CONFIG overrides it.
func DefaultConfigPath() string {
	if v := os.Getenv(EnvConfigPath); v != "" {
		return v
	}
	return filepath.Join(XDGConfigHome(), appDir, "config.toml")
}
