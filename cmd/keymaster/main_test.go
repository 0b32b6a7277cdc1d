package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/BurntSushi/toml"

	"github.com/verte-zerg/keymaster/internal/config"
	"github.com/verte-zerg/keymaster/internal/logger"
)

func writeConfig(t *testing.T, body string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv(config.EnvConfigPath, path)
	t.Setenv(config.EnvLogLevel, "")
}

func TestLoadGameConfigPrecedence(t *testing.T) {
	writeConfig(t, "[game]\nslot = \"alpha\"\nframe-rate = 60\n[log]\nformat = \"json\"\n")
	cmd := newRootCmd()
	if err := cmd.ParseFlags([]string{"--frame-rate", "10"}); err != nil {
		t.Fatalf("parse flags: %v", err)
	}
	cfg, err := loadGameConfig(cmd)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Slot != "alpha" {
		t.Fatalf("expected slot from file, got %q", cfg.Slot)
	}
	if cfg.FrameRate != 10 {
		t.Fatalf("expected flag to win, got %d", cfg.FrameRate)
	}
	if cfg.LogFormat != "json" || cfg.AutosaveSeconds != defaultAutosave {
		t.Fatalf("unexpected config: %+v", cfg)
	}
}

func TestLoadGameConfigEnvLogLevel(t *testing.T) {
	writeConfig(t, "")
	t.Setenv(config.EnvLogLevel, "DEBUG")
	cmd := newRootCmd()
	if err := cmd.ParseFlags(nil); err != nil {
		t.Fatalf("parse flags: %v", err)
	}
	cfg, err := loadGameConfig(cmd)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.LogLevel != "debug" {
		t.Fatalf("expected env log level, got %q", cfg.LogLevel)
	}
}

func TestLoadGameConfigRejectsInvalid(t *testing.T) {
	writeConfig(t, "[game]\nframe-rate = 0\n")
	cmd := newRootCmd()
	if err := cmd.ParseFlags(nil); err != nil {
		t.Fatalf("parse flags: %v", err)
	}
	_, err := loadGameConfig(cmd)
	if err == nil || !strings.Contains(err.Error(), "--frame-rate") {
		t.Fatalf("expected frame-rate error, got %v", err)
	}
}

func TestDefaultConfigTemplateIsValidTOML(t *testing.T) {
	var out map[string]any
	if _, err := toml.Decode(defaultConfigTemplate(), &out); err != nil {
		t.Fatalf("template does not parse: %v", err)
	}
	for _, section := range []string{"[game]", "[log]", "[metrics]"} {
		if !strings.Contains(defaultConfigTemplate(), section) {
			t.Fatalf("template missing %s", section)
		}
	}
}

func TestConfirm(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"y\n", true},
		{"YES\n", true},
		{"n\n", false},
		{"", false},
	}
	for _, tc := range tests {
		got, err := confirm(bytes.NewBufferString(tc.in), "")
		if err != nil {
			t.Fatalf("confirm(%q): %v", tc.in, err)
		}
		if got != tc.want {
			t.Fatalf("confirm(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestBuildStatsConfig(t *testing.T) {
	writeConfig(t, "")
	cmd := newRootCmd()
	if err := cmd.ParseFlags(nil); err != nil {
		t.Fatalf("parse flags: %v", err)
	}
	cfg, err := loadGameConfig(cmd)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	statsKind, statsSince, statsLast, statsCurveWindow = "Speed", "2024-02-01", 3, 2
	t.Cleanup(func() {
		statsKind, statsSince, statsLast, statsCurveWindow = "", "", 0, defaultCurveWindow
	})
	sc, err := buildStatsConfig(cfg)
	if err != nil {
		t.Fatalf("build stats config: %v", err)
	}
	if sc.Kind != "speed" || sc.Since == nil || sc.Last != 3 || sc.Slot != defaultSlot {
		t.Fatalf("unexpected stats config: %+v", sc)
	}

	statsKind = "typing"
	if _, err := buildStatsConfig(cfg); err == nil {
		t.Fatalf("expected kind error")
	}
}

func TestStartMetricsStopWaitsForServer(t *testing.T) {
	var logs bytes.Buffer
	log := logger.NewWithWriter(logger.Config{Level: "info"}, &logs)
	stop := startMetrics(context.Background(), "127.0.0.1:0", log)
	stop()
	if !strings.Contains(logs.String(), "Metrics server listening") {
		t.Fatalf("expected server to have run, got %q", logs.String())
	}
	if strings.Contains(logs.String(), "Metrics server stopped") {
		t.Fatalf("unexpected shutdown error: %q", logs.String())
	}
}
