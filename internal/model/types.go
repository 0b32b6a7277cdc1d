// Package model defines shared data structures.
package model

import "time"

// Config defines game settings after file, env and flag values are merged.
type Config struct {
	Slot            string `validate:"required,max=64,excludesall=/\\"`
	Player          string `validate:"required,max=32"`
	FrameRate       int    `validate:"min=1,max=240"`
	AutosaveSeconds int    `validate:"min=1,max=3600"`
	Seed            int64
	LogLevel        string `validate:"omitempty,oneof=debug info warn warning error"`
	LogFormat       string `validate:"omitempty,oneof=text json"`
	MetricsAddr     string `validate:"omitempty,hostname_port"`
}

// StatsConfig defines filters and options for stats output.
type StatsConfig struct {
	Slot   string
	Player string
	Kind   string
	Since  *time.Time
	Last   int
	// CurveWindow is the moving-average window of score sparklines.
	CurveWindow int
}

// ChallengeRecord is a finished challenge stored in the history.
type ChallengeRecord struct {
	ID        string
	Slot      string
	Kind      string
	Score     int
	Reward    float64
	StartedAt time.Time
	EndedAt   time.Time
}

// SaveInfo describes a stored save slot.
type SaveInfo struct {
	Slot      string
	Size      int
	UpdatedAt time.Time
}
