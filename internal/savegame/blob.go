// Package savegame serialises the economy to a schema-tolerant JSON blob.
package savegame

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/verte-zerg/keymaster/internal/catalog"
	"github.com/verte-zerg/keymaster/internal/economy"
)

// CurrentVersion is written into every new blob.
const CurrentVersion = 2

var (
	// ErrNoSave is returned when a slot holds no blob.
	ErrNoSave = errors.New("no saved game")
	// ErrCorrupt wraps every decode failure.
	ErrCorrupt = errors.New("corrupt save data")
)

// Meta is the envelope information of a blob.
type Meta struct {
	Version   int
	InstallID string
	SavedAt   time.Time
}

type blob struct {
	Version   int        `json:"version,omitempty"`
	InstallID string     `json:"installId,omitempty"`
	SavedAt   string     `json:"savedAt,omitempty"`
	State     *stateBlob `json:"state"`
	Stats     *statsBlob `json:"stats,omitempty"`
}

// stateBlob keeps every field optional so older blobs decode with defaults.
type stateBlob struct {
	Presses              *float64    `json:"presses,omitempty"`
	LifetimePresses      *float64    `json:"lifetimePresses,omitempty"`
	ManualPresses        *float64    `json:"manualPresses,omitempty"`
	UnlockedKeys         []string    `json:"unlockedKeys,omitempty"`
	UpgradesOwned        []ownedBlob `json:"upgradesOwned,omitempty"`
	AchievementsUnlocked []string    `json:"achievementsUnlocked,omitempty"`
	StartTime            *float64    `json:"startTime,omitempty"`
}

type ownedBlob struct {
	ID    string  `json:"id"`
	Count float64 `json:"count"`
}

type statsBlob struct {
	TotalPresses float64 `json:"totalPresses"`
	CurrentPPS   float64 `json:"currentPPS"`
	ClickValue   float64 `json:"clickValue"`
	Multiplier   float64 `json:"multiplier"`
}

// Encode builds a current-version blob from a state snapshot and its cached stats.
func Encode(s economy.State, stats economy.Stats, meta Meta) ([]byte, error) {
	presses := s.CurrentPresses
	lifetime := s.LifetimePresses
	manual := float64(s.ManualPressCount)
	owned := make([]ownedBlob, 0, len(s.OwnedUpgrades))
	for _, o := range s.OwnedUpgrades {
		owned = append(owned, ownedBlob{ID: o.ID, Count: float64(o.Count)})
	}
	b := blob{
		Version:   CurrentVersion,
		InstallID: meta.InstallID,
		State: &stateBlob{
			Presses:              &presses,
			LifetimePresses:      &lifetime,
			ManualPresses:        &manual,
			UnlockedKeys:         append([]string{}, s.UnlockedKeys...),
			UpgradesOwned:        owned,
			AchievementsUnlocked: append([]string{}, s.UnlockedAchievements...),
		},
		Stats: &statsBlob{
			TotalPresses: lifetime,
			CurrentPPS:   stats.PassiveRate,
			ClickValue:   stats.ClickValue,
			Multiplier:   stats.Multiplier,
		},
	}
	if !meta.SavedAt.IsZero() {
		b.SavedAt = meta.SavedAt.UTC().Format(time.RFC3339)
	}
	if !s.StartedAt.IsZero() {
		start := float64(s.StartedAt.UnixMilli())
		b.State.StartTime = &start
	}
	data, err := json.Marshal(b)
	if err != nil {
		return nil, fmt.Errorf("failed to encode save: %w", err)
	}
	return data, nil
}

// Decode reads a blob of any known version. Missing fields take the defaults of
// cat. The cached stats section is ignored. The returned state is not yet
// normalised; economy.Engine.Restore does that.
func Decode(data []byte, cat *catalog.Catalog) (economy.State, Meta, error) {
	var b blob
	if err := json.Unmarshal(data, &b); err != nil {
		return economy.State{}, Meta{}, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	if b.State == nil {
		return economy.State{}, Meta{}, fmt.Errorf("%w: missing state", ErrCorrupt)
	}

	meta := Meta{Version: b.Version, InstallID: b.InstallID}
	if meta.Version == 0 {
		meta.Version = 1
	}
	if b.SavedAt != "" {
		if t, err := time.Parse(time.RFC3339, b.SavedAt); err == nil {
			meta.SavedAt = t
		}
	}

	s := economy.DefaultState(cat, time.Time{})
	src := b.State
	if src.Presses != nil {
		s.CurrentPresses = *src.Presses
	}
	if src.LifetimePresses != nil {
		s.LifetimePresses = *src.LifetimePresses
	}
	if src.ManualPresses != nil && *src.ManualPresses > 0 {
		s.ManualPressCount = toInt64(*src.ManualPresses)
	}
	if len(src.UnlockedKeys) > 0 {
		s.UnlockedKeys = append([]string(nil), src.UnlockedKeys...)
	}
	if src.UpgradesOwned != nil {
		s.OwnedUpgrades = make([]economy.OwnedUpgrade, 0, len(src.UpgradesOwned))
		for _, o := range src.UpgradesOwned {
			s.OwnedUpgrades = append(s.OwnedUpgrades, economy.OwnedUpgrade{ID: o.ID, Count: int(toInt64(o.Count))})
		}
	}
	s.UnlockedAchievements = append([]string(nil), src.AchievementsUnlocked...)
	if src.StartTime != nil && *src.StartTime > 0 {
		s.StartedAt = time.UnixMilli(toInt64(*src.StartTime)).UTC()
	}
	return s, meta, nil
}

// maxExactInt is the largest integer a JSON number holds without loss.
const maxExactInt = 1 << 53

func toInt64(v float64) int64 {
	switch {
	case math.IsNaN(v) || v <= 0:
		return 0
	case v >= maxExactInt:
		return maxExactInt
	default:
		return int64(v)
	}
}
