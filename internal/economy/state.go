// Package economy owns the press balance, upgrades, key unlocks and achievements.
package economy

import (
	"math"
	"strings"
	"time"

	"github.com/verte-zerg/keymaster/internal/catalog"
)

// OwnedUpgrade is the purchase count of one catalog upgrade.
type OwnedUpgrade struct {
	ID    string
	Count int
}

// State is the persistent part of the economy.
type State struct {
	CurrentPresses       float64
	LifetimePresses      float64
	ManualPressCount     int64
	UnlockedKeys         []string
	OwnedUpgrades        []OwnedUpgrade
	UnlockedAchievements []string
	StartedAt            time.Time
}

// Stats are the derived values cached after every mutation that can change them.
type Stats struct {
	ClickValue  float64
	PassiveRate float64
	Multiplier  float64
}

// DefaultState returns the state of a fresh game for cat.
func DefaultState(cat *catalog.Catalog, now time.Time) State {
	owned := make([]OwnedUpgrade, len(cat.Upgrades))
	for i, u := range cat.Upgrades {
		owned[i] = OwnedUpgrade{ID: u.ID}
	}
	return State{
		UnlockedKeys:  append([]string(nil), cat.InitialKeys...),
		OwnedUpgrades: owned,
		StartedAt:     now,
	}
}

// Clone returns a deep copy of s.
func (s State) Clone() State {
	out := s
	out.UnlockedKeys = append([]string(nil), s.UnlockedKeys...)
	out.OwnedUpgrades = append([]OwnedUpgrade(nil), s.OwnedUpgrades...)
	out.UnlockedAchievements = append([]string(nil), s.UnlockedAchievements...)
	return out
}

// Normalize repairs a state read from outside the engine so every invariant holds.
// Dropped ids are returned so the caller can report them.
func Normalize(cat *catalog.Catalog, s State) (State, []string) {
	var dropped []string

	s.CurrentPresses = clampPresses(s.CurrentPresses)
	s.LifetimePresses = clampPresses(s.LifetimePresses)
	if s.LifetimePresses < s.CurrentPresses {
		s.LifetimePresses = s.CurrentPresses
	}
	if s.ManualPressCount < 0 {
		s.ManualPressCount = 0
	}

	keys := make([]string, 0, len(s.UnlockedKeys))
	seen := make(map[string]struct{}, len(s.UnlockedKeys))
	for _, k := range s.UnlockedKeys {
		k = catalog.NormalizeKey(k)
		if _, ok := seen[k]; ok {
			continue
		}
		if !cat.IsKnownKey(k) {
			dropped = append(dropped, "key:"+k)
			continue
		}
		seen[k] = struct{}{}
		keys = append(keys, k)
	}
	for _, k := range cat.InitialKeys {
		if _, ok := seen[k]; !ok {
			seen[k] = struct{}{}
			keys = append(keys, k)
		}
	}
	if len(keys) > cat.MaxKeys() {
		keys = keys[:cat.MaxKeys()]
	}
	s.UnlockedKeys = keys

	counts := make(map[string]int, len(s.OwnedUpgrades))
	for _, o := range s.OwnedUpgrades {
		if _, ok := cat.Lookup(o.ID); !ok {
			dropped = append(dropped, "upgrade:"+o.ID)
			continue
		}
		if o.Count > 0 {
			counts[o.ID] += o.Count
		}
	}
	owned := make([]OwnedUpgrade, len(cat.Upgrades))
	for i, u := range cat.Upgrades {
		owned[i] = OwnedUpgrade{ID: u.ID, Count: counts[u.ID]}
	}
	s.OwnedUpgrades = owned

	latched := make(map[string]struct{}, len(s.UnlockedAchievements))
	for _, id := range s.UnlockedAchievements {
		if _, ok := cat.Achievement(id); !ok {
			dropped = append(dropped, "achievement:"+id)
			continue
		}
		latched[id] = struct{}{}
	}
	achievements := make([]string, 0, len(latched))
	for _, a := range cat.Achievements {
		if _, ok := latched[a.ID]; ok {
			achievements = append(achievements, a.ID)
		}
	}
	s.UnlockedAchievements = achievements

	return s, dropped
}

func clampPresses(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if math.IsInf(v, 1) {
		return math.MaxFloat64
	}
	return v
}

func containsKey(keys []string, key string) bool {
	for _, k := range keys {
		if k == key || (k != catalog.SpaceKey && strings.EqualFold(k, key)) {
			return true
		}
	}
	return false
}
