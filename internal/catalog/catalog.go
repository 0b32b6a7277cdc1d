// Package catalog defines the static upgrade, achievement and key unlock data.
package catalog

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrUnknownUpgrade is reported for upgrade ids that are not in the catalog.
var ErrUnknownUpgrade = errors.New("unknown upgrade")

// EffectKind selects how an upgrade contributes to the derived stats.
type EffectKind int

const (
	// ClickBonus adds Magnitude per owned unit to the value of a manual press.
	ClickBonus EffectKind = iota
	// PassiveBonus adds Magnitude per owned unit to presses per second.
	PassiveBonus
	// GlobalMultiplier multiplies every gain by Magnitude once per owned unit.
	GlobalMultiplier
)

func (k EffectKind) String() string {
	switch k {
	case ClickBonus:
		return "click"
	case PassiveBonus:
		return "passive"
	case GlobalMultiplier:
		return "multiplier"
	default:
		return fmt.Sprintf("EffectKind(%d)", int(k))
	}
}

// Upgrade is a purchasable item. Its cost grows geometrically with the owned count.
type Upgrade struct {
	ID          string
	Name        string
	Description string
	BaseCost    float64
	CostFactor  float64
	Kind        EffectKind
	Magnitude   float64
}

// Progress is the view of the economy that achievement conditions inspect.
type Progress struct {
	LifetimePresses float64
	PassiveRate     float64
	UpgradesOwned   int
}

// Achievement is a one-way badge unlocked when Condition first holds.
type Achievement struct {
	ID          string
	Name        string
	Description string
	Icon        string
	Condition   func(Progress) bool
}

// LeaderboardEntry is a fixed competitor shown on the leaderboard.
type LeaderboardEntry struct {
	Name  string
	Score int64
}

// Catalog holds every static definition the game reads.
type Catalog struct {
	Upgrades     []Upgrade
	Achievements []Achievement
	// InitialKeys are unlocked in every new game.
	InitialKeys []string
	// UnlockOrder lists the remaining keys in the order manual presses unlock them.
	UnlockOrder []string
	Leaderboard []LeaderboardEntry
}

// MaxKeys is the number of keys a fully unlocked keyboard has.
func (c *Catalog) MaxKeys() int {
	return len(c.InitialKeys) + len(c.UnlockOrder)
}

// Lookup returns the upgrade with the given id.
func (c *Catalog) Lookup(id string) (Upgrade, bool) {
	idx, ok := c.UpgradeIndex(id)
	if !ok {
		return Upgrade{}, false
	}
	return c.Upgrades[idx], true
}

// UpgradeIndex returns the position of id in Upgrades.
func (c *Catalog) UpgradeIndex(id string) (int, bool) {
	for i := range c.Upgrades {
		if c.Upgrades[i].ID == id {
			return i, true
		}
	}
	return 0, false
}

// Achievement returns the achievement with the given id.
func (c *Catalog) Achievement(id string) (Achievement, bool) {
	for _, a := range c.Achievements {
		if a.ID == id {
			return a, true
		}
	}
	return Achievement{}, false
}

// IsKnownKey reports whether key is an initial key or appears in UnlockOrder.
func (c *Catalog) IsKnownKey(key string) bool {
	for _, k := range c.InitialKeys {
		if k == key {
			return true
		}
	}
	for _, k := range c.UnlockOrder {
		if k == key {
			return true
		}
	}
	return false
}

// SortedLeaderboard returns a copy of the leaderboard ordered by descending score.
func (c *Catalog) SortedLeaderboard() []LeaderboardEntry {
	out := make([]LeaderboardEntry, len(c.Leaderboard))
	copy(out, c.Leaderboard)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Score > out[j].Score
	})
	return out
}

// Validate checks the structural rules the economy relies on.
func (c *Catalog) Validate() error {
	seen := make(map[string]struct{}, len(c.Upgrades))
	for _, u := range c.Upgrades {
		if u.ID == "" {
			return errors.New("upgrade with empty id")
		}
		if _, ok := seen[u.ID]; ok {
			return fmt.Errorf("duplicate upgrade id %q", u.ID)
		}
		seen[u.ID] = struct{}{}
		if u.BaseCost <= 0 {
			return fmt.Errorf("upgrade %q: base cost must be positive", u.ID)
		}
		if u.CostFactor <= 1 {
			return fmt.Errorf("upgrade %q: cost factor must be greater than 1", u.ID)
		}
	}
	achievements := make(map[string]struct{}, len(c.Achievements))
	for _, a := range c.Achievements {
		if _, ok := achievements[a.ID]; ok {
			return fmt.Errorf("duplicate achievement id %q", a.ID)
		}
		if a.Condition == nil {
			return fmt.Errorf("achievement %q has no condition", a.ID)
		}
		achievements[a.ID] = struct{}{}
	}
	if len(c.InitialKeys) == 0 {
		return errors.New("no initial keys")
	}
	keys := make(map[string]struct{}, c.MaxKeys())
	for _, k := range append(append([]string{}, c.InitialKeys...), c.UnlockOrder...) {
		if k == "" || k != strings.ToLower(k) {
			return fmt.Errorf("invalid key %q", k)
		}
		if _, ok := keys[k]; ok {
			return fmt.Errorf("duplicate key %q", k)
		}
		keys[k] = struct{}{}
	}
	return nil
}
