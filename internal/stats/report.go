package stats

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/verte-zerg/keymaster/internal/catalog"
	"github.com/verte-zerg/keymaster/internal/economy"
	"github.com/verte-zerg/keymaster/internal/logger"
	"github.com/verte-zerg/keymaster/internal/model"
	"github.com/verte-zerg/keymaster/internal/savegame"
)

// Source is the storage a report reads from.
type Source interface {
	Get(ctx context.Context, slot string) ([]byte, bool, error)
	ListChallenges(ctx context.Context, cfg model.StatsConfig) ([]model.ChallengeRecord, error)
}

// UpgradeRow is one upgrade with the slot's ownership.
type UpgradeRow struct {
	catalog.Upgrade
	Owned    int
	NextCost int64
}

// AchievementRow is one achievement with the slot's lock state.
type AchievementRow struct {
	catalog.Achievement
	Unlocked bool
}

// Report contains precomputed data for stats rendering.
type Report struct {
	Slot   string
	Player string
	// Found is false when the slot has no readable save.
	Found        bool
	Presses      float64
	Lifetime     float64
	ManualPress  int64
	Stats        economy.Stats
	Unlock       economy.UnlockProgress
	Upgrades     []UpgradeRow
	Achievements []AchievementRow
	Challenges   []model.ChallengeRecord
	Summaries    []ChallengeSummary
	Leaderboard  []RankedEntry
	CurveWindow  int
}

// BuildReport loads a slot and its challenge history and prepares it for rendering.
// A corrupt save is logged and reported as not found.
func BuildReport(ctx context.Context, src Source, cat *catalog.Catalog, cfg model.StatsConfig, log *slog.Logger) (Report, error) {
	if log == nil {
		log = logger.Discard()
	}
	engine := economy.New(cat)
	found := false
	data, ok, err := src.Get(ctx, cfg.Slot)
	if err != nil {
		return Report{}, fmt.Errorf("failed to read save %q: %w", cfg.Slot, err)
	}
	if ok {
		state, _, derr := savegame.Decode(data, cat)
		switch {
		case derr == nil:
			engine.Restore(state)
			found = true
		case errors.Is(derr, savegame.ErrCorrupt):
			log.Warn("Ignoring corrupt save", "slot", cfg.Slot, "error", derr)
		default:
			return Report{}, derr
		}
	}

	recs, err := src.ListChallenges(ctx, cfg)
	if err != nil {
		return Report{}, fmt.Errorf("failed to list challenges: %w", err)
	}
	if cfg.Last > 0 && len(recs) > cfg.Last {
		recs = recs[len(recs)-cfg.Last:]
	}

	r := Report{
		Slot:        cfg.Slot,
		Player:      cfg.Player,
		Found:       found,
		Presses:     engine.CurrentPresses(),
		Lifetime:    engine.LifetimePresses(),
		ManualPress: engine.Snapshot().ManualPressCount,
		Stats:       engine.Stats(),
		Unlock:      engine.UnlockProgress(),
		Challenges:  recs,
		Summaries:   SummarizeChallenges(recs),
		Leaderboard: RankLeaderboard(cat.Leaderboard, cfg.Player, engine.LifetimePresses()),
		CurveWindow: cfg.CurveWindow,
	}
	for _, u := range cat.Upgrades {
		r.Upgrades = append(r.Upgrades, UpgradeRow{
			Upgrade:  u,
			Owned:    engine.Owned(u.ID),
			NextCost: engine.UpgradeCost(u.ID),
		})
	}
	for _, a := range cat.Achievements {
		r.Achievements = append(r.Achievements, AchievementRow{Achievement: a, Unlocked: engine.HasAchievement(a.ID)})
	}
	return r, nil
}
