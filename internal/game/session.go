// Package game drives one play session: frames, input routing, challenges and saving.
package game

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/verte-zerg/keymaster/internal/catalog"
	"github.com/verte-zerg/keymaster/internal/economy"
	"github.com/verte-zerg/keymaster/internal/generator"
	"github.com/verte-zerg/keymaster/internal/logger"
	"github.com/verte-zerg/keymaster/internal/metrics"
	"github.com/verte-zerg/keymaster/internal/minigame"
	"github.com/verte-zerg/keymaster/internal/model"
	"github.com/verte-zerg/keymaster/internal/savegame"
)

// History stores finished challenges.
type History interface {
	InsertChallenge(ctx context.Context, rec model.ChallengeRecord) error
	ResetSlot(ctx context.Context, slot string) error
}

// Options configures a Session.
type Options struct {
	Slot string
	// Seed seeds reaction targets. Zero seeds from the clock.
	Seed   int64
	Now    func() time.Time
	Logger *slog.Logger
	// TickChallenges lets Frame drive the challenge countdown for hosts
	// without a dedicated challenge timer.
	TickChallenges bool
}

// FrameResult is what changed during one frame.
type FrameResult struct {
	Passive      float64
	Achievements []catalog.Achievement
	Events       []minigame.Event
}

// PressOutcome describes how a key press was handled.
type PressOutcome struct {
	// Consumed is set when an active challenge took the press.
	Consumed bool
	// Scored is set when the challenge counted the press.
	Scored bool
	// Value is the click value applied by a manual press.
	Value float64
}

// Session owns the engine and the challenge controller of one save slot.
// It is not safe for concurrent use.
type Session struct {
	cat     *catalog.Catalog
	engine  *economy.Engine
	games   *minigame.Controller
	saves   *savegame.Adapter
	history History
	log     *slog.Logger
	now     func() time.Time
	picker  *generator.Generator

	slot           string
	tickChallenges bool
	events         []minigame.Event
	notices        []Notice
	instruction    string
}

// New returns a session at default state. Call Load to restore the slot.
func New(cat *catalog.Catalog, kv savegame.KV, history History, opts Options) *Session {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = logger.Discard()
	}
	if opts.Slot == "" {
		opts.Slot = "default"
	}
	s := &Session{
		cat:            cat,
		engine:         economy.NewWithClock(cat, opts.Now),
		saves:          savegame.NewAdapter(kv, opts.Slot, opts.Logger),
		history:        history,
		log:            opts.Logger.With("slot", opts.Slot),
		now:            opts.Now,
		picker:         generator.NewSeeded(opts.Seed),
		slot:           opts.Slot,
		tickChallenges: opts.TickChallenges,
	}
	s.engine.OnUnlock(s.keyUnlocked)
	s.games = s.newController()
	return s
}

func (s *Session) newController() *minigame.Controller {
	return minigame.NewController(meteredEconomy{s.engine}, s.picker,
		minigame.WithClock(s.now),
		minigame.WithObserver(s.observe),
	)
}

// Slot returns the save slot name.
func (s *Session) Slot() string {
	return s.slot
}

// Load restores the slot. A missing or corrupt save starts a fresh game.
func (s *Session) Load(ctx context.Context) (bool, error) {
	loaded, err := s.saves.Load(ctx, s.engine)
	if err != nil {
		return false, err
	}
	s.syncGauges()
	s.log.Info("Session loaded", "restored", loaded, "lifetime_presses", s.engine.LifetimePresses())
	return loaded, nil
}

// Frame advances passive production by dt and evaluates achievements.
func (s *Session) Frame(dt time.Duration) FrameResult {
	var res FrameResult
	res.Passive = s.engine.AdvanceTime(dt)
	if res.Passive > 0 {
		metrics.PressesTotal.WithLabelValues(metrics.SourcePassive).Add(res.Passive)
	}
	if s.tickChallenges {
		s.games.OnTick(dt)
	}
	res.Achievements = s.engine.CheckAchievements()
	for _, a := range res.Achievements {
		s.notify(NoticeAchievement, fmt.Sprintf("Achievement unlocked: %s %s", a.Icon, a.Name))
		s.log.Info("Achievement unlocked", "achievement", a.ID)
	}
	res.Events = s.events
	s.events = nil
	metrics.LifetimePresses.Set(s.engine.LifetimePresses())
	return res
}

// TickChallenge advances an active challenge by dt.
func (s *Session) TickChallenge(dt time.Duration) {
	s.games.OnTick(dt)
}

// KeyPress routes a key to the active challenge or to the economy.
func (s *Session) KeyPress(key string) PressOutcome {
	if s.games.Phase() == minigame.Active {
		return PressOutcome{Consumed: true, Scored: s.games.HandleKeyPress(key)}
	}
	if !s.engine.IsKeyUnlocked(key) {
		return PressOutcome{}
	}
	value := s.engine.RegisterManualPress()
	metrics.PressesTotal.WithLabelValues(metrics.SourceManual).Add(value)
	return PressOutcome{Value: value}
}

// Buy purchases one unit of upgrade id.
func (s *Session) Buy(id string) bool {
	if !s.engine.PurchaseUpgrade(id) {
		return false
	}
	metrics.UpgradesPurchased.WithLabelValues(id).Inc()
	s.log.Debug("Upgrade purchased", "upgrade", id, "owned", s.engine.Owned(id))
	return true
}

// RequestChallenge offers a challenge of kind.
func (s *Session) RequestChallenge(kind minigame.Kind) bool {
	return s.games.RequestChallenge(kind)
}

// ConfirmChallenge starts the offered challenge.
func (s *Session) ConfirmChallenge() bool {
	return s.games.ConfirmStart()
}

// DeclineChallenge dismisses the offered challenge.
func (s *Session) DeclineChallenge() bool {
	if !s.games.Decline() {
		return false
	}
	s.instruction = ""
	return true
}

// ChallengePhase returns the controller phase.
func (s *Session) ChallengePhase() minigame.Phase {
	return s.games.Phase()
}

// Autosave writes the current state to the slot.
func (s *Session) Autosave(ctx context.Context) error {
	if err := s.saves.Save(ctx, s.engine); err != nil {
		metrics.SavesTotal.WithLabelValues(metrics.ResultError).Inc()
		s.log.Error("Autosave failed", "error", err)
		return err
	}
	metrics.SavesTotal.WithLabelValues(metrics.ResultOK).Inc()
	return nil
}

// Reset clears the slot and its history and starts a fresh game.
func (s *Session) Reset(ctx context.Context) error {
	if s.history != nil {
		if err := s.history.ResetSlot(ctx, s.slot); err != nil {
			return fmt.Errorf("failed to reset history: %w", err)
		}
	}
	if err := s.saves.Reset(ctx, s.engine); err != nil {
		return err
	}
	s.games = s.newController()
	s.events = nil
	s.notices = nil
	s.instruction = ""
	s.syncGauges()
	s.log.Info("Session reset")
	return nil
}

func (s *Session) observe(ev minigame.Event) {
	s.events = append(s.events, ev)
	p := ev.Kind.Params()
	switch ev.Type {
	case minigame.EventReady:
		s.notify(NoticeChallenge, fmt.Sprintf("%s ready! Press enter to start, esc to skip", p.Title))
	case minigame.EventStarted:
		if ev.Kind == minigame.SpeedChallenge {
			s.instruction = p.Description
		}
	case minigame.EventInstruction:
		s.instruction = ev.Instruction
	case minigame.EventEnded:
		s.instruction = ""
		s.challengeEnded(*ev.Result)
	}
}

func (s *Session) challengeEnded(res minigame.Result) {
	kind := res.Kind.String()
	metrics.ChallengesCompleted.WithLabelValues(kind).Inc()
	metrics.ChallengeScore.WithLabelValues(kind).Observe(float64(res.Score))
	s.notify(NoticeChallenge, fmt.Sprintf("%s over! Score %d, +%s presses", res.Kind.Params().Title, res.Score, formatReward(res.Reward)))
	s.log.Info("Challenge finished", "kind", kind, "score", res.Score, "reward", res.Reward)

	if s.history == nil {
		return
	}
	rec := model.ChallengeRecord{
		ID:        uuid.NewString(),
		Slot:      s.slot,
		Kind:      kind,
		Score:     res.Score,
		Reward:    res.Reward,
		StartedAt: res.StartedAt,
		EndedAt:   res.EndedAt,
	}
	if err := s.history.InsertChallenge(context.Background(), rec); err != nil {
		s.log.Error("Failed to record challenge", "error", err)
	}
}

func (s *Session) keyUnlocked(key string) {
	metrics.KeysUnlocked.Set(float64(len(s.engine.UnlockedKeys())))
	s.notify(NoticeUnlock, "UNLOCKED NEW KEY: "+catalog.KeyLabel(key))
	s.log.Info("Key unlocked", "key", key)
}

func (s *Session) syncGauges() {
	metrics.KeysUnlocked.Set(float64(len(s.engine.UnlockedKeys())))
	metrics.LifetimePresses.Set(s.engine.LifetimePresses())
}

// meteredEconomy counts challenge payouts separately from manual presses.
type meteredEconomy struct {
	*economy.Engine
}

func (m meteredEconomy) ApplyPresses(amount float64) {
	m.Engine.ApplyPresses(amount)
	if amount > 0 {
		metrics.PressesTotal.WithLabelValues(metrics.SourceMinigame).Add(amount)
	}
}
