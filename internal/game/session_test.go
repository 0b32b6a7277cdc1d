package game

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/keymaster/internal/catalog"
	"github.com/verte-zerg/keymaster/internal/minigame"
	"github.com/verte-zerg/keymaster/internal/model"
	"github.com/verte-zerg/keymaster/internal/store"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time          { return c.t }
func (c *clock) advance(d time.Duration) { c.t = c.t.Add(d) }

func openStore(t *testing.T) *store.Store {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "keymaster.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func newSession(t *testing.T, st *store.Store, c *clock, tick bool) *Session {
	t.Helper()
	return New(catalog.Default(), st, st, Options{
		Slot:           "test",
		Seed:           7,
		Now:            c.now,
		TickChallenges: tick,
	})
}

func TestKeyPressRoutesToEconomy(t *testing.T) {
	c := &clock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	s := newSession(t, openStore(t), c, false)

	out := s.KeyPress("w")
	assert.Equal(t, PressOutcome{Value: 1}, out)
	out = s.KeyPress("q")
	assert.Equal(t, PressOutcome{}, out)
	out = s.KeyPress(" ")
	assert.Equal(t, 1.0, out.Value)

	assert.Equal(t, 2.0, s.View().Presses)
}

func TestKeyUnlockNotice(t *testing.T) {
	c := &clock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	s := newSession(t, openStore(t), c, false)
	for i := 0; i < 1000; i++ {
		s.KeyPress("a")
	}
	v := s.View()
	assert.Len(t, v.Keys, 6)
	require.NotEmpty(t, v.Notices)
	assert.Equal(t, "UNLOCKED NEW KEY: Q", v.Notices[0].Text)

	c.advance(NoticeTTL)
	assert.Empty(t, s.View().Notices)
}

func TestFrameAppliesPassiveAndAchievements(t *testing.T) {
	c := &clock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	s := newSession(t, openStore(t), c, false)
	for i := 0; i < 100; i++ {
		s.KeyPress("d")
	}
	require.True(t, s.Buy(catalog.AutoClicker))
	assert.False(t, s.Buy(catalog.AutoClicker))

	res := s.Frame(2 * time.Second)
	assert.InDelta(t, 2.0, res.Passive, 1e-9)
	ids := make([]string, 0, len(res.Achievements))
	for _, a := range res.Achievements {
		ids = append(ids, a.ID)
	}
	assert.Equal(t, []string{"start", "hundred"}, ids)
	assert.Empty(t, s.Frame(0).Achievements)
}

func TestChallengeFlowRecordsHistory(t *testing.T) {
	c := &clock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	st := openStore(t)
	s := newSession(t, st, c, true)

	require.True(t, s.RequestChallenge(minigame.SpeedChallenge))
	assert.Equal(t, "Waiting to start", s.View().Challenge.Status())
	require.True(t, s.ConfirmChallenge())
	assert.Equal(t, "Mash SPACE as fast as you can!", s.View().Challenge.Instruction)

	for i := 0; i < 5; i++ {
		out := s.KeyPress(" ")
		assert.True(t, out.Consumed)
		assert.True(t, out.Scored)
	}
	out := s.KeyPress("w")
	assert.Equal(t, PressOutcome{Consumed: true}, out)
	assert.Equal(t, 5.0, s.View().Presses)

	var ended []minigame.Event
	for i := 0; i < 100; i++ {
		c.advance(minigame.TickInterval)
		for _, ev := range s.Frame(minigame.TickInterval).Events {
			if ev.Type == minigame.EventEnded {
				ended = append(ended, ev)
			}
		}
	}
	require.Len(t, ended, 1)
	assert.Equal(t, 55.0, s.View().Presses)
	assert.Equal(t, "Cooldown: 15.0s", s.View().Challenge.Status())
	assert.False(t, s.RequestChallenge(minigame.ReactionTest))

	recs, err := st.ListChallenges(context.Background(), model.StatsConfig{Slot: "test"})
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "speed", recs[0].Kind)
	assert.Equal(t, 5, recs[0].Score)
	assert.Equal(t, 50.0, recs[0].Reward)

	found := false
	for _, n := range s.View().Notices {
		if strings.Contains(n.Text, "Speed Challenge over! Score 5, +50 presses") {
			found = true
		}
	}
	assert.True(t, found)
}

func TestDedicatedTimerDrivesChallenge(t *testing.T) {
	c := &clock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	s := newSession(t, openStore(t), c, false)
	require.True(t, s.RequestChallenge(minigame.ReactionTest))
	require.True(t, s.ConfirmChallenge())
	assert.True(t, strings.HasPrefix(s.View().Challenge.Instruction, "Press: "))

	s.Frame(time.Minute)
	assert.Equal(t, minigame.Active, s.ChallengePhase())

	s.TickChallenge(15 * time.Second)
	assert.Equal(t, minigame.Idle, s.ChallengePhase())
	assert.Empty(t, s.View().Challenge.Instruction)
}

func TestDeclineChallenge(t *testing.T) {
	c := &clock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	s := newSession(t, openStore(t), c, false)
	require.True(t, s.RequestChallenge(minigame.SpeedChallenge))
	require.True(t, s.DeclineChallenge())
	assert.Equal(t, "Ready", s.View().Challenge.Status())
	assert.False(t, s.DeclineChallenge())
}

func TestAutosaveLoadAndReset(t *testing.T) {
	ctx := context.Background()
	c := &clock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	st := openStore(t)

	s := newSession(t, st, c, true)
	loaded, err := s.Load(ctx)
	require.NoError(t, err)
	assert.False(t, loaded)
	for i := 0; i < 30; i++ {
		s.KeyPress("s")
	}
	require.True(t, s.Buy(catalog.MechanicalSwitch))
	require.NoError(t, s.Autosave(ctx))

	again := newSession(t, st, c, true)
	loaded, err = again.Load(ctx)
	require.NoError(t, err)
	assert.True(t, loaded)
	v := again.View()
	assert.Equal(t, 15.0, v.Presses)
	assert.Equal(t, 1, v.Upgrades[0].Owned)
	assert.Equal(t, int64(22), v.Upgrades[0].Cost)
	assert.Equal(t, 2.0, v.Stats.ClickValue)

	require.NoError(t, st.InsertChallenge(ctx, model.ChallengeRecord{ID: "x", Slot: "test", Kind: "speed", StartedAt: c.now(), EndedAt: c.now()}))
	require.NoError(t, again.Reset(ctx))
	assert.Zero(t, again.View().Presses)

	_, ok, err := st.Get(ctx, "test")
	require.NoError(t, err)
	assert.False(t, ok)
	recs, err := st.ListChallenges(ctx, model.StatsConfig{Slot: "test"})
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestCorruptSaveStartsFresh(t *testing.T) {
	ctx := context.Background()
	c := &clock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	st := openStore(t)
	require.NoError(t, st.Put(ctx, "test", []byte("not json")))

	s := newSession(t, st, c, true)
	loaded, err := s.Load(ctx)
	require.NoError(t, err)
	assert.False(t, loaded)
	assert.Zero(t, s.View().Lifetime)
}

func TestUpgradeViewAndHotkeys(t *testing.T) {
	c := &clock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	s := newSession(t, openStore(t), c, false)
	for i := 0; i < 15; i++ {
		s.KeyPress("w")
	}
	v := s.View()
	require.Len(t, v.Upgrades, 7)
	assert.Equal(t, "1", v.Upgrades[0].Hotkey)
	assert.True(t, v.Upgrades[0].Affordable)
	assert.False(t, v.Upgrades[1].Affordable)
	assert.Len(t, v.Achievements, 6)

	u, ok := s.UpgradeByHotkey("7")
	require.True(t, ok)
	assert.Equal(t, catalog.QuantumKeyboard, u.ID)
	_, ok = s.UpgradeByHotkey("8")
	assert.False(t, ok)
	_, ok = s.UpgradeByHotkey("x")
	assert.False(t, ok)
}

func TestFormatPresses(t *testing.T) {
	assert.Equal(t, "1,234", FormatPresses(1234.9))
	assert.Equal(t, "999,999", FormatPresses(999_999))
	assert.Equal(t, "2.5 M", FormatPresses(2_500_000))
}
