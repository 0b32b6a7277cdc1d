package tui

import (
	"context"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/keymaster/internal/catalog"
	"github.com/verte-zerg/keymaster/internal/game"
	"github.com/verte-zerg/keymaster/internal/minigame"
	"github.com/verte-zerg/keymaster/internal/model"
)

type memKV map[string][]byte

func (m memKV) Get(_ context.Context, key string) ([]byte, bool, error) {
	b, ok := m[key]
	return b, ok, nil
}

func (m memKV) Put(_ context.Context, key string, blob []byte) error {
	m[key] = blob
	return nil
}

func (m memKV) Delete(_ context.Context, key string) error {
	delete(m, key)
	return nil
}

type testClock struct{ t time.Time }

func (c *testClock) now() time.Time { return c.t }

func newTestModel(t *testing.T) (*Model, memKV, *testClock) {
	t.Helper()
	clock := &testClock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	kv := memKV{}
	cat := catalog.Default()
	session := game.New(cat, kv, nil, game.Options{Slot: "tui", Seed: 3, Now: clock.now})
	cfg := model.Config{Slot: "tui", FrameRate: 30, AutosaveSeconds: 30}
	m := NewModel(cfg, session, cat, nil)
	m.now = clock.now
	return m, kv, clock
}

func runeKey(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func TestPressKeysEarnPresses(t *testing.T) {
	m, _, _ := newTestModel(t)
	m.Update(tea.KeyMsg{Type: tea.KeySpace})
	m.Update(runeKey('w'))
	m.Update(runeKey('q'))
	if got := m.session.View().Presses; got != 2 {
		t.Fatalf("expected 2 presses, got %v", got)
	}
	if got := m.pressedKey(); got != "w" {
		t.Fatalf("expected w to flash, got %q", got)
	}
}

func TestPressFlashExpires(t *testing.T) {
	m, _, clock := newTestModel(t)
	m.Update(runeKey('a'))
	clock.t = clock.t.Add(pressFlash + time.Millisecond)
	if got := m.pressedKey(); got != "" {
		t.Fatalf("expected no flash, got %q", got)
	}
}

func TestDigitBuysUpgrade(t *testing.T) {
	m, _, _ := newTestModel(t)
	for i := 0; i < 15; i++ {
		m.Update(runeKey('d'))
	}
	m.Update(runeKey('1'))
	v := m.session.View()
	if v.Upgrades[0].Owned != 1 {
		t.Fatalf("expected one switch, got %d", v.Upgrades[0].Owned)
	}
	if v.Presses != 0 {
		t.Fatalf("expected presses spent, got %v", v.Presses)
	}
}

func TestChallengeKeysAndStaleTicks(t *testing.T) {
	m, _, _ := newTestModel(t)
	m.Update(tea.KeyMsg{Type: tea.KeyF1})
	if m.session.ChallengePhase() != minigame.Offered {
		t.Fatalf("expected offered challenge")
	}
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil || m.session.ChallengePhase() != minigame.Active {
		t.Fatalf("expected active challenge with tick command")
	}
	m.Update(tea.KeyMsg{Type: tea.KeySpace})
	m.Update(tea.KeyMsg{Type: tea.KeySpace})
	if got := m.session.View().Challenge.Session.Score; got != 2 {
		t.Fatalf("expected score 2, got %d", got)
	}
	if got := m.session.View().Presses; got != 2 {
		t.Fatalf("expected scored presses to earn, got %v", got)
	}

	_, cmd = m.Update(challengeTickMsg{gen: m.challengeGen - 1})
	if cmd != nil {
		t.Fatalf("expected stale tick to be dropped")
	}
	for i := 0; i < 100; i++ {
		m.Update(challengeTickMsg{gen: m.challengeGen})
	}
	if m.session.ChallengePhase() != minigame.Idle {
		t.Fatalf("expected challenge to end")
	}
	if got := m.session.View().Presses; got != 22 {
		t.Fatalf("expected reward of 20, got %v", got)
	}
}

func TestEscapeDeclinesChallenge(t *testing.T) {
	m, _, _ := newTestModel(t)
	m.Update(tea.KeyMsg{Type: tea.KeyF2})
	m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if m.session.ChallengePhase() != minigame.Idle {
		t.Fatalf("expected declined challenge")
	}
}

func TestQuitSaves(t *testing.T) {
	m, kv, _ := newTestModel(t)
	m.Update(runeKey('s'))
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	if cmd == nil {
		t.Fatalf("expected quit command")
	}
	if _, ok := kv["tui"]; !ok {
		t.Fatalf("expected save on quit")
	}
}

func TestViewShowsPanels(t *testing.T) {
	m, _, _ := newTestModel(t)
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	out := m.View()
	for _, want := range []string{"KEYMASTER", "Upgrades", "Mechanical Switch", "Achievements", "SPACE", "Ready"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in view:\n%s", want, out)
		}
	}
	m.Update(tea.KeyMsg{Type: tea.KeyF1})
	out = m.View()
	if !strings.Contains(out, "Mash SPACE as fast as you can!") {
		t.Fatalf("expected challenge overlay:\n%s", out)
	}
}

func TestWrapCapsRespectsWidth(t *testing.T) {
	caps := []styledCap{{s: "[A]", width: 3}, {s: "[B]", width: 3}, {s: "[C]", width: 3}}
	got := wrapCaps(caps, 7)
	if got != "[A] [B]\n[C]" {
		t.Fatalf("unexpected wrap: %q", got)
	}
	if got := wrapCaps(caps, 0); got != "[A] [B] [C]" {
		t.Fatalf("unexpected unwrapped: %q", got)
	}
}
