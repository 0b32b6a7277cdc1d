package statsui

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/keymaster/internal/catalog"
	"github.com/verte-zerg/keymaster/internal/model"
)

type fakeSource struct {
	blob    []byte
	recs    []model.ChallengeRecord
	err     error
	lastCfg model.StatsConfig
}

func (f *fakeSource) Get(context.Context, string) ([]byte, bool, error) {
	return f.blob, f.blob != nil, f.err
}

func (f *fakeSource) ListChallenges(_ context.Context, cfg model.StatsConfig) ([]model.ChallengeRecord, error) {
	f.lastCfg = cfg
	return f.recs, nil
}

func newSizedModel(t *testing.T, src *fakeSource) *Model {
	t.Helper()
	m := NewModel(src, catalog.Default(), model.StatsConfig{Slot: "main", Player: "You", CurveWindow: 1}, nil)
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	return m
}

func TestTabsRender(t *testing.T) {
	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	src := &fakeSource{recs: []model.ChallengeRecord{
		{ID: "1", Kind: "speed", Score: 12, Reward: 120, EndedAt: at},
	}}
	m := newSizedModel(t, src)

	if out := m.View(); !strings.Contains(out, "Presses") || !strings.Contains(out, "First Click") {
		t.Fatalf("expected overview content:\n%s", out)
	}
	m.Update(tea.KeyMsg{Type: tea.KeyRight})
	if out := m.View(); !strings.Contains(out, "Mechanical Switch") {
		t.Fatalf("expected upgrades table:\n%s", out)
	}
	m.Update(tea.KeyMsg{Type: tea.KeyRight})
	if out := m.View(); !strings.Contains(out, "Speed Challenge") || !strings.Contains(out, "score 12") {
		t.Fatalf("expected challenge history:\n%s", out)
	}
	m.Update(tea.KeyMsg{Type: tea.KeyRight})
	if out := m.View(); !strings.Contains(out, "KeyboardKing") || !strings.Contains(out, "You (you)") {
		t.Fatalf("expected leaderboard:\n%s", out)
	}
	m.Update(tea.KeyMsg{Type: tea.KeyRight})
	if m.activeTab != tabOverview {
		t.Fatalf("expected tabs to wrap, got %d", m.activeTab)
	}
}

func TestFilterAppliesToQuery(t *testing.T) {
	src := &fakeSource{}
	m := newSizedModel(t, src)
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("/")})
	if !m.filterMode {
		t.Fatalf("expected filter mode")
	}
	m.filterInputs[0].SetValue("Reaction")
	m.filterInputs[2].SetValue("3")
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if m.filterMode {
		t.Fatalf("expected filter to close, error %q", m.filterError)
	}
	if src.lastCfg.Kind != "reaction" || src.lastCfg.Last != 3 {
		t.Fatalf("unexpected query config: %+v", src.lastCfg)
	}
}

func TestFilterRejectsBadInput(t *testing.T) {
	m := newSizedModel(t, &fakeSource{})
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("/")})
	m.filterInputs[0].SetValue("typing")
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if !m.filterMode || m.filterError == "" {
		t.Fatalf("expected filter error")
	}
	m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if m.filterMode {
		t.Fatalf("expected esc to cancel")
	}
}

func TestLoadErrorShown(t *testing.T) {
	m := newSizedModel(t, &fakeSource{err: errors.New("disk gone")})
	if out := m.View(); !strings.Contains(out, "disk gone") {
		t.Fatalf("expected error in footer:\n%s", out)
	}
}

func TestCurveWindowSteps(t *testing.T) {
	tests := []struct{ in, next, prev int }{
		{1, 5, 1},
		{5, 10, 1},
		{7, 10, 5},
		{10, 15, 5},
	}
	for _, tc := range tests {
		if got := nextCurveWindow(tc.in); got != tc.next {
			t.Fatalf("next(%d) = %d, want %d", tc.in, got, tc.next)
		}
		if got := prevCurveWindow(tc.in); got != tc.prev {
			t.Fatalf("prev(%d) = %d, want %d", tc.in, got, tc.prev)
		}
	}
}
