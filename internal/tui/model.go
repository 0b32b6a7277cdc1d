// Package tui provides the Bubble Tea play screen.
package tui

import (
	"context"
	"log/slog"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/verte-zerg/keymaster/internal/catalog"
	"github.com/verte-zerg/keymaster/internal/game"
	"github.com/verte-zerg/keymaster/internal/logger"
	"github.com/verte-zerg/keymaster/internal/minigame"
	"github.com/verte-zerg/keymaster/internal/model"
)

const (
	pressFlash = 150 * time.Millisecond
	gainFade   = 600 * time.Millisecond
)

type frameMsg time.Time

type autosaveMsg time.Time

// challengeTickMsg carries the generation of the challenge that scheduled it
// so ticks left over from an earlier challenge are dropped.
type challengeTickMsg struct {
	gen int
}

// Model implements the Bubble Tea play screen.
type Model struct {
	session *game.Session
	config  model.Config
	log     *slog.Logger
	allKeys []string

	keys      keyMap
	help      help.Model
	unlockBar progress.Model
	timerBar  progress.Model
	capCache  *expirable.LRU[string, string]
	now       func() time.Time

	width  int
	height int

	lastFrame    time.Time
	challengeGen int

	lastKey    string
	lastKeyAt  time.Time
	lastGain   float64
	lastGainAt time.Time
}

var (
	titleStyle       = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#C89A3A"))
	labelStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	valueStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	gainStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("#73D13D"))
	capStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Background(lipgloss.Color("#303030")).Padding(0, 1)
	lockedCapStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#4A4A4A")).Background(lipgloss.Color("#1C1C1C")).Padding(0, 1)
	pressedCapStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#1C1C1C")).Background(lipgloss.Color("#C89A3A")).Padding(0, 1)
	targetCapStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#1C1C1C")).Background(lipgloss.Color("#FF4D4F")).Bold(true).Padding(0, 1)
	affordableStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0"))
	expensiveStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	unlockedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A"))
	lockedStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#4A4A4A"))
	noticeStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#40A9FF")).Bold(true)
	panelStyle       = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("#4A4A4A")).Padding(0, 1)
	overlayStyle     = panelStyle.BorderForeground(lipgloss.Color("#C89A3A"))
	instructionStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FF4D4F"))
)

// NewModel constructs the play screen for a loaded session.
func NewModel(cfg model.Config, session *game.Session, cat *catalog.Catalog, log *slog.Logger) *Model {
	if log == nil {
		log = logger.Discard()
	}
	all := append(append([]string(nil), cat.InitialKeys...), cat.UnlockOrder...)
	return &Model{
		session:   session,
		config:    cfg,
		log:       log,
		allKeys:   all,
		keys:      newKeyMap(),
		help:      help.New(),
		unlockBar: progress.New(progress.WithSolidFill("#C89A3A"), progress.WithoutPercentage(), progress.WithWidth(30)),
		timerBar:  progress.New(progress.WithSolidFill("#FF4D4F"), progress.WithoutPercentage(), progress.WithWidth(30)),
		capCache:  expirable.NewLRU[string, string](256, nil, 10*time.Minute),
		now:       time.Now,
	}
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.frameCmd(), m.autosaveCmd())
}

func (m *Model) frameCmd() tea.Cmd {
	rate := m.config.FrameRate
	if rate <= 0 {
		rate = 30
	}
	return tea.Tick(time.Second/time.Duration(rate), func(t time.Time) tea.Msg {
		return frameMsg(t)
	})
}

func (m *Model) autosaveCmd() tea.Cmd {
	interval := time.Duration(m.config.AutosaveSeconds) * time.Second
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return autosaveMsg(t)
	})
}

func (m *Model) challengeTickCmd() tea.Cmd {
	gen := m.challengeGen
	return tea.Tick(minigame.TickInterval, func(time.Time) tea.Msg {
		return challengeTickMsg{gen: gen}
	})
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil
	case frameMsg:
		t := time.Time(msg)
		var dt time.Duration
		if !m.lastFrame.IsZero() {
			dt = t.Sub(m.lastFrame)
		}
		m.lastFrame = t
		m.session.Frame(dt)
		return m, m.frameCmd()
	case challengeTickMsg:
		if msg.gen != m.challengeGen || m.session.ChallengePhase() != minigame.Active {
			return m, nil
		}
		m.session.TickChallenge(minigame.TickInterval)
		if m.session.ChallengePhase() != minigame.Active {
			return m, nil
		}
		return m, m.challengeTickCmd()
	case autosaveMsg:
		// Failures are logged by the session and retried next interval.
		_ = m.session.Autosave(context.Background())
		return m, m.autosaveCmd()
	case tea.KeyMsg:
		return m.handleKey(msg)
	default:
		return m, nil
	}
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Quit) {
		if err := m.session.Autosave(context.Background()); err != nil {
			m.log.Error("Final save failed", "error", err)
		}
		return m, tea.Quit
	}
	pressed, isPress := keyFromMsg(msg)
	if m.session.ChallengePhase() == minigame.Active {
		if isPress {
			m.session.KeyPress(pressed)
			m.markPressed(pressed, 0)
		}
		return m, nil
	}
	switch {
	case key.Matches(msg, m.keys.Speed):
		m.session.RequestChallenge(minigame.SpeedChallenge)
		return m, nil
	case key.Matches(msg, m.keys.Reaction):
		m.session.RequestChallenge(minigame.ReactionTest)
		return m, nil
	case key.Matches(msg, m.keys.Start):
		if m.session.ConfirmChallenge() {
			m.challengeGen++
			return m, m.challengeTickCmd()
		}
		return m, nil
	case key.Matches(msg, m.keys.Decline):
		m.session.DeclineChallenge()
		return m, nil
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	case key.Matches(msg, m.keys.Buy):
		if u, ok := m.session.UpgradeByHotkey(msg.String()); ok {
			m.session.Buy(u.ID)
		}
		return m, nil
	}
	if isPress {
		out := m.session.KeyPress(pressed)
		if out.Value > 0 {
			m.markPressed(catalog.NormalizeKey(pressed), out.Value)
		}
	}
	return m, nil
}

// keyFromMsg maps a key event to a key identifier. Only single printable keys count.
func keyFromMsg(msg tea.KeyMsg) (string, bool) {
	if msg.Alt {
		return "", false
	}
	switch msg.Type {
	case tea.KeySpace:
		return catalog.SpaceKey, true
	case tea.KeyRunes:
		if len(msg.Runes) != 1 {
			return "", false
		}
		return string(msg.Runes), true
	default:
		return "", false
	}
}

func (m *Model) markPressed(k string, gain float64) {
	now := m.now()
	m.lastKey = catalog.NormalizeKey(k)
	m.lastKeyAt = now
	if gain > 0 {
		m.lastGain = gain
		m.lastGainAt = now
	}
}

func (m *Model) pressedKey() string {
	if m.lastKey == "" || m.now().Sub(m.lastKeyAt) > pressFlash {
		return ""
	}
	return m.lastKey
}
