package game

import (
	"fmt"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/verte-zerg/keymaster/internal/catalog"
	"github.com/verte-zerg/keymaster/internal/economy"
	"github.com/verte-zerg/keymaster/internal/minigame"
)

// NoticeTTL is how long a notice stays visible.
const NoticeTTL = 3 * time.Second

const maxNotices = 5

// NoticeKind classifies a transient message.
type NoticeKind int

const (
	NoticeUnlock NoticeKind = iota
	NoticeAchievement
	NoticeChallenge
)

// Notice is a transient message for the player.
type Notice struct {
	Kind NoticeKind
	Text string
	At   time.Time
}

// UpgradeView is one row of the shop.
type UpgradeView struct {
	catalog.Upgrade
	Cost       int64
	Owned      int
	Affordable bool
	// Hotkey buys the upgrade from the play screen.
	Hotkey string
}

// AchievementView pairs an achievement with its lock state.
type AchievementView struct {
	catalog.Achievement
	Unlocked bool
}

// ChallengeView is the state of the challenge panel.
type ChallengeView struct {
	Phase       minigame.Phase
	Session     minigame.Session
	Params      minigame.Params
	Cooldown    time.Duration
	Instruction string
}

// Status is the one-line challenge status.
func (c ChallengeView) Status() string {
	switch c.Phase {
	case minigame.Active:
		return "In progress"
	case minigame.Offered:
		return "Waiting to start"
	}
	if c.Cooldown > 0 {
		return fmt.Sprintf("Cooldown: %.1fs", c.Cooldown.Seconds())
	}
	return "Ready"
}

// View is a snapshot of everything the play screen renders.
type View struct {
	Presses      float64
	Lifetime     float64
	Stats        economy.Stats
	Unlock       economy.UnlockProgress
	Keys         []string
	Upgrades     []UpgradeView
	Achievements []AchievementView
	Challenge    ChallengeView
	Notices      []Notice
}

// View returns a snapshot of the session for rendering.
func (s *Session) View() View {
	v := View{
		Presses:  s.engine.CurrentPresses(),
		Lifetime: s.engine.LifetimePresses(),
		Stats:    s.engine.Stats(),
		Unlock:   s.engine.UnlockProgress(),
		Keys:     s.engine.UnlockedKeys(),
	}
	for i, u := range s.cat.Upgrades {
		cost := s.engine.UpgradeCost(u.ID)
		row := UpgradeView{
			Upgrade:    u,
			Cost:       cost,
			Owned:      s.engine.Owned(u.ID),
			Affordable: v.Presses >= float64(cost),
		}
		if i < 9 {
			row.Hotkey = strconv.Itoa(i + 1)
		}
		v.Upgrades = append(v.Upgrades, row)
	}
	for _, a := range s.cat.Achievements {
		v.Achievements = append(v.Achievements, AchievementView{Achievement: a, Unlocked: s.engine.HasAchievement(a.ID)})
	}
	v.Challenge = ChallengeView{
		Phase:       s.games.Phase(),
		Cooldown:    s.games.CooldownRemaining(),
		Instruction: s.instruction,
	}
	if sess, ok := s.games.Session(); ok {
		v.Challenge.Session = sess
		v.Challenge.Params = sess.Kind.Params()
	}
	v.Notices = s.activeNotices()
	return v
}

// UpgradeByHotkey returns the upgrade bound to a digit key.
func (s *Session) UpgradeByHotkey(key string) (catalog.Upgrade, bool) {
	n, err := strconv.Atoi(key)
	if err != nil || n < 1 || n > len(s.cat.Upgrades) || n > 9 {
		return catalog.Upgrade{}, false
	}
	return s.cat.Upgrades[n-1], true
}

func (s *Session) notify(kind NoticeKind, text string) {
	s.notices = append(s.notices, Notice{Kind: kind, Text: text, At: s.now()})
	if len(s.notices) > maxNotices {
		s.notices = s.notices[len(s.notices)-maxNotices:]
	}
}

func (s *Session) activeNotices() []Notice {
	now := s.now()
	kept := s.notices[:0]
	for _, n := range s.notices {
		if now.Sub(n.At) < NoticeTTL {
			kept = append(kept, n)
		}
	}
	s.notices = kept
	return append([]Notice(nil), kept...)
}

// FormatPresses renders a press total the way the play screen shows it.
func FormatPresses(v float64) string {
	if v < 1_000_000 {
		return humanize.Comma(int64(v))
	}
	return humanize.SIWithDigits(v, 2, "")
}

func formatReward(v float64) string {
	return humanize.Comma(int64(v))
}
