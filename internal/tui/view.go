package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/verte-zerg/keymaster/internal/game"
	"github.com/verte-zerg/keymaster/internal/minigame"
)

// View implements tea.Model.
func (m *Model) View() string {
	v := m.session.View()
	sections := []string{
		m.renderHeader(v),
		m.renderUnlock(v),
		wrapCaps(m.buildKeycaps(m.allKeys, v.Keys, v.Challenge.Session.TargetKey), m.contentWidth()),
	}
	if v.Challenge.Phase == minigame.Offered || v.Challenge.Phase == minigame.Active {
		sections = append(sections, m.renderChallenge(v.Challenge))
	} else {
		sections = append(sections, lipgloss.JoinHorizontal(lipgloss.Top,
			renderShop(v.Upgrades),
			" ",
			renderAchievements(v.Achievements, v.Challenge),
		))
	}
	if notices := renderNotices(v.Notices); notices != "" {
		sections = append(sections, notices)
	}
	sections = append(sections, m.help.View(m.keys))
	return strings.Join(sections, "\n\n")
}

func (m *Model) contentWidth() int {
	if m.width <= 0 {
		return 60
	}
	return m.width
}

func (m *Model) renderHeader(v game.View) string {
	line := titleStyle.Render("KEYMASTER") + "  " +
		labelStyle.Render("presses ") + valueStyle.Render(game.FormatPresses(v.Presses)) + "  " +
		labelStyle.Render("per second ") + valueStyle.Render(humanize.FtoaWithDigits(v.Stats.PassiveRate, 1)) + "  " +
		labelStyle.Render("per press ") + valueStyle.Render(humanize.FtoaWithDigits(v.Stats.ClickValue, 2))
	if v.Stats.Multiplier > 1 {
		line += "  " + labelStyle.Render("x") + valueStyle.Render(humanize.FtoaWithDigits(v.Stats.Multiplier, 2))
	}
	if m.lastGain > 0 && m.now().Sub(m.lastGainAt) < gainFade {
		line += "  " + gainStyle.Render("+"+humanize.FtoaWithDigits(m.lastGain, 2))
	}
	return line
}

func (m *Model) renderUnlock(v game.View) string {
	u := v.Unlock
	label := fmt.Sprintf("keys %d/%d", u.Unlocked, u.Max)
	if u.Complete {
		return labelStyle.Render(label) + " " + m.unlockBar.ViewAs(1) + " " + labelStyle.Render("(MAX)")
	}
	pct := 0.0
	if u.NextMilestone > 0 {
		pct = float64(u.ManualPresses) / float64(u.NextMilestone)
	}
	return labelStyle.Render(label) + " " + m.unlockBar.ViewAs(pct) + " " +
		labelStyle.Render(fmt.Sprintf("(%s/%s)", humanize.Comma(u.ManualPresses), humanize.Comma(u.NextMilestone)))
}

func renderShop(rows []game.UpgradeView) string {
	lines := []string{titleStyle.Render("Upgrades")}
	for _, u := range rows {
		style := expensiveStyle
		if u.Affordable {
			style = affordableStyle
		}
		lines = append(lines, style.Render(fmt.Sprintf("[%s] %-18s %8s  x%d", u.Hotkey, u.Name, humanize.Comma(u.Cost), u.Owned)))
	}
	return panelStyle.Render(strings.Join(lines, "\n"))
}

func renderAchievements(rows []game.AchievementView, c game.ChallengeView) string {
	lines := []string{titleStyle.Render("Achievements")}
	for _, a := range rows {
		if a.Unlocked {
			lines = append(lines, unlockedStyle.Render(a.Icon+" "+a.Name))
		} else {
			lines = append(lines, lockedStyle.Render("?  "+a.Name))
		}
	}
	lines = append(lines, "", titleStyle.Render("Challenges"), labelStyle.Render(c.Status()))
	return panelStyle.Render(strings.Join(lines, "\n"))
}

func (m *Model) renderChallenge(c game.ChallengeView) string {
	lines := []string{titleStyle.Render(c.Params.Title)}
	switch c.Phase {
	case minigame.Offered:
		lines = append(lines,
			c.Params.Description,
			labelStyle.Render(fmt.Sprintf("%s, reward %s per point", c.Params.Duration, humanize.Comma(int64(c.Params.RewardPerPoint)))),
			"",
			valueStyle.Render("enter")+labelStyle.Render(" start  ")+valueStyle.Render("esc")+labelStyle.Render(" skip"),
		)
	case minigame.Active:
		pct := 0.0
		if c.Session.Duration > 0 {
			pct = float64(c.Session.TimeRemaining) / float64(c.Session.Duration)
		}
		lines = append(lines,
			instructionStyle.Render(c.Instruction),
			m.timerBar.ViewAs(pct)+" "+labelStyle.Render(fmt.Sprintf("%.1fs", c.Session.TimeRemaining.Seconds())),
			labelStyle.Render("score ")+valueStyle.Render(fmt.Sprintf("%d", c.Session.Score)),
		)
	}
	return overlayStyle.Render(strings.Join(lines, "\n"))
}

func renderNotices(notices []game.Notice) string {
	if len(notices) == 0 {
		return ""
	}
	lines := make([]string, 0, len(notices))
	for _, n := range notices {
		lines = append(lines, noticeStyle.Render(n.Text))
	}
	return strings.Join(lines, "\n")
}
