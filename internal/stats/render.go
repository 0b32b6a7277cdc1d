package stats

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/dustin/go-humanize"
	"golang.org/x/term"
)

const terminalWidthBackup = 80

// TerminalWidth returns the width of w when it is a terminal, otherwise a fixed fallback.
func TerminalWidth(w io.Writer) int {
	file, ok := w.(*os.File)
	if !ok {
		return terminalWidthBackup
	}
	width, _, err := term.GetSize(int(file.Fd()))
	if err != nil || width <= 0 {
		return terminalWidthBackup
	}
	return width
}

// RenderReport prints every section of the report as plain text sized to width.
func RenderReport(w io.Writer, r Report, width int) error {
	sections := []func(io.Writer, Report, int) error{
		RenderOverview,
		RenderUpgrades,
		RenderChallenges,
		RenderLeaderboard,
	}
	for _, render := range sections {
		if err := render(w, r, width); err != nil {
			return err
		}
	}
	return nil
}

// RenderOverview prints totals, rates, and unlock progress.
func RenderOverview(w io.Writer, r Report, width int) error {
	return writeSection(w, "Overview", OverviewLines(r), width)
}

// OverviewLines returns the overview section without a title.
func OverviewLines(r Report) []string {
	lines := []string{}
	if !r.Found {
		lines = append(lines, fmt.Sprintf("No save found for slot %q; showing a new game.", r.Slot))
	}
	unlock := fmt.Sprintf("%d/%d (%s/%s manual presses)", r.Unlock.Unlocked, r.Unlock.Max,
		humanize.Comma(r.Unlock.ManualPresses), humanize.Comma(r.Unlock.NextMilestone))
	if r.Unlock.Complete {
		unlock = fmt.Sprintf("%d/%d (MAX)", r.Unlock.Unlocked, r.Unlock.Max)
	}
	unlocked := 0
	for _, a := range r.Achievements {
		if a.Unlocked {
			unlocked++
		}
	}
	rows := [][]string{
		{"Slot", r.Slot},
		{"Presses", humanize.Comma(int64(r.Presses))},
		{"Lifetime presses", humanize.Comma(int64(r.Lifetime))},
		{"Manual presses", humanize.Comma(r.ManualPress)},
		{"Per press", strconv.FormatFloat(r.Stats.ClickValue, 'f', 2, 64)},
		{"Per second", strconv.FormatFloat(r.Stats.PassiveRate, 'f', 1, 64)},
		{"Multiplier", strconv.FormatFloat(r.Stats.Multiplier, 'f', 2, 64)},
		{"Keys", unlock},
		{"Achievements", fmt.Sprintf("%d/%d", unlocked, len(r.Achievements))},
	}
	lines = append(lines, formatTable(nil, rows, nil)...)
	for _, a := range r.Achievements {
		mark := "[ ]"
		if a.Unlocked {
			mark = "[x]"
		}
		lines = append(lines, fmt.Sprintf("%s %s %s: %s", mark, a.Icon, a.Name, a.Description))
	}
	return lines
}

// RenderUpgrades prints the upgrade table.
func RenderUpgrades(w io.Writer, r Report, width int) error {
	return writeSection(w, "Upgrades", UpgradeLines(r), width)
}

// UpgradeLines returns the upgrade table without a title.
func UpgradeLines(r Report) []string {
	rows := make([][]string, 0, len(r.Upgrades))
	for _, u := range r.Upgrades {
		rows = append(rows, []string{
			u.Name,
			u.Kind.String(),
			strconv.Itoa(u.Owned),
			humanize.Comma(u.NextCost),
			u.Description,
		})
	}
	return formatTable([]string{"Upgrade", "Effect", "Owned", "Next cost", "Description"}, rows, map[int]bool{2: true, 3: true})
}

// RenderChallenges prints per-kind challenge summaries with score curves.
func RenderChallenges(w io.Writer, r Report, width int) error {
	return writeSection(w, "Challenges", ChallengeLines(r, width), width)
}

// ChallengeLines returns the challenge summaries without a title.
func ChallengeLines(r Report, width int) []string {
	rows := make([][]string, 0, len(r.Summaries))
	for _, s := range r.Summaries {
		last := "never"
		avg := "-"
		if s.Played > 0 {
			last = humanize.Time(s.LastPlayed)
			avg = strconv.FormatFloat(s.Average, 'f', 1, 64)
		}
		rows = append(rows, []string{
			s.Kind.Params().Title,
			strconv.Itoa(s.Played),
			strconv.Itoa(s.Best),
			avg,
			humanize.Commaf(s.TotalReward),
			last,
		})
	}
	lines := formatTable([]string{"Challenge", "Played", "Best", "Avg", "Rewards", "Last"}, rows, map[int]bool{1: true, 2: true, 3: true, 4: true})
	curveWidth := width - 20
	for _, s := range r.Summaries {
		if len(s.Scores) < 2 {
			continue
		}
		lines = append(lines, fmt.Sprintf("%-16s %s", s.Kind.Params().Title, ScoreCurve(s.Scores, r.CurveWindow, curveWidth)))
	}
	return lines
}

// RenderLeaderboard prints the leaderboard with the player ranked in.
func RenderLeaderboard(w io.Writer, r Report, width int) error {
	return writeSection(w, "Leaderboard", LeaderboardLines(r.Leaderboard), width)
}

// LeaderboardLines returns the leaderboard table without a title.
func LeaderboardLines(entries []RankedEntry) []string {
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		name := e.Name
		if e.IsPlayer {
			name += " (you)"
		}
		rows = append(rows, []string{"#" + strconv.Itoa(e.Rank), name, humanize.Comma(e.Score)})
	}
	return formatTable([]string{"Rank", "Player", "Presses"}, rows, map[int]bool{2: true})
}

func writeSection(w io.Writer, title string, lines []string, width int) error {
	if _, err := fmt.Fprintln(w, title); err != nil {
		return err
	}
	for _, line := range fitLines(lines, width) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintln(w, ""); err != nil {
		return err
	}
	return nil
}
