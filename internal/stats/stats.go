// Package stats contains progress summaries and plain-text reporting.
package stats

import (
	"math"
	"sort"
	"strings"
	"time"

	"github.com/verte-zerg/keymaster/internal/catalog"
	"github.com/verte-zerg/keymaster/internal/minigame"
	"github.com/verte-zerg/keymaster/internal/model"
)

const sparkChars = " .:-=+*#%@"

// ChallengeSummary aggregates the history of one challenge kind.
type ChallengeSummary struct {
	Kind        minigame.Kind
	Played      int
	Best        int
	Average     float64
	TotalReward float64
	LastPlayed  time.Time
	// Scores are in play order, oldest first.
	Scores []float64
}

// RankedEntry is a leaderboard row with its display rank.
type RankedEntry struct {
	Rank     int
	Name     string
	Score    int64
	IsPlayer bool
}

// SummarizeChallenges groups records by kind. Kinds without history are
// included with zero counts; unknown kinds are skipped.
func SummarizeChallenges(recs []model.ChallengeRecord) []ChallengeSummary {
	byKind := make(map[string]*ChallengeSummary, len(minigame.Kinds))
	out := make([]ChallengeSummary, len(minigame.Kinds))
	for i, k := range minigame.Kinds {
		out[i].Kind = k
		byKind[k.String()] = &out[i]
	}
	for _, r := range recs {
		s, ok := byKind[r.Kind]
		if !ok {
			continue
		}
		s.Played++
		if r.Score > s.Best {
			s.Best = r.Score
		}
		s.TotalReward += r.Reward
		if r.EndedAt.After(s.LastPlayed) {
			s.LastPlayed = r.EndedAt
		}
		s.Scores = append(s.Scores, float64(r.Score))
	}
	for i := range out {
		if out[i].Played == 0 {
			continue
		}
		var sum float64
		for _, v := range out[i].Scores {
			sum += v
		}
		out[i].Average = sum / float64(out[i].Played)
	}
	return out
}

// RankLeaderboard places the player among the fixed entries, highest score
// first. A player tied with an entry ranks below it.
func RankLeaderboard(entries []catalog.LeaderboardEntry, player string, score float64) []RankedEntry {
	rows := make([]RankedEntry, 0, len(entries)+1)
	for _, e := range entries {
		rows = append(rows, RankedEntry{Name: e.Name, Score: e.Score})
	}
	if player == "" {
		player = "You"
	}
	rows = append(rows, RankedEntry{Name: player, Score: clampScore(score), IsPlayer: true})
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Score > rows[j].Score
	})
	for i := range rows {
		rows[i].Rank = i + 1
	}
	return rows
}

func clampScore(v float64) int64 {
	if math.IsNaN(v) || v <= 0 {
		return 0
	}
	if v >= math.MaxInt64 {
		return math.MaxInt64
	}
	return int64(math.Floor(v))
}

// MovingAverage computes a rolling mean over the provided window size.
func MovingAverage(values []float64, window int) []float64 {
	if window <= 1 || len(values) == 0 {
		out := make([]float64, len(values))
		copy(out, values)
		return out
	}
	out := make([]float64, len(values))
	var sum float64
	for i := 0; i < len(values); i++ {
		sum += values[i]
		if i >= window {
			sum -= values[i-window]
		}
		den := float64(i + 1)
		if i >= window {
			den = float64(window)
		}
		out[i] = sum / den
	}
	return out
}

// Sparkline renders a single-line ASCII sparkline for the values.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	minVal, maxVal := values[0], values[0]
	for _, v := range values[1:] {
		minVal = math.Min(minVal, v)
		maxVal = math.Max(maxVal, v)
	}
	if math.Abs(maxVal-minVal) < 1e-9 {
		return strings.Repeat(string(sparkChars[len(sparkChars)/2]), len(values))
	}
	var b strings.Builder
	for _, v := range values {
		pos := (v - minVal) / (maxVal - minVal)
		idx := int(math.Round(pos * float64(len(sparkChars)-1)))
		idx = max(0, min(idx, len(sparkChars)-1))
		b.WriteByte(sparkChars[idx])
	}
	return b.String()
}

// ScoreCurve is the smoothed sparkline of the most recent scores that fit in width.
func ScoreCurve(scores []float64, window, width int) string {
	if width > 0 && len(scores) > width {
		scores = scores[len(scores)-width:]
	}
	return Sparkline(MovingAverage(scores, window))
}
