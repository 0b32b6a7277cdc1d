// Package minigame runs the timed bonus challenges layered on top of the economy.
package minigame

import (
	"fmt"
	"strings"
	"time"
)

// Kind selects a challenge variant.
type Kind int

const (
	// SpeedChallenge scores every press of the space bar.
	SpeedChallenge Kind = iota
	// ReactionTest scores presses of a randomly chosen unlocked key.
	ReactionTest
)

// Params are the fixed rules of a challenge kind.
type Params struct {
	Title       string
	Description string
	Duration    time.Duration
	// RewardPerPoint is paid once per point when the challenge ends.
	RewardPerPoint float64
	// PressFactor scales the click value paid for every scoring press.
	PressFactor float64
}

// Kinds lists every challenge kind.
var Kinds = []Kind{SpeedChallenge, ReactionTest}

var params = map[Kind]Params{
	SpeedChallenge: {
		Title:          "Speed Challenge",
		Description:    "Mash SPACE as fast as you can!",
		Duration:       10 * time.Second,
		RewardPerPoint: 10,
		PressFactor:    1,
	},
	ReactionTest: {
		Title:          "Reaction Test",
		Description:    "Press the highlighted key as fast as you can!",
		Duration:       15 * time.Second,
		RewardPerPoint: 25,
		PressFactor:    2,
	},
}

// Params returns the rules of k.
func (k Kind) Params() Params {
	return params[k]
}

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	_, ok := params[k]
	return ok
}

func (k Kind) String() string {
	switch k {
	case SpeedChallenge:
		return "speed"
	case ReactionTest:
		return "reaction"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// ParseKind maps the names used in history records and flags back to a Kind.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "speed":
		return SpeedChallenge, nil
	case "reaction":
		return ReactionTest, nil
	default:
		return 0, fmt.Errorf("unknown challenge kind %q", s)
	}
}

// Phase is the controller state.
type Phase int

const (
	Idle Phase = iota
	Offered
	Active
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case Offered:
		return "offered"
	case Active:
		return "active"
	default:
		return fmt.Sprintf("Phase(%d)", int(p))
	}
}
