// Package generator picks random keys for reaction challenges.
package generator

import (
	"math/rand"
	"time"
)

// Generator produces randomized key targets.
type Generator struct {
	rnd *rand.Rand
}

// New returns a Generator seeded with the current time.
func New() *Generator {
	return NewSeeded(time.Now().UnixNano())
}

// NewSeeded returns a Generator with a fixed seed. A zero seed falls back to the current time.
func NewSeeded(seed int64) *Generator {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Generator{rnd: rand.New(rand.NewSource(seed))}
}

// PickKey selects one of keys uniformly. It returns "" for an empty list.
func (g *Generator) PickKey(keys []string) string {
	if len(keys) == 0 {
		return ""
	}
	return keys[g.rnd.Intn(len(keys))]
}
