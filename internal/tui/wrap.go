package tui

import (
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/verte-zerg/keymaster/internal/catalog"
)

type capState int

const (
	capLocked capState = iota
	capUnlocked
	capPressed
	capTarget
)

type styledCap struct {
	s     string
	width int
}

// buildKeycaps renders every catalog key in unlock order. Locked keys are dimmed.
func (m *Model) buildKeycaps(all, unlocked []string, target string) []styledCap {
	open := make(map[string]struct{}, len(unlocked))
	for _, k := range unlocked {
		open[k] = struct{}{}
	}
	out := make([]styledCap, 0, len(all))
	for _, k := range all {
		state := capLocked
		if _, ok := open[k]; ok {
			state = capUnlocked
			switch {
			case target != "" && k == target:
				state = capTarget
			case k == m.pressedKey():
				state = capPressed
			}
		}
		out = append(out, m.renderCap(k, state))
	}
	return out
}

func (m *Model) renderCap(k string, state capState) styledCap {
	label := catalog.KeyLabel(k)
	cacheKey := label + "|" + string(rune('0'+state))
	if s, ok := m.capCache.Get(cacheKey); ok {
		return styledCap{s: s, width: runewidth.StringWidth(label) + 2}
	}
	style := lockedCapStyle
	switch state {
	case capUnlocked:
		style = capStyle
	case capPressed:
		style = pressedCapStyle
	case capTarget:
		style = targetCapStyle
	}
	s := style.Render(label)
	m.capCache.Add(cacheKey, s)
	return styledCap{s: s, width: runewidth.StringWidth(label) + 2}
}

func renderCaps(caps []styledCap) string {
	parts := make([]string, 0, len(caps))
	for _, c := range caps {
		parts = append(parts, c.s)
	}
	return strings.Join(parts, " ")
}

// wrapCaps lays keycaps out in lines no wider than width, one space apart.
func wrapCaps(caps []styledCap, width int) string {
	if width <= 0 {
		return renderCaps(caps)
	}
	var out strings.Builder
	line := make([]styledCap, 0, len(caps))
	lineWidth := 0
	for _, c := range caps {
		gap := 0
		if len(line) > 0 {
			gap = 1
		}
		if lineWidth+gap+c.width > width && len(line) > 0 {
			out.WriteString(renderCaps(line))
			out.WriteRune('\n')
			line = line[:0]
			lineWidth = 0
			gap = 0
		}
		line = append(line, c)
		lineWidth += gap + c.width
	}
	out.WriteString(renderCaps(line))
	return out.String()
}
