package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Press    key.Binding
	Buy      key.Binding
	Speed    key.Binding
	Reaction key.Binding
	Start    key.Binding
	Decline  key.Binding
	Help     key.Binding
	Quit     key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		Press: key.NewBinding(
			key.WithKeys(" ", "w", "a", "s", "d"),
			key.WithHelp("space/wasd", "press"),
		),
		Buy: key.NewBinding(
			key.WithKeys("1", "2", "3", "4", "5", "6", "7", "8", "9"),
			key.WithHelp("1-7", "buy upgrade"),
		),
		Speed: key.NewBinding(
			key.WithKeys("f1"),
			key.WithHelp("f1", "speed challenge"),
		),
		Reaction: key.NewBinding(
			key.WithKeys("f2"),
			key.WithHelp("f2", "reaction test"),
		),
		Start: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "start challenge"),
		),
		Decline: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "skip challenge"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "more keys"),
		),
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("ctrl+c", "save and quit"),
		),
	}
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Press, k.Buy, k.Speed, k.Reaction, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Press, k.Buy},
		{k.Speed, k.Reaction, k.Start, k.Decline},
		{k.Help, k.Quit},
	}
}
