package ui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines all keyboard shortcuts
type KeyMap struct {
	Up        key.Binding
	Down      key.Binding
	Left      key.Binding
	Right     key.Binding
	DragUp    key.Binding
	DragDown  key.Binding
	DragLeft  key.Binding
	DragRight key.Binding
	ZoomIn    key.Binding
	ZoomOut   key.Binding
	Next      key.Binding
	Prev      key.Binding
	Enter     key.Binding
	Back      key.Binding
	Relax     key.Binding
	Reset     key.Binding
	Help      key.Binding
	Quit      key.Binding
}

// ShortHelp implements help.KeyMap
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.ZoomIn, k.Next, k.Enter, k.DragRight, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Left, k.Right},
		{k.DragUp, k.DragDown, k.DragLeft, k.DragRight},
		{k.ZoomIn, k.ZoomOut, k.Reset, k.Relax},
		{k.Next, k.Prev, k.Enter, k.Back},
		{k.Help, k.Quit},
	}
}

var DefaultKeyMap = KeyMap{
	Up: key.NewBinding(
		key.WithKeys("up", "k"),
		key.WithHelp("↑/k", "pan up"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "j"),
		key.WithHelp("↓/j", "pan down"),
	),
	Left: key.NewBinding(
		key.WithKeys("left", "h"),
		key.WithHelp("←/h", "pan left"),
	),
	Right: key.NewBinding(
		key.WithKeys("right", "l"),
		key.WithHelp("→/l", "pan right"),
	),
	DragUp: key.NewBinding(
		key.WithKeys("shift+up", "K"),
		key.WithHelp("⇧↑", "move topic up"),
	),
	DragDown: key.NewBinding(
		key.WithKeys("shift+down", "J"),
		key.WithHelp("⇧↓", "move topic down"),
	),
	DragLeft: key.NewBinding(
		key.WithKeys("shift+left", "H"),
		key.WithHelp("⇧←", "move topic left"),
	),
	DragRight: key.NewBinding(
		key.WithKeys("shift+right", "L"),
		key.WithHelp("⇧→", "move topic"),
	),
	ZoomIn: key.NewBinding(
		key.WithKeys("+", "="),
		key.WithHelp("+/-", "zoom"),
	),
	ZoomOut: key.NewBinding(
		key.WithKeys("-", "_"),
		key.WithHelp("-", "zoom out"),
	),
	Next: key.NewBinding(
		key.WithKeys("tab"),
		key.WithHelp("tab", "next topic"),
	),
	Prev: key.NewBinding(
		key.WithKeys("shift+tab"),
		key.WithHelp("⇧tab", "previous topic"),
	),
	Enter: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "open / drop"),
	),
	Back: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "close / cancel move"),
	),
	Relax: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "relax overlaps"),
	),
	Reset: key.NewBinding(
		key.WithKeys("0"),
		key.WithHelp("0", "reset view"),
	),
	Help: key.NewBinding(
		key.WithKeys("?"),
		key.WithHelp("?", "help"),
	),
	Quit: key.NewBinding(
		key.WithKeys("ctrl+c", "q"),
		key.WithHelp("q", "quit"),
	),
}
