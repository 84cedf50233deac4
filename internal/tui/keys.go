package tui

import "github.com/charmbracelet/bubbles/key"

type KeyMap struct {
	Quit key.Binding
	Back key.Binding

	// Navigation
	Timers   key.Binding
	Counters key.Binding
	Settings key.Binding

	// Actions
	Select   key.Binding
	Toggle   key.Binding
	StartAll key.Binding
	StopAll  key.Binding
	Reset    key.Binding
	ResetAll key.Binding
	Label    key.Binding

	// Movement
	Up    key.Binding
	Down  key.Binding
	Left  key.Binding
	Right key.Binding
}

var DefaultKeyMap = KeyMap{
	Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	Back:     key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
	Timers:   key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "timers")),
	Counters: key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "counters")),
	Settings: key.NewBinding(key.WithKeys(","), key.WithHelp(",", "settings")),
	Select:   key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "set time")),
	Toggle:   key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "start/stop")),
	StartAll: key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "start all")),
	StopAll:  key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "stop all")),
	Reset:    key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reset")),
	ResetAll: key.NewBinding(key.WithKeys("R"), key.WithHelp("R", "reset all")),
	Label:    key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit label")),
	Up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
	Down:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
	Left:     key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "left")),
	Right:    key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "right")),
}
