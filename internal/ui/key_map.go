package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the [key.Binding] mapping for the TUI.
type keyMap struct {
	up        key.Binding
	down      key.Binding
	next      key.Binding
	enter     key.Binding
	play      key.Binding
	alternate key.Binding
	reset     key.Binding
	share     key.Binding
	open      key.Binding
	service   key.Binding
	back      key.Binding
	help      key.Binding
	quit      key.Binding
	interrupt key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		up:        key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		down:      key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		next:      key.NewBinding(key.WithKeys("tab", "shift+tab"), key.WithHelp("tab", "switch artist")),
		enter:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "select")),
		play:      key.NewBinding(key.WithKeys(" ", "p"), key.WithHelp("space", "play/pause")),
		alternate: key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "another route")),
		reset:     key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "start over")),
		share:     key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "copy")),
		open:      key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "musicbrainz")),
		service:   key.NewBinding(key.WithKeys("1", "2", "3", "4"), key.WithHelp("1-4", "open link")),
		back:      key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		help:      key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "more")),
		quit:      key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		interrupt: key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.play, k.alternate, k.help, k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.up, k.down, k.play},
		{k.alternate, k.reset, k.share},
		{k.open, k.service, k.back},
		{k.help, k.quit},
	}
}

func (k keyMap) formHelp() []key.Binding {
	return []key.Binding{k.next, k.enter, k.interrupt}
}
