package ui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines keyboard shortcuts for the trade screen
type KeyMap struct {
	Quit       key.Binding
	ToggleSide key.Binding
	Refresh    key.Binding
	Wallet     key.Binding
	Submit     key.Binding
	Cancel     key.Binding
}

// DefaultKeyMap returns the default key bindings
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q/ctrl+c", "quit"),
		),
		ToggleSide: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "buy/sell"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r", "f5"),
			key.WithHelp("r/F5", "refresh"),
		),
		Wallet: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "connect wallet"),
		),
		Submit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "place order"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "cancel order"),
		),
	}
}

// ShortHelp implements help.KeyMap
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.ToggleSide, k.Submit, k.Cancel, k.Wallet, k.Refresh, k.Quit}
}

// FullHelp implements help.KeyMap
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.ToggleSide, k.Submit, k.Cancel},
		{k.Wallet, k.Refresh, k.Quit},
	}
}
