package tui

import (
	"github.com/charmbracelet/bubbles/key"
)

// KeyMap holds the chat screen bindings.
type KeyMap struct {
	Send       key.Binding
	Newline    key.Binding
	Undo       key.Binding
	Blur       key.Binding
	Focus      key.Binding
	ScrollUp   key.Binding
	ScrollDown key.Binding
	Quit       key.Binding
}

// DefaultKeyMap returns the default bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Send: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "send"),
		),
		Newline: key.NewBinding(
			key.WithKeys("ctrl+j"),
			key.WithHelp("ctrl+j", "newline"),
		),
		Undo: key.NewBinding(
			key.WithKeys("ctrl+z"),
			key.WithHelp("ctrl+z", "undo send"),
		),
		Blur: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "browse"),
		),
		Focus: key.NewBinding(
			key.WithKeys("tab", "i"),
			key.WithHelp("tab", "compose"),
		),
		ScrollUp: key.NewBinding(
			key.WithKeys("up", "k", "pgup"),
			key.WithHelp("↑/k", "scroll up"),
		),
		ScrollDown: key.NewBinding(
			key.WithKeys("down", "j", "pgdown"),
			key.WithHelp("↓/j", "scroll down"),
		),
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("ctrl+c", "quit"),
		),
	}
}

// composing returns the keymap with browse-only bindings disabled, so their
// keys reach the editor.
func (k KeyMap) composing() KeyMap {
	k.Focus.SetEnabled(false)
	k.ScrollUp.SetEnabled(false)
	k.ScrollDown.SetEnabled(false)
	return k
}

// browsing returns the keymap with editor bindings disabled.
func (k KeyMap) browsing() KeyMap {
	k.Send.SetEnabled(false)
	k.Newline.SetEnabled(false)
	k.Blur.SetEnabled(false)
	return k
}

// ShortHelp implements help.KeyMap.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Send, k.Newline, k.Undo, k.Blur, k.Focus, k.ScrollUp, k.ScrollDown, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Send, k.Newline, k.Undo},
		{k.Blur, k.Focus, k.ScrollUp, k.ScrollDown},
		{k.Quit},
	}
}
