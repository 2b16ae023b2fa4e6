package approval

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the prompt's shortcuts
type KeyMap struct {
	Approve key.Binding
	Reject  key.Binding
	Quit    key.Binding
}

// DefaultKeyMap returns the default key bindings
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Approve: key.NewBinding(
			key.WithKeys("y", "enter"),
			key.WithHelp("y/enter", "sign"),
		),
		Reject: key.NewBinding(
			key.WithKeys("n", "esc"),
			key.WithHelp("n/esc", "reject"),
		),
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c", "q"),
			key.WithHelp("q/ctrl+c", "close"),
		),
	}
}

// ShortHelp returns bindings shown in the footer
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Approve, k.Reject, k.Quit}
}
