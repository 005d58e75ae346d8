// ABOUTME: Key bindings for the sign-in screens
// ABOUTME: Uses bubbles key bindings so help text stays next to the keys

package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Submit     key.Binding
	NextField  key.Binding
	ToggleMode key.Binding
	Forgot     key.Binding
	Resend     key.Binding
	Switch     key.Binding
	Back       key.Binding
	Quit       key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Submit:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("Enter", "Submit")),
		NextField:  key.NewBinding(key.WithKeys("tab", "shift+tab"), key.WithHelp("Tab", "Field")),
		ToggleMode: key.NewBinding(key.WithKeys("ctrl+o"), key.WithHelp("^O", "Mode")),
		Forgot:     key.NewBinding(key.WithKeys("ctrl+f"), key.WithHelp("^F", "Forgot")),
		Resend:     key.NewBinding(key.WithKeys("ctrl+r"), key.WithHelp("^R", "Resend")),
		Switch:     key.NewBinding(key.WithKeys("ctrl+t"), key.WithHelp("^T", "Other method")),
		Back:       key.NewBinding(key.WithKeys("esc"), key.WithHelp("Esc", "Back")),
		Quit:       key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("^C", "Quit")),
	}
}

// shortcut renders a binding as "key label" for the footer
func shortcut(b key.Binding) string {
	h := b.Help()
	return h.Key + " " + h.Desc
}
