// ABOUTME: Login method selection menu shown when the flow starts
// ABOUTME: Embeds a huh select over phone, email and username as a bubbletea model

package methodmenu

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/doklink/doklink-auth/internal/models"
	"github.com/doklink/doklink-auth/internal/tui/icons"
	"github.com/doklink/doklink-auth/internal/tui/styles"
)

// SelectedMsg is sent when a method is chosen
type SelectedMsg struct {
	Method models.Method
}

// CancelledMsg is sent when the user leaves the menu
type CancelledMsg struct{}

// Menu is the method selection model
type Menu struct {
	form     *huh.Form
	selected models.Method
}

// New creates a menu with initial preselected
func New(initial models.Method) *Menu {
	m := &Menu{selected: initial}
	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[models.Method]().
				Title("How would you like to sign in?").
				Description("Use ↑/↓ to select, Enter to confirm").
				Options(options()...).
				Value(&m.selected),
		),
	).WithTheme(styles.FormTheme()).WithShowHelp(false)
	return m
}

func options() []huh.Option[models.Method] {
	opts := make([]huh.Option[models.Method], 0, len(models.Methods))
	for _, method := range models.Methods {
		label := icons.ForMethod(method).String() + " " + method.Label()
		opts = append(opts, huh.NewOption(label, method))
	}
	return opts
}

// Init implements tea.Model
func (m *Menu) Init() tea.Cmd {
	return m.form.Init()
}

// Update implements tea.Model
func (m *Menu) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok && (key.String() == "esc" || key.String() == "q") {
		return m, func() tea.Msg { return CancelledMsg{} }
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateCompleted:
		method := m.selected
		return m, func() tea.Msg { return SelectedMsg{Method: method} }
	case huh.StateAborted:
		return m, func() tea.Msg { return CancelledMsg{} }
	}
	return m, cmd
}

// Selected returns the highlighted method
func (m *Menu) Selected() models.Method {
	return m.selected
}

// View implements tea.Model
func (m *Menu) View() string {
	return m.form.View()
}
