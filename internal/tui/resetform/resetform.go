// ABOUTME: New password form shown after a reset code is verified
// ABOUTME: Embeds a huh form with two masked inputs as a bubbletea model

package resetform

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/doklink/doklink-auth/internal/tui/styles"
	"github.com/doklink/doklink-auth/internal/validation"
)

// SubmittedMsg carries the entered passwords
type SubmittedMsg struct {
	Password string
	Confirm  string
}

// CancelledMsg is sent when the user leaves the form
type CancelledMsg struct{}

// Form collects a new password and its confirmation
type Form struct {
	form     *huh.Form
	password string
	confirm  string
	done     bool
}

// New creates an empty form
func New() *Form {
	f := &Form{}
	f.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("New password").
				Description("At least 8 characters with upper and lower case, a digit and a symbol").
				EchoMode(huh.EchoModePassword).
				Value(&f.password),
			huh.NewInput().
				Title("Confirm password").
				EchoMode(huh.EchoModePassword).
				Value(&f.confirm),
		).Title("Choose a new password"),
	).WithTheme(styles.FormTheme()).WithShowHelp(false)
	return f
}

// Init implements tea.Model
func (f *Form) Init() tea.Cmd {
	return f.form.Init()
}

// Update implements tea.Model
func (f *Form) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok && key.String() == "esc" {
		return f, func() tea.Msg { return CancelledMsg{} }
	}
	if f.done {
		return f, nil
	}

	form, cmd := f.form.Update(msg)
	if hf, ok := form.(*huh.Form); ok {
		f.form = hf
	}

	switch f.form.State {
	case huh.StateCompleted:
		f.done = true
		out := SubmittedMsg{Password: f.password, Confirm: f.confirm}
		return f, func() tea.Msg { return out }
	case huh.StateAborted:
		return f, func() tea.Msg { return CancelledMsg{} }
	}
	return f, cmd
}

// Submitted reports whether the form has already produced a SubmittedMsg
func (f *Form) Submitted() bool {
	return f.done
}

// FieldFor reports which input a validation field name refers to
func FieldFor(field string) string {
	if field == validation.FieldConfirmPassword {
		return "Confirm password"
	}
	return "New password"
}

// View implements tea.Model
func (f *Form) View() string {
	return f.form.View()
}
