// ABOUTME: Six-cell OTP entry widget with cursor movement and paste support
// ABOUTME: Edits are applied through a DigitSetter so the flow enforces digit rules

package otpinput

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/doklink/doklink-auth/internal/models"
	"github.com/doklink/doklink-auth/internal/tui/styles"
)

// DigitSetter accepts edits to the live OTP
type DigitSetter interface {
	SetDigit(i int, v string) bool
	EnterCode(code string) bool
}

// Model tracks the focused cell
type Model struct {
	cursor int
}

// New creates a widget focused on the first cell
func New() *Model {
	return &Model{}
}

// Reset moves focus back to the first cell
func (m *Model) Reset() {
	m.cursor = 0
}

// Cursor returns the focused cell index
func (m *Model) Cursor() int {
	return m.cursor
}

// Update applies key to s and reports whether it was consumed. digits is
// the current code as shown.
func (m *Model) Update(key tea.KeyMsg, digits []string, s DigitSetter) bool {
	if key.Paste || (key.Type == tea.KeyRunes && len(key.Runes) > 1) {
		code := strings.TrimSpace(string(key.Runes))
		if s.EnterCode(code) {
			m.cursor = min(len(code), models.OTPLength-1)
		}
		return true
	}

	switch key.Type {
	case tea.KeyLeft:
		if m.cursor > 0 {
			m.cursor--
		}
		return true
	case tea.KeyRight:
		if m.cursor < models.OTPLength-1 {
			m.cursor++
		}
		return true
	case tea.KeyBackspace:
		if m.cursor < len(digits) && digits[m.cursor] != "" {
			s.SetDigit(m.cursor, "")
			return true
		}
		if m.cursor > 0 {
			m.cursor--
			s.SetDigit(m.cursor, "")
		}
		return true
	case tea.KeyDelete:
		s.SetDigit(m.cursor, "")
		return true
	case tea.KeyRunes:
		if s.SetDigit(m.cursor, string(key.Runes)) && m.cursor < models.OTPLength-1 {
			m.cursor++
		}
		return true
	}
	return false
}

// View renders digits as cells, highlighting the cursor when focused
func (m *Model) View(digits []string, focused, invalid bool) string {
	cells := make([]string, 0, len(digits))
	for i, d := range digits {
		style := styles.OTPCell
		switch {
		case invalid:
			style = styles.OTPCellError
		case focused && i == m.cursor:
			style = styles.OTPCellActive
		}
		if d == "" {
			d = " "
		}
		cells = append(cells, style.Render(d))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cells...)
}
