// ABOUTME: Delivery channel picker for username OTP requests
// ABOUTME: Cursor list over the channels available for the account

package channelpicker

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/doklink/doklink-auth/internal/models"
	"github.com/doklink/doklink-auth/internal/tui/icons"
	"github.com/doklink/doklink-auth/internal/tui/styles"
)

// ChosenMsg is sent when a channel is confirmed
type ChosenMsg struct {
	Channel models.Channel
}

// BackMsg is sent when the user leaves the picker
type BackMsg struct{}

// Picker is the channel selection component
type Picker struct {
	title   string
	options []models.DeliveryOption
	cursor  int
	err     string
}

// New creates a picker over options
func New(title string, options []models.DeliveryOption) *Picker {
	return &Picker{title: title, options: options}
}

// Init implements tea.Model
func (p *Picker) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model
func (p *Picker) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return p, nil
	}

	switch key.String() {
	case "up", "k":
		if p.cursor > 0 {
			p.cursor--
		}
	case "down", "j":
		if p.cursor < len(p.options)-1 {
			p.cursor++
		}
	case "enter":
		if len(p.options) == 0 {
			return p, nil
		}
		ch := p.options[p.cursor].Channel
		return p, func() tea.Msg { return ChosenMsg{Channel: ch} }
	case "esc", "b":
		return p, func() tea.Msg { return BackMsg{} }
	}
	return p, nil
}

// Highlighted returns the channel under the cursor
func (p *Picker) Highlighted() (models.Channel, bool) {
	if p.cursor >= len(p.options) {
		return models.ChannelNone, false
	}
	return p.options[p.cursor].Channel, true
}

// SetError sets a message shown under the list
func (p *Picker) SetError(msg string) {
	p.err = msg
}

// View implements tea.Model
func (p *Picker) View() string {
	var b strings.Builder

	b.WriteString(styles.Title.Render(p.title))
	b.WriteString("\n")

	for i, opt := range p.options {
		cursor := "  "
		style := styles.Normal
		if i == p.cursor {
			cursor = "> "
			style = styles.Selected
		}
		label := opt.Label
		if label == "" {
			label = opt.Channel.Label()
		}
		line := icons.ForChannel(opt.Channel).String() + " " + label
		if opt.Destination != "" {
			line += "  " + opt.Destination
		}
		b.WriteString(cursor + style.Render(line) + "\n")
	}

	if p.err != "" {
		b.WriteString("\n")
		b.WriteString(styles.FieldError.Render(p.err))
	}

	return b.String()
}
