// ABOUTME: Icon system with Nerd Font detection and Unicode fallback
// ABOUTME: Provides consistent iconography across different terminal capabilities

package icons

import (
	"os"
	"strings"
	"sync"

	"github.com/doklink/doklink-auth/internal/models"
)

var (
	useNerdFonts     bool
	nerdFontDetected sync.Once
)

// detectNerdFonts checks if Nerd Fonts should be used
func detectNerdFonts() bool {
	// Explicit override via environment variable
	if env := os.Getenv("DOKLINK_NERD_FONTS"); env != "" {
		return env == "1" || strings.ToLower(env) == "true"
	}

	term := os.Getenv("TERM")
	termProgram := os.Getenv("TERM_PROGRAM")

	// iTerm2, Alacritty, WezTerm, Kitty typically have Nerd Fonts
	nerdFontTerminals := []string{
		"iTerm.app",
		"alacritty",
		"WezTerm",
		"kitty",
		"ghostty",
	}

	for _, t := range nerdFontTerminals {
		if strings.Contains(termProgram, t) || strings.Contains(term, strings.ToLower(t)) {
			return true
		}
	}

	if os.Getenv("NERD_FONTS") == "1" {
		return true
	}

	return false
}

// HasNerdFonts returns true if Nerd Fonts are available
func HasNerdFonts() bool {
	nerdFontDetected.Do(func() {
		useNerdFonts = detectNerdFonts()
	})
	return useNerdFonts
}

// Icon represents an icon with Nerd Font and Unicode fallback variants
type Icon struct {
	NerdFont string
	Fallback string
}

// String returns the appropriate icon based on font availability
func (i Icon) String() string {
	if HasNerdFonts() {
		return i.NerdFont
	}
	return i.Fallback
}

// Icon definitions - Nerd Font codepoints with Unicode fallbacks
var (
	// Identifier types
	Phone = Icon{"󰏲", "☏"} // nf-md-phone
	Email = Icon{"󰇮", "✉"} // nf-md-email
	User  = Icon{"󰀄", "◉"} // nf-md-account

	// Delivery channels
	SMS = Icon{"󰍡", "✆"} // nf-md-message_text

	// Status indicators
	CheckOK  = Icon{"", "✓"} // nf-oct-check_circle
	Warning  = Icon{"", "⚠"} // nf-oct-alert
	Critical = Icon{"", "✗"} // nf-oct-x_circle
	Info     = Icon{"", "ℹ"} // nf-oct-info

	// Actions
	Send  = Icon{"󰒊", "➤"} // nf-md-send
	Timer = Icon{"󱎫", "◷"} // nf-md-timer_outline
	Back  = Icon{"󰁍", "←"} // nf-md-arrow_left
	Quit  = Icon{"󰗼", "×"} // nf-md-exit_to_app

	// Application
	App  = Icon{"󰌾", "◈"} // nf-md-lock
	Key  = Icon{"󰌆", "⚿"} // nf-md-key
	Lock = Icon{"󰍁", "▣"} // nf-md-lock_outline
)

// ForMethod returns the icon for an identifier type
func ForMethod(m models.Method) Icon {
	switch m {
	case models.MethodEmail:
		return Email
	case models.MethodUsername:
		return User
	default:
		return Phone
	}
}

// ForChannel returns the icon for a delivery channel
func ForChannel(c models.Channel) Icon {
	if c == models.ChannelSMS {
		return SMS
	}
	return Email
}
