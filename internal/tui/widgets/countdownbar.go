// ABOUTME: Countdown bar for resend and continue timers
// ABOUTME: Drains from full to empty as the remaining seconds reach zero

package widgets

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// CountdownBarConfig holds configuration for the countdown bar
type CountdownBarConfig struct {
	Width       int
	FilledColor lipgloss.Color
	EmptyColor  lipgloss.Color
}

// DefaultCountdownBarConfig returns sensible defaults
func DefaultCountdownBarConfig() CountdownBarConfig {
	return CountdownBarConfig{
		Width:       10,
		FilledColor: lipgloss.Color("#3B82F6"), // Blue
		EmptyColor:  lipgloss.Color("#374151"), // Dark gray
	}
}

// Filled returns how many of width cells represent remaining out of total
func Filled(remaining, total, width int) int {
	if total <= 0 || remaining <= 0 || width <= 0 {
		return 0
	}
	if remaining >= total {
		return width
	}
	// Round up so the bar only empties on the final second
	return (remaining*width + total - 1) / total
}

// CountdownBar renders remaining out of total as a compact bar
func CountdownBar(remaining, total int, config CountdownBarConfig) string {
	if config.Width <= 0 {
		config.Width = 10
	}

	filled := Filled(remaining, total, config.Width)
	empty := config.Width - filled

	return lipgloss.NewStyle().Foreground(config.FilledColor).Render(strings.Repeat("▓", filled)) +
		lipgloss.NewStyle().Foreground(config.EmptyColor).Render(strings.Repeat("░", empty))
}
