// ABOUTME: Rendering for the sign-in screens and the surrounding frame
// ABOUTME: Every view is derived from a flow snapshot

package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/doklink/doklink-auth/internal/flow"
	"github.com/doklink/doklink-auth/internal/models"
	"github.com/doklink/doklink-auth/internal/tui/icons"
	"github.com/doklink/doklink-auth/internal/tui/styles"
	"github.com/doklink/doklink-auth/internal/tui/widgets"
	"github.com/doklink/doklink-auth/internal/validation"
)

// View implements tea.Model
func (a *App) View() string {
	snap := a.ctl.Snapshot()

	var content string
	switch snap.Screen {
	case flow.ScreenLoginForm:
		content = a.viewLogin(snap)
	case flow.ScreenForgotPassword:
		content = a.viewForgot(snap)
	case flow.ScreenUsernameOTPChoice, flow.ScreenForgotPasswordOTPChoice:
		content = a.viewChoice(snap)
	default:
		content = a.viewMenu()
	}

	return a.wrapWithFrame(snap, styles.ActivePanel.Render(content))
}

func (a *App) viewMenu() string {
	if a.menu != nil {
		return a.menu.View()
	}
	return ""
}

func (a *App) viewLogin(snap flow.Snapshot) string {
	var b strings.Builder

	title := icons.ForMethod(snap.Method).String() + " Sign in with " + strings.ToLower(snap.Method.Label())
	b.WriteString(styles.Title.Render(title))
	b.WriteString("\n")

	if snap.Verified {
		b.WriteString(styles.StatusOK.Render(icons.CheckOK.String() + " " + snap.Notice))
		b.WriteString("\n")
		b.WriteString(widgets.CountdownBar(snap.Countdown, a.countdownTotal, widgets.DefaultCountdownBarConfig()))
		return b.String()
	}

	if snap.Mode == models.ModeOTP && snap.OTPSent {
		b.WriteString(styles.Subtitle.Render("Enter the code sent to " + snap.SentTo))
		b.WriteString("\n")
		b.WriteString(a.otp.View(snap.OTPDigits, true, snap.FieldStatus(validation.FieldOTP) != nil))
		b.WriteString("\n")
		b.WriteString(a.resendLine(snap.ShowResendButton, snap.ResendTimer))
	} else {
		b.WriteString(a.field(snap.Method.Label(), a.identifier.View(), snap.FieldStatus(validation.FieldIdentifier)))
		if snap.Mode == models.ModePassword {
			b.WriteString(a.field("Password", a.password.View(), snap.FieldStatus(validation.FieldPassword)))
		} else {
			b.WriteString(styles.Help.Render("We'll send you a one-time code"))
		}
	}

	b.WriteString(a.statusView(snap))
	return b.String()
}

func (a *App) viewForgot(snap flow.Snapshot) string {
	var b strings.Builder

	b.WriteString(styles.Title.Render(icons.Key.String() + " Reset your password"))
	b.WriteString("\n")

	switch snap.ForgotStep {
	case flow.StepSendOTP:
		b.WriteString(styles.Subtitle.Render("We'll send a verification code to your " + strings.ToLower(snap.Method.Label())))
		b.WriteString("\n")
		b.WriteString(a.field(snap.Method.Label(), a.identifier.View(), snap.FieldStatus(validation.FieldIdentifier)))
	case flow.StepVerifyOTP:
		b.WriteString(styles.Subtitle.Render("Enter the code sent to " + snap.ForgotSentTo))
		b.WriteString("\n")
		b.WriteString(a.otp.View(snap.ForgotOTPDigits, true, snap.FieldStatus(validation.FieldOTP) != nil))
		b.WriteString("\n")
		b.WriteString(a.resendLine(snap.ForgotShowResendButton, snap.ForgotResendTimer))
	case flow.StepResetPassword:
		if a.reset != nil {
			b.WriteString(a.reset.View())
		}
	}

	b.WriteString(a.statusView(snap))
	return b.String()
}

func (a *App) viewChoice(snap flow.Snapshot) string {
	var b strings.Builder
	if a.picker != nil {
		b.WriteString(a.picker.View())
	}
	if snap.Busy {
		b.WriteString("\n" + a.spinner.View() + " Sending code...")
	}
	return b.String()
}

// field renders a labelled input with its error underneath
func (a *App) field(label, input string, st *flow.Status) string {
	var b strings.Builder
	b.WriteString(styles.ValueStyle.Render(label))
	b.WriteString("\n")
	b.WriteString(input)
	b.WriteString("\n")
	if st != nil {
		b.WriteString(styles.FieldError.Render(st.Message))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	return b.String()
}

// statusView renders the busy spinner, screen-level failure or notice
func (a *App) statusView(snap flow.Snapshot) string {
	switch {
	case snap.Busy:
		return "\n" + a.spinner.View() + " Please wait..."
	case snap.Status != nil && snap.Status.Field == "":
		return "\n" + styles.StatusCritical.Render(icons.Critical.String()+" "+snap.Status.Message)
	case snap.Status != nil && snap.Status.Field == validation.FieldConfirmPassword:
		return "\n" + styles.FieldError.Render(snap.Status.Message)
	case snap.Status != nil && snap.Status.Field == validation.FieldPassword && snap.Screen == flow.ScreenForgotPassword:
		return "\n" + styles.FieldError.Render(snap.Status.Message)
	case snap.Notice != "":
		return "\n" + styles.StatusOK.Render(icons.Info.String()+" "+snap.Notice)
	}
	return ""
}

func (a *App) resendLine(show bool, remaining int) string {
	if show {
		return styles.KeyStyle.Render("^R") + " " + styles.Help.UnsetMarginTop().Render("Resend code")
	}
	bar := widgets.CountdownBar(remaining, a.resendTotal, widgets.DefaultCountdownBarConfig())
	return bar + " " + styles.Help.UnsetMarginTop().Render(fmt.Sprintf("%s Resend code in %ds", icons.Timer.String(), remaining))
}

// frameWidth guards against zero/small width before WindowSizeMsg is received
func (a *App) frameWidth() int {
	width := a.width - 1
	if width < minTerminalWidth {
		width = minTerminalWidth
	}
	return width
}

// renderHeader creates the header bar with app branding and context
func (a *App) renderHeader(snap flow.Snapshot) string {
	width := a.frameWidth()

	borderStyle := lipgloss.NewStyle().Foreground(styles.Muted)
	titleStyle := lipgloss.NewStyle().Foreground(styles.Primary).Bold(true)
	contextStyle := lipgloss.NewStyle().Foreground(styles.Secondary)

	leftText := fmt.Sprintf(" %s %s ", icons.App.String(), titleStyle.Render("DokLink"))

	rightText := ""
	if snap.Screen != flow.ScreenMethodSelection {
		rightText = " " + contextStyle.Render(snap.Method.Label()+" · "+snap.Mode.String()) + " "
	}

	leftWidth := lipgloss.Width(leftText)
	rightWidth := lipgloss.Width(rightText)
	fillWidth := width - 4 - leftWidth - rightWidth // -4 for ╭─ and ─╮
	if fillWidth < 0 {
		fillWidth = 0
	}

	header := "╭─" + leftText + strings.Repeat("─", fillWidth) + rightText + "─╮"
	return borderStyle.Render(header)
}

// renderFooter creates the footer with keyboard shortcuts
func (a *App) renderFooter(snap flow.Snapshot) string {
	width := a.frameWidth()

	borderStyle := lipgloss.NewStyle().Foreground(styles.Muted)
	keyStyle := lipgloss.NewStyle().Foreground(styles.Primary)
	labelStyle := lipgloss.NewStyle().Foreground(styles.Muted)

	shortcuts := a.shortcuts(snap)

	var styled []string
	for _, s := range shortcuts {
		parts := strings.SplitN(s, " ", 2)
		if len(parts) == 2 {
			styled = append(styled, keyStyle.Render(parts[0])+" "+labelStyle.Render(parts[1]))
		} else {
			styled = append(styled, s)
		}
	}

	leftText := " " + strings.Join(styled, "  ") + " "
	leftPlainText := " " + strings.Join(shortcuts, "  ") + " "

	fillWidth := width - 4 - lipgloss.Width(leftPlainText) // -4 for ╰─ and ─╯
	if fillWidth < 0 {
		fillWidth = 0
	}

	footer := "╰─" + leftText + strings.Repeat("─", fillWidth) + "─╯"
	return borderStyle.Render(footer)
}

func (a *App) shortcuts(snap flow.Snapshot) []string {
	k := a.keys
	switch snap.Screen {
	case flow.ScreenMethodSelection:
		return []string{"↑↓ Navigate", "Enter Select", shortcut(k.Back)}
	case flow.ScreenUsernameOTPChoice, flow.ScreenForgotPasswordOTPChoice:
		return []string{"↑↓ Navigate", "Enter Send", shortcut(k.Back)}
	case flow.ScreenForgotPassword:
		if snap.ForgotStep == flow.StepVerifyOTP && snap.ForgotShowResendButton {
			return []string{shortcut(k.Submit), shortcut(k.Resend), shortcut(k.Back)}
		}
		return []string{shortcut(k.Submit), shortcut(k.Back)}
	}

	if snap.Verified {
		return []string{shortcut(k.Quit)}
	}
	out := []string{shortcut(k.Submit)}
	if snap.Mode == models.ModePassword {
		out = append(out, shortcut(k.NextField), shortcut(k.Forgot))
	}
	if snap.ShowResendButton {
		out = append(out, shortcut(k.Resend))
	}
	return append(out, shortcut(k.ToggleMode), shortcut(k.Switch))
}

// wrapWithFrame wraps content with header and footer
func (a *App) wrapWithFrame(snap flow.Snapshot, content string) string {
	var sb strings.Builder

	sb.WriteString(a.renderHeader(snap))
	sb.WriteString("\n")
	sb.WriteString(content)
	sb.WriteString("\n")
	sb.WriteString(a.renderFooter(snap))

	return sb.String()
}
