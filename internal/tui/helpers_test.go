// ABOUTME: Test helpers for the TUI: an in-memory gateway and a command pump
// ABOUTME: The pump runs commands and feeds their messages back, dropping timers

package tui

import (
	"context"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/doklink/doklink-auth/internal/client"
	"github.com/doklink/doklink-auth/internal/models"
)

type stubGateway struct {
	options []models.DeliveryOption
	sent    []client.OTPRequest

	// Errors returned by successive verify calls before they start succeeding
	verifyErrs       []error
	forgotVerifyErrs []error
	verified         []string
}

func nextErr(errs *[]error) error {
	if len(*errs) == 0 {
		return nil
	}
	err := (*errs)[0]
	*errs = (*errs)[1:]
	return err
}

func (g *stubGateway) Login(ctx context.Context, req client.LoginRequest) (*models.AuthResult, error) {
	return &models.AuthResult{AccessToken: "pw-token", UserID: "u-1"}, nil
}

func (g *stubGateway) SendOTP(ctx context.Context, req client.OTPRequest) error {
	g.sent = append(g.sent, req)
	return nil
}

func (g *stubGateway) VerifyOTP(ctx context.Context, req client.VerifyRequest) (*models.AuthResult, error) {
	g.verified = append(g.verified, req.Code)
	if err := nextErr(&g.verifyErrs); err != nil {
		return nil, err
	}
	return &models.AuthResult{AccessToken: "otp-token", UserID: "u-1"}, nil
}

func (g *stubGateway) SendForgotPasswordOTP(ctx context.Context, req client.OTPRequest) error {
	return nil
}

func (g *stubGateway) VerifyForgotPasswordOTP(ctx context.Context, req client.VerifyRequest) (string, error) {
	g.verified = append(g.verified, req.Code)
	if err := nextErr(&g.forgotVerifyErrs); err != nil {
		return "", err
	}
	return "reset-token", nil
}

func (g *stubGateway) ConfirmPasswordReset(ctx context.Context, req client.ResetRequest) error {
	return nil
}

func (g *stubGateway) GetUsernameOTPOptions(ctx context.Context, username string) ([]models.DeliveryOption, error) {
	return g.options, nil
}

// cmdTimeout bounds how long a command may block before it is treated as a timer
const cmdTimeout = 20 * time.Millisecond

// pump executes cmd and feeds the resulting messages back into the app until
// nothing but timers remain.
func pump(t *testing.T, a *App, cmd tea.Cmd) {
	t.Helper()
	queue := []tea.Cmd{cmd}
	for rounds := 0; len(queue) > 0 && rounds < 200; rounds++ {
		next := queue[0]
		queue = queue[1:]
		if next == nil {
			continue
		}

		msg, ok := runCmd(next)
		if !ok {
			continue
		}
		switch msg := msg.(type) {
		case tea.BatchMsg:
			queue = append(queue, msg...)
		case tea.QuitMsg:
		default:
			_, follow := a.Update(msg)
			queue = append(queue, follow)
		}
	}
}

func runCmd(cmd tea.Cmd) (tea.Msg, bool) {
	done := make(chan tea.Msg, 1)
	go func() { done <- cmd() }()
	select {
	case msg := <-done:
		return msg, true
	case <-time.After(cmdTimeout):
		return nil, false
	}
}

func press(t *testing.T, a *App, msg tea.KeyMsg) {
	t.Helper()
	_, cmd := a.Update(msg)
	pump(t, a, cmd)
}

func typeText(t *testing.T, a *App, s string) {
	t.Helper()
	for _, r := range s {
		press(t, a, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
}

func methodPtr(m models.Method) *models.Method {
	return &m
}
