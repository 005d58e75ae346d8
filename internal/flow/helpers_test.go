// ABOUTME: Test doubles for the flow controller: a scripted gateway and a manual scheduler
// ABOUTME: Helpers run pending requests synchronously and drain countdowns

package flow

import (
	"context"
	"testing"

	"github.com/doklink/doklink-auth/internal/client"
	"github.com/doklink/doklink-auth/internal/countdown"
	"github.com/doklink/doklink-auth/internal/models"
)

type fakeGateway struct {
	calls map[string]int

	loginErr        error
	sendErr         error
	verifyErr       error
	forgotSendErr   error
	forgotVerifyErr error
	resetErr        error
	optionsErr      error

	options    []models.DeliveryOption
	resetToken string

	lastOTP    client.OTPRequest
	lastVerify client.VerifyRequest
	lastReset  client.ResetRequest
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		calls: make(map[string]int),
		options: []models.DeliveryOption{
			{Channel: models.ChannelEmail, Label: "Email", Destination: "j***@example.com"},
			{Channel: models.ChannelSMS, Label: "SMS", Destination: "******3210"},
		},
		resetToken: "reset-123",
	}
}

func (g *fakeGateway) total() int {
	n := 0
	for _, v := range g.calls {
		n += v
	}
	return n
}

func (g *fakeGateway) Login(ctx context.Context, req client.LoginRequest) (*models.AuthResult, error) {
	g.calls["login"]++
	if g.loginErr != nil {
		return nil, g.loginErr
	}
	return &models.AuthResult{AccessToken: "pw-token", UserID: "u-1"}, nil
}

func (g *fakeGateway) SendOTP(ctx context.Context, req client.OTPRequest) error {
	g.calls["send"]++
	g.lastOTP = req
	return g.sendErr
}

func (g *fakeGateway) VerifyOTP(ctx context.Context, req client.VerifyRequest) (*models.AuthResult, error) {
	g.calls["verify"]++
	g.lastVerify = req
	if g.verifyErr != nil {
		return nil, g.verifyErr
	}
	return &models.AuthResult{AccessToken: "otp-token", UserID: "u-1"}, nil
}

func (g *fakeGateway) SendForgotPasswordOTP(ctx context.Context, req client.OTPRequest) error {
	g.calls["forgot_send"]++
	g.lastOTP = req
	return g.forgotSendErr
}

func (g *fakeGateway) VerifyForgotPasswordOTP(ctx context.Context, req client.VerifyRequest) (string, error) {
	g.calls["forgot_verify"]++
	g.lastVerify = req
	if g.forgotVerifyErr != nil {
		return "", g.forgotVerifyErr
	}
	return g.resetToken, nil
}

func (g *fakeGateway) ConfirmPasswordReset(ctx context.Context, req client.ResetRequest) error {
	g.calls["reset"]++
	g.lastReset = req
	return g.resetErr
}

func (g *fakeGateway) GetUsernameOTPOptions(ctx context.Context, username string) ([]models.DeliveryOption, error) {
	g.calls["options"]++
	if g.optionsErr != nil {
		return nil, g.optionsErr
	}
	return g.options, nil
}

// manualScheduler records tickets so tests decide when time passes
type manualScheduler struct {
	tickets []countdown.Ticket
}

func (s *manualScheduler) Schedule(t countdown.Ticket) {
	s.tickets = append(s.tickets, t)
}

// advance delivers every ticket scheduled so far, and those they schedule, up to n ticks
func (s *manualScheduler) advance(c *Controller, n int) {
	for i := 0; i < n && len(s.tickets) > 0; i++ {
		t := s.tickets[0]
		s.tickets = s.tickets[1:]
		c.Tick(t)
	}
}

func newTestController(gw Gateway) (*Controller, *manualScheduler) {
	sched := &manualScheduler{}
	c := New(gw, WithScheduler(sched), WithResendSeconds(3), WithCountdownSeconds(2))
	return c, sched
}

// resolve runs p synchronously and applies its result
func resolve(t *testing.T, c *Controller, p *Pending) bool {
	t.Helper()
	if p == nil {
		t.Fatal("expected a pending request, got nil")
	}
	return c.Resolve(p.Run(context.Background()))
}

func enterDigits(t *testing.T, c *Controller, code string) {
	t.Helper()
	if !c.EnterCode(code) {
		t.Fatalf("EnterCode(%q) rejected", code)
	}
}
