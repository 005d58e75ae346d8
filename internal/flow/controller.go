// ABOUTME: Authentication screen-flow controller driving login, OTP and password reset
// ABOUTME: All state changes happen on the caller's goroutine; network work is deferred via Pending

package flow

import (
	"context"
	"errors"
	"log/slog"

	"github.com/doklink/doklink-auth/internal/autherr"
	"github.com/doklink/doklink-auth/internal/client"
	"github.com/doklink/doklink-auth/internal/countdown"
	"github.com/doklink/doklink-auth/internal/delivery"
	"github.com/doklink/doklink-auth/internal/models"
	"github.com/doklink/doklink-auth/internal/validation"
)

// Default timer lengths in seconds
const (
	DefaultResendSeconds    = 30
	DefaultCountdownSeconds = 5
)

// Countdown names, also used as ticket names
const (
	TimerLoginResend  = "login-resend"
	TimerForgotResend = "forgot-resend"
	TimerSuccess      = "success"
)

// Gateway is the backend the flow talks to. *client.Client implements it.
type Gateway interface {
	Login(ctx context.Context, req client.LoginRequest) (*models.AuthResult, error)
	SendOTP(ctx context.Context, req client.OTPRequest) error
	VerifyOTP(ctx context.Context, req client.VerifyRequest) (*models.AuthResult, error)
	SendForgotPasswordOTP(ctx context.Context, req client.OTPRequest) error
	VerifyForgotPasswordOTP(ctx context.Context, req client.VerifyRequest) (string, error)
	ConfirmPasswordReset(ctx context.Context, req client.ResetRequest) error
	GetUsernameOTPOptions(ctx context.Context, username string) ([]models.DeliveryOption, error)
}

// Scheduler arranges for Controller.Tick to be called with t one interval from now
type Scheduler interface {
	Schedule(t countdown.Ticket)
}

// SchedulerFunc adapts a function to Scheduler
type SchedulerFunc func(t countdown.Ticket)

// Schedule calls f(t)
func (f SchedulerFunc) Schedule(t countdown.Ticket) {
	f(t)
}

// Option configures a Controller
type Option func(*Controller)

// WithScheduler sets the tick scheduler. Without one, ticks must be driven by the caller.
func WithScheduler(s Scheduler) Option {
	return func(c *Controller) { c.scheduler = s }
}

// WithResendSeconds sets how long the resend action stays hidden after a send
func WithResendSeconds(n int) Option {
	return func(c *Controller) { c.resendSeconds = n }
}

// WithCountdownSeconds sets the post-verification countdown length
func WithCountdownSeconds(n int) Option {
	return func(c *Controller) { c.countdownSeconds = n }
}

// WithLogger sets the logger
func WithLogger(l *slog.Logger) Option {
	return func(c *Controller) { c.log = l }
}

// WithNegotiator shares a delivery negotiator instead of creating one from the gateway
func WithNegotiator(n *delivery.Negotiator) Option {
	return func(c *Controller) { c.negotiator = n }
}

type session struct {
	screen     Screen
	method     models.Method
	mode       models.Mode
	forgotStep ForgotStep

	identifier string
	password   string

	otpDigits    [models.OTPLength]string
	otpSent      bool
	sentTo       string
	sentChannel  models.Channel
	forgotDigits [models.OTPLength]string
	forgotSent   bool
	forgotTo     string
	forgotChan   models.Channel

	options         []models.DeliveryOption
	selectedChannel models.Channel

	resetToken string
	verified   bool
	auth       *models.AuthResult

	status *Status
	notice string
}

// Controller owns one authentication session. It is not safe for concurrent
// use; only Pending.Run may execute on other goroutines.
type Controller struct {
	gw         Gateway
	negotiator *delivery.Negotiator
	scheduler  Scheduler
	log        *slog.Logger

	resendSeconds    int
	countdownSeconds int

	loginResend  *countdown.Countdown
	forgotResend *countdown.Countdown
	success      *countdown.Countdown

	s        session
	epoch    uint64
	inflight map[Op]bool

	outcome Outcome
	result  *models.AuthResult
}

// New creates a Controller on the method selection screen
func New(gw Gateway, opts ...Option) *Controller {
	c := &Controller{
		gw:               gw,
		resendSeconds:    DefaultResendSeconds,
		countdownSeconds: DefaultCountdownSeconds,
		inflight:         make(map[Op]bool),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.log == nil {
		c.log = slog.Default()
	}
	if c.negotiator == nil {
		c.negotiator = delivery.NewNegotiator(gw)
	}
	c.loginResend = countdown.New(TimerLoginResend, c.resendSeconds)
	c.forgotResend = countdown.New(TimerForgotResend, c.resendSeconds)
	c.success = countdown.New(TimerSuccess, c.countdownSeconds)
	c.s = session{screen: ScreenMethodSelection}
	return c
}

// Snapshot returns a copy of the current session state
func (c *Controller) Snapshot() Snapshot {
	snap := Snapshot{
		Screen:          c.s.screen,
		Method:          c.s.method,
		Mode:            c.s.mode,
		ForgotStep:      c.s.forgotStep,
		Identifier:      c.s.identifier,
		PasswordEntered: c.s.password != "",
		SentTo:          c.s.sentTo,
		ForgotSentTo:    c.s.forgotTo,
		OTPDigits:       append([]string(nil), c.s.otpDigits[:]...),
		ForgotOTPDigits: append([]string(nil), c.s.forgotDigits[:]...),
		OTPSent:         c.s.otpSent,
		ForgotOTPSent:   c.s.forgotSent,

		ResendTimer:            c.loginResend.Remaining(),
		ShowResendButton:       c.s.otpSent && c.loginResend.Expired(),
		ForgotResendTimer:      c.forgotResend.Remaining(),
		ForgotShowResendButton: c.s.forgotSent && c.forgotResend.Expired(),

		SelectedChannel: c.s.selectedChannel,
		Verified:        c.s.verified,
		Countdown:       c.success.Remaining(),
		ResetPending:    c.s.resetToken != "",
		Notice:          c.s.notice,
		Busy:            len(c.inflight) > 0,
		Outcome:         c.outcome,
	}
	if c.s.options != nil {
		snap.DeliveryOptions = append([]models.DeliveryOption(nil), c.s.options...)
	}
	if c.s.status != nil {
		st := *c.s.status
		snap.Status = &st
	}
	return snap
}

// InFlight reports whether op has been issued and not yet resolved
func (c *Controller) InFlight(op Op) bool {
	return c.inflight[op]
}

// Outcome returns how the flow ended, or OutcomeNone while it is running
func (c *Controller) Outcome() Outcome {
	return c.outcome
}

// AuthResult returns the session established by a successful login
func (c *Controller) AuthResult() *models.AuthResult {
	return c.result
}

// Done reports whether the flow has exited
func (c *Controller) Done() bool {
	return c.outcome != OutcomeNone
}

// SelectMethod picks the login identifier type and opens the login form
func (c *Controller) SelectMethod(m models.Method) {
	if c.Done() || c.s.screen != ScreenMethodSelection {
		return
	}
	c.s.method = m
	c.s.mode = models.ModePassword
	c.goTo(ScreenLoginForm)
}

// SetIdentifier updates the identifier field. A changed value discards the
// cached delivery options and any response issued for the old value.
func (c *Controller) SetIdentifier(v string) {
	if c.Done() || c.s.verified || !c.identifierEditable() || v == c.s.identifier {
		return
	}
	c.s.identifier = v
	c.negotiator.Invalidate()
	c.s.options = nil
	c.s.selectedChannel = models.ChannelNone
	c.clearStatus()
	c.bump()
}

// SetPassword updates the password field
func (c *Controller) SetPassword(v string) {
	if c.Done() || c.s.verified || c.s.screen != ScreenLoginForm || c.s.mode != models.ModePassword {
		return
	}
	c.s.password = v
	c.clearStatus()
}

// ToggleMode switches the login form between password and OTP entry.
// Leaving OTP mode discards any sent code.
func (c *Controller) ToggleMode() {
	if c.Done() || c.s.verified || c.s.screen != ScreenLoginForm {
		return
	}
	if c.s.mode == models.ModePassword {
		c.s.mode = models.ModeOTP
		c.s.password = ""
	} else {
		c.s.mode = models.ModePassword
		c.resetLoginOTP()
	}
	c.s.notice = ""
	c.bump()
	c.clearStatus()
}

// SetDigit sets one position of the live OTP. v must be empty or one digit.
func (c *Controller) SetDigit(i int, v string) bool {
	digits := c.liveDigits()
	if digits == nil || i < 0 || i >= models.OTPLength {
		return false
	}
	if v != "" && !validation.IsDigit(v) {
		return false
	}
	digits[i] = v
	c.clearStatus()
	return true
}

// EnterCode fills the live OTP from a pasted code. Codes with non-digits or
// more than six characters are rejected without changing anything.
func (c *Controller) EnterCode(code string) bool {
	digits := c.liveDigits()
	if digits == nil || len(code) > models.OTPLength {
		return false
	}
	for i := 0; i < len(code); i++ {
		if !validation.IsDigit(code[i : i+1]) {
			return false
		}
	}
	for i := range digits {
		digits[i] = ""
		if i < len(code) {
			digits[i] = code[i : i+1]
		}
	}
	c.clearStatus()
	return true
}

// SelectChannel picks a delivery channel on a channel choice screen
func (c *Controller) SelectChannel(ch models.Channel) bool {
	if c.Done() || !c.onChoiceScreen() {
		return false
	}
	if !delivery.Contains(c.s.options, ch) {
		c.log.Warn("Channel not offered for account", "channel", string(ch))
		return false
	}
	c.s.selectedChannel = ch
	c.clearStatus()
	return true
}

// TryAnotherWay abandons the login form and returns to method selection
func (c *Controller) TryAnotherWay() {
	if c.Done() || c.s.verified {
		return
	}
	switch c.s.screen {
	case ScreenLoginForm, ScreenUsernameOTPChoice:
	default:
		return
	}
	c.resetLoginOTP()
	c.s.method = models.MethodPhone
	c.s.mode = models.ModePassword
	c.s.identifier = ""
	c.s.password = ""
	c.s.options = nil
	c.s.selectedChannel = models.ChannelNone
	c.negotiator.Invalidate()
	c.goTo(ScreenMethodSelection)
}

// Back steps out of the current screen the way the escape key does
func (c *Controller) Back() {
	if c.Done() || c.s.verified {
		return
	}
	switch c.s.screen {
	case ScreenUsernameOTPChoice:
		c.s.selectedChannel = models.ChannelNone
		c.goTo(ScreenLoginForm)
	case ScreenForgotPasswordOTPChoice:
		c.s.selectedChannel = models.ChannelNone
		c.s.forgotStep = StepSendOTP
		c.goTo(ScreenForgotPassword)
	case ScreenForgotPassword:
		c.BackToLogin()
	case ScreenLoginForm:
		c.TryAnotherWay()
	case ScreenMethodSelection:
		c.Close()
	}
}

// Close dismisses the flow without authenticating
func (c *Controller) Close() {
	if c.Done() {
		return
	}
	c.exit(OutcomeCancelled)
}

// Tick advances the countdown named by t. Stale tickets are ignored.
func (c *Controller) Tick(t countdown.Ticket) bool {
	if c.Done() {
		return false
	}
	var cd *countdown.Countdown
	switch t.Name {
	case TimerLoginResend:
		cd = c.loginResend
	case TimerForgotResend:
		cd = c.forgotResend
	case TimerSuccess:
		cd = c.success
	default:
		return false
	}
	remaining, done, ok := cd.Tick(t)
	if !ok {
		return false
	}
	if !done {
		c.schedule(cd.Next())
		if cd == c.success {
			c.s.notice = verifiedNotice(remaining)
		}
		return true
	}
	if cd == c.success {
		c.exit(OutcomeAuthenticated)
	}
	return true
}

// Resolve applies a finished request. It returns false when the result is
// stale because the flow moved on after the request was issued.
func (c *Controller) Resolve(r Result) bool {
	if c.Done() || r.epoch != c.epoch || !c.inflight[r.Op] {
		c.log.Debug("Discarding stale response", "op", r.Op.String())
		return false
	}
	delete(c.inflight, r.Op)

	if r.Err != nil {
		c.log.Debug("Request failed", "op", r.Op.String(), "kind", autherr.KindOf(r.Err).String())
	}

	switch r.Op {
	case OpLogin, OpVerifyOTP:
		c.resolveLogin(r)
	case OpLoginOptions:
		c.resolveLoginOptions(r)
	case OpSendOTP:
		c.resolveSendOTP(r)
	case OpForgotOptions:
		c.resolveForgotOptions(r)
	case OpForgotSendOTP:
		c.resolveForgotSendOTP(r)
	case OpForgotVerifyOTP:
		c.resolveForgotVerify(r)
	case OpResetPassword:
		c.resolveReset(r)
	}
	return true
}

// issue registers op as in flight and captures the current epoch
func (c *Controller) issue(op Op, run func(ctx context.Context) Result) *Pending {
	if c.inflight[op] {
		c.log.Debug("Request already in flight", "op", op.String())
		return nil
	}
	c.inflight[op] = true
	c.clearStatus()
	return &Pending{Op: op, epoch: c.epoch, run: run}
}

// goTo moves to screen and invalidates outstanding responses
func (c *Controller) goTo(screen Screen) {
	from := c.s.screen
	c.s.screen = screen
	c.s.notice = ""
	c.clearStatus()
	c.bump()
	c.log.Debug("Flow transition", "from", from.String(), "to", screen.String(), "step", c.s.forgotStep.String())
}

func (c *Controller) bump() {
	c.epoch++
	if len(c.inflight) > 0 {
		c.inflight = make(map[Op]bool)
	}
}

func (c *Controller) exit(outcome Outcome) {
	c.outcome = outcome
	if outcome == OutcomeAuthenticated {
		c.result = c.s.auth
	}
	c.loginResend.Cancel()
	c.forgotResend.Cancel()
	c.success.Cancel()
	c.negotiator.Invalidate()
	c.s = session{screen: ScreenMethodSelection}
	c.bump()
	c.log.Info("Authentication flow finished", "outcome", outcome.String())
}

func (c *Controller) schedule(t countdown.Ticket) {
	if c.scheduler != nil {
		c.scheduler.Schedule(t)
	}
}

func (c *Controller) fail(err error) {
	var e *autherr.Error
	if errors.As(err, &e) {
		c.s.status = &Status{Kind: e.Kind, Field: e.Field, Message: e.Message}
		return
	}
	c.s.status = &Status{Kind: autherr.ServerError, Message: autherr.Message(err)}
}

func (c *Controller) clearStatus() {
	c.s.status = nil
}

func (c *Controller) identifierEditable() bool {
	switch c.s.screen {
	case ScreenLoginForm:
		return !c.s.otpSent
	case ScreenForgotPassword:
		return c.s.forgotStep == StepSendOTP
	}
	return false
}

func (c *Controller) onChoiceScreen() bool {
	return c.s.screen == ScreenUsernameOTPChoice || c.s.screen == ScreenForgotPasswordOTPChoice
}

// liveDigits returns the one digit array that accepts input right now
func (c *Controller) liveDigits() []string {
	if c.Done() || c.s.verified {
		return nil
	}
	switch {
	case c.s.screen == ScreenLoginForm && c.s.mode == models.ModeOTP && c.s.otpSent:
		return c.s.otpDigits[:]
	case c.s.screen == ScreenForgotPassword && c.s.forgotStep == StepVerifyOTP:
		return c.s.forgotDigits[:]
	}
	return nil
}
