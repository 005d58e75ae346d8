// ABOUTME: Root bubbletea model for the sign-in TUI
// ABOUTME: Routes keyboard input to flow intents and runs requests and timers as commands

package tui

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/doklink/doklink-auth/internal/countdown"
	"github.com/doklink/doklink-auth/internal/flow"
	"github.com/doklink/doklink-auth/internal/models"
	"github.com/doklink/doklink-auth/internal/tui/channelpicker"
	"github.com/doklink/doklink-auth/internal/tui/methodmenu"
	"github.com/doklink/doklink-auth/internal/tui/otpinput"
	"github.com/doklink/doklink-auth/internal/tui/resetform"
	"github.com/doklink/doklink-auth/internal/tui/styles"
)

// Layout constants
const (
	minTerminalWidth = 80 // Minimum frame width
	inputWidth       = 40
)

// Options configures a sign-in session
type Options struct {
	// Method skips the method menu when set
	Method     *models.Method
	Identifier string
	// Prefill returns a remembered identifier for a method chosen from the menu
	Prefill func(models.Method) (string, bool)

	ResendSeconds    int
	CountdownSeconds int
}

// Result is how a sign-in session ended
type Result struct {
	Outcome flow.Outcome
	Method  models.Method
	// Identifier is the identifier the session authenticated with
	Identifier string
	Auth       *models.AuthResult
}

// resultMsg carries a finished request back to the event loop
type resultMsg struct {
	result flow.Result
}

// tickMsg is one countdown tick
type tickMsg struct {
	ticket countdown.Ticket
}

// tickQueue collects tickets scheduled during an Update so they can be
// returned as tea.Tick commands.
type tickQueue struct {
	pending []countdown.Ticket
}

func (q *tickQueue) Schedule(t countdown.Ticket) {
	q.pending = append(q.pending, t)
}

func (q *tickQueue) drain() []tea.Cmd {
	cmds := make([]tea.Cmd, 0, len(q.pending))
	for _, t := range q.pending {
		t := t
		cmds = append(cmds, tea.Tick(countdown.Interval, func(time.Time) tea.Msg {
			return tickMsg{ticket: t}
		}))
	}
	q.pending = q.pending[:0]
	return cmds
}

type focusField int

const (
	focusIdentifier focusField = iota
	focusPassword
)

// viewKey identifies which child models the current state needs
type viewKey struct {
	screen flow.Screen
	step   flow.ForgotStep
	mode   models.Mode
	sent   bool
}

// App is the root model for the TUI
type App struct {
	ctx   context.Context
	ctl   *flow.Controller
	ticks *tickQueue
	keys  keyMap
	opts  Options

	width  int
	height int

	identifier textinput.Model
	password   textinput.Model
	focus      focusField
	otp        *otpinput.Model
	spinner    spinner.Model
	spinning   bool

	// Timer lengths, for the countdown bars
	resendTotal    int
	countdownTotal int

	// Child models, rebuilt when the screen changes
	menu   *methodmenu.Menu
	picker *channelpicker.Picker
	reset  *resetform.Form

	current viewKey
	hasView bool
	// lastCode is the code shown at the previous sync
	lastCode string

	// Captured at verification because the flow clears its session on exit
	authMethod     models.Method
	authIdentifier string
	finalized      *Result
}

// New creates a new TUI application
func New(ctx context.Context, gw flow.Gateway, opts Options) *App {
	a := &App{
		ctx:            ctx,
		ticks:          &tickQueue{},
		keys:           defaultKeyMap(),
		opts:           opts,
		otp:            otpinput.New(),
		resendTotal:    flow.DefaultResendSeconds,
		countdownTotal: flow.DefaultCountdownSeconds,
	}

	flowOpts := []flow.Option{flow.WithScheduler(a.ticks)}
	if opts.ResendSeconds > 0 {
		a.resendTotal = opts.ResendSeconds
		flowOpts = append(flowOpts, flow.WithResendSeconds(opts.ResendSeconds))
	}
	if opts.CountdownSeconds > 0 {
		a.countdownTotal = opts.CountdownSeconds
		flowOpts = append(flowOpts, flow.WithCountdownSeconds(opts.CountdownSeconds))
	}
	a.ctl = flow.New(gw, flowOpts...)

	a.identifier = textinput.New()
	a.identifier.CharLimit = 254
	a.identifier.Width = inputWidth

	a.password = textinput.New()
	a.password.Placeholder = "Password"
	a.password.EchoMode = textinput.EchoPassword
	a.password.EchoCharacter = '•'
	a.password.CharLimit = 128
	a.password.Width = inputWidth

	a.spinner = spinner.New()
	a.spinner.Spinner = spinner.Dot
	a.spinner.Style = styles.KeyStyle

	if opts.Method != nil {
		a.ctl.SelectMethod(*opts.Method)
		a.ctl.SetIdentifier(opts.Identifier)
	}
	a.sync()
	return a
}

// Init implements tea.Model
func (a *App) Init() tea.Cmd {
	cmds := []tea.Cmd{textinput.Blink}
	if a.menu != nil {
		cmds = append(cmds, a.menu.Init())
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		cmds = append(cmds, a.forwardToForm(msg))

	case tea.KeyMsg:
		if key.Matches(msg, a.keys.Quit) {
			a.ctl.Close()
			break
		}
		cmds = append(cmds, a.handleKey(msg))

	case resultMsg:
		a.ctl.Resolve(msg.result)

	case tickMsg:
		a.ctl.Tick(msg.ticket)

	case spinner.TickMsg:
		if !a.ctl.Snapshot().Busy {
			a.spinning = false
			break
		}
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		cmds = append(cmds, cmd)

	case methodmenu.SelectedMsg:
		a.ctl.SelectMethod(msg.Method)
		if a.opts.Prefill != nil {
			if id, ok := a.opts.Prefill(msg.Method); ok {
				a.ctl.SetIdentifier(id)
			}
		}

	case methodmenu.CancelledMsg:
		a.ctl.Close()

	case channelpicker.ChosenMsg:
		if a.ctl.SelectChannel(msg.Channel) {
			cmds = append(cmds, a.run(a.ctl.SendViaChannel()))
		}

	case channelpicker.BackMsg:
		a.ctl.Back()

	case resetform.SubmittedMsg:
		cmds = append(cmds, a.run(a.ctl.ResetPassword(msg.Password, msg.Confirm)))

	case resetform.CancelledMsg:
		a.ctl.BackToLogin()

	default:
		// Cursor blinks and huh form internals
		var cmd tea.Cmd
		a.identifier, cmd = a.identifier.Update(msg)
		cmds = append(cmds, cmd)
		a.password, cmd = a.password.Update(msg)
		cmds = append(cmds, cmd)
		cmds = append(cmds, a.forwardToForm(msg))
	}

	return a, a.after(cmds...)
}

func (a *App) handleKey(msg tea.KeyMsg) tea.Cmd {
	snap := a.ctl.Snapshot()

	switch snap.Screen {
	case flow.ScreenMethodSelection:
		return a.forwardToForm(msg)

	case flow.ScreenUsernameOTPChoice, flow.ScreenForgotPasswordOTPChoice:
		if a.picker == nil {
			return nil
		}
		_, cmd := a.picker.Update(msg)
		return cmd

	case flow.ScreenLoginForm:
		return a.handleLoginKey(msg, snap)

	case flow.ScreenForgotPassword:
		return a.handleForgotKey(msg, snap)
	}
	return nil
}

func (a *App) handleLoginKey(msg tea.KeyMsg, snap flow.Snapshot) tea.Cmd {
	if snap.Verified {
		return nil
	}

	switch {
	case key.Matches(msg, a.keys.Back):
		a.ctl.Back()
		return nil
	case key.Matches(msg, a.keys.ToggleMode):
		a.ctl.ToggleMode()
		return nil
	case key.Matches(msg, a.keys.Forgot):
		a.ctl.ForgotPassword()
		return nil
	case key.Matches(msg, a.keys.Switch):
		a.ctl.TryAnotherWay()
		return nil
	case key.Matches(msg, a.keys.Resend):
		return a.run(a.ctl.Resend())
	case key.Matches(msg, a.keys.Submit):
		return a.run(a.ctl.Submit())
	case key.Matches(msg, a.keys.NextField):
		if snap.Mode == models.ModePassword {
			if a.focus == focusIdentifier {
				a.focus = focusPassword
			} else {
				a.focus = focusIdentifier
			}
		}
		return nil
	}

	if snap.OTPSent {
		a.otp.Update(msg, snap.OTPDigits, a.ctl)
		return nil
	}

	var cmd tea.Cmd
	if a.focus == focusPassword && snap.Mode == models.ModePassword {
		a.password, cmd = a.password.Update(msg)
		a.ctl.SetPassword(a.password.Value())
		return cmd
	}
	a.identifier, cmd = a.identifier.Update(msg)
	a.ctl.SetIdentifier(a.identifier.Value())
	return cmd
}

func (a *App) handleForgotKey(msg tea.KeyMsg, snap flow.Snapshot) tea.Cmd {
	if key.Matches(msg, a.keys.Back) {
		a.ctl.BackToLogin()
		return nil
	}

	switch snap.ForgotStep {
	case flow.StepSendOTP:
		if key.Matches(msg, a.keys.Submit) {
			return a.run(a.ctl.SubmitForgot())
		}
		var cmd tea.Cmd
		a.identifier, cmd = a.identifier.Update(msg)
		a.ctl.SetIdentifier(a.identifier.Value())
		return cmd

	case flow.StepVerifyOTP:
		switch {
		case key.Matches(msg, a.keys.Submit):
			return a.run(a.ctl.SubmitForgot())
		case key.Matches(msg, a.keys.Resend):
			return a.run(a.ctl.Resend())
		}
		a.otp.Update(msg, snap.ForgotOTPDigits, a.ctl)
		return nil

	case flow.StepResetPassword:
		return a.forwardToForm(msg)
	}
	return nil
}

// forwardToForm passes msg to whichever huh-backed child is active
func (a *App) forwardToForm(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch {
	case a.menu != nil:
		_, cmd = a.menu.Update(msg)
	case a.reset != nil:
		_, cmd = a.reset.Update(msg)
	}
	return cmd
}

// run executes p off the event loop and delivers its result as a resultMsg
func (a *App) run(p *flow.Pending) tea.Cmd {
	if p == nil {
		return nil
	}
	ctx := a.ctx
	return func() tea.Msg {
		return resultMsg{result: p.Run(ctx)}
	}
}

// after reconciles child models with the flow and collects follow-up commands
func (a *App) after(cmds ...tea.Cmd) tea.Cmd {
	if a.ctl.Done() {
		a.finalize()
		return tea.Quit
	}

	snap := a.ctl.Snapshot()
	if snap.Verified && a.authIdentifier == "" {
		a.authMethod = snap.Method
		a.authIdentifier = snap.Identifier
		if snap.OTPSent {
			a.authIdentifier = snap.SentTo
		}
	}

	cmds = append(cmds, a.sync())
	cmds = append(cmds, a.ticks.drain()...)
	if snap.Busy && !a.spinning {
		a.spinning = true
		cmds = append(cmds, a.spinner.Tick)
	}
	return tea.Batch(cmds...)
}

func (a *App) finalize() {
	if a.finalized != nil {
		return
	}
	res := &Result{Outcome: a.ctl.Outcome(), Auth: a.ctl.AuthResult()}
	if res.Outcome == flow.OutcomeAuthenticated {
		res.Method = a.authMethod
		res.Identifier = a.authIdentifier
	}
	a.finalized = res
}

// sync rebuilds child models when the screen changes and mirrors flow state
// into the text inputs.
func (a *App) sync() tea.Cmd {
	snap := a.ctl.Snapshot()

	var cmd tea.Cmd
	k := viewKey{screen: snap.Screen, step: snap.ForgotStep, mode: snap.Mode, sent: snap.OTPSent}
	if !a.hasView || k != a.current {
		cmd = a.enter(k, snap)
		a.current = k
		a.hasView = true
	}

	// The flow clears the code after a rejected or re-sent code; start over at the first cell
	code := strings.Join(snap.LiveDigits(), "")
	if code == "" && a.lastCode != "" {
		a.otp.Reset()
	}
	a.lastCode = code

	if a.identifier.Value() != snap.Identifier {
		a.identifier.SetValue(snap.Identifier)
	}
	if !snap.PasswordEntered && a.password.Value() != "" {
		a.password.SetValue("")
	}
	a.identifier.Placeholder = placeholderFor(snap.Method)

	if a.picker != nil {
		msg := ""
		if snap.Status != nil {
			msg = snap.Status.Message
		}
		a.picker.SetError(msg)
	}

	if snap.Screen == flow.ScreenForgotPassword && snap.ForgotStep == flow.StepResetPassword &&
		a.reset != nil && a.reset.Submitted() && !snap.Busy {
		a.reset = resetform.New()
		cmd = tea.Batch(cmd, a.reset.Init())
	}

	if a.focus == focusPassword && snap.Mode == models.ModePassword {
		a.identifier.Blur()
		a.password.Focus()
	} else {
		a.password.Blur()
		a.identifier.Focus()
	}
	return cmd
}

func (a *App) enter(k viewKey, snap flow.Snapshot) tea.Cmd {
	a.menu = nil
	a.picker = nil
	a.reset = nil
	a.otp.Reset()
	a.focus = focusIdentifier
	if snap.Identifier != "" && snap.Mode == models.ModePassword && k.screen == flow.ScreenLoginForm {
		a.focus = focusPassword
	}

	switch k.screen {
	case flow.ScreenMethodSelection:
		a.menu = methodmenu.New(snap.Method)
		return a.menu.Init()
	case flow.ScreenUsernameOTPChoice:
		a.picker = channelpicker.New("Send your sign-in code via", snap.DeliveryOptions)
	case flow.ScreenForgotPasswordOTPChoice:
		a.picker = channelpicker.New("Send your reset code via", snap.DeliveryOptions)
	case flow.ScreenForgotPassword:
		if k.step == flow.StepResetPassword {
			a.reset = resetform.New()
			return a.reset.Init()
		}
	}
	return nil
}

// Result returns how the session ended, or nil while it is running
func (a *App) Result() *Result {
	return a.finalized
}

func placeholderFor(m models.Method) string {
	switch m {
	case models.MethodEmail:
		return "name@example.com"
	case models.MethodUsername:
		return "username"
	default:
		return "10-digit mobile number"
	}
}

// Run starts the TUI and blocks until the flow ends
func Run(ctx context.Context, gw flow.Gateway, opts Options) (*Result, error) {
	app := New(ctx, gw, opts)

	p := tea.NewProgram(
		app,
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	)
	model, err := p.Run()
	if err != nil {
		return nil, err
	}

	final := model.(*App)
	if final.finalized == nil {
		final.ctl.Close()
		final.finalize()
	}
	return final.finalized, nil
}
