// ABOUTME: Login form intents covering password login, OTP send, resend and verification
// ABOUTME: Username OTP logins route through channel selection before the code is sent

package flow

import (
	"context"
	"fmt"
	"strings"

	"github.com/doklink/doklink-auth/internal/autherr"
	"github.com/doklink/doklink-auth/internal/client"
	"github.com/doklink/doklink-auth/internal/models"
	"github.com/doklink/doklink-auth/internal/validation"
)

// SendOTP requests a login code for the entered identifier. For usernames it
// first fetches the delivery channels. Returns nil when nothing was issued.
func (c *Controller) SendOTP() *Pending {
	if c.Done() || c.s.verified || c.s.screen != ScreenLoginForm || c.s.mode != models.ModeOTP || c.s.otpSent {
		return nil
	}
	if err := validation.Identifier(c.s.identifier, c.s.method); err != nil {
		c.fail(err)
		return nil
	}
	identifier := c.s.identifier
	method := c.s.method

	if method == models.MethodUsername {
		neg := c.negotiator
		return c.issue(OpLoginOptions, func(ctx context.Context) Result {
			opts, err := neg.Options(ctx, identifier)
			return Result{Err: err, identifier: identifier, options: opts}
		})
	}
	return c.sendLoginOTP(identifier, method, models.ChannelNone)
}

// SendViaChannel sends the code over the selected channel from a channel choice screen
func (c *Controller) SendViaChannel() *Pending {
	if c.Done() || !c.onChoiceScreen() {
		return nil
	}
	if c.s.selectedChannel == models.ChannelNone {
		c.fail(autherr.Field(autherr.Required, validation.FieldChannel, "Choose where to send the code"))
		return nil
	}
	identifier := c.s.identifier
	if c.s.screen == ScreenUsernameOTPChoice {
		return c.sendLoginOTP(identifier, c.s.method, c.s.selectedChannel)
	}
	return c.sendForgotOTP(identifier, c.s.method, c.s.selectedChannel)
}

// Resend requests a fresh code once the resend countdown has run out
func (c *Controller) Resend() *Pending {
	if c.Done() || c.s.verified {
		return nil
	}
	switch {
	case c.s.screen == ScreenLoginForm && c.s.otpSent && c.loginResend.Expired():
		return c.sendLoginOTP(c.s.sentTo, c.s.method, c.s.sentChannel)
	case c.s.screen == ScreenForgotPassword && c.s.forgotStep == StepVerifyOTP && c.forgotResend.Expired():
		return c.sendForgotOTP(c.s.forgotTo, c.s.method, c.s.forgotChan)
	}
	return nil
}

// Submit performs the primary action of the current screen
func (c *Controller) Submit() *Pending {
	if c.Done() || c.s.verified {
		return nil
	}
	switch c.s.screen {
	case ScreenLoginForm:
		if c.s.mode == models.ModePassword {
			return c.passwordLogin()
		}
		if !c.s.otpSent {
			return c.SendOTP()
		}
		return c.verifyLoginOTP()
	case ScreenUsernameOTPChoice, ScreenForgotPasswordOTPChoice:
		return c.SendViaChannel()
	case ScreenForgotPassword:
		return c.SubmitForgot()
	}
	return nil
}

func (c *Controller) passwordLogin() *Pending {
	if err := validation.Identifier(c.s.identifier, c.s.method); err != nil {
		c.fail(err)
		return nil
	}
	if err := validation.Password(c.s.password); err != nil {
		c.fail(err)
		return nil
	}
	req := client.LoginRequest{
		Identifier: c.s.identifier,
		Method:     c.s.method,
		Mode:       models.ModePassword,
		Credential: c.s.password,
	}
	gw := c.gw
	return c.issue(OpLogin, func(ctx context.Context) Result {
		auth, err := gw.Login(ctx, req)
		return Result{Err: err, auth: auth}
	})
}

func (c *Controller) verifyLoginOTP() *Pending {
	digits := c.s.otpDigits[:]
	if !validation.SkipIdentifier(c.s.method, c.s.mode, digits) {
		if err := validation.Identifier(c.s.sentTo, c.s.method); err != nil {
			c.fail(err)
			return nil
		}
	}
	code := strings.Join(digits, "")
	if err := validation.OTP(code); err != nil {
		c.fail(err)
		return nil
	}
	req := client.VerifyRequest{Identifier: c.s.sentTo, Method: c.s.method, Code: code}
	gw := c.gw
	return c.issue(OpVerifyOTP, func(ctx context.Context) Result {
		auth, err := gw.VerifyOTP(ctx, req)
		return Result{Err: err, auth: auth}
	})
}

func (c *Controller) sendLoginOTP(identifier string, method models.Method, ch models.Channel) *Pending {
	req := client.OTPRequest{Identifier: identifier, Method: method, Channel: ch}
	gw := c.gw
	return c.issue(OpSendOTP, func(ctx context.Context) Result {
		err := gw.SendOTP(ctx, req)
		return Result{Err: err, identifier: identifier, channel: ch}
	})
}

func (c *Controller) resolveLoginOptions(r Result) {
	if r.Err != nil {
		c.fail(r.Err)
		return
	}
	c.s.options = r.options
	c.s.selectedChannel = models.ChannelNone
	c.goTo(ScreenUsernameOTPChoice)
}

func (c *Controller) resolveSendOTP(r Result) {
	if r.Err != nil {
		c.fail(r.Err)
		return
	}
	if c.s.screen == ScreenUsernameOTPChoice {
		c.s.mode = models.ModeOTP
		c.goTo(ScreenLoginForm)
	}
	c.s.otpSent = true
	c.s.sentTo = r.identifier
	c.s.sentChannel = r.channel
	c.s.otpDigits = [models.OTPLength]string{}
	c.s.notice = sentNotice(r.identifier, r.channel, c.s.options)
	c.schedule(c.loginResend.Start())
}

func (c *Controller) resolveLogin(r Result) {
	if r.Err == nil {
		c.verified(r.auth)
		return
	}
	c.fail(r.Err)
	switch autherr.KindOf(r.Err) {
	case autherr.OtpExpired:
		c.resetLoginOTP()
	case autherr.OtpIncorrect:
		c.s.otpDigits = [models.OTPLength]string{}
	case autherr.InvalidCredentials:
		c.s.password = ""
	}
}

func (c *Controller) verified(auth *models.AuthResult) {
	c.s.verified = true
	c.s.auth = auth
	c.loginResend.Cancel()
	c.bump()
	c.clearStatus()
	c.s.notice = verifiedNotice(c.countdownSeconds)
	c.log.Info("Login verified", "method", c.s.method.String(), "mode", c.s.mode.String())
	t := c.success.Start()
	if !c.success.Running() {
		c.exit(OutcomeAuthenticated)
		return
	}
	c.schedule(t)
}

// resetLoginOTP returns the login form to the otp-not-sent state
func (c *Controller) resetLoginOTP() {
	c.s.otpSent = false
	c.s.sentTo = ""
	c.s.sentChannel = models.ChannelNone
	c.s.otpDigits = [models.OTPLength]string{}
	c.loginResend.Cancel()
}

func verifiedNotice(seconds int) string {
	return fmt.Sprintf("Verified! Continuing in %ds", seconds)
}

func sentNotice(identifier string, ch models.Channel, options []models.DeliveryOption) string {
	for _, opt := range options {
		if opt.Channel == ch && opt.Destination != "" {
			return "Code sent to " + opt.Destination
		}
	}
	if ch != models.ChannelNone {
		return "Code sent by " + ch.Label()
	}
	return "Code sent to " + identifier
}
