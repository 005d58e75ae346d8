// ABOUTME: Forgot-password sub-flow from OTP request through verification to password reset
// ABOUTME: The reset token is held only between a verified code and the reset request

package flow

import (
	"context"
	"strings"

	"github.com/doklink/doklink-auth/internal/autherr"
	"github.com/doklink/doklink-auth/internal/client"
	"github.com/doklink/doklink-auth/internal/models"
	"github.com/doklink/doklink-auth/internal/validation"
)

const passwordUpdatedNotice = "Password updated. Sign in with your new password."

// ForgotPassword opens the forgot-password screen. The entered identifier carries over.
func (c *Controller) ForgotPassword() {
	if c.Done() || c.s.verified || c.s.screen != ScreenLoginForm {
		return
	}
	c.resetLoginOTP()
	c.s.password = ""
	c.resetForgot()
	c.s.notice = ""
	c.goTo(ScreenForgotPassword)
}

// BackToLogin leaves the forgot-password flow for the password login form
func (c *Controller) BackToLogin() {
	if c.Done() {
		return
	}
	switch c.s.screen {
	case ScreenForgotPassword, ScreenForgotPasswordOTPChoice:
	default:
		return
	}
	c.resetForgot()
	c.s.mode = models.ModePassword
	c.s.selectedChannel = models.ChannelNone
	c.s.notice = ""
	c.goTo(ScreenLoginForm)
}

// SubmitForgot performs the action of the current forgot-password step
func (c *Controller) SubmitForgot() *Pending {
	if c.Done() || c.s.screen != ScreenForgotPassword {
		return nil
	}
	switch c.s.forgotStep {
	case StepSendOTP:
		if err := validation.Identifier(c.s.identifier, c.s.method); err != nil {
			c.fail(err)
			return nil
		}
		identifier := c.s.identifier
		if c.s.method == models.MethodUsername {
			neg := c.negotiator
			return c.issue(OpForgotOptions, func(ctx context.Context) Result {
				opts, err := neg.Options(ctx, identifier)
				return Result{Err: err, identifier: identifier, options: opts}
			})
		}
		return c.sendForgotOTP(identifier, c.s.method, models.ChannelNone)
	case StepVerifyOTP:
		code := strings.Join(c.s.forgotDigits[:], "")
		if err := validation.OTP(code); err != nil {
			c.fail(err)
			return nil
		}
		req := client.VerifyRequest{Identifier: c.s.forgotTo, Method: c.s.method, Code: code}
		gw := c.gw
		return c.issue(OpForgotVerifyOTP, func(ctx context.Context) Result {
			token, err := gw.VerifyForgotPasswordOTP(ctx, req)
			return Result{Err: err, resetToken: token}
		})
	}
	return nil
}

// ResetPassword sets a new password using the token from a verified code
func (c *Controller) ResetPassword(password, confirm string) *Pending {
	if c.Done() || c.s.screen != ScreenForgotPassword || c.s.forgotStep != StepResetPassword {
		return nil
	}
	if c.s.resetToken == "" {
		c.fail(autherr.New(autherr.TokenExpired, "Your reset session expired. Request a new code."))
		return nil
	}
	if err := validation.NewPassword(password, confirm); err != nil {
		c.fail(err)
		return nil
	}
	req := client.ResetRequest{ResetToken: c.s.resetToken, NewPassword: password, ConfirmPassword: confirm}
	gw := c.gw
	return c.issue(OpResetPassword, func(ctx context.Context) Result {
		return Result{Err: gw.ConfirmPasswordReset(ctx, req)}
	})
}

func (c *Controller) sendForgotOTP(identifier string, method models.Method, ch models.Channel) *Pending {
	req := client.OTPRequest{Identifier: identifier, Method: method, Channel: ch}
	gw := c.gw
	return c.issue(OpForgotSendOTP, func(ctx context.Context) Result {
		err := gw.SendForgotPasswordOTP(ctx, req)
		return Result{Err: err, identifier: identifier, channel: ch}
	})
}

func (c *Controller) resolveForgotOptions(r Result) {
	if r.Err != nil {
		c.fail(r.Err)
		return
	}
	c.s.options = r.options
	c.s.selectedChannel = models.ChannelNone
	c.goTo(ScreenForgotPasswordOTPChoice)
}

func (c *Controller) resolveForgotSendOTP(r Result) {
	if r.Err != nil {
		c.fail(r.Err)
		return
	}
	c.s.forgotSent = true
	c.s.forgotTo = r.identifier
	c.s.forgotChan = r.channel
	c.s.forgotDigits = [models.OTPLength]string{}
	if c.s.screen != ScreenForgotPassword || c.s.forgotStep != StepVerifyOTP {
		c.s.forgotStep = StepVerifyOTP
		c.goTo(ScreenForgotPassword)
	}
	c.s.notice = sentNotice(r.identifier, r.channel, c.s.options)
	c.schedule(c.forgotResend.Start())
}

func (c *Controller) resolveForgotVerify(r Result) {
	if r.Err != nil {
		c.fail(r.Err)
		if autherr.KindOf(r.Err).ForcesRestart() {
			c.restartForgot()
		} else {
			c.s.forgotDigits = [models.OTPLength]string{}
		}
		return
	}
	c.s.resetToken = r.resetToken
	c.s.forgotDigits = [models.OTPLength]string{}
	c.forgotResend.Cancel()
	c.s.forgotStep = StepResetPassword
	c.s.notice = ""
	c.goTo(ScreenForgotPassword)
}

func (c *Controller) resolveReset(r Result) {
	if r.Err != nil {
		if autherr.KindOf(r.Err).ForcesRestart() {
			c.restartForgot()
		}
		c.fail(r.Err)
		return
	}
	c.resetForgot()
	c.s.mode = models.ModePassword
	c.s.password = ""
	c.goTo(ScreenLoginForm)
	c.s.notice = passwordUpdatedNotice
	c.log.Info("Password reset completed")
}

// restartForgot drops back to requesting a new code, keeping the status
func (c *Controller) restartForgot() {
	st := c.s.status
	c.resetForgot()
	c.goTo(ScreenForgotPassword)
	c.s.status = st
}

// resetForgot clears all forgot-password state and returns to the send step
func (c *Controller) resetForgot() {
	c.s.forgotStep = StepSendOTP
	c.s.forgotSent = false
	c.s.forgotTo = ""
	c.s.forgotChan = models.ChannelNone
	c.s.forgotDigits = [models.OTPLength]string{}
	c.s.resetToken = ""
	c.forgotResend.Cancel()
}
