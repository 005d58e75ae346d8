// ABOUTME: Deferred network requests issued by the flow and their results
// ABOUTME: A result is applied only while the state that issued it is still current

package flow

import (
	"context"

	"github.com/doklink/doklink-auth/internal/models"
)

// Op names the request a Pending performs
type Op int

const (
	OpLogin Op = iota
	OpLoginOptions
	OpSendOTP
	OpVerifyOTP
	OpForgotOptions
	OpForgotSendOTP
	OpForgotVerifyOTP
	OpResetPassword
)

// String returns the stable name of an Op
func (o Op) String() string {
	switch o {
	case OpLogin:
		return "login"
	case OpLoginOptions:
		return "login_options"
	case OpSendOTP:
		return "send_otp"
	case OpVerifyOTP:
		return "verify_otp"
	case OpForgotOptions:
		return "forgot_options"
	case OpForgotSendOTP:
		return "forgot_send_otp"
	case OpForgotVerifyOTP:
		return "forgot_verify_otp"
	case OpResetPassword:
		return "reset_password"
	default:
		return "unknown"
	}
}

// Pending is a request captured when an intent was issued. Run performs the
// I/O and may be called from any goroutine; the returned Result must be handed
// back to Controller.Resolve on the goroutine that owns the controller.
type Pending struct {
	Op    Op
	epoch uint64
	run   func(ctx context.Context) Result
}

// Run performs the request
func (p *Pending) Run(ctx context.Context) Result {
	r := p.run(ctx)
	r.Op = p.Op
	r.epoch = p.epoch
	return r
}

// Result is the outcome of a Pending
type Result struct {
	Op  Op
	Err error

	epoch      uint64
	identifier string
	channel    models.Channel
	auth       *models.AuthResult
	resetToken string
	options    []models.DeliveryOption
}
