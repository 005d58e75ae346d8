// ABOUTME: Screen, step and status types for the authentication flow state machine
// ABOUTME: Snapshot is the read-only view of session state that views render from

package flow

import (
	"github.com/doklink/doklink-auth/internal/autherr"
	"github.com/doklink/doklink-auth/internal/models"
)

// Screen is the sub-view the flow is currently on
type Screen int

const (
	ScreenMethodSelection Screen = iota
	ScreenLoginForm
	ScreenForgotPassword
	ScreenUsernameOTPChoice
	ScreenForgotPasswordOTPChoice
)

// String returns the stable name of a Screen
func (s Screen) String() string {
	switch s {
	case ScreenMethodSelection:
		return "method_selection"
	case ScreenLoginForm:
		return "login_form"
	case ScreenForgotPassword:
		return "forgot_password"
	case ScreenUsernameOTPChoice:
		return "username_otp_choice"
	case ScreenForgotPasswordOTPChoice:
		return "forgot_password_otp_choice"
	default:
		return "unknown"
	}
}

// ForgotStep is the position inside the forgot-password screen
type ForgotStep int

const (
	StepSendOTP ForgotStep = iota
	StepVerifyOTP
	StepResetPassword
)

// String returns the stable name of a ForgotStep
func (s ForgotStep) String() string {
	switch s {
	case StepSendOTP:
		return "send_otp"
	case StepVerifyOTP:
		return "verify_otp"
	case StepResetPassword:
		return "reset_password"
	default:
		return "unknown"
	}
}

// Outcome is how the flow ended
type Outcome int

const (
	OutcomeNone Outcome = iota
	OutcomeAuthenticated
	OutcomeCancelled
)

// String returns the stable name of an Outcome
func (o Outcome) String() string {
	switch o {
	case OutcomeAuthenticated:
		return "authenticated"
	case OutcomeCancelled:
		return "cancelled"
	default:
		return "none"
	}
}

// Status is a displayable failure scoped to the current screen.
// Field is set for client-side validation failures.
type Status struct {
	Kind    autherr.Kind
	Field   string
	Message string
}

// Snapshot is a copy of the session state. Mutating it has no effect on the flow.
type Snapshot struct {
	Screen     Screen
	Method     models.Method
	Mode       models.Mode
	ForgotStep ForgotStep

	Identifier string
	// PasswordEntered reports a non-empty password field without exposing it
	PasswordEntered bool
	// SentTo is the identifier the login OTP went to; the input is hidden once sent
	SentTo       string
	ForgotSentTo string

	OTPDigits       []string
	ForgotOTPDigits []string
	OTPSent         bool
	ForgotOTPSent   bool

	ResendTimer            int
	ShowResendButton       bool
	ForgotResendTimer      int
	ForgotShowResendButton bool

	DeliveryOptions []models.DeliveryOption
	SelectedChannel models.Channel

	Verified  bool
	Countdown int

	// ResetPending reports whether a reset token is held. The token itself never leaves the controller.
	ResetPending bool

	Status  *Status
	Notice  string
	Busy    bool
	Outcome Outcome
}

// FieldStatus returns the status when it is attached to field
func (s Snapshot) FieldStatus(field string) *Status {
	if s.Status != nil && s.Status.Field == field {
		return s.Status
	}
	return nil
}

// LiveDigits returns the digit array that belongs to the active screen
func (s Snapshot) LiveDigits() []string {
	if s.Screen == ScreenForgotPassword && s.ForgotStep == StepVerifyOTP {
		return s.ForgotOTPDigits
	}
	return s.OTPDigits
}
