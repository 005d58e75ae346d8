// ABOUTME: Error taxonomy for the authentication flow
// ABOUTME: Typed errors carry a Kind, the offending field and a displayable message

package autherr

import (
	"errors"
	"fmt"
)

// Kind classifies a failure so the flow can decide how to react to it
type Kind int

const (
	ServerError Kind = iota
	Required
	InvalidFormat
	InvalidCredentials
	OtpIncorrect
	OtpExpired
	TokenExpired
	PasswordMismatch
	NotFound
	NetworkError
)

// String returns the stable name of a Kind
func (k Kind) String() string {
	switch k {
	case Required:
		return "Required"
	case InvalidFormat:
		return "InvalidFormat"
	case InvalidCredentials:
		return "InvalidCredentials"
	case OtpIncorrect:
		return "OtpIncorrect"
	case OtpExpired:
		return "OtpExpired"
	case TokenExpired:
		return "TokenExpired"
	case PasswordMismatch:
		return "PasswordMismatch"
	case NotFound:
		return "NotFound"
	case NetworkError:
		return "NetworkError"
	default:
		return "ServerError"
	}
}

// ForcesRestart reports whether retrying the same step would deterministically
// fail again, so the flow must fall back to re-sending an OTP.
func (k Kind) ForcesRestart() bool {
	return k == OtpExpired || k == TokenExpired
}

// ClientSide reports whether the kind is produced by local validation
func (k Kind) ClientSide() bool {
	return k == Required || k == InvalidFormat
}

// Error is a classified authentication failure
type Error struct {
	Kind    Kind
	Field   string // empty for screen-level failures
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates a screen-level error
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Field creates an error attached to a single input field
func Field(kind Kind, field, message string) *Error {
	return &Error{Kind: kind, Field: field, Message: message}
}

// Wrap classifies an underlying error
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// KindOf extracts the Kind of err. Unclassified errors count as ServerError.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ServerError
}

// Is reports whether err carries the given Kind
func Is(err error, kind Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}

// Message returns the displayable text for err
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	if err == nil {
		return ""
	}
	return "Something went wrong. Please try again."
}
