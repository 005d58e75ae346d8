// ABOUTME: Shared authentication enums and records for the login flow
// ABOUTME: Defines login methods, modes, OTP delivery channels and auth results

package models

import (
	"fmt"
	"strings"
	"time"
)

// OTPLength is the fixed number of digits in a one-time code
const OTPLength = 6

// Method is the kind of identifier a user logs in with
type Method int

const (
	MethodPhone Method = iota
	MethodEmail
	MethodUsername
)

// Methods lists every login method in menu order
var Methods = []Method{MethodPhone, MethodEmail, MethodUsername}

// String returns the wire name of a Method
func (m Method) String() string {
	switch m {
	case MethodPhone:
		return "phone"
	case MethodEmail:
		return "email"
	case MethodUsername:
		return "username"
	default:
		return "unknown"
	}
}

// Label returns the human-readable name of a Method
func (m Method) Label() string {
	switch m {
	case MethodPhone:
		return "Phone number"
	case MethodEmail:
		return "Email address"
	case MethodUsername:
		return "Username"
	default:
		return "Unknown"
	}
}

// ParseMethod converts a wire name into a Method
func ParseMethod(s string) (Method, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "phone", "mobile":
		return MethodPhone, nil
	case "email":
		return MethodEmail, nil
	case "username":
		return MethodUsername, nil
	}
	return MethodPhone, fmt.Errorf("unknown login method %q (want phone, email or username)", s)
}

// MarshalText implements encoding.TextMarshaler
func (m Method) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (m *Method) UnmarshalText(text []byte) error {
	parsed, err := ParseMethod(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// Mode selects between password and one-time-code login
type Mode int

const (
	ModePassword Mode = iota
	ModeOTP
)

// String returns the wire name of a Mode
func (m Mode) String() string {
	switch m {
	case ModePassword:
		return "password"
	case ModeOTP:
		return "otp"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler
func (m Mode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// Channel is the medium an OTP is delivered through.
// The zero value means no channel was chosen.
type Channel string

const (
	ChannelNone  Channel = ""
	ChannelEmail Channel = "email"
	ChannelSMS   Channel = "sms"
)

// Label returns the human-readable channel name
func (c Channel) Label() string {
	switch c {
	case ChannelEmail:
		return "email"
	case ChannelSMS:
		return "SMS"
	default:
		return "default channel"
	}
}

// ParseChannel converts a wire name into a Channel
func ParseChannel(s string) (Channel, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "email":
		return ChannelEmail, nil
	case "sms", "phone", "mobile":
		return ChannelSMS, nil
	case "":
		return ChannelNone, nil
	}
	return ChannelNone, fmt.Errorf("unknown delivery channel %q (want email or sms)", s)
}

// DeliveryOption describes one way an OTP can reach the account owner
type DeliveryOption struct {
	Channel     Channel `json:"method"`
	Label       string  `json:"label"`
	Destination string  `json:"destination"` // masked, e.g. "j***@example.com"
}

// AuthResult is what the backend returns once a user is authenticated.
// Tokens are never written to logs.
type AuthResult struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	UserID       string    `json:"user_id,omitempty"`
	DisplayName  string    `json:"display_name,omitempty"`
	ExpiresAt    time.Time `json:"expires_at,omitempty"`
}
