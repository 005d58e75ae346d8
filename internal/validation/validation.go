// ABOUTME: Pure validation rules for login identifiers, OTPs and passwords
// ABOUTME: Failures are classified autherr errors attached to the offending field

package validation

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/doklink/doklink-auth/internal/autherr"
	"github.com/doklink/doklink-auth/internal/models"
)

// Field names used on validation errors
const (
	FieldIdentifier      = "identifier"
	FieldOTP             = "otp"
	FieldPassword        = "password"
	FieldConfirmPassword = "confirm_password"
	FieldChannel         = "channel"
)

// MinPasswordLength is the signup-grade minimum applied to new passwords
const MinPasswordLength = 8

var (
	// phonePattern matches 10-digit Indian mobile numbers starting 6-9
	phonePattern = regexp.MustCompile(`^[6-9][0-9]{9}$`)
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	// usernamePattern requires a lowercase start followed by lowercase letters or digits
	usernamePattern = regexp.MustCompile(`^[a-z][a-z0-9]*$`)
	otpPattern      = regexp.MustCompile(`^[0-9]{6}$`)
)

// Identifier validates a login identifier for the given method.
// Emptiness is checked before format. A blank value is Required; otherwise
// the format is matched against the value as entered, so surrounding spaces
// are InvalidFormat and callers can use the identifier untrimmed.
func Identifier(value string, method models.Method) error {
	if strings.TrimSpace(value) == "" {
		return autherr.Field(autherr.Required, FieldIdentifier, requiredMessage(method))
	}

	var ok bool
	var msg string
	switch method {
	case models.MethodPhone:
		ok = phonePattern.MatchString(value)
		msg = "Enter a valid 10-digit mobile number"
	case models.MethodEmail:
		ok = emailPattern.MatchString(value)
		msg = "Enter a valid email address"
	case models.MethodUsername:
		ok = usernamePattern.MatchString(value)
		msg = "Username must start with a lowercase letter and contain only lowercase letters and digits"
	default:
		msg = "Unsupported login method"
	}

	if !ok {
		return autherr.Field(autherr.InvalidFormat, FieldIdentifier, msg)
	}
	return nil
}

// OTP validates a complete one-time code
func OTP(value string) error {
	if !otpPattern.MatchString(value) {
		return autherr.Field(autherr.InvalidFormat, FieldOTP, "Enter the 6-digit code")
	}
	return nil
}

// Password validates a login password. Complexity is enforced only for new passwords.
func Password(value string) error {
	if value == "" {
		return autherr.Field(autherr.Required, FieldPassword, "Enter your password")
	}
	return nil
}

// NewPassword validates a replacement password and its confirmation
func NewPassword(password, confirm string) error {
	if password == "" {
		return autherr.Field(autherr.Required, FieldPassword, "Enter a new password")
	}
	if confirm == "" {
		return autherr.Field(autherr.Required, FieldConfirmPassword, "Confirm your new password")
	}
	if err := passwordComplexity(password); err != nil {
		return err
	}
	if password != confirm {
		return autherr.Field(autherr.PasswordMismatch, FieldConfirmPassword, "Passwords do not match")
	}
	return nil
}

func passwordComplexity(password string) error {
	if len([]rune(password)) < MinPasswordLength {
		return autherr.Field(autherr.InvalidFormat, FieldPassword, "Password must be at least 8 characters")
	}

	var upper, lower, digit, symbol bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			symbol = true
		}
	}
	if !upper || !lower || !digit || !symbol {
		return autherr.Field(autherr.InvalidFormat, FieldPassword,
			"Password needs an uppercase letter, a lowercase letter, a digit and a symbol")
	}
	return nil
}

// SkipIdentifier reports whether identifier validation is bypassed.
// A username OTP login with a complete code already consumed its identifier
// when the code was requested, and the field is hidden at that point.
func SkipIdentifier(method models.Method, mode models.Mode, digits []string) bool {
	return method == models.MethodUsername && mode == models.ModeOTP && CodeComplete(digits)
}

// CodeComplete reports whether digits form a full numeric code
func CodeComplete(digits []string) bool {
	return len(digits) == models.OTPLength && otpPattern.MatchString(strings.Join(digits, ""))
}

// IsDigit reports whether s is exactly one ASCII digit
func IsDigit(s string) bool {
	return len(s) == 1 && s[0] >= '0' && s[0] <= '9'
}

func requiredMessage(method models.Method) string {
	switch method {
	case models.MethodEmail:
		return "Enter your email address"
	case models.MethodUsername:
		return "Enter your username"
	default:
		return "Enter your mobile number"
	}
}
