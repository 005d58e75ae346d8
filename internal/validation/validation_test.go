// ABOUTME: Tests for identifier, OTP and password validation rules
// ABOUTME: Verifies format partitions and Required-before-format ordering

package validation

import (
	"regexp"
	"testing"

	"github.com/doklink/doklink-auth/internal/autherr"
	"github.com/doklink/doklink-auth/internal/models"
)

func TestIdentifier_Phone(t *testing.T) {
	tests := []struct {
		input   string
		wantErr bool
		kind    autherr.Kind
	}{
		{"9876543210", false, 0},
		{"6000000000", false, 0},
		{"5876543210", true, autherr.InvalidFormat},
		{"987654321", true, autherr.InvalidFormat},
		{"98765432101", true, autherr.InvalidFormat},
		{"98765a3210", true, autherr.InvalidFormat},
		{"+919876543210", true, autherr.InvalidFormat},
		{" 9876543210", true, autherr.InvalidFormat},
		{"123", true, autherr.InvalidFormat},
		{"", true, autherr.Required},
		{"   ", true, autherr.Required},
	}

	for _, tc := range tests {
		t.Run(tc.input, func(t *testing.T) {
			err := Identifier(tc.input, models.MethodPhone)
			if !tc.wantErr {
				if err != nil {
					t.Errorf("unexpected error for %q: %v", tc.input, err)
				}
				return
			}
			if err == nil {
				t.Fatalf("expected error for %q", tc.input)
			}
			if got := autherr.KindOf(err); got != tc.kind {
				t.Errorf("expected %s, got %s", tc.kind, got)
			}
		})
	}
}

func TestIdentifier_Email(t *testing.T) {
	valid := []string{"user@example.com", "a.b+c@doklink.co.in", "x@y.io"}
	invalid := []string{"user@", "@example.com", "user example@x.com", "userexample.com", "user@example", " user@example.com", "user@example.com "}

	for _, s := range valid {
		if err := Identifier(s, models.MethodEmail); err != nil {
			t.Errorf("Identifier(%q, email) returned error: %v", s, err)
		}
	}
	for _, s := range invalid {
		err := Identifier(s, models.MethodEmail)
		if !autherr.Is(err, autherr.InvalidFormat) {
			t.Errorf("Identifier(%q, email) = %v, want InvalidFormat", s, err)
		}
	}
}

func TestIdentifier_Username(t *testing.T) {
	valid := []string{"johndoe123", "a", "z9"}
	invalid := []string{"JohnDoe", "1john", "john_doe", "john.doe", "john doe", "johndoe ", " johndoe"}

	for _, s := range valid {
		if err := Identifier(s, models.MethodUsername); err != nil {
			t.Errorf("Identifier(%q, username) returned error: %v", s, err)
		}
	}
	for _, s := range invalid {
		err := Identifier(s, models.MethodUsername)
		if !autherr.Is(err, autherr.InvalidFormat) {
			t.Errorf("Identifier(%q, username) = %v, want InvalidFormat", s, err)
		}
	}
}

func TestIdentifier_PhonePartition(t *testing.T) {
	reference := regexp.MustCompile(`^[6-9][0-9]{9}$`)
	inputs := []string{"9999999999", "0999999999", "99999999999", "7a12345678", "8123456789", "61234567890", "6"}

	for _, s := range inputs {
		err := Identifier(s, models.MethodPhone)
		if (err == nil) != reference.MatchString(s) {
			t.Errorf("Identifier(%q) = %v disagrees with reference pattern", s, err)
		}
	}
}

func TestIdentifier_ErrorField(t *testing.T) {
	err := Identifier("", models.MethodEmail)
	var e *autherr.Error
	if !asError(err, &e) {
		t.Fatalf("expected *autherr.Error, got %T", err)
	}
	if e.Field != FieldIdentifier {
		t.Errorf("expected field %q, got %q", FieldIdentifier, e.Field)
	}
}

func TestOTP(t *testing.T) {
	tests := []struct {
		input   string
		wantErr bool
	}{
		{"123456", false},
		{"000000", false},
		{"12345", true},
		{"1234567", true},
		{"12a456", true},
		{"", true},
		{"١٢٣٤٥٦", true},
	}

	for _, tc := range tests {
		t.Run(tc.input, func(t *testing.T) {
			err := OTP(tc.input)
			if tc.wantErr && !autherr.Is(err, autherr.InvalidFormat) {
				t.Errorf("expected InvalidFormat for %q, got %v", tc.input, err)
			}
			if !tc.wantErr && err != nil {
				t.Errorf("unexpected error for %q: %v", tc.input, err)
			}
		})
	}
}

func TestPassword(t *testing.T) {
	if err := Password(""); !autherr.Is(err, autherr.Required) {
		t.Errorf("expected Required for empty password, got %v", err)
	}
	if err := Password("x"); err != nil {
		t.Errorf("login password should not be complexity-checked, got %v", err)
	}
}

func TestNewPassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		confirm  string
		kind     autherr.Kind
		wantErr  bool
	}{
		{"valid", "Str0ng!Pass", "Str0ng!Pass", 0, false},
		{"empty", "", "", autherr.Required, true},
		{"missing confirm", "Str0ng!Pass", "", autherr.Required, true},
		{"too short", "S0!a", "S0!a", autherr.InvalidFormat, true},
		{"no symbol", "Str0ngPass", "Str0ngPass", autherr.InvalidFormat, true},
		{"no digit", "Strong!Pass", "Strong!Pass", autherr.InvalidFormat, true},
		{"no upper", "str0ng!pass", "str0ng!pass", autherr.InvalidFormat, true},
		{"mismatch", "Str0ng!Pass", "Str0ng!Pasz", autherr.PasswordMismatch, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := NewPassword(tc.password, tc.confirm)
			if !tc.wantErr {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if got := autherr.KindOf(err); got != tc.kind {
				t.Errorf("expected %s, got %s (%v)", tc.kind, got, err)
			}
		})
	}
}

func TestSkipIdentifier(t *testing.T) {
	full := []string{"1", "2", "3", "4", "5", "6"}
	partial := []string{"1", "2", "", "", "", ""}

	if !SkipIdentifier(models.MethodUsername, models.ModeOTP, full) {
		t.Error("expected bypass for username OTP login with complete code")
	}
	if SkipIdentifier(models.MethodUsername, models.ModeOTP, partial) {
		t.Error("expected no bypass with partial code")
	}
	if SkipIdentifier(models.MethodPhone, models.ModeOTP, full) {
		t.Error("expected no bypass for phone login")
	}
	if SkipIdentifier(models.MethodUsername, models.ModePassword, full) {
		t.Error("expected no bypass in password mode")
	}
}

func TestIsDigit(t *testing.T) {
	for _, s := range []string{"0", "5", "9"} {
		if !IsDigit(s) {
			t.Errorf("expected %q to be a digit", s)
		}
	}
	for _, s := range []string{"", "a", "12", "-"} {
		if IsDigit(s) {
			t.Errorf("expected %q not to be a digit", s)
		}
	}
}
