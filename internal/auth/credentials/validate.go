package credentials

import (
	"errors"
	"strings"
	"unicode/utf16"
)

// MinPasswordLength is the shortest password the sign-up form accepts.
const MinPasswordLength = 6

const (
	MsgPasswordMismatch = "Passwords do not match"
	MsgPasswordTooShort = "Password must be at least 6 characters long"
	MsgInvalidEmail     = "Please enter a valid email address"
	MsgMissingName      = "Please enter your full name"
	MsgMissingPassword  = "Please enter your password"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrWeakPassword       = errors.New("password too short")
)

// ValidationError is a client-side rejection. It is always recoverable by
// correcting the named field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// ValidateSignup checks the sign-up form in a fixed order and returns the
// first failing rule. No I/O happens here.
func ValidateSignup(c Credentials) (Signup, error) {
	if c.Password != c.ConfirmPassword {
		return Signup{}, &ValidationError{Field: "confirm_password", Message: MsgPasswordMismatch}
	}
	if PasswordLength(c.Password) < MinPasswordLength {
		return Signup{}, &ValidationError{Field: "password", Message: MsgPasswordTooShort}
	}
	if !looksLikeEmail(c.Email) {
		return Signup{}, &ValidationError{Field: "email", Message: MsgInvalidEmail}
	}
	name := strings.TrimSpace(c.FullName)
	if name == "" {
		return Signup{}, &ValidationError{Field: "full_name", Message: MsgMissingName}
	}

	return Signup{
		Email:    c.Email,
		Password: c.Password,
		FullName: name,
	}, nil
}

// ValidateLogin only enforces that both fields are present; everything
// else is the provider's decision.
func ValidateLogin(email, password string) error {
	if !looksLikeEmail(email) {
		return &ValidationError{Field: "email", Message: MsgInvalidEmail}
	}
	if password == "" {
		return &ValidationError{Field: "password", Message: MsgMissingPassword}
	}
	return nil
}

// PasswordLength counts UTF-16 code units, the unit browsers use for
// string length, so "ééé" is 3 long and not 6.
func PasswordLength(password string) int {
	return len(utf16.Encode([]rune(password)))
}

func looksLikeEmail(email string) bool {
	return email != "" && strings.Contains(email, "@")
}
