package signup

import "net/http"

// Kind classifies a failed sign-up or sign-in for display.
type Kind string

const (
	KindValidation            Kind = "validation"
	KindProviderConfiguration Kind = "provider_configuration"
	KindAlreadyRegistered     Kind = "already_registered"
	KindInvalidEmail          Kind = "invalid_email"
	KindWeakPassword          Kind = "weak_password"
	KindUnconfirmedEmail      Kind = "unconfirmed_email"
	KindInvalidCredentials    Kind = "invalid_credentials"
	KindRateLimited           Kind = "rate_limited"
	KindNetwork               Kind = "network"
	KindUnknown               Kind = "unknown"
)

const (
	MsgAlreadyRegistered     = "An account with this email already exists. Please use login instead."
	MsgInvalidEmail          = "Please enter a valid email address."
	MsgWeakPassword          = "Password must be at least 6 characters long."
	MsgUnconfirmedEmail      = "Please check your email and confirm your account before signing in."
	MsgInvalidCredentials    = "Invalid email or password."
	MsgRateLimited           = "Too many attempts. Please wait a moment and try again."
	MsgNetwork               = "Network error. Please check your connection and try again."
	MsgProviderConfiguration = "Email signup is temporarily unavailable due to a configuration issue. Please sign up with Google instead."
	signupFailedPrefix       = "Signup failed: "
	authFailedPrefix         = "Authentication failed: "
)

// Error is the single user-facing rendering of a failure. Err keeps the
// underlying cause for logs; Message is safe to show.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// HTTPStatus maps a kind onto the status the HTTP layer answers with.
func (k Kind) HTTPStatus() int {
	switch k {
	case KindValidation, KindInvalidEmail, KindWeakPassword:
		return http.StatusBadRequest
	case KindInvalidCredentials:
		return http.StatusUnauthorized
	case KindUnconfirmedEmail:
		return http.StatusForbidden
	case KindAlreadyRegistered:
		return http.StatusConflict
	case KindRateLimited:
		return http.StatusTooManyRequests
	case KindProviderConfiguration:
		return http.StatusServiceUnavailable
	default:
		return http.StatusBadGateway
	}
}
