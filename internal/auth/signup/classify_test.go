package signup

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"testing"

	"claimwise-auth/internal/auth/credentials"
	"claimwise-auth/internal/auth/provider"
	"claimwise-auth/internal/logger"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		kind Kind
	}{
		{"code already exists", &provider.Error{Code: "user_already_exists", Message: "x"}, KindAlreadyRegistered},
		{"text already registered", errors.New("User already registered"), KindAlreadyRegistered},
		{"code invalid email", &provider.Error{Code: "email_address_invalid", Message: "x"}, KindInvalidEmail},
		{"text invalid email", &provider.Error{Status: 400, Message: "Unable to validate email address: invalid format"}, KindInvalidEmail},
		{"code weak password", &provider.Error{Code: "weak_password", Message: "x"}, KindWeakPassword},
		{"text weak password", errors.New("Password should be at least 6 characters"), KindWeakPassword},
		{"unconfirmed", &provider.Error{Status: 400, Message: "Email not confirmed"}, KindUnconfirmedEmail},
		{"invalid credentials", &provider.Error{Status: 400, Code: "invalid_grant", Message: "Invalid login credentials"}, KindInvalidCredentials},
		{"status 429", &provider.Error{Status: http.StatusTooManyRequests, Message: "slow down"}, KindRateLimited},
		{"text rate limit", errors.New("Email rate limit exceeded"), KindRateLimited},
		{"security throttle", errors.New("For security purposes, you can only request this after 42 seconds."), KindRateLimited},
		{"dial error", fmt.Errorf("gotrue: POST /auth/v1/signup: %w", &net.OpError{Op: "dial", Err: errors.New("boom")}), KindNetwork},
		{"deadline", fmt.Errorf("gotrue: %w", context.DeadlineExceeded), KindNetwork},
		{"text network", errors.New("Failed to fetch"), KindNetwork},
		{"validation", &credentials.ValidationError{Field: "email", Message: credentials.MsgInvalidEmail}, KindValidation},
		{"unknown", &provider.Error{Status: 418, Message: "I'm a teapot"}, KindUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.err)
			assert.Equal(t, tt.kind, got.Kind)
			assert.ErrorIs(t, got, tt.err)
		})
	}
}

func TestClassifyPriorityAlreadyRegisteredBeatsRateLimit(t *testing.T) {
	got := Classify(errors.New("user already registered; rate limit"))
	assert.Equal(t, KindAlreadyRegistered, got.Kind)
}

func TestClassifyUnknownKeepsRawMessageAndLogs(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	logger.Set(zap.New(core))
	t.Cleanup(func() { logger.Set(nil) })

	got := Classify(&provider.Error{Status: 500, Code: "mystery", Message: "Something odd"})
	assert.Equal(t, KindUnknown, got.Kind)
	assert.Equal(t, "Signup failed: Something odd", got.Message)
	assert.Equal(t, 1, logs.FilterMessage("unclassified provider error").Len())
}

func TestClassifySignInUsesNeutralPrefix(t *testing.T) {
	err := &provider.Error{Status: 500, Code: "mystery", Message: "Something odd"}

	got := ClassifySignIn(err)
	assert.Equal(t, KindUnknown, got.Kind)
	assert.Equal(t, "Authentication failed: Something odd", got.Message)
	assert.NotContains(t, got.Message, "Signup")

	known := ClassifySignIn(&provider.Error{Code: "invalid_credentials", Message: "x"})
	assert.Equal(t, MsgInvalidCredentials, known.Message)
}

func TestClassifyPassesThroughClassified(t *testing.T) {
	orig := &Error{Kind: KindProviderConfiguration, Message: MsgProviderConfiguration}
	assert.Same(t, orig, Classify(orig))
	assert.Nil(t, Classify(nil))
}

func TestIsDatabaseFailure(t *testing.T) {
	assert.True(t, isDatabaseFailure(&provider.Error{Message: "Database error saving new user"}))
	assert.True(t, isDatabaseFailure(errors.New("database error: trigger on_auth_user_created failed")))
	assert.True(t, isDatabaseFailure(&provider.Error{Code: "unexpected_failure", Message: "oops"}))
	assert.False(t, isDatabaseFailure(&provider.Error{Message: "Invalid email"}))
	assert.False(t, isDatabaseFailure(errors.New("connection refused")))
}

func TestKindHTTPStatus(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, KindValidation.HTTPStatus())
	assert.Equal(t, http.StatusConflict, KindAlreadyRegistered.HTTPStatus())
	assert.Equal(t, http.StatusTooManyRequests, KindRateLimited.HTTPStatus())
	assert.Equal(t, http.StatusServiceUnavailable, KindProviderConfiguration.HTTPStatus())
	assert.Equal(t, http.StatusBadGateway, KindUnknown.HTTPStatus())
}
