package signup

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strings"

	"claimwise-auth/internal/auth/credentials"
	"claimwise-auth/internal/auth/provider"
	"claimwise-auth/internal/logger"
)

// Structured GoTrue error codes, checked before any text matching.
var codeKinds = map[string]Kind{
	"user_already_exists":        KindAlreadyRegistered,
	"email_exists":               KindAlreadyRegistered,
	"email_address_invalid":      KindInvalidEmail,
	"weak_password":              KindWeakPassword,
	"email_not_confirmed":        KindUnconfirmedEmail,
	"invalid_credentials":        KindInvalidCredentials,
	"invalid_grant":              KindInvalidCredentials,
	"over_request_rate_limit":    KindRateLimited,
	"over_email_send_rate_limit": KindRateLimited,
}

// Text fallbacks in display priority order. Provider wording is not a
// stable contract, so every miss is logged.
var phraseKinds = []struct {
	kind    Kind
	phrases []string
}{
	{KindAlreadyRegistered, []string{"already registered", "already exists", "already been registered"}},
	{KindInvalidEmail, []string{"invalid email", "unable to validate email", "email address is invalid"}},
	{KindWeakPassword, []string{"password should be", "weak password", "at least 6 characters"}},
	{KindUnconfirmedEmail, []string{"email not confirmed", "not confirmed"}},
	{KindRateLimited, []string{"rate limit", "too many requests", "for security purposes"}},
	{KindNetwork, []string{"failed to fetch", "network", "connection refused", "no such host", "timeout"}},
	{KindInvalidCredentials, []string{"invalid login credentials"}},
}

var dbFailurePhrases = []string{
	"database error saving new user",
	"database error",
	"trigger",
}

var messages = map[Kind]string{
	KindAlreadyRegistered:     MsgAlreadyRegistered,
	KindInvalidEmail:          MsgInvalidEmail,
	KindWeakPassword:          MsgWeakPassword,
	KindUnconfirmedEmail:      MsgUnconfirmedEmail,
	KindInvalidCredentials:    MsgInvalidCredentials,
	KindRateLimited:           MsgRateLimited,
	KindNetwork:               MsgNetwork,
	KindProviderConfiguration: MsgProviderConfiguration,
}

// Classify turns any failure from the sign-up path into a single *Error.
// It is applied once, at the boundary.
func Classify(err error) *Error {
	return classify(err, signupFailedPrefix)
}

// ClassifySignIn is Classify for sign-in, refresh and the other
// session-backed calls; only the unknown-error wording differs.
func ClassifySignIn(err error) *Error {
	return classify(err, authFailedPrefix)
}

func classify(err error, unknownPrefix string) *Error {
	if err == nil {
		return nil
	}

	var already *Error
	if errors.As(err, &already) {
		return already
	}

	var verr *credentials.ValidationError
	if errors.As(err, &verr) {
		return &Error{Kind: KindValidation, Message: verr.Message, Err: err}
	}

	if kind, ok := kindOf(err); ok {
		return &Error{Kind: kind, Message: messages[kind], Err: err}
	}

	logger.Warn("unclassified provider error", map[string]any{
		"error": err.Error(),
	})
	return &Error{Kind: KindUnknown, Message: unknownPrefix + rawMessage(err), Err: err}
}

func kindOf(err error) (Kind, bool) {
	var perr *provider.Error
	if errors.As(err, &perr) {
		if kind, ok := codeKinds[perr.Code]; ok {
			return kind, true
		}
		if perr.Status == http.StatusTooManyRequests {
			return KindRateLimited, true
		}
	}

	text := strings.ToLower(rawMessage(err))
	for _, pk := range phraseKinds {
		for _, phrase := range pk.phrases {
			if strings.Contains(text, phrase) {
				return pk.kind, true
			}
		}
	}

	if isNetworkError(err) {
		return KindNetwork, true
	}
	return "", false
}

func isNetworkError(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var nerr net.Error
	return errors.As(err, &nerr)
}

// isDatabaseFailure matches the signatures of a provider-side trigger or
// insert failure, the only errors worth retrying without metadata.
func isDatabaseFailure(err error) bool {
	var perr *provider.Error
	if errors.As(err, &perr) && perr.Code == "unexpected_failure" {
		return true
	}
	text := strings.ToLower(rawMessage(err))
	for _, phrase := range dbFailurePhrases {
		if strings.Contains(text, phrase) {
			return true
		}
	}
	return false
}

// rawMessage prefers the provider's own message over the wrapped chain.
func rawMessage(err error) string {
	var perr *provider.Error
	if errors.As(err, &perr) {
		return perr.Message
	}
	return err.Error()
}
