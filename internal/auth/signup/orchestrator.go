// Package signup creates provider accounts for the email sign-up form.
//
// A sign-up runs at most two provider calls, strictly in order:
//
//	S1  sign up with the name stored as metadata
//	S2  on a provider database failure, sign up with no metadata at all
//	S3  if S2 fails too, stop and point the user at OAuth sign-up
//
// Every successful path ends with a best-effort user sync.
package signup

import (
	"context"
	"errors"

	"claimwise-auth/internal/auth"
	"claimwise-auth/internal/auth/credentials"
	"claimwise-auth/internal/auth/provider"
	"claimwise-auth/internal/auth/resolver"
	"claimwise-auth/internal/logger"
)

// Strategy names the attempt that created the account.
type Strategy string

const (
	StrategyFullMetadata Strategy = "full_metadata"
	StrategyMinimal      Strategy = "minimal"
)

// Result is a successful sign-up. Session is nil when the provider wants
// the email confirmed first.
type Result struct {
	Identity                  *auth.Identity
	Session                   *auth.Session
	RequiresEmailConfirmation bool
	Strategy                  Strategy
}

type Orchestrator struct {
	provider    provider.IdentityProvider
	sync        resolver.Syncer
	redirectURL string
}

// NewOrchestrator wires the provider and the user sync. redirectURL is
// where confirmation email links land.
func NewOrchestrator(p provider.IdentityProvider, sync resolver.Syncer, redirectURL string) *Orchestrator {
	return &Orchestrator{
		provider:    p,
		sync:        sync,
		redirectURL: redirectURL,
	}
}

var errNoUser = errors.New("provider returned no user")

// Attempt runs the sign-up strategies for an already validated
// submission. Failures are returned as *Error.
func (o *Orchestrator) Attempt(ctx context.Context, s credentials.Signup) (*Result, error) {
	// S1
	res, err := o.signUp(ctx, s, auth.NameMetadata(s.FullName))
	if err == nil {
		return o.succeed(ctx, res, StrategyFullMetadata, ""), nil
	}
	if !isDatabaseFailure(err) {
		return nil, Classify(err)
	}

	logger.Warn("signup with metadata failed, retrying without", map[string]any{
		"error": rawMessage(err),
	})

	// S2: the provider stored no name, so sync with the one entered
	res, err = o.signUp(ctx, s, nil)
	if err == nil {
		return o.succeed(ctx, res, StrategyMinimal, s.FullName), nil
	}

	// S3
	logger.Error("minimal signup failed", map[string]any{
		"error": rawMessage(err),
	})
	return nil, &Error{
		Kind:    KindProviderConfiguration,
		Message: MsgProviderConfiguration,
		Err:     err,
	}
}

// SignIn is a single password sign-in; the provider's answer is returned
// as is.
func (o *Orchestrator) SignIn(ctx context.Context, email, password string) (*provider.AuthResponse, error) {
	return o.provider.SignInWithPassword(ctx, email, password)
}

func (o *Orchestrator) signUp(ctx context.Context, s credentials.Signup, metadata map[string]any) (*provider.AuthResponse, error) {
	res, err := o.provider.SignUp(ctx, provider.SignUpRequest{
		Email:       s.Email,
		Password:    s.Password,
		Metadata:    metadata,
		RedirectURL: o.redirectURL,
	})
	if err != nil {
		return nil, err
	}
	if res == nil || res.User == nil {
		return nil, errNoUser
	}
	return res, nil
}

func (o *Orchestrator) succeed(ctx context.Context, res *provider.AuthResponse, strategy Strategy, nameOverride string) *Result {
	o.sync.Sync(ctx, res.User, nameOverride)

	return &Result{
		Identity:                  res.User,
		Session:                   res.Session,
		RequiresEmailConfirmation: res.Session == nil,
		Strategy:                  strategy,
	}
}
