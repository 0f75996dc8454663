package provider

import (
	"context"

	"claimwise-auth/internal/auth"
)

// SignUpRequest is one sign-up attempt. A nil Metadata sends no user
// metadata at all.
type SignUpRequest struct {
	Email       string
	Password    string
	Metadata    map[string]any
	RedirectURL string // where the confirmation email link lands
}

// AuthResponse is what a successful provider call yields. Session is nil
// when the provider requires email confirmation first.
type AuthResponse struct {
	User    *auth.Identity
	Session *auth.Session
}

// IdentityProvider is the managed service that owns credentials and
// sessions. Implementations report failures as *Error where the provider
// answered, and as transport errors otherwise.
type IdentityProvider interface {
	SignUp(ctx context.Context, req SignUpRequest) (*AuthResponse, error)
	SignInWithPassword(ctx context.Context, email, password string) (*AuthResponse, error)
	GetUser(ctx context.Context, accessToken string) (*auth.Identity, error)
	RefreshSession(ctx context.Context, refreshToken string) (*auth.Session, error)
	SignOut(ctx context.Context, accessToken string) error
}

// OAuthProvider defines the contract every redirect-based login must
// implement. Implementations return identity facts only and must not
// perform user creation or session management.
type OAuthProvider interface {
	// Name returns the provider identifier (e.g. "google", "keycloak").
	Name() string

	// AuthCodeURL returns the authorization URL.
	// State and PKCE parameters are provided by the caller.
	AuthCodeURL(state string, codeChallenge string) string

	// ExchangeCode exchanges the authorization code and returns the
	// identity, plus provider tokens when the provider issues them.
	ExchangeCode(
		ctx context.Context,
		code string,
		codeVerifier string,
	) (*AuthResponse, error)
}
