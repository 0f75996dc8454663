package google

import (
	"context"
	"errors"

	"claimwise-auth/internal/auth/provider/oidc"
)

const (
	providerName = "google"
	issuer       = "https://accounts.google.com"
)

// New configures direct Google sign-in, bypassing the managed provider.
func New(
	ctx context.Context,
	clientID string,
	clientSecret string,
	redirectURL string,
) (*oidc.Provider, error) {
	if clientID == "" || clientSecret == "" || redirectURL == "" {
		return nil, errors.New("google oauth config missing required fields")
	}

	return oidc.New(ctx, oidc.Config{
		Name:         providerName,
		Issuer:       issuer,
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  redirectURL,
	})
}
