package keycloak

import (
	"context"
	"errors"
	"net/url"
	"strings"

	"claimwise-auth/internal/auth/provider/oidc"
)

const providerName = "keycloak"

// New configures Keycloak sign-in. issuer must be the realm issuer URL, e.g.
// http://keycloak:8080/realms/claimwise; publicBaseURL is the host the
// browser reaches Keycloak on, e.g. http://localhost:8081.
func New(
	ctx context.Context,
	issuer string,
	clientID string,
	redirectURL string,
	publicBaseURL string,
) (*oidc.Provider, error) {
	if issuer == "" || clientID == "" || redirectURL == "" || publicBaseURL == "" {
		return nil, errors.New("keycloak oauth config missing required fields")
	}

	authURL, err := publicAuthURL(issuer, publicBaseURL)
	if err != nil {
		return nil, err
	}

	return oidc.New(ctx, oidc.Config{
		Name:        providerName,
		Issuer:      issuer,
		ClientID:    clientID,
		RedirectURL: redirectURL,
		AuthURL:     authURL,
	})
}

// publicAuthURL keeps the realm path of issuer but swaps in the public host.
func publicAuthURL(issuer, publicBaseURL string) (string, error) {
	iss, err := url.Parse(issuer)
	if err != nil {
		return "", err
	}
	return strings.TrimRight(publicBaseURL, "/") + strings.TrimRight(iss.Path, "/") + "/protocol/openid-connect/auth", nil
}
