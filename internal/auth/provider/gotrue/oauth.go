package gotrue

import (
	"context"
	"errors"
	"net/url"

	"claimwise-auth/internal/auth/provider"
)

// OAuthProvider starts an external login (google, github, ...) through
// GoTrue's authorize endpoint and finishes it with a PKCE exchange.
type OAuthProvider struct {
	client      *Client
	name        string
	callbackURL string
	params      url.Values
}

var _ provider.OAuthProvider = (*OAuthProvider)(nil)

// OAuth returns the redirect-based login for one external provider.
// callbackURL is this service's /oauth/callback/<name> URL; params are
// forwarded to the external provider on every authorize request.
func (c *Client) OAuth(name string, callbackURL string, params url.Values) *OAuthProvider {
	return &OAuthProvider{
		client:      c,
		name:        name,
		callbackURL: callbackURL,
		params:      params,
	}
}

func (p *OAuthProvider) Name() string {
	return p.name
}

// AuthCodeURL carries state inside redirect_to because GoTrue does not echo
// a client state parameter back.
func (p *OAuthProvider) AuthCodeURL(state string, codeChallenge string) string {
	redirect, err := url.Parse(p.callbackURL)
	if err != nil {
		redirect = &url.URL{Path: p.callbackURL}
	}
	q := redirect.Query()
	q.Set("state", state)
	redirect.RawQuery = q.Encode()

	return p.client.AuthorizeURL(p.name, redirect.String(), codeChallenge, p.params)
}

func (p *OAuthProvider) ExchangeCode(
	ctx context.Context,
	code string,
	codeVerifier string,
) (*provider.AuthResponse, error) {
	res, err := p.client.ExchangePKCE(ctx, code, codeVerifier)
	if err != nil {
		return nil, err
	}
	if res.User == nil {
		return nil, errors.New("gotrue: pkce exchange returned no user")
	}
	if res.User.Provider == "" {
		res.User.Provider = p.name
	}
	return res, nil
}
