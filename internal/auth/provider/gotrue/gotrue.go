// Package gotrue talks to a Supabase GoTrue auth server over its REST API.
package gotrue

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"claimwise-auth/internal/auth"
	"claimwise-auth/internal/auth/provider"
)

const maxBodyBytes = 1 << 20

// Client is a GoTrue REST client. It is safe for concurrent use and holds
// no per-user state; tokens are always passed in by the caller.
type Client struct {
	baseURL *url.URL
	apiKey  string
	http    *http.Client
	now     func() time.Time
}

// New builds a client for a Supabase project URL such as
// https://xyz.supabase.co. apiKey is the project's anon key.
func New(projectURL string, apiKey string, timeout time.Duration) (*Client, error) {
	if projectURL == "" || apiKey == "" {
		return nil, errors.New("gotrue config missing required fields")
	}
	u, err := url.Parse(strings.TrimRight(projectURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("gotrue: parse project url: %w", err)
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL: u,
		apiKey:  apiKey,
		http:    &http.Client{Timeout: timeout},
		now:     time.Now,
	}, nil
}

var _ provider.IdentityProvider = (*Client)(nil)

func (c *Client) SignUp(ctx context.Context, req provider.SignUpRequest) (*provider.AuthResponse, error) {
	body := signUpBody{
		Email:    req.Email,
		Password: req.Password,
		Data:     req.Metadata,
	}

	query := url.Values{}
	if req.RedirectURL != "" {
		query.Set("redirect_to", req.RedirectURL)
	}

	raw, err := c.do(ctx, http.MethodPost, "/auth/v1/signup", query, "", body)
	if err != nil {
		return nil, err
	}

	// With autoconfirm on GoTrue answers with a session, otherwise with the
	// bare user object.
	var probe struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.Unmarshal(raw, &probe); err != nil {
		return nil, fmt.Errorf("gotrue: decode signup response: %w", err)
	}
	if probe.AccessToken != "" {
		return c.decodeSessionResponse(raw)
	}

	var u userJSON
	if err := json.Unmarshal(raw, &u); err != nil {
		return nil, fmt.Errorf("gotrue: decode signup user: %w", err)
	}
	if u.ID == "" {
		return &provider.AuthResponse{}, nil
	}
	return &provider.AuthResponse{User: u.identity()}, nil
}

func (c *Client) SignInWithPassword(ctx context.Context, email, password string) (*provider.AuthResponse, error) {
	return c.token(ctx, "password", map[string]string{
		"email":    email,
		"password": password,
	})
}

func (c *Client) RefreshSession(ctx context.Context, refreshToken string) (*auth.Session, error) {
	res, err := c.token(ctx, "refresh_token", map[string]string{
		"refresh_token": refreshToken,
	})
	if err != nil {
		return nil, err
	}
	return res.Session, nil
}

// ExchangePKCE trades an authorization code from the authorize redirect for
// a session.
func (c *Client) ExchangePKCE(ctx context.Context, code, codeVerifier string) (*provider.AuthResponse, error) {
	return c.token(ctx, "pkce", map[string]string{
		"auth_code":     code,
		"code_verifier": codeVerifier,
	})
}

func (c *Client) GetUser(ctx context.Context, accessToken string) (*auth.Identity, error) {
	raw, err := c.do(ctx, http.MethodGet, "/auth/v1/user", nil, accessToken, nil)
	if err != nil {
		return nil, err
	}
	var u userJSON
	if err := json.Unmarshal(raw, &u); err != nil {
		return nil, fmt.Errorf("gotrue: decode user: %w", err)
	}
	return u.identity(), nil
}

func (c *Client) SignOut(ctx context.Context, accessToken string) error {
	_, err := c.do(ctx, http.MethodPost, "/auth/v1/logout", nil, accessToken, nil)
	return err
}

// AuthorizeURL builds the redirect that starts an OAuth login through
// GoTrue for the named external provider.
func (c *Client) AuthorizeURL(providerName, redirectTo, codeChallenge string, extra url.Values) string {
	u := c.endpoint("/auth/v1/authorize")
	q := url.Values{}
	for k, vs := range extra {
		for _, v := range vs {
			q.Add(k, v)
		}
	}
	q.Set("provider", providerName)
	q.Set("redirect_to", redirectTo)
	q.Set("code_challenge", codeChallenge)
	q.Set("code_challenge_method", "s256")
	u.RawQuery = q.Encode()
	return u.String()
}

func (c *Client) token(ctx context.Context, grantType string, body any) (*provider.AuthResponse, error) {
	raw, err := c.do(ctx, http.MethodPost, "/auth/v1/token", url.Values{"grant_type": {grantType}}, "", body)
	if err != nil {
		return nil, err
	}
	return c.decodeSessionResponse(raw)
}

func (c *Client) decodeSessionResponse(raw []byte) (*provider.AuthResponse, error) {
	var s sessionJSON
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("gotrue: decode session: %w", err)
	}
	if s.AccessToken == "" {
		return nil, errors.New("gotrue: response carried no access token")
	}

	sess := s.session(c.now())
	return &provider.AuthResponse{User: sess.User, Session: sess}, nil
}

func (c *Client) endpoint(path string) *url.URL {
	u := *c.baseURL
	u.Path = strings.TrimRight(u.Path, "/") + path
	return &u
}

func (c *Client) do(
	ctx context.Context,
	method string,
	path string,
	query url.Values,
	accessToken string,
	body any,
) ([]byte, error) {
	u := c.endpoint(path)
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("gotrue: encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
	if err != nil {
		return nil, fmt.Errorf("gotrue: build request: %w", err)
	}
	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	bearer := c.apiKey
	if accessToken != "" {
		bearer = accessToken
	}
	req.Header.Set("Authorization", "Bearer "+bearer)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("gotrue: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("gotrue: read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return nil, decodeError(resp.StatusCode, raw)
	}
	return raw, nil
}
