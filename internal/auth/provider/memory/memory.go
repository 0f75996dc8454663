// Package memory is an in-process identity provider for local development
// and tests. It mimics the managed provider's observable behaviour:
// confirmation-required sign-ups return no session, and failures are
// reported as *provider.Error with the same codes.
package memory

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"claimwise-auth/internal/auth"
	"claimwise-auth/internal/auth/credentials"
	"claimwise-auth/internal/auth/provider"
	"claimwise-auth/internal/utils"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const tokenBytes = 32

type account struct {
	identity     auth.Identity
	passwordHash string
}

type tokenGrant struct {
	userID    string
	expiresAt time.Time
}

// Provider keeps accounts and tokens in memory.
type Provider struct {
	mu            sync.Mutex
	byEmail       map[string]*account
	accessTokens  map[string]tokenGrant
	refreshTokens map[string]string

	autoConfirm bool
	tokenTTL    time.Duration
	hasher      credentials.Hasher
	now         func() time.Time
}

type Option func(*Provider)

// WithAutoConfirm issues a session on sign-up instead of requiring email
// confirmation.
func WithAutoConfirm(v bool) Option {
	return func(p *Provider) { p.autoConfirm = v }
}

func WithClock(now func() time.Time) Option {
	return func(p *Provider) { p.now = now }
}

func New(opts ...Option) *Provider {
	p := &Provider{
		byEmail:       make(map[string]*account),
		accessTokens:  make(map[string]tokenGrant),
		refreshTokens: make(map[string]string),
		autoConfirm:   true,
		tokenTTL:      time.Hour,
		hasher:        credentials.NewHasher(bcrypt.MinCost),
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

var _ provider.IdentityProvider = (*Provider)(nil)

func (p *Provider) SignUp(_ context.Context, req provider.SignUpRequest) (*provider.AuthResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if !strings.Contains(email, "@") {
		return nil, &provider.Error{Status: http.StatusBadRequest, Code: "email_address_invalid", Message: "Unable to validate email address: invalid format"}
	}

	hash, err := p.hasher.Hash(req.Password)
	switch {
	case errors.Is(err, credentials.ErrWeakPassword):
		return nil, &provider.Error{Status: http.StatusUnprocessableEntity, Code: "weak_password", Message: "Password should be at least 6 characters"}
	case errors.Is(err, bcrypt.ErrPasswordTooLong):
		return nil, &provider.Error{Status: http.StatusUnprocessableEntity, Code: "validation_failed", Message: "Password cannot be longer than 72 bytes"}
	case err != nil:
		return nil, fmt.Errorf("memory: hash password: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if _, exists := p.byEmail[email]; exists {
		return nil, &provider.Error{Status: http.StatusUnprocessableEntity, Code: "user_already_exists", Message: "User already registered"}
	}

	meta := make(map[string]any, len(req.Metadata))
	for k, v := range req.Metadata {
		meta[k] = v
	}

	acc := &account{
		identity: auth.Identity{
			ID:             uuid.NewString(),
			Email:          email,
			Provider:       "email",
			Metadata:       meta,
			EmailConfirmed: p.autoConfirm,
		},
		passwordHash: hash,
	}
	p.byEmail[email] = acc

	identity := acc.identity
	if !p.autoConfirm {
		return &provider.AuthResponse{User: &identity}, nil
	}
	return &provider.AuthResponse{User: &identity, Session: p.issueLocked(acc)}, nil
}

func (p *Provider) SignInWithPassword(_ context.Context, email, password string) (*provider.AuthResponse, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	acc, ok := p.byEmail[strings.ToLower(strings.TrimSpace(email))]
	if !ok || p.hasher.Verify(acc.passwordHash, password) != nil {
		return nil, &provider.Error{Status: http.StatusBadRequest, Code: "invalid_credentials", Message: "Invalid login credentials"}
	}
	if !acc.identity.EmailConfirmed {
		return nil, &provider.Error{Status: http.StatusBadRequest, Code: "email_not_confirmed", Message: "Email not confirmed"}
	}

	identity := acc.identity
	return &provider.AuthResponse{User: &identity, Session: p.issueLocked(acc)}, nil
}

func (p *Provider) GetUser(_ context.Context, accessToken string) (*auth.Identity, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	grant, ok := p.accessTokens[accessToken]
	if !ok || p.now().After(grant.expiresAt) {
		return nil, &provider.Error{Status: http.StatusUnauthorized, Code: "bad_jwt", Message: "invalid JWT"}
	}
	acc := p.findLocked(grant.userID)
	if acc == nil {
		return nil, &provider.Error{Status: http.StatusNotFound, Code: "user_not_found", Message: "User not found"}
	}
	identity := acc.identity
	return &identity, nil
}

func (p *Provider) RefreshSession(_ context.Context, refreshToken string) (*auth.Session, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	userID, ok := p.refreshTokens[refreshToken]
	if !ok {
		return nil, &provider.Error{Status: http.StatusBadRequest, Code: "refresh_token_not_found", Message: "Invalid Refresh Token: Refresh Token Not Found"}
	}
	delete(p.refreshTokens, refreshToken)

	acc := p.findLocked(userID)
	if acc == nil {
		return nil, &provider.Error{Status: http.StatusNotFound, Code: "user_not_found", Message: "User not found"}
	}
	return p.issueLocked(acc), nil
}

func (p *Provider) SignOut(_ context.Context, accessToken string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	grant, ok := p.accessTokens[accessToken]
	if !ok {
		return nil
	}
	delete(p.accessTokens, accessToken)
	for rt, uid := range p.refreshTokens {
		if uid == grant.userID {
			delete(p.refreshTokens, rt)
		}
	}
	return nil
}

// ConfirmEmail marks an account as confirmed, as following the emailed
// link would.
func (p *Provider) ConfirmEmail(email string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	acc, ok := p.byEmail[strings.ToLower(strings.TrimSpace(email))]
	if !ok {
		return false
	}
	acc.identity.EmailConfirmed = true
	return true
}

func (p *Provider) findLocked(userID string) *account {
	for _, acc := range p.byEmail {
		if acc.identity.ID == userID {
			return acc
		}
	}
	return nil
}

func (p *Provider) issueLocked(acc *account) *auth.Session {
	access := utils.RandomString(tokenBytes)
	refresh := utils.RandomString(tokenBytes)
	expiresAt := p.now().Add(p.tokenTTL).UTC()

	p.accessTokens[access] = tokenGrant{userID: acc.identity.ID, expiresAt: expiresAt}
	p.refreshTokens[refresh] = acc.identity.ID

	identity := acc.identity
	return &auth.Session{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "bearer",
		ExpiresAt:    expiresAt,
		User:         &identity,
	}
}
