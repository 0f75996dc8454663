package session

import (
	"context"
	"time"
)

// Session represents an authenticated browser session. It points at the
// application user and carries the identity provider's tokens, so the
// browser only ever holds the opaque session id.
type Session struct {
	SessionID string    `json:"session_id"`
	UserID    string    `json:"user_id"` // references users.id
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"` // absolute expiry time

	// Provider token material; empty for direct OIDC logins.
	AccessToken    string    `json:"access_token,omitempty"`
	RefreshToken   string    `json:"refresh_token,omitempty"`
	TokenExpiresAt time.Time `json:"token_expires_at,omitempty"`
}

// HasProviderTokens reports whether the session can call the provider on
// the user's behalf.
func (s *Session) HasProviderTokens() bool {
	return s != nil && s.AccessToken != ""
}

// Store defines how sessions are stored and retrieved.
// Get returns (nil, nil) when the session does not exist.
type Store interface {
	Create(ctx context.Context, s Session) error
	Get(ctx context.Context, sessionID string) (*Session, error)
	Update(ctx context.Context, s Session) error
	Delete(ctx context.Context, sessionID string) error
}
