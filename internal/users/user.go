// Package users holds the application-owned user record that mirrors a
// provider identity.
package users

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound indicates no user row exists for the requested id.
var ErrNotFound = errors.New("user not found")

// User is the application row keyed by the provider-issued identity id.
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// Store persists application users. Uniqueness on ID is the store's job.
type Store interface {
	GetUser(ctx context.Context, id string) (User, error)
	// InsertUser inserts u unless a row with the same id exists. It reports
	// whether a row was written.
	InsertUser(ctx context.Context, u User) (bool, error)
}
