// Package events publishes account lifecycle notifications for other
// ClaimWise services.
package events

import (
	"context"

	"claimwise-auth/internal/users"
)

// Publisher announces newly provisioned application users.
type Publisher interface {
	UserProvisioned(ctx context.Context, u users.User) error
}

// Nop drops every event. It is used when no broker is configured.
type Nop struct{}

func (Nop) UserProvisioned(context.Context, users.User) error { return nil }
