package resolver

import (
	"context"

	"claimwise-auth/internal/auth"
	"claimwise-auth/internal/users"
)

// Resolver maps a provider identity onto its application user, creating
// the row the first time the identity is seen. It is the ONLY place where
// identity-to-user mapping logic lives.
type Resolver interface {
	Resolve(
		ctx context.Context,
		identity *auth.Identity,
		nameOverride string,
	) (users.User, error)
}

// Syncer is the best-effort form used on the login path: it never fails.
type Syncer interface {
	Sync(ctx context.Context, identity *auth.Identity, nameOverride string)
}
