package resolver

import (
	"context"
	"errors"
	"fmt"
	"time"

	"claimwise-auth/internal/auth"
	"claimwise-auth/internal/events"
	"claimwise-auth/internal/logger"
	"claimwise-auth/internal/users"
)

// Synchronizer keeps the application users table in step with provider
// identities. The store enforces uniqueness; this type only decides the
// row contents.
type Synchronizer struct {
	store  users.Store
	events events.Publisher
	now    func() time.Time
}

var (
	_ Resolver = (*Synchronizer)(nil)
	_ Syncer   = (*Synchronizer)(nil)
)

func NewSynchronizer(store users.Store, publisher events.Publisher) *Synchronizer {
	if publisher == nil {
		publisher = events.Nop{}
	}
	return &Synchronizer{
		store:  store,
		events: publisher,
		now:    time.Now,
	}
}

func (s *Synchronizer) Resolve(
	ctx context.Context,
	identity *auth.Identity,
	nameOverride string,
) (users.User, error) {

	if identity == nil || identity.ID == "" {
		return users.User{}, errors.New("identity is nil or has no id")
	}

	// 1. Existing row: nothing to do
	existing, err := s.store.GetUser(ctx, identity.ID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, users.ErrNotFound) {
		return users.User{}, fmt.Errorf("lookup user: %w", err)
	}

	// 2. Insert if absent
	u := users.User{
		ID:        identity.ID,
		Email:     identity.Email,
		Name:      identity.DisplayName(nameOverride),
		CreatedAt: s.now().UTC(),
	}
	inserted, err := s.store.InsertUser(ctx, u)
	if err != nil {
		return users.User{}, fmt.Errorf("insert user: %w", err)
	}

	// 3. Lost a race with a concurrent sync: the other row wins
	if !inserted {
		logger.Debug("user already provisioned", map[string]any{
			"user_id": identity.ID,
		})
		if winner, err := s.store.GetUser(ctx, identity.ID); err == nil {
			return winner, nil
		}
		return u, nil
	}

	logger.Info("user provisioned", map[string]any{
		"user_id":  u.ID,
		"provider": identity.Provider,
	})

	if err := s.events.UserProvisioned(ctx, u); err != nil {
		logger.Warn("user.provisioned publish failed", map[string]any{
			"user_id": u.ID,
			"error":   err.Error(),
		})
	}

	return u, nil
}

// Sync runs Resolve and absorbs every failure. Authentication success must
// never depend on this bookkeeping write.
func (s *Synchronizer) Sync(ctx context.Context, identity *auth.Identity, nameOverride string) {
	if _, err := s.Resolve(ctx, identity, nameOverride); err != nil {
		fields := map[string]any{"error": err.Error()}
		if identity != nil {
			fields["user_id"] = identity.ID
		}
		logger.Error("user sync failed", fields)
	}
}
