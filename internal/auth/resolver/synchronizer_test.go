package resolver

import (
	"context"
	"errors"
	"sync"
	"testing"

	"claimwise-auth/internal/auth"
	"claimwise-auth/internal/db"
	"claimwise-auth/internal/logger"
	"claimwise-auth/internal/users"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type fakeStore struct {
	mu        sync.Mutex
	rows      map[string]users.User
	getErr    error
	insertErr error
	inserts   int
}

func newFakeStore() *fakeStore {
	return &fakeStore{rows: make(map[string]users.User)}
}

func (f *fakeStore) GetUser(_ context.Context, id string) (users.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return users.User{}, f.getErr
	}
	u, ok := f.rows[id]
	if !ok {
		return users.User{}, users.ErrNotFound
	}
	return u, nil
}

func (f *fakeStore) InsertUser(_ context.Context, u users.User) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inserts++
	if f.insertErr != nil {
		return false, f.insertErr
	}
	if _, ok := f.rows[u.ID]; ok {
		return false, nil
	}
	f.rows[u.ID] = u
	return true, nil
}

type recordingPublisher struct {
	mu   sync.Mutex
	sent []users.User
	err  error
}

func (p *recordingPublisher) UserProvisioned(_ context.Context, u users.User) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sent = append(p.sent, u)
	return p.err
}

func observeLogs(t *testing.T) *observer.ObservedLogs {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	logger.Set(zap.New(core))
	t.Cleanup(func() { logger.Set(nil) })
	return logs
}

func TestResolveCreatesUserWithDisplayName(t *testing.T) {
	store := newFakeStore()
	pub := &recordingPublisher{}
	s := NewSynchronizer(store, pub)

	u, err := s.Resolve(context.Background(), &auth.Identity{
		ID:       "u-1",
		Email:    "a@b.com",
		Metadata: map[string]any{auth.MetaName: "Meta Name"},
	}, "")
	require.NoError(t, err)

	assert.Equal(t, "Meta Name", u.Name)
	assert.Equal(t, "a@b.com", store.rows["u-1"].Email)
	require.Len(t, pub.sent, 1)
	assert.Equal(t, "u-1", pub.sent[0].ID)
}

func TestResolveOverrideWins(t *testing.T) {
	store := newFakeStore()
	s := NewSynchronizer(store, nil)

	u, err := s.Resolve(context.Background(), &auth.Identity{ID: "u-1", Email: "a@b.com"}, "Jane Doe")
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe", u.Name)
}

func TestResolveExistingIsNoop(t *testing.T) {
	store := newFakeStore()
	store.rows["u-1"] = users.User{ID: "u-1", Email: "a@b.com", Name: "Original"}
	pub := &recordingPublisher{}
	s := NewSynchronizer(store, pub)

	u, err := s.Resolve(context.Background(), &auth.Identity{ID: "u-1", Email: "a@b.com"}, "New Name")
	require.NoError(t, err)

	assert.Equal(t, "Original", u.Name)
	assert.Zero(t, store.inserts)
	assert.Empty(t, pub.sent)
}

func TestResolveRejectsMissingIdentity(t *testing.T) {
	s := NewSynchronizer(newFakeStore(), nil)

	_, err := s.Resolve(context.Background(), nil, "")
	assert.Error(t, err)
	_, err = s.Resolve(context.Background(), &auth.Identity{Email: "a@b.com"}, "")
	assert.Error(t, err)
}

func TestSyncAbsorbsInsertFailure(t *testing.T) {
	logs := observeLogs(t)
	store := newFakeStore()
	store.insertErr = errors.New("permission denied for table users")
	s := NewSynchronizer(store, nil)

	assert.NotPanics(t, func() {
		s.Sync(context.Background(), &auth.Identity{ID: "u-1", Email: "a@b.com"}, "")
	})

	entries := logs.FilterMessage("user sync failed").All()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.ErrorLevel, entries[0].Level)
	assert.Contains(t, entries[0].ContextMap()["error"], "insert user")
}

func TestSyncAbsorbsLookupFailure(t *testing.T) {
	logs := observeLogs(t)
	store := newFakeStore()
	store.getErr = errors.New("connection refused")
	s := NewSynchronizer(store, nil)

	s.Sync(context.Background(), &auth.Identity{ID: "u-1"}, "")

	assert.Zero(t, store.inserts)
	entries := logs.FilterMessage("user sync failed").All()
	require.Len(t, entries, 1)
	assert.Contains(t, entries[0].ContextMap()["error"], "lookup user")
}

func TestPublishFailureDoesNotFailResolve(t *testing.T) {
	logs := observeLogs(t)
	s := NewSynchronizer(newFakeStore(), &recordingPublisher{err: errors.New("nats down")})

	_, err := s.Resolve(context.Background(), &auth.Identity{ID: "u-1"}, "")
	require.NoError(t, err)
	assert.Equal(t, 1, logs.FilterMessage("user.provisioned publish failed").Len())
}

func TestSyncTwiceStoresOneRow(t *testing.T) {
	d, err := db.Open(context.Background(), "sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = d.Close() })

	pub := &recordingPublisher{}
	s := NewSynchronizer(db.NewUserStore(d), pub)
	identity := &auth.Identity{ID: "u-1", Email: "a@b.com", Metadata: auth.NameMetadata("Jane Doe")}

	s.Sync(context.Background(), identity, "")
	s.Sync(context.Background(), identity, "")

	var count int
	require.NoError(t, d.QueryRowContext(context.Background(), `SELECT COUNT(*) FROM users WHERE id = ?`, "u-1").Scan(&count))
	assert.Equal(t, 1, count)
	assert.Len(t, pub.sent, 1)
}

func TestConcurrentSyncPublishesOnce(t *testing.T) {
	store := newFakeStore()
	pub := &recordingPublisher{}
	s := NewSynchronizer(store, pub)
	identity := &auth.Identity{ID: "u-race", Email: "r@b.com"}

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Sync(context.Background(), identity, "")
		}()
	}
	wg.Wait()

	assert.Len(t, store.rows, 1)
	assert.Len(t, pub.sent, 1)
}
