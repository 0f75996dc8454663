package signup

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"claimwise-auth/internal/auth"
	"claimwise-auth/internal/auth/credentials"
	"claimwise-auth/internal/auth/provider"
	"claimwise-auth/internal/auth/resolver"
	"claimwise-auth/internal/users"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type signUpReply struct {
	res *provider.AuthResponse
	err error
}

// scriptedProvider answers SignUp calls from a queue and records every
// request it saw.
type scriptedProvider struct {
	replies  []signUpReply
	requests []provider.SignUpRequest
	signIns  int
}

func (p *scriptedProvider) SignUp(_ context.Context, req provider.SignUpRequest) (*provider.AuthResponse, error) {
	p.requests = append(p.requests, req)
	if len(p.replies) == 0 {
		return nil, errors.New("unexpected SignUp call")
	}
	r := p.replies[0]
	p.replies = p.replies[1:]
	return r.res, r.err
}

func (p *scriptedProvider) SignInWithPassword(_ context.Context, email, _ string) (*provider.AuthResponse, error) {
	p.signIns++
	return &provider.AuthResponse{User: &auth.Identity{ID: "u-1", Email: email}}, nil
}

func (p *scriptedProvider) GetUser(context.Context, string) (*auth.Identity, error) {
	return nil, errors.New("not implemented")
}

func (p *scriptedProvider) RefreshSession(context.Context, string) (*auth.Session, error) {
	return nil, errors.New("not implemented")
}

func (p *scriptedProvider) SignOut(context.Context, string) error { return nil }

// memStore is a users.Store with an optional insert failure.
type memStore struct {
	rows      map[string]users.User
	insertErr error
}

func (m *memStore) GetUser(_ context.Context, id string) (users.User, error) {
	u, ok := m.rows[id]
	if !ok {
		return users.User{}, users.ErrNotFound
	}
	return u, nil
}

func (m *memStore) InsertUser(_ context.Context, u users.User) (bool, error) {
	if m.insertErr != nil {
		return false, m.insertErr
	}
	if _, ok := m.rows[u.ID]; ok {
		return false, nil
	}
	m.rows[u.ID] = u
	return true, nil
}

func newHarness(replies ...signUpReply) (*Orchestrator, *scriptedProvider, *memStore) {
	p := &scriptedProvider{replies: replies}
	store := &memStore{rows: make(map[string]users.User)}
	o := NewOrchestrator(p, resolver.NewSynchronizer(store, nil), "https://app.example/dashboard")
	return o, p, store
}

var janeSignup = credentials.Signup{Email: "a@b.com", Password: "secret1", FullName: "Jane Doe"}

func dbFailure() error {
	return &provider.Error{Status: http.StatusInternalServerError, Message: "Database error saving new user"}
}

func requireKind(t *testing.T, err error, kind Kind) *Error {
	t.Helper()
	var serr *Error
	require.True(t, errors.As(err, &serr), "expected *signup.Error, got %v", err)
	assert.Equal(t, kind, serr.Kind)
	return serr
}

// Scenario A: strategy 1 succeeds.
func TestAttemptFullMetadataSuccess(t *testing.T) {
	o, p, store := newHarness(signUpReply{res: &provider.AuthResponse{
		User: &auth.Identity{ID: "u-1", Email: "a@b.com", Metadata: auth.NameMetadata("Jane Doe")},
		Session: &auth.Session{AccessToken: "at"},
	}})

	res, err := o.Attempt(context.Background(), janeSignup)
	require.NoError(t, err)

	assert.Equal(t, StrategyFullMetadata, res.Strategy)
	assert.False(t, res.RequiresEmailConfirmation)
	require.Len(t, p.requests, 1)
	assert.Equal(t, auth.NameMetadata("Jane Doe"), p.requests[0].Metadata)
	assert.Equal(t, "https://app.example/dashboard", p.requests[0].RedirectURL)

	assert.Equal(t, users.User{ID: "u-1", Email: "a@b.com", Name: "Jane Doe", CreatedAt: store.rows["u-1"].CreatedAt}, store.rows["u-1"])
}

// Scenario C: database failure, then a metadata-less success with no session.
func TestAttemptFallsBackToMinimal(t *testing.T) {
	o, p, store := newHarness(
		signUpReply{err: dbFailure()},
		signUpReply{res: &provider.AuthResponse{User: &auth.Identity{ID: "u-2", Email: "a@b.com"}}},
	)

	res, err := o.Attempt(context.Background(), janeSignup)
	require.NoError(t, err)

	assert.Equal(t, StrategyMinimal, res.Strategy)
	assert.True(t, res.RequiresEmailConfirmation)
	assert.Nil(t, res.Session)

	require.Len(t, p.requests, 2, "second strategy runs exactly once")
	assert.Nil(t, p.requests[1].Metadata)
	assert.Equal(t, "Jane Doe", store.rows["u-2"].Name, "sync uses the entered name")
}

func TestAttemptDatabaseFailureByCode(t *testing.T) {
	o, p, _ := newHarness(
		signUpReply{err: &provider.Error{Status: 500, Code: "unexpected_failure", Message: "Internal error"}},
		signUpReply{res: &provider.AuthResponse{User: &auth.Identity{ID: "u-2"}}},
	)

	_, err := o.Attempt(context.Background(), janeSignup)
	require.NoError(t, err)
	assert.Len(t, p.requests, 2)
}

func TestAttemptNonDatabaseErrorStops(t *testing.T) {
	o, p, store := newHarness(
		signUpReply{err: &provider.Error{Status: 400, Message: "Invalid email"}},
		signUpReply{res: &provider.AuthResponse{User: &auth.Identity{ID: "never"}}},
	)

	_, err := o.Attempt(context.Background(), janeSignup)
	serr := requireKind(t, err, KindInvalidEmail)
	assert.Equal(t, MsgInvalidEmail, serr.Message)

	assert.Len(t, p.requests, 1, "no second strategy on a non-database error")
	assert.Empty(t, store.rows)
}

func TestAttemptBothStrategiesFail(t *testing.T) {
	o, p, store := newHarness(
		signUpReply{err: dbFailure()},
		signUpReply{err: dbFailure()},
	)

	_, err := o.Attempt(context.Background(), janeSignup)
	serr := requireKind(t, err, KindProviderConfiguration)
	assert.Equal(t, MsgProviderConfiguration, serr.Message)
	assert.Contains(t, serr.Message, "Google")

	assert.Len(t, p.requests, 2, "no third network call")
	assert.Empty(t, store.rows)
}

func TestAttemptMinimalReturnsNoUser(t *testing.T) {
	o, p, _ := newHarness(
		signUpReply{err: dbFailure()},
		signUpReply{res: &provider.AuthResponse{}},
	)

	_, err := o.Attempt(context.Background(), janeSignup)
	requireKind(t, err, KindProviderConfiguration)
	assert.Len(t, p.requests, 2)
}

func TestAttemptFirstReturnsNoUser(t *testing.T) {
	o, p, _ := newHarness(signUpReply{res: &provider.AuthResponse{}})

	_, err := o.Attempt(context.Background(), janeSignup)
	serr := requireKind(t, err, KindUnknown)
	assert.Contains(t, serr.Message, "provider returned no user")
	assert.Len(t, p.requests, 1)
}

func TestAttemptAlreadyRegistered(t *testing.T) {
	o, _, _ := newHarness(signUpReply{err: &provider.Error{Status: 422, Code: "user_already_exists", Message: "User already registered"}})

	_, err := o.Attempt(context.Background(), janeSignup)
	requireKind(t, err, KindAlreadyRegistered)
}

func TestAttemptSucceedsWhenSyncFails(t *testing.T) {
	o, _, store := newHarness(signUpReply{res: &provider.AuthResponse{
		User:    &auth.Identity{ID: "u-1", Email: "a@b.com"},
		Session: &auth.Session{AccessToken: "at"},
	}})
	store.insertErr = errors.New("insert rejected")

	res, err := o.Attempt(context.Background(), janeSignup)
	require.NoError(t, err)
	assert.Equal(t, "u-1", res.Identity.ID)
	assert.Empty(t, store.rows)
}

func TestSignInIsSingleCall(t *testing.T) {
	o, p, _ := newHarness()

	res, err := o.SignIn(context.Background(), "a@b.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "a@b.com", res.User.Email)
	assert.Equal(t, 1, p.signIns)
	assert.Empty(t, p.requests)
}
