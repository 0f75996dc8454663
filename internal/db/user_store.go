package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"claimwise-auth/internal/users"
)

// UserStore implements users.Store over Postgres or SQLite.
type UserStore struct {
	db  *DB
	now func() time.Time
}

func NewUserStore(db *DB) *UserStore {
	return &UserStore{db: db, now: time.Now}
}

func (s *UserStore) GetUser(ctx context.Context, id string) (users.User, error) {
	var (
		u   users.User
		err error
	)

	switch s.db.Dialect {
	case SQLite:
		var createdMillis int64
		err = s.db.QueryRowContext(ctx, `
			SELECT id, email, name, created_at
			FROM users
			WHERE id = ?
		`, id).Scan(&u.ID, &u.Email, &u.Name, &createdMillis)
		u.CreatedAt = time.UnixMilli(createdMillis).UTC()
	default:
		err = s.db.QueryRowContext(ctx, `
			SELECT id, email, name, created_at
			FROM public.users
			WHERE id = $1
		`, id).Scan(&u.ID, &u.Email, &u.Name, &u.CreatedAt)
	}

	if errors.Is(err, sql.ErrNoRows) {
		return users.User{}, users.ErrNotFound
	}
	if err != nil {
		return users.User{}, fmt.Errorf("get user %s: %w", id, err)
	}
	return u, nil
}

// InsertUser relies on the primary key: a concurrent insert for the same id
// turns into a no-op and reports false.
func (s *UserStore) InsertUser(ctx context.Context, u users.User) (bool, error) {
	if u.ID == "" {
		return false, errors.New("insert user: missing id")
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = s.now().UTC()
	}

	var (
		res sql.Result
		err error
	)

	switch s.db.Dialect {
	case SQLite:
		res, err = s.db.ExecContext(ctx, `
			INSERT INTO users (id, email, name, created_at)
			VALUES (?, ?, ?, ?)
			ON CONFLICT (id) DO NOTHING
		`, u.ID, u.Email, u.Name, u.CreatedAt.UnixMilli())
	default:
		res, err = s.db.ExecContext(ctx, `
			INSERT INTO public.users (id, email, name, created_at)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (id) DO NOTHING
		`, u.ID, u.Email, u.Name, u.CreatedAt)
	}
	if err != nil {
		return false, fmt.Errorf("insert user %s: %w", u.ID, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("insert user %s: rows affected: %w", u.ID, err)
	}
	return n == 1, nil
}
