package db

import (
	"context"
)

const postgresMigration = `
CREATE TABLE IF NOT EXISTS public.users (
    id text PRIMARY KEY,
    email text NOT NULL,
    name text NOT NULL,
    created_at timestamptz NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS users_email_lower_idx
ON public.users (LOWER(email));
`

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS users (
    id TEXT PRIMARY KEY,
    email TEXT NOT NULL,
    name TEXT NOT NULL,
    created_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS users_email_lower_idx
ON users (LOWER(email));
`

// Migrate creates the application user table. It is idempotent.
func (d *DB) Migrate(ctx context.Context) error {
	stmt := postgresMigration
	if d.Dialect == SQLite {
		stmt = sqliteMigration
	}
	_, err := d.ExecContext(ctx, stmt)
	return err
}
