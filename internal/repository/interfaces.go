package repository

import (
	"context"

	"github.com/attaboy/strokecheck/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX abstracts pgx.Tx and pgxpool.Pool so queries work with both.
type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

// CredentialStore persists the username → credential mapping.
type CredentialStore interface {
	// Load returns every stored credential. A missing store is empty.
	Load(ctx context.Context) (domain.Credentials, error)

	// Save replaces the stored mapping with creds.
	Save(ctx context.Context, creds domain.Credentials) error

	// Update runs a load-modify-save cycle that no other Update or Save can
	// interleave with. If fn returns an error nothing is written.
	Update(ctx context.Context, fn func(creds domain.Credentials) error) error

	// Ping reports whether the backing storage is reachable.
	Ping(ctx context.Context) error
}
