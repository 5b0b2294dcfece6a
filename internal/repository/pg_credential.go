package repository

import (
	"context"
	"fmt"

	"github.com/attaboy/strokecheck/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgCredentialStore implements CredentialStore on the credentials table.
type PgCredentialStore struct {
	pool *pgxpool.Pool
}

// NewPgCredentialStore creates a new PgCredentialStore.
func NewPgCredentialStore(pool *pgxpool.Pool) *PgCredentialStore {
	return &PgCredentialStore{pool: pool}
}

// Load returns all rows of the credentials table.
func (s *PgCredentialStore) Load(ctx context.Context) (domain.Credentials, error) {
	return loadCredentials(ctx, s.pool)
}

// Save replaces the table contents with creds in one transaction.
func (s *PgCredentialStore) Save(ctx context.Context, creds domain.Credentials) error {
	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		if err := lockCredentials(ctx, tx); err != nil {
			return err
		}
		return saveCredentials(ctx, tx, creds)
	})
}

// Update locks the table for the duration of the load-modify-save cycle.
func (s *PgCredentialStore) Update(ctx context.Context, fn func(creds domain.Credentials) error) error {
	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		if err := lockCredentials(ctx, tx); err != nil {
			return err
		}
		creds, err := loadCredentials(ctx, tx)
		if err != nil {
			return err
		}
		if err := fn(creds); err != nil {
			return err
		}
		return saveCredentials(ctx, tx, creds)
	})
}

// Ping checks database connectivity.
func (s *PgCredentialStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func lockCredentials(ctx context.Context, tx pgx.Tx) error {
	if _, err := tx.Exec(ctx, `LOCK TABLE credentials IN EXCLUSIVE MODE`); err != nil {
		return fmt.Errorf("lock credentials: %w", err)
	}
	return nil
}

func loadCredentials(ctx context.Context, db DBTX) (domain.Credentials, error) {
	rows, err := db.Query(ctx, `SELECT username, password FROM credentials`)
	if err != nil {
		return nil, fmt.Errorf("query credentials: %w", err)
	}
	defer rows.Close()

	creds := domain.Credentials{}
	for rows.Next() {
		var username string
		var c domain.Credential
		if err := rows.Scan(&username, &c.Password); err != nil {
			return nil, fmt.Errorf("scan credential: %w", err)
		}
		creds[username] = c
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate credentials: %w", err)
	}
	return creds, nil
}

func saveCredentials(ctx context.Context, db DBTX, creds domain.Credentials) error {
	usernames := make([]string, 0, len(creds))
	for username := range creds {
		usernames = append(usernames, username)
	}

	if _, err := db.Exec(ctx,
		`DELETE FROM credentials WHERE NOT (username = ANY($1))`, usernames); err != nil {
		return fmt.Errorf("prune credentials: %w", err)
	}

	for username, c := range creds {
		_, err := db.Exec(ctx, `
			INSERT INTO credentials (username, password)
			VALUES ($1, $2)
			ON CONFLICT (username) DO UPDATE SET password = EXCLUDED.password, updated_at = now()
			WHERE credentials.password <> EXCLUDED.password`,
			username, c.Password)
		if err != nil {
			return fmt.Errorf("upsert credential %s: %w", username, err)
		}
	}
	return nil
}
