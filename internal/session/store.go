// Package session keeps server-side records of authenticated clients.
package session

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound is returned for unknown, expired or deleted sessions.
	ErrNotFound = errors.New("session not found")
	// ErrExpired is returned when storing a session that has already expired.
	ErrExpired = errors.New("session already expired")
)

// Session is the server-side state behind a session cookie.
type Session struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Expired reports whether the session is past its expiry at now.
func (s Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// Store abstracts session CRUD so sessions can live in memory or in an
// embedded database.
type Store interface {
	// Get returns the session, or ErrNotFound if it does not exist or
	// has expired.
	Get(ctx context.Context, id string) (*Session, error)
	// Put creates or replaces a session.
	Put(ctx context.Context, s Session) error
	// Delete removes a session. Deleting an unknown id is not an error.
	Delete(ctx context.Context, id string) error
	Close() error
}
