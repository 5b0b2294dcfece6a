package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/attaboy/strokecheck/internal/session"
	"github.com/google/uuid"
)

// CookieName is the browser session cookie.
const CookieName = "strokecheck_session"

// Tracker binds signed tokens to server-side sessions. A token is only
// accepted while its session id is still present in the store, so
// logging out revokes it.
type Tracker struct {
	jwt          *JWTManager
	store        session.Store
	cookieSecure bool
}

// NewTracker creates a Tracker.
func NewTracker(jwtMgr *JWTManager, store session.Store, cookieSecure bool) *Tracker {
	return &Tracker{jwt: jwtMgr, store: store, cookieSecure: cookieSecure}
}

// Issue creates a session for username and returns its signed token.
func (t *Tracker) Issue(ctx context.Context, realm Realm, username string) (string, time.Time, error) {
	id := uuid.NewString()
	token, expiresAt, err := t.jwt.GenerateToken(realm, username, id)
	if err != nil {
		return "", time.Time{}, err
	}

	s := session.Session{
		ID:        id,
		Username:  username,
		CreatedAt: time.Now().UTC(),
		ExpiresAt: expiresAt,
	}
	if err := t.store.Put(ctx, s); err != nil {
		return "", time.Time{}, fmt.Errorf("store session: %w", err)
	}
	return token, expiresAt, nil
}

// Resolve validates token for realm and returns its live session.
func (t *Tracker) Resolve(ctx context.Context, realm Realm, token string) (*session.Session, error) {
	claims, err := t.jwt.ValidateTokenForRealm(token, realm)
	if err != nil {
		return nil, err
	}
	s, err := t.store.Get(ctx, claims.ID)
	if err != nil {
		return nil, err
	}
	if s.Username != claims.Subject {
		return nil, errors.New("session subject mismatch")
	}
	return s, nil
}

// Revoke deletes the session behind token. Invalid tokens are ignored.
func (t *Tracker) Revoke(ctx context.Context, token string) error {
	claims, err := t.jwt.ValidateToken(token)
	if err != nil {
		return nil
	}
	return t.store.Delete(ctx, claims.ID)
}

// Login starts a browser session for username and sets the cookie.
func (t *Tracker) Login(ctx context.Context, w http.ResponseWriter, username string) error {
	token, expiresAt, err := t.Issue(ctx, RealmWeb, username)
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		Expires:  expiresAt,
		HttpOnly: true,
		Secure:   t.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// Authenticated returns the browser session of r, if any.
func (t *Tracker) Authenticated(r *http.Request) (*session.Session, bool) {
	c, err := r.Cookie(CookieName)
	if err != nil || c.Value == "" {
		return nil, false
	}
	s, err := t.Resolve(r.Context(), RealmWeb, c.Value)
	if err != nil {
		return nil, false
	}
	return s, true
}

// Logout revokes the browser session of r and clears the cookie.
func (t *Tracker) Logout(w http.ResponseWriter, r *http.Request) error {
	var err error
	if c, cerr := r.Cookie(CookieName); cerr == nil && c.Value != "" {
		err = t.Revoke(r.Context(), c.Value)
	}
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   t.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
	return err
}
