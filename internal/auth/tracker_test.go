package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/attaboy/strokecheck/internal/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTracker() (*Tracker, *session.MemoryStore) {
	store := session.NewMemoryStore()
	return NewTracker(newTestJWTManager(), store, false), store
}

// loginCookie runs Login and returns the cookie it set.
func loginCookie(t *testing.T, tr *Tracker, username string) *http.Cookie {
	t.Helper()
	w := httptest.NewRecorder()
	require.NoError(t, tr.Login(context.Background(), w, username))

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	return cookies[0]
}

func TestTracker_LoginSetsCookie(t *testing.T) {
	tr, store := newTestTracker()
	c := loginCookie(t, tr, "alice")

	assert.Equal(t, CookieName, c.Name)
	assert.NotEmpty(t, c.Value)
	assert.True(t, c.HttpOnly)
	assert.Equal(t, "/", c.Path)
	assert.Equal(t, http.SameSiteLaxMode, c.SameSite)
	assert.Equal(t, 1, store.Len())
}

func TestTracker_Authenticated(t *testing.T) {
	tr, _ := newTestTracker()

	t.Run("no cookie", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/index", nil)
		_, ok := tr.Authenticated(r)
		assert.False(t, ok)
	})

	t.Run("valid cookie", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/index", nil)
		r.AddCookie(loginCookie(t, tr, "alice"))
		s, ok := tr.Authenticated(r)
		require.True(t, ok)
		assert.Equal(t, "alice", s.Username)
	})

	t.Run("tampered cookie", func(t *testing.T) {
		c := loginCookie(t, tr, "alice")
		c.Value += "x"
		r := httptest.NewRequest(http.MethodGet, "/index", nil)
		r.AddCookie(c)
		_, ok := tr.Authenticated(r)
		assert.False(t, ok)
	})

	t.Run("api token in cookie", func(t *testing.T) {
		token, _, err := tr.Issue(context.Background(), RealmAPI, "alice")
		require.NoError(t, err)
		r := httptest.NewRequest(http.MethodGet, "/index", nil)
		r.AddCookie(&http.Cookie{Name: CookieName, Value: token})
		_, ok := tr.Authenticated(r)
		assert.False(t, ok)
	})
}

func TestTracker_LogoutRevokesToken(t *testing.T) {
	tr, store := newTestTracker()
	c := loginCookie(t, tr, "alice")

	r := httptest.NewRequest(http.MethodGet, "/logout", nil)
	r.AddCookie(c)
	w := httptest.NewRecorder()
	require.NoError(t, tr.Logout(w, r))

	cleared := w.Result().Cookies()
	require.Len(t, cleared, 1)
	assert.Equal(t, CookieName, cleared[0].Name)
	assert.Empty(t, cleared[0].Value)
	assert.Equal(t, 0, store.Len())

	// the old cookie no longer authenticates even though its signature is valid
	r2 := httptest.NewRequest(http.MethodGet, "/index", nil)
	r2.AddCookie(c)
	_, ok := tr.Authenticated(r2)
	assert.False(t, ok)
}

func TestTracker_LogoutWithoutSession(t *testing.T) {
	tr, _ := newTestTracker()
	w := httptest.NewRecorder()
	require.NoError(t, tr.Logout(w, httptest.NewRequest(http.MethodGet, "/logout", nil)))
	assert.Len(t, w.Result().Cookies(), 1)
}

func TestTracker_ExpiredSession(t *testing.T) {
	store := session.NewMemoryStore()
	mgr := NewJWTManager("test-secret-key", time.Millisecond)
	tr := NewTracker(mgr, store, false)

	token, _, err := tr.Issue(context.Background(), RealmAPI, "alice")
	require.NoError(t, err)
	time.Sleep(5 * time.Millisecond)

	_, err = tr.Resolve(context.Background(), RealmAPI, token)
	assert.Error(t, err)
}

func TestTracker_CookieSecureFlag(t *testing.T) {
	tr := NewTracker(newTestJWTManager(), session.NewMemoryStore(), true)
	assert.True(t, loginCookie(t, tr, "alice").Secure)
}
