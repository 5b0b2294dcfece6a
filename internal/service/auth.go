package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/attaboy/strokecheck/internal/auth"
	"github.com/attaboy/strokecheck/internal/domain"
	"github.com/attaboy/strokecheck/internal/form"
	"github.com/attaboy/strokecheck/internal/guard"
	"github.com/attaboy/strokecheck/internal/infra"
	"github.com/attaboy/strokecheck/internal/repository"
	"golang.org/x/crypto/bcrypt"
)

// User-facing auth messages.
const (
	MsgInvalidCredentials  = "Invalid credentials. Please try again."
	MsgUsernameTaken       = "Username already exists."
	MsgCredentialsRequired = "Username and password are required."
	MsgRegistrationFailed  = "Registration failed. Please try again."
	MsgTooManyAttempts     = "Too many login attempts. Please try again later."
)

// AuthService handles registration, login and logout.
type AuthService struct {
	store   repository.CredentialStore
	tracker *auth.Tracker
	parser  *form.Parser
	limiter *guard.RateLimiter
	audit   auditor
	metrics *infra.Metrics
	logger  *slog.Logger
	cost    int
}

// NewAuthService creates a new AuthService.
func NewAuthService(
	store repository.CredentialStore,
	tracker *auth.Tracker,
	parser *form.Parser,
	events EventPublisher,
	metrics *infra.Metrics,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		store:   store,
		tracker: tracker,
		parser:  parser,
		audit:   auditor{events: events, metrics: metrics, logger: logger},
		metrics: metrics,
		logger:  logger,
		cost:    bcrypt.DefaultCost,
	}
}

// WithRateLimiter enables per-client login throttling.
func (s *AuthService) WithRateLimiter(l *guard.RateLimiter) *AuthService {
	s.limiter = l
	return s
}

// TokenResult is returned by IssueToken.
type TokenResult struct {
	Token     string    `json:"token"`
	Username  string    `json:"username"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Register stores a new credential record. It never overwrites an
// existing username.
func (s *AuthService) Register(ctx context.Context, c form.Credentials) error {
	if c.Username == "" || c.Password == "" {
		s.metrics.Registrations.WithLabelValues("invalid").Inc()
		return domain.ErrValidation(MsgCredentialsRequired)
	}
	if err := s.parser.ValidateCredentials(c); err != nil {
		s.metrics.Registrations.WithLabelValues("invalid").Inc()
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(c.Password), s.cost)
	if err != nil {
		return domain.ErrInternal(MsgRegistrationFailed, err)
	}

	err = s.store.Update(ctx, func(creds domain.Credentials) error {
		if creds.Has(c.Username) {
			return domain.ErrConflict(MsgUsernameTaken)
		}
		creds[c.Username] = domain.Credential{Password: string(hash)}
		return nil
	})
	if err != nil {
		if domain.IsCode(err, "CONFLICT") {
			s.metrics.Registrations.WithLabelValues("duplicate").Inc()
			return err
		}
		s.metrics.Registrations.WithLabelValues("error").Inc()
		s.logger.Error("registration write failed", "username", c.Username, "error", err)
		return domain.ErrInternal(MsgRegistrationFailed, err)
	}

	s.metrics.Registrations.WithLabelValues("created").Inc()
	s.logger.Info("user registered", "username", c.Username)
	s.audit.record(ctx, domain.NewUserEvent(domain.EventUserRegistered, c.Username))
	return nil
}

// Login verifies the credentials and starts a browser session on w.
func (s *AuthService) Login(ctx context.Context, w http.ResponseWriter, c form.Credentials, clientIP string) error {
	if err := s.authenticate(ctx, c, clientIP); err != nil {
		return err
	}
	if err := s.tracker.Login(ctx, w, c.Username); err != nil {
		return domain.ErrInternal("start session", err)
	}
	s.loggedIn(ctx, c.Username)
	return nil
}

// IssueToken verifies the credentials and returns an API bearer token.
func (s *AuthService) IssueToken(ctx context.Context, c form.Credentials, clientIP string) (*TokenResult, error) {
	if err := s.authenticate(ctx, c, clientIP); err != nil {
		return nil, err
	}
	token, expiresAt, err := s.tracker.Issue(ctx, auth.RealmAPI, c.Username)
	if err != nil {
		return nil, domain.ErrInternal("issue token", err)
	}
	s.loggedIn(ctx, c.Username)
	return &TokenResult{Token: token, Username: c.Username, ExpiresAt: expiresAt}, nil
}

// Logout ends the browser session of r, if any, and clears the cookie.
func (s *AuthService) Logout(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	sess, ok := s.tracker.Authenticated(r)
	if err := s.tracker.Logout(w, r); err != nil {
		s.logger.Warn("session revoke failed", "error", err)
	}
	if ok {
		s.audit.record(ctx, domain.NewUserEvent(domain.EventUserLoggedOut, sess.Username))
	}
}

func (s *AuthService) loggedIn(ctx context.Context, username string) {
	s.metrics.Logins.WithLabelValues("success").Inc()
	s.audit.record(ctx, domain.NewUserEvent(domain.EventUserLoggedIn, username))
}

func (s *AuthService) authenticate(ctx context.Context, c form.Credentials, clientIP string) error {
	if s.limiter != nil && clientIP != "" {
		if res := s.limiter.Check(ctx, clientIP); !res.Allowed {
			s.metrics.Logins.WithLabelValues("rate_limited").Inc()
			s.logger.Warn("login rate limited", "client_ip", clientIP, "reason", res.Reason)
			return domain.ErrRateLimited(MsgTooManyAttempts)
		}
	}

	creds, err := s.store.Load(ctx)
	if err != nil {
		s.logger.Warn("credential store unreadable, treating as empty", "error", err)
		creds = domain.Credentials{}
	}

	rec, ok := creds[c.Username]
	if !ok || c.Password == "" || !s.passwordMatches(ctx, c.Username, rec.Password, c.Password) {
		s.metrics.Logins.WithLabelValues("failure").Inc()
		s.audit.record(ctx, domain.NewUserEvent(domain.EventUserLoginFailed, c.Username))
		return domain.ErrUnauthorized(MsgInvalidCredentials)
	}
	if s.limiter != nil && clientIP != "" {
		s.limiter.Reset(clientIP)
	}
	return nil
}

// passwordMatches accepts bcrypt hashes and legacy plaintext records.
// A matching plaintext record is upgraded to a hash.
func (s *AuthService) passwordMatches(ctx context.Context, username, stored, password string) bool {
	if isBcryptHash(stored) {
		return bcrypt.CompareHashAndPassword([]byte(stored), []byte(password)) == nil
	}
	if subtle.ConstantTimeCompare([]byte(stored), []byte(password)) != 1 {
		return false
	}
	s.logger.Warn("legacy plaintext credential accepted", "username", username)
	s.upgradeLegacy(ctx, username, stored, password)
	return true
}

func (s *AuthService) upgradeLegacy(ctx context.Context, username, stored, password string) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return
	}
	errUnchanged := errors.New("credential changed")
	err = s.store.Update(ctx, func(creds domain.Credentials) error {
		if creds[username].Password != stored {
			return errUnchanged
		}
		creds[username] = domain.Credential{Password: string(hash)}
		return nil
	})
	if err != nil && !errors.Is(err, errUnchanged) {
		s.logger.Warn("legacy credential upgrade failed", "username", username, "error", err)
	}
}

func isBcryptHash(s string) bool {
	_, err := bcrypt.Cost([]byte(s))
	return err == nil
}
