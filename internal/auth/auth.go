// Package auth handles account passwords and cookie-based login sessions.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/ayusman/aircanvas/internal/logging"
	"github.com/ayusman/aircanvas/internal/store"
)

// CookieName is the session cookie set on login.
const CookieName = "aircanvas_session"

// DefaultTTL is how long a login stays valid.
const DefaultTTL = 24 * time.Hour

var (
	// ErrInvalidCredentials covers both an unknown email and a wrong password.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrInvalidInput is returned for malformed signup data.
	ErrInvalidInput = errors.New("invalid input")
	// ErrUnauthenticated is returned when a request carries no valid session.
	ErrUnauthenticated = errors.New("not logged in")
)

// MinPasswordLength is the shortest accepted password.
const MinPasswordLength = 6

// Service registers users and manages their login sessions.
type Service struct {
	store *store.Store
	ttl   time.Duration
	cost  int
	now   func() time.Time
	log   *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithTTL sets the session lifetime.
func WithTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// WithCost sets the bcrypt cost. Tests use bcrypt.MinCost.
func WithCost(cost int) Option {
	return func(s *Service) { s.cost = cost }
}

func NewService(st *store.Store, opts ...Option) *Service {
	s := &Service{
		store: st,
		ttl:   DefaultTTL,
		cost:  bcrypt.DefaultCost,
		now:   time.Now,
		log:   logging.WithComponent("auth"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Signup creates an account. A duplicate email yields store.ErrEmailTaken.
func (s *Service) Signup(name, email, password string) (*store.User, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, fmt.Errorf("%w: email %q", ErrInvalidInput, email)
	}
	if len(password) < MinPasswordLength {
		return nil, fmt.Errorf("%w: password must be at least %d characters", ErrInvalidInput, MinPasswordLength)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u := &store.User{Name: name, Email: email, PasswordHash: string(hash)}
	if err := s.store.Users().Create(u); err != nil {
		return nil, err
	}
	s.log.Info("user registered", "user", u.ID)
	return u, nil
}

// Login checks credentials and opens a new session.
func (s *Service) Login(email, password string) (*store.User, *store.AuthSession, error) {
	u, err := s.store.Users().GetByEmail(email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, nil, ErrInvalidCredentials
		}
		return nil, nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, nil, ErrInvalidCredentials
	}

	now := s.now().UTC()
	sess := &store.AuthSession{
		Token:     uuid.NewString(),
		UserID:    u.ID,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}
	if err := s.store.AuthSessions().Create(sess); err != nil {
		return nil, nil, fmt.Errorf("create session: %w", err)
	}
	s.log.Info("user logged in", "user", u.ID)
	return u, sess, nil
}

// Logout ends the session. Unknown tokens are ignored.
func (s *Service) Logout(token string) error {
	err := s.store.AuthSessions().Delete(token)
	if errors.Is(err, store.ErrNotFound) {
		return nil
	}
	return err
}

// Authenticate resolves a session token to its user.
func (s *Service) Authenticate(token string) (*store.User, error) {
	if token == "" {
		return nil, ErrUnauthenticated
	}
	sess, err := s.store.AuthSessions().Get(token, s.now())
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrUnauthenticated
		}
		return nil, err
	}
	u, err := s.store.Users().GetByID(sess.UserID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrUnauthenticated
		}
		return nil, err
	}
	return u, nil
}

// PurgeExpired drops sessions past their expiry.
func (s *Service) PurgeExpired() (int64, error) {
	return s.store.AuthSessions().DeleteExpired(s.now())
}

// SetCookie writes the session cookie for sess.
func SetCookie(w http.ResponseWriter, sess *store.AuthSession) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    sess.Token,
		Path:     "/",
		Expires:  sess.ExpiresAt,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearCookie expires the session cookie.
func ClearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// Token returns the session token carried by r, if any.
func Token(r *http.Request) string {
	c, err := r.Cookie(CookieName)
	if err != nil {
		return ""
	}
	return c.Value
}

type ctxKey struct{}

// WithUser returns a context carrying u.
func WithUser(ctx context.Context, u *store.User) context.Context {
	return context.WithValue(ctx, ctxKey{}, u)
}

// UserFrom returns the authenticated user stored by Require.
func UserFrom(ctx context.Context) (*store.User, bool) {
	u, ok := ctx.Value(ctxKey{}).(*store.User)
	return u, ok && u != nil
}

// Require rejects requests without a valid session with 401 and otherwise
// passes them on with the user in the context.
func (s *Service) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, err := s.Authenticate(Token(r))
		if err != nil {
			if !errors.Is(err, ErrUnauthenticated) {
				s.log.Error("authenticate request", "error", err)
			}
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"error":"not logged in"}` + "\n"))
			return
		}
		next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), u)))
	})
}
