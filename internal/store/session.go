package store

import (
	"database/sql"
	"errors"
	"time"
)

// AuthSession binds a cookie token to a user until it expires.
type AuthSession struct {
	Token     string
	UserID    string
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Expired reports whether the session is no longer valid at now.
func (s *AuthSession) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

type AuthSessionRepository struct {
	db *sql.DB
}

func (s *Store) AuthSessions() *AuthSessionRepository {
	return &AuthSessionRepository{db: s.db}
}

func (r *AuthSessionRepository) Create(sess *AuthSession) error {
	if sess.CreatedAt.IsZero() {
		sess.CreatedAt = time.Now().UTC()
	}
	_, err := r.db.Exec(
		`INSERT INTO auth_sessions (token, user_id, created_at, expires_at) VALUES (?, ?, ?, ?)`,
		sess.Token, sess.UserID, sess.CreatedAt, sess.ExpiresAt.UTC(),
	)
	return err
}

// Get returns the session for token as of now. Expired sessions are
// reported as ErrNotFound; they are removed by DeleteExpired.
func (r *AuthSessionRepository) Get(token string, now time.Time) (*AuthSession, error) {
	sess := &AuthSession{}
	err := r.db.QueryRow(
		`SELECT token, user_id, created_at, expires_at FROM auth_sessions WHERE token = ?`,
		token,
	).Scan(&sess.Token, &sess.UserID, &sess.CreatedAt, &sess.ExpiresAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if sess.Expired(now) {
		return nil, ErrNotFound
	}
	return sess, nil
}

func (r *AuthSessionRepository) Delete(token string) error {
	result, err := r.db.Exec(`DELETE FROM auth_sessions WHERE token = ?`, token)
	if err != nil {
		return err
	}
	return checkAffected(result)
}

// DeleteExpired removes sessions that expired before now and returns how many.
func (r *AuthSessionRepository) DeleteExpired(now time.Time) (int64, error) {
	result, err := r.db.Exec(`DELETE FROM auth_sessions WHERE expires_at <= ?`, now.UTC())
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
