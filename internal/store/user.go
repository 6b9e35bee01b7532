package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// User is a registered account.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// UserRepository provides access to user accounts.
type UserRepository struct {
	db *sql.DB
}

// Users returns the user repository for this store.
func (s *Store) Users() *UserRepository {
	return &UserRepository{db: s.db}
}

// Create inserts u, assigning an ID when empty. Emails are compared
// case-insensitively; a duplicate returns ErrEmailTaken.
func (r *UserRepository) Create(u *User) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	u.Email = strings.TrimSpace(u.Email)
	u.CreatedAt = time.Now().UTC()

	_, err := r.db.Exec(
		`INSERT INTO users (id, name, email, password_hash, created_at) VALUES (?, ?, ?, ?, ?)`,
		u.ID, u.Name, u.Email, u.PasswordHash, u.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%s: %w", u.Email, ErrEmailTaken)
		}
		return err
	}
	return nil
}

func (r *UserRepository) GetByID(id string) (*User, error) {
	return r.getOne(`SELECT id, name, email, password_hash, created_at FROM users WHERE id = ?`, id)
}

func (r *UserRepository) GetByEmail(email string) (*User, error) {
	return r.getOne(`SELECT id, name, email, password_hash, created_at FROM users WHERE email = ?`, strings.TrimSpace(email))
}

func (r *UserRepository) getOne(query string, arg any) (*User, error) {
	u := &User{}
	err := r.db.QueryRow(query, arg).Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return u, nil
}

// Delete removes the user together with their sessions and drawings.
func (r *UserRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return checkAffected(result)
}
