package store

import (
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Drawing is a saved canvas snapshot.
type Drawing struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	ImageData []byte    `json:"-"`
	Width     int       `json:"width"`
	Height    int       `json:"height"`
	CreatedAt time.Time `json:"created_at"`
}

// DrawingRepository stores drawings. Every read is scoped to an owner so
// one user can never see another user's drawing.
type DrawingRepository struct {
	db *sql.DB
}

// Drawings returns the drawing repository for this store.
func (s *Store) Drawings() *DrawingRepository {
	return &DrawingRepository{db: s.db}
}

// Create inserts d, assigning ID and CreatedAt.
func (r *DrawingRepository) Create(d *Drawing) error {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	d.CreatedAt = time.Now().UTC()

	_, err := r.db.Exec(
		`INSERT INTO drawings (id, user_id, image_data, width, height, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		d.ID, d.UserID, d.ImageData, d.Width, d.Height, d.CreatedAt,
	)
	return err
}

// Get returns the drawing with id owned by userID, including image data.
func (r *DrawingRepository) Get(userID, id string) (*Drawing, error) {
	d := &Drawing{}
	err := r.db.QueryRow(
		`SELECT id, user_id, image_data, width, height, created_at
		 FROM drawings WHERE id = ? AND user_id = ?`,
		id, userID,
	).Scan(&d.ID, &d.UserID, &d.ImageData, &d.Width, &d.Height, &d.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return d, nil
}

// List returns userID's drawings newest first, without image data.
func (r *DrawingRepository) List(userID string) ([]*Drawing, error) {
	rows, err := r.db.Query(
		`SELECT id, user_id, width, height, created_at
		 FROM drawings WHERE user_id = ? ORDER BY created_at DESC, rowid DESC`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var drawings []*Drawing
	for rows.Next() {
		d := &Drawing{}
		if err := rows.Scan(&d.ID, &d.UserID, &d.Width, &d.Height, &d.CreatedAt); err != nil {
			return nil, err
		}
		drawings = append(drawings, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return drawings, nil
}

// Delete removes the drawing with id owned by userID.
func (r *DrawingRepository) Delete(userID, id string) error {
	result, err := r.db.Exec(`DELETE FROM drawings WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return err
	}
	return checkAffected(result)
}
