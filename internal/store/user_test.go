package store

import (
	"errors"
	"testing"
)

func createUser(t *testing.T, s *Store, email string) *User {
	t.Helper()
	u := &User{Name: "Ada", Email: email, PasswordHash: "hash"}
	if err := s.Users().Create(u); err != nil {
		t.Fatalf("Create(%s) error = %v", email, err)
	}
	return u
}

func TestUserRepository_Create(t *testing.T) {
	s := newTestStore(t)

	u := createUser(t, s, "ada@example.com")

	if u.ID == "" {
		t.Error("ID should be assigned")
	}
	if u.CreatedAt.IsZero() {
		t.Error("CreatedAt should be set")
	}

	got, err := s.Users().GetByID(u.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.Email != "ada@example.com" || got.Name != "Ada" || got.PasswordHash != "hash" {
		t.Errorf("GetByID() = %+v", got)
	}
}

func TestUserRepository_DuplicateEmail(t *testing.T) {
	s := newTestStore(t)
	createUser(t, s, "ada@example.com")

	tests := []string{"ada@example.com", "ADA@example.com", "  ada@example.com "}
	for _, email := range tests {
		err := s.Users().Create(&User{Name: "Other", Email: email, PasswordHash: "x"})
		if !errors.Is(err, ErrEmailTaken) {
			t.Errorf("Create(%q) error = %v, want ErrEmailTaken", email, err)
		}
	}
}

func TestUserRepository_GetByEmail(t *testing.T) {
	s := newTestStore(t)
	u := createUser(t, s, "grace@example.com")

	got, err := s.Users().GetByEmail("Grace@Example.com")
	if err != nil {
		t.Fatalf("GetByEmail() error = %v", err)
	}
	if got.ID != u.ID {
		t.Errorf("GetByEmail() ID = %q, want %q", got.ID, u.ID)
	}

	if _, err := s.Users().GetByEmail("nobody@example.com"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetByEmail(unknown) error = %v, want ErrNotFound", err)
	}
}

func TestUserRepository_DeleteCascades(t *testing.T) {
	s := newTestStore(t)
	u := createUser(t, s, "ada@example.com")

	d := &Drawing{UserID: u.ID, ImageData: []byte{1}, Width: 1, Height: 1}
	if err := s.Drawings().Create(d); err != nil {
		t.Fatal(err)
	}

	if err := s.Users().Delete(u.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := s.Drawings().Get(u.ID, d.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("drawing should be removed with its owner, got %v", err)
	}
	if err := s.Users().Delete(u.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second Delete() error = %v, want ErrNotFound", err)
	}
}
