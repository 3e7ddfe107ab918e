package service

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"activity-planner/internal/repository"
)

func newUserService(t *testing.T) *UserService {
	t.Helper()
	db, err := repository.NewDB(filepath.Join(t.TempDir(), "users.db"), discardLogger())
	if err != nil {
		t.Fatalf("NewDB failed: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	svc := NewUserService(repository.NewUserRepository(db), repository.NewSessionRepository(db))
	svc.cost = bcrypt.MinCost
	return svc
}

func TestSignupLoginLogout(t *testing.T) {
	t.Parallel()
	svc := newUserService(t)
	ctx := context.Background()

	user, err := svc.Signup(ctx, " Ada@Example.com ", "secret1", "Ada")
	if err != nil {
		t.Fatalf("Signup failed: %v", err)
	}
	if user.Email != "ada@example.com" {
		t.Errorf("Expected normalized email, got '%s'", user.Email)
	}
	if user.PasswordHash == "secret1" {
		t.Error("Expected password to be hashed")
	}

	session, err := svc.Login(ctx, "ada@example.com", "secret1")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if session.Token == "" {
		t.Fatal("Expected a session token")
	}

	got, err := svc.Authenticate(ctx, session.Token)
	if err != nil {
		t.Fatalf("Authenticate failed: %v", err)
	}
	if got.ID != user.ID {
		t.Errorf("Expected user %d, got %d", user.ID, got.ID)
	}

	if err := svc.Logout(ctx, session.Token); err != nil {
		t.Fatalf("Logout failed: %v", err)
	}
	if _, err := svc.Authenticate(ctx, session.Token); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("Expected ErrInvalidCredentials after logout, got %v", err)
	}
}

func TestSignupRejects(t *testing.T) {
	t.Parallel()
	svc := newUserService(t)
	ctx := context.Background()

	if _, err := svc.Signup(ctx, "not-an-email", "secret1", ""); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput for bad email, got %v", err)
	}
	if _, err := svc.Signup(ctx, "a@b.io", "123", ""); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput for short password, got %v", err)
	}
	if _, err := svc.Signup(ctx, "a@b.io", "secret1", ""); err != nil {
		t.Fatalf("Signup failed: %v", err)
	}
	if _, err := svc.Signup(ctx, "A@B.io", "secret2", ""); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput for duplicate email, got %v", err)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	t.Parallel()
	svc := newUserService(t)
	ctx := context.Background()

	if _, err := svc.Signup(ctx, "a@b.io", "secret1", ""); err != nil {
		t.Fatalf("Signup failed: %v", err)
	}
	if _, err := svc.Login(ctx, "a@b.io", "wrong!!"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("Expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := svc.Login(ctx, "nobody@b.io", "secret1"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("Expected ErrInvalidCredentials for unknown user, got %v", err)
	}
	if _, err := svc.Authenticate(ctx, ""); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("Expected ErrInvalidCredentials for empty token, got %v", err)
	}
}
