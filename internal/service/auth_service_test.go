package service

import (
	"aiva/internal/auth"
	"aiva/internal/entity"
	"aiva/internal/model/memory"
	"context"
	"errors"
	"testing"
)

func seedLoginUser(t *testing.T, repo *memory.Repository, email, password string, hashed, active bool) *entity.DbUser {
	t.Helper()

	stored := password
	if hashed {
		var err error
		stored, err = auth.HashPassword(password)
		if err != nil {
			t.Fatalf("hash password: %v", err)
		}
	}

	user := &entity.DbUser{
		Email:    email,
		Password: stored,
		Role:     entity.UserRoleUser,
		IsActive: active,
	}
	if err := repo.CreateUser(context.Background(), user); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return user
}

func TestVerifyCredentials(t *testing.T) {
	repo := memory.NewRepository()
	svc := NewAuthService(repo)

	seedLoginUser(t, repo, "alice@example.com", "secret123", true, true)
	seedLoginUser(t, repo, "legacy@example.com", "plaintext-pw", false, true)
	seedLoginUser(t, repo, "disabled@example.com", "secret123", true, false)

	tests := []struct {
		name     string
		email    string
		password string
		wantErr  error
	}{
		{name: "hashed password match", email: "alice@example.com", password: "secret123"},
		{name: "legacy plaintext match", email: "legacy@example.com", password: "plaintext-pw"},
		{name: "wrong password", email: "alice@example.com", password: "nope", wantErr: auth.ErrInvalidCredentials},
		{name: "unknown email", email: "ghost@example.com", password: "secret123", wantErr: auth.ErrInvalidCredentials},
		{name: "email case must match exactly", email: "ALICE@example.com", password: "secret123", wantErr: auth.ErrInvalidCredentials},
		{name: "disabled account", email: "disabled@example.com", password: "secret123", wantErr: auth.ErrInvalidCredentials},
		{name: "empty email", email: "", password: "secret123", wantErr: auth.ErrInvalidCredentials},
		{name: "empty password", email: "alice@example.com", password: "", wantErr: auth.ErrInvalidCredentials},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user, err := svc.VerifyCredentials(context.Background(), tt.email, tt.password)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if user == nil || user.Email != tt.email {
				t.Fatalf("expected user %q, got %+v", tt.email, user)
			}
		})
	}
}

func TestVerifyCredentialsNilRepo(t *testing.T) {
	svc := NewAuthService(nil)
	if _, err := svc.VerifyCredentials(context.Background(), "a@b.c", "pw"); !errors.Is(err, auth.ErrServiceUnavailable) {
		t.Fatalf("expected ErrServiceUnavailable, got %v", err)
	}
}

func TestResolveUser(t *testing.T) {
	repo := memory.NewRepository()
	svc := NewAuthService(repo)
	tokens := auth.NewLegacyManager()

	user := seedLoginUser(t, repo, "alice@example.com", "secret123", true, true)
	inactive := seedLoginUser(t, repo, "sleeper@example.com", "secret123", true, false)

	token, _, err := tokens.Issue(user)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	t.Run("valid token resolves user", func(t *testing.T) {
		got, err := svc.ResolveUser(context.Background(), tokens, token)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got.ID != user.ID {
			t.Fatalf("expected user %d, got %d", user.ID, got.ID)
		}
	})

	t.Run("inactive user still resolves", func(t *testing.T) {
		token, _, err := tokens.Issue(inactive)
		if err != nil {
			t.Fatalf("issue token: %v", err)
		}
		got, err := svc.ResolveUser(context.Background(), tokens, token)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got.IsActive {
			t.Fatal("expected inactive user")
		}
	})

	t.Run("malformed token", func(t *testing.T) {
		_, err := svc.ResolveUser(context.Background(), tokens, "not-a-token")
		if !errors.Is(err, auth.ErrInvalidTokenFormat) {
			t.Fatalf("expected ErrInvalidTokenFormat, got %v", err)
		}
	})

	t.Run("token for missing user", func(t *testing.T) {
		_, err := svc.ResolveUser(context.Background(), tokens, "test-token-9999-1700000000000")
		if !errors.Is(err, auth.ErrUserNotFound) {
			t.Fatalf("expected ErrUserNotFound, got %v", err)
		}
	})
}
