package auth

import (
	"aiva/internal/entity"
	"errors"
	"testing"
	"time"
)

func TestJWTManagerTokenLifecycle(t *testing.T) {
	mgr, err := NewJWTManager("test-secret", "issuer", time.Minute*30)
	if err != nil {
		t.Fatalf("unexpected error creating manager: %v", err)
	}

	user := &entity.DbUser{ID: 42, Email: "user@example.com", Role: entity.UserRoleAdmin}
	token, expiresAt, err := mgr.Issue(user)
	if err != nil {
		t.Fatalf("unexpected error issuing token: %v", err)
	}
	if token == "" {
		t.Fatal("expected non-empty token")
	}
	if expiresAt.Before(time.Now()) {
		t.Fatal("expected future expiry time")
	}

	id, err := mgr.Resolve(token)
	if err != nil {
		t.Fatalf("unexpected error resolving token: %v", err)
	}
	if id != user.ID {
		t.Fatalf("expected user id %d, got %d", user.ID, id)
	}
}

func TestJWTManagerRequiresSecret(t *testing.T) {
	if _, err := NewJWTManager("   ", "", time.Hour); err == nil {
		t.Fatal("expected error for empty secret")
	}
}

func TestJWTManagerRejectsForeignToken(t *testing.T) {
	mgr, err := NewJWTManager("secret-a", "issuer", time.Hour)
	if err != nil {
		t.Fatalf("unexpected error creating manager: %v", err)
	}
	other, err := NewJWTManager("secret-b", "issuer", time.Hour)
	if err != nil {
		t.Fatalf("unexpected error creating manager: %v", err)
	}

	token, _, err := other.Issue(&entity.DbUser{ID: 7, Email: "x@example.com", Role: entity.UserRoleUser})
	if err != nil {
		t.Fatalf("unexpected error issuing token: %v", err)
	}

	if _, err := mgr.Resolve(token); !errors.Is(err, ErrInvalidTokenFormat) {
		t.Fatalf("expected ErrInvalidTokenFormat, got %v", err)
	}
}
