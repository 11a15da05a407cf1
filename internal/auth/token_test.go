package auth

import (
	"aiva/internal/entity"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"
)

func TestLegacyTokenRoundTrip(t *testing.T) {
	mgr := NewLegacyManager()
	user := &entity.DbUser{ID: 42, Email: "user@example.com", Role: entity.UserRoleUser}

	before := time.Now().UnixMilli()
	token, expiresAt, err := mgr.Issue(user)
	if err != nil {
		t.Fatalf("unexpected error issuing token: %v", err)
	}
	if !expiresAt.IsZero() {
		t.Fatal("legacy tokens must not carry an expiry")
	}
	if !strings.HasPrefix(token, "test-token-42-") {
		t.Fatalf("unexpected token format: %q", token)
	}

	parts := strings.Split(token, "-")
	if len(parts) != 4 {
		t.Fatalf("expected 4 dash segments, got %d", len(parts))
	}
	var millis int64
	if _, err := fmt.Sscanf(parts[3], "%d", &millis); err != nil {
		t.Fatalf("timestamp segment not numeric: %v", err)
	}
	if millis < before {
		t.Fatalf("timestamp %d precedes issuance time %d", millis, before)
	}

	id, err := mgr.Resolve(token)
	if err != nil {
		t.Fatalf("unexpected error resolving token: %v", err)
	}
	if id != user.ID {
		t.Fatalf("expected user id %d, got %d", user.ID, id)
	}
}

func TestLegacyTokenIssueRejectsInvalidUser(t *testing.T) {
	mgr := NewLegacyManager()
	if _, _, err := mgr.Issue(nil); err == nil {
		t.Fatal("expected error for nil user")
	}
	if _, _, err := mgr.Issue(&entity.DbUser{}); err == nil {
		t.Fatal("expected error for zero user id")
	}
}

func TestLegacyTokenResolveRejectsMalformed(t *testing.T) {
	mgr := NewLegacyManager()

	tests := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"blank", "   "},
		{"single segment", "garbage"},
		{"two segments", "test-token"},
		{"wrong prefix", "prod-token-7-123"},
		{"non-numeric id", "test-token-abc-123"},
		{"zero id", "test-token-0-123"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := mgr.Resolve(tt.token); !errors.Is(err, ErrInvalidTokenFormat) {
				t.Fatalf("expected ErrInvalidTokenFormat, got %v", err)
			}
		})
	}
}

func TestLegacyTokenResolveAcceptsThreeSegments(t *testing.T) {
	// A token without the timestamp segment still satisfies the structural
	// contract: prefix plus an embedded id.
	mgr := NewLegacyManager()
	id, err := mgr.Resolve("test-token-9")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != 9 {
		t.Fatalf("expected id 9, got %d", id)
	}
}
