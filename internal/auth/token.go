package auth

import (
	"aiva/internal/entity"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const legacyTokenPrefix = "test-token"

// TokenManager issues session tokens and resolves them back to a user id.
// The id still has to survive a fresh repository lookup before a request is
// considered authenticated.
type TokenManager interface {
	// Issue mints a token for the user. A zero expiry means the token never
	// expires.
	Issue(user *entity.DbUser) (string, time.Time, error)
	// Resolve extracts the user id a token claims to belong to.
	Resolve(token string) (uint, error)
}

// LegacyManager produces the original opaque token format
// "test-token-{userID}-{epochMillis}". Tokens are unsigned, never expire,
// and cannot be revoked: validity rests entirely on the embedded id
// resolving to an existing user at request time. This is an explicit
// contract choice kept for wire compatibility; use the JWT manager for
// signed sessions.
type LegacyManager struct{}

// NewLegacyManager creates a LegacyManager.
func NewLegacyManager() *LegacyManager {
	return &LegacyManager{}
}

// Issue mints a legacy token. Uniqueness is only as strong as the
// millisecond clock.
func (m *LegacyManager) Issue(user *entity.DbUser) (string, time.Time, error) {
	if user == nil || user.ID == 0 {
		return "", time.Time{}, errors.New("invalid user for token generation")
	}
	token := fmt.Sprintf("%s-%d-%d", legacyTokenPrefix, user.ID, time.Now().UnixMilli())
	return token, time.Time{}, nil
}

// Resolve parses a legacy token. The token must split on "-" into at least
// three segments carrying the literal "test-token" prefix; the embedded user
// id is the segment after the prefix.
func (m *LegacyManager) Resolve(token string) (uint, error) {
	trimmed := strings.TrimSpace(token)
	if trimmed == "" {
		return 0, ErrInvalidTokenFormat
	}
	parts := strings.Split(trimmed, "-")
	if len(parts) < 3 {
		return 0, ErrInvalidTokenFormat
	}
	if parts[0]+"-"+parts[1] != legacyTokenPrefix {
		return 0, ErrInvalidTokenFormat
	}
	id, err := strconv.ParseUint(parts[2], 10, 64)
	if err != nil || id == 0 {
		return 0, ErrInvalidTokenFormat
	}
	return uint(id), nil
}

var _ TokenManager = (*LegacyManager)(nil)
