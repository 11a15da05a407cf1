package auth

import (
	"crypto/subtle"
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

const defaultBcryptCost = bcrypt.DefaultCost

// HashPassword hashes a plaintext password with bcrypt.
func HashPassword(password string) (string, error) {
	if strings.TrimSpace(password) == "" {
		return "", errors.New("password must not be empty")
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), defaultBcryptCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// IsHashed reports whether the stored value carries a bcrypt prefix. Rows
// migrated from the legacy system may still hold raw plaintext.
func IsHashed(stored string) bool {
	return strings.HasPrefix(stored, "$2a$") ||
		strings.HasPrefix(stored, "$2b$") ||
		strings.HasPrefix(stored, "$2y$")
}

// VerifyPassword checks a candidate against the stored value. Hashed values
// are compared with bcrypt; anything else falls back to plaintext equality
// for legacy rows, kept until those rows are rehashed.
func VerifyPassword(stored, candidate string) error {
	if strings.TrimSpace(stored) == "" {
		return errors.New("stored password is empty")
	}
	if IsHashed(stored) {
		return bcrypt.CompareHashAndPassword([]byte(stored), []byte(candidate))
	}
	if subtle.ConstantTimeCompare([]byte(stored), []byte(candidate)) != 1 {
		return errors.New("password mismatch")
	}
	return nil
}
