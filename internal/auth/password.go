package auth

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

const (
	// default cost for bcrypt hashing
	DefaultBcryptCost = 12

	// legacy hashes start with a salt of this many characters
	legacySaltLength = 20
)

// hashes new passwords with bcrypt and verifies both bcrypt and legacy salted sha256 hashes
type PasswordHasher struct {
	cost int
}

func NewPasswordHasher() *PasswordHasher {
	return &PasswordHasher{cost: DefaultBcryptCost}
}

// hasher with a custom bcrypt cost, mostly for tests
func NewPasswordHasherWithCost(cost int) *PasswordHasher {
	return &PasswordHasher{cost: cost}
}

// generates a bcrypt hash of password
func (h *PasswordHasher) Hash(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", err
	}

	return string(bytes), nil
}

// checks password against a stored hash in either supported format
func (h *PasswordHasher) Verify(password, stored string) bool {
	if isBcryptHash(stored) {
		return bcrypt.CompareHashAndPassword([]byte(stored), []byte(password)) == nil
	}

	return verifyLegacy(password, stored)
}

// builds a legacy hash: salt followed by base64(sha256(password + salt))
func LegacyHash(password, salt string) string {
	sum := sha256.Sum256([]byte(password + salt))
	return salt + base64.StdEncoding.EncodeToString(sum[:])
}

func verifyLegacy(password, stored string) bool {
	if len(stored) <= legacySaltLength {
		return false
	}

	expected := LegacyHash(password, stored[:legacySaltLength])
	return subtle.ConstantTimeCompare([]byte(expected), []byte(stored)) == 1
}

func isBcryptHash(stored string) bool {
	return strings.HasPrefix(stored, "$2a$") ||
		strings.HasPrefix(stored, "$2b$") ||
		strings.HasPrefix(stored, "$2y$")
}
