package user

import (
	"crypto/subtle"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// MinPasswordLength is the shortest password accepted for new accounts.
const MinPasswordLength = 6

// HashPassword returns the bcrypt hash stored in users.password.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// CheckPassword reports whether password matches hash. A malformed hash is an
// error; a mismatch is not.
func CheckPassword(hash, password string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, fmt.Errorf("check password: %w", err)
	}
}

// IsHashed reports whether stored is a bcrypt hash rather than a plaintext
// password left by the desktop build.
func IsHashed(stored string) bool {
	_, err := bcrypt.Cost([]byte(stored))
	return err == nil
}

// VerifyPassword checks password against a stored value that may predate
// hashing. Rehash is true when the match came from a plaintext value that
// must be replaced.
func VerifyPassword(stored, password string) (ok, rehash bool, err error) {
	if IsHashed(stored) {
		ok, err = CheckPassword(stored, password)
		return ok, false, err
	}
	if stored == "" {
		return false, false, nil
	}
	ok = subtle.ConstantTimeCompare([]byte(stored), []byte(password)) == 1
	return ok, ok, nil
}
