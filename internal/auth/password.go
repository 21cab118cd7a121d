package auth

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// ErrEmptyPassword rejects hashing of empty input.
var ErrEmptyPassword = errors.New("password must not be empty")

// HashPassword returns a salted bcrypt hash of the plaintext. The only
// caller-visible failure is empty input; bcrypt errors on oversized input
// are passed through.
func HashPassword(plaintext string) (string, error) {
	if plaintext == "" {
		return "", ErrEmptyPassword
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword reports whether plaintext matches the stored hash. It never
// returns an error; any mismatch or malformed hash is false.
func CheckPassword(plaintext, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext)) == nil
}
