package password

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrEmptyPassword is returned when hashing or verifying an empty password.
	ErrEmptyPassword = errors.New("password must not be empty")
	// ErrHashFailed is returned when bcrypt hashing fails.
	ErrHashFailed = errors.New("failed to hash password")
	// ErrMismatch is returned when a password does not match its hash.
	ErrMismatch = errors.New("password does not match")
)

// defaultCost trades hash time against brute-force resistance; bcrypt's
// library default (10) is adequate for a community site.
const defaultCost = bcrypt.DefaultCost

// Hash derives a bcrypt hash from the plaintext password.
func Hash(plaintext string) (string, error) {
	if plaintext == "" {
		return "", ErrEmptyPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), defaultCost)
	if err != nil {
		return "", errors.Join(ErrHashFailed, err)
	}
	return string(hash), nil
}

// Verify checks plaintext against a bcrypt hash. Returns ErrMismatch for a
// wrong password and other errors only for malformed hashes.
func Verify(hash, plaintext string) error {
	if plaintext == "" {
		return ErrEmptyPassword
	}

	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext))
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return ErrMismatch
	}
	return err
}

// Matches reports whether plaintext matches the hash, collapsing all failure
// modes to false.
func Matches(hash, plaintext string) bool {
	return Verify(hash, plaintext) == nil
}
