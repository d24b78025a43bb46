package service

import (
	"github.com/allisson/go-pwdhash"

	apperrors "github.com/webstack/webstack/internal/errors"
)

// Argon2PasswordService hashes and compares passwords using Argon2id.
type Argon2PasswordService struct {
	hasher *pwdhash.PasswordHasher
}

// NewArgon2PasswordService creates a password service tuned for interactive
// logins.
func NewArgon2PasswordService() *Argon2PasswordService {
	hasher, err := pwdhash.New(pwdhash.WithPolicy(pwdhash.PolicyInteractive))
	if err != nil {
		// This should never happen with valid policy
		panic(err)
	}

	return &Argon2PasswordService{hasher: hasher}
}

// Hash hashes a plain text password using Argon2id.
func (s *Argon2PasswordService) Hash(plain string) (string, error) {
	hashed, err := s.hasher.Hash([]byte(plain))
	if err != nil {
		return "", apperrors.Wrap(err, "failed to hash password")
	}
	return hashed, nil
}

// Compare performs a constant-time comparison between a plain password and
// its hash.
func (s *Argon2PasswordService) Compare(plain string, hash string) bool {
	ok, err := s.hasher.Verify([]byte(plain), hash)
	if err != nil {
		return false
	}
	return ok
}
