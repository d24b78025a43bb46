// Package service provides technical services for authentication operations.
//
// This package implements the session token codec and password hashing using
// industry-standard cryptographic practices. Both services are stateless: the
// codec is a pure function of its inputs and the process-wide signing key, and
// never consults revocation state.
package service

import (
	"time"

	"github.com/google/uuid"

	authDomain "github.com/webstack/webstack/internal/auth/domain"
)

// TokenCodec defines operations for issuing and verifying signed session tokens.
type TokenCodec interface {
	// Issue creates a signed token for the given subject with an absolute
	// expiry of now + ttl. Each token carries a unique id (jti) used as the
	// revocation key. Returns the compact token string and its claims.
	Issue(subject uuid.UUID, ttl time.Duration) (token string, claims *authDomain.TokenClaims, err error)

	// Verify checks the token signature, expiry, and type marker.
	// Fails with domain.ErrTokenMalformed, domain.ErrTokenSignature, or
	// domain.ErrTokenExpired. Revocation is checked separately by the
	// use case, keeping the codec side-effect free.
	Verify(token string) (*authDomain.TokenClaims, error)
}

// PasswordService defines operations for password hashing and verification.
// Implementations must use a memory-hard hashing algorithm (e.g., argon2)
// and constant-time comparison.
type PasswordService interface {
	// Hash hashes a plain text password for storage.
	Hash(plainPassword string) (hashedPassword string, err error)

	// Compare compares a plain text password against a stored hash.
	// Returns true if they match, false otherwise.
	Compare(plainPassword string, hashedPassword string) bool
}
