package domain

import (
	"github.com/webstack/webstack/internal/errors"
)

// Domain-specific errors for authentication operations.
//
// The token errors are internal: the use case collapses all of them into
// ErrUnauthorized before they cross the HTTP boundary, so clients never learn
// why a token was rejected.
var (
	// ErrInvalidCredentials indicates the identifier/secret pair did not match.
	// Returned for both unknown identifiers and wrong passwords so callers
	// cannot probe which emails are registered.
	ErrInvalidCredentials = errors.Wrap(errors.ErrUnauthorized, "invalid credentials")

	// ErrTokenMalformed indicates the token could not be parsed.
	ErrTokenMalformed = errors.Wrap(errors.ErrUnauthorized, "token is malformed")

	// ErrTokenSignature indicates the token signature did not verify.
	ErrTokenSignature = errors.Wrap(errors.ErrUnauthorized, "token signature is invalid")

	// ErrTokenExpired indicates the token's embedded expiry has passed.
	ErrTokenExpired = errors.Wrap(errors.ErrUnauthorized, "token is expired")

	// ErrTokenRevoked indicates the token id is present in the revocation store.
	ErrTokenRevoked = errors.Wrap(errors.ErrUnauthorized, "token is revoked")

	// ErrSigningKeyMissing indicates the signing secret was not configured.
	ErrSigningKeyMissing = errors.New("auth secret key is not configured")
)
