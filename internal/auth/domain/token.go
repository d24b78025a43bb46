// Package domain defines the core authentication domain entities and types.
package domain

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenTypeAccess marks a claims set as a regular session access token.
// The marker prevents tokens minted for other purposes from being
// accepted as session credentials.
const TokenTypeAccess = "access"

// TokenClaims is the JWT claims set carried by session tokens.
// Subject holds the user id, ID the unique token identifier (jti)
// used as the revocation key.
type TokenClaims struct {
	jwt.RegisteredClaims
	TokenType string `json:"typ"`
}

// ExpiryTime returns the token's absolute expiry, or the zero time when the
// exp claim is missing.
func (c *TokenClaims) ExpiryTime() time.Time {
	if c.ExpiresAt == nil {
		return time.Time{}
	}
	return c.ExpiresAt.Time
}
