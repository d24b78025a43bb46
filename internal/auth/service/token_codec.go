package service

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	authDomain "github.com/webstack/webstack/internal/auth/domain"
	apperrors "github.com/webstack/webstack/internal/errors"
)

// JWTTokenCodec issues and verifies HMAC-SHA256 signed session tokens.
type JWTTokenCodec struct {
	signingKey []byte
}

// NewJWTTokenCodec returns a JWTTokenCodec using the given signing key.
func NewJWTTokenCodec(signingKey []byte) *JWTTokenCodec {
	return &JWTTokenCodec{signingKey: signingKey}
}

// Issue creates a signed token for the subject with the given lifetime. Each
// token carries a unique ID so it can be revoked individually.
func (c *JWTTokenCodec) Issue(subject uuid.UUID, ttl time.Duration) (string, *authDomain.TokenClaims, error) {
	now := time.Now()
	claims := &authDomain.TokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject.String(),
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		TokenType: authDomain.TokenTypeAccess,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(c.signingKey)
	if err != nil {
		return "", nil, apperrors.Wrap(err, "failed to sign token")
	}

	return signed, claims, nil
}

// Verify parses and validates a token string, returning its claims. Signature,
// expiry and structural failures map to distinct domain errors so callers can
// treat an expired token differently from a forged one.
func (c *JWTTokenCodec) Verify(tokenString string) (*authDomain.TokenClaims, error) {
	claims := &authDomain.TokenClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, authDomain.ErrTokenSignature
		}
		return c.signingKey, nil
	})
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, authDomain.ErrTokenExpired
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return nil, authDomain.ErrTokenSignature
		default:
			return nil, authDomain.ErrTokenMalformed
		}
	}

	if !token.Valid || claims.TokenType != authDomain.TokenTypeAccess || claims.ID == "" {
		return nil, authDomain.ErrTokenMalformed
	}

	return claims, nil
}
