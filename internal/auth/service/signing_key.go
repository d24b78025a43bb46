package service

import (
	"crypto/sha256"
	"io"

	"golang.org/x/crypto/hkdf"

	authDomain "github.com/webstack/webstack/internal/auth/domain"
	apperrors "github.com/webstack/webstack/internal/errors"
)

// signingKeyInfo versions the key derivation so the scheme can change without
// silently invalidating existing tokens.
const signingKeyInfo = "session-token-signing-v1"

// DeriveSigningKey derives the 32-byte HMAC signing key from the configured
// master secret using HKDF-SHA256. Deriving a dedicated key separates token
// signing from any other use of the master secret.
func DeriveSigningKey(masterSecret string) ([]byte, error) {
	if masterSecret == "" {
		return nil, authDomain.ErrSigningKeyMissing
	}

	kdf := hkdf.New(sha256.New, []byte(masterSecret), nil, []byte(signingKeyInfo))

	key := make([]byte, 32)
	if _, err := io.ReadFull(kdf, key); err != nil {
		return nil, apperrors.Wrap(err, "failed to derive signing key")
	}

	return key, nil
}
