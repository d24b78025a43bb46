// Package revocation tracks revoked session tokens until they expire on
// their own. A revoked entry only needs to outlive the token it blocks, so
// stores are free to drop entries once the expiry passes.
package revocation

import (
	"context"
	"time"
)

// Store records revoked token IDs and answers revocation checks.
type Store interface {
	// Revoke marks a token ID as revoked until expiresAt. Revoking the same
	// ID again is a no-op.
	Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error

	// IsRevoked reports whether a token ID is currently revoked. Entries
	// whose expiry has passed are treated as not revoked.
	IsRevoked(ctx context.Context, tokenID string) (bool, error)

	// Cleanup removes entries whose expiry is at or before now and returns
	// how many were removed. Stores with native TTL support may make this a
	// no-op.
	Cleanup(ctx context.Context, now time.Time) (int, error)
}
