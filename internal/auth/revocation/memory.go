package revocation

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// MemoryStore keeps revoked token IDs in process memory. Suitable for a
// single instance; deployments with multiple instances should use RedisStore
// so a logout on one instance is visible to the others.
type MemoryStore struct {
	mu      sync.RWMutex
	revoked map[string]time.Time
}

// NewMemoryStore creates an empty in-memory revocation store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		revoked: make(map[string]time.Time),
	}
}

func (s *MemoryStore) Revoke(_ context.Context, tokenID string, expiresAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Keep the later expiry if the ID was already revoked.
	if existing, ok := s.revoked[tokenID]; ok && existing.After(expiresAt) {
		return nil
	}
	s.revoked[tokenID] = expiresAt

	return nil
}

func (s *MemoryStore) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	expiresAt, ok := s.revoked[tokenID]
	if !ok {
		return false, nil
	}

	// An entry past its expiry no longer blocks anything; the token itself
	// fails verification by then.
	if time.Now().After(expiresAt) {
		return false, nil
	}

	return true, nil
}

func (s *MemoryStore) Cleanup(_ context.Context, now time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for tokenID, expiresAt := range s.revoked {
		if !expiresAt.After(now) {
			delete(s.revoked, tokenID)
			removed++
		}
	}

	return removed, nil
}

// Len returns the number of tracked entries, expired or not.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.revoked)
}

// StartCleanup runs Cleanup every interval until ctx is cancelled. It blocks,
// so callers run it in its own goroutine.
func (s *MemoryStore) StartCleanup(ctx context.Context, interval time.Duration, logger *slog.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed, err := s.Cleanup(ctx, time.Now())
			if err != nil {
				logger.Error("revocation cleanup failed", "error", err)
				continue
			}
			if removed > 0 {
				logger.Debug("revocation cleanup completed", "removed", removed)
			}
		}
	}
}
