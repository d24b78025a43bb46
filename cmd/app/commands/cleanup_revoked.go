package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/webstack/webstack/internal/auth/revocation"
)

// cleanupRevokedOutput is the result printed after a revocation sweep.
type cleanupRevokedOutput struct {
	Removed int       `json:"removed"`
	SweptAt time.Time `json:"swept_at"`
}

// RunCleanupRevoked removes revocation entries whose tokens have already
// expired. The server runs the same sweep on an interval; this command is
// for one-off runs and for deployments that keep the server sweeper off.
func RunCleanupRevoked(
	ctx context.Context,
	store revocation.Store,
	logger *slog.Logger,
	writer io.Writer,
	format string,
) error {
	now := time.Now()

	removed, err := store.Cleanup(ctx, now)
	if err != nil {
		return fmt.Errorf("failed to clean up revoked tokens: %w", err)
	}

	output := cleanupRevokedOutput{
		Removed: removed,
		SweptAt: now,
	}

	if format == "json" {
		encoder := json.NewEncoder(writer)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(output); err != nil {
			return fmt.Errorf("failed to encode output: %w", err)
		}
	} else {
		fmt.Fprintf(writer, "Removed %d expired revocation entries\n", output.Removed)
	}

	logger.Info("revocation cleanup finished", slog.Int("removed", removed))
	return nil
}
