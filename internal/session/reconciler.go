package session

import (
	"context"
	"log/slog"
	"time"
)

// StartReconciler periodically re-checks the session against the server so a
// token revoked or expired on the server side eventually flips the local
// state. It blocks until ctx is cancelled, so callers run it in its own
// goroutine:
//
//	go client.StartReconciler(ctx, 30*time.Second)
func (c *Client) StartReconciler(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			state, err := c.Refresh(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				c.logger.Debug("session reconciliation failed",
					slog.String("error", err.Error()))
				continue
			}
			c.logger.Debug("session reconciled", slog.String("state", state.String()))
		}
	}
}
