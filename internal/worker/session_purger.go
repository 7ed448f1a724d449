package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/identity-service/internal/observability"
	"github.com/spec-kit/identity-service/internal/session"
)

// StartSessionPurger sweeps the login-activity cache on a fixed interval.
// The first sweep runs one full interval after startup. The sweep only
// bounds memory; liveness checks stay correct without it.
func StartSessionPurger(ctx context.Context, cache *session.LoginCache, interval time.Duration, logger *zap.Logger) {
	if cache == nil || interval <= 0 {
		return
	}

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				removed := cache.PurgeInactive()
				if removed > 0 {
					observability.SessionEvictions.Add(float64(removed))
				}
				logger.Debug("purged inactive sessions",
					zap.Int("removed", removed),
					zap.Int("remaining", cache.ActiveCount()))
			}
		}
	}()
}
