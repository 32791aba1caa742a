package persistence

import (
	"context"
	"time"

	"github.com/avast/retry-go/v5"
	"go.uber.org/zap"
)

const (
	connectAttempts = 5
	connectDelay    = 500 * time.Millisecond
	pingTimeout     = 3 * time.Second
)

// connectWithRetry pings a backend with exponential backoff until it answers or attempts run out.
func connectWithRetry(ctx context.Context, logger *zap.Logger, name string, ping func(context.Context) error) error {
	attempt := 0
	r := retry.New(
		retry.Context(ctx),
		retry.Attempts(connectAttempts),
		retry.Delay(connectDelay),
		retry.DelayType(retry.BackOffDelay),
	)
	return r.Do(func() error {
		attempt++
		pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
		defer cancel()
		err := ping(pingCtx)
		if err != nil {
			logger.Warn("backend not reachable yet",
				zap.String("backend", name),
				zap.Int("attempt", attempt),
				zap.Error(err))
		}
		return err
	})
}
