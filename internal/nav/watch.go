package nav

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
)

var errBackendUnreachable = errors.New("trading data backend unreachable")

// WatchNetwork polls check every interval and mirrors the result into the
// store's network status until ctx is cancelled.
func WatchNetwork(ctx context.Context, st *Store, check func(context.Context) bool, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	checkOnce := func() {
		checkCtx, cancel := context.WithTimeout(ctx, interval)
		defer cancel()

		prev := st.Snapshot().NetworkStatus
		if check(checkCtx) {
			st.SetNetworkStatus(NetworkActive, nil)
		} else {
			st.SetNetworkStatus(NetworkError, errBackendUnreachable)
		}
		if next := st.Snapshot().NetworkStatus; next != prev {
			st.logger.Info("Network status changed",
				zap.String("from", string(prev)),
				zap.String("to", string(next)))
		}
	}

	checkOnce()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			checkOnce()
		}
	}
}
