package utils

import (
	"context"
	"time"
)

// Sweeper drops expired in-memory entries and reports how many it removed.
type Sweeper func(now time.Time) int

// SweepMemoryStores clears expired revoked tokens and OAuth states held in memory.
func SweepMemoryStores(now time.Time) int {
	return blacklist.sweep(now) + oauthStates.sweep(now)
}

// StartJanitor runs the sweepers every interval until ctx is done.
func StartJanitor(ctx context.Context, interval time.Duration, sweepers ...Sweeper) {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				removed := 0
				for _, sweep := range sweepers {
					removed += sweep(now)
				}
				if removed > 0 {
					Sugar.Debugf("janitor removed %d expired entries", removed)
				}
			}
		}
	}()
}
