package utils

import (
	"context"
	"time"
)

// NewTicker returns a channel that fires immediately, then every interval,
// and closes when the context is cancelled.
func NewTicker(ctx context.Context, interval time.Duration) (ch <-chan time.Time) {
	tickCh := make(chan time.Time, 1)
	tickCh <- time.Now()

	go func() {
		ticker := time.NewTicker(interval)
		defer func() {
			ticker.Stop()
			close(tickCh)
		}()

		for {
			select {
			case <-ctx.Done():
				return
			case t := <-ticker.C:
				select {
				case <-ctx.Done():
					return
				case tickCh <- t:
				}
			}
		}
	}()

	return tickCh
}
