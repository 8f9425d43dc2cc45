package exploration

import (
	"context"
	"time"

	goutils "go.viam.com/utils"
)

// newStatusTicker starts a StoppableWorkers background goroutine that emits
// a status event at least every interval while exploring, satisfying
// a status-at-least-every-2s requirement independent of
// whatever cadence cloud/pose events happen to arrive at.
func newStatusTicker(c *Controller, interval time.Duration) *goutils.StoppableWorkers {
	workers := goutils.NewStoppableWorkers(context.Background())
	workers.Add(func(ctx context.Context) {
		ticker := c.clock.Ticker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				c.mu.Lock()
				if c.isExploring {
					c.emitStatusLocked("periodic")
				}
				c.mu.Unlock()
			}
		}
	})
	return workers
}
