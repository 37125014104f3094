package worker

import (
	"context"
	"time"
)

// PeriodicalJob runs job every period until ctx is done, the first run happens after one period
func PeriodicalJob(job Job, every time.Duration) ErrorJob {
	return func(ctx context.Context) error {
		ticker := time.NewTicker(every)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				job(ctx)
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
}
