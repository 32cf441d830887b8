package gateway

import (
	"context"
	"fmt"
	"time"
)

// AwaitResult polls a compute gateway until the job completes, fails, or the
// poll budget runs out. The budget is bounded: maxAttempts status checks at a
// fixed interval, then ErrUnavailable. Context cancellation aborts the wait
// between checks.
func AwaitResult(ctx context.Context, c Compute, jobID string, interval time.Duration, maxAttempts int) (JobResult, error) {
	status := JobPending
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return JobResult{}, ctx.Err()
			case <-time.After(interval):
			}
		}

		var err error
		status, err = c.Status(ctx, jobID)
		if err != nil {
			return JobResult{}, fmt.Errorf("job %s status: %w", jobID, err)
		}
		switch status {
		case JobCompleted:
			return c.Result(ctx, jobID)
		case JobFailed:
			return JobResult{}, fmt.Errorf("job %s failed: %w", jobID, ErrUnavailable)
		}
	}
	return JobResult{}, fmt.Errorf("job %s still %s after %d attempts: %w", jobID, status, maxAttempts, ErrUnavailable)
}
