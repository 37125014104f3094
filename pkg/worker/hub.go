package worker

import (
	"context"
	"errors"
	"fmt"

	"github.com/klwxsrx/state-aggregator/pkg/log"
)

func MustRunHub(ctx context.Context, logger log.Logger, process ErrorJob, processes ...ErrorJob) {
	err := RunHub(ctx, logger, process, processes...)
	if err != nil {
		panic(fmt.Errorf("process completed with error: %w", err))
	}
}

// RunHub runs processes until the first of them completes, then cancels the rest and waits for them.
// A process returning nil (e.g. the termination signal awaiter) stops the hub without error.
func RunHub(ctx context.Context, logger log.Logger, process ErrorJob, processes ...ErrorJob) error {
	errProcessCompleted := errors.New("process completed")
	loggingWrapper := func(process ErrorJob) ErrorJob {
		return func(ctx context.Context) error {
			err := process(ctx)
			if err != nil && errors.Is(err, ctx.Err()) {
				return err
			}
			if err == nil {
				return errProcessCompleted
			}

			logger.WithError(err).Error(ctx, "process completed with error")
			return err
		}
	}

	processGroup := NewFailFastGroup(ctx)
	processGroup.Do(loggingWrapper(process))
	for _, process := range processes {
		processGroup.Do(loggingWrapper(process))
	}

	err := processGroup.Wait()
	if errors.Is(err, errProcessCompleted) || errors.Is(err, context.Canceled) {
		return nil
	}
	if ctx.Err() != nil && errors.Is(err, ctx.Err()) {
		return nil
	}

	return err
}
