package worker_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/klwxsrx/state-aggregator/pkg/log"
	"github.com/klwxsrx/state-aggregator/pkg/worker"
)

func TestPool_Do_LimitsConcurrentJobs(t *testing.T) {
	pool := worker.NewPool(2)

	var current, peak atomic.Int32
	for i := 0; i < 10; i++ {
		err := pool.Do(context.Background(), func(context.Context) {
			n := current.Add(1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
			time.Sleep(5 * time.Millisecond)
			current.Add(-1)
		})
		require.NoError(t, err)
	}
	pool.Wait()

	assert.LessOrEqual(t, peak.Load(), int32(2))
	assert.Equal(t, int32(0), current.Load())
}

func TestPool_Do_CancelledContext_DoesNotRunJob(t *testing.T) {
	pool := worker.NewPool(1)
	release := make(chan struct{})
	require.NoError(t, pool.Do(context.Background(), func(context.Context) { <-release }))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var called atomic.Bool
	err := pool.Do(ctx, func(context.Context) { called.Store(true) })
	assert.ErrorIs(t, err, context.Canceled)

	close(release)
	pool.Wait()
	assert.False(t, called.Load())
}

func TestFailFastGroup_Wait_ReturnsFirstErrorAndCancelsOthers(t *testing.T) {
	expectedErr := errors.New("broker subscription closed")
	group := worker.NewFailFastGroup(context.Background())

	group.Do(func(context.Context) error {
		return expectedErr
	})
	group.Do(func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})

	assert.ErrorIs(t, group.Wait(), expectedErr)
}

func TestFailSafeGroup_Wait_DoesNotCancelOthers(t *testing.T) {
	group := worker.NewFailSafeGroup(context.Background())

	var completed atomic.Bool
	group.Do(func(context.Context) error {
		return errors.New("failed")
	})
	group.Do(func(ctx context.Context) error {
		time.Sleep(10 * time.Millisecond)
		if ctx.Err() == nil {
			completed.Store(true)
		}
		return nil
	})

	assert.Error(t, group.Wait())
	assert.True(t, completed.Load())
}

func TestRunHub_Returns(t *testing.T) {
	logger := log.New(log.LevelDisabled)
	blockUntilCancelled := func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	}

	t.Run("nil_when_process_completes", func(t *testing.T) {
		err := worker.RunHub(context.Background(), logger, blockUntilCancelled, func(context.Context) error {
			return nil
		})
		assert.NoError(t, err)
	})

	t.Run("error_when_process_fails", func(t *testing.T) {
		expectedErr := errors.New("consumer closed")
		err := worker.RunHub(context.Background(), logger, blockUntilCancelled, func(context.Context) error {
			return expectedErr
		})
		assert.ErrorIs(t, err, expectedErr)
	})

	t.Run("nil_when_parent_context_cancelled", func(t *testing.T) {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
		defer cancel()
		assert.NoError(t, worker.RunHub(ctx, logger, blockUntilCancelled))
	})
}

func TestPeriodicalJob_RunsUntilCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	var runs atomic.Int32
	job := worker.PeriodicalJob(func(context.Context) {
		if runs.Add(1) == 3 {
			cancel()
		}
	}, time.Millisecond)

	err := job(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.GreaterOrEqual(t, runs.Load(), int32(3))
}
