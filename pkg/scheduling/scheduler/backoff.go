package scheduler

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v5"
	"go.uber.org/zap"
)

// BackoffTask wraps a fallible function with exponential backoff retries.
// It implements workerpool.Runner, so it can be scheduled like any other task.
type BackoffTask struct {
	Task         func(ctx context.Context) error
	MaxRetries   uint
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Timeout      time.Duration // Bounds all attempts together when Run is used; zero means no bound
	Logger       *zap.Logger
}

// Execute calls Task until it succeeds, MaxRetries retries have failed or
// ctx is done. Wrap an error with backoff.Permanent to stop retrying early.
func (bt BackoffTask) Execute(ctx context.Context) error {
	policy := backoff.NewExponentialBackOff()
	if bt.InitialDelay > 0 {
		policy.InitialInterval = bt.InitialDelay
	}
	if bt.MaxDelay > 0 {
		policy.MaxInterval = bt.MaxDelay
	}
	policy.Multiplier = 2
	policy.RandomizationFactor = 0

	logger := bt.logger()
	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		return struct{}{}, bt.Task(ctx)
	},
		backoff.WithBackOff(policy),
		backoff.WithMaxTries(bt.MaxRetries+1),
		backoff.WithMaxElapsedTime(0),
		backoff.WithNotify(func(err error, next time.Duration) {
			logger.Debug("task failed, retrying", zap.Error(err), zap.Duration("backoff", next))
		}),
	)
	return err
}

// Run implements workerpool.Runner. A final failure is logged, since the
// pool does not observe task errors.
func (bt BackoffTask) Run() {
	ctx := context.Background()
	if bt.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, bt.Timeout)
		defer cancel()
	}

	if err := bt.Execute(ctx); err != nil {
		bt.logger().Error("task failed after retries", zap.Uint("max_retries", bt.MaxRetries), zap.Error(err))
	}
}

func (bt BackoffTask) logger() *zap.Logger {
	if bt.Logger != nil {
		return bt.Logger
	}
	return zap.L().Named("scheduler")
}
