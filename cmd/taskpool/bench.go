package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	tperrors "github.com/vnykmshr/taskpool/pkg/common/errors"
	"github.com/vnykmshr/taskpool/pkg/common/validation"
	"github.com/vnykmshr/taskpool/pkg/metrics"
	"github.com/vnykmshr/taskpool/pkg/scheduling/scheduler"
	"github.com/vnykmshr/taskpool/pkg/scheduling/workerpool"
)

type benchOptions struct {
	tasks    int
	duration time.Duration
}

func newBenchCommand(a *app) *cobra.Command {
	opts := benchOptions{}

	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Post a batch of tasks to a pool and report throughput",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := validation.ValidatePositive("bench", "tasks", opts.tasks); err != nil {
				return err
			}
			// A pool without workers never drains the batch.
			if err := validation.ValidatePositive("bench", "workers", a.cfg.Workers); err != nil {
				return err
			}
			if opts.duration < 0 {
				return tperrors.NewValidationError("bench", "duration", opts.duration, "cannot be negative")
			}
			return runBench(cmd, a, opts)
		},
	}

	cmd.Flags().IntVar(&opts.tasks, "tasks", 1000, "Number of tasks to post")
	cmd.Flags().DurationVar(&opts.duration, "duration", time.Millisecond, "How long each task sleeps")
	return cmd
}

func runBench(cmd *cobra.Command, a *app, opts benchOptions) error {
	logger := zap.L()
	registry := metrics.Config{Enabled: a.cfg.Metrics.Enabled}.Resolve()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if a.cfg.Metrics.Enabled {
		srv := serveMetrics(a.cfg.Metrics.Address, logger)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	pool, err := workerpool.NewWithConfig(workerpool.Config{
		Name:    "bench",
		Workers: a.cfg.Workers,
		Logger:  logger,
		Metrics: registry,
	})
	if err != nil {
		return err
	}
	defer pool.Stop()

	sched := scheduler.NewWithConfig(scheduler.Config{
		Name:    "heartbeat",
		Workers: 1,
		Logger:  logger,
		Metrics: registry,
	})
	defer func() { <-sched.Stop() }()

	heartbeat := workerpool.Func(func() {
		stats := pool.Stats()
		logger.Info("pool stats",
			zap.Int("workers", stats.Workers),
			zap.Int("active", stats.Active),
			zap.Int("queued", stats.Queued),
			zap.Int64("submitted", stats.Submitted),
			zap.Int64("completed", stats.Completed),
		)
	})
	if err := sched.ScheduleCron("stats", a.cfg.Heartbeat, heartbeat); err != nil {
		return err
	}
	if err := sched.Start(); err != nil {
		return err
	}

	var wg sync.WaitGroup
	start := time.Now()
	for i := 0; i < opts.tasks; i++ {
		wg.Add(1)
		if err := pool.PostFunc(func() {
			defer wg.Done()
			time.Sleep(opts.duration)
		}); err != nil {
			wg.Done()
			return err
		}
	}

	finished := make(chan struct{})
	go func() {
		wg.Wait()
		close(finished)
	}()

	select {
	case <-finished:
	case <-ctx.Done():
		logger.Warn("interrupted, abandoning queued tasks", zap.Int("queued", pool.QueueSize()))
		pool.Stop()
		return errors.New("benchmark interrupted")
	}

	elapsed := time.Since(start)
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "tasks:      %d\n", opts.tasks)
	fmt.Fprintf(out, "workers:    %d\n", pool.Size())
	fmt.Fprintf(out, "elapsed:    %v\n", elapsed.Round(time.Millisecond))
	fmt.Fprintf(out, "throughput: %.0f tasks/s\n", float64(opts.tasks)/elapsed.Seconds())
	return nil
}

func serveMetrics(addr string, logger *zap.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("serving metrics", zap.String("address", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server failed", zap.Error(err))
		}
	}()
	return srv
}
