/*
Package taskpool provides a fixed-size worker pool for Go applications and a
scheduler that feeds it.

Task Scheduling (pkg/scheduling):
  - workerpool: FIFO task queue drained by a fixed set of worker goroutines,
    plus a process-wide shared pool and typed futures
  - scheduler: one-time, interval and cron scheduling into a worker pool

Support (pkg):
  - metrics: Prometheus instrumentation for pools and schedulers
  - common/errors: sentinel and structured errors
  - common/validation: argument checks shared by the packages

Example usage:

	import (
		"github.com/vnykmshr/taskpool/pkg/scheduling/scheduler"
		"github.com/vnykmshr/taskpool/pkg/scheduling/workerpool"
	)

	pool := workerpool.New(5)
	defer pool.Stop()

	pool.PostFunc(func() {
		processRequest()
	})

	s := scheduler.NewWithConfig(scheduler.Config{WorkerPool: pool})
	defer func() { <-s.Stop() }()
	s.Start()
	s.ScheduleCron("cleanup", "@every 10m", workerpool.Func(cleanup))

The taskpool command (cmd/taskpool) runs a throughput benchmark against a
pool and serves its metrics.
*/
package taskpool
