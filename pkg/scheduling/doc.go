/*
Package scheduling groups the task execution primitives of taskpool.

  - workerpool: fixed set of worker goroutines draining one FIFO queue
  - scheduler: time, interval and cron based posting into a worker pool

Worker Pool:

	pool := workerpool.New(4)
	defer pool.Stop()

	pool.PostFunc(func() {
		// Do work
	})

Task Scheduler:

	s := scheduler.NewWithConfig(scheduler.Config{WorkerPool: pool})
	defer func() { <-s.Stop() }()
	s.Start()

	// Schedule one-time task
	s.ScheduleAfter("warmup", task, time.Minute)

	// Schedule recurring task
	s.ScheduleRepeating("flush", task, time.Hour)

	// Cron-style scheduling
	s.ScheduleCron("report", "0 9 * * MON-FRI", task) // Weekdays at 9 AM

Both packages are safe for concurrent use. Neither cancels tasks that are
already running; Stop waits for them.
*/
package scheduling
