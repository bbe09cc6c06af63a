// Package scheduler posts tasks into a worker pool at a time, on an interval or
// on a cron schedule.
//
// The scheduler holds a table of entries and checks it on every tick. Entries
// that are due are posted to a workerpool.Pool; the scheduler itself never runs
// task bodies.
//
// Basic Usage:
//
//	s := scheduler.New()
//	defer func() { <-s.Stop() }()
//
//	if err := s.Start(); err != nil {
//		log.Fatal(err)
//	}
//
//	task := workerpool.Func(func() {
//		fmt.Println("Task executed!")
//	})
//
//	// Schedule a one-time task
//	s.Schedule("my-task", task, time.Now().Add(time.Second))
//
//	// Schedule a repeating task, every 30 seconds
//	s.ScheduleRepeating("report", task, 30*time.Second)
//
//	// Schedule with a cron expression
//	s.ScheduleCron("backup", "0 2 * * *", task)
//
// Cron Expressions:
//
// Expressions have five fields (minute, hour, day of month, month, day of
// week) with an optional leading seconds field. Descriptors are accepted too:
//
//	"*/5 * * * *"       every five minutes
//	"30 * * * * *"      at second 30 of every minute
//	"0 9 * * MON-FRI"   weekdays at 09:00
//	"@hourly"           at the start of every hour
//	"@every 1m30s"      every ninety seconds
//
// Use ValidateCron to check an expression before scheduling it. Cron times are
// evaluated in Config.Location, which defaults to time.Local.
//
// Task Management:
//
//	next, ok := s.NextRun("backup")
//	tasks := s.List()          // sorted by next run time
//	canceled := s.Cancel("report")
//	s.CancelAll()
//
// IDs are unique. Scheduling under an ID that is in use fails with
// ErrTaskExists; cancel the old entry first.
//
// Configuration Options:
//
//	s := scheduler.NewWithConfig(scheduler.Config{
//		Name:         "reports",
//		WorkerPool:   pool,
//		Location:     time.UTC,
//		TickInterval: 50 * time.Millisecond,
//		MaxTasks:     10000,
//		Logger:       logger,
//		Metrics:      metrics.DefaultRegistry,
//	})
//
// If WorkerPool is nil the scheduler creates a pool of Workers goroutines and
// stops it in Stop. A scheduler with its own pool cannot be restarted after
// Stop; one that borrows a pool can, and leaves the pool running.
//
// Retries:
//
// BackoffTask retries a failing function with exponential backoff and can be
// scheduled like any other task:
//
//	task := scheduler.BackoffTask{
//		Task:         syncInventory,
//		MaxRetries:   5,
//		InitialDelay: 100 * time.Millisecond,
//		MaxDelay:     5 * time.Second,
//		Timeout:      time.Minute,
//	}
//	s.ScheduleCron("inventory", "@every 10m", task)
//
// Return backoff.Permanent(err) from the function to stop retrying early.
//
// Delivery:
//
// A due entry is posted once per tick; a repeating entry that falls behind is
// not posted again for the intervals it missed. If the pool rejects a post,
// because it was stopped, the scheduler logs a warning and counts the task as
// dropped.
//
// Thread Safety:
//
// All Scheduler methods are safe for concurrent use.
package scheduler
