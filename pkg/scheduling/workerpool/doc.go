/*
Package workerpool provides a fixed-size pool of worker goroutines that run
posted tasks in FIFO order.

A pool owns one queue, one mutex and one condition variable, shared by every
worker. Post appends a task and wakes one idle worker; the worker takes the
task off the queue under the mutex and runs it outside of it. Stop asks every
worker to exit, wakes them all and waits for them.

Basic usage:

	pool := workerpool.New(4)
	defer pool.Stop()

	var wg sync.WaitGroup
	wg.Add(1)
	if err := pool.PostFunc(func() {
		defer wg.Done()
		// Do work
	}); err != nil {
		log.Printf("Failed to post: %v", err)
	}
	wg.Wait()

Tasks:

Anything with a Run method can be posted:

	type Runner interface {
		Run()
	}

Func adapts a plain function, and Call and CallErr adapt functions that
return a value or an error, which the pool discards. Each posted value is
wrapped in a Task that runs it at most once.

Results:

The pool does not collect return values. A task reports its outcome through
state it captured, or through Submit, which returns a Future:

	f, err := workerpool.Submit(pool, func() (int, error) {
		return compute(), nil
	})
	if err != nil {
		return err
	}
	n, err := f.Get(ctx)

Configuration Options:

	pool, err := workerpool.NewWithConfig(workerpool.Config{
		Name:    "ingest",
		Workers: 8,
		Logger:  logger,
		Metrics: metrics.DefaultRegistry,
		PanicHandler: func(task *workerpool.Task, recovered interface{}) {
			alert(recovered)
		},
		OnWorkerStart: func(workerID int) {
			connections[workerID] = db.Connect()
		},
	})

A pool with zero workers is legal. It accepts tasks and runs none of them
until Grow adds workers.

Error Handling:

Post only fails for a nil task (ErrInvalidTask) or a stopped pool
(ErrClosed). A task that panics does not take its worker down: the panic is
recovered, logged at error level with its stack, counted and handed to
PanicHandler, and the worker moves on to the next task. A task that calls
runtime.Goexit ends its goroutine; the worker notices and continues on a new
one.

Shutdown:

Stop lets every running task finish and then joins all workers. Tasks still
in the queue are abandoned, never run, and counted in the abandoned metric.
Stop is idempotent and safe to call from several goroutines. Go has no
destructors, so a pool that is dropped without Stop keeps its idle workers
parked forever.

Scaling:

	pool.Grow(4)        // four more workers on the same queue
	removed := pool.Shrink(2) // waits for the two removed workers to finish

Monitoring:

	fmt.Printf("Workers: %d\n", pool.Size())
	fmt.Printf("Queued: %d\n", pool.QueueSize())
	fmt.Printf("Busy: %d\n", pool.ActiveServices())
	fmt.Printf("Stats: %+v\n", pool.Stats())

ActiveServices reads each worker's flag without locking and may be stale by
the time it returns. Use it for dashboards and tests, not for coordination.

Shared Pool:

Shared returns a process-wide pool with one worker per CPU, created on first
use. The package-level Post, PostFunc and ActiveServices forward to it.
InitShared configures it before first use, and Shutdown stops it:

	func main() {
		defer workerpool.Shutdown()
		workerpool.PostFunc(work)
	}

Thread Safety:

All Pool methods are safe for concurrent use. Tasks posted from a single
goroutine start in the order they were posted; with more than one worker they
may finish in any order.
*/
package workerpool
