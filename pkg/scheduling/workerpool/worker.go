package workerpool

import (
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/vnykmshr/taskpool/pkg/metrics"
)

// core is the state a pool shares with its workers. Workers hold a pointer to
// it, so it stays alive until the last worker goroutine has exited.
type core struct {
	mu    sync.Mutex
	cond  *sync.Cond
	queue *Queue

	name    string
	logger  *zap.Logger
	metrics *instruments

	panicHandler  func(task *Task, recovered interface{})
	onWorkerStart func(workerID int)
	onWorkerStop  func(workerID int)

	completed atomic.Int64
	panicked  atomic.Int64
	restarts  atomic.Int64
}

func newCore(name string, logger *zap.Logger, reg *metrics.Registry) *core {
	c := &core{
		name:    name,
		logger:  logger,
		metrics: newInstruments(reg, name),
	}
	c.cond = sync.NewCond(&c.mu)
	c.queue = NewQueue(&c.mu)
	return c
}

// worker owns one goroutine that pulls tasks from the shared queue.
//
// States: idle (blocked in cond.Wait), active (running a task body) and
// stopped (goroutine exited). Stopped is only reachable from idle: a stop
// request is observed the next time the worker takes the guard.
type worker struct {
	id   int
	core *core

	active atomic.Bool
	stop   atomic.Bool

	launchOnce sync.Once
	launched   atomic.Bool
	started    bool // touched only by the worker's goroutines, which run in sequence
	done       chan struct{}
}

func newWorker(id int, c *core) *worker {
	return &worker{
		id:   id,
		core: c,
		done: make(chan struct{}),
	}
}

// launch starts the worker goroutine. Calls after the first are no-ops.
func (w *worker) launch() {
	w.launchOnce.Do(func() {
		w.launched.Store(true)
		go w.run()
	})
}

// setStop requests the worker to exit. It does not wake the worker; the owner
// must broadcast on the shared condition variable afterwards.
func (w *worker) setStop() {
	w.stop.Store(true)
}

// isActive reports whether the worker is inside a task body.
func (w *worker) isActive() bool {
	return w.active.Load()
}

// tryJoin blocks until the worker goroutine has exited. It returns at once if
// the worker was never launched, and may be called any number of times.
func (w *worker) tryJoin() {
	if !w.launched.Load() {
		return
	}
	<-w.done
}

func (w *worker) run() {
	c := w.core
	exited := false
	defer func() {
		if exited {
			if c.onWorkerStop != nil {
				c.onWorkerStop(w.id)
			}
			c.logger.Debug("worker stopped", zap.Int("worker", w.id))
			close(w.done)
			return
		}
		// A task called runtime.Goexit and took this goroutine with it.
		w.active.Store(false)
		c.restarts.Add(1)
		c.metrics.restarted()
		c.logger.Warn("task exited its worker goroutine, relaunching worker", zap.Int("worker", w.id))
		go w.run()
	}()

	if !w.started {
		w.started = true
		c.logger.Debug("worker started", zap.Int("worker", w.id))
		if c.onWorkerStart != nil {
			c.onWorkerStart(w.id)
		}
	}

	w.loop()
	exited = true
}

func (w *worker) loop() {
	c := w.core
	for {
		c.mu.Lock()
		for c.queue.lenLocked() == 0 && !w.stop.Load() {
			c.cond.Wait()
		}
		if w.stop.Load() {
			c.mu.Unlock()
			return
		}
		t, ok := c.queue.popLocked()
		queued := c.queue.lenLocked()
		c.mu.Unlock()

		if ok {
			w.execute(t, queued)
		}
	}
}

// execute runs one task outside the guard. Panics are recovered, logged and
// counted; the worker keeps serving afterwards.
func (w *worker) execute(t *Task, queued int) {
	c := w.core
	start := time.Now()
	c.metrics.started(t.enqueued, start, queued)
	w.active.Store(true)

	defer func() {
		r := recover()
		w.active.Store(false)
		c.completed.Add(1)
		c.metrics.finished(time.Since(start), r != nil)
		if r == nil {
			return
		}

		c.panicked.Add(1)
		c.logger.Error("task panicked",
			zap.Int("worker", w.id),
			zap.Any("panic", r),
			zap.ByteString("stack", debug.Stack()),
		)
		if c.panicHandler != nil {
			c.panicHandler(t, r)
		}
	}()

	t.Invoke()
}
