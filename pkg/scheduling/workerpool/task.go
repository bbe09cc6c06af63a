package workerpool

import (
	"sync/atomic"
	"time"
)

// Runner is a unit of work the pool can run. Run takes no arguments and its
// outcome is not observed by the pool; a Runner that needs to report a result
// carries its own channel or uses Submit.
type Runner interface {
	Run()
}

// Func adapts a plain function to the Runner interface.
type Func func()

// Run implements Runner.
func (f Func) Run() {
	f()
}

// Call adapts a function with a return value. The value is discarded; any
// state the closure captured travels with it.
func Call[T any](fn func() T) Runner {
	return Func(func() {
		_ = fn()
	})
}

// CallErr adapts a function returning an error. The error is discarded.
func CallErr(fn func() error) Runner {
	return Func(func() {
		_ = fn()
	})
}

// Task owns exactly one Runner and runs it at most once.
//
// A *Task moves from the caller to the pool's queue and from there to a
// single worker. It can be posted once: a second PostTask, to the same pool or
// another one, fails with ErrInvalidTask. Invoke latches, so a Task invoked by
// hand after being posted still runs its body only once.
type Task struct {
	runner   Runner
	invoked  atomic.Bool
	posted   atomic.Bool
	enqueued time.Time
}

// NewTask wraps r in a Task.
func NewTask(r Runner) *Task {
	return &Task{runner: r}
}

// Invoke runs the wrapped Runner if it has not run yet. A panic raised by the
// Runner propagates to the caller unchanged.
func (t *Task) Invoke() {
	if !t.invoked.CompareAndSwap(false, true) {
		return
	}
	t.runner.Run()
}

// Invoked reports whether Invoke has been called.
func (t *Task) Invoked() bool {
	return t.invoked.Load()
}

// claim marks the task as handed to a pool. It fails if another post already
// owns it.
func (t *Task) claim() bool {
	return t.posted.CompareAndSwap(false, true)
}

// release undoes claim for a post that did not queue the task.
func (t *Task) release() {
	t.posted.Store(false)
}

// valid reports whether the task can be queued.
func (t *Task) valid() bool {
	if t == nil || t.Invoked() || t.runner == nil {
		return false
	}
	if f, ok := t.runner.(Func); ok && f == nil {
		return false
	}
	return true
}
