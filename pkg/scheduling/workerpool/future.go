package workerpool

import (
	"context"
	"errors"
	"fmt"
)

// errTaskExited is reported when a submitted function calls runtime.Goexit.
var errTaskExited = fmt.Errorf("task exited before returning: %w", ErrTaskPanicked)

// Result carries the outcome of a submitted function.
type Result[T any] struct {
	Data T
	Err  error
}

// Future is the pending result of a function run by Submit.
type Future[T any] struct {
	done   chan struct{}
	result Result[T]
}

func newFuture[T any]() *Future[T] {
	return &Future[T]{done: make(chan struct{})}
}

func (f *Future[T]) resolve(data T, err error) {
	f.result = Result[T]{Data: data, Err: err}
	close(f.done)
}

// C returns a channel that is closed once the result is available.
func (f *Future[T]) C() <-chan struct{} {
	return f.done
}

// Done reports whether the result is available.
func (f *Future[T]) Done() bool {
	select {
	case <-f.done:
		return true
	default:
		return false
	}
}

// Get waits for the result or for ctx to be done, whichever comes first.
func (f *Future[T]) Get(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.result.Data, f.result.Err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Result returns the result once it is available. It reports false if the
// future is still pending.
func (f *Future[T]) Result() (Result[T], bool) {
	if !f.Done() {
		return Result[T]{}, false
	}
	return f.result, true
}

// Submit posts fn to p and returns a Future for its result.
//
// If fn panics the future resolves with an error wrapping ErrTaskPanicked and
// the panic continues into the pool, which logs and recovers it. Tasks still
// queued when the pool stops never run, so their futures never resolve; pair
// Get with a context deadline if that matters.
func Submit[T any](p *Pool, fn func() (T, error)) (*Future[T], error) {
	if fn == nil {
		return nil, fmt.Errorf("cannot submit task: %w", ErrInvalidTask)
	}

	f := newFuture[T]()
	err := p.PostFunc(func() {
		returned := false
		defer func() {
			if returned {
				return
			}
			var zero T
			r := recover()
			if r == nil {
				f.resolve(zero, errTaskExited)
				return
			}
			f.resolve(zero, fmt.Errorf("%w: %v", ErrTaskPanicked, r))
			panic(r)
		}()

		data, err := fn()
		returned = true
		f.resolve(data, err)
	})
	if err != nil {
		return nil, err
	}
	return f, nil
}

// IsPanicked reports whether err came from a task that panicked or exited
// its goroutine.
func IsPanicked(err error) bool {
	return errors.Is(err, ErrTaskPanicked)
}
