package workerpool

import (
	"context"
	"errors"
	"runtime"
	"testing"
	"time"

	"github.com/vnykmshr/taskpool/internal/testutil"
)

func TestSubmitResult(t *testing.T) {
	pool := New(2)
	defer pool.Stop()

	f, err := Submit(pool, func() (int, error) {
		return 42, nil
	})
	testutil.AssertNoError(t, err)

	ctx, cancel := testutil.WithTimeout(t)
	defer cancel()

	got, err := f.Get(ctx)
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, got, 42)
	testutil.AssertEqual(t, f.Done(), true)

	res, ok := f.Result()
	testutil.AssertEqual(t, ok, true)
	testutil.AssertEqual(t, res.Data, 42)
}

func TestSubmitError(t *testing.T) {
	pool := New(1)
	defer pool.Stop()

	errBoom := errors.New("boom")
	f, err := Submit(pool, func() (string, error) {
		return "", errBoom
	})
	testutil.AssertNoError(t, err)

	<-f.C()
	res, ok := f.Result()
	testutil.AssertEqual(t, ok, true)
	testutil.AssertEqual(t, errors.Is(res.Err, errBoom), true)
}

func TestSubmitPanic(t *testing.T) {
	var recovered interface{}
	handled := make(chan struct{})
	pool, err := NewWithConfig(Config{
		Workers: 1,
		PanicHandler: func(_ *Task, r interface{}) {
			recovered = r
			close(handled)
		},
	})
	testutil.AssertNoError(t, err)
	defer pool.Stop()

	f, err := Submit(pool, func() (int, error) {
		panic("exploded")
	})
	testutil.AssertNoError(t, err)

	ctx, cancel := testutil.WithTimeout(t)
	defer cancel()
	_, err = f.Get(ctx)
	testutil.AssertEqual(t, errors.Is(err, ErrTaskPanicked), true)
	testutil.AssertEqual(t, IsPanicked(err), true)

	<-handled
	testutil.AssertEqual(t, recovered, interface{}("exploded"))
}

func TestSubmitGoexit(t *testing.T) {
	pool := New(1)
	defer pool.Stop()

	f, err := Submit(pool, func() (int, error) {
		runtime.Goexit()
		return 0, nil
	})
	testutil.AssertNoError(t, err)

	ctx, cancel := testutil.WithTimeout(t)
	defer cancel()
	_, err = f.Get(ctx)
	testutil.AssertEqual(t, IsPanicked(err), true)
}

func TestFutureGetContextDone(t *testing.T) {
	pool := New(1)

	started := make(chan struct{})
	latch := make(chan struct{})
	f, err := Submit(pool, func() (int, error) {
		close(started)
		<-latch
		return 1, nil
	})
	testutil.AssertNoError(t, err)
	<-started

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = f.Get(ctx)
	testutil.AssertEqual(t, errors.Is(err, context.DeadlineExceeded), true)
	testutil.AssertEqual(t, f.Done(), false)

	_, ok := f.Result()
	testutil.AssertEqual(t, ok, false)

	close(latch)
	pool.Stop()
	testutil.AssertEqual(t, f.Done(), true)
}

func TestSubmitRejected(t *testing.T) {
	pool := New(1)
	pool.Stop()

	f, err := Submit(pool, func() (int, error) { return 0, nil })
	testutil.AssertEqual(t, f == nil, true)
	testutil.AssertEqual(t, errors.Is(err, ErrClosed), true)

	f, err = Submit[int](New(0), nil)
	testutil.AssertEqual(t, f == nil, true)
	testutil.AssertEqual(t, errors.Is(err, ErrInvalidTask), true)
}
