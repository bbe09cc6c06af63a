package workerpool

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/vnykmshr/taskpool/internal/testutil"
)

type counter struct {
	n int32
}

func (c *counter) Run() {
	atomic.AddInt32(&c.n, 1)
}

func TestTaskInvokesOnce(t *testing.T) {
	c := &counter{}
	task := NewTask(c)

	testutil.AssertEqual(t, task.Invoked(), false)
	task.Invoke()
	task.Invoke()
	testutil.AssertEqual(t, task.Invoked(), true)
	testutil.AssertEqual(t, atomic.LoadInt32(&c.n), int32(1))
}

func TestTaskConcurrentInvoke(t *testing.T) {
	c := &counter{}
	task := NewTask(c)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			task.Invoke()
		}()
	}
	wg.Wait()

	testutil.AssertEqual(t, atomic.LoadInt32(&c.n), int32(1))
}

func TestTaskKeepsCapturedState(t *testing.T) {
	type payload struct {
		values []int
	}
	p := &payload{values: []int{1, 2, 3}}
	var sum int

	task := NewTask(Func(func() {
		for _, v := range p.values {
			sum += v
		}
	}))
	task.Invoke()

	testutil.AssertEqual(t, sum, 6)
}

func TestTaskPanicPropagates(t *testing.T) {
	task := NewTask(Func(func() { panic("task failure") }))

	defer func() {
		r := recover()
		testutil.AssertEqual(t, r, interface{}("task failure"))
		testutil.AssertEqual(t, task.Invoked(), true)
	}()
	task.Invoke()
	t.Fatal("panic did not propagate")
}

func TestCallAdapters(t *testing.T) {
	var got []string

	Call(func() string {
		got = append(got, "call")
		return "discarded"
	}).Run()
	CallErr(func() error {
		got = append(got, "callerr")
		return nil
	}).Run()

	testutil.AssertEqual(t, len(got), 2)
	testutil.AssertEqual(t, got[0], "call")
	testutil.AssertEqual(t, got[1], "callerr")
}

func TestTaskValid(t *testing.T) {
	var nilTask *Task
	var nilFunc Func
	used := NewTask(Func(func() {}))
	used.Invoke()

	tests := []struct {
		name string
		task *Task
		want bool
	}{
		{"nil task", nilTask, false},
		{"nil runner", NewTask(nil), false},
		{"nil func", NewTask(nilFunc), false},
		{"invoked", used, false},
		{"fresh", NewTask(&counter{}), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			testutil.AssertEqual(t, tt.task.valid(), tt.want)
		})
	}
}
