package benchmark

import (
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/vnykmshr/taskpool/pkg/scheduling/scheduler"
	"github.com/vnykmshr/taskpool/pkg/scheduling/workerpool"
)

// BenchmarkWorkerPoolPost measures task posting performance.
func BenchmarkWorkerPoolPost(b *testing.B) {
	workerCounts := []int{2, 4, 8}

	for _, workers := range workerCounts {
		b.Run(workerLabel(workers), func(b *testing.B) {
			pool := workerpool.New(workers)
			defer pool.Stop()

			var wg sync.WaitGroup
			wg.Add(b.N)
			task := workerpool.Func(wg.Done)

			b.ReportAllocs()
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				_ = pool.Post(task)
			}
			wg.Wait()
		})
	}
}

// BenchmarkWorkerPoolContention measures performance when many goroutines post at once.
func BenchmarkWorkerPoolContention(b *testing.B) {
	pool := workerpool.New(4)
	defer pool.Stop()

	var executed int64
	task := workerpool.Func(func() {
		atomic.AddInt64(&executed, 1)
	})

	b.ReportAllocs()
	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			_ = pool.Post(task)
		}
	})
}

// BenchmarkWorkerPoolVsGoroutines compares the pool with a goroutine per task.
func BenchmarkWorkerPoolVsGoroutines(b *testing.B) {
	work := func() {
		sum := 0
		for i := 0; i < 100; i++ {
			sum += i
		}
		_ = sum
	}

	b.Run("pool", func(b *testing.B) {
		pool := workerpool.New(8)
		defer pool.Stop()

		var wg sync.WaitGroup
		wg.Add(b.N)
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			_ = pool.PostFunc(func() {
				defer wg.Done()
				work()
			})
		}
		wg.Wait()
	})

	b.Run("goroutines", func(b *testing.B) {
		var wg sync.WaitGroup
		wg.Add(b.N)
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			go func() {
				defer wg.Done()
				work()
			}()
		}
		wg.Wait()
	})
}

// BenchmarkWorkerPoolScaling measures performance with different pool sizes.
func BenchmarkWorkerPoolScaling(b *testing.B) {
	for _, workers := range []int{1, 2, 4, 8, 16} {
		b.Run(workerLabel(workers), func(b *testing.B) {
			pool := workerpool.New(workers)
			defer pool.Stop()

			var wg sync.WaitGroup
			wg.Add(b.N)
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				_ = pool.PostFunc(func() {
					defer wg.Done()
					time.Sleep(time.Microsecond)
				})
			}
			wg.Wait()
		})
	}
}

// BenchmarkSubmitFuture measures the overhead of result plumbing through a Future.
func BenchmarkSubmitFuture(b *testing.B) {
	pool := workerpool.New(4)
	defer pool.Stop()

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		f, err := workerpool.Submit(pool, func() (int, error) { return i, nil })
		if err != nil {
			b.Fatal(err)
		}
		<-f.C()
	}
}

// BenchmarkSchedulerDispatch measures how quickly due entries reach the pool.
func BenchmarkSchedulerDispatch(b *testing.B) {
	pool := workerpool.New(4)
	defer pool.Stop()

	s := scheduler.NewWithConfig(scheduler.Config{
		WorkerPool:   pool,
		TickInterval: time.Millisecond,
		MaxTasks:     b.N + 1,
	})
	defer func() { <-s.Stop() }()

	var wg sync.WaitGroup
	wg.Add(b.N)
	task := workerpool.Func(wg.Done)
	now := time.Now()
	for i := 0; i < b.N; i++ {
		if err := s.Schedule(fmt.Sprintf("task-%d", i), task, now); err != nil {
			b.Fatal(err)
		}
	}

	b.ResetTimer()
	if err := s.Start(); err != nil {
		b.Fatal(err)
	}
	wg.Wait()
}

// BenchmarkWorkerPoolStop measures stop latency with idle workers.
func BenchmarkWorkerPoolStop(b *testing.B) {
	for i := 0; i < b.N; i++ {
		b.StopTimer()
		pool := workerpool.New(4)
		b.StartTimer()
		pool.Stop()
	}
}

// workerLabel returns a readable label for worker counts.
func workerLabel(workers int) string {
	return fmt.Sprintf("%dworkers", workers)
}
