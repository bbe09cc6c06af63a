package workerpool

import (
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/vnykmshr/taskpool/pkg/metrics"
)

// postAndWait posts n no-op tasks and waits for all of them to run.
func postAndWait(b *testing.B, pool *Pool, n int, fn func()) {
	b.Helper()
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		if err := pool.PostFunc(func() {
			defer wg.Done()
			fn()
		}); err != nil {
			b.Fatalf("post failed: %v", err)
		}
	}
	wg.Wait()
}

// BenchmarkTaskExecution measures the overhead of posting and running a task
func BenchmarkTaskExecution(b *testing.B) {
	pool := New(4)
	defer pool.Stop()

	b.ResetTimer()
	postAndWait(b, pool, b.N, func() {})
}

// BenchmarkTaskExecutionWithWork measures performance with actual work
func BenchmarkTaskExecutionWithWork(b *testing.B) {
	pool := New(4)
	defer pool.Stop()

	var sink int64
	b.ResetTimer()
	postAndWait(b, pool, b.N, func() {
		// Simulate some CPU work
		sum := 0
		for i := 0; i < 1000; i++ {
			sum += i
		}
		atomic.AddInt64(&sink, int64(sum))
	})
}

// BenchmarkConcurrentPost measures posting from many goroutines at once
func BenchmarkConcurrentPost(b *testing.B) {
	pool := New(8)
	defer pool.Stop()

	var wg sync.WaitGroup
	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			wg.Add(1)
			_ = pool.PostFunc(wg.Done)
		}
	})
	wg.Wait()
}

// BenchmarkWorkerPoolScaling tests performance with different worker counts
func BenchmarkWorkerPoolScaling(b *testing.B) {
	workerCounts := []int{1, 2, 4, 8, 16}

	for _, workerCount := range workerCounts {
		b.Run(fmt.Sprintf("Workers-%d", workerCount), func(b *testing.B) {
			pool := New(workerCount)
			defer pool.Stop()

			b.ResetTimer()
			postAndWait(b, pool, b.N, func() {})
		})
	}
}

// BenchmarkPanicRecovery measures the cost of recovering a panicking task
func BenchmarkPanicRecovery(b *testing.B) {
	pool, err := NewWithConfig(Config{Workers: 4, PanicHandler: func(*Task, interface{}) {}})
	if err != nil {
		b.Fatal(err)
	}
	defer pool.Stop()

	b.ResetTimer()
	postAndWait(b, pool, b.N, func() { panic("bench") })
}

// BenchmarkMetricsOverhead compares pools with and without instrumentation
func BenchmarkMetricsOverhead(b *testing.B) {
	b.Run("WithMetrics", func(b *testing.B) {
		pool, err := NewWithConfig(Config{
			Name:    "bench",
			Workers: 4,
			Metrics: metrics.NewRegistry(prometheus.NewRegistry()),
		})
		if err != nil {
			b.Fatal(err)
		}
		defer pool.Stop()

		b.ResetTimer()
		postAndWait(b, pool, b.N, func() {})
	})

	b.Run("WithoutMetrics", func(b *testing.B) {
		pool := New(4)
		defer pool.Stop()

		b.ResetTimer()
		postAndWait(b, pool, b.N, func() {})
	})
}

// BenchmarkStopPerformance measures how long Stop takes with queued work
func BenchmarkStopPerformance(b *testing.B) {
	for i := 0; i < b.N; i++ {
		b.StopTimer()
		pool := New(4)
		for j := 0; j < 50; j++ {
			_ = pool.PostFunc(func() {})
		}
		b.StartTimer()
		pool.Stop()
	}
}

// BenchmarkStateInspection measures performance of state inspection methods
func BenchmarkStateInspection(b *testing.B) {
	pool := New(4)
	defer pool.Stop()

	for i := 0; i < 10; i++ {
		_ = pool.PostFunc(func() {
			time.Sleep(10 * time.Millisecond)
		})
	}

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			pool.Size()
			pool.QueueSize()
			pool.ActiveServices()
			pool.Stats()
		}
	})
}
