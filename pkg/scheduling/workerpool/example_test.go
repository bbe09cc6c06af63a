package workerpool_test

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/vnykmshr/taskpool/pkg/scheduling/workerpool"
)

// Example demonstrates basic usage of the worker pool
func Example() {
	pool := workerpool.New(3)
	defer pool.Stop()

	var wg sync.WaitGroup
	wg.Add(1)
	if err := pool.PostFunc(func() {
		defer wg.Done()
		fmt.Println("Task executed")
	}); err != nil {
		log.Printf("Failed to post task: %v", err)
		return
	}
	wg.Wait()

	// Output: Task executed
}

// Example_webCrawler demonstrates fanning page fetches out over a pool
func Example_webCrawler() {
	pool := workerpool.New(5)
	defer pool.Stop()

	urls := []string{
		"https://example.com",
		"https://google.com",
		"https://github.com",
	}

	var (
		mu      sync.Mutex
		crawled []string
		wg      sync.WaitGroup
	)
	for _, url := range urls {
		url := url
		wg.Add(1)
		if err := pool.PostFunc(func() {
			defer wg.Done()
			// Simulate web crawling
			time.Sleep(10 * time.Millisecond)
			mu.Lock()
			crawled = append(crawled, url)
			mu.Unlock()
		}); err != nil {
			wg.Done()
			log.Printf("Failed to post crawl task for %s: %v", url, err)
		}
	}
	wg.Wait()

	sort.Strings(crawled)
	fmt.Printf("Completed crawling %d URLs\n", len(crawled))
	fmt.Println(strings.Join(crawled, "\n"))

	// Output:
	// Completed crawling 3 URLs
	// https://example.com
	// https://github.com
	// https://google.com
}

// ExampleSubmit demonstrates collecting a result through a Future
func ExampleSubmit() {
	pool := workerpool.New(2)
	defer pool.Stop()

	f, err := workerpool.Submit(pool, func() (int, error) {
		sum := 0
		for i := 1; i <= 10; i++ {
			sum += i
		}
		return sum, nil
	})
	if err != nil {
		log.Printf("Failed to submit: %v", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	sum, err := f.Get(ctx)
	if err != nil {
		log.Printf("Task failed: %v", err)
		return
	}
	fmt.Println("Sum:", sum)

	// Output: Sum: 55
}

// ExampleNewWithConfig demonstrates lifecycle hooks and panic handling
func ExampleNewWithConfig() {
	panics := make(chan interface{}, 1)
	pool, err := workerpool.NewWithConfig(workerpool.Config{
		Name:    "image-processing",
		Workers: 2,
		PanicHandler: func(task *workerpool.Task, recovered interface{}) {
			panics <- recovered
		},
	})
	if err != nil {
		log.Fatal(err)
	}
	defer pool.Stop()

	_ = pool.PostFunc(func() {
		panic("corrupt image")
	})

	fmt.Println("Recovered:", <-panics)
	fmt.Println("Workers:", pool.Size())

	// Output:
	// Recovered: corrupt image
	// Workers: 2
}

// ExamplePool_Stop demonstrates that queued tasks are abandoned on stop
func ExamplePool_Stop() {
	pool := workerpool.New(0)

	for i := 0; i < 3; i++ {
		_ = pool.PostFunc(func() {
			fmt.Println("never printed")
		})
	}
	pool.Stop()
	pool.Stop() // idempotent

	fmt.Println("Abandoned:", pool.QueueSize())
	if err := pool.PostFunc(func() {}); err != nil {
		fmt.Println(err)
	}

	// Output:
	// Abandoned: 3
	// cannot post task: worker pool has been stopped: resource is closed
}

// ExamplePool_Grow demonstrates adding workers to a running pool
func ExamplePool_Grow() {
	pool := workerpool.New(0)
	defer pool.Stop()

	var wg sync.WaitGroup
	wg.Add(1)
	_ = pool.PostFunc(func() {
		defer wg.Done()
		fmt.Println("ran after grow")
	})

	if err := pool.Grow(1); err != nil {
		log.Fatal(err)
	}
	wg.Wait()
	fmt.Println("Workers:", pool.Size())

	// Output:
	// ran after grow
	// Workers: 1
}

// ExampleShared demonstrates the process-wide pool
func ExampleShared() {
	defer workerpool.Shutdown()

	done := make(chan string)
	_ = workerpool.PostFunc(func() {
		done <- "handled by the shared pool"
	})
	fmt.Println(<-done)

	// Output: handled by the shared pool
}
