package workerpool

import "sync"

// compactThreshold is the minimum number of consumed slots before the queue
// moves its live items back to the start of the backing array.
const compactThreshold = 64

// Queue is a FIFO of tasks guarded by a single mutex.
//
// The mutex is borrowed: a Pool hands the same guard to its queue and uses it
// for its condition variable, so checking for work and popping it happen in
// one critical section. The exported methods acquire the guard themselves;
// the *Locked variants expect the caller to hold it.
type Queue struct {
	mu    *sync.Mutex
	items []*Task
	head  int
}

// NewQueue creates a queue guarded by guard. A nil guard gives the queue a
// mutex of its own.
func NewQueue(guard *sync.Mutex) *Queue {
	if guard == nil {
		guard = &sync.Mutex{}
	}
	return &Queue{mu: guard}
}

// Push appends t to the back of the queue. It does not wake any worker.
func (q *Queue) Push(t *Task) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.pushLocked(t)
}

// PopFront removes and returns the earliest pushed task. It returns false
// when the queue is empty.
func (q *Queue) PopFront() (*Task, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.popLocked()
}

// Front returns the earliest pushed task without removing it.
func (q *Queue) Front() (*Task, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.lenLocked() == 0 {
		return nil, false
	}
	return q.items[q.head], true
}

// Empty reports whether the queue holds no tasks at the instant of the call.
func (q *Queue) Empty() bool {
	return q.Len() == 0
}

// Len returns the number of queued tasks at the instant of the call.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.lenLocked()
}

func (q *Queue) pushLocked(t *Task) {
	q.items = append(q.items, t)
}

func (q *Queue) popLocked() (*Task, bool) {
	if q.lenLocked() == 0 {
		return nil, false
	}
	t := q.items[q.head]
	q.items[q.head] = nil
	q.head++

	switch {
	case q.head == len(q.items):
		q.items = q.items[:0]
		q.head = 0
	case q.head >= compactThreshold && q.head*2 >= len(q.items):
		n := copy(q.items, q.items[q.head:])
		clear(q.items[n:])
		q.items = q.items[:n]
		q.head = 0
	}
	return t, true
}

func (q *Queue) lenLocked() int {
	return len(q.items) - q.head
}
