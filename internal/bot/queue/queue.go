// Package queue implements the in-memory job queue feeding the worker.
//
// The queue is insertion-ordered and unbounded: producers run on the chat
// dispatch goroutine and must never block, so Enqueue always returns
// immediately. A single consumer (the worker loop) drains it in FIFO
// order. Jobs live only in process memory; nothing survives a restart.
package queue

import (
	"context"
	"sync"

	"github.com/btquan/tweetnest/internal/bot/domain"
)

// Queue is a multi-producer, single-consumer FIFO of jobs.
type Queue struct {
	mu        sync.Mutex
	items     []*domain.Job
	inFlight  int
	processed uint64

	// notify wakes a blocked Dequeue. Capacity 1 is enough: the single
	// consumer re-checks the slice after every wakeup.
	notify chan struct{}
}

// New creates an empty queue.
func New() *Queue {
	return &Queue{
		notify: make(chan struct{}, 1),
	}
}

// Enqueue appends a job to the tail. It never blocks and is safe to call
// from any goroutine.
func (q *Queue) Enqueue(job *domain.Job) {
	q.mu.Lock()
	q.items = append(q.items, job)
	q.mu.Unlock()

	select {
	case q.notify <- struct{}{}:
	default:
	}
}

// Dequeue blocks until a job is available or ctx is canceled. Jobs come
// out in FIFO order. Only the worker loop may call Dequeue.
func (q *Queue) Dequeue(ctx context.Context) (*domain.Job, error) {
	for {
		q.mu.Lock()
		if len(q.items) > 0 {
			job := q.items[0]
			q.items = q.items[1:]
			q.inFlight++
			q.mu.Unlock()
			return job, nil
		}
		q.mu.Unlock()

		select {
		case <-q.notify:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

// Acknowledge marks the most recently dequeued job as fully processed.
// This is observability bookkeeping, not a correctness requirement.
func (q *Queue) Acknowledge() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.inFlight > 0 {
		q.inFlight--
		q.processed++
	}
}

// Depth returns the number of jobs waiting in the queue.
func (q *Queue) Depth() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// InFlight returns the number of dequeued but unacknowledged jobs.
func (q *Queue) InFlight() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.inFlight
}

// Processed returns the number of acknowledged jobs since startup.
func (q *Queue) Processed() uint64 {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.processed
}
