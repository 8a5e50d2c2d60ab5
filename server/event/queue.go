// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package event

import (
	"context"
	"sync"

	a2a "github.com/go-a2a/a2a-agent"
)

// DefaultMaxQueueSize is the default maximum queue size.
const DefaultMaxQueueSize = 1024

// Queue is a bounded, ordered event queue with support for child queues that receive
// copies of all later events (taps).
type Queue struct {
	events    chan a2a.Event
	maxSize   int
	done      chan struct{}
	closeOnce sync.Once

	mu       sync.RWMutex
	closed   bool
	children []*Queue
}

var _ Bus = (*Queue)(nil)

// NewQueue creates a new event queue with the specified maximum size.
// If maxSize is 0, DefaultMaxQueueSize is used.
func NewQueue(maxSize int) (*Queue, error) {
	if maxSize < 0 {
		return nil, ErrInvalidQueueSize
	}
	if maxSize == 0 {
		maxSize = DefaultMaxQueueSize
	}
	return &Queue{
		events:  make(chan a2a.Event, maxSize),
		maxSize: maxSize,
		done:    make(chan struct{}),
	}, nil
}

// Publish adds ev to the queue, waiting for room if it is full, and forwards it to every tap.
// A tap that cannot keep up is closed rather than slowing the publisher down.
// Returns ErrQueueClosed if the queue is closed.
func (q *Queue) Publish(ctx context.Context, ev a2a.Event) error {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		return ErrQueueClosed
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-q.done:
		return ErrQueueClosed
	case q.events <- ev:
	}

	for _, child := range q.children {
		if err := child.offer(ev); err != nil {
			child.Close()
		}
	}
	return nil
}

// offer enqueues ev without blocking.
func (q *Queue) offer(ev a2a.Event) error {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		return ErrQueueClosed
	}
	select {
	case q.events <- ev:
		return nil
	default:
		return ErrQueueClosed
	}
}

// Dequeue retrieves the next event.
// If noWait is true, returns immediately with ErrQueueEmpty if the queue is empty.
// Otherwise it blocks until an event is available, the queue is closed and drained, or ctx is done.
func (q *Queue) Dequeue(ctx context.Context, noWait bool) (a2a.Event, error) {
	if noWait {
		select {
		case ev := <-q.events:
			return ev, nil
		default:
			if q.IsClosed() {
				return nil, ErrQueueClosed
			}
			return nil, ErrQueueEmpty
		}
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case ev := <-q.events:
		return ev, nil
	case <-q.done:
		// drain what was published before Close
		select {
		case ev := <-q.events:
			return ev, nil
		default:
			return nil, ErrQueueClosed
		}
	}
}

// Tap creates and returns a new Queue that receives all events published to q from now on.
func (q *Queue) Tap() (*Queue, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil, ErrQueueClosed
	}
	child, err := NewQueue(q.maxSize)
	if err != nil {
		return nil, err
	}
	q.children = append(q.children, child)
	return child, nil
}

// Close closes the queue and all its taps. Events already queued can still be dequeued.
func (q *Queue) Close() {
	q.closeOnce.Do(func() {
		// wake blocked publishers before taking the write lock
		close(q.done)

		q.mu.Lock()
		q.closed = true
		children := q.children
		q.children = nil
		q.mu.Unlock()

		for _, child := range children {
			child.Close()
		}
	})
}

// IsClosed returns true if the queue is closed.
func (q *Queue) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}

// Len returns the current number of queued events.
func (q *Queue) Len() int {
	return len(q.events)
}

// Capacity returns the maximum capacity of the queue.
func (q *Queue) Capacity() int {
	return q.maxSize
}
