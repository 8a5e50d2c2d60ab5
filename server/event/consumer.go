// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package event

import (
	"context"
	"errors"
	"sync"

	a2a "github.com/go-a2a/a2a-agent"
)

// Consumer reads the events of one execution from a [Queue].
type Consumer struct {
	queue *Queue

	mu  sync.Mutex
	err error
}

// NewConsumer creates a new consumer for the given queue.
func NewConsumer(queue *Queue) *Consumer {
	return &Consumer{queue: queue}
}

// ConsumeAll returns a channel that yields events in publication order.
// The channel is closed after a final event (see [a2a.IsFinalEvent]), when the queue is
// closed and drained, or when ctx is done. Check [Consumer.Err] after the channel closes.
func (c *Consumer) ConsumeAll(ctx context.Context) <-chan a2a.Event {
	events := make(chan a2a.Event)

	go func() {
		defer close(events)

		for {
			ev, err := c.queue.Dequeue(ctx, false)
			if err != nil {
				if !errors.Is(err, ErrQueueClosed) {
					c.setErr(err)
				}
				return
			}

			select {
			case events <- ev:
			case <-ctx.Done():
				c.setErr(ctx.Err())
				return
			}

			if a2a.IsFinalEvent(ev) {
				return
			}
		}
	}()

	return events
}

// Err returns the error that stopped consumption, if any. A closed queue is not an error.
func (c *Consumer) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

func (c *Consumer) setErr(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err == nil {
		c.err = err
	}
}
