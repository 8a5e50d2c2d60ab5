// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package event

import (
	"fmt"
	"sync"
)

// QueueManager keeps one [Queue] per running task.
type QueueManager struct {
	mu      sync.Mutex
	queues  map[string]*Queue
	maxSize int
}

// NewQueueManager creates a QueueManager whose queues hold up to maxSize events.
// If maxSize is 0, DefaultMaxQueueSize is used.
func NewQueueManager(maxSize int) *QueueManager {
	return &QueueManager{
		queues:  make(map[string]*Queue),
		maxSize: maxSize,
	}
}

// Create registers a new queue for taskID.
// Returns ErrQueueExists if the task already has one.
func (m *QueueManager) Create(taskID string) (*Queue, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.queues[taskID]; ok {
		return nil, fmt.Errorf("%w: %s", ErrQueueExists, taskID)
	}
	q, err := NewQueue(m.maxSize)
	if err != nil {
		return nil, err
	}
	m.queues[taskID] = q
	return q, nil
}

// Get returns the queue of taskID, or nil if the task has none.
func (m *QueueManager) Get(taskID string) *Queue {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.queues[taskID]
}

// Tap returns a child of the queue of taskID, or nil if the task has no open queue.
func (m *QueueManager) Tap(taskID string) *Queue {
	q := m.Get(taskID)
	if q == nil {
		return nil
	}
	child, err := q.Tap()
	if err != nil {
		return nil
	}
	return child
}

// Close closes and forgets the queue of taskID. It is a no-op for unknown tasks.
func (m *QueueManager) Close(taskID string) {
	m.mu.Lock()
	q, ok := m.queues[taskID]
	delete(m.queues, taskID)
	m.mu.Unlock()

	if ok {
		q.Close()
	}
}

// Detach forgets the queue of taskID if it is still q, without closing it. It reports
// whether q was registered.
func (m *QueueManager) Detach(taskID string, q *Queue) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if cur, ok := m.queues[taskID]; ok && cur == q {
		delete(m.queues, taskID)
		return true
	}
	return false
}

// Count returns the number of queues managed by this manager.
func (m *QueueManager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.queues)
}

// CloseAll closes all queues managed by this manager.
func (m *QueueManager) CloseAll() {
	m.mu.Lock()
	queues := m.queues
	m.queues = make(map[string]*Queue)
	m.mu.Unlock()

	for _, q := range queues {
		q.Close()
	}
}
