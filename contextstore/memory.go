// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package contextstore

import (
	"context"
	"sync"

	a2a "github.com/go-a2a/a2a-agent"
)

// MemoryStore is an unbounded in-memory [Store].
// Entries live for the life of the process; nothing is ever evicted.
type MemoryStore struct {
	mu       sync.RWMutex
	contexts map[string][]a2a.Message
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates a new MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		contexts: make(map[string][]a2a.Message),
	}
}

// Get implements [Store].
func (s *MemoryStore) Get(_ context.Context, contextID string) ([]a2a.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return cloneHistory(s.contexts[contextID]), nil
}

// Append implements [Store].
func (s *MemoryStore) Append(_ context.Context, contextID string, msgs ...a2a.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.contexts[contextID] = appendUnique(s.contexts[contextID], msgs)
	return nil
}

// Clear implements [Store].
func (s *MemoryStore) Clear(_ context.Context, contextID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.contexts, contextID)
	return nil
}

// Len returns the number of contexts held.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.contexts)
}
