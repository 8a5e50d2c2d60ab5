// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package contextstore

import (
	"context"
	"fmt"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	a2a "github.com/go-a2a/a2a-agent"
)

// LRUStore is a [Store] that keeps at most a fixed number of contexts, evicting the least
// recently used one when full. Within a context the history still only grows.
type LRUStore struct {
	// mu makes the read-modify-write in Append atomic; the cache is itself thread safe.
	mu    sync.Mutex
	cache *lru.Cache[string, []a2a.Message]
}

var _ Store = (*LRUStore)(nil)

// NewLRUStore creates an LRUStore holding up to size contexts.
func NewLRUStore(size int) (*LRUStore, error) {
	cache, err := lru.New[string, []a2a.Message](size)
	if err != nil {
		return nil, fmt.Errorf("create context cache: %w", err)
	}
	return &LRUStore{cache: cache}, nil
}

// Get implements [Store].
func (s *LRUStore) Get(_ context.Context, contextID string) ([]a2a.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	history, _ := s.cache.Get(contextID)
	return cloneHistory(history), nil
}

// Append implements [Store].
func (s *LRUStore) Append(_ context.Context, contextID string, msgs ...a2a.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	history, _ := s.cache.Get(contextID)
	s.cache.Add(contextID, appendUnique(history, msgs))
	return nil
}

// Clear implements [Store].
func (s *LRUStore) Clear(_ context.Context, contextID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cache.Remove(contextID)
	return nil
}

// Len returns the number of contexts currently held.
func (s *LRUStore) Len() int {
	return s.cache.Len()
}
