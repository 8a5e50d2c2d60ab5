// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package agent

import "sync"

// cancelSet records cancellation intent per task. Intent may be recorded before the execution
// it targets has started; it is consumed at the checkpoint and dropped once the task is terminal.
type cancelSet struct {
	mu        sync.Mutex
	requested map[string]struct{}
}

func (s *cancelSet) request(taskID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.requested == nil {
		s.requested = make(map[string]struct{})
	}
	s.requested[taskID] = struct{}{}
}

// take reports whether intent was recorded for taskID and clears it.
func (s *cancelSet) take(taskID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.requested[taskID]
	delete(s.requested, taskID)
	return ok
}

func (s *cancelSet) forget(taskID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.requested, taskID)
}
