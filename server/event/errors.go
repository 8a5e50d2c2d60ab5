// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package event

import "errors"

var (
	// ErrQueueClosed is returned when attempting to use a closed queue.
	ErrQueueClosed = errors.New("event queue is closed")

	// ErrQueueEmpty is returned when attempting to dequeue from an empty queue
	// in non-blocking mode.
	ErrQueueEmpty = errors.New("event queue is empty")

	// ErrInvalidQueueSize is returned when attempting to create a queue with
	// invalid size.
	ErrInvalidQueueSize = errors.New("max queue size must be greater than 0")

	// ErrQueueExists is returned when a queue is already registered for a task.
	ErrQueueExists = errors.New("event queue already exists for task")
)
