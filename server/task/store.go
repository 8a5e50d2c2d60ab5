// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

// Package task stores task snapshots and keeps them in step with the events an agent publishes.
package task

import (
	"context"

	a2a "github.com/go-a2a/a2a-agent"
)

// TaskStore defines the interface for task persistence operations.
type TaskStore interface {
	// Save persists a task, replacing any stored task with the same ID.
	Save(ctx context.Context, task *a2a.Task) error

	// Get retrieves a task by its ID.
	// Returns a2a.TaskNotFoundError if the task doesn't exist.
	Get(ctx context.Context, taskID string) (*a2a.Task, error)

	// Delete removes a task.
	// Returns a2a.TaskNotFoundError if the task doesn't exist.
	Delete(ctx context.Context, taskID string) error

	// Close cleanly shuts down the storage backend.
	Close(ctx context.Context) error
}
