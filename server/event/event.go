// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

// Package event delivers the lifecycle events published by an agent executor to the
// protocol layer, in publication order per task.
package event

import (
	"context"

	a2a "github.com/go-a2a/a2a-agent"
)

// Bus is the sink an agent executor publishes task lifecycle events to.
type Bus interface {
	// Publish delivers ev. Events of one task are delivered in the order they were published.
	Publish(ctx context.Context, ev a2a.Event) error
}

// BusFunc adapts a function to [Bus].
type BusFunc func(ctx context.Context, ev a2a.Event) error

// Publish implements [Bus].
func (f BusFunc) Publish(ctx context.Context, ev a2a.Event) error {
	return f(ctx, ev)
}

// TaskID returns the ID of the task ev belongs to.
func TaskID(ev a2a.Event) string {
	switch ev := ev.(type) {
	case *a2a.Task:
		return ev.ID
	case *a2a.TaskStatusUpdateEvent:
		return ev.TaskID
	case *a2a.Message:
		return ev.TaskID
	default:
		return ""
	}
}
