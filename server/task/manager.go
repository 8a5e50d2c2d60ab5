// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package task

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"sync"

	a2a "github.com/go-a2a/a2a-agent"
	"github.com/go-a2a/a2a-agent/server/event"
)

// Manager keeps stored task snapshots in step with the events published for them.
type Manager struct {
	store  TaskStore
	logger *slog.Logger

	// serializes read-modify-write cycles on the store
	mu sync.Mutex
}

// NewManager returns a Manager over store. A nil logger means [slog.Default].
func NewManager(store TaskStore, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{store: store, logger: logger}
}

// Get returns the stored snapshot of taskID.
func (m *Manager) Get(ctx context.Context, taskID string) (*a2a.Task, error) {
	return m.store.Get(ctx, taskID)
}

// Process folds ev into the stored snapshot and returns the updated task.
//
// A *Task replaces the snapshot. A status update replaces the status and appends its
// message to the history unless a message with the same id is already there; an update for
// an unknown task creates it. A *Message does not touch the store and yields a nil task.
func (m *Manager) Process(ctx context.Context, ev a2a.Event) (*a2a.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch ev := ev.(type) {
	case *a2a.Task:
		if err := m.store.Save(ctx, ev); err != nil {
			return nil, err
		}
		return ev.Clone(), nil

	case *a2a.TaskStatusUpdateEvent:
		task, err := m.store.Get(ctx, ev.TaskID)
		switch {
		case a2a.IsTaskNotFound(err):
			task = &a2a.Task{ID: ev.TaskID, ContextID: ev.ContextID, Kind: a2a.KindTask}
		case err != nil:
			return nil, err
		}

		task.Status = ev.Status
		if msg := ev.Status.Message; msg != nil && !task.HasMessage(msg.MessageID) {
			task.History = append(task.History, *msg.Clone())
		}
		if len(ev.Metadata) > 0 {
			if task.Metadata == nil {
				task.Metadata = make(map[string]any, len(ev.Metadata))
			}
			maps.Copy(task.Metadata, ev.Metadata)
		}
		if err := m.store.Save(ctx, task); err != nil {
			return nil, err
		}
		return task, nil

	case *a2a.Message:
		return nil, nil

	default:
		return nil, fmt.Errorf("unsupported event %T", ev)
	}
}

// AppendMessage appends msg to the stored history of taskID, skipping duplicates.
func (m *Manager) AppendMessage(ctx context.Context, taskID string, msg *a2a.Message) (*a2a.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	task, err := m.store.Get(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if !task.HasMessage(msg.MessageID) {
		task.History = append(task.History, *msg.Clone())
		if err := m.store.Save(ctx, task); err != nil {
			return nil, err
		}
	}
	return task, nil
}

// Recorder returns a [event.Bus] that processes every event before forwarding it to next.
// Store failures are logged; they never keep an event from its subscribers.
func (m *Manager) Recorder(next event.Bus) event.Bus {
	return event.BusFunc(func(ctx context.Context, ev a2a.Event) error {
		if _, err := m.Process(ctx, ev); err != nil {
			m.logger.ErrorContext(ctx, "record task event",
				slog.String("task_id", event.TaskID(ev)),
				slog.String("kind", ev.EventKind()),
				slog.Any("error", err),
			)
		}
		return next.Publish(ctx, ev)
	})
}
