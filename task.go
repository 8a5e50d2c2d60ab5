// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package a2a

import (
	"errors"
	"time"
)

// Now returns the current time formatted as an A2A timestamp.
func Now() string {
	return Timestamp(time.Now())
}

// Timestamp formats t as an ISO 8601 timestamp in UTC with millisecond precision.
func Timestamp(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000Z07:00")
}

// NewSubmittedTask creates a new task in the submitted state seeded with the triggering message.
//
// The task metadata is taken from the message metadata.
func NewSubmittedTask(msg *Message, taskID, contextID string, now time.Time) *Task {
	return &Task{
		ID:        taskID,
		ContextID: contextID,
		Status: TaskStatus{
			State:     TaskStateSubmitted,
			Timestamp: Timestamp(now),
		},
		History:  []Message{*msg.Clone()},
		Metadata: cloneMap(msg.Metadata),
		Kind:     KindTask,
	}
}

// NewStatusUpdateEvent creates a [TaskStatusUpdateEvent] for the given task.
func NewStatusUpdateEvent(taskID, contextID string, state TaskState, msg *Message, final bool, now time.Time) *TaskStatusUpdateEvent {
	return &TaskStatusUpdateEvent{
		TaskID:    taskID,
		ContextID: contextID,
		Status: TaskStatus{
			State:     state,
			Message:   msg,
			Timestamp: Timestamp(now),
		},
		Final: final,
		Kind:  KindStatusUpdate,
	}
}

// Validate ensures the Task is well formed.
func (t *Task) Validate() error {
	if t == nil {
		return errors.New("task cannot be nil")
	}
	if t.ID == "" {
		return errors.New("task ID cannot be empty")
	}
	if t.ContextID == "" {
		return errors.New("task context ID cannot be empty")
	}
	if t.Status.State == "" {
		return errors.New("task status state cannot be empty")
	}
	return nil
}

// Clone returns a deep copy of t.
func (t *Task) Clone() *Task {
	if t == nil {
		return nil
	}
	c := *t
	c.Status.Message = t.Status.Message.Clone()
	if t.History != nil {
		c.History = make([]Message, len(t.History))
		for i := range t.History {
			c.History[i] = *t.History[i].Clone()
		}
	}
	c.Metadata = cloneMap(t.Metadata)
	return &c
}

// HasMessage reports whether the history already contains a message with messageID.
func (t *Task) HasMessage(messageID string) bool {
	for _, m := range t.History {
		if m.MessageID == messageID {
			return true
		}
	}
	return false
}

// TrimHistory keeps only the last n history entries. A negative n leaves history untouched.
func (t *Task) TrimHistory(n int) {
	if n < 0 || len(t.History) <= n {
		return
	}
	t.History = t.History[len(t.History)-n:]
}
