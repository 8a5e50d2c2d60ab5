// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package a2a

import (
	"fmt"

	"github.com/go-json-experiment/json"
)

// IsTerminalState reports whether no further work can happen for a task in state.
//
// input-required is not terminal: the task resumes when the user answers.
func IsTerminalState(state TaskState) bool {
	switch state {
	case TaskStateCompleted, TaskStateCanceled, TaskStateFailed, TaskStateRejected:
		return true
	default:
		return false
	}
}

// IsFinalEvent reports whether ev ends the event stream of one execution.
func IsFinalEvent(ev Event) bool {
	switch ev := ev.(type) {
	case *Message:
		return true
	case *TaskStatusUpdateEvent:
		return ev.Final
	case *Task:
		return IsTerminalState(ev.Status.State) || ev.Status.State == TaskStateInputRequired
	default:
		return false
	}
}

// UnmarshalEvent decodes a JSON event, picking the concrete type from its "kind" member.
func UnmarshalEvent(data []byte) (Event, error) {
	var probe struct {
		Kind string `json:"kind"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, err
	}

	var ev Event
	switch probe.Kind {
	case KindMessage:
		ev = new(Message)
	case KindTask:
		ev = new(Task)
	case KindStatusUpdate:
		ev = new(TaskStatusUpdateEvent)
	default:
		return nil, fmt.Errorf("unknown event kind %q", probe.Kind)
	}
	if err := json.Unmarshal(data, ev); err != nil {
		return nil, err
	}
	return ev, nil
}
