// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package agent_execution

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	a2a "github.com/go-a2a/a2a-agent"
)

// RequestContext holds everything an [AgentExecutor] needs about the incoming request.
type RequestContext struct {
	TaskID    string
	ContextID string

	// Message is the user message that started this execution. Nil for cancel requests.
	Message *a2a.Message

	// Task is the stored task the message continues, or nil for a new task.
	Task *a2a.Task

	// Metadata is the request level metadata of message/send.
	Metadata map[string]any
}

// NewRequestContext returns a RequestContext for msg.
func NewRequestContext(msg *a2a.Message, taskID, contextID string, task *a2a.Task) *RequestContext {
	return &RequestContext{
		TaskID:    taskID,
		ContextID: contextID,
		Message:   msg,
		Task:      task,
	}
}

// Goal returns the "goal" metadata of the task, falling back to the message.
func (rc *RequestContext) Goal() string {
	if rc.Task != nil {
		if goal, ok := a2a.MetadataString(rc.Task.Metadata, "goal"); ok {
			return goal
		}
	}
	if rc.Message != nil {
		if goal, ok := a2a.MetadataString(rc.Message.Metadata, "goal"); ok {
			return goal
		}
	}
	return ""
}

// ensureIDs fills in missing task and context ids. A stored task wins over the message.
func (rc *RequestContext) ensureIDs() {
	if rc.TaskID == "" {
		switch {
		case rc.Task != nil:
			rc.TaskID = rc.Task.ID
		case rc.Message != nil && rc.Message.TaskID != "":
			rc.TaskID = rc.Message.TaskID
		default:
			rc.TaskID = uuid.NewString()
		}
	}
	if rc.ContextID == "" {
		switch {
		case rc.Task != nil && rc.Task.ContextID != "":
			rc.ContextID = rc.Task.ContextID
		case rc.Message != nil && rc.Message.ContextID != "":
			rc.ContextID = rc.Message.ContextID
		default:
			rc.ContextID = uuid.NewString()
		}
	}
	if rc.Message != nil {
		rc.Message.TaskID = rc.TaskID
		rc.Message.ContextID = rc.ContextID
	}
}

// Validate reports whether the request context is consistent.
func (rc *RequestContext) Validate() error {
	if rc.TaskID == "" {
		return errors.New("task ID is required")
	}
	if rc.ContextID == "" {
		return errors.New("context ID is required")
	}
	if rc.Task != nil {
		if rc.Task.ID != rc.TaskID {
			return fmt.Errorf("task ID mismatch: request %q, task %q", rc.TaskID, rc.Task.ID)
		}
		if rc.Task.ContextID != "" && rc.Task.ContextID != rc.ContextID {
			return fmt.Errorf("context ID mismatch: request %q, task %q", rc.ContextID, rc.Task.ContextID)
		}
	}
	return nil
}
