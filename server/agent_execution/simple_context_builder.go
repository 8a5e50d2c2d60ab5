// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package agent_execution

import (
	"context"
	"errors"
	"fmt"

	a2a "github.com/go-a2a/a2a-agent"
)

// SimpleRequestContextBuilder is the default [RequestContextBuilder].
type SimpleRequestContextBuilder struct{}

var _ RequestContextBuilder = (*SimpleRequestContextBuilder)(nil)

// NewSimpleRequestContextBuilder creates a new SimpleRequestContextBuilder.
func NewSimpleRequestContextBuilder() *SimpleRequestContextBuilder {
	return &SimpleRequestContextBuilder{}
}

// Build implements [RequestContextBuilder]. The request context holds a copy of
// params.Message stamped with the resolved task and context ids.
func (b *SimpleRequestContextBuilder) Build(_ context.Context, params *a2a.MessageSendParams, taskID, contextID string, currentTask *a2a.Task) (*RequestContext, error) {
	if params == nil {
		return nil, errors.New("message send params cannot be nil")
	}
	msg := params.Message.Clone()
	if err := msg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid message: %w", err)
	}

	rc := NewRequestContext(msg, taskID, contextID, currentTask)
	rc.Metadata = params.Metadata
	rc.ensureIDs()

	if err := rc.Validate(); err != nil {
		return nil, fmt.Errorf("built request context is invalid: %w", err)
	}
	return rc, nil
}
