// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package agent_execution

import (
	"context"

	a2a "github.com/go-a2a/a2a-agent"
)

// RequestContextBuilder builds the RequestContext supplied to the AgentExecutor.
type RequestContextBuilder interface {
	// Build creates a RequestContext from the incoming params.
	// taskID and contextID may be empty and are then generated; currentTask may be nil.
	Build(ctx context.Context, params *a2a.MessageSendParams, taskID, contextID string, currentTask *a2a.Task) (*RequestContext, error)
}
