// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

// Package agent_execution defines the contract between the protocol server and the agent
// logic that runs a task.
package agent_execution

import (
	"context"

	"github.com/go-a2a/a2a-agent/server/event"
)

// AgentExecutor runs the agent logic for one request.
//
// Execute publishes the task lifecycle to bus and returns once the execution has published
// its final event. Cancel asks a running execution to stop; the execution itself publishes
// the resulting canceled event.
type AgentExecutor interface {
	Execute(ctx context.Context, reqCtx *RequestContext, bus event.Bus) error
	Cancel(ctx context.Context, reqCtx *RequestContext, bus event.Bus) error
}
