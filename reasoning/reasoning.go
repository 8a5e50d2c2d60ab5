// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

// Package reasoning defines the prompt-execution capability the agent delegates to a language model.
package reasoning

import (
	"context"
	"time"

	"github.com/go-a2a/a2a-agent/validation"
)

// Role of a message in the model conversation.
type Role string

// Role constants.
const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

// Message is one turn of the conversation handed to the model.
type Message struct {
	Role    Role
	Content []string
}

// Tool is a capability the model may call while reasoning.
type Tool interface {
	// Name is the identifier the model uses to call the tool.
	Name() string
	// Description tells the model when and how to use the tool.
	Description() string
	// InputSchema is the JSON Schema of the tool arguments.
	InputSchema() map[string]any
	// Call runs the tool. A returned error is reported back to the model, which may retry.
	Call(ctx context.Context, args map[string]any) (string, error)
}

// Request is the input of one reasoning run.
type Request struct {
	Goal        string
	Now         time.Time
	WebhookURL  string
	InputFields []validation.InputFieldConfig
	Messages    []Message
	Tools       []Tool
}

// Response is the final text produced by the model.
type Response struct {
	Text string
	// ToolCalls counts the tool invocations made during the run.
	ToolCalls int
}

// Reasoner runs a prompt to completion, calling tools as the model requests them.
type Reasoner interface {
	Generate(ctx context.Context, req *Request) (*Response, error)
}

// ReasonerFunc adapts a function to [Reasoner].
type ReasonerFunc func(ctx context.Context, req *Request) (*Response, error)

// Generate implements [Reasoner].
func (f ReasonerFunc) Generate(ctx context.Context, req *Request) (*Response, error) {
	return f(ctx, req)
}
