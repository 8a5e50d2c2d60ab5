// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package agent

import (
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/go-a2a/a2a-agent/contextstore"
	"github.com/go-a2a/a2a-agent/reasoning"
	"github.com/go-a2a/a2a-agent/validation"
)

// Option represents an option for configuring the [Executor].
type Option func(*Executor)

// WithLogger sets the [*slog.Logger] for the [Executor].
func WithLogger(logger *slog.Logger) Option {
	return func(e *Executor) {
		e.logger = logger
	}
}

// WithTracer sets the [trace.Tracer] for the [Executor].
func WithTracer(tracer trace.Tracer) Option {
	return func(e *Executor) {
		e.tracer = tracer
	}
}

// WithMeter sets the [metric.Meter] the [Executor] records task metrics with.
func WithMeter(meter metric.Meter) Option {
	return func(e *Executor) {
		e.meter = meter
	}
}

// WithContextStore sets the conversation store. The default is an unbounded [contextstore.MemoryStore].
func WithContextStore(store contextstore.Store) Option {
	return func(e *Executor) {
		if store != nil {
			e.store = store
		}
	}
}

// WithTools attaches tools to every reasoning request.
func WithTools(tools ...reasoning.Tool) Option {
	return func(e *Executor) {
		e.tools = append(e.tools, tools...)
	}
}

// WithWebhookURL sets the workflow URL advertised to the model.
func WithWebhookURL(url string) Option {
	return func(e *Executor) {
		e.webhookURL = url
	}
}

// WithDefaultGoal sets the goal used when neither the task nor the message carries one.
func WithDefaultGoal(goal string) Option {
	return func(e *Executor) {
		e.defaultGoal = goal
	}
}

// WithInputFields sets the workflow input fields advertised to the model.
func WithInputFields(fields []validation.InputFieldConfig) Option {
	return func(e *Executor) {
		e.inputFields = fields
	}
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(e *Executor) {
		if now != nil {
			e.now = now
		}
	}
}
