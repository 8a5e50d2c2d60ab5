// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package handler

import (
	"log/slog"

	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/go-a2a/a2a-agent/server/agent_execution"
	"github.com/go-a2a/a2a-agent/server/event"
)

// Option represents an option for configuring the [DefaultRequestHandler].
type Option func(*DefaultRequestHandler)

// WithLogger sets the [*slog.Logger] for the [DefaultRequestHandler].
func WithLogger(logger *slog.Logger) Option {
	return func(h *DefaultRequestHandler) {
		h.logger = logger
	}
}

// WithTracer sets the [trace.Tracer] for the [DefaultRequestHandler].
func WithTracer(tracer trace.Tracer) Option {
	return func(h *DefaultRequestHandler) {
		h.tracer = tracer
	}
}

// WithQueueSize bounds the number of undelivered events per task.
func WithQueueSize(n int) Option {
	return func(h *DefaultRequestHandler) {
		h.queueSize = n
	}
}

// WithContextBuilder replaces the [agent_execution.RequestContextBuilder].
func WithContextBuilder(b agent_execution.RequestContextBuilder) Option {
	return func(h *DefaultRequestHandler) {
		h.builder = b
	}
}

// WithBusDecorator wraps the event bus handed to every execution, e.g. with an
// [event.NATSMirror].
func WithBusDecorator(fn func(event.Bus) event.Bus) Option {
	return func(h *DefaultRequestHandler) {
		h.decorate = fn
	}
}

// JSONRPCOption represents an option for configuring the [JSONRPCHandler].
type JSONRPCOption func(*JSONRPCHandler)

// WithJSONRPCLogger sets the [*slog.Logger] for the [JSONRPCHandler].
func WithJSONRPCLogger(logger *slog.Logger) JSONRPCOption {
	return func(h *JSONRPCHandler) {
		h.logger = logger
	}
}

// WithMeter sets the [metric.Meter] RPC metrics are recorded with.
func WithMeter(meter metric.Meter) JSONRPCOption {
	return func(h *JSONRPCHandler) {
		h.meter = meter
	}
}

// WithStreaming enables message/stream.
func WithStreaming(enabled bool) JSONRPCOption {
	return func(h *JSONRPCHandler) {
		h.streaming = enabled
	}
}
