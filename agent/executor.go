// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

// Package agent runs the lifecycle of one A2A task: it publishes the protocol status events,
// keeps the conversation history, hands the conversation to a [reasoning.Reasoner] and turns
// the model's answer into a terminal task state.
package agent

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	a2a "github.com/go-a2a/a2a-agent"
	"github.com/go-a2a/a2a-agent/contextstore"
	"github.com/go-a2a/a2a-agent/internal/telemetry"
	"github.com/go-a2a/a2a-agent/reasoning"
	"github.com/go-a2a/a2a-agent/server/agent_execution"
	"github.com/go-a2a/a2a-agent/server/event"
	"github.com/go-a2a/a2a-agent/validation"
)

const instrumentationName = "github.com/go-a2a/a2a-agent/agent"

// Status texts published by the [Executor].
const (
	WorkingText   = "Processing your question, hang tight!"
	NoMessageText = "No message found to process."
)

// Executor is the [agent_execution.AgentExecutor] backed by a [reasoning.Reasoner].
//
// Executions sharing a context id are serialized; different contexts run concurrently.
// Cancellation is observed once, after the reasoning call returns; an in-flight model call is
// never interrupted.
type Executor struct {
	reasoner    reasoning.Reasoner
	store       contextstore.Store
	locks       contextstore.KeyedMutex
	cancels     cancelSet
	tools       []reasoning.Tool
	webhookURL  string
	defaultGoal string
	inputFields []validation.InputFieldConfig
	now         func() time.Time

	logger *slog.Logger
	tracer trace.Tracer
	meter  metric.Meter

	tasks            metric.Int64Counter
	reasoningLatency metric.Float64Histogram
}

var _ agent_execution.AgentExecutor = (*Executor)(nil)

// New creates a new [Executor] that delegates to reasoner.
func New(reasoner reasoning.Reasoner, opts ...Option) *Executor {
	e := &Executor{
		reasoner: reasoner,
		store:    contextstore.NewMemoryStore(),
		now:      time.Now,
		logger:   slog.Default(),
		tracer:   otel.Tracer(instrumentationName),
		meter:    otel.Meter(instrumentationName),
	}
	for _, o := range opts {
		o(e)
	}
	e.tasks = telemetry.Int64Counter(e.meter, "a2a_agent.tasks", "Count of finished tasks by final state")
	e.reasoningLatency = telemetry.Seconds(e.meter, "a2a_agent.reasoning.duration", "Latency of reasoning runs")
	return e
}

// Store returns the conversation store of e.
func (e *Executor) Store() contextstore.Store {
	return e.store
}

// Execute implements [agent_execution.AgentExecutor].
//
// It publishes submitted (new tasks only), working and exactly one final status update.
// Only a failing bus is reported as an error; every other failure becomes a failed task.
func (e *Executor) Execute(ctx context.Context, rc *agent_execution.RequestContext, bus event.Bus) (err error) {
	if rc == nil || rc.Message == nil {
		return errors.New("request context must carry a message")
	}
	if bus == nil {
		return errors.New("event bus cannot be nil")
	}

	ctx, span := e.tracer.Start(ctx, "agent.Execute", trace.WithAttributes(
		attribute.String("a2a.task_id", rc.TaskID),
		attribute.String("a2a.context_id", rc.ContextID),
	))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()
	logger := e.logger.With(slog.String("task_id", rc.TaskID), slog.String("context_id", rc.ContextID))

	if rc.Task == nil {
		task := a2a.NewSubmittedTask(rc.Message, rc.TaskID, rc.ContextID, e.now())
		if err := bus.Publish(ctx, task); err != nil {
			return fmt.Errorf("publish submitted task: %w", err)
		}
	}

	working := a2a.NewAgentTextMessage(WorkingText, rc.ContextID, rc.TaskID)
	if err := bus.Publish(ctx, a2a.NewStatusUpdateEvent(rc.TaskID, rc.ContextID, a2a.TaskStateWorking, working, false, e.now())); err != nil {
		return fmt.Errorf("publish working status: %w", err)
	}

	state, reply, runErr := e.run(ctx, logger, rc)
	if runErr != nil {
		logger.ErrorContext(ctx, "task failed", slog.Any("error", runErr))
		span.RecordError(runErr)
		state = a2a.TaskStateFailed
		reply = a2a.NewAgentTextMessage("Agent error: "+runErr.Error(), rc.ContextID, rc.TaskID)
	}
	if a2a.IsTerminalState(state) {
		e.cancels.forget(rc.TaskID)
	}

	span.SetAttributes(attribute.String("a2a.state", string(state)))
	e.tasks.Add(ctx, 1, metric.WithAttributes(attribute.String("state", string(state))))
	logger.InfoContext(ctx, "task finished", slog.String("state", string(state)))

	if err := bus.Publish(ctx, a2a.NewStatusUpdateEvent(rc.TaskID, rc.ContextID, state, reply, true, e.now())); err != nil {
		return fmt.Errorf("publish final status: %w", err)
	}
	return nil
}

// run performs the conversational part of an execution and returns the final state and the
// message to publish with it. A returned error turns the task into failed.
func (e *Executor) run(ctx context.Context, logger *slog.Logger, rc *agent_execution.RequestContext) (a2a.TaskState, *a2a.Message, error) {
	unlock, err := e.locks.Lock(ctx, rc.ContextID)
	if err != nil {
		return "", nil, err
	}
	defer unlock()

	if err := e.store.Append(ctx, rc.ContextID, *rc.Message.Clone()); err != nil {
		return "", nil, fmt.Errorf("store user message: %w", err)
	}
	history, err := e.store.Get(ctx, rc.ContextID)
	if err != nil {
		return "", nil, fmt.Errorf("load history: %w", err)
	}

	messages := reasoningMessages(history)
	if len(messages) == 0 {
		logger.WarnContext(ctx, "no text content in history")
		return a2a.TaskStateFailed, a2a.NewAgentTextMessage(NoMessageText, rc.ContextID, rc.TaskID), nil
	}

	goal := rc.Goal()
	if goal == "" {
		goal = e.defaultGoal
	}

	start := time.Now()
	resp, err := e.reasoner.Generate(ctx, &reasoning.Request{
		Goal:        goal,
		Now:         e.now(),
		WebhookURL:  e.webhookURL,
		InputFields: e.inputFields,
		Messages:    messages,
		Tools:       e.tools,
	})
	e.reasoningLatency.Record(ctx, time.Since(start).Seconds())
	if err != nil {
		return "", nil, err
	}

	if e.cancels.take(rc.TaskID) {
		logger.InfoContext(ctx, "task canceled")
		return a2a.TaskStateCanceled, nil, nil
	}

	out := ClassifyOutcome(resp.Text)
	if out.Kind == OutcomeUnknown {
		logger.WarnContext(ctx, "unexpected final state line from model, defaulting to completed")
	}

	reply := a2a.NewAgentTextMessage(out.Reply, rc.ContextID, rc.TaskID)
	if err := e.store.Append(ctx, rc.ContextID, *reply); err != nil {
		return "", nil, fmt.Errorf("store agent reply: %w", err)
	}
	return out.State(), reply, nil
}

// Cancel implements [agent_execution.AgentExecutor]. It only records the intent; the execution
// of the task, running or about to start, publishes the canceled status at its checkpoint.
func (e *Executor) Cancel(ctx context.Context, rc *agent_execution.RequestContext, _ event.Bus) error {
	if rc == nil || rc.TaskID == "" {
		return errors.New("request context must carry a task ID")
	}
	e.cancels.request(rc.TaskID)
	e.logger.InfoContext(ctx, "cancellation requested", slog.String("task_id", rc.TaskID))
	return nil
}
