// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

// Package handler implements the A2A request handling logic and its JSON-RPC over HTTP transport.
package handler

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	a2a "github.com/go-a2a/a2a-agent"
	"github.com/go-a2a/a2a-agent/server/agent_execution"
	"github.com/go-a2a/a2a-agent/server/event"
	"github.com/go-a2a/a2a-agent/server/task"
)

const instrumentationName = "github.com/go-a2a/a2a-agent/server/handler"

// CancelRequestedText is the status message of a task canceled while no execution was running.
const CancelRequestedText = "Task cancellation requested by user."

// RequestHandler handles A2A protocol requests independently of the transport.
type RequestHandler interface {
	// OnMessageSend runs the message and returns the resulting task, or the agent's direct
	// message reply. Unless the request is non-blocking it waits for the final event.
	OnMessageSend(ctx context.Context, params *a2a.MessageSendParams) (a2a.Event, error)

	// OnMessageStream runs the message and returns its events as they are published.
	OnMessageStream(ctx context.Context, params *a2a.MessageSendParams) (<-chan a2a.Event, error)

	// OnGetTask returns the stored task snapshot.
	OnGetTask(ctx context.Context, params *a2a.TaskQueryParams) (*a2a.Task, error)

	// OnCancelTask requests cancellation of a task.
	OnCancelTask(ctx context.Context, params *a2a.TaskIDParams) (*a2a.Task, error)

	// OnResubscribe re-attaches to the events of a running task.
	OnResubscribe(ctx context.Context, params *a2a.TaskIDParams) (<-chan a2a.Event, error)
}

// DefaultRequestHandler is the [RequestHandler] that runs an [agent_execution.AgentExecutor]
// per message and keeps the task store up to date with the events it publishes.
type DefaultRequestHandler struct {
	executor agent_execution.AgentExecutor
	tasks    *task.Manager
	queues   *event.QueueManager
	builder  agent_execution.RequestContextBuilder
	decorate func(event.Bus) event.Bus

	logger    *slog.Logger
	tracer    trace.Tracer
	queueSize int

	wg sync.WaitGroup
}

var _ RequestHandler = (*DefaultRequestHandler)(nil)

// NewDefaultRequestHandler creates a new DefaultRequestHandler.
func NewDefaultRequestHandler(executor agent_execution.AgentExecutor, store task.TaskStore, opts ...Option) *DefaultRequestHandler {
	h := &DefaultRequestHandler{
		executor: executor,
		logger:   slog.Default(),
		tracer:   otel.Tracer(instrumentationName),
	}
	for _, o := range opts {
		o(h)
	}
	h.tasks = task.NewManager(store, h.logger)
	h.queues = event.NewQueueManager(h.queueSize)
	if h.builder == nil {
		h.builder = agent_execution.NewSimpleRequestContextBuilder()
	}
	return h
}

// OnMessageSend implements [RequestHandler].
func (h *DefaultRequestHandler) OnMessageSend(ctx context.Context, params *a2a.MessageSendParams) (a2a.Event, error) {
	ctx, span := h.tracer.Start(ctx, "handler.OnMessageSend")
	defer span.End()

	rc, q, err := h.start(ctx, params)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.String("a2a.task_id", rc.TaskID))

	blocking := true
	if cfg := params.Configuration; cfg != nil && cfg.Blocking != nil {
		blocking = *cfg.Blocking
	}

	if blocking {
		cctx, cancel := context.WithCancel(ctx)
		defer cancel()

		consumer := event.NewConsumer(q)
		for ev := range consumer.ConsumeAll(cctx) {
			if msg, ok := ev.(*a2a.Message); ok {
				return msg, nil
			}
		}
		if err := consumer.Err(); err != nil {
			return nil, err
		}
	} else {
		// only the first event is read, nothing keeps consuming after the call returns
		ev, err := q.Dequeue(ctx, false)
		if err != nil && !errors.Is(err, event.ErrQueueClosed) {
			return nil, err
		}
		if msg, ok := ev.(*a2a.Message); ok {
			return msg, nil
		}
	}

	t, err := h.tasks.Get(ctx, rc.TaskID)
	if err != nil {
		return nil, err
	}
	if cfg := params.Configuration; cfg != nil && cfg.HistoryLength != nil {
		t.TrimHistory(*cfg.HistoryLength)
	}
	return t, nil
}

// OnMessageStream implements [RequestHandler]. The channel closes after the final event or
// when ctx is done; the execution itself keeps running in the background.
func (h *DefaultRequestHandler) OnMessageStream(ctx context.Context, params *a2a.MessageSendParams) (<-chan a2a.Event, error) {
	_, q, err := h.start(ctx, params)
	if err != nil {
		return nil, err
	}
	return event.NewConsumer(q).ConsumeAll(ctx), nil
}

// OnGetTask implements [RequestHandler].
func (h *DefaultRequestHandler) OnGetTask(ctx context.Context, params *a2a.TaskQueryParams) (*a2a.Task, error) {
	if params == nil || params.ID == "" {
		return nil, a2a.NewInvalidParamsError().WithMessage("task id is required")
	}
	t, err := h.tasks.Get(ctx, params.ID)
	if err != nil {
		return nil, err
	}
	if params.HistoryLength != nil {
		t.TrimHistory(*params.HistoryLength)
	}
	return t, nil
}

// OnCancelTask implements [RequestHandler].
//
// A running task only gets the cancellation intent recorded; its execution publishes the
// canceled status. A task waiting for input is canceled in the store directly.
func (h *DefaultRequestHandler) OnCancelTask(ctx context.Context, params *a2a.TaskIDParams) (*a2a.Task, error) {
	if params == nil || params.ID == "" {
		return nil, a2a.NewInvalidParamsError().WithMessage("task id is required")
	}

	t, err := h.tasks.Get(ctx, params.ID)
	if err != nil {
		return nil, err
	}
	if a2a.IsTerminalState(t.Status.State) {
		return nil, a2a.NewTaskNotCancelableError().WithMessage("task %s is already %s", t.ID, t.Status.State)
	}

	if q := h.queues.Get(t.ID); q != nil {
		rc := agent_execution.NewRequestContext(nil, t.ID, t.ContextID, t)
		if err := h.executor.Cancel(ctx, rc, q); err != nil {
			h.logger.WarnContext(ctx, "cancel running task", slog.String("task_id", t.ID), slog.Any("error", err))
		}
		return t, nil
	}

	msg := a2a.NewAgentTextMessage(CancelRequestedText, t.ContextID, t.ID)
	return h.tasks.Process(ctx, a2a.NewStatusUpdateEvent(t.ID, t.ContextID, a2a.TaskStateCanceled, msg, true, time.Now()))
}

// OnResubscribe implements [RequestHandler]. The stream starts with the stored task and
// continues with the events published from then on, up to the final one.
func (h *DefaultRequestHandler) OnResubscribe(ctx context.Context, params *a2a.TaskIDParams) (<-chan a2a.Event, error) {
	if params == nil || params.ID == "" {
		return nil, a2a.NewInvalidParamsError().WithMessage("task id is required")
	}

	t, err := h.tasks.Get(ctx, params.ID)
	if err != nil {
		return nil, err
	}
	if a2a.IsTerminalState(t.Status.State) {
		return nil, a2a.NewInvalidRequestError().WithMessage("task %s is in terminal state %s", t.ID, t.Status.State)
	}
	tap := h.queues.Tap(t.ID)
	if tap == nil {
		return nil, a2a.NewInvalidRequestError().WithMessage("task %s is not running", t.ID)
	}

	// the snapshot is taken after tapping so no update falls between the two
	if t, err = h.tasks.Get(ctx, t.ID); err != nil {
		tap.Close()
		return nil, err
	}

	out := make(chan a2a.Event, 1)
	out <- t
	go func() {
		defer close(out)
		for ev := range event.NewConsumer(tap).ConsumeAll(ctx) {
			select {
			case out <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}

// start resolves the task the message belongs to and launches its execution.
// The returned queue yields the events of that execution.
func (h *DefaultRequestHandler) start(ctx context.Context, params *a2a.MessageSendParams) (*agent_execution.RequestContext, *event.Queue, error) {
	if params == nil {
		return nil, nil, a2a.NewInvalidParamsError().WithMessage("params are required")
	}
	if err := params.Message.Validate(); err != nil {
		return nil, nil, a2a.NewInvalidParamsError().WithMessage("%s", err.Error())
	}

	var current *a2a.Task
	if id := params.Message.TaskID; id != "" {
		t, err := h.tasks.Get(ctx, id)
		if err != nil {
			return nil, nil, err
		}
		if a2a.IsTerminalState(t.Status.State) {
			return nil, nil, a2a.NewInvalidRequestError().WithMessage("task %s is in terminal state %s and cannot be continued", t.ID, t.Status.State)
		}
		current = t
	}

	rc, err := h.builder.Build(ctx, params, "", "", current)
	if err != nil {
		return nil, nil, a2a.NewInvalidParamsError().WithMessage("%s", err.Error())
	}

	q, err := h.queues.Create(rc.TaskID)
	if err != nil {
		if errors.Is(err, event.ErrQueueExists) {
			return nil, nil, a2a.NewInvalidRequestError().WithMessage("task %s is already running", rc.TaskID)
		}
		return nil, nil, err
	}

	if current != nil {
		if _, err := h.tasks.AppendMessage(ctx, current.ID, rc.Message); err != nil {
			h.queues.Detach(rc.TaskID, q)
			q.Close()
			return nil, nil, err
		}
	}

	// A final event releases the task before it reaches the consumer, so the client never
	// observes a finished task that still counts as running.
	var bus event.Bus = h.tasks.Recorder(event.BusFunc(func(ctx context.Context, ev a2a.Event) error {
		if a2a.IsFinalEvent(ev) {
			h.queues.Detach(rc.TaskID, q)
		}
		return q.Publish(ctx, ev)
	}))
	if h.decorate != nil {
		bus = h.decorate(bus)
	}

	logger := h.logger.With(slog.String("task_id", rc.TaskID), slog.String("context_id", rc.ContextID))
	runCtx := context.WithoutCancel(ctx)

	h.wg.Add(1)
	go func() {
		defer h.wg.Done()
		defer func() {
			h.queues.Detach(rc.TaskID, q)
			q.Close()
		}()

		if err := h.executor.Execute(runCtx, rc, bus); err != nil {
			logger.ErrorContext(runCtx, "agent execution", slog.Any("error", err))
		}
	}()
	return rc, q, nil
}

// Shutdown waits for running executions to finish or ctx to be done.
func (h *DefaultRequestHandler) Shutdown(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		h.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		h.logger.WarnContext(ctx, "closing queues of unfinished tasks", slog.Int("count", h.queues.Count()))
		h.queues.CloseAll()
		return ctx.Err()
	}
}
