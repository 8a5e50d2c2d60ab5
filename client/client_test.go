// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	a2a "github.com/go-a2a/a2a-agent"
	"github.com/go-a2a/a2a-agent/server"
	"github.com/go-a2a/a2a-agent/server/agent_execution"
	"github.com/go-a2a/a2a-agent/server/event"
	"github.com/go-a2a/a2a-agent/server/handler"
	"github.com/go-a2a/a2a-agent/server/task"
)

// echoExecutor completes every task with "echo: <text>", or answers "reply" with a direct message.
// A "wait" task stays working until gate is closed.
type echoExecutor struct {
	gate <-chan struct{}
}

func (e echoExecutor) Execute(ctx context.Context, rc *agent_execution.RequestContext, bus event.Bus) error {
	text := rc.Message.Text(" ")
	if text == "reply" {
		return bus.Publish(ctx, a2a.NewAgentTextMessage("hello", rc.ContextID, ""))
	}
	now := time.Now()
	if rc.Task == nil {
		if err := bus.Publish(ctx, a2a.NewSubmittedTask(rc.Message, rc.TaskID, rc.ContextID, now)); err != nil {
			return err
		}
	}
	if err := bus.Publish(ctx, a2a.NewStatusUpdateEvent(rc.TaskID, rc.ContextID, a2a.TaskStateWorking, nil, false, now)); err != nil {
		return err
	}
	if text == "wait" {
		<-e.gate
	}
	msg := a2a.NewAgentTextMessage("echo: "+text, rc.ContextID, rc.TaskID)
	return bus.Publish(ctx, a2a.NewStatusUpdateEvent(rc.TaskID, rc.ContextID, a2a.TaskStateCompleted, msg, true, time.Now()))
}

func (echoExecutor) Cancel(context.Context, *agent_execution.RequestContext, event.Bus) error {
	return nil
}

func newTestAgent(t *testing.T) (*httptest.Server, *a2a.AgentCard) {
	t.Helper()
	return newTestAgentFor(t, echoExecutor{})
}

func newTestAgentFor(t *testing.T, exec agent_execution.AgentExecutor) (*httptest.Server, *a2a.AgentCard) {
	t.Helper()

	rh := handler.NewDefaultRequestHandler(exec, task.NewInMemoryTaskStore())
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = rh.Shutdown(ctx)
	})

	card := &a2a.AgentCard{
		Name:               "echo",
		ProtocolVersion:    a2a.ProtocolVersion,
		Version:            "1.0.0",
		Capabilities:       a2a.AgentCapabilities{Streaming: true},
		Skills:             []a2a.AgentSkill{},
		DefaultInputModes:  []string{"text"},
		DefaultOutputModes: []string{"text"},
	}
	srv, err := server.New(card, rh)
	if err != nil {
		t.Fatalf("server.New() error = %v", err)
	}
	ts := httptest.NewServer(srv)
	t.Cleanup(ts.Close)
	card.URL = ts.URL + "/"
	return ts, card
}

func sendParams(text, taskID, contextID string) *a2a.MessageSendParams {
	return &a2a.MessageSendParams{Message: *a2a.NewUserTextMessage(text, contextID, taskID)}
}

func statusText(t *testing.T, task *a2a.Task) string {
	t.Helper()
	if task.Status.Message == nil {
		t.Fatalf("task %s has no status message", task.ID)
	}
	return task.Status.Message.Text(" ")
}

func TestClientSendMessage(t *testing.T) {
	t.Parallel()

	_, card := newTestAgent(t)
	c, err := NewFromCard(card)
	if err != nil {
		t.Fatalf("NewFromCard() error = %v", err)
	}

	ev, err := c.SendMessage(t.Context(), sendParams("hi", "", ""))
	if err != nil {
		t.Fatalf("SendMessage() error = %v", err)
	}
	tk, ok := ev.(*a2a.Task)
	if !ok {
		t.Fatalf("SendMessage() = %T, want *a2a.Task", ev)
	}
	if tk.Status.State != a2a.TaskStateCompleted || statusText(t, tk) != "echo: hi" {
		t.Errorf("task = %s %q", tk.Status.State, statusText(t, tk))
	}

	got, err := c.GetTask(t.Context(), &a2a.TaskQueryParams{ID: tk.ID})
	if err != nil {
		t.Fatalf("GetTask() error = %v", err)
	}
	if diff := cmp.Diff(tk.ID, got.ID); diff != "" {
		t.Errorf("GetTask() id mismatch (-want +got):\n%s", diff)
	}

	ev, err = c.SendMessage(t.Context(), sendParams("reply", "", ""))
	if err != nil {
		t.Fatalf("SendMessage(reply) error = %v", err)
	}
	if msg, ok := ev.(*a2a.Message); !ok || msg.Text(" ") != "hello" {
		t.Errorf("SendMessage(reply) = %#v, want message %q", ev, "hello")
	}
}

func TestClientErrors(t *testing.T) {
	t.Parallel()

	_, card := newTestAgent(t)
	c, _ := NewFromCard(card)

	tests := map[string]struct {
		call     func(ctx context.Context) error
		wantCode int
	}{
		"error: unknown task": {
			call: func(ctx context.Context) error {
				_, err := c.GetTask(ctx, &a2a.TaskQueryParams{ID: "missing"})
				return err
			},
			wantCode: a2a.TaskNotFoundErrorCode,
		},
		"error: cancel unknown task": {
			call: func(ctx context.Context) error {
				_, err := c.CancelTask(ctx, &a2a.TaskIDParams{ID: "missing"})
				return err
			},
			wantCode: a2a.TaskNotFoundErrorCode,
		},
		"error: message without parts": {
			call: func(ctx context.Context) error {
				params := sendParams("hi", "", "")
				params.Message.Parts = nil
				_, err := c.SendMessage(ctx, params)
				return err
			},
			wantCode: a2a.InvalidParamsErrorCode,
		},
		"error: resubscribe unknown task": {
			call: func(ctx context.Context) error {
				_, err := c.Resubscribe(ctx, &a2a.TaskIDParams{ID: "missing"})
				return err
			},
			wantCode: a2a.TaskNotFoundErrorCode,
		},
		"error: stream continues unknown task": {
			call: func(ctx context.Context) error {
				_, err := c.SendStreamingMessage(ctx, sendParams("hi", "missing", ""))
				return err
			},
			wantCode: a2a.TaskNotFoundErrorCode,
		},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			err := tt.call(t.Context())
			if got := ErrorCode(err); got != tt.wantCode {
				t.Errorf("error code = %d (%v), want %d", got, err, tt.wantCode)
			}
		})
	}
}

func TestClientStream(t *testing.T) {
	t.Parallel()

	_, card := newTestAgent(t)
	c, _ := NewFromCard(card)

	results, err := c.SendStreamingMessage(t.Context(), sendParams("hi", "", ""))
	if err != nil {
		t.Fatalf("SendStreamingMessage() error = %v", err)
	}

	var kinds []string
	var last a2a.Event
	for r := range results {
		if r.Err != nil {
			t.Fatalf("stream error = %v", r.Err)
		}
		kinds = append(kinds, r.Event.EventKind())
		last = r.Event
	}
	want := []string{a2a.KindTask, a2a.KindStatusUpdate, a2a.KindStatusUpdate}
	if diff := cmp.Diff(want, kinds); diff != "" {
		t.Errorf("event kinds mismatch (-want +got):\n%s", diff)
	}
	upd, ok := last.(*a2a.TaskStatusUpdateEvent)
	if !ok || !upd.Final || upd.Status.State != a2a.TaskStateCompleted {
		t.Errorf("last event = %#v, want final completed update", last)
	}
}

func TestClientResubscribe(t *testing.T) {
	t.Parallel()

	gate := make(chan struct{})
	_, card := newTestAgentFor(t, echoExecutor{gate: gate})
	c, _ := NewFromCard(card)
	ctx := t.Context()

	results, err := c.SendStreamingMessage(ctx, sendParams("wait", "", ""))
	if err != nil {
		t.Fatalf("SendStreamingMessage() error = %v", err)
	}
	first := <-results
	if first.Err != nil {
		t.Fatalf("stream error = %v", first.Err)
	}
	taskID := first.Event.(*a2a.Task).ID

	resub, err := c.Resubscribe(ctx, &a2a.TaskIDParams{ID: taskID})
	if err != nil {
		t.Fatalf("Resubscribe() error = %v", err)
	}
	close(gate)

	var kinds []string
	var last a2a.Event
	for r := range resub {
		if r.Err != nil {
			t.Fatalf("resubscribe stream error = %v", r.Err)
		}
		kinds = append(kinds, r.Event.EventKind())
		last = r.Event
	}
	if len(kinds) == 0 || kinds[0] != a2a.KindTask {
		t.Errorf("event kinds = %v, want the task first", kinds)
	}
	upd, ok := last.(*a2a.TaskStatusUpdateEvent)
	if !ok || !upd.Final || upd.Status.State != a2a.TaskStateCompleted {
		t.Errorf("last event = %#v, want final completed update", last)
	}
	for range results {
	}

	// the finished task has nothing left to follow
	if _, err := c.Resubscribe(ctx, &a2a.TaskIDParams{ID: taskID}); ErrorCode(err) != a2a.InvalidRequestErrorCode {
		t.Errorf("Resubscribe() after completion error = %v, want invalid request", err)
	}
}

func TestClientHTTPError(t *testing.T) {
	t.Parallel()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down for maintenance", http.StatusServiceUnavailable)
	}))
	t.Cleanup(ts.Close)

	c, _ := New(ts.URL)
	_, err := c.SendMessage(t.Context(), sendParams("hi", "", ""))
	var httpErr *HTTPError
	if !errors.As(err, &httpErr) || httpErr.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("SendMessage() error = %v, want HTTPError 503", err)
	}
	if !strings.Contains(httpErr.Body, "maintenance") {
		t.Errorf("HTTPError.Body = %q", httpErr.Body)
	}
}

func TestNew(t *testing.T) {
	t.Parallel()

	if _, err := New(""); err == nil {
		t.Error("New(\"\") error = nil")
	}
	if _, err := NewFromCard(nil); err == nil {
		t.Error("NewFromCard(nil) error = nil")
	}
}
