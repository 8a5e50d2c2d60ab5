// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package handler

import (
	"bufio"
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"
	"github.com/google/go-cmp/cmp"
	"go.opentelemetry.io/otel/metric/noop"

	a2a "github.com/go-a2a/a2a-agent"
)

type rpcReply struct {
	ID     jsontext.Value    `json:"id"`
	Result jsontext.Value    `json:"result,omitzero"`
	Error  *a2a.JSONRPCError `json:"error,omitzero"`
}

func post(t *testing.T, h http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequestWithContext(t.Context(), http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeReply(t *testing.T, body []byte) rpcReply {
	t.Helper()

	var reply rpcReply
	if err := json.Unmarshal(body, &reply); err != nil {
		t.Fatalf("decode response %q: %v", body, err)
	}
	return reply
}

func TestJSONRPCHandlerErrors(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		body      string
		streaming bool
		wantID    string
		wantCode  int
	}{
		"error: parse": {
			body:     `{"jsonrpc":`,
			wantID:   "null",
			wantCode: a2a.JSONParseErrorCode,
		},
		"error: batch": {
			body:     `[{"jsonrpc":"2.0","id":1,"method":"tasks/get"}]`,
			wantID:   "null",
			wantCode: a2a.InvalidRequestErrorCode,
		},
		"error: wrong version": {
			body:     `{"jsonrpc":"1.0","id":1,"method":"tasks/get","params":{"id":"x"}}`,
			wantID:   "1",
			wantCode: a2a.InvalidRequestErrorCode,
		},
		"error: missing method": {
			body:     `{"jsonrpc":"2.0","id":"abc"}`,
			wantID:   `"abc"`,
			wantCode: a2a.InvalidRequestErrorCode,
		},
		"error: unknown method": {
			body:     `{"jsonrpc":"2.0","id":2,"method":"tasks/list","params":{}}`,
			wantID:   "2",
			wantCode: a2a.MethodNotFoundErrorCode,
		},
		"error: missing params": {
			body:     `{"jsonrpc":"2.0","id":3,"method":"message/send"}`,
			wantID:   "3",
			wantCode: a2a.InvalidParamsErrorCode,
		},
		"error: malformed params": {
			body:     `{"jsonrpc":"2.0","id":4,"method":"message/send","params":{"message":5}}`,
			wantID:   "4",
			wantCode: a2a.InvalidParamsErrorCode,
		},
		"error: message without parts": {
			body:     `{"jsonrpc":"2.0","id":5,"method":"message/send","params":{"message":{"kind":"message","messageId":"m1","role":"user","parts":[]}}}`,
			wantID:   "5",
			wantCode: a2a.InvalidParamsErrorCode,
		},
		"error: unknown task": {
			body:     `{"jsonrpc":"2.0","id":6,"method":"tasks/get","params":{"id":"missing"}}`,
			wantID:   "6",
			wantCode: a2a.TaskNotFoundErrorCode,
		},
		"error: resubscribe unknown task": {
			body:      `{"jsonrpc":"2.0","id":7,"method":"tasks/resubscribe","params":{"id":"x"}}`,
			streaming: true,
			wantID:    "7",
			wantCode:  a2a.TaskNotFoundErrorCode,
		},
		"error: resubscribe without streaming": {
			body:     `{"jsonrpc":"2.0","id":10,"method":"tasks/resubscribe","params":{"id":"x"}}`,
			wantID:   "10",
			wantCode: a2a.UnsupportedOperationErrorCode,
		},
		"error: streaming disabled": {
			body:     `{"jsonrpc":"2.0","id":8,"method":"message/stream","params":{"message":{"kind":"message","messageId":"m1","role":"user","parts":[{"kind":"text","text":"hi"}]}}}`,
			wantID:   "8",
			wantCode: a2a.UnsupportedOperationErrorCode,
		},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			h := NewJSONRPCHandler(newTestHandler(t), WithStreaming(tt.streaming), WithMeter(noop.NewMeterProvider().Meter("test")))
			rec := post(t, h, tt.body)
			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d, want 200", rec.Code)
			}

			reply := decodeReply(t, rec.Body.Bytes())
			if reply.Error == nil {
				t.Fatalf("response has no error: %s", rec.Body.String())
			}
			if reply.Error.Code != tt.wantCode {
				t.Errorf("error code = %d (%s), want %d", reply.Error.Code, reply.Error.Message, tt.wantCode)
			}
			if got := string(reply.ID); got != tt.wantID {
				t.Errorf("id = %s, want %s", got, tt.wantID)
			}
		})
	}
}

func TestJSONRPCHandlerMessageSend(t *testing.T) {
	t.Parallel()

	h := NewJSONRPCHandler(newTestHandler(t))
	rec := post(t, h, `{"jsonrpc":"2.0","id":"req-1","method":"message/send","params":{"message":{"kind":"message","messageId":"m1","role":"user","parts":[{"kind":"text","text":"weather"}]}}}`)

	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}
	reply := decodeReply(t, rec.Body.Bytes())
	if reply.Error != nil {
		t.Fatalf("unexpected error: %v", reply.Error)
	}
	if got := string(reply.ID); got != `"req-1"` {
		t.Errorf("id = %s", got)
	}

	var got a2a.Task
	if err := json.Unmarshal(reply.Result, &got); err != nil {
		t.Fatalf("decode task: %v", err)
	}
	if got.Status.State != a2a.TaskStateCompleted || got.Kind != a2a.KindTask {
		t.Errorf("result = %s/%s, want completed task", got.Kind, got.Status.State)
	}

	// the task is retrievable afterwards
	rec = post(t, h, `{"jsonrpc":"2.0","id":2,"method":"tasks/get","params":{"id":"`+got.ID+`","historyLength":1}}`)
	reply = decodeReply(t, rec.Body.Bytes())
	var fetched a2a.Task
	if err := json.Unmarshal(reply.Result, &fetched); err != nil {
		t.Fatalf("decode task: %v", err)
	}
	if diff := cmp.Diff([]string{"agent:Done."}, historyTexts(&fetched)); diff != "" {
		t.Errorf("history mismatch (-want +got):\n%s", diff)
	}
}

func TestJSONRPCHandlerStream(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(NewJSONRPCHandler(newTestHandler(t), WithStreaming(true)))
	t.Cleanup(srv.Close)

	body := `{"jsonrpc":"2.0","id":9,"method":"message/stream","params":{"message":{"kind":"message","messageId":"m1","role":"user","parts":[{"kind":"text","text":"weather"}]}}}`
	req, err := http.NewRequestWithContext(t.Context(), http.MethodPost, srv.URL, strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	resp, err := srv.Client().Do(req)
	if err != nil {
		t.Fatalf("POST error = %v", err)
	}
	defer resp.Body.Close()

	if ct := resp.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("Content-Type = %q, want text/event-stream", ct)
	}

	type frameResult struct {
		Kind   string `json:"kind"`
		Status struct {
			State a2a.TaskState `json:"state"`
		} `json:"status"`
	}

	var states []string
	scanner := bufio.NewScanner(resp.Body)
	for scanner.Scan() {
		line, ok := strings.CutPrefix(scanner.Text(), "data: ")
		if !ok {
			continue
		}
		reply := decodeReply(t, []byte(line))
		if string(reply.ID) != "9" {
			t.Errorf("frame id = %s, want 9", reply.ID)
		}
		var res frameResult
		if err := json.Unmarshal(reply.Result, &res); err != nil {
			t.Fatalf("decode frame result: %v", err)
		}
		states = append(states, res.Kind+":"+string(res.Status.State))
	}
	if err := scanner.Err(); err != nil {
		t.Fatalf("read stream: %v", err)
	}

	want := []string{"task:submitted", "status-update:working", "status-update:completed"}
	if diff := cmp.Diff(want, states); diff != "" {
		t.Errorf("stream mismatch (-want +got):\n%s", diff)
	}
}

func TestJSONRPCHandlerBodyLimit(t *testing.T) {
	t.Parallel()

	h := NewJSONRPCHandler(newTestHandler(t))
	req := httptest.NewRequestWithContext(t.Context(), http.MethodPost, "/", io.MultiReader(
		strings.NewReader(`{"jsonrpc":"2.0","id":1,"method":"tasks/get","params":{"id":"`),
		bytes.NewReader(bytes.Repeat([]byte("a"), maxRequestSize)),
		strings.NewReader(`"}}`),
	))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	reply := decodeReply(t, rec.Body.Bytes())
	if reply.Error == nil || reply.Error.Code != a2a.InvalidRequestErrorCode {
		t.Errorf("oversized request error = %v, want code %d", reply.Error, a2a.InvalidRequestErrorCode)
	}
}

func TestWriteSSE(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if err := writeSSE(&buf, a2a.NewJSONRPCResponse(jsontext.Value("1"), map[string]string{"kind": "task"})); err != nil {
		t.Fatalf("writeSSE() error = %v", err)
	}
	want := "data: {\"jsonrpc\":\"2.0\",\"id\":1,\"result\":{\"kind\":\"task\"}}\n\n"
	if diff := cmp.Diff(want, buf.String()); diff != "" {
		t.Errorf("frame mismatch (-want +got):\n%s", diff)
	}
}
