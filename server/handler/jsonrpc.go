// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package handler

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"

	a2a "github.com/go-a2a/a2a-agent"
	"github.com/go-a2a/a2a-agent/internal/jsonrpc2"
	"github.com/go-a2a/a2a-agent/internal/pool"
)

// maxRequestSize bounds the size of a JSON-RPC request body.
const maxRequestSize = 4 << 20

// JSONRPCHandler serves A2A JSON-RPC 2.0 over HTTP POST. message/stream and tasks/resubscribe
// responses are sent as Server-Sent Events, one JSON-RPC response per event.
type JSONRPCHandler struct {
	handler   RequestHandler
	logger    *slog.Logger
	meter     metric.Meter
	streaming bool
	metrics   *jsonrpc2.Metrics
}

var _ http.Handler = (*JSONRPCHandler)(nil)

// NewJSONRPCHandler creates a new JSONRPCHandler with the provided request handler.
func NewJSONRPCHandler(handler RequestHandler, opts ...JSONRPCOption) *JSONRPCHandler {
	if handler == nil {
		panic("request handler cannot be nil")
	}

	h := &JSONRPCHandler{
		handler: handler,
		logger:  slog.Default(),
		meter:   otel.Meter(instrumentationName),
	}
	for _, o := range opts {
		o(h)
	}
	h.metrics = jsonrpc2.NewMetrics(h.meter)
	return h
}

// ServeHTTP implements [http.Handler].
func (h *JSONRPCHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestSize+1))
	if err != nil {
		h.writeResponse(w, a2a.NewJSONRPCErrorResponse(nil, a2a.NewInternalError().WithMessage("read request: %v", err)))
		return
	}
	if len(body) > maxRequestSize {
		h.writeResponse(w, a2a.NewJSONRPCErrorResponse(nil, a2a.NewInvalidRequestError().WithMessage("request body exceeds %d bytes", maxRequestSize)))
		return
	}

	req, rpcErr := decodeRequest(body)
	if rpcErr != nil {
		var id jsontext.Value
		if req != nil {
			id = req.ID
		}
		h.writeResponse(w, a2a.NewJSONRPCErrorResponse(id, rpcErr))
		return
	}

	ctx := r.Context()
	start := time.Now()
	h.metrics.Start(ctx, req.Method, int64(len(body)))

	code := h.dispatch(ctx, w, req)
	h.metrics.End(ctx, req.Method, code, start)
}

// dispatch serves req and returns the JSON-RPC error code it answered with, 0 on success.
func (h *JSONRPCHandler) dispatch(ctx context.Context, w http.ResponseWriter, req *a2a.JSONRPCRequest) int {
	var (
		result any
		err    error
	)

	switch req.Method {
	case a2a.MethodMessageSend:
		var params a2a.MessageSendParams
		if err = decodeParams(req.Params, &params); err == nil {
			result, err = h.handler.OnMessageSend(ctx, &params)
		}

	case a2a.MethodMessageStream:
		if !h.streaming {
			err = a2a.NewUnsupportedOperationError().WithMessage("streaming is not supported by this agent")
			break
		}
		var params a2a.MessageSendParams
		if err = decodeParams(req.Params, &params); err == nil {
			var events <-chan a2a.Event
			if events, err = h.handler.OnMessageStream(ctx, &params); err == nil {
				h.stream(ctx, w, req.ID, events)
				return 0
			}
		}

	case a2a.MethodTasksGet:
		var params a2a.TaskQueryParams
		if err = decodeParams(req.Params, &params); err == nil {
			result, err = h.handler.OnGetTask(ctx, &params)
		}

	case a2a.MethodTasksCancel:
		var params a2a.TaskIDParams
		if err = decodeParams(req.Params, &params); err == nil {
			result, err = h.handler.OnCancelTask(ctx, &params)
		}

	case a2a.MethodTasksResubscribe:
		if !h.streaming {
			err = a2a.NewUnsupportedOperationError().WithMessage("streaming is not supported by this agent")
			break
		}
		var params a2a.TaskIDParams
		if err = decodeParams(req.Params, &params); err == nil {
			var events <-chan a2a.Event
			if events, err = h.handler.OnResubscribe(ctx, &params); err == nil {
				h.stream(ctx, w, req.ID, events)
				return 0
			}
		}

	default:
		err = a2a.NewMethodNotFoundError().WithMessage("method %q not found", req.Method)
	}

	if err != nil {
		rpcErr := a2a.AsJSONRPCError(err)
		if rpcErr.Code == a2a.InternalErrorCode {
			h.logger.ErrorContext(ctx, "handle request", slog.String("method", req.Method), slog.Any("error", err))
		}
		h.writeResponse(w, a2a.NewJSONRPCErrorResponse(req.ID, rpcErr))
		return rpcErr.Code
	}
	h.writeResponse(w, a2a.NewJSONRPCResponse(req.ID, result))
	return 0
}

// stream writes events as SSE frames until the channel closes.
func (h *JSONRPCHandler) stream(ctx context.Context, w http.ResponseWriter, id jsontext.Value, events <-chan a2a.Event) {
	flusher, _ := w.(http.Flusher)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	if flusher != nil {
		flusher.Flush()
	}

	buf := pool.GetBuffer()
	defer pool.PutBuffer(buf)

	for ev := range events {
		buf.Reset()
		if err := writeSSE(buf, a2a.NewJSONRPCResponse(id, ev)); err != nil {
			h.logger.ErrorContext(ctx, "encode stream event", slog.Any("error", err))
			continue
		}
		if _, err := w.Write(buf.Bytes()); err != nil {
			h.logger.DebugContext(ctx, "stream client gone", slog.Any("error", err))
			return
		}
		if flusher != nil {
			flusher.Flush()
		}
	}
}

func (h *JSONRPCHandler) writeResponse(w http.ResponseWriter, resp *a2a.JSONRPCResponse) {
	buf := pool.GetBuffer()
	defer pool.PutBuffer(buf)

	if err := json.MarshalWrite(buf, resp); err != nil {
		h.logger.Error("encode response", slog.Any("error", err))
		http.Error(w, "failed to encode response", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

// writeSSE appends resp to buf as one "data:" frame.
func writeSSE(buf *bytes.Buffer, resp *a2a.JSONRPCResponse) error {
	buf.WriteString("data: ")
	if err := json.MarshalWrite(buf, resp); err != nil {
		return err
	}
	buf.WriteString("\n\n")
	return nil
}

// decodeRequest parses a JSON-RPC request. On a validation error the partially decoded
// request is returned so the caller can echo its id.
func decodeRequest(body []byte) (*a2a.JSONRPCRequest, *a2a.JSONRPCError) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		return nil, a2a.NewInvalidRequestError().WithMessage("batch requests are not supported")
	}

	var req a2a.JSONRPCRequest
	if err := json.Unmarshal(trimmed, &req); err != nil {
		var syntaxErr *jsontext.SyntacticError
		if errors.As(err, &syntaxErr) || !jsontext.Value(trimmed).IsValid() {
			return nil, a2a.NewJSONParseError()
		}
		return nil, a2a.NewInvalidRequestError().WithMessage("%v", err)
	}
	if req.JSONRPC != a2a.JSONRPCVersion {
		return &req, a2a.NewInvalidRequestError().WithMessage("jsonrpc must be %q", a2a.JSONRPCVersion)
	}
	if req.Method == "" {
		return &req, a2a.NewInvalidRequestError().WithMessage("method is required")
	}
	return &req, nil
}

func decodeParams(raw jsontext.Value, v any) error {
	if len(raw) == 0 {
		return a2a.NewInvalidParamsError().WithMessage("params are required")
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return a2a.NewInvalidParamsError().WithMessage("%v", err)
	}
	return nil
}
