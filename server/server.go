// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

// Package server exposes an A2A agent over HTTP: the JSON-RPC endpoint, the agent card and
// optionally a metrics endpoint.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/go-json-experiment/json"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	a2a "github.com/go-a2a/a2a-agent"
	"github.com/go-a2a/a2a-agent/server/handler"
)

const instrumentationName = "github.com/go-a2a/a2a-agent/server"

// Well-known agent card paths. The second one is kept for older clients.
const (
	AgentCardPath       = "/.well-known/agent-card.json"
	LegacyAgentCardPath = "/.well-known/agent.json"
)

// Server implements the A2A protocol server.
type Server struct {
	card    *a2a.AgentCard
	rpc     *handler.JSONRPCHandler
	mux     *http.ServeMux
	handler http.Handler

	logger      *slog.Logger
	tracer      trace.Tracer
	metrics     http.Handler
	rpcOptions  []handler.JSONRPCOption
	readTimeout time.Duration
}

var _ http.Handler = (*Server)(nil)

// New creates a new A2A server for card backed by rh.
func New(card *a2a.AgentCard, rh handler.RequestHandler, opts ...Option) (*Server, error) {
	if card == nil {
		return nil, errors.New("agent card is required")
	}
	if rh == nil {
		return nil, errors.New("request handler is required")
	}

	s := &Server{
		card:        card,
		mux:         http.NewServeMux(),
		logger:      slog.Default(),
		tracer:      otel.Tracer(instrumentationName),
		readTimeout: 30 * time.Second,
	}
	for _, o := range opts {
		o(s)
	}

	rpcOpts := append([]handler.JSONRPCOption{
		handler.WithJSONRPCLogger(s.logger),
		handler.WithStreaming(card.Capabilities.Streaming),
	}, s.rpcOptions...)
	s.rpc = handler.NewJSONRPCHandler(rh, rpcOpts...)

	s.registerHandlers()
	s.handler = s.recoverer(s.logRequests(s.mux))
	return s, nil
}

// ServeHTTP implements the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

// registerHandlers sets up all the HTTP routes for the A2A server.
func (s *Server) registerHandlers() {
	s.mux.HandleFunc("GET "+AgentCardPath, s.handleAgentCard)
	s.mux.HandleFunc("GET "+LegacyAgentCardPath, s.handleAgentCard)
	s.mux.Handle("POST /{$}", s.rpc)
	if s.metrics != nil {
		s.mux.Handle("GET /metrics", s.metrics)
	}
}

// handleAgentCard serves the agent card.
func (s *Server) handleAgentCard(w http.ResponseWriter, r *http.Request) {
	data, err := json.Marshal(s.card)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "encode agent card", slog.Any("error", err))
		http.Error(w, "failed to encode agent card", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(data)
}

// Serve listens on addr and serves HTTP/1.1 and cleartext HTTP/2 until ctx is done, then shuts
// down gracefully within shutdownTimeout.
func (s *Server) Serve(ctx context.Context, addr string, shutdownTimeout time.Duration) error {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", addr, err)
	}
	return s.serve(ctx, lis, shutdownTimeout)
}

func (s *Server) serve(ctx context.Context, lis net.Listener, shutdownTimeout time.Duration) error {
	srv := &http.Server{
		Handler:           h2c.NewHandler(s, &http2.Server{}),
		ReadHeaderTimeout: s.readTimeout,
		BaseContext:       func(net.Listener) context.Context { return context.WithoutCancel(ctx) },
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.InfoContext(ctx, "a2a server listening", slog.String("addr", lis.Addr().String()))
		errc <- srv.Serve(lis)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// statusRecorder captures the response status for logging. It forwards Flush so SSE keeps working.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	if r.status == 0 {
		r.status = code
	}
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	return r.ResponseWriter.Write(b)
}

func (r *statusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, span := s.tracer.Start(r.Context(), r.Method+" "+r.URL.Path,
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(attribute.String("http.request.method", r.Method), attribute.String("url.path", r.URL.Path)),
		)
		defer span.End()

		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w}
		next.ServeHTTP(rec, r.WithContext(ctx))

		span.SetAttributes(attribute.Int("http.response.status_code", rec.status))
		s.logger.DebugContext(ctx, "http request",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", rec.status),
			slog.Duration("duration", time.Since(start)),
		)
	})
}

func (s *Server) recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if v := recover(); v != nil {
				if v == http.ErrAbortHandler {
					panic(v)
				}
				s.logger.ErrorContext(r.Context(), "panic serving request",
					slog.Any("panic", v),
					slog.String("stack", string(debug.Stack())),
				)
				http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			}
		}()
		next.ServeHTTP(w, r)
	})
}
