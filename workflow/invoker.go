// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

// Package workflow calls external automation workflows over HTTP and normalizes their responses.
package workflow

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-json-experiment/json"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"

	"github.com/go-a2a/a2a-agent/internal/telemetry"
)

const instrumentationName = "github.com/go-a2a/a2a-agent/workflow"

// DefaultMaxResponseSize bounds a workflow response unless [WithMaxResponseSize] is given.
const DefaultMaxResponseSize = 10 << 20

// Invoker performs outbound workflow calls.
//
// The zero value is not usable; create one with [New].
type Invoker struct {
	client  *http.Client
	logger  *slog.Logger
	tracer  trace.Tracer
	meter   metric.Meter
	limiter *rate.Limiter
	signer  *jwtSigner
	header  http.Header
	timeout time.Duration
	maxBody int64

	requests metric.Int64Counter
	latency  metric.Float64Histogram
}

// New creates a new [Invoker].
func New(opts ...Option) *Invoker {
	inv := &Invoker{
		client:  http.DefaultClient,
		logger:  slog.Default(),
		tracer:  otel.Tracer(instrumentationName),
		meter:   otel.Meter(instrumentationName),
		header:  make(http.Header),
		maxBody: DefaultMaxResponseSize,
	}
	for _, o := range opts {
		o(inv)
	}
	inv.requests = telemetry.Int64Counter(inv.meter, "a2a_agent.workflow.requests", "Count of outbound workflow requests by status")
	inv.latency = telemetry.Seconds(inv.meter, "a2a_agent.workflow.duration", "Latency of outbound workflow requests")
	return inv
}

// request is the payload posted to a workflow.
type request struct {
	RequestContext any `json:"requestContext"`
}

// Invoke posts record to endpoint as {"requestContext": record} and returns the normalized response.
//
// A response declaring a JSON content type is decoded; an empty body yields an empty object and a
// malformed body yields {"rawText": body}. Any other response is returned as a string. Non-2xx
// responses return a [*StatusError]. No retries are performed.
func (i *Invoker) Invoke(ctx context.Context, endpoint string, record any) (result any, err error) {
	ctx, span := i.tracer.Start(ctx, "workflow.Invoke", trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	start := time.Now()
	status := 0
	defer func() {
		attrs := metric.WithAttributes(attribute.String("status", statusLabel(status, err)))
		i.requests.Add(ctx, 1, attrs)
		i.latency.Record(ctx, time.Since(start).Seconds(), attrs)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
	}()

	if endpoint == "" {
		return nil, errors.New("workflow endpoint is empty")
	}

	if i.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, i.timeout)
		defer cancel()
	}

	if i.limiter != nil {
		if err := i.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("wait for workflow rate limit: %w", err)
		}
	}

	body, err := json.Marshal(request{RequestContext: record})
	if err != nil {
		return nil, fmt.Errorf("encode workflow request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create workflow request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json, text/plain;q=0.9, */*;q=0.8")
	for k, vs := range i.header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	if i.signer != nil {
		token, err := i.signer.sign(time.Now())
		if err != nil {
			return nil, fmt.Errorf("sign workflow request: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	span.SetAttributes(attribute.String("http.url", endpoint))
	i.logger.DebugContext(ctx, "calling workflow", slog.String("endpoint", endpoint))

	resp, err := i.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("workflow request failed: %w", err)
	}
	defer resp.Body.Close()
	status = resp.StatusCode
	span.SetAttributes(attribute.Int("http.status_code", status))

	raw, err := io.ReadAll(io.LimitReader(resp.Body, i.maxBody+1))
	if err != nil {
		return nil, fmt.Errorf("read workflow response: %w", err)
	}
	tooLarge := int64(len(raw)) > i.maxBody
	if tooLarge {
		raw = raw[:i.maxBody]
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		i.logger.WarnContext(ctx, "workflow returned error status",
			slog.String("endpoint", endpoint),
			slog.Int("status", resp.StatusCode),
		)
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: string(raw)}
	}

	if tooLarge {
		return nil, fmt.Errorf("%w: limit is %d bytes", ErrResponseTooLarge, i.maxBody)
	}
	return Normalize(resp.Header.Get("Content-Type"), raw), nil
}

// Normalize converts a successful workflow response body into a single value.
func Normalize(contentType string, body []byte) any {
	if !strings.Contains(strings.ToLower(contentType), "application/json") {
		return string(body)
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return map[string]any{}
	}
	var v any
	if err := json.Unmarshal(body, &v); err != nil {
		return map[string]any{"rawText": string(body)}
	}
	return v
}

func statusLabel(status int, err error) string {
	if status == 0 {
		if err != nil {
			return "error"
		}
		return "unknown"
	}
	return strconv.Itoa(status)
}
