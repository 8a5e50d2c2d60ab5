// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

// Package jsonrpc2 holds the telemetry shared by the JSON-RPC transport.
package jsonrpc2

import (
	"context"
	"strconv"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"

	"github.com/go-a2a/a2a-agent/internal/telemetry"
)

// Metrics records one measurement set per JSON-RPC call.
type Metrics struct {
	started      metric.Int64Counter
	latency      metric.Float64Histogram
	receivedSize metric.Int64Histogram
}

// NewMetrics creates the RPC instruments on m.
func NewMetrics(m metric.Meter) *Metrics {
	receivedSize, err := m.Int64Histogram("a2a_agent.rpc.request_size",
		metric.WithDescription("Size of received JSON-RPC requests"),
		metric.WithUnit("By"),
	)
	if err != nil {
		otel.Handle(err)
		receivedSize = noop.Int64Histogram{}
	}

	return &Metrics{
		started:      telemetry.Int64Counter(m, "a2a_agent.rpc.started", "Count of started RPCs"),
		latency:      telemetry.Seconds(m, "a2a_agent.rpc.duration", "Latency of RPCs by method and status code"),
		receivedSize: receivedSize,
	}
}

// Start records that method was received in a request of size bytes.
func (m *Metrics) Start(ctx context.Context, method string, size int64) {
	attrs := metric.WithAttributes(attribute.String("rpc.method", method))
	m.started.Add(ctx, 1, attrs)
	m.receivedSize.Record(ctx, size, attrs)
}

// End records the latency of method since start. code is 0 for success.
func (m *Metrics) End(ctx context.Context, method string, code int, start time.Time) {
	m.latency.Record(ctx, time.Since(start).Seconds(), metric.WithAttributes(
		attribute.String("rpc.method", method),
		attribute.String("rpc.jsonrpc.error_code", strconv.Itoa(code)),
	))
}
