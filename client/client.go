// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

// Package client implements a JSON-RPC client for A2A agents.
package client

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync/atomic"

	"github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"

	a2a "github.com/go-a2a/a2a-agent"
)

// DefaultUserAgent is sent unless overridden with [WithUserAgent].
const DefaultUserAgent = "a2a-agent-client"

// maxResponseSize bounds a non-streaming response body.
const maxResponseSize = 10 << 20

// Client calls a single A2A agent endpoint.
type Client struct {
	url          string
	hc           *http.Client
	interceptors []Interceptor
	userAgent    string
	logger       *slog.Logger

	invoke Invoker
	nextID atomic.Int64
}

// New creates a client for the JSON-RPC endpoint at url.
func New(url string, opts ...Option) (*Client, error) {
	if url == "" {
		return nil, errors.New("agent url is required")
	}

	c := &Client{
		url:       url,
		hc:        http.DefaultClient,
		userAgent: DefaultUserAgent,
		logger:    slog.Default(),
	}
	for _, o := range opts {
		o(c)
	}
	c.invoke = chainInterceptors(c.interceptors, func(_ context.Context, req *http.Request) (*http.Response, error) {
		return c.hc.Do(req)
	})
	return c, nil
}

// NewFromCard creates a client for the endpoint advertised by card.
func NewFromCard(card *a2a.AgentCard, opts ...Option) (*Client, error) {
	if card == nil {
		return nil, errors.New("agent card is required")
	}
	return New(card.URL, opts...)
}

// SendMessage calls message/send and returns the resulting [*a2a.Task] or [*a2a.Message].
func (c *Client) SendMessage(ctx context.Context, params *a2a.MessageSendParams) (a2a.Event, error) {
	raw, err := c.call(ctx, a2a.MethodMessageSend, params)
	if err != nil {
		return nil, err
	}
	return a2a.UnmarshalEvent(raw)
}

// GetTask calls tasks/get.
func (c *Client) GetTask(ctx context.Context, params *a2a.TaskQueryParams) (*a2a.Task, error) {
	raw, err := c.call(ctx, a2a.MethodTasksGet, params)
	if err != nil {
		return nil, err
	}
	var t a2a.Task
	if err := json.Unmarshal(raw, &t); err != nil {
		return nil, fmt.Errorf("decode task: %w", err)
	}
	return &t, nil
}

// CancelTask calls tasks/cancel.
func (c *Client) CancelTask(ctx context.Context, params *a2a.TaskIDParams) (*a2a.Task, error) {
	raw, err := c.call(ctx, a2a.MethodTasksCancel, params)
	if err != nil {
		return nil, err
	}
	var t a2a.Task
	if err := json.Unmarshal(raw, &t); err != nil {
		return nil, fmt.Errorf("decode task: %w", err)
	}
	return &t, nil
}

// call performs a non-streaming request and returns the raw result.
// A JSON-RPC error response is returned as a [*a2a.JSONRPCError].
func (c *Client) call(ctx context.Context, method string, params any) (jsontext.Value, error) {
	resp, err := c.post(ctx, method, params, "application/json")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	return decodeResponse(body)
}

// post sends a JSON-RPC request and returns the response once its status is 200.
func (c *Client) post(ctx context.Context, method string, params any, accept string) (*http.Response, error) {
	rawParams, err := json.Marshal(params)
	if err != nil {
		return nil, fmt.Errorf("encode params: %w", err)
	}
	payload, err := json.Marshal(&a2a.JSONRPCRequest{
		JSONRPC: a2a.JSONRPCVersion,
		ID:      jsontext.Value(fmt.Sprint(c.nextID.Add(1))),
		Method:  method,
		Params:  rawParams,
	})
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", accept)
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.invoke(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", method, err)
	}
	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return nil, &HTTPError{StatusCode: resp.StatusCode, Body: string(body)}
	}
	return resp, nil
}

func decodeResponse(data []byte) (jsontext.Value, error) {
	var resp struct {
		Result jsontext.Value    `json:"result"`
		Error  *a2a.JSONRPCError `json:"error"`
	}
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if resp.Error != nil {
		return nil, resp.Error
	}
	if len(resp.Result) == 0 {
		return nil, errors.New("response has neither result nor error")
	}
	return resp.Result, nil
}
