// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package client

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime"

	a2a "github.com/go-a2a/a2a-agent"
)

// maxFrameSize bounds a single SSE line.
const maxFrameSize = 1 << 20

// StreamResult is one item of a streaming call: an event or the error that ended the stream.
type StreamResult struct {
	Event a2a.Event
	Err   error
}

// SendStreamingMessage calls message/stream. The returned channel yields events in order
// and is closed after the final event, on error, or when ctx is done.
func (c *Client) SendStreamingMessage(ctx context.Context, params *a2a.MessageSendParams) (<-chan StreamResult, error) {
	return c.stream(ctx, a2a.MethodMessageStream, params)
}

// Resubscribe calls tasks/resubscribe. The stream starts with the current task and follows
// its events until the final one.
func (c *Client) Resubscribe(ctx context.Context, params *a2a.TaskIDParams) (<-chan StreamResult, error) {
	return c.stream(ctx, a2a.MethodTasksResubscribe, params)
}

func (c *Client) stream(ctx context.Context, method string, params any) (<-chan StreamResult, error) {
	resp, err := c.post(ctx, method, params, "text/event-stream")
	if err != nil {
		return nil, err
	}

	// errors raised before streaming starts come back as a plain JSON-RPC response
	if mt, _, _ := mime.ParseMediaType(resp.Header.Get("Content-Type")); mt != "text/event-stream" {
		defer resp.Body.Close()
		body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
		if err != nil {
			return nil, fmt.Errorf("read response: %w", err)
		}
		if _, err := decodeResponse(body); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("%s: unexpected content type %q", method, mt)
	}

	results := make(chan StreamResult)
	go func() {
		defer close(results)
		defer resp.Body.Close()

		send := func(r StreamResult) bool {
			select {
			case results <- r:
				return true
			case <-ctx.Done():
				return false
			}
		}

		err := readSSE(resp.Body, func(data []byte) bool {
			raw, err := decodeResponse(data)
			if err != nil {
				send(StreamResult{Err: err})
				return false
			}
			ev, err := a2a.UnmarshalEvent(raw)
			if err != nil {
				send(StreamResult{Err: err})
				return false
			}
			if !send(StreamResult{Event: ev}) {
				return false
			}
			return !a2a.IsFinalEvent(ev)
		})
		if err != nil && ctx.Err() == nil {
			c.logger.DebugContext(ctx, "a2a stream ended", slog.String("method", method), slog.Any("error", err))
			send(StreamResult{Err: fmt.Errorf("read stream: %w", err)})
		}
	}()
	return results, nil
}

// readSSE calls fn with the data of every event in r until fn returns false or r ends.
// Multi-line data fields are joined with "\n"; comments and other fields are ignored.
func readSSE(r io.Reader, fn func(data []byte) bool) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64<<10), maxFrameSize)

	var data []byte
	for sc.Scan() {
		line := sc.Bytes()
		if len(line) == 0 {
			if len(data) > 0 {
				if !fn(data) {
					return nil
				}
				data = data[:0]
			}
			continue
		}
		if line[0] == ':' {
			continue
		}
		field, value, _ := bytes.Cut(line, []byte(":"))
		if string(field) != "data" {
			continue
		}
		value = bytes.TrimPrefix(value, []byte(" "))
		if len(data) > 0 {
			data = append(data, '\n')
		}
		data = append(data, value...)
	}
	if err := sc.Err(); err != nil {
		return err
	}
	if len(data) > 0 {
		fn(data)
	}
	return nil
}
