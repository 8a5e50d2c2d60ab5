// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-json-experiment/json"

	a2a "github.com/go-a2a/a2a-agent"
)

// Well-known agent card paths, newest first.
const (
	AgentCardPath       = "/.well-known/agent-card.json"
	LegacyAgentCardPath = "/.well-known/agent.json"
)

// CardResolver fetches agent cards from the well-known location of an agent base URL.
type CardResolver struct {
	hc *http.Client
}

// NewCardResolver returns a CardResolver using hc, or [http.DefaultClient] if hc is nil.
func NewCardResolver(hc *http.Client) *CardResolver {
	if hc == nil {
		hc = http.DefaultClient
	}
	return &CardResolver{hc: hc}
}

// Resolve fetches the agent card of baseURL. It tries [AgentCardPath] first and falls back
// to [LegacyAgentCardPath] when the agent answers 404.
func (r *CardResolver) Resolve(ctx context.Context, baseURL string) (*a2a.AgentCard, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("base url %q must be http or https", baseURL)
	}

	card, err := r.fetch(ctx, u, AgentCardPath)
	var httpErr *HTTPError
	if errors.As(err, &httpErr) && httpErr.StatusCode == http.StatusNotFound {
		return r.fetch(ctx, u, LegacyAgentCardPath)
	}
	return card, err
}

func (r *CardResolver) fetch(ctx context.Context, base *url.URL, path string) (*a2a.AgentCard, error) {
	u := *base
	u.Path = strings.TrimSuffix(u.Path, "/") + path
	u.RawQuery = ""

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := r.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch agent card: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("read agent card: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &HTTPError{StatusCode: resp.StatusCode}
	}

	var card a2a.AgentCard
	if err := json.Unmarshal(body, &card); err != nil {
		return nil, fmt.Errorf("decode agent card: %w", err)
	}
	if card.URL == "" {
		return nil, errors.New("agent card has no url")
	}
	return &card, nil
}
