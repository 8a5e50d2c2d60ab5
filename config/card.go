// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"net"
	"strings"

	a2a "github.com/go-a2a/a2a-agent"
)

// AgentCard builds the card served under /.well-known. The card URL defaults to
// http://localhost:<port> of the listen address.
func (c *Config) AgentCard() (*a2a.AgentCard, error) {
	skills, err := c.skills()
	if err != nil {
		return nil, err
	}
	if skills == nil {
		skills = []a2a.AgentSkill{}
	}

	card := &a2a.AgentCard{
		Name:               c.Agent.Name,
		Description:        c.Agent.Description,
		ProtocolVersion:    c.Agent.ProtocolVersion,
		Version:            c.Agent.Version,
		URL:                c.baseURL(),
		Capabilities:       a2a.AgentCapabilities{Streaming: c.Agent.Streaming},
		Skills:             skills,
		DefaultInputModes:  c.Agent.DefaultInputModes,
		DefaultOutputModes: c.Agent.DefaultOutputModes,
	}
	if c.Agent.ProviderOrganization != "" {
		card.Provider = &a2a.AgentProvider{
			Organization: c.Agent.ProviderOrganization,
			URL:          c.Agent.ProviderURL,
		}
	}
	return card, nil
}

func (c *Config) baseURL() string {
	if c.Server.BaseURL != "" {
		return c.Server.BaseURL
	}
	port := strings.TrimPrefix(c.Server.Addr, ":")
	if _, p, err := net.SplitHostPort(c.Server.Addr); err == nil {
		port = p
	}
	return "http://localhost:" + port
}
