// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"github.com/spf13/cobra"

	"github.com/go-a2a/a2a-agent/config"
)

type rootOptions struct {
	configPath string
}

func (o *rootOptions) load() (*config.Config, error) {
	return config.Load(o.configPath)
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "a2a-agent",
		Short: "Workflow-backed A2A agent",
		Long: `a2a-agent exposes an agent over the A2A protocol (JSON-RPC 2.0 over HTTP).

Each user message is handed to a language model that can call the configured
workflow webhook as a tool. Configuration is read from ./a2a-agent.yaml or --config
and can be overridden with A2A_AGENT_* environment variables.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "config file (default ./a2a-agent.yaml)")

	cmd.AddCommand(
		newServeCmd(opts),
		newValidateCmd(opts),
		newCardCmd(opts),
		newConfigCmd(opts),
		newSendCmd(),
	)
	return cmd
}
