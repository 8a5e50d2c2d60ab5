// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/go-a2a/a2a-agent/validation"
)

// errInvalidRecord makes the validate command exit non-zero after printing the errors.
var errInvalidRecord = errors.New("record does not match the input fields")

const redacted = "<redacted>"

func newValidateCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "validate [record.json]",
		Short: "Check a JSON record against the configured input fields",
		Long:  "Reads a JSON record from the given file, or stdin when none is given or the file is \"-\".",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}
			fields, err := cfg.Fields()
			if err != nil {
				return err
			}

			var data []byte
			if len(args) == 0 || args[0] == "-" {
				data, err = io.ReadAll(cmd.InOrStdin())
			} else {
				data, err = os.ReadFile(args[0])
			}
			if err != nil {
				return fmt.Errorf("read record: %w", err)
			}
			var record any
			if err := json.Unmarshal(data, &record); err != nil {
				return fmt.Errorf("parse record: %w", err)
			}

			out := cmd.OutOrStdout()
			res := validation.Validate(record, fields)
			if !res.Valid {
				fmt.Fprintln(out, validation.FormatErrors(res.Errors))
				return errInvalidRecord
			}
			fmt.Fprintln(out, "Record is valid.")
			return nil
		},
	}
}

func newCardCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "card",
		Short: "Print the agent card",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}
			card, err := cfg.AgentCard()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if err := json.MarshalWrite(out, card, jsontext.WithIndent("  ")); err != nil {
				return err
			}
			_, err = fmt.Fprintln(out)
			return err
		},
	}
}

func newConfigCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration as YAML, secrets redacted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}

			c := *cfg
			for _, s := range []*string{&c.Reasoning.APIKey, &c.Workflow.JWT.Secret, &c.Workflow.HeaderValue} {
				if *s != "" {
					*s = redacted
				}
			}

			enc := yaml.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent(2)
			if err := enc.Encode(&c); err != nil {
				return err
			}
			return enc.Close()
		},
	}
}
