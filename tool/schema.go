// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package tool

import (
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// argumentsSchema constrains the shape of the tool arguments. The request context itself
// is checked against the configured input fields separately.
var argumentsSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		ArgWebhookURL: map[string]any{"type": "string"},
	},
}

var compiledArguments = sync.OnceValues(func() (*jsonschema.Schema, error) {
	const url = "urn:a2a-agent:tool:callWorkflow.json"
	c := jsonschema.NewCompiler()
	if err := c.AddResource(url, argumentsSchema); err != nil {
		return nil, err
	}
	return c.Compile(url)
})

// checkArguments validates the raw tool arguments.
func checkArguments(args map[string]any) error {
	sch, err := compiledArguments()
	if err != nil {
		return fmt.Errorf("compile tool argument schema: %w", err)
	}
	if args == nil {
		args = map[string]any{}
	}
	if err := sch.Validate(args); err != nil {
		return fmt.Errorf("invalid tool arguments: %w", err)
	}
	return nil
}
