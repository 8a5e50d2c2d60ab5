// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

// Package tool exposes the workflow invoker to the reasoning model as a callable tool.
package tool

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"

	"github.com/go-a2a/a2a-agent/reasoning"
	"github.com/go-a2a/a2a-agent/validation"
)

// WorkflowToolName is the name the model uses to call the workflow.
const WorkflowToolName = "callWorkflow"

// Argument names of the workflow tool.
const (
	ArgWebhookURL     = "webhookUrl"
	ArgRequestContext = "requestContext"
)

// Invoker performs the workflow call. It is satisfied by *workflow.Invoker.
type Invoker interface {
	Invoke(ctx context.Context, endpoint string, record any) (any, error)
}

// ValidationError is returned when the request context does not match the configured input fields.
// The model sees its message and is expected to retry with corrected arguments.
type ValidationError struct {
	Errors   []string
	Required []string
}

// Error returns the error message.
func (e *ValidationError) Error() string {
	msg := validation.FormatErrors(e.Errors)
	if len(e.Required) > 0 {
		msg += "\nRequired fields: " + strings.Join(e.Required, ", ")
	}
	return msg
}

// Workflow is the [reasoning.Tool] that triggers the configured workflow.
type Workflow struct {
	invoker  Invoker
	endpoint string
	fields   []validation.InputFieldConfig
	logger   *slog.Logger
}

var _ reasoning.Tool = (*Workflow)(nil)

// NewWorkflow creates the workflow tool. endpoint may be empty, in which case the model
// must supply the webhookUrl argument. fields is copied.
func NewWorkflow(invoker Invoker, endpoint string, fields []validation.InputFieldConfig, logger *slog.Logger) *Workflow {
	if logger == nil {
		logger = slog.Default()
	}
	return &Workflow{
		invoker:  invoker,
		endpoint: endpoint,
		fields:   append([]validation.InputFieldConfig(nil), fields...),
		logger:   logger,
	}
}

// Name implements [reasoning.Tool].
func (w *Workflow) Name() string { return WorkflowToolName }

// Description implements [reasoning.Tool].
func (w *Workflow) Description() string {
	desc := "Trigger the automation workflow that fulfils the user's request. Pass the collected data as requestContext."
	if required := validation.RequiredFieldNames(w.fields); len(required) > 0 {
		desc += " Required fields: " + strings.Join(required, ", ") + "."
	}
	return desc
}

// InputSchema implements [reasoning.Tool].
func (w *Workflow) InputSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			ArgWebhookURL: map[string]any{
				"type":        "string",
				"description": "The workflow webhook URL.",
			},
			ArgRequestContext: map[string]any{
				"type":        "object",
				"description": "The data the workflow needs.",
				"properties":  fieldProperties(w.fields),
			},
		},
	}
}

// Call implements [reasoning.Tool].
func (w *Workflow) Call(ctx context.Context, args map[string]any) (string, error) {
	if err := checkArguments(args); err != nil {
		return "", err
	}

	endpoint, err := w.resolveEndpoint(ctx, args)
	if err != nil {
		return "", err
	}

	record := args[ArgRequestContext]
	if len(w.fields) > 0 {
		if res := validation.Validate(record, w.fields); !res.Valid {
			return "", &ValidationError{Errors: res.Errors, Required: validation.RequiredFieldNames(w.fields)}
		}
	}

	out, err := w.invoker.Invoke(ctx, endpoint, record)
	if err != nil {
		return "", err
	}
	return FormatOutput(out)
}

// resolveEndpoint prefers the configured endpoint over the one supplied by the model.
func (w *Workflow) resolveEndpoint(ctx context.Context, args map[string]any) (string, error) {
	supplied, _ := args[ArgWebhookURL].(string)
	if w.endpoint == "" {
		if supplied == "" {
			return "", errors.New("webhookUrl is required")
		}
		return supplied, nil
	}
	if supplied != "" && supplied != w.endpoint {
		w.logger.WarnContext(ctx, "ignoring model supplied webhook url",
			slog.String("supplied", supplied),
			slog.String("endpoint", w.endpoint),
		)
	}
	return w.endpoint, nil
}

// FormatOutput renders a normalized workflow result as tool output: strings pass through,
// everything else becomes indented JSON.
func FormatOutput(v any) (string, error) {
	if s, ok := v.(string); ok {
		return s, nil
	}
	b, err := json.Marshal(v, jsontext.WithIndent("  "), json.Deterministic(true))
	if err != nil {
		return "", fmt.Errorf("encode workflow result: %w", err)
	}
	return string(b), nil
}

func fieldProperties(fields []validation.InputFieldConfig) map[string]any {
	props := make(map[string]any, len(fields))
	for _, f := range fields {
		props[f.FieldName] = fieldSchema(f.FieldType)
	}
	return props
}

func fieldSchema(ft validation.FieldType) map[string]any {
	switch ft {
	case validation.FieldTypeText:
		return map[string]any{"type": "string"}
	case validation.FieldTypeNumber:
		return map[string]any{"type": "number"}
	case validation.FieldTypeBoolean:
		return map[string]any{"type": "boolean"}
	case validation.FieldTypeDate:
		return map[string]any{"type": "string", "format": "date-time"}
	case validation.FieldTypeJSON:
		return map[string]any{"type": "object"}
	case validation.FieldTypeArray:
		return map[string]any{"type": "array", "items": map[string]any{}}
	default:
		return map[string]any{}
	}
}
