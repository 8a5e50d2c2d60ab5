// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package reasoning

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/go-a2a/a2a-agent/validation"
)

type namedTool string

func (n namedTool) Name() string                { return string(n) }
func (namedTool) Description() string           { return "" }
func (namedTool) InputSchema() map[string]any   { return map[string]any{"type": "object"} }
func (namedTool) Call(context.Context, map[string]any) (string, error) { return "", nil }

func TestDefaultPromptTemplate(t *testing.T) {
	t.Parallel()

	req := &Request{
		Goal:       "Book a room",
		Now:        time.Date(2025, 6, 1, 8, 30, 0, 0, time.UTC),
		WebhookURL: "https://n8n.example/webhook/book",
		InputFields: []validation.InputFieldConfig{
			{FieldName: "guestName", FieldType: validation.FieldTypeText, Required: true},
			{FieldName: "nights", FieldType: validation.FieldTypeNumber},
		},
		Tools: []Tool{namedTool("callWorkflow")},
	}
	got, err := DefaultPromptTemplate().Render(req)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	for _, want := range []string{
		"Book a room",
		"2025-06-01T08:30:00Z",
		`callWorkflow with webhookUrl "https://n8n.example/webhook/book"`,
		"- guestName (text, required)",
		"- nights (number)",
		"COMPLETED",
		"AWAITING_USER_INPUT",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("prompt missing %q:\n%s", want, got)
		}
	}
}

func TestParsePromptTemplate(t *testing.T) {
	t.Parallel()

	p, err := ParsePromptTemplate("goal={{.Goal}} end={{.Completed}}")
	if err != nil {
		t.Fatalf("ParsePromptTemplate() error = %v", err)
	}
	got, err := p.Render(&Request{Goal: "g"})
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if got != "goal=g end=COMPLETED" {
		t.Errorf("Render() = %q", got)
	}

	if _, err := ParsePromptTemplate("{{.Goal"); err == nil {
		t.Error("ParsePromptTemplate(bad) error = nil")
	}
}
