// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package reasoning

import (
	"fmt"
	"strings"
	"text/template"
	"time"

	"github.com/go-a2a/a2a-agent/validation"
)

// Control lines the model must end its answer with.
const (
	ControlCompleted         = "COMPLETED"
	ControlAwaitingUserInput = "AWAITING_USER_INPUT"
)

// DefaultSystemPrompt instructs the model how to pursue the goal and how to signal the outcome.
const DefaultSystemPrompt = `You are an assistant that completes the following goal for the user:

{{.Goal}}

The current date and time is {{.Now}}.
{{- if .Fields}}

To act on the goal call the tool {{.ToolName}} with webhookUrl "{{.WebhookURL}}" and a requestContext object with these fields:
{{- range .Fields}}
- {{.FieldName}} ({{.FieldType}}{{if .Required}}, required{{end}})
{{- end}}
Ask the user for any required value you do not have. If the tool reports validation errors, fix the arguments and call it again.
{{- else if .WebhookURL}}

To act on the goal call the tool {{.ToolName}} with webhookUrl "{{.WebhookURL}}" and a requestContext object describing the request.
{{- end}}

Answer the user in plain text. End your answer with a final line containing only
{{.Completed}} when the goal is achieved, or {{.Awaiting}} when you need more information from the user.`

type promptData struct {
	Goal       string
	Now        string
	WebhookURL string
	ToolName   string
	Fields     []validation.InputFieldConfig
	Completed  string
	Awaiting   string
}

// PromptTemplate renders the system prompt of a reasoning run.
type PromptTemplate struct {
	tmpl *template.Template
}

// ParsePromptTemplate parses a text/template prompt. The template sees .Goal, .Now, .WebhookURL,
// .ToolName, .Fields, .Completed and .Awaiting.
func ParsePromptTemplate(text string) (*PromptTemplate, error) {
	tmpl, err := template.New("system").Option("missingkey=error").Parse(text)
	if err != nil {
		return nil, fmt.Errorf("parse system prompt: %w", err)
	}
	return &PromptTemplate{tmpl: tmpl}, nil
}

// DefaultPromptTemplate returns the template for [DefaultSystemPrompt].
func DefaultPromptTemplate() *PromptTemplate {
	return &PromptTemplate{tmpl: template.Must(template.New("system").Parse(DefaultSystemPrompt))}
}

// Render executes the template for req.
func (p *PromptTemplate) Render(req *Request) (string, error) {
	data := promptData{
		Goal:       req.Goal,
		Now:        req.Now.UTC().Format(time.RFC3339),
		WebhookURL: req.WebhookURL,
		Fields:     req.InputFields,
		Completed:  ControlCompleted,
		Awaiting:   ControlAwaitingUserInput,
	}
	if len(req.Tools) > 0 {
		data.ToolName = req.Tools[0].Name()
	}
	var b strings.Builder
	if err := p.tmpl.Execute(&b, data); err != nil {
		return "", fmt.Errorf("render system prompt: %w", err)
	}
	return b.String(), nil
}
