// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

// Package openai implements [reasoning.Reasoner] on top of an OpenAI compatible chat
// completion API, running the tool-calling loop until the model produces a final answer.
package openai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-json-experiment/json"
	"github.com/kaptinlin/jsonrepair"
	openai "github.com/sashabaranov/go-openai"

	"github.com/go-a2a/a2a-agent/reasoning"
)

// DefaultMaxToolRounds bounds the number of tool-calling round trips per run.
const DefaultMaxToolRounds = 8

// ChatClient is the subset of the go-openai client used by [Reasoner].
type ChatClient interface {
	CreateChatCompletion(ctx context.Context, request openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Options configures a [Reasoner].
type Options struct {
	Client        ChatClient
	Model         string
	Temperature   float32
	MaxToolRounds int
	// Prompt renders the system prompt. Defaults to [reasoning.DefaultPromptTemplate].
	Prompt *reasoning.PromptTemplate
	Logger *slog.Logger
}

// Reasoner runs prompts against a chat completion model.
type Reasoner struct {
	chat        ChatClient
	model       string
	temperature float32
	maxRounds   int
	prompt      *reasoning.PromptTemplate
	logger      *slog.Logger
}

var _ reasoning.Reasoner = (*Reasoner)(nil)

// New creates a [Reasoner].
func New(opts Options) (*Reasoner, error) {
	if opts.Client == nil {
		return nil, errors.New("openai client is required")
	}
	if opts.Model == "" {
		return nil, errors.New("model is required")
	}
	r := &Reasoner{
		chat:        opts.Client,
		model:       opts.Model,
		temperature: opts.Temperature,
		maxRounds:   opts.MaxToolRounds,
		prompt:      opts.Prompt,
		logger:      opts.Logger,
	}
	if r.maxRounds <= 0 {
		r.maxRounds = DefaultMaxToolRounds
	}
	if r.prompt == nil {
		r.prompt = reasoning.DefaultPromptTemplate()
	}
	if r.logger == nil {
		r.logger = slog.Default()
	}
	return r, nil
}

// NewFromAPIKey creates a [Reasoner] backed by the go-openai client. A non-empty baseURL
// targets any OpenAI compatible endpoint.
func NewFromAPIKey(apiKey, baseURL string, opts Options) (*Reasoner, error) {
	if apiKey == "" {
		return nil, errors.New("api key is required")
	}
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	opts.Client = openai.NewClientWithConfig(cfg)
	return New(opts)
}

// Generate implements [reasoning.Reasoner].
func (r *Reasoner) Generate(ctx context.Context, req *reasoning.Request) (*reasoning.Response, error) {
	system, err := r.prompt.Render(req)
	if err != nil {
		return nil, err
	}

	messages := make([]openai.ChatCompletionMessage, 0, len(req.Messages)+1)
	messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: system})
	for _, m := range req.Messages {
		role := openai.ChatMessageRoleUser
		if m.Role == reasoning.RoleModel {
			role = openai.ChatMessageRoleAssistant
		}
		messages = append(messages, openai.ChatCompletionMessage{Role: role, Content: strings.Join(m.Content, "\n")})
	}

	tools, byName, err := encodeTools(req.Tools)
	if err != nil {
		return nil, err
	}

	var calls int
	for round := 0; ; round++ {
		resp, err := r.chat.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
			Model:       r.model,
			Messages:    messages,
			Temperature: r.temperature,
			Tools:       tools,
		})
		if err != nil {
			return nil, fmt.Errorf("openai chat completion: %w", err)
		}
		if len(resp.Choices) == 0 {
			return nil, errors.New("openai chat completion returned no choices")
		}

		msg := resp.Choices[0].Message
		if len(msg.ToolCalls) == 0 {
			return &reasoning.Response{Text: msg.Content, ToolCalls: calls}, nil
		}
		if round >= r.maxRounds {
			return nil, fmt.Errorf("model exceeded %d tool rounds", r.maxRounds)
		}

		messages = append(messages, openai.ChatCompletionMessage{
			Role:      openai.ChatMessageRoleAssistant,
			Content:   msg.Content,
			ToolCalls: msg.ToolCalls,
		})
		for _, call := range msg.ToolCalls {
			calls++
			messages = append(messages, openai.ChatCompletionMessage{
				Role:       openai.ChatMessageRoleTool,
				ToolCallID: call.ID,
				Name:       call.Function.Name,
				Content:    r.runTool(ctx, byName, call),
			})
		}
	}
}

// runTool executes one tool call and returns the text reported back to the model.
// Tool failures become text so the model can correct its arguments and retry.
func (r *Reasoner) runTool(ctx context.Context, byName map[string]reasoning.Tool, call openai.ToolCall) string {
	tool, ok := byName[call.Function.Name]
	if !ok {
		return fmt.Sprintf("error: unknown tool %q", call.Function.Name)
	}
	args, err := parseToolArguments(call.Function.Arguments)
	if err != nil {
		return "error: " + err.Error()
	}

	out, err := tool.Call(ctx, args)
	if err != nil {
		r.logger.InfoContext(ctx, "tool call failed",
			slog.String("tool", call.Function.Name),
			slog.Any("error", err),
		)
		return "error: " + err.Error()
	}
	return out
}

func encodeTools(defs []reasoning.Tool) ([]openai.Tool, map[string]reasoning.Tool, error) {
	if len(defs) == 0 {
		return nil, nil, nil
	}
	tools := make([]openai.Tool, 0, len(defs))
	byName := make(map[string]reasoning.Tool, len(defs))
	for _, def := range defs {
		params, err := json.Marshal(def.InputSchema(), json.Deterministic(true))
		if err != nil {
			return nil, nil, fmt.Errorf("marshal tool %s schema: %w", def.Name(), err)
		}
		tools = append(tools, openai.Tool{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        def.Name(),
				Description: def.Description(),
				Parameters:  rawJSON(params),
			},
		})
		byName[def.Name()] = def
	}
	return tools, byName, nil
}

// parseToolArguments decodes the JSON arguments of a tool call, repairing
// slightly malformed JSON produced by the model.
func parseToolArguments(raw string) (map[string]any, error) {
	if strings.TrimSpace(raw) == "" {
		return map[string]any{}, nil
	}
	var args map[string]any
	if err := json.Unmarshal([]byte(raw), &args); err == nil {
		return args, nil
	}
	repaired, err := jsonrepair.JSONRepair(raw)
	if err != nil {
		return nil, fmt.Errorf("tool arguments are not valid JSON: %w", err)
	}
	args = nil
	if err := json.Unmarshal([]byte(repaired), &args); err != nil {
		return nil, fmt.Errorf("tool arguments are not a JSON object: %w", err)
	}
	return args, nil
}

// rawJSON is emitted verbatim by encoding/json, which go-openai uses to encode requests.
type rawJSON []byte

// MarshalJSON implements json.Marshaler.
func (r rawJSON) MarshalJSON() ([]byte, error) { return r, nil }
