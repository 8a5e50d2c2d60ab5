// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-json-experiment/json"
	"gopkg.in/yaml.v3"

	a2a "github.com/go-a2a/a2a-agent"
	"github.com/go-a2a/a2a-agent/config"
	"github.com/go-a2a/a2a-agent/server/task"
)

const testConfig = `
server:
  addr: "127.0.0.1:0"
  shutdown_timeout: 1s
agent:
  name: weather
  description: Answers weather questions
workflow:
  url: https://hooks.example.com/webhook/weather
  header_name: X-Api-Key
  header_value: hunter2
input_fields:
  - field_name: city
    field_type: text
    required: true
  - field_name: days
    field_type: number
reasoning:
  api_key: sk-test
  system_prompt: "Goal: {{.Goal}}"
context_store:
  max_contexts: 16
`

func writeConfig(t *testing.T) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "a2a-agent.yaml")
	if err := os.WriteFile(path, []byte(testConfig), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(t.Context())
	return out.String(), err
}

func TestCardCommand(t *testing.T) {
	t.Parallel()

	out, err := execute(t, "", "card", "--config", writeConfig(t))
	if err != nil {
		t.Fatalf("card error = %v", err)
	}

	var card a2a.AgentCard
	if err := json.Unmarshal([]byte(out), &card); err != nil {
		t.Fatalf("card output is not JSON: %v\n%s", err, out)
	}
	if card.Name != "weather" || card.URL != "http://localhost:0" || !card.Capabilities.Streaming {
		t.Errorf("card = %+v", card)
	}
}

func TestConfigCommandRedactsSecrets(t *testing.T) {
	t.Parallel()

	out, err := execute(t, "", "config", "-c", writeConfig(t))
	if err != nil {
		t.Fatalf("config error = %v", err)
	}
	if strings.Contains(out, "hunter2") || strings.Contains(out, "sk-test") {
		t.Errorf("config output leaks a secret:\n%s", out)
	}

	var decoded config.Config
	if err := yaml.Unmarshal([]byte(out), &decoded); err != nil {
		t.Fatalf("config output is not YAML: %v", err)
	}
	if decoded.Reasoning.APIKey != redacted || decoded.Workflow.HeaderValue != redacted {
		t.Errorf("secrets = %q / %q, want redacted", decoded.Reasoning.APIKey, decoded.Workflow.HeaderValue)
	}
	if decoded.Workflow.URL != "https://hooks.example.com/webhook/weather" {
		t.Errorf("workflow.url = %q", decoded.Workflow.URL)
	}
}

func TestValidateCommand(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		stdin    string
		wantErr  error
		wantOut  []string
		parseErr bool
	}{
		"success: valid record": {
			stdin:   `{"city":"Berlin","days":3}`,
			wantOut: []string{"Record is valid."},
		},
		"error: missing and mistyped fields": {
			stdin:   `{"days":"three"}`,
			wantErr: errInvalidRecord,
			wantOut: []string{"Input validation failed", "1. city:", "2. days:"},
		},
		"error: not json": {
			stdin:    `{city`,
			parseErr: true,
		},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			out, err := execute(t, tt.stdin, "validate", "-c", writeConfig(t))
			switch {
			case tt.parseErr:
				if err == nil || !strings.Contains(err.Error(), "parse record") {
					t.Fatalf("validate error = %v, want parse error", err)
				}
				return
			case !errors.Is(err, tt.wantErr):
				t.Fatalf("validate error = %v, want %v", err, tt.wantErr)
			}
			for _, want := range tt.wantOut {
				if !strings.Contains(out, want) {
					t.Errorf("output = %q, want it to contain %q", out, want)
				}
			}
		})
	}
}

func TestValidateCommandReadsFile(t *testing.T) {
	t.Parallel()

	record := filepath.Join(t.TempDir(), "record.json")
	if err := os.WriteFile(record, []byte(`{"city":"Paris"}`), 0o600); err != nil {
		t.Fatal(err)
	}
	out, err := execute(t, "", "validate", "-c", writeConfig(t), record)
	if err != nil {
		t.Fatalf("validate error = %v", err)
	}
	if !strings.Contains(out, "Record is valid.") {
		t.Errorf("output = %q", out)
	}
}

func TestServeRejectsInvalidConfig(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("task_store:\n  driver: postgres\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	_, err := execute(t, "", "serve", "-c", path)
	if err == nil || !strings.Contains(err.Error(), "invalid config") {
		t.Fatalf("serve error = %v, want invalid config", err)
	}
}

func TestOpenTaskStore(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		cfg  config.TaskStoreConfig
		want any
	}{
		"success: memory": {
			cfg:  config.TaskStoreConfig{Driver: config.DriverMemory},
			want: &task.InMemoryTaskStore{},
		},
		"success: sqlite": {
			cfg:  config.TaskStoreConfig{Driver: config.DriverSQLite, DSN: "file:" + t.Name() + "?mode=memory&cache=shared"},
			want: &task.DatabaseTaskStore{},
		},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			store, err := openTaskStore(t.Context(), tt.cfg)
			if err != nil {
				t.Fatalf("openTaskStore() error = %v", err)
			}
			defer store.Close(context.Background())

			switch tt.want.(type) {
			case *task.InMemoryTaskStore:
				if _, ok := store.(*task.InMemoryTaskStore); !ok {
					t.Errorf("store = %T", store)
				}
			case *task.DatabaseTaskStore:
				if _, ok := store.(*task.DatabaseTaskStore); !ok {
					t.Errorf("store = %T", store)
				}
			}

			tk := a2a.NewSubmittedTask(a2a.NewUserTextMessage("hi", "ctx-1", "task-1"), "task-1", "ctx-1", time.Now())
			if err := store.Save(t.Context(), tk); err != nil {
				t.Fatalf("Save() error = %v", err)
			}
			if _, err := store.Get(t.Context(), "task-1"); err != nil {
				t.Errorf("Get() error = %v", err)
			}
		})
	}
}

func TestNewExecutor(t *testing.T) {
	t.Parallel()

	cfg, err := config.Load(writeConfig(t))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := newExecutor(cfg, slog.New(slog.DiscardHandler)); err != nil {
		t.Fatalf("newExecutor() error = %v", err)
	}

	cfg.Reasoning.SystemPrompt = "{{.Goal"
	if _, err := newExecutor(cfg, slog.New(slog.DiscardHandler)); err == nil {
		t.Error("newExecutor() accepted a broken prompt template")
	}

	cfg.Reasoning.SystemPrompt = ""
	cfg.Reasoning.APIKey = ""
	if _, err := newExecutor(cfg, slog.New(slog.DiscardHandler)); err == nil {
		t.Error("newExecutor() accepted a missing api key")
	}
}

func TestServeLifecycle(t *testing.T) {
	t.Parallel()

	cfg, err := config.Load(writeConfig(t))
	if err != nil {
		t.Fatal(err)
	}
	cfg.Metrics.Enabled = false

	ctx, cancel := context.WithTimeout(t.Context(), 200*time.Millisecond)
	defer cancel()
	if err := serve(ctx, cfg, slog.New(slog.DiscardHandler)); err != nil {
		t.Errorf("serve() error = %v, want nil after context end", err)
	}
}
