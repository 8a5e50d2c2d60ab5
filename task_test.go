// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package a2a

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestNewSubmittedTask(t *testing.T) {
	t.Parallel()

	msg := NewUserTextMessage("hello", "c1", "t1")
	msg.Metadata = map[string]any{"goal": "answer"}

	task := NewSubmittedTask(msg, "t1", "c1", time.Unix(0, 0))

	if task.Status.State != TaskStateSubmitted {
		t.Errorf("State = %q, want %q", task.Status.State, TaskStateSubmitted)
	}
	if diff := cmp.Diff([]Message{*msg}, task.History); diff != "" {
		t.Errorf("History mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(msg.Metadata, task.Metadata); diff != "" {
		t.Errorf("Metadata mismatch (-want +got):\n%s", diff)
	}
	if err := task.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}

	task.Metadata["goal"] = "mutated"
	if msg.Metadata["goal"] != "answer" {
		t.Error("task metadata aliases message metadata")
	}
}

func TestTaskTrimHistory(t *testing.T) {
	t.Parallel()

	ids := func(task *Task) []string {
		var out []string
		for _, m := range task.History {
			out = append(out, m.MessageID)
		}
		return out
	}

	tests := map[string]struct {
		n    int
		want []string
	}{
		"negative keeps all": {n: -1, want: []string{"a", "b", "c"}},
		"zero drops all":     {n: 0, want: nil},
		"keeps last two":     {n: 2, want: []string{"b", "c"}},
		"larger than len":    {n: 10, want: []string{"a", "b", "c"}},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			task := &Task{History: []Message{{MessageID: "a"}, {MessageID: "b"}, {MessageID: "c"}}}
			task.TrimHistory(tt.n)
			if diff := cmp.Diff(tt.want, ids(task)); diff != "" {
				t.Errorf("TrimHistory(%d) mismatch (-want +got):\n%s", tt.n, diff)
			}
		})
	}
}

func TestTaskHasMessage(t *testing.T) {
	t.Parallel()

	task := &Task{History: []Message{{MessageID: "a"}}}
	if !task.HasMessage("a") {
		t.Error("HasMessage(a) = false, want true")
	}
	if task.HasMessage("b") {
		t.Error("HasMessage(b) = true, want false")
	}
}
