// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package agent

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	a2a "github.com/go-a2a/a2a-agent"
)

func TestClassifyOutcome(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		text      string
		want      Outcome
		wantState a2a.TaskState
	}{
		"completed": {
			text:      "Line one\nLine two\nCOMPLETED",
			want:      Outcome{Kind: OutcomeCompleted, Reply: "Line one\nLine two"},
			wantState: a2a.TaskStateCompleted,
		},
		"awaiting input, case and space insensitive": {
			text:      "What is your name?\n  Awaiting_User_Input \n\n",
			want:      Outcome{Kind: OutcomeInputRequired, Reply: "What is your name?"},
			wantState: a2a.TaskStateInputRequired,
		},
		"unknown control line": {
			text:      "Answer\nXYZ",
			want:      Outcome{Kind: OutcomeUnknown, Reply: "Answer"},
			wantState: a2a.TaskStateCompleted,
		},
		"only control line": {
			text:      "COMPLETED",
			want:      Outcome{Kind: OutcomeCompleted, Reply: DefaultReply},
			wantState: a2a.TaskStateCompleted,
		},
		"empty": {
			text:      "",
			want:      Outcome{Kind: OutcomeUnknown, Reply: DefaultReply},
			wantState: a2a.TaskStateCompleted,
		},
		"single line without control word is dropped": {
			text:      "Just an answer",
			want:      Outcome{Kind: OutcomeUnknown, Reply: DefaultReply},
			wantState: a2a.TaskStateCompleted,
		},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			got := ClassifyOutcome(tt.text)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("ClassifyOutcome() mismatch (-want +got):\n%s", diff)
			}
			if got.State() != tt.wantState {
				t.Errorf("State() = %q, want %q", got.State(), tt.wantState)
			}
		})
	}
}

func TestClassifyOutcomeProperties(t *testing.T) {
	t.Parallel()

	properties := gopter.NewProperties(nil)

	line := gen.AlphaString().SuchThat(func(s string) bool { return strings.TrimSpace(s) != "" })

	properties.Property("reply is everything before the control line", prop.ForAll(
		func(lines []string, awaiting bool) bool {
			control := "COMPLETED"
			wantKind := OutcomeCompleted
			if awaiting {
				control, wantKind = "AWAITING_USER_INPUT", OutcomeInputRequired
			}
			text := strings.Join(append(append([]string(nil), lines...), control), "\n")

			got := ClassifyOutcome(text)
			wantReply := strings.TrimSpace(strings.Join(lines, "\n"))
			if wantReply == "" {
				wantReply = DefaultReply
			}
			return got.Kind == wantKind && got.Reply == wantReply
		},
		gen.SliceOf(line),
		gen.Bool(),
	))

	properties.Property("state is never unknown", prop.ForAll(
		func(text string) bool {
			s := ClassifyOutcome(text).State()
			return s == a2a.TaskStateCompleted || s == a2a.TaskStateInputRequired
		},
		gen.AnyString(),
	))

	properties.TestingRun(t)
}
