// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package agent

import (
	"strings"

	a2a "github.com/go-a2a/a2a-agent"
	"github.com/go-a2a/a2a-agent/reasoning"
)

// OutcomeKind is the control signal found on the last line of a reasoning output.
type OutcomeKind int

// OutcomeKind values.
const (
	// OutcomeUnknown means the last line was neither control word.
	OutcomeUnknown OutcomeKind = iota
	OutcomeCompleted
	OutcomeInputRequired
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeCompleted:
		return "completed"
	case OutcomeInputRequired:
		return "input-required"
	default:
		return "unknown"
	}
}

// DefaultReply replaces an empty reply.
const DefaultReply = "Completed."

// Outcome is a classified reasoning output.
type Outcome struct {
	Kind  OutcomeKind
	Reply string
}

// State returns the terminal task state for o. [OutcomeUnknown] resolves to completed.
func (o Outcome) State() a2a.TaskState {
	if o.Kind == OutcomeInputRequired {
		return a2a.TaskStateInputRequired
	}
	return a2a.TaskStateCompleted
}

// ClassifyOutcome splits text into the reply and the trailing control line.
//
// The last line, trimmed and upper-cased, is compared against [reasoning.ControlCompleted]
// and [reasoning.ControlAwaitingUserInput]. The preceding lines, joined and trimmed, are the
// reply; an empty reply becomes [DefaultReply].
func ClassifyOutcome(text string) Outcome {
	lines := strings.Split(strings.TrimSpace(text), "\n")
	last := strings.ToUpper(strings.TrimSpace(lines[len(lines)-1]))

	reply := strings.TrimSpace(strings.Join(lines[:len(lines)-1], "\n"))
	if reply == "" {
		reply = DefaultReply
	}

	out := Outcome{Reply: reply}
	switch last {
	case reasoning.ControlCompleted:
		out.Kind = OutcomeCompleted
	case reasoning.ControlAwaitingUserInput:
		out.Kind = OutcomeInputRequired
	}
	return out
}
