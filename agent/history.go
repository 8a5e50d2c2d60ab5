// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package agent

import (
	a2a "github.com/go-a2a/a2a-agent"
	"github.com/go-a2a/a2a-agent/reasoning"
)

// reasoningMessages maps a conversation history to model input.
// User messages contribute their first text part, agent messages all of them; messages
// without text are dropped.
func reasoningMessages(history []a2a.Message) []reasoning.Message {
	out := make([]reasoning.Message, 0, len(history))
	for i := range history {
		texts := history[i].TextParts()
		if len(texts) == 0 {
			continue
		}

		switch history[i].Role {
		case a2a.RoleUser:
			out = append(out, reasoning.Message{Role: reasoning.RoleUser, Content: texts[:1:1]})
		case a2a.RoleAgent:
			out = append(out, reasoning.Message{Role: reasoning.RoleModel, Content: texts})
		}
	}
	return out
}
