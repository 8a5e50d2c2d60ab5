// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

// Package contextstore keeps the ordered message history of each conversation context.
package contextstore

import (
	"context"

	a2a "github.com/go-a2a/a2a-agent"
)

// Store maps a context ID to its ordered message history.
//
// Entries only grow: Append never removes or reorders messages, and appending a message
// whose MessageID is already present is a no-op. Implementations are safe for concurrent use;
// callers that read, reason and then append must serialize per context themselves, see [KeyedMutex].
type Store interface {
	// Get returns a copy of the history for contextID. An unknown context has an empty history.
	Get(ctx context.Context, contextID string) ([]a2a.Message, error)
	// Append adds msgs to the history of contextID, skipping messages already present.
	Append(ctx context.Context, contextID string, msgs ...a2a.Message) error
	// Clear forgets contextID.
	Clear(ctx context.Context, contextID string) error
}

// appendUnique appends the messages of msgs whose IDs are not yet in history.
func appendUnique(history []a2a.Message, msgs []a2a.Message) []a2a.Message {
	for _, m := range msgs {
		if containsMessage(history, m.MessageID) {
			continue
		}
		history = append(history, *m.Clone())
	}
	return history
}

func containsMessage(history []a2a.Message, messageID string) bool {
	for i := range history {
		if history[i].MessageID == messageID {
			return true
		}
	}
	return false
}

func cloneHistory(history []a2a.Message) []a2a.Message {
	out := make([]a2a.Message, len(history))
	for i := range history {
		out[i] = *history[i].Clone()
	}
	return out
}
