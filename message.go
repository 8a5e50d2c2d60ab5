// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package a2a

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// NewAgentTextMessage creates a new agent message containing a single text part.
func NewAgentTextMessage(text, contextID, taskID string) *Message {
	return &Message{
		MessageID: uuid.NewString(),
		Role:      RoleAgent,
		Parts:     []Part{NewTextPart(text)},
		TaskID:    taskID,
		ContextID: contextID,
		Kind:      KindMessage,
	}
}

// NewUserTextMessage creates a new user message containing a single text part.
func NewUserTextMessage(text, contextID, taskID string) *Message {
	msg := NewAgentTextMessage(text, contextID, taskID)
	msg.Role = RoleUser
	return msg
}

// Validate ensures the Message is well formed.
func (m *Message) Validate() error {
	if m == nil {
		return errors.New("message cannot be nil")
	}
	if m.Role != RoleAgent && m.Role != RoleUser {
		return fmt.Errorf("invalid message role: %q", m.Role)
	}
	if m.MessageID == "" {
		return errors.New("message ID cannot be empty")
	}
	if len(m.Parts) == 0 {
		return errors.New("message must contain at least one part")
	}
	for i, part := range m.Parts {
		switch part.Kind {
		case PartKindText, PartKindData, PartKindFile:
		default:
			return fmt.Errorf("message part at index %d has unknown kind %q", i, part.Kind)
		}
	}
	return nil
}

// TextParts returns the text content of all text parts, skipping parts whose text is empty.
func (m *Message) TextParts() []string {
	if m == nil {
		return nil
	}
	var texts []string
	for _, part := range m.Parts {
		if part.Kind == PartKindText && part.Text != "" {
			texts = append(texts, part.Text)
		}
	}
	return texts
}

// Text joins all text parts of the message with delimiter.
func (m *Message) Text(delimiter string) string {
	return strings.Join(m.TextParts(), delimiter)
}

// Clone returns a deep copy of m.
func (m *Message) Clone() *Message {
	if m == nil {
		return nil
	}
	c := *m
	if m.Parts != nil {
		c.Parts = make([]Part, len(m.Parts))
		for i, p := range m.Parts {
			c.Parts[i] = p
			c.Parts[i].Data = cloneMap(p.Data)
			c.Parts[i].Metadata = cloneMap(p.Metadata)
			if p.File != nil {
				f := *p.File
				c.Parts[i].File = &f
			}
		}
	}
	if m.ReferenceTaskIDs != nil {
		c.ReferenceTaskIDs = append([]string(nil), m.ReferenceTaskIDs...)
	}
	c.Metadata = cloneMap(m.Metadata)
	return &c
}

// MetadataString returns the string value stored under key in metadata, if any.
func MetadataString(metadata map[string]any, key string) (string, bool) {
	v, ok := metadata[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

func cloneMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	c := make(map[string]any, len(m))
	for k, v := range m {
		c[k] = cloneValue(v)
	}
	return c
}

func cloneValue(v any) any {
	switch v := v.(type) {
	case map[string]any:
		return cloneMap(v)
	case []any:
		c := make([]any, len(v))
		for i, e := range v {
			c[i] = cloneValue(e)
		}
		return c
	default:
		return v
	}
}
