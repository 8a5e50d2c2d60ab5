// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

// Package a2a provides the Agent-to-Agent (A2A) protocol data model used by the agent runtime.
package a2a

// ProtocolVersion is the A2A protocol version advertised by default in the agent card.
const ProtocolVersion = "0.3.0"

// Kind discriminators used on the wire.
const (
	KindMessage      = "message"
	KindTask         = "task"
	KindStatusUpdate = "status-update"
)

// Part kinds.
const (
	PartKindText = "text"
	PartKindData = "data"
	PartKindFile = "file"
)

// Role represents the role of a message sender in the A2A protocol.
type Role string

// Role constants for message senders.
const (
	RoleAgent Role = "agent"
	RoleUser  Role = "user"
)

// FileContent represents the content of a file part, either inline bytes or a URI.
type FileContent struct {
	Name     string `json:"name,omitzero"`
	MimeType string `json:"mimeType,omitzero"`
	Bytes    string `json:"bytes,omitzero"`
	URI      string `json:"uri,omitzero"`
}

// Part is one piece of message content.
//
// Only parts of kind "text" carry conversational content; data and file parts are
// transported unchanged.
type Part struct {
	Kind     string         `json:"kind"`
	Text     string         `json:"text,omitzero"`
	Data     map[string]any `json:"data,omitzero"`
	File     *FileContent   `json:"file,omitzero"`
	Metadata map[string]any `json:"metadata,omitzero"`
}

// NewTextPart returns a text [Part].
func NewTextPart(text string) Part {
	return Part{Kind: PartKindText, Text: text}
}

// Message represents a single message exchanged between user and agent.
type Message struct {
	MessageID        string         `json:"messageId"`
	Role             Role           `json:"role"`
	Parts            []Part         `json:"parts"`
	TaskID           string         `json:"taskId,omitzero"`
	ContextID        string         `json:"contextId,omitzero"`
	ReferenceTaskIDs []string       `json:"referenceTaskIds,omitzero"`
	Metadata         map[string]any `json:"metadata,omitzero"`
	Kind             string         `json:"kind"`
}

// TaskState represents the state of a task within the A2A protocol.
type TaskState string

// TaskState constants.
const (
	TaskStateSubmitted     TaskState = "submitted"
	TaskStateWorking       TaskState = "working"
	TaskStateInputRequired TaskState = "input-required"
	TaskStateCompleted     TaskState = "completed"
	TaskStateCanceled      TaskState = "canceled"
	TaskStateFailed        TaskState = "failed"
	TaskStateRejected      TaskState = "rejected"
	TaskStateAuthRequired  TaskState = "auth-required"
	TaskStateUnknown       TaskState = "unknown"
)

// TaskStatus represents the status of a task at a point in time.
type TaskStatus struct {
	State   TaskState `json:"state"`
	Message *Message  `json:"message,omitzero"`
	// Timestamp is an ISO 8601 datetime string when the status was recorded.
	Timestamp string `json:"timestamp,omitzero"`
}

// Task represents a stateful unit of agent work.
type Task struct {
	ID        string         `json:"id"`
	ContextID string         `json:"contextId"`
	Status    TaskStatus     `json:"status"`
	History   []Message      `json:"history,omitzero"`
	Metadata  map[string]any `json:"metadata,omitzero"`
	Kind      string         `json:"kind"`
}

// TaskStatusUpdateEvent is sent by the server to notify the client of a task status change.
type TaskStatusUpdateEvent struct {
	TaskID    string         `json:"taskId"`
	ContextID string         `json:"contextId"`
	Status    TaskStatus     `json:"status"`
	Final     bool           `json:"final"`
	Metadata  map[string]any `json:"metadata,omitzero"`
	Kind      string         `json:"kind"`
}

// Event is anything an agent executor can publish: a [*Task], a [*TaskStatusUpdateEvent] or a [*Message].
type Event interface {
	// EventKind returns the wire kind discriminator of the event.
	EventKind() string
}

// EventKind implements [Event].
func (*Message) EventKind() string { return KindMessage }

// EventKind implements [Event].
func (*Task) EventKind() string { return KindTask }

// EventKind implements [Event].
func (*TaskStatusUpdateEvent) EventKind() string { return KindStatusUpdate }

var (
	_ Event = (*Message)(nil)
	_ Event = (*Task)(nil)
	_ Event = (*TaskStatusUpdateEvent)(nil)
)

// AgentCapabilities defines optional capabilities supported by an agent.
type AgentCapabilities struct {
	Streaming              bool `json:"streaming,omitzero"`
	PushNotifications      bool `json:"pushNotifications,omitzero"`
	StateTransitionHistory bool `json:"stateTransitionHistory,omitzero"`
}

// AgentProvider represents the service provider of an agent.
type AgentProvider struct {
	Organization string `json:"organization"`
	URL          string `json:"url"`
}

// AgentSkill represents a unit of capability that an agent can perform.
type AgentSkill struct {
	ID          string   `json:"id" mapstructure:"id" yaml:"id"`
	Name        string   `json:"name" mapstructure:"name" yaml:"name"`
	Description string   `json:"description" mapstructure:"description" yaml:"description"`
	Tags        []string `json:"tags" mapstructure:"tags" yaml:"tags"`
	Examples    []string `json:"examples,omitzero" mapstructure:"examples" yaml:"examples,omitempty"`
	InputModes  []string `json:"inputModes,omitzero" mapstructure:"input_modes" yaml:"input_modes,omitempty"`
	OutputModes []string `json:"outputModes,omitzero" mapstructure:"output_modes" yaml:"output_modes,omitempty"`
}

// AgentCard conveys key information about an agent: identity, endpoint, capabilities and skills.
//
// A card is built once from configuration and never mutated while the server runs.
type AgentCard struct {
	Name               string            `json:"name"`
	Description        string            `json:"description"`
	ProtocolVersion    string            `json:"protocolVersion"`
	Version            string            `json:"version"`
	URL                string            `json:"url"`
	Provider           *AgentProvider    `json:"provider,omitzero"`
	Capabilities       AgentCapabilities `json:"capabilities"`
	Skills             []AgentSkill      `json:"skills"`
	DefaultInputModes  []string          `json:"defaultInputModes"`
	DefaultOutputModes []string          `json:"defaultOutputModes"`
}
