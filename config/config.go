// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

// Package config loads the a2a-agent configuration from a YAML file and the environment.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/go-json-experiment/json"
	"github.com/spf13/viper"

	a2a "github.com/go-a2a/a2a-agent"
	"github.com/go-a2a/a2a-agent/validation"
	"github.com/go-a2a/a2a-agent/workflow"
)

// EnvPrefix prefixes every environment override, e.g. A2A_AGENT_SERVER_ADDR.
const EnvPrefix = "A2A_AGENT"

// DefaultConfigName is the file looked up in the working directory when no path is given.
const DefaultConfigName = "a2a-agent"

// Task store drivers.
const (
	DriverMemory = "memory"
	DriverSQLite = "sqlite"
)

// Config is the complete a2a-agent configuration.
type Config struct {
	Server          ServerConfig                  `mapstructure:"server" yaml:"server"`
	Agent           AgentConfig                   `mapstructure:"agent" yaml:"agent"`
	Goal            string                        `mapstructure:"goal" yaml:"goal"`
	Workflow        WorkflowConfig                `mapstructure:"workflow" yaml:"workflow"`
	InputFieldsMode string                        `mapstructure:"input_fields_mode" yaml:"input_fields_mode"`
	InputFieldsJSON string                        `mapstructure:"input_fields_json" yaml:"input_fields_json,omitempty"`
	InputFields     []validation.InputFieldConfig `mapstructure:"input_fields" yaml:"input_fields,omitempty"`
	Reasoning       ReasoningConfig               `mapstructure:"reasoning" yaml:"reasoning"`
	ContextStore    ContextStoreConfig            `mapstructure:"context_store" yaml:"context_store"`
	TaskStore       TaskStoreConfig               `mapstructure:"task_store" yaml:"task_store"`
	Events          EventsConfig                  `mapstructure:"events" yaml:"events"`
	Log             LogConfig                     `mapstructure:"log" yaml:"log"`
	Metrics         MetricsConfig                 `mapstructure:"metrics" yaml:"metrics"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Addr string `mapstructure:"addr" yaml:"addr"`
	// BaseURL is advertised in the agent card. Defaults to http://localhost:<port>.
	BaseURL         string        `mapstructure:"base_url" yaml:"base_url,omitempty"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
	QueueSize       int           `mapstructure:"queue_size" yaml:"queue_size"`
}

// AgentConfig holds the identity published in the agent card.
type AgentConfig struct {
	Name                 string           `mapstructure:"name" yaml:"name"`
	Description          string           `mapstructure:"description" yaml:"description"`
	ProtocolVersion      string           `mapstructure:"protocol_version" yaml:"protocol_version"`
	Version              string           `mapstructure:"version" yaml:"version"`
	ProviderOrganization string           `mapstructure:"provider_organization" yaml:"provider_organization,omitempty"`
	ProviderURL          string           `mapstructure:"provider_url" yaml:"provider_url,omitempty"`
	Skills               []a2a.AgentSkill `mapstructure:"skills" yaml:"skills,omitempty"`
	// SkillsJSON is a JSON array of skills, appended to Skills.
	SkillsJSON         string   `mapstructure:"skills_json" yaml:"skills_json,omitempty"`
	DefaultInputModes  []string `mapstructure:"default_input_modes" yaml:"default_input_modes"`
	DefaultOutputModes []string `mapstructure:"default_output_modes" yaml:"default_output_modes"`
	Streaming          bool     `mapstructure:"streaming" yaml:"streaming"`
}

// WorkflowConfig configures the outbound workflow webhook.
type WorkflowConfig struct {
	URL             string        `mapstructure:"url" yaml:"url"`
	Timeout         time.Duration `mapstructure:"timeout" yaml:"timeout"`
	MaxResponseSize int64         `mapstructure:"max_response_size" yaml:"max_response_size"`
	HeaderName      string        `mapstructure:"header_name" yaml:"header_name,omitempty"`
	HeaderValue     string        `mapstructure:"header_value" yaml:"header_value,omitempty"`
	RateLimit       float64       `mapstructure:"rate_limit" yaml:"rate_limit"`
	RateBurst       int           `mapstructure:"rate_burst" yaml:"rate_burst"`
	JWT             JWTConfig     `mapstructure:"jwt" yaml:"jwt"`
}

// JWTConfig configures signed workflow requests. Signing is off while Secret is empty.
type JWTConfig struct {
	Secret   string        `mapstructure:"secret" yaml:"secret,omitempty"`
	Issuer   string        `mapstructure:"issuer" yaml:"issuer,omitempty"`
	Audience string        `mapstructure:"audience" yaml:"audience,omitempty"`
	Subject  string        `mapstructure:"subject" yaml:"subject,omitempty"`
	TTL      time.Duration `mapstructure:"ttl" yaml:"ttl"`
}

// ReasoningConfig configures the chat completion model.
type ReasoningConfig struct {
	Model   string `mapstructure:"model" yaml:"model"`
	APIKey  string `mapstructure:"api_key" yaml:"api_key,omitempty"`
	BaseURL string `mapstructure:"base_url" yaml:"base_url,omitempty"`
	// SystemPrompt replaces the built-in prompt template.
	SystemPrompt  string  `mapstructure:"system_prompt" yaml:"system_prompt,omitempty"`
	MaxToolRounds int     `mapstructure:"max_tool_rounds" yaml:"max_tool_rounds"`
	Temperature   float32 `mapstructure:"temperature" yaml:"temperature"`
}

// ContextStoreConfig bounds the conversation memory. Zero keeps every context.
type ContextStoreConfig struct {
	MaxContexts int `mapstructure:"max_contexts" yaml:"max_contexts"`
}

// TaskStoreConfig selects where task snapshots live.
type TaskStoreConfig struct {
	Driver string `mapstructure:"driver" yaml:"driver"`
	DSN    string `mapstructure:"dsn" yaml:"dsn,omitempty"`
}

// EventsConfig enables mirroring of task events to NATS.
type EventsConfig struct {
	NATSURL       string `mapstructure:"nats_url" yaml:"nats_url,omitempty"`
	SubjectPrefix string `mapstructure:"subject_prefix" yaml:"subject_prefix"`
}

// LogConfig configures the process logger.
type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// MetricsConfig toggles the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":4000")
	v.SetDefault("server.base_url", "")
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("server.queue_size", 0)

	v.SetDefault("agent.name", "a2a-agent")
	v.SetDefault("agent.description", "")
	v.SetDefault("agent.protocol_version", a2a.ProtocolVersion)
	v.SetDefault("agent.version", "1.0.0")
	v.SetDefault("agent.provider_organization", "")
	v.SetDefault("agent.provider_url", "")
	v.SetDefault("agent.skills_json", "")
	v.SetDefault("agent.default_input_modes", []string{"text"})
	v.SetDefault("agent.default_output_modes", []string{"text"})
	v.SetDefault("agent.streaming", true)

	v.SetDefault("goal", "")

	v.SetDefault("workflow.url", "")
	v.SetDefault("workflow.timeout", 30*time.Second)
	v.SetDefault("workflow.max_response_size", workflow.DefaultMaxResponseSize)
	v.SetDefault("workflow.header_name", "")
	v.SetDefault("workflow.header_value", "")
	v.SetDefault("workflow.rate_limit", 0)
	v.SetDefault("workflow.rate_burst", 1)
	v.SetDefault("workflow.jwt.secret", "")
	v.SetDefault("workflow.jwt.issuer", "")
	v.SetDefault("workflow.jwt.audience", "")
	v.SetDefault("workflow.jwt.subject", "")
	v.SetDefault("workflow.jwt.ttl", 5*time.Minute)

	v.SetDefault("input_fields_mode", validation.ModeFields)
	v.SetDefault("input_fields_json", "")

	v.SetDefault("reasoning.model", "gpt-4o-mini")
	v.SetDefault("reasoning.base_url", "")
	v.SetDefault("reasoning.system_prompt", "")
	v.SetDefault("reasoning.max_tool_rounds", 8)
	v.SetDefault("reasoning.temperature", 0)

	v.SetDefault("context_store.max_contexts", 0)

	v.SetDefault("task_store.driver", DriverMemory)
	v.SetDefault("task_store.dsn", "file:a2a-agent.db")

	v.SetDefault("events.nats_url", "")
	v.SetDefault("events.subject_prefix", "a2a.events")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetDefault("metrics.enabled", false)
}

// Load reads the configuration from path, or from ./a2a-agent.yaml when path is empty and
// the file exists, then applies A2A_AGENT_* environment overrides. The model API key also
// falls back to OPENAI_API_KEY.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("reasoning.api_key", EnvPrefix+"_REASONING_API_KEY", "OPENAI_API_KEY"); err != nil {
		return nil, err
	}

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(DefaultConfigName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return &cfg, nil
}

// Fields resolves the configured input field set.
func (c *Config) Fields() ([]validation.InputFieldConfig, error) {
	return validation.ParseInputFields(c.InputFieldsMode, c.InputFieldsJSON, c.InputFields)
}

// JWT returns the workflow signing configuration, or nil when signing is off.
func (c *Config) JWT() *workflow.JWTConfig {
	if c.Workflow.JWT.Secret == "" {
		return nil
	}
	return &workflow.JWTConfig{
		Secret:   c.Workflow.JWT.Secret,
		Issuer:   c.Workflow.JWT.Issuer,
		Audience: c.Workflow.JWT.Audience,
		Subject:  c.Workflow.JWT.Subject,
		TTL:      c.Workflow.JWT.TTL,
	}
}

// Validate reports every configuration mistake at once.
func (c *Config) Validate() error {
	var errs []error
	add := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf(format, args...))
	}

	if c.Server.Addr == "" {
		add("server.addr is required")
	}
	if c.Server.BaseURL != "" {
		if err := checkHTTPURL(c.Server.BaseURL); err != nil {
			add("server.base_url: %w", err)
		}
	}
	if c.Server.QueueSize < 0 {
		add("server.queue_size must not be negative")
	}

	if c.Agent.Name == "" {
		add("agent.name is required")
	}
	if c.Agent.ProtocolVersion == "" {
		add("agent.protocol_version is required")
	}
	if _, err := c.skills(); err != nil {
		add("agent.skills_json: %w", err)
	}

	if c.Workflow.URL == "" {
		add("workflow.url is required")
	} else if err := checkHTTPURL(c.Workflow.URL); err != nil {
		add("workflow.url: %w", err)
	}
	if c.Workflow.Timeout < 0 {
		add("workflow.timeout must not be negative")
	}
	if c.Workflow.MaxResponseSize < 0 {
		add("workflow.max_response_size must not be negative")
	}
	if (c.Workflow.HeaderName == "") != (c.Workflow.HeaderValue == "") {
		add("workflow.header_name and workflow.header_value must be set together")
	}
	if c.Workflow.RateLimit < 0 {
		add("workflow.rate_limit must not be negative")
	}
	if jwt := c.JWT(); jwt != nil {
		if err := workflow.ValidateJWTConfig(*jwt); err != nil {
			add("workflow.jwt: %w", err)
		}
	}

	switch c.InputFieldsMode {
	case validation.ModeFields, validation.ModeJSON:
	default:
		add("input_fields_mode must be %q or %q, got %q", validation.ModeFields, validation.ModeJSON, c.InputFieldsMode)
	}
	if fields, err := c.Fields(); err != nil {
		add("input fields: %w", err)
	} else if err := validation.CheckFields(fields); err != nil {
		add("input fields: %w", err)
	}

	if c.Reasoning.Model == "" {
		add("reasoning.model is required")
	}
	if c.Reasoning.MaxToolRounds < 0 {
		add("reasoning.max_tool_rounds must not be negative")
	}

	if c.ContextStore.MaxContexts < 0 {
		add("context_store.max_contexts must not be negative")
	}

	switch c.TaskStore.Driver {
	case DriverMemory:
	case DriverSQLite:
		if c.TaskStore.DSN == "" {
			add("task_store.dsn is required for the sqlite driver")
		}
	default:
		add("task_store.driver must be %q or %q, got %q", DriverMemory, DriverSQLite, c.TaskStore.Driver)
	}

	if _, err := c.Log.SlogLevel(); err != nil {
		add("log.level: %w", err)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		add("log.format must be \"text\" or \"json\", got %q", c.Log.Format)
	}

	return errors.Join(errs...)
}

// SlogLevel parses Level.
func (l LogConfig) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(l.Level)); err != nil {
		return 0, err
	}
	return level, nil
}

func (c *Config) skills() ([]a2a.AgentSkill, error) {
	skills := append([]a2a.AgentSkill(nil), c.Agent.Skills...)
	if strings.TrimSpace(c.Agent.SkillsJSON) == "" {
		return skills, nil
	}
	var extra []a2a.AgentSkill
	if err := json.Unmarshal([]byte(c.Agent.SkillsJSON), &extra); err != nil {
		return nil, fmt.Errorf("invalid skills JSON: %w", err)
	}
	return append(skills, extra...), nil
}

func checkHTTPURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("scheme must be http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return errors.New("host is required")
	}
	return nil
}
