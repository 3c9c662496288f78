// Package config loads the agent configuration and agent card from a config
// directory (config.json + agent-card.json), the same layout the deployment
// mounts into the container.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"trpc.group/trpc-go/trpc-a2a-go/server"
)

// ModelConfig selects the LLM backing the agent.
type ModelConfig struct {
	Type  string `json:"type"`
	Model string `json:"model"`
}

// StreamableHTTPConnectionParams configures a streamable HTTP MCP server.
type StreamableHTTPConnectionParams struct {
	Url              string            `json:"url"`
	Headers          map[string]string `json:"headers"`
	Timeout          *float64          `json:"timeout,omitempty"`
	SseReadTimeout   *float64          `json:"sse_read_timeout,omitempty"`
	TerminateOnClose *bool             `json:"terminate_on_close,omitempty"`
	// TLS configuration for self-signed certificates
	TlsDisableVerify    *bool   `json:"tls_disable_verify,omitempty"`
	TlsCaCertPath       *string `json:"tls_ca_cert_path,omitempty"`
	TlsDisableSystemCas *bool   `json:"tls_disable_system_cas,omitempty"`
}

// HttpMcpServerConfig is one streamable HTTP MCP server plus its tool filter.
type HttpMcpServerConfig struct {
	Params StreamableHTTPConnectionParams `json:"params"`
	Tools  []string                       `json:"tools"`
}

// SseConnectionParams configures an SSE MCP server.
type SseConnectionParams struct {
	Url            string            `json:"url"`
	Headers        map[string]string `json:"headers"`
	Timeout        *float64          `json:"timeout,omitempty"`
	SseReadTimeout *float64          `json:"sse_read_timeout,omitempty"`
	// TLS configuration for self-signed certificates
	TlsDisableVerify    *bool   `json:"tls_disable_verify,omitempty"`
	TlsCaCertPath       *string `json:"tls_ca_cert_path,omitempty"`
	TlsDisableSystemCas *bool   `json:"tls_disable_system_cas,omitempty"`
}

// SseMcpServerConfig is one SSE MCP server plus its tool filter.
type SseMcpServerConfig struct {
	Params SseConnectionParams `json:"params"`
	Tools  []string            `json:"tools"`
}

// AgentConfig is the agent's runtime configuration.
type AgentConfig struct {
	Model       ModelConfig           `json:"model"`
	Description string                `json:"description"`
	Instruction string                `json:"instruction"`
	HttpTools   []HttpMcpServerConfig `json:"http_tools,omitempty"`
	SseTools    []SseMcpServerConfig  `json:"sse_tools,omitempty"`
	Stream      *bool                 `json:"stream,omitempty"`
}

// GetStream returns the stream value or the default when unset.
func (a *AgentConfig) GetStream() bool {
	if a.Stream != nil {
		return *a.Stream
	}
	return false
}

// Validate checks the fields the agent cannot run without.
func (a *AgentConfig) Validate() error {
	if a.Model.Type == "" {
		return fmt.Errorf("model.type is required")
	}
	if a.Instruction == "" {
		return fmt.Errorf("instruction is required")
	}
	return nil
}

// LoadAgentConfig loads agent configuration from a config.json file.
func LoadAgentConfig(configPath string) (*AgentConfig, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", configPath, err)
	}

	var config AgentConfig
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return &config, nil
}

// LoadAgentCard loads the agent card from an agent-card.json file.
func LoadAgentCard(cardPath string) (*server.AgentCard, error) {
	data, err := os.ReadFile(cardPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read agent card file %s: %w", cardPath, err)
	}

	var card server.AgentCard
	if err := json.Unmarshal(data, &card); err != nil {
		return nil, fmt.Errorf("failed to parse agent card file: %w", err)
	}

	return &card, nil
}

// LoadAgentConfigs loads both config and agent card from the config directory.
func LoadAgentConfigs(configDir string) (*AgentConfig, *server.AgentCard, error) {
	configPath := filepath.Join(configDir, "config.json")
	cardPath := filepath.Join(configDir, "agent-card.json")

	config, err := LoadAgentConfig(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load agent config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, nil, fmt.Errorf("invalid agent config: %w", err)
	}

	card, err := LoadAgentCard(cardPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load agent card: %w", err)
	}

	return config, card, nil
}
