package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/barcelona-partners/voicegw/pkg/config"
)

// Provider produces a single chat completion. Voice turns need the complete
// reply before text-to-speech starts, so there is no streaming variant.
type Provider interface {
	Complete(ctx context.Context, messages []Message, tools []Tool) (Completion, error)
}

// Message is one entry of the conversation passed to the model. Assistant
// messages that requested tools carry ToolCalls; tool results carry the
// ToolCallID they answer.
type Message struct {
	Role       string
	Content    string
	Name       string
	ToolCallID string
	ToolCalls  []ToolCall
}

// Tool describes a function the model may call, as a JSON Schema parameter map.
type Tool struct {
	Name        string
	Description string
	Parameters  map[string]any
}

// ToolCall is a tool invocation requested by the model. Arguments is the raw
// JSON string exactly as the model produced it.
type ToolCall struct {
	ID        string
	Name      string
	Arguments string
}

// Completion is the model's answer for one request: either final content,
// or one or more tool calls to satisfy first.
type Completion struct {
	Content      string
	ToolCalls    []ToolCall
	FinishReason string
}

// Config holds provider connection settings.
type Config struct {
	Provider    string
	Model       string
	APIKey      string
	APIURL      string
	Temperature float64
}

// LoadConfig reads LLM_* settings from the environment.
func LoadConfig() Config {
	return Config{
		Provider: config.GetEnv("LLM_PROVIDER", "openai"),
		Model:    config.GetEnv("LLM_MODEL", ""),
		APIKey:   config.GetEnv("LLM_API_KEY", ""),
		APIURL:   config.GetEnv("LLM_API_URL", ""),
	}
}

// LoadEmbeddingConfig reads EMBEDDING_* settings, falling back to their
// LLM_* counterparts when unset.
func LoadEmbeddingConfig() Config {
	return Config{
		Provider: config.GetEnv("EMBEDDING_PROVIDER", config.GetEnv("LLM_PROVIDER", "openai")),
		Model:    config.GetEnv("EMBEDDING_MODEL", ""),
		APIKey:   config.GetEnv("EMBEDDING_API_KEY", config.GetEnv("LLM_API_KEY", "")),
		APIURL:   config.GetEnv("EMBEDDING_API_URL", config.GetEnv("LLM_API_URL", "")),
	}
}

// NewProvider builds a Provider from configuration. Ollama exposes an
// OpenAI-compatible endpoint, so both share the same client.
func NewProvider(cfg Config) (Provider, error) {
	switch strings.ToLower(cfg.Provider) {
	case "openai", "":
		return NewOpenAIProvider(cfg), nil
	case "ollama":
		if cfg.APIURL == "" {
			cfg.APIURL = "http://localhost:11434/v1"
		}
		return NewOpenAIProvider(cfg), nil
	default:
		return nil, fmt.Errorf("unknown LLM provider %q", cfg.Provider)
	}
}
