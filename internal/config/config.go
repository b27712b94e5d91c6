package config

import (
	"github.com/barcelona-partners/voicegw/pkg/config"
)

// Config stores environment configuration for the voice gateway.
type Config struct {
	Port                string
	DatabaseURL         string
	LLMProvider         string
	LLMModel            string
	LLMAPIKey           string
	LLMAPIURL           string
	EmbeddingProvider   string
	EmbeddingModel      string
	EmbeddingAPIKey     string
	EmbeddingAPIURL     string
	EmbeddingDimensions int
	ModelLabel          string
	MaxToolRounds       int
	RetrievalLimit      int
	SinkQueueSize       int
	SinkWorkers         int
	AdminAPIKey         string
	ChunkTokenLimit     int
	ChunkTokenOverlap   int
}

// LoadConfig loads the gateway configuration from environment variables.
// DATABASE_URL is deliberately optional: the gateway keeps answering calls
// without its stores and degrades persistence and retrieval instead.
func LoadConfig() Config {
	return Config{
		Port:                config.GetEnv("PORT", "18080"),
		DatabaseURL:         config.GetEnv("DATABASE_URL", ""),
		LLMProvider:         config.GetEnv("LLM_PROVIDER", "openai"),
		LLMModel:            config.GetEnv("LLM_MODEL", "gpt-4o-mini"),
		LLMAPIKey:           config.GetEnv("LLM_API_KEY", ""),
		LLMAPIURL:           config.GetEnv("LLM_API_URL", ""),
		EmbeddingProvider:   config.GetEnv("EMBEDDING_PROVIDER", config.GetEnv("LLM_PROVIDER", "openai")),
		EmbeddingModel:      config.GetEnv("EMBEDDING_MODEL", "text-embedding-3-small"),
		EmbeddingAPIKey:     config.GetEnv("EMBEDDING_API_KEY", config.GetEnv("LLM_API_KEY", "")),
		EmbeddingAPIURL:     config.GetEnv("EMBEDDING_API_URL", config.GetEnv("LLM_API_URL", "")),
		EmbeddingDimensions: config.GetEnvInt("EMBEDDING_DIMENSIONS", 1536),
		ModelLabel:          config.GetEnv("MODEL_LABEL", "gpt-4o"),
		MaxToolRounds:       config.GetEnvInt("MAX_TOOL_ROUNDS", 4),
		RetrievalLimit:      config.GetEnvInt("RETRIEVAL_LIMIT", 3),
		SinkQueueSize:       config.GetEnvInt("LEAD_SINK_QUEUE_SIZE", 256),
		SinkWorkers:         config.GetEnvInt("LEAD_SINK_WORKERS", 2),
		AdminAPIKey:         config.GetEnv("ADMIN_API_KEY", ""),
		ChunkTokenLimit:     config.GetEnvInt("CHUNK_TOKEN_LIMIT", 500),
		ChunkTokenOverlap:   config.GetEnvInt("CHUNK_TOKEN_OVERLAP", 50),
	}
}
