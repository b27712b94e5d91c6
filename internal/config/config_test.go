package config

import "testing"

func TestLoadConfigDefaults(t *testing.T) {
	cfg := LoadConfig()
	if cfg.Port != "18080" {
		t.Fatalf("unexpected port %q", cfg.Port)
	}
	if cfg.ModelLabel != "gpt-4o" {
		t.Fatalf("unexpected model label %q", cfg.ModelLabel)
	}
	if cfg.RetrievalLimit != 3 {
		t.Fatalf("unexpected retrieval limit %d", cfg.RetrievalLimit)
	}
	if cfg.MaxToolRounds != 4 {
		t.Fatalf("unexpected max tool rounds %d", cfg.MaxToolRounds)
	}
}

func TestLoadConfigEmbeddingFallsBackToLLMKey(t *testing.T) {
	t.Setenv("LLM_API_KEY", "shared-key")
	cfg := LoadConfig()
	if cfg.EmbeddingAPIKey != "shared-key" {
		t.Fatalf("expected embedding key fallback, got %q", cfg.EmbeddingAPIKey)
	}
}

func TestLoadConfigDatabaseOptional(t *testing.T) {
	cfg := LoadConfig()
	if cfg.DatabaseURL != "" {
		t.Fatalf("expected empty database url by default, got %q", cfg.DatabaseURL)
	}
}
