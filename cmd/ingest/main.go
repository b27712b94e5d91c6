package main

import (
	"context"
	"flag"
	"os"
	"time"

	voiceconfig "github.com/barcelona-partners/voicegw/internal/config"
	"github.com/barcelona-partners/voicegw/internal/knowledge"
	"github.com/barcelona-partners/voicegw/pkg/config"
	"github.com/barcelona-partners/voicegw/pkg/database"
	"github.com/barcelona-partners/voicegw/pkg/llm"
	"github.com/barcelona-partners/voicegw/pkg/logging"
)

// ingest chunks a manual text file, embeds the chunks and replaces the
// source's passages in the knowledge store.
func main() {
	var (
		filePath    = flag.String("file", "", "path to the manual text file")
		sourceLabel = flag.String("source", "Provider Manual", "source label stored with every chunk")
		category    = flag.String("category", "Informational", "category stored with every chunk")
	)
	flag.Parse()

	logger := logging.NewLoggerWithService("voicegw-ingest")
	config.LoadEnv(logger)

	if *filePath == "" {
		logger.Fatal("Usage: ingest -file manual.txt [-source label] [-category name]")
	}

	cfg := voiceconfig.LoadConfig()
	if cfg.DatabaseURL == "" {
		logger.Fatal("DATABASE_URL is required for ingestion")
	}

	content, err := os.ReadFile(*filePath)
	if err != nil {
		logger.WithError(err).WithField("file", *filePath).Fatal("Failed to read manual file")
	}

	chunks := knowledge.ChunkText(string(content), cfg.ChunkTokenLimit, cfg.ChunkTokenOverlap)
	if len(chunks) == 0 {
		logger.Fatal("Manual file produced no chunks")
	}
	logger.WithFields(logging.Fields{
		"file":   *filePath,
		"chunks": len(chunks),
	}).Info("Chunked manual")

	embeddingClient, err := llm.NewEmbeddingClient(llm.Config{
		Provider: cfg.EmbeddingProvider,
		Model:    cfg.EmbeddingModel,
		APIKey:   cfg.EmbeddingAPIKey,
		APIURL:   cfg.EmbeddingAPIURL,
	})
	if err != nil {
		logger.WithError(err).Fatal("Failed to create embedding client")
	}
	embedder, err := knowledge.NewEmbedder(embeddingClient)
	if err != nil {
		logger.WithError(err).Fatal("Failed to create embedder")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	embeddings, err := embedder.EmbedTexts(ctx, chunks)
	if err != nil {
		logger.WithError(err).Fatal("Failed to embed chunks")
	}

	dbConfig := database.DefaultConfig()
	dbConfig.URL = cfg.DatabaseURL
	db, err := database.Connect(dbConfig, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to connect to database")
	}
	defer func() { _ = db.Close() }()

	store := knowledge.NewStore(db)
	dims := cfg.EmbeddingDimensions
	if len(embeddings) > 0 && len(embeddings[0]) > 0 {
		dims = len(embeddings[0])
	}
	if err := store.EnsureSchema(ctx, dims); err != nil {
		logger.WithError(err).Fatal("Failed to ensure knowledge schema")
	}

	passages := make([]knowledge.Passage, len(chunks))
	for i, chunk := range chunks {
		passages[i] = knowledge.Passage{
			SourceLabel: *sourceLabel,
			Category:    *category,
			Text:        chunk,
			Index:       i,
			Embedding:   embeddings[i],
			Metadata:    map[string]any{"file": *filePath},
		}
	}
	if err := store.ReplaceSource(ctx, *sourceLabel, passages); err != nil {
		logger.WithError(err).Fatal("Failed to replace source passages")
	}

	total, err := store.Count(ctx)
	if err != nil {
		logger.WithError(err).Warn("Failed to count passages")
	}
	logger.WithFields(logging.Fields{
		"source":   *sourceLabel,
		"ingested": len(passages),
		"total":    total,
	}).Info("Manual ingested")
}
