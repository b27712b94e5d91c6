package knowledge

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/barcelona-partners/voicegw/pkg/llm"
)

const maxEmbedBatchSize = 128

// Embedder turns queries and manual chunks into vectors for the passage index.
type Embedder struct {
	client llm.EmbeddingClient
}

func NewEmbedder(client llm.EmbeddingClient) (*Embedder, error) {
	if client == nil {
		return nil, errors.New("embedding client is required")
	}
	return &Embedder{client: client}, nil
}

// EmbedQuery embeds a single free-text query.
func (e *Embedder) EmbedQuery(ctx context.Context, query string) ([]float32, error) {
	if query == "" {
		return nil, errors.New("query is required")
	}
	start := time.Now()
	vectors, err := e.client.Embed(ctx, []string{query})
	embedDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	if len(vectors) != 1 {
		return nil, fmt.Errorf("embed query: unexpected vector count %d", len(vectors))
	}
	return vectors[0], nil
}

// EmbedTexts embeds document chunks in bounded batches.
func (e *Embedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, errors.New("texts are required")
	}
	vectors := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += maxEmbedBatchSize {
		end := start + maxEmbedBatchSize
		if end > len(texts) {
			end = len(texts)
		}
		embedStart := time.Now()
		batch, err := e.client.Embed(ctx, texts[start:end])
		embedDuration.Observe(time.Since(embedStart).Seconds())
		if err != nil {
			return nil, fmt.Errorf("embed batch starting at %d: %w", start, err)
		}
		vectors = append(vectors, batch...)
	}
	return vectors, nil
}
