package tools

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/barcelona-partners/voicegw/internal/knowledge"
	"github.com/barcelona-partners/voicegw/pkg/llm"
	"github.com/barcelona-partners/voicegw/pkg/logging"
)

const (
	retrieverNotFound = "I could not find specific information about that in the provider manual."
	retrieverFailure  = "Error consulting the internal manual."

	defaultSourceLabel = "General"
	defaultCategory    = "Informational"
)

// QueryEmbedder turns a question into a vector for similarity search.
type QueryEmbedder interface {
	EmbedQuery(ctx context.Context, query string) ([]float32, error)
}

// PassageSearcher returns the passages closest to a query vector.
type PassageSearcher interface {
	Search(ctx context.Context, embedding []float32, limit int) ([]knowledge.Passage, error)
}

// Retriever answers manual questions from the knowledge store. Failures of
// any kind come back as readable text, never as errors: the model treats the
// result as something it can say out loud, and the call must not abort the
// turn because the manual is unreachable.
type Retriever struct {
	embedder QueryEmbedder
	searcher PassageSearcher
	logger   logging.Logger
	limit    int
}

func NewRetriever(embedder QueryEmbedder, searcher PassageSearcher, logger logging.Logger, limit int) *Retriever {
	if limit <= 0 {
		limit = 3
	}
	return &Retriever{
		embedder: embedder,
		searcher: searcher,
		logger:   logger,
		limit:    limit,
	}
}

func (r *Retriever) Definition() llm.Tool {
	return llm.Tool{
		Name:        "consult_manual",
		Description: "Consult the provider manual for rules, fees, bidding procedures and plan conditions. Use it whenever the caller asks about how the consortium works.",
		Parameters: toolParams(
			map[string]any{
				"query": map[string]any{
					"type":        "string",
					"description": "The question to look up in the provider manual.",
				},
			},
			[]string{"query"},
		),
	}
}

type retrieverArgs struct {
	Query string `json:"query"`
}

func (r *Retriever) Call(ctx context.Context, arguments string) (string, error) {
	var args retrieverArgs
	if err := json.Unmarshal([]byte(arguments), &args); err != nil || strings.TrimSpace(args.Query) == "" {
		return retrieverFailure, nil
	}
	if r.embedder == nil || r.searcher == nil {
		return retrieverFailure, nil
	}

	embedding, err := r.embedder.EmbedQuery(ctx, args.Query)
	if err != nil {
		if r.logger != nil {
			r.logger.WithError(err).Warn("Failed to embed manual query")
		}
		return retrieverFailure, nil
	}

	passages, err := r.searcher.Search(ctx, embedding, r.limit)
	if err != nil {
		if r.logger != nil {
			r.logger.WithError(err).Warn("Manual search failed")
		}
		return retrieverFailure, nil
	}
	if len(passages) == 0 {
		return retrieverNotFound, nil
	}

	parts := make([]string, 0, len(passages))
	for _, passage := range passages {
		parts = append(parts, formatPassage(passage))
	}
	return strings.Join(parts, "\n\n"), nil
}

// formatPassage prefixes each excerpt with its source so the model can
// attribute what it reads back.
func formatPassage(passage knowledge.Passage) string {
	label := passage.SourceLabel
	if label == "" {
		label = defaultSourceLabel
	}
	category := passage.Category
	if category == "" {
		category = defaultCategory
	}
	return "[" + label + " - " + category + "]: " + passage.Text
}
