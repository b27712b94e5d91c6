package knowledge

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/pgvector/pgvector-go"
)

// Passage is one indexed excerpt of a provider manual. SourceLabel names the
// consortium administrator the excerpt belongs to; Category classifies it
// (fees, bidding, eligibility, ...).
type Passage struct {
	ID          string
	SourceLabel string
	Category    string
	Text        string
	Index       int
	Embedding   []float32
	Metadata    map[string]any
	Similarity  float64
}

type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// EnsureSchema creates the schema and passages table if they do not exist.
// dims sizes the vector column and must match the embedding model in use.
func (s *Store) EnsureSchema(ctx context.Context, dims int) error {
	if dims <= 0 {
		return errors.New("embedding dimensions must be positive")
	}
	statements := []string{
		`CREATE EXTENSION IF NOT EXISTS vector`,
		`CREATE SCHEMA IF NOT EXISTS voicegw`,
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS voicegw.knowledge (
			id BIGSERIAL PRIMARY KEY,
			source_label TEXT NOT NULL,
			category TEXT NOT NULL DEFAULT '',
			chunk_text TEXT NOT NULL,
			chunk_index INT NOT NULL,
			embedding vector(%d),
			metadata JSONB NOT NULL DEFAULT '{}',
			ingested_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`, dims),
	}
	for _, stmt := range statements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure knowledge schema: %w", err)
		}
	}
	return nil
}

// Search returns the limit nearest passages by cosine distance. Ties are
// broken by whatever order the index returns.
func (s *Store) Search(ctx context.Context, embedding []float32, limit int) ([]Passage, error) {
	if len(embedding) == 0 {
		return nil, errors.New("embedding is required")
	}
	if limit <= 0 {
		limit = 3
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id,
			source_label,
			category,
			chunk_text,
			chunk_index,
			metadata,
			1 - (embedding <=> $1) AS similarity
		FROM voicegw.knowledge
		ORDER BY embedding <=> $1
		LIMIT $2
	`, pgvector.NewVector(embedding), limit)
	if err != nil {
		return nil, fmt.Errorf("search knowledge: %w", err)
	}
	defer rows.Close()

	var passages []Passage
	for rows.Next() {
		var passage Passage
		var metadataBytes []byte
		if err := rows.Scan(
			&passage.ID,
			&passage.SourceLabel,
			&passage.Category,
			&passage.Text,
			&passage.Index,
			&metadataBytes,
			&passage.Similarity,
		); err != nil {
			return nil, fmt.Errorf("scan knowledge passage: %w", err)
		}
		if len(metadataBytes) > 0 {
			if err := json.Unmarshal(metadataBytes, &passage.Metadata); err != nil {
				return nil, fmt.Errorf("decode metadata: %w", err)
			}
		}
		passages = append(passages, passage)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate knowledge passages: %w", err)
	}

	return passages, nil
}

// ReplaceSource swaps all passages of one source label in a single
// transaction, so a re-ingested manual never coexists with its old chunks.
func (s *Store) ReplaceSource(ctx context.Context, sourceLabel string, passages []Passage) error {
	if sourceLabel == "" {
		return errors.New("source label is required")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, `
		DELETE FROM voicegw.knowledge
		WHERE source_label = $1
	`, sourceLabel); err != nil {
		return fmt.Errorf("delete existing passages: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO voicegw.knowledge (
			source_label,
			category,
			chunk_text,
			chunk_index,
			embedding,
			metadata
		) VALUES ($1, $2, $3, $4, $5, $6)
	`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, passage := range passages {
		metadataBytes, err := json.Marshal(passage.Metadata)
		if err != nil {
			return fmt.Errorf("encode metadata: %w", err)
		}
		if _, err := stmt.ExecContext(
			ctx,
			sourceLabel,
			passage.Category,
			passage.Text,
			passage.Index,
			pgvector.NewVector(passage.Embedding),
			metadataBytes,
		); err != nil {
			return fmt.Errorf("insert passage: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}

// Count returns the number of indexed passages.
func (s *Store) Count(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM voicegw.knowledge`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count passages: %w", err)
	}
	return count, nil
}
