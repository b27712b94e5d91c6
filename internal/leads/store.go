package leads

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Lead is one caller's record, keyed by phone number.
type Lead struct {
	Phone     string    `json:"phone"`
	Name      string    `json:"name"`
	Status    string    `json:"status"`
	Summary   string    `json:"summary"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ErrNotFound is returned when no lead exists for a phone number.
var ErrNotFound = errors.New("lead not found")

type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// EnsureSchema creates the schema and leads table if they do not exist.
func (s *Store) EnsureSchema(ctx context.Context) error {
	statements := []string{
		`CREATE SCHEMA IF NOT EXISTS voicegw`,
		`CREATE TABLE IF NOT EXISTS voicegw.leads (
			phone TEXT PRIMARY KEY,
			name TEXT NOT NULL DEFAULT '',
			status TEXT NOT NULL DEFAULT '',
			summary TEXT NOT NULL DEFAULT '',
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure leads schema: %w", err)
		}
	}
	return nil
}

// Upsert inserts a new lead or merges into the existing row for the phone.
// Empty fields never clobber previously stored values; concurrent writes for
// the same phone converge to one row via the primary-key conflict clause.
func (s *Store) Upsert(ctx context.Context, lead Lead) error {
	if lead.Phone == "" {
		return errors.New("phone is required")
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO voicegw.leads (phone, name, status, summary, updated_at)
		VALUES ($1, $2, $3, $4, NOW())
		ON CONFLICT (phone) DO UPDATE SET
			name = COALESCE(NULLIF(EXCLUDED.name, ''), voicegw.leads.name),
			status = COALESCE(NULLIF(EXCLUDED.status, ''), voicegw.leads.status),
			summary = COALESCE(NULLIF(EXCLUDED.summary, ''), voicegw.leads.summary),
			updated_at = NOW()
	`, lead.Phone, lead.Name, lead.Status, lead.Summary)
	if err != nil {
		return fmt.Errorf("upsert lead: %w", err)
	}
	return nil
}

// Get returns the lead for a phone number, or ErrNotFound.
func (s *Store) Get(ctx context.Context, phone string) (Lead, error) {
	if phone == "" {
		return Lead{}, errors.New("phone is required")
	}
	var lead Lead
	err := s.db.QueryRowContext(ctx, `
		SELECT phone, name, status, summary, updated_at
		FROM voicegw.leads
		WHERE phone = $1
	`, phone).Scan(&lead.Phone, &lead.Name, &lead.Status, &lead.Summary, &lead.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Lead{}, ErrNotFound
	}
	if err != nil {
		return Lead{}, fmt.Errorf("get lead: %w", err)
	}
	return lead, nil
}

// List returns leads ordered by most recent activity.
func (s *Store) List(ctx context.Context, limit, offset int) ([]Lead, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT phone, name, status, summary, updated_at
		FROM voicegw.leads
		ORDER BY updated_at DESC
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list leads: %w", err)
	}
	defer rows.Close()

	var leads []Lead
	for rows.Next() {
		var lead Lead
		if err := rows.Scan(&lead.Phone, &lead.Name, &lead.Status, &lead.Summary, &lead.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan lead: %w", err)
		}
		leads = append(leads, lead)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate leads: %w", err)
	}
	return leads, nil
}
