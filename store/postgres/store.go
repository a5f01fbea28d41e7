// Package postgres stores enriched document records in a PostgreSQL table.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	internalErrors "github.com/gcbaptista/resumatch/internal/errors"
	"github.com/gcbaptista/resumatch/model"
)

const schema = `
CREATE TABLE IF NOT EXISTS documents (
	id          TEXT PRIMARY KEY,
	text        TEXT NOT NULL DEFAULT '',
	skills      JSONB NOT NULL DEFAULT '[]'::jsonb,
	sections    JSONB NOT NULL DEFAULT '{}'::jsonb,
	format      TEXT NOT NULL DEFAULT '',
	ingested_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS documents_ingested_at_idx ON documents (ingested_at, id);
`

// Store wraps a PostgreSQL connection pool.
type Store struct {
	pool *pgxpool.Pool
}

// Connect establishes a connection pool to the database.
func Connect(ctx context.Context, databaseURL string) (*Store, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Store{pool: pool}, nil
}

// Close closes the connection pool.
func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// EnsureSchema creates the documents table if it does not exist.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// Put inserts rec or replaces the row with the same ID.
func (s *Store) Put(ctx context.Context, rec model.DocumentRecord) error {
	if rec.ID == "" {
		return internalErrors.NewValidationError("id", "document ID cannot be empty")
	}

	skillsJSON, sectionsJSON, err := encodeRecord(rec)
	if err != nil {
		return err
	}
	ingestedAt := rec.IngestedAt
	if ingestedAt.IsZero() {
		ingestedAt = time.Now().UTC()
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO documents (id, text, skills, sections, format, ingested_at)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (id) DO UPDATE
		 SET text = $2, skills = $3, sections = $4, format = $5, ingested_at = $6`,
		rec.ID, rec.Text, skillsJSON, sectionsJSON, rec.Format, ingestedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save document %s: %w", rec.ID, err)
	}
	return nil
}

// Get returns the record stored under id.
func (s *Store) Get(ctx context.Context, id string) (model.DocumentRecord, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, text, skills, sections, format, ingested_at FROM documents WHERE id = $1`,
		id,
	)
	rec, err := scanRecord(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.DocumentRecord{}, internalErrors.NewDocumentNotFoundError(id)
		}
		return model.DocumentRecord{}, fmt.Errorf("failed to get document %s: %w", id, err)
	}
	return rec, nil
}

// Delete removes the record stored under id.
func (s *Store) Delete(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM documents WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete document %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return internalErrors.NewDocumentNotFoundError(id)
	}
	return nil
}

// ListRecords returns up to limit records, oldest first. A limit of zero or less
// returns every record.
func (s *Store) ListRecords(ctx context.Context, limit int) ([]model.DocumentRecord, error) {
	query := `SELECT id, text, skills, sections, format, ingested_at FROM documents ORDER BY ingested_at, id`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT $1`
		args = append(args, limit)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	defer rows.Close()

	out := make([]model.DocumentRecord, 0)
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	return out, nil
}

// Len returns the number of stored records.
func (s *Store) Len(ctx context.Context) (int, error) {
	var n int
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM documents`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count documents: %w", err)
	}
	return n, nil
}

func encodeRecord(rec model.DocumentRecord) ([]byte, []byte, error) {
	skills := rec.Skills
	if skills == nil {
		skills = []string{}
	}
	skillsJSON, err := json.Marshal(skills)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to marshal skills: %w", err)
	}
	sectionsJSON, err := json.Marshal(rec.Sections.Complete())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to marshal sections: %w", err)
	}
	return skillsJSON, sectionsJSON, nil
}

func scanRecord(row pgx.Row) (model.DocumentRecord, error) {
	var (
		rec          model.DocumentRecord
		skillsJSON   []byte
		sectionsJSON []byte
	)
	if err := row.Scan(&rec.ID, &rec.Text, &skillsJSON, &sectionsJSON, &rec.Format, &rec.IngestedAt); err != nil {
		return model.DocumentRecord{}, err
	}

	rec.Skills = []string{}
	if len(skillsJSON) > 0 {
		if err := json.Unmarshal(skillsJSON, &rec.Skills); err != nil {
			return model.DocumentRecord{}, fmt.Errorf("failed to unmarshal skills: %w", err)
		}
		if rec.Skills == nil {
			rec.Skills = []string{}
		}
	}

	sections := model.Sections{}
	if len(sectionsJSON) > 0 {
		if err := json.Unmarshal(sectionsJSON, &sections); err != nil {
			return model.DocumentRecord{}, fmt.Errorf("failed to unmarshal sections: %w", err)
		}
	}
	rec.Sections = sections.Complete()
	return rec, nil
}
