package transport

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"golf-tracker/internal/domain"

	_ "github.com/lib/pq"
	"github.com/rs/zerolog"
)

// DocumentStore syncs against a Postgres-backed document table, one row per
// sync key. Access is authenticated by the connection string.
type DocumentStore struct {
	db     *sql.DB
	logger zerolog.Logger
}

func NewDocumentStore(databaseURL string, logger zerolog.Logger) (*DocumentStore, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open sync database: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to reach sync database: %w", err)
	}

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS golf_collections (
			sync_key   TEXT PRIMARY KEY,
			payload    JSONB NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		)`); err != nil {
		return nil, fmt.Errorf("failed to ensure sync table: %w", err)
	}

	logger.Info().Msg("document store transport ready")
	return &DocumentStore{db: db, logger: logger}, nil
}

func (s *DocumentStore) Fetch(ctx context.Context, syncKey string) (*domain.RoundCollection, error) {
	var payload []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT payload FROM golf_collections WHERE sync_key = $1`, syncKey).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch remote snapshot: %w", err)
	}

	var c domain.RoundCollection
	if err := json.Unmarshal(payload, &c); err != nil {
		return nil, fmt.Errorf("failed to decode remote snapshot: %w", err)
	}
	return &c, nil
}

func (s *DocumentStore) Put(ctx context.Context, syncKey string, c *domain.RoundCollection) error {
	payload, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO golf_collections (sync_key, payload, updated_at) VALUES ($1, $2, $3)
		ON CONFLICT (sync_key) DO UPDATE SET payload = excluded.payload, updated_at = excluded.updated_at`,
		syncKey, payload, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to push remote snapshot: %w", err)
	}

	s.logger.Debug().Int("bytes", len(payload)).Msg("snapshot uploaded to document store")
	return nil
}

func (s *DocumentStore) Close() error {
	return s.db.Close()
}
