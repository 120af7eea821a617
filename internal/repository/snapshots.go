package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"golf-tracker/internal/constants"
	"golf-tracker/internal/domain"

	"github.com/rs/zerolog"
)

// Fixed storage keys for the persisted collection and its backups.
const (
	PrimaryKey   = "golf:data"
	BackupKey    = "golf:backup"
	EmergencyKey = "golf:backup:rounds"
)

// ErrNoSnapshot is returned when no record exists under the requested key.
var ErrNoSnapshot = errors.New("snapshot not found")

// SnapshotRepository stores serialized collection snapshots under fixed keys.
type SnapshotRepository struct {
	db     *sql.DB
	logger zerolog.Logger
}

func NewSnapshotRepository(db *sql.DB, logger zerolog.Logger) *SnapshotRepository {
	return &SnapshotRepository{db: db, logger: logger}
}

// Save writes the full collection payload under key, replacing any previous
// record.
func (r *SnapshotRepository) Save(ctx context.Context, key string, c *domain.RoundCollection) error {
	payload, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to serialize collection: %w", err)
	}
	return r.save(ctx, key, payload)
}

// Load reads the full collection payload stored under key.
func (r *SnapshotRepository) Load(ctx context.Context, key string) (*domain.RoundCollection, error) {
	payload, err := r.load(ctx, key)
	if err != nil {
		return nil, err
	}

	var c domain.RoundCollection
	if err := json.Unmarshal(payload, &c); err != nil {
		return nil, fmt.Errorf("failed to deserialize snapshot %s: %w", key, err)
	}
	return &c, nil
}

// SaveRounds writes a rounds-only payload under key. Used for the emergency
// backup, which drops derived fields to survive independent of their shape.
func (r *SnapshotRepository) SaveRounds(ctx context.Context, key string, rounds []domain.Round) error {
	payload, err := json.Marshal(rounds)
	if err != nil {
		return fmt.Errorf("failed to serialize rounds: %w", err)
	}
	return r.save(ctx, key, payload)
}

// LoadRounds reads a rounds-only payload stored under key.
func (r *SnapshotRepository) LoadRounds(ctx context.Context, key string) ([]domain.Round, error) {
	payload, err := r.load(ctx, key)
	if err != nil {
		return nil, err
	}

	var rounds []domain.Round
	if err := json.Unmarshal(payload, &rounds); err != nil {
		return nil, fmt.Errorf("failed to deserialize snapshot %s: %w", key, err)
	}
	return rounds, nil
}

// Delete removes the record under key. Deleting a missing key is a no-op.
func (r *SnapshotRepository) Delete(ctx context.Context, key string) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	if _, err := r.db.ExecContext(ctx, `DELETE FROM snapshots WHERE key = ?`, key); err != nil {
		return fmt.Errorf("failed to delete snapshot %s: %w", key, err)
	}
	return nil
}

func (r *SnapshotRepository) save(ctx context.Context, key string, payload []byte) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO snapshots (key, payload, saved_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET payload = excluded.payload, saved_at = excluded.saved_at`,
		key, string(payload), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to write snapshot %s: %w", key, err)
	}

	r.logger.Debug().Str("key", key).Int("bytes", len(payload)).Msg("snapshot written")
	return nil
}

func (r *SnapshotRepository) load(ctx context.Context, key string) ([]byte, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var payload string
	err := r.db.QueryRowContext(ctx, `SELECT payload FROM snapshots WHERE key = ?`, key).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoSnapshot
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot %s: %w", key, err)
	}
	return []byte(payload), nil
}

func (r *SnapshotRepository) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, constants.DatabaseTimeout)
}
