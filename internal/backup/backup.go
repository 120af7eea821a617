// Package backup guards against loss of the primary persisted collection.
// Snapshots are advisory: failures are logged, never escalated.
package backup

import (
	"context"
	"errors"
	"time"

	"golf-tracker/internal/domain"
	"golf-tracker/internal/handicap"
	"golf-tracker/internal/repository"

	"github.com/rs/zerolog"
)

type Manager struct {
	repo   *repository.SnapshotRepository
	logger zerolog.Logger
}

func NewManager(repo *repository.SnapshotRepository, logger zerolog.Logger) *Manager {
	return &Manager{repo: repo, logger: logger}
}

// Snapshot writes two independent copies of the collection: a full copy and
// a rounds-only emergency copy. Best-effort; called after every store
// mutation.
func (m *Manager) Snapshot(ctx context.Context, c *domain.RoundCollection) {
	if err := m.repo.Save(ctx, repository.BackupKey, c); err != nil {
		m.logger.Warn().Err(err).Msg("full backup write failed")
	}
	if err := m.repo.SaveRounds(ctx, repository.EmergencyKey, c.Rounds); err != nil {
		m.logger.Warn().Err(err).Msg("emergency backup write failed")
	}
}

// Recover rebuilds the collection from the full backup, falling back to the
// rounds-only emergency backup with derived fields recomputed from scratch.
// Returns ErrRecoveryExhausted when neither backup is usable.
func (m *Manager) Recover(ctx context.Context) (*domain.RoundCollection, error) {
	c, err := m.repo.Load(ctx, repository.BackupKey)
	if err == nil && c.IsValid() {
		handicap.Refresh(c)
		m.logger.Info().Int("rounds", len(c.Rounds)).Msg("recovered collection from full backup")
		return c, nil
	}
	if err != nil && !errors.Is(err, repository.ErrNoSnapshot) {
		m.logger.Warn().Err(err).Msg("full backup unreadable, trying emergency backup")
	}

	rounds, err := m.repo.LoadRounds(ctx, repository.EmergencyKey)
	if err != nil {
		if !errors.Is(err, repository.ErrNoSnapshot) {
			m.logger.Warn().Err(err).Msg("emergency backup unreadable")
		}
		return nil, domain.ErrRecoveryExhausted
	}

	c = &domain.RoundCollection{Rounds: rounds, LastModified: time.Now().UTC()}
	handicap.Refresh(c)
	m.logger.Info().Int("rounds", len(c.Rounds)).Msg("recovered rounds from emergency backup")
	return c, nil
}
