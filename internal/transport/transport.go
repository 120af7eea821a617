// Package transport provides the concrete remote replicas the sync engine
// can push to and pull from.
package transport

import (
	"golf-tracker/internal/config"
	syncer "golf-tracker/internal/sync"

	"github.com/rs/zerolog"
)

// New selects the transport from configuration. When no backend is
// configured it returns nil, which the engine treats as sync being
// unavailable; there is no runtime probing for optional collaborators.
func New(cfg *config.Config, logger zerolog.Logger) (syncer.Transport, error) {
	switch cfg.SyncBackend {
	case config.SyncBackendPostgres:
		return NewDocumentStore(cfg.SyncDatabaseURL, logger)
	case config.SyncBackendHTTP:
		return NewBlobStore(cfg.SyncBaseURL, logger), nil
	default:
		logger.Info().Msg("no sync backend configured, sync disabled")
		return nil, nil
	}
}
