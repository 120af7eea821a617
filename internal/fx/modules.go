package fx

import (
	"golf-tracker/internal/backup"
	"golf-tracker/internal/config"
	"golf-tracker/internal/database"
	"golf-tracker/internal/logger"
	"golf-tracker/internal/repository"
	"golf-tracker/internal/server"
	"golf-tracker/internal/store"
	syncer "golf-tracker/internal/sync"
	"golf-tracker/internal/transport"

	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

func ProvideEngine(s *store.Store, t syncer.Transport, log zerolog.Logger) *syncer.Engine {
	return syncer.NewEngine(s, t, log)
}

var Module = fx.Options(
	fx.Provide(logger.New),
	fx.Provide(config.Load),
	fx.Provide(database.New),
	// storage
	fx.Provide(repository.NewSnapshotRepository),
	fx.Provide(backup.NewManager),
	fx.Provide(store.NewStore),
	// sync
	fx.Provide(transport.New),
	fx.Provide(ProvideEngine),
	// server
	fx.Provide(server.New),
)
