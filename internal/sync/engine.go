// Package sync keeps the local round collection and a remote replica
// eventually consistent. At most one sync cycle is in flight at a time;
// every trigger funnels through the same guarded entry point.
package sync

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"golf-tracker/internal/constants"
	"golf-tracker/internal/domain"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

type Status string

const (
	StatusDisabled Status = "disabled"
	StatusIdle     Status = "idle"
	StatusSyncing  Status = "syncing"
	StatusSynced   Status = "synced"
	StatusError    Status = "error"
)

// CollectionStore is the slice of the round store the engine depends on.
// The engine never writes persisted state directly; Replace is its only
// write path so derived fields are always recomputed.
type CollectionStore interface {
	Collection(ctx context.Context) (*domain.RoundCollection, error)
	Replace(ctx context.Context, c *domain.RoundCollection) error
	Subscribe(fn func())
}

type Engine struct {
	store     CollectionStore
	transport Transport
	logger    zerolog.Logger

	mu       sync.Mutex
	status   Status
	syncKey  string
	lastSync time.Time
	debounce *time.Timer
	stop     chan struct{}
}

// NewEngine wires the engine to the store's change events. A nil transport
// is the typed "sync unavailable" configuration: the engine stays disabled
// and Enable fails.
func NewEngine(store CollectionStore, transport Transport, logger zerolog.Logger) *Engine {
	e := &Engine{
		store:     store,
		transport: transport,
		logger:    logger,
		status:    StatusDisabled,
	}
	store.Subscribe(e.scheduleSync)
	return e
}

// Enable configures the sync key, starts the periodic loop and runs the
// first sync cycle immediately.
func (e *Engine) Enable(ctx context.Context, syncKey string) error {
	if e.transport == nil {
		return fmt.Errorf("no sync backend configured")
	}
	syncKey = strings.TrimSpace(syncKey)
	if syncKey == "" {
		return &domain.ValidationError{Field: "syncKey", Reason: "must not be empty"}
	}

	e.mu.Lock()
	e.syncKey = syncKey
	if e.status == StatusDisabled {
		e.status = StatusIdle
	}
	started := e.stop != nil
	if !started {
		e.stop = make(chan struct{})
		stop := e.stop
		g := new(errgroup.Group)
		g.Go(func() error {
			e.periodicLoop(stop)
			return nil
		})
		go func() {
			if err := g.Wait(); err != nil {
				e.logger.Error().Err(err).Msg("periodic sync loop failed")
			}
		}()
	}
	e.mu.Unlock()

	e.logger.Info().Msg("sync enabled")
	if err := e.SyncNow(ctx); err != nil && !errors.Is(err, domain.ErrSyncInProgress) {
		e.logger.Warn().Err(err).Msg("initial sync failed")
	}
	return nil
}

// Disable stops the periodic loop and clears the sync key. An in-flight
// cycle runs to completion but its outcome no longer changes the status.
func (e *Engine) Disable() {
	e.mu.Lock()
	if e.stop != nil {
		close(e.stop)
		e.stop = nil
	}
	if e.debounce != nil {
		e.debounce.Stop()
		e.debounce = nil
	}
	e.syncKey = ""
	e.status = StatusDisabled
	e.mu.Unlock()

	e.logger.Info().Msg("sync disabled")
}

// SyncNow runs one guarded sync cycle. A request while a cycle is in flight
// returns ErrSyncInProgress and is dropped, not queued. When the engine is
// disabled this is a no-op.
func (e *Engine) SyncNow(ctx context.Context) error {
	e.mu.Lock()
	if e.status == StatusDisabled || e.syncKey == "" {
		e.mu.Unlock()
		return nil
	}
	if e.status == StatusSyncing {
		e.mu.Unlock()
		return domain.ErrSyncInProgress
	}
	e.status = StatusSyncing
	key := e.syncKey
	e.mu.Unlock()

	err := e.runCycle(ctx, key)

	e.mu.Lock()
	if e.status == StatusSyncing { // Disable may have raced the cycle
		if err != nil {
			e.status = StatusError
		} else {
			e.status = StatusSynced
			e.lastSync = time.Now()
		}
	}
	e.mu.Unlock()
	return err
}

func (e *Engine) Status() Status {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.status
}

// LastSync returns the completion time of the last successful cycle, zero
// if none has completed yet.
func (e *Engine) LastSync() time.Time {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lastSync
}

// runCycle is one pass of the sync protocol: capture the local snapshot,
// fetch the remote one, merge, apply locally through the store, push.
func (e *Engine) runCycle(ctx context.Context, key string) error {
	ctx, cancel := context.WithTimeout(ctx, constants.RequestTimeout)
	defer cancel()

	local, err := e.store.Collection(ctx)
	if err != nil {
		return err
	}

	fctx, fcancel := context.WithTimeout(ctx, constants.TransportTimeout)
	remote, err := e.transport.Fetch(fctx, key)
	fcancel()
	if err != nil {
		// A failed fetch degrades to "remote absent"; the cycle proceeds
		// local-only rather than aborting.
		e.logger.Warn().Err(err).Msg("remote fetch failed, treating as absent")
		remote = nil
	}

	payload := local
	if remote != nil {
		payload = Merge(local, remote)
		if err := e.store.Replace(ctx, payload); err != nil {
			return err
		}
		e.logger.Debug().
			Int("local_rounds", len(local.Rounds)).
			Int("remote_rounds", len(remote.Rounds)).
			Int("merged_rounds", len(payload.Rounds)).
			Msg("merged local and remote snapshots")
	}

	pctx, pcancel := context.WithTimeout(ctx, constants.TransportTimeout)
	defer pcancel()
	if err := e.transport.Put(pctx, key, payload); err != nil {
		// The merge already applied locally is kept; local state is the
		// safer side to trust.
		return &domain.TransportError{Op: "push snapshot", Err: err}
	}

	e.logger.Info().Int("rounds", len(payload.Rounds)).Msg("sync cycle completed")
	return nil
}

// scheduleSync coalesces bursts of local mutations into one cycle. Change
// events emitted by the engine's own Replace during a cycle are ignored,
// otherwise every merge would schedule the next cycle forever.
func (e *Engine) scheduleSync() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.status == StatusDisabled || e.status == StatusSyncing || e.syncKey == "" {
		return
	}
	if e.debounce != nil {
		e.debounce.Stop()
	}
	e.debounce = time.AfterFunc(constants.SyncDebounce, func() {
		if err := e.SyncNow(context.Background()); err != nil && !errors.Is(err, domain.ErrSyncInProgress) {
			e.logger.Warn().Err(err).Msg("debounced sync failed")
		}
	})
}

func (e *Engine) periodicLoop(stop chan struct{}) {
	ticker := time.NewTicker(constants.SyncInterval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if err := e.SyncNow(context.Background()); err != nil && !errors.Is(err, domain.ErrSyncInProgress) {
				e.logger.Warn().Err(err).Msg("periodic sync failed")
			}
		}
	}
}
