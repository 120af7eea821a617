package sync

import (
	"context"

	"golf-tracker/internal/domain"
)

// Transport moves collection snapshots to and from a remote replica keyed by
// an opaque, user-provisioned sync key. Concrete backends differ in trust
// model (authenticated document store vs. anonymous blob store) but share
// this contract.
type Transport interface {
	// Fetch returns the remote snapshot for the sync key, or (nil, nil)
	// when the remote holds no snapshot yet.
	Fetch(ctx context.Context, syncKey string) (*domain.RoundCollection, error)

	// Put overwrites the remote snapshot for the sync key.
	Put(ctx context.Context, syncKey string, c *domain.RoundCollection) error
}
