// Package store owns the canonical local round collection. All mutations
// are serialized, recompute derived fields, persist the primary snapshot,
// trigger a backup snapshot, and notify subscribers.
package store

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"golf-tracker/internal/backup"
	"golf-tracker/internal/constants"
	"golf-tracker/internal/domain"
	"golf-tracker/internal/handicap"
	"golf-tracker/internal/repository"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/rs/zerolog"
)

// RoundInput carries user-supplied round fields. Rating fields arrive as
// text and fall back to their neutral defaults when unparseable.
type RoundInput struct {
	CourseName   string `json:"courseName"`
	DatePlayed   string `json:"datePlayed"` // YYYY-MM-DD
	Score        int    `json:"score"`
	CourseRating string `json:"courseRating"`
	SlopeRating  string `json:"slopeRating"`
}

type Store struct {
	mu      sync.Mutex
	repo    *repository.SnapshotRepository
	backups *backup.Manager
	logger  zerolog.Logger
	subs    []func()
}

func NewStore(repo *repository.SnapshotRepository, backups *backup.Manager, logger zerolog.Logger) *Store {
	return &Store{repo: repo, backups: backups, logger: logger}
}

// Subscribe registers fn to run after every successful mutation. Callbacks
// run outside the store lock and must not block.
func (s *Store) Subscribe(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subs = append(s.subs, fn)
}

// Add validates the input, assigns an ID and creation timestamp, prepends
// the round, evicts beyond the retention cap and persists.
func (s *Store) Add(ctx context.Context, in RoundInput) (*domain.Round, error) {
	round, err := buildRound(in)
	if err != nil {
		return nil, err
	}
	if round.DatePlayed.After(time.Now()) {
		return nil, &domain.ValidationError{Field: "datePlayed", Reason: "must not be in the future"}
	}

	id, err := gonanoid.New()
	if err != nil {
		return nil, fmt.Errorf("failed to generate round id: %w", err)
	}
	round.ID = id
	round.CreatedAt = time.Now().UTC()

	s.mu.Lock()
	c, err := s.load(ctx)
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}

	c.Rounds = append([]domain.Round{*round}, c.Rounds...)
	if len(c.Rounds) > constants.RetentionCap {
		c.Rounds = c.Rounds[:constants.RetentionCap]
	}
	handicap.Refresh(c)

	if err := s.persist(ctx, c); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	s.mu.Unlock()

	s.logger.Info().Str("round_id", round.ID).Str("course", round.CourseName).Int("score", round.Score).Msg("round added")
	s.notify()
	return round, nil
}

// Update rewrites the mutable fields of an existing round and stamps
// ModifiedAt. ID and CreatedAt are preserved.
func (s *Store) Update(ctx context.Context, id string, in RoundInput) (*domain.Round, error) {
	round, err := buildRound(in)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	c, err := s.load(ctx)
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}

	idx := -1
	for i, r := range c.Rounds {
		if r.ID == id {
			idx = i
			break
		}
	}
	if idx == -1 {
		s.mu.Unlock()
		return nil, domain.ErrNotFound
	}

	now := time.Now().UTC()
	round.ID = c.Rounds[idx].ID
	round.CreatedAt = c.Rounds[idx].CreatedAt
	round.ModifiedAt = &now
	c.Rounds[idx] = *round
	handicap.Refresh(c)

	if err := s.persist(ctx, c); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	s.mu.Unlock()

	s.logger.Info().Str("round_id", id).Msg("round updated")
	s.notify()
	return round, nil
}

// Delete removes the round with the given ID. Deleting an absent ID is a
// successful no-op.
func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	c, err := s.load(ctx)
	if err != nil {
		s.mu.Unlock()
		return err
	}

	kept := c.Rounds[:0]
	for _, r := range c.Rounds {
		if r.ID != id {
			kept = append(kept, r)
		}
	}
	if len(kept) == len(c.Rounds) {
		s.mu.Unlock()
		return nil
	}
	c.Rounds = kept
	handicap.Refresh(c)

	if err := s.persist(ctx, c); err != nil {
		s.mu.Unlock()
		return err
	}
	s.mu.Unlock()

	s.logger.Info().Str("round_id", id).Msg("round deleted")
	s.notify()
	return nil
}

// List returns the rounds in the store's internal order (insertion order,
// newest first). Callers sort for display.
func (s *Store) List(ctx context.Context) ([]domain.Round, error) {
	c, err := s.Collection(ctx)
	if err != nil {
		return nil, err
	}
	return c.Rounds, nil
}

// Get returns a single round by ID.
func (s *Store) Get(ctx context.Context, id string) (*domain.Round, error) {
	c, err := s.Collection(ctx)
	if err != nil {
		return nil, err
	}
	for _, r := range c.Rounds {
		if r.ID == id {
			return &r, nil
		}
	}
	return nil, domain.ErrNotFound
}

// Derived returns the current handicap index (nil when undetermined) and
// statistics.
func (s *Store) Derived(ctx context.Context) (*domain.Stats, *float64, error) {
	c, err := s.Collection(ctx)
	if err != nil {
		return nil, nil, err
	}
	return &c.Stats, c.HandicapIndex, nil
}

// Collection returns a snapshot copy of the whole collection. The sync
// engine captures its local side of a cycle through this accessor.
func (s *Store) Collection(ctx context.Context) (*domain.RoundCollection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	return c.Clone(), nil
}

// Replace overwrites the whole collection. This is the only entry point the
// sync engine uses to apply merge results; derived fields are always
// recomputed here, never transcribed from the incoming snapshot.
func (s *Store) Replace(ctx context.Context, c *domain.RoundCollection) error {
	if !c.IsValid() {
		return &domain.ValidationError{Field: "rounds", Reason: "collection has no rounds field"}
	}

	next := c.Clone()
	handicap.Refresh(next)

	s.mu.Lock()
	if err := s.persist(ctx, next); err != nil {
		s.mu.Unlock()
		return err
	}
	s.mu.Unlock()

	s.logger.Debug().Int("rounds", len(next.Rounds)).Msg("collection replaced")
	s.notify()
	return nil
}

// load reads the primary snapshot, falling back to backup recovery when it
// is absent or structurally invalid. Recovered data is written back as the
// new primary. Caller holds the lock.
func (s *Store) load(ctx context.Context) (*domain.RoundCollection, error) {
	c, err := s.repo.Load(ctx, repository.PrimaryKey)
	if err == nil && c.IsValid() {
		return c, nil
	}
	if err != nil && !errors.Is(err, repository.ErrNoSnapshot) {
		s.logger.Warn().Err(err).Msg("primary snapshot unreadable, attempting recovery")
	} else if err == nil {
		s.logger.Warn().Msg("primary snapshot structurally invalid, attempting recovery")
	}

	recovered, rerr := s.backups.Recover(ctx)
	if rerr != nil {
		if errors.Is(rerr, domain.ErrRecoveryExhausted) {
			s.logger.Info().Msg("nothing recoverable, starting with empty collection")
			return domain.NewRoundCollection(), nil
		}
		return nil, rerr
	}

	// Self-healing: the recovered collection becomes the new primary.
	if err := s.repo.Save(ctx, repository.PrimaryKey, recovered); err != nil {
		s.logger.Warn().Err(err).Msg("failed to write recovered collection back to primary")
	}
	return recovered, nil
}

// persist writes the primary snapshot and triggers a best-effort backup.
// Caller holds the lock.
func (s *Store) persist(ctx context.Context, c *domain.RoundCollection) error {
	c.LastModified = time.Now().UTC()
	if err := s.repo.Save(ctx, repository.PrimaryKey, c); err != nil {
		return &domain.PersistenceError{Op: "save collection", Err: err}
	}
	s.backups.Snapshot(ctx, c)
	return nil
}

func (s *Store) notify() {
	s.mu.Lock()
	subs := make([]func(), len(s.subs))
	copy(subs, s.subs)
	s.mu.Unlock()

	for _, fn := range subs {
		fn()
	}
}

func buildRound(in RoundInput) (*domain.Round, error) {
	name := strings.TrimSpace(in.CourseName)
	if name == "" {
		return nil, &domain.ValidationError{Field: "courseName", Reason: "must not be empty"}
	}

	date, err := time.Parse("2006-01-02", strings.TrimSpace(in.DatePlayed))
	if err != nil {
		return nil, &domain.ValidationError{Field: "datePlayed", Reason: "must be a date in YYYY-MM-DD form"}
	}

	if in.Score < constants.MinScore || in.Score > constants.MaxScore {
		return nil, &domain.ValidationError{
			Field:  "score",
			Reason: fmt.Sprintf("must be between %d and %d", constants.MinScore, constants.MaxScore),
		}
	}

	rating := constants.DefaultCourseRating
	if v, err := strconv.ParseFloat(strings.TrimSpace(in.CourseRating), 64); err == nil {
		if v < constants.MinCourseRating || v > constants.MaxCourseRating {
			return nil, &domain.ValidationError{
				Field:  "courseRating",
				Reason: fmt.Sprintf("must be between %.1f and %.1f", constants.MinCourseRating, constants.MaxCourseRating),
			}
		}
		rating = v
	}

	slope := constants.DefaultSlopeRating
	if v, err := strconv.Atoi(strings.TrimSpace(in.SlopeRating)); err == nil {
		if v < constants.MinSlopeRating || v > constants.MaxSlopeRating {
			return nil, &domain.ValidationError{
				Field:  "slopeRating",
				Reason: fmt.Sprintf("must be between %d and %d", constants.MinSlopeRating, constants.MaxSlopeRating),
			}
		}
		slope = v
	}

	return &domain.Round{
		CourseName:   name,
		DatePlayed:   date,
		Score:        in.Score,
		CourseRating: rating,
		SlopeRating:  slope,
	}, nil
}
