package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"golf-tracker/internal/domain"
	"golf-tracker/internal/testutil"

	"github.com/rs/zerolog"
)

func newTestRepo(t *testing.T) *SnapshotRepository {
	t.Helper()
	return NewSnapshotRepository(testutil.NewDB(t), zerolog.Nop())
}

func sampleCollection() *domain.RoundCollection {
	c := domain.NewRoundCollection()
	c.Rounds = append(c.Rounds, domain.Round{
		ID:           "abc",
		CourseName:   "Pebble Beach",
		DatePlayed:   time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		Score:        90,
		CourseRating: 72.8,
		SlopeRating:  129,
		CreatedAt:    time.Now().UTC().Truncate(time.Second),
	})
	return c
}

func TestSaveLoadRoundtrip(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	want := sampleCollection()
	if err := repo.Save(ctx, PrimaryKey, want); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := repo.Load(ctx, PrimaryKey)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(got.Rounds) != 1 || got.Rounds[0].ID != "abc" {
		t.Errorf("loaded rounds = %+v, want the saved round", got.Rounds)
	}
	if got.Rounds[0].ModifiedAt != nil {
		t.Errorf("modifiedAt = %v, want absent", got.Rounds[0].ModifiedAt)
	}
}

func TestSaveOverwritesExistingKey(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	if err := repo.Save(ctx, PrimaryKey, sampleCollection()); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := repo.Save(ctx, PrimaryKey, domain.NewRoundCollection()); err != nil {
		t.Fatalf("second Save: %v", err)
	}

	got, err := repo.Load(ctx, PrimaryKey)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(got.Rounds) != 0 {
		t.Errorf("rounds = %d, want 0 after overwrite", len(got.Rounds))
	}
}

func TestLoadMissingKey(t *testing.T) {
	repo := newTestRepo(t)

	if _, err := repo.Load(context.Background(), PrimaryKey); !errors.Is(err, ErrNoSnapshot) {
		t.Errorf("Load on empty store: err = %v, want ErrNoSnapshot", err)
	}
}

func TestRoundsOnlyPayload(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	want := sampleCollection().Rounds
	if err := repo.SaveRounds(ctx, EmergencyKey, want); err != nil {
		t.Fatalf("SaveRounds: %v", err)
	}

	got, err := repo.LoadRounds(ctx, EmergencyKey)
	if err != nil {
		t.Fatalf("LoadRounds: %v", err)
	}
	if len(got) != 1 || got[0].CourseName != "Pebble Beach" {
		t.Errorf("rounds = %+v, want the saved round", got)
	}
}

func TestDeleteIsIdempotent(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	if err := repo.Save(ctx, PrimaryKey, sampleCollection()); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := repo.Delete(ctx, PrimaryKey); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := repo.Delete(ctx, PrimaryKey); err != nil {
		t.Fatalf("second Delete: %v", err)
	}
	if _, err := repo.Load(ctx, PrimaryKey); !errors.Is(err, ErrNoSnapshot) {
		t.Errorf("Load after delete: err = %v, want ErrNoSnapshot", err)
	}
}
