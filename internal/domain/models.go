package domain

import (
	"time"
)

// Round is one played round of golf. ID and CreatedAt are immutable after
// creation; ModifiedAt is absent until the first update and is the
// tie-breaker when local and remote copies of the same round diverge.
type Round struct {
	ID           string     `json:"id"`
	CourseName   string     `json:"courseName"`
	DatePlayed   time.Time  `json:"datePlayed"`
	Score        int        `json:"score"`
	CourseRating float64    `json:"courseRating"`
	SlopeRating  int        `json:"slopeRating"`
	CreatedAt    time.Time  `json:"createdAt"`
	ModifiedAt   *time.Time `json:"modifiedAt,omitempty"`
}

// EffectiveTimestamp is the recency measure used when merging: ModifiedAt
// when the round has been updated, CreatedAt otherwise.
func (r Round) EffectiveTimestamp() time.Time {
	if r.ModifiedAt != nil {
		return *r.ModifiedAt
	}
	return r.CreatedAt
}

// Stats are derived from the round list and never mutated independently.
type Stats struct {
	RoundsPlayed int      `json:"roundsPlayed"`
	BestScore    *int     `json:"bestScore,omitempty"`
	AverageScore *float64 `json:"averageScore,omitempty"`
}

// RoundCollection is the persisted aggregate: the round list in insertion
// order (newest first), plus derived fields recomputed on every change.
type RoundCollection struct {
	Rounds        []Round   `json:"rounds"`
	HandicapIndex *float64  `json:"handicapIndex,omitempty"`
	Stats         Stats     `json:"stats"`
	LastModified  time.Time `json:"lastModified"`
}

func NewRoundCollection() *RoundCollection {
	return &RoundCollection{Rounds: []Round{}}
}

// IsValid reports whether the collection is structurally usable. A payload
// without a rounds field deserializes to a nil slice and triggers recovery.
func (c *RoundCollection) IsValid() bool {
	return c != nil && c.Rounds != nil
}

// Clone returns a copy whose round slice is independent of the original.
func (c *RoundCollection) Clone() *RoundCollection {
	out := *c
	out.Rounds = make([]Round, len(c.Rounds))
	copy(out.Rounds, c.Rounds)
	return &out
}
