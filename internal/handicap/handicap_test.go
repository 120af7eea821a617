package handicap

import (
	"math"
	"testing"
	"time"

	"golf-tracker/internal/domain"
)

func round(score int, rating float64, slope int) domain.Round {
	return domain.Round{
		ID:           "r",
		CourseName:   "Test Course",
		DatePlayed:   time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		Score:        score,
		CourseRating: rating,
		SlopeRating:  slope,
		CreatedAt:    time.Now(),
	}
}

func TestCalculateUndeterminedBelowThreeRounds(t *testing.T) {
	for n := 0; n < 3; n++ {
		rounds := make([]domain.Round, n)
		for i := range rounds {
			rounds[i] = round(90, 72.0, 113)
		}
		if _, ok := Calculate(rounds); ok {
			t.Errorf("Calculate with %d rounds: expected undetermined", n)
		}
	}
}

func TestCalculateEightRoundNeutralSlope(t *testing.T) {
	// With rating 72.0 and slope 113 every differential is score-72.
	// Sorted: [11 13 15 16 18 20 23 28], N=8 uses the lowest 2,
	// avg(11,13)=12, *0.96 = 11.52, rounds to 11.5.
	scores := []int{90, 85, 88, 92, 87, 95, 83, 100}
	rounds := make([]domain.Round, len(scores))
	for i, s := range scores {
		rounds[i] = round(s, 72.0, 113)
	}

	index, ok := Calculate(rounds)
	if !ok {
		t.Fatal("expected a determined index")
	}
	if index != 11.5 {
		t.Errorf("index = %v, want 11.5", index)
	}
}

func TestCalculateClampsToZero(t *testing.T) {
	rounds := []domain.Round{
		round(60, 72.0, 113),
		round(61, 72.0, 113),
		round(62, 72.0, 113),
	}
	index, ok := Calculate(rounds)
	if !ok {
		t.Fatal("expected a determined index")
	}
	if index != 0 {
		t.Errorf("index = %v, want 0 (clamped)", index)
	}
}

func TestNumToUse(t *testing.T) {
	cases := []struct{ n, want int }{
		{3, 1}, {5, 1}, {6, 2}, {7, 2}, {8, 2}, {10, 4}, {15, 6}, {20, 8},
	}
	for _, c := range cases {
		if got := numToUse(c.n); got != c.want {
			t.Errorf("numToUse(%d) = %d, want %d", c.n, got, c.want)
		}
	}
}

func TestDifferential(t *testing.T) {
	// (90 - 72.8) * 113 / 129 = 15.068...
	d := Differential(90, 72.8, 129)
	if math.Abs(d-15.068) > 0.001 {
		t.Errorf("Differential = %v, want ~15.068", d)
	}
}

func TestCourseHandicap(t *testing.T) {
	// 11.5 * 129 / 113 + (72.8 - 72) = 13.93 -> 14
	if got := CourseHandicap(11.5, 129, 72.8, 72); got != 14 {
		t.Errorf("CourseHandicap = %d, want 14", got)
	}
	// Strongly negative input clamps to zero.
	if got := CourseHandicap(0, 80, 60, 72); got != 0 {
		t.Errorf("CourseHandicap = %d, want 0 (clamped)", got)
	}
}

func TestPlayingHandicapAndNetScore(t *testing.T) {
	if got := PlayingHandicap(14, 0.95); got != 13 {
		t.Errorf("PlayingHandicap = %d, want 13", got)
	}
	if got := NetScore(90, 13); got != 77 {
		t.Errorf("NetScore = %d, want 77", got)
	}
}

func TestCategory(t *testing.T) {
	cases := []struct {
		index float64
		want  int
	}{
		{0, 1}, {5.4, 1}, {5.5, 2}, {12.4, 2}, {20.4, 3}, {28.4, 4}, {30, 5},
	}
	for _, c := range cases {
		if got := Category(c.index); got != c.want {
			t.Errorf("Category(%v) = %d, want %d", c.index, got, c.want)
		}
	}
}

func TestRefreshDerivesStatsAndIndex(t *testing.T) {
	scores := []int{90, 85, 88, 92, 87, 95, 83, 100}
	c := domain.NewRoundCollection()
	for _, s := range scores {
		c.Rounds = append(c.Rounds, round(s, 72.0, 113))
	}

	Refresh(c)

	if c.Stats.RoundsPlayed != 8 {
		t.Errorf("roundsPlayed = %d, want 8", c.Stats.RoundsPlayed)
	}
	if c.Stats.BestScore == nil || *c.Stats.BestScore != 83 {
		t.Errorf("bestScore = %v, want 83", c.Stats.BestScore)
	}
	if c.Stats.AverageScore == nil || *c.Stats.AverageScore != 90.0 {
		t.Errorf("averageScore = %v, want 90.0", c.Stats.AverageScore)
	}
	if c.HandicapIndex == nil || *c.HandicapIndex != 11.5 {
		t.Errorf("handicapIndex = %v, want 11.5", c.HandicapIndex)
	}
}

func TestRefreshEmptyCollection(t *testing.T) {
	c := domain.NewRoundCollection()
	Refresh(c)

	if c.HandicapIndex != nil {
		t.Errorf("handicapIndex = %v, want nil", c.HandicapIndex)
	}
	if c.Stats.RoundsPlayed != 0 || c.Stats.BestScore != nil || c.Stats.AverageScore != nil {
		t.Errorf("stats = %+v, want zero values", c.Stats)
	}
}

func TestRefreshUndeterminedBelowThreeRounds(t *testing.T) {
	// A single stored round still contributes to stats but not the index.
	c := domain.NewRoundCollection()
	c.Rounds = append(c.Rounds, round(90, 72.8, 129))

	Refresh(c)

	if c.HandicapIndex != nil {
		t.Errorf("handicapIndex = %v, want nil with one round", c.HandicapIndex)
	}
	if c.Stats.RoundsPlayed != 1 {
		t.Errorf("roundsPlayed = %d, want 1", c.Stats.RoundsPlayed)
	}
}
