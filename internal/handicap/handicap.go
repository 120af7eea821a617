// Package handicap implements the USGA-style differential handicap math.
// All functions are pure; the rounding mode everywhere is half-away-from-zero
// to one decimal place.
package handicap

import (
	"math"
	"sort"

	"golf-tracker/internal/constants"
	"golf-tracker/internal/domain"
)

// Differential is the normalized per-round score measure,
// (score - courseRating) * 113 / slopeRating.
func Differential(score int, courseRating float64, slopeRating int) float64 {
	return (float64(score) - courseRating) * constants.NeutralSlope / float64(slopeRating)
}

// Calculate derives a handicap index from the supplied rounds. Callers pass
// at most the latest 8 rounds. The second return value is false when fewer
// than 3 rounds are available and the index is undetermined.
func Calculate(rounds []domain.Round) (float64, bool) {
	if len(rounds) < 3 {
		return 0, false
	}

	diffs := make([]float64, len(rounds))
	for i, r := range rounds {
		diffs[i] = Differential(r.Score, r.CourseRating, r.SlopeRating)
	}
	sort.Float64s(diffs)

	n := numToUse(len(rounds))
	var sum float64
	for _, d := range diffs[:n] {
		sum += d
	}

	index := roundTenth(sum / float64(n) * 0.96)
	if index < 0 {
		index = 0
	}
	return index, true
}

func numToUse(n int) int {
	switch {
	case n <= 5:
		return 1
	case n <= 8:
		return 2
	default:
		return int(math.Floor(float64(n) * 0.4))
	}
}

// CourseHandicap adjusts an index for a specific course, clamped to >= 0.
func CourseHandicap(index float64, slopeRating int, courseRating, par float64) int {
	ch := int(math.Round(index*float64(slopeRating)/constants.NeutralSlope + (courseRating - par)))
	if ch < 0 {
		ch = 0
	}
	return ch
}

// PlayingHandicap applies a format allowance to a course handicap.
func PlayingHandicap(courseHandicap int, allowance float64) int {
	return int(math.Round(float64(courseHandicap) * allowance))
}

// NetScore is the gross score reduced by the playing handicap.
func NetScore(gross, playingHandicap int) int {
	return gross - playingHandicap
}

// Category buckets an index for stroke-index purposes.
func Category(index float64) int {
	switch {
	case index <= 5.4:
		return 1
	case index <= 12.4:
		return 2
	case index <= 20.4:
		return 3
	case index <= 28.4:
		return 4
	default:
		return 5
	}
}

// Refresh recomputes the derived stats and handicap index of a collection in
// place. The index is fed by the latest rounds in insertion order, capped at
// the handicap window. This is the single derivation path shared by the
// store, backup recovery and the sync merge.
func Refresh(c *domain.RoundCollection) {
	if len(c.Rounds) == 0 {
		c.Stats = domain.Stats{}
		c.HandicapIndex = nil
		return
	}

	best := c.Rounds[0].Score
	var sum int
	for _, r := range c.Rounds {
		if r.Score < best {
			best = r.Score
		}
		sum += r.Score
	}
	avg := roundTenth(float64(sum) / float64(len(c.Rounds)))
	c.Stats = domain.Stats{
		RoundsPlayed: len(c.Rounds),
		BestScore:    &best,
		AverageScore: &avg,
	}

	recent := c.Rounds
	if len(recent) > constants.HandicapWindow {
		recent = recent[:constants.HandicapWindow]
	}
	if index, ok := Calculate(recent); ok {
		c.HandicapIndex = &index
	} else {
		c.HandicapIndex = nil
	}
}

func roundTenth(x float64) float64 {
	return math.Round(x*10) / 10
}
