package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRecomputeFromRatings_Mean(t *testing.T) {
	agg := RecomputeFromRatings([]int{5, 4, 3})

	assert.InDelta(t, 4.0, agg.Rating, 1e-9)
	assert.Equal(t, 3, agg.ReviewCount)
}

func TestRecomputeFromRatings_Empty(t *testing.T) {
	agg := RecomputeFromRatings(nil)

	assert.Zero(t, agg.Rating)
	assert.Zero(t, agg.ReviewCount)
}

func TestRecomputeFromRatings_SingleRating(t *testing.T) {
	agg := RecomputeFromRatings([]int{5})

	assert.InDelta(t, 5.0, agg.Rating, 1e-9)
	assert.Equal(t, 1, agg.ReviewCount)
}

func TestApplyIncremental_WeightedMean(t *testing.T) {
	agg := RatingAggregate{Rating: 4.0, ReviewCount: 3}

	next := agg.ApplyIncremental(2)

	// (4.0*3 + 2) / 4 == 3.5
	assert.InDelta(t, 3.5, next.Rating, 1e-9)
	assert.Equal(t, 4, next.ReviewCount)
}

func TestApplyIncremental_FromZero(t *testing.T) {
	next := RatingAggregate{}.ApplyIncremental(5)

	assert.InDelta(t, 5.0, next.Rating, 1e-9)
	assert.Equal(t, 1, next.ReviewCount)
}

func TestApplyIncremental_AppliedTwiceCountsTwice(t *testing.T) {
	// Two order lines for the same product each contribute separately.
	agg := RatingAggregate{Rating: 4.0, ReviewCount: 2}

	agg = agg.ApplyIncremental(5)
	agg = agg.ApplyIncremental(5)

	assert.Equal(t, 4, agg.ReviewCount)
	assert.InDelta(t, 4.5, agg.Rating, 1e-9) // (4*2 + 5 + 5) / 4
}

func TestRecomputeAfterIncremental_DiscardsOrderContribution(t *testing.T) {
	// The two aggregation policies use disjoint sources of truth: a full
	// recompute from the review set erases whatever order ratings folded in.
	agg := RecomputeFromRatings([]int{4, 4})
	agg = agg.ApplyIncremental(1)
	assert.InDelta(t, 3.0, agg.Rating, 1e-9)
	assert.Equal(t, 3, agg.ReviewCount)

	agg = RecomputeFromRatings([]int{4, 4})
	assert.InDelta(t, 4.0, agg.Rating, 1e-9)
	assert.Equal(t, 2, agg.ReviewCount)
}

func TestIsValidRating(t *testing.T) {
	assert.False(t, IsValidRating(0))
	assert.True(t, IsValidRating(1))
	assert.True(t, IsValidRating(5))
	assert.False(t, IsValidRating(6))
	assert.False(t, IsValidRating(-1))
}
