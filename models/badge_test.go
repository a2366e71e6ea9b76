package models

import (
	"testing"

	"dev-overflow/lookups"

	"github.com/stretchr/testify/assert"
)

func TestComputeBadges(t *testing.T) {

	// empty profile earns nothing
	counts := ComputeBadges([]BadgeCriterion{
		{Kind: lookups.BCquestionCount, Count: 0},
		{Kind: lookups.BCanswerCount, Count: 0},
	})
	assert.Equal(t, BadgeCounts{}, counts)

	// one criterion per tier
	counts = ComputeBadges([]BadgeCriterion{
		{Kind: lookups.BCquestionCount, Count: 10},  // bronze
		{Kind: lookups.BCanswerCount, Count: 50},    // silver
		{Kind: lookups.BCanswerUpvotes, Count: 100}, // gold
	})
	assert.Equal(t, BadgeCounts{Gold: 1, Silver: 2, Bronze: 3}, counts)
}

// a count that meets gold scores in all three tallies
func TestComputeBadgesCumulative(t *testing.T) {

	counts := ComputeBadges([]BadgeCriterion{
		{Kind: lookups.BCquestionUpvotes, Count: 250},
	})
	assert.Equal(t, BadgeCounts{Gold: 1, Silver: 1, Bronze: 1}, counts)
}

// views use their own thresholds (1000/10000/100000)
func TestComputeBadgesViews(t *testing.T) {

	counts := ComputeBadges([]BadgeCriterion{
		{Kind: lookups.BCtotalViews, Count: 999},
	})
	assert.Equal(t, BadgeCounts{}, counts)

	counts = ComputeBadges([]BadgeCriterion{
		{Kind: lookups.BCtotalViews, Count: 10000},
	})
	assert.Equal(t, BadgeCounts{Silver: 1, Bronze: 1}, counts)
}

// growing a count can never lose a badge
func TestComputeBadgesMonotonic(t *testing.T) {

	previous := BadgeCounts{}
	for _, count := range []int64{0, 9, 10, 49, 50, 99, 100, 5000} {
		counts := ComputeBadges([]BadgeCriterion{
			{Kind: lookups.BCanswerCount, Count: count},
		})
		assert.GreaterOrEqual(t, counts.Bronze, previous.Bronze)
		assert.GreaterOrEqual(t, counts.Silver, previous.Silver)
		assert.GreaterOrEqual(t, counts.Gold, previous.Gold)
		previous = counts
	}
}
