package models

import (
	"dev-overflow/lookups"
)

// BadgeCriterion is one aggregate statistic a user is measured by
type BadgeCriterion struct {
	Kind  int   // lookups.BC*
	Count int64 // aggregated value (eg. number of questions asked)
}

// BadgeCounts is the result of the badge calculation, shown on profiles
type BadgeCounts struct {
	Gold   int32 `json:"gold"`
	Silver int32 `json:"silver"`
	Bronze int32 `json:"bronze"`
}

// ComputeBadges derives the badge tallies from aggregate statistics.
// Tiers are cumulative: a count that meets the gold threshold also meets
// silver and bronze and scores in all three tallies.
// Pure function - it is recomputed on every profile read rather than stored.
func ComputeBadges(criteria []BadgeCriterion) BadgeCounts {

	var counts BadgeCounts

	for _, c := range criteria {
		thresholds := lookups.BadgeThresholds(c.Kind)

		if c.Count >= thresholds[0] {
			counts.Bronze++
		}
		if c.Count >= thresholds[1] {
			counts.Silver++
		}
		if c.Count >= thresholds[2] {
			counts.Gold++
		}
	}

	return counts
}
