package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTransitionTable(t *testing.T) {

	tests := []struct {
		name     string
		dir      int32
		hasUp    bool
		hasDown  bool
		expected voteOutcome
	}{
		{
			name: "fresh upvote",
			dir:  VoteUp,
			expected: voteOutcome{
				addTo:      "upVotes",
				voterDelta: 2, authorDelta: 10,
				record:   true,
				userVote: VoteUp,
			},
		},
		{
			name: "retract upvote", dir: VoteUp, hasUp: true,
			expected: voteOutcome{
				pullFrom:   "upVotes",
				voterDelta: -2, authorDelta: -10,
				retract:  true,
				userVote: VoteNeutral,
			},
		},
		{
			name: "switch downvote to upvote", dir: VoteUp, hasDown: true,
			expected: voteOutcome{
				addTo: "upVotes", pullFrom: "downVotes",
				voterDelta: 4, authorDelta: 20,
				record: true, retractOpposite: true,
				userVote: VoteUp,
			},
		},
		{
			name: "fresh downvote", dir: VoteDown,
			expected: voteOutcome{
				addTo:      "downVotes",
				voterDelta: -2, authorDelta: -10,
				record:   true,
				userVote: VoteDown,
			},
		},
		{
			name: "retract downvote", dir: VoteDown, hasDown: true,
			expected: voteOutcome{
				pullFrom:   "downVotes",
				voterDelta: 2, authorDelta: 10,
				retract:  true,
				userVote: VoteNeutral,
			},
		},
		{
			name: "switch upvote to downvote", dir: VoteDown, hasUp: true,
			expected: voteOutcome{
				addTo: "downVotes", pullFrom: "upVotes",
				voterDelta: -4, authorDelta: -20,
				record: true, retractOpposite: true,
				userVote: VoteDown,
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, transition(tc.dir, tc.hasUp, tc.hasDown))
		})
	}
}

// a vote never lands in a set without leaving the other one
func TestTransitionSetsNeverOverlap(t *testing.T) {

	for _, dir := range []int32{VoteUp, VoteDown} {
		for _, hasUp := range []bool{false, true} {
			for _, hasDown := range []bool{false, true} {
				if hasUp && hasDown {
					continue // invalid stored state by invariant
				}
				outcome := transition(dir, hasUp, hasDown)
				if outcome.addTo == "upVotes" {
					assert.True(t, !hasDown || outcome.pullFrom == "downVotes")
				}
				if outcome.addTo == "downVotes" {
					assert.True(t, !hasUp || outcome.pullFrom == "upVotes")
				}
				assert.NotEqual(t, outcome.addTo, outcome.pullFrom)
			}
		}
	}
}

// two identical votes in a row must cancel out completely
func TestTransitionToggleIdempotence(t *testing.T) {

	first := transition(VoteUp, false, false)
	second := transition(VoteUp, true, false)

	assert.Equal(t, int32(0), first.voterDelta+second.voterDelta)
	assert.Equal(t, int32(0), first.authorDelta+second.authorDelta)
	assert.Equal(t, VoteNeutral, second.userVote)
	assert.True(t, first.record)
	assert.True(t, second.retract)

	first = transition(VoteDown, false, false)
	second = transition(VoteDown, false, true)

	assert.Equal(t, int32(0), first.voterDelta+second.voterDelta)
	assert.Equal(t, int32(0), first.authorDelta+second.authorDelta)
	assert.Equal(t, VoteNeutral, second.userVote)
}

// voting on own content is allowed; both deltas land on the same account
func TestSelfVoteDeltas(t *testing.T) {

	rep := repAskQuestion // 5

	outcome := transition(VoteUp, false, false)
	rep += outcome.voterDelta + outcome.authorDelta

	assert.Equal(t, int32(17), rep)
	assert.Equal(t, VoteUp, outcome.userVote)
}

// user A asks a question (+5), user B upvotes it and then switches to a
// downvote; the running totals must follow the delta table exactly
func TestReputationScenario(t *testing.T) {

	repA := repAskQuestion // 5
	repB := int32(0)

	upvote := transition(VoteUp, false, false)
	repA += upvote.authorDelta
	repB += upvote.voterDelta

	assert.Equal(t, int32(15), repA)
	assert.Equal(t, int32(2), repB)

	switchDown := transition(VoteDown, true, false)
	repA += switchDown.authorDelta
	repB += switchDown.voterDelta

	assert.Equal(t, int32(-5), repA)
	assert.Equal(t, int32(-2), repB)
}
