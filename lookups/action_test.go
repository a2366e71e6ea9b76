package lookups

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVoteAction(t *testing.T) {

	assert.Equal(t, ActionUpvoteQuestion, VoteAction(ContentQuestion, true))
	assert.Equal(t, ActionDownvoteQuestion, VoteAction(ContentQuestion, false))
	assert.Equal(t, ActionUpvoteAnswer, VoteAction(ContentAnswer, true))
	assert.Equal(t, ActionDownvoteAnswer, VoteAction(ContentAnswer, false))
	assert.Equal(t, "", VoteAction("comment", true))
}
