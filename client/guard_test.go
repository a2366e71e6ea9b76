package client

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGuard(t *testing.T) {

	var g Guard
	g.Initialize()

	assert.True(t, g.Begin("user1_vote_q1"))

	// duplicate of an outstanding action is refused
	assert.False(t, g.Begin("user1_vote_q1"))

	// different key is unaffected
	assert.True(t, g.Begin("user1_vote_q2"))
	assert.True(t, g.Begin("user2_vote_q1"))

	g.End("user1_vote_q1")
	assert.True(t, g.Begin("user1_vote_q1"))
}

func TestGuardFlush(t *testing.T) {

	var g Guard
	g.Initialize()

	assert.True(t, g.Begin("user1_save_q1"))

	// fresh markers survive a flush
	g.Flush()
	assert.False(t, g.Begin("user1_save_q1"))

	// stale markers (crashed request) are dropped
	guard.Lock()
	guard.inflight["user1_save_q1"] = time.Now().Add(-2 * time.Minute)
	guard.Unlock()

	g.Flush()
	assert.True(t, g.Begin("user1_save_q1"))
}
