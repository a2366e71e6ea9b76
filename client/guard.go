package client

import (
	"sync"
	"time"
)

// Guard prevents double-submission of an action (eg. rapid repeated clicks
// on a vote button) while one instance is still outstanding.
// Earlier revisions used one process-wide flag per action which silently
// dropped legitimate concurrent actions on OTHER items; the guard is
// therefore keyed by (item, action) so only true duplicates are suppressed.
type Guard struct {
}

var guard = struct {
	sync.Mutex
	inflight map[string]time.Time
}{}

func (g Guard) Initialize() {
	guard.inflight = make(map[string]time.Time)
}

// Begin marks the key as in-flight. It returns false if the same key is
// already outstanding - the caller must then treat its action as a no-op.
func (g Guard) Begin(key string) bool {

	guard.Lock()
	defer guard.Unlock()

	if _, found := guard.inflight[key]; found {
		return false
	}

	guard.inflight[key] = time.Now()
	return true
}

// End releases the key. Must be deferred right after a successful Begin.
func (g Guard) End(key string) {
	guard.Lock()
	delete(guard.inflight, key)
	guard.Unlock()
}

// Flush drops stale markers (a crashed request would otherwise block its
// key forever); called by the same ticker that flushes the registry
func (g Guard) Flush() {

	guard.Lock()
	now := time.Now()
	for key, started := range guard.inflight {
		if now.Sub(started).Minutes() > 1 {
			delete(guard.inflight, key)
		}
	}
	guard.Unlock()
}
