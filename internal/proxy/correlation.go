package proxy

import (
	"sync"
	"time"
)

// tracker records when each in-flight request id left the proxy so the
// matching response can be timed. Both relay directions touch it, so every
// access goes through the mutex. Keys are raw JSON id bytes; a duplicate id
// overwrites the earlier entry and the last write wins. Entries for requests
// that never get a response stay until the session ends.
type tracker struct {
	mu      sync.Mutex
	started map[string]time.Time
}

func newTracker() *tracker {
	return &tracker{started: make(map[string]time.Time)}
}

// Track records the send time for a request id.
func (t *tracker) Track(key string, at time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.started[key] = at
}

// Resolve returns the send time for a response id and removes the entry.
func (t *tracker) Resolve(key string) (time.Time, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	at, ok := t.started[key]
	if ok {
		delete(t.started, key)
	}
	return at, ok
}

// Len reports how many requests are still waiting for a response.
func (t *tracker) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.started)
}
