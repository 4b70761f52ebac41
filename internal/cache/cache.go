// Package cache holds the time-bounded itinerary read cache. The cache is a
// disposable side-table: the store stays authoritative and any key may be
// evicted at any moment without affecting correctness, only freshness.
package cache

import (
	"fmt"
	"sync"
	"time"

	"tripnav/internal/model"
)

// DefaultTTL bounds how stale a cached day may be served.
const DefaultTTL = 30 * time.Minute

// Cache stores ordered per-day itinerary snapshots keyed by (tripId, day).
type Cache interface {
	// Get returns the cached snapshot if present and not expired.
	Get(tripID string, day int) ([]model.ItineraryEntry, bool)
	// Put replaces the snapshot for the key, expiring after ttl.
	Put(tripID string, day int, entries []model.ItineraryEntry, ttl time.Duration)
	// Evict removes one key.
	Evict(tripID string, day int)
	// EvictAll removes every key.
	EvictAll()
}

func key(tripID string, day int) string { return fmt.Sprintf("%s-%d", tripID, day) }

type memEntry struct {
	entries   []model.ItineraryEntry
	expiresAt time.Time
}

// Memory is a mutex-guarded TTL map. Expiry is the only eviction policy for
// reads; the key space is bounded by trip x day pairs and stays small.
type Memory struct {
	mu  sync.Mutex
	m   map[string]memEntry
	now func() time.Time
}

func NewMemory() *Memory {
	return &Memory{m: map[string]memEntry{}, now: time.Now}
}

// NewMemoryWithClock is used by tests to drive expiry deterministically.
func NewMemoryWithClock(now func() time.Time) *Memory {
	return &Memory{m: map[string]memEntry{}, now: now}
}

func (c *Memory) Get(tripID string, day int) ([]model.ItineraryEntry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	ent, ok := c.m[key(tripID, day)]
	if !ok {
		return nil, false
	}
	if !c.now().Before(ent.expiresAt) {
		delete(c.m, key(tripID, day))
		return nil, false
	}
	return append([]model.ItineraryEntry(nil), ent.entries...), true
}

func (c *Memory) Put(tripID string, day int, entries []model.ItineraryEntry, ttl time.Duration) {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	snap := append([]model.ItineraryEntry(nil), entries...)
	c.mu.Lock()
	defer c.mu.Unlock()
	c.m[key(tripID, day)] = memEntry{entries: snap, expiresAt: c.now().Add(ttl)}
}

func (c *Memory) Evict(tripID string, day int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.m, key(tripID, day))
}

func (c *Memory) EvictAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.m = map[string]memEntry{}
}
