// Package itinerary implements the per-day itinerary core: cache-aside reads,
// optimistic-concurrency writes, and the route optimizer.
package itinerary

import (
	"context"
	"fmt"
	"log"
	"time"

	"tripnav/internal/cache"
	"tripnav/internal/metrics"
	"tripnav/internal/model"
	"tripnav/internal/store"
)

// Service owns itinerary reads and writes. Reads go through the cache; every
// path that mutates the store also invalidates the cache before returning.
type Service struct {
	store store.Store
	cache cache.Cache
	ttl   time.Duration
}

func NewService(st store.Store, c cache.Cache, ttl time.Duration) *Service {
	if ttl <= 0 {
		ttl = cache.DefaultTTL
	}
	return &Service{store: st, cache: c, ttl: ttl}
}

// Read returns the day's entries ordered by time ascending, cache-aside: a
// fresh cached snapshot is served directly, otherwise the store is read and
// the snapshot cached for the configured TTL.
func (s *Service) Read(ctx context.Context, tripID string, day int) ([]model.ItineraryEntry, error) {
	if day < 1 {
		return nil, invalidf("day", "must be >= 1, got %d", day)
	}
	if entries, ok := s.cache.Get(tripID, day); ok {
		metrics.CacheHits.Inc()
		return entries, nil
	}
	metrics.CacheMisses.Inc()
	entries, err := s.store.ListEntries(ctx, tripID, day)
	if err != nil {
		return nil, err
	}
	s.cache.Put(tripID, day, entries, s.ttl)
	return entries, nil
}

// Create validates the owning trip, persists a version-0 entry, and evicts
// exactly the (tripId, day) cache key. A targeted evict is enough here: a new
// entry cannot already sit in any other cached day.
func (s *Service) Create(ctx context.Context, tripID string, req model.EntryRequest) (model.ItineraryEntry, error) {
	if req.Day < 1 {
		return model.ItineraryEntry{}, invalidf("day", "must be >= 1, got %d", req.Day)
	}
	if req.Title == "" {
		return model.ItineraryEntry{}, invalidf("title", "must not be empty")
	}
	if _, err := s.store.GetTrip(ctx, tripID); err != nil {
		return model.ItineraryEntry{}, fmt.Errorf("create entry: trip %s: %w", tripID, err)
	}
	e := model.ItineraryEntry{
		TripID:   tripID,
		Day:      req.Day,
		Time:     req.Time,
		Kind:     req.Kind,
		Title:    req.Title,
		Location: req.Location,
		Color:    req.Color,
		Place:    req.Place,
	}
	created, err := s.store.InsertEntry(ctx, e)
	if err != nil {
		return model.ItineraryEntry{}, err
	}
	s.cache.Evict(tripID, req.Day)
	metrics.CacheEvictions.WithLabelValues("targeted").Inc()
	log.Printf("itinerary: created entry %s (trip=%s day=%d), cache key evicted", created.ID, tripID, req.Day)
	return created, nil
}

// Update applies the request's field changes under the store's version check.
// req.Version must be the version the editor last read; on mismatch the store
// reports ErrConflict and nothing is written.
//
// The whole cache is evicted rather than one key: the entry's day is not part
// of the update key, and a day move would leave the old day's snapshot stale.
// Trading eviction precision for correctness is deliberate, not an oversight.
func (s *Service) Update(ctx context.Context, entryID string, req model.EntryRequest) (model.ItineraryEntry, error) {
	// day is optional on update; zero means "leave unchanged"
	if req.Day < 0 {
		return model.ItineraryEntry{}, invalidf("day", "must be >= 1, got %d", req.Day)
	}
	updated, err := s.store.UpdateEntry(ctx, entryID, req.Version, func(e *model.ItineraryEntry) {
		if req.Day > 0 {
			e.Day = req.Day
		}
		if req.Time != "" {
			e.Time = req.Time
		}
		if req.Kind != "" {
			e.Kind = req.Kind
		}
		if req.Title != "" {
			e.Title = req.Title
		}
		if req.Location != "" {
			e.Location = req.Location
		}
		if req.Color != "" {
			e.Color = req.Color
		}
		if req.Place != nil {
			e.Place = req.Place
		}
	})
	if err != nil {
		return model.ItineraryEntry{}, err
	}
	s.cache.EvictAll()
	metrics.CacheEvictions.WithLabelValues("all").Inc()
	log.Printf("itinerary: updated entry %s to v%d, all cache keys evicted", entryID, updated.Version)
	return updated, nil
}

// Delete loads the entry to learn its trip and day, removes it, and evicts
// the whole cache (same precision/correctness tradeoff as Update). The
// removed entry is returned so callers can announce what changed.
func (s *Service) Delete(ctx context.Context, entryID string) (model.ItineraryEntry, error) {
	e, err := s.store.GetEntry(ctx, entryID)
	if err != nil {
		return model.ItineraryEntry{}, err
	}
	if err := s.store.DeleteEntry(ctx, entryID); err != nil {
		return model.ItineraryEntry{}, err
	}
	s.cache.EvictAll()
	metrics.CacheEvictions.WithLabelValues("all").Inc()
	log.Printf("itinerary: deleted entry %s (trip=%s day=%d), all cache keys evicted", entryID, e.TripID, e.Day)
	return e, nil
}
