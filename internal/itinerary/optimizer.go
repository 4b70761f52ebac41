package itinerary

import (
	"context"
	"errors"
	"fmt"
	"log"

	"tripnav/internal/cache"
	"tripnav/internal/metrics"
	"tripnav/internal/model"
	"tripnav/internal/opt"
	"tripnav/internal/store"
)

// defaultStartMinutes is used when the first entry's time is absent or
// unparseable: 09:00.
const defaultStartMinutes = 9 * 60

// stopSpacingMinutes is the fixed gap between consecutive stops after
// optimization. Dwell and travel times are unknown to this component (no
// routing data is available here), so a fixed legible spacing is assigned
// instead of a fabricated travel-time estimate.
const stopSpacingMinutes = 90

// Optimizer reorders a day's stops with a greedy nearest-neighbor tour and
// rewrites their visit times. It reads and writes the store directly; the
// cache is only invalidated, never consulted.
type Optimizer struct {
	store store.Store
	cache cache.Cache
}

func NewOptimizer(st store.Store, c cache.Cache) *Optimizer {
	return &Optimizer{store: st, cache: c}
}

// OptimizeResult reports the final order and which per-entry writes landed.
type OptimizeResult struct {
	Entries    []model.ItineraryEntry `json:"entries"`
	Updated    []string               `json:"updated"`
	Conflicted []string               `json:"conflicted,omitempty"`
}

// Optimize reorders the stops of (tripID, day).
//
// Stops without coordinates cannot be placed geometrically; they keep their
// relative order and land after the toured stops at the end of the day. The
// tour anchors at the first coordinate-bearing stop in time order. Writes are
// per-entry and version-checked: a concurrent edit conflicts that one entry
// only, the rest still commit, and the conflict is reported as a
// PartialOptimizationError.
func (o *Optimizer) Optimize(ctx context.Context, tripID string, day int) (OptimizeResult, error) {
	if day < 1 {
		return OptimizeResult{}, invalidf("day", "must be >= 1, got %d", day)
	}
	// Authoritative read: the cache may be stale and is never trusted here.
	all, err := o.store.ListEntries(ctx, tripID, day)
	if err != nil {
		return OptimizeResult{}, fmt.Errorf("optimize: list entries: %w", err)
	}
	if len(all) < 2 {
		metrics.OptimizeRuns.WithLabelValues("noop").Inc()
		return OptimizeResult{Entries: all, Updated: []string{}}, nil
	}

	withCoords := []model.ItineraryEntry{}
	withoutCoords := []model.ItineraryEntry{}
	for _, e := range all {
		if e.HasCoords() {
			withCoords = append(withCoords, e)
		} else {
			withoutCoords = append(withoutCoords, e)
		}
	}
	if len(withCoords) == 0 {
		// no anchor to order against; leave the day untouched
		metrics.OptimizeRuns.WithLabelValues("noop").Inc()
		return OptimizeResult{Entries: all, Updated: []string{}}, nil
	}

	points := make([]opt.Point, len(withCoords))
	for i, e := range withCoords {
		points[i] = opt.Point{Lat: e.Place.Lat, Lng: e.Place.Lng}
	}
	order := opt.NearestNeighborOrder(points)

	final := make([]model.ItineraryEntry, 0, len(all))
	for _, idx := range order {
		final = append(final, withCoords[idx])
	}
	final = append(final, withoutCoords...)

	// The schedule restarts from the pre-optimization first entry's time, so
	// the day still begins when the user planned it to.
	start := defaultStartMinutes
	if h, m, ok := model.ParseClock(all[0].Time); ok {
		start = h*60 + m
	}

	result := OptimizeResult{Entries: make([]model.ItineraryEntry, 0, len(final)), Updated: []string{}}
	wrote := 0
	for i, e := range final {
		newTime := model.FormatClock(start + i*stopSpacingMinutes)
		updated, err := o.store.UpdateEntry(ctx, e.ID, e.Version, func(x *model.ItineraryEntry) {
			x.Time = newTime
		})
		switch {
		case err == nil:
			result.Entries = append(result.Entries, updated)
			result.Updated = append(result.Updated, e.ID)
			wrote++
		case errors.Is(err, store.ErrConflict), errors.Is(err, store.ErrNotFound):
			// concurrently edited or removed; skip it and report, the rest of
			// the writes still go through
			result.Conflicted = append(result.Conflicted, e.ID)
		default:
			if wrote > 0 {
				o.cache.Evict(tripID, day)
				metrics.CacheEvictions.WithLabelValues("targeted").Inc()
			}
			metrics.OptimizeRuns.WithLabelValues("error").Inc()
			return OptimizeResult{}, fmt.Errorf("optimize: update entry %s: %w", e.ID, err)
		}
	}

	if wrote > 0 {
		o.cache.Evict(tripID, day)
		metrics.CacheEvictions.WithLabelValues("targeted").Inc()
	}
	if len(result.Conflicted) > 0 {
		metrics.OptimizeRuns.WithLabelValues("partial").Inc()
		log.Printf("itinerary: optimize trip=%s day=%d partial: %d updated, %d conflicted", tripID, day, wrote, len(result.Conflicted))
		return result, &PartialOptimizationError{Updated: result.Updated, Conflicted: result.Conflicted}
	}
	metrics.OptimizeRuns.WithLabelValues("ok").Inc()
	log.Printf("itinerary: optimize trip=%s day=%d reordered %d stops", tripID, day, wrote)
	return result, nil
}
