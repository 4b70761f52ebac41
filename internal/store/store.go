package store

import (
	"context"
	"errors"

	"tripnav/internal/model"
)

// Store is the persistence interface used by the itinerary service and the
// route optimizer. It is the single source of truth; caches are derived.
type Store interface {
	// Trips
	CreateTrip(ctx context.Context, ownerID string, in model.TripInput) (model.Trip, error)
	GetTrip(ctx context.Context, tripID string) (model.Trip, error)
	ListTrips(ctx context.Context, ownerID string) ([]model.Trip, error)
	DeleteTrip(ctx context.Context, tripID string) error

	// Itinerary entries
	GetEntry(ctx context.Context, entryID string) (model.ItineraryEntry, error)
	ListEntries(ctx context.Context, tripID string, day int) ([]model.ItineraryEntry, error)
	InsertEntry(ctx context.Context, e model.ItineraryEntry) (model.ItineraryEntry, error)
	// UpdateEntry applies mutate to the current row only if its stored version
	// equals expectedVersion, then increments the version. The compare and
	// write are a single atomic step; ErrConflict means nothing was written.
	UpdateEntry(ctx context.Context, entryID string, expectedVersion int, mutate func(*model.ItineraryEntry)) (model.ItineraryEntry, error)
	DeleteEntry(ctx context.Context, entryID string) error
}

var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("version conflict")
)
