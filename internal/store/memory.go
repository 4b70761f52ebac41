package store

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"

	"tripnav/internal/model"
)

// Memory is a simple in-memory store used when no DATABASE_URL is set.
type Memory struct {
	mu           sync.Mutex
	trips        map[string]model.Trip
	tripsByOwner map[string][]string
	entries      map[string]model.ItineraryEntry
	byDay        map[string][]string // tripId|day -> entry ids, insertion order
}

func NewMemory() *Memory {
	return &Memory{
		trips:        map[string]model.Trip{},
		tripsByOwner: map[string][]string{},
		entries:      map[string]model.ItineraryEntry{},
		byDay:        map[string][]string{},
	}
}

func dayKey(tripID string, day int) string { return fmt.Sprintf("%s|%d", tripID, day) }

func (m *Memory) CreateTrip(ctx context.Context, ownerID string, in model.TripInput) (model.Trip, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t := model.Trip{
		ID:          uuid.New().String(),
		OwnerID:     ownerID,
		Title:       in.Title,
		Destination: in.Destination,
		StartDate:   in.StartDate,
		EndDate:     in.EndDate,
	}
	m.trips[t.ID] = t
	m.tripsByOwner[ownerID] = append(m.tripsByOwner[ownerID], t.ID)
	return t, nil
}

func (m *Memory) GetTrip(ctx context.Context, tripID string) (model.Trip, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.trips[tripID]
	if !ok {
		return model.Trip{}, ErrNotFound
	}
	return t, nil
}

func (m *Memory) ListTrips(ctx context.Context, ownerID string) ([]model.Trip, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []model.Trip{}
	for _, id := range m.tripsByOwner[ownerID] {
		out = append(out, m.trips[id])
	}
	return out, nil
}

func (m *Memory) DeleteTrip(ctx context.Context, tripID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.trips[tripID]
	if !ok {
		return ErrNotFound
	}
	delete(m.trips, tripID)
	ids := m.tripsByOwner[t.OwnerID]
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id != tripID {
			out = append(out, id)
		}
	}
	m.tripsByOwner[t.OwnerID] = out
	// cascade entries
	for id, e := range m.entries {
		if e.TripID == tripID {
			delete(m.entries, id)
			m.removeFromDay(e, id)
		}
	}
	return nil
}

func (m *Memory) GetEntry(ctx context.Context, entryID string) (model.ItineraryEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[entryID]
	if !ok {
		return model.ItineraryEntry{}, ErrNotFound
	}
	return e, nil
}

func (m *Memory) ListEntries(ctx context.Context, tripID string, day int) ([]model.ItineraryEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := m.byDay[dayKey(tripID, day)]
	out := make([]model.ItineraryEntry, 0, len(ids))
	for _, id := range ids {
		out = append(out, m.entries[id])
	}
	sortByTime(out)
	return out, nil
}

func (m *Memory) InsertEntry(ctx context.Context, e model.ItineraryEntry) (model.ItineraryEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	e.Version = 0
	m.entries[e.ID] = e
	k := dayKey(e.TripID, e.Day)
	m.byDay[k] = append(m.byDay[k], e.ID)
	return e, nil
}

func (m *Memory) UpdateEntry(ctx context.Context, entryID string, expectedVersion int, mutate func(*model.ItineraryEntry)) (model.ItineraryEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.entries[entryID]
	if !ok {
		return model.ItineraryEntry{}, ErrNotFound
	}
	if cur.Version != expectedVersion {
		return model.ItineraryEntry{}, ErrConflict
	}
	next := cur
	if next.Place != nil {
		p := *next.Place
		next.Place = &p
	}
	mutate(&next)
	// identity and the version token are store-owned
	next.ID = cur.ID
	next.TripID = cur.TripID
	next.Version = cur.Version + 1
	if next.Day != cur.Day {
		m.removeFromDay(cur, entryID)
		k := dayKey(next.TripID, next.Day)
		m.byDay[k] = append(m.byDay[k], entryID)
	}
	m.entries[entryID] = next
	return next, nil
}

func (m *Memory) DeleteEntry(ctx context.Context, entryID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[entryID]
	if !ok {
		return ErrNotFound
	}
	delete(m.entries, entryID)
	m.removeFromDay(e, entryID)
	return nil
}

// removeFromDay drops entryID from its day index. Caller holds the lock.
func (m *Memory) removeFromDay(e model.ItineraryEntry, entryID string) {
	k := dayKey(e.TripID, e.Day)
	ids := m.byDay[k]
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id != entryID {
			out = append(out, id)
		}
	}
	if len(out) == 0 {
		delete(m.byDay, k)
	} else {
		m.byDay[k] = out
	}
}

// sortByTime orders entries by parsed "HH:MM" ascending; entries with an
// unparseable time sort after parseable ones, keeping their relative order.
func sortByTime(entries []model.ItineraryEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		hi, mi, oki := model.ParseClock(entries[i].Time)
		hj, mj, okj := model.ParseClock(entries[j].Time)
		if oki && okj {
			return hi*60+mi < hj*60+mj
		}
		return oki && !okj
	})
}
