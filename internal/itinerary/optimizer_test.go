package itinerary

import (
	"context"
	"errors"
	"testing"

	"tripnav/internal/model"
	"tripnav/internal/store"
)

func optimizerFixture(t *testing.T) (*store.Memory, *countingCache, *Optimizer, model.Trip) {
	t.Helper()
	st := store.NewMemory()
	c := newCountingCache()
	trip, err := st.CreateTrip(context.Background(), "u_1", model.TripInput{Title: "Seoul"})
	if err != nil {
		t.Fatalf("CreateTrip: %v", err)
	}
	return st, c, NewOptimizer(st, c), trip
}

func seedEntry(t *testing.T, st *store.Memory, tripID string, day int, at, title string, place *model.Place) model.ItineraryEntry {
	t.Helper()
	e, err := st.InsertEntry(context.Background(), model.ItineraryEntry{
		TripID: tripID, Day: day, Time: at, Title: title, Place: place,
	})
	if err != nil {
		t.Fatalf("InsertEntry: %v", err)
	}
	return e
}

func TestOptimizeRejectsBadDay(t *testing.T) {
	_, _, o, trip := optimizerFixture(t)
	var ve *ValidationError
	if _, err := o.Optimize(context.Background(), trip.ID, 0); !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestOptimizeReordersAndRetimes(t *testing.T) {
	ctx := context.Background()
	st, _, o, trip := optimizerFixture(t)

	// A has no position; B and C do, and C is farther north than B.
	seedEntry(t, st, trip.ID, 1, "09:00", "A", nil)
	seedEntry(t, st, trip.ID, 1, "10:00", "B", &model.Place{Lat: 37.50, Lng: 127.02})
	seedEntry(t, st, trip.ID, 1, "11:00", "C", &model.Place{Lat: 37.57, Lng: 126.98})

	res, err := o.Optimize(ctx, trip.ID, 1)
	if err != nil {
		t.Fatalf("Optimize: %v", err)
	}
	if len(res.Updated) != 3 || len(res.Conflicted) != 0 {
		t.Fatalf("unexpected result %+v", res)
	}

	// toured stops first in visiting order, floating stop last; the day still
	// starts at the old first entry's 09:00 and steps by 90 minutes
	wantTitles := []string{"B", "C", "A"}
	wantTimes := []string{"09:00", "10:30", "12:00"}
	for i, e := range res.Entries {
		if e.Title != wantTitles[i] || e.Time != wantTimes[i] {
			t.Fatalf("slot %d = %s@%s, want %s@%s", i, e.Title, e.Time, wantTitles[i], wantTimes[i])
		}
		if e.Version != 1 {
			t.Fatalf("each rewrite bumps the version, got %+v", e)
		}
	}

	// the store's time ordering now matches the tour
	stored, _ := st.ListEntries(ctx, trip.ID, 1)
	for i, e := range stored {
		if e.Title != wantTitles[i] {
			t.Fatalf("stored order %d = %s, want %s", i, e.Title, wantTitles[i])
		}
	}
}

func TestOptimizeIsIdempotent(t *testing.T) {
	ctx := context.Background()
	st, _, o, trip := optimizerFixture(t)
	seedEntry(t, st, trip.ID, 1, "09:00", "A", nil)
	seedEntry(t, st, trip.ID, 1, "10:00", "B", &model.Place{Lat: 37.50, Lng: 127.02})
	seedEntry(t, st, trip.ID, 1, "11:00", "C", &model.Place{Lat: 37.57, Lng: 126.98})

	first, err := o.Optimize(ctx, trip.ID, 1)
	if err != nil {
		t.Fatalf("first Optimize: %v", err)
	}
	second, err := o.Optimize(ctx, trip.ID, 1)
	if err != nil {
		t.Fatalf("second Optimize: %v", err)
	}
	for i := range first.Entries {
		if first.Entries[i].ID != second.Entries[i].ID || first.Entries[i].Time != second.Entries[i].Time {
			t.Fatalf("second run changed slot %d: %+v vs %+v", i, first.Entries[i], second.Entries[i])
		}
	}
}

func TestOptimizeDefaultStartWhenFirstTimeUnparseable(t *testing.T) {
	ctx := context.Background()
	st, _, o, trip := optimizerFixture(t)
	seedEntry(t, st, trip.ID, 1, "", "B", &model.Place{Lat: 37.50, Lng: 127.02})
	seedEntry(t, st, trip.ID, 1, "", "C", &model.Place{Lat: 37.57, Lng: 126.98})

	res, err := o.Optimize(ctx, trip.ID, 1)
	if err != nil {
		t.Fatalf("Optimize: %v", err)
	}
	if res.Entries[0].Time != "09:00" || res.Entries[1].Time != "10:30" {
		t.Fatalf("expected the 09:00 default start, got %+v", res.Entries)
	}
}

func TestOptimizeTrivialDaysWriteNothing(t *testing.T) {
	ctx := context.Background()
	st, c, o, trip := optimizerFixture(t)

	// empty day
	res, err := o.Optimize(ctx, trip.ID, 1)
	if err != nil || len(res.Updated) != 0 {
		t.Fatalf("empty day: %+v, %v", res, err)
	}

	// single entry
	one := seedEntry(t, st, trip.ID, 2, "09:00", "solo", &model.Place{Lat: 37.5, Lng: 127.0})
	res, err = o.Optimize(ctx, trip.ID, 2)
	if err != nil || len(res.Updated) != 0 {
		t.Fatalf("single entry: %+v, %v", res, err)
	}
	cur, _ := st.GetEntry(ctx, one.ID)
	if cur.Version != 0 || cur.Time != "09:00" {
		t.Fatalf("trivial runs must not write, got %+v", cur)
	}

	// no entry has coordinates
	seedEntry(t, st, trip.ID, 3, "09:00", "x", nil)
	seedEntry(t, st, trip.ID, 3, "10:00", "y", &model.Place{Lat: 0, Lng: 0})
	res, err = o.Optimize(ctx, trip.ID, 3)
	if err != nil || len(res.Updated) != 0 || len(res.Entries) != 2 {
		t.Fatalf("no coords: %+v, %v", res, err)
	}

	if c.evicts != 0 || c.evictAlls != 0 {
		t.Fatalf("trivial runs must not evict, evicts=%d evictAlls=%d", c.evicts, c.evictAlls)
	}
}

func TestOptimizeEvictsOnceAfterWrites(t *testing.T) {
	ctx := context.Background()
	st, c, o, trip := optimizerFixture(t)
	seedEntry(t, st, trip.ID, 1, "09:00", "B", &model.Place{Lat: 37.50, Lng: 127.02})
	seedEntry(t, st, trip.ID, 1, "10:00", "C", &model.Place{Lat: 37.57, Lng: 126.98})
	if _, err := o.Optimize(ctx, trip.ID, 1); err != nil {
		t.Fatalf("Optimize: %v", err)
	}
	if c.evicts != 1 || c.evictAlls != 0 {
		t.Fatalf("expected one targeted evict, evicts=%d evictAlls=%d", c.evicts, c.evictAlls)
	}
}

// conflictStore passes through to a real store but fails UpdateEntry for one
// id, simulating a concurrent edit landing mid-optimization.
type conflictStore struct {
	store.Store
	failID string
}

func (s *conflictStore) UpdateEntry(ctx context.Context, entryID string, expectedVersion int, mutate func(*model.ItineraryEntry)) (model.ItineraryEntry, error) {
	if entryID == s.failID {
		return model.ItineraryEntry{}, store.ErrConflict
	}
	return s.Store.UpdateEntry(ctx, entryID, expectedVersion, mutate)
}

func TestOptimizePartialConflict(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemory()
	c := newCountingCache()
	trip, _ := st.CreateTrip(ctx, "u_1", model.TripInput{Title: "Seoul"})

	b := seedEntry(t, st, trip.ID, 1, "09:00", "B", &model.Place{Lat: 37.50, Lng: 127.02})
	cEnt := seedEntry(t, st, trip.ID, 1, "10:00", "C", &model.Place{Lat: 37.57, Lng: 126.98})
	a := seedEntry(t, st, trip.ID, 1, "11:00", "A", nil)

	o := NewOptimizer(&conflictStore{Store: st, failID: cEnt.ID}, c)
	res, err := o.Optimize(ctx, trip.ID, 1)

	var partial *PartialOptimizationError
	if !errors.As(err, &partial) {
		t.Fatalf("expected PartialOptimizationError, got %v", err)
	}
	if len(partial.Updated) != 2 || len(partial.Conflicted) != 1 || partial.Conflicted[0] != cEnt.ID {
		t.Fatalf("unexpected partial report %+v", partial)
	}
	if len(res.Updated) != 2 {
		t.Fatalf("committed writes must be reported, got %+v", res)
	}

	// the two non-conflicted entries took their new times
	gotB, _ := st.GetEntry(ctx, b.ID)
	gotA, _ := st.GetEntry(ctx, a.ID)
	if gotB.Version != 1 || gotA.Version != 1 {
		t.Fatalf("non-conflicted writes must commit, B=%+v A=%+v", gotB, gotA)
	}
	gotC, _ := st.GetEntry(ctx, cEnt.ID)
	if gotC.Version != 0 || gotC.Time != "10:00" {
		t.Fatalf("the conflicted entry must be untouched, got %+v", gotC)
	}

	// writes landed, so the day's snapshot was still evicted
	if c.evicts != 1 {
		t.Fatalf("expected one targeted evict, got %d", c.evicts)
	}
}
