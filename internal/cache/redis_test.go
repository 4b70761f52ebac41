package cache

import (
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"

	"tripnav/internal/model"
)

func newRedisCache(t *testing.T) (*Redis, *miniredis.Miniredis) {
	t.Helper()
	s := miniredis.RunT(t)
	c, err := NewRedis("redis://" + s.Addr())
	if err != nil {
		t.Fatalf("NewRedis: %v", err)
	}
	return c, s
}

func TestRedisPutGet(t *testing.T) {
	c, _ := newRedisCache(t)
	entries := []model.ItineraryEntry{
		{ID: "e1", TripID: "t1", Day: 1, Time: "09:00", Title: "Breakfast"},
		{ID: "e2", TripID: "t1", Day: 1, Time: "10:30", Title: "Museum", Place: &model.Place{Lat: 37.5, Lng: 127.0}},
	}
	c.Put("t1", 1, entries, time.Minute)
	got, ok := c.Get("t1", 1)
	if !ok {
		t.Fatal("expected hit")
	}
	if len(got) != 2 || got[0].ID != "e1" || got[1].Place == nil || got[1].Place.Lat != 37.5 {
		t.Fatalf("snapshot did not round-trip: %+v", got)
	}
}

func TestRedisExpiry(t *testing.T) {
	c, s := newRedisCache(t)
	c.Put("t1", 1, []model.ItineraryEntry{{ID: "e1"}}, 30*time.Minute)
	s.FastForward(29 * time.Minute)
	if _, ok := c.Get("t1", 1); !ok {
		t.Fatal("expected hit before TTL")
	}
	s.FastForward(2 * time.Minute)
	if _, ok := c.Get("t1", 1); ok {
		t.Fatal("expected miss after TTL")
	}
}

func TestRedisEvict(t *testing.T) {
	c, _ := newRedisCache(t)
	c.Put("t1", 1, []model.ItineraryEntry{{ID: "a"}}, time.Minute)
	c.Put("t1", 2, []model.ItineraryEntry{{ID: "b"}}, time.Minute)
	c.Evict("t1", 1)
	if _, ok := c.Get("t1", 1); ok {
		t.Fatal("evicted key must miss")
	}
	if _, ok := c.Get("t1", 2); !ok {
		t.Fatal("other keys must survive a targeted evict")
	}
}

func TestRedisEvictAll(t *testing.T) {
	c, s := newRedisCache(t)
	c.Put("t1", 1, []model.ItineraryEntry{{ID: "a"}}, time.Minute)
	c.Put("t2", 5, []model.ItineraryEntry{{ID: "b"}}, time.Minute)
	// a foreign key outside the cache prefix must not be touched
	s.Set("session:abc", "keep")
	c.EvictAll()
	if _, ok := c.Get("t1", 1); ok {
		t.Fatal("expected miss after EvictAll")
	}
	if _, ok := c.Get("t2", 5); ok {
		t.Fatal("expected miss after EvictAll")
	}
	if v, err := s.Get("session:abc"); err != nil || v != "keep" {
		t.Fatalf("EvictAll must only remove its own prefix, got %q err=%v", v, err)
	}
}

func TestRedisDownDegradesToMiss(t *testing.T) {
	c, s := newRedisCache(t)
	c.Put("t1", 1, []model.ItineraryEntry{{ID: "a"}}, time.Minute)
	s.Close()
	if _, ok := c.Get("t1", 1); ok {
		t.Fatal("unreachable redis must read as a miss")
	}
}
