package api

import (
	"testing"
	"time"
)

func TestBrokerPublishSubscribe(t *testing.T) {
	b := NewBroker()
	ch := b.Subscribe("t1")
	defer b.Unsubscribe("t1", ch)

	b.Publish("t1", TripEvent{Type: "itinerary.created", Data: map[string]any{"entryId": "e1"}})
	select {
	case evt := <-ch:
		if evt.Type != "itinerary.created" || evt.Data["entryId"] != "e1" {
			t.Fatalf("unexpected event %+v", evt)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
	}
}

func TestBrokerIsolatesTrips(t *testing.T) {
	b := NewBroker()
	ch := b.Subscribe("t1")
	defer b.Unsubscribe("t1", ch)

	b.Publish("t2", TripEvent{Type: "itinerary.created"})
	select {
	case evt := <-ch:
		t.Fatalf("subscriber for t1 must not see t2 events, got %+v", evt)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestBrokerUnsubscribeClosesChannel(t *testing.T) {
	b := NewBroker()
	ch := b.Subscribe("t1")
	b.Unsubscribe("t1", ch)
	if _, ok := <-ch; ok {
		t.Fatal("expected a closed channel")
	}
	// publishing after unsubscribe must not panic
	b.Publish("t1", TripEvent{Type: "itinerary.updated"})
}

func TestBrokerDropsWhenSubscriberIsSlow(t *testing.T) {
	b := NewBroker()
	ch := b.Subscribe("t1")
	defer b.Unsubscribe("t1", ch)

	// fill past the buffer; Publish must never block
	done := make(chan struct{})
	go func() {
		for i := 0; i < 64; i++ {
			b.Publish("t1", TripEvent{Type: "itinerary.updated"})
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Publish blocked on a slow subscriber")
	}
}
