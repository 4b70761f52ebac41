package opt

import (
	"reflect"
	"testing"
)

func TestNearestNeighborOrderEmpty(t *testing.T) {
	if got := NearestNeighborOrder(nil); got != nil {
		t.Fatalf("expected nil, got %v", got)
	}
}

func TestNearestNeighborOrderSingle(t *testing.T) {
	got := NearestNeighborOrder([]Point{{Lat: 1, Lng: 1}})
	if !reflect.DeepEqual(got, []int{0}) {
		t.Fatalf("expected [0], got %v", got)
	}
}

func TestNearestNeighborOrderAnchorsAtFirst(t *testing.T) {
	// index 1 and 2 are both far from 0, but 2 is closer to 0 than 1 is;
	// the tour must still start at 0.
	pts := []Point{
		{Lat: 37.50, Lng: 127.02},
		{Lat: 35.17, Lng: 129.07},
		{Lat: 37.57, Lng: 126.98},
	}
	got := NearestNeighborOrder(pts)
	if got[0] != 0 {
		t.Fatalf("tour must anchor at index 0, got %v", got)
	}
	if !reflect.DeepEqual(got, []int{0, 2, 1}) {
		t.Fatalf("expected [0 2 1], got %v", got)
	}
}

func TestNearestNeighborOrderTieBreaksToEarliestIndex(t *testing.T) {
	// 1 and 2 are equidistant from 0; the scan picks the lower index.
	pts := []Point{
		{Lat: 0, Lng: 0},
		{Lat: 0, Lng: 1},
		{Lat: 0, Lng: -1},
	}
	got := NearestNeighborOrder(pts)
	if !reflect.DeepEqual(got, []int{0, 1, 2}) {
		t.Fatalf("expected [0 1 2], got %v", got)
	}
}
