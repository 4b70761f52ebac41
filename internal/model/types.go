package model

// Core domain types for trips and day-by-day itineraries.

// Trip is a shared planning session owning days of itinerary entries.
type Trip struct {
	ID          string `json:"id"`
	OwnerID     string `json:"ownerId"`
	Title       string `json:"title"`
	Destination string `json:"destination,omitempty"`
	StartDate   string `json:"startDate,omitempty"` // YYYY-MM-DD
	EndDate     string `json:"endDate,omitempty"`
}

// TripInput is the create payload for a trip.
type TripInput struct {
	Title       string `json:"title"`
	Destination string `json:"destination,omitempty"`
	StartDate   string `json:"startDate,omitempty"`
	EndDate     string `json:"endDate,omitempty"`
}

// Place is an optional map-picked location attached to an entry.
// A zero/zero coordinate pair is treated as absent: upstream forms default
// unfilled pickers to 0, so (0,0) never counts as a real position.
type Place struct {
	Name    string  `json:"name,omitempty"`
	Lat     float64 `json:"lat,omitempty"`
	Lng     float64 `json:"lng,omitempty"`
	Address string  `json:"address,omitempty"`
}

// ItineraryEntry is one scheduled stop within a trip day.
//
// Version is the optimistic-concurrency token: assigned 0 on insert and
// incremented by the store on every committed update. Callers never set it;
// they echo the value they last read.
type ItineraryEntry struct {
	ID       string `json:"id"`
	TripID   string `json:"tripId"`
	Day      int    `json:"day"`            // 1-based day of trip
	Time     string `json:"time,omitempty"` // "HH:MM", advisory
	Kind     string `json:"kind,omitempty"` // transit, meal, activity, other
	Title    string `json:"title"`
	Location string `json:"location,omitempty"` // legacy free-text field
	Color    string `json:"color,omitempty"`
	Place    *Place `json:"place,omitempty"`
	Version  int    `json:"version"`
}

// HasCoords reports whether the entry carries a usable coordinate pair.
func (e ItineraryEntry) HasCoords() bool {
	return e.Place != nil && e.Place.Lat != 0 && e.Place.Lng != 0
}

// EntryRequest is the create/update payload for an itinerary entry.
// On update, Version must be the version the editor last read.
type EntryRequest struct {
	Day      int    `json:"day,omitempty"`
	Time     string `json:"time,omitempty"`
	Kind     string `json:"kind,omitempty"`
	Title    string `json:"title,omitempty"`
	Location string `json:"location,omitempty"`
	Color    string `json:"color,omitempty"`
	Place    *Place `json:"place,omitempty"`
	Version  int    `json:"version,omitempty"`
}
