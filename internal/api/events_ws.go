package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"tripnav/internal/store"
)

var upgrader = websocket.Upgrader{CheckOrigin: func(_ *http.Request) bool { return true }}

type wsEvent struct {
	Type string         `json:"type"`
	Data map[string]any `json:"data,omitempty"`
	TS   string         `json:"ts"`
}

// TripEventsWS streams itinerary change events for one trip over a WebSocket.
// Clients reload the affected day on receipt; the events carry ids, not
// entry payloads.
func (s *Server) TripEventsWS(w http.ResponseWriter, r *http.Request, tripID string) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if _, err := s.Store.GetTrip(r.Context(), tripID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeProblem(w, http.StatusNotFound, "Not Found", "trip "+tripID, r.URL.Path)
			return
		}
		writeProblem(w, http.StatusInternalServerError, "Internal error", err.Error(), r.URL.Path)
		return
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer func() { _ = conn.Close() }()

	ch := s.Broker.Subscribe(tripID)
	defer s.Broker.Unsubscribe(tripID, ch)

	conn.SetReadLimit(1 << 16)
	_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	conn.SetPongHandler(func(string) error {
		_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	// read loop only detects close; clients do not send application messages
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	_ = conn.WriteJSON(wsEvent{Type: "hello", Data: map[string]any{"tripId": tripID}, TS: time.Now().UTC().Format(time.RFC3339)})

	ticker := time.NewTicker(20 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case <-r.Context().Done():
			return
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(5*time.Second)); err != nil {
				return
			}
		case evt, ok := <-ch:
			if !ok {
				return
			}
			if err := conn.WriteJSON(wsEvent{Type: evt.Type, Data: evt.Data, TS: time.Now().UTC().Format(time.RFC3339)}); err != nil {
				return
			}
		}
	}
}
