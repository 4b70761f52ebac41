// Package main runs a demo WebSocket client for trip itinerary events.
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/gorilla/websocket"
)

type wsEvent struct {
	Type string         `json:"type"`
	Data map[string]any `json:"data,omitempty"`
	TS   string         `json:"ts"`
}

func main() {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	base := fmt.Sprintf("http://localhost:%s", port)

	// Create a trip to subscribe to
	body := []byte(`{"title":"Busan weekend","destination":"Busan"}`)
	req, _ := http.NewRequest(http.MethodPost, base+"/v1/trips", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-Id", "u_demo")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = resp.Body.Close() }()
	var trip struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&trip); err != nil {
		log.Fatal(err)
	}
	log.Printf("Trip ID: %s", trip.ID)

	// Connect WS
	u := url.URL{Scheme: "ws", Host: "localhost:" + port, Path: fmt.Sprintf("/v1/trips/%s/events/ws", trip.ID)}
	hdr := http.Header{}
	hdr.Set("X-User-Id", "u_demo")
	c, _, err := websocket.DefaultDialer.Dial(u.String(), hdr)
	if err != nil {
		log.Fatal("dial:", err)
	}
	defer func() { _ = c.Close() }()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			var evt wsEvent
			if err := c.ReadJSON(&evt); err != nil {
				log.Printf("read: %v", err)
				return
			}
			b, _ := json.Marshal(evt.Data)
			log.Printf("WS <- %s: %s", evt.Type, string(b))
		}
	}()

	// Trigger events: create two stops, then optimize the day
	time.Sleep(500 * time.Millisecond)
	for _, entry := range []string{
		`{"day":1,"time":"10:00","kind":"activity","title":"Gamcheon village","place":{"name":"Gamcheon","lat":35.0975,"lng":129.0106}}`,
		`{"day":1,"time":"09:00","kind":"meal","title":"Breakfast","place":{"name":"Haeundae","lat":35.1587,"lng":129.1604}}`,
	} {
		r, _ := http.NewRequest(http.MethodPost, fmt.Sprintf("%s/v1/trips/%s/itinerary", base, trip.ID), bytes.NewReader([]byte(entry)))
		r.Header.Set("Content-Type", "application/json")
		r.Header.Set("X-User-Id", "u_demo")
		_, _ = http.DefaultClient.Do(r)
	}
	optReq, _ := http.NewRequest(http.MethodPost, fmt.Sprintf("%s/v1/trips/%s/itinerary/optimize?day=1", base, trip.ID), nil)
	optReq.Header.Set("X-User-Id", "u_demo")
	_, _ = http.DefaultClient.Do(optReq)

	// Wait briefly to receive a few messages
	select {
	case <-time.After(2 * time.Second):
	case <-done:
	}
}
