package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"tripnav/internal/buildinfo"
	"tripnav/internal/itinerary"
	"tripnav/internal/model"
	"tripnav/internal/store"
)

// statusFor maps core errors onto HTTP statuses.
func statusFor(err error) (int, string) {
	var ve *itinerary.ValidationError
	switch {
	case errors.As(err, &ve):
		return http.StatusBadRequest, "Invalid request"
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound, "Not Found"
	case errors.Is(err, store.ErrConflict):
		return http.StatusConflict, "Conflict"
	default:
		return http.StatusInternalServerError, "Internal error"
	}
}

// TripsHandler handles POST/GET /v1/trips
func (s *Server) TripsHandler(w http.ResponseWriter, r *http.Request) {
	p := s.getPrincipal(r)
	switch r.Method {
	case http.MethodPost:
		var in model.TripInput
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			writeProblem(w, http.StatusBadRequest, "Invalid JSON", err.Error(), r.URL.Path)
			return
		}
		if in.Title == "" {
			writeProblem(w, http.StatusBadRequest, "Invalid request", "title must not be empty", r.URL.Path)
			return
		}
		t, err := s.Store.CreateTrip(r.Context(), p.UserID, in)
		if err != nil {
			writeProblem(w, http.StatusInternalServerError, "Create trip failed", err.Error(), r.URL.Path)
			return
		}
		writeJSON(w, http.StatusCreated, t)
	case http.MethodGet:
		items, err := s.Store.ListTrips(r.Context(), p.UserID)
		if err != nil {
			writeProblem(w, http.StatusInternalServerError, "List trips failed", err.Error(), r.URL.Path)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"items": items})
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// TripByIDHandler handles /v1/trips/{id}, /v1/trips/{id}/itinerary,
// /v1/trips/{id}/itinerary/optimize and /v1/trips/{id}/events/ws
func (s *Server) TripByIDHandler(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/v1/trips/")
	if rest == r.URL.Path || rest == "" {
		writeProblem(w, http.StatusNotFound, "Not Found", "missing trip id", r.URL.Path)
		return
	}
	parts := strings.Split(rest, "/")
	tripID := parts[0]

	switch {
	case len(parts) == 1:
		s.tripResource(w, r, tripID)
	case parts[1] == "itinerary" && len(parts) == 2:
		s.tripItinerary(w, r, tripID)
	case parts[1] == "itinerary" && len(parts) == 3 && parts[2] == "optimize":
		s.tripOptimize(w, r, tripID)
	case parts[1] == "events" && len(parts) == 3 && parts[2] == "ws":
		s.TripEventsWS(w, r, tripID)
	default:
		writeProblem(w, http.StatusNotFound, "Not Found", "", r.URL.Path)
	}
}

func (s *Server) tripResource(w http.ResponseWriter, r *http.Request, tripID string) {
	switch r.Method {
	case http.MethodGet:
		t, err := s.Store.GetTrip(r.Context(), tripID)
		if err != nil {
			st, title := statusFor(err)
			writeProblem(w, st, title, err.Error(), r.URL.Path)
			return
		}
		writeJSON(w, http.StatusOK, t)
	case http.MethodDelete:
		if err := s.Store.DeleteTrip(r.Context(), tripID); err != nil {
			st, title := statusFor(err)
			writeProblem(w, st, title, err.Error(), r.URL.Path)
			return
		}
		// entries went with the trip; cached days for it are now stale
		s.Cache.EvictAll()
		s.Broker.Publish(tripID, TripEvent{Type: "trip.deleted", Data: map[string]any{"tripId": tripID}})
		w.WriteHeader(http.StatusNoContent)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (s *Server) tripItinerary(w http.ResponseWriter, r *http.Request, tripID string) {
	switch r.Method {
	case http.MethodGet:
		day := queryDay(r)
		entries, err := s.Itinerary.Read(r.Context(), tripID, day)
		if err != nil {
			st, title := statusFor(err)
			writeProblem(w, st, title, err.Error(), r.URL.Path)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"day": day, "entries": entries})
	case http.MethodPost:
		var req model.EntryRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeProblem(w, http.StatusBadRequest, "Invalid JSON", err.Error(), r.URL.Path)
			return
		}
		e, err := s.Itinerary.Create(r.Context(), tripID, req)
		if err != nil {
			st, title := statusFor(err)
			writeProblem(w, st, title, err.Error(), r.URL.Path)
			return
		}
		// cache is already invalidated; now tell connected members
		s.Broker.Publish(tripID, TripEvent{Type: "itinerary.created", Data: map[string]any{"tripId": tripID, "day": e.Day, "entryId": e.ID}})
		writeJSON(w, http.StatusCreated, e)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (s *Server) tripOptimize(w http.ResponseWriter, r *http.Request, tripID string) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	day := queryDay(r)
	res, err := s.Optimizer.Optimize(r.Context(), tripID, day)
	var partial *itinerary.PartialOptimizationError
	switch {
	case err == nil:
		if len(res.Updated) > 0 {
			s.Broker.Publish(tripID, TripEvent{Type: "itinerary.optimized", Data: map[string]any{"tripId": tripID, "day": day, "updated": len(res.Updated)}})
		}
		writeJSON(w, http.StatusOK, res)
	case errors.As(err, &partial):
		s.Broker.Publish(tripID, TripEvent{Type: "itinerary.optimized", Data: map[string]any{"tripId": tripID, "day": day, "updated": len(res.Updated), "conflicted": len(res.Conflicted)}})
		writeJSON(w, http.StatusMultiStatus, res)
	default:
		st, title := statusFor(err)
		writeProblem(w, st, title, err.Error(), r.URL.Path)
	}
}

// EntryByIDHandler handles PATCH/DELETE /v1/itinerary/{entryId}
func (s *Server) EntryByIDHandler(w http.ResponseWriter, r *http.Request) {
	entryID := strings.TrimPrefix(r.URL.Path, "/v1/itinerary/")
	if entryID == r.URL.Path || entryID == "" || strings.Contains(entryID, "/") {
		writeProblem(w, http.StatusNotFound, "Not Found", "missing entry id", r.URL.Path)
		return
	}
	switch r.Method {
	case http.MethodPatch, http.MethodPut:
		var req model.EntryRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeProblem(w, http.StatusBadRequest, "Invalid JSON", err.Error(), r.URL.Path)
			return
		}
		e, err := s.Itinerary.Update(r.Context(), entryID, req)
		if err != nil {
			if errors.Is(err, store.ErrConflict) {
				writeProblem(w, http.StatusConflict, "Conflict", "someone else modified this entry; refresh and retry", r.URL.Path)
				return
			}
			st, title := statusFor(err)
			writeProblem(w, st, title, err.Error(), r.URL.Path)
			return
		}
		s.Broker.Publish(e.TripID, TripEvent{Type: "itinerary.updated", Data: map[string]any{"tripId": e.TripID, "day": e.Day, "entryId": e.ID, "version": e.Version}})
		writeJSON(w, http.StatusOK, e)
	case http.MethodDelete:
		e, err := s.Itinerary.Delete(r.Context(), entryID)
		if err != nil {
			st, title := statusFor(err)
			writeProblem(w, st, title, err.Error(), r.URL.Path)
			return
		}
		s.Broker.Publish(e.TripID, TripEvent{Type: "itinerary.deleted", Data: map[string]any{"tripId": e.TripID, "day": e.Day, "entryId": e.ID}})
		w.WriteHeader(http.StatusNoContent)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func queryDay(r *http.Request) int {
	v := r.URL.Query().Get("day")
	if v == "" {
		return 0
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0
	}
	return n
}

func (s *Server) HealthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) ReadyHandler(w http.ResponseWriter, r *http.Request) {
	type pinger interface{ Ping(ctx context.Context) error }
	if pg, ok := s.Store.(pinger); ok {
		ctx, cancel := context.WithTimeout(r.Context(), 500*time.Millisecond)
		defer cancel()
		if err := pg.Ping(ctx); err != nil {
			writeProblem(w, http.StatusServiceUnavailable, "Not Ready", err.Error(), r.URL.Path)
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func (s *Server) DebugHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"build": buildinfo.Info(),
		"time":  time.Now().UTC().Format(time.RFC3339),
	})
}
