package api

import (
	"encoding/json"
	"net/http"
)

// Problem is the RFC 7807 error body every non-2xx response carries. Clients
// branch on Status; Detail is human-readable and not part of the contract.
type Problem struct {
	Type     string `json:"type"`
	Title    string `json:"title"`
	Status   int    `json:"status"`
	Detail   string `json:"detail,omitempty"`
	Instance string `json:"instance,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeProblem emits a Problem with the request path as the instance.
func writeProblem(w http.ResponseWriter, status int, title, detail, instance string) {
	p := Problem{
		Type:     "about:blank",
		Title:    title,
		Status:   status,
		Detail:   detail,
		Instance: instance,
	}
	writeJSON(w, status, p)
}
