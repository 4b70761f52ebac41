// Package api implements HTTP handlers and helpers for the tripnav service.
package api

import "net/http"

// Principal identifies the requesting user. Session/token verification lives
// in the gateway in front of this service; here the identity arrives as a
// header, with a dev fallback.
type Principal struct {
	UserID string
}

func (s *Server) getPrincipal(r *http.Request) Principal {
	uid := r.Header.Get("X-User-Id")
	if uid == "" {
		uid = "u_demo"
	}
	return Principal{UserID: uid}
}
