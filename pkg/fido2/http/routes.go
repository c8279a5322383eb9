// Copyright (c) 2025 Jeremy Hahn
// Copyright (c) 2025 Automate The Things, LLC
//
// This file is part of go-fido2-server.
//
// go-fido2-server is dual-licensed:
//
// 1. GNU Affero General Public License v3.0 (AGPL-3.0)
//    See LICENSE file or visit https://www.gnu.org/licenses/agpl-3.0.html
//
// 2. Commercial License
//    Contact licensing@automatethethings.com for commercial licensing options.

package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// MountChi mounts ceremony routes on a chi router.
//
// Example:
//
//	handler := fido2http.NewHandler(svc)
//	r.Route("/api/v1", func(r chi.Router) {
//	    fido2http.MountChi(r, handler)
//	})
func MountChi(r chi.Router, h *Handler) {
	r.Post("/attestation/options", h.AttestationOptions)
	r.Post("/attestation/result", h.AttestationResult)
}

// MountStdlib mounts ceremony routes on a stdlib http.ServeMux.
// The prefix should not include a trailing slash.
func MountStdlib(mux *http.ServeMux, prefix string, h *Handler) {
	mux.HandleFunc(prefix+"/attestation/options", h.AttestationOptions)
	mux.HandleFunc(prefix+"/attestation/result", h.AttestationResult)
}

// RouteEntry represents a single route with its method, path, and handler.
type RouteEntry struct {
	Method  string
	Path    string
	Handler http.HandlerFunc
}

// Routes returns a slice of route entries for manual mounting on frameworks
// not directly supported.
func (h *Handler) Routes() []RouteEntry {
	return []RouteEntry{
		{Method: "POST", Path: "/attestation/options", Handler: h.AttestationOptions},
		{Method: "POST", Path: "/attestation/result", Handler: h.AttestationResult},
	}
}
