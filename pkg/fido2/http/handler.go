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
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/jeremyhahn/go-fido2-server/pkg/fido2"
)

// Handler provides HTTP handlers for the registration ceremony operations.
// These handlers can be mounted on any HTTP router.
type Handler struct {
	service *fido2.Service
	logger  *slog.Logger
}

// NewHandler creates a new ceremony HTTP handler.
func NewHandler(service *fido2.Service) *Handler {
	return &Handler{
		service: service,
		logger:  slog.Default(),
	}
}

// WithLogger sets a custom logger for the handler.
func (h *Handler) WithLogger(logger *slog.Logger) *Handler {
	h.logger = logger
	return h
}

// AttestationOptions handles POST /attestation/options
//
// Request body:
//
//	{
//	    "username": "alice",
//	    "displayName": "Alice",
//	    "documentDomain": "https://example.com",   // optional
//	    "authenticatorSelection": {...},           // optional, echoed back
//	    "attestation": "direct",                   // optional
//	    "credentialType": "public-key"             // optional
//	}
//
// Response: credential creation options with status/errorMessage.
func (h *Handler) AttestationOptions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		h.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req fido2.BeginRegistrationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	options, err := h.service.BeginRegistration(r.Context(), &req)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, options)
}

// AttestationResult handles POST /attestation/result
//
// Request body: the authenticator's attestation response
//
//	{
//	    "type": "public-key",
//	    "id": "<base64url credential id>",
//	    "response": {
//	        "clientDataJSON": "<base64url>",
//	        "attestationObject": "<base64url>"
//	    }
//	}
//
// Response: {"status": "ok", "errorMessage": ""} on success.
func (h *Handler) AttestationResult(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		h.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req fido2.FinishRegistrationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.service.FinishRegistration(r.Context(), &req)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, result)
}

// handleServiceError maps ceremony errors to HTTP responses. Failures are
// reported explicitly with a non-"ok" status and a populated message.
func (h *Handler) handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, fido2.ErrChallengeNotFound):
		h.writeError(w, http.StatusNotFound, "no registration matches the challenge")
	case errors.Is(err, fido2.ErrDomainMismatch):
		h.writeError(w, http.StatusForbidden, "origin does not match registration domain")
	case errors.Is(err, fido2.ErrAttestationRejected):
		h.writeError(w, http.StatusUnauthorized, "attestation verification failed")
	case errors.Is(err, fido2.ErrInvalidCeremonyType),
		errors.Is(err, fido2.ErrUnsupportedConveyance),
		errors.Is(err, fido2.ErrUnsupportedCredentialType),
		errors.Is(err, fido2.ErrInvalidRequest):
		h.writeError(w, http.StatusBadRequest, err.Error())
	default:
		h.writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

// writeJSON writes a JSON response.
func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		// Response headers already written, can only log the error
		h.logger.Error("failed to encode JSON response",
			"error", err,
			"status", status)
	}
}

// writeError writes a failed ceremony response.
func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, fido2.FinishRegistrationResponse{
		Status:       fido2.StatusFailed,
		ErrorMessage: message,
	})
}
