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

package rest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jeremyhahn/go-fido2-server/internal/config"
	"github.com/jeremyhahn/go-fido2-server/pkg/fido2"
	fido2http "github.com/jeremyhahn/go-fido2-server/pkg/fido2/http"
)

// Server is the REST frontend for the registration ceremony service.
type Server struct {
	server  *http.Server
	service *fido2.Service
	store   *fido2.MemoryRegistrationStore
	logger  *slog.Logger
}

// New builds the ceremony service and its REST frontend from configuration.
func New(cfg *config.Config, logger *slog.Logger) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	store := fido2.NewMemoryRegistrationStoreWithTTL(
		time.Duration(cfg.Registration.PendingTTL) * time.Second)

	service, err := fido2.NewService(fido2.ServiceParams{
		Config:   &cfg.RelyingParty,
		Store:    store,
		Verifier: fido2.NewWebauthnAttestationVerifier(cfg.RelyingParty.RPName),
		Logger:   logger,
	})
	if err != nil {
		return nil, fmt.Errorf("create fido2 service: %w", err)
	}

	router := chi.NewRouter()
	router.Use(CorrelationMiddleware)
	router.Use(RequestLogger(logger))

	router.Get("/health/live", livenessHandler)
	router.Get("/health/ready", readinessHandler)

	handler := fido2http.NewHandler(service).WithLogger(logger)
	fido2http.MountChi(router, handler)

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	return &Server{
		server:  srv,
		service: service,
		store:   store,
		logger:  logger,
	}, nil
}

// Service returns the ceremony service behind the REST frontend.
func (s *Server) Service() *fido2.Service {
	return s.service
}

// Handler returns the root HTTP handler, useful for tests.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// Start begins serving requests. It blocks until the server stops.
func (s *Server) Start() error {
	s.logger.Info("REST server listening", "addr", s.server.Addr)
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// CleanupPending removes expired PENDING entries from the backing store and
// returns the count removed.
func (s *Server) CleanupPending() int {
	return s.store.Cleanup()
}

func livenessHandler(w http.ResponseWriter, r *http.Request) {
	writeHealth(w, "Service is alive")
}

func readinessHandler(w http.ResponseWriter, r *http.Request) {
	writeHealth(w, "Service is ready")
}

func writeHealth(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"status":  "healthy",
		"message": message,
	})
}
