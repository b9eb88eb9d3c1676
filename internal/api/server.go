// Package api exposes the status/control HTTP API served in service mode.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/nftblock/nftblock/internal/config"
	"github.com/nftblock/nftblock/internal/log"
	"github.com/nftblock/nftblock/internal/service"
)

// Server serves the read-mostly status API: sync status, configured sources,
// current set contents, and a trigger endpoint for an immediate sync pass.
type Server struct {
	cfg        *config.Config
	sync       *service.SyncService
	httpServer *http.Server
}

func NewServer(cfg *config.Config, syncService *service.SyncService) *Server {
	s := &Server{
		cfg:  cfg,
		sync: syncService,
	}

	r := chi.NewRouter()
	r.Use(Recovery)
	r.Use(Logger)
	r.Use(CORS)
	r.Use(JSONContentType)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/status", s.handleStatus)
		r.Get("/sources", s.handleSources)
		r.Get("/sets/{family}", s.handleSet)
		r.Post("/sync", s.handleSync)
	})

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	s.httpServer = &http.Server{
		Addr:         cfg.API.Listen,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// Serve blocks until the context is cancelled or the listener fails.
func (s *Server) Serve(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		log.Infof("API server listening on %s", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.httpServer.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, s.sync.Status())
}

func (s *Server) handleSources(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, s.cfg.Sources)
}

func (s *Server) handleSet(w http.ResponseWriter, r *http.Request) {
	var family config.Family
	switch chi.URLParam(r, "family") {
	case "v4", "ipv4":
		family = config.FamilyIPv4
	case "v6", "ipv6":
		family = config.FamilyIPv6
	default:
		writeError(w, http.StatusBadRequest, "family must be one of: v4, v6")
		return
	}

	elements, err := s.sync.Backend().ListSet(family)
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"family":   family.String(),
		"count":    len(elements),
		"elements": elements,
	})
}

func (s *Server) handleSync(w http.ResponseWriter, _ *http.Request) {
	s.sync.TriggerSync()
	respondJSON(w, http.StatusAccepted, map[string]string{"status": "sync requested"})
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
