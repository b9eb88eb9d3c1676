package service

import (
	"context"
	"sync"
	"time"

	"github.com/nftblock/nftblock/internal/config"
	"github.com/nftblock/nftblock/internal/firewall"
	"github.com/nftblock/nftblock/internal/lists"
	"github.com/nftblock/nftblock/internal/log"
)

// Status is a snapshot of the sync service state, served by the HTTP API.
// Statistics are in-memory only; nothing is persisted between process runs.
type Status struct {
	Syncing   bool                `json:"syncing"`
	LastRun   *firewall.SyncStats `json:"last_run,omitempty"`
	LastError string              `json:"last_error,omitempty"`
	NextRunAt *time.Time          `json:"next_run_at,omitempty"`
}

// SyncService owns the Applier and serializes sync passes. It backs both the
// one-shot sync command and the periodic service mode.
type SyncService struct {
	cfg     *config.Config
	applier *firewall.Applier
	backend firewall.Backend

	runMu    sync.Mutex // serializes sync passes
	statusMu sync.Mutex
	status   Status

	trigger chan struct{}
}

// New wires fetcher, resolver, loader, backend and applier from the
// configuration.
func New(cfg *config.Config) (*SyncService, error) {
	fetcher, err := lists.NewFetcher(cfg.General)
	if err != nil {
		return nil, err
	}

	var resolver *lists.Resolver
	if cfg.General.Resolver != "" {
		resolver = lists.NewResolver(cfg.General.Resolver)
	}

	backend, err := firewall.NewBackend(cfg)
	if err != nil {
		return nil, err
	}

	loader := lists.NewLoader(fetcher, resolver)
	return &SyncService{
		cfg:     cfg,
		applier: firewall.NewApplier(backend, loader, cfg),
		backend: backend,
		trigger: make(chan struct{}, 1),
	}, nil
}

// Backend exposes the enforcement backend for read-only commands.
func (s *SyncService) Backend() firewall.Backend {
	return s.backend
}

// SyncOnce runs a single sync pass. The returned error is non-nil only for
// fatal conditions (topology setup failure).
func (s *SyncService) SyncOnce() error {
	s.runMu.Lock()
	defer s.runMu.Unlock()

	s.setSyncing(true)
	stats, err := s.applier.Apply()
	s.recordResult(stats, err)

	return err
}

// DryRun loads and classifies all sources without touching the engine.
func (s *SyncService) DryRun() *firewall.SyncStats {
	return s.applier.DryRun()
}

// Status returns the current service status snapshot.
func (s *SyncService) Status() Status {
	s.statusMu.Lock()
	defer s.statusMu.Unlock()
	return s.status
}

// TriggerSync requests an immediate sync pass from the service loop.
// A pending request is not queued twice.
func (s *SyncService) TriggerSync() {
	select {
	case s.trigger <- struct{}{}:
	default:
	}
}

// Run executes sync passes on the configured interval until the context is
// cancelled. A topology failure does not stop the loop: the next pass may
// succeed once the operator fixes the engine.
func (s *SyncService) Run(ctx context.Context) error {
	interval := time.Duration(s.cfg.General.SyncIntervalHours) * time.Hour
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	log.Infof("Sync service started, interval %v", interval)

	s.runPass()
	for {
		s.setNextRun(time.Now().Add(interval))

		select {
		case <-ctx.Done():
			log.Infof("Sync service stopping")
			return nil
		case <-ticker.C:
			s.runPass()
		case <-s.trigger:
			log.Infof("Immediate sync requested")
			s.runPass()
			ticker.Reset(interval)
		}
	}
}

func (s *SyncService) runPass() {
	if err := s.SyncOnce(); err != nil {
		log.Errorf("Sync pass failed: %v", err)
	}
}

func (s *SyncService) setSyncing(v bool) {
	s.statusMu.Lock()
	defer s.statusMu.Unlock()
	s.status.Syncing = v
}

func (s *SyncService) setNextRun(t time.Time) {
	s.statusMu.Lock()
	defer s.statusMu.Unlock()
	s.status.NextRunAt = &t
}

func (s *SyncService) recordResult(stats *firewall.SyncStats, err error) {
	s.statusMu.Lock()
	defer s.statusMu.Unlock()

	s.status.Syncing = false
	if stats != nil {
		s.status.LastRun = stats
	}
	if err != nil {
		s.status.LastError = err.Error()
	} else {
		s.status.LastError = ""
	}
}
