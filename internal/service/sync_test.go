package service

import (
	"testing"

	"github.com/nftblock/nftblock/internal/config"
)

func newTestService(t *testing.T) *SyncService {
	t.Helper()

	cfg := &config.Config{
		General: &config.GeneralConfig{},
		Sources: []*config.SourceConfig{
			{Name: "src", URL: "https://example.com/list.txt"},
		},
	}
	cfg.ApplyDefaults()

	s, err := New(cfg)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return s
}

func TestStatus_FreshService(t *testing.T) {
	s := newTestService(t)

	status := s.Status()
	if status.Syncing || status.LastRun != nil || status.LastError != "" {
		t.Errorf("Fresh service has unexpected status: %+v", status)
	}
}

func TestTriggerSync_NonBlocking(t *testing.T) {
	s := newTestService(t)

	// Without a running loop draining the channel, repeated triggers must
	// still return immediately.
	s.TriggerSync()
	s.TriggerSync()
	s.TriggerSync()

	select {
	case <-s.trigger:
	default:
		t.Error("Expected one pending trigger")
	}
	select {
	case <-s.trigger:
		t.Error("Triggers must coalesce to a single pending request")
	default:
	}
}
