package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/nftblock/nftblock/internal/config"
	"github.com/nftblock/nftblock/internal/service"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	cfg := &config.Config{
		General: &config.GeneralConfig{},
		API:     &config.APIConfig{Enabled: true, Listen: "127.0.0.1:0"},
		Sources: []*config.SourceConfig{
			{Name: "spamhaus", URL: "https://example.com/drop.txt"},
		},
	}
	cfg.ApplyDefaults()

	syncService, err := service.New(cfg)
	if err != nil {
		t.Fatalf("service.New failed: %v", err)
	}

	server := NewServer(cfg, syncService)
	ts := httptest.NewServer(server.httpServer.Handler)
	t.Cleanup(ts.Close)
	return ts
}

func TestHealthEndpoint(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/health")
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected 200, got %d", resp.StatusCode)
	}
}

func TestStatusEndpoint(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/api/v1/status")
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected 200, got %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
		t.Errorf("Expected application/json content type, got %q", ct)
	}

	var status service.Status
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		t.Fatalf("Failed to decode status: %v", err)
	}
	if status.Syncing {
		t.Error("Fresh service must not report an active sync")
	}
	if status.LastRun != nil {
		t.Error("Fresh service must not report a previous run")
	}
}

func TestSourcesEndpoint(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/api/v1/sources")
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	defer resp.Body.Close()

	var sources []*config.SourceConfig
	if err := json.NewDecoder(resp.Body).Decode(&sources); err != nil {
		t.Fatalf("Failed to decode sources: %v", err)
	}
	if len(sources) != 1 || sources[0].Name != "spamhaus" {
		t.Errorf("Unexpected sources payload: %+v", sources)
	}
}

func TestSetEndpoint_BadFamily(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/api/v1/sets/bogus")
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("Expected 400 for unknown family, got %d", resp.StatusCode)
	}
}

func TestSyncEndpoint_Accepted(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Post(ts.URL+"/api/v1/sync", "application/json", nil)
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusAccepted {
		t.Errorf("Expected 202, got %d", resp.StatusCode)
	}
}
