package firewall

import (
	"time"

	"github.com/nftblock/nftblock/internal/config"
	"github.com/nftblock/nftblock/internal/lists"
	"github.com/nftblock/nftblock/internal/log"
)

// SourceStat records the outcome of loading one source during a sync pass.
type SourceStat struct {
	Name    string `json:"name"`
	URL     string `json:"url"`
	OK      bool   `json:"ok"`
	Error   string `json:"error,omitempty"`
	IPv4    int    `json:"ipv4"`
	IPv6    int    `json:"ipv6"`
	Invalid int    `json:"invalid"`
}

// SyncStats summarizes one sync pass.
type SyncStats struct {
	StartedAt  time.Time    `json:"started_at"`
	Duration   time.Duration `json:"duration"`
	Sources    []SourceStat `json:"sources"`
	IPv4Total  int          `json:"ipv4_total"`
	IPv6Total  int          `json:"ipv6_total"`
	// ApplyErrors holds per-family population failures. They do not fail
	// the run: topology correctness is the hard requirement, population is
	// best-effort.
	ApplyErrors []string `json:"apply_errors,omitempty"`
}

// Applier runs one blacklist synchronization pass: ensure topology, load all
// sources, then replace each non-empty family's enforcement set contents in
// bounded-size batches.
type Applier struct {
	backend   Backend
	loader    *lists.Loader
	sources   []*config.SourceConfig
	batchSize int
}

func NewApplier(backend Backend, loader *lists.Loader, cfg *config.Config) *Applier {
	return &Applier{
		backend:   backend,
		loader:    loader,
		sources:   cfg.Sources,
		batchSize: cfg.General.BatchSize,
	}
}

// Apply performs one sync pass. The returned error is non-nil only for fatal
// conditions (topology setup failure); per-source and per-family failures are
// recorded in the stats and logged.
func (a *Applier) Apply() (*SyncStats, error) {
	if err := a.backend.EnsureTopology(); err != nil {
		return nil, err
	}

	stats, v4, v6 := a.loadAll()

	a.populate(config.FamilyIPv4, v4, stats)
	a.populate(config.FamilyIPv6, v6, stats)

	stats.Duration = time.Since(stats.StartedAt)
	log.Infof("Sync pass finished: %d IPv4 and %d IPv6 entries from %d source(s) in %v",
		stats.IPv4Total, stats.IPv6Total, len(a.sources), stats.Duration.Round(time.Millisecond))
	return stats, nil
}

// DryRun loads and classifies all sources without touching the engine.
func (a *Applier) DryRun() *SyncStats {
	stats, _, _ := a.loadAll()
	stats.Duration = time.Since(stats.StartedAt)
	return stats
}

// loadAll processes every source sequentially, merging results into
// run-scoped per-family accumulators. A failed source is logged and skipped;
// the pass keeps its forward progress.
func (a *Applier) loadAll() (*SyncStats, []string, []string) {
	stats := &SyncStats{StartedAt: time.Now()}

	var v4, v6 []string
	for _, src := range a.sources {
		stat := SourceStat{Name: src.Name, URL: src.URL}

		result, err := a.loader.Load(src)
		if err != nil {
			log.Errorf("Skipping source \"%s\": %v", src.Name, err)
			stat.Error = err.Error()
			stats.Sources = append(stats.Sources, stat)
			continue
		}

		log.Infof("Source \"%s\": %d IPv4, %d IPv6, %d invalid",
			src.Name, len(result.IPv4), len(result.IPv6), result.Invalid)

		stat.OK = true
		stat.IPv4 = len(result.IPv4)
		stat.IPv6 = len(result.IPv6)
		stat.Invalid = result.Invalid
		stats.Sources = append(stats.Sources, stat)

		v4 = append(v4, result.IPv4...)
		v6 = append(v6, result.IPv6...)
	}

	stats.IPv4Total = len(v4)
	stats.IPv6Total = len(v6)
	return stats, v4, v6
}

// populate replaces the contents of one family's enforcement set. An empty
// accumulator leaves the set untouched so that a transient all-sources
// failure does not wipe the previous blacklist. Between the flush and the
// first batch there is a window where the set is empty; batches are submitted
// immediately after the flush to keep it narrow.
func (a *Applier) populate(family config.Family, entries []string, stats *SyncStats) {
	if len(entries) == 0 {
		log.Infof("No %s entries collected, leaving set %s untouched", family, SetName(family))
		return
	}

	if err := a.backend.FlushSet(family); err != nil {
		applyErr := &ApplyError{Family: family, Phase: PhaseClear, Err: err}
		log.Errorf("%v", applyErr)
		stats.ApplyErrors = append(stats.ApplyErrors, applyErr.Error())
		return
	}

	for _, batch := range chunk(entries, a.batchSize) {
		if err := a.backend.AddElements(family, batch); err != nil {
			applyErr := &ApplyError{Family: family, Phase: PhaseAdd, Err: err}
			log.Errorf("%v", applyErr)
			stats.ApplyErrors = append(stats.ApplyErrors, applyErr.Error())
			return
		}
	}

	log.Infof("Populated set %s with %d entries", SetName(family), len(entries))
}

// chunk splits entries into fixed-size slices so that each add-elements
// command stays under the control plane's command-length ceiling.
func chunk(entries []string, size int) [][]string {
	if size <= 0 {
		size = config.DefaultBatchSize
	}

	var batches [][]string
	for start := 0; start < len(entries); start += size {
		end := start + size
		if end > len(entries) {
			end = len(entries)
		}
		batches = append(batches, entries[start:end])
	}
	return batches
}
