package firewall

import (
	"fmt"

	"github.com/nftblock/nftblock/internal/config"
)

// Backend is the enforcement engine abstraction consumed by the Applier.
// The nftables backend is the primary implementation; the iptables backend
// covers hosts where only the legacy ipset tooling is available.
type Backend interface {
	// EnsureTopology creates the table, chains, sets and drop rules,
	// idempotently. Any failure is returned as *SetupError and is fatal
	// to the sync pass.
	EnsureTopology() error
	// FlushSet clears the enforcement set of one family.
	FlushSet(family config.Family) error
	// AddElements adds one batch of entries to a family's enforcement set.
	AddElements(family config.Family, elements []string) error
	// ListSet returns the current contents of a family's enforcement set.
	ListSet(family config.Family) ([]string, error)
	// ClearAll removes all enforcement state. Absent state is a no-op.
	ClearAll() error
	// Check reports the presence of every topology object without
	// modifying anything.
	Check() []CheckResult
}

// CheckResult is one line of self-check output.
type CheckResult struct {
	Name   string `json:"name"`
	OK     bool   `json:"ok"`
	Detail string `json:"detail"`
}

// NewBackend constructs the backend selected in the configuration.
func NewBackend(cfg *config.Config) (Backend, error) {
	switch cfg.General.Backend {
	case config.BackendNftables, "":
		return NewNftBackend(NewNftClient(), cfg), nil
	case config.BackendIptables:
		return NewIptablesBackend(cfg)
	default:
		return nil, fmt.Errorf("unknown backend: %s", cfg.General.Backend)
	}
}
