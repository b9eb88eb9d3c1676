package firewall

import "github.com/nftblock/nftblock/internal/config"

// Chain and set names inside the nftblock table. The table name itself is
// configurable; everything below it is fixed.
const (
	ChainInput  = "input"
	ChainOutput = "output"

	SetV4 = "blacklist_v4"
	SetV6 = "blacklist_v6"

	// HookPriority places the chains before the standard filter priority (0)
	// so that blacklist drops run ahead of general firewall policy.
	HookPriority = -10
)

// SetName returns the enforcement set name for a family.
func SetName(family config.Family) string {
	if family == config.FamilyIPv6 {
		return SetV6
	}
	return SetV4
}

// Client is the typed control-plane interface to the nftables engine, one
// method per command. The production implementation shells out to the nft
// binary; tests substitute a recording fake so that no kernel state is
// touched.
type Client interface {
	// CreateTable creates the table, tolerating an already existing one.
	CreateTable(table string) error
	// CreateChain creates a base chain attached to the given hook at the
	// given priority, tolerating an already existing one.
	CreateChain(table, chain, hook string, priority int) error
	// CreateSet creates an interval-capable address set for the family,
	// tolerating an already existing one.
	CreateSet(table, set string, family config.Family) error
	// ListChain returns the textual definition of a chain, rules included.
	ListChain(table, chain string) (string, error)
	// AddRule appends a rule expression to a chain.
	AddRule(table, chain, expr string) error
	// AddElements adds a batch of elements to a set.
	AddElements(table, set string, elements []string) error
	// FlushSet removes all elements from a set.
	FlushSet(table, set string) error
	// DeleteTable deletes the table and everything in it.
	DeleteTable(table string) error
	// TableExists reports whether the table is present.
	TableExists(table string) (bool, error)
	// ListSet returns the current elements of a set.
	ListSet(table, set string) ([]string, error)
}
