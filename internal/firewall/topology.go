package firewall

import (
	"fmt"
	"strings"

	"github.com/nftblock/nftblock/internal/config"
	"github.com/nftblock/nftblock/internal/log"
)

// Topology bootstrap step names, used in SetupError and self-check output.
const (
	StepCreateTable       = "create-table"
	StepCreateInputChain  = "create-input-chain"
	StepCreateOutputChain = "create-output-chain"
	StepCreateSetV4       = "create-set-v4"
	StepCreateSetV6       = "create-set-v6"
	StepInputRules        = "input-rules"
	StepOutputRules       = "output-rules"
	StepExtraRules        = "extra-rules"
)

// NftBackend enforces the blacklist through an nftables Client.
type NftBackend struct {
	client Client
	table  string
	rules  []*config.ExtraRule
}

func NewNftBackend(client Client, cfg *config.Config) *NftBackend {
	return &NftBackend{
		client: client,
		table:  cfg.General.TableName,
		rules:  cfg.Rules,
	}
}

// EnsureTopology creates the table, both filter chains, both enforcement
// sets and the four drop rules. Every step is idempotent: re-running against
// an already bootstrapped engine creates nothing twice. The first failing
// step aborts with a *SetupError naming it.
func (b *NftBackend) EnsureTopology() error {
	if err := b.client.CreateTable(b.table); err != nil {
		return &SetupError{Step: StepCreateTable, Err: err}
	}

	if err := b.client.CreateChain(b.table, ChainInput, "input", HookPriority); err != nil {
		return &SetupError{Step: StepCreateInputChain, Err: err}
	}
	if err := b.client.CreateChain(b.table, ChainOutput, "output", HookPriority); err != nil {
		return &SetupError{Step: StepCreateOutputChain, Err: err}
	}

	if err := b.client.CreateSet(b.table, SetV4, config.FamilyIPv4); err != nil {
		return &SetupError{Step: StepCreateSetV4, Err: err}
	}
	if err := b.client.CreateSet(b.table, SetV6, config.FamilyIPv6); err != nil {
		return &SetupError{Step: StepCreateSetV6, Err: err}
	}

	// Inbound traffic is matched on source address, outbound on destination.
	if err := b.ensureDropRules(ChainInput, "saddr"); err != nil {
		return &SetupError{Step: StepInputRules, Err: err}
	}
	if err := b.ensureDropRules(ChainOutput, "daddr"); err != nil {
		return &SetupError{Step: StepOutputRules, Err: err}
	}

	if err := b.ensureExtraRules(); err != nil {
		return &SetupError{Step: StepExtraRules, Err: err}
	}

	return nil
}

// ensureDropRules reads back the chain definition and appends a drop rule per
// family only when the chain does not already reference that family's set.
func (b *NftBackend) ensureDropRules(chain, direction string) error {
	listing, err := b.client.ListChain(b.table, chain)
	if err != nil {
		return err
	}

	for _, family := range []config.Family{config.FamilyIPv4, config.FamilyIPv6} {
		set := SetName(family)
		if strings.Contains(listing, "@"+set) {
			continue
		}

		proto := "ip"
		if family == config.FamilyIPv6 {
			proto = "ip6"
		}
		expr := fmt.Sprintf("%s %s @%s drop", proto, direction, set)

		log.Debugf("Appending drop rule to chain %s: %s", chain, expr)
		if err := b.client.AddRule(b.table, chain, expr); err != nil {
			return err
		}
	}

	return nil
}

// ensureExtraRules appends operator-supplied rule expressions, skipping any
// whose expanded form already appears in the chain listing.
func (b *NftBackend) ensureExtraRules() error {
	if len(b.rules) == 0 {
		return nil
	}

	listings := make(map[string]string)
	for _, rule := range b.rules {
		expr := ExpandRuleExpr(rule, b.table)

		listing, ok := listings[rule.Chain]
		if !ok {
			var err error
			if listing, err = b.client.ListChain(b.table, rule.Chain); err != nil {
				return err
			}
			listings[rule.Chain] = listing
		}

		if strings.Contains(listing, expr) {
			continue
		}

		log.Infof("Appending extra rule to chain %s: %s", rule.Chain, expr)
		if err := b.client.AddRule(b.table, rule.Chain, expr); err != nil {
			return err
		}
		listings[rule.Chain] = listing + "\n" + expr
	}

	return nil
}

func (b *NftBackend) FlushSet(family config.Family) error {
	return b.client.FlushSet(b.table, SetName(family))
}

func (b *NftBackend) AddElements(family config.Family, elements []string) error {
	return b.client.AddElements(b.table, SetName(family), elements)
}

func (b *NftBackend) ListSet(family config.Family) ([]string, error) {
	return b.client.ListSet(b.table, SetName(family))
}

// ClearAll deletes the whole table, removing chains, sets and rules in one
// operation. A missing table is not an error.
func (b *NftBackend) ClearAll() error {
	exists, err := b.client.TableExists(b.table)
	if err != nil {
		return err
	}
	if !exists {
		log.Debugf("Table %s does not exist, nothing to clear", b.table)
		return nil
	}
	return b.client.DeleteTable(b.table)
}

// Check inspects the topology without modifying it.
func (b *NftBackend) Check() []CheckResult {
	var results []CheckResult

	exists, err := b.client.TableExists(b.table)
	if err != nil {
		return append(results, CheckResult{Name: "table", Detail: err.Error()})
	}
	if !exists {
		return append(results, CheckResult{Name: "table", Detail: fmt.Sprintf("table %s does not exist (run sync first)", b.table)})
	}
	results = append(results, CheckResult{Name: "table", OK: true, Detail: fmt.Sprintf("table %s exists", b.table)})

	for _, chain := range []string{ChainInput, ChainOutput} {
		listing, err := b.client.ListChain(b.table, chain)
		if err != nil {
			results = append(results, CheckResult{Name: "chain-" + chain, Detail: err.Error()})
			continue
		}
		results = append(results, CheckResult{Name: "chain-" + chain, OK: true, Detail: fmt.Sprintf("chain %s exists", chain)})

		for _, set := range []string{SetV4, SetV6} {
			name := fmt.Sprintf("rule-%s-%s", chain, set)
			if strings.Contains(listing, "@"+set) {
				results = append(results, CheckResult{Name: name, OK: true, Detail: "drop rule present"})
			} else {
				results = append(results, CheckResult{Name: name, Detail: "drop rule missing"})
			}
		}
	}

	return results
}
