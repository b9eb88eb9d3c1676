package firewall

import (
	"fmt"
	"os/exec"
	"strings"

	"github.com/coreos/go-iptables/iptables"

	"github.com/nftblock/nftblock/internal/config"
	"github.com/nftblock/nftblock/internal/log"
)

const ipsetCommand = "ipset"

// IptablesBackend enforces the blacklist through iptables/ip6tables rules
// matching ipset-backed sets. It exists for hosts without a usable nft
// binary; the topology is equivalent (two directional chains, one interval
// set per family, drop rules in both directions).
type IptablesBackend struct {
	table string
	ipt4  *iptables.IPTables
	ipt6  *iptables.IPTables
}

func NewIptablesBackend(cfg *config.Config) (*IptablesBackend, error) {
	ipt4, err := iptables.NewWithProtocol(iptables.ProtocolIPv4)
	if err != nil {
		return nil, fmt.Errorf("failed to create iptables (IPv4): %w", err)
	}

	ipt6, err := iptables.NewWithProtocol(iptables.ProtocolIPv6)
	if err != nil {
		// IPv6 might not be available, that's okay
		log.Debugf("IPv6 iptables not available: %v", err)
		ipt6 = nil
	}

	return &IptablesBackend{
		table: cfg.General.TableName,
		ipt4:  ipt4,
		ipt6:  ipt6,
	}, nil
}

// chainName derives the iptables chain name from the configured table name,
// e.g. table "nftblock" becomes NFTBLOCK_IN / NFTBLOCK_OUT.
func (b *IptablesBackend) chainName(builtin string) string {
	suffix := "_IN"
	if builtin == "OUTPUT" {
		suffix = "_OUT"
	}
	return strings.ToUpper(strings.ReplaceAll(b.table, "-", "_")) + suffix
}

func (b *IptablesBackend) handles() map[config.Family]*iptables.IPTables {
	handles := map[config.Family]*iptables.IPTables{config.FamilyIPv4: b.ipt4}
	if b.ipt6 != nil {
		handles[config.FamilyIPv6] = b.ipt6
	}
	return handles
}

func (b *IptablesBackend) EnsureTopology() error {
	if err := b.ensureSet(config.FamilyIPv4); err != nil {
		return &SetupError{Step: StepCreateSetV4, Err: err}
	}
	if err := b.ensureSet(config.FamilyIPv6); err != nil {
		return &SetupError{Step: StepCreateSetV6, Err: err}
	}

	for family, ipt := range b.handles() {
		if err := b.ensureChainAndRules(ipt, family, "INPUT", "src"); err != nil {
			return &SetupError{Step: StepInputRules, Err: err}
		}
		if err := b.ensureChainAndRules(ipt, family, "OUTPUT", "dst"); err != nil {
			return &SetupError{Step: StepOutputRules, Err: err}
		}
	}

	return nil
}

func (b *IptablesBackend) ensureSet(family config.Family) error {
	if _, err := exec.LookPath(ipsetCommand); err != nil {
		return fmt.Errorf("failed to find ipset command: %v", err)
	}

	ipsetFamily := "inet"
	if family == config.FamilyIPv6 {
		ipsetFamily = "inet6"
	}

	cmd := exec.Command(ipsetCommand, "create", SetName(family), "hash:net", "family", ipsetFamily, "-exist")
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("failed to create ipset %s: %v: %s", SetName(family), err, out)
	}
	return nil
}

func (b *IptablesBackend) ensureChainAndRules(ipt *iptables.IPTables, family config.Family, builtin, direction string) error {
	chain := b.chainName(builtin)

	if err := ipt.NewChain("filter", chain); err != nil {
		if eerr, ok := err.(*iptables.Error); !(ok && eerr.ExitStatus() == 1) {
			return fmt.Errorf("failed to create chain %s: %w", chain, err)
		}
	}

	rule := []string{"-m", "set", "--match-set", SetName(family), direction, "-j", "DROP"}
	if err := ipt.AppendUnique("filter", chain, rule...); err != nil {
		return fmt.Errorf("failed to add drop rule to %s: %w", chain, err)
	}

	if err := ipt.InsertUnique("filter", builtin, 1, "-j", chain); err != nil {
		return fmt.Errorf("failed to link chain %s: %w", chain, err)
	}

	return nil
}

func (b *IptablesBackend) FlushSet(family config.Family) error {
	cmd := exec.Command(ipsetCommand, "flush", SetName(family))
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("failed to flush ipset %s: %v: %s", SetName(family), err, out)
	}
	return nil
}

func (b *IptablesBackend) AddElements(family config.Family, elements []string) error {
	if len(elements) == 0 {
		return nil
	}

	var sb strings.Builder
	for _, element := range elements {
		fmt.Fprintf(&sb, "add %s %s\n", SetName(family), element)
	}

	cmd := exec.Command(ipsetCommand, "restore", "-exist")
	cmd.Stdin = strings.NewReader(sb.String())
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("failed to add elements to ipset %s: %v: %s", SetName(family), err, out)
	}
	return nil
}

func (b *IptablesBackend) ListSet(family config.Family) ([]string, error) {
	out, err := exec.Command(ipsetCommand, "list", SetName(family)).CombinedOutput()
	if err != nil {
		return nil, fmt.Errorf("failed to list ipset %s: %v: %s", SetName(family), err, out)
	}

	var elements []string
	inMembers := false
	for _, line := range strings.Split(string(out), "\n") {
		line = strings.TrimSpace(line)
		if inMembers && line != "" {
			elements = append(elements, line)
			continue
		}
		if strings.HasPrefix(line, "Members:") {
			inMembers = true
		}
	}
	return elements, nil
}

// ClearAll unlinks and deletes both chains and destroys both ipsets.
// Missing objects are skipped.
func (b *IptablesBackend) ClearAll() error {
	for _, ipt := range b.handles() {
		for _, builtin := range []string{"INPUT", "OUTPUT"} {
			chain := b.chainName(builtin)
			if err := ipt.DeleteIfExists("filter", builtin, "-j", chain); err != nil {
				log.Debugf("Failed to unlink chain %s: %v", chain, err)
			}
			if err := ipt.ClearAndDeleteChain("filter", chain); err != nil {
				log.Debugf("Failed to delete chain %s: %v", chain, err)
			}
		}
	}

	for _, family := range []config.Family{config.FamilyIPv4, config.FamilyIPv6} {
		cmd := exec.Command(ipsetCommand, "destroy", SetName(family))
		if out, err := cmd.CombinedOutput(); err != nil {
			// Destroying a set that never existed is fine.
			if !strings.Contains(string(out), "does not exist") {
				return fmt.Errorf("failed to destroy ipset %s: %v: %s", SetName(family), err, out)
			}
		}
	}

	return nil
}

func (b *IptablesBackend) Check() []CheckResult {
	var results []CheckResult

	for _, family := range []config.Family{config.FamilyIPv4, config.FamilyIPv6} {
		name := "ipset-" + SetName(family)
		if err := exec.Command(ipsetCommand, "-n", "list", SetName(family)).Run(); err != nil {
			results = append(results, CheckResult{Name: name, Detail: "ipset missing"})
		} else {
			results = append(results, CheckResult{Name: name, OK: true, Detail: "ipset exists"})
		}
	}

	for family, ipt := range b.handles() {
		for builtin, direction := range map[string]string{"INPUT": "src", "OUTPUT": "dst"} {
			chain := b.chainName(builtin)
			name := fmt.Sprintf("rule-%s-%s", chain, family)
			rule := []string{"-m", "set", "--match-set", SetName(family), direction, "-j", "DROP"}
			if exists, err := ipt.Exists("filter", chain, rule...); err != nil {
				results = append(results, CheckResult{Name: name, Detail: err.Error()})
			} else if exists {
				results = append(results, CheckResult{Name: name, OK: true, Detail: "drop rule present"})
			} else {
				results = append(results, CheckResult{Name: name, Detail: "drop rule missing"})
			}
		}
	}

	return results
}
