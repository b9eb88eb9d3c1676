package firewall

import (
	"fmt"
	"os/exec"
	"strings"

	"github.com/nftblock/nftblock/internal/config"
	"github.com/nftblock/nftblock/internal/log"
)

const (
	nftCommand = "nft"

	// All objects live in the inet family so one table covers both IPv4 and IPv6.
	nftFamily = "inet"
)

// NftClient executes control-plane commands through the nft binary.
type NftClient struct{}

func NewNftClient() *NftClient {
	return &NftClient{}
}

// CheckExecutable verifies that the nft binary is available.
func (c *NftClient) CheckExecutable() error {
	if _, err := exec.LookPath(nftCommand); err != nil {
		return fmt.Errorf("failed to find nft command: %v", err)
	}
	return nil
}

func (c *NftClient) CreateTable(table string) error {
	// "add" tolerates an existing table.
	return c.run("add", "table", nftFamily, table)
}

func (c *NftClient) CreateChain(table, chain, hook string, priority int) error {
	script := fmt.Sprintf("add chain %s %s %s { type filter hook %s priority %d; policy accept; }",
		nftFamily, table, chain, hook, priority)
	return c.runScript(script)
}

func (c *NftClient) CreateSet(table, set string, family config.Family) error {
	setType := "ipv4_addr"
	if family == config.FamilyIPv6 {
		setType = "ipv6_addr"
	}
	script := fmt.Sprintf("add set %s %s %s { type %s; flags interval; }",
		nftFamily, table, set, setType)
	return c.runScript(script)
}

func (c *NftClient) ListChain(table, chain string) (string, error) {
	out, err := exec.Command(nftCommand, "list", "chain", nftFamily, table, chain).CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("nft list chain %s failed: %v: %s", chain, err, out)
	}
	return string(out), nil
}

func (c *NftClient) AddRule(table, chain, expr string) error {
	// Rule expressions may contain block syntax, so always go through -f.
	return c.runScript(fmt.Sprintf("add rule %s %s %s %s", nftFamily, table, chain, expr))
}

func (c *NftClient) AddElements(table, set string, elements []string) error {
	if len(elements) == 0 {
		return nil
	}
	script := fmt.Sprintf("add element %s %s %s { %s }",
		nftFamily, table, set, strings.Join(elements, ", "))
	return c.runScript(script)
}

func (c *NftClient) FlushSet(table, set string) error {
	return c.run("flush", "set", nftFamily, table, set)
}

func (c *NftClient) DeleteTable(table string) error {
	return c.run("delete", "table", nftFamily, table)
}

func (c *NftClient) TableExists(table string) (bool, error) {
	if err := c.CheckExecutable(); err != nil {
		return false, err
	}
	err := exec.Command(nftCommand, "list", "table", nftFamily, table).Run()
	if err != nil {
		if _, ok := err.(*exec.ExitError); ok {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (c *NftClient) ListSet(table, set string) ([]string, error) {
	out, err := exec.Command(nftCommand, "list", "set", nftFamily, table, set).CombinedOutput()
	if err != nil {
		return nil, fmt.Errorf("nft list set %s failed: %v: %s", set, err, out)
	}
	return parseSetElements(string(out)), nil
}

// parseSetElements extracts the elements block from nft list output.
func parseSetElements(listing string) []string {
	start := strings.Index(listing, "elements = {")
	if start == -1 {
		return nil
	}
	rest := listing[start+len("elements = {"):]
	end := strings.Index(rest, "}")
	if end == -1 {
		return nil
	}

	var elements []string
	for _, token := range strings.Split(rest[:end], ",") {
		token = strings.TrimSpace(token)
		if token != "" {
			elements = append(elements, token)
		}
	}
	return elements
}

func (c *NftClient) run(args ...string) error {
	if err := c.CheckExecutable(); err != nil {
		return err
	}
	log.Debugf("nft %s", strings.Join(args, " "))
	if out, err := exec.Command(nftCommand, args...).CombinedOutput(); err != nil {
		return fmt.Errorf("nft %s failed: %v: %s", strings.Join(args, " "), err, out)
	}
	return nil
}

// runScript feeds a command containing braces through `nft -f -` so the
// shell-style block syntax is parsed as one statement.
func (c *NftClient) runScript(script string) error {
	if err := c.CheckExecutable(); err != nil {
		return err
	}
	log.Debugf("nft -f - <<< %s", script)
	cmd := exec.Command(nftCommand, "-f", "-")
	cmd.Stdin = strings.NewReader(script + "\n")
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("nft script %q failed: %v: %s", script, err, out)
	}
	return nil
}
