package firewall

import (
	"errors"
	"strings"
	"testing"

	"github.com/nftblock/nftblock/internal/config"
)

func testConfig() *config.Config {
	cfg := &config.Config{General: &config.GeneralConfig{}}
	cfg.ApplyDefaults()
	return cfg
}

func TestEnsureTopology_CreatesAllObjects(t *testing.T) {
	client := newFakeClient()
	backend := NewNftBackend(client, testConfig())

	if err := backend.EnsureTopology(); err != nil {
		t.Fatalf("EnsureTopology failed: %v", err)
	}

	if !client.tables[config.DefaultTableName] {
		t.Error("Table was not created")
	}
	if client.createChainCalls != 2 {
		t.Errorf("Expected 2 chain creations, got %d", client.createChainCalls)
	}
	if client.createSetCalls != 2 {
		t.Errorf("Expected 2 set creations, got %d", client.createSetCalls)
	}

	// Two drop rules per chain: one per family.
	if len(client.addRuleCalls) != 4 {
		t.Fatalf("Expected 4 drop rules, got %d: %v", len(client.addRuleCalls), client.addRuleCalls)
	}

	inputRules := client.rulesInChain(ChainInput)
	if len(inputRules) != 2 ||
		inputRules[0] != "ip saddr @blacklist_v4 drop" ||
		inputRules[1] != "ip6 saddr @blacklist_v6 drop" {
		t.Errorf("Unexpected input chain rules: %v", inputRules)
	}

	outputRules := client.rulesInChain(ChainOutput)
	if len(outputRules) != 2 ||
		outputRules[0] != "ip daddr @blacklist_v4 drop" ||
		outputRules[1] != "ip6 daddr @blacklist_v6 drop" {
		t.Errorf("Unexpected output chain rules: %v", outputRules)
	}
}

func TestEnsureTopology_Idempotent(t *testing.T) {
	client := newFakeClient()
	backend := NewNftBackend(client, testConfig())

	if err := backend.EnsureTopology(); err != nil {
		t.Fatalf("First EnsureTopology failed: %v", err)
	}
	if err := backend.EnsureTopology(); err != nil {
		t.Fatalf("Second EnsureTopology failed: %v", err)
	}

	// Drop rules must not be duplicated on re-run.
	if len(client.addRuleCalls) != 4 {
		t.Errorf("Expected 4 drop rules after two runs, got %d: %v", len(client.addRuleCalls), client.addRuleCalls)
	}
}

func TestEnsureTopology_StepFailureIsFatal(t *testing.T) {
	tests := []struct {
		failMethod   string
		expectedStep string
	}{
		{"CreateTable", StepCreateTable},
		{"CreateChain", StepCreateInputChain},
		{"CreateSet", StepCreateSetV4},
		{"ListChain", StepInputRules},
		{"AddRule", StepInputRules},
	}

	for _, tt := range tests {
		t.Run(tt.failMethod, func(t *testing.T) {
			client := newFakeClient()
			client.failOn(tt.failMethod)
			backend := NewNftBackend(client, testConfig())

			err := backend.EnsureTopology()
			if err == nil {
				t.Fatal("Expected EnsureTopology to fail")
			}

			var setupErr *SetupError
			if !errors.As(err, &setupErr) {
				t.Fatalf("Expected *SetupError, got %T: %v", err, err)
			}
			if setupErr.Step != tt.expectedStep {
				t.Errorf("Expected step %q, got %q", tt.expectedStep, setupErr.Step)
			}
		})
	}
}

func TestEnsureTopology_ExtraRules(t *testing.T) {
	cfg := testConfig()
	cfg.Rules = []*config.ExtraRule{
		{Chain: "input", Expr: "tcp dport 22 accept"},
		{Chain: "output", Expr: "ip daddr @{{set_v4}} log prefix \"{{table}}: \""},
	}

	client := newFakeClient()
	backend := NewNftBackend(client, cfg)

	if err := backend.EnsureTopology(); err != nil {
		t.Fatalf("EnsureTopology failed: %v", err)
	}

	inputRules := client.rulesInChain(ChainInput)
	if inputRules[len(inputRules)-1] != "tcp dport 22 accept" {
		t.Errorf("Extra input rule not appended: %v", inputRules)
	}

	outputRules := client.rulesInChain(ChainOutput)
	last := outputRules[len(outputRules)-1]
	if !strings.Contains(last, "@blacklist_v4") || !strings.Contains(last, "nftblock: ") {
		t.Errorf("Extra output rule not expanded: %q", last)
	}

	// Re-run must not duplicate extra rules either.
	before := len(client.addRuleCalls)
	if err := backend.EnsureTopology(); err != nil {
		t.Fatalf("Second EnsureTopology failed: %v", err)
	}
	if len(client.addRuleCalls) != before {
		t.Errorf("Extra rules duplicated on re-run: %v", client.addRuleCalls)
	}
}

func TestClearAll_DeletesExistingTable(t *testing.T) {
	client := newFakeClient()
	backend := NewNftBackend(client, testConfig())

	if err := backend.EnsureTopology(); err != nil {
		t.Fatalf("EnsureTopology failed: %v", err)
	}

	if err := backend.ClearAll(); err != nil {
		t.Fatalf("ClearAll failed: %v", err)
	}
	if client.deleteTableCalls != 1 {
		t.Errorf("Expected 1 table deletion, got %d", client.deleteTableCalls)
	}
	if client.tables[config.DefaultTableName] {
		t.Error("Table still exists after ClearAll")
	}
}

func TestClearAll_AbsentTableIsNoOp(t *testing.T) {
	client := newFakeClient()
	backend := NewNftBackend(client, testConfig())

	if err := backend.ClearAll(); err != nil {
		t.Fatalf("ClearAll on absent table should succeed, got: %v", err)
	}
	if client.deleteTableCalls != 0 {
		t.Errorf("DeleteTable called %d times for absent table", client.deleteTableCalls)
	}
}

func TestCheck_ReportsMissingTable(t *testing.T) {
	client := newFakeClient()
	backend := NewNftBackend(client, testConfig())

	results := backend.Check()
	if len(results) != 1 || results[0].OK {
		t.Errorf("Expected single failing table check, got %+v", results)
	}
}

func TestCheck_ReportsHealthyTopology(t *testing.T) {
	client := newFakeClient()
	backend := NewNftBackend(client, testConfig())

	if err := backend.EnsureTopology(); err != nil {
		t.Fatalf("EnsureTopology failed: %v", err)
	}

	for _, result := range backend.Check() {
		if !result.OK {
			t.Errorf("Check %s failed: %s", result.Name, result.Detail)
		}
	}
}
