package firewall

import (
	"fmt"
	"strings"

	"github.com/nftblock/nftblock/internal/config"
)

// fakeClient is a stateful in-memory Client. It keeps chain listings the way
// the real engine would echo them back, so idempotence checks behave like
// they do against a live nftables.
type fakeClient struct {
	tables map[string]bool
	chains map[string]string   // "table/chain" -> listing text
	sets   map[string][]string // "table/set" -> elements

	createTableCalls int
	createChainCalls int
	createSetCalls   int
	addRuleCalls     []string // "chain: expr"
	flushSetCalls    []string
	addElemCalls     []int // batch sizes in call order
	deleteTableCalls int

	failStep map[string]error // method name -> injected error
}

func newFakeClient() *fakeClient {
	return &fakeClient{
		tables:   make(map[string]bool),
		chains:   make(map[string]string),
		sets:     make(map[string][]string),
		failStep: make(map[string]error),
	}
}

func (f *fakeClient) failOn(method string) {
	f.failStep[method] = fmt.Errorf("injected %s failure", method)
}

func (f *fakeClient) CreateTable(table string) error {
	if err := f.failStep["CreateTable"]; err != nil {
		return err
	}
	f.createTableCalls++
	f.tables[table] = true
	return nil
}

func (f *fakeClient) CreateChain(table, chain, hook string, priority int) error {
	if err := f.failStep["CreateChain"]; err != nil {
		return err
	}
	f.createChainCalls++
	key := table + "/" + chain
	if _, exists := f.chains[key]; !exists {
		f.chains[key] = fmt.Sprintf("chain %s { type filter hook %s priority %d; }", chain, hook, priority)
	}
	return nil
}

func (f *fakeClient) CreateSet(table, set string, family config.Family) error {
	if err := f.failStep["CreateSet"]; err != nil {
		return err
	}
	f.createSetCalls++
	key := table + "/" + set
	if _, exists := f.sets[key]; !exists {
		f.sets[key] = nil
	}
	return nil
}

func (f *fakeClient) ListChain(table, chain string) (string, error) {
	if err := f.failStep["ListChain"]; err != nil {
		return "", err
	}
	return f.chains[table+"/"+chain], nil
}

func (f *fakeClient) AddRule(table, chain, expr string) error {
	if err := f.failStep["AddRule"]; err != nil {
		return err
	}
	f.addRuleCalls = append(f.addRuleCalls, chain+": "+expr)
	key := table + "/" + chain
	f.chains[key] = f.chains[key] + "\n" + expr
	return nil
}

func (f *fakeClient) AddElements(table, set string, elements []string) error {
	if err := f.failStep["AddElements"]; err != nil {
		return err
	}
	f.addElemCalls = append(f.addElemCalls, len(elements))
	key := table + "/" + set
	f.sets[key] = append(f.sets[key], elements...)
	return nil
}

func (f *fakeClient) FlushSet(table, set string) error {
	if err := f.failStep["FlushSet"]; err != nil {
		return err
	}
	f.flushSetCalls = append(f.flushSetCalls, set)
	f.sets[table+"/"+set] = nil
	return nil
}

func (f *fakeClient) DeleteTable(table string) error {
	if err := f.failStep["DeleteTable"]; err != nil {
		return err
	}
	f.deleteTableCalls++
	delete(f.tables, table)
	return nil
}

func (f *fakeClient) TableExists(table string) (bool, error) {
	if err := f.failStep["TableExists"]; err != nil {
		return false, err
	}
	return f.tables[table], nil
}

func (f *fakeClient) ListSet(table, set string) ([]string, error) {
	if err := f.failStep["ListSet"]; err != nil {
		return nil, err
	}
	return f.sets[table+"/"+set], nil
}

func (f *fakeClient) rulesInChain(chain string) []string {
	var rules []string
	for _, call := range f.addRuleCalls {
		if strings.HasPrefix(call, chain+": ") {
			rules = append(rules, strings.TrimPrefix(call, chain+": "))
		}
	}
	return rules
}

// fakeBackend records Applier interactions without any topology behind it.
type fakeBackend struct {
	topologyErr error
	flushErr    map[config.Family]error
	addErr      map[config.Family]error

	topologyCalls int
	flushCalls    []config.Family
	addCalls      []struct {
		family config.Family
		count  int
	}
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		flushErr: make(map[config.Family]error),
		addErr:   make(map[config.Family]error),
	}
}

func (f *fakeBackend) EnsureTopology() error {
	f.topologyCalls++
	return f.topologyErr
}

func (f *fakeBackend) FlushSet(family config.Family) error {
	if err := f.flushErr[family]; err != nil {
		return err
	}
	f.flushCalls = append(f.flushCalls, family)
	return nil
}

func (f *fakeBackend) AddElements(family config.Family, elements []string) error {
	if err := f.addErr[family]; err != nil {
		return err
	}
	f.addCalls = append(f.addCalls, struct {
		family config.Family
		count  int
	}{family, len(elements)})
	return nil
}

func (f *fakeBackend) ListSet(family config.Family) ([]string, error) {
	return nil, nil
}

func (f *fakeBackend) ClearAll() error {
	return nil
}

func (f *fakeBackend) Check() []CheckResult {
	return nil
}
