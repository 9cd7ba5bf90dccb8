package rules

import (
	"fmt"
	"sort"
	"sync"
)

// Catalogue is an explicit, caller-constructed registry of rules.
//
// The orchestrator receives a catalogue by reference instead of reading
// ambient global state, so tests can construct isolated catalogues holding
// a subset of rules.
type Catalogue struct {
	rules  []Rule
	byCode map[string]Rule
}

// NewCatalogue builds a catalogue from the given rules.
// Duplicate codes panic: two rules claiming one code is a programming error.
func NewCatalogue(rules ...Rule) *Catalogue {
	c := &Catalogue{byCode: make(map[string]Rule, len(rules))}
	for _, r := range rules {
		c.add(r)
	}
	return c
}

func (c *Catalogue) add(r Rule) {
	code := r.Metadata().Code
	if _, exists := c.byCode[code]; exists {
		panic(fmt.Sprintf("rules: duplicate rule code %q", code))
	}
	c.byCode[code] = r
	c.rules = append(c.rules, r)
}

// All returns the rules ordered by code.
func (c *Catalogue) All() []Rule {
	out := make([]Rule, len(c.rules))
	copy(out, c.rules)
	sort.Slice(out, func(i, j int) bool {
		return out[i].Metadata().Code < out[j].Metadata().Code
	})
	return out
}

// Get returns the rule registered under code, if any.
func (c *Catalogue) Get(code string) (Rule, bool) {
	r, ok := c.byCode[code]
	return r, ok
}

// Len returns the number of registered rules.
func (c *Catalogue) Len() int { return len(c.rules) }

var (
	defaultMu    sync.Mutex
	defaultRules []Rule
)

// Register adds a rule to the process-default catalogue. Rule packages call
// this from init(); importing the rules/all package registers everything.
func Register(r Rule) {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	defaultRules = append(defaultRules, r)
}

// Default snapshots the process-default catalogue. Rules registered after
// the call are not included.
func Default() *Catalogue {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	return NewCatalogue(defaultRules...)
}
