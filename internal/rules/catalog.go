package rules

import (
	"errors"
	"fmt"

	"github.com/ppiankov/hookgate/internal/model"
)

// ErrTierOrder is returned when a block-tier rule follows a warn-tier rule.
var ErrTierOrder = errors.New("block-tier rule listed after warn-tier rule")

// Rule associates a detector with a severity and a human-readable label.
type Rule struct {
	Name     string
	Severity model.Severity
	Label    string
	Detector Detector
}

// Catalog is an ordered, immutable sequence of rules.
// All block-tier rules precede all warn-tier rules.
type Catalog struct {
	rules []Rule
	index map[string]int
}

// NewCatalog validates and freezes rules in the given order.
func NewCatalog(rules ...Rule) (*Catalog, error) {
	c := &Catalog{
		rules: make([]Rule, 0, len(rules)),
		index: make(map[string]int, len(rules)),
	}

	seenWarn := false
	for i, r := range rules {
		if r.Name == "" {
			return nil, fmt.Errorf("rule %d: empty name", i)
		}
		if r.Detector == nil {
			return nil, fmt.Errorf("rule %q: nil detector", r.Name)
		}
		if !r.Severity.Valid() {
			return nil, fmt.Errorf("rule %q: invalid severity %q", r.Name, r.Severity)
		}
		if _, dup := c.index[r.Name]; dup {
			return nil, fmt.Errorf("rule %q: duplicate name", r.Name)
		}
		switch r.Severity {
		case model.SevWarn:
			seenWarn = true
		case model.SevBlock:
			if seenWarn {
				return nil, fmt.Errorf("rule %q: %w", r.Name, ErrTierOrder)
			}
		}
		if r.Label == "" {
			r.Label = r.Name
		}
		c.index[r.Name] = len(c.rules)
		c.rules = append(c.rules, r)
	}

	return c, nil
}

// MustCatalog is NewCatalog for built-in rule sets; it panics on error.
func MustCatalog(rules ...Rule) *Catalog {
	c, err := NewCatalog(rules...)
	if err != nil {
		panic("rules: " + err.Error())
	}
	return c
}

// Len returns the number of rules.
func (c *Catalog) Len() int {
	return len(c.rules)
}

// At returns the i-th rule in evaluation order. The pointer is for lookup
// only; callers must not modify the rule.
func (c *Catalog) At(i int) *Rule {
	return &c.rules[i]
}

// Rules returns a copy of the rules in evaluation order.
func (c *Catalog) Rules() []Rule {
	out := make([]Rule, len(c.rules))
	copy(out, c.rules)
	return out
}

// Lookup finds a rule by name.
func (c *Catalog) Lookup(name string) (*Rule, bool) {
	i, ok := c.index[name]
	if !ok {
		return nil, false
	}
	return &c.rules[i], true
}

// Counts returns the number of rules in each tier.
func (c *Catalog) Counts() (block, warn int) {
	for _, r := range c.rules {
		if r.Severity == model.SevBlock {
			block++
		} else {
			warn++
		}
	}
	return block, warn
}
