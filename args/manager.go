package args

import (
	"fmt"
	"strings"
)

// chain is the rule storage shared between managers built by FromExisting.
type chain struct {
	rules []Rule
}

// Manager is an ordered chain of rules.
type Manager struct {
	c *chain
}

// NewManager returns an empty Manager.
func NewManager() *Manager { return &Manager{c: &chain{}} }

// FromExisting returns a Manager sharing src's rule storage, so rules
// appended through either are visible to both. With disable, src is reset to
// a fresh empty chain and no longer applies the shared rules. A nil src
// yields an empty Manager.
func FromExisting(src *Manager, disable bool) *Manager {
	if src == nil {
		return NewManager()
	}
	m := &Manager{c: src.c}
	if disable {
		src.Disable()
	}
	return m
}

// Disable detaches m from its rules.
func (m *Manager) Disable() { m.c = &chain{} }

// Append adds rules in order. Each rule is checked against every rule already
// present before it is inserted; on the first inconsistency the offending
// rule is dropped and the error returned. Rules of the same call that were
// accepted before the failure stay in the chain.
func (m *Manager) Append(rules ...Rule) error {
	for _, r := range rules {
		if r == nil {
			continue
		}
		for _, existing := range m.c.rules {
			if err := Consistent(existing, r); err != nil {
				return err
			}
		}
		m.c.rules = append(m.c.rules, r)
	}
	return nil
}

// MustAppend is like Append but panics on a configuration error.
func (m *Manager) MustAppend(rules ...Rule) *Manager {
	if err := m.Append(rules...); err != nil {
		panic(err)
	}
	return m
}

// Apply folds call through every rule in chain order and stops at the first
// error, which is returned unmodified. The caller's kwargs map is not mutated.
func (m *Manager) Apply(call Call) (Call, error) {
	out := call.clone()
	for _, r := range m.c.rules {
		var err error
		out, err = r.Apply(out)
		if err != nil {
			return out, err
		}
	}
	return out, nil
}

// Rules returns a copy of the chain.
func (m *Manager) Rules() []Rule { return append([]Rule(nil), m.c.rules...) }

func (m *Manager) Len() int { return len(m.c.rules) }

func (m *Manager) String() string {
	b := &strings.Builder{}
	b.WriteString("ArgsManager\n")
	for i, r := range m.c.rules {
		fmt.Fprintf(b, "  %d: %s\n", i, r)
	}
	return b.String()
}
