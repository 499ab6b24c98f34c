// Package linter runs a registry of style/correctness rules over a parsed
// regex AST, each identified by a stable issue ID. The registry shape
// (sync.RWMutex-guarded map, populated by each rule's init()) is the same
// "pluggable analysis, registered by side effect, looked up by stable
// string" pattern the teacher's internal/flavor registry uses to select
// regex flavors; here it selects lint rules instead.
package linter

import (
	"sort"
	"sync"

	"github.com/0x4d5352/rescope/internal/ast"
	"github.com/0x4d5352/rescope/internal/token"
)

// Warning is a single lint finding.
type Warning struct {
	ID      string
	Message string
	Span    token.Span
}

// Context carries the information a rule may need beyond the bare AST:
// currently just the pattern's flags, for flag-interaction rules.
type Context struct {
	Flags string
}

func (c Context) HasFlag(f byte) bool {
	for i := 0; i < len(c.Flags); i++ {
		if c.Flags[i] == f {
			return true
		}
	}
	return false
}

// Rule is one independently registered lint check.
type Rule struct {
	// ID is the stable issue identifier, e.g. "regex.lint.flag.useless.i".
	ID string
	// Description is a short human-readable summary, shown by listing
	// tools; not included in individual Warnings.
	Description string
	// Check runs the rule against a parsed pattern, returning zero or
	// more warnings.
	Check func(r *ast.Regex, ctx Context) []Warning
}

var (
	registry     = make(map[string]Rule)
	registryLock sync.RWMutex
)

// Register adds a rule to the registry, replacing any existing rule with
// the same ID. Called from each rule file's init().
func Register(r Rule) {
	registryLock.Lock()
	defer registryLock.Unlock()
	registry[r.ID] = r
}

// List returns every registered rule ID in sorted order.
func List() []string {
	registryLock.RLock()
	defer registryLock.RUnlock()
	ids := make([]string, 0, len(registry))
	for id := range registry {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Lint runs every registered rule against r and returns the combined,
// ID-stable-ordered warnings. disabled names rules to skip.
func Lint(r *ast.Regex, disabled ...string) []Warning {
	skip := make(map[string]bool, len(disabled))
	for _, id := range disabled {
		skip[id] = true
	}
	ctx := Context{Flags: r.Flags}

	registryLock.RLock()
	ids := make([]string, 0, len(registry))
	for id := range registry {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	rules := make([]Rule, len(ids))
	for i, id := range ids {
		rules[i] = registry[id]
	}
	registryLock.RUnlock()

	var out []Warning
	for _, rule := range rules {
		if skip[rule.ID] {
			continue
		}
		out = append(out, rule.Check(r, ctx)...)
	}
	return out
}
