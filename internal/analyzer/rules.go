package analyzer

import (
	"context"
	"fmt"
	"slices"

	"go.uber.org/zap"

	"github.com/aqasim81/migrationcop/internal/migration"
	"github.com/aqasim81/migrationcop/internal/patch"
	"github.com/aqasim81/migrationcop/internal/syntax"
)

// Rule is the interface that all migration checks must implement.
type Rule interface {
	// ID returns a unique kebab-case identifier for this rule.
	ID() string
	// Description is a one-line summary shown by `migrationcop rules`.
	Description() string
	// DefaultSeverity is used unless the configuration overrides it.
	DefaultSeverity() Severity
	// Triggers lists the node shapes the rule is dispatched on.
	Triggers() []Trigger
	// Check inspects a triggering node and returns any offenses.
	Check(node *syntax.Node, ctx *RuleContext) []Offense
}

// Configurable is implemented by rules that accept options.
type Configurable interface {
	// ApplySettings validates and applies options from the configuration.
	ApplySettings(settings map[string]any) error
	// DefaultSettings returns the options in effect before configuration.
	DefaultSettings() map[string]any
}

// Trigger selects the nodes a rule is invoked for: every node of Kind, or for
// Send nodes only the listed method names.
type Trigger struct {
	Kind    syntax.Kind
	Methods []string
}

// OnSend triggers on calls to the given methods.
func OnSend(methods ...string) Trigger {
	return Trigger{Kind: syntax.Send, Methods: methods}
}

// Offense is one problem found by a rule.
type Offense struct {
	Span    syntax.Span
	Message string
	// Severity overrides the rule severity when non-zero.
	Severity Severity
	// Correct stages the edits that fix the offense; nil when not correctable.
	Correct func(b *patch.Builder)
}

// RuleContext provides the unit under analysis to rules.
type RuleContext struct {
	// Context bounds lookups of external state such as the schema snapshot.
	Context   context.Context //nolint:containedctx // scoped to one pass
	Migration *migration.Migration
	Source    *syntax.Source
	Logger    *zap.Logger
}

// Text returns the full source text of the unit.
func (c *RuleContext) Text() string { return c.Source.Text() }

// Ctx returns the pass context, never nil.
func (c *RuleContext) Ctx() context.Context {
	if c.Context == nil {
		return context.Background()
	}

	return c.Context
}

// Slice returns the source text covered by span.
func (c *RuleContext) Slice(s syntax.Span) string { return c.Source.Slice(s) }

// Registry holds a collection of rules indexed by trigger.
type Registry struct {
	rules  []Rule
	byKind map[syntax.Kind][]int
	bySend map[string][]int
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		byKind: make(map[syntax.Kind][]int),
		bySend: make(map[string][]int),
	}
}

// Register adds a rule to the registry and indexes its triggers.
func (r *Registry) Register(rule Rule) error {
	if _, ok := r.Lookup(rule.ID()); ok {
		return fmt.Errorf("%w: %s", ErrDuplicateRule, rule.ID())
	}

	for _, t := range rule.Triggers() {
		if !t.Kind.Valid() {
			return fmt.Errorf("%w: %s declares kind %d", ErrInvalidTrigger, rule.ID(), t.Kind)
		}

		if len(t.Methods) > 0 && t.Kind != syntax.Send {
			return fmt.Errorf("%w: %s declares methods on %s", ErrInvalidTrigger, rule.ID(), t.Kind)
		}
	}

	idx := len(r.rules)
	r.rules = append(r.rules, rule)

	for _, t := range rule.Triggers() {
		if len(t.Methods) == 0 {
			r.byKind[t.Kind] = appendUnique(r.byKind[t.Kind], idx)

			continue
		}

		for _, m := range t.Methods {
			r.bySend[m] = appendUnique(r.bySend[m], idx)
		}
	}

	return nil
}

// MustRegister is Register that panics on error, for static rule sets.
func (r *Registry) MustRegister(rules ...Rule) {
	for _, rule := range rules {
		if err := r.Register(rule); err != nil {
			panic(err)
		}
	}
}

func appendUnique(s []int, v int) []int {
	if slices.Contains(s, v) {
		return s
	}

	return append(s, v)
}

// Rules returns all registered rules in registration order.
func (r *Registry) Rules() []Rule {
	return r.rules
}

// IDs returns the registered rule IDs in registration order.
func (r *Registry) IDs() []string {
	ids := make([]string, len(r.rules))
	for i, rule := range r.rules {
		ids[i] = rule.ID()
	}

	return ids
}

// Lookup finds a rule by ID.
func (r *Registry) Lookup(id string) (Rule, bool) {
	for _, rule := range r.rules {
		if rule.ID() == id {
			return rule, true
		}
	}

	return nil, false
}

// Filter returns a registry holding only the rules for which keep is true.
func (r *Registry) Filter(keep func(Rule) bool) *Registry {
	out := NewRegistry()

	for _, rule := range r.rules {
		if keep(rule) {
			out.MustRegister(rule)
		}
	}

	return out
}

// For returns the rules triggered by n, in registration order.
func (r *Registry) For(n *syntax.Node) []Rule {
	idx := r.byKind[n.Kind()]

	if n.Kind() == syntax.Send {
		if bySend := r.bySend[n.Method()]; len(bySend) > 0 {
			idx = append(slices.Clone(idx), bySend...)
			slices.Sort(idx)
			idx = slices.Compact(idx)
		}
	}

	if len(idx) == 0 {
		return nil
	}

	out := make([]Rule, len(idx))
	for i, j := range idx {
		out[i] = r.rules[j]
	}

	return out
}
