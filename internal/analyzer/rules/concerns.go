// Package rules holds the built-in migration cops.
package rules

import (
	"strings"

	"github.com/aqasim81/migrationcop/internal/analyzer"
	"github.com/aqasim81/migrationcop/internal/patch"
	"github.com/aqasim81/migrationcop/internal/pattern"
	"github.com/aqasim81/migrationcop/internal/syntax"
)

// meta carries the identity every rule reports to the registry.
type meta struct {
	id          string
	description string
	severity    analyzer.Severity
	triggers    []analyzer.Trigger
}

// ID returns the rule identifier.
func (m *meta) ID() string { return m.id }

// Description returns the one-line summary of the rule.
func (m *meta) Description() string { return m.description }

// DefaultSeverity returns the severity used unless configuration overrides it.
func (m *meta) DefaultSeverity() analyzer.Severity { return m.severity }

// Triggers returns the node shapes the rule is dispatched on.
func (m *meta) Triggers() []analyzer.Trigger { return m.triggers }

// columnTypeMethods are the table definition methods that declare a column.
var columnTypeMethods = []string{
	"bigint",
	"binary",
	"blob",
	"boolean",
	"date",
	"datetime",
	"decimal",
	"float",
	"integer",
	"numeric",
	"primary_key",
	"string",
	"text",
	"time",
}

var batchMethods = []string{"delete_all", "update_all"}

var disableDDLTransaction = pattern.MustCompile(
	pattern.Call([]string{"disable_ddl_transaction!"}, pattern.Rest()),
)

// batchProcessing reports whether n is a relation-wide update or delete.
func batchProcessing(n *syntax.Node) bool {
	return n.IsMethod(batchMethods...) && n.Receiver() != nil
}

// disableDDLTransactions returns the disable_ddl_transaction! calls that
// precede the method enclosing n, in source order.
func disableDDLTransactions(n *syntax.Node) []*syntax.Node {
	def := n.FirstAncestor(syntax.Def)
	if def == nil {
		return nil
	}

	var out []*syntax.Node

	for _, sibling := range def.LeftSiblings() {
		if disableDDLTransaction.Matches(sibling) {
			out = append(out, sibling)
		}
	}

	return out
}

func withinDisableDDLTransaction(n *syntax.Node) bool {
	return len(disableDDLTransactions(n)) > 0
}

// insertDisableDDLTransaction declares disable_ddl_transaction! above the
// method enclosing n. Offenses in the same method stage the same edit, which
// the composer collapses.
func insertDisableDDLTransaction(b *patch.Builder, ctx *analyzer.RuleContext, n *syntax.Node) {
	def := n.FirstAncestor(syntax.Def)
	if def == nil {
		return
	}

	b.InsertBefore(def.Span(), "disable_ddl_transaction!\n\n"+indentation(ctx, def))
}

// indentation returns the leading spaces that align a new line with n.
func indentation(ctx *analyzer.RuleContext, n *syntax.Node) string {
	return strings.Repeat(" ", ctx.Source.Indentation(n))
}

// enclosingBlock returns the innermost block around n and the call it is
// attached to.
func enclosingBlock(n *syntax.Node) (block, call *syntax.Node) {
	block = n.FirstAncestor(syntax.Block)

	return block, block.BlockCall()
}

// tableDefinition reports whether n is a `t.<method>` call on a block
// parameter, such as `t.index` inside create_table.
func tableDefinition(n *syntax.Node) bool {
	return n.Receiver().Is(syntax.Lvar)
}

// inChangeTable reports whether n is a `t.<method>` call inside a
// change_table block.
func inChangeTable(n *syntax.Node) bool {
	if !tableDefinition(n) {
		return false
	}

	_, call := enclosingBlock(n)

	return call.IsMethod("change_table")
}

// removeOption deletes a keyword pair together with the separator before it.
func removeOption(b *patch.Builder, ctx *analyzer.RuleContext, pair *syntax.Node) {
	b.Remove(patch.ArgumentRemoval(ctx.Text(), pair.Span()))
}

// appendOption adds a keyword option after the last argument of a call.
func appendOption(b *patch.Builder, call *syntax.Node, option string) {
	b.InsertAfter(call.InsertionPoint().Span(), ", "+option)
}

// identifierName returns the value of a symbol or string literal.
func identifierName(n *syntax.Node) (string, bool) {
	if !n.Is(syntax.Sym, syntax.Str) {
		return "", false
	}

	return n.Value(), true
}
