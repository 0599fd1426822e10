package rules

import (
	"slices"

	"github.com/aqasim81/migrationcop/internal/analyzer"
	"github.com/aqasim81/migrationcop/internal/schema"
	"github.com/aqasim81/migrationcop/internal/syntax"
)

// AddIndexDuplicateRule flags indexes whose columns are a leftmost prefix of
// an index the table already has. It needs a schema snapshot; without one it
// reports nothing.
type AddIndexDuplicateRule struct {
	meta
	schema *schema.Cache
}

// NewAddIndexDuplicateRule creates a new AddIndexDuplicateRule reading
// existing indexes from cache. A nil cache disables the rule.
func NewAddIndexDuplicateRule(cache *schema.Cache) *AddIndexDuplicateRule {
	return &AddIndexDuplicateRule{
		meta: meta{
			id:          "add-index-duplicate",
			description: "Avoid adding indexes already covered by an existing index",
			severity:    analyzer.Low,
			triggers:    []analyzer.Trigger{analyzer.OnSend("add_index", "index")},
		},
		schema: cache,
	}
}

// Check examines add_index and `t.index` calls against the schema snapshot.
func (r *AddIndexDuplicateRule) Check(n *syntax.Node, ctx *analyzer.RuleContext) []analyzer.Offense {
	if r.schema == nil {
		return nil
	}

	var tableNode, columnsNode *syntax.Node

	switch {
	case n.IsMethod("add_index") && n.Receiver() == nil:
		tableNode, columnsNode = n.Child(0), n.Child(1)
	case n.IsMethod("index") && tableDefinition(n):
		_, call := enclosingBlock(n)
		tableNode, columnsNode = call.FirstArgument(), n.FirstArgument()
	default:
		return nil
	}

	table, ok := identifierName(tableNode)
	if !ok {
		return nil
	}

	columns := indexedColumns(columnsNode)
	if len(columns) == 0 {
		return nil
	}

	for _, existing := range r.schema.Snapshot(ctx.Ctx()).IndexedColumnSets(table) {
		if leftmostPrefix(existing, columns) {
			return []analyzer.Offense{{Span: n.Span(), Message: "Avoid adding duplicate indexes."}}
		}
	}

	return nil
}

func indexedColumns(n *syntax.Node) []string {
	if name, ok := identifierName(n); ok {
		return []string{name}
	}

	if !n.Is(syntax.Array) {
		return nil
	}

	out := make([]string, 0, n.Len())

	for _, c := range n.Children() {
		name, ok := identifierName(c)
		if !ok {
			return nil
		}

		out = append(out, name)
	}

	return out
}

// leftmostPrefix reports whether needle equals the first columns of haystack.
func leftmostPrefix(haystack, needle []string) bool {
	return len(needle) <= len(haystack) && slices.Equal(haystack[:len(needle)], needle)
}
