package rules

import (
	"github.com/aqasim81/migrationcop/internal/analyzer"
	"github.com/aqasim81/migrationcop/internal/patch"
	"github.com/aqasim81/migrationcop/internal/syntax"
)

// AddColumnWithDefaultValueRule flags columns added with a non-nil default.
// The fix adds the column without the default and sets it afterwards with
// change_column_default.
type AddColumnWithDefaultValueRule struct{ meta }

// NewAddColumnWithDefaultValueRule creates a new AddColumnWithDefaultValueRule.
func NewAddColumnWithDefaultValueRule() *AddColumnWithDefaultValueRule {
	return &AddColumnWithDefaultValueRule{meta{
		id:          "add-column-with-default-value",
		description: "Add columns without a default value, then change the default",
		severity:    analyzer.Medium,
		triggers: []analyzer.Trigger{
			analyzer.OnSend("add_column"),
			analyzer.OnSend(columnTypeMethods...),
		},
	}}
}

// Check examines add_column and `t.<type>` calls inside change_table.
func (r *AddColumnWithDefaultValueRule) Check(n *syntax.Node, ctx *analyzer.RuleContext) []analyzer.Offense {
	var target, table, column *syntax.Node

	switch {
	case n.IsMethod("add_column") && n.Receiver() == nil:
		target, table, column = n, n.Child(0), n.Child(1)
	case n.IsMethod(columnTypeMethods...) && inChangeTable(n):
		block, call := enclosingBlock(n)
		target, table, column = block, call.FirstArgument(), n.FirstArgument()
	default:
		return nil
	}

	pair := n.OptionPair("default")
	value := pair.PairValue()

	if table == nil || column == nil || value == nil || value.Is(syntax.Nil) {
		return nil
	}

	return []analyzer.Offense{{
		Span:    pair.Span(),
		Message: "Add the column without a default value then change the default.",
		Correct: func(b *patch.Builder) {
			removeOption(b, ctx, pair)
			b.InsertAfter(target.Span(), "\n"+indentation(ctx, target)+
				"change_column_default "+ctx.Slice(table.Span())+", "+
				ctx.Slice(column.Span())+", "+ctx.Slice(value.Span()))
		},
	}}
}
