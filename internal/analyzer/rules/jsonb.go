package rules

import (
	"strings"

	"github.com/aqasim81/migrationcop/internal/analyzer"
	"github.com/aqasim81/migrationcop/internal/patch"
	"github.com/aqasim81/migrationcop/internal/pattern"
	"github.com/aqasim81/migrationcop/internal/syntax"
)

var (
	jsonType = pattern.Capture("type", pattern.Sym("json"))

	columnWithJSON = pattern.MustCompile(pattern.Call([]string{"add_column", "change_column"},
		pattern.Any(), pattern.Any(), jsonType))

	tableChangeToJSON = pattern.MustCompile(pattern.Send(pattern.Type(syntax.Lvar), []string{"change"},
		pattern.Any(), jsonType))

	tableJSONColumn = pattern.MustCompile(pattern.Send(pattern.Type(syntax.Lvar), []string{"json"}, pattern.Rest()))
)

// JsonbRule flags json columns; jsonb supports indexing and equality.
type JsonbRule struct{ meta }

// NewJsonbRule creates a new JsonbRule.
func NewJsonbRule() *JsonbRule {
	return &JsonbRule{meta{
		id:          "jsonb",
		description: "Prefer `jsonb` to `json`",
		severity:    analyzer.Low,
		triggers:    []analyzer.Trigger{analyzer.OnSend("add_column", "change_column", "change", "json")},
	}}
}

// Check examines column definitions for the json type.
func (r *JsonbRule) Check(n *syntax.Node, ctx *analyzer.RuleContext) []analyzer.Offense {
	var target syntax.Span

	if tableJSONColumn.Matches(n) {
		target = n.Selector()
	} else if m := columnWithJSON.Match(n); m.Matched {
		target = symbolName(ctx, m.Node("type"))
	} else if m := tableChangeToJSON.Match(n); m.Matched {
		target = symbolName(ctx, m.Node("type"))
	} else {
		return nil
	}

	return []analyzer.Offense{{
		Span:    target,
		Message: "Prefer `jsonb` to `json`.",
		Correct: func(b *patch.Builder) { b.Replace(target, "jsonb") },
	}}
}

// symbolName returns the span of a symbol without its leading colon.
func symbolName(ctx *analyzer.RuleContext, sym *syntax.Node) syntax.Span {
	s := sym.Span()
	if strings.HasPrefix(ctx.Slice(s), ":") {
		s.Start++
	}

	return s
}
