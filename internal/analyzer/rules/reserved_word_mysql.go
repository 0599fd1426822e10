package rules

import (
	_ "embed"
	"slices"
	"strings"
	"sync"

	"github.com/aqasim81/migrationcop/internal/analyzer"
	"github.com/aqasim81/migrationcop/internal/pattern"
	"github.com/aqasim81/migrationcop/internal/syntax"
)

//go:embed reserved_words_mysql.txt
var reservedWordsMySQL string

// mysqlReservedWords is parsed on first use and shared read-only afterwards.
var mysqlReservedWords = sync.OnceValue(func() map[string]struct{} {
	words := make(map[string]struct{})

	for _, line := range strings.Split(reservedWordsMySQL, "\n") {
		if w := strings.TrimSpace(line); w != "" && !strings.HasPrefix(w, "#") {
			words[strings.ToLower(w)] = struct{}{}
		}
	}

	return words
})

// IsMySQLReservedWord reports whether name is reserved in MySQL, ignoring case.
func IsMySQLReservedWord(name string) bool {
	_, ok := mysqlReservedWords()[strings.ToLower(name)]

	return ok
}

var (
	nameOption = pattern.HashIncluding(pattern.Option("name", pattern.Capture("name", pattern.Any())))

	addIndexName = pattern.MustCompile(pattern.Call([]string{"add_index"},
		pattern.Any(), pattern.Any(), nameOption))

	addReferenceIndexName = pattern.MustCompile(pattern.Call([]string{"add_reference"},
		pattern.Any(), pattern.Any(), pattern.HashIncluding(pattern.Option("index", nameOption))))

	columnIndexName = pattern.MustCompile(pattern.Send(pattern.Type(syntax.Lvar), columnTypeMethods,
		pattern.Any(), pattern.HashIncluding(pattern.Option("index", nameOption))))

	joinTableName = pattern.MustCompile(pattern.Call([]string{"create_join_table"},
		pattern.Any(), pattern.Any(),
		pattern.HashIncluding(pattern.Option("table_name", pattern.Capture("name", pattern.Any())))))
)

// ReservedWordMySQLRule flags tables, columns and indexes named after MySQL
// reserved words.
type ReservedWordMySQLRule struct{ meta }

// NewReservedWordMySQLRule creates a new ReservedWordMySQLRule.
func NewReservedWordMySQLRule() *ReservedWordMySQLRule {
	methods := append([]string{
		"add_column",
		"add_index",
		"add_reference",
		"create_join_table",
		"create_table",
		"rename",
		"rename_column",
		"rename_index",
		"rename_table",
	}, columnTypeMethods...)

	return &ReservedWordMySQLRule{meta{
		id:          "reserved-word-mysql",
		description: "Avoid MySQL reserved words as identifiers",
		severity:    analyzer.Medium,
		triggers:    []analyzer.Trigger{analyzer.OnSend(methods...)},
	}}
}

// Check reports every identifier of n that is a reserved word.
func (r *ReservedWordMySQLRule) Check(n *syntax.Node, _ *analyzer.RuleContext) []analyzer.Offense {
	var out []analyzer.Offense

	for _, id := range identifiers(n) {
		name, ok := identifierName(id)
		if !ok || !IsMySQLReservedWord(name) {
			continue
		}

		out = append(out, analyzer.Offense{
			Span:    id.Span(),
			Message: "Avoid using MySQL reserved words as identifiers.",
		})
	}

	return out
}

// identifiers returns the table, column and index name nodes declared by n.
func identifiers(n *syntax.Node) []*syntax.Node {
	var out []*syntax.Node

	captured := func(m *pattern.Matcher) {
		if r := m.Match(n); r.Matched {
			out = append(out, r.Node("name"))
		}
	}

	switch method := n.Method(); {
	case method == "create_table":
		out = append(out, n.Child(0))
	case method == "rename_table":
		out = append(out, n.Child(1))
	case method == "create_join_table":
		captured(joinTableName)
	case method == "add_column", method == "rename":
		out = append(out, n.Child(1))
	case method == "rename_column":
		out = append(out, n.Child(2))
	case method == "add_index":
		captured(addIndexName)
	case method == "add_reference":
		captured(addReferenceIndexName)
	case method == "rename_index":
		out = append(out, n.Child(2))
	case slices.Contains(columnTypeMethods, method):
		out = append(out, n.Child(0))
		captured(columnIndexName)
	}

	return slices.DeleteFunc(out, func(id *syntax.Node) bool { return id == nil })
}
