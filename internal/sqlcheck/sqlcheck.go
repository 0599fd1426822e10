// Package sqlcheck inspects raw PostgreSQL statements embedded in migrations,
// such as the argument of an `execute` call, for operations that lock or
// rewrite tables.
package sqlcheck

import (
	"fmt"
	"unicode/utf8"

	pg_query "github.com/pganalyze/pg_query_go/v6"

	"github.com/aqasim81/migrationcop/internal/analyzer"
	"github.com/aqasim81/migrationcop/internal/parser"
)

// DefaultPGVersion is the PostgreSQL major version assumed when none is configured.
const DefaultPGVersion = 14

const maxStatementLen = 80

// Finding is one dangerous operation found in a statement.
type Finding struct {
	Check      string
	Severity   analyzer.Severity
	Table      string
	Message    string
	Suggestion string
	LockType   string
	Statement  int    // index of the statement within the SQL fragment
	SQL        string // statement text, truncated for display
}

// check inspects one statement. Checks return findings without Statement or
// SQL; Inspect fills those in.
type check func(stmt *pg_query.Node, pgVersion int) []Finding

var checks = []check{
	createIndex,
	addColumnDefault,
	addConstraint,
	alterColumnType,
	setNotNull,
	dropTable,
	vacuumFull,
	lockTable,
	rename,
}

// Checker runs every statement check for a target PostgreSQL version.
type Checker struct {
	pgVersion int
}

// New returns a Checker for the given PostgreSQL major version.
func New(pgVersion int) *Checker {
	if pgVersion <= 0 {
		pgVersion = DefaultPGVersion
	}

	return &Checker{pgVersion: pgVersion}
}

// PGVersion returns the targeted PostgreSQL major version.
func (c *Checker) PGVersion() int { return c.pgVersion }

// Inspect parses sql and returns the findings of all checks in statement order.
func (c *Checker) Inspect(sql string) ([]Finding, error) {
	result, err := parser.ParseSQL(sql)
	if err != nil {
		return nil, fmt.Errorf("inspecting SQL: %w", err)
	}

	var findings []Finding

	for i, stmt := range result.Stmts {
		if stmt.Stmt == nil {
			continue
		}

		for _, fn := range checks {
			for _, f := range fn(stmt.Stmt, c.pgVersion) {
				f.Statement = i
				f.SQL = TruncateSQL(result.Statement(i), maxStatementLen)
				findings = append(findings, f)
			}
		}
	}

	return findings, nil
}

// TableName extracts a qualified table name from a RangeVar.
func TableName(rv *pg_query.RangeVar) string {
	if rv == nil {
		return "<unknown>"
	}

	if rv.Schemaname != "" {
		return rv.Schemaname + "." + rv.Relname
	}

	return rv.Relname
}

// TruncateSQL shortens s to at most maxLen bytes, marking the cut with "...".
// The cut never splits a UTF-8 sequence.
func TruncateSQL(s string, maxLen int) string {
	const ellipsis = "..."

	if len(s) <= maxLen || maxLen <= len(ellipsis) {
		return s
	}

	cut := maxLen - len(ellipsis)
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}

	return s[:cut] + ellipsis
}
