package parser //nolint:revive // intentional: does not conflict with go/parser in internal package

import (
	"fmt"
	"strings"

	pg_query "github.com/pganalyze/pg_query_go/v6"
)

// SQLResult holds the statements of a raw SQL fragment, such as the argument
// of an `execute` call or a db/structure.sql dump.
type SQLResult struct {
	Stmts []*pg_query.RawStmt
	SQL   string
}

// Statement returns the text of the i-th statement.
func (r *SQLResult) Statement(i int) string {
	if i < 0 || i >= len(r.Stmts) {
		return ""
	}

	s := r.Stmts[i]
	start := int(s.StmtLocation)
	end := start + int(s.StmtLen)

	if s.StmtLen == 0 || end > len(r.SQL) {
		end = len(r.SQL)
	}

	if start > end {
		return ""
	}

	return strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(r.SQL[start:end]), ";"))
}

// ParseSQL parses PostgreSQL statements. Blank input yields no statements.
func ParseSQL(sql string) (*SQLResult, error) {
	if strings.TrimSpace(sql) == "" {
		return &SQLResult{SQL: sql}, nil
	}

	tree, err := pg_query.Parse(sql)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSQL, err)
	}

	return &SQLResult{Stmts: tree.Stmts, SQL: sql}, nil
}
