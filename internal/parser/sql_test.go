package parser_test

import (
	"testing"

	pg_query "github.com/pganalyze/pg_query_go/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aqasim81/migrationcop/internal/parser"
)

func TestParseSQL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		sql       string
		wantErr   bool
		wantStmts int
		check     func(t *testing.T, result *parser.SQLResult)
	}{
		{
			name:      "heredoc body with an index",
			sql:       "\n  CREATE INDEX index_users_on_email ON users (email);\n",
			wantStmts: 1,
			check: func(t *testing.T, result *parser.SQLResult) {
				t.Helper()
				node, ok := result.Stmts[0].Stmt.Node.(*pg_query.Node_IndexStmt)
				require.True(t, ok, "expected IndexStmt node")
				assert.False(t, node.IndexStmt.Concurrent)
				assert.Equal(t, "CREATE INDEX index_users_on_email ON users (email)", result.Statement(0))
			},
		},
		{
			name:      "structure dump fragment",
			sql:       "SET statement_timeout = 0;\nCREATE TABLE public.users (id bigint NOT NULL, email character varying);\n",
			wantStmts: 2,
			check: func(t *testing.T, result *parser.SQLResult) {
				t.Helper()
				_, ok := result.Stmts[1].Stmt.Node.(*pg_query.Node_CreateStmt)
				assert.True(t, ok, "expected CreateStmt node")
			},
		},
		{
			name:      "constraint without trailing semicolon",
			sql:       "ALTER TABLE orders ADD CONSTRAINT price_positive CHECK (price > 0) NOT VALID",
			wantStmts: 1,
			check: func(t *testing.T, result *parser.SQLResult) {
				t.Helper()
				assert.Equal(t, "ALTER TABLE orders ADD CONSTRAINT price_positive CHECK (price > 0) NOT VALID", result.Statement(0))
				assert.Empty(t, result.Statement(3))
			},
		},
		{
			name:    "invalid SQL returns error",
			sql:     "UPDATE SET WHERE;",
			wantErr: true,
		},
		{
			name:      "blank input has no statements",
			sql:       "  \n\t ",
			wantStmts: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			result, err := parser.ParseSQL(tt.sql)

			if tt.wantErr {
				require.ErrorIs(t, err, parser.ErrInvalidSQL)
				assert.Nil(t, result)

				return
			}

			require.NoError(t, err)
			assert.Len(t, result.Stmts, tt.wantStmts)
			assert.Equal(t, tt.sql, result.SQL)

			if tt.check != nil {
				tt.check(t, result)
			}
		})
	}
}
