package sqlcheck

import (
	"strings"

	pg_query "github.com/pganalyze/pg_query_go/v6"

	"github.com/aqasim81/migrationcop/internal/analyzer"
)

const (
	pgVersionSafeNonVolatileDefault = 11
	pgVersionSafeSetNotNull         = 12
)

func createIndex(stmt *pg_query.Node, _ int) []Finding {
	idx := stmt.GetIndexStmt()
	if idx == nil || idx.Concurrent {
		return nil
	}

	return []Finding{{
		Check:      "create-index-not-concurrent",
		Severity:   analyzer.High,
		Table:      TableName(idx.Relation),
		Message:    "CREATE INDEX without CONCURRENTLY locks the table for writes",
		Suggestion: "Use CREATE INDEX CONCURRENTLY with disable_ddl_transaction!",
		LockType:   "SHARE",
	}}
}

// alterCmds yields the subcommands of an ALTER TABLE with the given subtype.
func alterCmds(stmt *pg_query.Node, subtype pg_query.AlterTableType) (*pg_query.AlterTableStmt, []*pg_query.AlterTableCmd) {
	alt := stmt.GetAlterTableStmt()
	if alt == nil {
		return nil, nil
	}

	var cmds []*pg_query.AlterTableCmd

	for _, n := range alt.Cmds {
		if cmd := n.GetAlterTableCmd(); cmd != nil && cmd.Subtype == subtype {
			cmds = append(cmds, cmd)
		}
	}

	return alt, cmds
}

func addColumnDefault(stmt *pg_query.Node, pgVersion int) []Finding {
	alt, cmds := alterCmds(stmt, pg_query.AlterTableType_AT_AddColumn)

	var findings []Finding

	for _, cmd := range cmds {
		col := cmd.GetDef().GetColumnDef()
		if col == nil {
			continue
		}

		def := defaultExpr(col)
		if def == nil {
			continue
		}

		if pgVersion >= pgVersionSafeNonVolatileDefault && !isVolatile(def) {
			continue
		}

		msg := "ADD COLUMN with volatile DEFAULT rewrites the entire table"
		if pgVersion < pgVersionSafeNonVolatileDefault {
			msg = "ADD COLUMN with DEFAULT rewrites the entire table on PG < 11"
		}

		findings = append(findings, Finding{
			Check:      "add-column-volatile-default",
			Severity:   analyzer.High,
			Table:      TableName(alt.Relation),
			Message:    msg,
			Suggestion: "Add the column without DEFAULT, then backfill in batches",
			LockType:   "ACCESS EXCLUSIVE",
		})
	}

	return findings
}

// defaultExpr returns the DEFAULT expression of a column, stored by the
// parser as a CONSTR_DEFAULT constraint.
func defaultExpr(col *pg_query.ColumnDef) *pg_query.Node {
	for _, c := range col.Constraints {
		if con := c.GetConstraint(); con != nil && con.Contype == pg_query.ConstrType_CONSTR_DEFAULT {
			return con.RawExpr
		}
	}

	return nil
}

// isVolatile treats constants and casts of constants as stable; any other
// expression, including function calls such as now(), is assumed volatile.
func isVolatile(n *pg_query.Node) bool {
	switch {
	case n == nil:
		return false
	case n.GetAConst() != nil:
		return false
	case n.GetTypeCast() != nil:
		return n.GetTypeCast().GetArg().GetAConst() == nil
	default:
		return true
	}
}

func addConstraint(stmt *pg_query.Node, _ int) []Finding {
	alt, cmds := alterCmds(stmt, pg_query.AlterTableType_AT_AddConstraint)

	var findings []Finding

	for _, cmd := range cmds {
		con := cmd.GetDef().GetConstraint()
		if con == nil || con.SkipValidation {
			continue
		}

		if con.Contype != pg_query.ConstrType_CONSTR_CHECK && con.Contype != pg_query.ConstrType_CONSTR_FOREIGN {
			continue
		}

		findings = append(findings, Finding{
			Check:      "add-constraint-without-not-valid",
			Severity:   analyzer.High,
			Table:      TableName(alt.Relation),
			Message:    "ADD CONSTRAINT without NOT VALID scans the entire table while holding a lock",
			Suggestion: "Add with NOT VALID, then VALIDATE CONSTRAINT in a separate migration",
			LockType:   "ACCESS EXCLUSIVE",
		})
	}

	return findings
}

func alterColumnType(stmt *pg_query.Node, _ int) []Finding {
	alt, cmds := alterCmds(stmt, pg_query.AlterTableType_AT_AlterColumnType)

	findings := make([]Finding, 0, len(cmds))

	for range cmds {
		findings = append(findings, Finding{
			Check:      "alter-column-type",
			Severity:   analyzer.High,
			Table:      TableName(alt.Relation),
			Message:    "ALTER COLUMN TYPE rewrites the entire table while holding an ACCESS EXCLUSIVE lock",
			Suggestion: "Add a new column, backfill it, then swap the columns",
			LockType:   "ACCESS EXCLUSIVE",
		})
	}

	return findings
}

func setNotNull(stmt *pg_query.Node, pgVersion int) []Finding {
	alt, cmds := alterCmds(stmt, pg_query.AlterTableType_AT_SetNotNull)

	findings := make([]Finding, 0, len(cmds))

	for range cmds {
		severity := analyzer.High
		suggestion := "Requires a full table scan. Consider application-level enforcement instead."

		if pgVersion >= pgVersionSafeSetNotNull {
			severity = analyzer.Medium
			suggestion = "First add CHECK (col IS NOT NULL) NOT VALID, then VALIDATE CONSTRAINT, then SET NOT NULL"
		}

		findings = append(findings, Finding{
			Check:      "set-not-null",
			Severity:   severity,
			Table:      TableName(alt.Relation),
			Message:    "SET NOT NULL requires a full table scan to verify no NULL values exist",
			Suggestion: suggestion,
			LockType:   "ACCESS EXCLUSIVE",
		})
	}

	return findings
}

func dropTable(stmt *pg_query.Node, _ int) []Finding {
	if trunc := stmt.GetTruncateStmt(); trunc != nil {
		return []Finding{{
			Check:      "drop-table",
			Severity:   analyzer.Critical,
			Table:      strings.Join(rangeVarNames(trunc.Relations), ", "),
			Message:    "TRUNCATE removes all data from the table and is difficult to reverse",
			Suggestion: "Ensure you have a backup before truncating production tables",
			LockType:   "ACCESS EXCLUSIVE",
		}}
	}

	drop := stmt.GetDropStmt()
	if drop == nil || drop.RemoveType != pg_query.ObjectType_OBJECT_TABLE {
		return nil
	}

	msg := "DROP TABLE is irreversible and will permanently delete all data"
	if drop.MissingOk {
		msg = "DROP TABLE IF EXISTS is irreversible and will permanently delete all data"
	}

	return []Finding{{
		Check:      "drop-table",
		Severity:   analyzer.Critical,
		Table:      strings.Join(dropNames(drop), ", "),
		Message:    msg,
		Suggestion: "Ensure you have a backup and that no application code references this table",
		LockType:   "ACCESS EXCLUSIVE",
	}}
}

func dropNames(drop *pg_query.DropStmt) []string {
	var tables []string

	for _, obj := range drop.Objects {
		var parts []string

		for _, item := range obj.GetList().GetItems() {
			if s := item.GetString_(); s != nil {
				parts = append(parts, s.Sval)
			}
		}

		if len(parts) > 0 {
			tables = append(tables, strings.Join(parts, "."))
		}
	}

	return tables
}

func rangeVarNames(nodes []*pg_query.Node) []string {
	var names []string

	for _, n := range nodes {
		if rv := n.GetRangeVar(); rv != nil {
			names = append(names, TableName(rv))
		}
	}

	return names
}

func vacuumFull(stmt *pg_query.Node, _ int) []Finding {
	vacuum := stmt.GetVacuumStmt()
	if vacuum == nil {
		return nil
	}

	full := false

	for _, opt := range vacuum.Options {
		if opt.GetDefElem().GetDefname() == "full" {
			full = true
		}
	}

	if !full {
		return nil
	}

	table := "<all tables>"

	for _, rel := range vacuum.Rels {
		if rv := rel.GetVacuumRelation().GetRelation(); rv != nil {
			table = TableName(rv)

			break
		}
	}

	return []Finding{{
		Check:      "vacuum-full",
		Severity:   analyzer.High,
		Table:      table,
		Message:    "VACUUM FULL rewrites the entire table and holds an ACCESS EXCLUSIVE lock",
		Suggestion: "Use regular VACUUM instead, which does not block reads or writes",
		LockType:   "ACCESS EXCLUSIVE",
	}}
}

func lockTable(stmt *pg_query.Node, _ int) []Finding {
	lock := stmt.GetLockStmt()
	if lock == nil {
		return nil
	}

	names := rangeVarNames(lock.Relations)
	findings := make([]Finding, 0, len(names))

	for _, name := range names {
		findings = append(findings, Finding{
			Check:      "lock-table",
			Severity:   analyzer.High,
			Table:      name,
			Message:    "Explicit LOCK TABLE can block other queries and cause downtime",
			Suggestion: "Avoid explicit table locks and let PostgreSQL manage locking",
			LockType:   "EXPLICIT",
		})
	}

	return findings
}

func rename(stmt *pg_query.Node, _ int) []Finding {
	r := stmt.GetRenameStmt()
	if r == nil {
		return nil
	}

	var msg string

	switch r.RenameType {
	case pg_query.ObjectType_OBJECT_TABLE:
		msg = "RENAME TABLE breaks application code that references the old name"
	case pg_query.ObjectType_OBJECT_COLUMN:
		msg = "RENAME COLUMN breaks application code that references the old column name"
	default:
		return nil
	}

	return []Finding{{
		Check:      "rename",
		Severity:   analyzer.Medium,
		Table:      TableName(r.Relation),
		Message:    msg,
		Suggestion: "Add the new name alongside the old one, migrate the code, then drop the old name",
		LockType:   "ACCESS EXCLUSIVE",
	}}
}
