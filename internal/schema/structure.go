package schema

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os"

	pg_query "github.com/pganalyze/pg_query_go/v6"

	"github.com/aqasim81/migrationcop/internal/parser"
)

// StructureFile reads a pg_dump schema such as db/structure.sql.
type StructureFile struct {
	Path string
}

func (f *StructureFile) String() string { return f.Path }

// Load parses the structure file.
func (f *StructureFile) Load(_ context.Context) (*Snapshot, error) {
	src, err := os.ReadFile(f.Path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadFailed, err)
	}

	return ParseStructure(src)
}

// ParseStructure builds a snapshot from pg_dump output. psql meta-commands
// are skipped; everything else must be valid SQL.
func ParseStructure(src []byte) (*Snapshot, error) {
	result, err := parser.ParseSQL(stripMetaCommands(src))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadFailed, err)
	}

	s := Empty()

	for _, raw := range result.Stmts {
		stmt := raw.GetStmt()

		if create := stmt.GetCreateStmt(); create != nil {
			var cols []string

			for _, elt := range create.TableElts {
				if col := elt.GetColumnDef(); col != nil {
					cols = append(cols, col.Colname)
				}
			}

			s.addTable(qualified(create.Relation), cols...)

			continue
		}

		if idx := stmt.GetIndexStmt(); idx != nil {
			index := Index{Name: idx.Idxname, Unique: idx.Unique}
			plain := true

			for _, p := range idx.IndexParams {
				// Expression keys have no column name; such an index is not comparable.
				elem := p.GetIndexElem()
				if elem == nil || elem.Name == "" {
					plain = false

					break
				}

				index.Columns = append(index.Columns, elem.Name)
			}

			if plain && len(index.Columns) > 0 {
				s.addIndex(qualified(idx.Relation), index)
			}
		}
	}

	return s, nil
}

func qualified(rv *pg_query.RangeVar) string {
	if rv.GetSchemaname() != "" {
		return rv.GetSchemaname() + "." + rv.GetRelname()
	}

	return rv.GetRelname()
}

func stripMetaCommands(src []byte) string {
	var out bytes.Buffer

	sc := bufio.NewScanner(bytes.NewReader(src))
	sc.Buffer(make([]byte, 0, 64*1024), len(src)+1)

	for sc.Scan() {
		line := sc.Bytes()
		if bytes.HasPrefix(bytes.TrimSpace(line), []byte(`\`)) {
			continue
		}

		out.Write(line)
		out.WriteByte('\n')
	}

	return out.String()
}
