package schema

import (
	"context"
	"path/filepath"
	"strings"
)

// Source loads a Snapshot.
type Source interface {
	Load(ctx context.Context) (*Snapshot, error)
	String() string
}

// SourceFor picks the schema source: a database URL wins over a schema file,
// and a .sql file is read as a pg_dump structure file. With neither it
// returns nil.
func SourceFor(databaseURL, schemaPath string) Source {
	switch {
	case databaseURL != "":
		return &Database{URL: databaseURL}
	case schemaPath == "":
		return nil
	case strings.EqualFold(filepath.Ext(schemaPath), ".sql"):
		return &StructureFile{Path: schemaPath}
	default:
		return &RubyFile{Path: schemaPath}
	}
}
