// Package model reads Active Record model files for metadata that migrations
// depend on, such as the columns a model ignores.
package model

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/jinzhu/inflection"
	"go.uber.org/zap"

	"github.com/aqasim81/migrationcop/internal/parser"
	"github.com/aqasim81/migrationcop/internal/pattern"
	"github.com/aqasim81/migrationcop/internal/syntax"
)

// DefaultDir is where Rails keeps model files, relative to the project root.
const DefaultDir = "app/models"

// Matchers for `self.ignored_columns +=` and `self.ignored_columns =`.
var ignoredColumns = []*pattern.Matcher{
	pattern.MustCompile(pattern.Node(syntax.OpAsgn, ignoredTarget(), pattern.Capture("columns", columnArray()))),
	pattern.MustCompile(pattern.Node(syntax.Asgn, ignoredTarget(), pattern.Capture("columns", columnArray()))),
}

func ignoredTarget() pattern.Pattern {
	return pattern.Send(pattern.Type(syntax.Self), []string{"ignored_columns"})
}

func columnArray() pattern.Pattern {
	return pattern.Node(syntax.Array, pattern.RestOf(pattern.Type(syntax.Str, syntax.Sym)))
}

// ModelName maps a table name to the snake-cased model file name.
func ModelName(table string) string {
	return inflection.Singular(table)
}

type entry struct {
	once    sync.Once
	columns map[string]struct{}
}

// Catalog loads model files on demand. Each model is read at most once; the
// catalog is safe for concurrent use.
type Catalog struct {
	dir    string
	logger *zap.Logger

	mu      sync.Mutex
	entries map[string]*entry
}

// NewCatalog returns a catalog over the models in dir.
func NewCatalog(dir string, logger *zap.Logger) *Catalog {
	if dir == "" {
		dir = DefaultDir
	}

	if logger == nil {
		logger = zap.NewNop()
	}

	return &Catalog{dir: dir, logger: logger, entries: make(map[string]*entry)}
}

// IgnoredColumns returns the columns listed in self.ignored_columns of the
// model for table. A missing or unparsable model file ignores nothing.
func (c *Catalog) IgnoredColumns(ctx context.Context, table string) map[string]struct{} {
	name := ModelName(table)

	c.mu.Lock()
	e, ok := c.entries[name]
	if !ok {
		e = &entry{}
		c.entries[name] = e
	}
	c.mu.Unlock()

	e.once.Do(func() {
		cols, err := c.load(ctx, name)
		if err != nil {
			c.logger.Info("model unavailable, treating no columns as ignored",
				zap.String("model", name),
				zap.Error(err),
			)

			cols = map[string]struct{}{}
		}

		e.columns = cols
	})

	return e.columns
}

// IsIgnored reports whether column is ignored by the model for table.
func (c *Catalog) IsIgnored(ctx context.Context, table, column string) bool {
	_, ok := c.IgnoredColumns(ctx, table)[column]

	return ok
}

func (c *Catalog) load(ctx context.Context, name string) (map[string]struct{}, error) {
	path := filepath.Join(c.dir, name+".rb")

	src, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return map[string]struct{}{}, nil
	}

	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	return ParseIgnoredColumns(ctx, src)
}

// ParseIgnoredColumns extracts ignored column names from model source.
func ParseIgnoredColumns(ctx context.Context, src []byte) (map[string]struct{}, error) {
	root, err := parser.ParseRuby(ctx, src)
	if err != nil {
		return nil, err
	}

	cols := make(map[string]struct{})

	root.Walk(func(n *syntax.Node) bool {
		r, ok := matchIgnoredColumns(n)
		if !ok {
			return true
		}

		if n.Is(syntax.OpAsgn) && n.Value() != "+=" {
			return false
		}

		for _, item := range r.Node("columns").Children() {
			cols[item.Value()] = struct{}{}
		}

		return false
	})

	return cols, nil
}

func matchIgnoredColumns(n *syntax.Node) (pattern.Result, bool) {
	for _, m := range ignoredColumns {
		if r := m.Match(n); r.Matched {
			return r, true
		}
	}

	return pattern.Result{}, false
}
