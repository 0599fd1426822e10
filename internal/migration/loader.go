package migration

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
)

// filenamePattern matches Rails migration files: {version}_{name}.rb
// (e.g., 20240101120000_add_index_to_users_name.rb).
var filenamePattern = regexp.MustCompile( //nolint:gochecknoglobals // compiled once, used by Load
	`^(\d+)_(.+)\.rb$`,
)

// Options controls migration discovery.
type Options struct {
	// BaseDir is the directory globs are resolved against. Defaults to ".".
	BaseDir string
	// Include lists doublestar globs of files to analyze.
	Include []string
	// Exclude lists doublestar globs of files to skip.
	Exclude []string
}

// Discover expands the include globs under BaseDir and drops excluded files.
// Results are deduplicated and sorted.
func Discover(opts Options) ([]string, error) {
	base := opts.BaseDir
	if base == "" {
		base = "."
	}

	fsys := os.DirFS(base)
	seen := make(map[string]bool)

	var paths []string

	for _, pattern := range opts.Include {
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("%w: %q", ErrInvalidPattern, pattern)
		}

		matches, err := doublestar.Glob(fsys, pattern, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("expanding %q in %s: %w", pattern, base, err)
		}

		for _, rel := range matches {
			excluded, err := matchesAny(opts.Exclude, rel)
			if err != nil {
				return nil, err
			}

			if excluded || seen[rel] {
				continue
			}

			seen[rel] = true
			paths = append(paths, filepath.Join(base, filepath.FromSlash(rel)))
		}
	}

	sort.Strings(paths)

	return paths, nil
}

// Expand resolves command-line arguments: files are kept as given and
// directories are searched recursively for Ruby files.
func Expand(args, exclude []string) ([]string, error) {
	var paths []string

	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", arg, err)
		}

		if !info.IsDir() {
			paths = append(paths, arg)

			continue
		}

		found, err := Discover(Options{BaseDir: arg, Include: []string{"**/*.rb"}, Exclude: exclude})
		if err != nil {
			return nil, err
		}

		paths = append(paths, found...)
	}

	return paths, nil
}

func matchesAny(patterns []string, rel string) (bool, error) {
	for _, p := range patterns {
		ok, err := doublestar.Match(p, rel)
		if err != nil {
			return false, fmt.Errorf("%w: %q", ErrInvalidPattern, p)
		}

		if ok {
			return true, nil
		}
	}

	return false, nil
}

// Load reads a single migration file. Files outside the Rails naming scheme
// are loaded with an empty Version and the base name as Name.
func Load(path string) (Migration, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Migration{}, fmt.Errorf("reading migration file %s: %w", path, err)
	}

	base := filepath.Base(path)
	version, name := "", base

	if matches := filenamePattern.FindStringSubmatch(base); matches != nil {
		version, name = matches[1], matches[2]
	}

	src := string(data)

	return Migration{
		Version:  version,
		Name:     name,
		Source:   src,
		Checksum: ComputeChecksum(src),
		FilePath: path,
	}, nil
}

// LoadFromDir loads every file in dir that follows the Rails naming scheme.
// The result is unsorted.
func LoadFromDir(dir string) ([]Migration, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading migrations directory %s: %w", dir, err)
	}

	var migrations []Migration

	for _, entry := range entries {
		if entry.IsDir() || !filenamePattern.MatchString(entry.Name()) {
			continue
		}

		m, err := Load(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, err
		}

		migrations = append(migrations, m)
	}

	return migrations, nil
}

// IsStale reports whether the file at m.FilePath no longer matches the
// checksum recorded when m was loaded.
func IsStale(m Migration) (bool, error) {
	data, err := os.ReadFile(m.FilePath)
	if err != nil {
		return false, fmt.Errorf("reading migration file %s: %w", m.FilePath, err)
	}

	return ComputeChecksum(string(data)) != m.Checksum, nil
}
