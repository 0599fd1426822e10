package analyzer

import (
	"context"
	"fmt"
	"runtime"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/aqasim81/migrationcop/internal/migration"
	"github.com/aqasim81/migrationcop/internal/parser"
	"github.com/aqasim81/migrationcop/internal/patch"
	"github.com/aqasim81/migrationcop/internal/syntax"
)

// DefaultMaxPasses bounds the correction loop of Correct.
const DefaultMaxPasses = 10

// ParseFunc turns migration source into a syntax tree.
type ParseFunc func(ctx context.Context, src []byte) (*syntax.Node, error)

// Option configures the Analyzer.
type Option func(*Analyzer)

// Analyzer runs registered rules against parsed migrations.
type Analyzer struct {
	registry    *Registry
	parseFn     ParseFunc
	logger      *zap.Logger
	severities  map[string]Severity
	maxPasses   int
	concurrency int
}

// New creates a new Analyzer with the given options.
func New(opts ...Option) *Analyzer {
	a := &Analyzer{
		registry:    NewRegistry(),
		parseFn:     parser.ParseRuby,
		logger:      zap.NewNop(),
		maxPasses:   DefaultMaxPasses,
		concurrency: runtime.GOMAXPROCS(0),
	}

	for _, opt := range opts {
		opt(a)
	}

	return a
}

// WithRegistry sets a custom rule registry.
func WithRegistry(r *Registry) Option {
	return func(a *Analyzer) { a.registry = r }
}

// WithParser overrides the Ruby parser function (useful for testing).
func WithParser(fn ParseFunc) Option {
	return func(a *Analyzer) { a.parseFn = fn }
}

// WithLogger sets the logger used for conflicts and recovered rule failures.
func WithLogger(l *zap.Logger) Option {
	return func(a *Analyzer) {
		if l != nil {
			a.logger = l
		}
	}
}

// WithSeverityOverrides replaces the severity of the given rule IDs.
func WithSeverityOverrides(m map[string]Severity) Option {
	return func(a *Analyzer) { a.severities = m }
}

// WithMaxPasses bounds the number of correction passes.
func WithMaxPasses(n int) Option {
	return func(a *Analyzer) {
		if n > 0 {
			a.maxPasses = n
		}
	}
}

// WithConcurrency limits how many migrations AnalyzeAll processes at once.
func WithConcurrency(n int) Option {
	return func(a *Analyzer) {
		if n > 0 {
			a.concurrency = n
		}
	}
}

// pass is the outcome of one walk over a tree. fixes is parallel to
// diagnostics and holds nil for offenses without a staged correction.
type pass struct {
	diagnostics []Diagnostic
	fixes       [][]patch.Edit
}

func (p *pass) correctable() bool {
	for _, f := range p.fixes {
		if len(f) > 0 {
			return true
		}
	}

	return false
}

// Analyze parses and analyzes a single migration without correcting it.
func (a *Analyzer) Analyze(ctx context.Context, m *migration.Migration) (*AnalysisResult, error) {
	p, err := a.inspect(ctx, m, m.Source, false)
	if err != nil {
		return nil, err
	}

	result := &AnalysisResult{
		Migration:   m,
		Diagnostics: p.diagnostics,
		Corrected:   m.Source,
	}
	result.finish()

	return result, nil
}

// Correct analyzes m and applies corrections, re-analyzing the corrected text
// until no correction remains or the pass limit is reached. Diagnostics fixed
// along the way are reported with Corrected set; the rest come from the final
// text. All positions refer to the corrected text.
func (a *Analyzer) Correct(ctx context.Context, m *migration.Migration) (*AnalysisResult, error) {
	result := &AnalysisResult{Migration: m}
	text := m.Source

	for {
		p, err := a.inspect(ctx, m, text, true)
		if err != nil {
			if result.Passes > 0 {
				return nil, fmt.Errorf("correction pass %d of %s: %w", result.Passes, m.Version, err)
			}

			return nil, err
		}

		if !p.correctable() || result.Passes >= a.maxPasses {
			result.Diagnostics = append(result.Diagnostics, p.diagnostics...)

			break
		}

		next, ps, fixed, conflicts, err := a.fix(p, text)
		if err != nil {
			return nil, fmt.Errorf("correcting %s: %w", m.Version, err)
		}

		if next == text {
			result.Diagnostics = append(result.Diagnostics, p.diagnostics...)

			break
		}

		for _, c := range conflicts {
			a.logger.Warn("correction dropped",
				zap.String("migration", m.FilePath),
				zap.String("rule", c.Dropped.Rule),
				zap.Stringer("conflict", c),
			)
		}

		result.Conflicts = append(result.Conflicts, conflicts...)
		result.Diagnostics = append(result.Diagnostics, fixed...)

		for i := range result.Diagnostics {
			result.Diagnostics[i].Span = ps.MapSpan(result.Diagnostics[i].Span)
		}

		result.Passes++
		text = next
	}

	if result.Passes > 0 {
		src := syntax.NewSource(text)
		for i := range result.Diagnostics {
			d := &result.Diagnostics[i]
			d.Line, d.Column = src.Position(d.Span.Start)
		}
	}

	result.Corrected = text
	result.finish()

	return result, nil
}

// fix composes the staged corrections of p and applies them to text. It
// returns the applied edits and the diagnostics whose correction was applied.
func (a *Analyzer) fix(p *pass, text string) (string, patch.PatchSet, []Diagnostic, []patch.Conflict, error) {
	var (
		edits  int
		owners []int
		sets   [][]patch.Edit
	)

	for i, f := range p.fixes {
		if len(f) == 0 {
			continue
		}

		sets = append(sets, f)
		owners = append(owners, i)
		edits += len(f)
	}

	a.logger.Debug("composing corrections", zap.Int("offenses", len(sets)), zap.Int("edits", edits))

	ps, conflicts, accepted := patch.ComposeGroups(sets)

	next, err := patch.Apply(ps, text)
	if err != nil {
		return "", nil, nil, nil, err
	}

	var fixed []Diagnostic

	for g, ok := range accepted {
		if ok {
			d := p.diagnostics[owners[g]]
			d.Corrected = true
			fixed = append(fixed, d)
		}
	}

	return next, ps, fixed, conflicts, nil
}

func (a *Analyzer) inspect(ctx context.Context, m *migration.Migration, text string, correct bool) (*pass, error) {
	root, err := a.parseFn(ctx, []byte(text))
	if err != nil {
		return nil, fmt.Errorf("parsing migration %s: %w", m.Version, err)
	}

	src := syntax.NewSource(text)
	rc := &RuleContext{Context: ctx, Migration: m, Source: src, Logger: a.logger}
	p := &pass{}

	root.Walk(func(n *syntax.Node) bool {
		if ctx.Err() != nil {
			return false
		}

		for _, rule := range a.registry.For(n) {
			for _, o := range a.check(rule, n, rc) {
				line, col := src.Position(o.Span.Start)

				p.diagnostics = append(p.diagnostics, Diagnostic{
					Rule:        rule.ID(),
					Severity:    a.severity(rule, o),
					Message:     o.Message,
					Span:        o.Span,
					Line:        line,
					Column:      col,
					Correctable: o.Correct != nil,
				})

				var edits []patch.Edit
				if correct && o.Correct != nil {
					edits = a.stage(rule, o)
				}

				p.fixes = append(p.fixes, edits)
			}
		}

		return true
	})

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return p, nil
}

// check runs one rule on one node. A rule that panics on an unexpected tree
// shape is treated as not matching.
func (a *Analyzer) check(rule Rule, n *syntax.Node, rc *RuleContext) (out []Offense) {
	defer func() {
		if r := recover(); r != nil {
			a.logger.Debug("rule failed on node",
				zap.String("rule", rule.ID()),
				zap.Stringer("kind", n.Kind()),
				zap.Int("offset", n.Span().Start),
				zap.Any("panic", r),
			)

			out = nil
		}
	}()

	return rule.Check(n, rc)
}

func (a *Analyzer) stage(rule Rule, o Offense) (edits []patch.Edit) {
	defer func() {
		if r := recover(); r != nil {
			a.logger.Debug("correction failed", zap.String("rule", rule.ID()), zap.Any("panic", r))

			edits = nil
		}
	}()

	b := patch.NewBuilder(rule.ID())
	o.Correct(b)

	return b.Edits()
}

func (a *Analyzer) severity(rule Rule, o Offense) Severity {
	if s, ok := a.severities[rule.ID()]; ok {
		return s
	}

	if o.Severity != Safe {
		return o.Severity
	}

	return rule.DefaultSeverity()
}

// AnalyzeAll analyzes (or, with correct, corrects) migrations in parallel.
// Results keep the input order; a migration that cannot be processed carries
// its error in AnalysisResult.Err instead of failing the batch.
func (a *Analyzer) AnalyzeAll(ctx context.Context, migrations []migration.Migration, correct bool) []AnalysisResult {
	results := make([]AnalysisResult, len(migrations))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.concurrency)

	for i := range migrations {
		m := &migrations[i]

		g.Go(func() error {
			var (
				r   *AnalysisResult
				err error
			)

			if correct {
				r, err = a.Correct(gctx, m)
			} else {
				r, err = a.Analyze(gctx, m)
			}

			if err != nil {
				a.logger.Debug("migration skipped", zap.String("migration", m.FilePath), zap.Error(err))
				results[i] = AnalysisResult{Migration: m, Corrected: m.Source, Err: err}

				return nil
			}

			results[i] = *r

			return nil
		})
	}

	_ = g.Wait() // workers never return errors

	return results
}
