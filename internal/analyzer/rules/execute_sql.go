package rules

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/aqasim81/migrationcop/internal/analyzer"
	"github.com/aqasim81/migrationcop/internal/sqlcheck"
	"github.com/aqasim81/migrationcop/internal/syntax"
)

const pgVersionKey = "pg_version"

// ExecuteSQLRule parses the literal SQL passed to `execute` and reports
// statements that lock or rewrite tables.
type ExecuteSQLRule struct {
	meta
	checker *sqlcheck.Checker
}

// NewExecuteSQLRule creates a new ExecuteSQLRule targeting the default
// PostgreSQL version.
func NewExecuteSQLRule() *ExecuteSQLRule {
	return &ExecuteSQLRule{
		meta: meta{
			id:          "execute-sql",
			description: "Check raw SQL in `execute` for locking and rewriting statements",
			severity:    analyzer.Medium,
			triggers:    []analyzer.Trigger{analyzer.OnSend("execute")},
		},
		checker: sqlcheck.New(sqlcheck.DefaultPGVersion),
	}
}

// DefaultSettings returns the options in effect before configuration.
func (r *ExecuteSQLRule) DefaultSettings() map[string]any {
	return map[string]any{pgVersionKey: sqlcheck.DefaultPGVersion}
}

// ApplySettings reads pg_version, the PostgreSQL major version migrations run against.
func (r *ExecuteSQLRule) ApplySettings(settings map[string]any) error {
	for key, value := range settings {
		if key != pgVersionKey {
			return fmt.Errorf("%w: %s: unknown option %q", analyzer.ErrInvalidOption, r.id, key)
		}

		v, ok := value.(int)
		if !ok || v < 1 {
			return fmt.Errorf("%w: %s: %s must be a positive integer, got %v",
				analyzer.ErrInvalidOption, r.id, key, value)
		}

		r.checker = sqlcheck.New(v)
	}

	return nil
}

// PGVersion returns the targeted PostgreSQL major version.
func (r *ExecuteSQLRule) PGVersion() int { return r.checker.PGVersion() }

// Check examines an execute call with a literal SQL argument.
func (r *ExecuteSQLRule) Check(n *syntax.Node, ctx *analyzer.RuleContext) []analyzer.Offense {
	if n.Receiver() != nil {
		return nil
	}

	sql := literalSQL(n.FirstArgument())
	if sql == nil {
		return nil
	}

	findings, err := r.checker.Inspect(sql.Value())
	if err != nil {
		ctx.Logger.Debug("skipping unparsable SQL",
			zap.String("rule", r.id),
			zap.Int("offset", sql.Span().Start),
			zap.Error(err),
		)

		return nil
	}

	out := make([]analyzer.Offense, 0, len(findings))

	for _, f := range findings {
		out = append(out, analyzer.Offense{
			Span:     n.Span(),
			Message:  fmt.Sprintf("%s. %s", f.Message, f.Suggestion),
			Severity: f.Severity,
		})
	}

	return out
}

// literalSQL returns the string literal holding the SQL, looking through
// formatting calls such as `<<~SQL.squish`.
func literalSQL(arg *syntax.Node) *syntax.Node {
	if arg.IsMethod("squish", "strip", "freeze") {
		arg = arg.Receiver()
	}

	if !arg.Is(syntax.Str) {
		return nil
	}

	return arg
}
