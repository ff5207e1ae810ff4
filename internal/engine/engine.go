// Package engine orchestrates the full response-to-SQL pipeline: extract a
// statement from raw model output, gate it for safety, inject dashboard
// filters, and apply deterministic rewrites.
package engine

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/zmasarw3h/munero-hybrid-dashboard/internal/config"
	"github.com/zmasarw3h/munero-hybrid-dashboard/internal/redact"
	"github.com/zmasarw3h/munero-hybrid-dashboard/pkg/safesql"
)

// Engine runs generated SQL through extraction, validation, filter
// injection, and rewriting. It holds no connection state and is safe for
// concurrent use.
type Engine struct {
	dialect         safesql.Dialect
	factTable       string
	autoPlaceholder bool
	broadenColumns  []string
	logger          *slog.Logger
}

// Result is the outcome of a successful pipeline run.
type Result struct {
	// SQL is the final executable statement.
	SQL string
	// Params holds the named bind parameters for SQL.
	Params map[string]any
	// Warnings lists the deterministic rewrites that were applied.
	Warnings []string
	// CorrelationID ties the result to its log lines.
	CorrelationID string
}

// New builds an Engine from cfg. A nil logger discards all output.
func New(cfg *config.Config, logger *slog.Logger) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	dialect, err := cfg.ParsedDialect()
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &Engine{
		dialect:         dialect,
		factTable:       cfg.FactTable,
		autoPlaceholder: cfg.AutoPlaceholder,
		broadenColumns:  cfg.BroadenColumns,
		logger:          logger,
	}, nil
}

// ProcessResponse takes raw model output plus the dashboard's filter state
// and returns an executable, parameterized statement. The raw text may wrap
// the statement in think tags, code fences, or prose.
func (e *Engine) ProcessResponse(raw string, filters safesql.FilterDescriptor) (*Result, error) {
	cid := redact.NewCorrelationID()
	logger := e.logger.With("correlation_id", cid)
	logger.Debug("processing response",
		"raw", redact.SQL(raw),
		"filters", redact.Filters(filters),
		"dialect", e.dialect.String())

	sql := safesql.ExtractSQL(raw)
	if !safesql.ParenthesesBalanced(sql) {
		logger.Warn("rejected query", "reason", "truncated", "sql", redact.SQL(sql))
		return nil, safesql.ErrTruncatedQuery
	}
	if err := safesql.Validate(sql); err != nil {
		logger.Warn("rejected query", "reason", err, "sql", redact.SQL(sql))
		return nil, err
	}

	injected, params, err := safesql.InjectFilters(sql, filters, e.dialect)
	if errors.Is(err, safesql.ErrMissingPlaceholder) && e.autoPlaceholder {
		var patched string
		patched, err = safesql.EnsureFilterPlaceholder(sql, e.factTable)
		if err == nil {
			logger.Info("inserted missing filter placeholder", "sql", redact.SQL(patched))
			injected, params, err = safesql.InjectFilters(patched, filters, e.dialect)
		}
	}
	if err != nil {
		logger.Warn("filter injection failed", "reason", err, "sql", redact.SQL(sql))
		return nil, err
	}

	final, warnings := safesql.RewriteOrderTypeLiterals(injected)
	for _, w := range warnings {
		logger.Info("rewrite applied", "warning", w)
	}

	// Injection and rewriting only substitute vetted fragments, but the
	// result is re-validated before anything executes it.
	if err := safesql.Validate(final); err != nil {
		return nil, fmt.Errorf("post-rewrite validation: %w", err)
	}

	logger.Debug("pipeline complete",
		"sql", redact.SQL(final),
		"params", redact.Params(params),
		"warnings", len(warnings))

	return &Result{
		SQL:           final,
		Params:        params,
		Warnings:      warnings,
		CorrelationID: cid,
	}, nil
}

// Broaden relaxes exact-equality predicates on the configured text columns
// to case-insensitive substring matches. It is the retry step for queries
// that validly executed but returned no rows. The second return lists one
// warning per relaxed predicate; false means nothing matched.
func (e *Engine) Broaden(sql string) (string, []string, bool) {
	var warnings []string
	out := sql
	for _, column := range e.broadenColumns {
		rewritten, warning, changed := safesql.BroadenEqualsToContains(out, column, e.dialect)
		if changed {
			out = rewritten
			warnings = append(warnings, warning)
			e.logger.Info("broadened predicate", "column", column)
		}
	}
	return out, warnings, len(warnings) > 0
}
