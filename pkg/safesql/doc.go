// Package safesql validates and rewrites untrusted, model-generated SQL
// before it reaches a database.
//
// The package is built around a single-pass, literal-aware scanner that
// classifies every position of a SQL string as executable code or as part of
// a comment, quoted string/identifier, or PostgreSQL dollar-quoted body.
// Every other operation is a thin consumer of that scanner, which keeps
// comment and quote handling from diverging between call sites.
//
// # Operations
//
//   - Validate: reject anything that is not a single read-only SELECT/WITH
//     statement, or contains a DDL/DML/admin keyword in executable SQL
//   - InjectFilters: replace the __MUNERO_FILTERS__ placeholder with a
//     parameterized dashboard-filter predicate
//   - ExtractSQL: pull a clean statement out of raw LLM output (reasoning
//     tags, markdown fences, prose)
//   - RewriteOrderTypeLiterals / BroadenEqualsToContains: narrow,
//     literal-level rewrites that never touch surrounding SQL
//
// # Usage
//
//	sql := safesql.ExtractSQL(rawModelOutput)
//	if err := safesql.Validate(sql); err != nil {
//	    return err
//	}
//	final, params, err := safesql.InjectFilters(sql, filters, safesql.DialectPostgres)
//
// All operations are pure string transformations: no I/O, no shared state,
// safe for concurrent use.
package safesql
