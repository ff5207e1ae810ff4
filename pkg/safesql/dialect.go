package safesql

import (
	"fmt"
	"strings"
)

// Dialect selects between the two quoting/typing behaviors the engine needs.
// Everything outside the two methods below is dialect-agnostic.
type Dialect int

const (
	DialectSQLite Dialect = iota
	DialectPostgres
)

// ParseDialect maps a configuration string to a Dialect.
func ParseDialect(name string) (Dialect, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "sqlite", "sqlite3":
		return DialectSQLite, nil
	case "postgres", "postgresql":
		return DialectPostgres, nil
	default:
		return DialectSQLite, fmt.Errorf("unknown sql dialect %q", name)
	}
}

func (d Dialect) String() string {
	if d == DialectPostgres {
		return "postgresql"
	}
	return "sqlite"
}

// testRowPredicate excludes test rows. Hosted Postgres ingests may store
// is_test as TEXT/BOOLEAN/INT, so the Postgres form is tolerant of all three.
func (d Dialect) testRowPredicate() string {
	if d == DialectPostgres {
		return "COALESCE(NULLIF(lower(is_test::text), ''), '0') IN ('0','false','f')"
	}
	return "is_test = 0"
}

// listClause builds a membership clause for column over values. Postgres uses
// a single array bind; SQLite expands to one named bind per element. The two
// forms are functionally equivalent.
func (d Dialect) listClause(column, paramName string, values []string, params map[string]any) string {
	if d == DialectPostgres {
		params[paramName] = values
		return fmt.Sprintf("%s = ANY(CAST(:%s AS text[]))", column, paramName)
	}
	placeholders := make([]string, len(values))
	for i, v := range values {
		key := fmt.Sprintf("%s_%d", paramName, i)
		placeholders[i] = ":" + key
		params[key] = v
	}
	return fmt.Sprintf("%s IN (%s)", column, strings.Join(placeholders, ", "))
}

// containsMatch builds a case-insensitive substring match for column against
// literal. The literal is escaped, not parameterized, because it originates
// from SQL text that already passed safety validation.
func (d Dialect) containsMatch(column, literal string) string {
	if d == DialectPostgres {
		return fmt.Sprintf("%s ILIKE '%s'", column, escapeStringLiteral("%"+literal+"%"))
	}
	return fmt.Sprintf("LOWER(%s) LIKE '%s'", column, escapeStringLiteral("%"+strings.ToLower(literal)+"%"))
}

// escapeStringLiteral doubles single quotes for safe embedding in a SQL
// string literal.
func escapeStringLiteral(v string) string {
	return strings.ReplaceAll(v, "'", "''")
}
