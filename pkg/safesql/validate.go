package safesql

import "strings"

// bannedKeywords are rejected anywhere in Code state, including inside
// subqueries. INTO is banned because SELECT ... INTO can create tables in
// some dialects.
var bannedKeywords = []string{
	// DML
	"INSERT", "UPDATE", "DELETE", "MERGE", "REPLACE", "UPSERT",
	// DDL / schema + admin
	"CREATE", "ALTER", "DROP", "TRUNCATE", "RENAME", "GRANT", "REVOKE",
	// Side-effectful
	"EXEC", "EXECUTE", "CALL", "INTO", "VACUUM", "PRAGMA", "ATTACH", "DETACH", "COPY",
}

var startKeywords = []string{"SELECT", "WITH"}

// Validate checks that sql is a single, read-only, well-formed statement.
// It fails with ErrEmptyQuery, ErrMultipleStatements, ErrNotReadOnly, or
// *ForbiddenKeywordError. Keywords inside string literals, quoted
// identifiers, comments, and dollar-quoted bodies are ignored.
func Validate(sql string) error {
	trimmed := strings.TrimSpace(sql)
	if trimmed == "" {
		return ErrEmptyQuery
	}

	// One trailing semicolon is allowed: the last Code-state semicolon is
	// trailing when only whitespace and comments follow it.
	semis := FindOccurrences(trimmed, ";", 0, 0)
	if len(semis) > 0 && firstCodeOffsetFrom(trimmed, semis[len(semis)-1]+1) < 0 {
		semis = semis[:len(semis)-1]
	}
	if len(semis) > 0 {
		return ErrMultipleStatements
	}

	start := FindFirstKeyword(trimmed, startKeywords, 0, false)
	if start < 0 || start != firstCodeOffsetFrom(trimmed, 0) {
		return ErrNotReadOnly
	}

	if off := FindFirstKeyword(trimmed, bannedKeywords, 0, false); off >= 0 {
		return &ForbiddenKeywordError{Keyword: keywordAt(trimmed, off, bannedKeywords)}
	}
	return nil
}

// firstCodeOffsetFrom returns the offset of the first non-whitespace
// Code-state character at or after from, skipping comments and literals.
// Returns -1 when nothing but whitespace, comments, and literals remain.
func firstCodeOffsetFrom(sql string, from int) int {
	s := newScanner(sql)
	for s.pos < len(s.input) {
		if s.state != stateCode {
			s.advanceNonCode()
			continue
		}
		if s.tryEnter() {
			continue
		}
		if s.pos >= from {
			switch s.input[s.pos] {
			case ' ', '\t', '\r', '\n':
			default:
				return s.pos
			}
		}
		s.advanceCode()
	}
	return -1
}

// keywordAt returns which of the keywords matches at offset off.
func keywordAt(sql string, off int, keywords []string) string {
	rest := sql[off:]
	for _, kw := range keywords {
		if len(rest) < len(kw) || !asciiFoldEqual(rest[:len(kw)], kw) {
			continue
		}
		if len(rest) > len(kw) && isIdentChar(rest[len(kw)]) {
			continue
		}
		return kw
	}
	return ""
}
