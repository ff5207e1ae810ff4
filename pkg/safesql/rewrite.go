package safesql

import (
	"fmt"
	"strings"
)

// CanonicalOrderType normalizes known user/model variants of the order_type
// enum. Canonical values are gift_card and merchandise; anything else
// reports false.
func CanonicalOrderType(value string) (string, bool) {
	lowered := strings.ToLower(strings.TrimSpace(value))
	if lowered == "" {
		return "", false
	}
	normalized := strings.NewReplacer(" ", "", "-", "", "_", "").Replace(lowered)
	switch normalized {
	case "giftcard", "giftcards":
		return "gift_card", true
	case "merch", "merchandise":
		return "merchandise", true
	}
	return "", false
}

// span is a literal region scheduled for replacement.
type span struct {
	start, end  int
	replacement string
}

// RewriteOrderTypeLiterals rewrites known order_type literal variants to
// canonical enum values and returns one warning per element changed.
//
// Only two patterns are rewritten, and only outside comments, quotes, and
// dollar-quoted bodies:
//
//	order_type = '<literal>'
//	order_type IN ('<lit1>', '<lit2>', ...)
//
// Elements that are already canonical or unrecognized are left as-is. A list
// that cannot be parsed cleanly (for example an unterminated quote) is left
// completely untouched; partial rewrites are never produced. The rewrite is
// idempotent.
func RewriteOrderTypeLiterals(sql string) (string, []string) {
	if sql == "" {
		return sql, nil
	}

	var (
		spans    []span
		warnings []string
	)

	s := newScanner(sql)
	for s.pos < len(s.input) {
		if s.state != stateCode {
			s.advanceNonCode()
			continue
		}
		if s.tryEnter() {
			continue
		}
		if s.matchesWord("ORDER_TYPE") {
			j := skipWS(sql, s.pos+len("ORDER_TYPE"))
			j = skipTypeCast(sql, j)

			if j < len(sql) && sql[j] == '=' {
				k := skipWS(sql, j+1)
				if litEnd, value, ok := parseSingleQuoted(sql, k); ok {
					if canonical, known := CanonicalOrderType(value); known && canonical != value {
						spans = append(spans, span{start: k, end: litEnd, replacement: "'" + escapeStringLiteral(canonical) + "'"})
						warnings = append(warnings, orderTypeWarning(value, canonical))
					}
				}
			} else if j+2 <= len(sql) && asciiFoldEqual(sql[j:j+2], "IN") && (j+2 == len(sql) || !isIdentChar(sql[j+2])) {
				listSpans, listWarnings, ok := parseOrderTypeInList(sql, skipWS(sql, j+len("IN")))
				if ok {
					spans = append(spans, listSpans...)
					warnings = append(warnings, listWarnings...)
				}
			}
		}
		s.advanceCode()
	}

	if len(spans) == 0 {
		return sql, nil
	}

	var out strings.Builder
	last := 0
	for _, sp := range spans {
		out.WriteString(sql[last:sp.start])
		out.WriteString(sp.replacement)
		last = sp.end
	}
	out.WriteString(sql[last:])
	return out.String(), warnings
}

// parseOrderTypeInList parses an IN ('a', 'b', ...) literal list starting at
// the opening paren and returns replacement spans for every element with a
// known non-canonical value. ok is false when the list does not consist of
// cleanly comma-separated single-quoted literals.
func parseOrderTypeInList(sql string, open int) ([]span, []string, bool) {
	if open >= len(sql) || sql[open] != '(' {
		return nil, nil, false
	}

	var (
		spans    []span
		warnings []string
	)
	k := open + 1
	for {
		k = skipWS(sql, k)
		if k >= len(sql) {
			return nil, nil, false
		}
		if sql[k] == ')' {
			return spans, warnings, true
		}

		litEnd, value, ok := parseSingleQuoted(sql, k)
		if !ok {
			return nil, nil, false
		}
		if canonical, known := CanonicalOrderType(value); known && canonical != value {
			spans = append(spans, span{start: k, end: litEnd, replacement: "'" + escapeStringLiteral(canonical) + "'"})
			warnings = append(warnings, orderTypeWarning(value, canonical))
		}

		k = skipTypeCast(sql, litEnd)
		k = skipWS(sql, k)
		if k >= len(sql) {
			return nil, nil, false
		}
		switch sql[k] {
		case ',':
			k++
		case ')':
			return spans, warnings, true
		default:
			return nil, nil, false
		}
	}
}

func orderTypeWarning(from, to string) string {
	return fmt.Sprintf("Normalized order_type: %s → %s", from, to)
}

// BroadenEqualsToContains rewrites the first Code-state occurrence of
// `<column> = '<literal>'` into a case-insensitive substring match, keeping
// any alias qualifier (fo.client_name stays fo.client_name). It is used when
// an exact match against user-entered partial text returned zero rows.
//
// Returns the rewritten SQL, a human-readable warning, and whether a rewrite
// applied. When the pattern is absent, empty, or only appears inside a
// comment or literal, the input is returned unchanged with ok == false.
func BroadenEqualsToContains(sql, column string, dialect Dialect) (string, string, bool) {
	if strings.TrimSpace(sql) == "" {
		return sql, "", false
	}

	matchStart, matchEnd, columnRef, literal, found := findColumnEqualsLiteral(sql, column)
	if !found || literal == "" {
		return sql, "", false
	}

	replacement := dialect.containsMatch(columnRef, literal)
	rewritten := sql[:matchStart] + replacement + sql[matchEnd:]
	warning := fmt.Sprintf("Broadened %s match to a case-insensitive substring after exact match returned no rows.", column)
	return rewritten, warning, true
}

// findColumnEqualsLiteral locates `column [::cast] = '<literal>' [::cast]` in
// Code state. The returned span covers the (possibly alias-qualified) column
// reference through the trailing cast.
func findColumnEqualsLiteral(sql, column string) (start, end int, columnRef, literal string, found bool) {
	upperColumn := strings.ToUpper(column)

	s := newScanner(sql)
	for s.pos < len(s.input) {
		if s.state != stateCode {
			s.advanceNonCode()
			continue
		}
		if s.tryEnter() {
			continue
		}
		if s.matchesWord(upperColumn) {
			colEnd := s.pos + len(column)
			matchStart := s.pos
			// Pull in an alias qualifier like "fo." when present.
			if s.pos > 0 && sql[s.pos-1] == '.' {
				j := s.pos - 2
				for j >= 0 && isIdentChar(sql[j]) {
					j--
				}
				if j+1 < s.pos-1 {
					matchStart = j + 1
				}
			}

			refEnd := castChainEnd(sql, colEnd)
			j := skipWS(sql, refEnd)
			if j < len(sql) && sql[j] == '=' {
				k := skipWS(sql, j+1)
				if litEnd, value, ok := parseSingleQuoted(sql, k); ok {
					return matchStart, castChainEnd(sql, litEnd), sql[matchStart:refEnd], value, true
				}
			}
		}
		s.advanceCode()
	}
	return 0, 0, "", "", false
}

// skipWS returns the first offset at or after i that is not whitespace.
func skipWS(sql string, i int) int {
	for i < len(sql) {
		switch sql[i] {
		case ' ', '\t', '\r', '\n':
			i++
		default:
			return i
		}
	}
	return i
}

// castChainEnd returns the offset just past any ::typename chain following
// offset i. Unlike skipTypeCast it never consumes trailing whitespace, so the
// result is usable as the end of a replacement span.
func castChainEnd(sql string, i int) int {
	end := i
	for {
		j := skipWS(sql, end)
		if !strings.HasPrefix(sql[j:], "::") {
			return end
		}
		j += 2
		for j < len(sql) && (isIdentChar(sql[j]) || sql[j] == '.') {
			j++
		}
		end = j
	}
}

// skipTypeCast skips whitespace and any number of ::typename suffixes.
func skipTypeCast(sql string, i int) int {
	for {
		i = skipWS(sql, i)
		if !strings.HasPrefix(sql[i:], "::") {
			return i
		}
		i += 2
		for i < len(sql) && (isIdentChar(sql[i]) || sql[i] == '.') {
			i++
		}
	}
}

// parseSingleQuoted parses a single-quoted literal starting at i, honoring
// doubled-quote escapes. Returns the offset just past the closing quote and
// the unescaped value. ok is false when i is not a quote or the literal is
// unterminated.
func parseSingleQuoted(sql string, i int) (end int, value string, ok bool) {
	if i >= len(sql) || sql[i] != '\'' {
		return 0, "", false
	}
	var out strings.Builder
	j := i + 1
	for j < len(sql) {
		if sql[j] == '\'' {
			if j+1 < len(sql) && sql[j+1] == '\'' {
				out.WriteByte('\'')
				j += 2
				continue
			}
			return j + 1, out.String(), true
		}
		out.WriteByte(sql[j])
		j++
	}
	return 0, "", false
}
