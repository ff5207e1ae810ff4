package safesql

import "strings"

// FilterPlaceholder is the sentinel the SQL template must contain exactly
// once, in executable SQL, for filter injection.
const FilterPlaceholder = "__MUNERO_FILTERS__"

// InjectFilters replaces the placeholder token in template with the built
// filter predicate and returns the final SQL plus its parameter map.
//
// The token must appear exactly once as a raw substring (ErrMissingPlaceholder
// / ErrDuplicatePlaceholder otherwise) and that occurrence must be in Code
// state: a token that only appears inside a comment or string literal fails
// with ErrPlaceholderNotInCode.
func InjectFilters(template string, filters FilterDescriptor, dialect Dialect) (string, map[string]any, error) {
	switch n := strings.Count(template, FilterPlaceholder); {
	case n == 0:
		return "", nil, ErrMissingPlaceholder
	case n > 1:
		return "", nil, ErrDuplicatePlaceholder
	}

	offsets := FindOccurrences(template, FilterPlaceholder, 0, 2)
	if len(offsets) != 1 {
		return "", nil, ErrPlaceholderNotInCode
	}

	pred := BuildFilterPredicate(filters, dialect)
	start := offsets[0]
	injected := template[:start] + pred.Clause + template[start+len(FilterPlaceholder):]
	return injected, pred.Params, nil
}

// Clause boundaries that terminate the FROM clause of a plain SELECT.
var fromBoundaryKeywords = []string{"WHERE", "GROUP", "HAVING", "ORDER", "LIMIT", "WINDOW"}

// Set operations combine multiple SELECTs; inserting into one arm would leave
// the others unfiltered.
var setOperationKeywords = []string{"UNION", "INTERSECT", "EXCEPT"}

// EnsureFilterPlaceholder inserts the placeholder token into a template that
// lacks it entirely. This is a narrowly scoped fallback for the case where
// the model forgot the injection contract; it only applies when the statement
// is structurally unambiguous:
//
//   - a single SELECT (not WITH),
//   - whose only table reference is factTable (optional alias),
//   - with no JOIN, no comma-separated multi-table FROM, and no top-level
//     UNION/INTERSECT/EXCEPT.
//
// When a WHERE already exists it becomes WHERE <token> AND (<original>);
// otherwise WHERE <token> is inserted after the table reference. Any
// ambiguity fails with ErrMissingPlaceholder rather than guessing.
func EnsureFilterPlaceholder(template, factTable string) (string, error) {
	if strings.Contains(template, FilterPlaceholder) {
		return template, nil
	}

	trimmed := strings.TrimSpace(template)
	body := strings.TrimSuffix(trimmed, ";")
	terminated := len(body) != len(trimmed)
	body = strings.TrimRight(body, " \t\r\n")

	start := FindFirstKeyword(body, startKeywords, 0, true)
	if start != 0 || keywordAt(body, 0, startKeywords) != "SELECT" {
		return "", ErrMissingPlaceholder
	}

	fromOff := FindFirstKeyword(body, []string{"FROM"}, 0, true)
	if fromOff < 0 {
		return "", ErrMissingPlaceholder
	}
	if FindFirstKeyword(body, []string{"JOIN"}, 0, false) >= 0 {
		return "", ErrMissingPlaceholder
	}
	if FindFirstKeyword(body, setOperationKeywords, 0, true) >= 0 {
		return "", ErrMissingPlaceholder
	}

	boundary := FindFirstKeyword(body, fromBoundaryKeywords, fromOff, true)
	fromEnd := len(body)
	if boundary >= 0 {
		fromEnd = boundary
	}

	tableRef := body[fromOff+len("FROM") : fromEnd]
	insertAt, ok := matchSingleTableRef(tableRef, factTable)
	if !ok {
		return "", ErrMissingPlaceholder
	}
	insertAt += fromOff + len("FROM")

	whereOff := FindFirstKeyword(body, []string{"WHERE"}, fromOff, true)
	var out string
	if whereOff >= 0 {
		// Wrap the original predicate so the token always ANDs cleanly.
		predStart := whereOff + len("WHERE")
		predEnd := len(body)
		if b := FindFirstKeyword(body, []string{"GROUP", "HAVING", "ORDER", "LIMIT", "WINDOW"}, predStart, true); b >= 0 {
			predEnd = b
		}
		orig := strings.TrimSpace(body[predStart:predEnd])
		if orig == "" {
			return "", ErrMissingPlaceholder
		}
		out = body[:whereOff] + "WHERE " + FilterPlaceholder + " AND (" + orig + ")"
		if predEnd < len(body) {
			out += " " + strings.TrimLeft(body[predEnd:], " \t\r\n")
		}
	} else {
		out = body[:insertAt] + " WHERE " + FilterPlaceholder + body[insertAt:]
	}

	if terminated {
		out += ";"
	}
	return out, nil
}

// matchSingleTableRef checks that ref consists of exactly factTable plus an
// optional [AS] alias, and returns the offset just past the reference.
// A comma, paren, or any extra token makes the FROM ambiguous.
func matchSingleTableRef(ref, factTable string) (int, bool) {
	fields := strings.Fields(ref)
	switch len(fields) {
	case 1:
	case 2:
		if !isPlainIdentifier(fields[1]) {
			return 0, false
		}
	case 3:
		if !strings.EqualFold(fields[1], "AS") || !isPlainIdentifier(fields[2]) {
			return 0, false
		}
	default:
		return 0, false
	}
	if !strings.EqualFold(fields[0], factTable) {
		return 0, false
	}
	// Offset of the end of the last field within ref.
	last := fields[len(fields)-1]
	end := strings.LastIndex(ref, last) + len(last)
	return end, true
}

// isPlainIdentifier reports whether s is a bare identifier token.
func isPlainIdentifier(s string) bool {
	if s == "" || (s[0] >= '0' && s[0] <= '9') {
		return false
	}
	for i := 0; i < len(s); i++ {
		if !isIdentChar(s[i]) {
			return false
		}
	}
	return true
}
