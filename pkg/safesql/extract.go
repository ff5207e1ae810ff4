package safesql

import (
	"regexp"
	"strings"
)

var (
	thinkTagRe     = regexp.MustCompile(`(?is)<think>.*?</think>`)
	sqlFenceRe     = regexp.MustCompile("(?is)```sql\\s+(.*?)\\s+```")
	genericFenceRe = regexp.MustCompile("(?s)```\\s+(.*?)\\s+```")
	labelPrefixRe  = regexp.MustCompile(`(?i)^(SQL:|Query:)\s*`)
)

// ExtractSQL pulls a single SQL statement out of raw model output. It strips
// <think> reasoning spans and markdown fences, drops any prose before the
// first Code-state SELECT/WITH, and cuts the statement at the first
// Code-state semicolon (appending one when the model omitted it).
//
// When no SELECT/WITH is present at all the trimmed text is returned
// unchanged so that Validate rejects it with a clear ErrNotReadOnly instead
// of this function inventing something misleading.
func ExtractSQL(raw string) string {
	cleaned := strings.TrimSpace(thinkTagRe.ReplaceAllString(raw, ""))

	candidate := cleaned
	if m := sqlFenceRe.FindStringSubmatch(cleaned); m != nil {
		candidate = strings.TrimSpace(m[1])
	} else if m := genericFenceRe.FindStringSubmatch(cleaned); m != nil {
		candidate = strings.TrimSpace(m[1])
	}

	candidate = strings.TrimSpace(labelPrefixRe.ReplaceAllString(candidate, ""))

	start := FindFirstKeyword(candidate, startKeywords, 0, false)
	if start < 0 {
		return candidate
	}

	if semis := FindOccurrences(candidate, ";", start, 1); len(semis) > 0 {
		return strings.TrimSpace(candidate[start : semis[0]+1])
	}

	sql := strings.TrimRight(candidate[start:], " \t\r\n")
	if !strings.HasSuffix(sql, ";") {
		sql += ";"
	}
	return sql
}
