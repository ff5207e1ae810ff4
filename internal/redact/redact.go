// Package redact builds log-safe representations of SQL text, filter state,
// and bind parameters. Raw query text and literal filter values are
// sensitive; callers log these forms instead.
package redact

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/zmasarw3h/munero-hybrid-dashboard/pkg/safesql"
)

const (
	shortSHALength   = 12
	defaultHeadChars = 160
)

var whitespaceRe = regexp.MustCompile(`\s+`)

// ShortSHA256 returns the first 12 hex characters of the SHA-256 of text,
// enough to correlate log lines without reproducing the payload.
func ShortSHA256(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])[:shortSHALength]
}

// SQL returns a compact, non-sensitive representation of a SQL string:
// length plus short hash only.
func SQL(sql string) string {
	if sql == "" {
		return "len=0 sha=<none>"
	}
	return fmt.Sprintf("len=%d sha=%s", len(sql), ShortSHA256(sql))
}

// SQLWithHead is SQL plus a whitespace-collapsed prefix of the query, capped
// at 160 characters. Intended for debug logging only; it never includes the
// full statement.
func SQLWithHead(sql string) string {
	if sql == "" {
		return SQL(sql)
	}
	head := whitespaceRe.ReplaceAllString(strings.TrimSpace(sql), " ")
	if len(head) > defaultHeadChars {
		head = head[:defaultHeadChars]
	}
	return fmt.Sprintf("%s head=%q", SQL(sql), head)
}

// Filters summarizes dashboard filter state without any literal values:
// list filters become counts, dates become on/off.
func Filters(f safesql.FilterDescriptor) map[string]any {
	return map[string]any{
		"date_range":    f.StartDate != "" || f.EndDate != "",
		"countries":     len(f.Countries),
		"product_types": len(f.ProductTypes),
		"clients":       len(f.Clients),
		"brands":        len(f.Brands),
		"suppliers":     len(f.Suppliers),
	}
}

// Params redacts a bind-parameter map: strings become lengths, lists become
// counts. Non-sensitive scalar types pass through.
func Params(params map[string]any) map[string]any {
	if len(params) == 0 {
		return map[string]any{}
	}
	out := make(map[string]any, len(params))
	for key, value := range params {
		switch v := value.(type) {
		case []string:
			out[key] = fmt.Sprintf("list(count=%d)", len(v))
		case []any:
			out[key] = fmt.Sprintf("list(count=%d)", len(v))
		case string:
			out[key] = fmt.Sprintf("str(len=%d)", len(v))
		default:
			out[key] = v
		}
	}
	return out
}

// NewCorrelationID returns a fresh id for tying together the log lines of
// one request.
func NewCorrelationID() string {
	return uuid.NewString()
}
