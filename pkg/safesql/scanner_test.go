package safesql_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zmasarw3h/munero-hybrid-dashboard/pkg/safesql"
)

func TestFindOccurrencesPlainCode(t *testing.T) {
	sql := "SELECT 1; SELECT 2;"
	offsets := safesql.FindOccurrences(sql, ";", 0, 0)
	assert.Equal(t, []int{8, 18}, offsets)
}

func TestFindOccurrencesMaxMatches(t *testing.T) {
	sql := "a;b;c;d;"
	offsets := safesql.FindOccurrences(sql, ";", 0, 2)
	assert.Equal(t, []int{1, 3}, offsets)
}

func TestFindOccurrencesSkipsStringLiterals(t *testing.T) {
	sql := "SELECT 'a;b' AS x; SELECT 2"
	offsets := safesql.FindOccurrences(sql, ";", 0, 0)
	assert.Equal(t, []int{17}, offsets)
}

func TestFindOccurrencesSkipsDoubledQuoteEscape(t *testing.T) {
	// The '' keeps the literal open, so the ; stays inside it.
	sql := "SELECT 'it''s;fine' AS x"
	assert.Empty(t, safesql.FindOccurrences(sql, ";", 0, 0))
}

func TestFindOccurrencesSkipsComments(t *testing.T) {
	sql := "SELECT 1 -- token; here\n; /* another ; */ "
	offsets := safesql.FindOccurrences(sql, ";", 0, 0)
	assert.Equal(t, []int{24}, offsets)
}

func TestFindOccurrencesSkipsDoubleQuotedIdent(t *testing.T) {
	sql := `SELECT "col;umn" FROM t;`
	offsets := safesql.FindOccurrences(sql, ";", 0, 0)
	assert.Equal(t, []int{23}, offsets)
}

func TestFindOccurrencesSkipsDollarQuote(t *testing.T) {
	sql := "SELECT $tag$ ; not code ; $tag$ ; done"
	offsets := safesql.FindOccurrences(sql, ";", 0, 0)
	assert.Equal(t, []int{32}, offsets)
}

func TestFindOccurrencesBareDollarIsOrdinary(t *testing.T) {
	// "$1 >" has no closing $, so it is not a dollar-quote start.
	sql := "SELECT * FROM t WHERE x = $1 ; "
	offsets := safesql.FindOccurrences(sql, ";", 0, 0)
	assert.Equal(t, []int{29}, offsets)
}

func TestFindOccurrencesInvalidDollarTagIsOrdinary(t *testing.T) {
	// The candidate tag contains a space, so no dollar-quote begins.
	sql := "SELECT $a b$ , x ; y"
	offsets := safesql.FindOccurrences(sql, ";", 0, 0)
	assert.Equal(t, []int{17}, offsets)
}

func TestFindOccurrencesUnterminatedLiteralHidesRest(t *testing.T) {
	sql := "SELECT 'unterminated ; ; ;"
	assert.Empty(t, safesql.FindOccurrences(sql, ";", 0, 0))
}

func TestFindOccurrencesUnterminatedBlockCommentHidesRest(t *testing.T) {
	sql := "SELECT 1 /* no end ; "
	assert.Empty(t, safesql.FindOccurrences(sql, ";", 0, 0))
}

func TestFindOccurrencesFromOffset(t *testing.T) {
	sql := "a;b;c;"
	offsets := safesql.FindOccurrences(sql, ";", 2, 0)
	assert.Equal(t, []int{3, 5}, offsets)
}

func TestFindOccurrencesStraddlingNeedleNeverMatches(t *testing.T) {
	// A needle containing a quote would straddle a state transition.
	sql := "SELECT 'x' FROM t"
	assert.Empty(t, safesql.FindOccurrences(sql, "'x'", 0, 0))
}

func TestFindFirstKeywordWordBoundary(t *testing.T) {
	sql := "SELECTED SELECT"
	off := safesql.FindFirstKeyword(sql, []string{"SELECT"}, 0, false)
	assert.Equal(t, 9, off)
}

func TestFindFirstKeywordCaseInsensitive(t *testing.T) {
	off := safesql.FindFirstKeyword("  select 1", []string{"SELECT"}, 0, false)
	assert.Equal(t, 2, off)
}

func TestFindFirstKeywordIgnoresCommentsAndStrings(t *testing.T) {
	sql := "-- SELECT\n'SELECT' /* SELECT */ SELECT 1"
	off := safesql.FindFirstKeyword(sql, []string{"SELECT"}, 0, false)
	assert.Equal(t, 32, off)
}

func TestFindFirstKeywordTopLevelOnly(t *testing.T) {
	sql := "SELECT (SELECT MAX(x) FROM u) FROM t"

	anywhere := safesql.FindFirstKeyword(sql, []string{"FROM"}, 1, false)
	assert.Equal(t, 22, anywhere)

	topLevel := safesql.FindFirstKeyword(sql, []string{"FROM"}, 1, true)
	assert.Equal(t, 30, topLevel)
}

func TestFindFirstKeywordDepthIgnoresParensInLiterals(t *testing.T) {
	sql := "SELECT '(' , FROM_X, x FROM t"
	off := safesql.FindFirstKeyword(sql, []string{"FROM"}, 0, true)
	require.GreaterOrEqual(t, off, 0)
	assert.Equal(t, "FROM t", sql[off:])
}

func TestFindFirstKeywordNonASCIIInput(t *testing.T) {
	// U+017F upper-cases to a shorter byte sequence, so keyword matching must
	// never rely on an upper-cased copy of the input sharing byte offsets.
	sql := "ſſ SELECT 1"
	off := safesql.FindFirstKeyword(sql, []string{"SELECT"}, 0, false)
	assert.Equal(t, 5, off)
}

func TestFindOccurrencesNonASCIIInput(t *testing.T) {
	sql := "SELECT 'ſ' AS s; SELECT ſ;"
	offsets := safesql.FindOccurrences(sql, ";", 0, 0)
	assert.Equal(t, []int{16, 27}, offsets)
}

func TestFindFirstKeywordMissing(t *testing.T) {
	off := safesql.FindFirstKeyword("SELECT 1", []string{"LIMIT"}, 0, false)
	assert.Equal(t, -1, off)
}

func TestParenthesesBalanced(t *testing.T) {
	tests := []struct {
		name string
		sql  string
		want bool
	}{
		{"flat", "SELECT 1", true},
		{"nested", "SELECT SUM(COALESCE(x, 0)) FROM t", true},
		{"truncated", "SELECT SUM(x FROM t;", false},
		{"extra close", "SELECT x) FROM t", false},
		{"close before open", ") (", false},
		{"paren in string", "SELECT '(' FROM t", true},
		{"paren in comment", "SELECT 1 -- (\n", true},
		{"paren in dollar quote", "SELECT $$ ( $$ FROM t", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, safesql.ParenthesesBalanced(tt.sql))
		})
	}
}
