package safesql_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/zmasarw3h/munero-hybrid-dashboard/pkg/safesql"
)

func TestExtractSQLFromFencedBlockWithThinkTags(t *testing.T) {
	raw := "<think>reasoning</think>```sql\nSELECT 1\n\nFROM t WHERE __MUNERO_FILTERS__;\n```\nextra prose"
	assert.Equal(t, "SELECT 1\n\nFROM t WHERE __MUNERO_FILTERS__;", safesql.ExtractSQL(raw))
}

func TestExtractSQLPlainStatement(t *testing.T) {
	assert.Equal(t, "SELECT 1;", safesql.ExtractSQL("SELECT 1;"))
}

func TestExtractSQLGenericFence(t *testing.T) {
	raw := "Here you go:\n```\nSELECT client_name FROM fact_orders;\n```"
	assert.Equal(t, "SELECT client_name FROM fact_orders;", safesql.ExtractSQL(raw))
}

func TestExtractSQLStripsLabelPrefix(t *testing.T) {
	assert.Equal(t, "SELECT 1;", safesql.ExtractSQL("SQL: SELECT 1;"))
	assert.Equal(t, "SELECT 1;", safesql.ExtractSQL("Query:\nSELECT 1;"))
}

func TestExtractSQLDiscardsLeadingProse(t *testing.T) {
	raw := "Sure! The query you want is SELECT COUNT(*) FROM fact_orders;"
	assert.Equal(t, "SELECT COUNT(*) FROM fact_orders;", safesql.ExtractSQL(raw))
}

func TestExtractSQLAppendsMissingSemicolon(t *testing.T) {
	assert.Equal(t, "SELECT 1;", safesql.ExtractSQL("SELECT 1"))
}

func TestExtractSQLIgnoresSemicolonsInsideStrings(t *testing.T) {
	raw := "SELECT 'a;b' AS x FROM t; trailing prose"
	assert.Equal(t, "SELECT 'a;b' AS x FROM t;", safesql.ExtractSQL(raw))
}

func TestExtractSQLMultilineThinkTags(t *testing.T) {
	raw := "<THINK>\nfirst\n</THINK>SELECT 1;<think>second</think>"
	assert.Equal(t, "SELECT 1;", safesql.ExtractSQL(raw))
}

func TestExtractSQLWithStatement(t *testing.T) {
	raw := "WITH x AS (SELECT 1) SELECT * FROM x"
	assert.Equal(t, "WITH x AS (SELECT 1) SELECT * FROM x;", safesql.ExtractSQL(raw))
}

func TestExtractSQLNoStatementReturnsInputForValidatorToReject(t *testing.T) {
	raw := "  I could not generate a query for that.  "
	assert.Equal(t, "I could not generate a query for that.", safesql.ExtractSQL(raw))
}

func TestExtractSQLAllowsBlankLinesInsideStatement(t *testing.T) {
	raw := "SELECT 1\n\nFROM t;"
	assert.Equal(t, "SELECT 1\n\nFROM t;", safesql.ExtractSQL(raw))
}
