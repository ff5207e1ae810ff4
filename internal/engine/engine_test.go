package engine_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zmasarw3h/munero-hybrid-dashboard/internal/config"
	"github.com/zmasarw3h/munero-hybrid-dashboard/internal/engine"
	"github.com/zmasarw3h/munero-hybrid-dashboard/internal/testutil"
	"github.com/zmasarw3h/munero-hybrid-dashboard/pkg/safesql"
)

func newEngine(t *testing.T, dialect string) *engine.Engine {
	t.Helper()
	cfg := &config.Config{
		Dialect:         dialect,
		FactTable:       "fact_orders",
		AutoPlaceholder: true,
		BroadenColumns:  []string{"client_name", "product_brand", "supplier_name"},
	}
	e, err := engine.New(cfg, testutil.NewTestLogger(t))
	require.NoError(t, err)
	return e
}

func TestProcessResponseFullPipeline(t *testing.T) {
	e := newEngine(t, "sqlite")
	raw := "<think>user wants gift card totals</think>\n" +
		"```sql\n" +
		"SELECT country, SUM(amount) AS total\n" +
		"FROM fact_orders\n" +
		"WHERE __MUNERO_FILTERS__ AND order_type = 'gift_cards'\n" +
		"GROUP BY country;\n" +
		"```"
	filters := safesql.FilterDescriptor{
		StartDate: "2025-01-01",
		EndDate:   "2025-03-31",
		Countries: []string{"AE", "SA"},
	}

	res, err := e.ProcessResponse(raw, filters)
	require.NoError(t, err)

	assert.NotContains(t, res.SQL, safesql.FilterPlaceholder)
	assert.NotContains(t, res.SQL, "<think>")
	assert.Contains(t, res.SQL, "is_test = 0")
	assert.Contains(t, res.SQL, "'gift_card'")
	assert.NotContains(t, res.SQL, "'gift_cards'")

	assert.Equal(t, "2025-01-01", res.Params["munero_start_date"])
	assert.Equal(t, "2025-03-31", res.Params["munero_end_date"])
	assert.Equal(t, "AE", res.Params["munero_countries_0"])
	assert.Equal(t, "SA", res.Params["munero_countries_1"])

	require.Len(t, res.Warnings, 1)
	assert.Contains(t, res.Warnings[0], "gift_cards → gift_card")
	assert.NotEmpty(t, res.CorrelationID)
}

func TestProcessResponseRejectsWrites(t *testing.T) {
	e := newEngine(t, "sqlite")

	_, err := e.ProcessResponse("DELETE FROM fact_orders WHERE __MUNERO_FILTERS__", safesql.FilterDescriptor{})
	assert.ErrorIs(t, err, safesql.ErrNotReadOnly)

	_, err = e.ProcessResponse("SELECT * INTO backup FROM fact_orders WHERE __MUNERO_FILTERS__", safesql.FilterDescriptor{})
	var fk *safesql.ForbiddenKeywordError
	require.ErrorAs(t, err, &fk)
	assert.Equal(t, "INTO", fk.Keyword)
}

func TestProcessResponseRejectsTruncated(t *testing.T) {
	e := newEngine(t, "sqlite")

	_, err := e.ProcessResponse("SELECT SUM(amount FROM fact_orders WHERE __MUNERO_FILTERS__", safesql.FilterDescriptor{})
	assert.ErrorIs(t, err, safesql.ErrTruncatedQuery)
}

func TestProcessResponseKeepsFirstStatementOnly(t *testing.T) {
	e := newEngine(t, "sqlite")

	res, err := e.ProcessResponse(
		"SELECT 1 FROM fact_orders WHERE __MUNERO_FILTERS__; SELECT 2",
		safesql.FilterDescriptor{})
	require.NoError(t, err)

	assert.NotContains(t, res.SQL, "SELECT 2")
	assert.Contains(t, res.SQL, "is_test = 0")
}

func TestProcessResponseInsertsMissingPlaceholder(t *testing.T) {
	e := newEngine(t, "sqlite")

	res, err := e.ProcessResponse(
		"SELECT country, COUNT(*) FROM fact_orders GROUP BY country",
		safesql.FilterDescriptor{Countries: []string{"AE"}})
	require.NoError(t, err)

	assert.Contains(t, res.SQL, "WHERE is_test = 0")
	assert.Contains(t, res.SQL, "client_country IN (:munero_countries_0)")
	assert.Equal(t, "AE", res.Params["munero_countries_0"])
}

func TestProcessResponseMissingPlaceholderDisabled(t *testing.T) {
	cfg := &config.Config{Dialect: "sqlite", FactTable: "fact_orders"}
	e, err := engine.New(cfg, nil)
	require.NoError(t, err)

	_, err = e.ProcessResponse("SELECT country FROM fact_orders", safesql.FilterDescriptor{})
	assert.ErrorIs(t, err, safesql.ErrMissingPlaceholder)
}

func TestProcessResponseMissingPlaceholderAmbiguous(t *testing.T) {
	e := newEngine(t, "sqlite")

	// JOINs are out of scope for best-effort insertion.
	_, err := e.ProcessResponse(
		"SELECT c.name FROM fact_orders fo JOIN dim_clients c ON c.id = fo.client_id",
		safesql.FilterDescriptor{})
	assert.ErrorIs(t, err, safesql.ErrMissingPlaceholder)
}

func TestProcessResponsePostgresParams(t *testing.T) {
	e := newEngine(t, "postgres")

	res, err := e.ProcessResponse(
		"SELECT country FROM fact_orders WHERE __MUNERO_FILTERS__",
		safesql.FilterDescriptor{Countries: []string{"AE", "SA"}})
	require.NoError(t, err)

	assert.Contains(t, res.SQL, "client_country = ANY(CAST(:munero_countries AS text[]))")
	assert.Equal(t, []string{"AE", "SA"}, res.Params["munero_countries"])
}

func TestBroadenAppliesConfiguredColumns(t *testing.T) {
	e := newEngine(t, "postgres")

	sql := "SELECT * FROM fact_orders WHERE client_name = 'Acme' AND product_brand = 'Visa'"
	out, warnings, ok := e.Broaden(sql)
	require.True(t, ok)

	assert.Contains(t, out, "client_name ILIKE '%Acme%'")
	assert.Contains(t, out, "product_brand ILIKE '%Visa%'")
	assert.Len(t, warnings, 2)
}

func TestBroadenNoMatch(t *testing.T) {
	e := newEngine(t, "sqlite")

	sql := "SELECT * FROM fact_orders WHERE country = 'AE'"
	out, warnings, ok := e.Broaden(sql)
	assert.False(t, ok)
	assert.Equal(t, sql, out)
	assert.Empty(t, warnings)
}

func TestNewRejectsBadConfig(t *testing.T) {
	_, err := engine.New(&config.Config{Dialect: "oracle", FactTable: "fact_orders"}, nil)
	require.Error(t, err)

	_, err = engine.New(&config.Config{Dialect: "sqlite"}, nil)
	require.Error(t, err)
}
