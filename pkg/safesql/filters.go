package safesql

// FilterDescriptor is the dashboard filter state handed in by the caller.
// Dates are inclusive ISO YYYY-MM-DD bounds; an empty string means the bound
// is absent. An empty list means no restriction on that dimension. Values are
// only ever bound as parameters, never interpolated into SQL text.
type FilterDescriptor struct {
	StartDate string
	EndDate   string

	Countries    []string
	ProductTypes []string
	Clients      []string
	Brands       []string
	Suppliers    []string
}

// Predicate is a parameterized boolean SQL fragment plus its bound values.
// The clause references parameters only via :name placeholders and the param
// keys match those placeholders exactly.
type Predicate struct {
	Clause string
	Params map[string]any
}

// Columns of the denormalized fact table targeted by each list filter.
const (
	columnOrderDate  = "order_date"
	columnCountry    = "client_country"
	columnOrderType  = "order_type"
	columnClientName = "client_name"
	columnBrand      = "product_brand"
	columnSupplier   = "supplier_name"
)

// BuildFilterPredicate converts filters into a dialect-appropriate
// parameterized predicate. The baseline exclude-test-rows clause is always
// present, so the result is never empty. Clause text and parameter names are
// deterministic for identical input.
func BuildFilterPredicate(filters FilterDescriptor, dialect Dialect) Predicate {
	parts := []string{dialect.testRowPredicate()}
	params := make(map[string]any)

	dateExpr := columnOrderDate
	if dialect == DialectPostgres {
		// Hosted ingests may store order_date as text.
		dateExpr = "NULLIF(order_date::text, '')::date"
	}

	switch {
	case filters.StartDate != "" && filters.EndDate != "":
		parts = append(parts, dateExpr+" BETWEEN :munero_start_date AND :munero_end_date")
		params["munero_start_date"] = filters.StartDate
		params["munero_end_date"] = filters.EndDate
	case filters.StartDate != "":
		parts = append(parts, dateExpr+" >= :munero_start_date")
		params["munero_start_date"] = filters.StartDate
	case filters.EndDate != "":
		parts = append(parts, dateExpr+" <= :munero_end_date")
		params["munero_end_date"] = filters.EndDate
	}

	addList := func(values []string, column, paramName string) {
		if len(values) == 0 {
			return
		}
		parts = append(parts, dialect.listClause(column, paramName, values, params))
	}

	addList(filters.Countries, columnCountry, "munero_countries")
	addList(filters.ProductTypes, columnOrderType, "munero_product_types")
	addList(filters.Clients, columnClientName, "munero_clients")
	addList(filters.Brands, columnBrand, "munero_brands")
	addList(filters.Suppliers, columnSupplier, "munero_suppliers")

	clause := parts[0]
	for _, p := range parts[1:] {
		clause += " AND " + p
	}
	return Predicate{Clause: clause, Params: params}
}
