package safesql

import (
	"errors"
	"fmt"
)

// Safety rejections. All are terminal for the current request; the engine
// never retries internally.
var (
	ErrEmptyQuery         = errors.New("sql query is empty")
	ErrMultipleStatements = errors.New("only a single sql statement is allowed")
	ErrNotReadOnly        = errors.New("only SELECT or WITH statements are allowed")
)

// Filter-injection contract violations. These indicate the upstream
// generation step produced a non-conforming template.
var (
	ErrMissingPlaceholder   = errors.New("sql template is missing the filters placeholder")
	ErrDuplicatePlaceholder = errors.New("sql template contains the filters placeholder multiple times")
	ErrPlaceholderNotInCode = errors.New("filters placeholder must appear in executable sql, not inside comments or quotes")
)

// ErrTruncatedQuery is returned by the pipeline when unbalanced parentheses
// indicate the model output was cut off mid-statement.
var ErrTruncatedQuery = errors.New("sql statement has unbalanced parentheses")

// ForbiddenKeywordError is returned when a banned DDL/DML/admin keyword is
// found in executable sql.
type ForbiddenKeywordError struct {
	Keyword string
}

func (e *ForbiddenKeywordError) Error() string {
	return fmt.Sprintf("query contains forbidden keyword: %s", e.Keyword)
}
