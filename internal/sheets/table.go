// Package sheets keeps the pool and recommended spreadsheets in sync with
// the postings of a run.
package sheets

import "context"

// RowUpdate replaces the content of one sheet row, numbered from 1.
type RowUpdate struct {
	Row    int
	Values []any
}

// Table is a named sheet whose first row is a header.
type Table interface {
	Name() string
	// Values returns every non-empty row, header included.
	Values(ctx context.Context) ([][]string, error)
	// Update rewrites the given rows in one call.
	Update(ctx context.Context, updates []RowUpdate) error
	// Append adds rows after the last non-empty row in one call.
	Append(ctx context.Context, rows [][]any) error
}
