package sheets

import (
	"context"
	"errors"
	"fmt"
)

// memoryTable is an in-memory Table that records every write call.
type memoryTable struct {
	name        string
	rows        [][]string
	updateCalls int
	appendCalls int
	failUpdate  int
	failAppend  int
	readErr     error
}

func newMemoryTable(name string, header []string, rows ...[]string) *memoryTable {
	t := &memoryTable{name: name}
	if header != nil {
		t.rows = append(t.rows, append([]string(nil), header...))
	}
	t.rows = append(t.rows, rows...)
	return t
}

func (t *memoryTable) Name() string { return t.name }

func (t *memoryTable) Values(context.Context) ([][]string, error) {
	if t.readErr != nil {
		return nil, t.readErr
	}
	out := make([][]string, len(t.rows))
	for idx, row := range t.rows {
		out[idx] = append([]string(nil), row...)
	}
	return out, nil
}

func (t *memoryTable) Update(_ context.Context, updates []RowUpdate) error {
	t.updateCalls++
	if t.failUpdate == t.updateCalls {
		return errors.New("update failed")
	}
	for _, update := range updates {
		if update.Row < 1 || update.Row > len(t.rows) {
			return fmt.Errorf("row %d out of range", update.Row)
		}
		t.rows[update.Row-1] = stringify(update.Values)
	}
	return nil
}

func (t *memoryTable) Append(_ context.Context, rows [][]any) error {
	t.appendCalls++
	if t.failAppend == t.appendCalls {
		return errors.New("append failed")
	}
	for _, row := range rows {
		t.rows = append(t.rows, stringify(row))
	}
	return nil
}

func (t *memoryTable) dataRows() int {
	if len(t.rows) == 0 {
		return 0
	}
	return len(t.rows) - 1
}

func stringify(values []any) []string {
	row := make([]string, len(values))
	for idx, value := range values {
		row[idx] = fmt.Sprint(value)
	}
	return row
}
