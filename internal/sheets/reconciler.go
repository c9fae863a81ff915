package sheets

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/spigell/job-tracker/internal/config"
	"github.com/spigell/job-tracker/internal/logger"
)

// firstDataRow is the sheet row number of the first record; row 1 is the header.
const firstDataRow = 2

type Reconciler struct {
	batchSize int
	logger    *zap.Logger
}

func NewReconciler(log *zap.Logger, batchSize int) *Reconciler {
	if batchSize <= 0 {
		batchSize = config.DefaultBatchSize
	}
	return &Reconciler{batchSize: batchSize, logger: logger.OrNop(log)}
}

// UpsertStats counts what an upsert changed.
type UpsertStats struct {
	Updated  int
	Appended int
}

// Upsert updates rows whose key is already in the table in place and appends
// the others, one write call per batch. A failing batch aborts the call and
// leaves earlier batches applied. Rows of the table absent from rows are
// never touched. header is written first when the table is completely empty.
func (r *Reconciler) Upsert(ctx context.Context, table Table, header []string, rows []Row) (UpsertStats, error) {
	var stats UpsertStats

	existing, err := table.Values(ctx)
	if err != nil {
		return stats, fmt.Errorf("reading %q: %w", table.Name(), err)
	}

	index, err := keyIndex(existing)
	if err != nil {
		return stats, fmt.Errorf("indexing %q: %w", table.Name(), err)
	}

	var updates []RowUpdate
	var appends [][]any
	seen := make(map[string]struct{}, len(rows))
	for _, row := range rows {
		if _, dup := seen[row.Key]; dup {
			r.logger.Debug("skipping duplicate row", zap.String("table", table.Name()), zap.String("key", row.Key))
			continue
		}
		seen[row.Key] = struct{}{}

		if number, ok := index[row.Key]; ok {
			updates = append(updates, RowUpdate{Row: number, Values: row.Values})
			continue
		}
		appends = append(appends, row.Values)
	}

	for start := 0; start < len(updates); start += r.batchSize {
		batch := updates[start:min(start+r.batchSize, len(updates))]
		if err := table.Update(ctx, batch); err != nil {
			return stats, err
		}
		stats.Updated += len(batch)
		r.logger.Info("batch updated existing jobs", zap.String("table", table.Name()), zap.Int("count", len(batch)))
	}

	headerRows := 0
	if len(existing) == 0 && len(appends) > 0 {
		headerRow := make([]any, len(header))
		for idx, name := range header {
			headerRow[idx] = name
		}
		appends = append([][]any{headerRow}, appends...)
		headerRows = 1
	}

	for start := 0; start < len(appends); start += r.batchSize {
		batch := appends[start:min(start+r.batchSize, len(appends))]
		if err := table.Append(ctx, batch); err != nil {
			return stats, err
		}
		added := len(batch) - headerRows
		headerRows = 0
		stats.Appended += added
		r.logger.Info("batch added new jobs", zap.String("table", table.Name()), zap.Int("count", added))
	}

	return stats, nil
}

// keyIndex maps the key column value of every data row to its sheet row number.
func keyIndex(values [][]string) (map[string]int, error) {
	index := make(map[string]int)
	if len(values) == 0 {
		return index, nil
	}

	column := -1
	for idx, name := range values[0] {
		if name == KeyColumn {
			column = idx
			break
		}
	}
	if column < 0 {
		if len(values) > 1 {
			return nil, fmt.Errorf("header has no %q column", KeyColumn)
		}
		return index, nil
	}

	for idx, row := range values[1:] {
		if column < len(row) && row[column] != "" {
			index[row[column]] = idx + firstDataRow
		}
	}
	return index, nil
}
