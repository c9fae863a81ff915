package sheets

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/spigell/job-tracker/internal/config"
	"github.com/spigell/job-tracker/internal/logger"
	"github.com/spigell/job-tracker/internal/remotive"
	"github.com/spigell/job-tracker/internal/scoring"
)

// Batch is everything one run persists.
type Batch struct {
	// Pool holds the postings for the pool table. It is written only when
	// UpdatePool is set.
	Pool        *remotive.Jobs
	UpdatePool  bool
	Recommended *scoring.Results
}

type WriterOptions struct {
	Pool        Table
	Recommended Table
	Reconciler  *Reconciler
	TopN        int
	ModelUsed   string
	Now         func() time.Time
}

// Writer upserts a run into the pool and recommended tables.
type Writer struct {
	pool        Table
	recommended Table
	reconciler  *Reconciler
	topN        int
	modelUsed   string
	now         func() time.Time
	logger      *zap.Logger
}

func NewWriter(log *zap.Logger, opts WriterOptions) *Writer {
	w := &Writer{
		pool:        opts.Pool,
		recommended: opts.Recommended,
		reconciler:  opts.Reconciler,
		topN:        opts.TopN,
		modelUsed:   opts.ModelUsed,
		now:         opts.Now,
		logger:      logger.OrNop(log),
	}
	if w.reconciler == nil {
		w.reconciler = NewReconciler(log, config.DefaultBatchSize)
	}
	if w.topN <= 0 {
		w.topN = config.DefaultTopN
	}
	if w.now == nil {
		w.now = time.Now
	}
	return w
}

// Write upserts the pool (when requested) and then the top results by score
// into the recommended table. The first error aborts the whole call.
func (w *Writer) Write(ctx context.Context, batch Batch) error {
	now := w.now()

	if batch.UpdatePool {
		rows := make([]Row, 0, batch.Pool.Len())
		if batch.Pool != nil {
			for _, job := range batch.Pool.Items {
				rows = append(rows, PoolRow(job, now, w.modelUsed))
			}
		}

		stats, err := w.reconciler.Upsert(ctx, w.pool, PoolHeader, rows)
		if err != nil {
			return fmt.Errorf("upserting job pool: %w", err)
		}
		w.logger.Info("job pool synced",
			zap.String("table", w.pool.Name()),
			zap.Int("updated", stats.Updated),
			zap.Int("added", stats.Appended),
		)
	}

	top := batch.Recommended.Top(w.topN)
	rows := make([]Row, 0, top.Len())
	for _, item := range top.Items {
		rows = append(rows, RecommendedRow(item, now, w.modelUsed))
	}

	stats, err := w.reconciler.Upsert(ctx, w.recommended, RecommendedHeader, rows)
	if err != nil {
		return fmt.Errorf("upserting recommended jobs: %w", err)
	}
	w.logger.Info("recommended jobs synced",
		zap.String("table", w.recommended.Name()),
		zap.Int("updated", stats.Updated),
		zap.Int("added", stats.Appended),
	)

	return nil
}
