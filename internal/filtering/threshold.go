package filtering

import (
	"context"
	"fmt"
	"math"
	"strconv"

	"go.uber.org/zap"

	"github.com/spigell/job-tracker/internal/scoring"
)

type thresholdFilter struct {
	toggle
	cutoff float64
}

// NewThreshold creates a filter that keeps postings scoring strictly above cutoff.
func NewThreshold(cutoff float64) Filter {
	return &thresholdFilter{cutoff: cutoff}
}

func (f *thresholdFilter) Name() string { return "threshold" }

func (f *thresholdFilter) Validate() error {
	if math.IsNaN(f.cutoff) {
		return fmt.Errorf("threshold must be a number")
	}
	return nil
}

func (f *thresholdFilter) Apply(_ context.Context, deps Deps, r *scoring.Results) (Step, error) {
	initial := r.Len()
	dropped := r.Keep(func(s *scoring.Scored) bool { return s.Score > f.cutoff })
	if deps.Logger != nil && len(dropped) > 0 {
		deps.Logger.Debug("dropping jobs at or below threshold",
			zap.Float64("threshold", f.cutoff),
			zap.Strings("excluded_jobs", dropped),
		)
	}

	return Step{Initial: initial, Dropped: len(dropped), Left: r.Len()}, nil
}

func (f *thresholdFilter) Status() Status {
	return Status{
		Name:    f.Name(),
		Enabled: f.IsEnabled(),
		Reason:  f.reason,
		Details: map[string]string{"threshold": strconv.FormatFloat(f.cutoff, 'f', -1, 64)},
	}
}
