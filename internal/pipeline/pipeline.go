// Package pipeline runs one job-tracking pass: résumé skills, new postings,
// scoring, filtering and persistence.
package pipeline

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spigell/job-tracker/internal/config"
	"github.com/spigell/job-tracker/internal/filtering"
	"github.com/spigell/job-tracker/internal/logger"
	"github.com/spigell/job-tracker/internal/remotive"
	"github.com/spigell/job-tracker/internal/scoring"
	"github.com/spigell/job-tracker/internal/sheets"
	"github.com/spigell/job-tracker/internal/skills"
)

const defaultReportTop = 10

type ResumeReader interface {
	Read(path string) string
}

type JobFinder interface {
	FetchNew(ctx context.Context) (*remotive.Jobs, error)
	Cached(ctx context.Context) *remotive.Jobs
}

type Annotator interface {
	Annotate(ctx context.Context, resume skills.Set, r *scoring.Results) int
}

type Sink interface {
	Write(ctx context.Context, batch sheets.Batch) error
}

// Deps are the collaborators of a pipeline. Annotator and Sink are optional.
type Deps struct {
	Resume    ResumeReader
	Extractor *skills.Extractor
	Jobs      JobFinder
	Scorer    *scoring.Scorer
	Annotator Annotator
	Sink      Sink
}

type Options struct {
	ResumeFile       string
	IdealDescription string
	Filters          []filtering.Filter
	TopN             int
	ReportTop        int
	Source           string
}

type Pipeline struct {
	deps   Deps
	opts   Options
	logger *zap.Logger
}

// Result is the outcome of Run, ready to be persisted.
type Result struct {
	RunID  string
	Skills skills.Set
	// Jobs is the working set: the new postings, or the cache when nothing was new.
	Jobs       *remotive.Jobs
	UpdatePool bool
	// Recommended holds the filtered results by descending score.
	Recommended *scoring.Results
}

func New(log *zap.Logger, deps Deps, opts Options) *Pipeline {
	if opts.TopN <= 0 {
		opts.TopN = config.DefaultTopN
	}
	if opts.ReportTop <= 0 {
		opts.ReportTop = defaultReportTop
	}
	if opts.Source == "" {
		opts.Source = remotive.Portal
	}
	return &Pipeline{deps: deps, opts: opts, logger: logger.OrNop(log)}
}

func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	result := &Result{RunID: uuid.NewString()}
	log := logger.WithRun(p.logger, result.RunID, p.opts.Source)

	log.Info("reading resume", zap.String("path", p.opts.ResumeFile))
	result.Skills = p.deps.Extractor.Extract(p.deps.Resume.Read(p.opts.ResumeFile))
	log.Info("extracted resume skills",
		zap.Int("count", result.Skills.Len()),
		zap.Strings("skills", result.Skills),
	)

	fresh, err := p.deps.Jobs.FetchNew(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetching new jobs: %w", err)
	}

	result.Jobs = fresh
	if fresh.Len() > 0 {
		result.UpdatePool = true
		log.Info("processing new jobs", zap.Int("count", fresh.Len()))
	} else {
		result.Jobs = p.deps.Jobs.Cached(ctx)
		log.Warn("no new jobs, using cached jobs", zap.Int("count", result.Jobs.Len()))
	}

	scored := p.deps.Scorer.Score(result.Jobs, result.Skills, p.opts.IdealDescription)
	// Filters narrow scored in place.
	total := scored.Len()

	filtered, err := filtering.Run(ctx, filtering.Deps{Logger: log}, p.opts.Filters, scored)
	if err != nil {
		return nil, fmt.Errorf("filtering jobs: %w", err)
	}
	filtered.Sort()
	result.Recommended = filtered

	log.Info("jobs scored",
		zap.Int("scored", total),
		zap.Int("relevant", filtered.Len()),
	)
	p.reportTop(log, filtered)

	if p.deps.Annotator != nil && filtered.Len() > 0 {
		p.deps.Annotator.Annotate(ctx, result.Skills, filtered.Top(p.opts.TopN))
	}

	return result, nil
}

// Persist writes the result with one sink call. Failures are logged and not
// returned: a finished run does not imply persisted results. It reports
// whether the write succeeded.
func (p *Pipeline) Persist(ctx context.Context, result *Result) bool {
	if result == nil {
		return false
	}
	log := logger.WithRun(p.logger, result.RunID, p.opts.Source)

	if p.deps.Sink == nil {
		log.Info("sheets are disabled, results are not persisted")
		return false
	}
	if !result.UpdatePool && result.Recommended.Len() == 0 {
		log.Info("nothing to persist")
		return true
	}

	err := p.deps.Sink.Write(ctx, sheets.Batch{
		Pool:        result.Jobs,
		UpdatePool:  result.UpdatePool,
		Recommended: result.Recommended,
	})
	if err != nil {
		log.Error("persisting results failed", zap.Error(err))
		return false
	}

	log.Info("results persisted",
		zap.Bool("pool_updated", result.UpdatePool),
		zap.Int("recommended", min(result.Recommended.Len(), p.opts.TopN)),
	)
	return true
}

func (p *Pipeline) reportTop(log *zap.Logger, r *scoring.Results) {
	for idx, item := range r.Top(p.opts.ReportTop).Items {
		log.Info("top job",
			zap.Int("rank", idx+1),
			zap.String("title", item.Job.Title),
			zap.String("company", item.Job.CompanyName),
			zap.String("organization", item.Organization),
			zap.Float64("score", item.Score),
			zap.String("url", item.Job.URL),
		)
	}
}
