// Package jobcache finds postings that were not seen by previous runs.
package jobcache

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/spigell/job-tracker/internal/remotive"
)

// Source lists the current postings.
type Source interface {
	Name() string
	Jobs(ctx context.Context) (*remotive.Jobs, error)
}

type Tracker struct {
	source Source
	store  Store
	logger *zap.Logger
}

func NewTracker(source Source, store Store, logger *zap.Logger) *Tracker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Tracker{source: source, store: store, logger: logger}
}

// FetchNew returns the fetched postings whose url is not in the cache. When at
// least one is new the whole fetched list replaces the cache.
func (t *Tracker) FetchNew(ctx context.Context) (*remotive.Jobs, error) {
	fetched, err := t.fetch(ctx)
	if err != nil {
		return nil, err
	}

	cached := t.Cached(ctx)
	fresh := fetched.Unseen(cached.URLSet())

	if fresh.Len() == 0 {
		t.logger.Info("no new jobs found",
			zap.Int("fetched", fetched.Len()),
			zap.Int("cached", cached.Len()),
		)
		return fresh, nil
	}

	if err := t.store.Save(ctx, fetched); err != nil {
		return nil, fmt.Errorf("updating job cache: %w", err)
	}

	t.logger.Info("found new jobs",
		zap.Int("new", fresh.Len()),
		zap.Int("fetched", fetched.Len()),
		zap.Int("cached", cached.Len()),
	)

	return fresh, nil
}

// Cached returns the cached postings. Unreadable caches are reported and treated as empty.
func (t *Tracker) Cached(ctx context.Context) *remotive.Jobs {
	jobs, err := t.store.Load(ctx)
	if err != nil {
		t.logger.Warn("job cache is unreadable, treating it as empty", zap.Error(err))
		return &remotive.Jobs{}
	}
	return jobs
}

func (t *Tracker) fetch(ctx context.Context) (*remotive.Jobs, error) {
	jobs, err := t.source.Jobs(ctx)
	if errors.Is(err, remotive.ErrUnavailable) {
		t.logger.Warn("fetching jobs failed, continuing with no results",
			zap.String("source", t.source.Name()),
			zap.Error(err),
		)
		return &remotive.Jobs{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("fetching jobs from %s: %w", t.source.Name(), err)
	}
	return jobs, nil
}
