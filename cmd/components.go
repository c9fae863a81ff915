package cmd

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/spigell/job-tracker/internal/config"
	"github.com/spigell/job-tracker/internal/filtering"
	"github.com/spigell/job-tracker/internal/insights"
	"github.com/spigell/job-tracker/internal/jobcache"
	"github.com/spigell/job-tracker/internal/pipeline"
	"github.com/spigell/job-tracker/internal/remotive"
	"github.com/spigell/job-tracker/internal/scoring"
	"github.com/spigell/job-tracker/internal/secrets"
	"github.com/spigell/job-tracker/internal/sheets"
	"github.com/spigell/job-tracker/internal/skills"
)

const geminiAPIKeyEnv = "GEMINI_API_KEY"

// buildPipeline wires every component from cfg. The returned function
// releases what the components hold open.
func buildPipeline(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*pipeline.Pipeline, func(), error) {
	cleanup := func() {}

	store, closeStore, err := newStore(ctx, cfg.Cache, logger)
	if err != nil {
		return nil, cleanup, err
	}
	cleanup = closeStore

	client := remotive.New(logger, cfg.Source.URL, cfg.Source.Timeout)
	if cfg.Source.UserAgent != "" {
		client.UserAgent = cfg.Source.UserAgent
	}

	vocabulary := skills.NewVocabulary(cfg.Profile.Skills)

	deps := pipeline.Deps{
		Resume:    skills.NewResumeReader(logger),
		Extractor: skills.NewExtractor(vocabulary),
		Jobs:      jobcache.NewTracker(client, store, logger),
		Scorer:    newScorer(cfg, vocabulary, logger),
	}

	if cfg.AI != nil && cfg.AI.Enabled {
		annotator, err := newAnnotator(ctx, cfg.AI.Gemini, logger)
		if err != nil {
			logger.Warn("skipping ai insights", zap.Error(err))
		} else {
			deps.Annotator = annotator
		}
	}

	if cfg.Sheets.Enabled {
		writer, err := newWriter(ctx, cfg, logger)
		if err != nil {
			return nil, cleanup, err
		}
		deps.Sink = writer
	}

	p := pipeline.New(logger, deps, pipeline.Options{
		ResumeFile:       cfg.Resume.File,
		IdealDescription: cfg.Profile.IdealDescription,
		Filters:          newFilters(cfg),
		TopN:             cfg.Scoring.TopN,
		Source:           client.Name(),
	})

	return p, cleanup, nil
}

func newStore(ctx context.Context, cfg *config.CacheConfig, logger *zap.Logger) (jobcache.Store, func(), error) {
	if cfg.Backend == config.CacheBackendRedis {
		store, err := jobcache.NewRedisStore(ctx, cfg.RedisURL, cfg.RedisKey)
		if err != nil {
			return nil, func() {}, fmt.Errorf("connecting to redis cache: %w", err)
		}
		logger.Debug("using redis job cache", zap.String("key", cfg.RedisKey))
		return store, func() { _ = store.Close() }, nil
	}

	store := jobcache.NewFileStore(cfg.File)
	logger.Debug("using file job cache", zap.String("path", store.Path()))
	return store, func() {}, nil
}

func newScorer(cfg *config.Config, vocabulary *skills.Vocabulary, logger *zap.Logger) *scoring.Scorer {
	return scoring.NewScorer(logger, scoring.Options{
		Vocabulary:     vocabulary,
		TargetTitles:   cfg.Profile.TargetTitles,
		FeatureCap:     cfg.Scoring.FeatureCap,
		PairFeatureCap: cfg.Scoring.PairFeatureCap,
		ProgressEvery:  cfg.Scoring.ProgressEvery,
	})
}

func newFilters(cfg *config.Config) []filtering.Filter {
	var keywords []string
	appliedFile := ""
	if cfg.Exclude != nil {
		keywords = cfg.Exclude.Keywords
		appliedFile = cfg.Exclude.AppliedFile
	}

	return []filtering.Filter{
		filtering.NewThreshold(cfg.Scoring.Threshold),
		filtering.NewExcludedKeywords(keywords),
		filtering.NewAppliedFile(appliedFile),
	}
}

func newAnnotator(ctx context.Context, cfg *config.GeminiConfig, logger *zap.Logger) (*insights.Annotator, error) {
	apiKey, err := secrets.Load(secrets.Source{
		Name: "gemini api key",
		File: cfg.APIKeyFile,
		Env:  geminiAPIKeyEnv,
	})
	if err != nil {
		return nil, fmt.Errorf("%w (set ai.gemini.api-key-file or %s)", err, geminiAPIKeyEnv)
	}

	generator, err := insights.NewGenerator(ctx, apiKey, cfg.Model)
	if err != nil {
		return nil, err
	}

	aiLogger := logger.With(
		zap.String("provider", "gemini"),
		zap.String("model", generator.Model()),
	)
	return insights.NewAnnotator(generator, aiLogger, cfg.MaxLogLength), nil
}

func newWriter(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*sheets.Writer, error) {
	spreadsheet, err := sheets.NewSpreadsheet(ctx, cfg.Sheets.CredentialsFile, cfg.Sheets.SpreadsheetID, cfg.Sheets.WritesPerMinute)
	if err != nil {
		return nil, fmt.Errorf("connecting to google sheets: %w", err)
	}

	return sheets.NewWriter(logger, sheets.WriterOptions{
		Pool:        spreadsheet.Table(cfg.Sheets.Pool),
		Recommended: spreadsheet.Table(cfg.Sheets.Recommended),
		Reconciler:  sheets.NewReconciler(logger, cfg.Sheets.BatchSize),
		TopN:        cfg.Scoring.TopN,
		ModelUsed:   cfg.ModelUsed(),
	}), nil
}
