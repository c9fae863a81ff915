package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/job-tracker/internal/config"
	"github.com/spigell/job-tracker/internal/filtering"
	"github.com/spigell/job-tracker/internal/pipeline"
)

const (
	PromptYes           = "Yes"
	PromptNo            = "No"
	PromptReportTopJobs = "Report top jobs"
	PromptJobsToFile    = "Dump jobs to file"
	PromptMarkAsApplied = "Mark top jobs as applied"
)

var errExit = errors.New("exit requested")

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Fetch, score and persist jobs once",
	Run: func(cmd *cobra.Command, _ []string) {
		run(cmd)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().BoolP("auto-approve", "y", false, "write to the spreadsheet without asking for confirmation")
}

func run(cmd *cobra.Command) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, logger := setup()
	defer logger.Sync()

	logger.Info("starting the job tracker", zap.String("version", version))
	logger.Debug("starting with config", zap.Any("config", cfg))

	p, cleanup, err := buildPipeline(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("building the pipeline", zap.Error(err))
	}
	defer cleanup()

	result, err := p.Run(ctx)
	if err != nil {
		logger.Error("run failed", zap.Error(err))
		return
	}

	if !result.UpdatePool && result.Recommended.Len() == 0 {
		logger.Info("exiting", zap.String("reason", "no jobs to persist"))
		return
	}

	autoApprove, _ := cmd.Flags().GetBool("auto-approve")
	if autoApprove {
		p.Persist(ctx, result)
		return
	}

	items := []string{PromptYes, PromptNo, PromptReportTopJobs, PromptJobsToFile}
	if cfg.Exclude != nil && cfg.Exclude.AppliedFile != "" {
		items = append(items, PromptMarkAsApplied)
	}
	prompt := promptui.Select{
		Label: "Write results to the spreadsheet?",
		Items: items,
	}

	for {
		_, action, err := prompt.Run()
		if err != nil {
			logger.Fatal("exiting", zap.Error(err))
		}

		if err := handleAction(ctx, action, p, cfg, logger, result); err != nil {
			if errors.Is(err, errExit) {
				return
			}
			logger.Fatal("exiting", zap.Error(err))
		}
	}
}

func handleAction(ctx context.Context, action string, p *pipeline.Pipeline, cfg *config.Config, logger *zap.Logger, result *pipeline.Result) error {
	switch action {
	case PromptYes:
		p.Persist(ctx, result)
		return errExit
	case PromptNo:
		// The cache already holds this fetch, so these jobs will not be new next time.
		logger.Info("exiting", zap.String("reason", "got no from prompt"))
		return errExit
	case PromptReportTopJobs:
		reportTop(logger, result, cfg.Scoring.TopN)
		return nil
	case PromptJobsToFile:
		filename, err := result.Recommended.Jobs().DumpToTmpFile()
		if err != nil {
			return fmt.Errorf("dump results to file: %w", err)
		}
		logger.Info("dumping result to file", zap.String("filename", filename))
		return nil
	case PromptMarkAsApplied:
		return markAsApplied(cfg.Exclude.AppliedFile, logger, result, cfg.Scoring.TopN)
	default:
		return fmt.Errorf("invalid action: %s", action)
	}
}

func reportTop(logger *zap.Logger, result *pipeline.Result, n int) {
	top := result.Recommended.Top(n)
	for idx, item := range top.Items {
		logger.Info(fmt.Sprintf("%2d. %s / %s", idx+1, item.Job.Title, item.Job.CompanyName),
			zap.Float64("score", item.Score),
			zap.Int("skill_matches", item.SkillMatches),
			zap.String("url", item.Job.URL),
		)
	}
	logger.Info("top jobs reported", zap.Int("count", top.Len()), zap.Int("relevant", result.Recommended.Len()))
}

// markAsApplied records the current top jobs in the applied file and drops
// them from the recommendations.
func markAsApplied(path string, logger *zap.Logger, result *pipeline.Result, n int) error {
	applied, err := filtering.LoadApplied(path)
	if err != nil {
		return fmt.Errorf("reading applied file: %w", err)
	}

	top := result.Recommended.Top(n)
	applied.Append(filtering.FromResults(top, time.Now()))
	if err := applied.ToFile(path); err != nil {
		return fmt.Errorf("writing applied file: %w", err)
	}

	result.Recommended.ExcludeURLs(top.Jobs().URLSet())
	logger.Info("appended to applied file",
		zap.String("filename", path),
		zap.Int("count", top.Len()),
		zap.Int("jobs_left", result.Recommended.Len()),
	)
	return nil
}
