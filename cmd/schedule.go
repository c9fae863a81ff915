package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/job-tracker/internal/scheduler"
)

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Run the tracker on a cron schedule and persist every run without confirmation",
	Run: func(_ *cobra.Command, _ []string) {
		schedule()
	},
}

func init() {
	rootCmd.AddCommand(scheduleCmd)

	scheduleCmd.Flags().StringP("spec", "s", "", "cron spec, e.g. \"@every 6h\" (overrides the schedule config key)")
	viper.BindPFlag("schedule", scheduleCmd.Flags().Lookup("spec"))
}

func schedule() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, logger := setup()
	defer logger.Sync()

	p, cleanup, err := buildPipeline(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("building the pipeline", zap.Error(err))
	}
	defer cleanup()

	s := scheduler.New(logger, cfg.Schedule, func(ctx context.Context) {
		result, err := p.Run(ctx)
		if err != nil {
			logger.Error("run failed", zap.Error(err))
			return
		}
		p.Persist(ctx, result)
	})

	if err := s.Run(ctx); err != nil {
		logger.Error("scheduler failed", zap.Error(err))
	}
}
