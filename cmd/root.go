package cmd

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/job-tracker/internal/config"
	"github.com/spigell/job-tracker/internal/logger"
)

const (
	app       = "job-tracker"
	envPrefix = "JOB_TRACKER"
)

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "job-tracker fetches remote jobs, scores them against your profile and keeps a spreadsheet up to date",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is job-tracker.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")
	rootCmd.PersistentFlags().String("resume", "", "path to the resume (PDF or DOCX)")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
	viper.BindPFlag("resume.file", rootCmd.PersistentFlags().Lookup("resume"))
}

func initConfig() {
	// .env is optional
	_ = godotenv.Load()

	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()
	setDefaults(config.Default())

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app)
		viper.SetConfigType("yaml")
	}

	// Compiled-in defaults are enough to run, but a broken or explicitly requested file is fatal.
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			log.Fatal(err)
		}
	}
}

// setDefaults registers every configuration key so that environment variables
// and partial config files are merged over the compiled-in values.
func setDefaults(cfg *config.Config) {
	defaults := map[string]any{
		"source.url":                cfg.Source.URL,
		"source.user-agent":         cfg.Source.UserAgent,
		"source.timeout":            cfg.Source.Timeout,
		"cache.backend":             cfg.Cache.Backend,
		"cache.file":                cfg.Cache.File,
		"cache.redis-url":           cfg.Cache.RedisURL,
		"cache.redis-key":           cfg.Cache.RedisKey,
		"resume.file":               cfg.Resume.File,
		"profile.ideal-description": cfg.Profile.IdealDescription,
		"profile.target-titles":     cfg.Profile.TargetTitles,
		"profile.skills":            cfg.Profile.Skills,
		"scoring.threshold":         cfg.Scoring.Threshold,
		"scoring.top-n":             cfg.Scoring.TopN,
		"scoring.feature-cap":       cfg.Scoring.FeatureCap,
		"scoring.pair-feature-cap":  cfg.Scoring.PairFeatureCap,
		"scoring.progress-every":    cfg.Scoring.ProgressEvery,
		"exclude.keywords":          cfg.Exclude.Keywords,
		"exclude.applied-file":      cfg.Exclude.AppliedFile,
		"sheets.enabled":            cfg.Sheets.Enabled,
		"sheets.credentials-file":   cfg.Sheets.CredentialsFile,
		"sheets.spreadsheet-id":     cfg.Sheets.SpreadsheetID,
		"sheets.pool":               cfg.Sheets.Pool,
		"sheets.recommended":        cfg.Sheets.Recommended,
		"sheets.batch-size":         cfg.Sheets.BatchSize,
		"sheets.writes-per-minute":  cfg.Sheets.WritesPerMinute,
		"ai.enabled":                cfg.AI.Enabled,
		"ai.gemini.api-key-file":    cfg.AI.Gemini.APIKeyFile,
		"ai.gemini.model":           cfg.AI.Gemini.Model,
		"ai.gemini.max-log-length":  cfg.AI.Gemini.MaxLogLength,
		"schedule":                  cfg.Schedule,
		"log-dir":                   cfg.LogDir,
	}
	for key, value := range defaults {
		viper.SetDefault(key, value)
	}
}

func getConfig() (*config.Config, error) {
	cfg := &config.Config{}
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// setup loads the configuration and builds the process logger. Errors are fatal.
func setup() (*config.Config, *zap.Logger) {
	cfg, err := getConfig()
	if err != nil {
		log.Fatalf("getting a config: %s", err)
	}

	logger, err := logger.New(logger.Options{
		JSON:  viper.GetBool("json"),
		Debug: viper.GetBool("debug"),
		Dir:   cfg.LogDir,
	})
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	return cfg, logger
}
