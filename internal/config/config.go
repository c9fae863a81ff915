// Package config holds the single configuration object built at process start
// and passed to every pipeline component.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

const (
	DefaultSourceURL       = "https://remotive.com/api/remote-jobs"
	DefaultCacheFile       = "data/cached_jobs.json"
	DefaultResumeFile      = "data/resume.docx"
	DefaultPoolSheet       = "Job Pool"
	DefaultRecommended     = "Recommended Jobs"
	DefaultThreshold       = 3.5
	DefaultTopN            = 20
	DefaultBatchSize       = 100
	DefaultFeatureCap      = 5000
	DefaultPairFeatureCap  = 1000
	DefaultWritesPerMinute = 60
	DefaultProgressEvery   = 100
	DefaultSchedule        = "@every 6h"
	DefaultGeminiModel     = "gemini-2.5-flash"

	CacheBackendFile  = "file"
	CacheBackendRedis = "redis"
)

// DefaultSkills is the reference vocabulary résumé skills are extracted from.
var DefaultSkills = []string{
	"Python", "Java", "C++", "SQL", "AWS", "Azure", "Jira", "Agile", "Scrum", "Kanban",
	"Project Management", "Stakeholder Management", "Sprint Planning", "Backlog Grooming",
	"Risk Mitigation", "Process Optimization", "Cloud Computing", "Data Validation",
	"Software Development", "Technical Product Management",
}

// DefaultTargetTitles earn the title bonus when found in a posting title.
var DefaultTargetTitles = []string{
	"product manager", "project manager", "scrum master",
	"program manager", "technical program manager", "agile coach",
}

const DefaultIdealDescription = `Project Manager with experience in Agile, Scrum, and Jira.
Strong expertise in cloud platforms like AWS and software development.
Proficient in backlog grooming, sprint planning, and stakeholder management.
Looking for remote or hybrid opportunities in product or program management.`

type Config struct {
	Source   *SourceConfig  `mapstructure:"source" validate:"required"`
	Cache    *CacheConfig   `mapstructure:"cache" validate:"required"`
	Resume   *ResumeConfig  `mapstructure:"resume" validate:"required"`
	Profile  *ProfileConfig `mapstructure:"profile" validate:"required"`
	Scoring  *ScoringConfig `mapstructure:"scoring" validate:"required"`
	Exclude  *ExcludeConfig `mapstructure:"exclude"`
	Sheets   *SheetsConfig  `mapstructure:"sheets" validate:"required"`
	AI       *AIConfig      `mapstructure:"ai"`
	Schedule string         `mapstructure:"schedule"`
	LogDir   string         `mapstructure:"log-dir"`
}

type SourceConfig struct {
	URL       string        `mapstructure:"url" validate:"required,url"`
	UserAgent string        `mapstructure:"user-agent"`
	Timeout   time.Duration `mapstructure:"timeout" validate:"gte=0"`
}

type CacheConfig struct {
	Backend  string `mapstructure:"backend" validate:"oneof=file redis"`
	File     string `mapstructure:"file"`
	RedisURL string `mapstructure:"redis-url"`
	RedisKey string `mapstructure:"redis-key"`
}

type ResumeConfig struct {
	File string `mapstructure:"file"`
}

type ProfileConfig struct {
	IdealDescription string   `mapstructure:"ideal-description" validate:"required"`
	TargetTitles     []string `mapstructure:"target-titles"`
	Skills           []string `mapstructure:"skills" validate:"required,min=1,dive,required"`
}

type ScoringConfig struct {
	Threshold      float64 `mapstructure:"threshold"`
	TopN           int     `mapstructure:"top-n" validate:"gt=0"`
	FeatureCap     int     `mapstructure:"feature-cap" validate:"gt=0"`
	PairFeatureCap int     `mapstructure:"pair-feature-cap" validate:"gt=0"`
	ProgressEvery  int     `mapstructure:"progress-every" validate:"gt=0"`
}

type ExcludeConfig struct {
	Keywords    []string `mapstructure:"keywords"`
	AppliedFile string   `mapstructure:"applied-file"`
}

type SheetsConfig struct {
	Enabled         bool   `mapstructure:"enabled"`
	CredentialsFile string `mapstructure:"credentials-file" validate:"required_if=Enabled true"`
	SpreadsheetID   string `mapstructure:"spreadsheet-id" validate:"required_if=Enabled true"`
	Pool            string `mapstructure:"pool" validate:"required"`
	Recommended     string `mapstructure:"recommended" validate:"required"`
	BatchSize       int    `mapstructure:"batch-size" validate:"gt=0"`
	WritesPerMinute int    `mapstructure:"writes-per-minute" validate:"gte=0"`
}

type AIConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	Gemini  *GeminiConfig `mapstructure:"gemini"`
}

type GeminiConfig struct {
	APIKeyFile   string `mapstructure:"api-key-file"`
	Model        string `mapstructure:"model"`
	MaxLogLength int    `mapstructure:"max-log-length"`
}

// Default returns the compiled-in configuration.
func Default() *Config {
	return &Config{
		Source: &SourceConfig{
			URL:     DefaultSourceURL,
			Timeout: 30 * time.Second,
		},
		Cache: &CacheConfig{
			Backend:  CacheBackendFile,
			File:     DefaultCacheFile,
			RedisKey: "job-tracker:cached-jobs",
		},
		Resume: &ResumeConfig{File: DefaultResumeFile},
		Profile: &ProfileConfig{
			IdealDescription: DefaultIdealDescription,
			TargetTitles:     append([]string(nil), DefaultTargetTitles...),
			Skills:           append([]string(nil), DefaultSkills...),
		},
		Scoring: &ScoringConfig{
			Threshold:      DefaultThreshold,
			TopN:           DefaultTopN,
			FeatureCap:     DefaultFeatureCap,
			PairFeatureCap: DefaultPairFeatureCap,
			ProgressEvery:  DefaultProgressEvery,
		},
		Exclude: &ExcludeConfig{},
		Sheets: &SheetsConfig{
			Pool:            DefaultPoolSheet,
			Recommended:     DefaultRecommended,
			BatchSize:       DefaultBatchSize,
			WritesPerMinute: DefaultWritesPerMinute,
		},
		AI: &AIConfig{
			Gemini: &GeminiConfig{Model: DefaultGeminiModel},
		},
		Schedule: DefaultSchedule,
		LogDir:   "logs",
	}
}

// Validate checks the configuration, including cross-field rules the struct
// tags cannot express.
func (c *Config) Validate() error {
	if c == nil {
		return fmt.Errorf("config is required")
	}

	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	if c.Cache.Backend == CacheBackendFile && strings.TrimSpace(c.Cache.File) == "" {
		return fmt.Errorf("invalid config: cache.file is required for the file backend")
	}
	if c.Cache.Backend == CacheBackendRedis && strings.TrimSpace(c.Cache.RedisURL) == "" {
		return fmt.Errorf("invalid config: cache.redis-url is required for the redis backend")
	}
	if c.AI != nil && c.AI.Enabled && c.AI.Gemini == nil {
		return fmt.Errorf("invalid config: gemini configuration is required when ai is enabled")
	}

	return nil
}

// ModelUsed is the provenance tag written next to every sheet row.
func (c *Config) ModelUsed() string {
	if c.AI != nil && c.AI.Enabled && c.AI.Gemini != nil {
		return "TF-IDF + " + c.AI.Gemini.Model
	}
	return "TF-IDF"
}
