package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/job-tracker/internal/skills"
)

var skillsCmd = &cobra.Command{
	Use:   "skills",
	Short: "Print the skills found in the resume and its similarity to the target profile",
	Run: func(_ *cobra.Command, _ []string) {
		showSkills()
	},
}

func init() {
	rootCmd.AddCommand(skillsCmd)
}

func showSkills() {
	cfg, logger := setup()
	defer logger.Sync()

	text := skills.NewResumeReader(logger).Read(cfg.Resume.File)
	if text == "" {
		logger.Warn("resume is empty or unreadable", zap.String("path", cfg.Resume.File))
	}

	vocabulary := skills.NewVocabulary(cfg.Profile.Skills)
	found := skills.NewExtractor(vocabulary).Extract(text)
	similarity := newScorer(cfg, vocabulary, logger).Pair(text, cfg.Profile.IdealDescription)

	if viper.GetBool("json") {
		logger.Info("resume skills",
			zap.Strings("skills", found),
			zap.Float64("profile_similarity", similarity),
		)
		return
	}

	fmt.Printf("Skills (%d): %s\n", found.Len(), found)
	fmt.Printf("Similarity to the target profile: %.2f%%\n", similarity*100)
}
