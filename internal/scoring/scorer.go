// Package scoring ranks postings against a target profile with a TF-IDF
// similarity blended with skill and title heuristics.
package scoring

import (
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spigell/job-tracker/internal/logger"
	"github.com/spigell/job-tracker/internal/remotive"
	"github.com/spigell/job-tracker/internal/skills"
	"github.com/spigell/job-tracker/internal/utils"
)

const (
	SkillWeight      = 5.0
	TitleBonus       = 5.0
	similarityFactor = 100.0
)

type Options struct {
	Vocabulary     *skills.Vocabulary
	TargetTitles   []string
	FeatureCap     int
	PairFeatureCap int
	// ProgressEvery sets how often scoring progress is logged; 0 disables it.
	ProgressEvery int
}

type Scorer struct {
	vocabulary     *skills.Vocabulary
	titles         []string
	featureCap     int
	pairFeatureCap int
	progressEvery  int
	logger         *zap.Logger
}

func NewScorer(log *zap.Logger, opts Options) *Scorer {
	titles := make([]string, 0, len(opts.TargetTitles))
	for _, title := range opts.TargetTitles {
		if title = strings.ToLower(strings.TrimSpace(title)); title != "" {
			titles = append(titles, title)
		}
	}

	return &Scorer{
		vocabulary:     opts.Vocabulary,
		titles:         titles,
		featureCap:     opts.FeatureCap,
		pairFeatureCap: opts.PairFeatureCap,
		progressEvery:  opts.ProgressEvery,
		logger:         logger.OrNop(log),
	}
}

// Score computes a relevance score for every posting. It never filters;
// the order of the results follows the order of jobs.
func (s *Scorer) Score(jobs *remotive.Jobs, resume skills.Set, ideal string) *Results {
	results := &Results{}
	if jobs.Len() == 0 {
		return results
	}

	docs := make([]string, 0, jobs.Len()+1)
	for _, job := range jobs.Items {
		docs = append(docs, utils.CleanHTML(job.Description))
	}
	docs = append(docs, ideal)

	matrix := Vectorizer{MaxFeatures: s.featureCap}.FitTransform(docs)
	idealVector := matrix.Rows[len(matrix.Rows)-1]

	start := time.Now()
	for idx, job := range jobs.Items {
		similarity := Cosine(matrix.Rows[idx], idealVector)
		entities := DetectEntities(docs[idx], s.vocabulary)
		matches := entities.SkillMatches(resume)
		bonus := s.titleBonus(job.Title)

		results.Items = append(results.Items, &Scored{
			Job:          job,
			Score:        similarity*similarityFactor + float64(matches)*SkillWeight + bonus,
			Similarity:   similarity,
			SkillMatches: matches,
			TitleBonus:   bonus,
			Organization: entities.Organization,
		})

		if s.progressEvery > 0 && (idx+1)%s.progressEvery == 0 {
			s.logger.Info("scoring progress",
				zap.Int("processed", idx+1),
				zap.Int("total", jobs.Len()),
				zap.Duration("elapsed", time.Since(start)),
			)
		}
	}

	return results
}

// Pair returns the TF-IDF cosine similarity of two texts fitted on just those
// two documents.
func (s *Scorer) Pair(a, b string) float64 {
	matrix := Vectorizer{MaxFeatures: s.pairFeatureCap}.FitTransform([]string{a, b})
	return Cosine(matrix.Rows[0], matrix.Rows[1])
}

func (s *Scorer) titleBonus(title string) float64 {
	title = strings.ToLower(title)
	for _, target := range s.titles {
		if strings.Contains(title, target) {
			return TitleBonus
		}
	}
	return 0
}
