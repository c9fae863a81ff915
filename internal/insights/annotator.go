// Package insights adds optional Gemini-written notes to recommended jobs.
package insights

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	_ "embed"

	"go.uber.org/zap"

	"github.com/spigell/job-tracker/internal/logger"
	"github.com/spigell/job-tracker/internal/scoring"
	"github.com/spigell/job-tracker/internal/skills"
	"github.com/spigell/job-tracker/internal/utils"
)

type contentGenerator interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
}

//go:embed prompt.md
var promptTemplate string

const defaultMaxLogLength = 200

type Annotator struct {
	generator contentGenerator
	logger    *zap.Logger
	maxLogLen int
}

func NewAnnotator(generator contentGenerator, log *zap.Logger, maxLogLength int) *Annotator {
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}

	return &Annotator{
		generator: generator,
		logger:    logger.OrNop(log),
		maxLogLen: maxLogLength,
	}
}

type jobPayload struct {
	Title          string  `json:"title"`
	Company        string  `json:"company"`
	Location       string  `json:"location"`
	Type           string  `json:"job_type"`
	Category       string  `json:"category"`
	RelevanceScore float64 `json:"relevance_score"`
	Description    string  `json:"description"`
}

// Annotate fills Insights for every result. A failed job is logged and left
// blank. It returns the number of annotated results.
func (a *Annotator) Annotate(ctx context.Context, resume skills.Set, r *scoring.Results) int {
	if r == nil {
		return 0
	}

	annotated := 0
	for _, item := range r.Items {
		if err := ctx.Err(); err != nil {
			a.logger.Warn("ai insights interrupted", zap.Error(err))
			break
		}

		insight, err := a.insight(ctx, resume, item)
		if err != nil {
			a.logger.Warn("ai insight failed",
				zap.String("url", item.Job.URL),
				zap.Error(err),
			)
			continue
		}

		item.Insights = insight
		annotated++
	}

	a.logger.Info("ai insights completed",
		zap.Int("jobs", r.Len()),
		zap.Int("annotated", annotated),
	)
	return annotated
}

func (a *Annotator) insight(ctx context.Context, resume skills.Set, item *scoring.Scored) (string, error) {
	payload, err := json.MarshalIndent(jobPayload{
		Title:          item.Job.Title,
		Company:        item.Job.CompanyName,
		Location:       item.Job.Location,
		Type:           item.Job.Type,
		Category:       item.Job.Category,
		RelevanceScore: item.Score,
		Description:    utils.CleanHTML(item.Job.Description),
	}, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal job payload: %w", err)
	}

	prompt := buildPrompt(resume, string(payload))
	a.logger.Debug("gemini generate content request",
		zap.String("url", item.Job.URL),
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", utils.TruncateForLog(prompt, a.maxLogLen)),
	)

	raw, err := a.generator.GenerateContent(ctx, prompt)
	if err != nil {
		return "", err
	}

	a.logger.Debug("gemini generate content response",
		zap.String("url", item.Job.URL),
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", utils.TruncateForLog(raw, a.maxLogLen)),
	)

	return parseResponse(raw)
}

func buildPrompt(resume skills.Set, jobJSON string) string {
	skillList := "none"
	if resume.Len() > 0 {
		skillList = resume.String()
	}

	template := promptTemplate
	if strings.TrimSpace(template) == "" {
		template = "Skills:\n{{SKILLS}}\n\nJob:\n{{JOB_JSON}}\n\nJSON Response:"
	}
	prompt := strings.ReplaceAll(template, "{{SKILLS}}", skillList)
	return strings.ReplaceAll(prompt, "{{JOB_JSON}}", jobJSON)
}

// parseResponse accepts the requested JSON object, optionally fenced, and
// falls back to plain text when the model ignored the schema.
func parseResponse(raw string) (string, error) {
	cleaned := extractJSON(raw)
	if cleaned == "" {
		return "", fmt.Errorf("empty gemini response")
	}

	var data struct {
		Insight string `json:"insight"`
	}
	if err := json.Unmarshal([]byte(cleaned), &data); err != nil {
		if strings.HasPrefix(cleaned, "{") {
			return "", fmt.Errorf("parse gemini response: %w", err)
		}
		return cleaned, nil
	}

	insight := strings.TrimSpace(data.Insight)
	if insight == "" {
		return "", fmt.Errorf("gemini response has no insight")
	}
	return insight, nil
}

func extractJSON(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		raw = strings.TrimSpace(raw)
		if idx := strings.LastIndex(raw, "```"); idx != -1 {
			raw = raw[:idx]
		}
	}
	raw = strings.Trim(raw, "`")
	return strings.TrimSpace(raw)
}
