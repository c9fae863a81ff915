package filtering

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/job-tracker/internal/scoring"
)

type keywordsFilter struct {
	toggle
	keywords []string
}

// NewExcludedKeywords creates a filter that removes postings whose title
// contains any of keywords, ignoring case.
func NewExcludedKeywords(keywords []string) Filter {
	f := &keywordsFilter{}
	for _, keyword := range keywords {
		if keyword = strings.ToLower(strings.TrimSpace(keyword)); keyword != "" {
			f.keywords = append(f.keywords, keyword)
		}
	}
	return f
}

func (f *keywordsFilter) Name() string { return "excluded_keywords" }

func (f *keywordsFilter) Validate() error { return nil }

func (f *keywordsFilter) Apply(_ context.Context, deps Deps, r *scoring.Results) (Step, error) {
	initial := r.Len()
	if len(f.keywords) == 0 {
		return Step{Initial: initial, Dropped: 0, Left: r.Len()}, nil
	}

	dropped := r.Keep(func(s *scoring.Scored) bool {
		title := strings.ToLower(s.Job.Title)
		for _, keyword := range f.keywords {
			if strings.Contains(title, keyword) {
				return false
			}
		}
		return true
	})
	if deps.Logger != nil && len(dropped) > 0 {
		deps.Logger.Info("excluding jobs by title keywords",
			zap.Strings("keywords", f.keywords),
			zap.Strings("excluded_jobs", dropped),
			zap.Int("jobs_left", r.Len()),
		)
	}

	return Step{Initial: initial, Dropped: len(dropped), Left: r.Len()}, nil
}

func (f *keywordsFilter) Status() Status {
	details := map[string]string{}
	if len(f.keywords) > 0 {
		details["keywords"] = strings.Join(f.keywords, ",")
	}
	return Status{Name: f.Name(), Enabled: f.IsEnabled(), Reason: f.reason, Details: details}
}
