package filtering

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/spigell/job-tracker/internal/scoring"
)

type AppliedJob struct {
	URL       string    `json:"url"`
	Title     string    `json:"title"`
	Company   string    `json:"company"`
	AppliedAt time.Time `json:"applied_at"`
}

// AppliedJobs is the content of the applied-jobs file.
type AppliedJobs struct {
	Items []*AppliedJob `json:"items"`
}

// LoadApplied reads the applied-jobs file. A missing or empty file is an empty list.
func LoadApplied(path string) (*AppliedJobs, error) {
	file, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return &AppliedJobs{}, nil
	}
	if err != nil {
		return nil, err
	}
	defer file.Close()

	stat, err := file.Stat()
	if err != nil {
		return nil, err
	}
	if stat.Size() == 0 {
		return &AppliedJobs{}, nil
	}

	var applied AppliedJobs
	if err := json.NewDecoder(file).Decode(&applied); err != nil {
		return nil, err
	}
	return &applied, nil
}

// FromResults records every result as applied at now.
func FromResults(r *scoring.Results, now time.Time) *AppliedJobs {
	applied := &AppliedJobs{}
	if r == nil {
		return applied
	}
	for _, item := range r.Items {
		applied.Items = append(applied.Items, &AppliedJob{
			URL:       item.Job.URL,
			Title:     item.Job.Title,
			Company:   item.Job.CompanyName,
			AppliedAt: now.UTC(),
		})
	}
	return applied
}

// Append adds the jobs of s whose url is not recorded yet.
func (a *AppliedJobs) Append(s *AppliedJobs) {
	seen := a.URLSet()
	for _, job := range s.Items {
		if _, ok := seen[job.URL]; ok {
			continue
		}
		seen[job.URL] = struct{}{}
		a.Items = append(a.Items, job)
	}
}

func (a *AppliedJobs) URLSet() map[string]struct{} {
	set := make(map[string]struct{}, len(a.Items))
	for _, job := range a.Items {
		set[job.URL] = struct{}{}
	}
	return set
}

func (a *AppliedJobs) ToFile(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	return enc.Encode(a)
}

type appliedFileFilter struct {
	toggle
	path string
}

// NewAppliedFile creates a filter that removes postings recorded in the applied-jobs file.
func NewAppliedFile(path string) Filter {
	f := &appliedFileFilter{path: path}
	if path == "" {
		f.Disable("applied file is not configured")
	}
	return f
}

func (f *appliedFileFilter) Name() string { return "applied_file" }

func (f *appliedFileFilter) Validate() error { return nil }

func (f *appliedFileFilter) Apply(_ context.Context, deps Deps, r *scoring.Results) (Step, error) {
	initial := r.Len()

	applied, err := LoadApplied(f.path)
	if err != nil {
		return Step{}, fmt.Errorf("getting applied jobs from file: %w", err)
	}

	removed := r.ExcludeURLs(applied.URLSet())
	if deps.Logger != nil && len(removed) > 0 {
		deps.Logger.Info("excluding jobs based on applied file",
			zap.String("path", f.path),
			zap.Strings("excluded_jobs", removed),
			zap.Int("jobs_left", r.Len()),
		)
	}

	return Step{Initial: initial, Dropped: len(removed), Left: r.Len()}, nil
}

func (f *appliedFileFilter) Status() Status {
	details := map[string]string{}
	if f.path != "" {
		details["path"] = f.path
	}
	return Status{Name: f.Name(), Enabled: f.IsEnabled(), Reason: f.reason, Details: details}
}
