package pipeline

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spigell/job-tracker/internal/config"
	"github.com/spigell/job-tracker/internal/filtering"
	"github.com/spigell/job-tracker/internal/remotive"
	"github.com/spigell/job-tracker/internal/scoring"
	"github.com/spigell/job-tracker/internal/sheets"
	"github.com/spigell/job-tracker/internal/skills"
)

type stubResume struct {
	text string
	path string
}

func (s *stubResume) Read(path string) string {
	s.path = path
	return s.text
}

type stubFinder struct {
	fresh  *remotive.Jobs
	cached *remotive.Jobs
	err    error
}

func (s *stubFinder) FetchNew(context.Context) (*remotive.Jobs, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.fresh, nil
}

func (s *stubFinder) Cached(context.Context) *remotive.Jobs { return s.cached }

type recordingSink struct {
	batches []sheets.Batch
	err     error
}

func (s *recordingSink) Write(_ context.Context, batch sheets.Batch) error {
	s.batches = append(s.batches, batch)
	return s.err
}

type countingAnnotator struct {
	seen int
}

func (a *countingAnnotator) Annotate(_ context.Context, _ skills.Set, r *scoring.Results) int {
	a.seen += r.Len()
	for _, item := range r.Items {
		item.Insights = "noted"
	}
	return r.Len()
}

func job(url, title, description string) *remotive.Job {
	return &remotive.Job{URL: url, Title: title, Description: description, CompanyName: "Acme"}
}

func newTestPipeline(log *zap.Logger, finder JobFinder, sink Sink, annotator Annotator, topN int) (*Pipeline, *stubResume) {
	resume := &stubResume{text: "Agile practitioner. Jira, Scrum and AWS."}
	deps := Deps{
		Resume:    resume,
		Extractor: skills.NewExtractor(skills.NewVocabulary(config.DefaultSkills)),
		Jobs:      finder,
		Scorer: scoring.NewScorer(nil, scoring.Options{
			Vocabulary:   skills.NewVocabulary(config.DefaultSkills),
			TargetTitles: config.DefaultTargetTitles,
			FeatureCap:   config.DefaultFeatureCap,
		}),
		Annotator: annotator,
		Sink:      sink,
	}
	opts := Options{
		ResumeFile:       "data/resume.docx",
		IdealDescription: config.DefaultIdealDescription,
		Filters:          []filtering.Filter{filtering.NewThreshold(config.DefaultThreshold)},
		TopN:             topN,
	}
	return New(log, deps, opts), resume
}

func TestRunScoresNewJobs(t *testing.T) {
	t.Parallel()

	finder := &stubFinder{fresh: &remotive.Jobs{Items: []*remotive.Job{
		job("a", "Barista", "Pull espresso shots"),
		job("b", "Senior Project Manager", "Agile delivery with Jira and Scrum on AWS"),
		job("c", "Scrum Master", "Coach teams"),
	}}}

	p, resume := newTestPipeline(nil, finder, nil, nil, 20)
	result, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	if resume.path != "data/resume.docx" {
		t.Fatalf("resume read from %q", resume.path)
	}
	if result.RunID == "" {
		t.Fatal("expected run id")
	}
	if !result.UpdatePool || result.Jobs.Len() != 3 {
		t.Fatalf("expected pool update with 3 jobs, got %v/%d", result.UpdatePool, result.Jobs.Len())
	}
	if want := (skills.Set{"AWS", "Agile", "Jira", "Scrum"}); result.Skills.String() != want.String() {
		t.Fatalf("skills = %v, want %v", result.Skills, want)
	}

	got := result.Recommended.Jobs().URLs()
	if len(got) != 2 || got[0] != "b" || got[1] != "c" {
		t.Fatalf("recommended = %v, want [b c]", got)
	}
	for _, item := range result.Recommended.Items {
		if item.Score <= config.DefaultThreshold {
			t.Fatalf("job %s kept with score %v", item.Job.URL, item.Score)
		}
	}
}

func TestRunLogsCountsBeforeAndAfterFiltering(t *testing.T) {
	t.Parallel()

	finder := &stubFinder{fresh: &remotive.Jobs{Items: []*remotive.Job{
		job("a", "Barista", "Pull espresso shots"),
		job("b", "Senior Project Manager", "Agile delivery with Jira and Scrum on AWS"),
		job("c", "Scrum Master", "Coach teams"),
	}}}

	core, observed := observer.New(zapcore.InfoLevel)
	p, _ := newTestPipeline(zap.New(core), finder, nil, nil, 20)
	if _, err := p.Run(context.Background()); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	entries := observed.FilterMessage("jobs scored").All()
	if len(entries) != 1 {
		t.Fatalf("expected one summary entry, got %d", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["scored"] != int64(3) || fields["relevant"] != int64(2) {
		t.Fatalf("unexpected counts: scored=%v relevant=%v", fields["scored"], fields["relevant"])
	}
}

func TestRunFallsBackToCache(t *testing.T) {
	t.Parallel()

	core, observed := observer.New(zapcore.WarnLevel)
	finder := &stubFinder{
		fresh:  &remotive.Jobs{},
		cached: &remotive.Jobs{Items: []*remotive.Job{job("a", "Project Manager", "Agile")}},
	}

	p, _ := newTestPipeline(zap.New(core), finder, nil, nil, 20)
	result, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if result.UpdatePool {
		t.Fatal("pool must not be updated from cache")
	}
	if result.Jobs.Len() != 1 || result.Recommended.Len() != 1 {
		t.Fatalf("expected the cached job to be scored, got %d/%d", result.Jobs.Len(), result.Recommended.Len())
	}

	entries := observed.FilterMessage("no new jobs, using cached jobs").All()
	if len(entries) != 1 {
		t.Fatalf("expected fallback warning, got %d", len(entries))
	}
	if entries[0].ContextMap()["run_id"] != result.RunID {
		t.Fatal("expected run id on log entry")
	}
}

func TestRunPropagatesFetchErrors(t *testing.T) {
	t.Parallel()

	sentinel := errors.New("malformed body")
	p, _ := newTestPipeline(nil, &stubFinder{err: sentinel}, nil, nil, 20)
	if _, err := p.Run(context.Background()); !errors.Is(err, sentinel) {
		t.Fatalf("expected fetch error, got %v", err)
	}
}

func TestRunAnnotatesTopN(t *testing.T) {
	t.Parallel()

	finder := &stubFinder{fresh: &remotive.Jobs{Items: []*remotive.Job{
		job("a", "Project Manager", "Agile Jira"),
		job("b", "Program Manager", "Agile Scrum"),
		job("c", "Scrum Master", "Jira"),
	}}}
	annotator := &countingAnnotator{}

	p, _ := newTestPipeline(nil, finder, nil, annotator, 2)
	result, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if annotator.seen != 2 {
		t.Fatalf("expected 2 annotated jobs, got %d", annotator.seen)
	}
	if result.Recommended.Items[0].Insights != "noted" {
		t.Fatal("expected insights on the best job")
	}
}

func TestPersist(t *testing.T) {
	t.Parallel()

	finder := &stubFinder{fresh: &remotive.Jobs{Items: []*remotive.Job{job("a", "Project Manager", "Agile Jira")}}}
	sink := &recordingSink{}

	p, _ := newTestPipeline(nil, finder, sink, nil, 20)
	result, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if !p.Persist(context.Background(), result) {
		t.Fatal("expected Persist to succeed")
	}
	if len(sink.batches) != 1 {
		t.Fatalf("expected one write call, got %d", len(sink.batches))
	}
	batch := sink.batches[0]
	if !batch.UpdatePool || batch.Pool.Len() != 1 || batch.Recommended.Len() != 1 {
		t.Fatalf("unexpected batch %+v", batch)
	}
}

func TestPersistSwallowsSinkErrors(t *testing.T) {
	t.Parallel()

	core, observed := observer.New(zapcore.ErrorLevel)
	finder := &stubFinder{fresh: &remotive.Jobs{Items: []*remotive.Job{job("a", "Project Manager", "Agile Jira")}}}
	sink := &recordingSink{err: errors.New("quota exceeded")}

	p, _ := newTestPipeline(zap.New(core), finder, sink, nil, 20)
	result, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if p.Persist(context.Background(), result) {
		t.Fatal("expected Persist to report failure")
	}
	if observed.FilterMessage("persisting results failed").Len() != 1 {
		t.Fatal("expected the failure to be logged")
	}
}

func TestPersistWithoutSink(t *testing.T) {
	t.Parallel()

	p, _ := newTestPipeline(nil, &stubFinder{fresh: &remotive.Jobs{}, cached: &remotive.Jobs{}}, nil, nil, 20)
	result, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if p.Persist(context.Background(), result) {
		t.Fatal("expected Persist to report nothing persisted")
	}
}
