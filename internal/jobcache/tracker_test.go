package jobcache

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spigell/job-tracker/internal/remotive"
)

type stubSource struct {
	jobs  *remotive.Jobs
	err   error
	calls int
}

func (s *stubSource) Name() string { return "stub" }

func (s *stubSource) Jobs(context.Context) (*remotive.Jobs, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	items := append([]*remotive.Job(nil), s.jobs.Items...)
	return &remotive.Jobs{Items: items}, nil
}

type failingStore struct {
	Store
}

func (failingStore) Save(context.Context, *remotive.Jobs) error {
	return errors.New("disk full")
}

func jobs(urls ...string) *remotive.Jobs {
	list := &remotive.Jobs{}
	for _, url := range urls {
		list.Items = append(list.Items, &remotive.Job{URL: url, Title: "Job " + url})
	}
	return list
}

func newFileStore(t *testing.T, initial *remotive.Jobs) *FileStore {
	t.Helper()
	store := NewFileStore(filepath.Join(t.TempDir(), "data", "cached_jobs.json"))
	if initial != nil {
		if err := store.Save(context.Background(), initial); err != nil {
			t.Fatalf("seeding cache: %v", err)
		}
	}
	return store
}

func TestFetchNewReturnsOnlyUnseenAndReplacesCache(t *testing.T) {
	ctx := context.Background()
	store := newFileStore(t, jobs("a"))
	tracker := NewTracker(&stubSource{jobs: jobs("a", "b")}, store, zap.NewNop())

	fresh, err := tracker.FetchNew(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := fresh.URLs(); len(got) != 1 || got[0] != "b" {
		t.Fatalf("expected only b to be new, got %v", got)
	}

	cached, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("loading cache: %v", err)
	}
	if got := cached.URLs(); len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Fatalf("expected cache [a b], got %v", got)
	}
}

func TestFetchNewReplacesCacheWithFullSnapshot(t *testing.T) {
	ctx := context.Background()
	store := newFileStore(t, jobs("old-1", "a"))
	tracker := NewTracker(&stubSource{jobs: jobs("a", "b")}, store, nil)

	if _, err := tracker.FetchNew(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cached, _ := store.Load(ctx)
	if got := cached.URLs(); len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Fatalf("expected cache to be overwritten with [a b], got %v", got)
	}
}

func TestFetchNewIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store := newFileStore(t, nil)
	tracker := NewTracker(&stubSource{jobs: jobs("a", "b", "c")}, store, nil)

	first, err := tracker.FetchNew(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first.Len() != 3 {
		t.Fatalf("expected 3 new jobs on first call, got %d", first.Len())
	}

	second, err := tracker.FetchNew(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if second.Len() != 0 {
		t.Fatalf("expected no new jobs on second call, got %v", second.URLs())
	}
}

func TestFetchNewNeverReturnsCachedURLs(t *testing.T) {
	ctx := context.Background()

	for n := 0; n < 5; n++ {
		t.Run(fmt.Sprintf("overlap-%d", n), func(t *testing.T) {
			var cachedURLs, fetchedURLs []string
			for i := 0; i < 5; i++ {
				cachedURLs = append(cachedURLs, fmt.Sprintf("u%d", i))
			}
			for i := 5 - n; i < 10-n; i++ {
				fetchedURLs = append(fetchedURLs, fmt.Sprintf("u%d", i))
			}

			store := newFileStore(t, jobs(cachedURLs...))
			fresh, err := NewTracker(&stubSource{jobs: jobs(fetchedURLs...)}, store, nil).FetchNew(ctx)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			seen := jobs(cachedURLs...).URLSet()
			for _, url := range fresh.URLs() {
				if _, ok := seen[url]; ok {
					t.Fatalf("url %q was already cached", url)
				}
			}
			if fresh.Len() != 5-n {
				t.Fatalf("expected %d new jobs, got %d", 5-n, fresh.Len())
			}
		})
	}
}

func TestFetchNewUnavailableSourceLeavesCacheUntouched(t *testing.T) {
	ctx := context.Background()
	store := newFileStore(t, jobs("a"))
	before, _ := os.ReadFile(store.Path())

	core, observed := observer.New(zapcore.WarnLevel)
	source := &stubSource{err: fmt.Errorf("%w: bad status: 500", remotive.ErrUnavailable)}

	fresh, err := NewTracker(source, store, zap.New(core)).FetchNew(ctx)
	if err != nil {
		t.Fatalf("unavailable source must not be an error, got %v", err)
	}
	if fresh.Len() != 0 {
		t.Fatalf("expected no jobs, got %d", fresh.Len())
	}

	after, _ := os.ReadFile(store.Path())
	if string(before) != string(after) {
		t.Fatalf("cache must be left untouched")
	}

	if observed.FilterMessage("fetching jobs failed, continuing with no results").Len() != 1 {
		t.Fatalf("expected the fetch failure to be logged")
	}
}

func TestFetchNewPropagatesMalformedResponses(t *testing.T) {
	source := &stubSource{err: errors.New("decoding jobs response: no jobs array in body")}

	_, err := NewTracker(source, newFileStore(t, nil), nil).FetchNew(context.Background())
	if err == nil {
		t.Fatalf("expected malformed response to be propagated")
	}
}

func TestFetchNewCorruptCacheIsEmpty(t *testing.T) {
	ctx := context.Background()
	store := newFileStore(t, nil)
	if err := os.MkdirAll(filepath.Dir(store.Path()), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(store.Path(), []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	fresh, err := NewTracker(&stubSource{jobs: jobs("a")}, store, nil).FetchNew(ctx)
	if err != nil {
		t.Fatalf("corrupt cache must not be fatal, got %v", err)
	}
	if fresh.Len() != 1 {
		t.Fatalf("expected every fetched job to be new, got %d", fresh.Len())
	}

	cached, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("expected cache to be rewritten, got %v", err)
	}
	if cached.Len() != 1 {
		t.Fatalf("expected 1 cached job, got %d", cached.Len())
	}
}

func TestFetchNewSaveFailureIsReturned(t *testing.T) {
	store := failingStore{Store: newFileStore(t, nil)}

	_, err := NewTracker(&stubSource{jobs: jobs("a")}, store, nil).FetchNew(context.Background())
	if err == nil {
		t.Fatalf("expected save failure to be returned")
	}
}

func TestCachedMissingFileIsEmpty(t *testing.T) {
	store := NewFileStore(filepath.Join(t.TempDir(), "absent.json"))

	if got := NewTracker(&stubSource{}, store, nil).Cached(context.Background()); got.Len() != 0 {
		t.Fatalf("expected empty cache, got %d", got.Len())
	}
}
