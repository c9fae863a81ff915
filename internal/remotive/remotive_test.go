package remotive

import (
	"bytes"
	"compress/gzip"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"
)

const sampleBody = `{
  "job-count": 2,
  "jobs": [
    {
      "id": 101,
      "url": "https://remotive.com/remote-jobs/project-management/senior-pm-101",
      "title": "Senior Project Manager",
      "company_name": "Acme Labs",
      "category": "Project Management",
      "job_type": "full_time",
      "candidate_required_location": "Worldwide",
      "description": "<p>Lead Agile teams.</p>",
      "tags": ["agile", "scrum"],
      "salary": null
    },
    {
      "url": "https://remotive.com/remote-jobs/software-dev/go-102",
      "title": "Go Engineer",
      "type": "contract",
      "company_name": ""
    }
  ]
}`

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return New(zap.NewNop(), server.URL, time.Second)
}

func TestJobsDecodesAndAppliesDefaults(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("User-Agent"); got == "" {
			t.Errorf("expected user agent header")
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(sampleBody))
	})

	jobs, err := client.Jobs(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if jobs.Len() != 2 {
		t.Fatalf("expected 2 jobs, got %d", jobs.Len())
	}

	first := jobs.Items[0]
	if first.ID != 101 || first.CompanyName != "Acme Labs" || first.Location != "Worldwide" || first.Type != "full_time" {
		t.Fatalf("unexpected first job: %+v", first)
	}

	second := jobs.Items[1]
	if second.CompanyName != Missing || second.Location != Missing || second.Description != Missing || second.Category != Missing {
		t.Fatalf("expected missing fields to default to %q, got %+v", Missing, second)
	}
	if second.Type != "contract" {
		t.Fatalf("expected legacy type field to be used, got %q", second.Type)
	}
}

func TestJobsReadsGzipBody(t *testing.T) {
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	_, _ = zw.Write([]byte(sampleBody))
	_ = zw.Close()

	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Encoding", "gzip")
		_, _ = w.Write(buf.Bytes())
	})

	jobs, err := client.Jobs(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if jobs.Len() != 2 {
		t.Fatalf("expected 2 jobs, got %d", jobs.Len())
	}
}

func TestJobsBadStatusIsUnavailable(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	_, err := client.Jobs(context.Background())
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}

func TestJobsTransportErrorIsUnavailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := server.URL
	server.Close()

	_, err := New(zap.NewNop(), url, time.Second).Jobs(context.Background())
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}

func TestJobsMalformedBodyIsPropagated(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		body string
	}{
		{name: "not json", body: "<html>oops</html>"},
		{name: "no jobs key", body: `{"job-count": 0}`},
		{name: "job without url", body: `{"jobs": [{"title": "PM"}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(tt.body))
			})

			_, err := client.Jobs(context.Background())
			if err == nil {
				t.Fatalf("expected error")
			}
			if errors.Is(err, ErrUnavailable) {
				t.Fatalf("malformed body must not be treated as unavailable: %v", err)
			}
		})
	}
}

func TestJobsEmptyArray(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"jobs": []}`))
	})

	jobs, err := client.Jobs(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if jobs.Len() != 0 {
		t.Fatalf("expected no jobs, got %d", jobs.Len())
	}
}
