package scoring

import (
	"sort"

	"github.com/spigell/job-tracker/internal/remotive"
)

// Scored is a posting with its relevance score and the components it was built from.
type Scored struct {
	Job          *remotive.Job
	Score        float64
	Similarity   float64
	SkillMatches int
	TitleBonus   float64
	Organization string
	Insights     string
}

type Results struct {
	Items []*Scored
}

func (r *Results) Len() int {
	if r == nil {
		return 0
	}
	return len(r.Items)
}

// Sort orders the results by descending score. Equal scores keep their order.
func (r *Results) Sort() {
	if r == nil {
		return
	}
	sort.SliceStable(r.Items, func(i, j int) bool {
		return r.Items[i].Score > r.Items[j].Score
	})
}

// Top returns up to n best results without modifying r.
func (r *Results) Top(n int) *Results {
	if r == nil {
		return &Results{}
	}
	sorted := &Results{Items: append([]*Scored(nil), r.Items...)}
	sorted.Sort()
	if n >= 0 && len(sorted.Items) > n {
		sorted.Items = sorted.Items[:n]
	}
	return sorted
}

// Keep retains the results accepted by keep and returns the urls of the dropped ones.
func (r *Results) Keep(keep func(*Scored) bool) []string {
	if r == nil {
		return nil
	}
	var dropped []string
	kept := r.Items[:0]
	for _, item := range r.Items {
		if keep(item) {
			kept = append(kept, item)
			continue
		}
		dropped = append(dropped, item.Job.URL)
	}
	r.Items = kept
	return dropped
}

// ExcludeURLs drops results whose posting url is in urls.
func (r *Results) ExcludeURLs(urls map[string]struct{}) []string {
	return r.Keep(func(s *Scored) bool {
		_, found := urls[s.Job.URL]
		return !found
	})
}

// Jobs returns the postings behind the results, in order.
func (r *Results) Jobs() *remotive.Jobs {
	jobs := &remotive.Jobs{}
	if r == nil {
		return jobs
	}
	for _, item := range r.Items {
		jobs.Items = append(jobs.Items, item.Job)
	}
	return jobs
}
