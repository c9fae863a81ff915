package remotive

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/mitchellh/mapstructure"
)

// Missing replaces empty posting fields on ingest.
const Missing = "N/A"

type Jobs struct {
	Items []*Job
}

type Job struct {
	ID              int    `json:"id,omitempty"`
	Title           string `json:"title"`
	CompanyName     string `json:"company_name"`
	Location        string `json:"candidate_required_location"`
	Description     string `json:"description"`
	URL             string `json:"url"`
	Type            string `json:"job_type"`
	Category        string `json:"category"`
	PublicationDate string `json:"publication_date,omitempty"`
}

// DecodeItems converts raw items, from the API or a stored snapshot, into
// postings and applies the ingest defaults. Items without a url are rejected since url is the identity of a posting.
func DecodeItems(items []Item) (*Jobs, error) {
	for _, item := range items {
		raw, ok := item.(map[string]any)
		if !ok {
			continue
		}
		if _, ok := raw["job_type"]; !ok {
			if legacy, ok := raw["type"]; ok {
				raw["job_type"] = legacy
			}
		}
	}

	var jobs []*Job
	cfg := &mapstructure.DecoderConfig{
		Metadata: nil,
		Result:   &jobs,
		TagName:  "json",
	}
	decoder, err := mapstructure.NewDecoder(cfg)
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(items); err != nil {
		return nil, fmt.Errorf("decoding jobs: %w", err)
	}

	for idx, job := range jobs {
		if job == nil || strings.TrimSpace(job.URL) == "" {
			return nil, fmt.Errorf("decoding jobs: item %d has no url", idx)
		}
		job.withDefaults()
	}

	return &Jobs{Items: jobs}, nil
}

func (j *Job) withDefaults() {
	for _, field := range []*string{&j.Title, &j.CompanyName, &j.Location, &j.Description, &j.Type, &j.Category} {
		if strings.TrimSpace(*field) == "" {
			*field = Missing
		}
	}
}

func (v *Jobs) Len() int {
	if v == nil {
		return 0
	}
	return len(v.Items)
}

// URLs returns the urls of all postings in order.
func (v *Jobs) URLs() []string {
	urls := make([]string, 0, v.Len())
	if v == nil {
		return urls
	}
	for _, job := range v.Items {
		urls = append(urls, job.URL)
	}
	return urls
}

// Unseen returns the postings whose url is not in seen, preserving order.
func (v *Jobs) Unseen(seen map[string]struct{}) *Jobs {
	unseen := &Jobs{}
	if v == nil {
		return unseen
	}
	for _, job := range v.Items {
		if _, ok := seen[job.URL]; ok {
			continue
		}
		unseen.Items = append(unseen.Items, job)
	}
	return unseen
}

// URLSet indexes the postings by url.
func (v *Jobs) URLSet() map[string]struct{} {
	set := make(map[string]struct{}, v.Len())
	if v == nil {
		return set
	}
	for _, job := range v.Items {
		set[job.URL] = struct{}{}
	}
	return set
}

func (v *Jobs) DumpToTmpFile() (string, error) {
	file, err := os.CreateTemp("", "jobs_*.json")
	if err != nil {
		return "", err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v.Items); err != nil {
		return "", err
	}
	return file.Name(), nil
}
