package sheets

import (
	"time"

	"github.com/spigell/job-tracker/internal/remotive"
	"github.com/spigell/job-tracker/internal/scoring"
	"github.com/spigell/job-tracker/internal/utils"
)

const (
	// KeyColumn identifies a posting in both tables.
	KeyColumn = "URL"
	// TimeLayout formats Date Added and Last Updated, always in UTC.
	TimeLayout = "2006-01-02 15:04:05"
)

var PoolHeader = []string{
	"Title", "Company", "Location", "Description", "URL", "Date Added",
	"Job Portal", "Job Type", "Job Category", "Model Used",
}

var RecommendedHeader = []string{
	"Title", "Company", "Location", "Description", "Relevance Score", "AI Insights",
	"Application Status", "Follow-up Date", "Last Updated", "URL", "Job Portal",
	"Job Category", "Job Type", "Model Used",
}

// Row is one sheet row together with the value of its key column.
type Row struct {
	Key    string
	Values []any
}

func PoolRow(job *remotive.Job, now time.Time, modelUsed string) Row {
	return Row{
		Key: job.URL,
		Values: []any{
			job.Title,
			job.CompanyName,
			job.Location,
			utils.CleanHTML(job.Description),
			job.URL,
			now.UTC().Format(TimeLayout),
			remotive.Portal,
			job.Type,
			job.Category,
			modelUsed,
		},
	}
}

// RecommendedRow projects a scored posting. Application Status and Follow-up
// Date are left for the user to fill in.
func RecommendedRow(s *scoring.Scored, now time.Time, modelUsed string) Row {
	return Row{
		Key: s.Job.URL,
		Values: []any{
			s.Job.Title,
			s.Job.CompanyName,
			s.Job.Location,
			utils.CleanHTML(s.Job.Description),
			s.Score,
			s.Insights,
			"",
			"",
			now.UTC().Format(TimeLayout),
			s.Job.URL,
			remotive.Portal,
			s.Job.Category,
			s.Job.Type,
			modelUsed,
		},
	}
}
