package remotive

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	apiURL    = "https://remotive.com/api/remote-jobs"
	userAgent = "job-tracker (+https://github.com/spigell/job-tracker)"
	// Portal is the job portal name written next to every posting.
	Portal = "Remotive"
)

// ErrUnavailable marks listing failures that callers treat as "no results":
// transport errors and non-200 responses.
var ErrUnavailable = errors.New("remotive api unavailable")

type Client struct {
	logger     *zap.Logger
	HTTPClient *http.Client
	UserAgent  string
	APIURL     string
}

func New(logger *zap.Logger, url string, timeout time.Duration) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	if strings.TrimSpace(url) == "" {
		url = apiURL
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		APIURL: url,
		HTTPClient: &http.Client{
			Timeout: timeout,
		},
		logger:    logger,
		UserAgent: userAgent,
	}
}

// Name identifies the listing source in logs and sheet rows.
func (c *Client) Name() string {
	return Portal
}

// Jobs fetches the current list of remote jobs in a single request.
func (c *Client) Jobs(ctx context.Context) (*Jobs, error) {
	items, err := c.getItems(ctx, c.APIURL)
	if err != nil {
		return nil, err
	}

	jobs, err := DecodeItems(items)
	if err != nil {
		return nil, err
	}

	c.logger.Debug("got response from remotive", zap.Int("jobs", jobs.Len()))

	return jobs, nil
}
