package problemclient

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"funcjudge/internal/grader/model"
	appErr "funcjudge/pkg/errors"
)

const defaultRequestTimeout = 10 * time.Second

// Config holds problem store settings.
type Config struct {
	BaseURL        string        `yaml:"baseURL"`
	RequestTimeout time.Duration `yaml:"requestTimeout"`
}

// Client fetches problems and their test cases from the problem store.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new client.
func NewClient(cfg Config) *Client {
	timeout := cfg.RequestTimeout
	if timeout == 0 {
		timeout = defaultRequestTimeout
	}
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// FetchByID returns the stored problem: its declared signature text, the
// unordered-comparison flag and the ordered test cases.
func (c *Client) FetchByID(ctx context.Context, id int64) (model.Problem, error) {
	endpoint := fmt.Sprintf("%s/problems/%d", c.baseURL, id)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return model.Problem{}, appErr.Wrapf(err, appErr.ProblemFetchFailed, "build problem request failed")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return model.Problem{}, appErr.Wrapf(err, appErr.ProblemFetchFailed, "fetch problem %d failed", id)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return model.Problem{}, appErr.Newf(appErr.ProblemNotFound, "problem %d not found", id)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return model.Problem{}, appErr.Newf(appErr.ProblemFetchFailed, "problem store returned %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return model.Problem{}, appErr.Wrapf(err, appErr.ProblemFetchFailed, "read problem response failed")
	}
	var problem model.Problem
	if err := json.Unmarshal(data, &problem); err != nil {
		return model.Problem{}, appErr.Wrapf(err, appErr.ProblemFetchFailed, "decode problem response failed")
	}
	return problem, nil
}
