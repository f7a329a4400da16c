package judgeclient

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"funcjudge/internal/grader/model"
	appErr "funcjudge/pkg/errors"
	"funcjudge/pkg/utils/logger"

	"go.uber.org/zap"
)

const (
	defaultRequestTimeout = 30 * time.Second
	defaultWaitFloor      = 2 * time.Second
	defaultWaitPerCase    = 500 * time.Millisecond

	resultFields = "token,stdout,stderr,status,time,memory"
)

// Config holds judge backend settings.
type Config struct {
	BaseURL        string        `yaml:"baseURL"`
	AuthToken      string        `yaml:"authToken"`
	RequestTimeout time.Duration `yaml:"requestTimeout"`
	WaitFloor      time.Duration `yaml:"waitFloor"`
	WaitPerCase    time.Duration `yaml:"waitPerCase"`
}

// Client talks to a remote batch execution backend. One batch request
// carries every test case of a grading pass; results come back correlated
// by token.
type Client struct {
	baseURL     string
	authToken   string
	httpClient  *http.Client
	waitFloor   time.Duration
	waitPerCase time.Duration
}

// NewClient creates a new client.
func NewClient(cfg Config) *Client {
	timeout := cfg.RequestTimeout
	if timeout == 0 {
		timeout = defaultRequestTimeout
	}
	floor := cfg.WaitFloor
	if floor == 0 {
		floor = defaultWaitFloor
	}
	perCase := cfg.WaitPerCase
	if perCase == 0 {
		perCase = defaultWaitPerCase
	}
	return &Client{
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		authToken:   cfg.AuthToken,
		httpClient:  &http.Client{Timeout: timeout},
		waitFloor:   floor,
		waitPerCase: perCase,
	}
}

// BuildSubmissions builds one transport-encoded submission per test case.
// For harness executions stdin carries the test-case index the harness
// selects on; for raw executions stdin carries the test's own input values
// and the expected output rides along for the backend's status check.
func BuildSubmissions(languageID int, source string, cases []model.TestCase, harnessed bool) []model.Submission {
	encodedSource := encode(source)
	subs := make([]model.Submission, len(cases))
	for i, tc := range cases {
		sub := model.Submission{
			LanguageID: languageID,
			SourceCode: encodedSource,
		}
		if harnessed {
			sub.Stdin = encode(strconv.Itoa(i))
		} else {
			sub.Stdin = encode(rawStdin(tc))
			if tc.Expected != nil {
				sub.ExpectedOutput = encode(stringify(tc.Expected))
			}
		}
		subs[i] = sub
	}
	return subs
}

// Execute submits the whole batch, waits a fixed delay scaled by the batch
// size, then polls once for results. The wait is deliberately single-shot:
// an unusually slow backend can be observed with incomplete results, and no
// retry is attempted.
func (c *Client) Execute(ctx context.Context, subs []model.Submission) ([]model.JudgeResult, error) {
	tokens, err := c.SubmitBatch(ctx, subs)
	if err != nil {
		return nil, err
	}
	if err := c.wait(ctx, len(subs)); err != nil {
		return nil, err
	}
	results, err := c.FetchResults(ctx, tokens)
	if err != nil {
		return nil, err
	}
	if len(results) != len(subs) {
		return nil, appErr.Newf(appErr.JudgeResultMismatch,
			"submitted %d cases, received %d results", len(subs), len(results))
	}
	return results, nil
}

// SubmitBatch sends every submission in a single batch request and returns
// the correlation tokens in submission order.
func (c *Client) SubmitBatch(ctx context.Context, subs []model.Submission) ([]string, error) {
	body, err := json.Marshal(map[string]any{"submissions": subs})
	if err != nil {
		return nil, appErr.Wrapf(err, appErr.JudgeBackendError, "encode batch failed")
	}

	endpoint := c.baseURL + "/submissions/batch?base64_encoded=true"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, appErr.Wrapf(err, appErr.JudgeBackendError, "build submit request failed")
	}
	req.Header.Set("Content-Type", "application/json")
	c.setAuth(req)

	data, err := c.do(req, "submit batch")
	if err != nil {
		return nil, err
	}

	var created []struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(data, &created); err != nil {
		return nil, appErr.Wrapf(err, appErr.JudgeBackendError, "decode submit response failed")
	}
	tokens := make([]string, len(created))
	for i, entry := range created {
		tokens[i] = entry.Token
	}
	logger.Debug(ctx, "batch submitted", zap.Int("submissions", len(subs)))
	return tokens, nil
}

// FetchResults polls the backend once for the given tokens and returns the
// results reordered to match the token order.
func (c *Client) FetchResults(ctx context.Context, tokens []string) ([]model.JudgeResult, error) {
	endpoint := fmt.Sprintf("%s/submissions/batch?tokens=%s&base64_encoded=true&fields=%s",
		c.baseURL, url.QueryEscape(strings.Join(tokens, ",")), url.QueryEscape(resultFields))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, appErr.Wrapf(err, appErr.JudgeBackendError, "build fetch request failed")
	}
	c.setAuth(req)

	data, err := c.do(req, "fetch batch results")
	if err != nil {
		return nil, err
	}

	var payload struct {
		Submissions []model.JudgeResult `json:"submissions"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, appErr.Wrapf(err, appErr.JudgeBackendError, "decode fetch response failed")
	}
	return orderByTokens(tokens, payload.Submissions), nil
}

// orderByTokens restores submission order regardless of backend completion
// order. Results without a recognizable token keep their position.
func orderByTokens(tokens []string, results []model.JudgeResult) []model.JudgeResult {
	byToken := make(map[string]model.JudgeResult, len(results))
	for _, res := range results {
		if res.Token != "" {
			byToken[res.Token] = res
		}
	}
	ordered := make([]model.JudgeResult, 0, len(results))
	for i, token := range tokens {
		if res, ok := byToken[token]; ok {
			ordered = append(ordered, res)
			continue
		}
		if i < len(results) {
			ordered = append(ordered, results[i])
		}
	}
	return ordered
}

func (c *Client) wait(ctx context.Context, caseCount int) error {
	delay := c.waitFloor + time.Duration(caseCount)*c.waitPerCase
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *Client) do(req *http.Request, action string) ([]byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, appErr.Wrapf(err, appErr.JudgeBackendError, "%s failed", action)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, appErr.Wrapf(err, appErr.JudgeBackendError, "%s: read response failed", action)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, appErr.Newf(appErr.JudgeBackendError, "%s: backend returned %d", action, resp.StatusCode)
	}
	return data, nil
}

func (c *Client) setAuth(req *http.Request) {
	if c.authToken != "" {
		req.Header.Set("X-Auth-Token", c.authToken)
	}
}

// rawStdin joins a test case's own input values line by line in declared
// parameter order.
func rawStdin(tc model.TestCase) string {
	lines := make([]string, 0, len(tc.Order))
	for _, name := range tc.Order {
		lines = append(lines, stringify(tc.Input[name]))
	}
	return strings.Join(lines, "\n")
}

func stringify(v any) string {
	switch val := v.(type) {
	case nil:
		return "null"
	case string:
		return val
	default:
		data, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprint(val)
		}
		return string(data)
	}
}

func encode(s string) string {
	return base64.StdEncoding.EncodeToString([]byte(s))
}
