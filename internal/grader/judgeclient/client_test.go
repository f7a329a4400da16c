package judgeclient_test

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"funcjudge/internal/grader/judgeclient"
	"funcjudge/internal/grader/model"
	appErr "funcjudge/pkg/errors"
)

func fastConfig(baseURL string) judgeclient.Config {
	return judgeclient.Config{
		BaseURL:     baseURL,
		WaitFloor:   time.Millisecond,
		WaitPerCase: time.Millisecond,
	}
}

func TestBuildSubmissionsHarnessStdinIsIndex(t *testing.T) {
	cases := []model.TestCase{
		{Order: []string{"a"}, Input: map[string]any{"a": 1.0}},
		{Order: []string{"a"}, Input: map[string]any{"a": 2.0}},
	}
	subs := judgeclient.BuildSubmissions(71, "print(1)", cases, true)
	if len(subs) != 2 {
		t.Fatalf("expected 2 submissions, got %d", len(subs))
	}
	for i, sub := range subs {
		stdin, err := base64.StdEncoding.DecodeString(sub.Stdin)
		if err != nil {
			t.Fatalf("stdin not base64: %v", err)
		}
		if string(stdin) != fmt.Sprint(i) {
			t.Fatalf("submission %d stdin = %q, want index", i, stdin)
		}
		if sub.ExpectedOutput != "" {
			t.Fatalf("harness submissions should not carry expected output")
		}
	}
}

func TestBuildSubmissionsRawStdinJoinsInputs(t *testing.T) {
	cases := []model.TestCase{
		{
			Order:    []string{"nums", "target"},
			Input:    map[string]any{"nums": []any{2.0, 7.0}, "target": 9.0},
			Expected: []any{0.0, 1.0},
		},
	}
	subs := judgeclient.BuildSubmissions(71, "src", cases, false)
	stdin, _ := base64.StdEncoding.DecodeString(subs[0].Stdin)
	if string(stdin) != "[2,7]\n9" {
		t.Fatalf("raw stdin = %q", stdin)
	}
	expected, _ := base64.StdEncoding.DecodeString(subs[0].ExpectedOutput)
	if string(expected) != "[0,1]" {
		t.Fatalf("expected output = %q", expected)
	}
}

func TestExecutePreservesSubmissionOrder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			var payload struct {
				Submissions []model.Submission `json:"submissions"`
			}
			if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
				t.Errorf("decode submit payload: %v", err)
			}
			tokens := make([]map[string]string, len(payload.Submissions))
			for i := range payload.Submissions {
				tokens[i] = map[string]string{"token": fmt.Sprintf("tok-%d", i)}
			}
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(tokens)
		case http.MethodGet:
			// return results in reverse completion order
			results := []model.JudgeResult{
				{Token: "tok-2", Stdout: encode("2")},
				{Token: "tok-0", Stdout: encode("0")},
				{Token: "tok-1", Stdout: encode("1")},
			}
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(map[string]any{"submissions": results})
		}
	}))
	defer srv.Close()

	client := judgeclient.NewClient(fastConfig(srv.URL))
	subs := make([]model.Submission, 3)
	results, err := client.Execute(context.Background(), subs)
	if err != nil {
		t.Fatalf("execute failed: %v", err)
	}
	for i, res := range results {
		if res.Token != fmt.Sprintf("tok-%d", i) {
			t.Fatalf("result %d has token %s; order not preserved", i, res.Token)
		}
	}
}

func TestSubmitErrorIsFatal(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "queue unavailable", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client := judgeclient.NewClient(fastConfig(srv.URL))
	_, err := client.Execute(context.Background(), make([]model.Submission, 1))
	if !appErr.Is(err, appErr.JudgeBackendError) {
		t.Fatalf("expected JudgeBackendError, got %v", err)
	}
}

func TestFetchCountMismatchIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.Method == http.MethodPost {
			json.NewEncoder(w).Encode([]map[string]string{{"token": "a"}, {"token": "b"}})
			return
		}
		json.NewEncoder(w).Encode(map[string]any{"submissions": []model.JudgeResult{{Token: "a"}}})
	}))
	defer srv.Close()

	client := judgeclient.NewClient(fastConfig(srv.URL))
	_, err := client.Execute(context.Background(), make([]model.Submission, 2))
	if !appErr.Is(err, appErr.JudgeResultMismatch) {
		t.Fatalf("expected JudgeResultMismatch, got %v", err)
	}
}

func TestWaitHonorsContextCancellation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode([]map[string]string{{"token": "a"}})
	}))
	defer srv.Close()

	client := judgeclient.NewClient(judgeclient.Config{
		BaseURL:     srv.URL,
		WaitFloor:   time.Minute,
		WaitPerCase: time.Minute,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err := client.Execute(ctx, make([]model.Submission, 1))
	if err == nil {
		t.Fatalf("expected context error during wait")
	}
}

func encode(s string) string {
	return base64.StdEncoding.EncodeToString([]byte(s))
}
