package problemclient_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"funcjudge/internal/grader/model"
	"funcjudge/internal/grader/problemclient"
	appErr "funcjudge/pkg/errors"
)

func TestFetchByID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/problems/42" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(model.Problem{
			ID:            42,
			SignatureText: "def twoSum(self, nums: List[int], target: int) -> List[int]:",
			Unordered:     true,
			TestCases: []model.ProblemTestCase{
				{Raw: "nums = [2,7,11,15], target = 9", RawExpected: "[0,1]", IsExample: true},
			},
		})
	}))
	defer srv.Close()

	client := problemclient.NewClient(problemclient.Config{BaseURL: srv.URL})
	problem, err := client.FetchByID(context.Background(), 42)
	if err != nil {
		t.Fatalf("fetch failed: %v", err)
	}
	if problem.ID != 42 || !problem.Unordered {
		t.Fatalf("unexpected problem: %+v", problem)
	}
	if len(problem.TestCases) != 1 || !problem.TestCases[0].IsExample {
		t.Fatalf("unexpected test cases: %+v", problem.TestCases)
	}
}

func TestFetchByIDNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	client := problemclient.NewClient(problemclient.Config{BaseURL: srv.URL})
	_, err := client.FetchByID(context.Background(), 7)
	if !appErr.Is(err, appErr.ProblemNotFound) {
		t.Fatalf("expected ProblemNotFound, got %v", err)
	}
}

func TestFetchByIDUpstreamFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := problemclient.NewClient(problemclient.Config{BaseURL: srv.URL})
	_, err := client.FetchByID(context.Background(), 7)
	if !appErr.Is(err, appErr.ProblemFetchFailed) {
		t.Fatalf("expected ProblemFetchFailed, got %v", err)
	}
}
