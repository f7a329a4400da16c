package service_test

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"funcjudge/internal/grader/judgeclient"
	"funcjudge/internal/grader/model"
	"funcjudge/internal/grader/problemclient"
	"funcjudge/internal/grader/service"
	appErr "funcjudge/pkg/errors"
)

// fakeJudge emulates the batch execution backend: it maps each
// submission's stdin index to a canned stdout line and returns fetch
// results in reverse order to exercise token correlation.
type fakeJudge struct {
	outputsByIndex []string
	lastSource     string
}

func (f *fakeJudge) server(t *testing.T) *httptest.Server {
	type pending struct {
		token  string
		stdout string
	}
	var store []pending

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.Method {
		case http.MethodPost:
			var payload struct {
				Submissions []model.Submission `json:"submissions"`
			}
			if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
				t.Errorf("decode submissions: %v", err)
				return
			}
			store = store[:0]
			var tokens []map[string]string
			for i, sub := range payload.Submissions {
				if i == 0 {
					src, _ := base64.StdEncoding.DecodeString(sub.SourceCode)
					f.lastSource = string(src)
				}
				stdinRaw, _ := base64.StdEncoding.DecodeString(sub.Stdin)
				idx, err := strconv.Atoi(strings.TrimSpace(string(stdinRaw)))
				if err != nil || idx >= len(f.outputsByIndex) {
					t.Errorf("unexpected stdin %q", stdinRaw)
					return
				}
				token := fmt.Sprintf("tok-%d", i)
				store = append(store, pending{token: token, stdout: f.outputsByIndex[idx]})
				tokens = append(tokens, map[string]string{"token": token})
			}
			json.NewEncoder(w).Encode(tokens)
		case http.MethodGet:
			results := make([]model.JudgeResult, 0, len(store))
			for i := len(store) - 1; i >= 0; i-- { // backend completion order differs
				results = append(results, model.JudgeResult{
					Token:  store[i].token,
					Stdout: base64.StdEncoding.EncodeToString([]byte(store[i].stdout)),
					Status: model.JudgeStatus{ID: 3, Description: "Accepted"},
					Time:   "0.02",
					Memory: 3100,
				})
			}
			json.NewEncoder(w).Encode(map[string]any{"submissions": results})
		}
	}))
}

func problemServer(t *testing.T, problem model.Problem) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.URL.Path, "/problems/") {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(problem)
	}))
}

func newService(t *testing.T, judgeURL, problemURL string) *service.Service {
	svc, err := service.NewService(service.Config{
		Judge: judgeclient.NewClient(judgeclient.Config{
			BaseURL:     judgeURL,
			WaitFloor:   time.Millisecond,
			WaitPerCase: time.Millisecond,
		}),
		Problems: problemclient.NewClient(problemclient.Config{BaseURL: problemURL}),
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func TestGradeFreeFunctionEndToEnd(t *testing.T) {
	judge := &fakeJudge{outputsByIndex: []string{"3", "5"}}
	judgeSrv := judge.server(t)
	defer judgeSrv.Close()

	problemSrv := problemServer(t, model.Problem{
		ID:            1,
		SignatureText: "def add(a, b):",
		TestCases: []model.ProblemTestCase{
			{Raw: "a = 1, b = 2", RawExpected: "3", IsExample: true},
			{Raw: "a = 2, b = 3", RawExpected: "5"},
		},
	})
	defer problemSrv.Close()

	svc := newService(t, judgeSrv.URL, problemSrv.URL)
	results, err := svc.Grade(context.Background(), service.GradeInput{
		SourceCode: "def add(a, b):\n    return a + b\n",
		ProblemID:  1,
	})
	if err != nil {
		t.Fatalf("grade failed: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	for i, res := range results {
		if !res.Passed {
			t.Fatalf("case %d failed: %+v", i, res)
		}
	}
	// correlation invariant: result order follows test-case order even
	// though the backend returned results reversed
	if results[0].Input != "a = 1, b = 2" || results[1].Input != "a = 2, b = 3" {
		t.Fatalf("results out of order: %q, %q", results[0].Input, results[1].Input)
	}
	if !results[0].IsExample || results[1].IsExample {
		t.Fatalf("example flags lost: %+v", results)
	}
}

func TestGradeMethodWithLinkedListEndToEnd(t *testing.T) {
	judge := &fakeJudge{outputsByIndex: []string{"[3, 2, 1]"}}
	judgeSrv := judge.server(t)
	defer judgeSrv.Close()

	problemSrv := problemServer(t, model.Problem{
		ID:            2,
		SignatureText: "def reverseList(self, head: Optional[ListNode]) -> Optional[ListNode]:",
		TestCases: []model.ProblemTestCase{
			{Raw: "head = [1,2,3]", RawExpected: "[3,2,1]"},
		},
	})
	defer problemSrv.Close()

	svc := newService(t, judgeSrv.URL, problemSrv.URL)
	src := "def reverseList(self, head: Optional[ListNode]) -> Optional[ListNode]:\n    prev = None\n    while head:\n        head.next, prev, head = prev, head, head.next\n    return prev\n"
	results, err := svc.Grade(context.Background(), service.GradeInput{SourceCode: src, ProblemID: 2})
	if err != nil {
		t.Fatalf("grade failed: %v", err)
	}
	if len(results) != 1 || !results[0].Passed {
		t.Fatalf("expected pass, got %+v", results)
	}
	if !strings.Contains(judge.lastSource, "class Solution:") {
		t.Fatalf("submitted harness lacks synthesized class:\n%s", judge.lastSource)
	}
	if !strings.Contains(judge.lastSource, "build_list") {
		t.Fatalf("submitted harness lacks list conversion:\n%s", judge.lastSource)
	}
}

func TestGradeUnorderedComparisonFlag(t *testing.T) {
	judge := &fakeJudge{outputsByIndex: []string{"[2, 1]"}}
	judgeSrv := judge.server(t)
	defer judgeSrv.Close()

	problemSrv := problemServer(t, model.Problem{
		ID:            3,
		SignatureText: "def f(nums):",
		Unordered:     true,
		TestCases: []model.ProblemTestCase{
			{Raw: "nums = [1,2]", RawExpected: "[1,2]"},
		},
	})
	defer problemSrv.Close()

	svc := newService(t, judgeSrv.URL, problemSrv.URL)
	results, err := svc.Grade(context.Background(), service.GradeInput{SourceCode: "def f(nums):\n    return nums\n", ProblemID: 3})
	if err != nil {
		t.Fatalf("grade failed: %v", err)
	}
	if !results[0].Passed {
		t.Fatalf("unordered problem should accept permuted output: %+v", results[0])
	}
}

func TestGradeExplicitTestCases(t *testing.T) {
	judge := &fakeJudge{outputsByIndex: []string{"2"}}
	judgeSrv := judge.server(t)
	defer judgeSrv.Close()

	svc := newService(t, judgeSrv.URL, "http://unused.invalid")
	results, err := svc.Grade(context.Background(), service.GradeInput{
		SourceCode: "def double(x):\n    return x * 2\n",
		TestCases: []model.ProblemTestCase{
			{Input: map[string]any{"x": 1.0}, InputOrder: []string{"x"}, Expected: 2.0},
		},
	})
	if err != nil {
		t.Fatalf("grade failed: %v", err)
	}
	if !results[0].Passed {
		t.Fatalf("expected pass: %+v", results[0])
	}
}

func TestGradeInputValidation(t *testing.T) {
	svc := newService(t, "http://unused.invalid", "http://unused.invalid")

	_, err := svc.Grade(context.Background(), service.GradeInput{ProblemID: 1})
	if !appErr.Is(err, appErr.RequiredFieldEmpty) {
		t.Fatalf("expected RequiredFieldEmpty, got %v", err)
	}

	_, err = svc.Grade(context.Background(), service.GradeInput{SourceCode: "def f():\n    pass\n"})
	if !appErr.Is(err, appErr.TestCasesMissing) {
		t.Fatalf("expected TestCasesMissing, got %v", err)
	}
}

func TestGradeUpstreamErrorIsFatal(t *testing.T) {
	judgeSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer judgeSrv.Close()

	svc := newService(t, judgeSrv.URL, "http://unused.invalid")
	_, err := svc.Grade(context.Background(), service.GradeInput{
		SourceCode: "def f(x):\n    return x\n",
		TestCases:  []model.ProblemTestCase{{Input: map[string]any{"x": 1.0}, Expected: 1.0}},
	})
	if !appErr.Is(err, appErr.JudgeBackendError) {
		t.Fatalf("expected JudgeBackendError, got %v", err)
	}
}

func TestGradeNoFunctionDeclarationIsFatal(t *testing.T) {
	svc := newService(t, "http://unused.invalid", "http://unused.invalid")
	_, err := svc.Grade(context.Background(), service.GradeInput{
		SourceCode: "x = 1\n",
		TestCases:  []model.ProblemTestCase{{Input: map[string]any{"x": 1.0}, Expected: 1.0}},
	})
	if !appErr.Is(err, appErr.SignatureParseFailed) {
		t.Fatalf("expected SignatureParseFailed, got %v", err)
	}
}

func TestRunRawSourceAgainstStdin(t *testing.T) {
	// raw mode: stdin carries the test's own input, no harness is built
	judgeSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.Method == http.MethodPost {
			var payload struct {
				Submissions []model.Submission `json:"submissions"`
			}
			json.NewDecoder(r.Body).Decode(&payload)
			stdin, _ := base64.StdEncoding.DecodeString(payload.Submissions[0].Stdin)
			if string(stdin) != "5" {
				t.Errorf("raw stdin = %q", stdin)
			}
			src, _ := base64.StdEncoding.DecodeString(payload.Submissions[0].SourceCode)
			if strings.Contains(string(src), "_select_and_run") {
				t.Errorf("raw mode must not generate a harness")
			}
			json.NewEncoder(w).Encode([]map[string]string{{"token": "t"}})
			return
		}
		json.NewEncoder(w).Encode(map[string]any{"submissions": []model.JudgeResult{{
			Token:  "t",
			Stdout: base64.StdEncoding.EncodeToString([]byte("10")),
			Status: model.JudgeStatus{ID: 3, Description: "Accepted"},
		}}})
	}))
	defer judgeSrv.Close()

	svc := newService(t, judgeSrv.URL, "http://unused.invalid")
	results, err := svc.Run(context.Background(), service.GradeInput{
		SourceCode: "print(int(input()) * 2)",
		TestCases: []model.ProblemTestCase{
			{Input: map[string]any{"n": 5.0}, InputOrder: []string{"n"}, Expected: 10.0},
		},
	})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if !results[0].Passed {
		t.Fatalf("expected pass: %+v", results[0])
	}
}
