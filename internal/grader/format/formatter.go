package format

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"

	"funcjudge/internal/grader/compare"
	"funcjudge/internal/grader/model"
)

// Error hints are fixed heuristics keyed on output shape and status text,
// not on runtime diagnostics.
const (
	hintNoOutput = "No output was produced. Make sure your function returns its result " +
		"(the runner prints it for you), and check that loops make forward progress."
	hintTimeout = "Time limit exceeded. If you are walking a linked list, make sure the " +
		"node pointer advances on every iteration."
)

// GradeResults decodes the backend results, grades each one against its
// test case and produces the externally visible records. Results and cases
// are correlated by index; the slices must have equal length.
func GradeResults(cases []model.TestCase, results []model.JudgeResult, unordered bool) []model.GradedResult {
	graded := make([]model.GradedResult, len(cases))
	for i, tc := range cases {
		graded[i] = gradeOne(tc, results[i], unordered)
	}
	return graded
}

func gradeOne(tc model.TestCase, res model.JudgeResult, unordered bool) model.GradedResult {
	stdout := strings.TrimSpace(decode(res.Stdout))
	stderr := strings.TrimSpace(decode(res.Stderr))

	var actual any
	if err := json.Unmarshal([]byte(stdout), &actual); err != nil {
		// not a structured value; the raw text is the actual value
		actual = stdout
	}

	passed := false
	if unordered {
		passed = compare.EqualUnordered(actual, tc.Expected)
	} else {
		passed = compare.Equal(actual, tc.Expected)
	}

	return model.GradedResult{
		Input:     DisplayInput(tc),
		Expected:  DisplayValue(tc.Expected),
		Actual:    DisplayValue(actual),
		Passed:    passed,
		Status:    res.Status.Description,
		Time:      res.Time,
		Memory:    res.Memory,
		Hint:      hint(stdout, stderr, res.Status.Description),
		IsExample: tc.IsExample,
	}
}

// hint maps common failure shapes to human-readable suggestions; when no
// heuristic matches, raw stderr is surfaced as-is.
func hint(stdout, stderr, status string) string {
	if stdout == "" && stderr == "" {
		return hintNoOutput
	}
	lowered := strings.ToLower(status)
	if strings.Contains(lowered, "time limit") || strings.Contains(lowered, "timeout") {
		return hintTimeout
	}
	return stderr
}

// DisplayValue renders a value in compact display form: arrays and objects
// as compact JSON, scalars as-is.
func DisplayValue(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case []any, map[string]any:
		data, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprint(v)
		}
		return string(data)
	default:
		return fmt.Sprint(v)
	}
}

// DisplayInput renders a test case's input as `name = value` pairs in
// declared parameter order.
func DisplayInput(tc model.TestCase) string {
	parts := make([]string, 0, len(tc.Order))
	for _, name := range tc.Order {
		parts = append(parts, name+" = "+DisplayValue(tc.Input[name]))
	}
	return strings.Join(parts, ", ")
}

// decode turns transport-encoded text back into plain text, tolerating the
// line-wrapped base64 some backends emit. Undecodable text is returned
// unchanged.
func decode(s string) string {
	if s == "" {
		return ""
	}
	compact := strings.Map(func(r rune) rune {
		if r == '\n' || r == '\r' {
			return -1
		}
		return r
	}, s)
	data, err := base64.StdEncoding.DecodeString(compact)
	if err != nil {
		return s
	}
	return string(data)
}
