package model

// Problem is the shape served by the problem/test-case store.
type Problem struct {
	ID            int64             `json:"id"`
	Title         string            `json:"title"`
	SignatureText string            `json:"signature"`
	Unordered     bool              `json:"unordered"`
	TestCases     []ProblemTestCase `json:"test_cases"`
}

// ProblemTestCase carries either legacy raw text (Raw/RawExpected) or an
// already-structured input/expected pair. Structured fields win when both
// are present.
type ProblemTestCase struct {
	Raw         string         `json:"raw,omitempty"`
	RawExpected string         `json:"raw_expected,omitempty"`
	Input       map[string]any `json:"input,omitempty"`
	InputOrder  []string       `json:"input_order,omitempty"`
	Expected    any            `json:"expected,omitempty"`
	IsExample   bool           `json:"is_example"`
}
