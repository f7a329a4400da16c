package model

// GradedResult is the externally visible record for one test case.
type GradedResult struct {
	Input     string  `json:"input"`
	Expected  string  `json:"expected"`
	Actual    string  `json:"actual"`
	Passed    bool    `json:"passed"`
	Status    string  `json:"status"`
	Time      string  `json:"time"`
	Memory    float64 `json:"memory"`
	Hint      string  `json:"hint,omitempty"`
	IsExample bool    `json:"is_example"`
}
