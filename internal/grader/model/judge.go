package model

// Submission is one transport-encoded execution sent to the judge backend.
// Source, stdin and expected output are base64 per the backend's batch API.
type Submission struct {
	LanguageID     int    `json:"language_id"`
	SourceCode     string `json:"source_code"`
	Stdin          string `json:"stdin"`
	ExpectedOutput string `json:"expected_output,omitempty"`
}

// JudgeStatus is the backend's terminal status for one submission.
type JudgeStatus struct {
	ID          int    `json:"id"`
	Description string `json:"description"`
}

// JudgeResult is the backend's result for one submission. Stdout and stderr
// are still base64 at this point; the formatter decodes them.
type JudgeResult struct {
	Token  string      `json:"token"`
	Stdout string      `json:"stdout"`
	Stderr string      `json:"stderr"`
	Status JudgeStatus `json:"status"`
	Time   string      `json:"time"`
	Memory float64     `json:"memory"`
}
