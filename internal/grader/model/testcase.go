package model

// TestCase is one structured test case inside a grading pass.
// Order lists the parameter names in declared order so the input can be
// rendered back in a stable form; Input holds the parsed values.
type TestCase struct {
	Order     []string       `json:"-"`
	Input     map[string]any `json:"input"`
	Expected  any            `json:"expected"`
	IsExample bool           `json:"is_example"`

	// MissingParams are declared parameters that could not be parsed from
	// the raw input and were null-filled instead of dropped.
	MissingParams []string `json:"-"`
}

// FunctionSignature is the structured form of a function declaration.
type FunctionSignature struct {
	Raw          string
	Name         string
	Params       []string // receiver excluded, declared order
	ParamTypes   []string // aligned with Params, "" when unannotated
	ReturnType   string
	HasReceiver  bool
	UsesListNode bool
}

// ExecutionRequest bundles everything one grading pass needs. It is created
// per call and never retained.
type ExecutionRequest struct {
	LanguageID int
	SourceCode string
	TestCases  []TestCase
	Unordered  bool
}
