package errors

// ErrorCode represents a unique error identifier
type ErrorCode int

// Error code ranges allocation:
// 10000-10999: System & Common errors
// 20000-20999: Problem & test-case errors
// 21000-21999: Grading pipeline errors
const (
	// ========== System & Common Errors (10000-10999) ==========

	// Success
	Success ErrorCode = 10000

	// Generic errors (10000-10099)
	InternalServerError ErrorCode = 10001
	InvalidParams       ErrorCode = 10002
	NotFound            ErrorCode = 10003
	ServiceUnavailable  ErrorCode = 10004
	Timeout             ErrorCode = 10005

	// Validation errors (10300-10399)
	ValidationFailed   ErrorCode = 10300
	RequiredFieldEmpty ErrorCode = 10301

	// ========== Problem & Test-Case Errors (20000-20999) ==========

	ProblemNotFound      ErrorCode = 20000
	ProblemFetchFailed   ErrorCode = 20001
	TestCaseInvalid      ErrorCode = 20100
	TestCasesMissing     ErrorCode = 20101
	LanguageNotSupported ErrorCode = 20200

	// ========== Grading Pipeline Errors (21000-21999) ==========

	SignatureParseFailed ErrorCode = 21000
	HarnessBuildFailed   ErrorCode = 21001
	JudgeBackendError    ErrorCode = 21100
	JudgeResultMismatch  ErrorCode = 21101
)

// errorMessages maps error codes to their default English messages
var errorMessages = map[ErrorCode]string{
	Success:             "Success",
	InternalServerError: "Internal server error",
	InvalidParams:       "Invalid parameters",
	NotFound:            "Resource not found",
	ServiceUnavailable:  "Service temporarily unavailable",
	Timeout:             "Request timeout",

	ValidationFailed:   "Validation failed",
	RequiredFieldEmpty: "Required field is empty",

	ProblemNotFound:      "Problem not found",
	ProblemFetchFailed:   "Failed to fetch problem",
	TestCaseInvalid:      "Invalid test case format",
	TestCasesMissing:     "No test cases provided",
	LanguageNotSupported: "Programming language not supported",

	SignatureParseFailed: "Could not parse function signature",
	HarnessBuildFailed:   "Failed to build execution harness",
	JudgeBackendError:    "Judge backend error",
	JudgeResultMismatch:  "Judge backend returned mismatched results",
}

// Message returns the default message for the error code
func (c ErrorCode) Message() string {
	if msg, ok := errorMessages[c]; ok {
		return msg
	}
	return "Unknown error"
}

// HTTPStatus returns the recommended HTTP status code for the error code
func (c ErrorCode) HTTPStatus() int {
	switch {
	case c == Success:
		return 200
	case c == NotFound, c == ProblemNotFound:
		return 404
	case c == InvalidParams, c == TestCaseInvalid, c == TestCasesMissing,
		c == LanguageNotSupported, c == SignatureParseFailed:
		return 400
	case c >= 10300 && c < 10400: // Validation errors
		return 400
	case c == ServiceUnavailable:
		return 503
	default:
		return 500
	}
}
