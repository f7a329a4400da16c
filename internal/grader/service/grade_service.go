package service

import (
	"context"
	"sort"

	"funcjudge/internal/grader/format"
	"funcjudge/internal/grader/harness"
	"funcjudge/internal/grader/judgeclient"
	"funcjudge/internal/grader/model"
	"funcjudge/internal/grader/parser"
	"funcjudge/internal/grader/problemclient"
	appErr "funcjudge/pkg/errors"
	"funcjudge/pkg/utils/logger"

	"go.uber.org/zap"
)

const defaultLanguageID = 71 // backend id for Python 3

// Service drives one grading pass: parse, generate, submit, wait, fetch,
// grade. It holds no mutable state; concurrent requests are independent.
type Service struct {
	judge      *judgeclient.Client
	problems   *problemclient.Client
	languageID int
}

// Config holds service dependencies and settings.
type Config struct {
	Judge      *judgeclient.Client
	Problems   *problemclient.Client
	LanguageID int
}

// NewService creates a new grading service.
func NewService(cfg Config) (*Service, error) {
	if cfg.Judge == nil {
		return nil, appErr.New(appErr.InternalServerError).WithMessage("judge client is required")
	}
	if cfg.Problems == nil {
		return nil, appErr.New(appErr.InternalServerError).WithMessage("problem client is required")
	}
	languageID := cfg.LanguageID
	if languageID == 0 {
		languageID = defaultLanguageID
	}
	return &Service{judge: cfg.Judge, problems: cfg.Problems, languageID: languageID}, nil
}

// GradeInput is the caller-facing operation's payload: a function
// submission plus either a problem id or explicit test cases.
type GradeInput struct {
	LanguageID int
	SourceCode string
	ProblemID  int64
	TestCases  []model.ProblemTestCase
	Unordered  bool
}

// Grade wraps the submitted function in a generated harness and grades it
// against every resolved test case. Results preserve test-case order.
func (s *Service) Grade(ctx context.Context, in GradeInput) ([]model.GradedResult, error) {
	req, unordered, err := s.resolve(ctx, in)
	if err != nil {
		return nil, err
	}
	if req.LanguageID != defaultLanguageID {
		return nil, appErr.Newf(appErr.LanguageNotSupported,
			"harness generation supports language %d only", defaultLanguageID)
	}

	source, err := harness.Generate(req.SourceCode, req.TestCases)
	if err != nil {
		return nil, err
	}

	subs := judgeclient.BuildSubmissions(req.LanguageID, source, req.TestCases, true)
	results, err := s.judge.Execute(ctx, subs)
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "grading pass completed",
		zap.Int("cases", len(req.TestCases)),
		zap.Int64("problem_id", in.ProblemID),
	)
	return format.GradeResults(req.TestCases, results, unordered), nil
}

// Run executes the submitted source as-is, feeding each test case's own
// input through stdin instead of a generated harness. Used for
// whole-program submissions and custom tests.
func (s *Service) Run(ctx context.Context, in GradeInput) ([]model.GradedResult, error) {
	req, unordered, err := s.resolve(ctx, in)
	if err != nil {
		return nil, err
	}

	subs := judgeclient.BuildSubmissions(req.LanguageID, req.SourceCode, req.TestCases, false)
	results, err := s.judge.Execute(ctx, subs)
	if err != nil {
		return nil, err
	}
	return format.GradeResults(req.TestCases, results, unordered), nil
}

// resolve validates the input and materializes the transient execution
// request: explicit test cases win, otherwise the problem store is
// consulted and legacy raw text is parsed against the declared signature.
func (s *Service) resolve(ctx context.Context, in GradeInput) (model.ExecutionRequest, bool, error) {
	if in.SourceCode == "" {
		return model.ExecutionRequest{}, false, appErr.New(appErr.RequiredFieldEmpty).
			WithMessage("source code is required")
	}

	languageID := in.LanguageID
	if languageID == 0 {
		languageID = s.languageID
	}

	raw := in.TestCases
	signatureText := ""
	unordered := in.Unordered
	if len(raw) == 0 {
		if in.ProblemID <= 0 {
			return model.ExecutionRequest{}, false, appErr.New(appErr.TestCasesMissing)
		}
		problem, err := s.problems.FetchByID(ctx, in.ProblemID)
		if err != nil {
			return model.ExecutionRequest{}, false, err
		}
		raw = problem.TestCases
		signatureText = problem.SignatureText
		unordered = unordered || problem.Unordered
		if len(raw) == 0 {
			return model.ExecutionRequest{}, false, appErr.Newf(appErr.TestCasesMissing,
				"problem %d has no test cases", in.ProblemID)
		}
	}

	sig := declaredSignature(ctx, signatureText)
	cases := make([]model.TestCase, len(raw))
	for i, rtc := range raw {
		cases[i] = buildTestCase(ctx, rtc, sig, i)
	}

	return model.ExecutionRequest{
		LanguageID: languageID,
		SourceCode: in.SourceCode,
		TestCases:  cases,
	}, unordered, nil
}

// declaredSignature parses the problem's signature text. An unparsable
// signature is not fatal here: legacy inputs then resolve to empty
// mappings and grading proceeds on the harness's own declaration.
func declaredSignature(ctx context.Context, text string) model.FunctionSignature {
	if text == "" {
		return model.FunctionSignature{}
	}
	sig, err := parser.ParseSignature(text)
	if err != nil {
		logger.Warn(ctx, "declared signature not usable", zap.Error(err), zap.String("signature", text))
		return model.FunctionSignature{}
	}
	return sig
}

func buildTestCase(ctx context.Context, rtc model.ProblemTestCase, sig model.FunctionSignature, index int) model.TestCase {
	tc := model.TestCase{IsExample: rtc.IsExample}

	if rtc.Input != nil {
		tc.Input = rtc.Input
		tc.Order = inputOrder(rtc, sig)
	} else {
		values, missing := parser.ParseInput(rtc.Raw, sig)
		tc.Input = values
		tc.Order = sig.Params
		tc.MissingParams = missing
		if len(missing) > 0 {
			logger.Warn(ctx, "test case missing parameters",
				zap.Int("case", index),
				zap.Strings("missing", missing),
			)
		}
	}

	if rtc.Expected != nil {
		tc.Expected = rtc.Expected
	} else if rtc.RawExpected != "" {
		tc.Expected = parser.ParseLiteral(rtc.RawExpected)
	}
	return tc
}

// inputOrder picks the display/stdin order for structured input: declared
// signature order when available, the stored order otherwise, and sorted
// key order as the last resort.
func inputOrder(rtc model.ProblemTestCase, sig model.FunctionSignature) []string {
	if len(sig.Params) > 0 {
		return sig.Params
	}
	if len(rtc.InputOrder) > 0 {
		return rtc.InputOrder
	}
	keys := make([]string, 0, len(rtc.Input))
	for k := range rtc.Input {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
