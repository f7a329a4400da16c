package controller

import (
	"funcjudge/internal/grader/model"
	"funcjudge/internal/grader/service"
	"funcjudge/pkg/utils/response"

	"github.com/gin-gonic/gin"
)

// GradeController handles grading HTTP endpoints.
type GradeController struct {
	gradeService *service.Service
}

// NewGradeController creates a new GradeController.
func NewGradeController(gradeService *service.Service) *GradeController {
	return &GradeController{gradeService: gradeService}
}

// Grade runs a function submission against a problem's (or the request's
// own) test cases and returns the ordered graded results.
func (h *GradeController) Grade(c *gin.Context) {
	var req GradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request parameters")
		return
	}

	results, err := h.gradeService.Grade(c.Request.Context(), service.GradeInput{
		LanguageID: req.LanguageID,
		SourceCode: req.SourceCode,
		ProblemID:  req.ProblemID,
		TestCases:  req.TestCases,
		Unordered:  req.Unordered,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, GradeResponse{Results: results})
}

// Run executes a whole-program submission without harness generation.
func (h *GradeController) Run(c *gin.Context) {
	var req GradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request parameters")
		return
	}

	results, err := h.gradeService.Run(c.Request.Context(), service.GradeInput{
		LanguageID: req.LanguageID,
		SourceCode: req.SourceCode,
		ProblemID:  req.ProblemID,
		TestCases:  req.TestCases,
		Unordered:  req.Unordered,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, GradeResponse{Results: results})
}

// GradeRequest defines the grading payload.
type GradeRequest struct {
	LanguageID int                     `json:"language_id"`
	SourceCode string                  `json:"source_code" binding:"required"`
	ProblemID  int64                   `json:"problem_id"`
	TestCases  []model.ProblemTestCase `json:"test_cases"`
	Unordered  bool                    `json:"unordered"`
}

// GradeResponse defines the grading response payload.
type GradeResponse struct {
	Results []model.GradedResult `json:"results"`
}
