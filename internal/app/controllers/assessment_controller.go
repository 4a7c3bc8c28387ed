package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/emre/schoolhub/internal/app/models/dto"
	"github.com/emre/schoolhub/internal/app/services"
	"github.com/emre/schoolhub/internal/middleware"
)

// AssessmentController handles exam, assignment and result endpoints
type AssessmentController struct {
	assessmentService *services.AssessmentService
}

// NewAssessmentController creates a new AssessmentController
func NewAssessmentController(assessmentService *services.AssessmentService) *AssessmentController {
	return &AssessmentController{assessmentService: assessmentService}
}

// ----- exams -----

// ListExams returns one page of exams
func (c *AssessmentController) ListExams(ctx *gin.Context) {
	params, viewer := listArgs(ctx)
	exams, pagination, err := c.assessmentService.ListExams(ctx.Request.Context(), params, viewer)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewPagedResponse(exams, pagination))
}

// GetExam returns one exam
func (c *AssessmentController) GetExam(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	exam, err := c.assessmentService.GetExamByID(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewAPIResponse(exam))
}

// CreateExam creates an exam
func (c *AssessmentController) CreateExam(ctx *gin.Context) {
	var req dto.CreateExamRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		bindError(ctx, err)
		return
	}

	exam, err := c.assessmentService.CreateExam(ctx.Request.Context(), req, middleware.ViewerFrom(ctx))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, dto.NewAPIResponse(exam))
}

// UpdateExam rewrites an exam
func (c *AssessmentController) UpdateExam(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	var req dto.UpdateExamRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		bindError(ctx, err)
		return
	}

	exam, err := c.assessmentService.UpdateExam(ctx.Request.Context(), id, req, middleware.ViewerFrom(ctx))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewAPIResponse(exam))
}

// DeleteExam removes an exam
func (c *AssessmentController) DeleteExam(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	if err := c.assessmentService.DeleteExam(ctx.Request.Context(), id, middleware.ViewerFrom(ctx)); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewAPIResponse(gin.H{"deleted": id}))
}

// ----- assignments -----

// ListAssignments returns one page of assignments
func (c *AssessmentController) ListAssignments(ctx *gin.Context) {
	params, viewer := listArgs(ctx)
	assignments, pagination, err := c.assessmentService.ListAssignments(ctx.Request.Context(), params, viewer)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewPagedResponse(assignments, pagination))
}

// GetAssignment returns one assignment
func (c *AssessmentController) GetAssignment(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	assignment, err := c.assessmentService.GetAssignmentByID(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewAPIResponse(assignment))
}

// CreateAssignment creates an assignment
func (c *AssessmentController) CreateAssignment(ctx *gin.Context) {
	var req dto.CreateAssignmentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		bindError(ctx, err)
		return
	}

	assignment, err := c.assessmentService.CreateAssignment(ctx.Request.Context(), req, middleware.ViewerFrom(ctx))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, dto.NewAPIResponse(assignment))
}

// UpdateAssignment rewrites an assignment
func (c *AssessmentController) UpdateAssignment(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	var req dto.UpdateAssignmentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		bindError(ctx, err)
		return
	}

	assignment, err := c.assessmentService.UpdateAssignment(ctx.Request.Context(), id, req, middleware.ViewerFrom(ctx))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewAPIResponse(assignment))
}

// DeleteAssignment removes an assignment
func (c *AssessmentController) DeleteAssignment(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	if err := c.assessmentService.DeleteAssignment(ctx.Request.Context(), id, middleware.ViewerFrom(ctx)); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewAPIResponse(gin.H{"deleted": id}))
}

// ----- results -----

// ListResults returns one page of results
func (c *AssessmentController) ListResults(ctx *gin.Context) {
	params, viewer := listArgs(ctx)
	results, pagination, err := c.assessmentService.ListResults(ctx.Request.Context(), params, viewer)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewPagedResponse(results, pagination))
}

// GetResult returns one result
func (c *AssessmentController) GetResult(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	result, err := c.assessmentService.GetResultByID(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewAPIResponse(result))
}

// CreateResult records a score
func (c *AssessmentController) CreateResult(ctx *gin.Context) {
	var req dto.CreateResultRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		bindError(ctx, err)
		return
	}

	result, err := c.assessmentService.CreateResult(ctx.Request.Context(), req, middleware.ViewerFrom(ctx))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, dto.NewAPIResponse(result))
}

// UpdateResult rewrites a result
func (c *AssessmentController) UpdateResult(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	var req dto.UpdateResultRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		bindError(ctx, err)
		return
	}

	result, err := c.assessmentService.UpdateResult(ctx.Request.Context(), id, req, middleware.ViewerFrom(ctx))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewAPIResponse(result))
}

// DeleteResult removes a result
func (c *AssessmentController) DeleteResult(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	if err := c.assessmentService.DeleteResult(ctx.Request.Context(), id, middleware.ViewerFrom(ctx)); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewAPIResponse(gin.H{"deleted": id}))
}
