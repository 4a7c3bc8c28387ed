// Package controllers handles HTTP request handling
package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/emre/schoolhub/internal/app/listquery"
	"github.com/emre/schoolhub/internal/app/models/dto"
	"github.com/emre/schoolhub/internal/app/services"
	"github.com/emre/schoolhub/internal/middleware"
)

// Controllers bundles every controller for route registration
type Controllers struct {
	AuthController       *AuthController
	StudentController    *StudentController
	TeacherController    *TeacherController
	ParentController     *ParentController
	SchoolController     *SchoolController
	AssessmentController *AssessmentController
	AttendanceController *AttendanceController
	BulletinController   *BulletinController
	SearchController     *SearchController
	DashboardController  *DashboardController
	ExportController     *ExportController
}

// NewControllers creates all controllers
func NewControllers(svcs *services.Services) *Controllers {
	return &Controllers{
		AuthController:       NewAuthController(svcs.AuthService),
		StudentController:    NewStudentController(svcs.StudentService),
		TeacherController:    NewTeacherController(svcs.TeacherService),
		ParentController:     NewParentController(svcs.ParentService),
		SchoolController:     NewSchoolController(svcs.SchoolService),
		AssessmentController: NewAssessmentController(svcs.AssessmentService),
		AttendanceController: NewAttendanceController(svcs.AttendanceService),
		BulletinController:   NewBulletinController(svcs.BulletinService),
		SearchController:     NewSearchController(svcs.SearchService),
		DashboardController:  NewDashboardController(svcs.DashboardService),
		ExportController:     NewExportController(svcs.ExportService),
	}
}

// listArgs extracts the flattened query parameters and the caller identity
func listArgs(ctx *gin.Context) (listquery.Params, listquery.Viewer) {
	return listquery.ParamsFromQuery(ctx.Request.URL.Query()), middleware.ViewerFrom(ctx)
}

// parseIDParam parses a positive numeric path parameter, answering 400 itself
// when the value is malformed
func parseIDParam(ctx *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(ctx.Param(name), 10, 64)
	if err != nil || id < 1 {
		detail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "path parameter must be a positive number").
			WithField(name)
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(detail))
		return 0, false
	}
	return id, true
}

// bindError answers 400 for a failed request body bind
func bindError(ctx *gin.Context, err error) {
	detail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid request body").
		WithDetails(err.Error())
	ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(detail))
}
