package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/emre/schoolhub/internal/app/services"
	"github.com/emre/schoolhub/internal/middleware"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ExportController serves spreadsheet downloads
type ExportController struct {
	exportService *services.ExportService
}

// NewExportController creates a new ExportController
func NewExportController(exportService *services.ExportService) *ExportController {
	return &ExportController{exportService: exportService}
}

// Results streams the caller's visible results as an xlsx workbook.
// The same filter and sort query parameters as the results list apply.
func (c *ExportController) Results(ctx *gin.Context) {
	params, viewer := listArgs(ctx)
	data, filename, err := c.exportService.ResultsWorkbook(ctx.Request.Context(), params, viewer)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	ctx.Data(http.StatusOK, xlsxContentType, data)
}

// Attendance streams the caller's visible attendance records as an xlsx workbook
func (c *ExportController) Attendance(ctx *gin.Context) {
	params, viewer := listArgs(ctx)
	data, filename, err := c.exportService.AttendanceWorkbook(ctx.Request.Context(), params, viewer)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	ctx.Data(http.StatusOK, xlsxContentType, data)
}
