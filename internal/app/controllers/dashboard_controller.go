package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/emre/schoolhub/internal/app/models/dto"
	"github.com/emre/schoolhub/internal/app/services"
	"github.com/emre/schoolhub/internal/middleware"
)

// DashboardController handles dashboard summary endpoints
type DashboardController struct {
	dashboardService *services.DashboardService
}

// NewDashboardController creates a new DashboardController
func NewDashboardController(dashboardService *services.DashboardService) *DashboardController {
	return &DashboardController{dashboardService: dashboardService}
}

// Overview returns entity counts for the dashboard cards
func (c *DashboardController) Overview(ctx *gin.Context) {
	counts, err := c.dashboardService.Overview(ctx.Request.Context())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewAPIResponse(counts))
}

// StudentsBySex returns the student count per sex
func (c *DashboardController) StudentsBySex(ctx *gin.Context) {
	counts, err := c.dashboardService.StudentsBySex(ctx.Request.Context())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewAPIResponse(counts))
}

// WeeklyAttendance returns present and absent totals per weekday
func (c *DashboardController) WeeklyAttendance(ctx *gin.Context) {
	days, err := c.dashboardService.WeeklyAttendance(ctx.Request.Context())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewAPIResponse(days))
}
