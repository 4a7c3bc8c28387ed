package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/emre/schoolhub/internal/app/models/dto"
	"github.com/emre/schoolhub/internal/app/services"
	"github.com/emre/schoolhub/internal/middleware"
)

// BulletinController handles event and announcement endpoints
type BulletinController struct {
	bulletinService *services.BulletinService
}

// NewBulletinController creates a new BulletinController
func NewBulletinController(bulletinService *services.BulletinService) *BulletinController {
	return &BulletinController{bulletinService: bulletinService}
}

// ListEvents returns one page of events visible to the caller
func (c *BulletinController) ListEvents(ctx *gin.Context) {
	params, viewer := listArgs(ctx)
	events, pagination, err := c.bulletinService.ListEvents(ctx.Request.Context(), params, viewer)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewPagedResponse(events, pagination))
}

// GetEvent returns one event
func (c *BulletinController) GetEvent(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	event, err := c.bulletinService.GetEventByID(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewAPIResponse(event))
}

// CreateEvent creates a new event
func (c *BulletinController) CreateEvent(ctx *gin.Context) {
	var req dto.CreateEventRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		bindError(ctx, err)
		return
	}

	event, err := c.bulletinService.CreateEvent(ctx.Request.Context(), req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, dto.NewAPIResponse(event))
}

// UpdateEvent updates an existing event
func (c *BulletinController) UpdateEvent(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	var req dto.UpdateEventRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		bindError(ctx, err)
		return
	}

	event, err := c.bulletinService.UpdateEvent(ctx.Request.Context(), id, req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewAPIResponse(event))
}

// DeleteEvent removes an event
func (c *BulletinController) DeleteEvent(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	if err := c.bulletinService.DeleteEvent(ctx.Request.Context(), id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewAPIResponse(gin.H{"deleted": id}))
}

// ListAnnouncements returns one page of announcements visible to the caller
func (c *BulletinController) ListAnnouncements(ctx *gin.Context) {
	params, viewer := listArgs(ctx)
	announcements, pagination, err := c.bulletinService.ListAnnouncements(ctx.Request.Context(), params, viewer)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewPagedResponse(announcements, pagination))
}

// GetAnnouncement returns one announcement
func (c *BulletinController) GetAnnouncement(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	announcement, err := c.bulletinService.GetAnnouncementByID(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewAPIResponse(announcement))
}

// CreateAnnouncement creates a new announcement
func (c *BulletinController) CreateAnnouncement(ctx *gin.Context) {
	var req dto.CreateAnnouncementRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		bindError(ctx, err)
		return
	}

	announcement, err := c.bulletinService.CreateAnnouncement(ctx.Request.Context(), req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, dto.NewAPIResponse(announcement))
}

// UpdateAnnouncement updates an existing announcement
func (c *BulletinController) UpdateAnnouncement(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	var req dto.UpdateAnnouncementRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		bindError(ctx, err)
		return
	}

	announcement, err := c.bulletinService.UpdateAnnouncement(ctx.Request.Context(), id, req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewAPIResponse(announcement))
}

// DeleteAnnouncement removes an announcement
func (c *BulletinController) DeleteAnnouncement(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	if err := c.bulletinService.DeleteAnnouncement(ctx.Request.Context(), id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewAPIResponse(gin.H{"deleted": id}))
}
