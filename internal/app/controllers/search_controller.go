package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/emre/schoolhub/internal/app/models/dto"
	"github.com/emre/schoolhub/internal/app/services"
	"github.com/emre/schoolhub/internal/middleware"
)

// SearchController handles the aggregate search endpoint
type SearchController struct {
	searchService *services.SearchService
}

// NewSearchController creates a new SearchController
func NewSearchController(searchService *services.SearchService) *SearchController {
	return &SearchController{searchService: searchService}
}

// Search godoc
// @Summary Search across school records
// @Description Searches students, teachers, classes, subjects, lessons, exams, events and announcements visible to the caller
// @Tags search
// @Produce json
// @Param q query string true "Search text, at least 2 characters"
// @Success 200 {object} dto.APIResponse{data=dto.SearchResponse}
// @Security BearerAuth
// @Router /search [get]
func (c *SearchController) Search(ctx *gin.Context) {
	viewer := middleware.ViewerFrom(ctx)
	resp := c.searchService.Search(ctx.Request.Context(), ctx.Query("q"), viewer)
	ctx.JSON(http.StatusOK, dto.NewAPIResponse(resp))
}
