package controllers

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/yigit/campushub/internal/app/models/dto"
	"github.com/yigit/campushub/internal/middleware"
)

// CatalogController serves the public browse endpoints
type CatalogController struct {
	catalog CatalogService
	logger  zerolog.Logger
}

// NewCatalogController creates a new CatalogController
func NewCatalogController(catalog CatalogService, logger zerolog.Logger) *CatalogController {
	return &CatalogController{
		catalog: catalog,
		logger:  logger,
	}
}

// ListEvents handles GET /api/events
// @Summary Browse events
// @Description Lists published events of active colleges. Sample events are returned when nothing is live.
// @Tags catalog
// @Produce json
// @Param q query string false "Search in title, description and college"
// @Param tag query string false "Tag filter"
// @Param category query string false "Category filter"
// @Success 200 {object} dto.APIResponse{data=dto.EventListResponse} "Events"
// @Failure 400 {object} dto.ErrorResponse "Invalid request or validation error"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /api/events [get]
func (c *CatalogController) ListEvents(ctx *gin.Context) {
	var q dto.EventQuery
	if !middleware.BindQuery(ctx, &q) {
		return
	}

	resp, err := c.catalog.ListEvents(ctx.Request.Context(), q)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, resp)
}

// GetEvent handles GET /api/events/:id
// @Summary Get event
// @Description Returns a published event of an active college
// @Tags catalog
// @Produce json
// @Param id path int true "Event ID"
// @Success 200 {object} dto.APIResponse{data=models.Event} "Event"
// @Failure 400 {object} dto.ErrorResponse "Invalid request or validation error"
// @Failure 404 {object} dto.ErrorResponse "Resource not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /api/events/{id} [get]
func (c *CatalogController) GetEvent(ctx *gin.Context) {
	id, ok := idParam(ctx, "id")
	if !ok {
		return
	}

	event, err := c.catalog.GetEvent(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, event)
}

// ListOpportunities handles GET /api/opportunities
// @Summary Browse opportunities
// @Description Lists active opportunities. Sample opportunities are returned when nothing is live.
// @Tags catalog
// @Produce json
// @Param type query string false "job, internship, hackathon or competition"
// @Param q query string false "Search in title, description and company"
// @Param tag query string false "Tag filter"
// @Success 200 {object} dto.APIResponse{data=dto.OpportunityListResponse} "Opportunities"
// @Failure 400 {object} dto.ErrorResponse "Invalid request or validation error"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /api/opportunities [get]
func (c *CatalogController) ListOpportunities(ctx *gin.Context) {
	var q dto.OpportunityQuery
	if !middleware.BindQuery(ctx, &q) {
		return
	}

	resp, err := c.catalog.ListOpportunities(ctx.Request.Context(), q)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, resp)
}

// GetOpportunity handles GET /api/opportunities/:id
// @Summary Get opportunity
// @Description Returns an active opportunity
// @Tags catalog
// @Produce json
// @Param id path int true "Opportunity ID"
// @Success 200 {object} dto.APIResponse{data=models.Opportunity} "Opportunity"
// @Failure 400 {object} dto.ErrorResponse "Invalid request or validation error"
// @Failure 404 {object} dto.ErrorResponse "Resource not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /api/opportunities/{id} [get]
func (c *CatalogController) GetOpportunity(ctx *gin.Context) {
	id, ok := idParam(ctx, "id")
	if !ok {
		return
	}

	opp, err := c.catalog.GetOpportunity(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, opp)
}
