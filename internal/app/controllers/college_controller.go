package controllers

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/yigit/campushub/internal/app/models"
	"github.com/yigit/campushub/internal/app/models/dto"
	"github.com/yigit/campushub/internal/middleware"
)

// CollegeController serves the college dashboard
type CollegeController struct {
	collegeService CollegeService
	logger         zerolog.Logger
}

// NewCollegeController creates a new CollegeController
func NewCollegeController(collegeService CollegeService, logger zerolog.Logger) *CollegeController {
	return &CollegeController{
		collegeService: collegeService,
		logger:         logger,
	}
}

// GetProfile handles GET /api/college/profile
// @Summary Get own college
// @Description Returns the college owned by the caller
// @Tags college
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=models.College} "College"
// @Failure 401 {object} dto.ErrorResponse "Missing or invalid token"
// @Failure 403 {object} dto.ErrorResponse "Role or ownership check failed"
// @Failure 404 {object} dto.ErrorResponse "Resource not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /api/college/profile [get]
func (c *CollegeController) GetProfile(ctx *gin.Context) {
	userID, ok := middleware.MustUserID(ctx)
	if !ok {
		return
	}

	college, err := c.collegeService.GetProfile(ctx.Request.Context(), userID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, college)
}

// UpdateProfile handles PUT /api/college/profile
// @Summary Update own college
// @Description Edits name, description, location and website
// @Tags college
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.UpdateCollegeRequest true "College fields"
// @Success 200 {object} dto.APIResponse{data=models.College} "Updated college"
// @Failure 400 {object} dto.ErrorResponse "Invalid request or validation error"
// @Failure 401 {object} dto.ErrorResponse "Missing or invalid token"
// @Failure 403 {object} dto.ErrorResponse "Role or ownership check failed"
// @Failure 404 {object} dto.ErrorResponse "Resource not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /api/college/profile [put]
func (c *CollegeController) UpdateProfile(ctx *gin.Context) {
	userID, ok := middleware.MustUserID(ctx)
	if !ok {
		return
	}

	var req dto.UpdateCollegeRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	college, err := c.collegeService.UpdateProfile(ctx.Request.Context(), userID, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, college)
}

// UploadLogo handles POST /api/college/profile/logo
// @Summary Upload college logo
// @Description Stores an image and sets it as the college logo
// @Tags college
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param file formData file true "Image file"
// @Success 200 {object} dto.APIResponse{data=dto.MediaResponse} "Public URL of the stored image"
// @Failure 400 {object} dto.ErrorResponse "Invalid request or validation error"
// @Failure 401 {object} dto.ErrorResponse "Missing or invalid token"
// @Failure 403 {object} dto.ErrorResponse "Role or ownership check failed"
// @Failure 413 {object} dto.ErrorResponse "File too large"
// @Failure 415 {object} dto.ErrorResponse "Unsupported file type"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /api/college/profile/logo [post]
func (c *CollegeController) UploadLogo(ctx *gin.Context) {
	userID, ok := middleware.MustUserID(ctx)
	if !ok {
		return
	}

	file, ok := openUpload(ctx)
	if !ok {
		return
	}
	defer file.Close()

	url, err := c.collegeService.UploadLogo(ctx.Request.Context(), userID, file)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, dto.MediaResponse{URL: url})
}

// ListEvents handles GET /api/college/events
// @Summary List own events
// @Description Returns every event of the caller's college
// @Tags college
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]models.Event} "Events"
// @Failure 401 {object} dto.ErrorResponse "Missing or invalid token"
// @Failure 403 {object} dto.ErrorResponse "Role or ownership check failed"
// @Failure 404 {object} dto.ErrorResponse "Resource not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /api/college/events [get]
func (c *CollegeController) ListEvents(ctx *gin.Context) {
	userID, ok := middleware.MustUserID(ctx)
	if !ok {
		return
	}

	events, err := c.collegeService.ListEvents(ctx.Request.Context(), userID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, events)
}

// CreateEvent handles POST /api/college/events
// @Summary Create event
// @Description Creates a draft event for the caller's college
// @Tags college
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.EventRequest true "Event"
// @Success 201 {object} dto.APIResponse{data=models.Event} "Created event"
// @Failure 400 {object} dto.ErrorResponse "Invalid request or validation error"
// @Failure 401 {object} dto.ErrorResponse "Missing or invalid token"
// @Failure 403 {object} dto.ErrorResponse "Role or ownership check failed"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /api/college/events [post]
func (c *CollegeController) CreateEvent(ctx *gin.Context) {
	userID, ok := middleware.MustUserID(ctx)
	if !ok {
		return
	}

	var req dto.EventRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	event, err := c.collegeService.CreateEvent(ctx.Request.Context(), userID, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	c.logger.Info().Int64("eventID", event.ID).Int64("collegeID", event.CollegeID).Msg("Event created")
	respondCreated(ctx, event)
}

// GetEvent handles GET /api/college/events/:id
// @Summary Get own event
// @Description Returns one of the caller's events with its sub-events
// @Tags college
// @Produce json
// @Security BearerAuth
// @Param id path int true "Event ID"
// @Success 200 {object} dto.APIResponse{data=models.Event} "Event"
// @Failure 400 {object} dto.ErrorResponse "Invalid request or validation error"
// @Failure 401 {object} dto.ErrorResponse "Missing or invalid token"
// @Failure 403 {object} dto.ErrorResponse "Role or ownership check failed"
// @Failure 404 {object} dto.ErrorResponse "Resource not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /api/college/events/{id} [get]
func (c *CollegeController) GetEvent(ctx *gin.Context) {
	userID, ok := middleware.MustUserID(ctx)
	if !ok {
		return
	}
	id, ok := idParam(ctx, "id")
	if !ok {
		return
	}

	event, err := c.collegeService.GetEvent(ctx.Request.Context(), userID, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, event)
}

// UpdateEvent handles PUT /api/college/events/:id
// @Summary Update own event
// @Description Replaces the editable fields of one of the caller's events
// @Tags college
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Event ID"
// @Param request body dto.EventRequest true "Event"
// @Success 200 {object} dto.APIResponse{data=models.Event} "Updated event"
// @Failure 400 {object} dto.ErrorResponse "Invalid request or validation error"
// @Failure 401 {object} dto.ErrorResponse "Missing or invalid token"
// @Failure 403 {object} dto.ErrorResponse "Role or ownership check failed"
// @Failure 404 {object} dto.ErrorResponse "Resource not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /api/college/events/{id} [put]
func (c *CollegeController) UpdateEvent(ctx *gin.Context) {
	userID, ok := middleware.MustUserID(ctx)
	if !ok {
		return
	}
	id, ok := idParam(ctx, "id")
	if !ok {
		return
	}

	var req dto.EventRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	event, err := c.collegeService.UpdateEvent(ctx.Request.Context(), userID, id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, event)
}

// DeleteEvent handles DELETE /api/college/events/:id
// @Summary Delete own event
// @Description Deletes an event and its banner. Events holding completed payments cannot be deleted.
// @Tags college
// @Produce json
// @Security BearerAuth
// @Param id path int true "Event ID"
// @Success 200 {object} dto.APIResponse{data=dto.MessageResponse} "Event deleted"
// @Failure 400 {object} dto.ErrorResponse "Invalid request or validation error"
// @Failure 401 {object} dto.ErrorResponse "Missing or invalid token"
// @Failure 403 {object} dto.ErrorResponse "Role or ownership check failed"
// @Failure 404 {object} dto.ErrorResponse "Resource not found"
// @Failure 409 {object} dto.ErrorResponse "Conflicts with the current state"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /api/college/events/{id} [delete]
func (c *CollegeController) DeleteEvent(ctx *gin.Context) {
	userID, ok := middleware.MustUserID(ctx)
	if !ok {
		return
	}
	id, ok := idParam(ctx, "id")
	if !ok {
		return
	}

	if err := c.collegeService.DeleteEvent(ctx.Request.Context(), userID, id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	c.logger.Info().Int64("eventID", id).Msg("Event deleted")
	respondMessage(ctx, "Event deleted")
}

// ChangeEventStatus handles POST /api/college/events/:id/status
// @Summary Change event status
// @Description Moves an event draft to published to completed, or to cancelled
// @Tags college
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Event ID"
// @Param request body dto.EventStatusRequest true "Target status"
// @Success 200 {object} dto.APIResponse{data=models.Event} "Updated event"
// @Failure 400 {object} dto.ErrorResponse "Invalid request or validation error"
// @Failure 401 {object} dto.ErrorResponse "Missing or invalid token"
// @Failure 403 {object} dto.ErrorResponse "Role or ownership check failed"
// @Failure 404 {object} dto.ErrorResponse "Resource not found"
// @Failure 409 {object} dto.ErrorResponse "Conflicts with the current state"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /api/college/events/{id}/status [post]
func (c *CollegeController) ChangeEventStatus(ctx *gin.Context) {
	userID, ok := middleware.MustUserID(ctx)
	if !ok {
		return
	}
	id, ok := idParam(ctx, "id")
	if !ok {
		return
	}

	var req dto.EventStatusRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	event, err := c.collegeService.ChangeEventStatus(ctx.Request.Context(), userID, id, models.EventStatus(req.Status))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	c.logger.Info().Int64("eventID", id).Str("status", req.Status).Msg("Event status changed")
	respondOK(ctx, event)
}

// UploadBanner handles POST /api/college/events/:id/banner
// @Summary Upload event banner
// @Description Stores an image and sets it as the event banner
// @Tags college
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param id path int true "Event ID"
// @Param file formData file true "Image file"
// @Success 200 {object} dto.APIResponse{data=dto.MediaResponse} "Public URL of the stored image"
// @Failure 400 {object} dto.ErrorResponse "Invalid request or validation error"
// @Failure 401 {object} dto.ErrorResponse "Missing or invalid token"
// @Failure 403 {object} dto.ErrorResponse "Role or ownership check failed"
// @Failure 404 {object} dto.ErrorResponse "Resource not found"
// @Failure 413 {object} dto.ErrorResponse "File too large"
// @Failure 415 {object} dto.ErrorResponse "Unsupported file type"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /api/college/events/{id}/banner [post]
func (c *CollegeController) UploadBanner(ctx *gin.Context) {
	userID, ok := middleware.MustUserID(ctx)
	if !ok {
		return
	}
	id, ok := idParam(ctx, "id")
	if !ok {
		return
	}

	file, ok := openUpload(ctx)
	if !ok {
		return
	}
	defer file.Close()

	url, err := c.collegeService.UploadBanner(ctx.Request.Context(), userID, id, file)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, dto.MediaResponse{URL: url})
}

// AddSubEvent handles POST /api/college/events/:id/sub-events
// @Summary Add sub-event
// @Description Adds a session or track to one of the caller's events
// @Tags college
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Event ID"
// @Param request body dto.SubEventRequest true "Sub-event"
// @Success 201 {object} dto.APIResponse{data=models.Event} "Event with its sub-events"
// @Failure 400 {object} dto.ErrorResponse "Invalid request or validation error"
// @Failure 401 {object} dto.ErrorResponse "Missing or invalid token"
// @Failure 403 {object} dto.ErrorResponse "Role or ownership check failed"
// @Failure 404 {object} dto.ErrorResponse "Resource not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /api/college/events/{id}/sub-events [post]
func (c *CollegeController) AddSubEvent(ctx *gin.Context) {
	userID, ok := middleware.MustUserID(ctx)
	if !ok {
		return
	}
	id, ok := idParam(ctx, "id")
	if !ok {
		return
	}

	var req dto.SubEventRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	event, err := c.collegeService.AddSubEvent(ctx.Request.Context(), userID, id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondCreated(ctx, event)
}

// DeleteSubEvent handles DELETE /api/college/events/:id/sub-events/:subId
// @Summary Delete sub-event
// @Description Removes a sub-event from one of the caller's events
// @Tags college
// @Produce json
// @Security BearerAuth
// @Param id path int true "Event ID"
// @Param subId path int true "Sub-event ID"
// @Success 200 {object} dto.APIResponse{data=models.Event} "Event with its sub-events"
// @Failure 400 {object} dto.ErrorResponse "Invalid request or validation error"
// @Failure 401 {object} dto.ErrorResponse "Missing or invalid token"
// @Failure 403 {object} dto.ErrorResponse "Role or ownership check failed"
// @Failure 404 {object} dto.ErrorResponse "Resource not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /api/college/events/{id}/sub-events/{subId} [delete]
func (c *CollegeController) DeleteSubEvent(ctx *gin.Context) {
	userID, ok := middleware.MustUserID(ctx)
	if !ok {
		return
	}
	id, ok := idParam(ctx, "id")
	if !ok {
		return
	}
	subID, ok := idParam(ctx, "subId")
	if !ok {
		return
	}

	event, err := c.collegeService.DeleteSubEvent(ctx.Request.Context(), userID, id, subID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, event)
}

// ListEventRegistrations handles GET /api/college/events/:id/registrations
// @Summary List event registrations
// @Description Returns the attendees of one of the caller's events
// @Tags college
// @Produce json
// @Security BearerAuth
// @Param id path int true "Event ID"
// @Success 200 {object} dto.APIResponse{data=[]models.Registration} "Registrations"
// @Failure 400 {object} dto.ErrorResponse "Invalid request or validation error"
// @Failure 401 {object} dto.ErrorResponse "Missing or invalid token"
// @Failure 403 {object} dto.ErrorResponse "Role or ownership check failed"
// @Failure 404 {object} dto.ErrorResponse "Resource not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /api/college/events/{id}/registrations [get]
func (c *CollegeController) ListEventRegistrations(ctx *gin.Context) {
	userID, ok := middleware.MustUserID(ctx)
	if !ok {
		return
	}
	id, ok := idParam(ctx, "id")
	if !ok {
		return
	}

	regs, err := c.collegeService.ListEventRegistrations(ctx.Request.Context(), userID, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, regs)
}

// ListOpportunities handles GET /api/college/opportunities
// @Summary List own opportunities
// @Description Returns the opportunities the caller posted
// @Tags college
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]models.Opportunity} "Opportunities"
// @Failure 401 {object} dto.ErrorResponse "Missing or invalid token"
// @Failure 403 {object} dto.ErrorResponse "Role or ownership check failed"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /api/college/opportunities [get]
func (c *CollegeController) ListOpportunities(ctx *gin.Context) {
	userID, ok := middleware.MustUserID(ctx)
	if !ok {
		return
	}

	opps, err := c.collegeService.ListOpportunities(ctx.Request.Context(), userID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, opps)
}

// CreateOpportunity handles POST /api/college/opportunities
// @Summary Create opportunity
// @Description Posts an opportunity that belongs to no company
// @Tags college
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.OpportunityRequest true "Opportunity"
// @Success 201 {object} dto.APIResponse{data=models.Opportunity} "Created opportunity"
// @Failure 400 {object} dto.ErrorResponse "Invalid request or validation error"
// @Failure 401 {object} dto.ErrorResponse "Missing or invalid token"
// @Failure 403 {object} dto.ErrorResponse "Role or ownership check failed"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /api/college/opportunities [post]
func (c *CollegeController) CreateOpportunity(ctx *gin.Context) {
	userID, ok := middleware.MustUserID(ctx)
	if !ok {
		return
	}

	var req dto.OpportunityRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	opp, err := c.collegeService.CreateOpportunity(ctx.Request.Context(), userID, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondCreated(ctx, opp)
}
