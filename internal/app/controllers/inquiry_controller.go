package controllers

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/yigit/campushub/internal/app/models/dto"
	"github.com/yigit/campushub/internal/middleware"
)

// InquiryController serves /api/inquiries
type InquiryController struct {
	inquiryService InquiryService
	logger         zerolog.Logger
}

// NewInquiryController creates a new InquiryController
func NewInquiryController(inquiryService InquiryService, logger zerolog.Logger) *InquiryController {
	return &InquiryController{
		inquiryService: inquiryService,
		logger:         logger,
	}
}

// Send handles POST /api/inquiries
// @Summary Send an inquiry
// @Description Sends a question about an event or opportunity to its owner. The recipient is notified.
// @Tags inquiries
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateInquiryRequest true "Inquiry"
// @Success 201 {object} dto.APIResponse{data=models.Inquiry} "Sent inquiry"
// @Failure 400 {object} dto.ErrorResponse "Invalid request or validation error"
// @Failure 401 {object} dto.ErrorResponse "Missing or invalid token"
// @Failure 404 {object} dto.ErrorResponse "Resource not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /api/inquiries [post]
func (c *InquiryController) Send(ctx *gin.Context) {
	userID, ok := middleware.MustUserID(ctx)
	if !ok {
		return
	}

	var req dto.CreateInquiryRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	inquiry, err := c.inquiryService.Send(ctx.Request.Context(), userID, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	c.logger.Info().
		Int64("senderID", userID).
		Int64("recipientID", inquiry.RecipientID).
		Str("targetType", req.TargetType).
		Msg("Inquiry sent")
	respondCreated(ctx, inquiry)
}

// Inbox handles GET /api/inquiries/inbox
// @Summary Inquiry inbox
// @Description Returns inquiries addressed to the caller
// @Tags inquiries
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]models.Inquiry} "Inquiries"
// @Failure 401 {object} dto.ErrorResponse "Missing or invalid token"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /api/inquiries/inbox [get]
func (c *InquiryController) Inbox(ctx *gin.Context) {
	userID, ok := middleware.MustUserID(ctx)
	if !ok {
		return
	}

	inquiries, err := c.inquiryService.Inbox(ctx.Request.Context(), userID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, inquiries)
}

// Sent handles GET /api/inquiries/sent
// @Summary Sent inquiries
// @Description Returns inquiries the caller sent
// @Tags inquiries
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]models.Inquiry} "Inquiries"
// @Failure 401 {object} dto.ErrorResponse "Missing or invalid token"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /api/inquiries/sent [get]
func (c *InquiryController) Sent(ctx *gin.Context) {
	userID, ok := middleware.MustUserID(ctx)
	if !ok {
		return
	}

	inquiries, err := c.inquiryService.Sent(ctx.Request.Context(), userID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, inquiries)
}

// MarkRead handles PATCH /api/inquiries/:id/read
// @Summary Mark inquiry read
// @Description Marks an inquiry in the caller's inbox as read
// @Tags inquiries
// @Produce json
// @Security BearerAuth
// @Param id path int true "Inquiry ID"
// @Success 200 {object} dto.APIResponse{data=models.Inquiry} "Inquiry"
// @Failure 400 {object} dto.ErrorResponse "Invalid request or validation error"
// @Failure 401 {object} dto.ErrorResponse "Missing or invalid token"
// @Failure 403 {object} dto.ErrorResponse "Role or ownership check failed"
// @Failure 404 {object} dto.ErrorResponse "Resource not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /api/inquiries/{id}/read [patch]
func (c *InquiryController) MarkRead(ctx *gin.Context) {
	userID, ok := middleware.MustUserID(ctx)
	if !ok {
		return
	}
	id, ok := idParam(ctx, "id")
	if !ok {
		return
	}

	inquiry, err := c.inquiryService.MarkRead(ctx.Request.Context(), userID, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, inquiry)
}

// MarkReplied handles POST /api/inquiries/:id/replied
// @Summary Mark inquiry replied
// @Description Records that the recipient answered an inquiry
// @Tags inquiries
// @Produce json
// @Security BearerAuth
// @Param id path int true "Inquiry ID"
// @Success 200 {object} dto.APIResponse{data=models.Inquiry} "Inquiry"
// @Failure 400 {object} dto.ErrorResponse "Invalid request or validation error"
// @Failure 401 {object} dto.ErrorResponse "Missing or invalid token"
// @Failure 403 {object} dto.ErrorResponse "Role or ownership check failed"
// @Failure 404 {object} dto.ErrorResponse "Resource not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /api/inquiries/{id}/replied [post]
func (c *InquiryController) MarkReplied(ctx *gin.Context) {
	userID, ok := middleware.MustUserID(ctx)
	if !ok {
		return
	}
	id, ok := idParam(ctx, "id")
	if !ok {
		return
	}

	inquiry, err := c.inquiryService.MarkReplied(ctx.Request.Context(), userID, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, inquiry)
}
