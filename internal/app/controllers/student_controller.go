package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/yigit/campushub/internal/app/models/dto"
	"github.com/yigit/campushub/internal/middleware"
)

// StudentController serves the student dashboard, event registration,
// payments and applications
type StudentController struct {
	studentService StudentService
	logger         zerolog.Logger
}

// NewStudentController creates a new StudentController
func NewStudentController(studentService StudentService, logger zerolog.Logger) *StudentController {
	return &StudentController{
		studentService: studentService,
		logger:         logger,
	}
}

// ListRegistrations handles GET /api/student/registrations
// @Summary List own registrations
// @Description Returns the caller's event registrations with their payments
// @Tags student
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]models.Registration} "Registrations"
// @Failure 401 {object} dto.ErrorResponse "Missing or invalid token"
// @Failure 403 {object} dto.ErrorResponse "Role or ownership check failed"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /api/student/registrations [get]
func (c *StudentController) ListRegistrations(ctx *gin.Context) {
	userID, ok := middleware.MustUserID(ctx)
	if !ok {
		return
	}

	regs, err := c.studentService.ListRegistrations(ctx.Request.Context(), userID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, regs)
}

// ListApplications handles GET /api/student/applications
// @Summary List own applications
// @Description Returns the caller's opportunity applications
// @Tags student
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]models.Application} "Applications"
// @Failure 401 {object} dto.ErrorResponse "Missing or invalid token"
// @Failure 403 {object} dto.ErrorResponse "Role or ownership check failed"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /api/student/applications [get]
func (c *StudentController) ListApplications(ctx *gin.Context) {
	userID, ok := middleware.MustUserID(ctx)
	if !ok {
		return
	}

	apps, err := c.studentService.ListApplications(ctx.Request.Context(), userID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, apps)
}

// RegisterForEvent handles POST /api/events/:id/register. The body is
// optional; it only carries a sub-event choice.
// @Summary Register for an event
// @Description Registers the caller for a published event. Priced events start pending payment.
// @Tags student
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Event ID"
// @Param request body dto.RegisterEventRequest false "Optional sub-event"
// @Success 201 {object} dto.APIResponse{data=models.Registration} "Registration"
// @Failure 400 {object} dto.ErrorResponse "Invalid request or validation error"
// @Failure 401 {object} dto.ErrorResponse "Missing or invalid token"
// @Failure 403 {object} dto.ErrorResponse "Role or ownership check failed"
// @Failure 404 {object} dto.ErrorResponse "Resource not found"
// @Failure 409 {object} dto.ErrorResponse "Conflicts with the current state"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /api/events/{id}/register [post]
func (c *StudentController) RegisterForEvent(ctx *gin.Context) {
	userID, ok := middleware.MustUserID(ctx)
	if !ok {
		return
	}
	eventID, ok := idParam(ctx, "id")
	if !ok {
		return
	}

	var req dto.RegisterEventRequest
	if ctx.Request.ContentLength != 0 && !middleware.BindJSON(ctx, &req) {
		return
	}

	reg, err := c.studentService.RegisterForEvent(ctx.Request.Context(), userID, eventID, &req)
	if err != nil {
		c.logger.Info().Err(err).Int64("userID", userID).Int64("eventID", eventID).Msg("Registration refused")
		middleware.HandleAPIError(ctx, err)
		return
	}

	c.logger.Info().
		Int64("userID", userID).
		Int64("eventID", eventID).
		Str("status", string(reg.Status)).
		Msg("Registered for event")
	respondCreated(ctx, reg)
}

// CancelRegistration handles DELETE /api/student/registrations/:id
// @Summary Cancel a registration
// @Description Cancels one of the caller's registrations and fails its pending payment
// @Tags student
// @Produce json
// @Security BearerAuth
// @Param id path int true "Registration ID"
// @Success 200 {object} dto.APIResponse{data=models.Registration} "Cancelled registration"
// @Failure 400 {object} dto.ErrorResponse "Invalid request or validation error"
// @Failure 401 {object} dto.ErrorResponse "Missing or invalid token"
// @Failure 403 {object} dto.ErrorResponse "Role or ownership check failed"
// @Failure 404 {object} dto.ErrorResponse "Resource not found"
// @Failure 409 {object} dto.ErrorResponse "Conflicts with the current state"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /api/student/registrations/{id} [delete]
func (c *StudentController) CancelRegistration(ctx *gin.Context) {
	userID, ok := middleware.MustUserID(ctx)
	if !ok {
		return
	}
	id, ok := idParam(ctx, "id")
	if !ok {
		return
	}

	reg, err := c.studentService.CancelRegistration(ctx.Request.Context(), userID, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, reg)
}

// CompletePayment handles POST /api/payments/:id/complete
// @Summary Complete a payment
// @Description Marks a pending payment completed and confirms the registration
// @Tags payments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Payment ID"
// @Param request body dto.CompletePaymentRequest false "Provider reference"
// @Success 200 {object} dto.APIResponse{data=models.Registration} "Confirmed registration"
// @Failure 400 {object} dto.ErrorResponse "Invalid request or validation error"
// @Failure 401 {object} dto.ErrorResponse "Missing or invalid token"
// @Failure 403 {object} dto.ErrorResponse "Role or ownership check failed"
// @Failure 404 {object} dto.ErrorResponse "Resource not found"
// @Failure 409 {object} dto.ErrorResponse "Conflicts with the current state"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /api/payments/{id}/complete [post]
func (c *StudentController) CompletePayment(ctx *gin.Context) {
	userID, ok := middleware.MustUserID(ctx)
	if !ok {
		return
	}
	id, ok := idParam(ctx, "id")
	if !ok {
		return
	}

	var req dto.CompletePaymentRequest
	if ctx.Request.ContentLength != 0 && !middleware.BindJSON(ctx, &req) {
		return
	}

	reg, err := c.studentService.CompletePayment(ctx.Request.Context(), userID, id, req.ProviderRef)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, reg)
}

// FailPayment handles POST /api/payments/:id/fail
// @Summary Fail a payment
// @Description Marks a pending payment failed. The registration stays pending.
// @Tags payments
// @Produce json
// @Security BearerAuth
// @Param id path int true "Payment ID"
// @Success 200 {object} dto.APIResponse{data=models.Registration} "Registration"
// @Failure 400 {object} dto.ErrorResponse "Invalid request or validation error"
// @Failure 401 {object} dto.ErrorResponse "Missing or invalid token"
// @Failure 403 {object} dto.ErrorResponse "Role or ownership check failed"
// @Failure 404 {object} dto.ErrorResponse "Resource not found"
// @Failure 409 {object} dto.ErrorResponse "Conflicts with the current state"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /api/payments/{id}/fail [post]
func (c *StudentController) FailPayment(ctx *gin.Context) {
	userID, ok := middleware.MustUserID(ctx)
	if !ok {
		return
	}
	id, ok := idParam(ctx, "id")
	if !ok {
		return
	}

	reg, err := c.studentService.FailPayment(ctx.Request.Context(), userID, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, reg)
}

// Apply handles POST /api/opportunities/:id/apply. External listings answer
// 200 with the redirect URL; internal ones 201 with the application.
// @Summary Apply to an opportunity
// @Description Records an application. External listings answer 200 with the URL to apply at instead.
// @Tags student
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Opportunity ID"
// @Param request body dto.ApplyRequest false "Optional cover letter"
// @Success 201 {object} dto.APIResponse{data=dto.ApplyResponse} "Application recorded"
// @Success 200 {object} dto.APIResponse{data=dto.ApplyResponse} "External listing redirect"
// @Failure 400 {object} dto.ErrorResponse "Invalid request or validation error"
// @Failure 401 {object} dto.ErrorResponse "Missing or invalid token"
// @Failure 403 {object} dto.ErrorResponse "Role or ownership check failed"
// @Failure 404 {object} dto.ErrorResponse "Resource not found"
// @Failure 409 {object} dto.ErrorResponse "Conflicts with the current state"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /api/opportunities/{id}/apply [post]
func (c *StudentController) Apply(ctx *gin.Context) {
	userID, ok := middleware.MustUserID(ctx)
	if !ok {
		return
	}
	oppID, ok := idParam(ctx, "id")
	if !ok {
		return
	}

	var req dto.ApplyRequest
	if ctx.Request.ContentLength != 0 && !middleware.BindJSON(ctx, &req) {
		return
	}

	resp, err := c.studentService.Apply(ctx.Request.Context(), userID, oppID, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	if resp.RedirectURL != "" {
		ctx.JSON(http.StatusOK, dto.NewSuccessResponse(resp))
		return
	}
	respondCreated(ctx, resp)
}
