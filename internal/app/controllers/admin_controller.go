package controllers

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/yigit/campushub/internal/app/models"
	"github.com/yigit/campushub/internal/app/models/dto"
	"github.com/yigit/campushub/internal/middleware"
	"github.com/yigit/campushub/internal/pkg/helpers"
)

// AdminController serves the admin console
type AdminController struct {
	adminService AdminService
	logger       zerolog.Logger
}

// NewAdminController creates a new AdminController
func NewAdminController(adminService AdminService, logger zerolog.Logger) *AdminController {
	return &AdminController{
		adminService: adminService,
		logger:       logger,
	}
}

func (c *AdminController) userQuery(ctx *gin.Context) (dto.UserListQuery, *bool, bool) {
	var q dto.UserListQuery
	if !middleware.BindQuery(ctx, &q) {
		return q, nil, false
	}
	active, err := helpers.ParseOptionalBoolQuery(ctx, "active")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return q, nil, false
	}
	return q, active, true
}

// ListUsers handles GET /api/admin/users
// @Summary List users
// @Description Pages through accounts with role, active and search filters
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param role query string false "student, college, company or admin"
// @Param active query bool false "Active filter"
// @Param q query string false "Search in name and email"
// @Param page query int false "Page number, from 1"
// @Param size query int false "Page size"
// @Success 200 {object} dto.APIResponse{data=dto.PaginatedResponse{items=[]models.UserSummary}} "One page of users"
// @Failure 400 {object} dto.ErrorResponse "Invalid request or validation error"
// @Failure 401 {object} dto.ErrorResponse "Missing or invalid token"
// @Failure 403 {object} dto.ErrorResponse "Role or ownership check failed"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /api/admin/users [get]
func (c *AdminController) ListUsers(ctx *gin.Context) {
	q, active, ok := c.userQuery(ctx)
	if !ok {
		return
	}
	page, size := helpers.ParsePaginationParams(ctx)

	resp, err := c.adminService.ListUsers(ctx.Request.Context(), q, active, page, size)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, resp)
}

// ExportUsers handles GET /api/admin/users/export. The CSV is buffered so
// a failed query still yields a JSON error instead of a truncated file.
// @Summary Export users
// @Description Streams the filtered user list as CSV
// @Tags admin
// @Accept json
// @Produce text/csv
// @Security BearerAuth
// @Param role query string false "student, college, company or admin"
// @Param active query bool false "Active filter"
// @Param q query string false "Search in name and email"
// @Success 200 {file} file "CSV file"
// @Failure 400 {object} dto.ErrorResponse "Invalid request or validation error"
// @Failure 401 {object} dto.ErrorResponse "Missing or invalid token"
// @Failure 403 {object} dto.ErrorResponse "Role or ownership check failed"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /api/admin/users/export [get]
func (c *AdminController) ExportUsers(ctx *gin.Context) {
	q, active, ok := c.userQuery(ctx)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := c.adminService.ExportUsers(ctx.Request.Context(), &buf, q, active); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	filename := fmt.Sprintf("users-%s.csv", time.Now().UTC().Format("20060102"))
	ctx.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	ctx.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

// CreateUser handles POST /api/admin/users
// @Summary Create user
// @Description Creates an account with any role
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.AdminCreateUserRequest true "Account"
// @Success 201 {object} dto.APIResponse{data=models.AuthUser} "Created account"
// @Failure 400 {object} dto.ErrorResponse "Invalid request or validation error"
// @Failure 401 {object} dto.ErrorResponse "Missing or invalid token"
// @Failure 403 {object} dto.ErrorResponse "Role or ownership check failed"
// @Failure 409 {object} dto.ErrorResponse "Conflicts with the current state"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /api/admin/users [post]
func (c *AdminController) CreateUser(ctx *gin.Context) {
	adminID, ok := middleware.MustUserID(ctx)
	if !ok {
		return
	}

	var req dto.AdminCreateUserRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	user, err := c.adminService.CreateUser(ctx.Request.Context(), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	c.logger.Info().
		Int64("adminID", adminID).
		Int64("userID", user.ID).
		Str("role", string(user.Role)).
		Msg("Account created by admin")
	respondCreated(ctx, user)
}

// SetUserStatus handles PATCH /api/admin/users/:id/status
// @Summary Activate or deactivate a user
// @Description Deactivating also revokes the user's sessions
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Param request body dto.UserStatusRequest true "Active flag"
// @Success 200 {object} dto.APIResponse{data=models.Profile} "Updated profile"
// @Failure 400 {object} dto.ErrorResponse "Invalid request or validation error"
// @Failure 401 {object} dto.ErrorResponse "Missing or invalid token"
// @Failure 403 {object} dto.ErrorResponse "Role or ownership check failed"
// @Failure 404 {object} dto.ErrorResponse "Resource not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /api/admin/users/{id}/status [patch]
func (c *AdminController) SetUserStatus(ctx *gin.Context) {
	adminID, ok := middleware.MustUserID(ctx)
	if !ok {
		return
	}
	id, ok := idParam(ctx, "id")
	if !ok {
		return
	}

	var req dto.UserStatusRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	profile, err := c.adminService.SetUserStatus(ctx.Request.Context(), adminID, id, *req.IsActive)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, profile)
}

// BulkSetUserStatus handles POST /api/admin/users/bulk-status
// @Summary Bulk user status
// @Description Activates or deactivates many users at once
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.BulkUserStatusRequest true "User IDs and active flag"
// @Success 200 {object} dto.APIResponse{data=dto.BulkResult} "Rows touched"
// @Failure 400 {object} dto.ErrorResponse "Invalid request or validation error"
// @Failure 401 {object} dto.ErrorResponse "Missing or invalid token"
// @Failure 403 {object} dto.ErrorResponse "Role or ownership check failed"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /api/admin/users/bulk-status [post]
func (c *AdminController) BulkSetUserStatus(ctx *gin.Context) {
	adminID, ok := middleware.MustUserID(ctx)
	if !ok {
		return
	}

	var req dto.BulkUserStatusRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	result, err := c.adminService.BulkSetUserStatus(ctx.Request.Context(), adminID, req.IDs, *req.IsActive)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, result)
}

// SetUserRole handles PUT /api/admin/users/:id/role
// @Summary Change user role
// @Description Replaces the role of a user
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Param request body dto.UserRoleRequest true "Role"
// @Success 200 {object} dto.APIResponse{data=dto.UserWithRoleResponse} "Profile and new role"
// @Failure 400 {object} dto.ErrorResponse "Invalid request or validation error"
// @Failure 401 {object} dto.ErrorResponse "Missing or invalid token"
// @Failure 403 {object} dto.ErrorResponse "Role or ownership check failed"
// @Failure 404 {object} dto.ErrorResponse "Resource not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /api/admin/users/{id}/role [put]
func (c *AdminController) SetUserRole(ctx *gin.Context) {
	adminID, ok := middleware.MustUserID(ctx)
	if !ok {
		return
	}
	id, ok := idParam(ctx, "id")
	if !ok {
		return
	}

	var req dto.UserRoleRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	resp, err := c.adminService.SetUserRole(ctx.Request.Context(), adminID, id, req.Role)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	c.logger.Info().Int64("adminID", adminID).Int64("userID", id).Str("role", req.Role).Msg("Role reassigned")
	respondOK(ctx, resp)
}

// DeleteUser handles DELETE /api/admin/users/:id
// @Summary Delete user
// @Description Deletes an account and everything it owns
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 200 {object} dto.APIResponse{data=dto.MessageResponse} "User deleted"
// @Failure 400 {object} dto.ErrorResponse "Invalid request or validation error"
// @Failure 401 {object} dto.ErrorResponse "Missing or invalid token"
// @Failure 403 {object} dto.ErrorResponse "Role or ownership check failed"
// @Failure 404 {object} dto.ErrorResponse "Resource not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /api/admin/users/{id} [delete]
func (c *AdminController) DeleteUser(ctx *gin.Context) {
	adminID, ok := middleware.MustUserID(ctx)
	if !ok {
		return
	}
	id, ok := idParam(ctx, "id")
	if !ok {
		return
	}

	if err := c.adminService.DeleteUser(ctx.Request.Context(), adminID, id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	c.logger.Info().Int64("adminID", adminID).Int64("userID", id).Msg("Account deleted")
	respondMessage(ctx, "User deleted")
}

// ListColleges handles GET /api/admin/colleges
// @Summary List colleges
// @Description Returns every college, active or not
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]models.College} "Colleges"
// @Failure 401 {object} dto.ErrorResponse "Missing or invalid token"
// @Failure 403 {object} dto.ErrorResponse "Role or ownership check failed"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /api/admin/colleges [get]
func (c *AdminController) ListColleges(ctx *gin.Context) {
	colleges, err := c.adminService.ListColleges(ctx.Request.Context())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, colleges)
}

// UpdateCollegeFlags handles PATCH /api/admin/colleges/:id
// @Summary Verify or deactivate a college
// @Description Sets the verified and active flags of a college
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "College ID"
// @Param request body dto.OrganizationFlagsRequest true "Flags"
// @Success 200 {object} dto.APIResponse{data=models.College} "Updated college"
// @Failure 400 {object} dto.ErrorResponse "Invalid request or validation error"
// @Failure 401 {object} dto.ErrorResponse "Missing or invalid token"
// @Failure 403 {object} dto.ErrorResponse "Role or ownership check failed"
// @Failure 404 {object} dto.ErrorResponse "Resource not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /api/admin/colleges/{id} [patch]
func (c *AdminController) UpdateCollegeFlags(ctx *gin.Context) {
	id, ok := idParam(ctx, "id")
	if !ok {
		return
	}

	var req dto.OrganizationFlagsRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	college, err := c.adminService.UpdateCollegeFlags(ctx.Request.Context(), id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, college)
}

// ListCompanies handles GET /api/admin/companies
// @Summary List companies
// @Description Returns every company, active or not
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]models.Company} "Companies"
// @Failure 401 {object} dto.ErrorResponse "Missing or invalid token"
// @Failure 403 {object} dto.ErrorResponse "Role or ownership check failed"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /api/admin/companies [get]
func (c *AdminController) ListCompanies(ctx *gin.Context) {
	companies, err := c.adminService.ListCompanies(ctx.Request.Context())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, companies)
}

// UpdateCompanyFlags handles PATCH /api/admin/companies/:id
// @Summary Verify or deactivate a company
// @Description Sets the verified and active flags of a company
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Company ID"
// @Param request body dto.OrganizationFlagsRequest true "Flags"
// @Success 200 {object} dto.APIResponse{data=models.Company} "Updated company"
// @Failure 400 {object} dto.ErrorResponse "Invalid request or validation error"
// @Failure 401 {object} dto.ErrorResponse "Missing or invalid token"
// @Failure 403 {object} dto.ErrorResponse "Role or ownership check failed"
// @Failure 404 {object} dto.ErrorResponse "Resource not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /api/admin/companies/{id} [patch]
func (c *AdminController) UpdateCompanyFlags(ctx *gin.Context) {
	id, ok := idParam(ctx, "id")
	if !ok {
		return
	}

	var req dto.OrganizationFlagsRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	company, err := c.adminService.UpdateCompanyFlags(ctx.Request.Context(), id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, company)
}

// ListEvents handles GET /api/admin/events
// @Summary List all events
// @Description Returns events in every status
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]models.Event} "Events"
// @Failure 401 {object} dto.ErrorResponse "Missing or invalid token"
// @Failure 403 {object} dto.ErrorResponse "Role or ownership check failed"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /api/admin/events [get]
func (c *AdminController) ListEvents(ctx *gin.Context) {
	events, err := c.adminService.ListEvents(ctx.Request.Context())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, events)
}

// BulkSetEventStatus handles POST /api/admin/events/bulk-status
// @Summary Bulk event status
// @Description Sets the status of many events at once
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.BulkEventStatusRequest true "Event IDs and status"
// @Success 200 {object} dto.APIResponse{data=dto.BulkResult} "Rows touched"
// @Failure 400 {object} dto.ErrorResponse "Invalid request or validation error"
// @Failure 401 {object} dto.ErrorResponse "Missing or invalid token"
// @Failure 403 {object} dto.ErrorResponse "Role or ownership check failed"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /api/admin/events/bulk-status [post]
func (c *AdminController) BulkSetEventStatus(ctx *gin.Context) {
	var req dto.BulkEventStatusRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	result, err := c.adminService.BulkSetEventStatus(ctx.Request.Context(), req.IDs, models.EventStatus(req.Status))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, result)
}

// ListOpportunities handles GET /api/admin/opportunities
// @Summary List all opportunities
// @Description Returns active and inactive opportunities
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]models.Opportunity} "Opportunities"
// @Failure 401 {object} dto.ErrorResponse "Missing or invalid token"
// @Failure 403 {object} dto.ErrorResponse "Role or ownership check failed"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /api/admin/opportunities [get]
func (c *AdminController) ListOpportunities(ctx *gin.Context) {
	opps, err := c.adminService.ListOpportunities(ctx.Request.Context())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, opps)
}

// CreateOpportunity handles POST /api/admin/opportunities
// @Summary Create opportunity
// @Description Posts a platform opportunity that belongs to no company
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.OpportunityRequest true "Opportunity"
// @Success 201 {object} dto.APIResponse{data=models.Opportunity} "Created opportunity"
// @Failure 400 {object} dto.ErrorResponse "Invalid request or validation error"
// @Failure 401 {object} dto.ErrorResponse "Missing or invalid token"
// @Failure 403 {object} dto.ErrorResponse "Role or ownership check failed"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /api/admin/opportunities [post]
func (c *AdminController) CreateOpportunity(ctx *gin.Context) {
	adminID, ok := middleware.MustUserID(ctx)
	if !ok {
		return
	}

	var req dto.OpportunityRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	opp, err := c.adminService.CreateOpportunity(ctx.Request.Context(), adminID, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondCreated(ctx, opp)
}

// BulkSetOpportunityActive handles POST /api/admin/opportunities/bulk-status
// @Summary Bulk opportunity status
// @Description Activates or deactivates many opportunities at once
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.BulkOpportunityStatusRequest true "Opportunity IDs and active flag"
// @Success 200 {object} dto.APIResponse{data=dto.BulkResult} "Rows touched"
// @Failure 400 {object} dto.ErrorResponse "Invalid request or validation error"
// @Failure 401 {object} dto.ErrorResponse "Missing or invalid token"
// @Failure 403 {object} dto.ErrorResponse "Role or ownership check failed"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /api/admin/opportunities/bulk-status [post]
func (c *AdminController) BulkSetOpportunityActive(ctx *gin.Context) {
	var req dto.BulkOpportunityStatusRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	result, err := c.adminService.BulkSetOpportunityActive(ctx.Request.Context(), req.IDs, *req.IsActive)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, result)
}

// RefundPayment handles POST /api/admin/payments/:id/refund
// @Summary Refund a payment
// @Description Moves a completed payment to refunded and cancels its registration
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param id path int true "Payment ID"
// @Success 200 {object} dto.APIResponse{data=models.Registration} "Cancelled registration"
// @Failure 400 {object} dto.ErrorResponse "Invalid request or validation error"
// @Failure 401 {object} dto.ErrorResponse "Missing or invalid token"
// @Failure 403 {object} dto.ErrorResponse "Role or ownership check failed"
// @Failure 404 {object} dto.ErrorResponse "Resource not found"
// @Failure 409 {object} dto.ErrorResponse "Conflicts with the current state"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /api/admin/payments/{id}/refund [post]
func (c *AdminController) RefundPayment(ctx *gin.Context) {
	id, ok := idParam(ctx, "id")
	if !ok {
		return
	}

	reg, err := c.adminService.RefundPayment(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	c.logger.Info().Int64("paymentID", id).Msg("Payment refunded")
	respondOK(ctx, reg)
}

// Stats handles GET /api/admin/stats
// @Summary Platform statistics
// @Description Returns user, listing, registration and revenue totals
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=models.PlatformStats} "Statistics"
// @Failure 401 {object} dto.ErrorResponse "Missing or invalid token"
// @Failure 403 {object} dto.ErrorResponse "Role or ownership check failed"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /api/admin/stats [get]
func (c *AdminController) Stats(ctx *gin.Context) {
	stats, err := c.adminService.Stats(ctx.Request.Context())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, stats)
}
