package controllers

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/yigit/campushub/internal/app/models"
	"github.com/yigit/campushub/internal/app/models/dto"
	"github.com/yigit/campushub/internal/middleware"
)

// CompanyController serves the company dashboard
type CompanyController struct {
	companyService CompanyService
	logger         zerolog.Logger
}

// NewCompanyController creates a new CompanyController
func NewCompanyController(companyService CompanyService, logger zerolog.Logger) *CompanyController {
	return &CompanyController{
		companyService: companyService,
		logger:         logger,
	}
}

// GetProfile handles GET /api/company/profile
// @Summary Get own company
// @Description Returns the company owned by the caller
// @Tags company
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=models.Company} "Company"
// @Failure 401 {object} dto.ErrorResponse "Missing or invalid token"
// @Failure 403 {object} dto.ErrorResponse "Role or ownership check failed"
// @Failure 404 {object} dto.ErrorResponse "Resource not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /api/company/profile [get]
func (c *CompanyController) GetProfile(ctx *gin.Context) {
	userID, ok := middleware.MustUserID(ctx)
	if !ok {
		return
	}

	company, err := c.companyService.GetProfile(ctx.Request.Context(), userID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, company)
}

// UpdateProfile handles PUT /api/company/profile
// @Summary Update own company
// @Description Edits name, description, industry and website
// @Tags company
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.UpdateCompanyRequest true "Company fields"
// @Success 200 {object} dto.APIResponse{data=models.Company} "Updated company"
// @Failure 400 {object} dto.ErrorResponse "Invalid request or validation error"
// @Failure 401 {object} dto.ErrorResponse "Missing or invalid token"
// @Failure 403 {object} dto.ErrorResponse "Role or ownership check failed"
// @Failure 404 {object} dto.ErrorResponse "Resource not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /api/company/profile [put]
func (c *CompanyController) UpdateProfile(ctx *gin.Context) {
	userID, ok := middleware.MustUserID(ctx)
	if !ok {
		return
	}

	var req dto.UpdateCompanyRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	company, err := c.companyService.UpdateProfile(ctx.Request.Context(), userID, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, company)
}

// UploadLogo handles POST /api/company/profile/logo
// @Summary Upload company logo
// @Description Stores an image and sets it as the company logo
// @Tags company
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
// @Router /api/company/profile/logo [post]
func (c *CompanyController) UploadLogo(ctx *gin.Context) {
	userID, ok := middleware.MustUserID(ctx)
	if !ok {
		return
	}

	file, ok := openUpload(ctx)
	if !ok {
		return
	}
	defer file.Close()

	url, err := c.companyService.UploadLogo(ctx.Request.Context(), userID, file)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, dto.MediaResponse{URL: url})
}

// ListOpportunities handles GET /api/company/opportunities
// @Summary List own opportunities
// @Description Returns the opportunities of the caller's company
// @Tags company
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]models.Opportunity} "Opportunities"
// @Failure 401 {object} dto.ErrorResponse "Missing or invalid token"
// @Failure 403 {object} dto.ErrorResponse "Role or ownership check failed"
// @Failure 404 {object} dto.ErrorResponse "Resource not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /api/company/opportunities [get]
func (c *CompanyController) ListOpportunities(ctx *gin.Context) {
	userID, ok := middleware.MustUserID(ctx)
	if !ok {
		return
	}

	opps, err := c.companyService.ListOpportunities(ctx.Request.Context(), userID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, opps)
}

// CreateOpportunity handles POST /api/company/opportunities
// @Summary Create opportunity
// @Description Posts an opportunity for the caller's company
// @Tags company
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.OpportunityRequest true "Opportunity"
// @Success 201 {object} dto.APIResponse{data=models.Opportunity} "Created opportunity"
// @Failure 400 {object} dto.ErrorResponse "Invalid request or validation error"
// @Failure 401 {object} dto.ErrorResponse "Missing or invalid token"
// @Failure 403 {object} dto.ErrorResponse "Role or ownership check failed"
// @Failure 404 {object} dto.ErrorResponse "Resource not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /api/company/opportunities [post]
func (c *CompanyController) CreateOpportunity(ctx *gin.Context) {
	userID, ok := middleware.MustUserID(ctx)
	if !ok {
		return
	}

	var req dto.OpportunityRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	opp, err := c.companyService.CreateOpportunity(ctx.Request.Context(), userID, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	c.logger.Info().Int64("opportunityID", opp.ID).Str("type", string(opp.Type)).Msg("Opportunity created")
	respondCreated(ctx, opp)
}

// UpdateOpportunity handles PUT /api/company/opportunities/:id
// @Summary Update own opportunity
// @Description Replaces the editable fields of one of the company's opportunities
// @Tags company
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Opportunity ID"
// @Param request body dto.OpportunityRequest true "Opportunity"
// @Success 200 {object} dto.APIResponse{data=models.Opportunity} "Updated opportunity"
// @Failure 400 {object} dto.ErrorResponse "Invalid request or validation error"
// @Failure 401 {object} dto.ErrorResponse "Missing or invalid token"
// @Failure 403 {object} dto.ErrorResponse "Role or ownership check failed"
// @Failure 404 {object} dto.ErrorResponse "Resource not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /api/company/opportunities/{id} [put]
func (c *CompanyController) UpdateOpportunity(ctx *gin.Context) {
	userID, ok := middleware.MustUserID(ctx)
	if !ok {
		return
	}
	id, ok := idParam(ctx, "id")
	if !ok {
		return
	}

	var req dto.OpportunityRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	opp, err := c.companyService.UpdateOpportunity(ctx.Request.Context(), userID, id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, opp)
}

// DeleteOpportunity handles DELETE /api/company/opportunities/:id
// @Summary Delete own opportunity
// @Description Deletes one of the company's opportunities
// @Tags company
// @Produce json
// @Security BearerAuth
// @Param id path int true "Opportunity ID"
// @Success 200 {object} dto.APIResponse{data=dto.MessageResponse} "Opportunity deleted"
// @Failure 400 {object} dto.ErrorResponse "Invalid request or validation error"
// @Failure 401 {object} dto.ErrorResponse "Missing or invalid token"
// @Failure 403 {object} dto.ErrorResponse "Role or ownership check failed"
// @Failure 404 {object} dto.ErrorResponse "Resource not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /api/company/opportunities/{id} [delete]
func (c *CompanyController) DeleteOpportunity(ctx *gin.Context) {
	userID, ok := middleware.MustUserID(ctx)
	if !ok {
		return
	}
	id, ok := idParam(ctx, "id")
	if !ok {
		return
	}

	if err := c.companyService.DeleteOpportunity(ctx.Request.Context(), userID, id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondMessage(ctx, "Opportunity deleted")
}

// ListApplications handles GET /api/company/opportunities/:id/applications
// @Summary List applications
// @Description Returns the applications to one of the company's opportunities
// @Tags company
// @Produce json
// @Security BearerAuth
// @Param id path int true "Opportunity ID"
// @Success 200 {object} dto.APIResponse{data=[]models.Application} "Applications"
// @Failure 400 {object} dto.ErrorResponse "Invalid request or validation error"
// @Failure 401 {object} dto.ErrorResponse "Missing or invalid token"
// @Failure 403 {object} dto.ErrorResponse "Role or ownership check failed"
// @Failure 404 {object} dto.ErrorResponse "Resource not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /api/company/opportunities/{id}/applications [get]
func (c *CompanyController) ListApplications(ctx *gin.Context) {
	userID, ok := middleware.MustUserID(ctx)
	if !ok {
		return
	}
	id, ok := idParam(ctx, "id")
	if !ok {
		return
	}

	apps, err := c.companyService.ListApplications(ctx.Request.Context(), userID, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, apps)
}

// UpdateApplicationStatus handles PATCH /api/company/applications/:id
// @Summary Review an application
// @Description Sets the review status of an application to one of the company's listings
// @Tags company
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Application ID"
// @Param request body dto.ApplicationStatusRequest true "Review status"
// @Success 200 {object} dto.APIResponse{data=models.Application} "Updated application"
// @Failure 400 {object} dto.ErrorResponse "Invalid request or validation error"
// @Failure 401 {object} dto.ErrorResponse "Missing or invalid token"
// @Failure 403 {object} dto.ErrorResponse "Role or ownership check failed"
// @Failure 404 {object} dto.ErrorResponse "Resource not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /api/company/applications/{id} [patch]
func (c *CompanyController) UpdateApplicationStatus(ctx *gin.Context) {
	userID, ok := middleware.MustUserID(ctx)
	if !ok {
		return
	}
	id, ok := idParam(ctx, "id")
	if !ok {
		return
	}

	var req dto.ApplicationStatusRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	app, err := c.companyService.UpdateApplicationStatus(ctx.Request.Context(), userID, id, models.ApplicationStatus(req.Status))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, app)
}
