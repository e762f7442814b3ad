package services

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/rs/zerolog"
	appauth "github.com/yigit/campushub/internal/app/auth"
	"github.com/yigit/campushub/internal/app/models"
	"github.com/yigit/campushub/internal/app/models/dto"
	"github.com/yigit/campushub/internal/app/repositories"
	"github.com/yigit/campushub/internal/pkg/apperrors"
	"github.com/yigit/campushub/internal/pkg/filestorage"
)

// CompanyService backs the company dashboard
type CompanyService struct {
	companies     CompanyStore
	opportunities OpportunityStore
	applications  ApplicationStore
	authz         *appauth.AuthorizationService
	media         *MediaService
	catalog       *CatalogService
	logger        zerolog.Logger
}

// NewCompanyService creates a new CompanyService
func NewCompanyService(
	companies CompanyStore,
	opportunities OpportunityStore,
	applications ApplicationStore,
	authz *appauth.AuthorizationService,
	media *MediaService,
	catalog *CatalogService,
	logger zerolog.Logger,
) *CompanyService {
	return &CompanyService{
		companies:     companies,
		opportunities: opportunities,
		applications:  applications,
		authz:         authz,
		media:         media,
		catalog:       catalog,
		logger:        logger,
	}
}

// GetProfile returns the caller's company
func (s *CompanyService) GetProfile(ctx context.Context, userID int64) (*models.Company, error) {
	return s.authz.CompanyOf(ctx, userID)
}

// UpdateProfile edits name, industry, description and website
func (s *CompanyService) UpdateProfile(ctx context.Context, userID int64, req *dto.UpdateCompanyRequest) (*models.Company, error) {
	company, err := s.authz.CompanyOf(ctx, userID)
	if err != nil {
		return nil, err
	}
	name, err := checkOrganizationFields(req.Name, req.Website)
	if err != nil {
		return nil, err
	}

	company.Name = name
	company.Industry = req.Industry
	company.Description = req.Description
	company.Website = req.Website
	if err := s.companies.Update(ctx, company); err != nil {
		return nil, fmt.Errorf("failed to update company: %w", err)
	}
	s.catalog.Invalidate()
	return s.companies.GetByID(ctx, company.ID)
}

// UploadLogo replaces the company logo
func (s *CompanyService) UploadLogo(ctx context.Context, userID int64, file io.Reader) (string, error) {
	company, err := s.authz.CompanyOf(ctx, userID)
	if err != nil {
		return "", err
	}
	return s.media.ReplaceImage(ctx, filestorage.BucketLogos, "company-"+strconv.FormatInt(company.ID, 10), file, company.LogoURL,
		func(url string) error {
			return s.companies.UpdateLogo(ctx, company.ID, url)
		})
}

// ListOpportunities returns every listing of the caller's company, inactive included
func (s *CompanyService) ListOpportunities(ctx context.Context, userID int64) ([]models.Opportunity, error) {
	company, err := s.authz.CompanyOf(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.opportunities.List(ctx, repositories.OpportunityFilter{CompanyID: &company.ID})
}

// CreateOpportunity adds a listing owned by the caller's company
func (s *CompanyService) CreateOpportunity(ctx context.Context, userID int64, req *dto.OpportunityRequest) (*models.Opportunity, error) {
	company, err := s.authz.CompanyOf(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !company.IsActive {
		return nil, apperrors.NewCustomError(apperrors.ErrOrganizationInactive, "inactive companies cannot create opportunities")
	}

	opp := &models.Opportunity{CompanyID: &company.ID, CreatedBy: userID}
	if err := applyOpportunityRequest(opp, req, true); err != nil {
		return nil, err
	}
	if err := s.opportunities.Create(ctx, opp); err != nil {
		return nil, fmt.Errorf("failed to create opportunity: %w", err)
	}

	s.logger.Info().Int64("opportunityID", opp.ID).Int64("companyID", company.ID).Msg("Opportunity created")
	s.catalog.Invalidate()
	return s.opportunities.GetByID(ctx, opp.ID)
}

// UpdateOpportunity replaces the editable fields of one of the caller's listings
func (s *CompanyService) UpdateOpportunity(ctx context.Context, userID, opportunityID int64, req *dto.OpportunityRequest) (*models.Opportunity, error) {
	opp, _, err := s.authz.OwnedOpportunity(ctx, userID, opportunityID)
	if err != nil {
		return nil, err
	}
	if err := applyOpportunityRequest(opp, req, false); err != nil {
		return nil, err
	}
	if err := s.opportunities.Update(ctx, opp); err != nil {
		return nil, fmt.Errorf("failed to update opportunity: %w", err)
	}
	s.catalog.Invalidate()
	return s.opportunities.GetByID(ctx, opportunityID)
}

// DeleteOpportunity removes one of the caller's listings with its applications
func (s *CompanyService) DeleteOpportunity(ctx context.Context, userID, opportunityID int64) error {
	if _, _, err := s.authz.OwnedOpportunity(ctx, userID, opportunityID); err != nil {
		return err
	}
	if err := s.opportunities.Delete(ctx, opportunityID); err != nil {
		return fmt.Errorf("failed to delete opportunity: %w", err)
	}
	s.catalog.Invalidate()
	s.logger.Info().Int64("opportunityID", opportunityID).Msg("Opportunity deleted")
	return nil
}

// ListApplications returns the applications to one of the caller's listings
func (s *CompanyService) ListApplications(ctx context.Context, userID, opportunityID int64) ([]models.Application, error) {
	if _, _, err := s.authz.OwnedOpportunity(ctx, userID, opportunityID); err != nil {
		return nil, err
	}
	return s.applications.ListByOpportunity(ctx, opportunityID)
}

// UpdateApplicationStatus records the company's review decision
func (s *CompanyService) UpdateApplicationStatus(ctx context.Context, userID, applicationID int64, status models.ApplicationStatus) (*models.Application, error) {
	if !status.Valid() {
		return nil, apperrors.NewValidationError("status", "unknown application status")
	}
	app, err := s.applications.GetByID(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	if _, _, err := s.authz.OwnedOpportunity(ctx, userID, app.OpportunityID); err != nil {
		return nil, err
	}
	if err := s.applications.UpdateStatus(ctx, applicationID, status); err != nil {
		return nil, fmt.Errorf("failed to update application status: %w", err)
	}
	return s.applications.GetByID(ctx, applicationID)
}
