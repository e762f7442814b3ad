package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/campushub/internal/app/models"
	"github.com/yigit/campushub/internal/app/models/dto"
	"github.com/yigit/campushub/internal/pkg/apperrors"
)

const (
	companyOwner      int64 = 20
	otherCompanyOwner int64 = 21
)

func companyFixture() (*fixture, *CompanyService) {
	f := newFixture()
	f.companies = newFakeCompanyStore(
		models.Company{ID: 1, OwnerID: companyOwner, Name: "Acme", IsActive: true},
		models.Company{ID: 2, OwnerID: otherCompanyOwner, Name: "Globex", IsActive: true},
	)
	f.authz = newAuthz(f)
	svc := NewCompanyService(f.companies, f.opportunities, f.applications, f.authz, f.media, f.catalog, nopLogger())
	return f, svc
}

func TestCompanyOpportunityLifecycle(t *testing.T) {
	f, svc := companyFixture()
	ctx := context.Background()

	opp, err := svc.CreateOpportunity(ctx, companyOwner, &dto.OpportunityRequest{
		Type:  "Internship",
		Title: "Backend Intern",
		Tags:  []string{"go", "sql"},
	})
	require.NoError(t, err)
	require.NotNil(t, opp.CompanyID)
	assert.Equal(t, int64(1), *opp.CompanyID)
	assert.Equal(t, models.OpportunityInternship, opp.Type)
	assert.True(t, opp.IsActive)

	inactive := false
	opp, err = svc.UpdateOpportunity(ctx, companyOwner, opp.ID, &dto.OpportunityRequest{
		Type: "internship", Title: "Backend Intern (closed)", IsActive: &inactive,
	})
	require.NoError(t, err)
	assert.False(t, opp.IsActive)

	_, err = svc.UpdateOpportunity(ctx, otherCompanyOwner, opp.ID, &dto.OpportunityRequest{Type: "job", Title: "Stolen"})
	assert.True(t, errors.Is(err, apperrors.ErrPermissionDenied))

	list, err := svc.ListOpportunities(ctx, companyOwner)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, svc.DeleteOpportunity(ctx, companyOwner, opp.ID))
	assert.Empty(t, f.opportunities.opps)
}

func TestExternalOpportunityNeedsURL(t *testing.T) {
	_, svc := companyFixture()
	ctx := context.Background()

	_, err := svc.CreateOpportunity(ctx, companyOwner, &dto.OpportunityRequest{
		Type: "job", Title: "Remote role", IsExternal: true,
	})
	assert.True(t, errors.Is(err, apperrors.ErrValidationFailed))

	bad := "javascript:alert(1)"
	_, err = svc.CreateOpportunity(ctx, companyOwner, &dto.OpportunityRequest{
		Type: "job", Title: "Remote role", IsExternal: true, ExternalURL: &bad,
	})
	assert.True(t, errors.Is(err, apperrors.ErrValidationFailed))

	_, err = svc.CreateOpportunity(ctx, companyOwner, &dto.OpportunityRequest{Type: "gig", Title: "Unknown type"})
	assert.True(t, errors.Is(err, apperrors.ErrValidationFailed))
}

func TestInactiveCompanyCannotCreate(t *testing.T) {
	f, svc := companyFixture()
	f.companies.companies[1].IsActive = false

	_, err := svc.CreateOpportunity(context.Background(), companyOwner, &dto.OpportunityRequest{Type: "job", Title: "Any"})
	assert.True(t, errors.Is(err, apperrors.ErrOrganizationInactive))
}

func TestApplicationReviewIsOwnerOnly(t *testing.T) {
	f, svc := companyFixture()
	ctx := context.Background()

	opp, err := svc.CreateOpportunity(ctx, companyOwner, &dto.OpportunityRequest{Type: "job", Title: "Engineer"})
	require.NoError(t, err)
	app := &models.Application{OpportunityID: opp.ID, UserID: 99, Status: models.ApplicationSubmitted}
	require.NoError(t, f.applications.Create(ctx, app))

	apps, err := svc.ListApplications(ctx, companyOwner, opp.ID)
	require.NoError(t, err)
	assert.Len(t, apps, 1)

	_, err = svc.ListApplications(ctx, otherCompanyOwner, opp.ID)
	assert.True(t, errors.Is(err, apperrors.ErrPermissionDenied))

	_, err = svc.UpdateApplicationStatus(ctx, otherCompanyOwner, app.ID, models.ApplicationShortlisted)
	assert.True(t, errors.Is(err, apperrors.ErrPermissionDenied))

	_, err = svc.UpdateApplicationStatus(ctx, companyOwner, app.ID, "hired")
	assert.True(t, errors.Is(err, apperrors.ErrValidationFailed))

	updated, err := svc.UpdateApplicationStatus(ctx, companyOwner, app.ID, models.ApplicationShortlisted)
	require.NoError(t, err)
	assert.Equal(t, models.ApplicationShortlisted, updated.Status)
}

func TestCompanyLogoUpload(t *testing.T) {
	f, svc := companyFixture()

	url, err := svc.UploadLogo(context.Background(), companyOwner, pngReader())
	require.NoError(t, err)
	assert.Equal(t, url, *f.companies.companies[1].LogoURL)

	_, err = svc.UploadLogo(context.Background(), 777, pngReader())
	assert.True(t, errors.Is(err, apperrors.ErrOrganizationNotFound))
}
