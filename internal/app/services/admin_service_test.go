package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/campushub/internal/app/models"
	"github.com/yigit/campushub/internal/app/models/dto"
	"github.com/yigit/campushub/internal/pkg/apperrors"
)

func adminFixture() (*fixture, *AdminService, int64) {
	f := newFixture()
	adminID := f.accounts.add("admin@campushub.test", "x", models.RoleAdmin, true)
	svc := NewAdminService(AdminStores{
		Accounts:      f.accounts,
		Sessions:      f.sessions,
		Colleges:      f.colleges,
		Companies:     f.companies,
		Events:        f.events,
		Opportunities: f.opportunities,
		Applications:  f.applications,
		Registrations: f.registrations,
	}, f.catalog, nopLogger())
	return f, svc, adminID
}

func TestAdminCannotLockThemselvesOut(t *testing.T) {
	_, svc, adminID := adminFixture()
	ctx := context.Background()

	_, err := svc.SetUserStatus(ctx, adminID, adminID, false)
	assert.True(t, errors.Is(err, apperrors.ErrPermissionDenied))

	_, err = svc.BulkSetUserStatus(ctx, adminID, []int64{adminID, 42}, false)
	assert.True(t, errors.Is(err, apperrors.ErrPermissionDenied))

	_, err = svc.SetUserRole(ctx, adminID, adminID, "student")
	assert.True(t, errors.Is(err, apperrors.ErrPermissionDenied))

	err = svc.DeleteUser(ctx, adminID, adminID)
	assert.True(t, errors.Is(err, apperrors.ErrPermissionDenied))

	_, err = svc.SetUserStatus(ctx, adminID, adminID, true)
	assert.NoError(t, err)
}

func TestDeactivationRevokesSessions(t *testing.T) {
	f, svc, adminID := adminFixture()
	ctx := context.Background()
	a := f.accounts.add("a@example.com", "x", models.RoleStudent, true)
	b := f.accounts.add("b@example.com", "x", models.RoleStudent, true)

	profile, err := svc.SetUserStatus(ctx, adminID, a, false)
	require.NoError(t, err)
	assert.False(t, profile.IsActive)
	assert.Equal(t, []int64{a}, f.sessions.revokedFor)

	res, err := svc.BulkSetUserStatus(ctx, adminID, []int64{a, b, 404}, true)
	require.NoError(t, err)
	assert.Equal(t, &dto.BulkResult{Requested: 3, Updated: 2}, res)
	assert.Len(t, f.sessions.revokedFor, 1, "activation revokes nothing")
}

func TestAdminCreateUserAnyRole(t *testing.T) {
	f, svc, _ := adminFixture()
	ctx := context.Background()

	user, err := svc.CreateUser(ctx, &dto.AdminCreateUserRequest{
		Email: "second@campushub.test", Password: "admin2026", FullName: "Second Admin", Role: "admin",
	})
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, user.Role)

	_, err = svc.CreateUser(ctx, &dto.AdminCreateUserRequest{
		Email: "second@campushub.test", Password: "admin2026", FullName: "Dup", Role: "admin",
	})
	assert.True(t, errors.Is(err, apperrors.ErrEmailAlreadyExists))

	_, err = svc.CreateUser(ctx, &dto.AdminCreateUserRequest{
		Email: "x@campushub.test", Password: "admin2026", FullName: "X", Role: "overlord",
	})
	assert.True(t, errors.Is(err, apperrors.ErrValidationFailed))
	assert.Len(t, f.accounts.provisions, 1)
}

func TestListUsersPaginates(t *testing.T) {
	f, svc, _ := adminFixture()
	for _, email := range []string{"s1@example.com", "s2@example.com", "s3@example.com"} {
		f.accounts.add(email, "x", models.RoleStudent, true)
	}

	page, err := svc.ListUsers(context.Background(), dto.UserListQuery{Role: "student"}, nil, 2, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(3), page.Pagination.TotalItems)
	assert.Equal(t, 2, page.Pagination.TotalPages)
	assert.Equal(t, 2, page.Pagination.CurrentPage)
	users := page.Items.([]models.UserSummary)
	require.Len(t, users, 1)
	assert.Equal(t, "s3@example.com", users[0].Email)
}

func TestExportUsersCSV(t *testing.T) {
	f, svc, _ := adminFixture()
	f.accounts.add("quote,\"me\"@example.com", "x", models.RoleCompany, false)
	inactive := false

	var buf bytes.Buffer
	require.NoError(t, svc.ExportUsers(context.Background(), &buf, dto.UserListQuery{}, &inactive))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, []string{"id", "email", "full_name", "role", "is_active", "created_at"}, records[0])
	assert.Equal(t, "quote,\"me\"@example.com", records[1][1])
	assert.Equal(t, "company", records[1][3])
	assert.Equal(t, "false", records[1][4])
	assert.Equal(t, "2026-03-01T12:00:00Z", records[1][5])
}

func TestOrganizationFlags(t *testing.T) {
	f, svc, _ := adminFixture()
	f.colleges.colleges[1] = &models.College{ID: 1, OwnerID: 5, Name: "Northfield", IsActive: true}
	ctx := context.Background()

	_, err := svc.UpdateCollegeFlags(ctx, 1, &dto.OrganizationFlagsRequest{})
	assert.True(t, errors.Is(err, apperrors.ErrBadRequest))

	college, err := svc.UpdateCollegeFlags(ctx, 1, &dto.OrganizationFlagsRequest{IsVerified: boolPtr(true)})
	require.NoError(t, err)
	assert.True(t, college.IsVerified)
	assert.True(t, college.IsActive)

	_, err = svc.UpdateCompanyFlags(ctx, 9, &dto.OrganizationFlagsRequest{IsActive: boolPtr(false)})
	assert.True(t, errors.Is(err, apperrors.ErrOrganizationNotFound))
}

func TestBulkListingStatus(t *testing.T) {
	f, svc, adminID := adminFixture()
	ctx := context.Background()
	f.events.events[1] = &models.Event{ID: 1, Status: models.EventStatusCompleted}
	f.events.events[2] = &models.Event{ID: 2, Status: models.EventStatusDraft}

	res, err := svc.BulkSetEventStatus(ctx, []int64{1, 2}, models.EventStatusPublished)
	require.NoError(t, err)
	assert.Equal(t, int64(2), res.Updated)
	assert.Equal(t, models.EventStatusPublished, f.events.events[1].Status, "admins bypass the lifecycle")

	_, err = svc.BulkSetEventStatus(ctx, []int64{1}, "archived")
	assert.True(t, errors.Is(err, apperrors.ErrValidationFailed))

	opp, err := svc.CreateOpportunity(ctx, adminID, &dto.OpportunityRequest{Type: "competition", Title: "Code Golf"})
	require.NoError(t, err)
	assert.Nil(t, opp.CompanyID)

	res, err = svc.BulkSetOpportunityActive(ctx, []int64{opp.ID}, false)
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.Updated)

	all, err := svc.ListOpportunities(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.False(t, all[0].IsActive)
}

func TestRefundAndStats(t *testing.T) {
	f, svc, _ := adminFixture()
	ctx := context.Background()

	reg, err := f.registrations.Create(ctx, registrationWithPayment(7, 30, 1200))
	require.NoError(t, err)

	_, err = svc.RefundPayment(ctx, reg.Payment.ID)
	assert.True(t, errors.Is(err, apperrors.ErrInvalidStateTransition), "pending payments cannot be refunded")

	require.NoError(t, f.registrations.CompletePayment(ctx, reg.Payment.ID, nil))
	stats, err := svc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1200), stats.CompletedRevenue["USD"])
	assert.Equal(t, int64(1), stats.TotalRegistrations)
	assert.Equal(t, int64(1), stats.UsersByRole[models.RoleAdmin])

	refunded, err := svc.RefundPayment(ctx, reg.Payment.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RegistrationCancelled, refunded.Status)
	assert.Equal(t, models.PaymentRefunded, refunded.Payment.Status)
}
