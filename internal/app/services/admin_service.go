package services

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"github.com/yigit/campushub/internal/app/models"
	"github.com/yigit/campushub/internal/app/models/dto"
	"github.com/yigit/campushub/internal/app/repositories"
	"github.com/yigit/campushub/internal/pkg/apperrors"
	"github.com/yigit/campushub/internal/pkg/helpers"
)

// userExportHeader is the first line of the admin CSV export
var userExportHeader = []string{"id", "email", "full_name", "role", "is_active", "created_at"}

// AdminService backs the admin console. All operations run across tenants.
type AdminService struct {
	accounts      AccountStore
	sessions      SessionStore
	colleges      CollegeStore
	companies     CompanyStore
	events        EventStore
	opportunities OpportunityStore
	applications  ApplicationStore
	registrations RegistrationStore
	catalog       *CatalogService
	logger        zerolog.Logger
}

// AdminStores groups the persistence the admin console needs
type AdminStores struct {
	Accounts      AccountStore
	Sessions      SessionStore
	Colleges      CollegeStore
	Companies     CompanyStore
	Events        EventStore
	Opportunities OpportunityStore
	Applications  ApplicationStore
	Registrations RegistrationStore
}

// NewAdminService creates a new AdminService
func NewAdminService(stores AdminStores, catalog *CatalogService, logger zerolog.Logger) *AdminService {
	return &AdminService{
		accounts:      stores.Accounts,
		sessions:      stores.Sessions,
		colleges:      stores.Colleges,
		companies:     stores.Companies,
		events:        stores.Events,
		opportunities: stores.Opportunities,
		applications:  stores.Applications,
		registrations: stores.Registrations,
		catalog:       catalog,
		logger:        logger,
	}
}

func userFilter(q dto.UserListQuery, active *bool) (repositories.UserFilter, error) {
	f := repositories.UserFilter{Query: q.Q, Active: active}
	if q.Role != "" {
		role, ok := models.ParseRole(q.Role)
		if !ok {
			return f, apperrors.NewValidationError("role", "unknown role")
		}
		f.Role = &role
	}
	return f, nil
}

// ListUsers returns one page of accounts, newest first
func (s *AdminService) ListUsers(ctx context.Context, q dto.UserListQuery, active *bool, page, size int) (*dto.PaginatedResponse, error) {
	f, err := userFilter(q, active)
	if err != nil {
		return nil, err
	}
	offset, limit := helpers.CalculateOffsetLimit(page, size)
	users, total, err := s.accounts.List(ctx, f, offset, limit)
	if err != nil {
		return nil, err
	}
	return &dto.PaginatedResponse{
		Items:      users,
		Pagination: helpers.NewPaginationInfo(total, page, int(limit)),
	}, nil
}

// CreateUser provisions an account of any role in one transaction
func (s *AdminService) CreateUser(ctx context.Context, req *dto.AdminCreateUserRequest) (*models.AuthUser, error) {
	role, ok := models.ParseRole(req.Role)
	if !ok {
		return nil, apperrors.NewValidationError("role", "unknown role")
	}
	params, err := buildProvisionParams(AccountInput{
		Email:    req.Email,
		Password: req.Password,
		FullName: req.FullName,
		Role:     role,
		Extra:    req.Extra,
	})
	if err != nil {
		return nil, err
	}

	user, err := s.accounts.Provision(ctx, params)
	if err != nil {
		return nil, err
	}
	if role.OwnsOrganization() {
		s.catalog.Invalidate()
	}
	s.logger.Info().Int64("userID", user.ID).Str("role", string(role)).Msg("Account created by admin")
	return user, nil
}

func (s *AdminService) revokeSessions(ctx context.Context, userID int64) {
	if err := s.sessions.RevokeAllForAccount(ctx, userID); err != nil {
		s.logger.Warn().Err(err).Int64("userID", userID).Msg("Failed to revoke sessions")
	}
}

// SetUserStatus activates or deactivates a profile. Deactivation revokes the
// account's sessions.
func (s *AdminService) SetUserStatus(ctx context.Context, adminID, userID int64, active bool) (*models.Profile, error) {
	if userID == adminID && !active {
		return nil, apperrors.NewForbiddenError("admins cannot deactivate themselves")
	}
	if err := s.accounts.SetActive(ctx, userID, active); err != nil {
		return nil, err
	}
	if !active {
		s.revokeSessions(ctx, userID)
	}
	s.catalog.Invalidate()
	return s.accounts.GetProfile(ctx, userID)
}

// BulkSetUserStatus activates or deactivates many profiles at once
func (s *AdminService) BulkSetUserStatus(ctx context.Context, adminID int64, ids []int64, active bool) (*dto.BulkResult, error) {
	if !active {
		for _, id := range ids {
			if id == adminID {
				return nil, apperrors.NewForbiddenError("admins cannot deactivate themselves")
			}
		}
	}
	updated, err := s.accounts.BulkSetActive(ctx, ids, active)
	if err != nil {
		return nil, err
	}
	if !active {
		for _, id := range ids {
			s.revokeSessions(ctx, id)
		}
	}
	s.catalog.Invalidate()
	return &dto.BulkResult{Requested: len(ids), Updated: updated}, nil
}

// SetUserRole reassigns an account's role, creating the organization row when
// the new role owns one.
func (s *AdminService) SetUserRole(ctx context.Context, adminID, userID int64, roleName string) (*dto.UserWithRoleResponse, error) {
	role, ok := models.ParseRole(roleName)
	if !ok {
		return nil, apperrors.NewValidationError("role", "unknown role")
	}
	if userID == adminID && role != models.RoleAdmin {
		return nil, apperrors.NewForbiddenError("admins cannot demote themselves")
	}
	if err := s.accounts.SetRole(ctx, userID, role); err != nil {
		return nil, err
	}
	s.logger.Info().Int64("userID", userID).Str("role", string(role)).Msg("Role reassigned")

	profile, err := s.accounts.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &dto.UserWithRoleResponse{Profile: profile, Role: role}, nil
}

// DeleteUser hard-deletes an account and everything that cascades from it
func (s *AdminService) DeleteUser(ctx context.Context, adminID, userID int64) error {
	if userID == adminID {
		return apperrors.NewForbiddenError("admins cannot delete themselves")
	}
	if err := s.accounts.Delete(ctx, userID); err != nil {
		return err
	}
	s.catalog.Invalidate()
	s.logger.Info().Int64("userID", userID).Msg("Account deleted by admin")
	return nil
}

// ExportUsers writes every account matching the filter as CSV
func (s *AdminService) ExportUsers(ctx context.Context, w io.Writer, q dto.UserListQuery, active *bool) error {
	f, err := userFilter(q, active)
	if err != nil {
		return err
	}
	users, err := s.accounts.ListAll(ctx, f)
	if err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(userExportHeader); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}
	for _, u := range users {
		record := []string{
			strconv.FormatInt(u.ID, 10),
			u.Email,
			u.FullName,
			string(u.Role),
			strconv.FormatBool(u.IsActive),
			u.CreatedAt.UTC().Format(time.RFC3339),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// ListColleges returns every college
func (s *AdminService) ListColleges(ctx context.Context) ([]models.College, error) {
	return s.colleges.List(ctx, false)
}

// UpdateCollegeFlags sets verification and activity of a college
func (s *AdminService) UpdateCollegeFlags(ctx context.Context, id int64, req *dto.OrganizationFlagsRequest) (*models.College, error) {
	flags := models.OrganizationFlags{IsVerified: req.IsVerified, IsActive: req.IsActive}
	if flags.Empty() {
		return nil, apperrors.NewBadRequestError("nothing to update")
	}
	college, err := s.colleges.SetFlags(ctx, id, flags)
	if err != nil {
		return nil, err
	}
	s.catalog.Invalidate()
	return college, nil
}

// ListCompanies returns every company
func (s *AdminService) ListCompanies(ctx context.Context) ([]models.Company, error) {
	return s.companies.List(ctx, false)
}

// UpdateCompanyFlags sets verification and activity of a company
func (s *AdminService) UpdateCompanyFlags(ctx context.Context, id int64, req *dto.OrganizationFlagsRequest) (*models.Company, error) {
	flags := models.OrganizationFlags{IsVerified: req.IsVerified, IsActive: req.IsActive}
	if flags.Empty() {
		return nil, apperrors.NewBadRequestError("nothing to update")
	}
	company, err := s.companies.SetFlags(ctx, id, flags)
	if err != nil {
		return nil, err
	}
	s.catalog.Invalidate()
	return company, nil
}

// ListEvents returns every event of every college
func (s *AdminService) ListEvents(ctx context.Context) ([]models.Event, error) {
	return s.events.List(ctx, repositories.EventFilter{})
}

// BulkSetEventStatus forces the status of many events. Admins are not bound
// by the college transition rules.
func (s *AdminService) BulkSetEventStatus(ctx context.Context, ids []int64, status models.EventStatus) (*dto.BulkResult, error) {
	if !status.Valid() {
		return nil, apperrors.NewValidationError("status", "unknown event status")
	}
	updated, err := s.events.BulkUpdateStatus(ctx, ids, status)
	if err != nil {
		return nil, err
	}
	s.catalog.Invalidate()
	return &dto.BulkResult{Requested: len(ids), Updated: updated}, nil
}

// ListOpportunities returns every opportunity, inactive included
func (s *AdminService) ListOpportunities(ctx context.Context) ([]models.Opportunity, error) {
	return s.opportunities.List(ctx, repositories.OpportunityFilter{})
}

// CreateOpportunity adds a platform listing with no company
func (s *AdminService) CreateOpportunity(ctx context.Context, adminID int64, req *dto.OpportunityRequest) (*models.Opportunity, error) {
	opp := &models.Opportunity{CreatedBy: adminID}
	if err := applyOpportunityRequest(opp, req, true); err != nil {
		return nil, err
	}
	if err := s.opportunities.Create(ctx, opp); err != nil {
		return nil, fmt.Errorf("failed to create opportunity: %w", err)
	}
	s.catalog.Invalidate()
	return s.opportunities.GetByID(ctx, opp.ID)
}

// BulkSetOpportunityActive activates or deactivates many opportunities
func (s *AdminService) BulkSetOpportunityActive(ctx context.Context, ids []int64, active bool) (*dto.BulkResult, error) {
	updated, err := s.opportunities.BulkSetActive(ctx, ids, active)
	if err != nil {
		return nil, err
	}
	s.catalog.Invalidate()
	return &dto.BulkResult{Requested: len(ids), Updated: updated}, nil
}

// RefundPayment moves a completed payment to refunded and cancels its registration
func (s *AdminService) RefundPayment(ctx context.Context, paymentID int64) (*models.Registration, error) {
	payment, err := s.registrations.GetPayment(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if err := s.registrations.RefundPayment(ctx, paymentID); err != nil {
		return nil, err
	}
	s.logger.Info().Int64("paymentID", paymentID).Msg("Payment refunded")
	return s.registrations.GetByID(ctx, payment.RegistrationID)
}

// Stats returns the platform overview counters
func (s *AdminService) Stats(ctx context.Context) (*models.PlatformStats, error) {
	stats := &models.PlatformStats{}
	var err error

	if stats.UsersByRole, err = s.accounts.CountByRole(ctx); err != nil {
		return nil, err
	}
	if stats.EventsByStatus, err = s.events.CountByStatus(ctx); err != nil {
		return nil, err
	}
	if stats.OpportunitiesByType, err = s.opportunities.CountByType(ctx); err != nil {
		return nil, err
	}
	if stats.TotalRegistrations, err = s.registrations.Count(ctx); err != nil {
		return nil, err
	}
	if stats.TotalApplications, err = s.applications.Count(ctx); err != nil {
		return nil, err
	}
	if stats.CompletedRevenue, err = s.registrations.RevenueByCurrency(ctx); err != nil {
		return nil, err
	}
	return stats, nil
}
