package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/yigit/campushub/internal/app/models"
	"github.com/yigit/campushub/internal/pkg/apperrors"
	"github.com/yigit/campushub/internal/pkg/logger"
)

// Ownership lookups the authorization checks rely on
type (
	CollegeLookup interface {
		GetByOwner(ctx context.Context, ownerID int64) (*models.College, error)
	}
	CompanyLookup interface {
		GetByOwner(ctx context.Context, ownerID int64) (*models.Company, error)
	}
	EventLookup interface {
		GetByID(ctx context.Context, id int64) (*models.Event, error)
	}
	OpportunityLookup interface {
		GetByID(ctx context.Context, id int64) (*models.Opportunity, error)
	}
	RegistrationLookup interface {
		GetByID(ctx context.Context, id int64) (*models.Registration, error)
		GetPayment(ctx context.Context, id int64) (*models.Payment, error)
	}
)

// AuthorizationService answers "may this account touch that row" for the
// organization dashboards and student actions.
type AuthorizationService struct {
	colleges      CollegeLookup
	companies     CompanyLookup
	events        EventLookup
	opportunities OpportunityLookup
	registrations RegistrationLookup
}

// NewAuthorizationService creates a new AuthorizationService
func NewAuthorizationService(
	colleges CollegeLookup,
	companies CompanyLookup,
	events EventLookup,
	opportunities OpportunityLookup,
	registrations RegistrationLookup,
) *AuthorizationService {
	return &AuthorizationService{
		colleges:      colleges,
		companies:     companies,
		events:        events,
		opportunities: opportunities,
		registrations: registrations,
	}
}

// CollegeOf returns the college owned by userID
func (s *AuthorizationService) CollegeOf(ctx context.Context, userID int64) (*models.College, error) {
	college, err := s.colleges.GetByOwner(ctx, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrOrganizationNotFound) {
			logger.Warn().Int64("userID", userID).Msg("College account without a college row")
			return nil, apperrors.NewCustomError(apperrors.ErrOrganizationNotFound, "no college is linked to this account")
		}
		return nil, fmt.Errorf("failed to load college: %w", err)
	}
	return college, nil
}

// CompanyOf returns the company owned by userID
func (s *AuthorizationService) CompanyOf(ctx context.Context, userID int64) (*models.Company, error) {
	company, err := s.companies.GetByOwner(ctx, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrOrganizationNotFound) {
			logger.Warn().Int64("userID", userID).Msg("Company account without a company row")
			return nil, apperrors.NewCustomError(apperrors.ErrOrganizationNotFound, "no company is linked to this account")
		}
		return nil, fmt.Errorf("failed to load company: %w", err)
	}
	return company, nil
}

// OwnedEvent loads the event and checks it belongs to the caller's college
func (s *AuthorizationService) OwnedEvent(ctx context.Context, userID, eventID int64) (*models.Event, *models.College, error) {
	college, err := s.CollegeOf(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	event, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		return nil, nil, err
	}
	if event.CollegeID != college.ID {
		return nil, nil, apperrors.NewForbiddenError("only the owning college can manage this event")
	}
	return event, college, nil
}

// OwnedOpportunity loads the opportunity and checks it belongs to the caller's company
func (s *AuthorizationService) OwnedOpportunity(ctx context.Context, userID, opportunityID int64) (*models.Opportunity, *models.Company, error) {
	company, err := s.CompanyOf(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	opp, err := s.opportunities.GetByID(ctx, opportunityID)
	if err != nil {
		return nil, nil, err
	}
	if opp.CompanyID == nil || *opp.CompanyID != company.ID {
		return nil, nil, apperrors.NewForbiddenError("only the owning company can manage this opportunity")
	}
	return opp, company, nil
}

// OwnedRegistration loads a registration held by userID
func (s *AuthorizationService) OwnedRegistration(ctx context.Context, userID, registrationID int64) (*models.Registration, error) {
	reg, err := s.registrations.GetByID(ctx, registrationID)
	if err != nil {
		return nil, err
	}
	if reg.UserID != userID {
		return nil, apperrors.NewForbiddenError("this registration belongs to another user")
	}
	return reg, nil
}

// OwnedPayment loads a payment whose registration is held by userID
func (s *AuthorizationService) OwnedPayment(ctx context.Context, userID, paymentID int64) (*models.Payment, error) {
	payment, err := s.registrations.GetPayment(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if payment.UserID != userID {
		return nil, apperrors.NewForbiddenError("this payment belongs to another user")
	}
	return payment, nil
}
