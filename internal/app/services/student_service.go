package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	appauth "github.com/yigit/campushub/internal/app/auth"
	"github.com/yigit/campushub/internal/app/models"
	"github.com/yigit/campushub/internal/app/models/dto"
	"github.com/yigit/campushub/internal/app/repositories"
	"github.com/yigit/campushub/internal/pkg/apperrors"
	"github.com/yigit/campushub/internal/pkg/helpers"
	"github.com/yigit/campushub/internal/pkg/validation"
)

// StudentService handles event registration, payments and applications
type StudentService struct {
	events        EventStore
	opportunities OpportunityStore
	applications  ApplicationStore
	registrations RegistrationStore
	authz         *appauth.AuthorizationService
	logger        zerolog.Logger
	now           func() time.Time
}

// NewStudentService creates a new StudentService
func NewStudentService(
	events EventStore,
	opportunities OpportunityStore,
	applications ApplicationStore,
	registrations RegistrationStore,
	authz *appauth.AuthorizationService,
	logger zerolog.Logger,
) *StudentService {
	return &StudentService{
		events:        events,
		opportunities: opportunities,
		applications:  applications,
		registrations: registrations,
		authz:         authz,
		logger:        logger,
		now:           time.Now,
	}
}

// ListRegistrations returns the caller's registrations ordered by event start
func (s *StudentService) ListRegistrations(ctx context.Context, userID int64) ([]models.Registration, error) {
	return s.registrations.ListByUser(ctx, userID)
}

// ListApplications returns the caller's applications
func (s *StudentService) ListApplications(ctx context.Context, userID int64) ([]models.Application, error) {
	return s.applications.ListByUser(ctx, userID)
}

// RegisterForEvent registers the caller for a published event, optionally for
// one of its sub-events. Priced events start in pending_payment with a pending
// payment for the event price.
func (s *StudentService) RegisterForEvent(ctx context.Context, userID, eventID int64, req *dto.RegisterEventRequest) (*models.Registration, error) {
	event, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if !event.Listed() {
		return nil, apperrors.ErrEventNotFound
	}
	if !event.RegistrationOpen(s.now()) {
		return nil, apperrors.NewCustomError(apperrors.ErrRegistrationClosed, "registration for this event is closed")
	}

	params := repositories.RegistrationParams{
		EventID:       eventID,
		UserID:        userID,
		Status:        models.RegistrationConfirmed,
		EventCapacity: event.Capacity,
	}
	if req != nil && req.SubEventID != nil {
		sub, err := s.events.GetSubEvent(ctx, eventID, *req.SubEventID)
		if err != nil {
			return nil, err
		}
		params.SubEventID = &sub.ID
		params.SubEventCapacity = sub.Capacity
	}
	if amount, currency := event.Price(); amount > 0 {
		params.Status = models.RegistrationPendingPayment
		params.Payment = &models.Payment{
			AmountCents: amount,
			Currency:    currency,
			Status:      models.PaymentPending,
		}
	}

	reg, err := s.registrations.Create(ctx, params)
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Int64("eventID", eventID).
		Int64("userID", userID).
		Str("status", string(reg.Status)).
		Msg("Event registration recorded")
	return reg, nil
}

// CancelRegistration cancels one of the caller's registrations
func (s *StudentService) CancelRegistration(ctx context.Context, userID, registrationID int64) (*models.Registration, error) {
	if _, err := s.authz.OwnedRegistration(ctx, userID, registrationID); err != nil {
		return nil, err
	}
	if err := s.registrations.Cancel(ctx, registrationID); err != nil {
		return nil, err
	}
	return s.registrations.GetByID(ctx, registrationID)
}

// CompletePayment marks a pending payment as paid and confirms its registration
func (s *StudentService) CompletePayment(ctx context.Context, userID, paymentID int64, providerRef string) (*models.Registration, error) {
	payment, err := s.authz.OwnedPayment(ctx, userID, paymentID)
	if err != nil {
		return nil, err
	}
	if err := s.registrations.CompletePayment(ctx, paymentID, helpers.NilIfBlank(providerRef)); err != nil {
		return nil, err
	}
	s.logger.Info().Int64("paymentID", paymentID).Int64("userID", userID).Msg("Payment completed")
	return s.registrations.GetByID(ctx, payment.RegistrationID)
}

// FailPayment marks a pending payment as failed. The registration stays
// pending_payment.
func (s *StudentService) FailPayment(ctx context.Context, userID, paymentID int64) (*models.Registration, error) {
	payment, err := s.authz.OwnedPayment(ctx, userID, paymentID)
	if err != nil {
		return nil, err
	}
	if err := s.registrations.FailPayment(ctx, paymentID); err != nil {
		return nil, err
	}
	return s.registrations.GetByID(ctx, payment.RegistrationID)
}

// Apply records an application to an internal listing. External listings
// record nothing and return the URL to send the student to.
func (s *StudentService) Apply(ctx context.Context, userID, opportunityID int64, req *dto.ApplyRequest) (*dto.ApplyResponse, error) {
	opp, err := s.opportunities.GetByID(ctx, opportunityID)
	if err != nil {
		return nil, err
	}
	if !opp.AcceptingApplications(s.now()) {
		return nil, apperrors.NewBadRequestError("this opportunity is not accepting applications")
	}

	if opp.IsExternal {
		return &dto.ApplyResponse{RedirectURL: helpers.StringOrEmpty(opp.ExternalURL)}, nil
	}

	app := &models.Application{
		OpportunityID: opportunityID,
		UserID:        userID,
		Status:        models.ApplicationSubmitted,
	}
	if req != nil {
		if req.CoverLetter != nil {
			app.CoverLetter = helpers.NilIfBlank(*req.CoverLetter)
		}
		if req.ResumeURL != nil {
			resume := strings.TrimSpace(*req.ResumeURL)
			if err := validation.CheckOptionalURL(resume); err != nil {
				return nil, apperrors.NewValidationError("resumeUrl", err.Error())
			}
			app.ResumeURL = helpers.NilIfBlank(resume)
		}
	}

	if err := s.applications.Create(ctx, app); err != nil {
		return nil, err
	}
	created, err := s.applications.GetByID(ctx, app.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load application: %w", err)
	}
	return &dto.ApplyResponse{Application: created}, nil
}
