package services

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	appauth "github.com/yigit/campushub/internal/app/auth"
	"github.com/yigit/campushub/internal/app/models"
	"github.com/yigit/campushub/internal/app/models/dto"
	"github.com/yigit/campushub/internal/app/repositories"
	"github.com/yigit/campushub/internal/pkg/apperrors"
	"github.com/yigit/campushub/internal/pkg/filestorage"
)

// CollegeService backs the college dashboard. Every operation is scoped to
// the college owned by the calling account.
type CollegeService struct {
	colleges      CollegeStore
	events        EventStore
	opportunities OpportunityStore
	registrations RegistrationStore
	authz         *appauth.AuthorizationService
	media         *MediaService
	catalog       *CatalogService
	logger        zerolog.Logger
}

// NewCollegeService creates a new CollegeService
func NewCollegeService(
	colleges CollegeStore,
	events EventStore,
	opportunities OpportunityStore,
	registrations RegistrationStore,
	authz *appauth.AuthorizationService,
	media *MediaService,
	catalog *CatalogService,
	logger zerolog.Logger,
) *CollegeService {
	return &CollegeService{
		colleges:      colleges,
		events:        events,
		opportunities: opportunities,
		registrations: registrations,
		authz:         authz,
		media:         media,
		catalog:       catalog,
		logger:        logger,
	}
}

// GetProfile returns the caller's college
func (s *CollegeService) GetProfile(ctx context.Context, userID int64) (*models.College, error) {
	return s.authz.CollegeOf(ctx, userID)
}

// UpdateProfile edits name, description, location and website
func (s *CollegeService) UpdateProfile(ctx context.Context, userID int64, req *dto.UpdateCollegeRequest) (*models.College, error) {
	college, err := s.authz.CollegeOf(ctx, userID)
	if err != nil {
		return nil, err
	}
	name, err := checkOrganizationFields(req.Name, req.Website)
	if err != nil {
		return nil, err
	}

	college.Name = name
	college.Description = req.Description
	college.Location = req.Location
	college.Website = req.Website
	if err := s.colleges.Update(ctx, college); err != nil {
		return nil, fmt.Errorf("failed to update college: %w", err)
	}
	s.catalog.Invalidate()
	return s.colleges.GetByID(ctx, college.ID)
}

// UploadLogo replaces the college logo
func (s *CollegeService) UploadLogo(ctx context.Context, userID int64, file io.Reader) (string, error) {
	college, err := s.authz.CollegeOf(ctx, userID)
	if err != nil {
		return "", err
	}
	return s.media.ReplaceImage(ctx, filestorage.BucketLogos, "college-"+strconv.FormatInt(college.ID, 10), file, college.LogoURL,
		func(url string) error {
			return s.colleges.UpdateLogo(ctx, college.ID, url)
		})
}

// ListEvents returns every event of the caller's college
func (s *CollegeService) ListEvents(ctx context.Context, userID int64) ([]models.Event, error) {
	college, err := s.authz.CollegeOf(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.events.List(ctx, repositories.EventFilter{CollegeID: &college.ID})
}

// CreateEvent adds a draft event to the caller's college
func (s *CollegeService) CreateEvent(ctx context.Context, userID int64, req *dto.EventRequest) (*models.Event, error) {
	college, err := s.authz.CollegeOf(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !college.IsActive {
		return nil, apperrors.NewCustomError(apperrors.ErrOrganizationInactive, "inactive colleges cannot create events")
	}

	event := &models.Event{
		CollegeID: college.ID,
		CreatedBy: userID,
		Status:    models.EventStatusDraft,
	}
	if err := applyEventRequest(event, req); err != nil {
		return nil, err
	}
	if err := s.events.Create(ctx, event); err != nil {
		return nil, fmt.Errorf("failed to create event: %w", err)
	}

	s.logger.Info().Int64("eventID", event.ID).Int64("collegeID", college.ID).Msg("Event created")
	return s.events.GetByID(ctx, event.ID)
}

// GetEvent returns one of the caller's events
func (s *CollegeService) GetEvent(ctx context.Context, userID, eventID int64) (*models.Event, error) {
	event, _, err := s.authz.OwnedEvent(ctx, userID, eventID)
	return event, err
}

// UpdateEvent replaces the editable fields of one of the caller's events
func (s *CollegeService) UpdateEvent(ctx context.Context, userID, eventID int64, req *dto.EventRequest) (*models.Event, error) {
	event, _, err := s.authz.OwnedEvent(ctx, userID, eventID)
	if err != nil {
		return nil, err
	}
	if err := applyEventRequest(event, req); err != nil {
		return nil, err
	}
	if err := s.events.Update(ctx, event); err != nil {
		return nil, fmt.Errorf("failed to update event: %w", err)
	}
	s.catalog.Invalidate()
	return s.events.GetByID(ctx, eventID)
}

// DeleteEvent removes one of the caller's events and its banner. Events
// holding completed payments must be refunded or cancelled instead.
func (s *CollegeService) DeleteEvent(ctx context.Context, userID, eventID int64) error {
	event, _, err := s.authz.OwnedEvent(ctx, userID, eventID)
	if err != nil {
		return err
	}
	paid, err := s.registrations.CountCompletedPayments(ctx, eventID)
	if err != nil {
		return fmt.Errorf("failed to check event payments: %w", err)
	}
	if paid > 0 {
		return apperrors.NewConflictError(
			fmt.Sprintf("event has %d completed payments; refund them or cancel the event instead", paid))
	}
	if err := s.events.Delete(ctx, eventID); err != nil {
		return fmt.Errorf("failed to delete event: %w", err)
	}
	s.media.RemoveByURL(ctx, filestorage.BucketBanners, event.BannerURL)
	s.catalog.Invalidate()
	s.logger.Info().Int64("eventID", eventID).Msg("Event deleted")
	return nil
}

// ChangeEventStatus moves an event along draft→published→completed, or to cancelled
func (s *CollegeService) ChangeEventStatus(ctx context.Context, userID, eventID int64, status models.EventStatus) (*models.Event, error) {
	if !status.Valid() {
		return nil, apperrors.NewValidationError("status", "unknown event status")
	}
	event, _, err := s.authz.OwnedEvent(ctx, userID, eventID)
	if err != nil {
		return nil, err
	}
	if !event.Status.CanTransitionTo(status) {
		return nil, apperrors.NewCustomError(apperrors.ErrInvalidStateTransition,
			fmt.Sprintf("cannot move event from %s to %s", event.Status, status))
	}
	if err := s.events.UpdateStatus(ctx, eventID, status); err != nil {
		return nil, fmt.Errorf("failed to update event status: %w", err)
	}
	s.catalog.Invalidate()
	return s.events.GetByID(ctx, eventID)
}

// UploadBanner replaces the banner of one of the caller's events
func (s *CollegeService) UploadBanner(ctx context.Context, userID, eventID int64, file io.Reader) (string, error) {
	event, _, err := s.authz.OwnedEvent(ctx, userID, eventID)
	if err != nil {
		return "", err
	}
	url, err := s.media.ReplaceImage(ctx, filestorage.BucketBanners, "event-"+strconv.FormatInt(eventID, 10), file, event.BannerURL,
		func(url string) error {
			return s.events.UpdateBanner(ctx, eventID, url)
		})
	if err != nil {
		return "", err
	}
	s.catalog.Invalidate()
	return url, nil
}

// AddSubEvent adds a sub-event and returns the refreshed event
func (s *CollegeService) AddSubEvent(ctx context.Context, userID, eventID int64, req *dto.SubEventRequest) (*models.Event, error) {
	if _, _, err := s.authz.OwnedEvent(ctx, userID, eventID); err != nil {
		return nil, err
	}
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, apperrors.NewValidationError("title", "title is required")
	}

	sub := &models.SubEvent{
		EventID:     eventID,
		Title:       title,
		Description: req.Description,
		StartsAt:    req.StartsAt,
		Capacity:    req.Capacity,
	}
	if err := s.events.CreateSubEvent(ctx, sub); err != nil {
		return nil, fmt.Errorf("failed to create sub-event: %w", err)
	}
	s.catalog.Invalidate()
	return s.events.GetByID(ctx, eventID)
}

// DeleteSubEvent removes a sub-event and returns the refreshed event
func (s *CollegeService) DeleteSubEvent(ctx context.Context, userID, eventID, subEventID int64) (*models.Event, error) {
	if _, _, err := s.authz.OwnedEvent(ctx, userID, eventID); err != nil {
		return nil, err
	}
	if err := s.events.DeleteSubEvent(ctx, eventID, subEventID); err != nil {
		return nil, err
	}
	s.catalog.Invalidate()
	return s.events.GetByID(ctx, eventID)
}

// ListEventRegistrations returns the attendees of one of the caller's events
func (s *CollegeService) ListEventRegistrations(ctx context.Context, userID, eventID int64) ([]models.Registration, error) {
	if _, _, err := s.authz.OwnedEvent(ctx, userID, eventID); err != nil {
		return nil, err
	}
	return s.registrations.ListByEvent(ctx, eventID)
}

// ListOpportunities returns the listings the caller created without a company
func (s *CollegeService) ListOpportunities(ctx context.Context, userID int64) ([]models.Opportunity, error) {
	if _, err := s.authz.CollegeOf(ctx, userID); err != nil {
		return nil, err
	}
	return s.opportunities.List(ctx, repositories.OpportunityFilter{CreatedBy: &userID, WithoutCompany: true})
}

// CreateOpportunity adds a college-run listing with no company
func (s *CollegeService) CreateOpportunity(ctx context.Context, userID int64, req *dto.OpportunityRequest) (*models.Opportunity, error) {
	college, err := s.authz.CollegeOf(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !college.IsActive {
		return nil, apperrors.NewCustomError(apperrors.ErrOrganizationInactive, "inactive colleges cannot create opportunities")
	}

	opp := &models.Opportunity{CreatedBy: userID}
	if err := applyOpportunityRequest(opp, req, true); err != nil {
		return nil, err
	}
	if err := s.opportunities.Create(ctx, opp); err != nil {
		return nil, fmt.Errorf("failed to create opportunity: %w", err)
	}
	s.catalog.Invalidate()
	return s.opportunities.GetByID(ctx, opp.ID)
}
