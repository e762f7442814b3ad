package services

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/yigit/campushub/internal/app/models"
	"github.com/yigit/campushub/internal/app/models/dto"
	"github.com/yigit/campushub/internal/pkg/apperrors"
)

// InquiryService routes messages to the owners of events and opportunities
type InquiryService struct {
	inquiries     InquiryStore
	events        EventStore
	opportunities OpportunityStore
	colleges      CollegeStore
	companies     CompanyStore
	notifier      Notifier
	logger        zerolog.Logger
	now           func() time.Time
}

// NewInquiryService creates a new InquiryService
func NewInquiryService(
	inquiries InquiryStore,
	events EventStore,
	opportunities OpportunityStore,
	colleges CollegeStore,
	companies CompanyStore,
	notifier Notifier,
	logger zerolog.Logger,
) *InquiryService {
	return &InquiryService{
		inquiries:     inquiries,
		events:        events,
		opportunities: opportunities,
		colleges:      colleges,
		companies:     companies,
		notifier:      notifierOrNop(notifier),
		logger:        logger,
		now:           time.Now,
	}
}

// recipientFor resolves the owner account of the target. Organization owners
// win; created_by is used when the organization row is gone.
func (s *InquiryService) recipientFor(ctx context.Context, target models.InquiryTarget, id int64) (int64, error) {
	switch target {
	case models.InquiryTargetEvent:
		event, err := s.events.GetByID(ctx, id)
		if err != nil {
			return 0, err
		}
		if !event.Listed() {
			return 0, apperrors.ErrEventNotFound
		}
		if college, err := s.colleges.GetByID(ctx, event.CollegeID); err == nil {
			return college.OwnerID, nil
		}
		return event.CreatedBy, nil

	case models.InquiryTargetOpportunity:
		opp, err := s.opportunities.GetByID(ctx, id)
		if err != nil {
			return 0, err
		}
		if !opp.Listed() {
			return 0, apperrors.ErrOpportunityNotFound
		}
		if opp.CompanyID != nil {
			if company, err := s.companies.GetByID(ctx, *opp.CompanyID); err == nil {
				return company.OwnerID, nil
			}
		}
		return opp.CreatedBy, nil
	}
	return 0, apperrors.NewValidationError("targetType", "targetType must be event or opportunity")
}

// Send stores a new inquiry addressed to the target's owner
func (s *InquiryService) Send(ctx context.Context, senderID int64, req *dto.CreateInquiryRequest) (*models.Inquiry, error) {
	target := models.InquiryTarget(strings.ToLower(strings.TrimSpace(req.TargetType)))
	subject := strings.TrimSpace(req.Subject)
	message := strings.TrimSpace(req.Message)
	if subject == "" {
		return nil, apperrors.NewValidationError("subject", "subject is required")
	}
	if message == "" {
		return nil, apperrors.NewValidationError("message", "message is required")
	}

	recipientID, err := s.recipientFor(ctx, target, req.TargetID)
	if err != nil {
		return nil, err
	}
	if recipientID == senderID {
		return nil, apperrors.NewBadRequestError("cannot send an inquiry about your own listing")
	}

	inquiry := &models.Inquiry{
		SenderID:    senderID,
		RecipientID: recipientID,
		TargetType:  target,
		TargetID:    req.TargetID,
		Subject:     subject,
		Message:     message,
	}
	if err := s.inquiries.Create(ctx, inquiry); err != nil {
		return nil, err
	}

	s.logger.Info().
		Int64("inquiryID", inquiry.ID).
		Str("targetType", string(target)).
		Int64("targetID", req.TargetID).
		Msg("Inquiry sent")
	s.notifier.Notify(recipientID, NotifyInquiryReceived, map[string]any{
		"inquiryId":  inquiry.ID,
		"senderId":   senderID,
		"targetType": target,
		"targetId":   req.TargetID,
		"subject":    subject,
	})
	return s.inquiries.GetByID(ctx, inquiry.ID)
}

// Inbox returns inquiries addressed to userID, newest first
func (s *InquiryService) Inbox(ctx context.Context, userID int64) ([]models.Inquiry, error) {
	return s.inquiries.ListInbox(ctx, userID)
}

// Sent returns inquiries sent by userID, newest first
func (s *InquiryService) Sent(ctx context.Context, userID int64) ([]models.Inquiry, error) {
	return s.inquiries.ListSent(ctx, userID)
}

func (s *InquiryService) receivedBy(ctx context.Context, userID, id int64) error {
	inquiry, err := s.inquiries.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if inquiry.RecipientID != userID {
		return apperrors.NewForbiddenError("only the recipient can update this inquiry")
	}
	return nil
}

// MarkRead flags an inquiry as read
func (s *InquiryService) MarkRead(ctx context.Context, userID, id int64) (*models.Inquiry, error) {
	if err := s.receivedBy(ctx, userID, id); err != nil {
		return nil, err
	}
	if err := s.inquiries.MarkRead(ctx, id); err != nil {
		return nil, err
	}
	return s.inquiries.GetByID(ctx, id)
}

// MarkReplied stamps replied_at. The reply itself travels outside the platform.
func (s *InquiryService) MarkReplied(ctx context.Context, userID, id int64) (*models.Inquiry, error) {
	if err := s.receivedBy(ctx, userID, id); err != nil {
		return nil, err
	}
	if err := s.inquiries.MarkReplied(ctx, id, s.now()); err != nil {
		return nil, err
	}
	return s.inquiries.GetByID(ctx, id)
}
