package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/campushub/internal/app/models"
	"github.com/yigit/campushub/internal/app/models/dto"
	"github.com/yigit/campushub/internal/pkg/apperrors"
)

func inquiryFixture() (*fixture, *InquiryService) {
	acme, gone := int64(1), int64(99)
	f := newFixture()
	f.colleges = newFakeCollegeStore(models.College{ID: 1, OwnerID: collegeOwner, Name: "Northfield", IsActive: true})
	f.companies = newFakeCompanyStore(models.Company{ID: 1, OwnerID: companyOwner, Name: "Acme", IsActive: true})
	f.events = newFakeEventStore(
		models.Event{ID: 1, CollegeID: 1, CreatedBy: 12, Status: models.EventStatusPublished},
		models.Event{ID: 2, CollegeID: 1, CreatedBy: 12, Status: models.EventStatusDraft},
	)
	f.opportunities = newFakeOpportunityStore(
		models.Opportunity{ID: 1, CompanyID: &acme, CreatedBy: 22, IsActive: true},
		models.Opportunity{ID: 2, CreatedBy: 40, IsActive: true},
		models.Opportunity{ID: 3, CompanyID: &gone, CreatedBy: 41, IsActive: true},
	)
	svc := NewInquiryService(f.inquiries, f.events, f.opportunities, f.colleges, f.companies, f.notifier, nopLogger())
	svc.now = func() time.Time { return testNow }
	return f, svc
}

func ask(targetType string, id int64) *dto.CreateInquiryRequest {
	return &dto.CreateInquiryRequest{TargetType: targetType, TargetID: id, Subject: "Question", Message: "Is there parking?"}
}

func TestInquiryRecipientResolution(t *testing.T) {
	_, svc := inquiryFixture()
	ctx := context.Background()

	tests := []struct {
		name   string
		req    *dto.CreateInquiryRequest
		wantTo int64
	}{
		{"event goes to college owner", ask("event", 1), collegeOwner},
		{"company listing goes to company owner", ask("opportunity", 1), companyOwner},
		{"listing without company goes to creator", ask("opportunity", 2), 40},
		{"missing company falls back to creator", ask("opportunity", 3), 41},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inquiry, err := svc.Send(ctx, student, tt.req)
			require.NoError(t, err)
			assert.Equal(t, tt.wantTo, inquiry.RecipientID)
			assert.Equal(t, student, inquiry.SenderID)
		})
	}
}

func TestInquirySendRejects(t *testing.T) {
	f, svc := inquiryFixture()
	ctx := context.Background()

	_, err := svc.Send(ctx, student, ask("event", 2))
	assert.True(t, errors.Is(err, apperrors.ErrEventNotFound))

	f.opportunities.opps[1].CompanyInactive = true
	_, err = svc.Send(ctx, student, ask("opportunity", 1))
	assert.True(t, errors.Is(err, apperrors.ErrOpportunityNotFound))

	_, err = svc.Send(ctx, student, ask("course", 1))
	assert.True(t, errors.Is(err, apperrors.ErrValidationFailed))

	_, err = svc.Send(ctx, collegeOwner, ask("event", 1))
	assert.True(t, errors.Is(err, apperrors.ErrBadRequest))

	blank := ask("event", 1)
	blank.Message = "   "
	_, err = svc.Send(ctx, student, blank)
	assert.True(t, errors.Is(err, apperrors.ErrValidationFailed))
}

func TestInquiryRecipientActions(t *testing.T) {
	f, svc := inquiryFixture()
	ctx := context.Background()

	inquiry, err := svc.Send(ctx, student, ask("event", 1))
	require.NoError(t, err)
	assert.Equal(t, []sentNotification{{userID: collegeOwner, kind: NotifyInquiryReceived}}, f.notifier.sent)

	_, err = svc.MarkRead(ctx, student, inquiry.ID)
	assert.True(t, errors.Is(err, apperrors.ErrPermissionDenied), "sender cannot mark read")

	read, err := svc.MarkRead(ctx, collegeOwner, inquiry.ID)
	require.NoError(t, err)
	assert.True(t, read.IsRead)
	assert.Nil(t, read.RepliedAt)

	replied, err := svc.MarkReplied(ctx, collegeOwner, inquiry.ID)
	require.NoError(t, err)
	require.NotNil(t, replied.RepliedAt)
	assert.Equal(t, testNow, *replied.RepliedAt)
	assert.Equal(t, "Is there parking?", replied.Message)

	inbox, err := svc.Inbox(ctx, collegeOwner)
	require.NoError(t, err)
	assert.Len(t, inbox, 1)
	sent, err := svc.Sent(ctx, student)
	require.NoError(t, err)
	assert.Len(t, sent, 1)
}
