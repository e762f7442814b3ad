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

const (
	student      int64 = 30
	otherStudent int64 = 31
)

func studentFixture() (*fixture, *StudentService) {
	price, currency := int64(2500), "USD"
	deadline := testNow.Add(-time.Hour)
	external := "https://careers.example.com/apply"
	past := testNow.AddDate(0, 0, -1)

	f := newFixture()
	f.events = newFakeEventStore(
		models.Event{ID: 1, Title: "Free Talk", Status: models.EventStatusPublished, IsFree: true,
			StartsAt: testNow.AddDate(0, 0, 7), Capacity: intPtr(1),
			SubEvents: []models.SubEvent{{ID: 11, EventID: 1, Title: "Track A"}}},
		models.Event{ID: 2, Title: "Paid Summit", Status: models.EventStatusPublished,
			StartsAt: testNow.AddDate(0, 0, 7), PriceCents: &price, Currency: &currency},
		models.Event{ID: 3, Title: "Draft", Status: models.EventStatusDraft, IsFree: true,
			StartsAt: testNow.AddDate(0, 0, 7)},
		models.Event{ID: 4, Title: "Closed", Status: models.EventStatusPublished, IsFree: true,
			StartsAt: testNow.AddDate(0, 0, 7), RegistrationDeadline: &deadline},
	)
	f.opportunities = newFakeOpportunityStore(
		models.Opportunity{ID: 1, Type: models.OpportunityJob, Title: "Internal", IsActive: true},
		models.Opportunity{ID: 2, Type: models.OpportunityJob, Title: "External", IsActive: true,
			IsExternal: true, ExternalURL: &external},
		models.Opportunity{ID: 3, Type: models.OpportunityJob, Title: "Inactive", IsActive: false},
		models.Opportunity{ID: 4, Type: models.OpportunityJob, Title: "Expired", IsActive: true, Deadline: &past},
	)
	f.authz = newAuthz(f)
	svc := NewStudentService(f.events, f.opportunities, f.applications, f.registrations, f.authz, nopLogger())
	svc.now = func() time.Time { return testNow }
	return f, svc
}

func TestRegisterFreeEventConfirms(t *testing.T) {
	f, svc := studentFixture()
	ctx := context.Background()

	reg, err := svc.RegisterForEvent(ctx, student, 1, &dto.RegisterEventRequest{SubEventID: int64Ptr(11)})
	require.NoError(t, err)
	assert.Equal(t, models.RegistrationConfirmed, reg.Status)
	assert.Nil(t, reg.Payment)
	require.Len(t, f.registrations.created, 1)
	assert.Equal(t, intPtr(1), f.registrations.created[0].EventCapacity)
	assert.Equal(t, int64Ptr(11), f.registrations.created[0].SubEventID)

	_, err = svc.RegisterForEvent(ctx, student, 1, nil)
	assert.True(t, errors.Is(err, apperrors.ErrAlreadyRegistered))

	_, err = svc.RegisterForEvent(ctx, otherStudent, 1, nil)
	assert.True(t, errors.Is(err, apperrors.ErrEventFull))
}

func TestRegisterRejects(t *testing.T) {
	_, svc := studentFixture()
	ctx := context.Background()

	_, err := svc.RegisterForEvent(ctx, student, 3, nil)
	assert.True(t, errors.Is(err, apperrors.ErrEventNotFound), "drafts are invisible")

	_, err = svc.RegisterForEvent(ctx, student, 4, nil)
	assert.True(t, errors.Is(err, apperrors.ErrRegistrationClosed))

	_, err = svc.RegisterForEvent(ctx, student, 1, &dto.RegisterEventRequest{SubEventID: int64Ptr(999)})
	assert.True(t, errors.Is(err, apperrors.ErrResourceNotFound))
}

func TestPaidRegistrationPaymentFlow(t *testing.T) {
	_, svc := studentFixture()
	ctx := context.Background()

	reg, err := svc.RegisterForEvent(ctx, student, 2, nil)
	require.NoError(t, err)
	assert.Equal(t, models.RegistrationPendingPayment, reg.Status)
	require.NotNil(t, reg.Payment)
	assert.Equal(t, int64(2500), reg.Payment.AmountCents)
	assert.Equal(t, "USD", reg.Payment.Currency)
	assert.Equal(t, models.PaymentPending, reg.Payment.Status)

	_, err = svc.CompletePayment(ctx, otherStudent, reg.Payment.ID, "tx-1")
	assert.True(t, errors.Is(err, apperrors.ErrPermissionDenied))

	done, err := svc.CompletePayment(ctx, student, reg.Payment.ID, " tx-1 ")
	require.NoError(t, err)
	assert.Equal(t, models.RegistrationConfirmed, done.Status)
	assert.Equal(t, models.PaymentCompleted, done.Payment.Status)
	assert.Equal(t, "tx-1", *done.Payment.ProviderRef)

	_, err = svc.FailPayment(ctx, student, reg.Payment.ID)
	assert.True(t, errors.Is(err, apperrors.ErrInvalidStateTransition))
}

func TestCancelRegistration(t *testing.T) {
	_, svc := studentFixture()
	ctx := context.Background()

	reg, err := svc.RegisterForEvent(ctx, student, 2, nil)
	require.NoError(t, err)

	_, err = svc.CancelRegistration(ctx, otherStudent, reg.ID)
	assert.True(t, errors.Is(err, apperrors.ErrPermissionDenied))

	cancelled, err := svc.CancelRegistration(ctx, student, reg.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RegistrationCancelled, cancelled.Status)
	assert.Equal(t, models.PaymentFailed, cancelled.Payment.Status)

	_, err = svc.CancelRegistration(ctx, student, reg.ID)
	assert.True(t, errors.Is(err, apperrors.ErrInvalidStateTransition))

	regs, err := svc.ListRegistrations(ctx, student)
	require.NoError(t, err)
	assert.Len(t, regs, 1)
}

func TestReregisterAfterCancel(t *testing.T) {
	t.Run("paid seat is kept", func(t *testing.T) {
		f, svc := studentFixture()
		ctx := context.Background()

		reg, err := svc.RegisterForEvent(ctx, student, 2, nil)
		require.NoError(t, err)
		_, err = svc.CompletePayment(ctx, student, reg.Payment.ID, "tx-1")
		require.NoError(t, err)
		_, err = svc.CancelRegistration(ctx, student, reg.ID)
		require.NoError(t, err)

		again, err := svc.RegisterForEvent(ctx, student, 2, nil)
		require.NoError(t, err)
		assert.Equal(t, reg.ID, again.ID)
		assert.Equal(t, models.RegistrationConfirmed, again.Status)
		assert.Equal(t, reg.Payment.ID, again.Payment.ID)
		assert.Equal(t, models.PaymentCompleted, again.Payment.Status)
		assert.Len(t, f.registrations.payments, 1, "no second charge")
	})

	t.Run("unpaid seat charges again and keeps history", func(t *testing.T) {
		f, svc := studentFixture()
		ctx := context.Background()

		reg, err := svc.RegisterForEvent(ctx, student, 2, nil)
		require.NoError(t, err)
		_, err = svc.CancelRegistration(ctx, student, reg.ID)
		require.NoError(t, err)

		again, err := svc.RegisterForEvent(ctx, student, 2, nil)
		require.NoError(t, err)
		assert.Equal(t, reg.ID, again.ID)
		assert.Equal(t, models.RegistrationPendingPayment, again.Status)
		assert.NotEqual(t, reg.Payment.ID, again.Payment.ID)
		assert.Equal(t, models.PaymentPending, again.Payment.Status)

		old, err := f.registrations.GetPayment(ctx, reg.Payment.ID)
		require.NoError(t, err)
		assert.Equal(t, models.PaymentFailed, old.Status)
	})
}

func TestRegisterRejectsInactiveCollegeEvent(t *testing.T) {
	f, svc := studentFixture()
	f.events.events[1].CollegeInactive = true

	_, err := svc.RegisterForEvent(context.Background(), student, 1, nil)
	assert.True(t, errors.Is(err, apperrors.ErrEventNotFound))
}

func TestApply(t *testing.T) {
	f, svc := studentFixture()
	ctx := context.Background()

	resp, err := svc.Apply(ctx, student, 2, &dto.ApplyRequest{})
	require.NoError(t, err)
	assert.Equal(t, "https://careers.example.com/apply", resp.RedirectURL)
	assert.Nil(t, resp.Application)
	assert.Empty(t, f.applications.apps, "external listings record nothing")

	letter := "  I like Go.  "
	resp, err = svc.Apply(ctx, student, 1, &dto.ApplyRequest{CoverLetter: &letter})
	require.NoError(t, err)
	require.NotNil(t, resp.Application)
	assert.Equal(t, "I like Go.", *resp.Application.CoverLetter)
	assert.Equal(t, models.ApplicationSubmitted, resp.Application.Status)

	_, err = svc.Apply(ctx, student, 1, nil)
	assert.True(t, errors.Is(err, apperrors.ErrAlreadyApplied))

	_, err = svc.Apply(ctx, student, 3, nil)
	assert.True(t, errors.Is(err, apperrors.ErrBadRequest))

	_, err = svc.Apply(ctx, student, 4, nil)
	assert.True(t, errors.Is(err, apperrors.ErrBadRequest))

	badResume := "resume.pdf"
	_, err = svc.Apply(ctx, otherStudent, 1, &dto.ApplyRequest{ResumeURL: &badResume})
	assert.True(t, errors.Is(err, apperrors.ErrValidationFailed))

	apps, err := svc.ListApplications(ctx, student)
	require.NoError(t, err)
	assert.Len(t, apps, 1)
}
