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

func catalogEvents() []models.Event {
	workshop := "workshop"
	return []models.Event{
		{ID: 1, CollegeID: 7, CollegeName: "Northfield College", Title: "Go Workshop", Description: "Concurrency basics",
			Category: &workshop, Tags: []string{"Go", "Backend"}, StartsAt: testNow.AddDate(0, 0, 3), Status: models.EventStatusPublished},
		{ID: 2, CollegeID: 7, CollegeName: "Northfield College", Title: "Career Fair", Description: "Meet employers",
			Tags: []string{"careers"}, StartsAt: testNow.AddDate(0, 0, 5), Status: models.EventStatusPublished},
		{ID: 3, CollegeID: 7, CollegeName: "Northfield College", Title: "Draft Party",
			StartsAt: testNow.AddDate(0, 0, 1), Status: models.EventStatusDraft},
	}
}

func TestListEventsFiltersPublishedLiveSet(t *testing.T) {
	f := newFixture()
	f.events = newFakeEventStore(catalogEvents()...)
	svc := NewCatalogService(f.events, f.opportunities, 0, true, nopLogger())
	ctx := context.Background()

	resp, err := svc.ListEvents(ctx, dto.EventQuery{})
	require.NoError(t, err)
	assert.False(t, resp.Sample)
	require.Len(t, resp.Items, 2)
	assert.Equal(t, "Go Workshop", resp.Items[0].Title)

	tests := []struct {
		name string
		q    dto.EventQuery
		want []int64
	}{
		{"search title", dto.EventQuery{Q: "career"}, []int64{2}},
		{"search description", dto.EventQuery{Q: "CONCURRENCY"}, []int64{1}},
		{"search college name", dto.EventQuery{Q: "northfield"}, []int64{1, 2}},
		{"tag any case", dto.EventQuery{Tag: "go"}, []int64{1}},
		{"category", dto.EventQuery{Category: "Workshop"}, []int64{1}},
		{"no match", dto.EventQuery{Q: "quantum"}, []int64{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := svc.ListEvents(ctx, tt.q)
			require.NoError(t, err)
			ids := []int64{}
			for _, e := range resp.Items {
				ids = append(ids, e.ID)
			}
			assert.Equal(t, tt.want, ids)
		})
	}
}

func TestListEventsFallsBackToSamples(t *testing.T) {
	f := newFixture()

	resp, err := f.catalog.ListEvents(context.Background(), dto.EventQuery{})
	require.NoError(t, err)
	assert.True(t, resp.Sample)
	assert.NotEmpty(t, resp.Items)
	for _, e := range resp.Items {
		assert.Less(t, e.ID, int64(0))
	}

	noFallback := NewCatalogService(f.events, f.opportunities, 0, false, nopLogger())
	resp, err = noFallback.ListEvents(context.Background(), dto.EventQuery{})
	require.NoError(t, err)
	assert.False(t, resp.Sample)
	assert.Empty(t, resp.Items)
}

func TestCatalogCacheAndInvalidate(t *testing.T) {
	f := newFixture()
	f.events = newFakeEventStore(catalogEvents()...)
	svc := NewCatalogService(f.events, f.opportunities, 30*time.Second, true, nopLogger())
	ctx := context.Background()

	_, err := svc.ListEvents(ctx, dto.EventQuery{})
	require.NoError(t, err)
	_, err = svc.ListEvents(ctx, dto.EventQuery{Q: "go"})
	require.NoError(t, err)
	assert.Equal(t, 1, f.events.listCalls)

	svc.Invalidate()
	_, err = svc.ListEvents(ctx, dto.EventQuery{})
	require.NoError(t, err)
	assert.Equal(t, 2, f.events.listCalls)
}

func TestGetEventHidesUnpublished(t *testing.T) {
	f := newFixture()
	f.events = newFakeEventStore(catalogEvents()...)
	svc := NewCatalogService(f.events, f.opportunities, 0, true, nopLogger())

	e, err := svc.GetEvent(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "Go Workshop", e.Title)

	_, err = svc.GetEvent(context.Background(), 3)
	assert.True(t, errors.Is(err, apperrors.ErrEventNotFound))

	f.events.events[1].CollegeInactive = true
	_, err = svc.GetEvent(context.Background(), 1)
	assert.True(t, errors.Is(err, apperrors.ErrEventNotFound), "deactivated college")
}

func TestListOpportunities(t *testing.T) {
	companyID := int64(4)
	f := newFixture()
	f.opportunities = newFakeOpportunityStore(
		models.Opportunity{ID: 1, CompanyID: &companyID, CompanyName: "Acme", Type: models.OpportunityInternship,
			Title: "Backend Intern", Tags: []string{"Go"}, IsActive: true},
		models.Opportunity{ID: 2, Type: models.OpportunityHackathon, Title: "Campus Hack", IsActive: true},
		models.Opportunity{ID: 3, Type: models.OpportunityJob, Title: "Closed Job", IsActive: false},
	)
	svc := NewCatalogService(f.events, f.opportunities, 0, true, nopLogger())
	ctx := context.Background()

	resp, err := svc.ListOpportunities(ctx, dto.OpportunityQuery{})
	require.NoError(t, err)
	assert.False(t, resp.Sample)
	assert.Len(t, resp.Items, 2)

	resp, err = svc.ListOpportunities(ctx, dto.OpportunityQuery{Type: "HACKATHON"})
	require.NoError(t, err)
	require.Len(t, resp.Items, 1)
	assert.Equal(t, int64(2), resp.Items[0].ID)

	resp, err = svc.ListOpportunities(ctx, dto.OpportunityQuery{Q: "acme"})
	require.NoError(t, err)
	require.Len(t, resp.Items, 1)
	assert.Equal(t, int64(1), resp.Items[0].ID)

	_, err = svc.GetOpportunity(ctx, 3)
	assert.True(t, errors.Is(err, apperrors.ErrOpportunityNotFound))

	f.opportunities.opps[1].CompanyInactive = true
	_, err = svc.GetOpportunity(ctx, 1)
	assert.True(t, errors.Is(err, apperrors.ErrOpportunityNotFound), "deactivated company")
}

func TestSampleOpportunitiesIncludeExternal(t *testing.T) {
	resp, err := newFixture().catalog.ListOpportunities(context.Background(), dto.OpportunityQuery{})
	require.NoError(t, err)
	assert.True(t, resp.Sample)

	external := 0
	for _, o := range resp.Items {
		if o.IsExternal {
			external++
			assert.NotNil(t, o.ExternalURL)
		}
	}
	assert.Equal(t, 1, external)
}
