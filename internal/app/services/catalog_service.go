package services

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/yigit/campushub/internal/app/models"
	"github.com/yigit/campushub/internal/app/models/dto"
	"github.com/yigit/campushub/internal/app/repositories"
	"github.com/yigit/campushub/internal/pkg/apperrors"
	"github.com/yigit/campushub/internal/pkg/cache"
	"github.com/yigit/campushub/internal/pkg/helpers"
)

const (
	eventsCacheKey        = "catalog:events"
	opportunitiesCacheKey = "catalog:opportunities"
)

// CatalogService serves the public event and opportunity listings
type CatalogService struct {
	events         EventStore
	opportunities  OpportunityStore
	eventCache     *cache.Store[[]models.Event]
	oppCache       *cache.Store[[]models.Opportunity]
	sampleFallback bool
	logger         zerolog.Logger
	now            func() time.Time
}

// NewCatalogService creates a new CatalogService. ttl <= 0 disables caching.
func NewCatalogService(events EventStore, opportunities OpportunityStore, ttl time.Duration, sampleFallback bool, logger zerolog.Logger) *CatalogService {
	return &CatalogService{
		events:         events,
		opportunities:  opportunities,
		eventCache:     cache.New[[]models.Event](ttl),
		oppCache:       cache.New[[]models.Opportunity](ttl),
		sampleFallback: sampleFallback,
		logger:         logger,
		now:            time.Now,
	}
}

// Invalidate drops the cached live sets after a dashboard mutation
func (s *CatalogService) Invalidate() {
	s.eventCache.Flush()
	s.oppCache.Flush()
	s.logger.Debug().Msg("Catalog cache invalidated")
}

func (s *CatalogService) liveEvents(ctx context.Context) ([]models.Event, error) {
	if events, ok := s.eventCache.Get(eventsCacheKey); ok {
		return events, nil
	}
	events, err := s.events.List(ctx, repositories.EventFilter{
		Statuses:           []models.EventStatus{models.EventStatusPublished},
		OnlyActiveColleges: true,
	})
	if err != nil {
		return nil, err
	}
	s.eventCache.Set(eventsCacheKey, events)
	return events, nil
}

func (s *CatalogService) liveOpportunities(ctx context.Context) ([]models.Opportunity, error) {
	if opps, ok := s.oppCache.Get(opportunitiesCacheKey); ok {
		return opps, nil
	}
	opps, err := s.opportunities.List(ctx, repositories.OpportunityFilter{
		OnlyActive:          true,
		OnlyActiveCompanies: true,
	})
	if err != nil {
		return nil, err
	}
	s.oppCache.Set(opportunitiesCacheKey, opps)
	return opps, nil
}

// ListEvents returns published events matching the query
func (s *CatalogService) ListEvents(ctx context.Context, q dto.EventQuery) (*dto.EventListResponse, error) {
	live, err := s.liveEvents(ctx)
	if err != nil {
		return nil, err
	}

	source, sample := live, false
	if len(live) == 0 && s.sampleFallback {
		source, sample = sampleEvents(s.now()), true
	}

	return &dto.EventListResponse{Items: FilterEvents(source, q), Sample: sample}, nil
}

// GetEvent returns a published event of an active college
func (s *CatalogService) GetEvent(ctx context.Context, id int64) (*models.Event, error) {
	event, err := s.events.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !event.Listed() {
		return nil, apperrors.ErrEventNotFound
	}
	return event, nil
}

// ListOpportunities returns active opportunities matching the query
func (s *CatalogService) ListOpportunities(ctx context.Context, q dto.OpportunityQuery) (*dto.OpportunityListResponse, error) {
	live, err := s.liveOpportunities(ctx)
	if err != nil {
		return nil, err
	}

	source, sample := live, false
	if len(live) == 0 && s.sampleFallback {
		source, sample = sampleOpportunities(s.now()), true
	}

	return &dto.OpportunityListResponse{Items: FilterOpportunities(source, q), Sample: sample}, nil
}

// GetOpportunity returns an active opportunity whose company is active
func (s *CatalogService) GetOpportunity(ctx context.Context, id int64) (*models.Opportunity, error) {
	opp, err := s.opportunities.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !opp.Listed() {
		return nil, apperrors.ErrOpportunityNotFound
	}
	return opp, nil
}

// FilterEvents applies search, tag and category filters in memory
func FilterEvents(events []models.Event, q dto.EventQuery) []models.Event {
	search := strings.TrimSpace(q.Q)
	tag := strings.TrimSpace(q.Tag)
	category := strings.TrimSpace(q.Category)

	out := make([]models.Event, 0, len(events))
	for _, e := range events {
		if search != "" && !helpers.ContainsFold(e.Title, search) &&
			!helpers.ContainsFold(e.Description, search) &&
			!helpers.ContainsFold(e.CollegeName, search) {
			continue
		}
		if tag != "" && !helpers.HasTagFold(e.Tags, tag) {
			continue
		}
		if category != "" && !strings.EqualFold(helpers.StringOrEmpty(e.Category), category) {
			continue
		}
		out = append(out, e)
	}
	return out
}

// FilterOpportunities applies type, search and tag filters in memory
func FilterOpportunities(opps []models.Opportunity, q dto.OpportunityQuery) []models.Opportunity {
	search := strings.TrimSpace(q.Q)
	tag := strings.TrimSpace(q.Tag)
	oppType := models.OpportunityType(strings.ToLower(strings.TrimSpace(q.Type)))

	out := make([]models.Opportunity, 0, len(opps))
	for _, o := range opps {
		if oppType != "" && o.Type != oppType {
			continue
		}
		if search != "" && !helpers.ContainsFold(o.Title, search) &&
			!helpers.ContainsFold(o.Description, search) &&
			!helpers.ContainsFold(o.CompanyName, search) {
			continue
		}
		if tag != "" && !helpers.HasTagFold(o.Tags, tag) {
			continue
		}
		out = append(out, o)
	}
	return out
}
