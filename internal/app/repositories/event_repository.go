package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/yigit/campushub/internal/app/models"
	"github.com/yigit/campushub/internal/db"
	"github.com/yigit/campushub/internal/pkg/apperrors"
	"github.com/yigit/campushub/internal/pkg/dberrors"
	"github.com/yigit/campushub/internal/pkg/logger"
)

var eventColumns = []string{
	"e.id", "e.college_id", "c.name", "e.created_by", "e.title", "e.description",
	"e.category", "e.tags", "e.venue", "e.is_online", "e.starts_at", "e.ends_at",
	"e.registration_deadline", "e.capacity", "e.is_free", "e.price_cents",
	"e.currency", "e.status", "e.banner_url", "e.created_at", "e.updated_at",
	"NOT c.is_active",
}

// EventFilter narrows event listings
type EventFilter struct {
	CollegeID *int64
	Statuses  []models.EventStatus
	// OnlyActiveColleges hides events of deactivated colleges
	OnlyActiveColleges bool
}

// EventRepository handles events and their sub-events
type EventRepository struct {
	db db.Querier
	sb squirrel.StatementBuilderType
}

// NewEventRepository creates a new EventRepository
func NewEventRepository(q db.Querier) *EventRepository {
	return &EventRepository{db: q, sb: newStatementBuilder()}
}

func scanEvent(row pgx.Row) (*models.Event, error) {
	var e models.Event
	var status string
	err := row.Scan(
		&e.ID, &e.CollegeID, &e.CollegeName, &e.CreatedBy, &e.Title, &e.Description,
		&e.Category, &e.Tags, &e.Venue, &e.IsOnline, &e.StartsAt, &e.EndsAt,
		&e.RegistrationDeadline, &e.Capacity, &e.IsFree, &e.PriceCents,
		&e.Currency, &status, &e.BannerURL, &e.CreatedAt, &e.UpdatedAt,
		&e.CollegeInactive,
	)
	if err != nil {
		return nil, err
	}
	e.Status = models.EventStatus(status)
	if e.IsFree {
		e.PriceCents = nil
		e.Currency = nil
	}
	return &e, nil
}

func (r *EventRepository) baseQuery() squirrel.SelectBuilder {
	return r.sb.Select(eventColumns...).
		From("events e").
		Join("colleges c ON c.id = e.college_id")
}

// buildEventListQuery applies the filter and catalog ordering
func (r *EventRepository) buildEventListQuery(f EventFilter) squirrel.SelectBuilder {
	q := r.baseQuery()
	if f.CollegeID != nil {
		q = q.Where(squirrel.Eq{"e.college_id": *f.CollegeID})
	}
	if len(f.Statuses) > 0 {
		statuses := make([]string, len(f.Statuses))
		for i, s := range f.Statuses {
			statuses[i] = string(s)
		}
		q = q.Where(squirrel.Eq{"e.status": statuses})
	}
	if f.OnlyActiveColleges {
		q = q.Where(squirrel.Eq{"c.is_active": true})
	}
	return q.OrderBy("e.starts_at ASC", "e.id ASC")
}

// Create inserts an event and fills in id and timestamps
func (r *EventRepository) Create(ctx context.Context, e *models.Event) error {
	e.NormalizePricing()
	sql, args, err := r.sb.Insert("events").
		Columns("college_id", "created_by", "title", "description", "category", "tags",
			"venue", "is_online", "starts_at", "ends_at", "registration_deadline",
			"capacity", "is_free", "price_cents", "currency", "status").
		Values(e.CollegeID, e.CreatedBy, e.Title, e.Description, blankToNil(e.Category), nonNilStrings(e.Tags),
			blankToNil(e.Venue), e.IsOnline, e.StartsAt, e.EndsAt, e.RegistrationDeadline,
			e.Capacity, e.IsFree, e.PriceCents, e.Currency, string(e.Status)).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building create event query")
		return fmt.Errorf("failed to build create event query: %w", err)
	}

	if err := r.db.QueryRow(ctx, sql, args...).Scan(&e.ID, &e.CreatedAt, &e.UpdatedAt); err != nil {
		if dberrors.IsCheckViolation(err) {
			return apperrors.NewBadRequestError("event violates a field constraint")
		}
		logger.Error().Err(err).Int64("collegeID", e.CollegeID).Msg("Error creating event")
		return fmt.Errorf("error creating event: %w", err)
	}
	return nil
}

// GetByID returns an event with its college name and sub-events
func (r *EventRepository) GetByID(ctx context.Context, id int64) (*models.Event, error) {
	sql, args, err := r.baseQuery().Where(squirrel.Eq{"e.id": id}).ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building get event query")
		return nil, fmt.Errorf("failed to build get event query: %w", err)
	}

	e, err := scanEvent(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrEventNotFound
		}
		logger.Error().Err(err).Int64("eventID", id).Msg("Error scanning event")
		return nil, fmt.Errorf("error retrieving event: %w", err)
	}

	subs, err := r.ListSubEvents(ctx, id)
	if err != nil {
		return nil, err
	}
	e.SubEvents = subs
	return e, nil
}

// Update writes the editable event fields (not status or banner)
func (r *EventRepository) Update(ctx context.Context, e *models.Event) error {
	e.NormalizePricing()
	sql, args, err := r.sb.Update("events").
		Set("title", e.Title).
		Set("description", e.Description).
		Set("category", blankToNil(e.Category)).
		Set("tags", nonNilStrings(e.Tags)).
		Set("venue", blankToNil(e.Venue)).
		Set("is_online", e.IsOnline).
		Set("starts_at", e.StartsAt).
		Set("ends_at", e.EndsAt).
		Set("registration_deadline", e.RegistrationDeadline).
		Set("capacity", e.Capacity).
		Set("is_free", e.IsFree).
		Set("price_cents", e.PriceCents).
		Set("currency", e.Currency).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": e.ID}).
		Suffix("RETURNING updated_at").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building update event query")
		return fmt.Errorf("failed to build update event query: %w", err)
	}

	if err := r.db.QueryRow(ctx, sql, args...).Scan(&e.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.ErrEventNotFound
		}
		if dberrors.IsCheckViolation(err) {
			return apperrors.NewBadRequestError("event violates a field constraint")
		}
		logger.Error().Err(err).Int64("eventID", e.ID).Msg("Error updating event")
		return fmt.Errorf("error updating event: %w", err)
	}
	return nil
}

// Delete removes an event; sub-events and registrations cascade
func (r *EventRepository) Delete(ctx context.Context, id int64) error {
	return execAffectingOne(ctx, r.db, r.sb.Delete("events").Where(squirrel.Eq{"id": id}),
		apperrors.ErrEventNotFound, "delete event")
}

// UpdateStatus sets the event status
func (r *EventRepository) UpdateStatus(ctx context.Context, id int64, status models.EventStatus) error {
	return execAffectingOne(ctx, r.db, r.sb.Update("events").
		Set("status", string(status)).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}), apperrors.ErrEventNotFound, "update event status")
}

// BulkUpdateStatus sets the status on many events and returns the count changed
func (r *EventRepository) BulkUpdateStatus(ctx context.Context, ids []int64, status models.EventStatus) (int64, error) {
	sql, args, err := r.sb.Update("events").
		Set("status", string(status)).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": ids}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build bulk event status query: %w", err)
	}
	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int("count", len(ids)).Msg("Error bulk updating event status")
		return 0, fmt.Errorf("error bulk updating events: %w", err)
	}
	return tag.RowsAffected(), nil
}

// UpdateBanner stores the banner URL
func (r *EventRepository) UpdateBanner(ctx context.Context, id int64, url string) error {
	return execAffectingOne(ctx, r.db, r.sb.Update("events").
		Set("banner_url", url).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}), apperrors.ErrEventNotFound, "update event banner")
}

// List returns events matching the filter with their sub-events attached
func (r *EventRepository) List(ctx context.Context, f EventFilter) ([]models.Event, error) {
	sql, args, err := r.buildEventListQuery(f).ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building list events query")
		return nil, fmt.Errorf("failed to build list events query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error listing events")
		return nil, fmt.Errorf("error listing events: %w", err)
	}
	defer rows.Close()

	events := []models.Event{}
	ids := []int64{}
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning event row: %w", err)
		}
		events = append(events, *e)
		ids = append(ids, e.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating events: %w", err)
	}
	rows.Close()

	if len(ids) == 0 {
		return events, nil
	}
	subs, err := r.subEventsFor(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range events {
		events[i].SubEvents = subs[events[i].ID]
	}
	return events, nil
}

// CountByStatus returns the number of events per status
func (r *EventRepository) CountByStatus(ctx context.Context) (map[models.EventStatus]int64, error) {
	sql, args, err := r.sb.Select("status", "COUNT(*)").From("events").GroupBy("status").ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build count events query: %w", err)
	}
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error counting events: %w", err)
	}
	defer rows.Close()

	counts := map[models.EventStatus]int64{
		models.EventStatusDraft:     0,
		models.EventStatusPublished: 0,
		models.EventStatusCancelled: 0,
		models.EventStatusCompleted: 0,
	}
	for rows.Next() {
		var status string
		var n int64
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("error scanning event count: %w", err)
		}
		counts[models.EventStatus(status)] = n
	}
	return counts, rows.Err()
}

func scanSubEvent(row pgx.Row) (*models.SubEvent, error) {
	var s models.SubEvent
	if err := row.Scan(&s.ID, &s.EventID, &s.Title, &s.Description, &s.StartsAt, &s.Capacity); err != nil {
		return nil, err
	}
	return &s, nil
}

var subEventColumns = []string{"id", "event_id", "title", "description", "starts_at", "capacity"}

func (r *EventRepository) subEventsFor(ctx context.Context, eventIDs []int64) (map[int64][]models.SubEvent, error) {
	sql, args, err := r.sb.Select(subEventColumns...).
		From("sub_events").
		Where(squirrel.Eq{"event_id": eventIDs}).
		OrderBy("starts_at ASC NULLS LAST", "id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list sub-events query: %w", err)
	}
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error listing sub-events")
		return nil, fmt.Errorf("error listing sub-events: %w", err)
	}
	defer rows.Close()

	out := make(map[int64][]models.SubEvent, len(eventIDs))
	for rows.Next() {
		s, err := scanSubEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning sub-event row: %w", err)
		}
		out[s.EventID] = append(out[s.EventID], *s)
	}
	return out, rows.Err()
}

// ListSubEvents returns the sub-events of one event
func (r *EventRepository) ListSubEvents(ctx context.Context, eventID int64) ([]models.SubEvent, error) {
	subs, err := r.subEventsFor(ctx, []int64{eventID})
	if err != nil {
		return nil, err
	}
	if subs[eventID] == nil {
		return []models.SubEvent{}, nil
	}
	return subs[eventID], nil
}

// GetSubEvent returns a sub-event belonging to the event
func (r *EventRepository) GetSubEvent(ctx context.Context, eventID, subEventID int64) (*models.SubEvent, error) {
	sql, args, err := r.sb.Select(subEventColumns...).
		From("sub_events").
		Where(squirrel.Eq{"id": subEventID, "event_id": eventID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get sub-event query: %w", err)
	}
	s, err := scanSubEvent(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewResourceNotFoundError("sub-event not found")
		}
		return nil, fmt.Errorf("error retrieving sub-event: %w", err)
	}
	return s, nil
}

// CreateSubEvent inserts a sub-event and fills in its id
func (r *EventRepository) CreateSubEvent(ctx context.Context, s *models.SubEvent) error {
	sql, args, err := r.sb.Insert("sub_events").
		Columns("event_id", "title", "description", "starts_at", "capacity").
		Values(s.EventID, s.Title, blankToNil(s.Description), s.StartsAt, s.Capacity).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create sub-event query: %w", err)
	}
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&s.ID); err != nil {
		if dberrors.IsForeignKeyError(err) {
			return apperrors.ErrEventNotFound
		}
		if dberrors.IsCheckViolation(err) {
			return apperrors.NewBadRequestError("capacity must be positive")
		}
		logger.Error().Err(err).Int64("eventID", s.EventID).Msg("Error creating sub-event")
		return fmt.Errorf("error creating sub-event: %w", err)
	}
	return nil
}

// DeleteSubEvent removes a sub-event of the event
func (r *EventRepository) DeleteSubEvent(ctx context.Context, eventID, subEventID int64) error {
	return execAffectingOne(ctx, r.db, r.sb.Delete("sub_events").
		Where(squirrel.Eq{"id": subEventID, "event_id": eventID}),
		apperrors.NewResourceNotFoundError("sub-event not found"), "delete sub-event")
}
