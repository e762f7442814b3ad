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

var opportunityColumns = []string{
	"o.id", "o.company_id", "COALESCE(co.name, '')", "o.created_by", "o.type", "o.title",
	"o.description", "o.location", "o.tags", "o.compensation", "o.is_external",
	"o.external_url", "o.deadline", "o.is_active", "o.created_at", "o.updated_at",
	"COALESCE(NOT co.is_active, FALSE)",
}

// OpportunityFilter narrows opportunity listings
type OpportunityFilter struct {
	CompanyID *int64
	CreatedBy *int64
	// WithoutCompany keeps only college or admin listings
	WithoutCompany bool
	OnlyActive     bool
	// OnlyActiveCompanies hides listings of deactivated companies
	OnlyActiveCompanies bool
}

// OpportunityRepository handles opportunities
type OpportunityRepository struct {
	db db.Querier
	sb squirrel.StatementBuilderType
}

// NewOpportunityRepository creates a new OpportunityRepository
func NewOpportunityRepository(q db.Querier) *OpportunityRepository {
	return &OpportunityRepository{db: q, sb: newStatementBuilder()}
}

func scanOpportunity(row pgx.Row) (*models.Opportunity, error) {
	var o models.Opportunity
	var oppType string
	err := row.Scan(
		&o.ID, &o.CompanyID, &o.CompanyName, &o.CreatedBy, &oppType, &o.Title,
		&o.Description, &o.Location, &o.Tags, &o.Compensation, &o.IsExternal,
		&o.ExternalURL, &o.Deadline, &o.IsActive, &o.CreatedAt, &o.UpdatedAt,
		&o.CompanyInactive,
	)
	if err != nil {
		return nil, err
	}
	o.Type = models.OpportunityType(oppType)
	return &o, nil
}

func (r *OpportunityRepository) baseQuery() squirrel.SelectBuilder {
	return r.sb.Select(opportunityColumns...).
		From("opportunities o").
		LeftJoin("companies co ON co.id = o.company_id")
}

func (r *OpportunityRepository) buildOpportunityListQuery(f OpportunityFilter) squirrel.SelectBuilder {
	q := r.baseQuery()
	if f.CompanyID != nil {
		q = q.Where(squirrel.Eq{"o.company_id": *f.CompanyID})
	}
	if f.CreatedBy != nil {
		q = q.Where(squirrel.Eq{"o.created_by": *f.CreatedBy})
	}
	if f.WithoutCompany {
		q = q.Where(squirrel.Eq{"o.company_id": nil})
	}
	if f.OnlyActive {
		q = q.Where(squirrel.Eq{"o.is_active": true})
	}
	if f.OnlyActiveCompanies {
		q = q.Where(squirrel.Or{
			squirrel.Eq{"o.company_id": nil},
			squirrel.Eq{"co.is_active": true},
		})
	}
	return q.OrderBy("o.created_at DESC", "o.id DESC")
}

func mapOpportunityWriteError(err error) error {
	if dberrors.IsCheckViolation(err) {
		return apperrors.NewValidationError("externalUrl", "external opportunities need an external URL")
	}
	if dberrors.IsForeignKeyError(err) {
		return apperrors.ErrOrganizationNotFound
	}
	return nil
}

// Create inserts an opportunity and fills in id and timestamps
func (r *OpportunityRepository) Create(ctx context.Context, o *models.Opportunity) error {
	sql, args, err := r.sb.Insert("opportunities").
		Columns("company_id", "created_by", "type", "title", "description", "location",
			"tags", "compensation", "is_external", "external_url", "deadline", "is_active").
		Values(o.CompanyID, o.CreatedBy, string(o.Type), o.Title, o.Description, blankToNil(o.Location),
			nonNilStrings(o.Tags), blankToNil(o.Compensation), o.IsExternal, blankToNil(o.ExternalURL), o.Deadline, o.IsActive).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building create opportunity query")
		return fmt.Errorf("failed to build create opportunity query: %w", err)
	}

	if err := r.db.QueryRow(ctx, sql, args...).Scan(&o.ID, &o.CreatedAt, &o.UpdatedAt); err != nil {
		if mapped := mapOpportunityWriteError(err); mapped != nil {
			return mapped
		}
		logger.Error().Err(err).Int64("createdBy", o.CreatedBy).Msg("Error creating opportunity")
		return fmt.Errorf("error creating opportunity: %w", err)
	}
	return nil
}

// GetByID returns an opportunity with its company name
func (r *OpportunityRepository) GetByID(ctx context.Context, id int64) (*models.Opportunity, error) {
	sql, args, err := r.baseQuery().Where(squirrel.Eq{"o.id": id}).ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building get opportunity query")
		return nil, fmt.Errorf("failed to build get opportunity query: %w", err)
	}
	o, err := scanOpportunity(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrOpportunityNotFound
		}
		logger.Error().Err(err).Int64("opportunityID", id).Msg("Error scanning opportunity")
		return nil, fmt.Errorf("error retrieving opportunity: %w", err)
	}
	return o, nil
}

// Update writes the editable opportunity fields
func (r *OpportunityRepository) Update(ctx context.Context, o *models.Opportunity) error {
	sql, args, err := r.sb.Update("opportunities").
		Set("type", string(o.Type)).
		Set("title", o.Title).
		Set("description", o.Description).
		Set("location", blankToNil(o.Location)).
		Set("tags", nonNilStrings(o.Tags)).
		Set("compensation", blankToNil(o.Compensation)).
		Set("is_external", o.IsExternal).
		Set("external_url", blankToNil(o.ExternalURL)).
		Set("deadline", o.Deadline).
		Set("is_active", o.IsActive).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": o.ID}).
		Suffix("RETURNING updated_at").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building update opportunity query")
		return fmt.Errorf("failed to build update opportunity query: %w", err)
	}

	if err := r.db.QueryRow(ctx, sql, args...).Scan(&o.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.ErrOpportunityNotFound
		}
		if mapped := mapOpportunityWriteError(err); mapped != nil {
			return mapped
		}
		logger.Error().Err(err).Int64("opportunityID", o.ID).Msg("Error updating opportunity")
		return fmt.Errorf("error updating opportunity: %w", err)
	}
	return nil
}

// Delete removes an opportunity; applications cascade
func (r *OpportunityRepository) Delete(ctx context.Context, id int64) error {
	return execAffectingOne(ctx, r.db, r.sb.Delete("opportunities").Where(squirrel.Eq{"id": id}),
		apperrors.ErrOpportunityNotFound, "delete opportunity")
}

// BulkSetActive toggles is_active on many opportunities and returns the count changed
func (r *OpportunityRepository) BulkSetActive(ctx context.Context, ids []int64, active bool) (int64, error) {
	sql, args, err := r.sb.Update("opportunities").
		Set("is_active", active).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": ids}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build bulk opportunity status query: %w", err)
	}
	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int("count", len(ids)).Msg("Error bulk updating opportunities")
		return 0, fmt.Errorf("error bulk updating opportunities: %w", err)
	}
	return tag.RowsAffected(), nil
}

// List returns opportunities matching the filter, newest first
func (r *OpportunityRepository) List(ctx context.Context, f OpportunityFilter) ([]models.Opportunity, error) {
	sql, args, err := r.buildOpportunityListQuery(f).ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building list opportunities query")
		return nil, fmt.Errorf("failed to build list opportunities query: %w", err)
	}
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error listing opportunities")
		return nil, fmt.Errorf("error listing opportunities: %w", err)
	}
	defer rows.Close()

	opps := []models.Opportunity{}
	for rows.Next() {
		o, err := scanOpportunity(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning opportunity row: %w", err)
		}
		opps = append(opps, *o)
	}
	return opps, rows.Err()
}

// CountByType returns the number of opportunities per type
func (r *OpportunityRepository) CountByType(ctx context.Context) (map[models.OpportunityType]int64, error) {
	sql, args, err := r.sb.Select("type", "COUNT(*)").From("opportunities").GroupBy("type").ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build count opportunities query: %w", err)
	}
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error counting opportunities: %w", err)
	}
	defer rows.Close()

	counts := map[models.OpportunityType]int64{
		models.OpportunityJob:         0,
		models.OpportunityInternship:  0,
		models.OpportunityHackathon:   0,
		models.OpportunityCompetition: 0,
	}
	for rows.Next() {
		var t string
		var n int64
		if err := rows.Scan(&t, &n); err != nil {
			return nil, fmt.Errorf("error scanning opportunity count: %w", err)
		}
		counts[models.OpportunityType(t)] = n
	}
	return counts, rows.Err()
}
