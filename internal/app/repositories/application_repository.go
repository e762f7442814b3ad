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

var applicationColumns = []string{
	"a.id", "a.opportunity_id", "o.title", "a.user_id", "p.full_name", "p.email",
	"a.cover_letter", "a.resume_url", "a.status", "a.created_at", "a.updated_at",
}

// ApplicationRepository handles applications to internal opportunities
type ApplicationRepository struct {
	db db.Querier
	sb squirrel.StatementBuilderType
}

// NewApplicationRepository creates a new ApplicationRepository
func NewApplicationRepository(q db.Querier) *ApplicationRepository {
	return &ApplicationRepository{db: q, sb: newStatementBuilder()}
}

func scanApplication(row pgx.Row) (*models.Application, error) {
	var a models.Application
	var status string
	err := row.Scan(&a.ID, &a.OpportunityID, &a.OpportunityTitle, &a.UserID, &a.ApplicantName,
		&a.ApplicantEmail, &a.CoverLetter, &a.ResumeURL, &status, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	a.Status = models.ApplicationStatus(status)
	return &a, nil
}

func (r *ApplicationRepository) baseQuery() squirrel.SelectBuilder {
	return r.sb.Select(applicationColumns...).
		From("applications a").
		Join("opportunities o ON o.id = a.opportunity_id").
		Join("profiles p ON p.id = a.user_id")
}

// Create inserts an application; a repeat for the same opportunity is ErrAlreadyApplied
func (r *ApplicationRepository) Create(ctx context.Context, a *models.Application) error {
	if a.Status == "" {
		a.Status = models.ApplicationSubmitted
	}
	sql, args, err := r.sb.Insert("applications").
		Columns("opportunity_id", "user_id", "cover_letter", "resume_url", "status").
		Values(a.OpportunityID, a.UserID, blankToNil(a.CoverLetter), blankToNil(a.ResumeURL), string(a.Status)).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building create application query")
		return fmt.Errorf("failed to build create application query: %w", err)
	}

	if err := r.db.QueryRow(ctx, sql, args...).Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt); err != nil {
		if dberrors.IsDuplicateConstraintError(err, "applications_opportunity_user_key") {
			return apperrors.ErrAlreadyApplied
		}
		if dberrors.IsForeignKeyError(err) {
			return apperrors.ErrOpportunityNotFound
		}
		logger.Error().Err(err).Int64("opportunityID", a.OpportunityID).Int64("userID", a.UserID).Msg("Error creating application")
		return fmt.Errorf("error creating application: %w", err)
	}
	return nil
}

// GetByID returns an application with opportunity and applicant details
func (r *ApplicationRepository) GetByID(ctx context.Context, id int64) (*models.Application, error) {
	sql, args, err := r.baseQuery().Where(squirrel.Eq{"a.id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get application query: %w", err)
	}
	a, err := scanApplication(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewResourceNotFoundError("application not found")
		}
		logger.Error().Err(err).Int64("applicationID", id).Msg("Error scanning application")
		return nil, fmt.Errorf("error retrieving application: %w", err)
	}
	return a, nil
}

func (r *ApplicationRepository) list(ctx context.Context, where squirrel.Sqlizer) ([]models.Application, error) {
	sql, args, err := r.baseQuery().Where(where).OrderBy("a.created_at DESC", "a.id DESC").ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list applications query: %w", err)
	}
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error listing applications")
		return nil, fmt.Errorf("error listing applications: %w", err)
	}
	defer rows.Close()

	apps := []models.Application{}
	for rows.Next() {
		a, err := scanApplication(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning application row: %w", err)
		}
		apps = append(apps, *a)
	}
	return apps, rows.Err()
}

// ListByUser returns a student's applications
func (r *ApplicationRepository) ListByUser(ctx context.Context, userID int64) ([]models.Application, error) {
	return r.list(ctx, squirrel.Eq{"a.user_id": userID})
}

// ListByOpportunity returns the applications to one opportunity
func (r *ApplicationRepository) ListByOpportunity(ctx context.Context, opportunityID int64) ([]models.Application, error) {
	return r.list(ctx, squirrel.Eq{"a.opportunity_id": opportunityID})
}

// UpdateStatus sets the review status
func (r *ApplicationRepository) UpdateStatus(ctx context.Context, id int64, status models.ApplicationStatus) error {
	return execAffectingOne(ctx, r.db, r.sb.Update("applications").
		Set("status", string(status)).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}),
		apperrors.NewResourceNotFoundError("application not found"), "update application status")
}

// Count returns the total number of applications
func (r *ApplicationRepository) Count(ctx context.Context) (int64, error) {
	return countRows(ctx, r.db, r.sb.Select("COUNT(*)").From("applications"))
}

func countRows(ctx context.Context, q db.Querier, stmt squirrel.SelectBuilder) (int64, error) {
	sql, args, err := stmt.ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build count query: %w", err)
	}
	var n int64
	if err := q.QueryRow(ctx, sql, args...).Scan(&n); err != nil {
		logger.Error().Err(err).Msg("Error executing count query")
		return 0, fmt.Errorf("error counting rows: %w", err)
	}
	return n, nil
}
