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
	"github.com/yigit/campushub/internal/pkg/logger"
)

var collegeColumns = []string{
	"id", "owner_id", "name", "description", "location", "website", "logo_url",
	"is_verified", "is_active", "created_at", "updated_at",
}

var companyColumns = []string{
	"id", "owner_id", "name", "industry", "description", "website", "logo_url",
	"is_verified", "is_active", "created_at", "updated_at",
}

// flagsSetMap builds the SET clause for an admin flags patch
func flagsSetMap(flags models.OrganizationFlags) map[string]interface{} {
	set := map[string]interface{}{"updated_at": squirrel.Expr("NOW()")}
	if flags.IsVerified != nil {
		set["is_verified"] = *flags.IsVerified
	}
	if flags.IsActive != nil {
		set["is_active"] = *flags.IsActive
	}
	return set
}

// CollegeRepository handles college organizations
type CollegeRepository struct {
	db db.Querier
	sb squirrel.StatementBuilderType
}

// NewCollegeRepository creates a new CollegeRepository
func NewCollegeRepository(q db.Querier) *CollegeRepository {
	return &CollegeRepository{db: q, sb: newStatementBuilder()}
}

func scanCollege(row pgx.Row) (*models.College, error) {
	var c models.College
	err := row.Scan(&c.ID, &c.OwnerID, &c.Name, &c.Description, &c.Location, &c.Website,
		&c.LogoURL, &c.IsVerified, &c.IsActive, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *CollegeRepository) getOne(ctx context.Context, where squirrel.Sqlizer) (*models.College, error) {
	sql, args, err := r.sb.Select(collegeColumns...).From("colleges").Where(where).ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building get college query")
		return nil, fmt.Errorf("failed to build get college query: %w", err)
	}
	c, err := scanCollege(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrOrganizationNotFound
		}
		logger.Error().Err(err).Msg("Error scanning college")
		return nil, fmt.Errorf("error retrieving college: %w", err)
	}
	return c, nil
}

// GetByID returns a college by id
func (r *CollegeRepository) GetByID(ctx context.Context, id int64) (*models.College, error) {
	return r.getOne(ctx, squirrel.Eq{"id": id})
}

// GetByOwner returns the college owned by the account
func (r *CollegeRepository) GetByOwner(ctx context.Context, ownerID int64) (*models.College, error) {
	return r.getOne(ctx, squirrel.Eq{"owner_id": ownerID})
}

// Update writes the editable college fields
func (r *CollegeRepository) Update(ctx context.Context, c *models.College) error {
	sql, args, err := r.sb.Update("colleges").
		Set("name", c.Name).
		Set("description", blankToNil(c.Description)).
		Set("location", blankToNil(c.Location)).
		Set("website", blankToNil(c.Website)).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": c.ID}).
		Suffix("RETURNING updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update college query: %w", err)
	}
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&c.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.ErrOrganizationNotFound
		}
		logger.Error().Err(err).Int64("collegeID", c.ID).Msg("Error updating college")
		return fmt.Errorf("error updating college: %w", err)
	}
	return nil
}

// UpdateLogo stores the logo URL
func (r *CollegeRepository) UpdateLogo(ctx context.Context, id int64, url string) error {
	return execAffectingOne(ctx, r.db, r.sb.Update("colleges").
		Set("logo_url", url).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}), apperrors.ErrOrganizationNotFound, "update college logo")
}

// SetFlags applies an admin verification/activity patch and returns the row
func (r *CollegeRepository) SetFlags(ctx context.Context, id int64, flags models.OrganizationFlags) (*models.College, error) {
	sql, args, err := r.sb.Update("colleges").
		SetMap(flagsSetMap(flags)).
		Where(squirrel.Eq{"id": id}).
		Suffix("RETURNING " + joinList(collegeColumns)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build set college flags query: %w", err)
	}
	c, err := scanCollege(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrOrganizationNotFound
		}
		logger.Error().Err(err).Int64("collegeID", id).Msg("Error setting college flags")
		return nil, fmt.Errorf("error setting college flags: %w", err)
	}
	return c, nil
}

// List returns all colleges, optionally only active ones
func (r *CollegeRepository) List(ctx context.Context, onlyActive bool) ([]models.College, error) {
	q := r.sb.Select(collegeColumns...).From("colleges").OrderBy("name ASC", "id ASC")
	if onlyActive {
		q = q.Where(squirrel.Eq{"is_active": true})
	}
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list colleges query: %w", err)
	}
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error listing colleges")
		return nil, fmt.Errorf("error listing colleges: %w", err)
	}
	defer rows.Close()

	colleges := []models.College{}
	for rows.Next() {
		c, err := scanCollege(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning college row: %w", err)
		}
		colleges = append(colleges, *c)
	}
	return colleges, rows.Err()
}

// CompanyRepository handles company organizations
type CompanyRepository struct {
	db db.Querier
	sb squirrel.StatementBuilderType
}

// NewCompanyRepository creates a new CompanyRepository
func NewCompanyRepository(q db.Querier) *CompanyRepository {
	return &CompanyRepository{db: q, sb: newStatementBuilder()}
}

func scanCompany(row pgx.Row) (*models.Company, error) {
	var c models.Company
	err := row.Scan(&c.ID, &c.OwnerID, &c.Name, &c.Industry, &c.Description, &c.Website,
		&c.LogoURL, &c.IsVerified, &c.IsActive, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *CompanyRepository) getOne(ctx context.Context, where squirrel.Sqlizer) (*models.Company, error) {
	sql, args, err := r.sb.Select(companyColumns...).From("companies").Where(where).ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building get company query")
		return nil, fmt.Errorf("failed to build get company query: %w", err)
	}
	c, err := scanCompany(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrOrganizationNotFound
		}
		logger.Error().Err(err).Msg("Error scanning company")
		return nil, fmt.Errorf("error retrieving company: %w", err)
	}
	return c, nil
}

// GetByID returns a company by id
func (r *CompanyRepository) GetByID(ctx context.Context, id int64) (*models.Company, error) {
	return r.getOne(ctx, squirrel.Eq{"id": id})
}

// GetByOwner returns the company owned by the account
func (r *CompanyRepository) GetByOwner(ctx context.Context, ownerID int64) (*models.Company, error) {
	return r.getOne(ctx, squirrel.Eq{"owner_id": ownerID})
}

// Update writes the editable company fields
func (r *CompanyRepository) Update(ctx context.Context, c *models.Company) error {
	sql, args, err := r.sb.Update("companies").
		Set("name", c.Name).
		Set("industry", blankToNil(c.Industry)).
		Set("description", blankToNil(c.Description)).
		Set("website", blankToNil(c.Website)).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": c.ID}).
		Suffix("RETURNING updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update company query: %w", err)
	}
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&c.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.ErrOrganizationNotFound
		}
		logger.Error().Err(err).Int64("companyID", c.ID).Msg("Error updating company")
		return fmt.Errorf("error updating company: %w", err)
	}
	return nil
}

// UpdateLogo stores the logo URL
func (r *CompanyRepository) UpdateLogo(ctx context.Context, id int64, url string) error {
	return execAffectingOne(ctx, r.db, r.sb.Update("companies").
		Set("logo_url", url).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}), apperrors.ErrOrganizationNotFound, "update company logo")
}

// SetFlags applies an admin verification/activity patch and returns the row
func (r *CompanyRepository) SetFlags(ctx context.Context, id int64, flags models.OrganizationFlags) (*models.Company, error) {
	sql, args, err := r.sb.Update("companies").
		SetMap(flagsSetMap(flags)).
		Where(squirrel.Eq{"id": id}).
		Suffix("RETURNING " + joinList(companyColumns)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build set company flags query: %w", err)
	}
	c, err := scanCompany(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrOrganizationNotFound
		}
		logger.Error().Err(err).Int64("companyID", id).Msg("Error setting company flags")
		return nil, fmt.Errorf("error setting company flags: %w", err)
	}
	return c, nil
}

// List returns all companies, optionally only active ones
func (r *CompanyRepository) List(ctx context.Context, onlyActive bool) ([]models.Company, error) {
	q := r.sb.Select(companyColumns...).From("companies").OrderBy("name ASC", "id ASC")
	if onlyActive {
		q = q.Where(squirrel.Eq{"is_active": true})
	}
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list companies query: %w", err)
	}
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error listing companies")
		return nil, fmt.Errorf("error listing companies: %w", err)
	}
	defer rows.Close()

	companies := []models.Company{}
	for rows.Next() {
		c, err := scanCompany(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning company row: %w", err)
		}
		companies = append(companies, *c)
	}
	return companies, rows.Err()
}
