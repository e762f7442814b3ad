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

// ProvisionParams describes a new account with its profile, role and,
// for college and company roles, the organization row.
type ProvisionParams struct {
	Email        string
	PasswordHash string
	FullName     string
	Role         models.Role

	// student
	CollegeID      *int64
	Major          *string
	GraduationYear *int

	// college or company
	OrganizationName string
	Location         *string
	Industry         *string
	Website          *string
}

// ProfileUpdate is a partial profile write; nil fields are untouched
type ProfileUpdate struct {
	FullName       *string
	Headline       *string
	Bio            *string
	Skills         *[]string
	LinkedinURL    *string
	GithubURL      *string
	WebsiteURL     *string
	Major          *string
	GraduationYear *int
}

// UserFilter narrows the admin user list
type UserFilter struct {
	Role   *models.Role
	Query  string
	Active *bool
}

var profileColumns = []string{
	"p.id", "p.full_name", "p.email", "p.headline", "p.bio", "p.skills",
	"p.linkedin_url", "p.github_url", "p.website_url", "p.avatar_url",
	"p.college_id", "p.major", "p.graduation_year", "p.is_active",
	"p.created_at", "p.updated_at",
}

// AccountRepository handles accounts, profiles and user_roles
type AccountRepository struct {
	db *db.PostgresDB
	sb squirrel.StatementBuilderType
}

// NewAccountRepository creates a new AccountRepository
func NewAccountRepository(database *db.PostgresDB) *AccountRepository {
	return &AccountRepository{
		db: database,
		sb: newStatementBuilder(),
	}
}

// Provision creates account, profile, role and organization in one transaction
func (r *AccountRepository) Provision(ctx context.Context, p ProvisionParams) (*models.AuthUser, error) {
	var user *models.AuthUser

	err := r.db.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		var accountID int64
		sql, args, err := r.sb.Insert("accounts").
			Columns("email", "password_hash").
			Values(p.Email, p.PasswordHash).
			Suffix("RETURNING id").
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to build insert account query: %w", err)
		}
		if err := tx.QueryRow(ctx, sql, args...).Scan(&accountID); err != nil {
			if dberrors.IsDuplicateConstraintError(err, "accounts_email_key") {
				return apperrors.ErrEmailAlreadyExists
			}
			logger.Error().Err(err).Str("email", p.Email).Msg("Error inserting account")
			return fmt.Errorf("error creating account: %w", err)
		}

		sql, args, err = r.sb.Insert("profiles").
			Columns("id", "full_name", "email", "college_id", "major", "graduation_year").
			Values(accountID, p.FullName, p.Email, p.CollegeID, blankToNil(p.Major), p.GraduationYear).
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to build insert profile query: %w", err)
		}
		if _, err := tx.Exec(ctx, sql, args...); err != nil {
			if dberrors.IsForeignKeyError(err) {
				return apperrors.NewBadRequestError("college not found")
			}
			logger.Error().Err(err).Int64("accountID", accountID).Msg("Error inserting profile")
			return fmt.Errorf("error creating profile: %w", err)
		}

		if err := insertRole(ctx, tx, r.sb, accountID, p.Role); err != nil {
			return err
		}

		switch p.Role {
		case models.RoleCollege:
			sql, args, err = r.sb.Insert("colleges").
				Columns("owner_id", "name", "location", "website").
				Values(accountID, p.OrganizationName, blankToNil(p.Location), blankToNil(p.Website)).
				ToSql()
		case models.RoleCompany:
			sql, args, err = r.sb.Insert("companies").
				Columns("owner_id", "name", "industry", "website").
				Values(accountID, p.OrganizationName, blankToNil(p.Industry), blankToNil(p.Website)).
				ToSql()
		default:
			sql = ""
		}
		if err != nil {
			return fmt.Errorf("failed to build insert organization query: %w", err)
		}
		if sql != "" {
			if _, err := tx.Exec(ctx, sql, args...); err != nil {
				logger.Error().Err(err).Int64("accountID", accountID).Str("role", string(p.Role)).Msg("Error inserting organization")
				return fmt.Errorf("error creating organization: %w", err)
			}
		}

		user = &models.AuthUser{
			ID:       accountID,
			Email:    p.Email,
			FullName: p.FullName,
			Role:     p.Role,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

func insertRole(ctx context.Context, q db.Querier, sb squirrel.StatementBuilderType, accountID int64, role models.Role) error {
	sql, args, err := sb.Insert("user_roles").
		Columns("account_id", "role").
		Values(accountID, string(role)).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build insert role query: %w", err)
	}
	if _, err := q.Exec(ctx, sql, args...); err != nil {
		if dberrors.IsDuplicateConstraintError(err, "user_roles_account_id_key") {
			return apperrors.NewConflictError("account already has a role")
		}
		logger.Error().Err(err).Int64("accountID", accountID).Msg("Error inserting role")
		return fmt.Errorf("error assigning role: %w", err)
	}
	return nil
}

func (r *AccountRepository) credentialsQuery() squirrel.SelectBuilder {
	return r.sb.Select("a.id", "a.email", "a.password_hash", "p.full_name", "r.role", "p.is_active").
		From("accounts a").
		Join("profiles p ON p.id = a.id").
		Join("user_roles r ON r.account_id = a.id")
}

func (r *AccountRepository) scanCredentials(ctx context.Context, q squirrel.SelectBuilder) (*models.Credentials, error) {
	sql, args, err := q.ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building credentials query")
		return nil, fmt.Errorf("failed to build credentials query: %w", err)
	}

	var c models.Credentials
	var role string
	err = r.db.Pool.QueryRow(ctx, sql, args...).Scan(&c.ID, &c.Email, &c.PasswordHash, &c.FullName, &role, &c.IsActive)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, fmt.Errorf("error retrieving credentials: %w", err)
	}
	c.Role = models.Role(role)
	return &c, nil
}

// GetCredentialsByEmail loads identity and password hash for login
func (r *AccountRepository) GetCredentialsByEmail(ctx context.Context, email string) (*models.Credentials, error) {
	return r.scanCredentials(ctx, r.credentialsQuery().Where(squirrel.Eq{"a.email": email}))
}

// GetCredentialsByID loads identity and activity for the session check
func (r *AccountRepository) GetCredentialsByID(ctx context.Context, id int64) (*models.Credentials, error) {
	return r.scanCredentials(ctx, r.credentialsQuery().Where(squirrel.Eq{"a.id": id}))
}

// UpdateLastLogin updates the last login time
func (r *AccountRepository) UpdateLastLogin(ctx context.Context, id int64) error {
	sql, args, err := r.sb.Update("accounts").
		Set("last_login_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update last login query: %w", err)
	}
	if _, err := r.db.Pool.Exec(ctx, sql, args...); err != nil {
		logger.Error().Err(err).Int64("accountID", id).Msg("Error updating last login")
		return fmt.Errorf("error updating last login: %w", err)
	}
	return nil
}

func scanProfile(row pgx.Row) (*models.Profile, error) {
	var p models.Profile
	err := row.Scan(
		&p.ID, &p.FullName, &p.Email, &p.Headline, &p.Bio, &p.Skills,
		&p.LinkedinURL, &p.GithubURL, &p.WebsiteURL, &p.AvatarURL,
		&p.CollegeID, &p.Major, &p.GraduationYear, &p.IsActive,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// GetProfile returns the profile with the given account id
func (r *AccountRepository) GetProfile(ctx context.Context, id int64) (*models.Profile, error) {
	sql, args, err := r.sb.Select(profileColumns...).
		From("profiles p").
		Where(squirrel.Eq{"p.id": id}).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building get profile query")
		return nil, fmt.Errorf("failed to build get profile query: %w", err)
	}

	p, err := scanProfile(r.db.Pool.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrUserNotFound
		}
		logger.Error().Err(err).Int64("profileID", id).Msg("Error scanning profile")
		return nil, fmt.Errorf("error retrieving profile: %w", err)
	}
	return p, nil
}

// GetRole returns the role assigned to an account
func (r *AccountRepository) GetRole(ctx context.Context, id int64) (models.Role, error) {
	sql, args, err := r.sb.Select("role").From("user_roles").Where(squirrel.Eq{"account_id": id}).ToSql()
	if err != nil {
		return "", fmt.Errorf("failed to build get role query: %w", err)
	}
	var role string
	if err := r.db.Pool.QueryRow(ctx, sql, args...).Scan(&role); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", apperrors.ErrUserNotFound
		}
		return "", fmt.Errorf("error retrieving role: %w", err)
	}
	return models.Role(role), nil
}

// buildProfileUpdate returns the SET map for a profile patch
func buildProfileUpdate(u ProfileUpdate) map[string]interface{} {
	set := map[string]interface{}{}
	if u.FullName != nil {
		set["full_name"] = *u.FullName
	}
	optional := map[string]*string{
		"headline":     u.Headline,
		"bio":          u.Bio,
		"linkedin_url": u.LinkedinURL,
		"github_url":   u.GithubURL,
		"website_url":  u.WebsiteURL,
		"major":        u.Major,
	}
	for col, v := range optional {
		if v != nil {
			set[col] = blankToNil(v)
		}
	}
	if u.Skills != nil {
		set["skills"] = nonNilStrings(*u.Skills)
	}
	if u.GraduationYear != nil {
		set["graduation_year"] = *u.GraduationYear
	}
	return set
}

// UpdateProfile applies a partial update and returns the fresh profile
func (r *AccountRepository) UpdateProfile(ctx context.Context, id int64, u ProfileUpdate) (*models.Profile, error) {
	set := buildProfileUpdate(u)
	if len(set) == 0 {
		return r.GetProfile(ctx, id)
	}
	set["updated_at"] = squirrel.Expr("NOW()")

	sql, args, err := r.sb.Update("profiles p").
		SetMap(set).
		Where(squirrel.Eq{"p.id": id}).
		Suffix("RETURNING " + joinList(profileColumns)).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building update profile query")
		return nil, fmt.Errorf("failed to build update profile query: %w", err)
	}

	p, err := scanProfile(r.db.Pool.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrUserNotFound
		}
		logger.Error().Err(err).Int64("profileID", id).Msg("Error updating profile")
		return nil, fmt.Errorf("error updating profile: %w", err)
	}
	return p, nil
}

// UpdateAvatar stores the avatar URL on the profile
func (r *AccountRepository) UpdateAvatar(ctx context.Context, id int64, url string) error {
	return execAffectingOne(ctx, r.db.Pool, r.sb.Update("profiles").
		Set("avatar_url", url).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}), apperrors.ErrUserNotFound, "update avatar")
}

// SetActive toggles is_active on one profile
func (r *AccountRepository) SetActive(ctx context.Context, id int64, active bool) error {
	return execAffectingOne(ctx, r.db.Pool, r.sb.Update("profiles").
		Set("is_active", active).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}), apperrors.ErrUserNotFound, "set active")
}

// BulkSetActive toggles is_active on many profiles and returns the count changed
func (r *AccountRepository) BulkSetActive(ctx context.Context, ids []int64, active bool) (int64, error) {
	sql, args, err := r.sb.Update("profiles").
		Set("is_active", active).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": ids}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build bulk set active query: %w", err)
	}
	tag, err := r.db.Pool.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int("count", len(ids)).Msg("Error bulk updating profiles")
		return 0, fmt.Errorf("error bulk updating profiles: %w", err)
	}
	return tag.RowsAffected(), nil
}

// SetRole reassigns the role and makes sure an organization row exists for
// college and company roles.
func (r *AccountRepository) SetRole(ctx context.Context, id int64, role models.Role) error {
	return r.db.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		sql, args, err := r.sb.Update("user_roles").
			Set("role", string(role)).
			Set("updated_at", squirrel.Expr("NOW()")).
			Where(squirrel.Eq{"account_id": id}).
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to build set role query: %w", err)
		}
		tag, err := tx.Exec(ctx, sql, args...)
		if err != nil {
			logger.Error().Err(err).Int64("accountID", id).Msg("Error updating role")
			return fmt.Errorf("error updating role: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return apperrors.ErrUserNotFound
		}

		var table string
		switch role {
		case models.RoleCollege:
			table = "colleges"
		case models.RoleCompany:
			table = "companies"
		default:
			return nil
		}

		sql, args, err = r.sb.Insert(table).
			Columns("owner_id", "name").
			Select(r.sb.Select("id", "full_name").From("profiles").Where(squirrel.Eq{"id": id})).
			Suffix("ON CONFLICT (owner_id) DO NOTHING").
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to build ensure organization query: %w", err)
		}
		if _, err := tx.Exec(ctx, sql, args...); err != nil {
			logger.Error().Err(err).Int64("accountID", id).Str("table", table).Msg("Error ensuring organization row")
			return fmt.Errorf("error ensuring organization: %w", err)
		}
		return nil
	})
}

// Delete removes the account; profile, role, organization and dependent rows cascade
func (r *AccountRepository) Delete(ctx context.Context, id int64) error {
	return execAffectingOne(ctx, r.db.Pool, r.sb.Delete("accounts").Where(squirrel.Eq{"id": id}), apperrors.ErrUserNotFound, "delete account")
}

// applyUserFilter adds the admin list filters to a query over profiles p / user_roles r
func applyUserFilter(q squirrel.SelectBuilder, f UserFilter) squirrel.SelectBuilder {
	if f.Role != nil {
		q = q.Where(squirrel.Eq{"r.role": string(*f.Role)})
	}
	if f.Active != nil {
		q = q.Where(squirrel.Eq{"p.is_active": *f.Active})
	}
	if f.Query != "" {
		pattern := containsPattern(f.Query)
		q = q.Where(squirrel.Or{
			squirrel.ILike{"p.full_name": pattern},
			squirrel.ILike{"p.email": pattern},
		})
	}
	return q
}

func (r *AccountRepository) userSummaryQuery(f UserFilter) squirrel.SelectBuilder {
	return applyUserFilter(
		r.sb.Select("p.id", "p.email", "p.full_name", "r.role", "p.is_active", "p.created_at").
			From("profiles p").
			Join("user_roles r ON r.account_id = p.id"),
		f,
	).OrderBy("p.created_at DESC", "p.id DESC")
}

func (r *AccountRepository) querySummaries(ctx context.Context, q squirrel.SelectBuilder) ([]models.UserSummary, error) {
	sql, args, err := q.ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building user list query")
		return nil, fmt.Errorf("failed to build user list query: %w", err)
	}

	rows, err := r.db.Pool.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing user list query")
		return nil, fmt.Errorf("error listing users: %w", err)
	}
	defer rows.Close()

	users := []models.UserSummary{}
	for rows.Next() {
		var u models.UserSummary
		var role string
		if err := rows.Scan(&u.ID, &u.Email, &u.FullName, &role, &u.IsActive, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning user row: %w", err)
		}
		u.Role = models.Role(role)
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating users: %w", err)
	}
	return users, nil
}

// List returns one page of users and the total matching the filter
func (r *AccountRepository) List(ctx context.Context, f UserFilter, offset, limit uint64) ([]models.UserSummary, int64, error) {
	countSQL, countArgs, err := applyUserFilter(
		r.sb.Select("COUNT(*)").From("profiles p").Join("user_roles r ON r.account_id = p.id"),
		f,
	).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build user count query: %w", err)
	}

	var total int64
	if err := r.db.Pool.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		logger.Error().Err(err).Msg("Error counting users")
		return nil, 0, fmt.Errorf("error counting users: %w", err)
	}

	users, err := r.querySummaries(ctx, r.userSummaryQuery(f).Offset(offset).Limit(limit))
	if err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

// ListAll returns every user matching the filter, used for CSV export
func (r *AccountRepository) ListAll(ctx context.Context, f UserFilter) ([]models.UserSummary, error) {
	return r.querySummaries(ctx, r.userSummaryQuery(f))
}

// CountByRole returns the number of accounts per role
func (r *AccountRepository) CountByRole(ctx context.Context) (map[models.Role]int64, error) {
	sql, args, err := r.sb.Select("role", "COUNT(*)").From("user_roles").GroupBy("role").ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build count by role query: %w", err)
	}
	rows, err := r.db.Pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error counting roles: %w", err)
	}
	defer rows.Close()

	counts := map[models.Role]int64{}
	for _, role := range models.AllRoles {
		counts[role] = 0
	}
	for rows.Next() {
		var role string
		var n int64
		if err := rows.Scan(&role, &n); err != nil {
			return nil, fmt.Errorf("error scanning role count: %w", err)
		}
		counts[models.Role(role)] = n
	}
	return counts, rows.Err()
}

// execAffectingOne runs an UPDATE/DELETE and maps zero affected rows to missing
func execAffectingOne(ctx context.Context, q db.Querier, stmt squirrel.Sqlizer, missing error, op string) error {
	sql, args, err := stmt.ToSql()
	if err != nil {
		logger.Error().Err(err).Str("op", op).Msg("Error building statement")
		return fmt.Errorf("failed to build %s query: %w", op, err)
	}
	tag, err := q.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Str("op", op).Msg("Error executing statement")
		return fmt.Errorf("error executing %s: %w", op, err)
	}
	if tag.RowsAffected() == 0 {
		return missing
	}
	return nil
}
