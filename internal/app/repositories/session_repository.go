package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/yigit/campushub/internal/app/models"
	"github.com/yigit/campushub/internal/db"
	"github.com/yigit/campushub/internal/pkg/apperrors"
	"github.com/yigit/campushub/internal/pkg/dberrors"
	"github.com/yigit/campushub/internal/pkg/logger"
)

// SessionRepository handles auth_sessions, one row per issued token
type SessionRepository struct {
	db db.Querier
	sb squirrel.StatementBuilderType
}

// NewSessionRepository creates a new SessionRepository
func NewSessionRepository(q db.Querier) *SessionRepository {
	return &SessionRepository{
		db: q,
		sb: newStatementBuilder(),
	}
}

// Create stores a new session
func (r *SessionRepository) Create(ctx context.Context, session *models.AuthSession) error {
	sql, args, err := r.sb.Insert("auth_sessions").
		Columns("id", "account_id", "expires_at").
		Values(session.ID, session.AccountID, session.ExpiresAt).
		Suffix("RETURNING created_at").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building create session SQL")
		return fmt.Errorf("failed to build create session query: %w", err)
	}

	if err := r.db.QueryRow(ctx, sql, args...).Scan(&session.CreatedAt); err != nil {
		if dberrors.IsDuplicateKeyError(err) {
			logger.Warn().Str("sessionID", session.ID).Msg("Attempted to create duplicate session")
			return apperrors.ErrTokenInvalid
		}
		logger.Error().Err(err).Int64("accountID", session.AccountID).Msg("Error executing create session query")
		return fmt.Errorf("error creating session: %w", err)
	}
	return nil
}

// Get returns the session with the given id
func (r *SessionRepository) Get(ctx context.Context, id string) (*models.AuthSession, error) {
	sql, args, err := r.sb.Select("id::text", "account_id", "expires_at", "revoked_at", "created_at").
		From("auth_sessions").
		Where(squirrel.Eq{"id": id}).
		Limit(1).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building get session SQL")
		return nil, fmt.Errorf("failed to build get session query: %w", err)
	}

	var s models.AuthSession
	err = r.db.QueryRow(ctx, sql, args...).Scan(&s.ID, &s.AccountID, &s.ExpiresAt, &s.RevokedAt, &s.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrTokenNotFound
		}
		logger.Error().Err(err).Str("sessionID", id).Msg("Error scanning session row")
		return nil, fmt.Errorf("error retrieving session: %w", err)
	}
	return &s, nil
}

// Revoke marks one session revoked. Revoking an already revoked session is a no-op.
func (r *SessionRepository) Revoke(ctx context.Context, id string) error {
	sql, args, err := r.sb.Update("auth_sessions").
		Set("revoked_at", squirrel.Expr("COALESCE(revoked_at, NOW())")).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building revoke session SQL")
		return fmt.Errorf("failed to build revoke session query: %w", err)
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Str("sessionID", id).Msg("Error executing revoke session query")
		return fmt.Errorf("error revoking session: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrTokenNotFound
	}
	return nil
}

// RevokeAllForAccount revokes every live session of an account
func (r *SessionRepository) RevokeAllForAccount(ctx context.Context, accountID int64) error {
	sql, args, err := r.sb.Update("auth_sessions").
		Set("revoked_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"account_id": accountID, "revoked_at": nil}).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building revoke all sessions SQL")
		return fmt.Errorf("failed to build revoke all sessions query: %w", err)
	}

	if _, err := r.db.Exec(ctx, sql, args...); err != nil {
		logger.Error().Err(err).Int64("accountID", accountID).Msg("Error executing revoke all sessions query")
		return fmt.Errorf("error revoking sessions: %w", err)
	}
	return nil
}

// DeleteExpired removes sessions that expired before the cutoff
func (r *SessionRepository) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	sql, args, err := r.sb.Delete("auth_sessions").
		Where(squirrel.Lt{"expires_at": before}).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building delete expired sessions SQL")
		return 0, fmt.Errorf("failed to build delete expired sessions query: %w", err)
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing delete expired sessions query")
		return 0, fmt.Errorf("error deleting expired sessions: %w", err)
	}
	return tag.RowsAffected(), nil
}
