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

var errConnectionNotFound = apperrors.NewResourceNotFoundError("connection not found")

// ConnectionRepository handles connection requests between users
type ConnectionRepository struct {
	db db.Querier
	sb squirrel.StatementBuilderType
}

// NewConnectionRepository creates a new ConnectionRepository
func NewConnectionRepository(q db.Querier) *ConnectionRepository {
	return &ConnectionRepository{db: q, sb: newStatementBuilder()}
}

// Create inserts a pending connection
func (r *ConnectionRepository) Create(ctx context.Context, c *models.Connection) error {
	c.Status = models.ConnectionPending
	sql, args, err := r.sb.Insert("connections").
		Columns("requester_id", "receiver_id", "status").
		Values(c.RequesterID, c.ReceiverID, string(c.Status)).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building create connection query")
		return fmt.Errorf("failed to build create connection query: %w", err)
	}

	if err := r.db.QueryRow(ctx, sql, args...).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt); err != nil {
		switch {
		case dberrors.IsDuplicateConstraintError(err, "connections_pair_key"):
			return apperrors.ErrConnectionAlreadyExists
		case dberrors.IsForeignKeyError(err):
			return apperrors.ErrUserNotFound
		case dberrors.IsCheckViolation(err):
			return apperrors.NewBadRequestError("cannot connect with yourself")
		}
		logger.Error().Err(err).Int64("requesterID", c.RequesterID).Int64("receiverID", c.ReceiverID).Msg("Error creating connection")
		return fmt.Errorf("error creating connection: %w", err)
	}
	return nil
}

// GetByID returns a connection
func (r *ConnectionRepository) GetByID(ctx context.Context, id int64) (*models.Connection, error) {
	sql, args, err := r.sb.Select("id", "requester_id", "receiver_id", "status", "created_at", "updated_at").
		From("connections").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get connection query: %w", err)
	}

	var c models.Connection
	var status string
	err = r.db.QueryRow(ctx, sql, args...).Scan(&c.ID, &c.RequesterID, &c.ReceiverID, &status, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errConnectionNotFound
		}
		logger.Error().Err(err).Int64("connectionID", id).Msg("Error scanning connection")
		return nil, fmt.Errorf("error retrieving connection: %w", err)
	}
	c.Status = models.ConnectionStatus(status)
	return &c, nil
}

// buildListForUserQuery selects both directions with the other party's profile
func (r *ConnectionRepository) buildListForUserQuery(userID int64, status *models.ConnectionStatus) squirrel.SelectBuilder {
	q := r.sb.Select("c.id", "c.requester_id", "c.receiver_id", "c.status", "c.created_at", "c.updated_at").
		Column(squirrel.Expr("CASE WHEN c.requester_id = ? THEN 'outgoing' ELSE 'incoming' END", userID)).
		Columns("o.id", "o.full_name", "o.email").
		From("connections c").
		Join("profiles o ON o.id = CASE WHEN c.requester_id = ? THEN c.receiver_id ELSE c.requester_id END", userID).
		Where(squirrel.Or{
			squirrel.Eq{"c.requester_id": userID},
			squirrel.Eq{"c.receiver_id": userID},
		})
	if status != nil {
		q = q.Where(squirrel.Eq{"c.status": string(*status)})
	}
	return q.OrderBy("c.updated_at DESC", "c.id DESC")
}

// ListForUser returns the user's connections in both directions
func (r *ConnectionRepository) ListForUser(ctx context.Context, userID int64, status *models.ConnectionStatus) ([]models.ConnectionView, error) {
	sql, args, err := r.buildListForUserQuery(userID, status).ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building list connections query")
		return nil, fmt.Errorf("failed to build list connections query: %w", err)
	}
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("userID", userID).Msg("Error listing connections")
		return nil, fmt.Errorf("error listing connections: %w", err)
	}
	defer rows.Close()

	views := []models.ConnectionView{}
	for rows.Next() {
		var v models.ConnectionView
		var st string
		if err := rows.Scan(&v.ID, &v.RequesterID, &v.ReceiverID, &st, &v.CreatedAt, &v.UpdatedAt,
			&v.Direction, &v.OtherUserID, &v.OtherUserName, &v.OtherUserEmail); err != nil {
			return nil, fmt.Errorf("error scanning connection row: %w", err)
		}
		v.Status = models.ConnectionStatus(st)
		views = append(views, v)
	}
	return views, rows.Err()
}

// Respond moves a pending connection to accepted or rejected
func (r *ConnectionRepository) Respond(ctx context.Context, id int64, status models.ConnectionStatus) error {
	return execAffectingOne(ctx, r.db, r.sb.Update("connections").
		Set("status", string(status)).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id, "status": string(models.ConnectionPending)}),
		apperrors.NewCustomError(apperrors.ErrInvalidStateTransition, "only pending connections can be answered"),
		"respond to connection")
}

// Delete removes a connection
func (r *ConnectionRepository) Delete(ctx context.Context, id int64) error {
	return execAffectingOne(ctx, r.db, r.sb.Delete("connections").Where(squirrel.Eq{"id": id}),
		errConnectionNotFound, "delete connection")
}
