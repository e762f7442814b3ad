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

var errInquiryNotFound = apperrors.NewResourceNotFoundError("inquiry not found")

var inquiryColumns = []string{
	"i.id", "i.sender_id", "s.full_name", "i.recipient_id", "rc.full_name",
	"i.target_type", "i.target_id", "i.subject", "i.message", "i.is_read",
	"i.replied_at", "i.created_at",
}

// InquiryRepository handles inquiries sent to listing owners
type InquiryRepository struct {
	db db.Querier
	sb squirrel.StatementBuilderType
}

// NewInquiryRepository creates a new InquiryRepository
func NewInquiryRepository(q db.Querier) *InquiryRepository {
	return &InquiryRepository{db: q, sb: newStatementBuilder()}
}

func scanInquiry(row pgx.Row) (*models.Inquiry, error) {
	var i models.Inquiry
	var target string
	err := row.Scan(&i.ID, &i.SenderID, &i.SenderName, &i.RecipientID, &i.RecipientName,
		&target, &i.TargetID, &i.Subject, &i.Message, &i.IsRead, &i.RepliedAt, &i.CreatedAt)
	if err != nil {
		return nil, err
	}
	i.TargetType = models.InquiryTarget(target)
	return &i, nil
}

func (r *InquiryRepository) baseQuery() squirrel.SelectBuilder {
	return r.sb.Select(inquiryColumns...).
		From("inquiries i").
		Join("profiles s ON s.id = i.sender_id").
		Join("profiles rc ON rc.id = i.recipient_id")
}

// Create inserts an inquiry
func (r *InquiryRepository) Create(ctx context.Context, i *models.Inquiry) error {
	sql, args, err := r.sb.Insert("inquiries").
		Columns("sender_id", "recipient_id", "target_type", "target_id", "subject", "message").
		Values(i.SenderID, i.RecipientID, string(i.TargetType), i.TargetID, i.Subject, i.Message).
		Suffix("RETURNING id, is_read, created_at").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building create inquiry query")
		return fmt.Errorf("failed to build create inquiry query: %w", err)
	}
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&i.ID, &i.IsRead, &i.CreatedAt); err != nil {
		if dberrors.IsForeignKeyError(err) {
			return apperrors.ErrUserNotFound
		}
		logger.Error().Err(err).Int64("senderID", i.SenderID).Msg("Error creating inquiry")
		return fmt.Errorf("error creating inquiry: %w", err)
	}
	return nil
}

// GetByID returns an inquiry with both parties' names
func (r *InquiryRepository) GetByID(ctx context.Context, id int64) (*models.Inquiry, error) {
	sql, args, err := r.baseQuery().Where(squirrel.Eq{"i.id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get inquiry query: %w", err)
	}
	i, err := scanInquiry(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errInquiryNotFound
		}
		logger.Error().Err(err).Int64("inquiryID", id).Msg("Error scanning inquiry")
		return nil, fmt.Errorf("error retrieving inquiry: %w", err)
	}
	return i, nil
}

func (r *InquiryRepository) list(ctx context.Context, where squirrel.Sqlizer) ([]models.Inquiry, error) {
	sql, args, err := r.baseQuery().Where(where).OrderBy("i.created_at DESC", "i.id DESC").ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list inquiries query: %w", err)
	}
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error listing inquiries")
		return nil, fmt.Errorf("error listing inquiries: %w", err)
	}
	defer rows.Close()

	out := []models.Inquiry{}
	for rows.Next() {
		i, err := scanInquiry(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning inquiry row: %w", err)
		}
		out = append(out, *i)
	}
	return out, rows.Err()
}

// ListInbox returns inquiries received by the user, newest first
func (r *InquiryRepository) ListInbox(ctx context.Context, userID int64) ([]models.Inquiry, error) {
	return r.list(ctx, squirrel.Eq{"i.recipient_id": userID})
}

// ListSent returns inquiries sent by the user, newest first
func (r *InquiryRepository) ListSent(ctx context.Context, userID int64) ([]models.Inquiry, error) {
	return r.list(ctx, squirrel.Eq{"i.sender_id": userID})
}

// MarkRead sets is_read
func (r *InquiryRepository) MarkRead(ctx context.Context, id int64) error {
	return execAffectingOne(ctx, r.db, r.sb.Update("inquiries").
		Set("is_read", true).
		Where(squirrel.Eq{"id": id}), errInquiryNotFound, "mark inquiry read")
}

// MarkReplied sets replied_at; an inquiry that was replied to is also read
func (r *InquiryRepository) MarkReplied(ctx context.Context, id int64, at time.Time) error {
	return execAffectingOne(ctx, r.db, r.sb.Update("inquiries").
		Set("replied_at", at).
		Set("is_read", true).
		Where(squirrel.Eq{"id": id}), errInquiryNotFound, "mark inquiry replied")
}
