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

var registrationColumns = []string{
	"r.id", "r.event_id", "e.title", "e.starts_at", "r.sub_event_id", "r.user_id",
	"p.full_name", "p.email", "r.status", "r.created_at", "r.updated_at",
	"pay.id", "pay.amount_cents", "pay.currency", "pay.status", "pay.provider_ref",
	"pay.created_at", "pay.updated_at",
}

// RegistrationParams describes a new registration. Payment is nil for free
// events; capacities are nil when unlimited.
type RegistrationParams struct {
	EventID          int64
	SubEventID       *int64
	UserID           int64
	Status           models.RegistrationStatus
	Payment          *models.Payment
	EventCapacity    *int
	SubEventCapacity *int
}

// RegistrationRepository handles registrations and their payments
type RegistrationRepository struct {
	db *db.PostgresDB
	sb squirrel.StatementBuilderType
}

// NewRegistrationRepository creates a new RegistrationRepository
func NewRegistrationRepository(database *db.PostgresDB) *RegistrationRepository {
	return &RegistrationRepository{db: database, sb: newStatementBuilder()}
}

func scanRegistration(row pgx.Row) (*models.Registration, error) {
	var reg models.Registration
	var status string
	var eventStartsAt time.Time
	var (
		payID          *int64
		payAmount      *int64
		payCurrency    *string
		payStatus      *string
		payProviderRef *string
		payCreatedAt   *time.Time
		payUpdatedAt   *time.Time
	)
	err := row.Scan(
		&reg.ID, &reg.EventID, &reg.EventTitle, &eventStartsAt, &reg.SubEventID, &reg.UserID,
		&reg.AttendeeName, &reg.AttendeeEmail, &status, &reg.CreatedAt, &reg.UpdatedAt,
		&payID, &payAmount, &payCurrency, &payStatus, &payProviderRef, &payCreatedAt, &payUpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	reg.Status = models.RegistrationStatus(status)
	reg.EventStartsAt = &eventStartsAt
	if payID != nil {
		reg.Payment = &models.Payment{
			ID:             *payID,
			RegistrationID: reg.ID,
			UserID:         reg.UserID,
			AmountCents:    *payAmount,
			Currency:       *payCurrency,
			Status:         models.PaymentStatus(*payStatus),
			ProviderRef:    payProviderRef,
			CreatedAt:      *payCreatedAt,
			UpdatedAt:      *payUpdatedAt,
		}
	}
	return &reg, nil
}

func (r *RegistrationRepository) baseQuery() squirrel.SelectBuilder {
	return r.sb.Select(registrationColumns...).
		From("registrations r").
		Join("events e ON e.id = r.event_id").
		Join("profiles p ON p.id = r.user_id").
		JoinClause("LEFT JOIN LATERAL (SELECT * FROM payments WHERE registration_id = r.id ORDER BY id DESC LIMIT 1) pay ON TRUE")
}

func subEventKey(id *int64) int64 {
	if id == nil {
		return 0
	}
	return *id
}

// planReactivation decides how a cancelled registration comes back. A
// completed payment still covers the seat, so it is confirmed without a new
// charge. Otherwise the requested status applies and a new payment is added
// next to the old ones.
func planReactivation(requested models.RegistrationStatus, prior *models.PaymentStatus) (models.RegistrationStatus, bool) {
	if prior != nil && *prior == models.PaymentCompleted {
		return models.RegistrationConfirmed, false
	}
	return requested, true
}

func (r *RegistrationRepository) latestPaymentQuery(registrationID int64) squirrel.SelectBuilder {
	return r.sb.Select("status").From("payments").
		Where(squirrel.Eq{"registration_id": registrationID}).
		OrderBy("id DESC").
		Limit(1)
}

func (r *RegistrationRepository) latestPaymentStatus(ctx context.Context, q db.Querier, registrationID int64) (*models.PaymentStatus, error) {
	sql, args, err := r.latestPaymentQuery(registrationID).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build latest payment query: %w", err)
	}
	var status string
	if err := q.QueryRow(ctx, sql, args...).Scan(&status); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("error reading latest payment: %w", err)
	}
	ps := models.PaymentStatus(status)
	return &ps, nil
}

// Create registers the user inside one transaction. The event row is locked
// while capacity is checked. A previously cancelled registration for the same
// slot is reactivated instead of inserted; its payment history is kept.
func (r *RegistrationRepository) Create(ctx context.Context, p RegistrationParams) (*models.Registration, error) {
	var regID int64

	err := r.db.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		sql, args, err := r.sb.Select("id").From("events").
			Where(squirrel.Eq{"id": p.EventID}).
			Suffix("FOR UPDATE").
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to build lock event query: %w", err)
		}
		var lockedID int64
		if err := tx.QueryRow(ctx, sql, args...).Scan(&lockedID); err != nil {
			return notFound(err, apperrors.ErrEventNotFound)
		}

		existingID, existingStatus, err := r.findSlot(ctx, tx, p)
		if err != nil {
			return err
		}
		if existingID != 0 && existingStatus != models.RegistrationCancelled {
			return apperrors.ErrAlreadyRegistered
		}

		if err := r.checkCapacity(ctx, tx, p); err != nil {
			return err
		}

		charge := true
		if existingID != 0 {
			prior, err := r.latestPaymentStatus(ctx, tx, existingID)
			if err != nil {
				return err
			}
			var status models.RegistrationStatus
			status, charge = planReactivation(p.Status, prior)
			sql, args, err = r.sb.Update("registrations").
				Set("status", string(status)).
				Set("updated_at", squirrel.Expr("NOW()")).
				Where(squirrel.Eq{"id": existingID}).
				ToSql()
			if err != nil {
				return fmt.Errorf("failed to build reactivate registration query: %w", err)
			}
			if _, err := tx.Exec(ctx, sql, args...); err != nil {
				return fmt.Errorf("error reactivating registration: %w", err)
			}
			regID = existingID
		} else {
			sql, args, err = r.sb.Insert("registrations").
				Columns("event_id", "sub_event_id", "user_id", "status").
				Values(p.EventID, p.SubEventID, p.UserID, string(p.Status)).
				Suffix("RETURNING id").
				ToSql()
			if err != nil {
				return fmt.Errorf("failed to build create registration query: %w", err)
			}
			if err := tx.QueryRow(ctx, sql, args...).Scan(&regID); err != nil {
				if dberrors.IsDuplicateConstraintError(err, "registrations_event_user_key") {
					return apperrors.ErrAlreadyRegistered
				}
				if dberrors.IsForeignKeyError(err) {
					return apperrors.NewResourceNotFoundError("event or sub-event not found")
				}
				logger.Error().Err(err).Int64("eventID", p.EventID).Int64("userID", p.UserID).Msg("Error creating registration")
				return fmt.Errorf("error creating registration: %w", err)
			}
		}

		if p.Payment == nil || !charge {
			return nil
		}
		sql, args, err = r.sb.Insert("payments").
			Columns("registration_id", "amount_cents", "currency", "status").
			Values(regID, p.Payment.AmountCents, p.Payment.Currency, string(models.PaymentPending)).
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to build create payment query: %w", err)
		}
		if _, err := tx.Exec(ctx, sql, args...); err != nil {
			logger.Error().Err(err).Int64("registrationID", regID).Msg("Error creating payment")
			return fmt.Errorf("error creating payment: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, regID)
}

func (r *RegistrationRepository) findSlot(ctx context.Context, q db.Querier, p RegistrationParams) (int64, models.RegistrationStatus, error) {
	sql, args, err := r.sb.Select("id", "status").From("registrations").
		Where(squirrel.Eq{"event_id": p.EventID, "user_id": p.UserID}).
		Where("COALESCE(sub_event_id, 0) = ?", subEventKey(p.SubEventID)).
		ToSql()
	if err != nil {
		return 0, "", fmt.Errorf("failed to build find registration query: %w", err)
	}
	var id int64
	var status string
	if err := q.QueryRow(ctx, sql, args...).Scan(&id, &status); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, "", nil
		}
		return 0, "", fmt.Errorf("error finding registration: %w", err)
	}
	return id, models.RegistrationStatus(status), nil
}

// buildCapacityQuery counts other attendees holding an active registration.
// Event capacity counts distinct users across the event; sub-event capacity
// counts registrations for that sub-event.
func (r *RegistrationRepository) buildCapacityQuery(eventID int64, subEventID *int64, userID int64) squirrel.SelectBuilder {
	q := r.sb.Select("COUNT(DISTINCT user_id)").From("registrations").
		Where(squirrel.Eq{"event_id": eventID}).
		Where(squirrel.NotEq{"status": string(models.RegistrationCancelled)}).
		Where(squirrel.NotEq{"user_id": userID})
	if subEventID != nil {
		q = q.Where(squirrel.Eq{"sub_event_id": *subEventID})
	}
	return q
}

func (r *RegistrationRepository) checkCapacity(ctx context.Context, q db.Querier, p RegistrationParams) error {
	if p.EventCapacity != nil {
		taken, err := countRows(ctx, q, r.buildCapacityQuery(p.EventID, nil, p.UserID))
		if err != nil {
			return err
		}
		if taken >= int64(*p.EventCapacity) {
			return apperrors.ErrEventFull
		}
	}
	if p.SubEventCapacity != nil && p.SubEventID != nil {
		taken, err := countRows(ctx, q, r.buildCapacityQuery(p.EventID, p.SubEventID, p.UserID))
		if err != nil {
			return err
		}
		if taken >= int64(*p.SubEventCapacity) {
			return apperrors.ErrEventFull
		}
	}
	return nil
}

// GetByID returns a registration with event, attendee and payment details
func (r *RegistrationRepository) GetByID(ctx context.Context, id int64) (*models.Registration, error) {
	sql, args, err := r.baseQuery().Where(squirrel.Eq{"r.id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get registration query: %w", err)
	}
	reg, err := scanRegistration(r.db.Pool.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewResourceNotFoundError("registration not found")
		}
		logger.Error().Err(err).Int64("registrationID", id).Msg("Error scanning registration")
		return nil, fmt.Errorf("error retrieving registration: %w", err)
	}
	return reg, nil
}

func (r *RegistrationRepository) list(ctx context.Context, where squirrel.Sqlizer, orderBy ...string) ([]models.Registration, error) {
	sql, args, err := r.baseQuery().Where(where).OrderBy(orderBy...).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list registrations query: %w", err)
	}
	rows, err := r.db.Pool.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error listing registrations")
		return nil, fmt.Errorf("error listing registrations: %w", err)
	}
	defer rows.Close()

	regs := []models.Registration{}
	for rows.Next() {
		reg, err := scanRegistration(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning registration row: %w", err)
		}
		regs = append(regs, *reg)
	}
	return regs, rows.Err()
}

// ListByUser returns a student's registrations, soonest event first
func (r *RegistrationRepository) ListByUser(ctx context.Context, userID int64) ([]models.Registration, error) {
	return r.list(ctx, squirrel.Eq{"r.user_id": userID}, "e.starts_at ASC", "r.id ASC")
}

// ListByEvent returns the registrations of one event
func (r *RegistrationRepository) ListByEvent(ctx context.Context, eventID int64) ([]models.Registration, error) {
	return r.list(ctx, squirrel.Eq{"r.event_id": eventID}, "r.created_at ASC", "r.id ASC")
}

// Cancel cancels a live registration and fails its pending payment
func (r *RegistrationRepository) Cancel(ctx context.Context, id int64) error {
	return r.db.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		err := execAffectingOne(ctx, tx, r.sb.Update("registrations").
			Set("status", string(models.RegistrationCancelled)).
			Set("updated_at", squirrel.Expr("NOW()")).
			Where(squirrel.Eq{"id": id}).
			Where(squirrel.NotEq{"status": string(models.RegistrationCancelled)}),
			apperrors.NewCustomError(apperrors.ErrInvalidStateTransition, "registration is already cancelled"),
			"cancel registration")
		if err != nil {
			return err
		}

		sql, args, err := r.sb.Update("payments").
			Set("status", string(models.PaymentFailed)).
			Set("updated_at", squirrel.Expr("NOW()")).
			Where(squirrel.Eq{"registration_id": id, "status": string(models.PaymentPending)}).
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to build fail payment query: %w", err)
		}
		if _, err := tx.Exec(ctx, sql, args...); err != nil {
			return fmt.Errorf("error failing pending payment: %w", err)
		}
		return nil
	})
}

// GetPayment returns a payment with the owning user id
func (r *RegistrationRepository) GetPayment(ctx context.Context, id int64) (*models.Payment, error) {
	sql, args, err := r.sb.Select("pay.id", "pay.registration_id", "r.user_id", "pay.amount_cents",
		"pay.currency", "pay.status", "pay.provider_ref", "pay.created_at", "pay.updated_at").
		From("payments pay").
		Join("registrations r ON r.id = pay.registration_id").
		Where(squirrel.Eq{"pay.id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get payment query: %w", err)
	}

	var pay models.Payment
	var status string
	err = r.db.Pool.QueryRow(ctx, sql, args...).Scan(&pay.ID, &pay.RegistrationID, &pay.UserID,
		&pay.AmountCents, &pay.Currency, &status, &pay.ProviderRef, &pay.CreatedAt, &pay.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrPaymentNotFound
		}
		logger.Error().Err(err).Int64("paymentID", id).Msg("Error scanning payment")
		return nil, fmt.Errorf("error retrieving payment: %w", err)
	}
	pay.Status = models.PaymentStatus(status)
	return &pay, nil
}

// transitionPayment moves a payment from one state to the next and, when
// regStatus is set, the registration with it.
func (r *RegistrationRepository) transitionPayment(ctx context.Context, id int64, from, to models.PaymentStatus, providerRef *string, regStatus *models.RegistrationStatus) error {
	return r.db.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		update := r.sb.Update("payments").
			Set("status", string(to)).
			Set("updated_at", squirrel.Expr("NOW()")).
			Where(squirrel.Eq{"id": id, "status": string(from)}).
			Suffix("RETURNING registration_id")
		if providerRef != nil {
			update = update.Set("provider_ref", *providerRef)
		}
		sql, args, err := update.ToSql()
		if err != nil {
			return fmt.Errorf("failed to build payment transition query: %w", err)
		}

		var registrationID int64
		if err := tx.QueryRow(ctx, sql, args...).Scan(&registrationID); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return apperrors.NewCustomError(apperrors.ErrInvalidStateTransition,
					fmt.Sprintf("payment must be %s to become %s", from, to))
			}
			logger.Error().Err(err).Int64("paymentID", id).Msg("Error transitioning payment")
			return fmt.Errorf("error updating payment: %w", err)
		}

		if regStatus == nil {
			return nil
		}
		sql, args, err = r.sb.Update("registrations").
			Set("status", string(*regStatus)).
			Set("updated_at", squirrel.Expr("NOW()")).
			Where(squirrel.Eq{"id": registrationID}).
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to build registration status query: %w", err)
		}
		if _, err := tx.Exec(ctx, sql, args...); err != nil {
			logger.Error().Err(err).Int64("registrationID", registrationID).Msg("Error updating registration status")
			return fmt.Errorf("error updating registration: %w", err)
		}
		return nil
	})
}

// CompletePayment marks a pending payment completed and confirms the registration
func (r *RegistrationRepository) CompletePayment(ctx context.Context, id int64, providerRef *string) error {
	confirmed := models.RegistrationConfirmed
	return r.transitionPayment(ctx, id, models.PaymentPending, models.PaymentCompleted, blankToNil(providerRef), &confirmed)
}

// FailPayment marks a pending payment failed; the registration stays pending
func (r *RegistrationRepository) FailPayment(ctx context.Context, id int64) error {
	return r.transitionPayment(ctx, id, models.PaymentPending, models.PaymentFailed, nil, nil)
}

// RefundPayment marks a completed payment refunded and cancels the registration
func (r *RegistrationRepository) RefundPayment(ctx context.Context, id int64) error {
	cancelled := models.RegistrationCancelled
	return r.transitionPayment(ctx, id, models.PaymentCompleted, models.PaymentRefunded, nil, &cancelled)
}

func (r *RegistrationRepository) completedPaymentsQuery(eventID int64) squirrel.SelectBuilder {
	return r.sb.Select("COUNT(*)").From("payments pay").
		Join("registrations r ON r.id = pay.registration_id").
		Where(squirrel.Eq{"r.event_id": eventID, "pay.status": string(models.PaymentCompleted)})
}

// CountCompletedPayments counts the payments of an event that were taken
// and not refunded
func (r *RegistrationRepository) CountCompletedPayments(ctx context.Context, eventID int64) (int64, error) {
	return countRows(ctx, r.db.Pool, r.completedPaymentsQuery(eventID))
}

// Count returns the number of non-cancelled registrations
func (r *RegistrationRepository) Count(ctx context.Context) (int64, error) {
	return countRows(ctx, r.db.Pool, r.sb.Select("COUNT(*)").From("registrations").
		Where(squirrel.NotEq{"status": string(models.RegistrationCancelled)}))
}

// RevenueByCurrency sums completed payments per currency
func (r *RegistrationRepository) RevenueByCurrency(ctx context.Context) (map[string]int64, error) {
	sql, args, err := r.sb.Select("currency", "COALESCE(SUM(amount_cents), 0)").
		From("payments").
		Where(squirrel.Eq{"status": string(models.PaymentCompleted)}).
		GroupBy("currency").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build revenue query: %w", err)
	}
	rows, err := r.db.Pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error summing revenue: %w", err)
	}
	defer rows.Close()

	revenue := map[string]int64{}
	for rows.Next() {
		var currency string
		var cents int64
		if err := rows.Scan(&currency, &cents); err != nil {
			return nil, fmt.Errorf("error scanning revenue row: %w", err)
		}
		revenue[currency] = cents
	}
	return revenue, rows.Err()
}
