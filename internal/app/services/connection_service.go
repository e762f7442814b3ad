package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/yigit/campushub/internal/app/models"
	"github.com/yigit/campushub/internal/pkg/apperrors"
)

// ConnectionService manages connection requests between users
type ConnectionService interface {
	Request(ctx context.Context, requesterID, receiverID int64) (*models.Connection, error)
	List(ctx context.Context, userID int64, status string) ([]models.ConnectionView, error)
	Respond(ctx context.Context, userID, connectionID int64, status string) (*models.Connection, error)
	Remove(ctx context.Context, userID, connectionID int64) error
}

type connectionServiceImpl struct {
	connections ConnectionStore
	notifier    Notifier
	logger      zerolog.Logger
}

// NewConnectionService creates a new ConnectionService. notifier may be nil.
func NewConnectionService(connections ConnectionStore, notifier Notifier, logger zerolog.Logger) ConnectionService {
	return &connectionServiceImpl{
		connections: connections,
		notifier:    notifierOrNop(notifier),
		logger:      logger,
	}
}

func (s *connectionServiceImpl) Request(ctx context.Context, requesterID, receiverID int64) (*models.Connection, error) {
	if requesterID == receiverID {
		return nil, apperrors.NewBadRequestError("cannot connect with yourself")
	}

	conn := &models.Connection{
		RequesterID: requesterID,
		ReceiverID:  receiverID,
		Status:      models.ConnectionPending,
	}
	if err := s.connections.Create(ctx, conn); err != nil {
		return nil, err
	}

	s.logger.Info().Int64("requesterID", requesterID).Int64("receiverID", receiverID).Msg("Connection requested")
	s.notifier.Notify(receiverID, NotifyConnectionRequested, map[string]any{
		"connectionId": conn.ID,
		"requesterId":  requesterID,
	})
	return conn, nil
}

func (s *connectionServiceImpl) List(ctx context.Context, userID int64, status string) ([]models.ConnectionView, error) {
	status = strings.ToLower(strings.TrimSpace(status))
	if status == "" {
		return s.connections.ListForUser(ctx, userID, nil)
	}
	st := models.ConnectionStatus(status)
	if !st.Valid() {
		return nil, apperrors.NewValidationError("status", "status must be one of pending, accepted, rejected")
	}
	return s.connections.ListForUser(ctx, userID, &st)
}

func (s *connectionServiceImpl) Respond(ctx context.Context, userID, connectionID int64, status string) (*models.Connection, error) {
	st := models.ConnectionStatus(strings.ToLower(strings.TrimSpace(status)))
	if st != models.ConnectionAccepted && st != models.ConnectionRejected {
		return nil, apperrors.NewValidationError("status", "status must be accepted or rejected")
	}

	conn, err := s.connections.GetByID(ctx, connectionID)
	if err != nil {
		return nil, err
	}
	if conn.ReceiverID != userID {
		return nil, apperrors.NewForbiddenError("only the receiver can answer a connection request")
	}
	if conn.Status != models.ConnectionPending {
		return nil, apperrors.NewCustomError(apperrors.ErrInvalidStateTransition,
			fmt.Sprintf("connection is already %s", conn.Status))
	}

	if err := s.connections.Respond(ctx, connectionID, st); err != nil {
		return nil, err
	}
	s.notifier.Notify(conn.RequesterID, NotifyConnectionAnswered, map[string]any{
		"connectionId": connectionID,
		"status":       st,
	})
	return s.connections.GetByID(ctx, connectionID)
}

func (s *connectionServiceImpl) Remove(ctx context.Context, userID, connectionID int64) error {
	conn, err := s.connections.GetByID(ctx, connectionID)
	if err != nil {
		return err
	}
	if !conn.Involves(userID) {
		return apperrors.NewForbiddenError("only a party to the connection can remove it")
	}
	return s.connections.Delete(ctx, connectionID)
}
