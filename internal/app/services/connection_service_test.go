package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/campushub/internal/app/models"
	"github.com/yigit/campushub/internal/pkg/apperrors"
)

func TestConnectionRequestAndAnswer(t *testing.T) {
	store := newFakeConnectionStore()
	notes := &recordingNotifier{}
	svc := NewConnectionService(store, notes, nopLogger())
	ctx := context.Background()

	_, err := svc.Request(ctx, 1, 1)
	assert.True(t, errors.Is(err, apperrors.ErrBadRequest))

	conn, err := svc.Request(ctx, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, models.ConnectionPending, conn.Status)

	_, err = svc.Request(ctx, 2, 1)
	assert.True(t, errors.Is(err, apperrors.ErrConnectionAlreadyExists), "pairs are unordered")

	_, err = svc.Respond(ctx, 1, conn.ID, "accepted")
	assert.True(t, errors.Is(err, apperrors.ErrPermissionDenied), "requester cannot accept")

	_, err = svc.Respond(ctx, 2, conn.ID, "pending")
	assert.True(t, errors.Is(err, apperrors.ErrValidationFailed))

	accepted, err := svc.Respond(ctx, 2, conn.ID, "ACCEPTED")
	require.NoError(t, err)
	assert.Equal(t, models.ConnectionAccepted, accepted.Status)

	require.Len(t, notes.sent, 2)
	assert.Equal(t, sentNotification{userID: 2, kind: NotifyConnectionRequested}, notes.sent[0])
	assert.Equal(t, sentNotification{userID: 1, kind: NotifyConnectionAnswered}, notes.sent[1])

	_, err = svc.Respond(ctx, 2, conn.ID, "rejected")
	assert.True(t, errors.Is(err, apperrors.ErrInvalidStateTransition))
}

func TestConnectionListAndRemove(t *testing.T) {
	store := newFakeConnectionStore()
	svc := NewConnectionService(store, nil, nopLogger())
	ctx := context.Background()

	first, err := svc.Request(ctx, 1, 2)
	require.NoError(t, err)
	_, err = svc.Request(ctx, 3, 1)
	require.NoError(t, err)
	_, err = svc.Respond(ctx, 2, first.ID, "accepted")
	require.NoError(t, err)

	all, err := svc.List(ctx, 1, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	pending, err := svc.List(ctx, 1, "pending")
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "incoming", pending[0].Direction)
	assert.Equal(t, int64(3), pending[0].OtherUserID)

	_, err = svc.List(ctx, 1, "blocked")
	assert.True(t, errors.Is(err, apperrors.ErrValidationFailed))

	err = svc.Remove(ctx, 3, first.ID)
	assert.True(t, errors.Is(err, apperrors.ErrPermissionDenied))

	require.NoError(t, svc.Remove(ctx, 2, first.ID))
	_, err = svc.Request(ctx, 2, 1)
	assert.NoError(t, err, "removed pairs can reconnect")
}
