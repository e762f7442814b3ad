package controllers

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/yigit/campushub/internal/middleware"
)

// NotificationController serves the notification websocket
type NotificationController struct {
	streamer NotificationStreamer
	logger   zerolog.Logger
}

// NewNotificationController creates a new NotificationController
func NewNotificationController(streamer NotificationStreamer, logger zerolog.Logger) *NotificationController {
	return &NotificationController{
		streamer: streamer,
		logger:   logger,
	}
}

// Stream handles GET /api/notifications/ws
// @Summary Notification stream
// @Description Upgrades to a websocket that pushes {type, payload, timestamp} events for the caller
// @Tags notifications
// @Produce json
// @Security BearerAuth
// @Success 101 {string} string "Switching protocols"
// @Failure 401 {object} dto.ErrorResponse "Missing or invalid token"
// @Failure 403 {object} dto.ErrorResponse "Role or ownership check failed"
// @Router /api/notifications/ws [get]
func (c *NotificationController) Stream(ctx *gin.Context) {
	userID, ok := middleware.MustUserID(ctx)
	if !ok {
		return
	}

	if err := c.streamer.Serve(ctx.Writer, ctx.Request, userID); err != nil {
		c.logger.Warn().Err(err).Int64("userID", userID).Msg("Notification socket upgrade failed")
		return
	}
	c.logger.Debug().Int64("userID", userID).Msg("Notification socket opened")
}
