package controllers

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/yigit/campushub/internal/app/models/dto"
	"github.com/yigit/campushub/internal/app/services"
	"github.com/yigit/campushub/internal/middleware"
)

// ConnectionController serves /api/connections
type ConnectionController struct {
	connectionService services.ConnectionService
	logger            zerolog.Logger
}

// NewConnectionController creates a new ConnectionController
func NewConnectionController(connectionService services.ConnectionService, logger zerolog.Logger) *ConnectionController {
	return &ConnectionController{
		connectionService: connectionService,
		logger:            logger,
	}
}

// Request handles POST /api/connections
// @Summary Request a connection
// @Description Sends a connection request to another user. The receiver is notified.
// @Tags connections
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateConnectionRequest true "Receiver"
// @Success 201 {object} dto.APIResponse{data=models.Connection} "Pending connection"
// @Failure 400 {object} dto.ErrorResponse "Invalid request or validation error"
// @Failure 401 {object} dto.ErrorResponse "Missing or invalid token"
// @Failure 404 {object} dto.ErrorResponse "Resource not found"
// @Failure 409 {object} dto.ErrorResponse "Conflicts with the current state"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /api/connections [post]
func (c *ConnectionController) Request(ctx *gin.Context) {
	userID, ok := middleware.MustUserID(ctx)
	if !ok {
		return
	}

	var req dto.CreateConnectionRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	conn, err := c.connectionService.Request(ctx.Request.Context(), userID, req.ReceiverID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondCreated(ctx, conn)
}

// List handles GET /api/connections?status=
// @Summary List connections
// @Description Returns the caller's connections in both directions
// @Tags connections
// @Produce json
// @Security BearerAuth
// @Param status query string false "pending, accepted or rejected"
// @Success 200 {object} dto.APIResponse{data=[]models.ConnectionView} "Connections"
// @Failure 400 {object} dto.ErrorResponse "Invalid request or validation error"
// @Failure 401 {object} dto.ErrorResponse "Missing or invalid token"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /api/connections [get]
func (c *ConnectionController) List(ctx *gin.Context) {
	userID, ok := middleware.MustUserID(ctx)
	if !ok {
		return
	}

	conns, err := c.connectionService.List(ctx.Request.Context(), userID, ctx.Query("status"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, conns)
}

// Respond handles PATCH /api/connections/:id
// @Summary Answer a connection request
// @Description Accepts or rejects a request addressed to the caller. The requester is notified.
// @Tags connections
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Connection ID"
// @Param request body dto.UpdateConnectionRequest true "Answer"
// @Success 200 {object} dto.APIResponse{data=models.Connection} "Answered connection"
// @Failure 400 {object} dto.ErrorResponse "Invalid request or validation error"
// @Failure 401 {object} dto.ErrorResponse "Missing or invalid token"
// @Failure 403 {object} dto.ErrorResponse "Role or ownership check failed"
// @Failure 404 {object} dto.ErrorResponse "Resource not found"
// @Failure 409 {object} dto.ErrorResponse "Conflicts with the current state"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /api/connections/{id} [patch]
func (c *ConnectionController) Respond(ctx *gin.Context) {
	userID, ok := middleware.MustUserID(ctx)
	if !ok {
		return
	}
	id, ok := idParam(ctx, "id")
	if !ok {
		return
	}

	var req dto.UpdateConnectionRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	conn, err := c.connectionService.Respond(ctx.Request.Context(), userID, id, req.Status)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, conn)
}

// Remove handles DELETE /api/connections/:id
// @Summary Remove a connection
// @Description Deletes a connection the caller is part of
// @Tags connections
// @Produce json
// @Security BearerAuth
// @Param id path int true "Connection ID"
// @Success 200 {object} dto.APIResponse{data=dto.MessageResponse} "Connection removed"
// @Failure 400 {object} dto.ErrorResponse "Invalid request or validation error"
// @Failure 401 {object} dto.ErrorResponse "Missing or invalid token"
// @Failure 403 {object} dto.ErrorResponse "Role or ownership check failed"
// @Failure 404 {object} dto.ErrorResponse "Resource not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /api/connections/{id} [delete]
func (c *ConnectionController) Remove(ctx *gin.Context) {
	userID, ok := middleware.MustUserID(ctx)
	if !ok {
		return
	}
	id, ok := idParam(ctx, "id")
	if !ok {
		return
	}

	if err := c.connectionService.Remove(ctx.Request.Context(), userID, id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondMessage(ctx, "Connection removed")
}
