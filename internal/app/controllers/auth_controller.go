// Package controllers handles HTTP request handling
package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/yigit/campushub/internal/app/models/dto"
	"github.com/yigit/campushub/internal/middleware"
	"github.com/yigit/campushub/internal/pkg/auth"
)

// AuthController serves the /auth endpoints. Signup, login and the session
// check answer with bare JSON bodies; errors still use the error envelope.
type AuthController struct {
	authService AuthService
	logger      zerolog.Logger
}

// NewAuthController creates a new AuthController
func NewAuthController(authService AuthService, logger zerolog.Logger) *AuthController {
	return &AuthController{
		authService: authService,
		logger:      logger,
	}
}

// Signup handles POST /auth/signup
// @Summary Create an account
// @Description Creates an account with its profile and role, and signs it in. College and company signups also create the organization.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.SignupRequest true "Signup details"
// @Success 201 {object} dto.AuthResponse "Account created"
// @Failure 400 {object} dto.ErrorResponse "Invalid request or validation error"
// @Failure 409 {object} dto.ErrorResponse "Conflicts with the current state"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /auth/signup [post]
func (c *AuthController) Signup(ctx *gin.Context) {
	var req dto.SignupRequest
	if !middleware.BindJSON(ctx, &req) {
		c.logger.Warn().Msg("Invalid signup request payload")
		return
	}

	resp, err := c.authService.Signup(ctx.Request.Context(), &req)
	if err != nil {
		c.logger.Warn().Err(err).Str("email", req.Email).Msg("Signup failed")
		middleware.HandleAPIError(ctx, err)
		return
	}

	c.logger.Info().
		Int64("userID", resp.User.ID).
		Str("role", string(resp.User.Role)).
		Msg("Account created")
	ctx.JSON(http.StatusCreated, resp)
}

// Login handles POST /auth/login
// @Summary Sign in
// @Description Checks email and password and returns the user with a bearer token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.LoginRequest true "Login credentials"
// @Success 200 {object} dto.AuthResponse "Signed in"
// @Failure 400 {object} dto.ErrorResponse "Invalid request or validation error"
// @Failure 401 {object} dto.ErrorResponse "Missing or invalid token"
// @Failure 403 {object} dto.ErrorResponse "Role or ownership check failed"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /auth/login [post]
func (c *AuthController) Login(ctx *gin.Context) {
	var req dto.LoginRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	resp, err := c.authService.Login(ctx.Request.Context(), &req)
	if err != nil {
		c.logger.Warn().Err(err).Str("email", req.Email).Msg("Login failed")
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, resp)
}

// CurrentUser handles GET /auth/user. Any failure is a plain 401 with
// authenticated=false.
// @Summary Current session
// @Description Reports whether the bearer token belongs to a live session
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.SessionResponse "Session is valid"
// @Failure 401 {object} dto.SessionResponse "No valid session"
// @Router /auth/user [get]
func (c *AuthController) CurrentUser(ctx *gin.Context) {
	token, err := auth.ExtractBearerToken(ctx.GetHeader("Authorization"))
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, dto.SessionResponse{Authenticated: false})
		return
	}

	user, _, err := c.authService.Authenticate(ctx.Request.Context(), token)
	if err != nil {
		c.logger.Debug().Err(err).Msg("Session check rejected")
		ctx.JSON(http.StatusUnauthorized, dto.SessionResponse{Authenticated: false})
		return
	}

	ctx.JSON(http.StatusOK, dto.SessionResponse{Authenticated: true, User: user})
}

// Logout handles GET /auth/logout. The bearer token is optional and the
// response is always 200.
// @Summary Sign out
// @Description Revokes the session behind the bearer token, if any
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.MessageResponse} "Signed out"
// @Router /auth/logout [get]
func (c *AuthController) Logout(ctx *gin.Context) {
	if token, err := auth.ExtractBearerToken(ctx.GetHeader("Authorization")); err == nil {
		if err := c.authService.Logout(ctx.Request.Context(), token); err != nil {
			c.logger.Error().Err(err).Msg("Failed to revoke session")
		}
	}
	respondMessage(ctx, "Logged out")
}

// GetUser handles GET /api/users/:id and answers {profile, role}
// @Summary Get a user profile
// @Description Returns the public profile of a user together with their role
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 200 {object} dto.UserWithRoleResponse "Profile and role"
// @Failure 400 {object} dto.ErrorResponse "Invalid request or validation error"
// @Failure 401 {object} dto.ErrorResponse "Missing or invalid token"
// @Failure 404 {object} dto.ErrorResponse "Resource not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /api/users/{id} [get]
func (c *AuthController) GetUser(ctx *gin.Context) {
	id, ok := idParam(ctx, "id")
	if !ok {
		return
	}

	resp, err := c.authService.GetUserWithRole(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, resp)
}
