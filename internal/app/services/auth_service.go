package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/yigit/campushub/internal/app/models"
	"github.com/yigit/campushub/internal/app/models/dto"
	"github.com/yigit/campushub/internal/pkg/apperrors"
	"github.com/yigit/campushub/internal/pkg/auth"
	"github.com/yigit/campushub/internal/pkg/helpers"
)

// AuthService handles signup, login and the session check
type AuthService struct {
	accounts   AccountStore
	sessions   SessionStore
	jwtService *auth.JWTService
	logger     zerolog.Logger
	now        func() time.Time
}

// NewAuthService creates a new AuthService
func NewAuthService(
	accounts AccountStore,
	sessions SessionStore,
	jwtService *auth.JWTService,
	logger zerolog.Logger,
) *AuthService {
	return &AuthService{
		accounts:   accounts,
		sessions:   sessions,
		jwtService: jwtService,
		logger:     logger,
		now:        time.Now,
	}
}

// Signup provisions a self-registered account and signs it in
func (s *AuthService) Signup(ctx context.Context, req *dto.SignupRequest) (*dto.AuthResponse, error) {
	role, ok := models.ParseRole(string(req.Role))
	if !ok {
		return nil, apperrors.NewValidationError("role", "role must be one of student, college, company")
	}
	if !role.SelfRegistrable() {
		return nil, apperrors.NewForbiddenError("admin accounts cannot self-register")
	}

	params, err := buildProvisionParams(AccountInput{
		Email:    req.Email,
		Password: req.Password,
		FullName: req.FullName,
		Role:     role,
		Extra:    req.Extra,
	})
	if err != nil {
		return nil, err
	}

	user, err := s.accounts.Provision(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("signup failed: %w", err)
	}

	s.logger.Info().Int64("userID", user.ID).Str("role", string(user.Role)).Msg("Account created")
	return s.issue(ctx, user)
}

// Login verifies credentials and issues a new session token
func (s *AuthService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error) {
	email := helpers.NormalizeEmail(req.Email)
	if email == "" || req.Password == "" {
		return nil, apperrors.ErrInvalidCredentials
	}

	creds, err := s.accounts.GetCredentialsByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("login failed: %w", err)
	}

	if !auth.CheckPassword(creds.PasswordHash, req.Password) {
		return nil, apperrors.ErrInvalidCredentials
	}
	if !creds.IsActive {
		return nil, apperrors.ErrAccountDisabled
	}

	if err := s.accounts.UpdateLastLogin(ctx, creds.ID); err != nil {
		s.logger.Warn().Err(err).Int64("userID", creds.ID).Msg("Failed to update last login")
	}

	return s.issue(ctx, &creds.AuthUser)
}

func (s *AuthService) issue(ctx context.Context, user *models.AuthUser) (*dto.AuthResponse, error) {
	token, err := s.jwtService.GenerateToken(user.ID, user.Email, string(user.Role))
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	session := &models.AuthSession{
		ID:        token.SessionID.String(),
		AccountID: user.ID,
		ExpiresAt: token.ExpiresAt,
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to store session: %w", err)
	}

	return &dto.AuthResponse{User: *user, Token: token.Token}, nil
}

// Authenticate validates a bearer token against its session row and returns
// the current identity. Role and name come from the database, not the token.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*models.AuthUser, *auth.Claims, error) {
	claims, err := s.jwtService.ValidateAndExtractClaims(token)
	if err != nil {
		if errors.Is(err, auth.ErrExpiredToken) {
			return nil, nil, apperrors.ErrTokenExpired
		}
		return nil, nil, apperrors.ErrTokenInvalid
	}

	session, err := s.sessions.Get(ctx, claims.SessionID())
	if err != nil {
		if errors.Is(err, apperrors.ErrTokenNotFound) {
			return nil, nil, apperrors.ErrTokenInvalid
		}
		return nil, nil, fmt.Errorf("session lookup failed: %w", err)
	}
	if session.AccountID != claims.UserID {
		return nil, nil, apperrors.ErrTokenInvalid
	}
	if session.RevokedAt != nil {
		return nil, nil, apperrors.ErrTokenRevoked
	}
	if !session.Usable(s.now()) {
		return nil, nil, apperrors.ErrTokenExpired
	}

	creds, err := s.accounts.GetCredentialsByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return nil, nil, apperrors.ErrTokenInvalid
		}
		return nil, nil, fmt.Errorf("account lookup failed: %w", err)
	}
	if !creds.IsActive {
		return nil, nil, apperrors.ErrAccountDisabled
	}

	return &creds.AuthUser, claims, nil
}

// Logout revokes the session behind token. Invalid or unknown tokens are ignored.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	claims, err := s.jwtService.ValidateAndExtractClaims(token)
	if err != nil {
		return nil
	}
	if err := s.sessions.Revoke(ctx, claims.SessionID()); err != nil {
		if errors.Is(err, apperrors.ErrTokenNotFound) {
			return nil
		}
		return fmt.Errorf("failed to revoke session: %w", err)
	}
	s.logger.Info().Int64("userID", claims.UserID).Msg("Session revoked")
	return nil
}

// GetUserWithRole returns a profile and its role
func (s *AuthService) GetUserWithRole(ctx context.Context, id int64) (*dto.UserWithRoleResponse, error) {
	profile, err := s.accounts.GetProfile(ctx, id)
	if err != nil {
		return nil, err
	}
	role, err := s.accounts.GetRole(ctx, id)
	if err != nil {
		return nil, err
	}
	return &dto.UserWithRoleResponse{Profile: profile, Role: role}, nil
}

// CleanupExpiredSessions deletes sessions that expired more than a day ago
func (s *AuthService) CleanupExpiredSessions(ctx context.Context) (int64, error) {
	n, err := s.sessions.DeleteExpired(ctx, s.now().Add(-24*time.Hour))
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.logger.Info().Int64("deleted", n).Msg("Expired sessions removed")
	}
	return n, nil
}
