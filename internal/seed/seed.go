package seed

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"
	"github.com/yigit/campushub/internal/app/models"
	"github.com/yigit/campushub/internal/app/models/dto"
	"github.com/yigit/campushub/internal/pkg/apperrors"
)

// AdminCreator provisions accounts of any role
type AdminCreator interface {
	CreateUser(ctx context.Context, req *dto.AdminCreateUserRequest) (*models.AuthUser, error)
}

// AdminAccount is the bootstrap admin taken from configuration
type AdminAccount struct {
	Email    string
	Password string
	FullName string
}

// EnsureAdmin creates the configured admin account once. An empty email
// disables seeding; an existing account with that email is left untouched.
func EnsureAdmin(ctx context.Context, creator AdminCreator, account AdminAccount, lgr zerolog.Logger) error {
	if strings.TrimSpace(account.Email) == "" {
		lgr.Debug().Msg("No seed admin configured, skipping")
		return nil
	}
	if account.FullName == "" {
		account.FullName = "Platform Admin"
	}

	user, err := creator.CreateUser(ctx, &dto.AdminCreateUserRequest{
		Email:    account.Email,
		Password: account.Password,
		FullName: account.FullName,
		Role:     string(models.RoleAdmin),
	})
	if err != nil {
		if errors.Is(err, apperrors.ErrEmailAlreadyExists) {
			lgr.Info().Str("email", account.Email).Msg("Seed admin already exists")
			return nil
		}
		return err
	}

	lgr.Info().Int64("userID", user.ID).Str("email", user.Email).Msg("Seed admin created")
	return nil
}
