package services

import (
	"strings"

	"github.com/yigit/campushub/internal/app/models"
	"github.com/yigit/campushub/internal/app/models/dto"
	"github.com/yigit/campushub/internal/app/repositories"
	"github.com/yigit/campushub/internal/pkg/apperrors"
	"github.com/yigit/campushub/internal/pkg/auth"
	"github.com/yigit/campushub/internal/pkg/helpers"
	"github.com/yigit/campushub/internal/pkg/validation"
)

// AccountInput is the common shape of self signup and admin creation
type AccountInput struct {
	Email    string
	Password string
	FullName string
	Role     models.Role
	Extra    dto.SignupExtra
}

// buildProvisionParams validates the input, hashes the password and maps the
// role specific extras. Extras that do not apply to the role are dropped.
func buildProvisionParams(in AccountInput) (repositories.ProvisionParams, error) {
	email := helpers.NormalizeEmail(in.Email)
	if err := validation.CheckEmail(email); err != nil {
		return repositories.ProvisionParams{}, apperrors.NewValidationError("email", err.Error())
	}
	if err := validation.CheckPassword(in.Password); err != nil {
		return repositories.ProvisionParams{}, apperrors.NewValidationError("password", err.Error())
	}
	fullName := strings.TrimSpace(in.FullName)
	if err := validation.CheckName(fullName); err != nil {
		return repositories.ProvisionParams{}, apperrors.NewValidationError("fullName", err.Error())
	}

	p := repositories.ProvisionParams{
		Email:    email,
		FullName: fullName,
		Role:     in.Role,
	}

	extra := in.Extra
	switch in.Role {
	case models.RoleStudent:
		p.CollegeID = extra.CollegeID
		p.Major = extra.Major
		p.GraduationYear = extra.GraduationYear
	case models.RoleCollege:
		name := strings.TrimSpace(helpers.StringOrEmpty(extra.CollegeName))
		if err := validation.CheckName(name); err != nil {
			return repositories.ProvisionParams{}, apperrors.NewValidationError("extra.collegeName", "collegeName is required for college accounts")
		}
		p.OrganizationName = name
		p.Location = extra.Location
		p.Website = extra.Website
	case models.RoleCompany:
		name := strings.TrimSpace(helpers.StringOrEmpty(extra.CompanyName))
		if err := validation.CheckName(name); err != nil {
			return repositories.ProvisionParams{}, apperrors.NewValidationError("extra.companyName", "companyName is required for company accounts")
		}
		p.OrganizationName = name
		p.Industry = extra.Industry
		p.Website = extra.Website
	case models.RoleAdmin:
	default:
		return repositories.ProvisionParams{}, apperrors.NewValidationError("role", "role must be one of student, college, company, admin")
	}

	if p.Website != nil {
		if err := validation.CheckOptionalURL(*p.Website); err != nil {
			return repositories.ProvisionParams{}, apperrors.NewValidationError("extra.website", err.Error())
		}
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return repositories.ProvisionParams{}, err
	}
	p.PasswordHash = hash
	return p, nil
}
