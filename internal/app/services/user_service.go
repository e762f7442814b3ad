package services

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"github.com/yigit/campushub/internal/app/models"
	"github.com/yigit/campushub/internal/app/models/dto"
	"github.com/yigit/campushub/internal/app/repositories"
	"github.com/yigit/campushub/internal/pkg/apperrors"
	"github.com/yigit/campushub/internal/pkg/filestorage"
	"github.com/yigit/campushub/internal/pkg/helpers"
	"github.com/yigit/campushub/internal/pkg/validation"
)

// UserService defines the interface for the caller's own profile
type UserService interface {
	GetProfile(ctx context.Context, userID int64) (*models.Profile, error)
	UpdateProfile(ctx context.Context, userID int64, req *dto.UpdateProfileRequest) (*models.Profile, error)
	UploadAvatar(ctx context.Context, userID int64, file io.Reader) (string, error)
}

// userServiceImpl implements UserService
type userServiceImpl struct {
	accounts AccountStore
	media    *MediaService
	logger   zerolog.Logger
}

// NewUserService creates a new UserService
func NewUserService(accounts AccountStore, media *MediaService, logger zerolog.Logger) UserService {
	return &userServiceImpl{
		accounts: accounts,
		media:    media,
		logger:   logger,
	}
}

// GetProfile returns the caller's profile
func (s *userServiceImpl) GetProfile(ctx context.Context, userID int64) (*models.Profile, error) {
	return s.accounts.GetProfile(ctx, userID)
}

// UpdateProfile validates and applies the caller's profile patch
func (s *userServiceImpl) UpdateProfile(ctx context.Context, userID int64, req *dto.UpdateProfileRequest) (*models.Profile, error) {
	update := repositories.ProfileUpdate{
		Headline:       req.Headline,
		Bio:            req.Bio,
		LinkedinURL:    req.LinkedinURL,
		GithubURL:      req.GithubURL,
		WebsiteURL:     req.WebsiteURL,
		Major:          req.Major,
		GraduationYear: req.GraduationYear,
	}

	if req.FullName != nil {
		name := strings.TrimSpace(*req.FullName)
		if err := validation.CheckName(name); err != nil {
			return nil, apperrors.NewValidationError("fullName", err.Error())
		}
		update.FullName = &name
	}

	links := map[string]*string{
		"linkedinUrl": req.LinkedinURL,
		"githubUrl":   req.GithubURL,
		"websiteUrl":  req.WebsiteURL,
	}
	for field, v := range links {
		if v == nil {
			continue
		}
		if err := validation.CheckOptionalURL(*v); err != nil {
			return nil, apperrors.NewValidationError(field, err.Error())
		}
	}

	if req.Skills != nil {
		skills := helpers.NormalizeTags(req.Skills)
		update.Skills = &skills
	}

	profile, err := s.accounts.UpdateProfile(ctx, userID, update)
	if err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	return profile, nil
}

// UploadAvatar stores the image, writes its URL to the profile and drops the
// previous avatar. The steps are not atomic.
func (s *userServiceImpl) UploadAvatar(ctx context.Context, userID int64, file io.Reader) (string, error) {
	profile, err := s.accounts.GetProfile(ctx, userID)
	if err != nil {
		return "", err
	}

	url, err := s.media.ReplaceImage(ctx, filestorage.BucketAvatars, strconv.FormatInt(userID, 10), file, profile.AvatarURL,
		func(url string) error {
			return s.accounts.UpdateAvatar(ctx, userID, url)
		})
	if err != nil {
		return "", err
	}

	s.logger.Info().Int64("userID", userID).Str("url", url).Msg("Avatar updated")
	return url, nil
}
