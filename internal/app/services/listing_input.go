package services

import (
	"strings"

	"github.com/yigit/campushub/internal/app/models"
	"github.com/yigit/campushub/internal/app/models/dto"
	"github.com/yigit/campushub/internal/pkg/apperrors"
	"github.com/yigit/campushub/internal/pkg/helpers"
	"github.com/yigit/campushub/internal/pkg/validation"
)

// applyEventRequest validates req and copies it onto e. Status, owner and
// banner are left alone.
func applyEventRequest(e *models.Event, req *dto.EventRequest) error {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return apperrors.NewValidationError("title", "title is required")
	}
	if req.EndsAt != nil && req.EndsAt.Before(req.StartsAt) {
		return apperrors.NewValidationError("endsAt", "endsAt must not be before startsAt")
	}
	if req.RegistrationDeadline != nil && req.RegistrationDeadline.After(req.StartsAt) {
		return apperrors.NewValidationError("registrationDeadline", "registrationDeadline must not be after startsAt")
	}
	if !req.IsFree && req.PriceCents == nil {
		return apperrors.NewValidationError("priceCents", "priceCents is required for paid events")
	}

	e.Title = title
	e.Description = strings.TrimSpace(req.Description)
	e.Category = req.Category
	e.Tags = helpers.NormalizeTags(req.Tags)
	e.Venue = req.Venue
	e.IsOnline = req.IsOnline
	e.StartsAt = req.StartsAt
	e.EndsAt = req.EndsAt
	e.RegistrationDeadline = req.RegistrationDeadline
	e.Capacity = req.Capacity
	e.IsFree = req.IsFree
	e.PriceCents = req.PriceCents
	e.Currency = req.Currency
	e.NormalizePricing()
	return nil
}

// applyOpportunityRequest validates req and copies it onto o. isNew decides
// the default for an omitted isActive.
func applyOpportunityRequest(o *models.Opportunity, req *dto.OpportunityRequest, isNew bool) error {
	oppType := models.OpportunityType(strings.ToLower(strings.TrimSpace(req.Type)))
	if !oppType.Valid() {
		return apperrors.NewValidationError("type", "type must be one of job, internship, hackathon, competition")
	}
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return apperrors.NewValidationError("title", "title is required")
	}
	if req.IsExternal {
		if req.ExternalURL == nil || strings.TrimSpace(*req.ExternalURL) == "" {
			return apperrors.NewValidationError("externalUrl", "externalUrl is required for external listings")
		}
	}
	if req.ExternalURL != nil {
		if err := validation.CheckOptionalURL(*req.ExternalURL); err != nil {
			return apperrors.NewValidationError("externalUrl", err.Error())
		}
	}

	o.Type = oppType
	o.Title = title
	o.Description = strings.TrimSpace(req.Description)
	o.Location = req.Location
	o.Tags = helpers.NormalizeTags(req.Tags)
	o.Compensation = req.Compensation
	o.IsExternal = req.IsExternal
	o.ExternalURL = req.ExternalURL
	o.Deadline = req.Deadline
	switch {
	case req.IsActive != nil:
		o.IsActive = *req.IsActive
	case isNew:
		o.IsActive = true
	}
	return nil
}

// checkOrganizationFields validates a college or company profile edit
func checkOrganizationFields(name string, website *string) (string, error) {
	name = strings.TrimSpace(name)
	if err := validation.CheckName(name); err != nil {
		return "", apperrors.NewValidationError("name", err.Error())
	}
	if website != nil {
		if err := validation.CheckOptionalURL(*website); err != nil {
			return "", apperrors.NewValidationError("website", err.Error())
		}
	}
	return name, nil
}
