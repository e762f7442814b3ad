package dto

import (
	"time"

	"github.com/yigit/campushub/internal/app/models"
)

// OpportunityRequest creates or replaces an opportunity's editable fields
type OpportunityRequest struct {
	Type         string     `json:"type" binding:"required,oneof=job internship hackathon competition"`
	Title        string     `json:"title" binding:"required,max=200"`
	Description  string     `json:"description"`
	Location     *string    `json:"location,omitempty"`
	Tags         []string   `json:"tags,omitempty" binding:"omitempty,max=20"`
	Compensation *string    `json:"compensation,omitempty"`
	IsExternal   bool       `json:"isExternal"`
	ExternalURL  *string    `json:"externalUrl,omitempty"`
	Deadline     *time.Time `json:"deadline,omitempty"`
	IsActive     *bool      `json:"isActive,omitempty"`
}

// ApplyRequest is the body of POST /api/opportunities/:id/apply
type ApplyRequest struct {
	CoverLetter *string `json:"coverLetter,omitempty" binding:"omitempty,max=8000"`
	ResumeURL   *string `json:"resumeUrl,omitempty"`
}

// ApplyResponse holds either the recorded application or, for external
// listings, the URL the student should be sent to.
type ApplyResponse struct {
	Application *models.Application `json:"application,omitempty"`
	RedirectURL string              `json:"redirectUrl,omitempty"`
}

// ApplicationStatusRequest is the company's review decision
type ApplicationStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=submitted reviewed shortlisted rejected"`
}
