package models

import "time"

// OpportunityType classifies a listing
type OpportunityType string

const (
	OpportunityJob         OpportunityType = "job"
	OpportunityInternship  OpportunityType = "internship"
	OpportunityHackathon   OpportunityType = "hackathon"
	OpportunityCompetition OpportunityType = "competition"
)

// Valid reports whether t is a known type
func (t OpportunityType) Valid() bool {
	switch t {
	case OpportunityJob, OpportunityInternship, OpportunityHackathon, OpportunityCompetition:
		return true
	}
	return false
}

// Opportunity is a job, internship, hackathon or competition listing.
// CompanyID is nil for listings created by colleges or admins.
type Opportunity struct {
	ID           int64           `json:"id" db:"id"`
	CompanyID    *int64          `json:"companyId,omitempty" db:"company_id"`
	CompanyName  string          `json:"companyName,omitempty" db:"-"`
	CreatedBy    int64           `json:"createdBy" db:"created_by"`
	Type         OpportunityType `json:"type" db:"type"`
	Title        string          `json:"title" db:"title"`
	Description  string          `json:"description" db:"description"`
	Location     *string         `json:"location,omitempty" db:"location"`
	Tags         []string        `json:"tags" db:"tags"`
	Compensation *string         `json:"compensation,omitempty" db:"compensation"`
	IsExternal   bool            `json:"isExternal" db:"is_external"`
	ExternalURL  *string         `json:"externalUrl,omitempty" db:"external_url"`
	Deadline     *time.Time      `json:"deadline,omitempty" db:"deadline"`
	IsActive     bool            `json:"isActive" db:"is_active"`
	CreatedAt    time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time       `json:"updatedAt" db:"updated_at"`
	// CompanyInactive is set when an admin deactivated the posting company
	CompanyInactive bool `json:"-" db:"-"`
}

// Listed reports whether students can see the opportunity
func (o *Opportunity) Listed() bool {
	return o.IsActive && !o.CompanyInactive
}

// AcceptingApplications reports whether students may apply at now
func (o *Opportunity) AcceptingApplications(now time.Time) bool {
	if !o.Listed() {
		return false
	}
	return o.Deadline == nil || now.Before(*o.Deadline)
}

// ApplicationStatus is the review state of an application
type ApplicationStatus string

const (
	ApplicationSubmitted   ApplicationStatus = "submitted"
	ApplicationReviewed    ApplicationStatus = "reviewed"
	ApplicationShortlisted ApplicationStatus = "shortlisted"
	ApplicationRejected    ApplicationStatus = "rejected"
)

// Valid reports whether s is a known status
func (s ApplicationStatus) Valid() bool {
	switch s {
	case ApplicationSubmitted, ApplicationReviewed, ApplicationShortlisted, ApplicationRejected:
		return true
	}
	return false
}

// Application is a student's application to an internal opportunity
type Application struct {
	ID               int64             `json:"id" db:"id"`
	OpportunityID    int64             `json:"opportunityId" db:"opportunity_id"`
	OpportunityTitle string            `json:"opportunityTitle,omitempty" db:"-"`
	UserID           int64             `json:"userId" db:"user_id"`
	ApplicantName    string            `json:"applicantName,omitempty" db:"-"`
	ApplicantEmail   string            `json:"applicantEmail,omitempty" db:"-"`
	CoverLetter      *string           `json:"coverLetter,omitempty" db:"cover_letter"`
	ResumeURL        *string           `json:"resumeUrl,omitempty" db:"resume_url"`
	Status           ApplicationStatus `json:"status" db:"status"`
	CreatedAt        time.Time         `json:"createdAt" db:"created_at"`
	UpdatedAt        time.Time         `json:"updatedAt" db:"updated_at"`
}
