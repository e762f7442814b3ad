package services

import (
	"context"
	"time"

	"github.com/yigit/campushub/internal/app/models"
	"github.com/yigit/campushub/internal/app/repositories"
)

// AccountStore is the account/profile/role persistence used by services
type AccountStore interface {
	Provision(ctx context.Context, p repositories.ProvisionParams) (*models.AuthUser, error)
	GetCredentialsByEmail(ctx context.Context, email string) (*models.Credentials, error)
	GetCredentialsByID(ctx context.Context, id int64) (*models.Credentials, error)
	UpdateLastLogin(ctx context.Context, id int64) error
	GetProfile(ctx context.Context, id int64) (*models.Profile, error)
	GetRole(ctx context.Context, id int64) (models.Role, error)
	UpdateProfile(ctx context.Context, id int64, u repositories.ProfileUpdate) (*models.Profile, error)
	UpdateAvatar(ctx context.Context, id int64, url string) error
	SetActive(ctx context.Context, id int64, active bool) error
	BulkSetActive(ctx context.Context, ids []int64, active bool) (int64, error)
	SetRole(ctx context.Context, id int64, role models.Role) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, f repositories.UserFilter, offset, limit uint64) ([]models.UserSummary, int64, error)
	ListAll(ctx context.Context, f repositories.UserFilter) ([]models.UserSummary, error)
	CountByRole(ctx context.Context) (map[models.Role]int64, error)
}

// SessionStore persists issued tokens
type SessionStore interface {
	Create(ctx context.Context, session *models.AuthSession) error
	Get(ctx context.Context, id string) (*models.AuthSession, error)
	Revoke(ctx context.Context, id string) error
	RevokeAllForAccount(ctx context.Context, accountID int64) error
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
}

// CollegeStore persists colleges
type CollegeStore interface {
	GetByID(ctx context.Context, id int64) (*models.College, error)
	GetByOwner(ctx context.Context, ownerID int64) (*models.College, error)
	Update(ctx context.Context, c *models.College) error
	UpdateLogo(ctx context.Context, id int64, url string) error
	SetFlags(ctx context.Context, id int64, flags models.OrganizationFlags) (*models.College, error)
	List(ctx context.Context, onlyActive bool) ([]models.College, error)
}

// CompanyStore persists companies
type CompanyStore interface {
	GetByID(ctx context.Context, id int64) (*models.Company, error)
	GetByOwner(ctx context.Context, ownerID int64) (*models.Company, error)
	Update(ctx context.Context, c *models.Company) error
	UpdateLogo(ctx context.Context, id int64, url string) error
	SetFlags(ctx context.Context, id int64, flags models.OrganizationFlags) (*models.Company, error)
	List(ctx context.Context, onlyActive bool) ([]models.Company, error)
}

// EventStore persists events and sub-events
type EventStore interface {
	Create(ctx context.Context, e *models.Event) error
	GetByID(ctx context.Context, id int64) (*models.Event, error)
	Update(ctx context.Context, e *models.Event) error
	Delete(ctx context.Context, id int64) error
	UpdateStatus(ctx context.Context, id int64, status models.EventStatus) error
	BulkUpdateStatus(ctx context.Context, ids []int64, status models.EventStatus) (int64, error)
	UpdateBanner(ctx context.Context, id int64, url string) error
	List(ctx context.Context, f repositories.EventFilter) ([]models.Event, error)
	CountByStatus(ctx context.Context) (map[models.EventStatus]int64, error)
	GetSubEvent(ctx context.Context, eventID, subEventID int64) (*models.SubEvent, error)
	CreateSubEvent(ctx context.Context, s *models.SubEvent) error
	DeleteSubEvent(ctx context.Context, eventID, subEventID int64) error
}

// OpportunityStore persists opportunities
type OpportunityStore interface {
	Create(ctx context.Context, o *models.Opportunity) error
	GetByID(ctx context.Context, id int64) (*models.Opportunity, error)
	Update(ctx context.Context, o *models.Opportunity) error
	Delete(ctx context.Context, id int64) error
	BulkSetActive(ctx context.Context, ids []int64, active bool) (int64, error)
	List(ctx context.Context, f repositories.OpportunityFilter) ([]models.Opportunity, error)
	CountByType(ctx context.Context) (map[models.OpportunityType]int64, error)
}

// ApplicationStore persists applications
type ApplicationStore interface {
	Create(ctx context.Context, a *models.Application) error
	GetByID(ctx context.Context, id int64) (*models.Application, error)
	ListByUser(ctx context.Context, userID int64) ([]models.Application, error)
	ListByOpportunity(ctx context.Context, opportunityID int64) ([]models.Application, error)
	UpdateStatus(ctx context.Context, id int64, status models.ApplicationStatus) error
	Count(ctx context.Context) (int64, error)
}

// RegistrationStore persists registrations and payments
type RegistrationStore interface {
	Create(ctx context.Context, p repositories.RegistrationParams) (*models.Registration, error)
	GetByID(ctx context.Context, id int64) (*models.Registration, error)
	ListByUser(ctx context.Context, userID int64) ([]models.Registration, error)
	ListByEvent(ctx context.Context, eventID int64) ([]models.Registration, error)
	Cancel(ctx context.Context, id int64) error
	GetPayment(ctx context.Context, id int64) (*models.Payment, error)
	CompletePayment(ctx context.Context, id int64, providerRef *string) error
	FailPayment(ctx context.Context, id int64) error
	RefundPayment(ctx context.Context, id int64) error
	CountCompletedPayments(ctx context.Context, eventID int64) (int64, error)
	Count(ctx context.Context) (int64, error)
	RevenueByCurrency(ctx context.Context) (map[string]int64, error)
}

// ConnectionStore persists connections
type ConnectionStore interface {
	Create(ctx context.Context, c *models.Connection) error
	GetByID(ctx context.Context, id int64) (*models.Connection, error)
	ListForUser(ctx context.Context, userID int64, status *models.ConnectionStatus) ([]models.ConnectionView, error)
	Respond(ctx context.Context, id int64, status models.ConnectionStatus) error
	Delete(ctx context.Context, id int64) error
}

// InquiryStore persists inquiries
type InquiryStore interface {
	Create(ctx context.Context, i *models.Inquiry) error
	GetByID(ctx context.Context, id int64) (*models.Inquiry, error)
	ListInbox(ctx context.Context, userID int64) ([]models.Inquiry, error)
	ListSent(ctx context.Context, userID int64) ([]models.Inquiry, error)
	MarkRead(ctx context.Context, id int64) error
	MarkReplied(ctx context.Context, id int64, at time.Time) error
}

var (
	_ AccountStore      = (*repositories.AccountRepository)(nil)
	_ SessionStore      = (*repositories.SessionRepository)(nil)
	_ CollegeStore      = (*repositories.CollegeRepository)(nil)
	_ CompanyStore      = (*repositories.CompanyRepository)(nil)
	_ EventStore        = (*repositories.EventRepository)(nil)
	_ OpportunityStore  = (*repositories.OpportunityRepository)(nil)
	_ ApplicationStore  = (*repositories.ApplicationRepository)(nil)
	_ RegistrationStore = (*repositories.RegistrationRepository)(nil)
	_ ConnectionStore   = (*repositories.ConnectionRepository)(nil)
	_ InquiryStore      = (*repositories.InquiryRepository)(nil)
)
