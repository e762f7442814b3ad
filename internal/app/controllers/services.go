package controllers

import (
	"context"
	"io"
	"net/http"

	"github.com/yigit/campushub/internal/app/models"
	"github.com/yigit/campushub/internal/app/models/dto"
	"github.com/yigit/campushub/internal/pkg/auth"
)

// The interfaces below are what the handlers need from the service layer.
// The concrete services in internal/app/services satisfy them.

// AuthService covers signup, login and the session check
type AuthService interface {
	Signup(ctx context.Context, req *dto.SignupRequest) (*dto.AuthResponse, error)
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error)
	Authenticate(ctx context.Context, token string) (*models.AuthUser, *auth.Claims, error)
	Logout(ctx context.Context, token string) error
	GetUserWithRole(ctx context.Context, id int64) (*dto.UserWithRoleResponse, error)
}

// CatalogService is the public browse surface
type CatalogService interface {
	ListEvents(ctx context.Context, q dto.EventQuery) (*dto.EventListResponse, error)
	GetEvent(ctx context.Context, id int64) (*models.Event, error)
	ListOpportunities(ctx context.Context, q dto.OpportunityQuery) (*dto.OpportunityListResponse, error)
	GetOpportunity(ctx context.Context, id int64) (*models.Opportunity, error)
}

// StudentService is the student dashboard
type StudentService interface {
	ListRegistrations(ctx context.Context, userID int64) ([]models.Registration, error)
	ListApplications(ctx context.Context, userID int64) ([]models.Application, error)
	RegisterForEvent(ctx context.Context, userID, eventID int64, req *dto.RegisterEventRequest) (*models.Registration, error)
	CancelRegistration(ctx context.Context, userID, registrationID int64) (*models.Registration, error)
	CompletePayment(ctx context.Context, userID, paymentID int64, providerRef string) (*models.Registration, error)
	FailPayment(ctx context.Context, userID, paymentID int64) (*models.Registration, error)
	Apply(ctx context.Context, userID, opportunityID int64, req *dto.ApplyRequest) (*dto.ApplyResponse, error)
}

// CollegeService is the college dashboard
type CollegeService interface {
	GetProfile(ctx context.Context, userID int64) (*models.College, error)
	UpdateProfile(ctx context.Context, userID int64, req *dto.UpdateCollegeRequest) (*models.College, error)
	UploadLogo(ctx context.Context, userID int64, file io.Reader) (string, error)
	ListEvents(ctx context.Context, userID int64) ([]models.Event, error)
	CreateEvent(ctx context.Context, userID int64, req *dto.EventRequest) (*models.Event, error)
	GetEvent(ctx context.Context, userID, eventID int64) (*models.Event, error)
	UpdateEvent(ctx context.Context, userID, eventID int64, req *dto.EventRequest) (*models.Event, error)
	DeleteEvent(ctx context.Context, userID, eventID int64) error
	ChangeEventStatus(ctx context.Context, userID, eventID int64, status models.EventStatus) (*models.Event, error)
	UploadBanner(ctx context.Context, userID, eventID int64, file io.Reader) (string, error)
	AddSubEvent(ctx context.Context, userID, eventID int64, req *dto.SubEventRequest) (*models.Event, error)
	DeleteSubEvent(ctx context.Context, userID, eventID, subEventID int64) (*models.Event, error)
	ListEventRegistrations(ctx context.Context, userID, eventID int64) ([]models.Registration, error)
	ListOpportunities(ctx context.Context, userID int64) ([]models.Opportunity, error)
	CreateOpportunity(ctx context.Context, userID int64, req *dto.OpportunityRequest) (*models.Opportunity, error)
}

// CompanyService is the company dashboard
type CompanyService interface {
	GetProfile(ctx context.Context, userID int64) (*models.Company, error)
	UpdateProfile(ctx context.Context, userID int64, req *dto.UpdateCompanyRequest) (*models.Company, error)
	UploadLogo(ctx context.Context, userID int64, file io.Reader) (string, error)
	ListOpportunities(ctx context.Context, userID int64) ([]models.Opportunity, error)
	CreateOpportunity(ctx context.Context, userID int64, req *dto.OpportunityRequest) (*models.Opportunity, error)
	UpdateOpportunity(ctx context.Context, userID, opportunityID int64, req *dto.OpportunityRequest) (*models.Opportunity, error)
	DeleteOpportunity(ctx context.Context, userID, opportunityID int64) error
	ListApplications(ctx context.Context, userID, opportunityID int64) ([]models.Application, error)
	UpdateApplicationStatus(ctx context.Context, userID, applicationID int64, status models.ApplicationStatus) (*models.Application, error)
}

// AdminService is the admin console
type AdminService interface {
	ListUsers(ctx context.Context, q dto.UserListQuery, active *bool, page, size int) (*dto.PaginatedResponse, error)
	CreateUser(ctx context.Context, req *dto.AdminCreateUserRequest) (*models.AuthUser, error)
	SetUserStatus(ctx context.Context, adminID, userID int64, active bool) (*models.Profile, error)
	BulkSetUserStatus(ctx context.Context, adminID int64, ids []int64, active bool) (*dto.BulkResult, error)
	SetUserRole(ctx context.Context, adminID, userID int64, roleName string) (*dto.UserWithRoleResponse, error)
	DeleteUser(ctx context.Context, adminID, userID int64) error
	ExportUsers(ctx context.Context, w io.Writer, q dto.UserListQuery, active *bool) error
	ListColleges(ctx context.Context) ([]models.College, error)
	UpdateCollegeFlags(ctx context.Context, id int64, req *dto.OrganizationFlagsRequest) (*models.College, error)
	ListCompanies(ctx context.Context) ([]models.Company, error)
	UpdateCompanyFlags(ctx context.Context, id int64, req *dto.OrganizationFlagsRequest) (*models.Company, error)
	ListEvents(ctx context.Context) ([]models.Event, error)
	BulkSetEventStatus(ctx context.Context, ids []int64, status models.EventStatus) (*dto.BulkResult, error)
	ListOpportunities(ctx context.Context) ([]models.Opportunity, error)
	CreateOpportunity(ctx context.Context, adminID int64, req *dto.OpportunityRequest) (*models.Opportunity, error)
	BulkSetOpportunityActive(ctx context.Context, ids []int64, active bool) (*dto.BulkResult, error)
	RefundPayment(ctx context.Context, paymentID int64) (*models.Registration, error)
	Stats(ctx context.Context) (*models.PlatformStats, error)
}

// InquiryService sends and tracks listing inquiries
type InquiryService interface {
	Send(ctx context.Context, senderID int64, req *dto.CreateInquiryRequest) (*models.Inquiry, error)
	Inbox(ctx context.Context, userID int64) ([]models.Inquiry, error)
	Sent(ctx context.Context, userID int64) ([]models.Inquiry, error)
	MarkRead(ctx context.Context, userID, id int64) (*models.Inquiry, error)
	MarkReplied(ctx context.Context, userID, id int64) (*models.Inquiry, error)
}

// NotificationStreamer upgrades a request into a notification socket
type NotificationStreamer interface {
	Serve(w http.ResponseWriter, r *http.Request, userID int64) error
}
