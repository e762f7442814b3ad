package controllers

import (
	"context"
	"fmt"
	"io"

	"github.com/yigit/campushub/internal/app/models"
	"github.com/yigit/campushub/internal/app/models/dto"
	"github.com/yigit/campushub/internal/pkg/apperrors"
	"github.com/yigit/campushub/internal/pkg/auth"
)

type stubAuthService struct {
	signupReq *dto.SignupRequest
	signupErr error
	loginErr  error
	users     map[string]*models.AuthUser
	loggedOut []string
	logoutErr error
	withRole  map[int64]*dto.UserWithRoleResponse
}

func (s *stubAuthService) Signup(_ context.Context, req *dto.SignupRequest) (*dto.AuthResponse, error) {
	s.signupReq = req
	if s.signupErr != nil {
		return nil, s.signupErr
	}
	return &dto.AuthResponse{
		User:  models.AuthUser{ID: 11, Email: req.Email, FullName: req.FullName, Role: req.Role},
		Token: "signed-token",
	}, nil
}

func (s *stubAuthService) Login(_ context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error) {
	if s.loginErr != nil {
		return nil, s.loginErr
	}
	return &dto.AuthResponse{User: models.AuthUser{ID: 11, Email: req.Email, Role: models.RoleStudent}, Token: "signed-token"}, nil
}

func (s *stubAuthService) Authenticate(_ context.Context, token string) (*models.AuthUser, *auth.Claims, error) {
	user, ok := s.users[token]
	if !ok {
		return nil, nil, apperrors.ErrTokenInvalid
	}
	return user, &auth.Claims{UserID: user.ID}, nil
}

func (s *stubAuthService) Logout(_ context.Context, token string) error {
	s.loggedOut = append(s.loggedOut, token)
	return s.logoutErr
}

func (s *stubAuthService) GetUserWithRole(_ context.Context, id int64) (*dto.UserWithRoleResponse, error) {
	resp, ok := s.withRole[id]
	if !ok {
		return nil, apperrors.ErrUserNotFound
	}
	return resp, nil
}

type stubStudentService struct {
	StudentService
	registerReq *dto.RegisterEventRequest
	applyResp   *dto.ApplyResponse
	applyErr    error
	registerErr error
}

func (s *stubStudentService) RegisterForEvent(_ context.Context, userID, eventID int64, req *dto.RegisterEventRequest) (*models.Registration, error) {
	s.registerReq = req
	if s.registerErr != nil {
		return nil, s.registerErr
	}
	return &models.Registration{ID: 1, EventID: eventID, UserID: userID, Status: models.RegistrationConfirmed}, nil
}

func (s *stubStudentService) Apply(_ context.Context, _, _ int64, _ *dto.ApplyRequest) (*dto.ApplyResponse, error) {
	return s.applyResp, s.applyErr
}

type stubAdminService struct {
	AdminService
	exportQuery  dto.UserListQuery
	exportActive *bool
	exportErr    error
	bulkIDs      []int64
	bulkActive   bool
}

func (s *stubAdminService) ExportUsers(_ context.Context, w io.Writer, q dto.UserListQuery, active *bool) error {
	s.exportQuery = q
	s.exportActive = active
	if s.exportErr != nil {
		return s.exportErr
	}
	_, err := fmt.Fprint(w, "id,email,full_name,role,is_active,created_at\n1,ada@campus.test,Ada,admin,true,2026-03-01T12:00:00Z\n")
	return err
}

func (s *stubAdminService) BulkSetUserStatus(_ context.Context, _ int64, ids []int64, active bool) (*dto.BulkResult, error) {
	s.bulkIDs = ids
	s.bulkActive = active
	return &dto.BulkResult{Requested: len(ids), Updated: int64(len(ids))}, nil
}

type stubCollegeService struct {
	CollegeService
	logoBytes []byte
}

func (s *stubCollegeService) UploadLogo(_ context.Context, _ int64, file io.Reader) (string, error) {
	b, err := io.ReadAll(file)
	if err != nil {
		return "", err
	}
	s.logoBytes = b
	return "http://files.test/storage/logos/college-3/logo.png", nil
}

func (s *stubCollegeService) ChangeEventStatus(_ context.Context, _, eventID int64, status models.EventStatus) (*models.Event, error) {
	if status == models.EventStatusCompleted {
		return nil, apperrors.ErrInvalidStateTransition
	}
	return &models.Event{ID: eventID, Status: status}, nil
}

type stubCatalogService struct {
	CatalogService
	eventQuery dto.EventQuery
}

func (s *stubCatalogService) ListEvents(_ context.Context, q dto.EventQuery) (*dto.EventListResponse, error) {
	s.eventQuery = q
	return &dto.EventListResponse{Items: []models.Event{{ID: -1, Title: "Sample hack night"}}, Sample: true}, nil
}

func (s *stubCatalogService) ListOpportunities(_ context.Context, _ dto.OpportunityQuery) (*dto.OpportunityListResponse, error) {
	return &dto.OpportunityListResponse{}, nil
}

func (s *stubCatalogService) GetEvent(_ context.Context, _ int64) (*models.Event, error) {
	return nil, apperrors.ErrEventNotFound
}
