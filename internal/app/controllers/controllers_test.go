package controllers

import (
	"bytes"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/campushub/internal/app/models"
	"github.com/yigit/campushub/internal/app/models/dto"
	"github.com/yigit/campushub/internal/middleware"
	"github.com/yigit/campushub/internal/pkg/apperrors"
)

func init() {
	gin.SetMode(gin.TestMode)
	middleware.ConfigureValidator()
}

var nopLogger = zerolog.Nop()

func asUser(id int64, role models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.ContextUserID, id)
		c.Set(middleware.ContextRole, role)
		c.Next()
	}
}

func doJSON(r http.Handler, method, path, body string, header ...string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	body := decodeEnvelope(t, w)
	assert.Equal(t, false, body["success"])
	errObj, ok := body["error"].(map[string]interface{})
	require.True(t, ok, "missing error object: %s", w.Body.String())
	return errObj["code"].(string)
}

func newAuthRouter(svc *stubAuthService) *gin.Engine {
	ctrl := NewAuthController(svc, nopLogger)
	r := gin.New()
	r.POST("/auth/signup", ctrl.Signup)
	r.POST("/auth/login", ctrl.Login)
	r.GET("/auth/user", ctrl.CurrentUser)
	r.GET("/auth/logout", ctrl.Logout)
	r.GET("/api/users/:id", ctrl.GetUser)
	return r
}

func TestAuthController_Signup(t *testing.T) {
	svc := &stubAuthService{}
	r := newAuthRouter(svc)

	w := doJSON(r, http.MethodPost, "/auth/signup",
		`{"email":"ada@campus.test","password":"s3cretpass","fullName":"Ada","role":"college","extra":{"collegeName":"North College"}}`)

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.JSONEq(t,
		`{"user":{"id":11,"email":"ada@campus.test","fullName":"Ada","role":"college"},"token":"signed-token"}`,
		w.Body.String())
	require.NotNil(t, svc.signupReq)
	require.NotNil(t, svc.signupReq.Extra.CollegeName)
	assert.Equal(t, "North College", *svc.signupReq.Extra.CollegeName)
}

func TestAuthController_SignupErrors(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		err    error
		status int
		code   string
	}{
		{"missing fields", `{"email":"ada@campus.test"}`, nil, http.StatusBadRequest, string(dto.ErrorCodeValidationFailed)},
		{"empty body", ``, nil, http.StatusBadRequest, string(dto.ErrorCodeBadRequest)},
		{"duplicate email", `{"email":"ada@campus.test","password":"s3cretpass","fullName":"Ada","role":"student"}`,
			apperrors.ErrEmailAlreadyExists, http.StatusConflict, string(dto.ErrorCodeResourceAlreadyExists)},
		{"admin self-signup", `{"email":"ada@campus.test","password":"s3cretpass","fullName":"Ada","role":"admin"}`,
			apperrors.NewForbiddenError("admin accounts cannot self-register"), http.StatusForbidden, string(dto.ErrorCodeForbidden)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newAuthRouter(&stubAuthService{signupErr: tt.err})
			w := doJSON(r, http.MethodPost, "/auth/signup", tt.body)
			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, tt.code, errorCode(t, w))
		})
	}
}

func TestAuthController_Login(t *testing.T) {
	r := newAuthRouter(&stubAuthService{})
	w := doJSON(r, http.MethodPost, "/auth/login", `{"email":"ada@campus.test","password":"s3cretpass"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"token":"signed-token"`)

	r = newAuthRouter(&stubAuthService{loginErr: apperrors.ErrAccountDisabled})
	w = doJSON(r, http.MethodPost, "/auth/login", `{"email":"ada@campus.test","password":"s3cretpass"}`)
	assert.Equal(t, http.StatusForbidden, w.Code)

	r = newAuthRouter(&stubAuthService{loginErr: apperrors.ErrInvalidCredentials})
	w = doJSON(r, http.MethodPost, "/auth/login", `{"email":"ada@campus.test","password":"wrong"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, string(dto.ErrorCodeInvalidCredentials), errorCode(t, w))
}

func TestAuthController_CurrentUser(t *testing.T) {
	svc := &stubAuthService{users: map[string]*models.AuthUser{
		"good": {ID: 4, Email: "ada@campus.test", FullName: "Ada", Role: models.RoleStudent},
	}}
	r := newAuthRouter(svc)

	w := doJSON(r, http.MethodGet, "/auth/user", "", "Authorization", "Bearer good")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t,
		`{"authenticated":true,"user":{"id":4,"email":"ada@campus.test","fullName":"Ada","role":"student"}}`,
		w.Body.String())

	for _, header := range []string{"", "Bearer", "Bearer revoked"} {
		w = doJSON(r, http.MethodGet, "/auth/user", "", "Authorization", header)
		assert.Equal(t, http.StatusUnauthorized, w.Code, "header %q", header)
		assert.JSONEq(t, `{"authenticated":false}`, w.Body.String())
	}
}

func TestAuthController_LogoutAlwaysSucceeds(t *testing.T) {
	svc := &stubAuthService{logoutErr: errors.New("db down")}
	r := newAuthRouter(svc)

	w := doJSON(r, http.MethodGet, "/auth/logout", "", "Authorization", "Bearer tok")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"tok"}, svc.loggedOut)

	w = doJSON(r, http.MethodGet, "/auth/logout", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, svc.loggedOut, 1)
}

func TestAuthController_GetUser(t *testing.T) {
	svc := &stubAuthService{withRole: map[int64]*dto.UserWithRoleResponse{
		4: {Profile: &models.Profile{ID: 4, FullName: "Ada"}, Role: models.RoleCompany},
	}}
	r := newAuthRouter(svc)

	w := doJSON(r, http.MethodGet, "/api/users/4", "")
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeEnvelope(t, w)
	assert.Equal(t, "company", body["role"])
	assert.Equal(t, "Ada", body["profile"].(map[string]interface{})["fullName"])

	w = doJSON(r, http.MethodGet, "/api/users/99", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(r, http.MethodGet, "/api/users/abc", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestStudentController_RegisterWithoutBody(t *testing.T) {
	svc := &stubStudentService{}
	ctrl := NewStudentController(svc, nopLogger)
	r := gin.New()
	r.POST("/api/events/:id/register", asUser(7, models.RoleStudent), ctrl.RegisterForEvent)

	w := doJSON(r, http.MethodPost, "/api/events/5/register", "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	require.NotNil(t, svc.registerReq)
	assert.Nil(t, svc.registerReq.SubEventID)

	w = doJSON(r, http.MethodPost, "/api/events/5/register", `{"subEventId":3}`)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, int64(3), *svc.registerReq.SubEventID)

	svc.registerErr = apperrors.NewCustomError(apperrors.ErrEventFull, "event is full")
	w = doJSON(r, http.MethodPost, "/api/events/5/register", "")
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "event is full")
}

func TestStudentController_Apply(t *testing.T) {
	svc := &stubStudentService{applyResp: &dto.ApplyResponse{RedirectURL: "https://jobs.example.com/42"}}
	ctrl := NewStudentController(svc, nopLogger)
	r := gin.New()
	r.POST("/api/opportunities/:id/apply", asUser(7, models.RoleStudent), ctrl.Apply)

	w := doJSON(r, http.MethodPost, "/api/opportunities/42/apply", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"redirectUrl":"https://jobs.example.com/42"`)

	svc.applyResp = &dto.ApplyResponse{Application: &models.Application{ID: 9, Status: models.ApplicationSubmitted}}
	w = doJSON(r, http.MethodPost, "/api/opportunities/42/apply", `{"coverLetter":"hello"}`)
	assert.Equal(t, http.StatusCreated, w.Code)

	svc.applyResp, svc.applyErr = nil, apperrors.ErrAlreadyApplied
	w = doJSON(r, http.MethodPost, "/api/opportunities/42/apply", "")
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestAdminController_ExportUsers(t *testing.T) {
	svc := &stubAdminService{}
	ctrl := NewAdminController(svc, nopLogger)
	r := gin.New()
	r.GET("/api/admin/users/export", asUser(1, models.RoleAdmin), ctrl.ExportUsers)

	w := doJSON(r, http.MethodGet, "/api/admin/users/export?role=admin&active=true&q=ada", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "attachment; filename=")
	assert.True(t, strings.HasPrefix(w.Body.String(), "id,email,full_name,role,is_active,created_at\n"))
	assert.Equal(t, "admin", svc.exportQuery.Role)
	assert.Equal(t, "ada", svc.exportQuery.Q)
	require.NotNil(t, svc.exportActive)
	assert.True(t, *svc.exportActive)

	w = doJSON(r, http.MethodGet, "/api/admin/users/export?role=wizard", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(r, http.MethodGet, "/api/admin/users/export?active=maybe", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	svc.exportErr = errors.New("connection reset")
	w = doJSON(r, http.MethodGet, "/api/admin/users/export", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, string(dto.ErrorCodeInternalServer), errorCode(t, w))
}

func TestAdminController_BulkSetUserStatus(t *testing.T) {
	svc := &stubAdminService{}
	ctrl := NewAdminController(svc, nopLogger)
	r := gin.New()
	r.POST("/api/admin/users/bulk-status", asUser(1, models.RoleAdmin), ctrl.BulkSetUserStatus)

	w := doJSON(r, http.MethodPost, "/api/admin/users/bulk-status", `{"ids":[2,3],"isActive":false}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []int64{2, 3}, svc.bulkIDs)
	assert.False(t, svc.bulkActive)

	w = doJSON(r, http.MethodPost, "/api/admin/users/bulk-status", `{"ids":[2,3]}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(r, http.MethodPost, "/api/admin/users/bulk-status", `{"ids":[],"isActive":true}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCollegeController_UploadLogo(t *testing.T) {
	svc := &stubCollegeService{}
	ctrl := NewCollegeController(svc, nopLogger)
	r := gin.New()
	r.POST("/api/college/profile/logo", asUser(3, models.RoleCollege), ctrl.UploadLogo)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", "logo.png")
	require.NoError(t, err)
	_, err = part.Write([]byte("\x89PNG\r\n\x1a\nfake"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/college/profile/logo", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"url":"http://files.test/storage/logos/college-3/logo.png"`)
	assert.Equal(t, []byte("\x89PNG\r\n\x1a\nfake"), svc.logoBytes)

	w = doJSON(r, http.MethodPost, "/api/college/profile/logo", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCollegeController_ChangeEventStatus(t *testing.T) {
	ctrl := NewCollegeController(&stubCollegeService{}, nopLogger)
	r := gin.New()
	r.POST("/api/college/events/:id/status", asUser(3, models.RoleCollege), ctrl.ChangeEventStatus)

	w := doJSON(r, http.MethodPost, "/api/college/events/8/status", `{"status":"published"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"published"`)

	w = doJSON(r, http.MethodPost, "/api/college/events/8/status", `{"status":"completed"}`)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, string(dto.ErrorCodeInvalidStateTransition), errorCode(t, w))

	w = doJSON(r, http.MethodPost, "/api/college/events/8/status", `{"status":"archived"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCatalogController(t *testing.T) {
	svc := &stubCatalogService{}
	ctrl := NewCatalogController(svc, nopLogger)
	r := gin.New()
	r.GET("/api/events", ctrl.ListEvents)
	r.GET("/api/events/:id", ctrl.GetEvent)
	r.GET("/api/opportunities", ctrl.ListOpportunities)

	w := doJSON(r, http.MethodGet, "/api/events?q=hack&tag=AI&category=tech", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, dto.EventQuery{Q: "hack", Tag: "AI", Category: "tech"}, svc.eventQuery)
	data := decodeEnvelope(t, w)["data"].(map[string]interface{})
	assert.Equal(t, true, data["sample"])

	w = doJSON(r, http.MethodGet, "/api/events/12", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(r, http.MethodGet, "/api/opportunities?type=gig", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestMustUserIDWithoutAuth(t *testing.T) {
	ctrl := NewUserController(nil, nopLogger)
	r := gin.New()
	r.GET("/api/users/me", ctrl.GetMe)

	w := doJSON(r, http.MethodGet, "/api/users/me", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

type recordingStreamer struct {
	userID int64
}

func (s *recordingStreamer) Serve(w http.ResponseWriter, _ *http.Request, userID int64) error {
	s.userID = userID
	w.WriteHeader(http.StatusSwitchingProtocols)
	return nil
}

func TestNotificationStreamUsesCaller(t *testing.T) {
	streamer := &recordingStreamer{}
	ctrl := NewNotificationController(streamer, nopLogger)

	r := gin.New()
	r.GET("/ws", asUser(31, models.RoleStudent), ctrl.Stream)
	w := doJSON(r, http.MethodGet, "/ws", "")

	assert.Equal(t, http.StatusSwitchingProtocols, w.Code)
	assert.Equal(t, int64(31), streamer.userID)

	anon := gin.New()
	anon.GET("/ws", ctrl.Stream)
	w = doJSON(anon, http.MethodGet, "/ws", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
