package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/campushub/internal/app/models"
	"github.com/yigit/campushub/internal/app/models/dto"
	"github.com/yigit/campushub/internal/pkg/apperrors"
	"github.com/yigit/campushub/internal/pkg/auth"
)

func newTestAuthService(accounts *fakeAccountStore, sessions *fakeSessionStore) *AuthService {
	jwtService := auth.NewJWTService(auth.JWTConfig{
		SecretKey:      "test-secret",
		AccessTokenExp: time.Hour,
		TokenIssuer:    "campushub-test",
	})
	return NewAuthService(accounts, sessions, jwtService, nopLogger())
}

func TestSignupIssuesTokenBackedBySession(t *testing.T) {
	accounts, sessions := newFakeAccountStore(), newFakeSessionStore()
	svc := newTestAuthService(accounts, sessions)
	ctx := context.Background()

	resp, err := svc.Signup(ctx, &dto.SignupRequest{
		Email:    "Ada@Example.com",
		Password: "lovelace1",
		FullName: "Ada Lovelace",
		Role:     models.RoleStudent,
	})
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", resp.User.Email)
	assert.Equal(t, models.RoleStudent, resp.User.Role)
	assert.NotEmpty(t, resp.Token)
	assert.Len(t, sessions.sessions, 1)

	user, claims, err := svc.Authenticate(ctx, resp.Token)
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, user.ID)
	assert.Contains(t, sessions.sessions, claims.SessionID())
}

func TestSignupRejectsAdminAndWeakPasswords(t *testing.T) {
	svc := newTestAuthService(newFakeAccountStore(), newFakeSessionStore())
	ctx := context.Background()

	_, err := svc.Signup(ctx, &dto.SignupRequest{
		Email: "root@example.com", Password: "password1", FullName: "Root", Role: models.RoleAdmin,
	})
	assert.True(t, errors.Is(err, apperrors.ErrPermissionDenied))

	_, err = svc.Signup(ctx, &dto.SignupRequest{
		Email: "weak@example.com", Password: "onlyletters", FullName: "Weak", Role: models.RoleStudent,
	})
	assert.True(t, errors.Is(err, apperrors.ErrValidationFailed))

	_, err = svc.Signup(ctx, &dto.SignupRequest{
		Email: "college@example.com", Password: "password1", FullName: "Dean", Role: models.RoleCollege,
	})
	require.Error(t, err)
	assert.Equal(t, "collegeName is required for college accounts", apperrors.Message(err))
}

func TestSignupMapsOrganizationExtras(t *testing.T) {
	accounts := newFakeAccountStore()
	svc := newTestAuthService(accounts, newFakeSessionStore())

	name, industry := "Acme Corp", "Robotics"
	_, err := svc.Signup(context.Background(), &dto.SignupRequest{
		Email:    "hr@acme.io",
		Password: "hiring2026",
		FullName: "Acme HR",
		Role:     models.RoleCompany,
		Extra:    dto.SignupExtra{CompanyName: &name, Industry: &industry, CollegeName: &name},
	})
	require.NoError(t, err)
	require.Len(t, accounts.provisions, 1)

	p := accounts.provisions[0]
	assert.Equal(t, "Acme Corp", p.OrganizationName)
	assert.Equal(t, &industry, p.Industry)
	assert.Nil(t, p.CollegeID)
	assert.True(t, auth.CheckPassword(p.PasswordHash, "hiring2026"))
}

func TestLoginFailures(t *testing.T) {
	accounts := newFakeAccountStore()
	hash, err := auth.HashPassword("correct1")
	require.NoError(t, err)
	accounts.add("on@example.com", hash, models.RoleStudent, true)
	accounts.add("off@example.com", hash, models.RoleStudent, false)
	svc := newTestAuthService(accounts, newFakeSessionStore())
	ctx := context.Background()

	tests := []struct {
		name     string
		email    string
		password string
		want     error
	}{
		{"unknown email", "nobody@example.com", "correct1", apperrors.ErrInvalidCredentials},
		{"wrong password", "on@example.com", "wrong111", apperrors.ErrInvalidCredentials},
		{"disabled account", "off@example.com", "correct1", apperrors.ErrAccountDisabled},
		{"blank password", "on@example.com", "", apperrors.ErrInvalidCredentials},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Login(ctx, &dto.LoginRequest{Email: tt.email, Password: tt.password})
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
		})
	}

	resp, err := svc.Login(ctx, &dto.LoginRequest{Email: " ON@example.com ", Password: "correct1"})
	require.NoError(t, err)
	assert.Equal(t, "on@example.com", resp.User.Email)
}

func TestAuthenticateAfterLogoutIsRevoked(t *testing.T) {
	accounts, sessions := newFakeAccountStore(), newFakeSessionStore()
	hash, _ := auth.HashPassword("correct1")
	accounts.add("me@example.com", hash, models.RoleCollege, true)
	svc := newTestAuthService(accounts, sessions)
	ctx := context.Background()

	resp, err := svc.Login(ctx, &dto.LoginRequest{Email: "me@example.com", Password: "correct1"})
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, resp.Token))
	_, _, err = svc.Authenticate(ctx, resp.Token)
	assert.True(t, errors.Is(err, apperrors.ErrTokenRevoked))

	// logging out twice, or with junk, is still fine
	assert.NoError(t, svc.Logout(ctx, resp.Token))
	assert.NoError(t, svc.Logout(ctx, "not-a-jwt"))
	assert.NoError(t, svc.Logout(ctx, ""))
}

func TestAuthenticateRejects(t *testing.T) {
	accounts, sessions := newFakeAccountStore(), newFakeSessionStore()
	hash, _ := auth.HashPassword("correct1")
	id := accounts.add("me@example.com", hash, models.RoleStudent, true)
	svc := newTestAuthService(accounts, sessions)
	ctx := context.Background()

	_, _, err := svc.Authenticate(ctx, "garbage")
	assert.True(t, errors.Is(err, apperrors.ErrTokenInvalid))

	resp, err := svc.Login(ctx, &dto.LoginRequest{Email: "me@example.com", Password: "correct1"})
	require.NoError(t, err)

	require.NoError(t, accounts.SetActive(ctx, id, false))
	_, _, err = svc.Authenticate(ctx, resp.Token)
	assert.True(t, errors.Is(err, apperrors.ErrAccountDisabled))

	require.NoError(t, accounts.SetActive(ctx, id, true))
	for sid := range sessions.sessions {
		delete(sessions.sessions, sid)
	}
	_, _, err = svc.Authenticate(ctx, resp.Token)
	assert.True(t, errors.Is(err, apperrors.ErrTokenInvalid))
}

func TestAuthenticateUsesCurrentRole(t *testing.T) {
	accounts := newFakeAccountStore()
	hash, _ := auth.HashPassword("correct1")
	id := accounts.add("me@example.com", hash, models.RoleStudent, true)
	svc := newTestAuthService(accounts, newFakeSessionStore())
	ctx := context.Background()

	resp, err := svc.Login(ctx, &dto.LoginRequest{Email: "me@example.com", Password: "correct1"})
	require.NoError(t, err)
	require.NoError(t, accounts.SetRole(ctx, id, models.RoleCompany))

	user, claims, err := svc.Authenticate(ctx, resp.Token)
	require.NoError(t, err)
	assert.Equal(t, models.RoleCompany, user.Role)
	assert.Equal(t, "student", claims.Role)
}

func TestCleanupExpiredSessions(t *testing.T) {
	sessions := newFakeSessionStore()
	svc := newTestAuthService(newFakeAccountStore(), sessions)
	svc.now = func() time.Time { return testNow }
	ctx := context.Background()

	require.NoError(t, sessions.Create(ctx, &models.AuthSession{ID: "old", AccountID: 1, ExpiresAt: testNow.Add(-48 * time.Hour)}))
	require.NoError(t, sessions.Create(ctx, &models.AuthSession{ID: "recent", AccountID: 1, ExpiresAt: testNow.Add(-time.Hour)}))

	n, err := svc.CleanupExpiredSessions(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.Equal(t, testNow.Add(-24*time.Hour), sessions.deletedBefore)
	assert.Contains(t, sessions.sessions, "recent")
}

func TestGetUserWithRole(t *testing.T) {
	accounts := newFakeAccountStore()
	id := accounts.add("c@example.com", "x", models.RoleCollege, true)
	svc := newTestAuthService(accounts, newFakeSessionStore())

	resp, err := svc.GetUserWithRole(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, models.RoleCollege, resp.Role)
	assert.Equal(t, "c@example.com", resp.Profile.Email)

	_, err = svc.GetUserWithRole(context.Background(), 999)
	assert.True(t, errors.Is(err, apperrors.ErrUserNotFound))
}
