package session

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const goodToken = "good-token"

// fakeAPI answers the handful of endpoints the client uses
type fakeAPI struct {
	logoutCalls  atomic.Int32
	profileCalls atomic.Int32
	failLogout   bool

	// Overrides for /auth/user and /api/users/:id. Zero means normal.
	userStatus    atomic.Int32
	userRawBody   string
	profileStatus atomic.Int32

	// When set, profile requests signal profileHeld and wait for
	// profileRelease before answering.
	profileHeld    chan struct{}
	profileRelease chan struct{}
}

func (f *fakeAPI) handler() http.Handler {
	mux := http.NewServeMux()

	writeJSON := func(w http.ResponseWriter, status int, v any) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(v)
	}
	errorBody := func(code, msg, field string) map[string]any {
		return map[string]any{
			"success": false,
			"error":   map[string]any{"code": code, "message": msg, "field": field, "severity": "ERROR"},
		}
	}
	authorized := func(r *http.Request) bool {
		return r.Header.Get("Authorization") == "Bearer "+goodToken
	}
	user := map[string]any{"id": 7, "email": "ada@example.edu", "fullName": "Ada L", "role": "student"}

	mux.HandleFunc("/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var req map[string]string
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req["password"] != "secret123" {
			writeJSON(w, http.StatusUnauthorized, errorBody("AUTH_001", "Invalid email or password", ""))
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"user": user, "token": goodToken})
	})
	mux.HandleFunc("/auth/signup", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Email string         `json:"email"`
			Role  string         `json:"role"`
			Extra map[string]any `json:"extra"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.Email == "taken@example.edu" {
			writeJSON(w, http.StatusConflict, errorBody("RES_002", "Email already registered", "email"))
			return
		}
		writeJSON(w, http.StatusCreated, map[string]any{
			"user":  map[string]any{"id": 9, "email": req.Email, "fullName": "New", "role": req.Role},
			"token": goodToken,
		})
	})
	mux.HandleFunc("/auth/user", func(w http.ResponseWriter, r *http.Request) {
		if status := int(f.userStatus.Load()); status != 0 {
			if f.userRawBody != "" {
				w.Header().Set("Content-Type", "text/html")
				w.WriteHeader(status)
				_, _ = w.Write([]byte(f.userRawBody))
				return
			}
			writeJSON(w, status, errorBody("SRV_001", "Internal server error", ""))
			return
		}
		if !authorized(r) {
			writeJSON(w, http.StatusUnauthorized, map[string]any{"authenticated": false})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"authenticated": true, "user": user})
	})
	mux.HandleFunc("/auth/logout", func(w http.ResponseWriter, _ *http.Request) {
		f.logoutCalls.Add(1)
		if f.failLogout {
			writeJSON(w, http.StatusInternalServerError, errorBody("SRV_001", "boom", ""))
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "Logged out"})
	})
	mux.HandleFunc("/api/users/", func(w http.ResponseWriter, r *http.Request) {
		f.profileCalls.Add(1)
		if f.profileHeld != nil {
			f.profileHeld <- struct{}{}
			<-f.profileRelease
		}
		if status := int(f.profileStatus.Load()); status != 0 {
			writeJSON(w, status, errorBody("AUTH_005", "Invalid token", ""))
			return
		}
		if !authorized(r) {
			writeJSON(w, http.StatusUnauthorized, errorBody("AUTH_005", "Invalid token", ""))
			return
		}
		id := strings.TrimPrefix(r.URL.Path, "/api/users/")
		role := "student"
		if id == "9" {
			role = "company"
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"profile": map[string]any{"id": 7, "fullName": "Ada L", "email": "ada@example.edu", "skills": []string{"go"}, "isActive": true},
			"role":    role,
		})
	})
	return mux
}

func newTestClient(t *testing.T, api *fakeAPI, store TokenStore) *Client {
	t.Helper()
	srv := httptest.NewServer(api.handler())
	t.Cleanup(srv.Close)
	return NewClient(srv.URL+"/", WithHTTPClient(srv.Client()), WithTokenStore(store))
}

func TestLoadWithoutToken(t *testing.T) {
	api := &fakeAPI{}
	c := newTestClient(t, api, NewMemoryTokenStore())
	assert.True(t, c.State().Loading)

	require.NoError(t, c.Load(context.Background()))

	st := c.State()
	assert.False(t, st.Loading)
	assert.False(t, st.Authenticated)
	assert.Nil(t, st.User)
	assert.Zero(t, api.profileCalls.Load())
}

func TestLoadWithValidToken(t *testing.T) {
	store := NewMemoryTokenStore()
	require.NoError(t, store.Save(goodToken))
	c := newTestClient(t, &fakeAPI{}, store)

	require.NoError(t, c.Load(context.Background()))

	st := c.State()
	assert.True(t, st.Authenticated)
	assert.False(t, st.Loading)
	require.NotNil(t, st.User)
	assert.Equal(t, int64(7), st.User.ID)
	require.NotNil(t, st.Profile)
	assert.Equal(t, []string{"go"}, st.Profile.Skills)
	assert.Equal(t, "student", st.Role)
	assert.Equal(t, goodToken, c.Token())
}

func TestLoadDiscardsRejectedToken(t *testing.T) {
	store := NewMemoryTokenStore()
	require.NoError(t, store.Save("stale"))
	c := newTestClient(t, &fakeAPI{}, store)

	require.NoError(t, c.Load(context.Background()))

	st := c.State()
	assert.False(t, st.Authenticated)
	assert.False(t, st.Loading)
	saved, _ := store.Load()
	assert.Empty(t, saved)
	assert.Empty(t, c.Token())
}

func TestLoadDiscardsTokenOnFailedCheck(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		rawBody string
		wantErr bool
	}{
		{name: "server error", status: http.StatusInternalServerError, wantErr: true},
		{name: "forbidden", status: http.StatusForbidden, wantErr: true},
		{name: "html instead of json", status: http.StatusOK, rawBody: "<html>sign in to the wifi</html>", wantErr: true},
		{name: "unauthorized", status: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := &fakeAPI{userRawBody: tt.rawBody}
			api.userStatus.Store(int32(tt.status))
			store := NewMemoryTokenStore()
			require.NoError(t, store.Save(goodToken))
			c := newTestClient(t, api, store)

			err := c.Load(context.Background())
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}

			st := c.State()
			assert.False(t, st.Authenticated)
			assert.False(t, st.Loading)
			assert.Empty(t, c.Token())
			saved, _ := store.Load()
			assert.Empty(t, saved)
		})
	}
}

func TestLoadKeepsTokenWhenServerUnreachable(t *testing.T) {
	store := NewMemoryTokenStore()
	require.NoError(t, store.Save(goodToken))
	c := NewClient("http://127.0.0.1:1", WithTokenStore(store))

	err := c.Load(context.Background())
	require.Error(t, err)

	st := c.State()
	assert.False(t, st.Loading)
	assert.False(t, st.Authenticated)
	saved, _ := store.Load()
	assert.Equal(t, goodToken, saved)
}

func TestSignIn(t *testing.T) {
	store := NewMemoryTokenStore()
	c := newTestClient(t, &fakeAPI{}, store)

	authErr := c.SignIn(context.Background(), "ada@example.edu", "secret123")
	require.Nil(t, authErr)

	st := c.State()
	assert.True(t, st.Authenticated)
	assert.Equal(t, "ada@example.edu", st.User.Email)
	assert.NotNil(t, st.Profile)
	saved, _ := store.Load()
	assert.Equal(t, goodToken, saved)
}

func TestSignInSurvivesProfileFailure(t *testing.T) {
	api := &fakeAPI{}
	api.profileStatus.Store(http.StatusInternalServerError)
	store := NewMemoryTokenStore()
	c := newTestClient(t, api, store)

	require.Nil(t, c.SignIn(context.Background(), "ada@example.edu", "secret123"))

	st := c.State()
	assert.True(t, st.Authenticated)
	assert.Nil(t, st.Profile)
	assert.Equal(t, "student", st.Role)
	assert.Equal(t, int32(1), api.profileCalls.Load())
	saved, _ := store.Load()
	assert.Equal(t, goodToken, saved)
}

func TestSignInWrongPassword(t *testing.T) {
	store := NewMemoryTokenStore()
	c := newTestClient(t, &fakeAPI{}, store)

	authErr := c.SignIn(context.Background(), "ada@example.edu", "nope")
	require.NotNil(t, authErr)
	assert.Equal(t, http.StatusUnauthorized, authErr.Status)
	assert.Equal(t, "AUTH_001", authErr.Code)
	assert.Equal(t, "Invalid email or password", authErr.Message)
	assert.True(t, IsUnauthorized(authErr))

	assert.False(t, c.State().Authenticated)
	saved, _ := store.Load()
	assert.Empty(t, saved)
}

func TestSignUpDerivesRoleFromResponse(t *testing.T) {
	c := newTestClient(t, &fakeAPI{}, NewMemoryTokenStore())

	authErr := c.SignUp(context.Background(), "new@acme.io", "secret123", "New", "company",
		map[string]any{"companyName": "Acme"})
	require.Nil(t, authErr)

	st := c.State()
	assert.True(t, st.Authenticated)
	assert.Equal(t, int64(9), st.User.ID)
	assert.Equal(t, "company", st.Role)
}

func TestSignUpConflict(t *testing.T) {
	c := newTestClient(t, &fakeAPI{}, NewMemoryTokenStore())

	authErr := c.SignUp(context.Background(), "taken@example.edu", "secret123", "X", "student", nil)
	require.NotNil(t, authErr)
	assert.Equal(t, http.StatusConflict, authErr.Status)
	assert.Equal(t, "email", authErr.Field)
	assert.Contains(t, authErr.Error(), "RES_002")
}

func TestSignInTransportFailure(t *testing.T) {
	c := NewClient("http://127.0.0.1:1")

	authErr := c.SignIn(context.Background(), "a@b.c", "secret123")
	require.NotNil(t, authErr)
	assert.Zero(t, authErr.Status)
	assert.NotEmpty(t, authErr.Message)
}

func TestSignOutIgnoresServerFailure(t *testing.T) {
	api := &fakeAPI{failLogout: true}
	store := NewMemoryTokenStore()
	c := newTestClient(t, api, store)
	require.Nil(t, c.SignIn(context.Background(), "ada@example.edu", "secret123"))

	require.NoError(t, c.SignOut(context.Background()))

	assert.Equal(t, int32(1), api.logoutCalls.Load())
	st := c.State()
	assert.False(t, st.Authenticated)
	assert.Nil(t, st.User)
	assert.Nil(t, st.Profile)
	saved, _ := store.Load()
	assert.Empty(t, saved)
}

func TestSignOutWhenSignedOutSkipsRequest(t *testing.T) {
	api := &fakeAPI{}
	c := newTestClient(t, api, NewMemoryTokenStore())

	require.NoError(t, c.SignOut(context.Background()))
	assert.Zero(t, api.logoutCalls.Load())
}

func TestRefreshProfileNoopWhenSignedOut(t *testing.T) {
	api := &fakeAPI{}
	c := newTestClient(t, api, NewMemoryTokenStore())

	require.NoError(t, c.RefreshProfile(context.Background()))
	assert.Zero(t, api.profileCalls.Load())
}

func TestRefreshProfileUnauthorizedSignsOut(t *testing.T) {
	api := &fakeAPI{}
	store := NewMemoryTokenStore()
	c := newTestClient(t, api, store)
	require.Nil(t, c.SignIn(context.Background(), "ada@example.edu", "secret123"))

	api.profileStatus.Store(http.StatusUnauthorized)
	err := c.RefreshProfile(context.Background())
	require.Error(t, err)
	assert.True(t, IsUnauthorized(err))

	st := c.State()
	assert.False(t, st.Authenticated)
	assert.Nil(t, st.User)
	assert.Nil(t, st.Profile)
	assert.Empty(t, c.Token())
	saved, _ := store.Load()
	assert.Empty(t, saved)
}

func TestRefreshProfileDropsResultAfterSignOut(t *testing.T) {
	tests := []struct {
		name          string
		profileStatus int
	}{
		{name: "profile answered", profileStatus: 0},
		{name: "profile rejected", profileStatus: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := &fakeAPI{
				profileHeld:    make(chan struct{}),
				profileRelease: make(chan struct{}),
			}
			api.profileStatus.Store(int32(tt.profileStatus))
			store := NewMemoryTokenStore()
			c := newTestClient(t, api, store)

			signedIn := make(chan *AuthError, 1)
			go func() {
				signedIn <- c.SignIn(context.Background(), "ada@example.edu", "secret123")
			}()

			// SignIn is now waiting on its profile fetch
			<-api.profileHeld
			require.NoError(t, c.SignOut(context.Background()))
			close(api.profileRelease)
			require.Nil(t, <-signedIn)

			st := c.State()
			assert.False(t, st.Authenticated)
			assert.Nil(t, st.User)
			assert.Nil(t, st.Profile)
			assert.Empty(t, c.Token())
			saved, _ := store.Load()
			assert.Empty(t, saved)
		})
	}
}

func TestSubscribeReceivesChanges(t *testing.T) {
	c := newTestClient(t, &fakeAPI{}, NewMemoryTokenStore())

	var mu sync.Mutex
	var seen []State
	unsubscribe := c.Subscribe(func(s State) {
		mu.Lock()
		seen = append(seen, s)
		mu.Unlock()
	})

	require.Nil(t, c.SignIn(context.Background(), "ada@example.edu", "secret123"))

	mu.Lock()
	require.Len(t, seen, 2)
	assert.True(t, seen[0].Authenticated)
	assert.Nil(t, seen[0].Profile)
	assert.NotNil(t, seen[1].Profile)
	mu.Unlock()

	unsubscribe()
	require.NoError(t, c.SignOut(context.Background()))

	mu.Lock()
	assert.Len(t, seen, 2)
	mu.Unlock()
}

func TestStateIsSnapshot(t *testing.T) {
	c := newTestClient(t, &fakeAPI{}, NewMemoryTokenStore())
	require.Nil(t, c.SignIn(context.Background(), "ada@example.edu", "secret123"))

	st := c.State()
	st.User.Email = "mutated"
	st.Profile.Skills[0] = "rust"

	fresh := c.State()
	assert.Equal(t, "ada@example.edu", fresh.User.Email)
	assert.Equal(t, "go", fresh.Profile.Skills[0])
}

func TestConcurrentUse(t *testing.T) {
	c := newTestClient(t, &fakeAPI{}, NewMemoryTokenStore())
	require.Nil(t, c.SignIn(context.Background(), "ada@example.edu", "secret123"))

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = c.RefreshProfile(context.Background())
			_ = c.State()
		}()
	}
	wg.Wait()

	assert.True(t, c.State().Authenticated)
}
