// Package session is the client side of the CampusHub auth lifecycle. A
// Client remembers who is signed in, persists the bearer token through a
// TokenStore and notifies subscribers whenever that changes.
package session

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

const defaultTimeout = 15 * time.Second

// errMalformedResponse marks a 2xx answer whose body is not the expected JSON
var errMalformedResponse = errors.New("malformed response")

// User is the account summary the auth endpoints return
type User struct {
	ID       int64  `json:"id"`
	Email    string `json:"email"`
	FullName string `json:"fullName"`
	Role     string `json:"role"`
}

// Profile is the public profile served by GET /api/users/:id
type Profile struct {
	ID             int64     `json:"id"`
	FullName       string    `json:"fullName"`
	Email          string    `json:"email"`
	Headline       *string   `json:"headline,omitempty"`
	Bio            *string   `json:"bio,omitempty"`
	Skills         []string  `json:"skills"`
	LinkedinURL    *string   `json:"linkedinUrl,omitempty"`
	GithubURL      *string   `json:"githubUrl,omitempty"`
	WebsiteURL     *string   `json:"websiteUrl,omitempty"`
	AvatarURL      *string   `json:"avatarUrl,omitempty"`
	CollegeID      *int64    `json:"collegeId,omitempty"`
	Major          *string   `json:"major,omitempty"`
	GraduationYear *int      `json:"graduationYear,omitempty"`
	IsActive       bool      `json:"isActive"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// State is a point-in-time copy of the session
type State struct {
	User          *User    `json:"user"`
	Profile       *Profile `json:"profile"`
	Role          string   `json:"role,omitempty"`
	Loading       bool     `json:"loading"`
	Authenticated bool     `json:"authenticated"`
}

type authResponse struct {
	User  User   `json:"user"`
	Token string `json:"token"`
}

type currentUserResponse struct {
	Authenticated bool  `json:"authenticated"`
	User          *User `json:"user"`
}

type profileResponse struct {
	Profile *Profile `json:"profile"`
	Role    string   `json:"role"`
}

// Client talks to the auth endpoints and owns the session state. It is safe
// for concurrent use.
type Client struct {
	baseURL string
	http    *http.Client
	tokens  TokenStore
	logger  zerolog.Logger

	mu          sync.Mutex
	token       string
	state       State
	subscribers map[int]func(State)
	nextSubID   int
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the default 15s-timeout client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTokenStore sets where the token is persisted. Defaults to memory.
func WithTokenStore(store TokenStore) Option {
	return func(c *Client) { c.tokens = store }
}

// WithLogger sets the client logger. Defaults to a no-op logger.
func WithLogger(lgr zerolog.Logger) Option {
	return func(c *Client) { c.logger = lgr }
}

// NewClient creates a client for the API at baseURL. The initial state is
// loading until Load runs.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:     strings.TrimRight(baseURL, "/"),
		http:        &http.Client{Timeout: defaultTimeout},
		tokens:      NewMemoryTokenStore(),
		logger:      zerolog.Nop(),
		state:       State{Loading: true},
		subscribers: make(map[int]func(State)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// State returns a snapshot of the current session
func (c *Client) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// Token returns the bearer token in use, empty when signed out
func (c *Client) Token() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.token
}

// Subscribe registers fn to run after every state change. The returned
// func removes the subscription.
func (c *Client) Subscribe(fn func(State)) (unsubscribe func()) {
	c.mu.Lock()
	id := c.nextSubID
	c.nextSubID++
	c.subscribers[id] = fn
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		delete(c.subscribers, id)
		c.mu.Unlock()
	}
}

// Load restores the session from the token store. A missing token ends in
// the signed-out state; a token the server rejects is discarded.
func (c *Client) Load(ctx context.Context) error {
	token, err := c.tokens.Load()
	if err != nil {
		c.setState(func(s *State) { s.Loading = false }, "")
		return err
	}
	if token == "" {
		c.reset("")
		return nil
	}

	var cur currentUserResponse
	status, body, err := c.do(ctx, http.MethodGet, "/auth/user", token, nil, &cur)
	if err != nil && !errors.Is(err, errMalformedResponse) {
		// Server unreachable: keep the token for the next attempt
		c.reset(token)
		return err
	}
	if err != nil {
		c.logger.Debug().Err(err).Msg("Unexpected session response, signing out")
		if clearErr := c.discard(); clearErr != nil {
			return clearErr
		}
		return err
	}
	if status != http.StatusOK || !cur.Authenticated || cur.User == nil {
		c.logger.Debug().Int("status", status).Msg("Stored token rejected, signing out")
		c.discard()
		if status != http.StatusUnauthorized && status != http.StatusOK {
			return decodeAuthError(status, body)
		}
		return nil
	}

	user := *cur.User
	c.setState(func(s *State) {
		s.User = &user
		s.Role = user.Role
		s.Authenticated = true
		s.Loading = false
	}, token)

	return c.RefreshProfile(ctx)
}

// SignUp creates an account and signs in as it. extra carries the
// role-specific fields (collegeName, companyName, major, ...).
func (c *Client) SignUp(ctx context.Context, email, password, fullName, role string, extra map[string]any) *AuthError {
	payload := map[string]any{
		"email":    email,
		"password": password,
		"fullName": fullName,
		"role":     role,
	}
	if extra != nil {
		payload["extra"] = extra
	}
	return c.authenticate(ctx, "/auth/signup", payload)
}

// SignIn authenticates with email and password
func (c *Client) SignIn(ctx context.Context, email, password string) *AuthError {
	return c.authenticate(ctx, "/auth/login", map[string]any{
		"email":    email,
		"password": password,
	})
}

func (c *Client) authenticate(ctx context.Context, path string, payload any) *AuthError {
	var resp authResponse
	status, body, err := c.do(ctx, http.MethodPost, path, "", payload, &resp)
	if err != nil {
		return transportError(err)
	}
	if status != http.StatusOK && status != http.StatusCreated {
		return decodeAuthError(status, body)
	}
	if resp.Token == "" {
		return &AuthError{Status: status, Message: "server returned no token"}
	}

	if err := c.tokens.Save(resp.Token); err != nil {
		return &AuthError{Status: status, Message: err.Error()}
	}

	user := resp.User
	c.setState(func(s *State) {
		s.User = &user
		s.Profile = nil
		s.Role = user.Role
		s.Authenticated = true
		s.Loading = false
	}, resp.Token)

	if err := c.RefreshProfile(ctx); err != nil {
		c.logger.Debug().Err(err).Msg("Profile fetch after sign-in failed")
	}
	return nil
}

// SignOut tells the server to revoke the session, ignoring any failure, and
// then clears the token and state.
func (c *Client) SignOut(ctx context.Context) error {
	if token := c.Token(); token != "" {
		if _, _, err := c.do(ctx, http.MethodGet, "/auth/logout", token, nil, nil); err != nil {
			c.logger.Debug().Err(err).Msg("Logout request failed")
		}
	}
	return c.discard()
}

// RefreshProfile re-reads the profile and role of the signed-in user. It is
// a no-op when nobody is signed in.
func (c *Client) RefreshProfile(ctx context.Context) error {
	c.mu.Lock()
	token := c.token
	var userID int64
	if c.state.User != nil {
		userID = c.state.User.ID
	}
	c.mu.Unlock()

	if token == "" || userID == 0 {
		return nil
	}

	var resp profileResponse
	path := "/api/users/" + strconv.FormatInt(userID, 10)
	status, body, err := c.do(ctx, http.MethodGet, path, token, nil, &resp)
	if err != nil {
		return err
	}
	// A sign-out or a new sign-in may have landed while the request was in
	// flight; its result then belongs to a session that no longer exists.
	current := c.sameSession(token, userID)
	if status == http.StatusUnauthorized {
		if err := c.discardIf(current); err != nil {
			return err
		}
		return decodeAuthError(status, body)
	}
	if status != http.StatusOK {
		return decodeAuthError(status, body)
	}

	if !c.update(current, func(s *State) {
		s.Profile = resp.Profile
		if resp.Role != "" {
			s.Role = resp.Role
		}
	}, token) {
		c.logger.Debug().Int64("user_id", userID).Msg("Dropping profile of a replaced session")
	}
	return nil
}

// sameSession reports, under c.mu, whether token and userID still describe
// the signed-in session
func (c *Client) sameSession(token string, userID int64) func() bool {
	return func() bool {
		return c.token == token && c.state.User != nil && c.state.User.ID == userID
	}
}

// discard drops the persisted token and resets to signed out
func (c *Client) discard() error {
	err := c.tokens.Clear()
	c.reset("")
	return err
}

// discardIf is discard for a session that may have been replaced meanwhile
func (c *Client) discardIf(current func() bool) error {
	var err error
	c.update(func() bool {
		if !current() {
			return false
		}
		err = c.tokens.Clear()
		return true
	}, func(s *State) { *s = State{} }, "")
	return err
}

func (c *Client) reset(token string) {
	c.setState(func(s *State) { *s = State{} }, token)
}

func (c *Client) setState(mutate func(*State), token string) {
	c.update(func() bool { return true }, mutate, token)
}

// update applies mutate under the lock when current holds, then notifies
// subscribers outside of it. It reports whether anything changed.
func (c *Client) update(current func() bool, mutate func(*State), token string) bool {
	c.mu.Lock()
	if !current() {
		c.mu.Unlock()
		return false
	}
	mutate(&c.state)
	c.token = token
	snapshot := c.snapshotLocked()
	subs := make([]func(State), 0, len(c.subscribers))
	for _, fn := range c.subscribers {
		subs = append(subs, fn)
	}
	c.mu.Unlock()

	for _, fn := range subs {
		fn(snapshot)
	}
	return true
}

func (c *Client) snapshotLocked() State {
	s := c.state
	if s.User != nil {
		u := *s.User
		s.User = &u
	}
	if s.Profile != nil {
		p := *s.Profile
		p.Skills = append([]string(nil), p.Skills...)
		s.Profile = &p
	}
	return s
}

// do sends a JSON request and decodes a 2xx body into out. The raw body is
// returned for error decoding.
func (c *Client) do(ctx context.Context, method, path, token string, payload, out any) (int, []byte, error) {
	var reqBody io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return 0, nil, fmt.Errorf("encode request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return 0, nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("read response: %w", err)
	}

	if out != nil && len(body) > 0 {
		// 401 from /auth/user still carries {authenticated:false}
		if err := json.Unmarshal(body, out); err != nil && resp.StatusCode < 300 {
			return resp.StatusCode, body, fmt.Errorf("%w: %v", errMalformedResponse, err)
		}
	}
	return resp.StatusCode, body, nil
}

// IsUnauthorized reports whether err is a 401 from the server
func IsUnauthorized(err error) bool {
	var authErr *AuthError
	return errors.As(err, &authErr) && authErr.Status == http.StatusUnauthorized
}
