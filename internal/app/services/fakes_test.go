package services

import (
	"bytes"
	"context"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"
	appauth "github.com/yigit/campushub/internal/app/auth"
	"github.com/yigit/campushub/internal/app/models"
	"github.com/yigit/campushub/internal/app/repositories"
	"github.com/yigit/campushub/internal/pkg/apperrors"
	"github.com/yigit/campushub/internal/pkg/filestorage"
)

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func nopLogger() zerolog.Logger { return zerolog.Nop() }

func int64Ptr(v int64) *int64 { return &v }
func intPtr(v int) *int       { return &v }
func boolPtr(v bool) *bool    { return &v }

// --- accounts ---

type fakeAccount struct {
	creds   models.Credentials
	profile models.Profile
}

type fakeAccountStore struct {
	nextID     int64
	accounts   map[int64]*fakeAccount
	provisions []repositories.ProvisionParams
	revoked    []int64
}

func newFakeAccountStore() *fakeAccountStore {
	return &fakeAccountStore{nextID: 1, accounts: map[int64]*fakeAccount{}}
}

func (f *fakeAccountStore) add(email, hash string, role models.Role, active bool) int64 {
	id := f.nextID
	f.nextID++
	f.accounts[id] = &fakeAccount{
		creds: models.Credentials{
			AuthUser:     models.AuthUser{ID: id, Email: email, FullName: "User " + email, Role: role},
			PasswordHash: hash,
			IsActive:     active,
		},
		profile: models.Profile{ID: id, Email: email, FullName: "User " + email, IsActive: active, Skills: []string{}},
	}
	return id
}

func (f *fakeAccountStore) Provision(_ context.Context, p repositories.ProvisionParams) (*models.AuthUser, error) {
	for _, a := range f.accounts {
		if a.creds.Email == p.Email {
			return nil, apperrors.ErrEmailAlreadyExists
		}
	}
	f.provisions = append(f.provisions, p)
	id := f.add(p.Email, p.PasswordHash, p.Role, true)
	f.accounts[id].creds.FullName = p.FullName
	f.accounts[id].profile.FullName = p.FullName
	u := f.accounts[id].creds.AuthUser
	return &u, nil
}

func (f *fakeAccountStore) get(id int64) (*fakeAccount, error) {
	a, ok := f.accounts[id]
	if !ok {
		return nil, apperrors.ErrUserNotFound
	}
	return a, nil
}

func (f *fakeAccountStore) GetCredentialsByEmail(_ context.Context, email string) (*models.Credentials, error) {
	for _, a := range f.accounts {
		if a.creds.Email == email {
			c := a.creds
			return &c, nil
		}
	}
	return nil, apperrors.ErrUserNotFound
}

func (f *fakeAccountStore) GetCredentialsByID(_ context.Context, id int64) (*models.Credentials, error) {
	a, err := f.get(id)
	if err != nil {
		return nil, err
	}
	c := a.creds
	return &c, nil
}

func (f *fakeAccountStore) UpdateLastLogin(context.Context, int64) error { return nil }

func (f *fakeAccountStore) GetProfile(_ context.Context, id int64) (*models.Profile, error) {
	a, err := f.get(id)
	if err != nil {
		return nil, err
	}
	p := a.profile
	return &p, nil
}

func (f *fakeAccountStore) GetRole(_ context.Context, id int64) (models.Role, error) {
	a, err := f.get(id)
	if err != nil {
		return "", err
	}
	return a.creds.Role, nil
}

func (f *fakeAccountStore) UpdateProfile(_ context.Context, id int64, u repositories.ProfileUpdate) (*models.Profile, error) {
	a, err := f.get(id)
	if err != nil {
		return nil, err
	}
	if u.FullName != nil {
		a.profile.FullName = *u.FullName
	}
	if u.Headline != nil {
		a.profile.Headline = u.Headline
	}
	if u.Skills != nil {
		a.profile.Skills = *u.Skills
	}
	if u.GithubURL != nil {
		a.profile.GithubURL = u.GithubURL
	}
	p := a.profile
	return &p, nil
}

func (f *fakeAccountStore) UpdateAvatar(_ context.Context, id int64, url string) error {
	a, err := f.get(id)
	if err != nil {
		return err
	}
	a.profile.AvatarURL = &url
	return nil
}

func (f *fakeAccountStore) SetActive(_ context.Context, id int64, active bool) error {
	a, err := f.get(id)
	if err != nil {
		return err
	}
	a.creds.IsActive = active
	a.profile.IsActive = active
	return nil
}

func (f *fakeAccountStore) BulkSetActive(_ context.Context, ids []int64, active bool) (int64, error) {
	var n int64
	for _, id := range ids {
		if a, ok := f.accounts[id]; ok {
			a.creds.IsActive = active
			a.profile.IsActive = active
			n++
		}
	}
	return n, nil
}

func (f *fakeAccountStore) SetRole(_ context.Context, id int64, role models.Role) error {
	a, err := f.get(id)
	if err != nil {
		return err
	}
	a.creds.Role = role
	return nil
}

func (f *fakeAccountStore) Delete(_ context.Context, id int64) error {
	if _, err := f.get(id); err != nil {
		return err
	}
	delete(f.accounts, id)
	return nil
}

func (f *fakeAccountStore) summaries(filter repositories.UserFilter) []models.UserSummary {
	out := []models.UserSummary{}
	for _, a := range f.accounts {
		if filter.Role != nil && a.creds.Role != *filter.Role {
			continue
		}
		if filter.Active != nil && a.creds.IsActive != *filter.Active {
			continue
		}
		if filter.Query != "" && !strings.Contains(a.creds.Email, filter.Query) {
			continue
		}
		out = append(out, models.UserSummary{
			ID:        a.creds.ID,
			Email:     a.creds.Email,
			FullName:  a.creds.FullName,
			Role:      a.creds.Role,
			IsActive:  a.creds.IsActive,
			CreatedAt: testNow,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (f *fakeAccountStore) List(_ context.Context, filter repositories.UserFilter, offset, limit uint64) ([]models.UserSummary, int64, error) {
	all := f.summaries(filter)
	total := int64(len(all))
	if offset >= uint64(len(all)) {
		return []models.UserSummary{}, total, nil
	}
	end := offset + limit
	if end > uint64(len(all)) {
		end = uint64(len(all))
	}
	return all[offset:end], total, nil
}

func (f *fakeAccountStore) ListAll(_ context.Context, filter repositories.UserFilter) ([]models.UserSummary, error) {
	return f.summaries(filter), nil
}

func (f *fakeAccountStore) CountByRole(context.Context) (map[models.Role]int64, error) {
	out := map[models.Role]int64{}
	for _, a := range f.accounts {
		out[a.creds.Role]++
	}
	return out, nil
}

// --- sessions ---

type fakeSessionStore struct {
	sessions      map[string]*models.AuthSession
	revokedFor    []int64
	deletedBefore time.Time
}

func newFakeSessionStore() *fakeSessionStore {
	return &fakeSessionStore{sessions: map[string]*models.AuthSession{}}
}

func (f *fakeSessionStore) Create(_ context.Context, s *models.AuthSession) error {
	s.CreatedAt = testNow
	cp := *s
	f.sessions[s.ID] = &cp
	return nil
}

func (f *fakeSessionStore) Get(_ context.Context, id string) (*models.AuthSession, error) {
	s, ok := f.sessions[id]
	if !ok {
		return nil, apperrors.ErrTokenNotFound
	}
	cp := *s
	return &cp, nil
}

func (f *fakeSessionStore) Revoke(_ context.Context, id string) error {
	s, ok := f.sessions[id]
	if !ok {
		return apperrors.ErrTokenNotFound
	}
	if s.RevokedAt == nil {
		t := testNow
		s.RevokedAt = &t
	}
	return nil
}

func (f *fakeSessionStore) RevokeAllForAccount(_ context.Context, accountID int64) error {
	f.revokedFor = append(f.revokedFor, accountID)
	for _, s := range f.sessions {
		if s.AccountID == accountID && s.RevokedAt == nil {
			t := testNow
			s.RevokedAt = &t
		}
	}
	return nil
}

func (f *fakeSessionStore) DeleteExpired(_ context.Context, before time.Time) (int64, error) {
	f.deletedBefore = before
	var n int64
	for id, s := range f.sessions {
		if s.ExpiresAt.Before(before) {
			delete(f.sessions, id)
			n++
		}
	}
	return n, nil
}

// --- organizations ---

type fakeCollegeStore struct {
	colleges map[int64]*models.College
}

func newFakeCollegeStore(cs ...models.College) *fakeCollegeStore {
	f := &fakeCollegeStore{colleges: map[int64]*models.College{}}
	for i := range cs {
		c := cs[i]
		f.colleges[c.ID] = &c
	}
	return f
}

func (f *fakeCollegeStore) GetByID(_ context.Context, id int64) (*models.College, error) {
	c, ok := f.colleges[id]
	if !ok {
		return nil, apperrors.ErrOrganizationNotFound
	}
	cp := *c
	return &cp, nil
}

func (f *fakeCollegeStore) GetByOwner(_ context.Context, ownerID int64) (*models.College, error) {
	for _, c := range f.colleges {
		if c.OwnerID == ownerID {
			cp := *c
			return &cp, nil
		}
	}
	return nil, apperrors.ErrOrganizationNotFound
}

func (f *fakeCollegeStore) Update(_ context.Context, c *models.College) error {
	cp := *c
	f.colleges[c.ID] = &cp
	return nil
}

func (f *fakeCollegeStore) UpdateLogo(_ context.Context, id int64, url string) error {
	c, ok := f.colleges[id]
	if !ok {
		return apperrors.ErrOrganizationNotFound
	}
	c.LogoURL = &url
	return nil
}

func (f *fakeCollegeStore) SetFlags(_ context.Context, id int64, flags models.OrganizationFlags) (*models.College, error) {
	c, ok := f.colleges[id]
	if !ok {
		return nil, apperrors.ErrOrganizationNotFound
	}
	if flags.IsActive != nil {
		c.IsActive = *flags.IsActive
	}
	if flags.IsVerified != nil {
		c.IsVerified = *flags.IsVerified
	}
	cp := *c
	return &cp, nil
}

func (f *fakeCollegeStore) List(_ context.Context, onlyActive bool) ([]models.College, error) {
	out := []models.College{}
	for _, c := range f.colleges {
		if onlyActive && !c.IsActive {
			continue
		}
		out = append(out, *c)
	}
	return out, nil
}

type fakeCompanyStore struct {
	companies map[int64]*models.Company
}

func newFakeCompanyStore(cs ...models.Company) *fakeCompanyStore {
	f := &fakeCompanyStore{companies: map[int64]*models.Company{}}
	for i := range cs {
		c := cs[i]
		f.companies[c.ID] = &c
	}
	return f
}

func (f *fakeCompanyStore) GetByID(_ context.Context, id int64) (*models.Company, error) {
	c, ok := f.companies[id]
	if !ok {
		return nil, apperrors.ErrOrganizationNotFound
	}
	cp := *c
	return &cp, nil
}

func (f *fakeCompanyStore) GetByOwner(_ context.Context, ownerID int64) (*models.Company, error) {
	for _, c := range f.companies {
		if c.OwnerID == ownerID {
			cp := *c
			return &cp, nil
		}
	}
	return nil, apperrors.ErrOrganizationNotFound
}

func (f *fakeCompanyStore) Update(_ context.Context, c *models.Company) error {
	cp := *c
	f.companies[c.ID] = &cp
	return nil
}

func (f *fakeCompanyStore) UpdateLogo(_ context.Context, id int64, url string) error {
	c, ok := f.companies[id]
	if !ok {
		return apperrors.ErrOrganizationNotFound
	}
	c.LogoURL = &url
	return nil
}

func (f *fakeCompanyStore) SetFlags(_ context.Context, id int64, flags models.OrganizationFlags) (*models.Company, error) {
	c, ok := f.companies[id]
	if !ok {
		return nil, apperrors.ErrOrganizationNotFound
	}
	if flags.IsActive != nil {
		c.IsActive = *flags.IsActive
	}
	if flags.IsVerified != nil {
		c.IsVerified = *flags.IsVerified
	}
	cp := *c
	return &cp, nil
}

func (f *fakeCompanyStore) List(_ context.Context, onlyActive bool) ([]models.Company, error) {
	out := []models.Company{}
	for _, c := range f.companies {
		if onlyActive && !c.IsActive {
			continue
		}
		out = append(out, *c)
	}
	return out, nil
}

// --- events ---

type fakeEventStore struct {
	nextID    int64
	events    map[int64]*models.Event
	listCalls int
}

func newFakeEventStore(es ...models.Event) *fakeEventStore {
	f := &fakeEventStore{nextID: 100, events: map[int64]*models.Event{}}
	for i := range es {
		e := es[i]
		f.events[e.ID] = &e
	}
	return f
}

func (f *fakeEventStore) Create(_ context.Context, e *models.Event) error {
	e.ID = f.nextID
	f.nextID++
	cp := *e
	f.events[e.ID] = &cp
	return nil
}

func (f *fakeEventStore) GetByID(_ context.Context, id int64) (*models.Event, error) {
	e, ok := f.events[id]
	if !ok {
		return nil, apperrors.ErrEventNotFound
	}
	cp := *e
	cp.SubEvents = append([]models.SubEvent(nil), e.SubEvents...)
	return &cp, nil
}

func (f *fakeEventStore) Update(_ context.Context, e *models.Event) error {
	if _, ok := f.events[e.ID]; !ok {
		return apperrors.ErrEventNotFound
	}
	cp := *e
	f.events[e.ID] = &cp
	return nil
}

func (f *fakeEventStore) Delete(_ context.Context, id int64) error {
	if _, ok := f.events[id]; !ok {
		return apperrors.ErrEventNotFound
	}
	delete(f.events, id)
	return nil
}

func (f *fakeEventStore) UpdateStatus(_ context.Context, id int64, status models.EventStatus) error {
	e, ok := f.events[id]
	if !ok {
		return apperrors.ErrEventNotFound
	}
	e.Status = status
	return nil
}

func (f *fakeEventStore) BulkUpdateStatus(_ context.Context, ids []int64, status models.EventStatus) (int64, error) {
	var n int64
	for _, id := range ids {
		if e, ok := f.events[id]; ok {
			e.Status = status
			n++
		}
	}
	return n, nil
}

func (f *fakeEventStore) UpdateBanner(_ context.Context, id int64, url string) error {
	e, ok := f.events[id]
	if !ok {
		return apperrors.ErrEventNotFound
	}
	e.BannerURL = &url
	return nil
}

func (f *fakeEventStore) List(_ context.Context, filter repositories.EventFilter) ([]models.Event, error) {
	f.listCalls++
	out := []models.Event{}
	for _, e := range f.events {
		if filter.CollegeID != nil && e.CollegeID != *filter.CollegeID {
			continue
		}
		if len(filter.Statuses) > 0 {
			match := false
			for _, s := range filter.Statuses {
				if e.Status == s {
					match = true
				}
			}
			if !match {
				continue
			}
		}
		out = append(out, *e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartsAt.Before(out[j].StartsAt) })
	return out, nil
}

func (f *fakeEventStore) CountByStatus(context.Context) (map[models.EventStatus]int64, error) {
	out := map[models.EventStatus]int64{}
	for _, e := range f.events {
		out[e.Status]++
	}
	return out, nil
}

func (f *fakeEventStore) GetSubEvent(_ context.Context, eventID, subEventID int64) (*models.SubEvent, error) {
	if e, ok := f.events[eventID]; ok {
		for _, s := range e.SubEvents {
			if s.ID == subEventID {
				cp := s
				return &cp, nil
			}
		}
	}
	return nil, apperrors.NewResourceNotFoundError("sub-event not found")
}

func (f *fakeEventStore) CreateSubEvent(_ context.Context, s *models.SubEvent) error {
	e, ok := f.events[s.EventID]
	if !ok {
		return apperrors.ErrEventNotFound
	}
	s.ID = f.nextID
	f.nextID++
	e.SubEvents = append(e.SubEvents, *s)
	return nil
}

func (f *fakeEventStore) DeleteSubEvent(_ context.Context, eventID, subEventID int64) error {
	e, ok := f.events[eventID]
	if !ok {
		return apperrors.ErrEventNotFound
	}
	for i, s := range e.SubEvents {
		if s.ID == subEventID {
			e.SubEvents = append(e.SubEvents[:i], e.SubEvents[i+1:]...)
			return nil
		}
	}
	return apperrors.NewResourceNotFoundError("sub-event not found")
}

// --- opportunities ---

type fakeOpportunityStore struct {
	nextID int64
	opps   map[int64]*models.Opportunity
}

func newFakeOpportunityStore(os ...models.Opportunity) *fakeOpportunityStore {
	f := &fakeOpportunityStore{nextID: 200, opps: map[int64]*models.Opportunity{}}
	for i := range os {
		o := os[i]
		f.opps[o.ID] = &o
	}
	return f
}

func (f *fakeOpportunityStore) Create(_ context.Context, o *models.Opportunity) error {
	o.ID = f.nextID
	f.nextID++
	cp := *o
	f.opps[o.ID] = &cp
	return nil
}

func (f *fakeOpportunityStore) GetByID(_ context.Context, id int64) (*models.Opportunity, error) {
	o, ok := f.opps[id]
	if !ok {
		return nil, apperrors.ErrOpportunityNotFound
	}
	cp := *o
	return &cp, nil
}

func (f *fakeOpportunityStore) Update(_ context.Context, o *models.Opportunity) error {
	if _, ok := f.opps[o.ID]; !ok {
		return apperrors.ErrOpportunityNotFound
	}
	cp := *o
	f.opps[o.ID] = &cp
	return nil
}

func (f *fakeOpportunityStore) Delete(_ context.Context, id int64) error {
	if _, ok := f.opps[id]; !ok {
		return apperrors.ErrOpportunityNotFound
	}
	delete(f.opps, id)
	return nil
}

func (f *fakeOpportunityStore) BulkSetActive(_ context.Context, ids []int64, active bool) (int64, error) {
	var n int64
	for _, id := range ids {
		if o, ok := f.opps[id]; ok {
			o.IsActive = active
			n++
		}
	}
	return n, nil
}

func (f *fakeOpportunityStore) List(_ context.Context, filter repositories.OpportunityFilter) ([]models.Opportunity, error) {
	out := []models.Opportunity{}
	for _, o := range f.opps {
		if filter.CompanyID != nil && (o.CompanyID == nil || *o.CompanyID != *filter.CompanyID) {
			continue
		}
		if filter.CreatedBy != nil && o.CreatedBy != *filter.CreatedBy {
			continue
		}
		if filter.WithoutCompany && o.CompanyID != nil {
			continue
		}
		if filter.OnlyActive && !o.IsActive {
			continue
		}
		out = append(out, *o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeOpportunityStore) CountByType(context.Context) (map[models.OpportunityType]int64, error) {
	out := map[models.OpportunityType]int64{}
	for _, o := range f.opps {
		out[o.Type]++
	}
	return out, nil
}

// --- applications ---

type fakeApplicationStore struct {
	nextID int64
	apps   map[int64]*models.Application
}

func newFakeApplicationStore() *fakeApplicationStore {
	return &fakeApplicationStore{nextID: 300, apps: map[int64]*models.Application{}}
}

func (f *fakeApplicationStore) Create(_ context.Context, a *models.Application) error {
	for _, existing := range f.apps {
		if existing.OpportunityID == a.OpportunityID && existing.UserID == a.UserID {
			return apperrors.ErrAlreadyApplied
		}
	}
	a.ID = f.nextID
	f.nextID++
	cp := *a
	f.apps[a.ID] = &cp
	return nil
}

func (f *fakeApplicationStore) GetByID(_ context.Context, id int64) (*models.Application, error) {
	a, ok := f.apps[id]
	if !ok {
		return nil, apperrors.NewResourceNotFoundError("application not found")
	}
	cp := *a
	return &cp, nil
}

func (f *fakeApplicationStore) ListByUser(_ context.Context, userID int64) ([]models.Application, error) {
	out := []models.Application{}
	for _, a := range f.apps {
		if a.UserID == userID {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (f *fakeApplicationStore) ListByOpportunity(_ context.Context, opportunityID int64) ([]models.Application, error) {
	out := []models.Application{}
	for _, a := range f.apps {
		if a.OpportunityID == opportunityID {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (f *fakeApplicationStore) UpdateStatus(_ context.Context, id int64, status models.ApplicationStatus) error {
	a, ok := f.apps[id]
	if !ok {
		return apperrors.NewResourceNotFoundError("application not found")
	}
	a.Status = status
	return nil
}

func (f *fakeApplicationStore) Count(context.Context) (int64, error) {
	return int64(len(f.apps)), nil
}

// --- registrations ---

type fakeRegistrationStore struct {
	nextID   int64
	regs     map[int64]*models.Registration
	payments map[int64]*models.Payment
	created  []repositories.RegistrationParams
}

func newFakeRegistrationStore() *fakeRegistrationStore {
	return &fakeRegistrationStore{
		nextID:   400,
		regs:     map[int64]*models.Registration{},
		payments: map[int64]*models.Payment{},
	}
}

func (f *fakeRegistrationStore) Create(_ context.Context, p repositories.RegistrationParams) (*models.Registration, error) {
	f.created = append(f.created, p)
	var cancelled *models.Registration
	for _, r := range f.regs {
		if r.EventID != p.EventID || r.UserID != p.UserID {
			continue
		}
		if r.Status != models.RegistrationCancelled {
			return nil, apperrors.ErrAlreadyRegistered
		}
		cancelled = r
	}
	if p.EventCapacity != nil {
		taken := 0
		for _, r := range f.regs {
			if r.EventID == p.EventID && r.Status != models.RegistrationCancelled {
				taken++
			}
		}
		if taken >= *p.EventCapacity {
			return nil, apperrors.ErrEventFull
		}
	}

	reg := cancelled
	charge := true
	if reg != nil {
		reg.Status = models.RegistrationConfirmed
		if prior := f.paymentFor(reg.ID); prior == nil || prior.Status != models.PaymentCompleted {
			reg.Status = p.Status
		} else {
			charge = false
		}
	} else {
		reg = &models.Registration{
			ID:         f.nextID,
			EventID:    p.EventID,
			SubEventID: p.SubEventID,
			UserID:     p.UserID,
			Status:     p.Status,
		}
		f.nextID++
	}
	if p.Payment != nil && charge {
		pay := *p.Payment
		pay.ID = f.nextID
		f.nextID++
		pay.RegistrationID = reg.ID
		pay.UserID = p.UserID
		f.payments[pay.ID] = &pay
	}
	f.regs[reg.ID] = reg
	return f.GetByID(context.Background(), reg.ID)
}

// paymentFor returns the newest payment of a registration
func (f *fakeRegistrationStore) paymentFor(regID int64) *models.Payment {
	var latest *models.Payment
	for _, p := range f.payments {
		if p.RegistrationID == regID && (latest == nil || p.ID > latest.ID) {
			latest = p
		}
	}
	if latest == nil {
		return nil
	}
	cp := *latest
	return &cp
}

func (f *fakeRegistrationStore) GetByID(_ context.Context, id int64) (*models.Registration, error) {
	r, ok := f.regs[id]
	if !ok {
		return nil, apperrors.NewResourceNotFoundError("registration not found")
	}
	cp := *r
	cp.Payment = f.paymentFor(id)
	return &cp, nil
}

func (f *fakeRegistrationStore) list(match func(*models.Registration) bool) []models.Registration {
	out := []models.Registration{}
	for id, r := range f.regs {
		if match(r) {
			cp := *r
			cp.Payment = f.paymentFor(id)
			out = append(out, cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (f *fakeRegistrationStore) ListByUser(_ context.Context, userID int64) ([]models.Registration, error) {
	return f.list(func(r *models.Registration) bool { return r.UserID == userID }), nil
}

func (f *fakeRegistrationStore) ListByEvent(_ context.Context, eventID int64) ([]models.Registration, error) {
	return f.list(func(r *models.Registration) bool { return r.EventID == eventID }), nil
}

func (f *fakeRegistrationStore) Cancel(_ context.Context, id int64) error {
	r, ok := f.regs[id]
	if !ok {
		return apperrors.NewResourceNotFoundError("registration not found")
	}
	if r.Status == models.RegistrationCancelled {
		return apperrors.NewCustomError(apperrors.ErrInvalidStateTransition, "registration is already cancelled")
	}
	r.Status = models.RegistrationCancelled
	for _, p := range f.payments {
		if p.RegistrationID == id && p.Status == models.PaymentPending {
			p.Status = models.PaymentFailed
		}
	}
	return nil
}

func (f *fakeRegistrationStore) GetPayment(_ context.Context, id int64) (*models.Payment, error) {
	p, ok := f.payments[id]
	if !ok {
		return nil, apperrors.ErrPaymentNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakeRegistrationStore) transition(id int64, from, to models.PaymentStatus, reg models.RegistrationStatus) error {
	p, ok := f.payments[id]
	if !ok {
		return apperrors.ErrPaymentNotFound
	}
	if p.Status != from {
		return apperrors.NewCustomError(apperrors.ErrInvalidStateTransition, "payment is "+string(p.Status))
	}
	p.Status = to
	if reg != "" {
		f.regs[p.RegistrationID].Status = reg
	}
	return nil
}

func (f *fakeRegistrationStore) CompletePayment(_ context.Context, id int64, providerRef *string) error {
	if err := f.transition(id, models.PaymentPending, models.PaymentCompleted, models.RegistrationConfirmed); err != nil {
		return err
	}
	f.payments[id].ProviderRef = providerRef
	return nil
}

func (f *fakeRegistrationStore) FailPayment(_ context.Context, id int64) error {
	return f.transition(id, models.PaymentPending, models.PaymentFailed, "")
}

func (f *fakeRegistrationStore) RefundPayment(_ context.Context, id int64) error {
	return f.transition(id, models.PaymentCompleted, models.PaymentRefunded, models.RegistrationCancelled)
}

func (f *fakeRegistrationStore) CountCompletedPayments(_ context.Context, eventID int64) (int64, error) {
	var n int64
	for _, p := range f.payments {
		if r, ok := f.regs[p.RegistrationID]; ok && r.EventID == eventID && p.Status == models.PaymentCompleted {
			n++
		}
	}
	return n, nil
}

func (f *fakeRegistrationStore) Count(context.Context) (int64, error) {
	var n int64
	for _, r := range f.regs {
		if r.Status != models.RegistrationCancelled {
			n++
		}
	}
	return n, nil
}

func (f *fakeRegistrationStore) RevenueByCurrency(context.Context) (map[string]int64, error) {
	out := map[string]int64{}
	for _, p := range f.payments {
		if p.Status == models.PaymentCompleted {
			out[p.Currency] += p.AmountCents
		}
	}
	return out, nil
}

// --- connections ---

type fakeConnectionStore struct {
	nextID int64
	conns  map[int64]*models.Connection
}

func newFakeConnectionStore() *fakeConnectionStore {
	return &fakeConnectionStore{nextID: 500, conns: map[int64]*models.Connection{}}
}

func (f *fakeConnectionStore) Create(_ context.Context, c *models.Connection) error {
	for _, existing := range f.conns {
		if existing.Involves(c.RequesterID) && existing.Involves(c.ReceiverID) {
			return apperrors.ErrConnectionAlreadyExists
		}
	}
	c.ID = f.nextID
	f.nextID++
	cp := *c
	f.conns[c.ID] = &cp
	return nil
}

func (f *fakeConnectionStore) GetByID(_ context.Context, id int64) (*models.Connection, error) {
	c, ok := f.conns[id]
	if !ok {
		return nil, apperrors.NewResourceNotFoundError("connection not found")
	}
	cp := *c
	return &cp, nil
}

func (f *fakeConnectionStore) ListForUser(_ context.Context, userID int64, status *models.ConnectionStatus) ([]models.ConnectionView, error) {
	out := []models.ConnectionView{}
	for _, c := range f.conns {
		if !c.Involves(userID) || (status != nil && c.Status != *status) {
			continue
		}
		dir := "incoming"
		if c.RequesterID == userID {
			dir = "outgoing"
		}
		out = append(out, models.ConnectionView{Connection: *c, Direction: dir, OtherUserID: c.OtherParty(userID)})
	}
	return out, nil
}

func (f *fakeConnectionStore) Respond(_ context.Context, id int64, status models.ConnectionStatus) error {
	c, ok := f.conns[id]
	if !ok || c.Status != models.ConnectionPending {
		return apperrors.NewResourceNotFoundError("pending connection not found")
	}
	c.Status = status
	return nil
}

func (f *fakeConnectionStore) Delete(_ context.Context, id int64) error {
	if _, ok := f.conns[id]; !ok {
		return apperrors.NewResourceNotFoundError("connection not found")
	}
	delete(f.conns, id)
	return nil
}

// --- inquiries ---

type fakeInquiryStore struct {
	nextID    int64
	inquiries map[int64]*models.Inquiry
}

func newFakeInquiryStore() *fakeInquiryStore {
	return &fakeInquiryStore{nextID: 600, inquiries: map[int64]*models.Inquiry{}}
}

func (f *fakeInquiryStore) Create(_ context.Context, i *models.Inquiry) error {
	i.ID = f.nextID
	f.nextID++
	cp := *i
	f.inquiries[i.ID] = &cp
	return nil
}

func (f *fakeInquiryStore) GetByID(_ context.Context, id int64) (*models.Inquiry, error) {
	i, ok := f.inquiries[id]
	if !ok {
		return nil, apperrors.NewResourceNotFoundError("inquiry not found")
	}
	cp := *i
	return &cp, nil
}

func (f *fakeInquiryStore) ListInbox(_ context.Context, userID int64) ([]models.Inquiry, error) {
	out := []models.Inquiry{}
	for _, i := range f.inquiries {
		if i.RecipientID == userID {
			out = append(out, *i)
		}
	}
	return out, nil
}

func (f *fakeInquiryStore) ListSent(_ context.Context, userID int64) ([]models.Inquiry, error) {
	out := []models.Inquiry{}
	for _, i := range f.inquiries {
		if i.SenderID == userID {
			out = append(out, *i)
		}
	}
	return out, nil
}

func (f *fakeInquiryStore) MarkRead(_ context.Context, id int64) error {
	i, ok := f.inquiries[id]
	if !ok {
		return apperrors.NewResourceNotFoundError("inquiry not found")
	}
	i.IsRead = true
	return nil
}

func (f *fakeInquiryStore) MarkReplied(_ context.Context, id int64, at time.Time) error {
	i, ok := f.inquiries[id]
	if !ok {
		return apperrors.NewResourceNotFoundError("inquiry not found")
	}
	i.RepliedAt = &at
	i.IsRead = true
	return nil
}

// --- storage ---

type memoryStorage struct {
	objects map[string][]byte
	removed []string
}

func newMemoryStorage() *memoryStorage {
	return &memoryStorage{objects: map[string][]byte{}}
}

func (m *memoryStorage) Upload(_ context.Context, bucket, path string, r io.Reader, contentType string) (*filestorage.Object, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	m.objects[bucket+"/"+path] = data
	return &filestorage.Object{Bucket: bucket, Path: path, Size: int64(len(data)), ContentType: contentType}, nil
}

func (m *memoryStorage) Remove(_ context.Context, bucket, path string) error {
	delete(m.objects, bucket+"/"+path)
	m.removed = append(m.removed, bucket+"/"+path)
	return nil
}

func (m *memoryStorage) PublicURL(bucket, path string) string {
	return "http://files.test/storage/" + bucket + "/" + path
}

func (m *memoryStorage) ObjectPathFromURL(bucket, url string) (string, bool) {
	prefix := "http://files.test/storage/" + bucket + "/"
	if !strings.HasPrefix(url, prefix) {
		return "", false
	}
	return strings.TrimPrefix(url, prefix), true
}

// pngBytes is a 1x1 transparent PNG
var pngBytes = []byte{
	0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a, 0x00, 0x00, 0x00, 0x0d,
	0x49, 0x48, 0x44, 0x52, 0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x01,
	0x08, 0x06, 0x00, 0x00, 0x00, 0x1f, 0x15, 0xc4, 0x89, 0x00, 0x00, 0x00,
	0x0a, 0x49, 0x44, 0x41, 0x54, 0x78, 0x9c, 0x63, 0x00, 0x01, 0x00, 0x00,
	0x05, 0x00, 0x01, 0x0d, 0x0a, 0x2d, 0xb4, 0x00, 0x00, 0x00, 0x00, 0x49,
	0x45, 0x4e, 0x44, 0xae, 0x42, 0x60, 0x82,
}

func pngReader() io.Reader { return bytes.NewReader(pngBytes) }

// --- wiring ---

type fixture struct {
	accounts      *fakeAccountStore
	sessions      *fakeSessionStore
	colleges      *fakeCollegeStore
	companies     *fakeCompanyStore
	events        *fakeEventStore
	opportunities *fakeOpportunityStore
	applications  *fakeApplicationStore
	registrations *fakeRegistrationStore
	connections   *fakeConnectionStore
	inquiries     *fakeInquiryStore
	notifier      *recordingNotifier
	storage       *memoryStorage
	authz         *appauth.AuthorizationService
	media         *MediaService
	catalog       *CatalogService
}

func newFixture() *fixture {
	f := &fixture{
		accounts:      newFakeAccountStore(),
		sessions:      newFakeSessionStore(),
		colleges:      newFakeCollegeStore(),
		companies:     newFakeCompanyStore(),
		events:        newFakeEventStore(),
		opportunities: newFakeOpportunityStore(),
		applications:  newFakeApplicationStore(),
		registrations: newFakeRegistrationStore(),
		connections:   newFakeConnectionStore(),
		inquiries:     newFakeInquiryStore(),
		notifier:      &recordingNotifier{},
		storage:       newMemoryStorage(),
	}
	f.authz = appauth.NewAuthorizationService(f.colleges, f.companies, f.events, f.opportunities, f.registrations)
	f.media = NewMediaService(f.storage, 1<<20, nopLogger())
	f.catalog = NewCatalogService(f.events, f.opportunities, time.Minute, true, nopLogger())
	f.catalog.now = func() time.Time { return testNow }
	return f
}

// newAuthz rebuilds the authorization service after a fixture swaps stores
func newAuthz(f *fixture) *appauth.AuthorizationService {
	f.catalog = NewCatalogService(f.events, f.opportunities, time.Minute, true, nopLogger())
	f.catalog.now = func() time.Time { return testNow }
	return appauth.NewAuthorizationService(f.colleges, f.companies, f.events, f.opportunities, f.registrations)
}

func registrationWithPayment(eventID, userID, amount int64) repositories.RegistrationParams {
	return repositories.RegistrationParams{
		EventID: eventID,
		UserID:  userID,
		Status:  models.RegistrationPendingPayment,
		Payment: &models.Payment{AmountCents: amount, Currency: "USD", Status: models.PaymentPending},
	}
}

type sentNotification struct {
	userID int64
	kind   string
}

// recordingNotifier remembers who was notified of what
type recordingNotifier struct {
	sent []sentNotification
}

func (r *recordingNotifier) Notify(userID int64, kind string, _ any) {
	r.sent = append(r.sent, sentNotification{userID: userID, kind: kind})
}
