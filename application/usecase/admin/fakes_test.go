package admin

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/fixora/complaintdesk/application/port/outbound"
	"github.com/fixora/complaintdesk/domain/entity"
	"github.com/fixora/complaintdesk/infrastructure/service/logger"
)

var errUnavailable = errors.New("provider unavailable")

// fakeIdentityGateway is an in-memory identity provider.
type fakeIdentityGateway struct {
	mu        sync.Mutex
	seq       int
	byID      map[string]*entity.Identity
	passwords map[string]string
	tokens    map[string]string

	findErr   error
	createErr error
	updateErr error
	listErr   error
	linkErr   error
	deleteErr error
	getErrs   map[string]error

	createCalls  int
	updateCalls  int
	findCalls    int
	lastLinkTTL  time.Duration
	lastRedirect string
}

func newFakeIdentityGateway() *fakeIdentityGateway {
	return &fakeIdentityGateway{
		byID:      make(map[string]*entity.Identity),
		passwords: make(map[string]string),
		tokens:    make(map[string]string),
		getErrs:   make(map[string]error),
	}
}

// seed adds an identity and returns a bearer token for it.
func (f *fakeIdentityGateway) seed(id, email, fullName string, confirmed bool) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.byID[id] = &entity.Identity{ID: id, Email: email, FullName: fullName, EmailConfirmed: confirmed}
	token := "token-" + id
	f.tokens[token] = id
	return token
}

func (f *fakeIdentityGateway) identity(id string) *entity.Identity {
	f.mu.Lock()
	defer f.mu.Unlock()
	if i, ok := f.byID[id]; ok {
		cp := *i
		return &cp
	}
	return nil
}

func (f *fakeIdentityGateway) password(id string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.passwords[id]
}

func (f *fakeIdentityGateway) remove(id string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.byID, id)
}

func (f *fakeIdentityGateway) VerifyToken(ctx context.Context, token string) (*entity.Identity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id, ok := f.tokens[token]
	if !ok {
		return nil, outbound.ErrInvalidToken
	}
	i, ok := f.byID[id]
	if !ok {
		return nil, outbound.ErrIdentityNotFound
	}
	cp := *i
	return &cp, nil
}

func (f *fakeIdentityGateway) CreateIdentity(ctx context.Context, input outbound.CreateIdentityInput) (*entity.Identity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createCalls++
	if f.createErr != nil {
		return nil, f.createErr
	}
	for _, i := range f.byID {
		if i.Email == input.Email {
			return nil, outbound.ErrEmailTaken
		}
	}
	f.seq++
	id := fmt.Sprintf("user-%d", f.seq)
	i := &entity.Identity{ID: id, Email: input.Email, FullName: input.FullName, EmailConfirmed: input.EmailConfirmed}
	f.byID[id] = i
	f.passwords[id] = input.Password
	cp := *i
	return &cp, nil
}

func (f *fakeIdentityGateway) UpdateIdentity(ctx context.Context, id string, patch outbound.IdentityPatch) (*entity.Identity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updateCalls++
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	i, ok := f.byID[id]
	if !ok {
		return nil, outbound.ErrIdentityNotFound
	}
	if patch.Password != nil {
		f.passwords[id] = *patch.Password
	}
	if patch.FullName != nil {
		i.FullName = *patch.FullName
	}
	if patch.EmailConfirmed != nil {
		i.EmailConfirmed = *patch.EmailConfirmed
	}
	cp := *i
	return &cp, nil
}

func (f *fakeIdentityGateway) GetIdentity(ctx context.Context, id string) (*entity.Identity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.getErrs[id]; err != nil {
		return nil, err
	}
	i, ok := f.byID[id]
	if !ok {
		return nil, outbound.ErrIdentityNotFound
	}
	cp := *i
	return &cp, nil
}

func (f *fakeIdentityGateway) FindIdentityByEmail(ctx context.Context, email string) (*entity.Identity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.findCalls++
	if f.findErr != nil {
		return nil, f.findErr
	}
	for _, i := range f.byID {
		if i.Email == email {
			cp := *i
			return &cp, nil
		}
	}
	return nil, outbound.ErrIdentityNotFound
}

func (f *fakeIdentityGateway) ListIdentities(ctx context.Context) ([]*entity.Identity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]*entity.Identity, 0, len(f.byID))
	for _, i := range f.byID {
		cp := *i
		out = append(out, &cp)
	}
	return out, nil
}

func (f *fakeIdentityGateway) DeleteIdentity(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return f.deleteErr
	}
	if _, ok := f.byID[id]; !ok {
		return outbound.ErrIdentityNotFound
	}
	delete(f.byID, id)
	return nil
}

func (f *fakeIdentityGateway) GenerateRecoveryLink(ctx context.Context, email, redirectTo string, ttl time.Duration) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastLinkTTL = ttl
	f.lastRedirect = redirectTo
	if f.linkErr != nil {
		return "", f.linkErr
	}
	return redirectTo + "?token=recovery-for-" + email, nil
}

// fakeRoleRepository keys rows by user and role, like the unique index.
type fakeRoleRepository struct {
	mu          sync.Mutex
	rows        map[string]*entity.RoleAssignment
	countErr    error
	hasErr      error
	upsertErr   error
	listErr     error
	deleteErr   error
	deleteCalls [][]string
	countCalls  int
}

func newFakeRoleRepository() *fakeRoleRepository {
	return &fakeRoleRepository{rows: make(map[string]*entity.RoleAssignment)}
}

func roleKey(userID string, role entity.Role) string {
	return userID + "/" + string(role)
}

func (f *fakeRoleRepository) grant(userID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rows[roleKey(userID, entity.RoleAdmin)] = entity.NewRoleAssignment(userID, entity.RoleAdmin, "")
}

func (f *fakeRoleRepository) get(userID string) *entity.RoleAssignment {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.rows[roleKey(userID, entity.RoleAdmin)]
}

func (f *fakeRoleRepository) size() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.rows)
}

func (f *fakeRoleRepository) CountByRole(ctx context.Context, role entity.Role) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.countCalls++
	if f.countErr != nil {
		return 0, f.countErr
	}
	n := 0
	for _, r := range f.rows {
		if r.Role == role {
			n++
		}
	}
	return n, nil
}

func (f *fakeRoleRepository) HasRole(ctx context.Context, userID string, role entity.Role) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.hasErr != nil {
		return false, f.hasErr
	}
	_, ok := f.rows[roleKey(userID, role)]
	return ok, nil
}

func (f *fakeRoleRepository) Upsert(ctx context.Context, assignment *entity.RoleAssignment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.upsertErr != nil {
		return f.upsertErr
	}
	key := roleKey(assignment.UserID, assignment.Role)
	if existing, ok := f.rows[key]; ok {
		if assignment.GrantedBy != nil {
			existing.GrantedBy = assignment.GrantedBy
		}
		return nil
	}
	cp := *assignment
	f.rows[key] = &cp
	return nil
}

func (f *fakeRoleRepository) ListByRole(ctx context.Context, role entity.Role) ([]*entity.RoleAssignment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]*entity.RoleAssignment, 0)
	for _, r := range f.rows {
		if r.Role == role {
			cp := *r
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out, nil
}

func (f *fakeRoleRepository) DeleteByUserIDs(ctx context.Context, userIDs []string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleteCalls = append(f.deleteCalls, append([]string(nil), userIDs...))
	if f.deleteErr != nil {
		return 0, f.deleteErr
	}
	var n int64
	for _, id := range userIDs {
		for key, r := range f.rows {
			if r.UserID == id {
				delete(f.rows, key)
				n++
			}
		}
	}
	return n, nil
}

// fakeRequestRepository makes TransitionStatus atomic under its mutex, like a conditional UPDATE.
type fakeRequestRepository struct {
	mu        sync.Mutex
	rows      map[string]*entity.AdminRequest
	createErr error
	findErr   error
}

func newFakeRequestRepository() *fakeRequestRepository {
	return &fakeRequestRepository{rows: make(map[string]*entity.AdminRequest)}
}

func (f *fakeRequestRepository) add(r *entity.AdminRequest) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *r
	f.rows[r.ID] = &cp
}

func (f *fakeRequestRepository) get(id string) *entity.AdminRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	if r, ok := f.rows[id]; ok {
		cp := *r
		return &cp
	}
	return nil
}

func (f *fakeRequestRepository) all() []*entity.AdminRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*entity.AdminRequest, 0, len(f.rows))
	for _, r := range f.rows {
		cp := *r
		out = append(out, &cp)
	}
	return out
}

func (f *fakeRequestRepository) Create(ctx context.Context, request *entity.AdminRequest) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.add(request)
	return nil
}

func (f *fakeRequestRepository) FindByID(ctx context.Context, id string) (*entity.AdminRequest, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	if r := f.get(id); r != nil {
		return r, nil
	}
	return nil, outbound.ErrAdminRequestNotFound
}

func (f *fakeRequestRepository) List(ctx context.Context, offset, limit int, filter outbound.AdminRequestFilter) ([]*entity.AdminRequest, int, error) {
	rows := f.all()
	sort.Slice(rows, func(i, j int) bool { return rows[i].ID < rows[j].ID })
	filtered := make([]*entity.AdminRequest, 0, len(rows))
	for _, r := range rows {
		if filter.Status == "" || r.Status == filter.Status {
			filtered = append(filtered, r)
		}
	}
	total := len(filtered)
	if offset >= total {
		return []*entity.AdminRequest{}, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return filtered[offset:end], total, nil
}

func (f *fakeRequestRepository) TransitionStatus(ctx context.Context, id string, status entity.AdminRequestStatus, reviewerID string, reviewedAt time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.rows[id]
	if !ok || r.Status != entity.AdminRequestPending {
		return false, nil
	}
	r.Status = status
	r.ReviewedBy = &reviewerID
	r.ReviewedAt = &reviewedAt
	return true, nil
}

type fakeEmailSender struct {
	mu   sync.Mutex
	sent []outbound.EmailMessage
	err  error
}

func (f *fakeEmailSender) Send(ctx context.Context, msg outbound.EmailMessage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, msg)
	return nil
}

func (f *fakeEmailSender) messages() []outbound.EmailMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]outbound.EmailMessage(nil), f.sent...)
}

type fakeAuditSink struct {
	mu      sync.Mutex
	entries []*entity.AuditEntry
	err     error
}

func (f *fakeAuditSink) Append(ctx context.Context, entry *entity.AuditEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.entries = append(f.entries, entry)
	return nil
}

func (f *fakeAuditSink) actions() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.entries))
	for i, e := range f.entries {
		out[i] = e.Action
	}
	return out
}

type fakeProfileRepository struct {
	mu   sync.Mutex
	rows map[string]*entity.Profile
	err  error
}

func (f *fakeProfileRepository) Upsert(ctx context.Context, profile *entity.Profile) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	if f.rows == nil {
		f.rows = make(map[string]*entity.Profile)
	}
	f.rows[profile.ID] = profile
	return nil
}

type fakeMetrics struct {
	mu     sync.Mutex
	events []string
}

func (f *fakeMetrics) record(e string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, e)
}

func (f *fakeMetrics) BootstrapAttempt(outcome string) { f.record("bootstrap:" + outcome) }
func (f *fakeMetrics) RequestSubmitted(outcome string) { f.record("submit:" + outcome) }
func (f *fakeMetrics) RequestReviewed(action, outcome string) {
	f.record("review:" + action + ":" + outcome)
}
func (f *fakeMetrics) OrphanedRolesCleaned(count int) { f.record(fmt.Sprintf("cleanup:%d", count)) }
func (f *fakeMetrics) NotificationFailed(kind string) { f.record("notify_failed:" + kind) }

func (f *fakeMetrics) has(e string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, got := range f.events {
		if got == e {
			return true
		}
	}
	return false
}

// harness wires the facade over fresh fakes.
type harness struct {
	identities *fakeIdentityGateway
	roles      *fakeRoleRepository
	requests   *fakeRequestRepository
	profiles   *fakeProfileRepository
	email      *fakeEmailSender
	audit      *fakeAuditSink
	metrics    *fakeMetrics
	uc         *AdminUseCaseImpl
}

const testRedirect = "https://portal.example.edu/auth/admin"

func newHarness() *harness {
	h := &harness{
		identities: newFakeIdentityGateway(),
		roles:      newFakeRoleRepository(),
		requests:   newFakeRequestRepository(),
		profiles:   &fakeProfileRepository{},
		email:      &fakeEmailSender{},
		audit:      &fakeAuditSink{},
		metrics:    &fakeMetrics{},
	}
	h.uc = NewAdminUseCase(Dependencies{
		Identities:          h.identities,
		Roles:               h.roles,
		Requests:            h.requests,
		Profiles:            h.profiles,
		Email:               h.email,
		Audit:               h.audit,
		Metrics:             h.metrics,
		Logger:              logger.NewNopLogger(),
		RecoveryRedirectURL: testRedirect,
		CleanupConcurrency:  4,
	})
	return h
}

// seedAdmin creates an identity holding the admin role.
func (h *harness) seedAdmin(id string) *entity.Identity {
	h.identities.seed(id, id+"@institute.edu", "Admin "+id, true)
	h.roles.grant(id)
	return h.identities.identity(id)
}

// seedPendingRequest creates an unconfirmed requester and a pending request for it.
func (h *harness) seedPendingRequest(requestID, userID string) {
	h.identities.seed(userID, userID+"@institute.edu", "Requester "+userID, false)
	h.requests.add(entity.NewAdminRequest(requestID, userID, "I run the complaints desk"))
}
