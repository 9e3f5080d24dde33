package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/the-lucky-clover/agentcy-one/internal/models"
	"github.com/the-lucky-clover/agentcy-one/internal/providers"
	"github.com/the-lucky-clover/agentcy-one/internal/repositories"
)

type fakeUsers struct {
	mu      sync.Mutex
	byID    map[string]*models.User
	byEmail map[string]*models.User
}

func newFakeUsers(users ...*models.User) *fakeUsers {
	f := &fakeUsers{byID: map[string]*models.User{}, byEmail: map[string]*models.User{}}
	for _, u := range users {
		f.byID[u.ID] = u
		f.byEmail[u.Email] = u
	}
	return f
}

func (f *fakeUsers) Create(_ context.Context, u *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byEmail[u.Email]; ok {
		return repositories.ErrDuplicate
	}
	f.byID[u.ID] = u
	f.byEmail[u.Email] = u
	return nil
}

func (f *fakeUsers) GetByID(_ context.Context, id string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u, ok := f.byID[id]; ok {
		return u, nil
	}
	return nil, repositories.ErrNotFound
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u, ok := f.byEmail[email]; ok {
		return u, nil
	}
	return nil, repositories.ErrNotFound
}

func (f *fakeUsers) UpdatePassword(ctx context.Context, id, hash string) error {
	u, err := f.GetByID(ctx, id)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	u.RefreshToken = nil
	return nil
}

func (f *fakeUsers) MarkEmailVerified(ctx context.Context, id string) error {
	u, err := f.GetByID(ctx, id)
	if err != nil {
		return err
	}
	u.EmailVerified = true
	return nil
}

func (f *fakeUsers) GetUsage(ctx context.Context, id string) (*models.Usage, error) {
	u, err := f.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return &models.Usage{Count: u.UsageCount, Limit: u.UsageLimit, Tier: u.Tier}, nil
}

func (f *fakeUsers) IncrementUsage(ctx context.Context, id string) error {
	u, err := f.GetByID(ctx, id)
	if err != nil {
		return err
	}
	f.mu.Lock()
	u.UsageCount++
	f.mu.Unlock()
	return nil
}

func (f *fakeUsers) UpdateRefresh(ctx context.Context, id, token string, exp time.Time) error {
	u, err := f.GetByID(ctx, id)
	if err != nil {
		return err
	}
	u.RefreshToken = &token
	u.RefreshExpiresAt = &exp
	return nil
}

func (f *fakeUsers) RotateRefresh(ctx context.Context, oldToken, newToken string, exp time.Time) (*models.User, error) {
	u, err := f.GetByRefreshToken(ctx, oldToken)
	if err != nil {
		return nil, err
	}
	u.RefreshToken = &newToken
	u.RefreshExpiresAt = &exp
	return u, nil
}

func (f *fakeUsers) GetByRefreshToken(_ context.Context, token string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.byID {
		if u.RefreshToken != nil && *u.RefreshToken == token {
			return u, nil
		}
	}
	return nil, repositories.ErrNotFound
}

type fakeLedger struct {
	mu       sync.Mutex
	rows     map[string]*models.GenerationRequest
	order    []string
	inserted int
	gets     int
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{rows: map[string]*models.GenerationRequest{}}
}

func (f *fakeLedger) Insert(_ context.Context, g *models.GenerationRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *g
	f.rows[g.ID] = &cp
	f.order = append(f.order, g.ID)
	f.inserted++
	return nil
}

func (f *fakeLedger) Complete(_ context.Context, id string, res *models.GenerationResult, files []models.FileDescriptor, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	g, ok := f.rows[id]
	if !ok || g.Status != models.GenerationProcessing {
		return repositories.ErrNotFound
	}
	g.Status = models.GenerationCompleted
	g.Result = res
	g.Files = files
	g.CompletedAt = &at
	return nil
}

func (f *fakeLedger) Fail(_ context.Context, id, msg string, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	g, ok := f.rows[id]
	if !ok || g.Status != models.GenerationProcessing {
		return repositories.ErrNotFound
	}
	g.Status = models.GenerationFailed
	g.Error = &msg
	g.CompletedAt = &at
	return nil
}

func (f *fakeLedger) GetForUser(_ context.Context, id, userID string) (*models.GenerationRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gets++
	g, ok := f.rows[id]
	if !ok || g.UserID != userID {
		return nil, repositories.ErrNotFound
	}
	cp := *g
	return &cp, nil
}

func (f *fakeLedger) ListForUser(_ context.Context, userID string, limit, offset int) ([]models.GenerationRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var mine []models.GenerationRequest
	for i := len(f.order) - 1; i >= 0; i-- {
		if g := f.rows[f.order[i]]; g.UserID == userID {
			mine = append(mine, *g)
		}
	}
	if offset >= len(mine) {
		return []models.GenerationRequest{}, nil
	}
	end := offset + limit
	if end > len(mine) {
		end = len(mine)
	}
	return mine[offset:end], nil
}

func (f *fakeLedger) CountForUser(_ context.Context, userID string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, g := range f.rows {
		if g.UserID == userID {
			n++
		}
	}
	return n, nil
}

type fakeProjects struct {
	rows map[string]*models.Project
}

func newFakeProjects(ps ...*models.Project) *fakeProjects {
	f := &fakeProjects{rows: map[string]*models.Project{}}
	for _, p := range ps {
		f.rows[p.ID] = p
	}
	return f
}

func (f *fakeProjects) Create(_ context.Context, p *models.Project) error {
	f.rows[p.ID] = p
	return nil
}

func (f *fakeProjects) GetForUser(_ context.Context, id, userID string) (*models.Project, error) {
	p, ok := f.rows[id]
	if !ok || p.UserID != userID {
		return nil, repositories.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakeProjects) ListForUser(_ context.Context, userID string, _, _ int) ([]models.Project, error) {
	out := []models.Project{}
	for _, p := range f.rows {
		if p.UserID == userID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (f *fakeProjects) Update(_ context.Context, p *models.Project) error {
	cur, ok := f.rows[p.ID]
	if !ok || cur.UserID != p.UserID {
		return repositories.ErrNotFound
	}
	cp := *p
	f.rows[p.ID] = &cp
	return nil
}

func (f *fakeProjects) Delete(_ context.Context, id, userID string) error {
	p, ok := f.rows[id]
	if !ok || p.UserID != userID {
		return repositories.ErrNotFound
	}
	delete(f.rows, id)
	return nil
}

type fakeDeployments struct {
	rows []models.Deployment
}

func (f *fakeDeployments) ListByProject(_ context.Context, projectID, userID string) ([]models.Deployment, error) {
	out := []models.Deployment{}
	for _, d := range f.rows {
		if d.ProjectID == projectID && d.UserID == userID {
			out = append(out, d)
		}
	}
	return out, nil
}

type fakeSubscriptions struct {
	rows []*models.Subscription
	err  error
}

func (f *fakeSubscriptions) Create(_ context.Context, s *models.Subscription) error {
	if f.err != nil {
		return f.err
	}
	f.rows = append(f.rows, s)
	return nil
}

func (f *fakeSubscriptions) GetLatest(_ context.Context, userID string) (*models.Subscription, error) {
	for i := len(f.rows) - 1; i >= 0; i-- {
		if f.rows[i].UserID == userID {
			return f.rows[i], nil
		}
	}
	return nil, repositories.ErrNotFound
}

// staleReads makes GetByToken report tokens as unused, as a read racing another submit would.
type fakeTokens struct {
	rows       map[string]*models.EmailVerification
	nextID     int64
	staleReads bool
}

func newFakeTokens() *fakeTokens {
	return &fakeTokens{rows: map[string]*models.EmailVerification{}}
}

func (f *fakeTokens) Create(_ context.Context, userID, token string, exp time.Time) (*models.EmailVerification, error) {
	f.nextID++
	v := &models.EmailVerification{ID: f.nextID, UserID: userID, Token: token, ExpiresAt: exp}
	f.rows[token] = v
	return v, nil
}

func (f *fakeTokens) GetByToken(_ context.Context, token string) (*models.EmailVerification, error) {
	v, ok := f.rows[token]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	cp := *v
	if f.staleReads {
		cp.UsedAt = nil
	}
	return &cp, nil
}

func (f *fakeTokens) MarkUsed(_ context.Context, id int64) error {
	for _, v := range f.rows {
		if v.ID == id {
			if v.UsedAt != nil {
				return repositories.ErrNotFound
			}
			now := time.Now()
			v.UsedAt = &now
			return nil
		}
	}
	return repositories.ErrNotFound
}

type fakeResets struct {
	rows       map[string]*models.PasswordReset
	nextID     int64
	staleReads bool
}

func newFakeResets() *fakeResets {
	return &fakeResets{rows: map[string]*models.PasswordReset{}}
}

func (f *fakeResets) Create(_ context.Context, userID, token string, exp time.Time) (*models.PasswordReset, error) {
	f.nextID++
	r := &models.PasswordReset{ID: f.nextID, UserID: userID, Token: token, ExpiresAt: exp}
	f.rows[token] = r
	return r, nil
}

func (f *fakeResets) GetByToken(_ context.Context, token string) (*models.PasswordReset, error) {
	r, ok := f.rows[token]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	cp := *r
	if f.staleReads {
		cp.UsedAt = nil
	}
	return &cp, nil
}

func (f *fakeResets) MarkUsed(_ context.Context, id int64) error {
	for _, r := range f.rows {
		if r.ID == id {
			if r.UsedAt != nil {
				return repositories.ErrNotFound
			}
			now := time.Now()
			r.UsedAt = &now
			return nil
		}
	}
	return repositories.ErrNotFound
}

type fakeEmails struct {
	mu           sync.Mutex
	welcome      []string
	verification map[string]string
	reset        map[string]string
	err          error
}

func newFakeEmails() *fakeEmails {
	return &fakeEmails{verification: map[string]string{}, reset: map[string]string{}}
}

func (f *fakeEmails) SendWelcomeEmail(email, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.welcome = append(f.welcome, email)
	return f.err
}

func (f *fakeEmails) SendVerificationEmail(email, _, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.verification[email] = token
	return f.err
}

func (f *fakeEmails) SendPasswordResetEmail(email, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reset[email] = token
	return f.err
}

type fakeAnalytics struct {
	mu     sync.Mutex
	events []string
}

func (f *fakeAnalytics) Track(_ context.Context, _ string, eventType string, _ map[string]any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, eventType)
}

type stubProvider struct {
	res   *models.GenerationResult
	err   error
	calls int
	last  providers.Request
}

func (s *stubProvider) Name() string { return "stub" }

func (s *stubProvider) Generate(_ context.Context, req providers.Request) (*models.GenerationResult, error) {
	s.calls++
	s.last = req
	return s.res, s.err
}

type fakeStore struct {
	mu     sync.Mutex
	keys   []string
	failOn string
}

func (f *fakeStore) Put(_ context.Context, requestID string, file models.GeneratedFile) (models.FileDescriptor, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if file.Name == f.failOn {
		return models.FileDescriptor{}, errors.New("bucket unavailable")
	}
	key := requestID + "/" + file.Name
	f.keys = append(f.keys, key)
	return models.FileDescriptor{Name: file.Name, URL: "https://cdn.test/" + key, ContentType: "text/plain"}, nil
}
