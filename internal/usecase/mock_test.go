//go:build !integration

package usecase_test

import (
	"context"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"heritage-access-platform/internal/domain"
	"heritage-access-platform/internal/domain/model"
	"heritage-access-platform/internal/domain/ports/adapter"
	"heritage-access-platform/internal/domain/ports/repository"
)

// -----------------------------
// Utilities: tiny helpers
// -----------------------------

// newTestLogger creates a silent zerolog.Logger for use in tests.
// It writes to io.Discard to prevent logs from cluttering test output.
func newTestLogger() *zerolog.Logger {
	logger := zerolog.New(io.Discard)
	return &logger
}

func strPtr(s string) *string { return &s }

func timePtr(t time.Time) *time.Time { return &t }

// ---- Mock TransactionManager ----

type MockTxManager struct {
	WithTxFunc func(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error
}

func NewMockTxManager() *MockTxManager {
	return &MockTxManager{}
}

var _ repository.TransactionManager = (*MockTxManager)(nil)

// WithTx runs the function immediately without a real transaction. Assign
// WithTxFunc to simulate transactional failures.
func (m *MockTxManager) WithTx(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error {
	if m.WithTxFunc != nil {
		return m.WithTxFunc(ctx, txOpt, fn)
	}
	return fn(ctx, repository.NoTX)
}

// ---- Mock AccessCodeRepository ----

// MockAccessCodeRepo preserves the store's atomicity contracts in memory:
// ConsumeUse is a conditional increment under the mutex, AddRedemption
// rejects a duplicate (code, user) pair.
type MockAccessCodeRepo struct {
	mu   sync.Mutex
	data map[string]*model.AccessCode // by id

	SaveFunc       func(ctx context.Context, tx repository.Tx, code *model.AccessCode) error
	FindByCodeFunc func(ctx context.Context, tx repository.Tx, code string) (*model.AccessCode, error)
	ConsumeUseFunc func(ctx context.Context, tx repository.Tx, codeID string) (bool, error)
}

var _ repository.AccessCodeRepository = (*MockAccessCodeRepo)(nil)

func NewMockAccessCodeRepo() *MockAccessCodeRepo {
	return &MockAccessCodeRepo{data: map[string]*model.AccessCode{}}
}

func cloneCode(c *model.AccessCode) *model.AccessCode {
	cp := *c
	cp.Redemptions = append([]model.Redemption(nil), c.Redemptions...)
	return &cp
}

func (r *MockAccessCodeRepo) Save(ctx context.Context, tx repository.Tx, code *model.AccessCode) error {
	if r.SaveFunc != nil {
		return r.SaveFunc(ctx, tx, code)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if code.ID == "" {
		code.ID = uuid.NewString()
	}
	for _, existing := range r.data {
		if existing.Code == code.Code && existing.ID != code.ID {
			return domain.ErrAlreadyExists
		}
	}
	r.data[code.ID] = cloneCode(code)
	return nil
}

func (r *MockAccessCodeRepo) FindByCode(ctx context.Context, tx repository.Tx, code string) (*model.AccessCode, error) {
	if r.FindByCodeFunc != nil {
		return r.FindByCodeFunc(ctx, tx, code)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.data {
		if c.Code == code {
			return cloneCode(c), nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *MockAccessCodeRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.AccessCode, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.data[id]; ok {
		return cloneCode(c), nil
	}
	return nil, domain.ErrNotFound
}

func (r *MockAccessCodeRepo) ConsumeUse(ctx context.Context, tx repository.Tx, codeID string) (bool, error) {
	if r.ConsumeUseFunc != nil {
		return r.ConsumeUseFunc(ctx, tx, codeID)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.data[codeID]
	if !ok {
		return false, domain.ErrNotFound
	}
	if c.UsedCount >= c.MaxUses {
		return false, nil
	}
	c.UsedCount++
	return true, nil
}

func (r *MockAccessCodeRepo) AddRedemption(ctx context.Context, tx repository.Tx, codeID string, red model.Redemption) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.data[codeID]
	if !ok {
		return domain.ErrNotFound
	}
	for _, existing := range c.Redemptions {
		if existing.UserID == red.UserID {
			return domain.ErrAlreadyRedeemed
		}
	}
	c.Redemptions = append(c.Redemptions, red)
	return nil
}

func (r *MockAccessCodeRepo) HasRedemption(ctx context.Context, tx repository.Tx, codeID, userID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.data[codeID]
	if !ok {
		return false, domain.ErrNotFound
	}
	for _, red := range c.Redemptions {
		if red.UserID == userID {
			return true, nil
		}
	}
	return false, nil
}

func (r *MockAccessCodeRepo) Deactivate(ctx context.Context, tx repository.Tx, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.data[id]
	if !ok {
		return domain.ErrNotFound
	}
	c.Active = false
	return nil
}

func (r *MockAccessCodeRepo) ListByAgency(ctx context.Context, tx repository.Tx, agencyID string, offset, limit int) ([]*model.AccessCode, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.AccessCode
	for _, c := range r.data {
		if c.AgencyID != nil && *c.AgencyID == agencyID {
			out = append(out, cloneCode(c))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	if offset >= len(out) {
		return nil, nil
	}
	end := offset + limit
	if end > len(out) {
		end = len(out)
	}
	return out[offset:end], nil
}

// Seed inserts a code directly, bypassing Save hooks.
func (r *MockAccessCodeRepo) Seed(c *model.AccessCode) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	r.data[c.ID] = cloneCode(c)
}

// Get returns the stored state of a code for assertions.
func (r *MockAccessCodeRepo) Get(id string) *model.AccessCode {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.data[id]; ok {
		return cloneCode(c)
	}
	return nil
}

// ---- Mock EntitlementRepository ----

type MockEntitlementRepo struct {
	mu   sync.Mutex
	data map[string]*model.Entitlement

	SaveFunc             func(ctx context.Context, tx repository.Tx, e *model.Entitlement) error
	FindActiveByUserFunc func(ctx context.Context, tx repository.Tx, userID string) ([]*model.Entitlement, error)
}

var _ repository.EntitlementRepository = (*MockEntitlementRepo)(nil)

func NewMockEntitlementRepo() *MockEntitlementRepo {
	return &MockEntitlementRepo{data: map[string]*model.Entitlement{}}
}

func (r *MockEntitlementRepo) Save(ctx context.Context, tx repository.Tx, e *model.Entitlement) error {
	if r.SaveFunc != nil {
		return r.SaveFunc(ctx, tx, e)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *e
	r.data[e.ID] = &cp
	return nil
}

func (r *MockEntitlementRepo) FindActiveByUser(ctx context.Context, tx repository.Tx, userID string) ([]*model.Entitlement, error) {
	if r.FindActiveByUserFunc != nil {
		return r.FindActiveByUserFunc(ctx, tx, userID)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.Entitlement
	for _, e := range r.data {
		if e.UserID == userID && e.Status != model.EntitlementStatusRevoked {
			cp := *e
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *MockEntitlementRepo) FindByUser(ctx context.Context, tx repository.Tx, userID string, offset, limit int) ([]*model.Entitlement, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.Entitlement
	for _, e := range r.data {
		if e.UserID == userID {
			cp := *e
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *MockEntitlementRepo) Revoke(ctx context.Context, tx repository.Tx, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.data[id]
	if !ok {
		return domain.ErrNotFound
	}
	e.Status = model.EntitlementStatusRevoked
	return nil
}

func (r *MockEntitlementRepo) MarkExpired(ctx context.Context, tx repository.Tx, now time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, e := range r.data {
		if e.Status == model.EntitlementStatusActive && e.ExpiresAt != nil && !now.Before(*e.ExpiresAt) {
			e.Status = model.EntitlementStatusExpired
			n++
		}
	}
	return n, nil
}

func (r *MockEntitlementRepo) CountActiveBySource(ctx context.Context, tx repository.Tx) (map[model.SourceType]int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := map[model.SourceType]int{}
	now := time.Now()
	for _, e := range r.data {
		if e.ActiveAt(now) {
			out[e.Source]++
		}
	}
	return out, nil
}

// Seed inserts an entitlement directly.
func (r *MockEntitlementRepo) Seed(e *model.Entitlement) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *e
	r.data[e.ID] = &cp
}

// ---- Mock ContentRuleRepository ----

type MockContentRuleRepo struct {
	mu    sync.Mutex
	rules map[string]*model.ContentAccessRule // key: type/id ("" id = type default)
}

var _ repository.ContentRuleRepository = (*MockContentRuleRepo)(nil)

func NewMockContentRuleRepo() *MockContentRuleRepo {
	return &MockContentRuleRepo{rules: map[string]*model.ContentAccessRule{}}
}

func ruleKey(ct model.ContentType, id string) string { return string(ct) + "/" + id }

func (r *MockContentRuleRepo) FindFor(ctx context.Context, tx repository.Tx, ct model.ContentType, contentID string) (*model.ContentAccessRule, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if rule, ok := r.rules[ruleKey(ct, contentID)]; ok {
		cp := *rule
		return &cp, nil
	}
	if rule, ok := r.rules[ruleKey(ct, "")]; ok {
		cp := *rule
		return &cp, nil
	}
	return nil, domain.ErrNotFound
}

func (r *MockContentRuleRepo) Save(ctx context.Context, tx repository.Tx, rule *model.ContentAccessRule) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *rule
	r.rules[ruleKey(rule.ContentType, rule.ContentID)] = &cp
	return nil
}

func (r *MockContentRuleRepo) ListAll(ctx context.Context, tx repository.Tx) ([]*model.ContentAccessRule, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.ContentAccessRule
	for _, rule := range r.rules {
		cp := *rule
		out = append(out, &cp)
	}
	return out, nil
}

// ---- Mock ContentRepository ----

type MockContentRepo struct {
	mu   sync.Mutex
	docs map[string]*model.ContentDocument
}

var _ repository.ContentRepository = (*MockContentRepo)(nil)

func NewMockContentRepo() *MockContentRepo {
	return &MockContentRepo{docs: map[string]*model.ContentDocument{}}
}

func (r *MockContentRepo) FindByID(ctx context.Context, tx repository.Tx, ct model.ContentType, id string) (*model.ContentDocument, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if d, ok := r.docs[ruleKey(ct, id)]; ok {
		cp := *d
		return &cp, nil
	}
	return nil, domain.ErrNotFound
}

func (r *MockContentRepo) Seed(d *model.ContentDocument) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *d
	r.docs[ruleKey(d.Type, d.ID)] = &cp
}

// ---- Mock PaymentRepository ----

type MockPaymentRepo struct {
	mu   sync.Mutex
	data map[string]*model.Payment

	SaveFunc func(ctx context.Context, tx repository.Tx, p *model.Payment) error
}

var _ repository.PaymentRepository = (*MockPaymentRepo)(nil)

func NewMockPaymentRepo() *MockPaymentRepo {
	return &MockPaymentRepo{data: map[string]*model.Payment{}}
}

func (r *MockPaymentRepo) Save(ctx context.Context, tx repository.Tx, p *model.Payment) error {
	if r.SaveFunc != nil {
		return r.SaveFunc(ctx, tx, p)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *p
	r.data[p.ID] = &cp
	return nil
}

func (r *MockPaymentRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.data[id]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, domain.ErrNotFound
}

func (r *MockPaymentRepo) ListByUser(ctx context.Context, tx repository.Tx, userID string, offset, limit int) ([]*model.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.Payment
	for _, p := range r.data {
		if p.UserID == userID {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}

// All returns every stored payment for assertions.
func (r *MockPaymentRepo) All() []*model.Payment {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.Payment
	for _, p := range r.data {
		cp := *p
		out = append(out, &cp)
	}
	return out
}

// ---- Mock UserRepository ----

type MockUserRepo struct {
	mu   sync.Mutex
	data map[string]*model.User

	UpdateDisplayTierFunc func(ctx context.Context, tx repository.Tx, userID string, tier model.AccessTier) error
}

var _ repository.UserRepository = (*MockUserRepo)(nil)

func NewMockUserRepo() *MockUserRepo {
	return &MockUserRepo{data: map[string]*model.User{}}
}

func (r *MockUserRepo) Save(ctx context.Context, tx repository.Tx, u *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *u
	r.data[u.ID] = &cp
	return nil
}

func (r *MockUserRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.data[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, domain.ErrNotFound
}

func (r *MockUserRepo) UpdateDisplayTier(ctx context.Context, tx repository.Tx, userID string, tier model.AccessTier) error {
	if r.UpdateDisplayTierFunc != nil {
		return r.UpdateDisplayTierFunc(ctx, tx, userID, tier)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.data[userID]; ok {
		u.DisplayTier = tier
	}
	return nil
}

func (r *MockUserRepo) List(ctx context.Context, tx repository.Tx, offset, limit int) ([]*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.User
	for _, u := range r.data {
		cp := *u
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *MockUserRepo) CountUsers(ctx context.Context, tx repository.Tx) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.data), nil
}

// Get returns the stored user for assertions.
func (r *MockUserRepo) Get(id string) *model.User {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.data[id]; ok {
		cp := *u
		return &cp
	}
	return nil
}

// ---- Mock AskAssistant ----

type MockAssistant struct {
	mu      sync.Mutex
	Queries []adapter.AskQuery

	AnswerFunc func(ctx context.Context, q adapter.AskQuery) (*adapter.AskAnswer, error)
}

var _ adapter.AskAssistant = (*MockAssistant)(nil)

func (m *MockAssistant) Answer(ctx context.Context, q adapter.AskQuery) (*adapter.AskAnswer, error) {
	m.mu.Lock()
	m.Queries = append(m.Queries, q)
	m.mu.Unlock()
	if m.AnswerFunc != nil {
		return m.AnswerFunc(ctx, q)
	}
	return &adapter.AskAnswer{Text: "answer", Model: "mock", TokensIn: 3, TokensOut: 5}, nil
}

func (m *MockAssistant) Name() string { return "mock" }
