//go:build !integration

package web

import (
	"context"
	"io"
	"testing"
	"time"

	"heritage-access-platform/internal/config"
	"heritage-access-platform/internal/domain"
	"heritage-access-platform/internal/domain/model"
	"heritage-access-platform/internal/domain/ports/adapter"
	red "heritage-access-platform/internal/infra/redis"
	"heritage-access-platform/internal/usecase"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/go-redis/redis/v8"
	"github.com/rs/zerolog"
)

func newTestLogger() *zerolog.Logger {
	logger := zerolog.New(io.Discard)
	return &logger
}

// ---- mock use cases ----

type mockRedemptionUC struct {
	RedeemFunc func(ctx context.Context, rawCode, userID string) (*usecase.RedemptionResult, error)
}

func (m *mockRedemptionUC) Redeem(ctx context.Context, rawCode, userID string) (*usecase.RedemptionResult, error) {
	if m.RedeemFunc != nil {
		return m.RedeemFunc(ctx, rawCode, userID)
	}
	return nil, domain.ErrCodeNotFound
}

func (m *mockRedemptionUC) RedeemAt(ctx context.Context, rawCode, userID string, _ time.Time) (*usecase.RedemptionResult, error) {
	return m.Redeem(ctx, rawCode, userID)
}

type mockEntitlementUC struct {
	ResolveFunc    func(ctx context.Context, userID string, ct model.ContentType, contentID string) (model.EntitlementDecision, error)
	GrantFunc      func(ctx context.Context, userID string, source model.SourceType, scope model.GrantScope, expiresAt *time.Time, agencyID *string) (*model.Entitlement, error)
	ListByUserFunc func(ctx context.Context, userID string, offset, limit int) ([]*model.Entitlement, error)
	RevokeFunc     func(ctx context.Context, entitlementID string) error
}

func (m *mockEntitlementUC) Resolve(ctx context.Context, userID string, ct model.ContentType, contentID string) (model.EntitlementDecision, error) {
	if m.ResolveFunc != nil {
		return m.ResolveFunc(ctx, userID, ct, contentID)
	}
	return model.DecisionDenied(model.TierPremium), nil
}

func (m *mockEntitlementUC) ResolveAt(ctx context.Context, userID string, ct model.ContentType, contentID string, _ time.Time) (model.EntitlementDecision, error) {
	return m.Resolve(ctx, userID, ct, contentID)
}

func (m *mockEntitlementUC) TierFor(ctx context.Context, userID string) (model.AccessTier, error) {
	return model.TierFree, nil
}

func (m *mockEntitlementUC) Grant(ctx context.Context, userID string, source model.SourceType, scope model.GrantScope, expiresAt *time.Time, agencyID *string) (*model.Entitlement, error) {
	if m.GrantFunc != nil {
		return m.GrantFunc(ctx, userID, source, scope, expiresAt, agencyID)
	}
	return model.NewEntitlement(userID, source, scope, expiresAt)
}

func (m *mockEntitlementUC) VerifyCodeCovers(ctx context.Context, codeID string, ct model.ContentType, contentID string) error {
	return nil
}

func (m *mockEntitlementUC) ListByUser(ctx context.Context, userID string, offset, limit int) ([]*model.Entitlement, error) {
	if m.ListByUserFunc != nil {
		return m.ListByUserFunc(ctx, userID, offset, limit)
	}
	return []*model.Entitlement{}, nil
}

func (m *mockEntitlementUC) Revoke(ctx context.Context, entitlementID string) error {
	if m.RevokeFunc != nil {
		return m.RevokeFunc(ctx, entitlementID)
	}
	return nil
}

type mockGateUC struct {
	ViewFunc func(ctx context.Context, userID string, ct model.ContentType, contentID string) (*model.GatedContentDoc, error)
}

func (m *mockGateUC) Gate(doc *model.ContentDocument, rule *model.ContentAccessRule, decision model.EntitlementDecision) *model.GatedContentDoc {
	return nil
}

func (m *mockGateUC) View(ctx context.Context, userID string, ct model.ContentType, contentID string) (*model.GatedContentDoc, error) {
	if m.ViewFunc != nil {
		return m.ViewFunc(ctx, userID, ct, contentID)
	}
	return nil, domain.ErrNotFound
}

func (m *mockGateUC) ViewAt(ctx context.Context, userID string, ct model.ContentType, contentID string, _ time.Time) (*model.GatedContentDoc, error) {
	return m.View(ctx, userID, ct, contentID)
}

type mockCodeAdminUC struct {
	GenerateBatchFunc func(ctx context.Context, spec usecase.BatchSpec) ([]*model.AccessCode, error)
	DeactivateFunc    func(ctx context.Context, codeID string) error
	LookupFunc        func(ctx context.Context, rawCode string) (*model.AccessCode, error)
}

func (m *mockCodeAdminUC) GenerateBatch(ctx context.Context, spec usecase.BatchSpec) ([]*model.AccessCode, error) {
	if m.GenerateBatchFunc != nil {
		return m.GenerateBatchFunc(ctx, spec)
	}
	return []*model.AccessCode{}, nil
}

func (m *mockCodeAdminUC) Deactivate(ctx context.Context, codeID string) error {
	if m.DeactivateFunc != nil {
		return m.DeactivateFunc(ctx, codeID)
	}
	return nil
}

func (m *mockCodeAdminUC) Lookup(ctx context.Context, rawCode string) (*model.AccessCode, error) {
	if m.LookupFunc != nil {
		return m.LookupFunc(ctx, rawCode)
	}
	return nil, domain.ErrCodeNotFound
}

func (m *mockCodeAdminUC) ListByAgency(ctx context.Context, agencyID string, offset, limit int) ([]*model.AccessCode, error) {
	return []*model.AccessCode{}, nil
}

type mockAskUC struct {
	AskFunc func(ctx context.Context, userID, question, language string) (*adapter.AskAnswer, error)
}

func (m *mockAskUC) Ask(ctx context.Context, userID, question, language string) (*adapter.AskAnswer, error) {
	if m.AskFunc != nil {
		return m.AskFunc(ctx, userID, question, language)
	}
	return &adapter.AskAnswer{Text: "muraho", Model: "mock"}, nil
}

// ---- server under test ----

type serverMocks struct {
	redeem *mockRedemptionUC
	ents   *mockEntitlementUC
	gate   *mockGateUC
	admin  *mockCodeAdminUC
	ask    *mockAskUC
}

const testAPIKey = "test-admin-key"
const testJWTSecret = "test-visitor-jwt-secret-change-me"

func newTestServer(t *testing.T) (*Server, *serverMocks) {
	t.Helper()

	srv := miniredis.RunT(t)
	cli := goredis.NewClient(&goredis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = cli.Close() })
	limiter := red.NewRateLimiter(red.NewClientFromRedis(cli))

	m := &serverMocks{
		redeem: &mockRedemptionUC{},
		ents:   &mockEntitlementUC{},
		gate:   &mockGateUC{},
		admin:  &mockCodeAdminUC{},
		ask:    &mockAskUC{},
	}
	auth := NewAuthManager(testJWTSecret, time.Minute)
	limits := config.LimitsConfig{RedeemAttempts: 100, RedeemWindow: time.Minute}
	s := NewServer(m.redeem, m.ents, m.gate, m.admin, m.ask, limiter, auth, testAPIKey, limits, newTestLogger())
	return s, m
}

func visitorToken(t *testing.T, s *Server, userID string) string {
	t.Helper()
	tok, err := s.auth.Mint(userID, "visitor")
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return tok
}
