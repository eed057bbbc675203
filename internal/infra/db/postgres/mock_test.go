//go:build !integration

package postgres

import (
	"context"
	"time"

	"heritage-access-platform/internal/domain/model"
	"heritage-access-platform/internal/domain/ports/repository"
	red "heritage-access-platform/internal/infra/redis"
)

// --- Mocks for Cache Decorator Tests ---

// mockInnerRuleRepo mocks the database repository that the rule decorator wraps.
type mockInnerRuleRepo struct {
	FindForFunc func(ctx context.Context, tx repository.Tx, ct model.ContentType, contentID string) (*model.ContentAccessRule, error)
	SaveFunc    func(ctx context.Context, tx repository.Tx, rule *model.ContentAccessRule) error
	ListAllFunc func(ctx context.Context, tx repository.Tx) ([]*model.ContentAccessRule, error)
}

func (m *mockInnerRuleRepo) FindFor(ctx context.Context, tx repository.Tx, ct model.ContentType, contentID string) (*model.ContentAccessRule, error) {
	return m.FindForFunc(ctx, tx, ct, contentID)
}
func (m *mockInnerRuleRepo) Save(ctx context.Context, tx repository.Tx, rule *model.ContentAccessRule) error {
	return m.SaveFunc(ctx, tx, rule)
}
func (m *mockInnerRuleRepo) ListAll(ctx context.Context, tx repository.Tx) ([]*model.ContentAccessRule, error) {
	return m.ListAllFunc(ctx, tx)
}

// mockRedisClient mocks our Redis client wrapper.
type mockRedisClient struct {
	GetFunc    func(ctx context.Context, key string) (string, error)
	SetFunc    func(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	DelFunc    func(ctx context.Context, keys ...string) error
	PingFunc   func(ctx context.Context) error
	IncrFunc   func(ctx context.Context, key string) (int64, error)
	ExpireFunc func(ctx context.Context, key string, expiration time.Duration) error
	CloseFunc  func() error
}

var _ red.RedisClient = &mockRedisClient{}

func (m *mockRedisClient) Get(ctx context.Context, key string) (string, error) {
	return m.GetFunc(ctx, key)
}
func (m *mockRedisClient) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	if m.SetFunc != nil {
		return m.SetFunc(ctx, key, value, expiration)
	}
	return nil
}
func (m *mockRedisClient) Del(ctx context.Context, keys ...string) error {
	return m.DelFunc(ctx, keys...)
}
func (m *mockRedisClient) Ping(ctx context.Context) error { return m.PingFunc(ctx) }
func (m *mockRedisClient) Incr(ctx context.Context, key string) (int64, error) {
	return m.IncrFunc(ctx, key)
}
func (m *mockRedisClient) Expire(ctx context.Context, key string, expiration time.Duration) error {
	return m.ExpireFunc(ctx, key, expiration)
}
func (m *mockRedisClient) Close() error { return m.CloseFunc() }
