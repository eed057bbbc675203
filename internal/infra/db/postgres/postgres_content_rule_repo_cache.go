package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"heritage-access-platform/internal/domain/model"
	"heritage-access-platform/internal/domain/ports/repository"
	"heritage-access-platform/internal/infra/metrics"
	red "heritage-access-platform/internal/infra/redis"
)

var _ repository.ContentRuleRepository = (*ruleRepoCacheDecorator)(nil)

// ruleRepoCacheDecorator caches gating rules. Rules change on editor action
// only, so a short TTL plus write-through invalidation keeps the hot resolve
// path off Postgres.
type ruleRepoCacheDecorator struct {
	inner repository.ContentRuleRepository
	cache red.RedisClient
	ttl   time.Duration
}

func NewRuleRepoCacheDecorator(inner repository.ContentRuleRepository, cache red.RedisClient) repository.ContentRuleRepository {
	return &ruleRepoCacheDecorator{
		inner: inner,
		cache: cache,
		ttl:   5 * time.Minute,
	}
}

func ruleCacheKey(ct model.ContentType, contentID string) string {
	return fmt.Sprintf("rule:%s:%s", ct, contentID)
}

func (d *ruleRepoCacheDecorator) FindFor(ctx context.Context, tx repository.Tx, ct model.ContentType, contentID string) (*model.ContentAccessRule, error) {
	key := ruleCacheKey(ct, contentID)
	val, err := d.cache.Get(ctx, key)
	if err == nil {
		metrics.IncCacheRequest("rule", "hit")
		var rule model.ContentAccessRule
		if json.Unmarshal([]byte(val), &rule) == nil {
			return &rule, nil
		}
	} else if err != redis.Nil {
		metrics.IncCacheRequest("rule", "error")
	}

	metrics.IncCacheRequest("rule", "miss")
	rule, err := d.inner.FindFor(ctx, tx, ct, contentID)
	if err != nil {
		return nil, err
	}
	if rule != nil {
		bytes, _ := json.Marshal(rule)
		d.cache.Set(ctx, key, bytes, d.ttl)
	}
	return rule, nil
}

// Save invalidates the item key. A type-default write invalidates only its
// own key; item-level entries expire by TTL, which bounds staleness to ttl
// for items that fall back to the default.
func (d *ruleRepoCacheDecorator) Save(ctx context.Context, tx repository.Tx, rule *model.ContentAccessRule) error {
	d.cache.Del(ctx, ruleCacheKey(rule.ContentType, rule.ContentID))
	return d.inner.Save(ctx, tx, rule)
}

func (d *ruleRepoCacheDecorator) ListAll(ctx context.Context, tx repository.Tx) ([]*model.ContentAccessRule, error) {
	return d.inner.ListAll(ctx, tx)
}
