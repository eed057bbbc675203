//go:build !integration

package postgres

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"

	"heritage-access-platform/internal/domain/model"
	"heritage-access-platform/internal/domain/ports/repository"
)

func TestRuleRepoCacheDecorator(t *testing.T) {
	ctx := context.Background()
	rule := &model.ContentAccessRule{
		ContentType: model.ContentTypeStory,
		ContentID:   "story-1",
		Tier:        model.TierPremium,
		Sensitivity: model.SensitivityHighlySensitive,
	}
	ruleJSON, _ := json.Marshal(rule)

	t.Run("FindFor should return from cache on hit", func(t *testing.T) {
		mockRedis := &mockRedisClient{
			GetFunc: func(ctx context.Context, key string) (string, error) {
				return string(ruleJSON), nil // Simulate cache hit
			},
		}
		innerRepoCalled := false
		mockInnerRepo := &mockInnerRuleRepo{
			FindForFunc: func(ctx context.Context, tx repository.Tx, ct model.ContentType, contentID string) (*model.ContentAccessRule, error) {
				innerRepoCalled = true // This should not be called
				return nil, nil
			},
		}

		decorator := NewRuleRepoCacheDecorator(mockInnerRepo, mockRedis)

		result, err := decorator.FindFor(ctx, nil, model.ContentTypeStory, "story-1")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if innerRepoCalled {
			t.Error("inner repository should not be called on a cache hit")
		}
		if result == nil || result.Tier != model.TierPremium || result.Sensitivity != model.SensitivityHighlySensitive {
			t.Errorf("did not return the correct rule from cache: %+v", result)
		}
	})

	t.Run("FindFor should fall through and populate on miss", func(t *testing.T) {
		var setKey string
		mockRedis := &mockRedisClient{
			GetFunc: func(ctx context.Context, key string) (string, error) {
				return "", redis.Nil
			},
			SetFunc: func(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
				setKey = key
				return nil
			},
		}
		mockInnerRepo := &mockInnerRuleRepo{
			FindForFunc: func(ctx context.Context, tx repository.Tx, ct model.ContentType, contentID string) (*model.ContentAccessRule, error) {
				return rule, nil
			},
		}

		decorator := NewRuleRepoCacheDecorator(mockInnerRepo, mockRedis)

		result, err := decorator.FindFor(ctx, nil, model.ContentTypeStory, "story-1")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if result == nil || result.Tier != model.TierPremium {
			t.Errorf("wrong rule from fallthrough: %+v", result)
		}
		if setKey != "rule:story:story-1" {
			t.Errorf("cache populated under wrong key: %q", setKey)
		}
	})

	t.Run("Save should invalidate the item key", func(t *testing.T) {
		var deletedKeys []string
		mockRedis := &mockRedisClient{
			DelFunc: func(ctx context.Context, keys ...string) error {
				deletedKeys = append(deletedKeys, keys...)
				return nil
			},
		}
		mockInnerRepo := &mockInnerRuleRepo{
			SaveFunc: func(ctx context.Context, tx repository.Tx, rule *model.ContentAccessRule) error {
				return nil
			},
		}

		decorator := NewRuleRepoCacheDecorator(mockInnerRepo, mockRedis)

		if err := decorator.Save(ctx, nil, rule); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(deletedKeys) != 1 || deletedKeys[0] != "rule:story:story-1" {
			t.Fatalf("deleted keys = %v", deletedKeys)
		}
	})
}
