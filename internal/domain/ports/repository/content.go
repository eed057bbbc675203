package repository

import (
	"context"

	"heritage-access-platform/internal/domain/model"
)

// ContentRuleRepository looks up editor-owned gating rules. This service only
// reads them; Save exists for seeding and the cache decorator's invalidation.
type ContentRuleRepository interface {
	// FindFor returns the item-level rule when one exists, otherwise the
	// content-type default.
	FindFor(ctx context.Context, tx Tx, ct model.ContentType, contentID string) (*model.ContentAccessRule, error)
	Save(ctx context.Context, tx Tx, rule *model.ContentAccessRule) error
	ListAll(ctx context.Context, tx Tx) ([]*model.ContentAccessRule, error)
}

// ContentRepository is the boundary to the content-schema layer: raw
// documents to gate. Strictly read-only here.
type ContentRepository interface {
	FindByID(ctx context.Context, tx Tx, ct model.ContentType, id string) (*model.ContentDocument, error)
}
