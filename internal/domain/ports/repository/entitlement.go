package repository

import (
	"context"
	"time"

	"heritage-access-platform/internal/domain/model"
)

// EntitlementRepository is the port for the entitlement store. Rows are
// written once per grant; resolution only ever reads them.
type EntitlementRepository interface {
	Save(ctx context.Context, tx Tx, e *model.Entitlement) error
	// FindActiveByUser returns all non-revoked entitlements for a user.
	// Expiry filtering is the resolver's job, not the query's.
	FindActiveByUser(ctx context.Context, tx Tx, userID string) ([]*model.Entitlement, error)
	// FindByUser returns the full audit trail, expired and revoked included.
	FindByUser(ctx context.Context, tx Tx, userID string, offset, limit int) ([]*model.Entitlement, error)
	Revoke(ctx context.Context, tx Tx, id string) error
	// MarkExpired flips status on rows whose expiry has passed. Bookkeeping
	// for the sweeper; returns the number of rows touched.
	MarkExpired(ctx context.Context, tx Tx, now time.Time) (int, error)
	CountActiveBySource(ctx context.Context, tx Tx) (map[model.SourceType]int, error)
}
