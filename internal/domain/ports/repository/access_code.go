package repository

import (
	"context"

	"heritage-access-platform/internal/domain/model"
)

// AccessCodeRepository is the port for the code store. Usage state is mutated
// only through ConsumeUse/AddRedemption; Save never touches used_count.
type AccessCodeRepository interface {
	// Save creates a code or updates its issuer-owned fields.
	Save(ctx context.Context, tx Tx, code *model.AccessCode) error
	// FindByCode looks up a code by its normalized string, redemptions included.
	FindByCode(ctx context.Context, tx Tx, code string) (*model.AccessCode, error)
	FindByID(ctx context.Context, tx Tx, id string) (*model.AccessCode, error)
	// ConsumeUse atomically increments used_count while it is below max_uses.
	// Returns false when the cap was already reached.
	ConsumeUse(ctx context.Context, tx Tx, codeID string) (bool, error)
	// AddRedemption appends the immutable redemption record. A duplicate
	// (code, user) pair surfaces domain.ErrAlreadyRedeemed.
	AddRedemption(ctx context.Context, tx Tx, codeID string, r model.Redemption) error
	HasRedemption(ctx context.Context, tx Tx, codeID, userID string) (bool, error)
	// Deactivate soft-disables a code; codes with redemptions are never deleted.
	Deactivate(ctx context.Context, tx Tx, id string) error
	ListByAgency(ctx context.Context, tx Tx, agencyID string, offset, limit int) ([]*model.AccessCode, error)
}
