package repository

import (
	"context"

	"heritage-access-platform/internal/domain/model"
)

type UserRepository interface {
	Save(ctx context.Context, tx Tx, u *model.User) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.User, error)
	// UpdateDisplayTier refreshes the denormalized UI hint. Never consulted
	// for authorization.
	UpdateDisplayTier(ctx context.Context, tx Tx, userID string, tier model.AccessTier) error
	List(ctx context.Context, tx Tx, offset, limit int) ([]*model.User, error)
	CountUsers(ctx context.Context, tx Tx) (int, error)
}
