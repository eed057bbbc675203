package repository

import (
	"context"

	"heritage-access-platform/internal/domain/model"
)

// PaymentRepository stores the audit/revenue trail, paid and zero-cost alike.
type PaymentRepository interface {
	Save(ctx context.Context, tx Tx, p *model.Payment) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.Payment, error)
	ListByUser(ctx context.Context, tx Tx, userID string, offset, limit int) ([]*model.Payment, error)
}
