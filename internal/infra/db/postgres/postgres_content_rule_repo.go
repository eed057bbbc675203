package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"heritage-access-platform/internal/domain"
	"heritage-access-platform/internal/domain/model"
	"heritage-access-platform/internal/domain/ports/repository"
)

// Ensure implementation satisfies the interface.
var _ repository.ContentRuleRepository = (*contentRuleRepo)(nil)

type contentRuleRepo struct {
	pool *pgxpool.Pool
}

func NewContentRuleRepo(pool *pgxpool.Pool) *contentRuleRepo {
	return &contentRuleRepo{pool: pool}
}

// FindFor prefers the item-level rule and falls back to the type default
// (the row with an empty content_id) in one round trip.
func (r *contentRuleRepo) FindFor(ctx context.Context, tx repository.Tx, ct model.ContentType, contentID string) (*model.ContentAccessRule, error) {
	const q = `
SELECT content_type, content_id, tier, sensitivity, price_cents, teaser_duration_seconds
  FROM content_access_rules
 WHERE content_type = $1 AND content_id IN ($2, '')
 ORDER BY (content_id <> '') DESC
 LIMIT 1;`
	row, err := pickRow(ctx, r.pool, tx, q, ct, contentID)
	if err != nil {
		return nil, err
	}
	return scanRule(row)
}

func (r *contentRuleRepo) Save(ctx context.Context, tx repository.Tx, rule *model.ContentAccessRule) error {
	const q = `
INSERT INTO content_access_rules (
  content_type, content_id, tier, sensitivity, price_cents, teaser_duration_seconds
) VALUES ($1,$2,$3,$4,$5,$6)
ON CONFLICT (content_type, content_id) DO UPDATE SET
  tier=$3, sensitivity=$4, price_cents=$5, teaser_duration_seconds=$6;`
	_, err := execSQL(ctx, r.pool, tx, q,
		rule.ContentType, rule.ContentID, rule.Tier, rule.Sensitivity,
		rule.PriceCents, rule.TeaserDurationSeconds,
	)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidArgument), errors.Is(err, domain.ErrInvalidExecContext):
			return err
		default:
			return domain.ErrOperationFailed
		}
	}
	return nil
}

func (r *contentRuleRepo) ListAll(ctx context.Context, tx repository.Tx) ([]*model.ContentAccessRule, error) {
	const q = `
SELECT content_type, content_id, tier, sensitivity, price_cents, teaser_duration_seconds
  FROM content_access_rules
 ORDER BY content_type, content_id;`
	rows, err := queryRows(ctx, r.pool, tx, q)
	if err != nil {
		return nil, domain.ErrOperationFailed
	}
	defer rows.Close()
	var out []*model.ContentAccessRule
	for rows.Next() {
		rule, err := scanRule(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rule)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.ErrReadDatabaseRow
	}
	return out, nil
}

func scanRule(row pgx.Row) (*model.ContentAccessRule, error) {
	var rule model.ContentAccessRule
	err := row.Scan(
		&rule.ContentType, &rule.ContentID, &rule.Tier, &rule.Sensitivity,
		&rule.PriceCents, &rule.TeaserDurationSeconds,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	return &rule, nil
}
