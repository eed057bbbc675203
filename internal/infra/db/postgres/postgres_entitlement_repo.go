package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"heritage-access-platform/internal/domain"
	"heritage-access-platform/internal/domain/model"
	"heritage-access-platform/internal/domain/ports/repository"
)

// Ensure implementation satisfies the interface.
var _ repository.EntitlementRepository = (*entitlementRepo)(nil)

type entitlementRepo struct {
	pool *pgxpool.Pool
}

func NewEntitlementRepo(pool *pgxpool.Pool) *entitlementRepo {
	return &entitlementRepo{pool: pool}
}

const entitlementCols = `
id, user_id, source, scope_all, scope_content_type, scope_content_id,
granted_at, expires_at, origin_code_id, agency_id, status`

func (r *entitlementRepo) Save(ctx context.Context, tx repository.Tx, e *model.Entitlement) error {
	const q = `
INSERT INTO entitlements (
  id, user_id, source, scope_all, scope_content_type, scope_content_id,
  granted_at, expires_at, origin_code_id, agency_id, status
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
ON CONFLICT (id) DO UPDATE SET status=$11;`

	var ct *string
	if e.Scope.ContentType != "" {
		s := string(e.Scope.ContentType)
		ct = &s
	}
	var cid *string
	if e.Scope.ContentID != "" {
		cid = &e.Scope.ContentID
	}
	_, err := execSQL(ctx, r.pool, tx, q,
		e.ID, e.UserID, e.Source, e.Scope.All, ct, cid,
		e.GrantedAt, e.ExpiresAt, e.OriginCodeID, e.AgencyID, e.Status,
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

// FindActiveByUser excludes revoked rows only. Expired rows stay in the
// result; the resolver filters them by the request instant, so a stale
// status column can never grant or deny wrongly.
func (r *entitlementRepo) FindActiveByUser(ctx context.Context, tx repository.Tx, userID string) ([]*model.Entitlement, error) {
	const q = `
SELECT ` + entitlementCols + `
  FROM entitlements
 WHERE user_id = $1 AND status <> 'revoked'
 ORDER BY granted_at DESC;`
	return r.queryMany(ctx, tx, q, userID)
}

func (r *entitlementRepo) FindByUser(ctx context.Context, tx repository.Tx, userID string, offset, limit int) ([]*model.Entitlement, error) {
	const q = `
SELECT ` + entitlementCols + `
  FROM entitlements
 WHERE user_id = $1
 ORDER BY granted_at DESC
 OFFSET $2 LIMIT $3;`
	return r.queryMany(ctx, tx, q, userID, offset, limit)
}

func (r *entitlementRepo) Revoke(ctx context.Context, tx repository.Tx, id string) error {
	const q = `UPDATE entitlements SET status = 'revoked' WHERE id = $1;`
	tag, err := execSQL(ctx, r.pool, tx, q, id)
	if err != nil {
		return domain.ErrOperationFailed
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *entitlementRepo) MarkExpired(ctx context.Context, tx repository.Tx, now time.Time) (int, error) {
	const q = `
UPDATE entitlements
   SET status = 'expired'
 WHERE status = 'active' AND expires_at IS NOT NULL AND expires_at <= $1;`
	tag, err := execSQL(ctx, r.pool, tx, q, now)
	if err != nil {
		return 0, domain.ErrOperationFailed
	}
	return int(tag.RowsAffected()), nil
}

func (r *entitlementRepo) CountActiveBySource(ctx context.Context, tx repository.Tx) (map[model.SourceType]int, error) {
	const q = `
SELECT source, COUNT(*)
  FROM entitlements
 WHERE status = 'active' AND (expires_at IS NULL OR expires_at > NOW())
 GROUP BY source;`
	rows, err := queryRows(ctx, r.pool, tx, q)
	if err != nil {
		return nil, domain.ErrOperationFailed
	}
	defer rows.Close()
	out := make(map[model.SourceType]int)
	for rows.Next() {
		var src model.SourceType
		var n int
		if err := rows.Scan(&src, &n); err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		out[src] = n
	}
	if err := rows.Err(); err != nil {
		return nil, domain.ErrReadDatabaseRow
	}
	return out, nil
}

func (r *entitlementRepo) queryMany(ctx context.Context, tx repository.Tx, q string, args ...interface{}) ([]*model.Entitlement, error) {
	rows, err := queryRows(ctx, r.pool, tx, q, args...)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidArgument), errors.Is(err, domain.ErrInvalidExecContext):
			return nil, err
		default:
			return nil, domain.ErrOperationFailed
		}
	}
	defer rows.Close()
	var out []*model.Entitlement
	for rows.Next() {
		e, err := scanEntitlement(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.ErrReadDatabaseRow
	}
	return out, nil
}

func scanEntitlement(row pgx.Row) (*model.Entitlement, error) {
	var e model.Entitlement
	var ct, cid *string
	err := row.Scan(
		&e.ID, &e.UserID, &e.Source, &e.Scope.All, &ct, &cid,
		&e.GrantedAt, &e.ExpiresAt, &e.OriginCodeID, &e.AgencyID, &e.Status,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	if ct != nil {
		e.Scope.ContentType = model.ContentType(*ct)
	}
	if cid != nil {
		e.Scope.ContentID = *cid
	}
	return &e, nil
}
