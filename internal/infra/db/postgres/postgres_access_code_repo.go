package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"heritage-access-platform/internal/domain"
	"heritage-access-platform/internal/domain/model"
	"heritage-access-platform/internal/domain/ports/repository"
)

// Ensure implementation satisfies the interface.
var _ repository.AccessCodeRepository = (*accessCodeRepo)(nil)

type accessCodeRepo struct {
	pool *pgxpool.Pool
}

func NewAccessCodeRepo(pool *pgxpool.Pool) *accessCodeRepo {
	return &accessCodeRepo{pool: pool}
}

// Save creates a code or updates its issuer-owned fields. used_count is
// deliberately absent from the update list: usage state moves only through
// ConsumeUse and AddRedemption.
func (r *accessCodeRepo) Save(ctx context.Context, tx repository.Tx, code *model.AccessCode) error {
	if code.ID == "" {
		code.ID = uuid.NewString()
	}

	const q = `
INSERT INTO access_codes (
  id, code, code_type, agency_id, grants, target_id, max_uses, used_count,
  duration_days, valid_from, expires_at, active, created_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
ON CONFLICT (id) DO UPDATE SET
  agency_id=$4, grants=$5, target_id=$6, max_uses=$7,
  duration_days=$9, valid_from=$10, expires_at=$11, active=$12;`

	_, err := execSQL(ctx, r.pool, tx, q,
		code.ID, code.Code, code.Type, code.AgencyID, code.Grants, code.TargetID,
		code.MaxUses, code.UsedCount, code.DurationDays, code.ValidFrom, code.ExpiresAt,
		code.Active, code.CreatedAt,
	)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidArgument), errors.Is(err, domain.ErrInvalidExecContext):
			return err
		case isUniqueViolation(err):
			return domain.ErrAlreadyExists
		default:
			return domain.ErrOperationFailed
		}
	}
	return nil
}

// FindByCode loads a code by its normalized string, redemptions included.
// Inside a transaction the code row is locked so the validation snapshot
// holds for the rest of the redemption.
func (r *accessCodeRepo) FindByCode(ctx context.Context, tx repository.Tx, code string) (*model.AccessCode, error) {
	q := `
SELECT id, code, code_type, agency_id, grants, target_id, max_uses, used_count,
       duration_days, valid_from, expires_at, active, created_at
  FROM access_codes
 WHERE code = $1`
	if tx != nil {
		q += " FOR UPDATE"
	}
	row, err := pickRow(ctx, r.pool, tx, q+";", code)
	if err != nil {
		return nil, err
	}
	ac, err := scanAccessCode(row)
	if err != nil {
		return nil, err
	}
	if err := r.loadRedemptions(ctx, tx, ac); err != nil {
		return nil, err
	}
	return ac, nil
}

func (r *accessCodeRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.AccessCode, error) {
	const q = `
SELECT id, code, code_type, agency_id, grants, target_id, max_uses, used_count,
       duration_days, valid_from, expires_at, active, created_at
  FROM access_codes
 WHERE id = $1;`
	row, err := pickRow(ctx, r.pool, tx, q, id)
	if err != nil {
		return nil, err
	}
	ac, err := scanAccessCode(row)
	if err != nil {
		return nil, err
	}
	if err := r.loadRedemptions(ctx, tx, ac); err != nil {
		return nil, err
	}
	return ac, nil
}

// ConsumeUse is the usage cap's enforcement point: a conditional increment
// that two racing redemptions cannot both win on the last slot.
func (r *accessCodeRepo) ConsumeUse(ctx context.Context, tx repository.Tx, codeID string) (bool, error) {
	const q = `
UPDATE access_codes
   SET used_count = used_count + 1
 WHERE id = $1 AND used_count < max_uses;`
	tag, err := execSQL(ctx, r.pool, tx, q, codeID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidArgument), errors.Is(err, domain.ErrInvalidExecContext):
			return false, err
		default:
			return false, domain.ErrOperationFailed
		}
	}
	return tag.RowsAffected() == 1, nil
}

func (r *accessCodeRepo) AddRedemption(ctx context.Context, tx repository.Tx, codeID string, red model.Redemption) error {
	const q = `
INSERT INTO code_redemptions (code_id, user_id, redeemed_at, expires_at)
VALUES ($1, $2, $3, $4);`
	_, err := execSQL(ctx, r.pool, tx, q, codeID, red.UserID, red.RedeemedAt, red.ExpiresAt)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidArgument), errors.Is(err, domain.ErrInvalidExecContext):
			return err
		case isUniqueViolation(err):
			return domain.ErrAlreadyRedeemed
		default:
			return domain.ErrOperationFailed
		}
	}
	return nil
}

func (r *accessCodeRepo) HasRedemption(ctx context.Context, tx repository.Tx, codeID, userID string) (bool, error) {
	const q = `
SELECT EXISTS (
  SELECT 1 FROM code_redemptions WHERE code_id = $1 AND user_id = $2
);`
	row, err := pickRow(ctx, r.pool, tx, q, codeID, userID)
	if err != nil {
		return false, err
	}
	var exists bool
	if err := row.Scan(&exists); err != nil {
		return false, domain.ErrReadDatabaseRow
	}
	return exists, nil
}

func (r *accessCodeRepo) Deactivate(ctx context.Context, tx repository.Tx, id string) error {
	const q = `UPDATE access_codes SET active = FALSE WHERE id = $1;`
	tag, err := execSQL(ctx, r.pool, tx, q, id)
	if err != nil {
		return domain.ErrOperationFailed
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *accessCodeRepo) ListByAgency(ctx context.Context, tx repository.Tx, agencyID string, offset, limit int) ([]*model.AccessCode, error) {
	const q = `
SELECT id, code, code_type, agency_id, grants, target_id, max_uses, used_count,
       duration_days, valid_from, expires_at, active, created_at
  FROM access_codes
 WHERE agency_id = $1
 ORDER BY created_at DESC
 OFFSET $2 LIMIT $3;`
	rows, err := queryRows(ctx, r.pool, tx, q, agencyID, offset, limit)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidArgument), errors.Is(err, domain.ErrInvalidExecContext):
			return nil, err
		default:
			return nil, domain.ErrOperationFailed
		}
	}
	defer rows.Close()
	var out []*model.AccessCode
	for rows.Next() {
		ac, err := scanAccessCode(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, ac)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.ErrReadDatabaseRow
	}
	return out, nil
}

func (r *accessCodeRepo) loadRedemptions(ctx context.Context, tx repository.Tx, ac *model.AccessCode) error {
	const q = `
SELECT user_id, redeemed_at, expires_at
  FROM code_redemptions
 WHERE code_id = $1
 ORDER BY redeemed_at ASC;`
	rows, err := queryRows(ctx, r.pool, tx, q, ac.ID)
	if err != nil {
		return domain.ErrOperationFailed
	}
	defer rows.Close()
	for rows.Next() {
		var red model.Redemption
		if err := rows.Scan(&red.UserID, &red.RedeemedAt, &red.ExpiresAt); err != nil {
			return domain.ErrReadDatabaseRow
		}
		ac.Redemptions = append(ac.Redemptions, red)
	}
	if err := rows.Err(); err != nil {
		return domain.ErrReadDatabaseRow
	}
	return nil
}

func scanAccessCode(row pgx.Row) (*model.AccessCode, error) {
	var ac model.AccessCode
	err := row.Scan(
		&ac.ID, &ac.Code, &ac.Type, &ac.AgencyID, &ac.Grants, &ac.TargetID,
		&ac.MaxUses, &ac.UsedCount, &ac.DurationDays, &ac.ValidFrom, &ac.ExpiresAt,
		&ac.Active, &ac.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	return &ac, nil
}
