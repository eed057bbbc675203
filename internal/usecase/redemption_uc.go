package usecase

import (
	"context"
	"errors"
	"time"

	"heritage-access-platform/internal/config"
	"heritage-access-platform/internal/domain"
	"heritage-access-platform/internal/domain/model"
	"heritage-access-platform/internal/domain/ports/repository"
	"heritage-access-platform/internal/infra/logging"
	"heritage-access-platform/internal/infra/metrics"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"
)

// Compile-time check
var _ RedemptionUseCase = (*redemptionUC)(nil)

// RedemptionResult is the successful outcome of consuming a code: the durable
// grant plus the post-redemption state of the code itself.
type RedemptionResult struct {
	Entitlement     *model.Entitlement
	Code            *model.AccessCode
	EffectiveAccess model.GrantAccess
	ExpiresAt       time.Time
}

// RedemptionUseCase validates and atomically consumes access codes.
type RedemptionUseCase interface {
	Redeem(ctx context.Context, rawCode, userID string) (*RedemptionResult, error)
	// RedeemAt is Redeem with an explicit clock; validation windows and the
	// grant expiry are computed against `now`.
	RedeemAt(ctx context.Context, rawCode, userID string, now time.Time) (*RedemptionResult, error)
}

type redemptionUC struct {
	codes    repository.AccessCodeRepository
	ents     repository.EntitlementRepository
	users    repository.UserRepository
	payments repository.PaymentRepository
	tm       repository.TransactionManager
	retries  int
	backoff  time.Duration
	log      *zerolog.Logger
}

func NewRedemptionUseCase(
	codes repository.AccessCodeRepository,
	ents repository.EntitlementRepository,
	users repository.UserRepository,
	payments repository.PaymentRepository,
	tm repository.TransactionManager,
	limits config.LimitsConfig,
	logger *zerolog.Logger,
) *redemptionUC {
	retries := limits.ConflictRetries
	if retries <= 0 {
		retries = 3
	}
	backoff := limits.ConflictRetryBackoff
	if backoff <= 0 {
		backoff = 25 * time.Millisecond
	}
	return &redemptionUC{
		codes:    codes,
		ents:     ents,
		users:    users,
		payments: payments,
		tm:       tm,
		retries:  retries,
		backoff:  backoff,
		log:      logger,
	}
}

func (u *redemptionUC) Redeem(ctx context.Context, rawCode, userID string) (*RedemptionResult, error) {
	return u.RedeemAt(ctx, rawCode, userID, time.Now())
}

// RedeemAt runs the full validate-then-consume sequence inside one
// transaction so a crash can never leave used_count incremented without its
// redemption record. ErrPersistenceConflict is retried a bounded number of
// times; every other failure is terminal for the request.
func (u *redemptionUC) RedeemAt(ctx context.Context, rawCode, userID string, now time.Time) (*RedemptionResult, error) {
	defer logging.TraceDuration(u.log, "RedemptionUC.Redeem")()

	code := model.NormalizeCode(rawCode)
	if code == "" || userID == "" {
		return nil, domain.ErrInvalidArgument
	}

	var res *RedemptionResult
	var err error
	for attempt := 0; ; attempt++ {
		res, err = u.redeemOnce(ctx, code, userID, now)
		if !errors.Is(err, domain.ErrPersistenceConflict) || attempt >= u.retries {
			break
		}
		metrics.IncRedemptionConflictRetry()
		u.log.Debug().Str("code", logging.Redact(code, false)).Int("attempt", attempt+1).
			Msg("redemption conflict, retrying")
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(u.backoff << uint(attempt)):
		}
	}
	if err != nil {
		metrics.IncRedemption(domain.Kind(err))
		return nil, err
	}
	metrics.IncRedemption("success")

	// Convenience display tier for full/day-pass grants. Cache only; the
	// resolver never consults it for authorization, so failure here is
	// logged and swallowed.
	if res.EffectiveAccess == model.GrantFull || res.EffectiveAccess == model.GrantDayPass {
		if uerr := u.users.UpdateDisplayTier(ctx, repository.NoTX, userID, model.TierPremium); uerr != nil {
			u.log.Warn().Err(uerr).Str("user_id", userID).Msg("display tier refresh failed")
		}
	}
	return res, nil
}

func (u *redemptionUC) redeemOnce(ctx context.Context, code, userID string, now time.Time) (*RedemptionResult, error) {
	var res *RedemptionResult
	txOpts := pgx.TxOptions{IsoLevel: pgx.ReadCommitted}
	err := u.tm.WithTx(ctx, txOpts, func(ctx context.Context, tx repository.Tx) error {
		ac, err := u.codes.FindByCode(ctx, tx, code)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return domain.ErrCodeNotFound
			}
			return err
		}

		if err := ac.CanRedeemAt(userID, now); err != nil {
			return err
		}

		// Conditional increment is the cap's real enforcement: two requests
		// racing on the last slot cannot both pass.
		ok, err := u.codes.ConsumeUse(ctx, tx, ac.ID)
		if err != nil {
			return err
		}
		if !ok {
			return domain.ErrUsageLimitReached
		}

		red := model.Redemption{
			UserID:     userID,
			RedeemedAt: now,
			ExpiresAt:  ac.GrantExpiry(now),
		}
		if err := u.codes.AddRedemption(ctx, tx, ac.ID, red); err != nil {
			return err
		}

		scope, err := ac.Scope()
		if err != nil {
			return err
		}
		ent, err := model.NewEntitlement(userID, ac.SourceType(), scope, &red.ExpiresAt)
		if err != nil {
			return err
		}
		ent.OriginCodeID = &ac.ID
		ent.AgencyID = ac.AgencyID
		if err := u.ents.Save(ctx, tx, ent); err != nil {
			return err
		}

		// Zero-cost audit record so code grants reconcile with paid flows in
		// revenue reporting.
		pay := &model.Payment{
			ID:            uuid.NewString(),
			UserID:        userID,
			Provider:      "access_code",
			AmountCents:   0,
			Currency:      "USD",
			Status:        model.PaymentStatusSucceeded,
			Description:   "access code redemption",
			OriginCodeID:  &ac.ID,
			EntitlementID: &ent.ID,
			CreatedAt:     now,
			PaidAt:        &now,
		}
		if err := u.payments.Save(ctx, tx, pay); err != nil {
			return err
		}

		ac.UsedCount++
		ac.Redemptions = append(ac.Redemptions, red)
		res = &RedemptionResult{
			Entitlement:     ent,
			Code:            ac,
			EffectiveAccess: ac.Grants,
			ExpiresAt:       red.ExpiresAt,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	metrics.IncEntitlementGranted(res.Entitlement.Source)
	return res, nil
}
