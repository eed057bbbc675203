package usecase

import (
	"context"
	"errors"
	"sort"
	"time"

	"heritage-access-platform/internal/domain"
	"heritage-access-platform/internal/domain/model"
	"heritage-access-platform/internal/domain/ports/repository"
	"heritage-access-platform/internal/infra/logging"
	"heritage-access-platform/internal/infra/metrics"

	"github.com/rs/zerolog"
)

// Compile-time check
var _ EntitlementUseCase = (*entitlementUC)(nil)

// EntitlementUseCase is the single source of truth for "can this user see
// this content in full". Grant creation for the payment and sponsorship
// collaborators goes through the same contract as code redemption.
type EntitlementUseCase interface {
	Resolve(ctx context.Context, userID string, ct model.ContentType, contentID string) (model.EntitlementDecision, error)
	ResolveAt(ctx context.Context, userID string, ct model.ContentType, contentID string, now time.Time) (model.EntitlementDecision, error)
	// TierFor reports the user's effective global tier, for surfaces that
	// are not tied to one content item (e.g. the Ask assistant).
	TierFor(ctx context.Context, userID string) (model.AccessTier, error)
	// Grant records an entitlement from a collaborator flow (purchase,
	// subscription renewal, sponsorship, admin action).
	Grant(ctx context.Context, userID string, source model.SourceType, scope model.GrantScope, expiresAt *time.Time, agencyID *string) (*model.Entitlement, error)
	// VerifyCodeCovers checks that a redeemed code's grant extends to the
	// given content; a mismatch surfaces domain.ErrScopeMismatch.
	VerifyCodeCovers(ctx context.Context, codeID string, ct model.ContentType, contentID string) error
	ListByUser(ctx context.Context, userID string, offset, limit int) ([]*model.Entitlement, error)
	Revoke(ctx context.Context, entitlementID string) error
}

type entitlementUC struct {
	ents  repository.EntitlementRepository
	rules repository.ContentRuleRepository
	codes repository.AccessCodeRepository
	log   *zerolog.Logger
}

func NewEntitlementUseCase(
	ents repository.EntitlementRepository,
	rules repository.ContentRuleRepository,
	codes repository.AccessCodeRepository,
	logger *zerolog.Logger,
) *entitlementUC {
	return &entitlementUC{ents: ents, rules: rules, codes: codes, log: logger}
}

func (u *entitlementUC) Resolve(ctx context.Context, userID string, ct model.ContentType, contentID string) (model.EntitlementDecision, error) {
	return u.ResolveAt(ctx, userID, ct, contentID, time.Now())
}

// ResolveAt merges every applicable entitlement source into one verdict.
// Admin grants short-circuit; otherwise the precedence order
// subscription > tour_code > purchase > sponsored picks the reported source.
func (u *entitlementUC) ResolveAt(ctx context.Context, userID string, ct model.ContentType, contentID string, now time.Time) (model.EntitlementDecision, error) {
	defer logging.TraceDuration(u.log, "EntitlementUC.Resolve")()

	rule, err := u.ruleFor(ctx, ct, contentID)
	if err != nil {
		return model.EntitlementDecision{}, err
	}

	applicable, err := u.applicableEntitlements(ctx, userID, ct, contentID, now)
	if err != nil {
		return model.EntitlementDecision{}, err
	}

	if winner := pickWinner(applicable); winner != nil {
		return model.DecisionFullAccess(winner.Source, rule.Tier, winner.AgencyID), nil
	}

	if rule.Tier == model.TierFree {
		return model.DecisionFreeContent(), nil
	}
	return model.DecisionDenied(rule.Tier), nil
}

func (u *entitlementUC) TierFor(ctx context.Context, userID string) (model.AccessTier, error) {
	if userID == "" {
		return model.TierFree, nil
	}
	now := time.Now()
	ents, err := u.ents.FindActiveByUser(ctx, repository.NoTX, userID)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return "", err
	}
	for _, e := range ents {
		if e.ActiveAt(now) && e.Scope.All {
			return model.TierPremium, nil
		}
	}
	return model.TierFree, nil
}

func (u *entitlementUC) Grant(ctx context.Context, userID string, source model.SourceType, scope model.GrantScope, expiresAt *time.Time, agencyID *string) (*model.Entitlement, error) {
	defer logging.TraceDuration(u.log, "EntitlementUC.Grant")()

	switch source {
	case model.SourceSubscription, model.SourcePurchase, model.SourceSponsored, model.SourceAdminGrant:
	default:
		// Code-backed grants come from the redemption engine, which records
		// the origin code; collaborators may not forge them.
		return nil, domain.ErrInvalidArgument
	}
	ent, err := model.NewEntitlement(userID, source, scope, expiresAt)
	if err != nil {
		return nil, err
	}
	ent.AgencyID = agencyID
	if err := u.ents.Save(ctx, repository.NoTX, ent); err != nil {
		return nil, err
	}
	metrics.IncEntitlementGranted(source)
	u.log.Info().Str("user_id", userID).Str("source", string(source)).Msg("entitlement granted")
	return ent, nil
}

func (u *entitlementUC) VerifyCodeCovers(ctx context.Context, codeID string, ct model.ContentType, contentID string) error {
	ac, err := u.codes.FindByID(ctx, repository.NoTX, codeID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrCodeNotFound
		}
		return err
	}
	scope, err := ac.Scope()
	if err != nil {
		return err
	}
	if !scope.Covers(ct, contentID) {
		return domain.ErrScopeMismatch
	}
	return nil
}

func (u *entitlementUC) ListByUser(ctx context.Context, userID string, offset, limit int) ([]*model.Entitlement, error) {
	return u.ents.FindByUser(ctx, repository.NoTX, userID, offset, limit)
}

func (u *entitlementUC) Revoke(ctx context.Context, entitlementID string) error {
	return u.ents.Revoke(ctx, repository.NoTX, entitlementID)
}

// ruleFor falls back to free when editors have not configured gating for the
// item or its type: gating is opt-in.
func (u *entitlementUC) ruleFor(ctx context.Context, ct model.ContentType, contentID string) (*model.ContentAccessRule, error) {
	rule, err := u.rules.FindFor(ctx, repository.NoTX, ct, contentID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return &model.ContentAccessRule{
				ContentType: ct,
				ContentID:   contentID,
				Tier:        model.TierFree,
				Sensitivity: model.SensitivityStandard,
			}, nil
		}
		return nil, err
	}
	return rule, nil
}

func (u *entitlementUC) applicableEntitlements(ctx context.Context, userID string, ct model.ContentType, contentID string, now time.Time) ([]*model.Entitlement, error) {
	if userID == "" {
		return nil, nil // anonymous request
	}
	ents, err := u.ents.FindActiveByUser(ctx, repository.NoTX, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	out := ents[:0]
	for _, e := range ents {
		if e.ActiveAt(now) && e.Scope.Covers(ct, contentID) {
			out = append(out, e)
		}
	}
	return out, nil
}

func pickWinner(ents []*model.Entitlement) *model.Entitlement {
	if len(ents) == 0 {
		return nil
	}
	sorted := make([]*model.Entitlement, len(ents))
	copy(sorted, ents)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Source.Precedence() < sorted[j].Source.Precedence()
	})
	return sorted[0]
}
