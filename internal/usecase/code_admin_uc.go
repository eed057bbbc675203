package usecase

import (
	"context"
	"errors"
	"time"

	"heritage-access-platform/internal/domain"
	"heritage-access-platform/internal/domain/model"
	"heritage-access-platform/internal/domain/ports/repository"
	"heritage-access-platform/internal/infra/logging"
	"heritage-access-platform/internal/infra/metrics"

	"github.com/rs/zerolog"
)

// Compile-time check
var _ CodeAdminUseCase = (*codeAdminUC)(nil)

// BatchSpec describes one batch of codes an issuer wants generated.
type BatchSpec struct {
	Count        int
	Prefix       string
	Type         model.CodeType
	Grants       model.GrantAccess
	TargetID     *string
	MaxUses      int
	DurationDays int
	AgencyID     *string
	ValidFrom    *time.Time
	ExpiresAt    *time.Time
}

// CodeAdminUseCase is the issuer tooling surface: batch generation, listing
// and soft-deactivation. It never touches used_count.
type CodeAdminUseCase interface {
	GenerateBatch(ctx context.Context, spec BatchSpec) ([]*model.AccessCode, error)
	Deactivate(ctx context.Context, codeID string) error
	Lookup(ctx context.Context, rawCode string) (*model.AccessCode, error)
	ListByAgency(ctx context.Context, agencyID string, offset, limit int) ([]*model.AccessCode, error)
}

type codeAdminUC struct {
	codes repository.AccessCodeRepository
	log   *zerolog.Logger
}

func NewCodeAdminUseCase(codes repository.AccessCodeRepository, logger *zerolog.Logger) *codeAdminUC {
	return &codeAdminUC{codes: codes, log: logger}
}

const maxBatchSize = 1000

func (u *codeAdminUC) GenerateBatch(ctx context.Context, spec BatchSpec) ([]*model.AccessCode, error) {
	defer logging.TraceDuration(u.log, "CodeAdminUC.GenerateBatch")()

	if spec.Count <= 0 || spec.Count > maxBatchSize {
		return nil, domain.ErrInvalidArgument
	}

	out := make([]*model.AccessCode, 0, spec.Count)
	for len(out) < spec.Count {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		str, err := generateCodeString(spec.Prefix)
		if err != nil {
			return nil, err
		}
		ac, err := model.NewAccessCode(str, spec.Type, spec.Grants, spec.TargetID, spec.MaxUses, spec.DurationDays, spec.AgencyID, spec.ValidFrom, spec.ExpiresAt)
		if err != nil {
			return nil, err
		}
		if err := u.codes.Save(ctx, repository.NoTX, ac); err != nil {
			// The random space is large; a collision means we just draw again.
			if errors.Is(err, domain.ErrAlreadyExists) {
				continue
			}
			return nil, err
		}
		out = append(out, ac)
	}
	metrics.AddCodesIssued(string(spec.Type), len(out))
	u.log.Info().Int("count", len(out)).Str("code_type", string(spec.Type)).Msg("code batch generated")
	return out, nil
}

func (u *codeAdminUC) Deactivate(ctx context.Context, codeID string) error {
	defer logging.TraceDuration(u.log, "CodeAdminUC.Deactivate")()
	return u.codes.Deactivate(ctx, repository.NoTX, codeID)
}

func (u *codeAdminUC) Lookup(ctx context.Context, rawCode string) (*model.AccessCode, error) {
	code := model.NormalizeCode(rawCode)
	if code == "" {
		return nil, domain.ErrInvalidArgument
	}
	ac, err := u.codes.FindByCode(ctx, repository.NoTX, code)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrCodeNotFound
		}
		return nil, err
	}
	return ac, nil
}

func (u *codeAdminUC) ListByAgency(ctx context.Context, agencyID string, offset, limit int) ([]*model.AccessCode, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return u.codes.ListByAgency(ctx, repository.NoTX, agencyID, offset, limit)
}
