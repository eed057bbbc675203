package usecase

import (
	"context"

	"heritage-access-platform/internal/config"
	"heritage-access-platform/internal/domain"
	"heritage-access-platform/internal/domain/model"
	"heritage-access-platform/internal/domain/ports/adapter"
	"heritage-access-platform/internal/infra/logging"
	"heritage-access-platform/internal/infra/metrics"

	"github.com/pkoukk/tiktoken-go"
	"github.com/rs/zerolog"
)

// Compile-time check
var _ AskUseCase = (*askUC)(nil)

// AskUseCase fronts the Ask assistant. The caller's resolved access tier is
// the only gating input passed downstream: free-tier users get a reduced
// answer budget, full-access users get the full one.
type AskUseCase interface {
	Ask(ctx context.Context, userID, question, language string) (*adapter.AskAnswer, error)
}

type askUC struct {
	resolver  EntitlementUseCase
	assistant adapter.AskAssistant
	cfg       config.AIConfig
	log       *zerolog.Logger
}

func NewAskUseCase(resolver EntitlementUseCase, assistant adapter.AskAssistant, cfg config.AIConfig, logger *zerolog.Logger) *askUC {
	return &askUC{resolver: resolver, assistant: assistant, cfg: cfg, log: logger}
}

func (u *askUC) Ask(ctx context.Context, userID, question, language string) (*adapter.AskAnswer, error) {
	defer logging.TraceDuration(u.log, "AskUC.Ask")()

	if question == "" {
		return nil, domain.ErrInvalidArgument
	}
	if n, err := countTokens(question); err == nil && n > u.cfg.MaxQuestionTokens {
		return nil, domain.ErrInvalidArgument
	}

	tier, err := u.resolver.TierFor(ctx, userID)
	if err != nil {
		return nil, err
	}

	budget := u.cfg.FreeTierTokens
	if tier == model.TierPremium {
		budget = u.cfg.PremiumTierTokens
	}

	ans, err := u.assistant.Answer(ctx, adapter.AskQuery{
		Question:        question,
		Language:        language,
		AccessTier:      tier,
		MaxAnswerTokens: budget,
	})
	if err != nil {
		metrics.IncAskRequest(string(tier), "error")
		return nil, err
	}
	metrics.IncAskRequest(string(tier), "ok")
	metrics.AddAskTokens(u.assistant.Name(), ans.TokensIn, ans.TokensOut)
	return ans, nil
}

// countTokens estimates prompt size with the cl100k encoding; an encoder
// error falls back to accepting the question (length is a guard, not a gate).
func countTokens(s string) (int, error) {
	enc, err := tiktoken.GetEncoding("cl100k_base")
	if err != nil {
		return 0, err
	}
	return len(enc.Encode(s, nil, nil)), nil
}
