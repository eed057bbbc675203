package ai

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"heritage-access-platform/internal/domain"
	"heritage-access-platform/internal/domain/ports/adapter"
)

var _ adapter.AskAssistant = (*FallbackAssistant)(nil)

// FallbackAssistant tries each provider in order until one answers. Visitor
// questions should survive a single provider outage.
type FallbackAssistant struct {
	chain []adapter.AskAssistant
	log   *zerolog.Logger
}

func NewFallbackAssistant(log *zerolog.Logger, chain ...adapter.AskAssistant) (*FallbackAssistant, error) {
	if len(chain) == 0 {
		return nil, errors.New("fallback assistant needs at least one provider")
	}
	return &FallbackAssistant{chain: chain, log: log}, nil
}

func (f *FallbackAssistant) Name() string { return f.chain[0].Name() }

func (f *FallbackAssistant) Answer(ctx context.Context, q adapter.AskQuery) (*adapter.AskAnswer, error) {
	var lastErr error
	for _, a := range f.chain {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		ans, err := a.Answer(ctx, q)
		if err == nil {
			return ans, nil
		}
		lastErr = err
		f.log.Warn().Err(err).Str("provider", a.Name()).Msg("ask provider failed, falling back")
	}
	if lastErr != nil {
		return nil, lastErr
	}
	return nil, domain.ErrUnavailable
}
