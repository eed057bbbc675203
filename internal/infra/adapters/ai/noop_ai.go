package ai

import (
	"context"
	"time"

	"heritage-access-platform/internal/domain/ports/adapter"
)

var _ adapter.AskAssistant = (*NoopAssistant)(nil)

// NoopAssistant is for local/dev runs without API keys.
type NoopAssistant struct{}

func NewNoopAssistant() *NoopAssistant { return &NoopAssistant{} }

func (a *NoopAssistant) Name() string { return "noop" }

func (a *NoopAssistant) Answer(ctx context.Context, q adapter.AskQuery) (*adapter.AskAnswer, error) {
	select {
	case <-time.After(100 * time.Millisecond):
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	return &adapter.AskAnswer{
		Text:  "This is a placeholder answer. Configure an AI provider to enable the assistant.",
		Model: "noop",
	}, nil
}
