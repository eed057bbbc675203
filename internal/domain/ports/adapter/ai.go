package adapter

import (
	"context"

	"heritage-access-platform/internal/domain/model"
)

// AskQuery is one question for the Ask assistant, carrying the caller's
// resolved access tier. Prompt construction beyond the tier input belongs to
// the assistant service, not this platform.
type AskQuery struct {
	Question        string
	Language        string
	AccessTier      model.AccessTier
	MaxAnswerTokens int
}

// AskAnswer is the assistant's reply plus usage accounting.
type AskAnswer struct {
	Text         string
	Model        string
	TokensIn     int
	TokensOut    int
}

// AskAssistant is the port for an LLM-backed answer service.
type AskAssistant interface {
	Answer(ctx context.Context, q AskQuery) (*AskAnswer, error)
	// Name identifies the provider for logging and metrics.
	Name() string
}
