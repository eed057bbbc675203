package ai

import (
	"context"
	"errors"
	"fmt"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"

	"heritage-access-platform/internal/domain/ports/adapter"
)

// Compile-time assurance this adapter satisfies the port
var _ adapter.AskAssistant = (*OpenAIAssistant)(nil)

// OpenAIAssistant answers visitor questions through the Chat Completions API.
type OpenAIAssistant struct {
	client openai.Client
	model  string
}

func NewOpenAIAssistant(apiKey, model string) (*OpenAIAssistant, error) {
	if apiKey == "" {
		return nil, errors.New("openai api key empty")
	}
	if model == "" {
		model = "gpt-4o-mini"
	}
	return &OpenAIAssistant{
		client: openai.NewClient(option.WithAPIKey(apiKey)),
		model:  model,
	}, nil
}

func (o *OpenAIAssistant) Name() string { return "openai" }

func (o *OpenAIAssistant) Answer(ctx context.Context, q adapter.AskQuery) (*adapter.AskAnswer, error) {
	params := openai.ChatCompletionNewParams{
		Model: openai.ChatModel(o.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt(q)),
			openai.UserMessage(q.Question),
		},
	}
	if q.MaxAnswerTokens > 0 {
		params.MaxTokens = openai.Int(int64(q.MaxAnswerTokens))
	}

	resp, err := o.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, err
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return nil, errors.New("openai: no choice content")
	}
	return &adapter.AskAnswer{
		Text:      resp.Choices[0].Message.Content,
		Model:     o.model,
		TokensIn:  int(resp.Usage.PromptTokens),
		TokensOut: int(resp.Usage.CompletionTokens),
	}, nil
}

// systemPrompt frames the assistant as a heritage guide. The access tier
// shapes depth, never factual accuracy.
func systemPrompt(q adapter.AskQuery) string {
	base := "You are a knowledgeable, respectful guide to Rwandan history, memorial sites and cultural heritage. " +
		"Answer carefully and with sensitivity; these topics include genocide remembrance."
	if q.Language != "" && q.Language != "en" {
		base += fmt.Sprintf(" Answer in the language with code %q.", q.Language)
	}
	return base
}
