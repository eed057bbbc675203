package ai

import (
	"context"
	"errors"

	"google.golang.org/genai"

	"heritage-access-platform/internal/domain/ports/adapter"
)

var _ adapter.AskAssistant = (*GeminiAssistant)(nil)

type GeminiAssistant struct {
	client *genai.Client
	model  string
}

func NewGeminiAssistant(ctx context.Context, apiKey, model string) (*GeminiAssistant, error) {
	if apiKey == "" {
		return nil, errors.New("gemini: empty api key")
	}
	if model == "" {
		model = "gemini-2.0-flash"
	}
	c, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, err
	}
	return &GeminiAssistant{client: c, model: model}, nil
}

func (g *GeminiAssistant) Name() string { return "gemini" }

func (g *GeminiAssistant) Answer(ctx context.Context, q adapter.AskQuery) (*adapter.AskAnswer, error) {
	cfg := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: systemPrompt(q)}},
		},
	}
	if q.MaxAnswerTokens > 0 {
		cfg.MaxOutputTokens = int32(q.MaxAnswerTokens)
	}

	contents := []*genai.Content{
		{Role: genai.RoleUser, Parts: []*genai.Part{{Text: q.Question}}},
	}
	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, cfg)
	if err != nil {
		return nil, err
	}

	text := ""
	if resp != nil && len(resp.Candidates) > 0 && resp.Candidates[0].Content != nil && len(resp.Candidates[0].Content.Parts) > 0 {
		text = resp.Candidates[0].Content.Parts[0].Text
	}
	if text == "" {
		return nil, errors.New("gemini: empty candidate")
	}

	ans := &adapter.AskAnswer{Text: text, Model: g.model}
	if resp.UsageMetadata != nil {
		ans.TokensIn = int(resp.UsageMetadata.PromptTokenCount)
		ans.TokensOut = int(resp.UsageMetadata.CandidatesTokenCount)
	}
	return ans, nil
}
