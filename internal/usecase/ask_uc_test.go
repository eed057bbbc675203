//go:build !integration

package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"heritage-access-platform/internal/config"
	"heritage-access-platform/internal/domain"
	"heritage-access-platform/internal/domain/model"
	"heritage-access-platform/internal/domain/ports/adapter"
	"heritage-access-platform/internal/usecase"
)

type askDeps struct {
	ents      *MockEntitlementRepo
	assistant *MockAssistant
	uc        usecase.AskUseCase
}

func newAskDeps(t *testing.T) *askDeps {
	t.Helper()
	d := &askDeps{
		ents:      NewMockEntitlementRepo(),
		assistant: &MockAssistant{},
	}
	resolver := usecase.NewEntitlementUseCase(d.ents, NewMockContentRuleRepo(), NewMockAccessCodeRepo(), newTestLogger())
	cfg := config.AIConfig{FreeTierTokens: 256, PremiumTierTokens: 1024, MaxQuestionTokens: 512}
	d.uc = usecase.NewAskUseCase(resolver, d.assistant, cfg, newTestLogger())
	return d
}

func TestAskUC_Ask_TierBudget(t *testing.T) {
	t.Run("free tier gets the reduced budget", func(t *testing.T) {
		d := newAskDeps(t)
		ans, err := d.uc.Ask(context.Background(), "visitor-1", "What happened at Nyamata?", "en")
		if err != nil {
			t.Fatalf("Ask: %v", err)
		}
		if ans.Text == "" {
			t.Error("empty answer")
		}
		q := d.assistant.Queries[0]
		if q.AccessTier != model.TierFree || q.MaxAnswerTokens != 256 {
			t.Errorf("query = %+v, want free tier with 256 tokens", q)
		}
		if q.Language != "en" {
			t.Errorf("language = %q", q.Language)
		}
	})

	t.Run("global entitlement gets the full budget", func(t *testing.T) {
		d := newAskDeps(t)
		d.ents.Seed(grant("visitor-1", model.SourceSubscription, model.ScopeAll(), timePtr(time.Now().Add(time.Hour))))

		if _, err := d.uc.Ask(context.Background(), "visitor-1", "Tell me about the memorial sites.", "rw"); err != nil {
			t.Fatalf("Ask: %v", err)
		}
		q := d.assistant.Queries[0]
		if q.AccessTier != model.TierPremium || q.MaxAnswerTokens != 1024 {
			t.Errorf("query = %+v, want premium tier with 1024 tokens", q)
		}
	})

	t.Run("anonymous is free tier", func(t *testing.T) {
		d := newAskDeps(t)
		if _, err := d.uc.Ask(context.Background(), "", "Where is the Kigali Genocide Memorial?", "en"); err != nil {
			t.Fatalf("Ask: %v", err)
		}
		if q := d.assistant.Queries[0]; q.AccessTier != model.TierFree {
			t.Errorf("tier = %q, want free", q.AccessTier)
		}
	})
}

func TestAskUC_Ask_EmptyQuestion(t *testing.T) {
	d := newAskDeps(t)
	if _, err := d.uc.Ask(context.Background(), "visitor-1", "", "en"); !errors.Is(err, domain.ErrInvalidArgument) {
		t.Fatalf("err = %v, want invalid argument", err)
	}
	if len(d.assistant.Queries) != 0 {
		t.Error("assistant called for an empty question")
	}
}

func TestAskUC_Ask_AssistantFailure(t *testing.T) {
	d := newAskDeps(t)
	wantErr := errors.New("upstream down")
	d.assistant.AnswerFunc = func(ctx context.Context, q adapter.AskQuery) (*adapter.AskAnswer, error) {
		return nil, wantErr
	}
	if _, err := d.uc.Ask(context.Background(), "visitor-1", "question", "en"); !errors.Is(err, wantErr) {
		t.Fatalf("err = %v, want the assistant error", err)
	}
}
