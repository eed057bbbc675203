package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"heritage-access-platform/internal/config"
	"heritage-access-platform/internal/domain"
	"heritage-access-platform/internal/domain/model"
	"heritage-access-platform/internal/domain/ports/repository"
	"heritage-access-platform/internal/infra/logging"
	"heritage-access-platform/internal/infra/metrics"

	"github.com/rs/zerolog"
)

// Compile-time check
var _ GateUseCase = (*gateUC)(nil)

// GateUseCase shapes content documents according to an access verdict. This
// is the security-relevant boundary: restricted fields are copied over only
// on an explicit full-access branch, never by default.
type GateUseCase interface {
	// Gate applies a verdict to a document. Pure; no I/O.
	Gate(doc *model.ContentDocument, rule *model.ContentAccessRule, decision model.EntitlementDecision) *model.GatedContentDoc
	// View composes rule lookup, resolution and gating for one request.
	View(ctx context.Context, userID string, ct model.ContentType, contentID string) (*model.GatedContentDoc, error)
	ViewAt(ctx context.Context, userID string, ct model.ContentType, contentID string, now time.Time) (*model.GatedContentDoc, error)
}

type gateUC struct {
	content  repository.ContentRepository
	rules    repository.ContentRuleRepository
	resolver EntitlementUseCase
	wordsPerSecond float64
	log      *zerolog.Logger
}

func NewGateUseCase(
	content repository.ContentRepository,
	rules repository.ContentRuleRepository,
	resolver EntitlementUseCase,
	gateCfg config.GateConfig,
	logger *zerolog.Logger,
) *gateUC {
	wps := gateCfg.WordsPerSecond
	if wps <= 0 {
		wps = 2.5
	}
	return &gateUC{content: content, rules: rules, resolver: resolver, wordsPerSecond: wps, log: logger}
}

func (u *gateUC) View(ctx context.Context, userID string, ct model.ContentType, contentID string) (*model.GatedContentDoc, error) {
	return u.ViewAt(ctx, userID, ct, contentID, time.Now())
}

func (u *gateUC) ViewAt(ctx context.Context, userID string, ct model.ContentType, contentID string, now time.Time) (*model.GatedContentDoc, error) {
	defer logging.TraceDuration(u.log, "GateUC.View")()

	doc, err := u.content.FindByID(ctx, repository.NoTX, ct, contentID)
	if err != nil {
		return nil, err
	}
	rule, err := u.rules.FindFor(ctx, repository.NoTX, ct, contentID)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		rule = &model.ContentAccessRule{ContentType: ct, ContentID: contentID, Tier: model.TierFree, Sensitivity: model.SensitivityStandard}
	}
	decision, err := u.resolver.ResolveAt(ctx, userID, ct, contentID, now)
	if err != nil {
		return nil, err
	}
	return u.Gate(doc, rule, decision), nil
}

// Gate never copies body, audio or video fields on the restricted branch.
// The sensitivity warning is orthogonal to the tier and set on both branches.
func (u *gateUC) Gate(doc *model.ContentDocument, rule *model.ContentAccessRule, decision model.EntitlementDecision) *model.GatedContentDoc {
	out := &model.GatedContentDoc{
		ID:           doc.ID,
		Type:         doc.Type,
		Title:        doc.Title,
		Slug:         doc.Slug,
		Excerpt:      doc.Excerpt,
		HeroImageURL: doc.HeroImageURL,
		Category:     doc.Category,
		Location:     doc.Location,

		ContentWarning: rule.Sensitivity == model.SensitivityHighlySensitive,
		Access:         decision,
	}

	metrics.IncGateDecision(string(doc.Type), decision.HasFullAccess)

	if decision.HasFullAccess {
		out.Body = doc.Body
		out.AudioNarrationURL = doc.AudioNarrationURL
		out.VideoURL = doc.VideoURL
		return out
	}

	out.Locked = true
	out.PriceCents = rule.PriceCents
	if teaserByPrefix(doc.Type) {
		out.Body = teaserPrefix(doc.Body, rule.TeaserDurationSeconds, u.wordsPerSecond)
	}
	return out
}

// Text-first types show a truncated prefix; media-first types (survivor
// testimony, VR/AR experiences) lock entirely rather than risk a partial
// reveal.
func teaserByPrefix(ct model.ContentType) bool {
	switch ct {
	case model.ContentTypeStory, model.ContentTypeMuseum, model.ContentTypeRoute:
		return true
	default:
		return false
	}
}

// teaserPrefix cuts body text to the word count a reader would cover in the
// rule's teaser duration. The prefix is always a strict subset of the body:
// a teaser that reproduced a short body in full would defeat the gate.
func teaserPrefix(body string, teaserSeconds int, wordsPerSecond float64) string {
	if body == "" || teaserSeconds <= 0 {
		return ""
	}
	words := strings.Fields(body)
	max := int(float64(teaserSeconds) * wordsPerSecond)
	if max >= len(words) {
		max = len(words) - 1
	}
	if max <= 0 {
		return ""
	}
	return strings.Join(words[:max], " ") + "…"
}
