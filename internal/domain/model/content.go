package model

type ContentType string

const (
	ContentTypeStory      ContentType = "story"
	ContentTypeMuseum     ContentType = "museum"
	ContentTypeRoute      ContentType = "route"
	ContentTypeTestimony  ContentType = "testimony"
	ContentTypeExperience ContentType = "experience" // VR/AR
)

// AccessTier is the paywall classification of a content item.
type AccessTier string

const (
	TierFree      AccessTier = "free"
	TierPremium   AccessTier = "premium"
	TierSponsored AccessTier = "sponsored"
)

// SensitivityLevel is an editorial classification independent of the paywall
// tier. It governs content-warning display, never access.
type SensitivityLevel string

const (
	SensitivityStandard        SensitivityLevel = "standard"
	SensitivitySensitive       SensitivityLevel = "sensitive"
	SensitivityHighlySensitive SensitivityLevel = "highly_sensitive"
)

// ContentAccessRule is the editor-owned gating input for one content item, or
// the type-wide default when ContentID is empty. Read-only for this service.
type ContentAccessRule struct {
	ContentType           ContentType
	ContentID             string
	Tier                  AccessTier
	Sensitivity           SensitivityLevel
	PriceCents            *int64
	TeaserDurationSeconds int
}

// ContentDocument is the raw document supplied by the content-schema layer.
type ContentDocument struct {
	ID           string      `json:"id"`
	Type         ContentType `json:"type"`
	Title        string      `json:"title"`
	Slug         string      `json:"slug"`
	Excerpt      string      `json:"excerpt"`
	HeroImageURL string      `json:"heroImageUrl"`
	Category     string      `json:"category"`
	Location     string      `json:"location"`
	Body         string      `json:"body"`
	AudioNarrationURL string `json:"audioNarrationUrl"`
	VideoURL          string `json:"videoUrl"`
}

// GatedContentDoc is the only shape this service ever returns for content.
// Restricted fields are separate from browsing fields so a teaser cannot
// silently over-include them.
type GatedContentDoc struct {
	ID           string      `json:"id"`
	Type         ContentType `json:"type"`
	Title        string      `json:"title"`
	Slug         string      `json:"slug"`
	Excerpt      string      `json:"excerpt"`
	HeroImageURL string      `json:"heroImageUrl"`
	Category     string      `json:"category"`
	Location     string      `json:"location"`

	Locked         bool   `json:"locked"`
	ContentWarning bool   `json:"contentWarning"`
	PriceCents     *int64 `json:"priceCents,omitempty"`

	Body              string `json:"body,omitempty"`
	AudioNarrationURL string `json:"audioNarrationUrl,omitempty"`
	VideoURL          string `json:"videoUrl,omitempty"`

	Access EntitlementDecision `json:"access"`
}
