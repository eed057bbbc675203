package model

import (
	"strings"
	"time"

	"heritage-access-platform/internal/domain"

	"github.com/google/uuid"
)

type CodeType string

const (
	CodeTypeTourGroup CodeType = "tour_group"
	CodeTypeSingleUse CodeType = "single_use"
	CodeTypePromo     CodeType = "promo"
	CodeTypeQR        CodeType = "qr_code"
)

// GrantAccess is what a code unlocks once redeemed.
type GrantAccess string

const (
	GrantFull    GrantAccess = "full"
	GrantDayPass GrantAccess = "day_pass"
	GrantRoute   GrantAccess = "route"
	GrantMuseum  GrantAccess = "museum"
	GrantStory   GrantAccess = "story"
)

// AccessCode is a shareable string redeemable for an entitlement. Codes are
// stored upper-cased; usage state is mutated only through the redemption flow.
// Once a code has any redemption it is never physically deleted, only
// deactivated.
type AccessCode struct {
	ID           string
	Code         string
	Type         CodeType
	AgencyID     *string // issuing agency; nil for platform-issued codes
	Grants       GrantAccess
	TargetID     *string // content id for route/museum/story grants
	MaxUses      int
	UsedCount    int
	DurationDays int // grant length once redeemed
	ValidFrom    *time.Time
	ExpiresAt    *time.Time // the code's own validity window, not the grant's
	Active       bool
	CreatedAt    time.Time
	Redemptions  []Redemption
}

// Redemption is an immutable record of one user consuming one code.
type Redemption struct {
	UserID     string
	RedeemedAt time.Time
	ExpiresAt  time.Time
}

// NormalizeCode canonicalizes user input for lookup and storage.
func NormalizeCode(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

func NewAccessCode(code string, typ CodeType, grants GrantAccess, targetID *string, maxUses, durationDays int, agencyID *string, validFrom, expiresAt *time.Time) (*AccessCode, error) {
	code = NormalizeCode(code)
	if code == "" || maxUses <= 0 || durationDays <= 0 {
		return nil, domain.ErrInvalidArgument
	}
	switch grants {
	case GrantFull, GrantDayPass:
		// no target
	case GrantRoute, GrantMuseum, GrantStory:
		if targetID == nil || *targetID == "" {
			return nil, domain.ErrInvalidArgument
		}
	default:
		return nil, domain.ErrInvalidArgument
	}
	return &AccessCode{
		ID:           uuid.NewString(),
		Code:         code,
		Type:         typ,
		AgencyID:     agencyID,
		Grants:       grants,
		TargetID:     targetID,
		MaxUses:      maxUses,
		UsedCount:    0,
		DurationDays: durationDays,
		ValidFrom:    validFrom,
		ExpiresAt:    expiresAt,
		Active:       true,
		CreatedAt:    time.Now(),
	}, nil
}

// Scope derives the entitlement scope strictly from the code's explicit grant
// target. A route-scoped code never widens to other content, whatever its
// codeType suggests.
func (c *AccessCode) Scope() (GrantScope, error) {
	switch c.Grants {
	case GrantFull, GrantDayPass:
		return ScopeAll(), nil
	case GrantRoute:
		return scopeForTarget(ContentTypeRoute, c.TargetID)
	case GrantMuseum:
		return scopeForTarget(ContentTypeMuseum, c.TargetID)
	case GrantStory:
		return scopeForTarget(ContentTypeStory, c.TargetID)
	default:
		return GrantScope{}, domain.ErrInvalidArgument
	}
}

func scopeForTarget(ct ContentType, targetID *string) (GrantScope, error) {
	if targetID == nil || *targetID == "" {
		return GrantScope{}, domain.ErrInvalidArgument
	}
	return ScopeFor(ct, *targetID), nil
}

// SourceType maps the code type to the entitlement source recorded on
// redemption. Promo codes present to the user as sponsored access; every
// other code type is a tour-code grant.
func (c *AccessCode) SourceType() SourceType {
	if c.Type == CodeTypePromo {
		return SourceSponsored
	}
	return SourceTourCode
}

// CanRedeemAt runs the redemption validation sequence for a user, in the
// order callers surface errors: deactivated, expired, not yet active, usage
// limit, already redeemed. The boundary instant of the expiry window rejects.
func (c *AccessCode) CanRedeemAt(userID string, now time.Time) error {
	if !c.Active {
		return domain.ErrCodeDeactivated
	}
	if c.ExpiresAt != nil && !now.Before(*c.ExpiresAt) {
		return domain.ErrCodeExpired
	}
	if c.ValidFrom != nil && now.Before(*c.ValidFrom) {
		return domain.ErrCodeNotYetActive
	}
	if c.UsedCount >= c.MaxUses {
		return domain.ErrUsageLimitReached
	}
	if c.HasRedeemed(userID) {
		return domain.ErrAlreadyRedeemed
	}
	return nil
}

func (c *AccessCode) HasRedeemed(userID string) bool {
	for _, r := range c.Redemptions {
		if r.UserID == userID {
			return true
		}
	}
	return false
}

func (c *AccessCode) RemainingUses() int {
	if n := c.MaxUses - c.UsedCount; n > 0 {
		return n
	}
	return 0
}

// GrantExpiry computes the entitlement expiry for a redemption at `now`.
func (c *AccessCode) GrantExpiry(now time.Time) time.Time {
	return now.Add(time.Duration(c.DurationDays) * 24 * time.Hour)
}
