package model

import (
	"crypto/rand"
	"time"

	"heritage-access-platform/internal/domain"

	"github.com/oklog/ulid/v2"
)

// SourceType identifies how an entitlement was granted.
type SourceType string

const (
	SourceSubscription SourceType = "subscription"
	SourcePurchase     SourceType = "purchase"
	SourceTourCode     SourceType = "tour_code"
	SourceSponsored    SourceType = "sponsored"
	SourceAdminGrant   SourceType = "admin_grant"
)

// Precedence orders granting sources when several apply to the same content.
// Admin overrides everything; a paid subscription presents as the reason for
// access even when an unused tour code also covers it.
func (s SourceType) Precedence() int {
	switch s {
	case SourceAdminGrant:
		return 0
	case SourceSubscription:
		return 1
	case SourceTourCode:
		return 2
	case SourcePurchase:
		return 3
	case SourceSponsored:
		return 4
	default:
		return 100
	}
}

// GrantScope is the closed set of content an entitlement applies to: all
// gated content, or exactly one item.
type GrantScope struct {
	All         bool        `json:"all"`
	ContentType ContentType `json:"contentType,omitempty"`
	ContentID   string      `json:"contentId,omitempty"`
}

func ScopeAll() GrantScope { return GrantScope{All: true} }

func ScopeFor(ct ContentType, contentID string) GrantScope {
	return GrantScope{ContentType: ct, ContentID: contentID}
}

// Covers reports whether the scope applies to the given content item.
func (s GrantScope) Covers(ct ContentType, contentID string) bool {
	if s.All {
		return true
	}
	return s.ContentType == ct && s.ContentID == contentID
}

type EntitlementStatus string

const (
	EntitlementStatusActive  EntitlementStatus = "active"
	EntitlementStatusExpired EntitlementStatus = "expired" // set by the sweeper, audit only
	EntitlementStatusRevoked EntitlementStatus = "revoked"
)

// Entitlement is one durable grant of access. Rows are written once and never
// mutated by resolution; expired rows are kept for audit and excluded by a
// time comparison.
type Entitlement struct {
	ID           string
	UserID       string
	Source       SourceType
	Scope        GrantScope
	GrantedAt    time.Time
	ExpiresAt    *time.Time // nil = non-expiring
	OriginCodeID *string    // set when Source is a redeemed code
	AgencyID     *string    // for "Access provided by <agency>" messaging
	Status       EntitlementStatus
}

func NewEntitlement(userID string, source SourceType, scope GrantScope, expiresAt *time.Time) (*Entitlement, error) {
	if userID == "" {
		return nil, domain.ErrInvalidArgument
	}
	now := time.Now()
	return &Entitlement{
		ID:        ulid.MustNew(ulid.Timestamp(now), rand.Reader).String(),
		UserID:    userID,
		Source:    source,
		Scope:     scope,
		GrantedAt: now,
		ExpiresAt: expiresAt,
		Status:    EntitlementStatusActive,
	}, nil
}

// ActiveAt reports whether the grant counts at the given instant. The status
// column is bookkeeping; the time comparison is what decides.
func (e *Entitlement) ActiveAt(now time.Time) bool {
	if e.Status == EntitlementStatusRevoked {
		return false
	}
	return e.ExpiresAt == nil || now.Before(*e.ExpiresAt)
}
