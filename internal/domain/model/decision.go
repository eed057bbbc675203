package model

// EntitlementDecision is the resolved, request-time answer to "can this user
// see this content in full". It is derived, never persisted; staleness is
// avoided by recomputing per request.
type EntitlementDecision struct {
	HasFullAccess  bool        `json:"hasFullAccess"`
	GrantingSource *SourceType `json:"grantingSource,omitempty"`
	AccessTier     AccessTier  `json:"accessTier"`
	AgencyID       *string     `json:"agencyId,omitempty"`
}

// DecisionFullAccess builds a granting decision for the winning source.
func DecisionFullAccess(source SourceType, tier AccessTier, agencyID *string) EntitlementDecision {
	s := source
	return EntitlementDecision{
		HasFullAccess:  true,
		GrantingSource: &s,
		AccessTier:     tier,
		AgencyID:       agencyID,
	}
}

// DecisionDenied is the fall-through when no entitlement survives filtering.
func DecisionDenied(tier AccessTier) EntitlementDecision {
	return EntitlementDecision{HasFullAccess: false, AccessTier: tier}
}

// DecisionFreeContent covers content whose rule tier is free: always fully
// accessible, with no granting source to report.
func DecisionFreeContent() EntitlementDecision {
	return EntitlementDecision{HasFullAccess: true, AccessTier: TierFree}
}
