package web

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"heritage-access-platform/internal/domain"
	"heritage-access-platform/internal/domain/model"
	"heritage-access-platform/internal/infra/logging"
	red "heritage-access-platform/internal/infra/redis"
	"heritage-access-platform/internal/usecase"

	"github.com/go-chi/chi/v5"
)

// ---- response envelope ----

type errorBody struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps a domain error to an HTTP status plus a body the client can
// show verbatim. Redemption failures keep their distinct kinds; the redeem
// route is rate limited rather than made opaque.
func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, statusFor(err), struct {
		Error errorBody `json:"error"`
	}{Error: errorBody{Kind: domain.Kind(err), Message: domain.HumanMessage(err)}})
}

func statusFor(err error) int {
	switch domain.Kind(err) {
	case "invalid_argument":
		return http.StatusBadRequest
	case "code_not_found", "not_found":
		return http.StatusNotFound
	case "already_redeemed", "persistence_conflict":
		return http.StatusConflict
	case "code_expired", "code_not_yet_active", "usage_limit_reached",
		"code_deactivated", "scope_mismatch":
		return http.StatusUnprocessableEntity
	case "rate_limited":
		return http.StatusTooManyRequests
	case "unavailable":
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func parseContentType(s string) (model.ContentType, bool) {
	switch ct := model.ContentType(s); ct {
	case model.ContentTypeStory, model.ContentTypeMuseum, model.ContentTypeRoute,
		model.ContentTypeTestimony, model.ContentTypeExperience:
		return ct, true
	}
	return "", false
}

func pagination(r *http.Request) (offset, limit int) {
	offset, _ = strconv.Atoi(r.URL.Query().Get("offset"))
	limit, _ = strconv.Atoi(r.URL.Query().Get("limit"))
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return offset, limit
}

// ---- DTOs ----

type entitlementDTO struct {
	ID        string           `json:"id"`
	UserID    string           `json:"userId"`
	Source    model.SourceType `json:"source"`
	Scope     model.GrantScope `json:"scope"`
	GrantedAt time.Time        `json:"grantedAt"`
	ExpiresAt *time.Time       `json:"expiresAt,omitempty"`
	AgencyID  *string          `json:"agencyId,omitempty"`
	Status    string           `json:"status"`
}

func toEntitlementDTO(e *model.Entitlement) entitlementDTO {
	return entitlementDTO{
		ID:        e.ID,
		UserID:    e.UserID,
		Source:    e.Source,
		Scope:     e.Scope,
		GrantedAt: e.GrantedAt,
		ExpiresAt: e.ExpiresAt,
		AgencyID:  e.AgencyID,
		Status:    string(e.Status),
	}
}

type codeDTO struct {
	ID           string            `json:"id"`
	Code         string            `json:"code"`
	Type         model.CodeType    `json:"type"`
	Grants       model.GrantAccess `json:"grants"`
	TargetID     *string           `json:"targetId,omitempty"`
	MaxUses      int               `json:"maxUses"`
	UsedCount    int               `json:"usedCount"`
	DurationDays int               `json:"durationDays"`
	ValidFrom    *time.Time        `json:"validFrom,omitempty"`
	ExpiresAt    *time.Time        `json:"expiresAt,omitempty"`
	Active       bool              `json:"active"`
	AgencyID     *string           `json:"agencyId,omitempty"`
}

func toCodeDTO(c *model.AccessCode) codeDTO {
	return codeDTO{
		ID:           c.ID,
		Code:         c.Code,
		Type:         c.Type,
		Grants:       c.Grants,
		TargetID:     c.TargetID,
		MaxUses:      c.MaxUses,
		UsedCount:    c.UsedCount,
		DurationDays: c.DurationDays,
		ValidFrom:    c.ValidFrom,
		ExpiresAt:    c.ExpiresAt,
		Active:       c.Active,
		AgencyID:     c.AgencyID,
	}
}

// ---- visitor endpoints ----

func (s *Server) handleContentView(w http.ResponseWriter, r *http.Request) {
	ct, ok := parseContentType(chi.URLParam(r, "contentType"))
	if !ok {
		writeError(w, domain.ErrInvalidArgument)
		return
	}
	doc, err := s.gateUC.View(r.Context(), UserID(r.Context()), ct, chi.URLParam(r, "contentID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (s *Server) handleResolve(w http.ResponseWriter, r *http.Request) {
	ct, ok := parseContentType(chi.URLParam(r, "contentType"))
	if !ok {
		writeError(w, domain.ErrInvalidArgument)
		return
	}
	decision, err := s.entUC.Resolve(r.Context(), UserID(r.Context()), ct, chi.URLParam(r, "contentID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, decision)
}

type redeemRequest struct {
	Code string `json:"code" validate:"required"`
}

type redeemResponse struct {
	Entitlement entitlementDTO    `json:"entitlement"`
	Code        codeDTO           `json:"code"`
	Access      model.GrantAccess `json:"access"`
	ExpiresAt   time.Time         `json:"expiresAt"`
}

func (s *Server) handleRedeem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := UserID(ctx)

	allowed, err := s.limiter.Allow(ctx, red.RedeemKey(userID), s.limits.RedeemAttempts, s.limits.RedeemWindow)
	if err != nil {
		// Redis being down should not block redemption; log and continue.
		logging.With(ctx, s.log).Warn().Err(err).Msg("rate limiter unavailable")
	} else if !allowed {
		writeError(w, domain.ErrRateLimited)
		return
	}

	var req redeemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, domain.ErrInvalidArgument)
		return
	}
	if err := s.validate.Struct(req); err != nil {
		writeError(w, domain.ErrInvalidArgument)
		return
	}

	res, err := s.redeemUC.Redeem(ctx, req.Code, userID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, redeemResponse{
		Entitlement: toEntitlementDTO(res.Entitlement),
		Code:        toCodeDTO(res.Code),
		Access:      res.EffectiveAccess,
		ExpiresAt:   res.ExpiresAt,
	})
}

func (s *Server) handleMyEntitlements(w http.ResponseWriter, r *http.Request) {
	offset, limit := pagination(r)
	ents, err := s.entUC.ListByUser(r.Context(), UserID(r.Context()), offset, limit)
	if err != nil {
		writeError(w, err)
		return
	}
	data := make([]entitlementDTO, 0, len(ents))
	for _, e := range ents {
		data = append(data, toEntitlementDTO(e))
	}
	writeJSON(w, http.StatusOK, struct {
		Data   []entitlementDTO `json:"data"`
		Limit  int              `json:"limit"`
		Offset int              `json:"offset"`
	}{Data: data, Limit: limit, Offset: offset})
}

type askRequest struct {
	Question string `json:"question" validate:"required"`
	Language string `json:"language" validate:"omitempty,len=2"`
}

type askResponse struct {
	Answer    string `json:"answer"`
	Model     string `json:"model"`
	TokensIn  int    `json:"tokensIn"`
	TokensOut int    `json:"tokensOut"`
}

func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	var req askRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, domain.ErrInvalidArgument)
		return
	}
	if err := s.validate.Struct(req); err != nil {
		writeError(w, domain.ErrInvalidArgument)
		return
	}

	ans, err := s.askUC.Ask(r.Context(), UserID(r.Context()), req.Question, req.Language)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, askResponse{
		Answer:    ans.Text,
		Model:     ans.Model,
		TokensIn:  ans.TokensIn,
		TokensOut: ans.TokensOut,
	})
}

// ---- issuer/admin endpoints ----

type batchRequest struct {
	Count        int        `json:"count" validate:"required,min=1,max=1000"`
	Prefix       string     `json:"prefix" validate:"omitempty,alphanum,max=8"`
	Type         string     `json:"type" validate:"required,oneof=tour_group single_use promo qr_code"`
	Grants       string     `json:"grants" validate:"required,oneof=full day_pass route museum story"`
	TargetID     *string    `json:"targetId"`
	MaxUses      int        `json:"maxUses" validate:"required,min=1"`
	DurationDays int        `json:"durationDays" validate:"required,min=1"`
	AgencyID     *string    `json:"agencyId"`
	ValidFrom    *time.Time `json:"validFrom"`
	ExpiresAt    *time.Time `json:"expiresAt"`
}

func (s *Server) handleGenerateBatch(w http.ResponseWriter, r *http.Request) {
	var req batchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, domain.ErrInvalidArgument)
		return
	}
	if err := s.validate.Struct(req); err != nil {
		writeError(w, domain.ErrInvalidArgument)
		return
	}

	codes, err := s.adminUC.GenerateBatch(r.Context(), usecase.BatchSpec{
		Count:        req.Count,
		Prefix:       req.Prefix,
		Type:         model.CodeType(req.Type),
		Grants:       model.GrantAccess(req.Grants),
		TargetID:     req.TargetID,
		MaxUses:      req.MaxUses,
		DurationDays: req.DurationDays,
		AgencyID:     req.AgencyID,
		ValidFrom:    req.ValidFrom,
		ExpiresAt:    req.ExpiresAt,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	data := make([]codeDTO, 0, len(codes))
	for _, c := range codes {
		data = append(data, toCodeDTO(c))
	}
	writeJSON(w, http.StatusCreated, struct {
		Data []codeDTO `json:"data"`
	}{Data: data})
}

func (s *Server) handleListCodes(w http.ResponseWriter, r *http.Request) {
	agencyID := r.URL.Query().Get("agency_id")
	if agencyID == "" {
		writeError(w, domain.ErrInvalidArgument)
		return
	}
	offset, limit := pagination(r)
	codes, err := s.adminUC.ListByAgency(r.Context(), agencyID, offset, limit)
	if err != nil {
		writeError(w, err)
		return
	}
	data := make([]codeDTO, 0, len(codes))
	for _, c := range codes {
		data = append(data, toCodeDTO(c))
	}
	writeJSON(w, http.StatusOK, struct {
		Data   []codeDTO `json:"data"`
		Limit  int       `json:"limit"`
		Offset int       `json:"offset"`
	}{Data: data, Limit: limit, Offset: offset})
}

func (s *Server) handleLookupCode(w http.ResponseWriter, r *http.Request) {
	code, err := s.adminUC.Lookup(r.Context(), r.URL.Query().Get("code"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toCodeDTO(code))
}

func (s *Server) handleDeactivateCode(w http.ResponseWriter, r *http.Request) {
	if err := s.adminUC.Deactivate(r.Context(), chi.URLParam(r, "codeID")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type grantRequest struct {
	UserID      string     `json:"userId" validate:"required"`
	Source      string     `json:"source" validate:"required,oneof=subscription purchase sponsored admin_grant"`
	ScopeAll    bool       `json:"scopeAll"`
	ContentType string     `json:"contentType" validate:"required_unless=ScopeAll true"`
	ContentID   string     `json:"contentId" validate:"required_unless=ScopeAll true"`
	ExpiresAt   *time.Time `json:"expiresAt"`
	AgencyID    *string    `json:"agencyId"`
}

func (s *Server) handleGrantEntitlement(w http.ResponseWriter, r *http.Request) {
	var req grantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, domain.ErrInvalidArgument)
		return
	}
	if err := s.validate.Struct(req); err != nil {
		writeError(w, domain.ErrInvalidArgument)
		return
	}

	scope := model.ScopeAll()
	if !req.ScopeAll {
		ct, ok := parseContentType(req.ContentType)
		if !ok {
			writeError(w, domain.ErrInvalidArgument)
			return
		}
		scope = model.ScopeFor(ct, req.ContentID)
	}

	ent, err := s.entUC.Grant(r.Context(), req.UserID, model.SourceType(req.Source), scope, req.ExpiresAt, req.AgencyID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toEntitlementDTO(ent))
}

func (s *Server) handleRevokeEntitlement(w http.ResponseWriter, r *http.Request) {
	if err := s.entUC.Revoke(r.Context(), chi.URLParam(r, "entitlementID")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleUserEntitlements(w http.ResponseWriter, r *http.Request) {
	offset, limit := pagination(r)
	ents, err := s.entUC.ListByUser(r.Context(), chi.URLParam(r, "userID"), offset, limit)
	if err != nil {
		writeError(w, err)
		return
	}
	data := make([]entitlementDTO, 0, len(ents))
	for _, e := range ents {
		data = append(data, toEntitlementDTO(e))
	}
	writeJSON(w, http.StatusOK, struct {
		Data   []entitlementDTO `json:"data"`
		Limit  int              `json:"limit"`
		Offset int              `json:"offset"`
	}{Data: data, Limit: limit, Offset: offset})
}
