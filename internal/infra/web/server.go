package web

import (
	"net/http"

	"heritage-access-platform/internal/config"
	red "heritage-access-platform/internal/infra/redis"
	"heritage-access-platform/internal/usecase"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

type Server struct {
	redeemUC usecase.RedemptionUseCase
	entUC    usecase.EntitlementUseCase
	gateUC   usecase.GateUseCase
	adminUC  usecase.CodeAdminUseCase
	askUC    usecase.AskUseCase
	limiter  *red.RateLimiter
	auth     *AuthManager
	apiKey   string
	limits   config.LimitsConfig
	validate *validator.Validate
	log      *zerolog.Logger
}

func NewServer(
	redeemUC usecase.RedemptionUseCase,
	entUC usecase.EntitlementUseCase,
	gateUC usecase.GateUseCase,
	adminUC usecase.CodeAdminUseCase,
	askUC usecase.AskUseCase,
	limiter *red.RateLimiter,
	auth *AuthManager,
	apiKey string,
	limits config.LimitsConfig,
	logger *zerolog.Logger,
) *Server {
	return &Server{
		redeemUC: redeemUC,
		entUC:    entUC,
		gateUC:   gateUC,
		adminUC:  adminUC,
		askUC:    askUC,
		limiter:  limiter,
		auth:     auth,
		apiKey:   apiKey,
		limits:   limits,
		validate: validator.New(),
		log:      logger,
	}
}

// Routes builds the full router. Content browsing is open to anonymous
// visitors; redemption and the Ask assistant require a visitor token; the
// issuer API sits behind the admin key.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(s.identityMiddleware)

		r.Get("/content/{contentType}/{contentID}", s.handleContentView)
		r.Get("/content/{contentType}/{contentID}/access", s.handleResolve)
		r.Post("/ask", s.handleAsk)

		r.Group(func(r chi.Router) {
			r.Use(s.requireUser)
			r.Post("/codes/redeem", s.handleRedeem)
			r.Get("/me/entitlements", s.handleMyEntitlements)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(s.adminMiddleware)
			r.Post("/codes/batch", s.handleGenerateBatch)
			r.Get("/codes", s.handleListCodes)
			r.Get("/codes/lookup", s.handleLookupCode)
			r.Post("/codes/{codeID}/deactivate", s.handleDeactivateCode)
			r.Post("/entitlements", s.handleGrantEntitlement)
			r.Delete("/entitlements/{entitlementID}", s.handleRevokeEntitlement)
			r.Get("/users/{userID}/entitlements", s.handleUserEntitlements)
		})
	})

	return r
}
