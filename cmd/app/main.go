package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"heritage-access-platform/internal/config"
	"heritage-access-platform/internal/domain/ports/adapter"
	aiAdapters "heritage-access-platform/internal/infra/adapters/ai"
	pg "heritage-access-platform/internal/infra/db/postgres"
	"heritage-access-platform/internal/infra/logging"
	"heritage-access-platform/internal/infra/metrics"
	red "heritage-access-platform/internal/infra/redis"
	"heritage-access-platform/internal/infra/sched"
	"heritage-access-platform/internal/infra/web"
	"heritage-access-platform/internal/usecase"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	version = "dev"
	commit  = "none"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "enable developer mode (noop AI, console logs)")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	if cfg.Runtime.Dev {
		logger.Info().Msg("developer mode enabled")
	}

	metrics.MustRegister()
	metrics.SetBuildInfo(version, commit)

	// ---- Postgres ----
	pool, err := pg.NewPgxPool(ctx, &cfg.Database)
	if err != nil {
		logger.Fatal().Err(err).Msg("postgres")
	}
	defer pool.Close()

	// ---- Redis ----
	redisClient, err := red.NewClient(ctx, &cfg.Redis)
	if err != nil {
		logger.Fatal().Err(err).Msg("redis")
	}
	defer func() { _ = redisClient.Close() }()
	rateLimiter := red.NewRateLimiter(redisClient)
	locker := red.NewLocker(redisClient)

	// ---- Repositories ----
	codeRepo := pg.NewAccessCodeRepo(pool)
	entRepo := pg.NewEntitlementRepo(pool)
	userRepo := pg.NewUserRepo(pool)
	payRepo := pg.NewPaymentRepo(pool)
	contentRepo := pg.NewContentRepo(pool)
	ruleRepo := pg.NewRuleRepoCacheDecorator(pg.NewContentRuleRepo(pool), redisClient)
	txManager := pg.NewTxManager(pool)

	// ---- Use cases ----
	entUC := usecase.NewEntitlementUseCase(entRepo, ruleRepo, codeRepo, logger)
	redeemUC := usecase.NewRedemptionUseCase(codeRepo, entRepo, userRepo, payRepo, txManager, cfg.Limits, logger)
	gateUC := usecase.NewGateUseCase(contentRepo, ruleRepo, entUC, cfg.Gate, logger)
	adminUC := usecase.NewCodeAdminUseCase(codeRepo, logger)

	// ---- Ask assistant (OpenAI -> Gemini fallback) ----
	var chain []adapter.AskAssistant
	if cfg.AI.OpenAIKey != "" {
		openAI, err := aiAdapters.NewOpenAIAssistant(cfg.AI.OpenAIKey, cfg.AI.DefaultModel)
		if err != nil {
			logger.Fatal().Err(err).Msg("openai assistant")
		}
		chain = append(chain, openAI)
	}
	if cfg.AI.GeminiKey != "" {
		gemini, err := aiAdapters.NewGeminiAssistant(ctx, cfg.AI.GeminiKey, "")
		if err != nil {
			logger.Fatal().Err(err).Msg("gemini assistant")
		}
		chain = append(chain, gemini)
	}
	var assistant adapter.AskAssistant
	switch {
	case len(chain) > 0:
		assistant, err = aiAdapters.NewFallbackAssistant(logger, chain...)
		if err != nil {
			logger.Fatal().Err(err).Msg("assistant chain")
		}
	case cfg.Runtime.Dev:
		logger.Warn().Msg("no AI provider configured; using noop assistant")
		assistant = aiAdapters.NewNoopAssistant()
	default:
		logger.Fatal().Msg("no AI provider configured: set ai.openai_key or ai.gemini_key")
	}
	askUC := usecase.NewAskUseCase(entUC, assistant, cfg.AI, logger)

	// ---- HTTP ----
	srv := web.NewServer(
		redeemUC, entUC, gateUC, adminUC, askUC,
		rateLimiter,
		web.NewAuthManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL),
		cfg.Server.AdminAPIKey,
		cfg.Limits,
		logger,
	)
	router := srv.Routes()
	router.Handle("/metrics", promhttp.Handler())

	handler := web.Chain(router,
		web.TraceID(),
		web.Recover(logger),
		web.RequestLog(logger),
		web.Timeout(cfg.Server.RequestTimeout),
	)
	httpServer := &http.Server{Addr: fmt.Sprintf(":%d", cfg.Server.Port), Handler: handler}
	go func() {
		logger.Info().Str("addr", httpServer.Addr).Msg("http listening")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("http server")
		}
	}()

	// ---- Entitlement expiry sweeper ----
	worker := sched.NewExpiryWorker(cfg.Sweeper.Interval, entRepo, locker, logger)
	go func() { _ = worker.Run(ctx) }()

	// ---- Graceful shutdown ----
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	<-sigc
	logger.Info().Msg("shutdown requested")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http shutdown")
	}
}
