package main

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/vendorlens/diligence-api/internal/config"
	"github.com/vendorlens/diligence-api/internal/database"
	"github.com/vendorlens/diligence-api/internal/handler"
	"github.com/vendorlens/diligence-api/internal/jobs"
	"github.com/vendorlens/diligence-api/internal/middleware"
	"github.com/vendorlens/diligence-api/internal/redis"
	"github.com/vendorlens/diligence-api/internal/repository"
	"github.com/vendorlens/diligence-api/internal/service"
	"github.com/vendorlens/diligence-api/internal/token"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid config")
	}

	setLogLevel(cfg.LogLevel)

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), config.DBPingTimeout)
	if err := db.Ping(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to ping database")
	}
	cancel()
	log.Info().Msg("database connected")

	redisClient, err := redis.NewClient(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer redisClient.Close()
	log.Info().Msg("redis connected")

	accountRepo := repository.NewAccountRepository(db.DB)
	creditRepo := repository.NewCreditRepository(db.DB)
	usageRepo := repository.NewUsageLogRepository(db.DB)
	coopRepo := repository.NewCooperationRepository(db.DB)
	evalRepo := repository.NewEvaluationRepository(db.DB)

	issuer := token.NewIssuer(cfg.JWTSecret, cfg.AccessTokenTTL(), cfg.RefreshTokenTTL())

	scoreClient := service.NewScoreClient(
		cfg.ExternalScoreURL, cfg.ExternalScoreAppKey, cfg.ExternalScoreSecret, cfg.ExternalScoreTimeout(),
	)
	evalService := service.NewEvaluationService(evalRepo, scoreClient)

	authMiddleware := middleware.NewAuthMiddleware(issuer)
	authRateLimit := middleware.NewAuthRateLimitMiddleware(redisClient.Client, cfg.AuthRateLimitPerMin)
	bodyLimitMiddleware := middleware.NewBodyLimitMiddleware(0)
	meter := middleware.NewUsageMeter(db, creditRepo, usageRepo, cfg.CreditPerRecord)

	authHandler := handler.NewAuthHandler(accountRepo, issuer)
	productHandler := handler.NewProductHandler(coopRepo, evalRepo, evalService)
	usageHandler := handler.NewUsageHandler(usageRepo, creditRepo)

	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestLogger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(config.ServerRequestTimeout))
	r.Use(bodyLimitMiddleware.Handler)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]any{
			"status":    "ok",
			"timestamp": time.Now().UnixMilli(),
		})
	})

	r.Group(func(r chi.Router) {
		r.Use(authRateLimit.Handler)
		r.Post("/register", authHandler.Register)
		r.Post("/login", authHandler.Login)
	})

	r.Group(func(r chi.Router) {
		r.Use(authMiddleware.Handler)
		r.Post("/query1", meter.Wrap("product01", productHandler.Query1))
		r.Post("/query2", meter.Wrap("product02", productHandler.Query2))
		r.Post("/query3", meter.Wrap("product03", productHandler.Query3))
		r.Post("/query4", meter.Wrap("product04", productHandler.Query4))
		r.Post("/usage", usageHandler.Usage)
		r.Post("/credit/balance", usageHandler.CreditBalance)
	})

	cleanupJob := jobs.NewCleanupJob(usageRepo, cfg.UsageLogRetention(), config.CleanupJobInterval)
	cleanupJob.Start()
	defer cleanupJob.Stop()

	server := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  config.ServerReadTimeout,
		WriteTimeout: 0,
		IdleTimeout:  config.ServerIdleTimeout,
	}

	go func() {
		log.Info().Str("addr", cfg.Addr()).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), config.ServerShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}

func setLogLevel(level string) {
	switch level {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "info":
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}
