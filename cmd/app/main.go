// File: cmd/app/main.go
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"parallel-muhit-webapp/internal/config"
	"parallel-muhit-webapp/internal/domain/ports/adapter"
	"parallel-muhit-webapp/internal/domain/ports/repository"
	"parallel-muhit-webapp/internal/infra/adapters/backend"
	"parallel-muhit-webapp/internal/infra/i18n"
	"parallel-muhit-webapp/internal/infra/logging"
	"parallel-muhit-webapp/internal/infra/memory"
	"parallel-muhit-webapp/internal/infra/metrics"
	red "parallel-muhit-webapp/internal/infra/redis"
	"parallel-muhit-webapp/internal/infra/sched"
	"parallel-muhit-webapp/internal/infra/web"
	"parallel-muhit-webapp/internal/infra/web/view"
	"parallel-muhit-webapp/internal/usecase"
)

var (
	version = "dev"
	commit  = "none"
)

const sessionLockTTL = 10 * time.Second

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "enable developer mode (fake backend, console logs)")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	if cfg.Runtime.Dev {
		logger.Warn().Msg("[DEV MODE] Enabled")
	}
	metrics.MustRegister()
	metrics.SetBuildInfo(version, commit)

	// ---- Session storage: redis when configured, process memory otherwise ----
	var (
		sessions repository.SessionRepository
		locker   repository.Locker
		limiter  adapter.RateLimiter
	)
	if cfg.Redis.URL != "" {
		redisClient, err := red.NewClient(ctx, &cfg.Redis)
		if err != nil {
			logger.Fatal().Err(err).Msg("redis")
		}
		defer redisClient.Close()
		sessions = red.NewSessionRepo(redisClient, cfg.Redis.TTL)
		locker = red.NewLocker(redisClient, sessionLockTTL)
		limiter = red.NewRateLimiter(redisClient, cfg.Upload.RateLimit, cfg.Upload.RateWindow)
		logger.Info().Msg("sessions stored in redis")
	} else {
		memSessions := memory.NewSessionRepo(cfg.Session.TTL)
		sessions = memSessions
		locker = memory.NewKeyedLocker()
		limiter = memory.NewRateLimiter(cfg.Upload.RateLimit, cfg.Upload.RateWindow)

		sweeper := sched.NewSessionSweeper(time.Minute, memSessions, logger)
		go func() { _ = sweeper.Run(ctx) }()
		logger.Info().Msg("sessions stored in process memory")
	}

	// ---- Backend ----
	var be adapter.BackendClient
	if cfg.Runtime.FakeBackend {
		be = backend.NewFakeBackend()
		logger.Warn().Msg("using in-memory fake backend")
	} else {
		be = backend.NewHTTPClient(cfg.Backend.BaseURL, cfg.Backend.Timeout, logger)
		logger.Info().Str("base_url", cfg.Backend.BaseURL).Msg("backend client ready")
	}

	// ---- Use case + views ----
	uc := usecase.NewPageController(be, sessions, locker, logger,
		usecase.WithUploadLimits(cfg.Upload.MaxBytes, limiter),
	)
	translator, err := i18n.NewTranslator(i18n.LocalesFS, i18n.DefaultLang)
	if err != nil {
		logger.Fatal().Err(err).Msg("translator")
	}
	views, err := view.NewRenderer(translator, cfg.Contact.URL)
	if err != nil {
		logger.Fatal().Err(err).Msg("views")
	}

	// ---- HTTP server ----
	cookies := web.NewSessionCookies(cfg.Session.Secret, cfg.Session.CookieName, cfg.Session.CookieDomain, cfg.Session.SecureCookie, cfg.Session.TTL)
	srv := web.NewServer(uc, views, cookies, web.Options{
		MaxUploadBytes: cfg.Upload.MaxBytes,
		RequestTimeout: cfg.HTTP.RequestTimeout,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
	}, logger)
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:           srv.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.Info().Str("addr", server.Addr).Msg("http server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("http server error")
			cancel()
		}
	}()

	// ---- Graceful shutdown ----
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sigc:
		logger.Info().Msg("shutdown requested")
	case <-ctx.Done():
	}
	shutdownCtx, stop := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownGrace)
	defer stop()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http shutdown")
	}
	cancel()
}
