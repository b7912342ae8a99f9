// Package app wires the service graph: storage, caches, transports and the
// HTTP server, all constructed from one Config.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"net/http"
	"time"

	"github.com/campuspulse/moodmeter-service/internal/config"
	"github.com/campuspulse/moodmeter-service/internal/http/handler"
	"github.com/campuspulse/moodmeter-service/internal/http/router"
	"github.com/campuspulse/moodmeter-service/internal/mail"
	"github.com/campuspulse/moodmeter-service/internal/mood"
	"github.com/campuspulse/moodmeter-service/internal/observability"
	"github.com/campuspulse/moodmeter-service/internal/repository"
	"github.com/campuspulse/moodmeter-service/internal/security"
	"github.com/campuspulse/moodmeter-service/internal/service"

	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type App struct {
	Config        *config.Config
	Logger        *slog.Logger
	Server        *http.Server
	Scope         *repository.Scope
	Dispatcher    *service.DispatchService
	Observability *observability.Runtime

	redisClient *redis.Client
}

func openDatabase(cfg *config.Config) (*gorm.DB, error) {
	gormCfg := &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Warn)}
	switch cfg.DatabaseDriver {
	case "postgres":
		return gorm.Open(postgres.Open(cfg.DatabaseDSN), gormCfg)
	case "sqlite":
		return gorm.Open(sqlite.Open(cfg.DatabaseDSN), gormCfg)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.DatabaseDriver)
	}
}

// Build assembles the full application. The returned App owns the HTTP
// server but does not start it; Close releases everything Build opened.
func Build(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	runtime, err := observability.InitRuntime(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("init observability: %w", err)
	}

	db, err := openDatabase(cfg)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	scope := repository.NewScope(db, cfg.HashSalt)

	var redisClient *redis.Client
	var cache service.ValueCacheStore = service.NewInMemoryValueCacheStore()
	if cfg.RedisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
		cache = service.NewRedisValueCacheStore(redisClient, "moodmeter")
	}

	var sender mail.Sender = mail.NewLogSender(logger)
	if cfg.SMTPHost != "" {
		sender = mail.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.MailFrom)
	}
	renderer := mail.NewRenderer(cfg.BaseURL)

	sessions := repository.NewSessionRepository(scope)
	catalogs := repository.NewCatalogRepository(scope)
	links := repository.NewUserLinkRepository(scope)
	kpis := repository.NewKPIRepository(scope)

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	sessionSvc := service.NewSessionService(cfg, sessions, mood.DefaultConfig(), rng)
	followupSvc := service.NewFollowupService(sessions, sessionSvc, nil)
	roleSvc := service.NewRoleService(cfg, catalogs, cache, logger)
	linkSvc := service.NewLinkService(cfg, links)
	kpiSvc := service.NewKPIService(kpis, nil)
	dispatchSvc := service.NewDispatchService(cfg, sessions, catalogs, cache, sender, renderer, logger)

	jwtMgr := security.NewJWTManager(cfg.JWTIssuer, cfg.JWTAudience, cfg.JWTSecret)

	mux := router.NewRouter(router.Dependencies{
		AuthHandler:      handler.NewAuthHandler(roleSvc, jwtMgr, cfg.AccessTokenTTL),
		SessionHandler:   handler.NewSessionHandler(sessionSvc),
		FollowupHandler:  handler.NewFollowupHandler(followupSvc),
		DashboardHandler: handler.NewDashboardHandler(kpiSvc),
		DispatchHandler:  handler.NewDispatchHandler(dispatchSvc),
		LinkHandler:      handler.NewLinkHandler(linkSvc),
		CatalogHandler:   handler.NewCatalogHandler(catalogs),
		JWTManager:       jwtMgr,
		CronSecretKey:    cfg.CronSecretKey,
		APIRateLimitRPM:  cfg.APIRateLimitRPM,
		Readiness: func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
		EnableOTelHTTP: cfg.OTELMetricsEnabled || cfg.OTELTracesEnabled,
	})

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	return &App{
		Config:        cfg,
		Logger:        logger,
		Server:        server,
		Scope:         scope,
		Dispatcher:    dispatchSvc,
		Observability: runtime,
		redisClient:   redisClient,
	}, nil
}

func (a *App) Close(ctx context.Context) error {
	if a.redisClient != nil {
		_ = a.redisClient.Close()
	}
	if sqlDB, err := a.Scope.DB().DB(); err == nil {
		_ = sqlDB.Close()
	}
	return a.Observability.Shutdown(ctx)
}
