package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"authportal/docs"
	"authportal/internal/auth"
	"authportal/internal/cache"
	"authportal/internal/config"
	"authportal/internal/db"
	"authportal/internal/handler"
	"authportal/internal/logging"
	"authportal/internal/metrics"
	"authportal/internal/model"
	"authportal/internal/render"
	"authportal/internal/repository"
	"authportal/internal/router"
	"authportal/internal/service"
)

// @title GenAI Team Portal API
// @version 1.0
// @description Session verification and health endpoints of the team portal.
// @host localhost:8000
// @BasePath /
// @schemes http
func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}
	logger := logging.New(os.Stdout, cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	gormDB, err := db.NewMySQL(cfg.MySQLDSN())
	if err != nil {
		return err
	}
	sqlDB, err := gormDB.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	if cfg.DBAutoMigrate {
		if err := gormDB.AutoMigrate(&model.User{}); err != nil {
			return err
		}
		logger.Info("users table migrated")
	}

	var revocations auth.RevocationStore
	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	if cacheClient.Enabled() {
		defer cacheClient.Close()
		revocations = auth.NewCacheRevocationStore(cacheClient)
		logger.Info("session revocation enabled", "redis", cfg.RedisAddr)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(registry)

	sessions := auth.NewSessionManager(auth.SessionOptions{
		CookieName: cfg.SessionCookieName,
		Secret:     cfg.SessionSecret,
		MaxAge:     cfg.SessionMaxAge,
		Secure:     cfg.SessionSecureCookie,
	}, revocations)

	users := repository.NewUserRepository(gormDB, logger)
	authService := service.NewAuthService(users, auth.NewBcryptHasher(), service.AuthOptions{
		AllowedEmailDomain: cfg.AllowedEmailDomain,
	}, m, logger)
	healthService := service.NewHealthService(sqlDB, logger)

	renderer, err := render.New()
	if err != nil {
		return err
	}

	e := echo.New()
	e.HideBanner = true
	router.Register(e, router.Handlers{
		Auth: handler.NewAuthHandler(authService, sessions, handler.AuthOptions{
			OrganizationName: cfg.OrganizationName,
			DefaultRedirect:  cfg.DefaultRedirect,
		}, logger),
		Session: handler.NewSessionHandler(sessions, logger),
		Health:  handler.NewHealthHandler(healthService),
	}, sessions, renderer, registry, logger)

	if cfg.SwaggerHost != "" {
		docs.SwaggerInfo.Host = cfg.SwaggerHost
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", ":"+cfg.ServerPort, "swagger", "/swagger/index.html")
		errCh <- e.Start(":" + cfg.ServerPort)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}
