package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"law_office_desk/config"
	"law_office_desk/db"
	"law_office_desk/handlers"
	"law_office_desk/middleware"
	"law_office_desk/models"
	"law_office_desk/services"
	"law_office_desk/services/i18n"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	config.SetupLogger(cfg)

	if err := i18n.Load(); err != nil {
		log.Fatal().Err(err).Msg("Failed to load translations")
	}
	i18n.SetDefault(cfg.DefaultLocale)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Sessions
	database, err := db.Open(cfg.SessionDSN, cfg.Environment)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize session database")
	}
	defer db.Close(database)

	if err := db.AutoMigrate(database, &models.Session{}); err != nil {
		log.Fatal().Err(err).Msg("Failed to run migrations")
	}

	backends, err := services.NewBackends(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize backends")
	}
	defer backends.Close()

	// Create Echo instance
	e := echo.New()
	e.HideBanner = true

	// Middleware
	e.Use(middleware.RequestLogger())
	e.Use(echomiddleware.Recover())
	e.Use(middleware.Config(cfg))
	e.Use(middleware.Locale())

	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	monitor := services.NewLoginMonitor()
	h := &handlers.Handler{
		Config:     cfg,
		DB:         database,
		Store:      backends.Store,
		Access:     backends.Access,
		Drafting:   backends.Drafting,
		Court:      backends.Court,
		Exporter:   backends.Exporter,
		Archive:    backends.Archive,
		Classifier: backends.Classifier,
		Monitor:    monitor,
	}
	h.Register(e)

	// Expired sessions and stale login counters are purged hourly
	go func() {
		ticker := time.NewTicker(1 * time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := services.CleanupExpiredSessions(database); err != nil {
					log.Error().Err(err).Msg("Failed to cleanup expired sessions")
				}
				monitor.Prune()
			}
		}
	}()

	go func() {
		log.Info().Str("port", cfg.ServerPort).Str("environment", cfg.Environment).Msg("Starting server")
		if err := e.Start(":" + cfg.ServerPort); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server stopped")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Graceful shutdown failed")
	}
}
