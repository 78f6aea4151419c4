// Copyright (c) 2025-2026 IT Help San Diego Inc.
// Licensed under BUSL-1.1 — See LICENSE for terms.
package main

import (
	"log/slog"
	"os"

	"dossier/internal/config"
	"dossier/internal/dnsclient"
	"dossier/internal/handlers"
	"dossier/internal/middleware"
	"dossier/internal/osint"
	"dossier/internal/telemetry"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
)

func main() {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	})))

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	router.Use(middleware.Recovery())
	router.Use(gzip.Gzip(gzip.DefaultCompression))
	router.Use(middleware.RequestContext())
	router.Use(middleware.SecurityHeaders())

	rateLimiter := middleware.NewIPRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	slog.Info("Rate limiter initialized", "rps", cfg.RateLimitRPS, "burst", cfg.RateLimitBurst)

	var resolverOpts []dnsclient.Option
	if cfg.DoHEndpoint != "" {
		resolverOpts = append(resolverOpts, dnsclient.WithEndpoint(cfg.DoHEndpoint))
	}

	registry := telemetry.NewRegistry()
	service := osint.New(
		osint.WithResolver(dnsclient.New(resolverOpts...)),
		osint.WithTelemetry(registry),
	)
	slog.Info("OSINT service initialized with telemetry")

	lookupHandler := handlers.NewLookupHandler(cfg, service)
	healthHandler := handlers.NewHealthHandler(cfg.AppVersion, registry)

	router.GET("/api/health", healthHandler.HealthCheck)

	api := router.Group("/api/lookup", middleware.RateLimit(rateLimiter))
	api.GET("/ip", lookupHandler.IP)
	api.GET("/domain", lookupHandler.Domain)
	api.GET("/email", lookupHandler.Email)
	api.GET("/username", lookupHandler.Username)
	api.GET("/phone", lookupHandler.Phone)

	slog.Info("Starting server", "port", cfg.Port, "version", cfg.AppVersion)
	if err := router.Run(":" + cfg.Port); err != nil {
		slog.Error("Server exited", "error", err)
		os.Exit(1)
	}
}
