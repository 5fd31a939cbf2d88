package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	_ "github.com/A7maad1/LSA/api/swagger"
	"github.com/A7maad1/LSA/internal/handler"
	"github.com/A7maad1/LSA/internal/middleware"
	"github.com/A7maad1/LSA/pkg/config"
	"github.com/A7maad1/LSA/pkg/logger"
	corsmiddleware "github.com/A7maad1/LSA/pkg/middleware/cors"
	reqidmiddleware "github.com/A7maad1/LSA/pkg/middleware/requestid"
)

// @title LSA School Site API
// @version 1.0.0
// @description Admin JSON API and public submission endpoints of the school website.
// @BasePath /api/v1
// @schemes http https

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := build(ctx, cfg, logr)
	if err != nil {
		logr.Fatal("failed to build application", zap.Error(err))
	}
	defer app.Close()

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr, "/health", "/ready", "/metrics", "/static"))
	r.Use(middleware.Metrics(app.metrics, "/metrics", "/static"))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	if app.localUploads != "" {
		r.Static(cfg.Upload.PublicBase, app.localUploads)
	}

	session := middleware.Session(app.sessions, middleware.SessionConfig{
		CookieName: cfg.Session.CookieName,
		TTL:        cfg.Session.TTL,
		Secure:     cfg.Session.Secure,
	})
	handler.Register(r, app.handlers, session, handler.RouteOptions{Docs: cfg.Env != config.EnvProduction})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env, "backend", app.backendKind)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
}
