package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/wolfman30/survey-assistant/cmd/mainconfig"
	"github.com/wolfman30/survey-assistant/internal/api/router"
	"github.com/wolfman30/survey-assistant/internal/app/bootstrap"
	appconfig "github.com/wolfman30/survey-assistant/internal/config"
	"github.com/wolfman30/survey-assistant/internal/conversation"
	"github.com/wolfman30/survey-assistant/internal/http/handlers"
	httpmiddleware "github.com/wolfman30/survey-assistant/internal/http/middleware"
	"github.com/wolfman30/survey-assistant/pkg/logging"
)

func main() {
	envLoaded := mainconfig.LoadEnv()

	// Load configuration
	cfg := appconfig.Load()

	// Initialize logger
	logger := logging.NewWithFormat(cfg.LogLevel, cfg.LogFormat, os.Stdout)
	logger.Info("starting survey-assistant API server",
		"env", cfg.Env,
		"port", cfg.Port,
		"dotenv", envLoaded,
	)

	ctx := context.Background()
	awsCfg, err := mainconfig.OptionalAWSConfig(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to load AWS config", "error", err)
		os.Exit(1)
	}

	rt, err := bootstrap.BuildRuntime(ctx, cfg, awsCfg, logger, bootstrap.Overrides{})
	if err != nil {
		logger.Error("failed to build conversation runtime", "error", err)
		os.Exit(1)
	}
	defer rt.Close()

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      newRouter(cfg, rt, logger),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.OracleTimeout*4 + cfg.HTTPClientTimeout*2,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		rt.Close()
		os.Exit(1)
	}

	logger.Info("server stopped")
	fmt.Println("Server exited gracefully")
}

func newRouter(cfg *appconfig.Config, rt *bootstrap.Runtime, logger *logging.Logger) http.Handler {
	routerCfg := &router.Config{
		Logger:              logger,
		ConversationHandler: conversation.NewHandler(rt.Engine, logger),
		HealthHandler:       handlers.NewHealthHandler(rt.Health),
		MetricsHandler:      promhttp.HandlerFor(rt.Registry, promhttp.HandlerOpts{}),
		RateLimitRPS:        cfg.RateLimitRPS,
		RateLimitBurst:      cfg.RateLimitBurst,
		OperatorSecret:      cfg.OperatorJWTSecret,
		CORS: httpmiddleware.CORSConfig{
			AllowedOrigins: cfg.CORSAllowedOrigins,
			AllowedHeaders: cfg.CORSAllowedHeaders,
			AllowedMethods: cfg.CORSAllowedMethods,
			MaxAge:         cfg.CORSMaxAge,
		},
	}
	if rt.Archive != nil && rt.Archive.PG != nil {
		routerCfg.BookingsHandler = handlers.NewBookingsHandler(rt.Archive.PG, logger)
	}
	return router.New(routerCfg)
}
