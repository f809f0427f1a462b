package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/wolfman30/locus-venue/cmd/mainconfig"
	"github.com/wolfman30/locus-venue/internal/app/bootstrap"
	appconfig "github.com/wolfman30/locus-venue/internal/config"
	"github.com/wolfman30/locus-venue/pkg/logging"
)

func main() {
	envFiles := mainconfig.LoadEnvFiles()

	cfg := appconfig.Load()
	logger := logging.New(cfg.LogLevel)
	logger.Info("starting locus venue API server",
		"env", cfg.Env,
		"port", cfg.Port,
		"env_files", envFiles,
	)

	app, err := bootstrap.Build(context.Background(), cfg, mainconfig.LoadAWSConfig, logger)
	if err != nil {
		logger.Error("failed to build application", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := app.Close(); err != nil {
			logger.Warn("failed to close resources", "error", err)
		}
	}()

	srv := newServer(cfg, app.Handler)

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
	fmt.Println("Server exited gracefully")
}

// newServer applies the HTTP timeouts. WriteTimeout stays zero so chat
// WebSocket connections are not cut mid-visit.
func newServer(cfg *appconfig.Config, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}
