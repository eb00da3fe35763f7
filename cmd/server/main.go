// Package main initializes and starts the FlowDoc API server, setting up
// configuration, logging, storage, services and handlers.
package main

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	nethttp "net/http"

	"github.com/atinyakov/FlowDoc/internal/config"
	"github.com/atinyakov/FlowDoc/internal/logger"
	"github.com/atinyakov/FlowDoc/internal/server/handler/http"
	"github.com/atinyakov/FlowDoc/internal/service"
	"github.com/atinyakov/FlowDoc/internal/storage"
	"go.uber.org/zap"
)

var (
	// version holds the build version set via ldflags.
	version string
	// buildDate holds the build timestamp set via ldflags.
	buildDate string
)

func main() {
	// Parse command-line and environment configuration.
	options := config.Parse()

	// Print build metadata (or "N/A" if unset).
	fmt.Printf("Build version: %s\n", cmp.Or(version, "N/A"))
	fmt.Printf("Build date: %s\n", cmp.Or(buildDate, "N/A"))

	// Initialize structured logging.
	log := logger.New()
	defer func() { _ = log.Log.Sync() }()
	if err := log.Init(options.LogLevel); err != nil {
		log.Log.Fatal("failed to init logger", zap.Error(err))
	}
	zapLogger := log.Log

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Open the storage backend selected by the DSN.
	kv, err := storage.Open(ctx, options.StorageDSN, storage.Options{
		Log:                log.Module("storage"),
		TombstoneInterval:  options.TombstoneInterval,
		TombstoneRetention: options.TombstoneRetention,
	})
	if err != nil {
		zapLogger.Fatal("cannot open storage", zap.Error(err))
	}
	defer kv.Close()

	// Initialize business-logic services.
	authService := service.NewAuthService(storage.NewAccountStore(kv, log.Module("storage")), log.Module("auth"))
	if options.SeedDemo {
		if err := authService.SeedDemoAccount(ctx); err != nil {
			zapLogger.Error("failed to seed demo account", zap.Error(err))
		}
	}
	workspace := service.NewWorkspace(ctx, storage.NewProjectStore(kv, log.Module("storage")), log.Module("workspace"))

	// Create HTTP handlers.
	authHandler := &http.AuthHandler{AuthService: authService, Log: log.Module("http")}
	workspaceHandler := &http.WorkspaceHandler{Workspace: workspace, Log: log.Module("http")}
	healthHandler := &http.HealthHandler{Storage: kv, Log: log.Module("http")}

	// Build the router with middleware and routes.
	router := http.NewRouter(authHandler, workspaceHandler, healthHandler, authService, zapLogger)

	server := &nethttp.Server{
		Addr:              options.Address,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			zapLogger.Error("graceful shutdown failed", zap.Error(err))
		}
	}()

	zapLogger.Info("starting HTTP server",
		zap.String("addr", options.Address),
		zap.String("storage", storage.Scheme(options.StorageDSN)))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, nethttp.ErrServerClosed) {
		zapLogger.Fatal("failed to start HTTP server", zap.Error(err))
	}
	zapLogger.Info("server stopped")
}
