package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fixora/complaintdesk/infrastructure/config"
	"github.com/fixora/complaintdesk/infrastructure/container"
)

const serviceName = "complaintdesk"

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	app, err := container.New(ctx, cfg, serviceName)
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}
	defer app.Close()

	app.Logger.Info(ctx, "Application starting", map[string]interface{}{
		"env":             cfg.Environment,
		"email_provider":  cfg.EmailProvider,
		"ops_routes":      cfg.ServiceRoleKey != "",
		"audit_broker":    cfg.AuditAMQPEnabled,
		"metrics_enabled": cfg.MetricsEnabled,
	})
	if cfg.ServiceRoleKey == "" {
		app.Logger.Warn(ctx, "SERVICE_ROLE_KEY is not set; orphaned-role cleanup is only available through cmd/cleanup_orphans", nil)
	}

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.ServerHost, cfg.ServerPort),
		Handler:      app.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		app.Logger.Info(ctx, "Starting server", map[string]interface{}{
			"host": cfg.ServerHost,
			"port": cfg.ServerPort,
		})
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			app.Logger.Error(ctx, "Server failed to start", err, map[string]interface{}{
				"host": cfg.ServerHost,
				"port": cfg.ServerPort,
			})
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	app.Logger.Info(ctx, "Shutting down server...", nil)

	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		app.Logger.Error(ctx, "Server forced to shutdown", err, nil)
	}
	app.Logger.Info(ctx, "Server exited", nil)
}
