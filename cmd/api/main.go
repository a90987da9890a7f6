package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"resume-uploads/internal/bootstrap"
	"resume-uploads/internal/shared/config"
	"resume-uploads/internal/shared/server"
	"resume-uploads/internal/shared/telemetry"
)

func main() {
	port := pflag.String("port", "", "listen port (overrides PORT)")
	envFile := pflag.String("env-file", "", "load variables from this file before reading config")
	pflag.Parse()

	if *envFile != "" {
		if err := config.LoadEnvFile(*envFile); err != nil {
			telemetry.Error("api.env_file_failed", map[string]any{"path": *envFile, "error": err.Error()})
			os.Exit(1)
		}
	}

	cfg := config.Load()
	if *port != "" {
		cfg.Port = *port
	}

	app, err := bootstrap.Build(cfg)
	if err != nil {
		telemetry.Error("api.bootstrap_failed", map[string]any{"error": err.Error()})
		os.Exit(1)
	}
	defer app.Close()

	srv := &http.Server{
		Addr:              server.Addr(cfg.Port),
		Handler:           app.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		telemetry.Info("api.listening", map[string]any{"addr": srv.Addr, "env": cfg.Env})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			telemetry.Error("api.server_failed", map[string]any{"error": err.Error()})
			os.Exit(1)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		telemetry.Warn("api.shutdown_failed", map[string]any{"error": err.Error()})
	}
	telemetry.Info("api.stopped", nil)
}
