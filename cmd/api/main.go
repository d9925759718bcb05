package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"medicloud-backend/internal/bootstrap"
	"medicloud-backend/internal/shared/config"
	"medicloud-backend/internal/shared/telemetry"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		telemetry.Error("config.load", map[string]any{"error": err.Error()})
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg)
	if err != nil {
		telemetry.Error("bootstrap", map[string]any{"error": err.Error()})
		os.Exit(1)
	}
	defer app.Close()

	addr := ":" + cfg.Port
	telemetry.Info("server.start", map[string]any{"addr": addr, "env": cfg.Env})

	errCh := make(chan error, 1)
	go func() {
		errCh <- app.Engine.Run(addr)
	}()

	select {
	case err := <-errCh:
		telemetry.Error("server.exit", map[string]any{"error": err.Error()})
		os.Exit(1)
	case <-ctx.Done():
		telemetry.Info("server.shutdown", nil)
	}
}
