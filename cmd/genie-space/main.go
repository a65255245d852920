package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/yuanchaoma-db/genie-space/internal/auth"
	"github.com/yuanchaoma-db/genie-space/internal/chat"
	"github.com/yuanchaoma-db/genie-space/internal/config"
	"github.com/yuanchaoma-db/genie-space/internal/genie"
	"github.com/yuanchaoma-db/genie-space/internal/logger"
	"github.com/yuanchaoma-db/genie-space/internal/web"
)

func init() {
	godotenv.Load()
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("invalid configuration", "error", err)
	}

	tokens, err := auth.FromConfig(cfg.Host, cfg.Auth)
	if err != nil {
		logger.Fatal("credentials unavailable", "error", err)
	}

	client := genie.New(cfg.Host, cfg.SpaceID, tokens,
		genie.WithMaxAttempts(cfg.Client.MaxAttempts),
		genie.WithBaseDelay(cfg.Client.BaseDelay),
	)
	poller := genie.NewPoller(cfg.Poll.Interval, cfg.Poll.Timeout)
	assistant := genie.NewService(client, poller)

	registry := chat.NewRegistry(assistant)

	reconciler, err := chat.NewReconciler(registry)
	if err != nil {
		logger.Fatal("reconciler setup failed", "error", err)
	}
	reconciler.Start()

	profile, err := config.LoadProfile(cfg.Profile.Path)
	if err != nil {
		logger.Warn("space profile unreadable, using defaults", "path", cfg.Profile.Path, "error", err)
	}

	server := web.NewServer(registry, profile)

	go func() {
		if err := server.ListenAndServe(cfg.Web.Addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", "error", err)
		}
	}()

	logger.Info("genie space ready", "addr", cfg.Web.Addr, "space", cfg.SpaceID)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	logger.Info("shutting down")
	reconciler.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	server.Shutdown(ctx)
}
