package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mboehm/chorequest/internal/config"
	"github.com/mboehm/chorequest/internal/database"
	"github.com/mboehm/chorequest/internal/gamification"
	"github.com/mboehm/chorequest/internal/jobs"
	"github.com/mboehm/chorequest/internal/logging"
	"github.com/mboehm/chorequest/internal/server"
	"github.com/mboehm/chorequest/internal/store"
	"github.com/mboehm/chorequest/internal/summary"
	"github.com/mboehm/chorequest/internal/webhook"
	ws "github.com/mboehm/chorequest/internal/websocket"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	logger := logging.Setup(cfg.LogLevel)

	db, err := database.Open(cfg.DBPath)
	if err != nil {
		logger.Error("failed to open database", "path", cfg.DBPath, "error", err)
		os.Exit(1)
	}
	defer db.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := ws.NewHub(logger.With("component", "websocket"))

	notifiers := []gamification.Notifier{ws.NewNotifier(hub)}
	if cfg.WebhookConfigured() {
		notifiers = append(notifiers, webhook.NewClient(cfg.HABaseURL, cfg.HAWebhookID, logger.With("component", "webhook")))
	} else {
		logger.Info("home assistant webhook not configured, skipping delivery")
	}
	service := gamification.NewService(db, logger, notifiers...)

	summaryClient := summary.NewClient(cfg.SummaryAPIKey, cfg.SummaryModel, logger.With("component", "summary"),
		summary.WithAPIURL(cfg.SummaryAPIURL))
	generator := summary.NewGenerator(db, summaryClient, logger)

	srv := server.New(cfg, db, hub, service, generator, logger)
	srv.RateLimiter().StartCleanup(ctx, 5*time.Minute)

	scheduler := jobs.NewScheduler(cfg.Location(), store.NewChoreStore(db), service, generator, logger)
	scheduler.Start(ctx)
	defer scheduler.Stop()

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      srv.Router(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Info("chorequest listening", "port", cfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
	}
}
