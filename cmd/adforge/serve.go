package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"adforge/internal/adapter/api"
	"adforge/internal/usecase"

	"github.com/gofiber/fiber/v2"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	genaiClient, err := newGenAIClient(ctx, cfg)
	if err != nil {
		return err
	}
	invoker, err := newInvoker(genaiClient, cfg, log)
	if err != nil {
		return err
	}
	pipeline, err := newPipeline(invoker, cfg.Generation, log)
	if err != nil {
		return err
	}

	campaignStore, closeStore, err := newCampaignStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeStore()

	campaigns := usecase.NewCampaignService(pipeline, campaignStore, log)
	embedder, index, err := newSimilarity(ctx, cfg, genaiClient, log)
	if err != nil {
		return err
	}
	if index != nil {
		campaigns.WithSimilarity(embedder, index)

		go func() {
			warmCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			if _, err := embedder.CreateEmbedding(warmCtx, "warmup"); err != nil {
				log.Warn("embedder warm-up failed", "error", err)
				return
			}
			log.Info("embedder warm-up complete")
		}()
	}

	// Initialize API Layer (Delivery Layer)
	app := fiber.New(fiber.Config{
		AppName: "adforge",
	})
	handler := api.NewCampaignHandler(campaigns, usecase.NewBriefParser(invoker, cfg.Generation), log)
	api.SetupRouter(app, handler, api.RouterConfig{
		Version:   cfg.AppVersion,
		Env:       cfg.Env,
		Auth:      api.NewAuthMiddleware(cfg.JWTSecret, cfg.AuthIssuer),
		AccessLog: true,
	})
	if cfg.JWTSecret == "" {
		log.Warn("AUTH_JWT_SECRET not set: owner taken from X-User-Id")
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			log.Error("shutdown failed", "error", err)
		}
	}()

	log.Info("adforge API listening", "port", cfg.Port, "model", cfg.Generation.ModelID, "store", cfg.StoreBackend)
	return app.Listen(":" + cfg.Port)
}
