package main

import (
	"context"
	"fmt"

	"adforge/internal/adapter/client"
	"adforge/internal/adapter/store"
	"adforge/internal/config"
	"adforge/internal/domain/entity"
	"adforge/internal/domain/repository"
	"adforge/internal/platform/logger"
	"adforge/internal/prompt"
	"adforge/internal/usecase"

	"github.com/qdrant/go-client/qdrant"
	"github.com/redis/go-redis/v9"
	"google.golang.org/genai"
)

// openAIPrefixes route a model id to the OpenAI-compatible backend.
var openAIPrefixes = []string{"gpt-", "o1", "o3", "o4", "chatgpt-"}

func loadConfig() (*config.Config, *logger.Logger, error) {
	cfg, err := config.Load(envFile)
	if err != nil {
		return nil, nil, err
	}
	log, err := logger.New(cfg.LogMode)
	if err != nil {
		return nil, nil, fmt.Errorf("init logger: %w", err)
	}
	return cfg, log, nil
}

func newGenAIClient(ctx context.Context, cfg *config.Config) (*genai.Client, error) {
	cc := &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.GoogleProject != "" {
		cc = &genai.ClientConfig{
			Project:  cfg.GoogleProject,
			Location: cfg.GoogleLocation,
			Backend:  genai.BackendVertexAI,
		}
	}
	c, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("failed to init genai client: %w", err)
	}
	return c, nil
}

// newInvoker uses Gemini for every model unless an OpenAI key is configured,
// in which case OpenAI model ids go there.
func newInvoker(genaiClient *genai.Client, cfg *config.Config, log *logger.Logger) (*usecase.Invoker, error) {
	invoker := usecase.NewInvoker(client.NewGeminiClientFromClient(genaiClient), log)
	if cfg.OpenAIAPIKey != "" {
		oa, err := client.NewOpenAIClient(client.OpenAISettings{APIKey: cfg.OpenAIAPIKey, BaseURL: cfg.OpenAIBaseURL})
		if err != nil {
			return nil, err
		}
		invoker.Route(oa, openAIPrefixes...)
	}
	return invoker, nil
}

func newPipeline(invoker *usecase.Invoker, params entity.GenerationParams, log *logger.Logger) (*usecase.Pipeline, error) {
	catalog, err := prompt.DefaultCatalog()
	if err != nil {
		return nil, err
	}
	return usecase.NewPipeline(prompt.NewBuilder(catalog), invoker, params, log), nil
}

// newCampaignStore opens the configured backend. The returned func releases it.
func newCampaignStore(ctx context.Context, cfg *config.Config, log *logger.Logger) (repository.CampaignStore, func(), error) {
	switch cfg.StoreBackend {
	case config.StorePostgres:
		db, err := store.OpenPostgres(cfg.PostgresDSN)
		if err != nil {
			return nil, nil, err
		}
		s := store.NewGormStore(db)
		if err := s.AutoMigrate(); err != nil {
			return nil, nil, fmt.Errorf("migrate campaigns table: %w", err)
		}
		closeFn := func() {
			if sqlDB, err := db.DB(); err == nil {
				_ = sqlDB.Close()
			}
		}
		log.Info("campaign store ready", "backend", "postgres")
		return s, closeFn, nil
	default:
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := rdb.Ping(ctx).Err(); err != nil {
			return nil, nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.RedisAddr, err)
		}
		log.Info("campaign store ready", "backend", "redis", "addr", cfg.RedisAddr)
		return store.NewRedisStore(rdb, cfg.RedisPrefix), func() { _ = rdb.Close() }, nil
	}
}

// newSimilarity returns nil, nil when no Qdrant host is configured.
func newSimilarity(ctx context.Context, cfg *config.Config, genaiClient *genai.Client, log *logger.Logger) (*client.Embedder, *store.QdrantIndex, error) {
	if !cfg.SimilarityEnabled() {
		log.Info("similar campaigns disabled: QDRANT_HOST not set")
		return nil, nil, nil
	}
	qClient, err := qdrant.NewClient(&qdrant.Config{
		Host: cfg.QdrantHost,
		Port: cfg.QdrantPort,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to qdrant: %w", err)
	}
	index := store.NewQdrantIndex(qClient, cfg.QdrantCollection, log)
	if err := index.InitCollection(ctx, cfg.EmbeddingDim); err != nil {
		return nil, nil, fmt.Errorf("failed to init qdrant collection: %w", err)
	}
	return client.NewEmbedderFromClient(genaiClient, cfg.EmbeddingModel), index, nil
}
