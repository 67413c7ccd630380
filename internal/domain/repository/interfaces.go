package repository

import (
	"adforge/internal/domain/entity"
	"context"
)

// Generator is one text-generation backend. Implementations make exactly one call.
type Generator interface {
	Generate(ctx context.Context, req entity.GenerationRequest) (*entity.RawModelResponse, error)
}

type CampaignStore interface {
	Save(ctx context.Context, rec *entity.CampaignRecord) error
	Get(ctx context.Context, ownerID, id string) (*entity.CampaignRecord, error)
	List(ctx context.Context, ownerID string, limit int) ([]*entity.CampaignRecord, error)
	Delete(ctx context.Context, ownerID, id string) error
}

type Embedder interface {
	CreateEmbedding(ctx context.Context, text string) ([]float32, error)
}

type SimilarityIndex interface {
	Upsert(ctx context.Context, rec *entity.CampaignRecord, summary string, vector []float32) error
	Search(ctx context.Context, ownerID string, vector []float32, limit int, excludeID string) ([]entity.SimilarCampaign, error)
	Remove(ctx context.Context, ownerID, id string) error
}
