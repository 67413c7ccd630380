package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"adforge/internal/domain/entity"
	"adforge/internal/domain/repository"
	"adforge/internal/platform/logger"

	"github.com/google/uuid"
)

const (
	defaultListLimit    = 50
	maxListLimit        = 200
	defaultSimilarLimit = 5
	maxSimilarLimit     = 50
)

// CampaignService is what the HTTP layer talks to: it runs the pipeline and
// keeps owner-scoped history of the results.
type CampaignService struct {
	pipeline *Pipeline
	store    repository.CampaignStore
	embedder repository.Embedder
	index    repository.SimilarityIndex
	log      *logger.Logger
	now      func() time.Time
}

func NewCampaignService(p *Pipeline, store repository.CampaignStore, log *logger.Logger) *CampaignService {
	if log == nil {
		log = logger.Nop()
	}
	return &CampaignService{
		pipeline: p,
		store:    store,
		log:      log.With("component", "campaigns"),
		now:      time.Now,
	}
}

// WithSimilarity enables similar-campaign lookups.
func (s *CampaignService) WithSimilarity(emb repository.Embedder, idx repository.SimilarityIndex) *CampaignService {
	s.embedder, s.index = emb, idx
	return s
}

func (s *CampaignService) Pipeline() *Pipeline { return s.pipeline }

type GenerateOutput struct {
	Result *Result                `json:"result"`
	Record *entity.CampaignRecord `json:"campaign,omitempty"`
}

// Generate runs the pipeline for ownerID. With persist set, the result is
// stored and indexed; an indexing failure is logged and does not fail the call.
func (s *CampaignService) Generate(ctx context.Context, ownerID string, req Request, persist bool) (*GenerateOutput, error) {
	if ownerID == "" {
		return nil, entity.ErrUnauthorized
	}
	res, err := s.pipeline.Run(ctx, req)
	if err != nil {
		return nil, err
	}
	out := &GenerateOutput{Result: res}
	if !persist {
		return out, nil
	}

	rec := &entity.CampaignRecord{
		ID:            uuid.NewString(),
		OwnerID:       ownerID,
		CampaignType:  res.CampaignType,
		OutputMode:    res.OutputMode,
		UserContext:   req.UserContext,
		Payload:       res.Payload,
		Advisories:    res.Advisories,
		Model:         res.Model,
		PromptVersion: res.PromptVersion,
		CreatedAt:     s.now().UTC(),
	}
	if err := s.store.Save(ctx, rec); err != nil {
		return nil, fmt.Errorf("save campaign: %w", err)
	}
	out.Record = rec
	s.indexRecord(ctx, rec)
	return out, nil
}

func (s *CampaignService) indexRecord(ctx context.Context, rec *entity.CampaignRecord) {
	if s.index == nil || s.embedder == nil {
		return
	}
	summary := Summarize(rec)
	vector, err := s.embedder.CreateEmbedding(ctx, summary)
	if err != nil {
		s.log.Warn("embedding failed, campaign not indexed", "campaignId", rec.ID, "error", err)
		return
	}
	if err := s.index.Upsert(ctx, rec, summary, vector); err != nil {
		s.log.Warn("similarity index upsert failed", "campaignId", rec.ID, "error", err)
	}
}

func (s *CampaignService) Get(ctx context.Context, ownerID, id string) (*entity.CampaignRecord, error) {
	if ownerID == "" {
		return nil, entity.ErrUnauthorized
	}
	return s.store.Get(ctx, ownerID, id)
}

func (s *CampaignService) List(ctx context.Context, ownerID string, limit int) ([]*entity.CampaignRecord, error) {
	if ownerID == "" {
		return nil, entity.ErrUnauthorized
	}
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	return s.store.List(ctx, ownerID, limit)
}

func (s *CampaignService) Delete(ctx context.Context, ownerID, id string) error {
	if ownerID == "" {
		return entity.ErrUnauthorized
	}
	if err := s.store.Delete(ctx, ownerID, id); err != nil {
		return err
	}
	if s.index != nil {
		if err := s.index.Remove(ctx, ownerID, id); err != nil {
			s.log.Warn("similarity index removal failed", "campaignId", id, "error", err)
		}
	}
	return nil
}

// Similar returns the owner's saved campaigns closest to campaign id.
func (s *CampaignService) Similar(ctx context.Context, ownerID, id string, limit int) ([]entity.SimilarCampaign, error) {
	if s.index == nil || s.embedder == nil {
		return nil, entity.ErrFeatureDisabled
	}
	rec, err := s.Get(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = defaultSimilarLimit
	}
	if limit > maxSimilarLimit {
		limit = maxSimilarLimit
	}
	vector, err := s.embedder.CreateEmbedding(ctx, Summarize(rec))
	if err != nil {
		return nil, fmt.Errorf("embed campaign summary: %w", err)
	}
	return s.index.Search(ctx, ownerID, vector, limit, rec.ID)
}

// Summarize is the text embedded for similarity search.
func Summarize(rec *entity.CampaignRecord) string {
	uc := rec.UserContext
	parts := []string{
		fmt.Sprintf("%s campaign", rec.CampaignType),
		"Business: " + uc.BusinessDescription,
		"Audience: " + uc.TargetAudience,
		"Goal: " + uc.CampaignGoal,
	}
	if len(uc.Products) > 0 {
		parts = append(parts, "Products: "+strings.Join(uc.Products, ", "))
	}
	return strings.Join(parts, ". ")
}
