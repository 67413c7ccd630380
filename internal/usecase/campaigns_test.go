package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"adforge/internal/domain/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T, gen *fakeGenerator, store *memStore) *CampaignService {
	t.Helper()
	return NewCampaignService(newTestPipeline(t, gen), store, nil)
}

func okGenerator(t *testing.T) *fakeGenerator {
	return &fakeGenerator{resp: &entity.RawModelResponse{
		Text:         mustJSON(t, searchPayload(3, 100)),
		FinishReason: entity.FinishStop,
	}}
}

func TestCampaignServiceGeneratePersists(t *testing.T) {
	store := newMemStore()
	idx := &fakeIndex{}
	svc := newTestService(t, okGenerator(t), store).WithSimilarity(fakeEmbedder{}, idx)
	fixed := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }

	out, err := svc.Generate(context.Background(), "owner-1", searchRequest(), true)
	require.NoError(t, err)
	require.NotNil(t, out.Record)

	rec := out.Record
	assert.NotEmpty(t, rec.ID)
	assert.Equal(t, "owner-1", rec.OwnerID)
	assert.Equal(t, entity.CampaignSearch, rec.CampaignType)
	assert.Equal(t, fixed, rec.CreatedAt)
	assert.Equal(t, out.Result.Payload, rec.Payload)
	assert.Equal(t, []string{rec.ID}, idx.upserts)

	got, err := svc.Get(context.Background(), "owner-1", rec.ID)
	require.NoError(t, err)
	assert.Equal(t, rec, got)

	_, err = svc.Get(context.Background(), "owner-2", rec.ID)
	assert.ErrorIs(t, err, entity.ErrResourceNotFound)
}

func TestCampaignServiceGenerateWithoutPersist(t *testing.T) {
	store := newMemStore()
	svc := newTestService(t, okGenerator(t), store)

	out, err := svc.Generate(context.Background(), "owner-1", searchRequest(), false)
	require.NoError(t, err)
	assert.Nil(t, out.Record)
	assert.Empty(t, store.recs)
}

func TestCampaignServiceRequiresOwner(t *testing.T) {
	gen := okGenerator(t)
	svc := newTestService(t, gen, newMemStore())

	_, err := svc.Generate(context.Background(), "", searchRequest(), true)
	assert.ErrorIs(t, err, entity.ErrUnauthorized)
	_, err = svc.List(context.Background(), "", 10)
	assert.ErrorIs(t, err, entity.ErrUnauthorized)
	assert.Zero(t, gen.calls())
}

func TestCampaignServicePipelineErrorIsNotPersisted(t *testing.T) {
	store := newMemStore()
	gen := &fakeGenerator{resp: &entity.RawModelResponse{FinishReason: entity.FinishSafety}}
	svc := newTestService(t, gen, store)

	_, err := svc.Generate(context.Background(), "owner-1", searchRequest(), true)
	assert.ErrorIs(t, err, entity.ErrSafetyBlocked)
	assert.Empty(t, store.recs)
}

func TestCampaignServiceStoreFailure(t *testing.T) {
	store := newMemStore()
	store.err = errors.New("connection refused")
	svc := newTestService(t, okGenerator(t), store)

	_, err := svc.Generate(context.Background(), "owner-1", searchRequest(), true)
	require.Error(t, err)
	_, isPipeline := entity.AsPipelineError(err)
	assert.False(t, isPipeline)
	assert.Contains(t, err.Error(), "save campaign")
}

func TestCampaignServiceIndexFailureIsNotFatal(t *testing.T) {
	idx := &fakeIndex{}
	svc := newTestService(t, okGenerator(t), newMemStore()).WithSimilarity(fakeEmbedder{err: errors.New("quota")}, idx)

	out, err := svc.Generate(context.Background(), "owner-1", searchRequest(), true)
	require.NoError(t, err)
	assert.NotNil(t, out.Record)
	assert.Empty(t, idx.upserts)
}

func TestCampaignServiceListAndDelete(t *testing.T) {
	store := newMemStore()
	idx := &fakeIndex{}
	svc := newTestService(t, okGenerator(t), store).WithSimilarity(fakeEmbedder{}, idx)

	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	var ids []string
	for i := 0; i < 3; i++ {
		at := base.Add(time.Duration(i) * time.Hour)
		svc.now = func() time.Time { return at }
		out, err := svc.Generate(context.Background(), "owner-1", searchRequest(), true)
		require.NoError(t, err)
		ids = append(ids, out.Record.ID)
	}

	list, err := svc.List(context.Background(), "owner-1", 2)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, ids[2], list[0].ID)

	require.NoError(t, svc.Delete(context.Background(), "owner-1", ids[0]))
	assert.Equal(t, []string{ids[0]}, idx.removed)
	assert.ErrorIs(t, svc.Delete(context.Background(), "owner-1", ids[0]), entity.ErrResourceNotFound)
}

func TestCampaignServiceSimilar(t *testing.T) {
	store := newMemStore()
	idx := &fakeIndex{hits: []entity.SimilarCampaign{{CampaignID: "a", Score: 0.9}, {CampaignID: "b", Score: 0.8}}}
	svc := newTestService(t, okGenerator(t), store)

	_, err := svc.Similar(context.Background(), "owner-1", "x", 5)
	assert.ErrorIs(t, err, entity.ErrFeatureDisabled)

	svc.WithSimilarity(fakeEmbedder{}, idx)
	out, err := svc.Generate(context.Background(), "owner-1", searchRequest(), true)
	require.NoError(t, err)

	hits, err := svc.Similar(context.Background(), "owner-1", out.Record.ID, 1)
	require.NoError(t, err)
	assert.Len(t, hits, 1)
	assert.Equal(t, out.Record.ID, idx.lastSkip)

	_, err = svc.Similar(context.Background(), "owner-1", "missing", 1)
	assert.ErrorIs(t, err, entity.ErrResourceNotFound)
}

func TestCampaignServiceSimilarClampsLimit(t *testing.T) {
	idx := &fakeIndex{}
	svc := newTestService(t, okGenerator(t), newMemStore()).WithSimilarity(fakeEmbedder{}, idx)
	out, err := svc.Generate(context.Background(), "owner-1", searchRequest(), true)
	require.NoError(t, err)

	_, err = svc.Similar(context.Background(), "owner-1", out.Record.ID, 1_000_000)
	require.NoError(t, err)
	assert.Equal(t, maxSimilarLimit, idx.lastLimit)

	_, err = svc.Similar(context.Background(), "owner-1", out.Record.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, defaultSimilarLimit, idx.lastLimit)
}

func TestSummarize(t *testing.T) {
	rec := &entity.CampaignRecord{
		CampaignType: entity.CampaignShopping,
		UserContext: entity.UserContext{
			BusinessDescription: "Outdoor gear shop",
			TargetAudience:      "Trail runners",
			CampaignGoal:        "sales",
			Products:            []string{"Ridge Runner 2"},
		},
	}
	assert.Equal(t,
		"shopping campaign. Business: Outdoor gear shop. Audience: Trail runners. Goal: sales. Products: Ridge Runner 2",
		Summarize(rec))
}
