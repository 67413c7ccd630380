package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
	"testing"

	"adforge/internal/domain/entity"
	"adforge/internal/prompt"

	"github.com/stretchr/testify/require"
)

type fakeGenerator struct {
	mu       sync.Mutex
	resp     *entity.RawModelResponse
	err      error
	requests []entity.GenerationRequest
}

func (f *fakeGenerator) Generate(_ context.Context, req entity.GenerationRequest) (*entity.RawModelResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req)
	if f.err != nil {
		return nil, f.err
	}
	if f.resp == nil {
		return nil, nil
	}
	cp := *f.resp
	return &cp, nil
}

func (f *fakeGenerator) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

type memStore struct {
	mu   sync.Mutex
	recs map[string]*entity.CampaignRecord
	err  error
}

func newMemStore() *memStore {
	return &memStore{recs: map[string]*entity.CampaignRecord{}}
}

func (m *memStore) Save(_ context.Context, rec *entity.CampaignRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.recs[rec.ID] = rec
	return nil
}

func (m *memStore) Get(_ context.Context, ownerID, id string) (*entity.CampaignRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.recs[id]
	if !ok || rec.OwnerID != ownerID {
		return nil, entity.ErrResourceNotFound
	}
	return rec, nil
}

func (m *memStore) List(_ context.Context, ownerID string, limit int) ([]*entity.CampaignRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*entity.CampaignRecord
	for _, rec := range m.recs {
		if rec.OwnerID == ownerID {
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memStore) Delete(_ context.Context, ownerID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.recs[id]
	if !ok || rec.OwnerID != ownerID {
		return entity.ErrResourceNotFound
	}
	delete(m.recs, id)
	return nil
}

type fakeEmbedder struct{ err error }

func (f fakeEmbedder) CreateEmbedding(_ context.Context, text string) ([]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []float32{float32(len(text)), 1}, nil
}

type fakeIndex struct {
	mu       sync.Mutex
	upserts  []string
	removed  []string
	hits     []entity.SimilarCampaign
	lastSkip  string
	lastLimit int
}

func (f *fakeIndex) Upsert(_ context.Context, rec *entity.CampaignRecord, _ string, _ []float32) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.upserts = append(f.upserts, rec.ID)
	return nil
}

func (f *fakeIndex) Search(_ context.Context, _ string, _ []float32, limit int, excludeID string) ([]entity.SimilarCampaign, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastSkip = excludeID
	f.lastLimit = limit
	if len(f.hits) > limit {
		return f.hits[:limit], nil
	}
	return f.hits, nil
}

func (f *fakeIndex) Remove(_ context.Context, _ string, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.removed = append(f.removed, id)
	return nil
}

func testCatalog(t *testing.T) *prompt.Catalog {
	t.Helper()
	c, err := prompt.DefaultCatalog()
	require.NoError(t, err)
	return c
}

func testParams() entity.GenerationParams {
	return entity.GenerationParams{ModelID: "gemini-2.5-flash", Temperature: 0.7, TopP: 0.95, MaxOutputTokens: 8192}
}

func newTestPipeline(t *testing.T, gen *fakeGenerator) *Pipeline {
	t.Helper()
	return NewPipeline(prompt.NewBuilder(testCatalog(t)), NewInvoker(gen, nil), testParams(), nil)
}

// searchPayload builds a search campaign payload with the given group and
// negative keyword counts.
func searchPayload(groups, negatives int) map[string]any {
	adGroups := make([]any, 0, groups)
	for i := 0; i < groups; i++ {
		headlines := make([]any, 15)
		for h := range headlines {
			headlines[h] = fmt.Sprintf("Headline %d-%d", i, h)
		}
		adGroups = append(adGroups, map[string]any{
			"name":         fmt.Sprintf("Group %d", i),
			"theme":        "intent",
			"keywords":     []any{map[string]any{"text": "it helpdesk", "matchType": "phrase"}},
			"headlines":    headlines,
			"descriptions": []any{"One", "Two", "Three", "Four"},
			"path1":        "help",
			"path2":        "desk",
		})
	}
	neg := make([]any, negatives)
	for i := range neg {
		neg[i] = fmt.Sprintf("negative %d", i)
	}
	return map[string]any{
		"adGroups":         adGroups,
		"negativeKeywords": neg,
		"meta":             map[string]any{"campaignName": "Search", "biddingStrategy": "", "notes": ""},
	}
}

func mustJSON(t *testing.T, v any) string {
	t.Helper()
	raw, err := json.Marshal(v)
	require.NoError(t, err)
	return string(raw)
}

func fenced(s string) string {
	return "```json\n" + strings.TrimSpace(s) + "\n```"
}
