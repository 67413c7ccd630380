package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCampaignType(t *testing.T) {
	for _, ct := range CampaignTypes {
		got, err := ParseCampaignType(string(ct))
		require.NoError(t, err)
		assert.Equal(t, ct, got)
	}
	got, err := ParseCampaignType("  PMax ")
	require.NoError(t, err)
	assert.Equal(t, CampaignPMax, got)

	_, err = ParseCampaignType("radio")
	assert.ErrorIs(t, err, ErrInput)
}

func TestParseOutputMode(t *testing.T) {
	m, err := ParseOutputMode("", CampaignSearch)
	require.NoError(t, err)
	assert.Equal(t, NormalMode{Type: CampaignSearch}, m)

	m, err = ParseOutputMode("Concepts", CampaignVideo)
	require.NoError(t, err)
	assert.Equal(t, ConceptDeck{Type: CampaignVideo}, m)
	assert.Equal(t, "concepts", m.Name())
	assert.Equal(t, CampaignVideo, m.CampaignType())

	_, err = ParseOutputMode("carousel", CampaignSearch)
	assert.ErrorIs(t, err, ErrInput)
}

func TestUserContextHas(t *testing.T) {
	uc := UserContext{
		BusinessDescription: "desks",
		TargetAudience:      "   ",
		Products:            []string{"Oak Desk"},
		MonthlyBudget:       0,
		Extra:               map[string]any{"season": "winter", "empty": nil},
	}
	assert.True(t, uc.Has("businessDescription"))
	assert.False(t, uc.Has("targetAudience"))
	assert.True(t, uc.Has("products"))
	assert.False(t, uc.Has("monthlyBudget"))
	assert.True(t, uc.Has("season"))
	assert.False(t, uc.Has("empty"))
	assert.False(t, uc.Has("unknown"))

	assert.False(t, uc.IsZero())
	assert.True(t, UserContext{}.IsZero())
	assert.False(t, UserContext{Extra: map[string]any{"k": 1}}.IsZero())
}

func TestGenerationParamsValidate(t *testing.T) {
	ok := GenerationParams{ModelID: "gemini-2.5-flash", Temperature: 0, TopP: 1, MaxOutputTokens: 1}
	assert.NoError(t, ok.Validate())

	bad := []GenerationParams{
		{Temperature: 0.5, TopP: 0.9, MaxOutputTokens: 10},
		{ModelID: "m", Temperature: 1.1, TopP: 0.9, MaxOutputTokens: 10},
		{ModelID: "m", Temperature: -0.1, TopP: 0.9, MaxOutputTokens: 10},
		{ModelID: "m", Temperature: 0.5, TopP: 0, MaxOutputTokens: 10},
		{ModelID: "m", Temperature: 0.5, TopP: 0.9, MaxOutputTokens: 0},
	}
	for _, p := range bad {
		assert.Error(t, p.Validate(), "%+v", p)
	}
}
