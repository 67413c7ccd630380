package client

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"adforge/internal/domain/entity"

	"google.golang.org/genai"
)

var errEmptyResponse = errors.New("gemini: response has no candidates")

// GeminiClient is the Gemini generation backend. The underlying *genai.Client
// is built once by the caller and shared with the embedder.
type GeminiClient struct {
	client *genai.Client
	// jsonMode asks the API for application/json output.
	jsonMode bool
}

func NewGeminiClientFromClient(c *genai.Client) *GeminiClient {
	return &GeminiClient{client: c, jsonMode: true}
}

// WithJSONMode toggles the application/json response MIME type. Some older
// models reject it.
func (g *GeminiClient) WithJSONMode(on bool) *GeminiClient {
	g.jsonMode = on
	return g
}

func (g *GeminiClient) Generate(ctx context.Context, req entity.GenerationRequest) (*entity.RawModelResponse, error) {
	cfg := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(req.Temperature),
		TopP:            genai.Ptr(req.TopP),
		MaxOutputTokens: req.MaxOutputTokens,
		CandidateCount:  1,
	}
	if g.jsonMode {
		cfg.ResponseMIMEType = "application/json"
	}

	result, err := g.client.Models.GenerateContent(ctx, req.ModelID, genai.Text(req.Prompt), cfg)
	if err != nil {
		return nil, fmt.Errorf("gemini generate: %w", err)
	}
	return decodeGeminiResponse(result, req.ModelID)
}

// decodeGeminiResponse checks the fields we rely on instead of indexing blindly.
// A prompt rejected before generation has no candidates but a block reason.
func decodeGeminiResponse(result *genai.GenerateContentResponse, model string) (*entity.RawModelResponse, error) {
	if result == nil {
		return nil, errEmptyResponse
	}
	out := &entity.RawModelResponse{Model: model}
	if result.ModelVersion != "" {
		out.Model = result.ModelVersion
	}
	if result.UsageMetadata != nil {
		out.TokenCount = int(result.UsageMetadata.TotalTokenCount)
	}

	if len(result.Candidates) == 0 {
		if result.PromptFeedback != nil && result.PromptFeedback.BlockReason != "" {
			out.FinishReason = entity.FinishSafety
			return out, nil
		}
		return nil, errEmptyResponse
	}

	cand := result.Candidates[0]
	out.FinishReason = mapGeminiFinish(cand.FinishReason)
	if cand.Content == nil || len(cand.Content.Parts) == 0 {
		if out.FinishReason == entity.FinishSafety {
			return out, nil
		}
		return nil, fmt.Errorf("gemini: candidate has no content (finish reason %q)", cand.FinishReason)
	}

	var sb strings.Builder
	for _, part := range cand.Content.Parts {
		if part == nil || part.Thought {
			continue
		}
		sb.WriteString(part.Text)
	}
	out.Text = sb.String()
	return out, nil
}

func mapGeminiFinish(r genai.FinishReason) entity.FinishReason {
	switch r {
	case genai.FinishReasonStop:
		return entity.FinishStop
	case genai.FinishReasonMaxTokens:
		return entity.FinishLength
	case genai.FinishReasonSafety,
		genai.FinishReasonBlocklist,
		genai.FinishReasonProhibitedContent,
		genai.FinishReasonSPII,
		genai.FinishReasonRecitation:
		return entity.FinishSafety
	default:
		return entity.FinishOther
	}
}
