package client

import (
	"context"
	"errors"
	"fmt"

	"adforge/internal/domain/entity"

	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// OpenAISettings configures the OpenAI-compatible backend.
type OpenAISettings struct {
	APIKey  string
	BaseURL string
}

// OpenAIClient implements the generation backend on the chat completions API.
type OpenAIClient struct {
	client openai.Client
}

func NewOpenAIClient(cfg OpenAISettings) (*OpenAIClient, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("openai api key missing")
	}
	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey), option.WithMaxRetries(0)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	return &OpenAIClient{client: openai.NewClient(opts...)}, nil
}

func (o *OpenAIClient) Generate(ctx context.Context, req entity.GenerationRequest) (*entity.RawModelResponse, error) {
	resp, err := o.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(req.ModelID),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(req.Prompt),
		},
		Temperature:         openai.Float(float64(req.Temperature)),
		TopP:                openai.Float(float64(req.TopP)),
		MaxCompletionTokens: openai.Int(int64(req.MaxOutputTokens)),
	})
	if err != nil {
		return nil, fmt.Errorf("openai chat completion: %w", err)
	}
	if resp == nil || len(resp.Choices) == 0 {
		return nil, errors.New("openai: empty choices")
	}

	choice := resp.Choices[0]
	out := &entity.RawModelResponse{
		Text:         choice.Message.Content,
		FinishReason: mapOpenAIFinish(choice.FinishReason),
		Model:        resp.Model,
		TokenCount:   int(resp.Usage.TotalTokens),
	}
	if out.Model == "" {
		out.Model = req.ModelID
	}
	if choice.Message.Refusal != "" && out.Text == "" {
		out.FinishReason = entity.FinishSafety
	}
	return out, nil
}

func mapOpenAIFinish(r string) entity.FinishReason {
	switch r {
	case "stop":
		return entity.FinishStop
	case "length":
		return entity.FinishLength
	case "content_filter":
		return entity.FinishSafety
	default:
		return entity.FinishOther
	}
}
