package entity

import "fmt"

// FinishReason is the backend-neutral reason a generation stopped.
type FinishReason string

const (
	FinishStop   FinishReason = "STOP"
	FinishSafety FinishReason = "SAFETY"
	FinishLength FinishReason = "LENGTH"
	FinishOther  FinishReason = "OTHER"
)

// GenerationParams are the sampling knobs sent with every request.
type GenerationParams struct {
	ModelID         string  `json:"modelId"`
	Temperature     float32 `json:"temperature"`
	TopP            float32 `json:"topP"`
	MaxOutputTokens int32   `json:"maxOutputTokens"`
}

// Validate enforces temperature in [0,1], topP in (0,1] and a positive token ceiling.
func (p GenerationParams) Validate() error {
	if p.ModelID == "" {
		return fmt.Errorf("model id is required")
	}
	if p.Temperature < 0 || p.Temperature > 1 {
		return fmt.Errorf("temperature %.2f out of range [0,1]", p.Temperature)
	}
	if p.TopP <= 0 || p.TopP > 1 {
		return fmt.Errorf("topP %.2f out of range (0,1]", p.TopP)
	}
	if p.MaxOutputTokens <= 0 {
		return fmt.Errorf("maxOutputTokens must be positive, got %d", p.MaxOutputTokens)
	}
	return nil
}

type GenerationRequest struct {
	Prompt string `json:"prompt"`
	GenerationParams
}

type RawModelResponse struct {
	Text         string       `json:"text"`
	FinishReason FinishReason `json:"finishReason"`
	Model        string       `json:"model"`      // Which model actually answered?
	TokenCount   int          `json:"tokenCount"` // 0 when the backend does not report usage
}
