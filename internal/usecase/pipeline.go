package usecase

import (
	"context"
	"errors"
	"time"

	"adforge/internal/domain/entity"
	"adforge/internal/platform/logger"
	"adforge/internal/prompt"
)

// Request is the caller's input to one pipeline run.
type Request struct {
	CampaignType string             `json:"campaignType"`
	UserContext  entity.UserContext `json:"userContext"`
	OutputMode   string             `json:"outputMode"`
}

type Result struct {
	CampaignType  entity.CampaignType `json:"campaignType"`
	OutputMode    string              `json:"outputMode"`
	Payload       map[string]any      `json:"payload"`
	Advisories    []entity.Advisory   `json:"advisories,omitempty"`
	Model         string              `json:"model"`
	FinishReason  entity.FinishReason `json:"finishReason"`
	PromptVersion string              `json:"promptVersion"`
	LatencyMS     int64               `json:"latencyMs"`
}

// Pipeline turns a campaign brief into a validated JSON payload:
// build prompt, invoke the model once, extract, validate, audit.
// It holds no per-request state and is safe for concurrent use.
type Pipeline struct {
	builder *prompt.Builder
	invoker *Invoker
	guard   *ShapeGuard
	params  entity.GenerationParams
	log     *logger.Logger
}

func NewPipeline(builder *prompt.Builder, invoker *Invoker, params entity.GenerationParams, log *logger.Logger) *Pipeline {
	if log == nil {
		log = logger.Nop()
	}
	return &Pipeline{
		builder: builder,
		invoker: invoker,
		guard:   NewShapeGuard(builder.Catalog()),
		params:  params,
		log:     log.With("component", "pipeline"),
	}
}

func (p *Pipeline) Catalog() *prompt.Catalog { return p.builder.Catalog() }

// Preview assembles the prompt without calling the model.
func (p *Pipeline) Preview(req Request) (*prompt.Spec, error) {
	_, spec, err := p.prepare(req)
	if err != nil {
		return nil, err
	}
	return spec, nil
}

func (p *Pipeline) prepare(req Request) (entity.OutputMode, *prompt.Spec, error) {
	ct, err := entity.ParseCampaignType(req.CampaignType)
	if err != nil {
		return nil, nil, err
	}
	mode, err := entity.ParseOutputMode(req.OutputMode, ct)
	if err != nil {
		return nil, nil, err
	}
	spec, err := p.builder.Build(mode, req.UserContext)
	if err != nil {
		return nil, nil, asPipelineError(err)
	}
	return mode, spec, nil
}

// Run executes the pipeline. Every returned error is a *entity.PipelineError.
func (p *Pipeline) Run(ctx context.Context, req Request) (*Result, error) {
	start := time.Now()
	mode, spec, err := p.prepare(req)
	if err != nil {
		return nil, err
	}
	log := p.log.With("campaignType", mode.CampaignType(), "mode", mode.Name(), "promptVersion", spec.Version)

	raw, err := p.invoker.Invoke(ctx, entity.GenerationRequest{Prompt: spec.Render(), GenerationParams: p.params})
	if err != nil {
		return nil, asPipelineError(err)
	}

	payload, err := Extract(raw.Text)
	if err != nil {
		log.Warn("could not extract JSON from model output", "model", raw.Model, "finishReason", raw.FinishReason, "rawLength", len(raw.Text))
		return nil, asPipelineError(err)
	}
	payload, err = p.guard.Validate(payload, mode)
	if err != nil {
		log.Warn("model output failed shape validation", "model", raw.Model, "error", err)
		return nil, asPipelineError(err)
	}

	advisories := p.guard.Audit(payload, mode)
	if len(advisories) > 0 {
		log.Info("generated copy breaks advisory rules", "count", len(advisories))
	}

	res := &Result{
		CampaignType:  mode.CampaignType(),
		OutputMode:    mode.Name(),
		Payload:       payload,
		Advisories:    advisories,
		Model:         raw.Model,
		FinishReason:  raw.FinishReason,
		PromptVersion: spec.Version,
		LatencyMS:     time.Since(start).Milliseconds(),
	}
	log.Debug("pipeline run complete", "model", res.Model, "latencyMs", res.LatencyMS)
	return res, nil
}

func asPipelineError(err error) *entity.PipelineError {
	if pe, ok := entity.AsPipelineError(err); ok {
		return pe
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return entity.NewTransportError("request cancelled before the model answered", err)
	}
	return entity.NewTransportError("unexpected pipeline failure", err)
}
