package usecase

import (
	"context"
	"strings"

	"adforge/internal/domain/entity"
	"adforge/internal/domain/repository"
	"adforge/internal/platform/logger"
)

type route struct {
	prefixes  []string
	generator repository.Generator
}

// Invoker sends one generation request to the backend that serves the
// requested model. It never retries and sets no timeout of its own.
type Invoker struct {
	fallback repository.Generator // serves every model no route claims
	routes   []route
	log      *logger.Logger
}

func NewInvoker(fallback repository.Generator, log *logger.Logger) *Invoker {
	if log == nil {
		log = logger.Nop()
	}
	return &Invoker{fallback: fallback, log: log.With("component", "invoker")}
}

// Route sends models whose id starts with any of prefixes to g.
func (i *Invoker) Route(g repository.Generator, prefixes ...string) *Invoker {
	i.routes = append(i.routes, route{prefixes: prefixes, generator: g})
	return i
}

func (i *Invoker) backendFor(model string) repository.Generator {
	m := strings.ToLower(model)
	for _, r := range i.routes {
		for _, p := range r.prefixes {
			if strings.HasPrefix(m, p) {
				return r.generator
			}
		}
	}
	return i.fallback
}

// Invoke validates req, performs the call and classifies the outcome: backend
// failures become transport errors and a SAFETY finish becomes a safety error.
func (i *Invoker) Invoke(ctx context.Context, req entity.GenerationRequest) (*entity.RawModelResponse, error) {
	if strings.TrimSpace(req.Prompt) == "" {
		return nil, entity.NewInputError("prompt is empty")
	}
	if err := req.GenerationParams.Validate(); err != nil {
		return nil, entity.NewInputError(err.Error())
	}
	backend := i.backendFor(req.ModelID)
	if backend == nil {
		return nil, entity.NewInputError("no generation backend configured for model " + req.ModelID)
	}

	resp, err := backend.Generate(ctx, req)
	if err != nil {
		if pe, ok := entity.AsPipelineError(err); ok {
			return nil, pe
		}
		i.log.Warn("generation call failed", "model", req.ModelID, "error", err)
		return nil, entity.NewTransportError("generation request failed", err)
	}
	if resp == nil {
		return nil, entity.NewTransportError("generation backend returned no response", nil)
	}
	if resp.Model == "" {
		resp.Model = req.ModelID
	}

	switch resp.FinishReason {
	case entity.FinishSafety:
		i.log.Info("generation blocked by safety filters", "model", resp.Model)
		return nil, entity.NewSafetyError(resp.Model)
	case entity.FinishLength:
		i.log.Warn("generation hit the output token ceiling", "model", resp.Model, "maxOutputTokens", req.MaxOutputTokens)
	case "":
		resp.FinishReason = entity.FinishOther
	}
	return resp, nil
}
