package image

import (
	"context"

	"photobooth/internal/imagegen"
	"photobooth/internal/infra"
)

// Stage is one provider in the stylize chain.
type Stage struct {
	Name     string
	Stylizer Stylizer
	// Cascade lets a soft failure move on to the next stage. Stages without
	// it end the chain on any failure.
	Cascade bool
}

// StylizeProviders lists the configured stylize adapters; nil means the
// credential for that provider is absent.
type StylizeProviders struct {
	Editor      Stylizer
	Fallback    Stylizer
	Conditioned Stylizer
}

// Chain tries stages strictly in order, one call in flight at a time, with
// no retries.
type Chain struct {
	stages  []Stage
	missing []string
	logger  *infra.Logger
	metrics *infra.Metrics
}

// NewStylizeChain orders the providers: the multimodal editor first (soft
// failures cascade), then the image-to-image fallback, or the
// image-conditioned predictor when no fallback is configured.
func NewStylizeChain(p StylizeProviders, missing []string, logger *infra.Logger, metrics *infra.Metrics) *Chain {
	var stages []Stage
	if p.Editor != nil {
		stages = append(stages, Stage{Name: "gemini-edit", Stylizer: p.Editor, Cascade: true})
	}
	switch {
	case p.Fallback != nil:
		stages = append(stages, Stage{Name: "stability", Stylizer: p.Fallback})
	case p.Conditioned != nil:
		stages = append(stages, Stage{Name: "imagen-conditioned", Stylizer: p.Conditioned})
	}
	return NewChain(stages, missing, logger, metrics)
}

// NewChain builds a chain from explicit stages. missing names the
// credentials reported when no stage is configured.
func NewChain(stages []Stage, missing []string, logger *infra.Logger, metrics *infra.Metrics) *Chain {
	return &Chain{
		stages:  stages,
		missing: missing,
		logger:  infra.LoggerOrDiscard(logger),
		metrics: metrics,
	}
}

// Stages returns the stage names in order.
func (c *Chain) Stages() []string {
	names := make([]string, len(c.stages))
	for i, s := range c.stages {
		names[i] = s.Name
	}
	return names
}

// Stylize implements Stylizer.
func (c *Chain) Stylize(ctx context.Context, req imagegen.Request) (imagegen.ImageSet, error) {
	if len(c.stages) == 0 {
		return nil, &imagegen.ConfigError{Missing: c.missing}
	}
	for i, stage := range c.stages {
		images, err := stage.Stylizer.Stylize(ctx, req)
		if err == nil {
			c.metrics.ObserveStage(stage.Name, "success")
			return images, nil
		}
		if !imagegen.IsSoftFailure(err) {
			c.metrics.ObserveStage(stage.Name, "hard")
			return nil, err
		}
		c.metrics.ObserveStage(stage.Name, "soft")
		last := i == len(c.stages)-1
		if !stage.Cascade || last {
			return nil, hardened(err)
		}
		c.logger.Info().
			Err(err).
			Str("stage", stage.Name).
			Str("next", c.stages[i+1].Name).
			Msg("stylize: provider cannot handle request, falling back")
	}
	// unreachable: the last stage always returns
	return nil, &imagegen.ConfigError{Missing: c.missing}
}

// hardened strips the soft flag so callers see a terminal failure.
func hardened(err error) error {
	if up, ok := err.(*imagegen.UpstreamError); ok {
		return up.Hard()
	}
	return err
}

var _ Stylizer = (*Chain)(nil)
