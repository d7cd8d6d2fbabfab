package main

import (
	"net/http"

	"photobooth/internal/infra"
	"photobooth/internal/providers/genai"
	"photobooth/internal/providers/image"
	"photobooth/internal/providers/stability"
	"photobooth/internal/providers/upstream"
)

// newProviders builds the adapters whose credentials are present. The
// returned Generator is nil without GEMINI_API_KEY; the Stylizer is always a
// chain, which reports the missing keys itself when it has no stages.
func newProviders(cfg *infra.Config, logger *infra.Logger, metrics *infra.Metrics) (image.Generator, image.Stylizer) {
	logger = infra.LoggerOrDiscard(logger)
	transport := upstream.NewClient(upstream.Options{
		HTTPClient: &http.Client{},
		Logger:     logger,
		Metrics:    metrics,
	})

	var (
		gen       image.Generator
		providers image.StylizeProviders
	)

	if client, err := genai.NewClient(genai.Options{
		APIKey:          cfg.GeminiAPIKey,
		BaseURL:         cfg.GeminiBaseURL,
		Model:           cfg.ImagenModel,
		EditModel:       cfg.GeminiEditModel,
		GenerateTimeout: cfg.GenerateTimeout,
		StylizeTimeout:  cfg.StylizeTimeout,
		Transport:       transport,
		Logger:          logger,
	}); err == nil {
		gen = client
		providers.Editor = client.Editor()
		providers.Conditioned = client.Conditioned()
	} else {
		logger.Warn().Err(err).Msg("gemini provider disabled")
	}

	if client, err := stability.NewClient(stability.Options{
		APIKey:    cfg.StabilityAPIKey,
		BaseURL:   cfg.StabilityBaseURL,
		Engine:    cfg.StabilityEngine,
		Timeout:   cfg.StylizeTimeout,
		Transport: transport,
		Logger:    logger,
	}); err == nil {
		providers.Fallback = client
	} else {
		logger.Warn().Err(err).Msg("stability provider disabled")
	}

	chain := image.NewStylizeChain(providers, []string{"STABILITY_API_KEY", "GEMINI_API_KEY"}, logger, metrics)
	logger.Info().Strs("stylize_stages", chain.Stages()).Msg("providers configured")
	return gen, chain
}
