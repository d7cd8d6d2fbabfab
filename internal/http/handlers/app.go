package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"photobooth/internal/imagegen"
	"photobooth/internal/infra"
	"photobooth/internal/middleware"
	"photobooth/internal/providers/image"
	"photobooth/internal/providers/upstream"

	"github.com/go-playground/validator/v10"
)

// App carries the dependencies shared by every handler. Generator and
// Stylizer are nil when no provider credential is configured for them.
type App struct {
	Config    *infra.Config
	Logger    *infra.Logger
	Metrics   *infra.Metrics
	Generator image.Generator
	Stylizer  image.Stylizer

	validate *validator.Validate
}

// NewApp wires the handler dependencies; nil providers are reported as
// configuration errors at request time.
func NewApp(cfg *infra.Config, logger *infra.Logger, metrics *infra.Metrics, gen image.Generator, stylizer image.Stylizer) *App {
	return &App{
		Config:    cfg,
		Logger:    infra.LoggerOrDiscard(logger),
		Metrics:   metrics,
		Generator: gen,
		Stylizer:  stylizer,
		validate:  newValidator(),
	}
}

type imageItem struct {
	ImageBase64 string `json:"image_base64"`
}

type imagesResponse struct {
	Images []imageItem `json:"images"`
}

type errorResponse struct {
	Error           string          `json:"error"`
	Message         string          `json:"message"`
	Detail          any             `json:"detail,omitempty"`
	Provider        string          `json:"provider,omitempty"`
	ResponsePreview *imagegen.Value `json:"response_preview,omitempty"`
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, code int, errCode, message string) {
	a.json(w, code, errorResponse{Error: errCode, Message: message})
}

func (a *App) images(w http.ResponseWriter, endpoint string, images imagegen.ImageSet) {
	a.Metrics.ObserveImages(endpoint, len(images))
	resp := imagesResponse{Images: make([]imageItem, 0, len(images))}
	for _, img := range images {
		resp.Images = append(resp.Images, imageItem{ImageBase64: img})
	}
	a.json(w, http.StatusOK, resp)
}

// fail maps a provider or request error onto the HTTP error contract.
func (a *App) fail(w http.ResponseWriter, r *http.Request, err error) {
	var (
		validation *imagegen.ValidationError
		config     *imagegen.ConfigError
		empty      *imagegen.EmptyResultError
		upErr      *imagegen.UpstreamError
	)
	log := a.Logger.With().
		Str("request_id", middleware.RequestIDFromContext(r.Context())).
		Str("path", r.URL.Path).
		Logger()

	switch {
	case errors.As(err, &validation):
		a.json(w, http.StatusUnprocessableEntity, errorResponse{
			Error:   "validation_failed",
			Message: validation.Error(),
			Detail:  map[string]string{"field": validation.Field},
		})
	case errors.As(err, &config):
		log.Warn().Strs("missing", config.Missing).Msg("no provider configured")
		a.error(w, http.StatusBadRequest, "provider_not_configured", config.Error())
	case errors.As(err, &empty):
		log.Warn().Str("provider", empty.Provider).Msg("provider returned no images")
		preview := empty.Preview
		a.json(w, http.StatusBadGateway, errorResponse{
			Error:           "empty_result",
			Message:         "no images returned by provider",
			Provider:        empty.Provider,
			ResponsePreview: &preview,
		})
	case errors.As(err, &upErr):
		log.Warn().
			Str("provider", upErr.Provider).
			Int("status", upErr.StatusCode).
			Msg("provider request failed")
		status := upErr.StatusCode
		if status < 400 || status > 599 {
			status = http.StatusBadGateway
		}
		a.json(w, status, errorResponse{
			Error:   "upstream_error",
			Message: upErr.Provider + " request failed",
			Detail:  upErr.Detail,
		})
	case errors.Is(err, upstream.ErrResponseTooLarge):
		log.Warn().Err(err).Msg("provider response too large")
		a.error(w, http.StatusBadGateway, "upstream_response_too_large", "image provider response exceeded the size limit")
	case errors.Is(err, context.DeadlineExceeded):
		log.Warn().Err(err).Msg("provider call timed out")
		a.error(w, http.StatusGatewayTimeout, "upstream_timeout", "image provider did not respond in time")
	default:
		log.Error().Err(err).Msg("provider unreachable")
		a.error(w, http.StatusBadGateway, "upstream_unavailable", "image provider unreachable")
	}
}
