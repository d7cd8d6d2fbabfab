// Package genai talks to the Google Generative Language API: Imagen
// ":predict" for text-to-image and Gemini ":generateContent" for
// multimodal image edits. Both share one API key.
package genai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"photobooth/internal/imagegen"
	"photobooth/internal/infra"
	"photobooth/internal/providers/upstream"
)

// ErrMissingAPIKey indicates that the client was configured without credentials.
var ErrMissingAPIKey = errors.New("genai: api key is required")

const (
	defaultBaseURL   = "https://generativelanguage.googleapis.com/v1beta"
	defaultEditModel = "gemini-2.5-flash-image-preview"

	providerImagen      = "imagen"
	providerConditioned = "imagen-conditioned"
	providerEdit        = "gemini-edit"
)

// Options controls how the client is configured.
type Options struct {
	APIKey          string
	BaseURL         string
	Model           string
	EditModel       string
	GenerateTimeout time.Duration
	StylizeTimeout  time.Duration
	Transport       *upstream.Client
	Logger          *infra.Logger
}

// Client holds the shared credential and endpoints. Adapters for each
// request shape hang off it.
type Client struct {
	apiKey          string
	baseURL         string
	model           string
	editModel       string
	generateTimeout time.Duration
	stylizeTimeout  time.Duration
	transport       *upstream.Client
	logger          *infra.Logger
}

// NewClient constructs a client with sane defaults.
func NewClient(opts Options) (*Client, error) {
	apiKey := strings.TrimSpace(opts.APIKey)
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = imagegen.DefaultModel
	}

	editModel := strings.TrimSpace(opts.EditModel)
	if editModel == "" {
		editModel = defaultEditModel
	}

	generateTimeout := opts.GenerateTimeout
	if generateTimeout <= 0 {
		generateTimeout = 90 * time.Second
	}
	stylizeTimeout := opts.StylizeTimeout
	if stylizeTimeout <= 0 {
		stylizeTimeout = 120 * time.Second
	}

	logger := infra.LoggerOrDiscard(opts.Logger)
	transport := opts.Transport
	if transport == nil {
		transport = upstream.NewClient(upstream.Options{Logger: logger})
	}

	return &Client{
		apiKey:          apiKey,
		baseURL:         baseURL,
		model:           model,
		editModel:       editModel,
		generateTimeout: generateTimeout,
		stylizeTimeout:  stylizeTimeout,
		transport:       transport,
		logger:          logger,
	}, nil
}

// Model returns the default Imagen model identifier.
func (c *Client) Model() string {
	return c.model
}

func (c *Client) endpoint(model, method string) string {
	return fmt.Sprintf("%s/models/%s:%s", c.baseURL, url.PathEscape(model), method)
}

func (c *Client) header() http.Header {
	h := http.Header{}
	h.Set("x-goog-api-key", c.apiKey)
	return h
}

func (c *Client) call(ctx context.Context, timeout time.Duration, provider, endpoint string, payload any, scan imagegen.Scan) (imagegen.ImageSet, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	resp, err := c.transport.PostJSON(ctx, provider, endpoint, c.header(), payload)
	if err != nil {
		return nil, err
	}
	return imagegen.Interpret(provider, resp.StatusCode, resp.Body, scan)
}
