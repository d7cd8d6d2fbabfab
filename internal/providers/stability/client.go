// Package stability calls Stability AI's SDXL image-to-image endpoint.
package stability

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"photobooth/internal/imagegen"
	"photobooth/internal/infra"
	"photobooth/internal/providers/upstream"
)

// ErrMissingAPIKey indicates that the client was configured without credentials.
var ErrMissingAPIKey = errors.New("stability: api key is required")

const (
	providerName  = "stability"
	defaultEngine = "stable-diffusion-xl-1024-v1-0"

	// Fixed generation parameters. Strength is how much of the input image
	// survives (0..1); cfg_scale is usually sensible between 5 and 12.
	imageStrength = "0.6"
	cfgScale      = "7"
	steps         = "30"
)

// Options configures the Stability client.
type Options struct {
	APIKey    string
	BaseURL   string
	Engine    string
	Timeout   time.Duration
	Transport *upstream.Client
	Logger    *infra.Logger
}

// Client performs image-to-image calls.
type Client struct {
	apiKey    string
	baseURL   string
	engine    string
	timeout   time.Duration
	transport *upstream.Client
	logger    *infra.Logger
}

// ArtifactScan reads image-to-image artifacts.
var ArtifactScan = imagegen.Scan{
	Roots:     imagegen.ArtifactRoots,
	Extractor: imagegen.ArtifactExtractor,
	Max:       imagegen.MaxImages,
}

// NewClient constructs a client with sane defaults and injected dependencies.
func NewClient(opts Options) (*Client, error) {
	apiKey := strings.TrimSpace(opts.APIKey)
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://api.stability.ai"
	}
	engine := strings.TrimSpace(opts.Engine)
	if engine == "" {
		engine = defaultEngine
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	logger := infra.LoggerOrDiscard(opts.Logger)
	transport := opts.Transport
	if transport == nil {
		transport = upstream.NewClient(upstream.Options{Logger: logger})
	}
	return &Client{
		apiKey:    apiKey,
		baseURL:   baseURL,
		engine:    engine,
		timeout:   timeout,
		transport: transport,
		logger:    logger,
	}, nil
}

// Engine returns the configured engine identifier.
func (c *Client) Engine() string {
	return c.engine
}

// Stylize implements image.Stylizer. Every failure is terminal for the chain.
func (c *Client) Stylize(ctx context.Context, req imagegen.Request) (imagegen.ImageSet, error) {
	if req.Source == nil || len(req.Source.Data) == 0 {
		return nil, &imagegen.ValidationError{Field: "image", Message: "source image is required"}
	}

	var form upstream.Form
	form.Add("text_prompts[0][text]", req.Prompt)
	form.Add("samples", strconv.Itoa(req.SampleCount()))
	form.Add("strength", imageStrength)
	form.Add("cfg_scale", cfgScale)
	form.Add("steps", steps)
	filename := req.Source.Filename
	if filename == "" {
		filename = "image.png"
	}
	form.Files = append(form.Files, upstream.File{
		Field:       "init_image",
		Filename:    filename,
		ContentType: req.Source.MIMEType,
		Data:        req.Source.Data,
	})

	header := http.Header{}
	header.Set("Authorization", "Bearer "+c.apiKey)
	header.Set("Accept", "application/json")

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	endpoint := fmt.Sprintf("%s/v1/generation/%s/image-to-image", c.baseURL, c.engine)
	resp, err := c.transport.PostMultipart(ctx, providerName, endpoint, header, form)
	if err != nil {
		return nil, err
	}
	images, err := imagegen.Interpret(providerName, resp.StatusCode, resp.Body, ArtifactScan)
	if err != nil {
		return nil, err
	}
	c.logger.Info().
		Str("provider", providerName).
		Str("engine", c.engine).
		Int("images", len(images)).
		Msg("stability: image-to-image succeeded")
	return images, nil
}
