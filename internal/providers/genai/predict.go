package genai

import (
	"context"
	"encoding/base64"
	"time"

	"photobooth/internal/imagegen"
)

type predictRequest struct {
	Instances  []predictInstance  `json:"instances"`
	Parameters predictParameters `json:"parameters"`
}

type predictInstance struct {
	Prompt string        `json:"prompt"`
	Image  *predictImage `json:"image,omitempty"`
}

type predictImage struct {
	BytesBase64Encoded string `json:"bytesBase64Encoded"`
}

type predictParameters struct {
	SampleCount      int    `json:"sampleCount"`
	AspectRatio      string `json:"aspectRatio,omitempty"`
	SampleImageSize  string `json:"sampleImageSize,omitempty"`
	PersonGeneration string `json:"personGeneration,omitempty"`
}

// PredictionScan reads Imagen predict responses.
var PredictionScan = imagegen.Scan{
	Roots:     imagegen.PredictionRoots,
	Extractor: imagegen.PredictionExtractor,
	Max:       imagegen.MaxImages,
}

// Generate runs a text-to-image prediction.
func (c *Client) Generate(ctx context.Context, req imagegen.Request) (imagegen.ImageSet, error) {
	return c.predict(ctx, c.generateTimeout, providerImagen, req, nil)
}

func (c *Client) predict(ctx context.Context, timeout time.Duration, provider string, req imagegen.Request, image *predictImage) (imagegen.ImageSet, error) {
	model := req.Model
	if model == "" {
		model = c.model
	}
	payload := predictRequest{
		Instances: []predictInstance{{Prompt: req.Prompt, Image: image}},
		Parameters: predictParameters{
			SampleCount:      req.SampleCount(),
			AspectRatio:      req.AspectRatio,
			SampleImageSize:  req.SampleImageSize,
			PersonGeneration: req.PersonGeneration,
		},
	}
	images, err := c.call(ctx, timeout, provider, c.endpoint(model, "predict"), payload, PredictionScan)
	if err != nil {
		return nil, err
	}
	c.logger.Info().
		Str("provider", provider).
		Str("model", model).
		Int("images", len(images)).
		Msg("genai: prediction succeeded")
	return images, nil
}

// ConditionedPredictor stylizes by sending the source image as an extra
// prediction instance field. Most Imagen variants ignore or reject it, so it
// is the last resort in the stylize chain.
type ConditionedPredictor struct {
	client *Client
}

// Conditioned returns the image-conditioned prediction adapter.
func (c *Client) Conditioned() *ConditionedPredictor {
	return &ConditionedPredictor{client: c}
}

// Stylize implements image.Stylizer.
func (p *ConditionedPredictor) Stylize(ctx context.Context, req imagegen.Request) (imagegen.ImageSet, error) {
	var image *predictImage
	if req.Source != nil {
		image = &predictImage{BytesBase64Encoded: base64.StdEncoding.EncodeToString(req.Source.Data)}
	}
	return p.client.predict(ctx, p.client.stylizeTimeout, providerConditioned, req, image)
}
