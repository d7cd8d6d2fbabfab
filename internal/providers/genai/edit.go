package genai

import (
	"context"
	"encoding/base64"
	"errors"
	"strings"

	"photobooth/internal/imagegen"
)

type editRequest struct {
	Contents         []editContent        `json:"contents"`
	GenerationConfig editGenerationConfig `json:"generationConfig"`
}

type editContent struct {
	Role  string     `json:"role"`
	Parts []editPart `json:"parts"`
}

type editPart struct {
	InlineData *editInlineData `json:"inline_data,omitempty"`
	Text       string          `json:"text,omitempty"`
}

type editInlineData struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"`
}

// Only one candidate is requested; responseMimeType is left unset because
// the image models accept text or structured output types only.
type editGenerationConfig struct {
	CandidateCount int `json:"candidateCount"`
}

// EditScan reads generateContent candidates; one candidate is requested.
var EditScan = imagegen.Scan{
	Roots:     imagegen.CandidateParts,
	Fallback:  imagegen.WholeResponse,
	Extractor: imagegen.InlineDataExtractor{},
	Max:       1,
}

// Editor stylizes with a single multimodal generateContent turn.
type Editor struct {
	client *Client
}

// Editor returns the multimodal image-edit adapter.
func (c *Client) Editor() *Editor {
	return &Editor{client: c}
}

// Stylize implements image.Stylizer. A rejection whose detail says the
// request is unsupported comes back as a soft failure.
func (e *Editor) Stylize(ctx context.Context, req imagegen.Request) (imagegen.ImageSet, error) {
	if req.Source == nil {
		return nil, &imagegen.ValidationError{Field: "image", Message: "source image is required"}
	}
	mimeType := req.Source.MIMEType
	if mimeType == "" {
		mimeType = "image/png"
	}
	payload := editRequest{
		Contents: []editContent{{
			Role: "user",
			Parts: []editPart{
				{InlineData: &editInlineData{
					MimeType: mimeType,
					Data:     base64.StdEncoding.EncodeToString(req.Source.Data),
				}},
				{Text: req.Prompt},
			},
		}},
		GenerationConfig: editGenerationConfig{CandidateCount: 1},
	}

	c := e.client
	images, err := c.call(ctx, c.stylizeTimeout, providerEdit, c.endpoint(c.editModel, "generateContent"), payload, EditScan)
	if err != nil {
		var upstream *imagegen.UpstreamError
		if errors.As(err, &upstream) && isUnsupported(upstream.DetailText()) {
			upstream.Soft = true
			c.logger.Info().
				Str("provider", providerEdit).
				Int("status", upstream.StatusCode).
				Msg("genai: edit not supported for this request")
		}
		return nil, err
	}
	c.logger.Info().
		Str("provider", providerEdit).
		Str("model", c.editModel).
		Int("images", len(images)).
		Msg("genai: edit succeeded")
	return images, nil
}

// isUnsupported is a substring heuristic over the provider's error text.
func isUnsupported(detail string) bool {
	msg := strings.ToLower(detail)
	return strings.Contains(msg, "not supported") || strings.Contains(msg, "unsupported")
}
