// Package upstream performs the single HTTP round trip each provider call
// needs: a JSON or multipart POST in, a status code and raw body out.
package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"time"

	"photobooth/internal/infra"
)

// maxResponseBytes caps provider bodies; four 2K images in base64 fit easily.
var maxResponseBytes int64 = 64 << 20

// ErrResponseTooLarge is returned when a provider body exceeds maxResponseBytes.
var ErrResponseTooLarge = errors.New("upstream: response body too large")

// Options configures a Client.
type Options struct {
	HTTPClient *http.Client
	Logger     *infra.Logger
	Metrics    *infra.Metrics
}

// Client sends provider requests. Timeouts come from the caller's context.
type Client struct {
	httpClient *http.Client
	logger     *infra.Logger
	metrics    *infra.Metrics
}

// Response is the raw provider answer.
type Response struct {
	StatusCode int
	Body       []byte
}

// File is a multipart file part.
type File struct {
	Field       string
	Filename    string
	ContentType string
	Data        []byte
}

// Form is an ordered multipart body.
type Form struct {
	Fields [][2]string
	Files  []File
}

// Add appends a text field.
func (f *Form) Add(name, value string) {
	f.Fields = append(f.Fields, [2]string{name, value})
}

// NewClient constructs a Client. A nil HTTP client gets a plain one with no
// global timeout since every call carries a context deadline.
func NewClient(opts Options) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &Client{
		httpClient: httpClient,
		logger:     infra.LoggerOrDiscard(opts.Logger),
		metrics:    opts.Metrics,
	}
}

// PostJSON encodes payload as JSON and posts it to url.
func (c *Client) PostJSON(ctx context.Context, provider, url string, header http.Header, payload any) (*Response, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("%s: encode request: %w", provider, err)
	}
	return c.post(ctx, provider, url, header, "application/json", bytes.NewReader(body))
}

// PostMultipart encodes form as multipart/form-data and posts it to url.
func (c *Client) PostMultipart(ctx context.Context, provider, url string, header http.Header, form Form) (*Response, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for _, field := range form.Fields {
		if err := mw.WriteField(field[0], field[1]); err != nil {
			return nil, fmt.Errorf("%s: write field %s: %w", provider, field[0], err)
		}
	}
	for _, file := range form.Files {
		part, err := createFilePart(mw, file)
		if err != nil {
			return nil, fmt.Errorf("%s: create file part: %w", provider, err)
		}
		if _, err := part.Write(file.Data); err != nil {
			return nil, fmt.Errorf("%s: write file part: %w", provider, err)
		}
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("%s: close multipart: %w", provider, err)
	}
	return c.post(ctx, provider, url, header, mw.FormDataContentType(), &buf)
}

func createFilePart(mw *multipart.Writer, file File) (io.Writer, error) {
	if file.ContentType == "" {
		return mw.CreateFormFile(file.Field, file.Filename)
	}
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, file.Field, file.Filename))
	h.Set("Content-Type", file.ContentType)
	return mw.CreatePart(h)
}

func (c *Client) post(ctx context.Context, provider, url string, header http.Header, contentType string, body io.Reader) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, body)
	if err != nil {
		return nil, fmt.Errorf("%s: build request: %w", provider, err)
	}
	for k, values := range header {
		for _, v := range values {
			req.Header.Add(k, v)
		}
	}
	req.Header.Set("Content-Type", contentType)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.ObserveUpstream(provider, 0, time.Since(start))
		c.logger.Warn().Err(err).Str("provider", provider).Msg("upstream: request failed")
		return nil, fmt.Errorf("%s: http request: %w", provider, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes+1))
	elapsed := time.Since(start)
	c.metrics.ObserveUpstream(provider, resp.StatusCode, elapsed)
	if err != nil {
		return nil, fmt.Errorf("%s: read response: %w", provider, err)
	}
	if int64(len(raw)) > maxResponseBytes {
		c.logger.Warn().Str("provider", provider).Int("status", resp.StatusCode).Msg("upstream: response exceeds size limit")
		return nil, fmt.Errorf("%s: %w", provider, ErrResponseTooLarge)
	}

	c.logger.Debug().
		Str("provider", provider).
		Int("status", resp.StatusCode).
		Int("bytes", len(raw)).
		Dur("elapsed", elapsed).
		Msg("upstream: response received")

	return &Response{StatusCode: resp.StatusCode, Body: raw}, nil
}
