package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"photobooth/internal/imagegen"
	"photobooth/internal/infra"
	"photobooth/internal/providers/genai"
	"photobooth/internal/providers/upstream"
)

type stubGenerator struct {
	images  imagegen.ImageSet
	err     error
	calls   int
	lastReq imagegen.Request
}

func (s *stubGenerator) Generate(ctx context.Context, req imagegen.Request) (imagegen.ImageSet, error) {
	s.calls++
	s.lastReq = req
	return s.images, s.err
}

func testConfig() *infra.Config {
	return &infra.Config{MaxUploadBytes: 1 << 20}
}

func postJSON(t *testing.T, app *App, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/generate", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	app.Generate(rr, req)
	return rr
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.NewDecoder(rr.Body).Decode(&out); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	return out
}

func TestGenerateHandler(t *testing.T) {
	longImage := strings.Repeat("A", 160)

	testCases := []struct {
		name       string
		body       string
		generator  *stubGenerator
		wantStatus int
		wantCode   string
		wantImages int
		wantCalls  int
	}{{
		name:       "success",
		body:       `{"prompt":"a cat in a photobooth","number_of_images":2}`,
		generator:  &stubGenerator{images: imagegen.ImageSet{longImage, longImage + "B"}},
		wantStatus: http.StatusOK,
		wantImages: 2,
		wantCalls:  1,
	}, {
		name:       "empty prompt",
		body:       `{"prompt":""}`,
		generator:  &stubGenerator{},
		wantStatus: http.StatusUnprocessableEntity,
		wantCode:   "validation_failed",
	}, {
		name:       "blank prompt",
		body:       `{"prompt":"   "}`,
		generator:  &stubGenerator{},
		wantStatus: http.StatusUnprocessableEntity,
		wantCode:   "validation_failed",
	}, {
		name:       "missing prompt",
		body:       `{"number_of_images":1}`,
		generator:  &stubGenerator{},
		wantStatus: http.StatusUnprocessableEntity,
		wantCode:   "validation_failed",
	}, {
		name:       "too many images",
		body:       `{"prompt":"x","number_of_images":5}`,
		generator:  &stubGenerator{},
		wantStatus: http.StatusUnprocessableEntity,
		wantCode:   "validation_failed",
	}, {
		name:       "zero images",
		body:       `{"prompt":"x","number_of_images":0}`,
		generator:  &stubGenerator{},
		wantStatus: http.StatusUnprocessableEntity,
		wantCode:   "validation_failed",
	}, {
		name:       "unknown aspect ratio",
		body:       `{"prompt":"x","aspect_ratio":"2:1"}`,
		generator:  &stubGenerator{},
		wantStatus: http.StatusUnprocessableEntity,
		wantCode:   "validation_failed",
	}, {
		name:       "unknown sample size",
		body:       `{"prompt":"x","sample_image_size":"4K"}`,
		generator:  &stubGenerator{},
		wantStatus: http.StatusUnprocessableEntity,
		wantCode:   "validation_failed",
	}, {
		name:       "malformed json",
		body:       `{"prompt":`,
		generator:  &stubGenerator{},
		wantStatus: http.StatusBadRequest,
		wantCode:   "bad_request",
	}, {
		name:       "upstream hard failure",
		body:       `{"prompt":"x"}`,
		generator:  &stubGenerator{err: &imagegen.UpstreamError{Provider: "imagen", StatusCode: 403, Detail: json.RawMessage(`{"error":"denied"}`)}},
		wantStatus: http.StatusForbidden,
		wantCode:   "upstream_error",
		wantCalls:  1,
	}, {
		name:       "oversized body",
		body:       `{"prompt":"` + strings.Repeat("x", maxJSONBytes) + `"}`,
		generator:  &stubGenerator{},
		wantStatus: http.StatusRequestEntityTooLarge,
		wantCode:   "payload_too_large",
	}, {
		name:       "oversized provider response",
		body:       `{"prompt":"x"}`,
		generator:  &stubGenerator{err: fmt.Errorf("imagen: %w", upstream.ErrResponseTooLarge)},
		wantStatus: http.StatusBadGateway,
		wantCode:   "upstream_response_too_large",
		wantCalls:  1,
	}, {
		name:       "deadline exceeded",
		body:       `{"prompt":"x"}`,
		generator:  &stubGenerator{err: context.DeadlineExceeded},
		wantStatus: http.StatusGatewayTimeout,
		wantCode:   "upstream_timeout",
		wantCalls:  1,
	}, {
		name:       "transport failure",
		body:       `{"prompt":"x"}`,
		generator:  &stubGenerator{err: errors.New("imagen: http request: connection refused")},
		wantStatus: http.StatusBadGateway,
		wantCode:   "upstream_unavailable",
		wantCalls:  1,
	}}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			app := NewApp(testConfig(), nil, nil, tc.generator, nil)
			rr := postJSON(t, app, tc.body)

			if rr.Code != tc.wantStatus {
				t.Fatalf("status = %d, want %d; body=%s", rr.Code, tc.wantStatus, rr.Body.String())
			}
			if tc.generator.calls != tc.wantCalls {
				t.Fatalf("generator calls = %d, want %d", tc.generator.calls, tc.wantCalls)
			}
			if tc.wantCode != "" {
				body := decodeError(t, rr)
				if body["error"] != tc.wantCode {
					t.Fatalf("error code = %v, want %s", body["error"], tc.wantCode)
				}
				return
			}
			var resp imagesResponse
			if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
				t.Fatalf("decode response: %v", err)
			}
			if len(resp.Images) != tc.wantImages {
				t.Fatalf("images len = %d, want %d", len(resp.Images), tc.wantImages)
			}
		})
	}
}

func TestGenerateAppliesDefaults(t *testing.T) {
	gen := &stubGenerator{images: imagegen.ImageSet{strings.Repeat("A", 200)}}
	app := NewApp(testConfig(), nil, nil, gen, nil)

	rr := postJSON(t, app, `{"prompt":"  studio portrait  ","aspect_ratio":"9:16","person_generation":"allow_adult"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d; body=%s", rr.Code, rr.Body.String())
	}
	got := gen.lastReq
	if got.Prompt != "studio portrait" || got.NumberOfImages != 1 || got.Model != imagegen.DefaultModel {
		t.Fatalf("unexpected request: %+v", got)
	}
	if got.AspectRatio != "9:16" || got.PersonGeneration != "allow_adult" || got.Source != nil {
		t.Fatalf("unexpected request: %+v", got)
	}
}

func TestGenerateWithoutCredentials(t *testing.T) {
	app := NewApp(testConfig(), nil, nil, nil, nil)
	rr := postJSON(t, app, `{"prompt":"x"}`)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rr.Code)
	}
	body := decodeError(t, rr)
	if body["error"] != "provider_not_configured" || !strings.Contains(body["message"].(string), "GEMINI_API_KEY") {
		t.Fatalf("unexpected body: %v", body)
	}
}

func TestGenerateValidationNamesField(t *testing.T) {
	app := NewApp(testConfig(), nil, nil, &stubGenerator{}, nil)
	rr := postJSON(t, app, `{"prompt":"x","person_generation":"everyone"}`)
	body := decodeError(t, rr)
	detail, _ := body["detail"].(map[string]any)
	if detail["field"] != "person_generation" {
		t.Fatalf("expected person_generation field, got %v", body)
	}
}

func newPredictServer(t *testing.T, status int, body string) *genai.Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, ":predict") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		_, _ = io.Copy(io.Discard, r.Body)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)

	client, err := genai.NewClient(genai.Options{APIKey: "test-key", BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return client
}

func TestGenerateDeduplicatesPredictions(t *testing.T) {
	img := strings.Repeat("Q", 160)
	client := newPredictServer(t, http.StatusOK, `{"predictions":[{"bytesBase64Encoded":"`+img+`"},{"bytesBase64Encoded":"`+img+`"}]}`)
	app := NewApp(testConfig(), nil, nil, client, nil)

	rr := postJSON(t, app, `{"prompt":"twins","number_of_images":2}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d; body=%s", rr.Code, rr.Body.String())
	}
	var resp imagesResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Images) != 1 || resp.Images[0].ImageBase64 != img {
		t.Fatalf("expected a single deduplicated image, got %d", len(resp.Images))
	}
}

func TestGenerateEmptyResultReturnsPreview(t *testing.T) {
	client := newPredictServer(t, http.StatusOK, `{"foo":"bar"}`)
	app := NewApp(testConfig(), nil, nil, client, nil)

	rr := postJSON(t, app, `{"prompt":"nothing"}`)
	if rr.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502; body=%s", rr.Code, rr.Body.String())
	}
	body := decodeError(t, rr)
	if body["provider"] != "imagen" {
		t.Fatalf("provider = %v", body["provider"])
	}
	preview, ok := body["response_preview"].(map[string]any)
	if !ok || preview["foo"] != "bar" || len(preview) != 1 {
		t.Fatalf("unexpected preview: %v", body["response_preview"])
	}
}

func TestGenerateSurfacesUpstreamDetail(t *testing.T) {
	client := newPredictServer(t, http.StatusTooManyRequests, `{"error":{"code":429,"message":"quota"}}`)
	app := NewApp(testConfig(), nil, nil, client, nil)

	rr := postJSON(t, app, `{"prompt":"busy"}`)
	if rr.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", rr.Code)
	}
	var body struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.NewDecoder(bytes.NewReader(rr.Body.Bytes())).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !bytes.Contains(body.Detail, []byte(`"quota"`)) {
		t.Fatalf("detail not forwarded: %s", body.Detail)
	}
}
