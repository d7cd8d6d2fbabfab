package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"photobooth/internal/imagegen"
)

const (
	defaultUploadMIME = "image/png"
	// maxJSONBytes bounds /api/generate bodies, which carry only a prompt and options.
	maxJSONBytes = 1 << 20
)

// Generate handles POST /api/generate (text-to-image).
func (a *App) Generate(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBytes)
	var body generateRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			a.error(w, http.StatusRequestEntityTooLarge, "payload_too_large", "request body is too large")
			return
		}
		a.error(w, http.StatusBadRequest, "bad_request", "invalid JSON payload")
		return
	}
	req, err := a.bind(body)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	if a.Generator == nil {
		a.fail(w, r, &imagegen.ConfigError{Missing: []string{"GEMINI_API_KEY"}})
		return
	}

	images, err := a.Generator.Generate(r.Context(), req)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.images(w, "generate", images)
}

// Stylize handles POST /api/stylize (image-to-image through the provider chain).
func (a *App) Stylize(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, a.Config.MaxUploadBytes)
	if err := r.ParseMultipartForm(a.Config.MaxUploadBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			a.error(w, http.StatusRequestEntityTooLarge, "payload_too_large", "uploaded image is too large")
			return
		}
		a.error(w, http.StatusBadRequest, "bad_request", "invalid multipart payload")
		return
	}
	defer r.MultipartForm.RemoveAll()

	body, err := formRequest(r.FormValue)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	req, err := a.bind(body)
	if err != nil {
		a.fail(w, r, err)
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		a.fail(w, r, &imagegen.ValidationError{Field: "image", Message: "file is required"})
		return
	}
	defer file.Close()
	data, err := io.ReadAll(file)
	if err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "failed to read uploaded image")
		return
	}
	if len(data) == 0 {
		a.error(w, http.StatusBadRequest, "empty_image", "uploaded image is empty")
		return
	}
	mimeType := strings.TrimSpace(header.Header.Get("Content-Type"))
	if mimeType == "" || mimeType == "application/octet-stream" {
		mimeType = defaultUploadMIME
	}
	req.Source = &imagegen.SourceImage{Data: data, MIMEType: mimeType, Filename: header.Filename}

	if a.Stylizer == nil {
		a.fail(w, r, &imagegen.ConfigError{Missing: a.Config.MissingCredentials()})
		return
	}
	images, err := a.Stylizer.Stylize(r.Context(), req)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.images(w, "stylize", images)
}
