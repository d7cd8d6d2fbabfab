package handlers

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"photobooth/internal/imagegen"

	"github.com/go-playground/validator/v10"
)

// generateRequest is the shared field set of /api/generate (JSON) and
// /api/stylize (multipart form).
type generateRequest struct {
	Prompt           string `json:"prompt" validate:"notblank"`
	NumberOfImages   *int   `json:"number_of_images" validate:"omitempty,min=1,max=4"`
	AspectRatio      string `json:"aspect_ratio" validate:"omitempty,oneof=1:1 3:4 4:3 9:16 16:9"`
	SampleImageSize  string `json:"sample_image_size" validate:"omitempty,oneof=1K 2K"`
	PersonGeneration string `json:"person_generation" validate:"omitempty,oneof=dont_allow allow_adult allow_all"`
	Model            string `json:"model"`
}

var fieldMessages = map[string]string{
	"notblank": "must not be empty",
	"min":      "must be at least %s",
	"max":      "must be at most %s",
	"oneof":    "must be one of [%s]",
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	return v
}

// bind validates body and turns it into a provider request. Defaults are
// applied only after validation so explicit out-of-range values are rejected.
func (a *App) bind(body generateRequest) (imagegen.Request, error) {
	if err := a.validate.Struct(body); err != nil {
		return imagegen.Request{}, validationError(err)
	}
	req := imagegen.Request{
		Prompt:           strings.TrimSpace(body.Prompt),
		NumberOfImages:   1,
		AspectRatio:      body.AspectRatio,
		SampleImageSize:  body.SampleImageSize,
		PersonGeneration: body.PersonGeneration,
		Model:            strings.TrimSpace(body.Model),
	}
	if body.NumberOfImages != nil {
		req.NumberOfImages = *body.NumberOfImages
	}
	if req.Model == "" {
		req.Model = imagegen.DefaultModel
	}
	return req, nil
}

func validationError(err error) error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return &imagegen.ValidationError{Message: err.Error()}
	}
	fe := fieldErrs[0]
	msg := "is invalid"
	if tmpl, ok := fieldMessages[fe.Tag()]; ok {
		msg = tmpl
		if strings.Contains(tmpl, "%s") {
			msg = fmt.Sprintf(tmpl, fe.Param())
		}
	}
	return &imagegen.ValidationError{Field: fe.Field(), Message: msg}
}

// formRequest reads the generate fields from a parsed multipart form.
func formRequest(get func(string) string) (generateRequest, error) {
	body := generateRequest{
		Prompt:           get("prompt"),
		AspectRatio:      strings.TrimSpace(get("aspect_ratio")),
		SampleImageSize:  strings.TrimSpace(get("sample_image_size")),
		PersonGeneration: strings.TrimSpace(get("person_generation")),
		Model:            get("model"),
	}
	if raw := strings.TrimSpace(get("number_of_images")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return body, &imagegen.ValidationError{Field: "number_of_images", Message: "must be an integer"}
		}
		body.NumberOfImages = &n
	}
	return body, nil
}
