package imagegen

// DefaultModel is the Imagen model used when a request does not name one.
const DefaultModel = "imagen-4.0-generate-001"

// SourceImage is the uploaded image a stylize request is conditioned on.
type SourceImage struct {
	Data     []byte
	MIMEType string
	Filename string
}

// Request is a normalized generate or stylize request. Source is set only
// for stylize requests.
type Request struct {
	Prompt           string
	NumberOfImages   int
	AspectRatio      string
	SampleImageSize  string
	PersonGeneration string
	Model            string
	Source           *SourceImage
}

// IsStylize reports whether the request carries a source image.
func (r Request) IsStylize() bool {
	return r.Source != nil
}

// SampleCount clamps NumberOfImages into [1, MaxImages].
func (r Request) SampleCount() int {
	switch {
	case r.NumberOfImages < 1:
		return 1
	case r.NumberOfImages > MaxImages:
		return MaxImages
	default:
		return r.NumberOfImages
	}
}

// ModelOrDefault returns the requested model or DefaultModel.
func (r Request) ModelOrDefault() string {
	if r.Model == "" {
		return DefaultModel
	}
	return r.Model
}
