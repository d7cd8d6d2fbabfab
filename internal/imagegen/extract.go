package imagegen

import (
	"encoding/base64"

	"golang.org/x/text/cases"
)

// Extractor pulls candidate base64 image payloads out of a response tree.
// Results keep traversal order and may contain duplicates.
type Extractor interface {
	Extract(v Value) []string
}

// KeyExtractor records string or binary values stored under any of a fixed
// set of key spellings, compared case-insensitively, at any depth.
type KeyExtractor struct {
	keys     map[string]struct{}
	wrappers map[string]struct{}
}

// NewKeyExtractor builds a KeyExtractor. Values under a wrapper key are
// scanned once more when they are containers; the sanitizer removes the
// resulting duplicates.
func NewKeyExtractor(keys, wrappers []string) KeyExtractor {
	fold := cases.Fold()
	e := KeyExtractor{
		keys:     make(map[string]struct{}, len(keys)),
		wrappers: make(map[string]struct{}, len(wrappers)),
	}
	for _, k := range keys {
		e.keys[fold.String(k)] = struct{}{}
	}
	for _, k := range wrappers {
		e.wrappers[fold.String(k)] = struct{}{}
	}
	return e
}

var (
	// PredictionExtractor matches the spellings seen across Imagen REST and SDK responses.
	PredictionExtractor = NewKeyExtractor(
		[]string{"imagebytes", "bytesbase64", "image_base64", "imagebytesbase64", "bytesbase64encoded"},
		[]string{"image", "image_data"},
	)
	// ArtifactExtractor matches Stability's artifacts[].base64 payloads.
	ArtifactExtractor = NewKeyExtractor([]string{"base64"}, nil)
)

// Extract implements Extractor.
func (e KeyExtractor) Extract(v Value) []string {
	var found []string
	e.walk(cases.Fold(), v, &found)
	return found
}

func (e KeyExtractor) walk(fold cases.Caser, v Value, found *[]string) {
	switch v.Kind() {
	case KindMap:
		for _, f := range v.Fields() {
			key := fold.String(f.Key)
			if _, ok := e.keys[key]; ok {
				switch f.Value.Kind() {
				case KindString:
					*found = append(*found, f.Value.Str())
				case KindBytes:
					*found = append(*found, base64.StdEncoding.EncodeToString(f.Value.BytesVal()))
				}
			}
			if !f.Value.IsContainer() {
				continue
			}
			if _, ok := e.wrappers[key]; ok {
				e.walk(fold, f.Value, found)
			}
			e.walk(fold, f.Value, found)
		}
	case KindSeq:
		for _, item := range v.Items() {
			e.walk(fold, item, found)
		}
	}
}

// InlineDataExtractor matches Gemini generateContent parts, where the image
// sits in the "data" field of an inline_data / inlineData object.
type InlineDataExtractor struct{}

// Extract implements Extractor.
func (InlineDataExtractor) Extract(v Value) []string {
	var found []string
	walkInlineData(v, &found)
	return found
}

func walkInlineData(v Value, found *[]string) {
	switch v.Kind() {
	case KindMap:
		for _, f := range v.Fields() {
			if (f.Key == "inline_data" || f.Key == "inlineData") && f.Value.Kind() == KindMap {
				if data, ok := f.Value.Get("data"); ok && data.Kind() == KindString {
					*found = append(*found, data.Str())
				}
			}
			if f.Value.IsContainer() {
				walkInlineData(f.Value, found)
			}
		}
	case KindSeq:
		for _, item := range v.Items() {
			walkInlineData(item, found)
		}
	}
}
