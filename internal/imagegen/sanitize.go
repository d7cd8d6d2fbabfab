package imagegen

import (
	"strings"
	"unicode/utf8"
)

const (
	// MinImageLength is a heuristic floor: shorter strings are IDs, flags or
	// MIME types rather than encoded images. It is not a format check.
	MinImageLength = 128
	// MaxImages bounds every image set returned to callers.
	MaxImages = 4
)

// ImageSet is an ordered list of base64 image payloads, first-seen order.
type ImageSet []string

// Sanitize trims, drops short entries, dedups keeping the first occurrence
// and truncates to max entries.
func Sanitize(values []string, max int) ImageSet {
	if max <= 0 || max > MaxImages {
		max = MaxImages
	}
	out := make(ImageSet, 0, max)
	seen := make(map[string]struct{}, len(values))
	for _, s := range values {
		trimmed := strings.TrimSpace(s)
		if utf8.RuneCountInString(trimmed) < MinImageLength {
			continue
		}
		if _, dup := seen[trimmed]; dup {
			continue
		}
		seen[trimmed] = struct{}{}
		out = append(out, trimmed)
		if len(out) == max {
			break
		}
	}
	return out
}

// Scan describes how one provider's responses are searched.
type Scan struct {
	Roots     RootSelector
	Extractor Extractor
	// Fallback is scanned when Roots yield no usable image.
	Fallback RootSelector
	Max      int
}

// Collect runs the scan over resp and sanitizes the result.
func (s Scan) Collect(resp Value) ImageSet {
	images := Sanitize(s.extract(s.Roots, resp), s.Max)
	if len(images) == 0 && s.Fallback != nil {
		images = Sanitize(s.extract(s.Fallback, resp), s.Max)
	}
	return images
}

func (s Scan) extract(sel RootSelector, resp Value) []string {
	if sel == nil {
		return nil
	}
	var found []string
	for _, root := range sel(resp) {
		found = append(found, s.Extractor.Extract(root)...)
	}
	return found
}
