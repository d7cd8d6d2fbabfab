package imagegen

// RootSelector lists the sub-trees of a response worth scanning.
type RootSelector func(resp Value) []Value

// predictionWrappers are top-level keys that sometimes hold the real payload.
var predictionWrappers = []string{"predictions", "generatedImages", "generated_images", "response"}

// PredictionRoots returns the response itself followed by each present
// wrapper field, in a fixed order.
func PredictionRoots(resp Value) []Value {
	roots := []Value{resp}
	if resp.Kind() != KindMap {
		return roots
	}
	for _, key := range predictionWrappers {
		if v, ok := resp.Get(key); ok && !v.IsNull() {
			roots = append(roots, v)
		}
	}
	return roots
}

// CandidateParts returns every candidates[*].content.parts sequence.
func CandidateParts(resp Value) []Value {
	cands, ok := resp.Get("candidates")
	if !ok || cands.Kind() != KindSeq {
		return nil
	}
	var roots []Value
	for _, c := range cands.Items() {
		content, ok := c.Get("content")
		if !ok {
			continue
		}
		parts, ok := content.Get("parts")
		if !ok || parts.Kind() != KindSeq {
			continue
		}
		roots = append(roots, parts)
	}
	return roots
}

// WholeResponse scans the response tree as a single root.
func WholeResponse(resp Value) []Value {
	return []Value{resp}
}

// ArtifactRoots returns the Stability artifacts list when present.
func ArtifactRoots(resp Value) []Value {
	if v, ok := resp.Get("artifacts"); ok && !v.IsNull() {
		return []Value{v}
	}
	return nil
}
