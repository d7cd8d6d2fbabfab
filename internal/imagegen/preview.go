package imagegen

import "unicode/utf8"

const (
	previewMaxDepth  = 2
	previewMaxString = 200
	previewMaxKeys   = 10
	previewMaxItems  = 5
	previewEllipsis  = "…"
)

// Preview returns a bounded copy of v safe to echo back for debugging:
// nesting beyond depth 2 collapses, long strings are cut and large maps and
// sequences are shortened.
func Preview(v Value) Value {
	return preview(v, 0)
}

func preview(v Value, depth int) Value {
	if depth > previewMaxDepth {
		return String(previewEllipsis)
	}
	switch v.Kind() {
	case KindMap:
		fields := v.Fields()
		if len(fields) > previewMaxKeys {
			fields = fields[:previewMaxKeys]
		}
		out := make([]Field, len(fields))
		for i, f := range fields {
			out[i] = Field{Key: f.Key, Value: preview(f.Value, depth+1)}
		}
		return Map(out...)
	case KindSeq:
		items := v.Items()
		if len(items) > previewMaxItems {
			items = items[:previewMaxItems]
		}
		out := make([]Value, len(items))
		for i, item := range items {
			out[i] = preview(item, depth+1)
		}
		return Seq(out...)
	case KindString:
		return String(truncateRunes(v.Str(), previewMaxString))
	case KindBytes:
		return String(previewEllipsis)
	default:
		return v
	}
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i] + previewEllipsis
		}
		count++
	}
	return s
}
