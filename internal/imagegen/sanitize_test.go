package imagegen

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func TestSanitize(t *testing.T) {
	pad := strings.Repeat("p", 128)
	tests := []struct {
		name string
		in   []string
		max  int
		want ImageSet
	}{
		{
			name: "dedup keeps first seen order",
			in:   []string{"abc" + pad, "abc" + pad, "xyz" + pad},
			max:  MaxImages,
			want: ImageSet{"abc" + pad, "xyz" + pad},
		},
		{
			name: "trims before comparing",
			in:   []string{"  abc" + pad + "\n", "abc" + pad},
			max:  MaxImages,
			want: ImageSet{"abc" + pad},
		},
		{
			name: "drops short entries",
			in:   []string{"short", strings.Repeat("q", 127), strings.Repeat("q", 128)},
			max:  MaxImages,
			want: ImageSet{strings.Repeat("q", 128)},
		},
		{
			name: "truncates to max",
			in:   []string{"1" + pad, "2" + pad, "3" + pad},
			max:  2,
			want: ImageSet{"1" + pad, "2" + pad},
		},
		{
			name: "non-positive max falls back to the cap",
			in:   []string{"1" + pad, "2" + pad, "3" + pad, "4" + pad, "5" + pad},
			max:  0,
			want: ImageSet{"1" + pad, "2" + pad, "3" + pad, "4" + pad},
		},
		{
			name: "empty input",
			in:   nil,
			max:  MaxImages,
			want: ImageSet{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Sanitize(tt.in, tt.max))
		})
	}
}

func genCandidates(rt *rapid.T) []string {
	pool := rapid.SliceOfN(rapid.StringMatching(`[ab]{120,135}`), 1, 6).Draw(rt, "pool")
	return rapid.SliceOf(rapid.Custom(func(rt *rapid.T) string {
		s := rapid.SampledFrom(pool).Draw(rt, "pick")
		if rapid.Bool().Draw(rt, "pad") {
			s = " " + s + "\t"
		}
		return s
	})).Draw(rt, "values")
}

func TestSanitizeIsIdempotent(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		values := genCandidates(rt)
		once := Sanitize(values, MaxImages)
		assert.Equal(t, once, Sanitize(once, MaxImages))
	})
}

func TestSanitizeNeverExceedsCap(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		values := genCandidates(rt)
		max := rapid.IntRange(-2, 10).Draw(rt, "max")
		got := Sanitize(values, max)
		assert.LessOrEqual(t, len(got), MaxImages)
		seen := map[string]bool{}
		for _, s := range got {
			assert.False(t, seen[s], "duplicate %q", s)
			assert.GreaterOrEqual(t, len(s), MinImageLength)
			seen[s] = true
		}
	})
}
