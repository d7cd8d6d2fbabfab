package imagegen

import (
	"encoding/base64"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

var knownKeys = []string{"imageBytes", "bytesBase64", "image_base64", "imageBytesBase64", "bytesBase64Encoded"}

func payload(seed string, n int) string {
	return seed + strings.Repeat("A", n-len(seed))
}

func TestPredictionExtractorFindsNestedKeys(t *testing.T) {
	img := payload("img1", 160)
	tree := Map(
		F("predictions", Seq(
			Map(F("BYTESBASE64ENCODED", String(img)), F("mimeType", String("image/png"))),
		)),
	)
	found := PredictionExtractor.Extract(tree)
	require.NotEmpty(t, found)
	assert.Equal(t, img, found[0])
}

func TestPredictionExtractorEncodesBinary(t *testing.T) {
	raw := []byte(strings.Repeat("x", 120))
	found := PredictionExtractor.Extract(Map(F("imageBytes", Bytes(raw))))
	require.Len(t, found, 1)
	assert.Equal(t, base64.StdEncoding.EncodeToString(raw), found[0])
}

func TestPredictionExtractorRecursesWrapperTwice(t *testing.T) {
	img := payload("wrapped", 200)
	tree := Map(F("image", Map(F("imageBytes", String(img)))))
	found := PredictionExtractor.Extract(tree)
	assert.Equal(t, []string{img, img}, found)
	assert.Equal(t, ImageSet{img}, Sanitize(found, MaxImages))
}

func TestPredictionExtractorIgnoresScalarsAndUnknownKeys(t *testing.T) {
	tree := Map(
		F("imageBytes", Scalar(float64(12))),
		F("data", String(payload("nope", 300))),
		F("list", Seq(Scalar(true), Scalar(nil))),
	)
	assert.Empty(t, PredictionExtractor.Extract(tree))
}

func TestInlineDataExtractor(t *testing.T) {
	a := payload("a", 150)
	b := payload("b", 150)
	tree := Seq(
		Map(F("text", String("caption"))),
		Map(F("inlineData", Map(F("mimeType", String("image/png")), F("data", String(a))))),
		Map(F("inline_data", Map(F("data", String(b))))),
		Map(F("INLINEDATA", Map(F("data", String(payload("c", 150)))))),
		Map(F("bytesBase64Encoded", String(payload("d", 150)))),
	)
	assert.Equal(t, []string{a, b}, InlineDataExtractor{}.Extract(tree))
}

func TestArtifactExtractor(t *testing.T) {
	a := payload("art", 140)
	resp := Map(F("artifacts", Seq(
		Map(F("base64", String(a)), F("seed", Scalar(float64(1))), F("finishReason", String("SUCCESS"))),
	)))
	scan := Scan{Roots: ArtifactRoots, Extractor: ArtifactExtractor}
	assert.Equal(t, ImageSet{a}, scan.Collect(resp))
}

// genTree nests v under key at a random depth, surrounded by noise.
func genTree(rt *rapid.T, key string, v Value) Value {
	depth := rapid.IntRange(0, 5).Draw(rt, "depth")
	node := Map(
		F("noise", String(rapid.StringN(0, 20, -1).Draw(rt, "noise"))),
		F(key, v),
	)
	for i := 0; i < depth; i++ {
		wrapper := rapid.SampledFrom([]string{"a", "predictions", "content", "items", "x_y"}).Draw(rt, "wrapper")
		if rapid.Bool().Draw(rt, "seq") {
			node = Seq(Scalar(float64(i)), node)
		} else {
			node = Map(F("id", String("abc")), F(wrapper, node))
		}
	}
	return node
}

func TestExtractFindsLongPayloadsAtAnyDepth(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		key := rapid.SampledFrom(knownKeys).Draw(rt, "key")
		img := rapid.StringMatching(`[A-Za-z0-9+/]{128,300}`).Draw(rt, "img")
		tree := genTree(rt, key, String(img))

		got := Sanitize(PredictionExtractor.Extract(tree), MaxImages)
		assert.Contains(t, got, img)
	})
}

func TestExtractExcludesShortPayloads(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		key := rapid.SampledFrom(knownKeys).Draw(rt, "key")
		short := rapid.StringMatching(`[A-Za-z0-9+/]{0,127}`).Draw(rt, "short")
		tree := genTree(rt, key, String(short))

		got := Sanitize(PredictionExtractor.Extract(tree), MaxImages)
		assert.NotContains(t, got, short)
	})
}
