package imagegen

import (
	"encoding/json"
	"net/http"
	"strings"
)

// Interpret turns a provider's status and raw body into an image set or a
// typed failure. Non-2xx responses become *UpstreamError, 2xx responses with
// nothing extractable become *EmptyResultError.
func Interpret(provider string, status int, body []byte, scan Scan) (ImageSet, error) {
	if status < 200 || status > 299 {
		return nil, &UpstreamError{Provider: provider, StatusCode: status, Detail: Detail(body)}
	}
	tree, err := Parse(body)
	if err != nil {
		return nil, &UpstreamError{
			Provider:   provider,
			StatusCode: http.StatusBadGateway,
			Detail:     "provider returned a non-JSON body",
		}
	}
	images := scan.Collect(tree)
	if len(images) == 0 {
		return nil, &EmptyResultError{Provider: provider, Preview: Preview(tree)}
	}
	return images, nil
}

// Detail returns body as json.RawMessage when it parses, else as trimmed text.
func Detail(body []byte) any {
	if json.Valid(body) {
		return json.RawMessage(append([]byte(nil), body...))
	}
	return strings.TrimSpace(string(body))
}
