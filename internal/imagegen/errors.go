package imagegen

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// UpstreamError is a provider failure. Soft failures mean "this provider
// cannot handle the request shape" and let the stylize chain move on.
type UpstreamError struct {
	Provider   string
	StatusCode int
	// Detail is the parsed JSON body (json.RawMessage) or the raw text.
	Detail any
	Soft   bool
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s: status %d: %s", e.Provider, e.StatusCode, e.DetailText())
}

// DetailText renders Detail as a string.
func (e *UpstreamError) DetailText() string {
	switch d := e.Detail.(type) {
	case nil:
		return ""
	case string:
		return d
	case json.RawMessage:
		return string(d)
	default:
		return fmt.Sprint(d)
	}
}

// Hard returns a copy of e with the soft flag cleared.
func (e *UpstreamError) Hard() *UpstreamError {
	cp := *e
	cp.Soft = false
	return &cp
}

// EmptyResultError means the provider answered 2xx but no image was found.
type EmptyResultError struct {
	Provider string
	Preview  Value
}

func (e *EmptyResultError) Error() string {
	return fmt.Sprintf("%s: no images in response", e.Provider)
}

// ConfigError means no provider credential is available for the operation.
type ConfigError struct {
	Missing []string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("no image provider configured: set %s", strings.Join(e.Missing, " or "))
}

// ValidationError rejects a request before any provider call.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

// IsSoftFailure reports whether err is a soft upstream failure.
func IsSoftFailure(err error) bool {
	var upstream *UpstreamError
	return errors.As(err, &upstream) && upstream.Soft
}
