// Package providers holds the clients for the external threat-intelligence
// services used during enrichment. Payloads are returned as the raw JSON
// the service sent.
package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
)

// HostSearcher finds hosts serving an icon with the given fingerprint.
type HostSearcher interface {
	SearchFaviconHash(ctx context.Context, hash string) (json.RawMessage, error)
}

// URLReputation is a two-phase URL scanner: Submit queues the URL and
// returns an analysis id, FetchAnalysis reads that analysis as it stands.
type URLReputation interface {
	Submit(ctx context.Context, target string) (string, error)
	FetchAnalysis(ctx context.Context, id string) (json.RawMessage, error)
}

// StatusError reports a non-2xx answer from a provider.
type StatusError struct {
	Provider   string
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s: unexpected status %d", e.Provider, e.StatusCode)
	}
	return fmt.Sprintf("%s: unexpected status %d: %s", e.Provider, e.StatusCode, e.Message)
}

// ErrMissingKey is returned by constructors given an empty credential.
var ErrMissingKey = errors.New("api key not configured")

// transportError strips the request URL from err so credentials carried
// in query strings never reach results or logs.
func transportError(provider string, err error) error {
	var uerr *url.Error
	if errors.As(err, &uerr) {
		return fmt.Errorf("%s: %s request failed: %w", provider, uerr.Op, uerr.Err)
	}
	return fmt.Errorf("%s: %w", provider, err)
}

// errorMessage pulls a human-readable message out of a provider error body.
func errorMessage(body []byte) string {
	var shape struct {
		Error   any    `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &shape); err != nil {
		return ""
	}
	switch v := shape.Error.(type) {
	case string:
		return v
	case map[string]any:
		if m, ok := v["message"].(string); ok {
			return m
		}
	}
	return shape.Message
}
