package model

import (
	"encoding/json"
	"net/url"
	"time"
)

// AnalysisRequest is the raw, unvalidated input string.
type AnalysisRequest struct {
	URL string `json:"url" example:"example.com"`
}

// NormalizedURL is a syntactically valid absolute http(s) URL with a
// non-empty host. It is immutable once built.
type NormalizedURL struct {
	u *url.URL
}

// NewNormalizedURL wraps u. Callers must have validated scheme and host.
func NewNormalizedURL(u *url.URL) *NormalizedURL {
	cp := *u
	return &NormalizedURL{u: &cp}
}

func (n *NormalizedURL) String() string { return n.u.String() }

// Scheme is "http" or "https".
func (n *NormalizedURL) Scheme() string { return n.u.Scheme }

// Host is the hostname without port.
func (n *NormalizedURL) Host() string { return n.u.Hostname() }

// Port is the explicit port, or "".
func (n *NormalizedURL) Port() string { return n.u.Port() }

// RawQuery is the encoded query without '?'.
func (n *NormalizedURL) RawQuery() string { return n.u.RawQuery }

// Origin returns scheme://host[:port].
func (n *NormalizedURL) Origin() string {
	return n.u.Scheme + "://" + n.u.Host
}

// URL returns a copy of the underlying URL.
func (n *NormalizedURL) URL() *url.URL {
	cp := *n.u
	return &cp
}

// MarshalJSON renders the URL as a string.
func (n *NormalizedURL) MarshalJSON() ([]byte, error) {
	return json.Marshal(n.String())
}

// SSRFVerdict is produced by the guard and consumed once by the controller.
type SSRFVerdict struct {
	Allowed bool     `json:"allowed"`
	Reason  string   `json:"reason,omitempty"`
	Addrs   []string `json:"addrs,omitempty"`
}

// HeuristicReport is the scorer's output. Findings are in evaluation order.
type HeuristicReport struct {
	Findings []string
	Err      *StageError
}

// FaviconFingerprint identifies a site's icon. A nil fingerprint means no
// icon was found, which is not an error.
type FaviconFingerprint struct {
	SourceURL string `json:"found_at"`
	ByteSize  int    `json:"size"`
	Hash      string `json:"hash"`
}

// EnrichmentStatus discriminates EnrichmentResult.
type EnrichmentStatus string

const (
	EnrichmentSuccess     EnrichmentStatus = "success"
	EnrichmentUnavailable EnrichmentStatus = "unavailable"
	EnrichmentError       EnrichmentStatus = "error"
)

// Provider names.
const (
	ProviderShodan     = "shodan"
	ProviderVirusTotal = "virustotal"
)

// EnrichmentResult is one provider's outcome.
type EnrichmentResult struct {
	Provider string           `json:"provider"`
	Status   EnrichmentStatus `json:"status"`
	// Payload is passed through from the provider unmodified.
	Payload json.RawMessage `json:"payload,omitempty" swaggertype:"object"`
	Reason  string          `json:"reason,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// Success builds a successful EnrichmentResult.
func Success(provider string, payload json.RawMessage) EnrichmentResult {
	return EnrichmentResult{Provider: provider, Status: EnrichmentSuccess, Payload: payload}
}

// Unavailable builds a skipped EnrichmentResult.
func Unavailable(provider, reason string) EnrichmentResult {
	return EnrichmentResult{Provider: provider, Status: EnrichmentUnavailable, Reason: reason}
}

// Failed builds an errored EnrichmentResult.
func Failed(provider string, err error) EnrichmentResult {
	return EnrichmentResult{Provider: provider, Status: EnrichmentError, Error: err.Error()}
}

// AnalysisResult is the only externally observable artifact of the
// pipeline. It is assembled once and not mutated afterwards.
type AnalysisResult struct {
	ID     string `json:"id"`
	Target string `json:"target"`

	Heuristics      []string    `json:"heuristics"`
	HeuristicsError *StageError `json:"heuristics_error,omitempty"`

	Favicon      *FaviconFingerprint `json:"favicon"`
	FaviconError *StageError         `json:"favicon_error,omitempty"`

	Enrichment []EnrichmentResult `json:"enrichment,omitempty"`

	StagesRun   []State   `json:"stages_run"`
	StartedAt   time.Time `json:"started_at"`
	CompletedAt time.Time `json:"completed_at"`
}

// EnrichmentFor returns the result for provider, if present.
func (r *AnalysisResult) EnrichmentFor(provider string) (EnrichmentResult, bool) {
	for _, e := range r.Enrichment {
		if e.Provider == provider {
			return e, true
		}
	}
	return EnrichmentResult{}, false
}
