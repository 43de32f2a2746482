package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/raysh454/phishscan/internal/logging"
	"github.com/raysh454/phishscan/internal/webclient"
)

const DefaultVirusTotalBaseURL = "https://www.virustotal.com"

type VirusTotalConfig struct {
	APIKey  string
	BaseURL string
}

// VirusTotal talks to the v3 URL scanning API.
type VirusTotal struct {
	key    string
	base   string
	wc     webclient.WebClient
	logger logging.Logger
}

func NewVirusTotal(cfg VirusTotalConfig, wc webclient.WebClient, logger logging.Logger) (*VirusTotal, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("virustotal: %w", ErrMissingKey)
	}
	if wc == nil || logger == nil {
		return nil, errors.New("virustotal: nil webclient or logger")
	}
	base := strings.TrimRight(cfg.BaseURL, "/")
	if base == "" {
		base = DefaultVirusTotalBaseURL
	}
	return &VirusTotal{
		key:    cfg.APIKey,
		base:   base,
		wc:     wc,
		logger: logger.With(logging.Field{Key: "component", Value: "virustotal"}),
	}, nil
}

func (v *VirusTotal) headers() http.Header {
	h := http.Header{}
	h.Set("x-apikey", v.key)
	h.Set("Accept", "application/json")
	return h
}

// Submit queues target for scanning and returns the analysis id.
func (v *VirusTotal) Submit(ctx context.Context, target string) (string, error) {
	h := v.headers()
	h.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := v.wc.Do(ctx, &webclient.Request{
		Method:  http.MethodPost,
		URL:     v.base + "/api/v3/urls",
		Headers: h,
		Body:    []byte(url.Values{"url": {target}}.Encode()),
	})
	if err != nil {
		return "", transportError("virustotal", err)
	}
	if !resp.OK() {
		v.logger.Warn("url submission rejected", logging.Field{Key: "status", Value: resp.StatusCode})
		return "", &StatusError{Provider: "virustotal", StatusCode: resp.StatusCode, Message: errorMessage(resp.Body)}
	}

	var submitted struct {
		Data struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	if err := json.Unmarshal(resp.Body, &submitted); err != nil {
		return "", fmt.Errorf("virustotal: decode submission: %w", err)
	}
	if submitted.Data.ID == "" {
		return "", errors.New("virustotal: submission response has no analysis id")
	}

	v.logger.Debug("url submitted", logging.Field{Key: "analysis_id", Value: submitted.Data.ID})
	return submitted.Data.ID, nil
}

// FetchAnalysis reads the analysis once; a queued analysis is returned as is.
func (v *VirusTotal) FetchAnalysis(ctx context.Context, id string) (json.RawMessage, error) {
	if id == "" {
		return nil, errors.New("virustotal: empty analysis id")
	}
	resp, err := v.wc.Do(ctx, &webclient.Request{
		Method:  http.MethodGet,
		URL:     v.base + "/api/v3/analyses/" + url.PathEscape(id),
		Headers: v.headers(),
	})
	if err != nil {
		return nil, transportError("virustotal", err)
	}
	if !resp.OK() {
		v.logger.Warn("analysis fetch rejected", logging.Field{Key: "status", Value: resp.StatusCode})
		return nil, &StatusError{Provider: "virustotal", StatusCode: resp.StatusCode, Message: errorMessage(resp.Body)}
	}
	if !json.Valid(resp.Body) {
		return nil, errors.New("virustotal: analysis is not JSON")
	}
	return json.RawMessage(resp.Body), nil
}
